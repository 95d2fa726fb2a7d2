package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/onehub-analytics-tui/internal/logger"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// InsertRateSample stores a rate snapshot reading.
func (db *DB) InsertRateSample(ctx context.Context, s *models.RateSample) error {
	query := `
		INSERT INTO rate_samples (
			user_id, rpm, tpm, max_rpm, max_tpm, usage_rpm_rate, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	recordedAt := s.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	result, err := db.ExecContext(ctx, query,
		s.UserID,
		s.RPM,
		s.TPM,
		s.MaxRPM,
		s.MaxTPM,
		s.UsageRPMRate,
		recordedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert rate sample: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		s.ID = id
	}
	return nil
}

// GetRateSamples returns a user's samples recorded within window, oldest
// first, capped at the most recent limit rows.
func (db *DB) GetRateSamples(ctx context.Context, userID int, window time.Duration, limit int) ([]models.RateSample, error) {
	query := `
		SELECT id, user_id, rpm, tpm, max_rpm, max_tpm, usage_rpm_rate, recorded_at
		FROM (
			SELECT * FROM rate_samples
			WHERE user_id = ? ` + sqlRecordedSinceClause + `
			ORDER BY recorded_at DESC, id DESC
			LIMIT ?
		)
		ORDER BY recorded_at ASC, id ASC
	`

	rows, err := db.QueryContext(ctx, query, userID, sqliteModifier(window), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate samples: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var samples []models.RateSample
	for rows.Next() {
		var s models.RateSample
		var recordedAt string

		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.RPM,
			&s.TPM,
			&s.MaxRPM,
			&s.MaxTPM,
			&s.UsageRPMRate,
			&recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate sample: %w", err)
		}

		s.RecordedAt = parseTime(recordedAt)
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// PeakRPM returns the highest RPM recorded for a user within window.
func (db *DB) PeakRPM(ctx context.Context, userID int, window time.Duration) (int64, error) {
	query := `SELECT COALESCE(MAX(rpm), 0) FROM rate_samples WHERE user_id = ? ` + sqlRecordedSinceClause

	var peak int64
	if err := db.QueryRowContext(ctx, query, userID, sqliteModifier(window)).Scan(&peak); err != nil {
		return 0, fmt.Errorf("failed to query peak rpm: %w", err)
	}
	return peak, nil
}

// PruneRateSamples deletes samples older than retention and returns how many
// rows were removed.
func (db *DB) PruneRateSamples(ctx context.Context, retention time.Duration) (int64, error) {
	query := `DELETE FROM rate_samples WHERE recorded_at < datetime('now', ?)`

	result, err := db.ExecContext(ctx, query, sqliteModifier(retention))
	if err != nil {
		return 0, fmt.Errorf("failed to prune rate samples: %w", err)
	}
	return result.RowsAffected()
}

// InsertFetchRecord logs the outcome of an analytics request.
func (db *DB) InsertFetchRecord(ctx context.Context, r *models.FetchRecord) error {
	query := `
		INSERT INTO fetch_log (slot, success, duration_ms, error, started_at)
		VALUES (?, ?, ?, ?, ?)
	`

	startedAt := r.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	result, err := db.ExecContext(ctx, query,
		r.Slot,
		r.Success,
		r.DurationMs,
		nullString(r.Error),
		startedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch record: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		r.ID = id
	}
	return nil
}

// GetFetchStats summarizes requests per slot within window, ordered by slot.
func (db *DB) GetFetchStats(ctx context.Context, window time.Duration) ([]models.FetchStats, error) {
	query := `
		SELECT
			f.slot,
			COUNT(*) AS total,
			SUM(CASE WHEN f.success = 0 THEN 1 ELSE 0 END) AS failed,
			COALESCE(AVG(f.duration_ms), 0) AS avg_duration,
			MAX(f.started_at) AS last_fetch,
			(SELECT l.error FROM fetch_log l
			 WHERE l.slot = f.slot
			 ORDER BY l.started_at DESC, l.id DESC LIMIT 1) AS last_error
		FROM fetch_log f
		WHERE f.started_at >= datetime('now', ?)
		GROUP BY f.slot
		ORDER BY f.slot
	`

	rows, err := db.QueryContext(ctx, query, sqliteModifier(window))
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch stats: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var stats []models.FetchStats
	for rows.Next() {
		var s models.FetchStats
		var lastFetch string
		var lastError sql.NullString

		if err := rows.Scan(&s.Slot, &s.TotalFetches, &s.FailedFetches, &s.AvgDurationMs, &lastFetch, &lastError); err != nil {
			return nil, fmt.Errorf("failed to scan fetch stats: %w", err)
		}

		s.LastFetch = parseTime(lastFetch)
		s.LastError = lastError.String
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// PruneFetchLog deletes fetch records older than retention.
func (db *DB) PruneFetchLog(ctx context.Context, retention time.Duration) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM fetch_log WHERE started_at < datetime('now', ?)`, sqliteModifier(retention))
	if err != nil {
		return 0, fmt.Errorf("failed to prune fetch log: %w", err)
	}
	return result.RowsAffected()
}

// sqliteModifier converts a look-back window into a datetime() modifier.
func sqliteModifier(d time.Duration) string {
	return fmt.Sprintf("-%d seconds", int64(d.Seconds()))
}

// parseTime parses a stored UTC timestamp, returning the zero time on error.
func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
