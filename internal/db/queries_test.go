package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

func TestInsertRateSample(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	s := &models.RateSample{UserID: 1, RPM: 12, TPM: 3400, MaxRPM: 60, UsageRPMRate: 20}
	require.NoError(t, db.InsertRateSample(context.Background(), s))
	assert.NotZero(t, s.ID)
}

func TestGetRateSamples(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	now := time.Now()
	for i, rpm := range []int64{5, 7, 9} {
		require.NoError(t, db.InsertRateSample(ctx, &models.RateSample{
			UserID:     1,
			RPM:        rpm,
			RecordedAt: now.Add(time.Duration(i-3) * time.Minute),
		}))
	}
	// Other user and an old sample are excluded.
	require.NoError(t, db.InsertRateSample(ctx, &models.RateSample{UserID: 2, RPM: 99, RecordedAt: now}))
	require.NoError(t, db.InsertRateSample(ctx, &models.RateSample{UserID: 1, RPM: 50, RecordedAt: now.Add(-3 * time.Hour)}))

	samples, err := db.GetRateSamples(ctx, 1, time.Hour, 10)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, int64(5), samples[0].RPM)
	assert.Equal(t, int64(9), samples[2].RPM)
	assert.False(t, samples[0].RecordedAt.IsZero())
	assert.True(t, samples[0].RecordedAt.Before(samples[2].RecordedAt))

	limited, err := db.GetRateSamples(ctx, 1, time.Hour, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(7), limited[0].RPM)
	assert.Equal(t, int64(9), limited[1].RPM)
}

func TestPeakRPM(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	peak, err := db.PeakRPM(ctx, 1, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, peak)

	for _, rpm := range []int64{3, 11, 4} {
		require.NoError(t, db.InsertRateSample(ctx, &models.RateSample{UserID: 1, RPM: rpm}))
	}

	peak, err = db.PeakRPM(ctx, 1, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(11), peak)
}

func TestPruneRateSamples(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.InsertRateSample(ctx, &models.RateSample{RPM: 1, RecordedAt: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, db.InsertRateSample(ctx, &models.RateSample{RPM: 2}))

	removed, err := db.PruneRateSamples(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	samples, err := db.GetRateSamples(ctx, 0, 72*time.Hour, 10)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, int64(2), samples[0].RPM)
}

func TestFetchStats(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	now := time.Now()
	records := []models.FetchRecord{
		{Slot: "period", Success: true, DurationMs: 100, StartedAt: now.Add(-2 * time.Minute)},
		{Slot: "period", Success: false, DurationMs: 300, Error: "timeout", StartedAt: now.Add(-time.Minute)},
		{Slot: "rate", Success: true, DurationMs: 20, StartedAt: now},
	}
	for i := range records {
		require.NoError(t, db.InsertFetchRecord(ctx, &records[i]))
		assert.NotZero(t, records[i].ID)
	}

	stats, err := db.GetFetchStats(ctx, time.Hour)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	period := stats[0]
	assert.Equal(t, "period", period.Slot)
	assert.Equal(t, 2, period.TotalFetches)
	assert.Equal(t, 1, period.FailedFetches)
	assert.InDelta(t, 200.0, period.AvgDurationMs, 1e-9)
	assert.Equal(t, "timeout", period.LastError)

	rate := stats[1]
	assert.Equal(t, "rate", rate.Slot)
	assert.Empty(t, rate.LastError)
	assert.False(t, rate.LastFetch.IsZero())
}

func TestPruneFetchLog(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.InsertFetchRecord(ctx, &models.FetchRecord{Slot: "top", Success: true, StartedAt: time.Now().Add(-10 * 24 * time.Hour)}))
	require.NoError(t, db.InsertFetchRecord(ctx, &models.FetchRecord{Slot: "top", Success: true}))

	removed, err := db.PruneFetchLog(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
