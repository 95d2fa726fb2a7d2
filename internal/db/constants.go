package db

const (
	// timeLayout is how timestamps are stored; SQLite's datetime() compares
	// against it directly. Values are always written in UTC.
	timeLayout = "2006-01-02 15:04:05"

	// sqlRecordedSinceClause filters rate samples by a datetime window.
	sqlRecordedSinceClause = "AND recorded_at >= datetime('now', ?)"
)
