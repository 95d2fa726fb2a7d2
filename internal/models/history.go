package models

import "time"

// RateSample is a stored rate snapshot reading (DB model).
type RateSample struct {
	RecordedAt   time.Time
	ID           int64
	UserID       int
	RPM          int64
	TPM          int64
	MaxRPM       int64
	MaxTPM       int64
	UsageRPMRate float64
}

// FetchRecord is the outcome of one analytics request (DB model).
type FetchRecord struct {
	StartedAt  time.Time
	Slot       string
	Error      string
	ID         int64
	DurationMs int64
	Success    bool
}

// FetchStats summarizes the outcomes of one slot's requests.
type FetchStats struct {
	LastFetch     time.Time
	Slot          string
	LastError     string
	TotalFetches  int
	FailedFetches int
	AvgDurationMs float64
}
