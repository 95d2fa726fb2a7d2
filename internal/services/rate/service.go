// Package rate polls the live RPM/TPM snapshot and records it as history.
package rate

import (
	"context"
	"sync"
	"time"

	"github.com/j-veylop/onehub-analytics-tui/internal/logger"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// Fetcher retrieves the current rate snapshot for a user.
type Fetcher interface {
	GetRate(ctx context.Context, userID int) (*models.RateSnapshot, error)
}

// Recorder stores rate samples.
type Recorder interface {
	InsertRateSample(ctx context.Context, s *models.RateSample) error
	PruneRateSamples(ctx context.Context, retention time.Duration) (int64, error)
	Vacuum(ctx context.Context) error
}

// Event represents a rate service event.
type Event struct {
	At       time.Time
	Error    error
	Snapshot *models.RateSnapshot
	UserID   int
	Type     EventType
}

// EventType defines the type of rate event.
type EventType int

const (
	// EventRateUpdated indicates a fresh snapshot was fetched.
	EventRateUpdated EventType = iota
	// EventRateRefreshing indicates a fetch is in progress.
	EventRateRefreshing
	// EventRateError indicates the fetch failed.
	EventRateError
)

// Config holds configuration for the rate service.
type Config struct {
	// PollInterval of zero or less disables background polling.
	PollInterval   time.Duration
	RequestTimeout time.Duration
	Retention      time.Duration
	PruneInterval  time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:   15 * time.Second,
		RequestTimeout: 30 * time.Second,
		Retention:      7 * 24 * time.Hour,
		PruneInterval:  time.Hour,
	}
}

// Service polls the rate endpoint for the selected user.
type Service struct {
	fetcher   Fetcher
	recorder  Recorder
	latest    *models.RateSnapshot
	latestAt  time.Time
	lastPrune time.Time
	eventChan chan Event
	stopChan  chan struct{}
	pollNow   chan struct{}
	config    Config
	userID    int
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closeOnce sync.Once
}

// New creates a rate service and starts polling when enabled. recorder may
// be nil, in which case samples are not stored.
func New(fetcher Fetcher, recorder Recorder, userID int, config Config) *Service {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultConfig().RequestTimeout
	}
	if config.PruneInterval <= 0 {
		config.PruneInterval = DefaultConfig().PruneInterval
	}

	s := &Service{
		fetcher:   fetcher,
		recorder:  recorder,
		userID:    userID,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		pollNow:   make(chan struct{}, 1),
		config:    config,
	}

	if config.PollInterval > 0 {
		s.wg.Add(1)
		go s.pollRate()
	}

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// UserID returns the user currently polled.
func (s *Service) UserID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// SetUserID switches the polled user and schedules an immediate poll.
func (s *Service) SetUserID(userID int) {
	s.mu.Lock()
	changed := s.userID != userID
	s.userID = userID
	if changed {
		s.latest = nil
		s.latestAt = time.Time{}
	}
	s.mu.Unlock()

	if changed {
		select {
		case s.pollNow <- struct{}{}:
		default:
		}
	}
}

// Latest returns the most recent snapshot and when it was fetched.
func (s *Service) Latest() (*models.RateSnapshot, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latestAt
}

// Refresh fetches the rate snapshot for userID. Only snapshots for the polled
// user update Latest, get recorded and emit events; a snapshot for any other
// user is returned to the caller as is.
func (s *Service) Refresh(ctx context.Context, userID int) (*models.RateSnapshot, error) {
	polled := s.UserID() == userID
	if polled {
		s.sendEvent(Event{Type: EventRateRefreshing, UserID: userID})
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	snap, err := s.fetcher.GetRate(ctx, userID)
	now := time.Now()
	if err != nil {
		logger.Warn("rate fetch failed", "user_id", userID, "error", err)
		if polled {
			s.sendEvent(Event{Type: EventRateError, UserID: userID, Error: err, At: now})
		}
		return nil, err
	}

	s.mu.Lock()
	current := s.userID == userID
	if current {
		s.latest = snap
		s.latestAt = now
	}
	s.mu.Unlock()

	if !current {
		logger.Debug("rate snapshot is not for the polled user", "user_id", userID)
		return snap, nil
	}

	s.record(ctx, userID, snap, now)
	s.sendEvent(Event{Type: EventRateUpdated, UserID: userID, Snapshot: snap, At: now})
	return snap, nil
}

// poll refreshes the snapshot for the polled user.
func (s *Service) poll(ctx context.Context) {
	_, _ = s.Refresh(ctx, s.UserID())
}

func (s *Service) record(ctx context.Context, userID int, snap *models.RateSnapshot, at time.Time) {
	if s.recorder == nil {
		return
	}

	sample := &models.RateSample{
		UserID:       userID,
		RPM:          snap.RPM.Int64(),
		TPM:          snap.TPM.Int64(),
		MaxRPM:       snap.MaxRPM.Int64(),
		MaxTPM:       snap.MaxTPM.Int64(),
		UsageRPMRate: snap.UsageRPMRate.Float64(),
		RecordedAt:   at,
	}
	if err := s.recorder.InsertRateSample(ctx, sample); err != nil {
		logger.Error("failed to record rate sample", "error", err)
	}

	if s.config.Retention <= 0 {
		return
	}
	s.mu.Lock()
	due := at.Sub(s.lastPrune) >= s.config.PruneInterval
	if due {
		s.lastPrune = at
	}
	s.mu.Unlock()
	if !due {
		return
	}

	n, err := s.recorder.PruneRateSamples(ctx, s.config.Retention)
	if err != nil {
		logger.Error("failed to prune rate samples", "error", err)
		return
	}
	if n == 0 {
		return
	}
	logger.Debug("pruned rate samples", "count", n)
	if err := s.recorder.Vacuum(ctx); err != nil {
		logger.Error("failed to vacuum database", "error", err)
	}
}

// pollRate runs the background polling goroutine.
func (s *Service) pollRate() {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stopChan
		cancel()
	}()

	s.poll(ctx)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.poll(ctx)
		case <-s.pollNow:
			s.poll(ctx)
			ticker.Reset(s.config.PollInterval)
		case <-s.stopChan:
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the service and waits for an in-flight poll to finish.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	return nil
}
