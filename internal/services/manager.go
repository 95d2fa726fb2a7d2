// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/onehub-analytics-tui/internal/analytics"
	"github.com/j-veylop/onehub-analytics-tui/internal/api"
	"github.com/j-veylop/onehub-analytics-tui/internal/config"
	"github.com/j-veylop/onehub-analytics-tui/internal/db"
	"github.com/j-veylop/onehub-analytics-tui/internal/logger"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/services/filters"
	"github.com/j-veylop/onehub-analytics-tui/internal/services/rate"
	"github.com/j-veylop/onehub-analytics-tui/internal/version"
)

// historyLimit caps the samples returned for the rate sparkline.
const historyLimit = 240

type (
	// RateUpdatedEvent is emitted when the poller fetched a fresh rate snapshot.
	RateUpdatedEvent struct {
		At       time.Time
		Snapshot *models.RateSnapshot
		UserID   int
	}

	// FiltersChangedEvent is emitted when the saved filters were edited on disk.
	FiltersChangedEvent struct {
		Query models.Query
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (RateUpdatedEvent) isServiceEvent()    {}
func (FiltersChangedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()          {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	alertMu     sync.Mutex
	config      *config.Config
	client      Analytics
	database    *db.DB
	filters     *filters.Service
	rate        *rate.Service
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan ServiceEvent
	notify      func(title, body string) error
	now         func() time.Time
	lastUsage   float64
	hasUsage    bool
	closeOnce   sync.Once
}

// NewManager creates a new service manager backed by the gateway API.
func NewManager(cfg *config.Config) (*Manager, error) {
	client, err := api.New(api.Options{
		BaseURL:     cfg.BaseURL,
		AccessToken: cfg.AccessToken,
		UserAgent:   version.UserAgent(),
		Timeout:     cfg.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}
	return newManager(cfg, client)
}

func newManager(cfg *config.Config, client Analytics) (*Manager, error) {
	m := &Manager{
		config:    cfg,
		client:    client,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		notify:    desktopNotify,
		now:       time.Now,
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.filters, err = filters.New(cfg.FiltersPath, cfg.DefaultQuery())
	if err != nil {
		_ = m.database.Close()
		return nil, err
	}

	rateConfig := rate.DefaultConfig()
	rateConfig.PollInterval = cfg.RatePollInterval
	rateConfig.Retention = cfg.RateHistoryRetention
	if cfg.RequestTimeout > 0 {
		rateConfig.RequestTimeout = cfg.RequestTimeout
	}

	m.rate = rate.New(client, m.database, m.filters.Get().UserID, rateConfig)

	go m.routeEvents()

	return m, nil
}

func desktopNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.rate.Events():
			m.handleRateEvent(event)

		case event := <-m.filters.Events():
			m.handleFiltersEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleRateEvent(event rate.Event) {
	switch event.Type {
	case rate.EventRateUpdated:
		if event.Snapshot != nil {
			m.checkRateAlert(event.UserID, event.Snapshot)
		}
		m.broadcast(RateUpdatedEvent{
			UserID:   event.UserID,
			Snapshot: event.Snapshot,
			At:       event.At,
		})

	case rate.EventRateError:
		m.broadcast(ErrorEvent{
			Service: SlotRate,
			Error:   event.Error,
		})
	}
}

func (m *Manager) handleFiltersEvent(event filters.Event) {
	switch event.Type {
	case filters.EventFiltersChanged:
		m.rate.SetUserID(event.Filters.UserID)
		m.broadcast(FiltersChangedEvent{Query: event.Filters})

	case filters.EventError:
		m.broadcast(ErrorEvent{
			Service: "filters",
			Error:   event.Error,
		})
	}
}

// checkRateAlert sends a desktop notification when RPM usage crosses the
// configured threshold upwards.
func (m *Manager) checkRateAlert(userID int, snap *models.RateSnapshot) {
	threshold := m.config.RateAlertThreshold
	usage := snap.UsageRPMRate.Float64()

	m.alertMu.Lock()
	prev, hadPrev := m.lastUsage, m.hasUsage
	m.lastUsage, m.hasUsage = usage, true
	m.alertMu.Unlock()

	if threshold <= 0 || snap.MaxRPM.Int64() <= 0 {
		return
	}
	if usage < threshold || (hadPrev && prev >= threshold) {
		return
	}

	title := "RPM usage high"
	if userID > 0 {
		title = fmt.Sprintf("RPM usage high: user %d", userID)
	}
	body := fmt.Sprintf("%d of %d requests per minute (%.1f%%)", snap.RPM.Int64(), snap.MaxRPM.Int64(), usage)
	if err := m.notify(title, body); err != nil {
		logger.Warn("failed to send desktop notification", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel. A closed
// channel yields a nil message.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.config
}

// Query returns the saved filters.
func (m *Manager) Query() models.Query {
	return m.filters.Get()
}

// SetQuery points the rate poller at the new user and saves the filters.
// The poller follows q even when saving fails.
func (m *Manager) SetQuery(q models.Query) error {
	m.rate.SetUserID(q.UserID)
	return m.filters.Set(q)
}

// FiltersPath returns the saved filters file path.
func (m *Manager) FiltersPath() string {
	return m.filters.Path()
}

// FetchPeriod loads and aggregates period statistics.
func (m *Manager) FetchPeriod(ctx context.Context, q models.Query) (*PeriodResult, error) {
	start := time.Now()
	res, err := LoadPeriod(ctx, m.client, q, m.now())
	m.recordFetch(ctx, SlotPeriod, start, err)
	return res, err
}

// FetchSummary loads the rolling seven-day summary.
func (m *Manager) FetchSummary(ctx context.Context, userID int) (*analytics.Summary, error) {
	start := time.Now()
	res, err := LoadSummary(ctx, m.client, userID, m.now())
	m.recordFetch(ctx, SlotSummary, start, err)
	return res, err
}

// FetchTop loads the top spenders chart.
func (m *Manager) FetchTop(ctx context.Context, q models.Query) (*analytics.ChartBundle, error) {
	start := time.Now()
	res, err := LoadTop(ctx, m.client, q, m.now())
	m.recordFetch(ctx, SlotTop, start, err)
	return res, err
}

// FetchRate refreshes the rate snapshot for userID through the poller, so a
// snapshot for the polled user is recorded and subscribers are notified.
func (m *Manager) FetchRate(ctx context.Context, userID int) (*models.RateSnapshot, error) {
	start := time.Now()
	res, err := m.rate.Refresh(ctx, userID)
	m.recordFetch(ctx, SlotRate, start, err)
	return res, err
}

// Snapshot fetches every slot once for q.
func (m *Manager) Snapshot(ctx context.Context, q models.Query) *Snapshot {
	return TakeSnapshot(ctx, m.client, q, m.now())
}

func (m *Manager) recordFetch(ctx context.Context, slot string, start time.Time, err error) {
	rec := &models.FetchRecord{
		Slot:       slot,
		Success:    err == nil,
		DurationMs: time.Since(start).Milliseconds(),
		StartedAt:  start,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if insertErr := m.database.InsertFetchRecord(context.WithoutCancel(ctx), rec); insertErr != nil {
		logger.Error("failed to record fetch", "slot", slot, "error", insertErr)
	}
}

// LatestRate returns the last snapshot fetched for the polled user.
func (m *Manager) LatestRate() (*models.RateSnapshot, time.Time) {
	return m.rate.Latest()
}

// RateHistory returns the recorded samples for the polled user.
func (m *Manager) RateHistory(ctx context.Context, window time.Duration) ([]models.RateSample, error) {
	return m.database.GetRateSamples(ctx, m.rate.UserID(), window, historyLimit)
}

// PeakRPM returns the highest recorded RPM for the polled user in window.
func (m *Manager) PeakRPM(ctx context.Context, window time.Duration) (int64, error) {
	return m.database.PeakRPM(ctx, m.rate.UserID(), window)
}

// FetchStats summarizes request outcomes per slot over window.
func (m *Manager) FetchStats(ctx context.Context, window time.Duration) ([]models.FetchStats, error) {
	return m.database.GetFetchStats(ctx, window)
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.rate.Close(); err != nil {
			errs = append(errs, err)
		}

		if err := m.filters.Close(); err != nil {
			errs = append(errs, err)
		}

		if retention := m.config.RateHistoryRetention; retention > 0 {
			if _, err := m.database.PruneFetchLog(context.Background(), retention); err != nil {
				errs = append(errs, err)
			}
		}

		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	})

	return errors.Join(errs...)
}
