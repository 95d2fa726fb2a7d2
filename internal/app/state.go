// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"maps"
	"strconv"
	"sync"
	"time"

	"github.com/j-veylop/onehub-analytics-tui/internal/analytics"
	"github.com/j-veylop/onehub-analytics-tui/internal/logger"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading flags per request slot.
type LoadingState struct {
	Initial bool
	Period  bool
	Summary bool
	Rate    bool
	Top     bool
}

// State is the controller state shared by the root model and the tabs.
// Fetch results are applied only through the Apply methods, which drop any
// result whose request token is no longer the latest for its slot.
type State struct {
	mu sync.RWMutex

	Query   models.Query
	Period  *services.PeriodResult
	Summary *analytics.Summary
	Rate    *models.RateSnapshot
	Top     *analytics.ChartBundle

	Loading LoadingState

	RateUpdated time.Time
	LastUpdated time.Time

	errors map[string]string
	tokens map[string]uint64

	notifications   []Notification
	notificationSeq int
}

// NewState creates the initial state for q.
func NewState(q models.Query) *State {
	return &State{
		Query:         q,
		errors:        make(map[string]string),
		tokens:        make(map[string]uint64),
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

func (s *State) setLoadingLocked(resource string, loading bool) {
	switch resource {
	case services.SlotPeriod:
		s.Loading.Period = loading
	case services.SlotSummary:
		s.Loading.Summary = loading
	case services.SlotRate:
		s.Loading.Rate = loading
	case services.SlotTop:
		s.Loading.Top = loading
	}
}

// IsLoading reports whether resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case "initial":
		return s.Loading.Initial
	case services.SlotPeriod:
		return s.Loading.Period
	case services.SlotSummary:
		return s.Loading.Summary
	case services.SlotRate:
		return s.Loading.Rate
	case services.SlotTop:
		return s.Loading.Top
	}
	return false
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Period ||
		s.Loading.Summary ||
		s.Loading.Rate ||
		s.Loading.Top
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns the slots with a request in flight, in slot order.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Period {
		resources = append(resources, services.SlotPeriod)
	}
	if s.Loading.Summary {
		resources = append(resources, services.SlotSummary)
	}
	if s.Loading.Rate {
		resources = append(resources, services.SlotRate)
	}
	if s.Loading.Top {
		resources = append(resources, services.SlotTop)
	}
	return resources
}

// BeginRequest issues a new token for slot and marks it loading. Any result
// carrying an older token will be discarded.
func (s *State) BeginRequest(slot string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[slot]++
	s.setLoadingLocked(slot, true)
	return s.tokens[slot]
}

// completeLocked clears the slot's loading flag if token is still the latest.
// It reports whether the result should be applied.
func (s *State) completeLocked(slot string, token uint64) bool {
	if s.tokens[slot] != token {
		logger.Debug("dropping stale result", "slot", slot, "token", token, "latest", s.tokens[slot])
		return false
	}
	s.setLoadingLocked(slot, false)
	s.Loading.Initial = false
	return true
}

func (s *State) recordLocked(slot string, err error) {
	if err != nil {
		s.errors[slot] = err.Error()
		return
	}
	delete(s.errors, slot)
	s.LastUpdated = time.Now()
}

// ApplyPeriod stores a period result. On error the slot is emptied.
func (s *State) ApplyPeriod(token uint64, res *services.PeriodResult, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.completeLocked(services.SlotPeriod, token) {
		return false
	}
	s.Period = nil
	if err == nil {
		s.Period = res
	}
	s.recordLocked(services.SlotPeriod, err)
	return true
}

// ApplySummary stores a summary result. On error the slot is emptied.
func (s *State) ApplySummary(token uint64, res *analytics.Summary, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.completeLocked(services.SlotSummary, token) {
		return false
	}
	s.Summary = nil
	if err == nil {
		s.Summary = res
	}
	s.recordLocked(services.SlotSummary, err)
	return true
}

// ApplyRate stores a manually refreshed rate snapshot.
func (s *State) ApplyRate(token uint64, res *models.RateSnapshot, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.completeLocked(services.SlotRate, token) {
		return false
	}
	s.Rate = nil
	if err == nil {
		s.Rate = res
		s.RateUpdated = time.Now()
	}
	s.recordLocked(services.SlotRate, err)
	return true
}

// ApplyTop stores a top spenders result. On error the slot is emptied.
func (s *State) ApplyTop(token uint64, res *analytics.ChartBundle, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.completeLocked(services.SlotTop, token) {
		return false
	}
	s.Top = nil
	if err == nil {
		s.Top = res
	}
	s.recordLocked(services.SlotTop, err)
	return true
}

// SetPolledRate stores a snapshot pushed by the background poller. Snapshots
// for a user other than the current query's are ignored.
func (s *State) SetPolledRate(userID int, snap *models.RateSnapshot, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID != s.Query.UserID || snap == nil {
		return false
	}
	s.Rate = snap
	s.RateUpdated = at
	delete(s.errors, services.SlotRate)
	return true
}

// RecordError stores err for slot without touching its data. It reports
// whether the stored message changed.
func (s *State) RecordError(slot string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := err.Error()
	if s.errors[slot] == msg {
		return false
	}
	s.errors[slot] = msg
	return true
}

// Error returns the last error message for slot.
func (s *State) Error(slot string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors[slot]
}

// Errors returns a copy of the per-slot error messages.
func (s *State) Errors() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.errors))
	maps.Copy(out, s.errors)
	return out
}

// GetQuery returns the current filters.
func (s *State) GetQuery() models.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Query
}

// SetQuery replaces the current filters.
func (s *State) SetQuery(q models.Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Query = q
}

// GetPeriod returns the period result.
func (s *State) GetPeriod() *services.PeriodResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Period
}

// GetSummary returns the rolling summary.
func (s *State) GetSummary() *analytics.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Summary
}

// GetRate returns the rate snapshot and when it was fetched.
func (s *State) GetRate() (*models.RateSnapshot, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Rate, s.RateUpdated
}

// GetTop returns the top spenders chart.
func (s *State) GetTop() *analytics.ChartBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Top
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + strconv.Itoa(s.notificationSeq)

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time a slot was successfully updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
