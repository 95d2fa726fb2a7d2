package app

import (
	"time"

	"github.com/j-veylop/onehub-analytics-tui/internal/analytics"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// PeriodLoadedMsg carries the result of a period statistics request.
type PeriodLoadedMsg struct {
	Result *services.PeriodResult
	Err    error
	Token  uint64
}

// SummaryLoadedMsg carries the result of a rolling summary request.
type SummaryLoadedMsg struct {
	Result *analytics.Summary
	Err    error
	Token  uint64
}

// RateLoadedMsg carries the result of a manual rate refresh.
type RateLoadedMsg struct {
	Result *models.RateSnapshot
	Err    error
	Token  uint64
}

// TopLoadedMsg carries the result of a top spenders request.
type TopLoadedMsg struct {
	Result *analytics.ChartBundle
	Err    error
	Token  uint64
}

// SlotUpdatedMsg tells the tabs that a slot's data changed.
type SlotUpdatedMsg struct {
	Slot string
}

// SearchMsg requests fetching every slot for the current filters.
type SearchMsg struct{}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all" or a slot name
}

// QueryChangedMsg signals that the filters changed.
type QueryChangedMsg struct {
	Query models.Query
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
