package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/onehub-analytics-tui/internal/analytics"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// Backend is the part of the service manager the application drives.
type Backend interface {
	FetchPeriod(ctx context.Context, q models.Query) (*services.PeriodResult, error)
	FetchSummary(ctx context.Context, userID int) (*analytics.Summary, error)
	FetchRate(ctx context.Context, userID int) (*models.RateSnapshot, error)
	FetchTop(ctx context.Context, q models.Query) (*analytics.ChartBundle, error)
	Query() models.Query
	SetQuery(q models.Query) error
	Subscribe() (chan services.ServiceEvent, tea.Cmd)
	Unsubscribe(ch chan services.ServiceEvent)
}

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

func fetchPeriodCmd(b Backend, q models.Query, token uint64) tea.Cmd {
	return func() tea.Msg {
		res, err := b.FetchPeriod(context.Background(), q)
		return PeriodLoadedMsg{Result: res, Err: err, Token: token}
	}
}

func fetchSummaryCmd(b Backend, userID int, token uint64) tea.Cmd {
	return func() tea.Msg {
		res, err := b.FetchSummary(context.Background(), userID)
		return SummaryLoadedMsg{Result: res, Err: err, Token: token}
	}
}

func fetchRateCmd(b Backend, userID int, token uint64) tea.Cmd {
	return func() tea.Msg {
		res, err := b.FetchRate(context.Background(), userID)
		return RateLoadedMsg{Result: res, Err: err, Token: token}
	}
}

func fetchTopCmd(b Backend, q models.Query, token uint64) tea.Cmd {
	return func() tea.Msg {
		res, err := b.FetchTop(context.Background(), q)
		return TopLoadedMsg{Result: res, Err: err, Token: token}
	}
}

// saveQueryCmd persists the filters; failures surface as an ErrorMsg.
func saveQueryCmd(b Backend, q models.Query) tea.Cmd {
	return func() tea.Msg {
		if err := b.SetQuery(q); err != nil {
			return ErrorMsg{Error: err, Context: "save filters"}
		}
		return nil
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(b Backend) tea.Cmd {
	ch, _ := b.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return delayedCmd(delay, RemoveNotificationMsg{ID: id})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// delayedCmd returns a command that sends a message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// Commands issues the backend requests of the application.
type Commands struct {
	backend Backend
}

// NewCommands creates a new Commands instance.
func NewCommands(b Backend) *Commands {
	return &Commands{backend: b}
}

// FetchPeriod returns a command that loads period statistics.
func (c *Commands) FetchPeriod(q models.Query, token uint64) tea.Cmd {
	return fetchPeriodCmd(c.backend, q, token)
}

// FetchSummary returns a command that loads the rolling summary.
func (c *Commands) FetchSummary(userID int, token uint64) tea.Cmd {
	return fetchSummaryCmd(c.backend, userID, token)
}

// FetchRate returns a command that refreshes the rate snapshot for userID.
func (c *Commands) FetchRate(userID int, token uint64) tea.Cmd {
	return fetchRateCmd(c.backend, userID, token)
}

// FetchTop returns a command that loads the top spenders.
func (c *Commands) FetchTop(q models.Query, token uint64) tea.Cmd {
	return fetchTopCmd(c.backend, q, token)
}

// SaveQuery returns a command that persists the filters.
func (c *Commands) SaveQuery(q models.Query) tea.Cmd {
	return saveQueryCmd(c.backend, q)
}

// Subscribe returns a command that subscribes to service events.
func (c *Commands) Subscribe() tea.Cmd {
	return subscribeToServicesCmd(c.backend)
}
