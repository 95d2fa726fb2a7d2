package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/onehub-analytics-tui/internal/analytics"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
)

// fakeBackend records the calls made by the application.
type fakeBackend struct {
	mu      sync.Mutex
	query   models.Query
	saved   []models.Query
	saveErr error
	fetched []string
	rateFor []int
	err     error
	events  chan services.ServiceEvent
	unsubs  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		query:  models.DefaultQuery(),
		events: make(chan services.ServiceEvent, 4),
	}
}

func (f *fakeBackend) record(slot string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, slot)
}

func (f *fakeBackend) FetchPeriod(_ context.Context, q models.Query) (*services.PeriodResult, error) {
	f.record(services.SlotPeriod)
	if f.err != nil {
		return nil, f.err
	}
	return &services.PeriodResult{Query: q}, nil
}

func (f *fakeBackend) FetchSummary(_ context.Context, _ int) (*analytics.Summary, error) {
	f.record(services.SlotSummary)
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.Summary{}, nil
}

func (f *fakeBackend) FetchRate(_ context.Context, userID int) (*models.RateSnapshot, error) {
	f.record(services.SlotRate)
	f.mu.Lock()
	f.rateFor = append(f.rateFor, userID)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &models.RateSnapshot{RPM: 12, MaxRPM: 60}, nil
}

func (f *fakeBackend) FetchTop(_ context.Context, _ models.Query) (*analytics.ChartBundle, error) {
	f.record(services.SlotTop)
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.ChartBundle{Title: "top"}, nil
}

func (f *fakeBackend) Query() models.Query { return f.query }

func (f *fakeBackend) SetQuery(q models.Query) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, q)
	return nil
}

func (f *fakeBackend) Subscribe() (chan services.ServiceEvent, tea.Cmd) {
	return f.events, nil
}

func (f *fakeBackend) Unsubscribe(ch chan services.ServiceEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch == f.events {
		f.unsubs++
	}
}

func TestTickCmd(t *testing.T) {
	msg, ok := tickCmd(time.Millisecond)().(TickMsg)
	require.True(t, ok)
	assert.False(t, msg.Time.IsZero())
	assert.NotNil(t, defaultTickCmd())
}

func TestNotifyCmds(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(string) tea.Cmd
		want     NotificationType
		duration time.Duration
	}{
		{"Error", notifyErrorCmd, NotificationError, LongNotificationDuration},
		{"Warning", notifyWarningCmd, NotificationWarning, DefaultNotificationDuration},
		{"Info", notifyInfoCmd, NotificationInfo, QuickNotificationDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := tt.fn("msg")().(AddNotificationMsg)
			require.True(t, ok)
			assert.Equal(t, tt.want, msg.Type)
			assert.Equal(t, "msg", msg.Message)
			assert.Equal(t, tt.duration, msg.Duration)
		})
	}
}

func TestClearNotificationCmd(t *testing.T) {
	msg, ok := clearNotificationCmd("n1", time.Millisecond)().(RemoveNotificationMsg)
	require.True(t, ok)
	assert.Equal(t, "n1", msg.ID)
}

func TestCommands_FetchCarriesToken(t *testing.T) {
	b := newFakeBackend()
	cmds := NewCommands(b)
	q := models.Query{Group: models.GroupChannel, Range: models.Range7Days, UserID: 4}

	period, ok := cmds.FetchPeriod(q, 3)().(PeriodLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(3), period.Token)
	assert.Equal(t, q, period.Result.Query)
	assert.NoError(t, period.Err)

	summary, ok := cmds.FetchSummary(q.UserID, 4)().(SummaryLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(4), summary.Token)

	rate, ok := cmds.FetchRate(q.UserID, 5)().(RateLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(5), rate.Token)
	assert.Equal(t, models.Int(12), rate.Result.RPM)
	assert.Equal(t, []int{4}, b.rateFor)

	top, ok := cmds.FetchTop(q, 6)().(TopLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(6), top.Token)

	assert.Equal(t, []string{services.SlotPeriod, services.SlotSummary, services.SlotRate, services.SlotTop}, b.fetched)
}

func TestCommands_FetchError(t *testing.T) {
	b := newFakeBackend()
	b.err = errors.New("connection refused")

	msg, ok := NewCommands(b).FetchTop(models.DefaultQuery(), 1)().(TopLoadedMsg)
	require.True(t, ok)
	assert.Nil(t, msg.Result)
	assert.EqualError(t, msg.Err, "connection refused")
}

func TestSaveQueryCmd(t *testing.T) {
	b := newFakeBackend()
	q := models.Query{Group: models.GroupModel, Range: models.Range30Days}

	assert.Nil(t, NewCommands(b).SaveQuery(q)())
	assert.Equal(t, []models.Query{q}, b.saved)

	b.saveErr = errors.New("read-only file system")
	msg, ok := NewCommands(b).SaveQuery(q)().(ErrorMsg)
	require.True(t, ok)
	assert.Equal(t, "save filters", msg.Context)
}

func TestServiceSubscription(t *testing.T) {
	b := newFakeBackend()

	sub, ok := NewCommands(b).Subscribe()().(SubscriptionEventMsg)
	require.True(t, ok)

	b.events <- services.FiltersChangedEvent{Query: models.DefaultQuery()}
	msg, ok := waitForServiceEventCmd(sub.Channel)().(ServiceEventMsg)
	require.True(t, ok)
	assert.IsType(t, services.FiltersChangedEvent{}, msg.Event)

	close(b.events)
	assert.Nil(t, waitForServiceEventCmd(sub.Channel)())
}
