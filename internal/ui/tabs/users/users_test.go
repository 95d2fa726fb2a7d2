package users

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/onehub-analytics-tui/internal/app"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
)

var testNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

type fakeAnalytics struct{}

func (fakeAnalytics) GetPeriodStatistics(context.Context, time.Time, time.Time, models.GroupType, int) (*models.PeriodStatistics, error) {
	return &models.PeriodStatistics{
		ChannelStatistics: []models.ChannelStatistic{
			{Date: "2024-05-10", Channel: "gpt-4", Quota: 1000000, PromptTokens: 300, CompletionTokens: 200, RequestCount: 4, RequestTime: 6000},
			{Date: "2024-05-10", Channel: "claude", Quota: 250000, PromptTokens: 10, CompletionTokens: 5, RequestCount: 1, RequestTime: 500},
		},
		UserStatistics:       []models.UserStatistic{{Date: "2024-05-10", UserCount: 4}},
		RedemptionStatistics: []models.RedemptionStatistic{{Date: "2024-05-10", Quota: 500000, UserCount: 1}},
		OrderStatistics:      []models.OrderStatistic{{Date: "2024-05-10", OrderAmount: 12.5}},
	}, nil
}

func (fakeAnalytics) GetSummary(context.Context, int, time.Time, time.Time) ([]models.SummaryStatistic, error) {
	return nil, nil
}

func (fakeAnalytics) GetRate(context.Context, int) (*models.RateSnapshot, error) {
	return &models.RateSnapshot{}, nil
}

func (fakeAnalytics) GetTopUserQuota(context.Context, time.Time, time.Time) ([]models.TopUserQuota, error) {
	return []models.TopUserQuota{
		{Date: "2024-05-10", Username: "alice", Quota: 250000},
		{Date: "2024-05-10", Username: "bob", Quota: 100000},
	}, nil
}

func newLoadedState(t *testing.T) *app.State {
	t.Helper()

	q := models.DefaultQuery()
	state := app.NewState(q)

	period, err := services.LoadPeriod(context.Background(), fakeAnalytics{}, q, testNow)
	require.NoError(t, err)
	require.True(t, state.ApplyPeriod(state.BeginRequest(services.SlotPeriod), period, nil))

	top, err := services.LoadTop(context.Background(), fakeAnalytics{}, q, testNow)
	require.NoError(t, err)
	require.True(t, state.ApplyTop(state.BeginRequest(services.SlotTop), top, nil))

	return state
}

func pressKey(m *Model, r rune) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func TestNew(t *testing.T) {
	m := New(app.NewState(models.DefaultQuery()))
	require.NotNil(t, m)
	assert.Nil(t, m.Init())
	assert.Equal(t, SectionCharts, m.section)
}

func TestView_Charts(t *testing.T) {
	m := New(newLoadedState(t))
	m.SetSize(120, 200)

	view := ansi.Strip(m.View())

	assert.Contains(t, view, "Users & Billing")
	assert.Contains(t, view, "[v] Charts")
	assert.Contains(t, view, "Data: 2024-05-10 → 2024-05-10 (1 days)")
	assert.Contains(t, view, "Top spenders")
	assert.Contains(t, view, "alice")
	assert.Contains(t, view, "bob")
	assert.Contains(t, view, "总兑换：$1.000")
	assert.Contains(t, view, "总注册人数：4")
	assert.Contains(t, view, "总充值数：12.5")
}

func TestView_Log(t *testing.T) {
	m := New(newLoadedState(t))
	m.SetSize(120, 200)

	pressKey(m, 'v')
	require.Equal(t, SectionLog, m.section)

	view := ansi.Strip(m.View())

	assert.Contains(t, view, "[v] Consumption log")
	assert.Contains(t, view, "2024-05-10  $2.500  515 tokens  5 requests")
	assert.Contains(t, view, "Category")
	assert.Contains(t, view, "gpt-4")
	assert.Contains(t, view, "$2.000")
	assert.Contains(t, view, "1.500s")

	pressKey(m, 'v')
	assert.Equal(t, SectionCharts, m.section)
}

func TestView_Empty(t *testing.T) {
	m := New(app.NewState(models.DefaultQuery()))
	m.SetSize(100, 40)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "No data available")

	pressKey(m, 'v')
	assert.Contains(t, ansi.Strip(m.View()), "No data available")
}

func TestView_Loading(t *testing.T) {
	state := app.NewState(models.DefaultQuery())
	state.BeginRequest(services.SlotPeriod)
	state.BeginRequest(services.SlotTop)

	m := New(state)
	m.SetSize(100, 40)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Loading top spenders...")
	assert.Contains(t, view, "Loading period statistics...")
}

func TestView_Errors(t *testing.T) {
	state := app.NewState(models.DefaultQuery())
	require.True(t, state.ApplyPeriod(state.BeginRequest(services.SlotPeriod), nil, errors.New("period failed")))
	require.True(t, state.ApplyTop(state.BeginRequest(services.SlotTop), nil, errors.New("top failed")))

	m := New(state)
	m.SetSize(100, 40)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "⚠ top failed")
	assert.Contains(t, view, "⚠ period failed")
}

func TestUpdate_SlotUpdated(t *testing.T) {
	m := New(newLoadedState(t))
	updated, cmd := m.Update(app.SlotUpdatedMsg{Slot: services.SlotPeriod})

	assert.Same(t, m, updated)
	assert.Nil(t, cmd)
}

func TestSectionString(t *testing.T) {
	assert.Equal(t, "Charts", SectionCharts.String())
	assert.Equal(t, "Consumption log", SectionLog.String())
}

func TestHelp(t *testing.T) {
	m := New(app.NewState(models.DefaultQuery()))
	assert.Len(t, m.ShortHelp(), 3)
	assert.Len(t, m.FullHelp(), 2)
}
