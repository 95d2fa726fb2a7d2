package info

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
	"github.com/j-veylop/onehub-analytics-tui/internal/config"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
)

type fakeSource struct {
	cfg     *config.Config
	samples []models.RateSample
	stats   []models.FetchStats
	peak    int64
	err     error
	windows []time.Duration
	latest  *models.RateSnapshot
}

func (f *fakeSource) Config() *config.Config { return f.cfg }
func (f *fakeSource) FiltersPath() string    { return "/tmp/oat/filters.json" }

func (f *fakeSource) RateHistory(_ context.Context, window time.Duration) ([]models.RateSample, error) {
	f.windows = append(f.windows, window)
	return f.samples, f.err
}

func (f *fakeSource) PeakRPM(_ context.Context, window time.Duration) (int64, error) {
	f.windows = append(f.windows, window)
	return f.peak, nil
}

func (f *fakeSource) FetchStats(_ context.Context, window time.Duration) ([]models.FetchStats, error) {
	f.windows = append(f.windows, window)
	return f.stats, nil
}

func (f *fakeSource) LatestRate() (*models.RateSnapshot, time.Time) {
	return f.latest, time.Date(2024, 5, 10, 12, 30, 0, 0, time.Local)
}

func newSource() *fakeSource {
	return &fakeSource{
		cfg: &config.Config{
			BaseURL:            "https://gateway.example.com",
			AccessToken:        "secret",
			DatabasePath:       "/tmp/oat/analytics.db",
			LogPath:            "/tmp/oat/oat.log",
			LogLevel:           "debug",
			RequestTimeout:     30 * time.Second,
			RatePollInterval:   15 * time.Second,
			RateAlertThreshold: 80,
		},
		samples: []models.RateSample{
			{RPM: 10, MaxRPM: 60, RecordedAt: time.Now().Add(-time.Minute)},
			{RPM: 30, MaxRPM: 60, RecordedAt: time.Now()},
		},
		peak:   30,
		latest: &models.RateSnapshot{RPM: 25, MaxRPM: 60},
		stats: []models.FetchStats{
			{Slot: services.SlotPeriod, TotalFetches: 4, FailedFetches: 1, AvgDurationMs: 120, LastError: "timeout"},
			{Slot: services.SlotRate, TotalFetches: 10, AvgDurationMs: 40},
		},
	}
}

// load runs the model's load command and feeds the result back.
func load(t *testing.T, m *Model) {
	t.Helper()
	cmd := m.Init()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func TestNew(t *testing.T) {
	m := New(app.NewState(models.DefaultQuery()), nil)
	require.NotNil(t, m)
	assert.Nil(t, m.Init())
}

func TestView_WithoutSource(t *testing.T) {
	m := New(app.NewState(models.DefaultQuery()), nil)
	m.SetSize(100, 80)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Configuration not loaded")
	assert.Contains(t, view, "Loading history...")
	assert.Contains(t, view, "About OneHub Analytics TUI")
}

func TestLoadAndView(t *testing.T) {
	src := newSource()
	m := New(app.NewState(models.DefaultQuery()), src)
	m.SetSize(120, 120)

	load(t, m)
	assert.Equal(t, []time.Duration{HistoryWindow, HistoryWindow, StatsWindow}, src.windows)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "https://gateway.example.com")
	assert.Contains(t, view, "Access Token:")
	assert.NotContains(t, view, "secret")
	assert.Contains(t, view, "/tmp/oat/filters.json")
	assert.Contains(t, view, "80% RPM")
	assert.Contains(t, view, "Rate history (last 6h)")
	assert.Contains(t, view, "Peak RPM:")
	assert.Contains(t, view, "30 RPM at")
	assert.Contains(t, view, "Last Poll:")
	assert.Contains(t, view, "25 / 60 RPM at 12:30:00")
	assert.Contains(t, view, "4 requests, avg 120ms, 1 failed")
	assert.Contains(t, view, "last error: timeout")
	assert.Contains(t, view, "10 requests, avg 40ms, ok")
}

func TestLoadError(t *testing.T) {
	src := newSource()
	src.err = errors.New("database is locked")
	m := New(app.NewState(models.DefaultQuery()), src)
	m.SetSize(120, 120)

	load(t, m)
	assert.Len(t, src.windows, 1)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Error: database is locked")
}

func TestView_NoSamples(t *testing.T) {
	src := newSource()
	src.samples = nil
	src.stats = nil
	m := New(app.NewState(models.DefaultQuery()), src)
	m.SetSize(120, 120)

	load(t, m)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "No samples recorded yet.")
	assert.Contains(t, view, "No requests recorded yet.")
	assert.Contains(t, view, "25 / 60 RPM at 12:30:00")
}

func TestView_SlotErrors(t *testing.T) {
	state := app.NewState(models.DefaultQuery())
	state.ApplyTop(state.BeginRequest(services.SlotTop), nil, errors.New("forbidden"))

	m := New(state, newSource())
	m.SetSize(120, 120)

	assert.Contains(t, ansi.Strip(m.View()), "top: forbidden")
}

func TestUpdate_Reloads(t *testing.T) {
	m := New(app.NewState(models.DefaultQuery()), newSource())

	_, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabInfo})
	assert.NotNil(t, cmd)

	_, cmd = m.Update(app.TabSwitchMsg{Tab: app.TabOverview})
	assert.Nil(t, cmd)

	_, cmd = m.Update(app.SlotUpdatedMsg{Slot: services.SlotRate})
	assert.NotNil(t, cmd)

	_, cmd = m.Update(app.SlotUpdatedMsg{Slot: services.SlotTop})
	assert.Nil(t, cmd)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'H'}})
	assert.NotNil(t, cmd)
}

func TestHelp(t *testing.T) {
	m := New(app.NewState(models.DefaultQuery()), nil)
	assert.Len(t, m.ShortHelp(), 1)
	assert.Len(t, m.FullHelp(), 2)
}

func TestFormatWindow(t *testing.T) {
	assert.Equal(t, "6h", formatWindow(6*time.Hour))
	assert.Equal(t, "24h", formatWindow(StatsWindow))
}

func TestView_LastUpdate(t *testing.T) {
	state := app.NewState(models.DefaultQuery())
	m := New(state, newSource())
	m.SetSize(120, 120)
	assert.NotContains(t, ansi.Strip(m.View()), "Last update:")

	state.ApplyRate(state.BeginRequest(services.SlotRate), &models.RateSnapshot{RPM: 1}, nil)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Last update:")
	assert.Contains(t, view, "s ago)")
}
