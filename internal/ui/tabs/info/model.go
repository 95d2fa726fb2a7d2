// Package info provides the info tab: configuration, build details, recorded
// rate history and request health.
package info

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/onehub-analytics-tui/internal/app"
	"github.com/j-veylop/onehub-analytics-tui/internal/config"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
)

// Windows of recorded history shown on the tab.
const (
	HistoryWindow = 6 * time.Hour
	StatsWindow   = 24 * time.Hour
	loadTimeout   = 5 * time.Second
)

// Source provides the recorded history shown on the tab. *services.Manager
// satisfies it.
type Source interface {
	Config() *config.Config
	FiltersPath() string
	RateHistory(ctx context.Context, window time.Duration) ([]models.RateSample, error)
	PeakRPM(ctx context.Context, window time.Duration) (int64, error)
	FetchStats(ctx context.Context, window time.Duration) ([]models.FetchStats, error)
	LatestRate() (*models.RateSnapshot, time.Time)
}

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	Reload key.Binding
	Up     key.Binding
	Down   key.Binding
}

// defaultKeyMap returns the default key bindings for the info tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Reload: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "reload history"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// historyLoadedMsg carries the recorded history read from the database.
type historyLoadedMsg struct {
	err     error
	samples []models.RateSample
	stats   []models.FetchStats
	peak    int64
}

// Model represents the info tab state.
type Model struct {
	state    *app.State
	source   Source
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	samples  []models.RateSample
	stats    []models.FetchStats
	peak     int64
	errorMsg string
	loaded   bool
}

// New creates a new info model. source may be nil.
func New(state *app.State, source Source) *Model {
	return &Model{
		state:    state,
		source:   source,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init loads the recorded history.
func (m *Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m *Model) loadCmd() tea.Cmd {
	if m.source == nil {
		return nil
	}
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var msg historyLoadedMsg
		msg.samples, msg.err = source.RateHistory(ctx, HistoryWindow)
		if msg.err != nil {
			return msg
		}
		msg.peak, msg.err = source.PeakRPM(ctx, HistoryWindow)
		if msg.err != nil {
			return msg
		}
		msg.stats, msg.err = source.FetchStats(ctx, StatsWindow)
		return msg
	}
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.samples = msg.samples
		m.peak = msg.peak
		m.stats = msg.stats

	case app.TabSwitchMsg:
		if msg.Tab == app.TabInfo {
			return m, m.loadCmd()
		}

	case app.SlotUpdatedMsg:
		if msg.Slot == services.SlotRate {
			return m, m.loadCmd()
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Reload) {
			return m, m.loadCmd()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Reload}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Reload},
		{m.keys.Up, m.keys.Down},
	}
}
