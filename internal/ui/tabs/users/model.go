// Package users provides the users tab: top spenders, redemptions,
// registrations, recharge orders and the daily consumption log.
package users

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/onehub-analytics-tui/internal/app"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
)

// Section selects what the users tab shows.
type Section int

const (
	// SectionCharts shows the top spenders and billing charts.
	SectionCharts Section = iota
	// SectionLog shows the per-day consumption log.
	SectionLog
)

// String returns the display name of the section.
func (s Section) String() string {
	if s == SectionLog {
		return "Consumption log"
	}
	return "Charts"
}

// keyMap defines the key bindings specific to the users tab.
type keyMap struct {
	ToggleSection key.Binding
	Up            key.Binding
	Down          key.Binding
}

// defaultKeyMap returns the default key bindings for the users tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleSection: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "charts/log"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the users tab state.
type Model struct {
	state    *app.State
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model
	section  Section
}

// New creates a new users model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the users tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the users tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.SlotUpdatedMsg:
		// New period data invalidates the scroll position of the log.
		if msg.Slot == services.SlotPeriod && m.section == SectionLog {
			m.viewport.GotoTop()
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	if key.Matches(msg, m.keys.ToggleSection) {
		if m.section == SectionCharts {
			m.section = SectionLog
		} else {
			m.section = SectionCharts
		}
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize sets the available size for the users tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleSection,
		m.keys.Up,
		m.keys.Down,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleSection},
		{m.keys.Up, m.keys.Down},
	}
}
