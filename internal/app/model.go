// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/onehub-analytics-tui/internal/api"
	"github.com/j-veylop/onehub-analytics-tui/internal/logger"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabOverview is the ID for the overview tab.
	TabOverview TabID = iota
	// TabUsers is the ID for the users and billing tab.
	TabUsers
	// TabInfo is the ID for the info tab.
	TabInfo
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabUsers:
		return "Users"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1        key.Binding
	Tab2        key.Binding
	Tab3        key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Search      key.Binding
	Refresh     key.Binding
	RefreshRate key.Binding
	Range       key.Binding
	Group       key.Binding
	User        key.Binding
	Help        key.Binding
	Quit        key.Binding
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Escape      key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	km = setFilterKeys(km)
	km = setNavigationKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "users"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "info"))
	k.NextTab = key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab/→", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab/←", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Search = key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter/s", "search"))
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh all"))
	k.RefreshRate = key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh rate"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	return k
}

func setFilterKeys(k KeyMap) KeyMap {
	k.Range = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "cycle date range"))
	k.Group = key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "cycle grouping"))
	k.User = key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "user id"))
	return k
}

func setNavigationKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Enter = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss"))
	k.PageUp = key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up"))
	k.PageDown = key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down"))
	k.Home = key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "go to top"))
	k.End = key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "go to bottom"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Range, k.Group, k.User, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3},
		{k.NextTab, k.PrevTab},
		{k.Range, k.Group, k.User, k.Search},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Refresh, k.RefreshRate, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar       lipgloss.Style
	ActiveTab    lipgloss.Style
	InactiveTab  lipgloss.Style
	TabSeparator lipgloss.Style
	FilterBar    lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Help    lipgloss.Style
	Spinner lipgloss.Style
	Toast   lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(styles.Subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(styles.Highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(styles.Subtle).Padding(0, 2)
	s.TabSeparator = lipgloss.NewStyle().Foreground(styles.Subtle).SetString(" | ")
	s.FilterBar = lipgloss.NewStyle().Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(styles.Success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(styles.Error).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(styles.Warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(styles.Info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(styles.Subtle).Padding(0, 1)
	s.Spinner = lipgloss.NewStyle().Foreground(styles.Highlight)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(styles.Highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(styles.Subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(styles.Highlight)
	s.Error = lipgloss.NewStyle().Foreground(styles.Error)
	s.Success = lipgloss.NewStyle().Foreground(styles.Success)
	s.Warning = lipgloss.NewStyle().Foreground(styles.Warning)

	return s
}

// Model is the main application model.
type Model struct {
	// Tab management
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	// Shared state
	state    *State
	services Backend
	commands *Commands
	keymap   KeyMap
	styles   Styles

	// UI components
	spinner   spinner.Model
	userInput textinput.Model

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp    bool
	ready       bool
	editingUser bool

	// Service subscription
	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model. b may be nil in tests.
func NewModel(b Backend) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	input := textinput.New()
	input.Placeholder = "0 = all users"
	input.CharLimit = 10
	input.Width = 12
	input.Prompt = "User ID: "
	input.Validate = validateUserID

	q := models.DefaultQuery()
	if b != nil {
		q = b.Query()
	}

	return &Model{
		activeTab: TabOverview,
		tabNames:  []string{"Overview", "Users", "Info"},
		tabs:      make([]Tab, 3), // Placeholder - tabs will be set externally
		state:     NewState(q),
		services:  b,
		commands:  NewCommands(b),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
		userInput: input,
	}
}

func validateUserID(s string) error {
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("user id must be a non-negative integer")
		}
	}
	return nil
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// Shutdown detaches the model from service events. It is called once the
// program has exited.
func (m *Model) Shutdown() {
	if m.services == nil || m.eventChannel == nil {
		return
	}
	m.services.Unsubscribe(m.eventChannel)
	m.eventChannel = nil
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, m.commands.Subscribe())
		cmds = append(cmds, m.search())
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := m.handleKeyMsg(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if handled {
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event))
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case PeriodLoadedMsg:
		cmds = append(cmds, m.finish(services.SlotPeriod, m.state.ApplyPeriod(msg.Token, msg.Result, msg.Err), msg.Err)...)
	case SummaryLoadedMsg:
		cmds = append(cmds, m.finish(services.SlotSummary, m.state.ApplySummary(msg.Token, msg.Result, msg.Err), msg.Err)...)
	case RateLoadedMsg:
		cmds = append(cmds, m.finish(services.SlotRate, m.state.ApplyRate(msg.Token, msg.Result, msg.Err), msg.Err)...)
	case TopLoadedMsg:
		cmds = append(cmds, m.finish(services.SlotTop, m.state.ApplyTop(msg.Token, msg.Result, msg.Err), msg.Err)...)
	case SearchMsg:
		cmds = append(cmds, m.search())
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh(msg))
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ErrorMsg:
		logger.Error("operation failed", "context", msg.Context, "error", msg.Error)
		cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("%s: %v", msg.Context, msg.Error)))
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

// finish handles a completed fetch. Stale results produce no commands.
func (m *Model) finish(slot string, applied bool, err error) []tea.Cmd {
	if !applied {
		return nil
	}

	m.updateLoadingNotification()

	cmds := []tea.Cmd{func() tea.Msg { return SlotUpdatedMsg{Slot: slot} }}
	if err != nil {
		logger.Error("fetch failed", "slot", slot, "error", err)
		cmds = append(cmds, notifyErrorCmd(describeError(slot, err)))
	}
	return cmds
}

// updateLoadingNotification names the slots still in flight, or removes the
// loading toast once none are.
func (m *Model) updateLoadingNotification() {
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
		return
	}
	pending := m.state.GetLoadingResources()
	if len(pending) == 0 {
		m.state.SetLoadingNotification("Loading...")
		return
	}
	m.state.SetLoadingNotification("Loading " + strings.Join(pending, ", ") + "...")
}

// describeError shows the server's message for application errors and a
// generic line for transport failures.
func describeError(slot string, err error) string {
	if apiErr, ok := api.AsError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Failed to load " + slot
	}
	return fmt.Sprintf("Failed to load %s: %v", slot, err)
}

// search issues fresh requests for every slot using the current filters.
func (m *Model) search() tea.Cmd {
	if m.services == nil {
		return nil
	}

	q := m.state.GetQuery()
	cmd := tea.Batch(
		m.commands.FetchPeriod(q, m.state.BeginRequest(services.SlotPeriod)),
		m.commands.FetchSummary(q.UserID, m.state.BeginRequest(services.SlotSummary)),
		m.commands.FetchRate(q.UserID, m.state.BeginRequest(services.SlotRate)),
		m.commands.FetchTop(q, m.state.BeginRequest(services.SlotTop)),
	)
	m.updateLoadingNotification()
	return cmd
}

func (m *Model) refreshRate() tea.Cmd {
	if m.services == nil {
		return nil
	}
	return m.commands.FetchRate(m.state.GetQuery().UserID, m.state.BeginRequest(services.SlotRate))
}

func (m *Model) handleRefresh(msg RefreshMsg) tea.Cmd {
	switch msg.Resource {
	case services.SlotRate:
		return m.refreshRate()
	default:
		return m.search()
	}
}

// setQuery updates and persists the filters without fetching.
func (m *Model) setQuery(q models.Query) tea.Cmd {
	m.state.SetQuery(q)
	changed := func() tea.Msg { return QueryChangedMsg{Query: q} }
	if m.services == nil {
		return changed
	}
	return tea.Batch(m.commands.SaveQuery(q), changed)
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	contentHeight := m.height - 6
	contentHeight = max(0, contentHeight)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

// handleKeyMsg handles keyboard input. It reports whether the key was
// consumed and must not reach the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.editingUser {
		return m.handleUserInput(msg), true
	}

	switch {
	case msg.String() == "ctrl+c", key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return nil, true
		}
		if len(m.state.GetNotifications()) > 0 {
			m.state.ClearAllNotifications()
			return nil, true
		}
		return nil, false

	case key.Matches(msg, m.keymap.Tab1):
		return m.switchTab(TabOverview), true

	case key.Matches(msg, m.keymap.Tab2):
		return m.switchTab(TabUsers), true

	case key.Matches(msg, m.keymap.Tab3):
		return m.switchTab(TabInfo), true

	case key.Matches(msg, m.keymap.NextTab):
		if m.showHelp || len(m.tabs) == 0 {
			return nil, true
		}
		return m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs))), true

	case key.Matches(msg, m.keymap.PrevTab):
		if m.showHelp || len(m.tabs) == 0 {
			return nil, true
		}
		return m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs))), true

	case key.Matches(msg, m.keymap.Search), key.Matches(msg, m.keymap.Refresh):
		return m.search(), true

	case key.Matches(msg, m.keymap.RefreshRate):
		return m.refreshRate(), true

	case key.Matches(msg, m.keymap.Range):
		q := m.state.GetQuery()
		q.Range = q.Range.Next()
		return m.setQuery(q), true

	case key.Matches(msg, m.keymap.Group):
		q := m.state.GetQuery()
		q.Group = q.Group.Next()
		return m.setQuery(q), true

	case key.Matches(msg, m.keymap.User):
		m.editingUser = true
		m.userInput.SetValue(strconv.Itoa(m.state.GetQuery().UserID))
		m.userInput.CursorEnd()
		return m.userInput.Focus(), true
	}

	return nil, false
}

func (m *Model) switchTab(tab TabID) tea.Cmd {
	m.activeTab = tab
	m.updateTabSizes()
	return func() tea.Msg { return TabSwitchMsg{Tab: tab} }
}

func (m *Model) handleUserInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyEsc:
		m.editingUser = false
		m.userInput.Blur()
		return nil

	case msg.Type == tea.KeyEnter:
		m.editingUser = false
		m.userInput.Blur()

		raw := strings.TrimSpace(m.userInput.Value())
		if raw == "" {
			raw = "0"
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id < 0 {
			return notifyErrorCmd(fmt.Sprintf("Invalid user id %q", raw))
		}
		q := m.state.GetQuery()
		q.UserID = id
		return tea.Batch(m.setQuery(q), m.search())
	}

	var cmd tea.Cmd
	m.userInput, cmd = m.userInput.Update(msg)
	return cmd
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.RateUpdatedEvent:
		if m.state.SetPolledRate(e.UserID, e.Snapshot, e.At) {
			return func() tea.Msg { return SlotUpdatedMsg{Slot: services.SlotRate} }
		}

	case services.FiltersChangedEvent:
		if e.Query == m.state.GetQuery() {
			return nil
		}
		m.state.SetQuery(e.Query)
		return tea.Batch(
			func() tea.Msg { return QueryChangedMsg{Query: e.Query} },
			notifyInfoCmd("Filters reloaded from disk"),
			m.search(),
		)

	case services.ErrorEvent:
		if e.Error == nil {
			return nil
		}
		logger.Warn("service error", "service", e.Service, "error", e.Error)
		if e.Service == services.SlotRate {
			// A manual refresh in flight reports its own failure.
			if m.state.IsLoading(services.SlotRate) || !m.state.RecordError(services.SlotRate, e.Error) {
				return nil
			}
			return notifyWarningCmd(describeError(services.SlotRate, e.Error))
		}
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
		b.WriteString(m.renderFilterBar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) renderFilterBar() string {
	if m.editingUser {
		return m.styles.FilterBar.Render(m.userInput.View() + m.styles.Subtle.Render("  enter apply · esc cancel"))
	}

	q := m.state.GetQuery()
	user := "all users"
	if q.UserID > 0 {
		user = fmt.Sprintf("user %d", q.UserID)
	}

	parts := []string{
		m.styles.Subtle.Render("Range ") + m.styles.Highlight.Render(q.Range.String()),
		m.styles.Subtle.Render("Group ") + m.styles.Highlight.Render(q.Group.String()),
		m.styles.Subtle.Render("User ") + m.styles.Highlight.Render(user),
	}

	if p := m.state.GetPeriod(); p != nil && p.Query != q {
		parts = append(parts, m.styles.Warning.Render("press enter to search"))
	}

	return m.styles.FilterBar.Render(strings.Join(parts, m.styles.Subtle.Render("  │  ")))
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	y := max((m.height-overlayHeight)/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]

		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, "  1-3        Switch tabs")
	lines = append(lines, "  Tab        Next tab")
	lines = append(lines, "  Shift+Tab  Previous tab")
	lines = append(lines, "  j/k, ↑/↓   Scroll")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Filters"))
	lines = append(lines, "  d          Cycle date range")
	lines = append(lines, "  g          Cycle grouping")
	lines = append(lines, "  u          Edit user id")
	lines = append(lines, "  Enter/s    Search")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Actions"))
	lines = append(lines, "  r          Refresh all")
	lines = append(lines, "  R          Refresh rate")
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  Esc        Dismiss notifications")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		tabHelp := m.tabs[m.activeTab].ShortHelp()
		if len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.tabNames[m.activeTab])))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.tabNames[m.activeTab],
		m.styles.Subtle.Render("This tab is not yet implemented."),
	)
	return m.styles.Content.Render(content)
}
