package info

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/onehub-analytics-tui/internal/analytics"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/components"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/styles"
	"github.com/j-veylop/onehub-analytics-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderRateHistoryCard(),
		m.renderFetchStatsCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return lipgloss.NewStyle().
		Padding(0, 1).
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, recorded history and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderConfigCard renders the configuration card.
func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.source == nil || m.source.Config() == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		cfg := m.source.Config()
		token := "not set"
		if cfg.AccessToken != "" {
			token = "set"
		}
		alert := "disabled"
		if cfg.RateAlertThreshold > 0 {
			alert = fmt.Sprintf("%.0f%% RPM", cfg.RateAlertThreshold)
		}
		poll := "disabled"
		if cfg.RatePollInterval > 0 {
			poll = cfg.RatePollInterval.String()
		}

		rows = append(rows,
			m.renderConfigRow("Gateway", cfg.BaseURL),
			m.renderConfigRow("Access Token", token),
			m.renderConfigRow("Filters File", m.source.FiltersPath()),
			m.renderConfigRow("Database", cfg.DatabasePath),
			m.renderConfigRow("Log File", cfg.LogPath+" ("+cfg.LogLevel+")"),
			m.renderConfigRow("Request Timeout", cfg.RequestTimeout.String()),
			m.renderConfigRow("Rate Polling", poll),
			m.renderConfigRow("Rate Alert", alert),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderRateHistoryCard renders the recorded RPM sparkline.
func (m *Model) renderRateHistoryCard() string {
	rows := []string{
		styles.CardTitleStyle.Render(fmt.Sprintf("Rate history (last %s)", formatWindow(HistoryWindow))),
		"",
	}

	switch {
	case m.errorMsg != "":
		rows = append(rows, styles.ErrorTextStyle.Render("Error: "+m.errorMsg))
	case !m.loaded:
		rows = append(rows, styles.HelpStyle.Render("Loading history..."))
	case len(m.samples) == 0:
		rows = append(rows, styles.HelpStyle.Render("No samples recorded yet."))
	default:
		rpm := make([]float64, len(m.samples))
		var limit float64
		for i, s := range m.samples {
			rpm[i] = float64(s.RPM)
			limit = max(limit, float64(s.MaxRPM))
		}
		last := m.samples[len(m.samples)-1]

		rows = append(rows,
			components.RenderColoredSparkline(rpm, limit, m.cardWidth()-6),
			"",
			m.renderConfigRow("Samples", strconv.Itoa(len(m.samples))),
			m.renderConfigRow("Peak RPM", strconv.FormatInt(m.peak, 10)),
			m.renderConfigRow("Last Sample", fmt.Sprintf("%d RPM at %s", last.RPM, last.RecordedAt.Local().Format("15:04:05"))),
		)
	}

	if m.source != nil {
		if snap, at := m.source.LatestRate(); snap != nil {
			rows = append(rows, m.renderConfigRow("Last Poll",
				fmt.Sprintf("%s at %s", analytics.DescribeRate(*snap).RPMText, at.Local().Format("15:04:05"))))
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderFetchStatsCard renders per-slot request health.
func (m *Model) renderFetchStatsCard() string {
	rows := []string{
		styles.CardTitleStyle.Render(fmt.Sprintf("Requests (last %s)", formatWindow(StatsWindow))),
		"",
	}

	if len(m.stats) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No requests recorded yet."))
	}

	for _, s := range m.stats {
		status := styles.SuccessTextStyle.Render("ok")
		if s.FailedFetches > 0 {
			status = styles.WarningTextStyle.Render(fmt.Sprintf("%d failed", s.FailedFetches))
		}
		line := fmt.Sprintf("%d requests, avg %.0fms, %s", s.TotalFetches, s.AvgDurationMs, status)
		rows = append(rows, m.renderConfigRow(s.Slot, line))
		if s.LastError != "" {
			rows = append(rows, styles.ErrorTextStyle.Render("  last error: "+s.LastError))
		}
	}

	// Errors currently shown in the other tabs.
	errs := m.state.Errors()
	for _, slot := range services.Slots {
		if errMsg := errs[slot]; errMsg != "" {
			rows = append(rows, styles.ErrorTextStyle.Render(fmt.Sprintf("  %s: %s", slot, errMsg)))
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About OneHub Analytics TUI"),
		"",
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	if updated := m.state.GetLastUpdated(); !updated.IsZero() {
		rows = append(rows, "", fmt.Sprintf("Last update: %s (%s ago)",
			styles.InfoTextStyle.Render(updated.Local().Format("2006-01-02 15:04:05")),
			m.state.TimeSinceUpdate().Round(time.Second)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatWindow(d time.Duration) string {
	return fmt.Sprintf("%.0fh", d.Hours())
}
