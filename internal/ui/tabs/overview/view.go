package overview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/onehub-analytics-tui/internal/analytics"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/components"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/styles"
)

const (
	chartHeight = 8
	// chartMargin leaves room for the y-axis labels and card borders.
	chartMargin = 16
)

// View renders the overview tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	sections := []string{
		m.renderSummaryCards(),
		m.renderRateCard(),
		m.renderCharts(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return lipgloss.NewStyle().
		Padding(0, 1).
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

// renderSummaryCards renders the rolling seven-day request, cost and token
// cards side by side.
func (m *Model) renderSummaryCards() string {
	title := m.sectionTitle("◈", "Last 7 days", services.SlotSummary)

	summary := m.state.GetSummary()
	if summary == nil {
		body := components.LoadingOr(m.spinner, m.state.IsLoading(services.SlotSummary),
			styles.HelpStyle.Render(components.NoDataText))
		return lipgloss.JoinVertical(lipgloss.Left, title, body, "")
	}

	width := max(m.cardWidth()/3-2, 24)
	cards := []string{
		m.renderSummaryCard(summary.Requests, styles.Requests, width),
		m.renderSummaryCard(summary.Cost, styles.Cost, width),
		m.renderSummaryCard(summary.Tokens, styles.Tokens, width),
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
		"",
	)
}

func (m *Model) renderSummaryCard(card analytics.SummaryCard, color lipgloss.Color, width int) string {
	accent := lipgloss.NewStyle().Foreground(color)

	spark := accent.Render(components.RenderSparkline(card.Values, analytics.SummaryDays))
	lines := []string{
		styles.CardTitleStyle.Render(card.Title),
		styles.ValueStyle.Render(card.TodayText) + styles.HelpStyle.Render(" today"),
		styles.HelpStyle.Render("yesterday ") + card.YesterdayText,
		spark + " " + trend(card.Today, card.Yesterday),
	}

	return styles.CardStyle.
		BorderForeground(color).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// trend compares today with yesterday.
func trend(today, yesterday float64) string {
	switch {
	case yesterday == 0 && today == 0:
		return styles.HelpStyle.Render("–")
	case yesterday == 0:
		return styles.WarningTextStyle.Render("▲ new")
	}
	change := (today - yesterday) / yesterday * 100
	switch {
	case change > 0:
		return styles.WarningTextStyle.Render(fmt.Sprintf("▲ %.0f%%", change))
	case change < 0:
		return styles.SuccessTextStyle.Render(fmt.Sprintf("▼ %.0f%%", -change))
	default:
		return styles.HelpStyle.Render("= 0%")
	}
}

// renderRateCard renders the live RPM and TPM usage bars.
func (m *Model) renderRateCard() string {
	title := m.sectionTitle("◎", "Live rate", services.SlotRate)
	width := m.cardWidth()

	snap, updated := m.state.GetRate()
	if snap == nil {
		body := components.LoadingOr(m.spinner, m.state.IsLoading(services.SlotRate),
			styles.HelpStyle.Render(components.NoDataText))
		return lipgloss.JoinVertical(lipgloss.Left, title, body, "")
	}

	view := analytics.DescribeRate(*snap)

	var rows []string
	if view.HasRPMLimit {
		rows = append(rows, m.rateBar.View("RPM", m.displayPercent("rpm", view.RPMUsage), view.RPMText, width))
	} else {
		rows = append(rows, m.rateBar.ViewUnlimited("RPM", view.RPMText, width))
	}
	if view.HasTPMLimit {
		rows = append(rows, m.rateBar.View("TPM", m.displayPercent("tpm", view.TPMUsage), view.TPMText, width))
	} else {
		rows = append(rows, m.rateBar.ViewUnlimited("TPM", view.TPMText, width))
	}

	if !updated.IsZero() {
		rows = append(rows, styles.HelpStyle.Render("updated "+formatAgo(time.Since(updated))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n"), "")
}

// renderCharts renders the cost, token, request and latency charts of the
// selected period.
func (m *Model) renderCharts() string {
	title := m.sectionTitle("▤", "Consumption by "+m.state.GetQuery().Group.String(), services.SlotPeriod)

	period := m.state.GetPeriod()
	if period == nil || period.Channels == nil {
		body := components.LoadingOr(m.spinner, m.state.IsLoading(services.SlotPeriod),
			styles.HelpStyle.Render(components.NoDataText))
		return lipgloss.JoinVertical(lipgloss.Left, title, body)
	}

	charts := period.Channels
	bundles := []*analytics.ChartBundle{charts.Cost, charts.Tokens, charts.Requests, charts.Latency}

	parts := []string{title}
	for _, b := range bundles {
		parts = append(parts, m.renderChart(b))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderChart(b *analytics.ChartBundle) string {
	if b == nil {
		return ""
	}

	width := m.cardWidth()
	heading := styles.SubTitleStyle.Render(b.Title)
	if b.Unit != "" {
		heading += styles.HelpStyle.Render(" (" + b.Unit + ")")
	}

	var body string
	if m.showTotals {
		body = components.RenderBundleTotals(b, width-4)
	} else {
		body = components.RenderBundle(b, max(width-chartMargin, 20), chartHeight)
	}

	return styles.CardStyle.Width(width).Render(heading + "\n" + body)
}

// sectionTitle renders a section heading with the slot's error, if any.
func (m *Model) sectionTitle(icon, title, slot string) string {
	iconStr := lipgloss.NewStyle().Foreground(styles.Primary).Render(icon)
	line := fmt.Sprintf("%s %s", iconStr, styles.CardTitleStyle.Render(title))
	if errMsg := m.state.Error(slot); errMsg != "" {
		line += "  " + styles.ErrorTextStyle.Render("⚠ "+errMsg)
	}
	return line
}

func formatAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
