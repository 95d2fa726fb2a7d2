package users

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/j-veylop/onehub-analytics-tui/internal/analytics"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/components"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/styles"
)

const chartHeight = 8

// View renders the users tab.
func (m *Model) View() string {
	sections := []string{m.renderHeader()}

	if m.section == SectionLog {
		sections = append(sections, m.renderLog())
	} else {
		sections = append(sections,
			m.renderTop(),
			m.renderPeriodChart(func(p *services.PeriodResult) *analytics.ChartBundle { return p.Redemption }),
			m.renderPeriodChart(func(p *services.PeriodResult) *analytics.ChartBundle { return p.Registration }),
			m.renderPeriodChart(func(p *services.PeriodResult) *analytics.ChartBundle { return p.Orders }),
		)
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

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Users & Billing")

	sectionStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)
	indicator := sectionStyle.Render(fmt.Sprintf("[v] %s", m.section))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", indicator)

	var subtitle string
	if p := m.state.GetPeriod(); p != nil && len(p.Axis) > 0 {
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("Data: %s → %s (%d days)",
			p.Axis[0], p.Axis[len(p.Axis)-1], len(p.Axis)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

// renderTop renders the daily spend of the five biggest users.
func (m *Model) renderTop() string {
	rows := []string{m.cardTitle("▲", "Top spenders", services.SlotTop), ""}

	top := m.state.GetTop()
	switch {
	case top == nil && m.state.IsLoading(services.SlotTop):
		rows = append(rows, styles.HelpStyle.Render("  Loading top spenders..."))
	case top.Empty():
		rows = append(rows, styles.HelpStyle.Render("  "+components.NoDataText))
	default:
		rows = append(rows, styles.SubTitleStyle.Render(top.Title))
		rows = append(rows, components.RenderBundle(top, max(m.cardWidth()-16, 20), chartHeight))
		rows = append(rows, "", components.RenderBundleTotals(top, m.cardWidth()-4))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderPeriodChart renders one of the billing charts built from the period
// statistics.
func (m *Model) renderPeriodChart(pick func(*services.PeriodResult) *analytics.ChartBundle) string {
	period := m.state.GetPeriod()
	if period == nil {
		if m.state.IsLoading(services.SlotPeriod) {
			return styles.HelpStyle.Render("  Loading period statistics...")
		}
		if errMsg := m.state.Error(services.SlotPeriod); errMsg != "" {
			return styles.ErrorTextStyle.Render("  ⚠ " + errMsg)
		}
		return ""
	}

	b := pick(period)
	if b == nil {
		return ""
	}

	heading := styles.SubTitleStyle.Render(b.Title)
	if b.Unit != "" {
		heading += styles.HelpStyle.Render(" (" + b.Unit + ")")
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		heading + "\n" + components.RenderBundle(b, max(m.cardWidth()-16, 20), chartHeight),
	)
}

// renderLog renders the consumption log, newest day first.
func (m *Model) renderLog() string {
	title := m.cardTitle("≡", "Consumption log", services.SlotPeriod)

	period := m.state.GetPeriod()
	if period == nil || len(period.Log) == 0 {
		msg := components.NoDataText
		if m.state.IsLoading(services.SlotPeriod) {
			msg = "Loading period statistics..."
		}
		return lipgloss.JoinVertical(lipgloss.Left, title, "", styles.HelpStyle.Render("  "+msg))
	}

	parts := []string{title, ""}
	for _, day := range period.Log {
		parts = append(parts, renderLogDay(day, m.cardWidth()), "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderLogDay(day analytics.LogDay, width int) string {
	heading := fmt.Sprintf("%s  %s  %s tokens  %s requests",
		styles.DayHeaderStyle.Render(day.Date),
		"$"+analytics.FormatNumber(day.Cost, analytics.CurrencyDecimals),
		strconv.FormatInt(day.Tokens, 10),
		strconv.FormatInt(day.Requests, 10),
	)

	rows := make([][]string, 0, len(day.Entries))
	for _, e := range day.Entries {
		rows = append(rows, []string{
			e.Category,
			"$" + analytics.FormatNumber(e.Cost, analytics.CurrencyDecimals),
			strconv.FormatInt(e.Tokens, 10),
			strconv.FormatInt(e.Requests, 10),
			analytics.FormatNumber(e.Latency, analytics.LatencyDecimals) + "s",
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Subtle)).
		Headers("Category", "Cost", "Tokens", "Requests", "Latency").
		Rows(rows...).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(styles.TextSecondary)
			}
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			return s.Foreground(styles.TextPrimary)
		})

	return heading + "\n" + t.String()
}

func (m *Model) cardTitle(icon, title, slot string) string {
	iconStr := lipgloss.NewStyle().Foreground(styles.Primary).Render(icon)
	line := fmt.Sprintf("%s %s", iconStr, styles.CardTitleStyle.Render(title))
	if errMsg := m.state.Error(slot); errMsg != "" {
		line += "  " + styles.ErrorTextStyle.Render("⚠ "+errMsg)
	}
	return strings.TrimRight(line, " ")
}
