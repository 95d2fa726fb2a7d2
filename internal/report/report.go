// Package report renders a fetched snapshot as text for the report command.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/onehub-analytics-tui/internal/analytics"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/components"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// Options control the report layout.
type Options struct {
	Width int
	// Plain strips ANSI styling from the output.
	Plain bool
}

// Write renders snap to w.
func Write(w io.Writer, snap *services.Snapshot, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}

	out := Render(snap, opts.Width)
	if opts.Plain {
		out = ansi.Strip(out)
	}

	_, err := io.WriteString(w, out)
	return err
}

// Render builds the report text.
func Render(snap *services.Snapshot, width int) string {
	var b strings.Builder

	writeHeader(&b, snap)
	writeSummary(&b, snap, width)
	writeRate(&b, snap)
	writePeriod(&b, snap, width)
	writeTop(&b, snap, width)
	writeLog(&b, snap, width)

	return b.String()
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("== " + title + " =="))
	b.WriteString("\n")
}

// failed writes the slot's error line and reports whether there was one.
func failed(b *strings.Builder, snap *services.Snapshot, slot string) bool {
	err := snap.Err(slot)
	if err == nil {
		return false
	}
	fmt.Fprintf(b, "unavailable: %v\n", err)
	return true
}

func writeHeader(b *strings.Builder, snap *services.Snapshot) {
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("OneHub analytics report"))
	b.WriteString("\n")
	fmt.Fprintf(b, "Taken:   %s\n", snap.Taken.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(b, "Filters: range %s, group %s, %s\n",
		snap.Query.Range, snap.Query.Group, describeUser(snap.Query))
}

func describeUser(q models.Query) string {
	if q.UserID > 0 {
		return fmt.Sprintf("user %d", q.UserID)
	}
	return "all users"
}

func writeSummary(b *strings.Builder, snap *services.Snapshot, width int) {
	section(b, fmt.Sprintf("Last %d days", analytics.SummaryDays))
	if failed(b, snap, services.SlotSummary) {
		return
	}
	if snap.Summary == nil {
		b.WriteString(components.NoDataText + "\n")
		return
	}

	for _, card := range []analytics.SummaryCard{snap.Summary.Requests, snap.Summary.Cost, snap.Summary.Tokens} {
		fmt.Fprintf(b, "%-10s today %-12s yesterday %-12s %s\n",
			card.Title, card.TodayText, card.YesterdayText,
			components.RenderSparkline(card.Values, min(width/4, len(card.Values))))
	}
}

func writeRate(b *strings.Builder, snap *services.Snapshot) {
	section(b, "Rate")
	if failed(b, snap, services.SlotRate) {
		return
	}
	if snap.Rate == nil {
		b.WriteString(components.NoDataText + "\n")
		return
	}

	v := analytics.DescribeRate(*snap.Rate)
	b.WriteString(v.RPMText)
	if v.HasRPMLimit {
		fmt.Fprintf(b, " (%.1f%%)", v.RPMUsage)
	}
	b.WriteString("\n")
	b.WriteString(v.TPMText)
	if v.HasTPMLimit {
		fmt.Fprintf(b, " (%.1f%%)", v.TPMUsage)
	}
	b.WriteString("\n")
}

func writePeriod(b *strings.Builder, snap *services.Snapshot, width int) {
	section(b, "Consumption by "+snap.Query.Group.String())
	if failed(b, snap, services.SlotPeriod) {
		return
	}
	p := snap.Period
	if p == nil {
		b.WriteString(components.NoDataText + "\n")
		return
	}

	fmt.Fprintf(b, "Data: %s → %s (%d days)\n",
		p.Range.Start.Format(analytics.DateLayout), p.Range.End.Format(analytics.DateLayout), p.Axis.Len())

	var bundles []*analytics.ChartBundle
	if p.Channels != nil {
		bundles = append(bundles, p.Channels.Cost, p.Channels.Tokens, p.Channels.Requests, p.Channels.Latency)
	}
	bundles = append(bundles, p.Redemption, p.Registration, p.Orders)

	for _, bundle := range bundles {
		writeBundle(b, bundle, width)
	}
}

func writeBundle(b *strings.Builder, bundle *analytics.ChartBundle, width int) {
	if bundle == nil {
		return
	}
	b.WriteString("\n")
	title := bundle.Title
	if bundle.Unit != "" {
		title += " (" + bundle.Unit + ")"
	}
	b.WriteString(title + "\n")
	b.WriteString(components.RenderBundleTotals(bundle, width))
	b.WriteString("\n")
}

func writeTop(b *strings.Builder, snap *services.Snapshot, width int) {
	section(b, "Top spenders")
	if failed(b, snap, services.SlotTop) {
		return
	}
	if snap.Top.Empty() {
		b.WriteString(components.NoDataText + "\n")
		return
	}
	b.WriteString(snap.Top.Title + "\n")
	b.WriteString(components.RenderBundleTotals(snap.Top, width))
	b.WriteString("\n")
}

func writeLog(b *strings.Builder, snap *services.Snapshot, width int) {
	if snap.Period == nil || len(snap.Period.Log) == 0 {
		return
	}
	section(b, "Consumption log")

	for _, day := range snap.Period.Log {
		fmt.Fprintf(b, "%s  $%s  %d tokens  %d requests\n",
			day.Date, analytics.FormatNumber(day.Cost, analytics.CurrencyDecimals), day.Tokens, day.Requests)

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
			Border(lipgloss.NormalBorder()).
			Headers("Category", "Cost", "Tokens", "Requests", "Latency").
			Rows(rows...).
			Width(min(width, 100)).
			StyleFunc(func(row, col int) lipgloss.Style {
				s := lipgloss.NewStyle().Padding(0, 1)
				if row != table.HeaderRow && col > 0 {
					s = s.Align(lipgloss.Right)
				}
				return s
			})
		b.WriteString(t.String())
		b.WriteString("\n")
	}
}
