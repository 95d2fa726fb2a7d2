// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/onehub-analytics-tui/internal/analytics"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/styles"
)

// NoDataText is shown in place of a chart with nothing to draw.
const NoDataText = "No data available"

// seriesColor pairs the plot color of a series with its legend color.
type seriesColor struct {
	plot   asciigraph.AnsiColor
	legend lipgloss.Color
}

// palette is cycled through by category series in order.
var palette = []seriesColor{
	{asciigraph.Blue, lipgloss.Color("4")},
	{asciigraph.Green, lipgloss.Color("2")},
	{asciigraph.Yellow, lipgloss.Color("3")},
	{asciigraph.Magenta, lipgloss.Color("5")},
	{asciigraph.Cyan, lipgloss.Color("6")},
	{asciigraph.Red, lipgloss.Color("1")},
}

// averageColor is reserved for the synthetic average series.
var averageColor = seriesColor{asciigraph.White, lipgloss.Color("7")}

// colorFor returns the color of the i-th series of a chart.
func colorFor(s analytics.Series, i int) seriesColor {
	if s.Name == analytics.AverageSeriesName {
		return averageColor
	}
	return palette[i%len(palette)]
}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(NoDataText)
	}

	width = max(width, 20)
	height = max(height, 3)

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// RenderBundle draws every series of a chart bundle on one plot with a
// legend underneath. Series measured on the right axis get their own plot.
func RenderBundle(b *analytics.ChartBundle, width, height int) string {
	if b.Empty() {
		return styles.HelpStyle.Render(NoDataText)
	}

	width = max(width, 20)
	height = max(height, 3)

	var left, right []analytics.Series
	var leftColors, rightColors []seriesColor
	for i, s := range b.Series {
		c := colorFor(s, i)
		if s.Axis == analytics.AxisRight {
			right = append(right, s)
			rightColors = append(rightColors, c)
			continue
		}
		left = append(left, s)
		leftColors = append(leftColors, c)
	}

	var parts []string
	if len(left) > 0 {
		parts = append(parts, plotSeries(left, leftColors, width, height, b.Decimals, ""))
	}
	if len(right) > 0 {
		parts = append(parts, plotSeries(right, rightColors, width, max(height/2, 3), b.Decimals, "right axis"))
	}
	parts = append(parts, renderDateSpan(b.Dates))
	parts = append(parts, RenderLegend(legendItems(b.Series)))

	return strings.Join(parts, "\n")
}

func plotSeries(series []analytics.Series, colors []seriesColor, width, height, decimals int, caption string) string {
	data := make([][]float64, len(series))
	plotColors := make([]asciigraph.AnsiColor, len(series))
	for i, s := range series {
		data[i] = s.Data
		plotColors[i] = colors[i].plot
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(uint(max(decimals, 0))),
		asciigraph.SeriesColors(plotColors...),
	}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}

	return asciigraph.PlotMany(data, opts...)
}

func renderDateSpan(dates analytics.DateAxis) string {
	if len(dates) == 0 {
		return ""
	}
	if len(dates) == 1 {
		return styles.HelpStyle.Render(dates[0])
	}
	return styles.HelpStyle.Render(fmt.Sprintf("%s → %s", dates[0], dates[len(dates)-1]))
}

func legendItems(series []analytics.Series) []LegendItem {
	items := make([]LegendItem, len(series))
	for i, s := range series {
		items[i] = LegendItem{Label: s.Name, Color: colorFor(s, i).legend}
	}
	return items
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width, decimals int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-14, 10) // Leave room for label and value

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		padded := strings.Repeat(" ", maxLabelLen-lipgloss.Width(label)) + label

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		color := palette[i%len(palette)].legend
		bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", barLen))

		lines = append(lines, padded+" │"+bar+" "+analytics.FormatNumber(v, decimals))
	}

	return strings.Join(lines, "\n")
}

// RenderBundleTotals draws one bar per series with the series' sum.
func RenderBundleTotals(b *analytics.ChartBundle, width int) string {
	if b.Empty() {
		return styles.HelpStyle.Render(NoDataText)
	}
	values := make([]float64, 0, len(b.Series))
	labels := make([]string, 0, len(b.Series))
	for _, s := range b.Series {
		if s.Name == analytics.AverageSeriesName {
			continue
		}
		values = append(values, s.Sum())
		labels = append(labels, s.Name)
	}
	return RenderBarChart(values, labels, width, b.Decimals)
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Keep the most recent values when there are more than fit.
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var result strings.Builder
	for _, val := range values {
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderColoredSparkline creates a sparkline colored by each value's share of
// limit, which is usually the RPM cap.
func RenderColoredSparkline(values []float64, limit float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	plain := []rune(RenderSparkline(values, width))

	var result strings.Builder
	for i, r := range plain {
		percent := 0.0
		if limit > 0 {
			percent = values[i] / limit * 100
		}
		result.WriteString(styles.GetRateStyle(percent).Render(string(r)))
	}
	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
