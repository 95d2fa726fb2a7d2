package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/onehub-analytics-tui/internal/logger"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/styles"
)

// Gradient endpoints for usage bars: green when idle, red at the limit.
const (
	gradientLow  = "#51cf66"
	gradientHigh = "#ff6b6b"
)

// RateBar renders a usage bar for a rate limit with label and percentage.
type RateBar struct {
	progress progress.Model
}

// NewRateBar creates a rate bar of the given width with gradient colors.
func NewRateBar(width int) RateBar {
	p := progress.New(
		progress.WithScaledGradient(gradientLow, gradientHigh),
		progress.WithWidth(max(width, 10)),
		progress.WithoutPercentage(),
	)
	return RateBar{progress: p}
}

// SetWidth sets the progress bar width.
func (r *RateBar) SetWidth(width int) {
	r.progress.Width = max(width, 10)
}

// View renders the bar for percent (0-100) followed by text, such as
// "12 / 60 RPM".
func (r RateBar) View(label string, percent float64, text string, width int) string {
	r.progress.Width = max(width-38, 10) // Reserve space for label, percentage and text

	clamped := min(max(percent, 0), 100)
	bar := r.progress.ViewAs(clamped / 100)

	percentStr := styles.GetRateStyle(percent).
		Width(7).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%%", percent))

	labelStr := styles.ProgressLabelStyle.Width(8).Render(label)
	textStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(text)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr, "  ", textStr)
}

// ViewUnlimited renders a rate with no configured limit.
func (r RateBar) ViewUnlimited(label, text string, width int) string {
	barWidth := max(width-38, 10)

	labelStr := styles.ProgressLabelStyle.Width(8).Render(label)
	emptyBar := lipgloss.NewStyle().Foreground(styles.Subtle).Render(strings.Repeat("░", barWidth))
	statusStr := lipgloss.NewStyle().Foreground(styles.Subtle).Width(7).Align(lipgloss.Right).Render("no cap")
	textStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(text)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, emptyBar, " ", statusStr, "  ", textStr)
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	filled = min(max(filled, 0), width)

	var barChars []string
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(gradientLow, gradientHigh, t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// SimpleRateBar renders a compact ASCII usage bar with gradient colors.
func SimpleRateBar(percent float64, label string, width int) string {
	labelWidth := len(label) + 1
	percentWidth := 7
	barWidth := max(width-labelWidth-percentWidth-4, 5)

	bar := RenderGradientBar(percent, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	percentStr := styles.GetRateStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, percentStr)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
