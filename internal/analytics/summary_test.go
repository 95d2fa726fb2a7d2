package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

func TestBuildSummary(t *testing.T) {
	now := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)
	rows := []models.SummaryStatistic{
		{Date: "2024-01-07", RequestCount: 5, Quota: 1000000, PromptTokens: 10, CompletionTokens: 5},
		{Date: "2024-01-07", RequestCount: 1, Quota: 0, PromptTokens: 1, CompletionTokens: 1},
		{Date: "2024-01-06", RequestCount: 3, Quota: 2500, PromptTokens: 7, CompletionTokens: 0},
		{Date: "2024-01-01", RequestCount: 9, Quota: 500000},
		{Date: "2023-12-31", RequestCount: 1000, Quota: 500000000},
	}

	s := BuildSummary(rows, now)
	require.NotNil(t, s)

	assert.Equal(t, DateAxis{
		"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04",
		"2024-01-05", "2024-01-06", "2024-01-07",
	}, s.Requests.Dates)

	assert.Equal(t, []float64{9, 0, 0, 0, 0, 3, 6}, s.Requests.Values)
	assert.Equal(t, "6", s.Requests.TodayText)
	assert.Equal(t, "3", s.Requests.YesterdayText)

	assert.Equal(t, []float64{0, 0, 0, 0, 0, 7, 17}, s.Tokens.Values)
	assert.InDelta(t, 17.0, s.Tokens.Today, 1e-9)

	assert.InDelta(t, 2.0, s.Cost.Values[6], 1e-9)
	assert.InDelta(t, 0.005, s.Cost.Values[5], 1e-9)
	assert.Equal(t, "$2.00", s.Cost.TodayText)
	assert.Equal(t, "$0.01", s.Cost.YesterdayText)
}

func TestBuildSummary_EmptyWindow(t *testing.T) {
	now := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)

	s := BuildSummary([]models.SummaryStatistic{}, now)
	require.NotNil(t, s)
	assert.Len(t, s.Cost.Values, SummaryDays)
	assert.Equal(t, "$0.00", s.Cost.TodayText)
	assert.Equal(t, "0", s.Requests.YesterdayText)

	assert.Nil(t, BuildSummary(nil, now))
}

func TestSummaryWindow(t *testing.T) {
	now := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)
	r := SummaryWindow(now)

	assert.Equal(t, "2024-01-01", r.Start.Format(DateLayout))
	assert.Equal(t, "2024-01-07", r.End.Format(DateLayout))
}
