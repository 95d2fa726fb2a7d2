package analytics

import (
	"strconv"
	"time"

	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// SummaryDays is the length of the rolling summary window, today included.
const SummaryDays = 7

// SummaryWindow returns the range requested from the summary endpoint.
func SummaryWindow(now time.Time) DateRange {
	return NewDateRange(now, SummaryDays)
}

// SummaryCard is a 7-day line chart with today's and yesterday's values.
type SummaryCard struct {
	Title         string
	Dates         DateAxis
	Values        []float64
	Today         float64
	Yesterday     float64
	TodayText     string
	YesterdayText string
}

// Summary holds the three rolling summary cards.
type Summary struct {
	Requests SummaryCard
	Cost     SummaryCard
	Tokens   SummaryCard
}

type dailyTotals struct {
	requests int64
	quota    int64
	tokens   int64
}

// BuildSummary accumulates rows into the seven days ending on the day of now.
// Days without rows stay at zero; rows outside the window are ignored.
func BuildSummary(rows []models.SummaryStatistic, now time.Time) *Summary {
	if rows == nil {
		return nil
	}

	axis := BuildDateAxis(SummaryWindow(now))
	idx := axis.Index()
	days := make([]dailyTotals, axis.Len())

	for _, row := range rows {
		i, ok := idx[row.Date]
		if !ok {
			continue
		}
		days[i].requests += row.RequestCount.Int64()
		days[i].quota += row.Quota.Int64()
		days[i].tokens += row.PromptTokens.Int64() + row.CompletionTokens.Int64()
	}

	today := now.Format(DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(DateLayout)
	lookup := func(key string) dailyTotals {
		if i, ok := idx[key]; ok {
			return days[i]
		}
		return dailyTotals{}
	}
	t, y := lookup(today), lookup(yesterday)

	s := &Summary{
		Requests: SummaryCard{
			Title:         "Requests",
			Dates:         axis,
			Values:        make([]float64, len(days)),
			Today:         float64(t.requests),
			Yesterday:     float64(y.requests),
			TodayText:     strconv.FormatInt(t.requests, 10),
			YesterdayText: strconv.FormatInt(y.requests, 10),
		},
		Cost: SummaryCard{
			Title:         "Cost",
			Dates:         axis,
			Values:        make([]float64, len(days)),
			Today:         QuotaToCurrency(t.quota, CardDecimals),
			Yesterday:     QuotaToCurrency(y.quota, CardDecimals),
			TodayText:     FormatCurrency(t.quota, CardDecimals),
			YesterdayText: FormatCurrency(y.quota, CardDecimals),
		},
		Tokens: SummaryCard{
			Title:         "Tokens",
			Dates:         axis,
			Values:        make([]float64, len(days)),
			Today:         float64(t.tokens),
			Yesterday:     float64(y.tokens),
			TodayText:     strconv.FormatInt(t.tokens, 10),
			YesterdayText: strconv.FormatInt(y.tokens, 10),
		},
	}
	for i, d := range days {
		s.Requests.Values[i] = float64(d.requests)
		s.Cost.Values[i], _ = quotaDecimal(d.quota).Float64()
		s.Tokens.Values[i] = float64(d.tokens)
	}
	return s
}
