package analytics

import (
	"sort"

	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// LogEntry is one category's consumption on one day.
type LogEntry struct {
	Date     string
	Category string
	Cost     float64
	Tokens   int64
	Requests int64
	Latency  float64
}

// LogDay groups the entries of one day with their subtotal.
type LogDay struct {
	Date     string
	Entries  []LogEntry
	Cost     float64
	Tokens   int64
	Requests int64
}

// BuildConsumptionLog flattens channel rows on the axis into a per-day log,
// newest day first and the most expensive category first within a day.
// Rows for the same day and category are merged.
func BuildConsumptionLog(rows []models.ChannelStatistic, axis DateAxis) []LogDay {
	if rows == nil {
		return nil
	}

	type key struct{ date, category string }
	type cell struct {
		quota, tokens, requests, timeMs int64
	}

	idx := axis.Index()
	cells := make(map[key]*cell)
	var order []key

	for _, row := range rows {
		if row.Channel == "" {
			continue
		}
		if _, ok := idx[row.Date]; !ok {
			continue
		}
		k := key{row.Date, row.Channel}
		c, ok := cells[k]
		if !ok {
			c = &cell{}
			cells[k] = c
			order = append(order, k)
		}
		c.quota += row.Quota.Int64()
		c.tokens += row.PromptTokens.Int64() + row.CompletionTokens.Int64()
		c.requests += row.RequestCount.Int64()
		c.timeMs += row.RequestTime.Int64()
	}

	byDate := make(map[string]*LogDay)
	dayQuota := make(map[string]int64)
	for _, k := range order {
		c := cells[k]
		day, ok := byDate[k.date]
		if !ok {
			day = &LogDay{Date: k.date}
			byDate[k.date] = day
		}
		day.Entries = append(day.Entries, LogEntry{
			Date:     k.date,
			Category: k.category,
			Cost:     QuotaToCurrency(c.quota, CurrencyDecimals),
			Tokens:   c.tokens,
			Requests: c.requests,
			Latency:  latencySeconds(latencyCell{timeMs: c.timeMs, requests: c.requests}),
		})
		dayQuota[k.date] += c.quota
		day.Tokens += c.tokens
		day.Requests += c.requests
	}

	days := make([]LogDay, 0, len(byDate))
	for i := len(axis) - 1; i >= 0; i-- {
		day, ok := byDate[axis[i]]
		if !ok {
			continue
		}
		day.Cost = QuotaToCurrency(dayQuota[day.Date], CurrencyDecimals)
		sort.SliceStable(day.Entries, func(a, b int) bool {
			return day.Entries[a].Cost > day.Entries[b].Cost
		})
		days = append(days, *day)
	}
	return days
}
