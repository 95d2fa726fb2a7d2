package analytics

import "github.com/j-veylop/onehub-analytics-tui/internal/models"

// BuildTopUsers builds one cost series per user. The gateway decides which
// users are included; every user present in rows gets a series. The title
// total is summed from raw quota and converted once.
func BuildTopUsers(rows []models.TopUserQuota, axis DateAxis) *ChartBundle {
	if rows == nil {
		return nil
	}

	idx := axis.Index()
	n := axis.Len()
	users := newSeriesGroup(n)
	raw := make(map[string][]int64)

	var rawTotal int64
	for _, row := range rows {
		if row.Username == "" {
			continue
		}
		i, ok := idx[row.Date]
		if !ok {
			continue
		}
		users.get(row.Username)
		if raw[row.Username] == nil {
			raw[row.Username] = make([]int64, n)
		}
		raw[row.Username][i] += row.Quota.Int64()
		rawTotal += row.Quota.Int64()
	}

	for _, name := range users.Names() {
		s := users.get(name)
		for i, q := range raw[name] {
			s.Data[i] = QuotaToCurrency(q, CurrencyDecimals)
		}
	}

	return &ChartBundle{
		Title:    CostTitlePrefix + FormatQuota(rawTotal, CurrencyDecimals),
		Unit:     CostUnit,
		Dates:    axis,
		Series:   users.Series(),
		Total:    QuotaToCurrency(rawTotal, CurrencyDecimals),
		Decimals: CurrencyDecimals,
	}
}
