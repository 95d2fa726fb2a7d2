package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// AverageSeriesName is the synthetic latency series averaged across categories.
const AverageSeriesName = "average"

// Chart titles and units for the category charts.
const (
	CostTitlePrefix     = "总消费：$"
	TokensTitlePrefix   = "总Tokens："
	RequestsTitlePrefix = "总请求数："
	LatencyTitle        = "平均延迟"

	CostUnit     = "美元"
	RequestsUnit = "次"
	LatencyUnit  = "秒"
)

// ChannelCharts are the four category charts built from channel statistics.
type ChannelCharts struct {
	Cost     *ChartBundle
	Tokens   *ChartBundle
	Requests *ChartBundle
	Latency  *ChartBundle
}

// latencyCell accumulates raw latency inputs for one category and day.
type latencyCell struct {
	timeMs   int64
	requests int64
}

// AggregateChannels groups channel rows by category into cost, token,
// request and latency charts aligned to axis. Rows without a date or
// category, or whose date is not on the axis, are dropped.
//
// Cost totals are summed from raw quota and converted once. Latency per slot
// is cumulative request time divided by request count, in seconds.
func AggregateChannels(rows []models.ChannelStatistic, axis DateAxis) *ChannelCharts {
	if rows == nil {
		return nil
	}

	idx := axis.Index()
	n := axis.Len()

	costs := newSeriesGroup(n)
	tokens := newSeriesGroup(n)
	requests := newSeriesGroup(n)

	rawCost := make(map[string][]int64)
	latency := make(map[string][]latencyCell)

	var quotaTotal, tokenTotal, requestTotal int64

	for _, row := range rows {
		if row.Date == "" || row.Channel == "" {
			continue
		}
		i, ok := idx[row.Date]
		if !ok {
			continue
		}
		name := row.Channel

		// Registration order of the four groups is identical, so their
		// category order stays aligned.
		costs.get(name)
		if rawCost[name] == nil {
			rawCost[name] = make([]int64, n)
			latency[name] = make([]latencyCell, n)
		}
		rawCost[name][i] += row.Quota.Int64()
		quotaTotal += row.Quota.Int64()

		t := row.PromptTokens.Int64() + row.CompletionTokens.Int64()
		tokens.get(name).Data[i] += float64(t)
		tokenTotal += t

		r := row.RequestCount.Int64()
		requests.get(name).Data[i] += float64(r)
		requestTotal += r

		latency[name][i].timeMs += row.RequestTime.Int64()
		latency[name][i].requests += r
	}

	for _, name := range costs.Names() {
		s := costs.get(name)
		for i, q := range rawCost[name] {
			s.Data[i] = QuotaToCurrency(q, CurrencyDecimals)
		}
	}

	latencies := newSeriesGroup(n)
	for _, name := range costs.Names() {
		s := latencies.get(name)
		s.Kind = KindLine
		for i, cell := range latency[name] {
			s.Data[i] = latencySeconds(cell)
		}
	}

	return &ChannelCharts{
		Cost: &ChartBundle{
			Title:    CostTitlePrefix + FormatQuota(quotaTotal, CurrencyDecimals),
			Unit:     CostUnit,
			Dates:    axis,
			Series:   costs.Series(),
			Total:    QuotaToCurrency(quotaTotal, CurrencyDecimals),
			Decimals: CurrencyDecimals,
		},
		Tokens: &ChartBundle{
			Title:  TokensTitlePrefix + FormatNumber(float64(tokenTotal), 0),
			Dates:  axis,
			Series: tokens.Series(),
			Total:  float64(tokenTotal),
		},
		Requests: &ChartBundle{
			Title:  RequestsTitlePrefix + FormatNumber(float64(requestTotal), 0),
			Unit:   RequestsUnit,
			Dates:  axis,
			Series: requests.Series(),
			Total:  float64(requestTotal),
		},
		Latency: &ChartBundle{
			Title:    LatencyTitle,
			Unit:     LatencyUnit,
			Dates:    axis,
			Series:   append(latencies.Series(), averageSeries(latencies.Series(), n)),
			Decimals: LatencyDecimals,
			Kind:     KindLine,
		},
	}
}

func latencySeconds(c latencyCell) float64 {
	if c.requests == 0 {
		return 0
	}
	f, _ := decimal.NewFromInt(c.timeMs).
		Div(decimal.NewFromInt(1000)).
		Div(decimal.NewFromInt(c.requests)).
		Round(LatencyDecimals).
		Float64()
	return f
}

// averageSeries returns the per-day mean of the non-zero values across all
// series. Days where every series is zero average to zero.
func averageSeries(series []Series, n int) Series {
	avg := Series{
		Name:   AverageSeriesName,
		Data:   make([]float64, n),
		Kind:   KindLine,
		Dashed: true,
	}
	for i := range n {
		var sum float64
		var count int
		for _, s := range series {
			if v := s.Data[i]; v != 0 {
				sum += v
				count++
			}
		}
		if count > 0 {
			avg.Data[i] = round(sum/float64(count), LatencyDecimals)
		}
	}
	return avg
}
