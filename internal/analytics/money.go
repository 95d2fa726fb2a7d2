package analytics

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// QuotaPerUnit is the number of quota units in one unit of display currency.
const QuotaPerUnit = 500000

const (
	// CurrencyDecimals is the precision used for chart values and totals.
	CurrencyDecimals = 3
	// CardDecimals is the precision used for summary card call-outs.
	CardDecimals = 2
	// LatencyDecimals is the precision used for latency in seconds.
	LatencyDecimals = 3
)

var quotaPerUnit = decimal.NewFromInt(QuotaPerUnit)

// QuotaToCurrency converts quota units into display currency rounded to
// places decimal places.
func QuotaToCurrency(quota int64, places int32) float64 {
	f, _ := quotaDecimal(quota).Round(places).Float64()
	return f
}

// FormatQuota renders quota as display currency with exactly places
// decimals, e.g. 1500000 -> "3.000".
func FormatQuota(quota int64, places int32) string {
	return quotaDecimal(quota).StringFixed(places)
}

// FormatCurrency renders a display currency amount prefixed with "$".
func FormatCurrency(quota int64, places int32) string {
	return "$" + FormatQuota(quota, places)
}

func quotaDecimal(quota int64) decimal.Decimal {
	return decimal.NewFromInt(quota).Div(quotaPerUnit)
}

// round rounds v half away from zero.
func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// FormatNumber renders v with a fixed number of decimals. A negative
// decimals value uses the shortest exact representation.
func FormatNumber(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
