package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// Series names, titles and units for the daily charts.
const (
	RedemptionAmountSeries = "兑换金额($)"
	RedemptionUsersSeries  = "独立用户(人)"
	RedemptionTitlePrefix  = "总兑换：$"

	DirectSignupSeries      = "直接注册"
	InvitedSignupSeries     = "邀请注册"
	RegistrationTitlePrefix = "总注册人数："
	RegistrationUnit        = "人"

	OrderSeries      = "充值"
	OrderTitlePrefix = "总充值数："
	OrderUnit        = "CNY"
	// OrderDecimals is the precision of the recharge total, in fen.
	OrderDecimals = 2
)

// BuildRedemption builds the dual-axis redemption chart: the redeemed amount
// as columns on the left axis and the number of distinct redeemers as a
// labelled line on the right axis.
func BuildRedemption(rows []models.RedemptionStatistic, axis DateAxis) *ChartBundle {
	if rows == nil {
		return nil
	}

	idx := axis.Index()
	n := axis.Len()
	rawQuota := make([]int64, n)
	amount := Series{Name: RedemptionAmountSeries, Data: make([]float64, n), Kind: KindBar, Axis: AxisLeft}
	users := Series{Name: RedemptionUsersSeries, Data: make([]float64, n), Kind: KindLine, Axis: AxisRight, DataLabels: true}

	for _, row := range rows {
		i, ok := idx[row.Date]
		if !ok {
			continue
		}
		rawQuota[i] = row.Quota.Int64()
		amount.Data[i] = QuotaToCurrency(row.Quota.Int64(), CurrencyDecimals)
		users.Data[i] = float64(row.UserCount)
	}

	var total int64
	for _, q := range rawQuota {
		total += q
	}

	return &ChartBundle{
		Title:    RedemptionTitlePrefix + FormatQuota(total, CurrencyDecimals),
		Dates:    axis,
		Series:   []Series{amount, users},
		Total:    QuotaToCurrency(total, CurrencyDecimals),
		Decimals: CurrencyDecimals,
		DualAxis: true,
	}
}

// BuildRegistration splits daily signups into direct and invited users.
func BuildRegistration(rows []models.UserStatistic, axis DateAxis) *ChartBundle {
	if rows == nil {
		return nil
	}

	idx := axis.Index()
	n := axis.Len()
	totals := make([]int64, n)
	direct := Series{Name: DirectSignupSeries, Data: make([]float64, n)}
	invited := Series{Name: InvitedSignupSeries, Data: make([]float64, n)}

	for _, row := range rows {
		i, ok := idx[row.Date]
		if !ok {
			continue
		}
		totals[i] = row.UserCount.Int64()
		direct.Data[i] = float64(row.UserCount - row.InviterUserCount)
		invited.Data[i] = float64(row.InviterUserCount)
	}

	var total int64
	for _, c := range totals {
		total += c
	}

	return &ChartBundle{
		Title:  RegistrationTitlePrefix + FormatNumber(float64(total), 0),
		Unit:   RegistrationUnit,
		Dates:  axis,
		Series: []Series{direct, invited},
		Total:  float64(total),
	}
}

// BuildOrders builds the daily recharge chart.
func BuildOrders(rows []models.OrderStatistic, axis DateAxis) *ChartBundle {
	if rows == nil {
		return nil
	}

	idx := axis.Index()
	orders := Series{Name: OrderSeries, Data: make([]float64, axis.Len())}

	for _, row := range rows {
		i, ok := idx[row.Date]
		if !ok {
			continue
		}
		orders.Data[i] = row.OrderAmount.Float64()
	}

	// Amounts are summed as decimals so the title carries no float noise.
	sum := decimal.Zero
	for _, v := range orders.Data {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	sum = sum.Round(OrderDecimals)
	total, _ := sum.Float64()

	return &ChartBundle{
		Title:  OrderTitlePrefix + sum.String(),
		Unit:   OrderUnit,
		Dates:  axis,
		Series: []Series{orders},
		Total:  total,
	}
}
