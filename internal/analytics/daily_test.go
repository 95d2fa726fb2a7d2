package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

func TestBuildRedemption(t *testing.T) {
	axis := axisOf("2024-01-01", "2024-01-03")
	rows := []models.RedemptionStatistic{
		{Date: "2024-01-01", Quota: 1000000, UserCount: 2},
		{Date: "2024-01-03", Quota: 250, UserCount: 1},
		{Date: "2024-02-01", Quota: 5000000, UserCount: 9},
	}

	b := BuildRedemption(rows, axis)
	require.NotNil(t, b)
	require.Len(t, b.Series, 2)
	assert.True(t, b.DualAxis)

	amount, users := b.Series[0], b.Series[1]
	assert.Equal(t, RedemptionAmountSeries, amount.Name)
	assert.Equal(t, KindBar, amount.Kind)
	assert.Equal(t, AxisLeft, amount.Axis)
	assert.False(t, amount.DataLabels)
	assert.Equal(t, []float64{2, 0, 0.001}, amount.Data)

	assert.Equal(t, RedemptionUsersSeries, users.Name)
	assert.Equal(t, KindLine, users.Kind)
	assert.Equal(t, AxisRight, users.Axis)
	assert.True(t, users.DataLabels)
	assert.Equal(t, []float64{2, 0, 1}, users.Data)

	assert.Equal(t, "总兑换：$2.001", b.Title)
}

func TestBuildRedemption_Nil(t *testing.T) {
	assert.Nil(t, BuildRedemption(nil, axisOf("2024-01-01", "2024-01-01")))
}

func TestBuildRegistration(t *testing.T) {
	axis := axisOf("2024-01-01", "2024-01-03")
	rows := []models.UserStatistic{
		{Date: "2024-01-01", UserCount: 10, InviterUserCount: 3},
		{Date: "2024-01-02", UserCount: 4, InviterUserCount: 0},
		{Date: "2023-12-31", UserCount: 100, InviterUserCount: 50},
	}

	b := BuildRegistration(rows, axis)
	require.NotNil(t, b)
	require.Len(t, b.Series, 2)

	direct, invited := b.Series[0], b.Series[1]
	assert.Equal(t, DirectSignupSeries, direct.Name)
	assert.Equal(t, InvitedSignupSeries, invited.Name)
	assert.Equal(t, []float64{7, 4, 0}, direct.Data)
	assert.Equal(t, []float64{3, 0, 0}, invited.Data)

	for i, row := range rows[:2] {
		assert.InDelta(t, float64(row.UserCount), direct.Data[i]+invited.Data[i], 1e-9)
	}

	assert.Equal(t, "总注册人数：14", b.Title)
	assert.Equal(t, RegistrationUnit, b.Unit)
}

func TestBuildRegistration_LastWriteWins(t *testing.T) {
	axis := axisOf("2024-01-01", "2024-01-01")
	rows := []models.UserStatistic{
		{Date: "2024-01-01", UserCount: 10, InviterUserCount: 3},
		{Date: "2024-01-01", UserCount: 6, InviterUserCount: 1},
	}

	b := BuildRegistration(rows, axis)
	assert.Equal(t, []float64{5}, b.Series[0].Data)
	assert.Equal(t, []float64{1}, b.Series[1].Data)
	assert.Equal(t, "总注册人数：6", b.Title)
}

func TestBuildOrders(t *testing.T) {
	axis := axisOf("2024-01-01", "2024-01-02")
	rows := []models.OrderStatistic{
		{Date: "2024-01-01", OrderAmount: 99.5},
		{Date: "2024-01-02", OrderAmount: 10},
		{Date: "2024-01-09", OrderAmount: 1000},
	}

	b := BuildOrders(rows, axis)
	require.NotNil(t, b)
	require.Len(t, b.Series, 1)
	assert.Equal(t, OrderSeries, b.Series[0].Name)
	assert.Equal(t, []float64{99.5, 10}, b.Series[0].Data)
	assert.Equal(t, "总充值数：109.5", b.Title)
	assert.InDelta(t, 109.5, b.Total, 1e-9)
}

func TestBuildOrders_DecimalTotal(t *testing.T) {
	axis := axisOf("2024-01-01", "2024-01-03")
	rows := []models.OrderStatistic{
		{Date: "2024-01-01", OrderAmount: 0.1},
		{Date: "2024-01-02", OrderAmount: 0.2},
		{Date: "2024-01-03", OrderAmount: 0.004},
	}

	b := BuildOrders(rows, axis)
	require.NotNil(t, b)
	assert.Equal(t, "总充值数：0.3", b.Title)
	assert.Equal(t, 0.3, b.Total)
}

func TestBuildOrders_Nil(t *testing.T) {
	assert.Nil(t, BuildOrders(nil, axisOf("2024-01-01", "2024-01-01")))

	b := BuildOrders([]models.OrderStatistic{}, axisOf("2024-01-01", "2024-01-02"))
	require.NotNil(t, b)
	assert.Equal(t, []float64{0, 0}, b.Series[0].Data)
	assert.Equal(t, "总充值数：0", b.Title)
}
