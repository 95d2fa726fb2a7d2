package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/onehub-analytics-tui/internal/analytics"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// Request slots. Each slot is fetched, tracked and rendered independently.
const (
	SlotPeriod  = "period"
	SlotSummary = "summary"
	SlotRate    = "rate"
	SlotTop     = "top"
)

// Slots lists every request slot in display order.
var Slots = []string{SlotPeriod, SlotSummary, SlotRate, SlotTop}

// Analytics is the subset of the gateway client used by the services.
type Analytics interface {
	GetPeriodStatistics(ctx context.Context, start, end time.Time, group models.GroupType, userID int) (*models.PeriodStatistics, error)
	GetSummary(ctx context.Context, userID int, start, end time.Time) ([]models.SummaryStatistic, error)
	GetRate(ctx context.Context, userID int) (*models.RateSnapshot, error)
	GetTopUserQuota(ctx context.Context, start, end time.Time) ([]models.TopUserQuota, error)
}

// PeriodResult holds every chart built from one period-statistics response.
type PeriodResult struct {
	Channels     *analytics.ChannelCharts
	Redemption   *analytics.ChartBundle
	Registration *analytics.ChartBundle
	Orders       *analytics.ChartBundle
	Range        analytics.DateRange
	Axis         analytics.DateAxis
	Log          []analytics.LogDay
	Query        models.Query
}

// LoadPeriod fetches period statistics for q and aggregates them.
func LoadPeriod(ctx context.Context, a Analytics, q models.Query, now time.Time) (*PeriodResult, error) {
	r := analytics.NewDateRange(now, q.Range.Days())

	stats, err := a.GetPeriodStatistics(ctx, r.Start, r.End, q.Group, q.UserID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &models.PeriodStatistics{}
	}

	axis := analytics.BuildDateAxis(r)
	return &PeriodResult{
		Query:        q,
		Range:        r,
		Axis:         axis,
		Channels:     analytics.AggregateChannels(stats.ChannelStatistics, axis),
		Redemption:   analytics.BuildRedemption(stats.RedemptionStatistics, axis),
		Registration: analytics.BuildRegistration(stats.UserStatistics, axis),
		Orders:       analytics.BuildOrders(stats.OrderStatistics, axis),
		Log:          analytics.BuildConsumptionLog(stats.ChannelStatistics, axis),
	}, nil
}

// LoadSummary fetches the rolling seven-day summary ending today.
func LoadSummary(ctx context.Context, a Analytics, userID int, now time.Time) (*analytics.Summary, error) {
	w := analytics.SummaryWindow(now)

	rows, err := a.GetSummary(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.SummaryStatistic{}
	}
	return analytics.BuildSummary(rows, now), nil
}

// LoadTop fetches the top spenders for the range of q.
func LoadTop(ctx context.Context, a Analytics, q models.Query, now time.Time) (*analytics.ChartBundle, error) {
	r := analytics.NewDateRange(now, q.Range.Days())

	rows, err := a.GetTopUserQuota(ctx, r.Start, r.End)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.TopUserQuota{}
	}
	return analytics.BuildTopUsers(rows, analytics.BuildDateAxis(r)), nil
}

// Snapshot is the result of fetching every slot once.
type Snapshot struct {
	Taken   time.Time
	Period  *PeriodResult
	Summary *analytics.Summary
	Rate    *models.RateSnapshot
	Top     *analytics.ChartBundle
	Errors  map[string]error
	Query   models.Query
}

// Err returns the error recorded for slot, if any.
func (s *Snapshot) Err(slot string) error {
	return s.Errors[slot]
}

// Failed reports whether every slot failed.
func (s *Snapshot) Failed() bool {
	return len(s.Errors) == len(Slots)
}

// TakeSnapshot fetches all four slots concurrently. A failing slot does not
// cancel the others; its error is recorded in the result.
func TakeSnapshot(ctx context.Context, a Analytics, q models.Query, now time.Time) *Snapshot {
	snap := &Snapshot{
		Query:  q,
		Taken:  now,
		Errors: make(map[string]error),
	}

	var mu sync.Mutex
	fail := func(slot string, err error) {
		mu.Lock()
		snap.Errors[slot] = fmt.Errorf("%s: %w", slot, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		res, err := LoadPeriod(ctx, a, q, now)
		if err != nil {
			fail(SlotPeriod, err)
			return nil
		}
		snap.Period = res
		return nil
	})
	g.Go(func() error {
		res, err := LoadSummary(ctx, a, q.UserID, now)
		if err != nil {
			fail(SlotSummary, err)
			return nil
		}
		snap.Summary = res
		return nil
	})
	g.Go(func() error {
		res, err := a.GetRate(ctx, q.UserID)
		if err != nil {
			fail(SlotRate, err)
			return nil
		}
		snap.Rate = res
		return nil
	})
	g.Go(func() error {
		res, err := LoadTop(ctx, a, q, now)
		if err != nil {
			fail(SlotTop, err)
			return nil
		}
		snap.Top = res
		return nil
	})
	_ = g.Wait()

	return snap
}
