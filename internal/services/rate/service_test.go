package rate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// MockFetcher implements Fetcher for testing.
type MockFetcher struct {
	GetRateFunc func(ctx context.Context, userID int) (*models.RateSnapshot, error)
	mu          sync.Mutex
	calls       []int
}

func (m *MockFetcher) GetRate(ctx context.Context, userID int) (*models.RateSnapshot, error) {
	m.mu.Lock()
	m.calls = append(m.calls, userID)
	m.mu.Unlock()
	return m.GetRateFunc(ctx, userID)
}

func (m *MockFetcher) Calls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}

// MockRecorder implements Recorder for testing.
type MockRecorder struct {
	mu      sync.Mutex
	samples []models.RateSample
	prunes  int
	pruned  int64
	vacuums int
}

func (m *MockRecorder) InsertRateSample(_ context.Context, s *models.RateSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, *s)
	return nil
}

func (m *MockRecorder) PruneRateSamples(_ context.Context, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prunes++
	return m.pruned, nil
}

func (m *MockRecorder) Vacuum(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vacuums++
	return nil
}

func staticFetcher(snap *models.RateSnapshot) *MockFetcher {
	return &MockFetcher{
		GetRateFunc: func(context.Context, int) (*models.RateSnapshot, error) {
			return snap, nil
		},
	}
}

func manualConfig() Config {
	cfg := DefaultConfig()
	cfg.PollInterval = 0
	return cfg
}

func TestRefresh_RecordsSample(t *testing.T) {
	snap := &models.RateSnapshot{RPM: 12, MaxRPM: 60, UsageRPMRate: 20, TPM: 3400}
	rec := &MockRecorder{}
	svc := New(staticFetcher(snap), rec, 5, manualConfig())
	defer func() { _ = svc.Close() }()

	got, err := svc.Refresh(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	latest, at := svc.Latest()
	assert.Equal(t, snap, latest)
	assert.False(t, at.IsZero())

	require.Len(t, rec.samples, 1)
	s := rec.samples[0]
	assert.Equal(t, 5, s.UserID)
	assert.Equal(t, int64(12), s.RPM)
	assert.Equal(t, int64(60), s.MaxRPM)
	assert.Equal(t, int64(3400), s.TPM)
	assert.InDelta(t, 20.0, s.UsageRPMRate, 1e-9)
	assert.Equal(t, 1, rec.prunes)
	assert.Zero(t, rec.vacuums, "nothing pruned, nothing to vacuum")

	// Second refresh inside the prune interval does not prune again.
	_, err = svc.Refresh(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.prunes)
}

func TestRefresh_Events(t *testing.T) {
	svc := New(staticFetcher(&models.RateSnapshot{RPM: 1}), nil, 0, manualConfig())
	defer func() { _ = svc.Close() }()

	_, err := svc.Refresh(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, EventRateRefreshing, (<-svc.Events()).Type)
	ev := <-svc.Events()
	assert.Equal(t, EventRateUpdated, ev.Type)
	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, models.Int(1), ev.Snapshot.RPM)
}

func TestRefresh_Error(t *testing.T) {
	boom := errors.New("boom")
	fetcher := &MockFetcher{
		GetRateFunc: func(context.Context, int) (*models.RateSnapshot, error) {
			return nil, boom
		},
	}
	rec := &MockRecorder{}
	svc := New(fetcher, rec, 0, manualConfig())
	defer func() { _ = svc.Close() }()

	_, err := svc.Refresh(context.Background(), 0)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rec.samples)

	<-svc.Events()
	ev := <-svc.Events()
	assert.Equal(t, EventRateError, ev.Type)
	assert.ErrorIs(t, ev.Error, boom)

	latest, _ := svc.Latest()
	assert.Nil(t, latest)
}

func TestRefresh_DropsSnapshotForPreviousUser(t *testing.T) {
	var svc *Service
	fetcher := &MockFetcher{
		GetRateFunc: func(_ context.Context, userID int) (*models.RateSnapshot, error) {
			if userID == 1 {
				// The user switches while this request is in flight.
				svc.mu.Lock()
				svc.userID = 2
				svc.mu.Unlock()
			}
			return &models.RateSnapshot{RPM: models.Int(userID)}, nil
		},
	}
	rec := &MockRecorder{}
	svc = New(fetcher, rec, 1, manualConfig())
	defer func() { _ = svc.Close() }()

	_, err := svc.Refresh(context.Background(), 1)
	require.NoError(t, err)

	latest, _ := svc.Latest()
	assert.Nil(t, latest)
	assert.Empty(t, rec.samples)
}

func TestRefresh_OtherUser(t *testing.T) {
	fetcher := &MockFetcher{
		GetRateFunc: func(_ context.Context, userID int) (*models.RateSnapshot, error) {
			return &models.RateSnapshot{RPM: models.Int(userID)}, nil
		},
	}
	rec := &MockRecorder{}
	svc := New(fetcher, rec, 3, manualConfig())
	defer func() { _ = svc.Close() }()

	got, err := svc.Refresh(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.Int(42), got.RPM)
	assert.Equal(t, []int{42}, fetcher.Calls())

	// The polled user's state is untouched.
	latest, _ := svc.Latest()
	assert.Nil(t, latest)
	assert.Empty(t, rec.samples)
	assert.Empty(t, svc.Events())
	assert.Equal(t, 3, svc.UserID())
}

func TestRefresh_VacuumsAfterPrune(t *testing.T) {
	rec := &MockRecorder{pruned: 12}
	svc := New(staticFetcher(&models.RateSnapshot{RPM: 1}), rec, 0, manualConfig())
	defer func() { _ = svc.Close() }()

	_, err := svc.Refresh(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.prunes)
	assert.Equal(t, 1, rec.vacuums)
}

func TestSetUserID_ClearsLatest(t *testing.T) {
	svc := New(staticFetcher(&models.RateSnapshot{RPM: 3}), nil, 1, manualConfig())
	defer func() { _ = svc.Close() }()

	_, err := svc.Refresh(context.Background(), 1)
	require.NoError(t, err)

	svc.SetUserID(1)
	latest, _ := svc.Latest()
	assert.NotNil(t, latest, "same user keeps the snapshot")

	svc.SetUserID(8)
	assert.Equal(t, 8, svc.UserID())
	latest, _ = svc.Latest()
	assert.Nil(t, latest)
}

func TestPolling(t *testing.T) {
	fetcher := staticFetcher(&models.RateSnapshot{RPM: 1})
	cfg := DefaultConfig()
	cfg.PollInterval = 20 * time.Millisecond
	svc := New(fetcher, &MockRecorder{}, 4, cfg)

	assert.Eventually(t, func() bool {
		return len(fetcher.Calls()) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	svc.SetUserID(6)
	assert.Eventually(t, func() bool {
		calls := fetcher.Calls()
		return calls[len(calls)-1] == 6
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, svc.Close())
	n := len(fetcher.Calls())
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, n, len(fetcher.Calls()), "no polls after Close")
}

func TestSendEvent_Full(t *testing.T) {
	s := &Service{eventChan: make(chan Event, 1)}

	s.sendEvent(Event{UserID: 1})
	s.sendEvent(Event{UserID: 2})

	assert.Equal(t, 2, (<-s.eventChan).UserID)
}

func TestClose_Idempotent(t *testing.T) {
	svc := New(staticFetcher(&models.RateSnapshot{}), nil, 0, manualConfig())
	assert.NoError(t, svc.Close())
	assert.NoError(t, svc.Close())
}
