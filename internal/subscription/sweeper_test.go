// AngelaMos | 2026
// sweeper_test.go

package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedActive(t *testing.T, repo *memRepo, id, providerID string, end time.Time) {
	t.Helper()
	start := end.AddDate(0, -1, 0)
	require.NoError(t, repo.Create(context.Background(), &Subscription{
		ID:         id,
		ProviderID: providerID,
		Plan:       "basic",
		Status:     StatusActive,
		StartDate:  &start,
		EndDate:    &end,
	}))
}

func TestSweepOnceExpiresAndNotifies(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	notifier := &fakeNotifier{}

	seedActive(t, repo, "lapsed", "p1", now.Add(-time.Hour))
	seedActive(t, repo, "soon", "p2", now.Add(48*time.Hour))
	seedActive(t, repo, "later", "p3", now.Add(20*24*time.Hour))

	sweeper := NewSweeper(repo, notifier, testConfig(), nil, WithClock(func() time.Time { return now }))

	report, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Expired)
	assert.Equal(t, 1, report.Notified)
	assert.Equal(t, StatusExpired, repo.status("lapsed"))
	assert.Equal(t, StatusActive, repo.status("soon"))
	assert.True(t, notifier.sent["soon"])

	report, err = sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Expired)
	assert.Zero(t, report.Notified)
}

func TestSweepOnceDrainsInBatches(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemRepo()

	cfg := testConfig()
	cfg.SweepBatchSize = 2
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		seedActive(t, repo, id, "p-"+id, now.Add(-time.Minute))
	}

	sweeper := NewSweeper(repo, nil, cfg, nil, WithClock(func() time.Time { return now }))

	report, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), report.Expired)
}

func TestSweepOnceNotifierFailureIsNotFatal(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	seedActive(t, repo, "soon", "p1", now.Add(time.Hour))

	notifier := &fakeNotifier{err: errors.New("redis down")}
	sweeper := NewSweeper(repo, notifier, testConfig(), nil, WithClock(func() time.Time { return now }))

	report, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Notified)
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.SweepInterval = 5 * time.Millisecond
	sweeper := NewSweeper(newMemRepo(), nil, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
