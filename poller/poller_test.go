package poller_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/pcrs-client/poller"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func counting(calls *atomic.Int32) func(context.Context) error {
	return func(context.Context) error {
		calls.Add(1)
		return nil
	}
}

func TestPoll_StopsAtDeadline(t *testing.T) {
	var calls atomic.Int32
	cfg := poller.Config{Interval: 10 * time.Millisecond, Deadline: 65 * time.Millisecond}

	start := time.Now()
	res := poller.Poll(context.Background(), cfg, counting(&calls), nil)

	require.True(t, res.TimedOut)
	require.False(t, res.Completed)
	require.GreaterOrEqual(t, time.Since(start), cfg.Deadline)
	require.Equal(t, int(calls.Load()), res.Polls)
	require.Greater(t, res.Polls, 0)
	require.LessOrEqual(t, res.Polls, 6)
}

func TestPoll_StopsWhenDone(t *testing.T) {
	var calls atomic.Int32
	cfg := poller.Config{Interval: 5 * time.Millisecond, Deadline: time.Second}

	res := poller.Poll(context.Background(), cfg, counting(&calls), func() bool { return calls.Load() >= 3 })

	require.True(t, res.Completed)
	require.False(t, res.TimedOut)
	require.Equal(t, 3, res.Polls)
}

func TestPoll_RefetchErrorsKeepPolling(t *testing.T) {
	var calls atomic.Int32
	cfg := poller.Config{Interval: 5 * time.Millisecond, Deadline: time.Second}
	refetch := func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("backend unavailable")
		}
		return nil
	}

	res := poller.Poll(context.Background(), cfg, refetch, func() bool { return true })

	require.True(t, res.Completed)
	require.Equal(t, 3, res.Polls)
}

func TestPoll_StopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	cfg := poller.Config{Interval: 5 * time.Millisecond, Deadline: time.Minute}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	res := poller.Poll(ctx, cfg, counting(&calls), nil)

	require.True(t, res.Cancelled)
	require.False(t, res.TimedOut)
}

func TestStart_Stop(t *testing.T) {
	var calls atomic.Int32
	cfg := poller.Config{Interval: time.Millisecond, Deadline: time.Minute}

	h := poller.Start(context.Background(), cfg, counting(&calls), nil)
	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)

	res := h.Stop()
	require.True(t, res.Cancelled)

	stopped := calls.Load()
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, stopped, calls.Load(), "no refetch after Stop")

	// Stop is idempotent.
	require.Equal(t, res, h.Stop())
}

func TestStart_Wait(t *testing.T) {
	var calls atomic.Int32
	cfg := poller.Config{Interval: time.Millisecond, Deadline: 20 * time.Millisecond}

	h := poller.Start(context.Background(), cfg, counting(&calls), nil)
	res, err := h.Wait(context.Background())
	require.NoError(t, err)
	require.True(t, res.TimedOut)

	select {
	case <-h.Done():
	default:
		t.Fatal("Done must be closed after Wait returns")
	}
}
