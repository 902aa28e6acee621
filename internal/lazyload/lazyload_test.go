package lazyload_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"arogyam-go/internal/lazyload"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("chunk failed to load")

// drive advances the mock clock until Load returns.
func drive(t *testing.T, clk *clock.Mock, load func() error) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- load() }()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-done:
			return err
		case <-deadline:
			t.Fatal("load did not finish")
			return nil
		default:
			clk.Add(500 * time.Millisecond)
		}
	}
}

func TestComponent_RetryExhaustion(t *testing.T) {
	clk := clock.NewMock()
	var attempts int32
	c := lazyload.New("treatments", func(context.Context) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "", errBoom
	}, lazyload.Options{Priority: lazyload.PriorityLow, RetryCount: 3, RetryDelay: time.Second, Clock: clk})

	err := drive(t, clk, func() error {
		_, err := c.Load(context.Background())
		return err
	})
	require.ErrorIs(t, err, errBoom)
	assert.EqualValues(t, 4, atomic.LoadInt32(&attempts))
	assert.False(t, c.Loaded())
}

func TestComponent_RecoversOnRetry(t *testing.T) {
	clk := clock.NewMock()
	var attempts int32
	c := lazyload.New("catalog", func(context.Context) (string, error) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return "", errBoom
		}
		return "ready", nil
	}, lazyload.Options{Clock: clk})

	var got string
	err := drive(t, clk, func() error {
		var err error
		got, err = c.Load(context.Background())
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "ready", got)
	assert.True(t, c.Loaded())

	// cached: no further loader calls
	got, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ready", got)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestOptions_Backoff(t *testing.T) {
	opts := lazyload.Options{RetryDelay: time.Second}
	assert.Equal(t, time.Second, opts.Backoff(1))
	assert.Equal(t, 2*time.Second, opts.Backoff(2))
	assert.Equal(t, 4*time.Second, opts.Backoff(3))
}

func TestComponent_ZeroRetriesWithNegativeCount(t *testing.T) {
	var attempts int32
	c := lazyload.New("once", func(context.Context) (int, error) {
		atomic.AddInt32(&attempts, 1)
		return 0, errBoom
	}, lazyload.Options{RetryCount: -1, Clock: clock.NewMock()})

	_, err := c.Load(context.Background())
	require.ErrorIs(t, err, errBoom)
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))
}

func TestComponent_HighPriorityWarmsImmediately(t *testing.T) {
	loaded := make(chan struct{})
	c := lazyload.New("hero", func(context.Context) (int, error) {
		close(loaded)
		return 42, nil
	}, lazyload.Options{Priority: lazyload.PriorityHigh, Clock: clock.NewMock()})

	select {
	case <-loaded:
	case <-time.After(time.Second):
		t.Fatal("high priority component was not warmed")
	}
	require.Eventually(t, c.Loaded, time.Second, 5*time.Millisecond)
}

func TestComponent_MediumPriorityWarmsAfterDelay(t *testing.T) {
	clk := clock.NewMock()
	var calls int32
	c := lazyload.New("gallery", func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	}, lazyload.Options{Priority: lazyload.PriorityMedium, Clock: clk})
	defer c.Stop()

	clk.Add(lazyload.MediumWarmupDelay - time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))

	clk.Add(time.Millisecond)
	require.Eventually(t, c.Loaded, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestComponent_LowPriorityNeverWarms(t *testing.T) {
	clk := clock.NewMock()
	var calls int32
	lazyload.New("footer", func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	}, lazyload.Options{Priority: lazyload.PriorityLow, Clock: clk})

	clk.Add(time.Minute)
	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestOnVisible_LoadsOnceWhenIntersecting(t *testing.T) {
	var calls int32
	v := lazyload.NewOnVisible(func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "map", nil
	}, lazyload.VisibleOptions{Threshold: 0.25, Margin: 100})

	ctx := context.Background()
	assert.False(t, v.Observe(ctx, lazyload.Entry{Distance: 400}))
	assert.False(t, v.Observe(ctx, lazyload.Entry{Ratio: 0.1}))
	assert.Zero(t, atomic.LoadInt32(&calls))

	assert.True(t, v.Observe(ctx, lazyload.Entry{Distance: 50}))
	assert.False(t, v.Observe(ctx, lazyload.Entry{Ratio: 1}))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	got, err := v.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "map", got)
}

func TestOnVisible_WaitHonoursContext(t *testing.T) {
	v := lazyload.NewOnVisible(func(context.Context) (int, error) { return 1, nil }, lazyload.VisibleOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := v.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestComponent_WaiterOutlivesCancelledLeader(t *testing.T) {
	var attempts int32
	started := make(chan struct{}, 2)
	c := lazyload.New("remedies", func(ctx context.Context) (string, error) {
		n := atomic.AddInt32(&attempts, 1)
		started <- struct{}{}
		if n == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "ready", nil
	}, lazyload.Options{RetryCount: -1, Clock: clock.NewMock()})

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan error, 1)
	go func() {
		_, err := c.Load(leaderCtx)
		leader <- err
	}()
	<-started

	type result struct {
		value string
		err   error
	}
	waiter := make(chan result, 1)
	go func() {
		v, err := c.Load(context.Background())
		waiter <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	require.ErrorIs(t, <-leader, context.Canceled)
	select {
	case r := <-waiter:
		require.NoError(t, r.err)
		assert.Equal(t, "ready", r.value)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter did not finish")
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&attempts))
	assert.True(t, c.Loaded())
}
