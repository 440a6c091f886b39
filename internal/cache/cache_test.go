package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"portfolio-graphs/internal/storage/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestCache() (*Cache, *memory.GraphCacheStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.NewGraphCacheStore()
	return New(Options{Store: store, Now: clock.Now}), store, clock
}

// counter returns a compute func yielding "v1", "v2", ... and the number of calls.
func counter() (ComputeFunc, *int32) {
	var n int32
	return func(context.Context) ([]byte, error) {
		i := atomic.AddInt32(&n, 1)
		return []byte{'v', byte('0' + i)}, nil
	}, &n
}

func TestGetOrCompute_TTLBoundary(t *testing.T) {
	c, _, clock := newTestCache()
	ctx := context.Background()
	compute, calls := counter()
	ttl := 10 * time.Minute
	t0 := clock.Now()

	data, hit, err := c.GetOrCompute(ctx, "graph_x", "h", ttl, compute)
	if err != nil || hit || string(data) != "v1" {
		t.Fatalf("first call: %q hit=%v err=%v", data, hit, err)
	}

	clock.Set(t0.Add(ttl - time.Millisecond))
	data, hit, _ = c.GetOrCompute(ctx, "graph_x", "h", ttl, compute)
	if !hit || string(data) != "v1" {
		t.Errorf("expected cached v1 just before expiry, got %q hit=%v", data, hit)
	}

	clock.Set(t0.Add(ttl + time.Millisecond))
	data, hit, _ = c.GetOrCompute(ctx, "graph_x", "h", ttl, compute)
	if hit || string(data) != "v2" {
		t.Errorf("expected recomputed v2 after expiry, got %q hit=%v", data, hit)
	}
	if *calls != 2 {
		t.Errorf("expected 2 computations, got %d", *calls)
	}
}

func TestGetOrCompute_ZeroTTLDisablesCaching(t *testing.T) {
	c, store, _ := newTestCache()
	compute, calls := counter()

	for i := 0; i < 3; i++ {
		if _, hit, err := c.GetOrCompute(context.Background(), "graph_x", "h", 0, compute); err != nil || hit {
			t.Fatalf("call %d: hit=%v err=%v", i, hit, err)
		}
	}
	if *calls != 3 {
		t.Errorf("expected 3 computations, got %d", *calls)
	}
	if store.Len() != 0 {
		t.Errorf("expected nothing stored, got %d entries", store.Len())
	}
}

func TestGetOrCompute_ErrorsAreNotStored(t *testing.T) {
	c, store, _ := newTestCache()
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute(context.Background(), "graph_x", "h", time.Hour, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("failed computation was stored")
	}

	compute, _ := counter()
	data, hit, err := c.GetOrCompute(context.Background(), "graph_x", "h", time.Hour, compute)
	if err != nil || hit || string(data) != "v1" {
		t.Errorf("expected fresh computation after failure, got %q hit=%v err=%v", data, hit, err)
	}
}

func TestGetOrCompute_ConcurrentMissesComputeOnce(t *testing.T) {
	c, _, _ := newTestCache()
	var calls int32
	release := make(chan struct{})
	compute := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("shared"), nil
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, _, err := c.GetOrCompute(context.Background(), "graph_x", "h", time.Hour, compute)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
			}
			results[i] = string(data)
		}(i)
	}

	// let every caller reach the flight before the computation finishes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 computation, got %d", n)
	}
	for i, r := range results {
		if r != "shared" {
			t.Errorf("caller %d got %q", i, r)
		}
	}
}

func TestGetOrCompute_KeysAreIndependent(t *testing.T) {
	c, _, _ := newTestCache()
	compute, calls := counter()
	ctx := context.Background()

	_, _, _ = c.GetOrCompute(ctx, "graph_a", "h", time.Hour, compute)
	_, _, _ = c.GetOrCompute(ctx, "graph_b", "h", time.Hour, compute)
	_, _, _ = c.GetOrCompute(ctx, "graph_a", "h2", time.Hour, compute)
	if *calls != 3 {
		t.Errorf("expected 3 computations for 3 keys, got %d", *calls)
	}
}

func TestRefresh(t *testing.T) {
	c, _, _ := newTestCache()
	compute, calls := counter()
	ctx := context.Background()

	_, _, _ = c.GetOrCompute(ctx, "graph_x", "h", time.Hour, compute)
	data, err := c.Refresh(ctx, "graph_x", "h", time.Hour, compute)
	if err != nil || string(data) != "v2" {
		t.Fatalf("refresh: %q %v", data, err)
	}

	data, hit, _ := c.GetOrCompute(ctx, "graph_x", "h", time.Hour, compute)
	if !hit || string(data) != "v2" {
		t.Errorf("expected refreshed value to be cached, got %q hit=%v", data, hit)
	}
	if *calls != 2 {
		t.Errorf("expected 2 computations, got %d", *calls)
	}
}

func TestPurge(t *testing.T) {
	c, store, clock := newTestCache()
	compute, _ := counter()
	ctx := context.Background()
	t0 := clock.Now()

	_, _, _ = c.GetOrCompute(ctx, "graph_x", "old", time.Hour, compute)
	clock.Set(t0.Add(2 * time.Hour))
	_, _, _ = c.GetOrCompute(ctx, "graph_x", "new", time.Hour, compute)

	n, err := c.Purge(ctx, time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 || store.Len() != 1 {
		t.Errorf("expected 1 purged and 1 kept, got %d purged, %d kept", n, store.Len())
	}
}

func TestGetOrCompute_CancelledLeaderDoesNotFailWaiters(t *testing.T) {
	c, store, _ := newTestCache()

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	compute := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		close(started)
		select {
		case <-release:
			return []byte("value"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type outcome struct {
		data []byte
		err  error
	}
	leader := make(chan outcome, 1)
	go func() {
		data, _, err := c.GetOrCompute(leaderCtx, "graph", "h", time.Hour, compute)
		leader <- outcome{data, err}
	}()
	<-started

	waiter := make(chan outcome, 1)
	go func() {
		data, _, err := c.GetOrCompute(context.Background(), "graph", "h", time.Hour, func(ctx context.Context) ([]byte, error) {
			atomic.AddInt32(&calls, 1)
			return []byte("second"), nil
		})
		waiter <- outcome{data, err}
	}()

	// give the waiter time to join the flight before the leader goes away
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)

	for name, ch := range map[string]chan outcome{"leader": leader, "waiter": waiter} {
		got := <-ch
		if got.err != nil {
			t.Fatalf("%s: unexpected error: %v", name, got.err)
		}
		if string(got.data) != "value" {
			t.Errorf("%s: got %q, want %q", name, got.data, "value")
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compute ran %d times, want 1", n)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d entries, want 1", store.Len())
	}
}

func TestRefresh_CancelledCallerStillStores(t *testing.T) {
	c, store, _ := newTestCache()

	ctx, cancel := context.WithCancel(context.Background())
	data, err := c.Refresh(ctx, "graph", "h", time.Hour, func(ctx context.Context) ([]byte, error) {
		cancel()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte("fresh"), nil
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if string(data) != "fresh" {
		t.Errorf("got %q, want %q", data, "fresh")
	}
	if store.Len() != 1 {
		t.Errorf("store has %d entries, want 1", store.Len())
	}
}
