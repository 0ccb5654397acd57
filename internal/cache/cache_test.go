package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(t *testing.T, ttl time.Duration, max int) (*Cache, *clock) {
	t.Helper()
	c := New(ttl, max)
	clk := &clock{t: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
	c.now = clk.now
	return c, clk
}

func TestCache_PutGet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 8)
	key := Key("trending", "https://tradestie.com/api/v1/apps/reddit")

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Put(key, []byte(`[]`))
	body, ok := c.Get(key)
	if !ok || string(body) != `[]` {
		t.Fatalf("expected hit with body [], got %q ok=%v", body, ok)
	}
}

func TestCache_Expiry(t *testing.T) {
	c, clk := newTestCache(t, time.Minute, 8)
	c.Put("breeds", []byte("data"))

	clk.advance(59 * time.Second)
	if _, ok := c.Get("breeds"); !ok {
		t.Fatal("expected hit before the TTL elapses")
	}
	clk.advance(time.Second)
	if _, ok := c.Get("breeds"); ok {
		t.Error("expected miss once the TTL elapses")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped on read, len=%d", c.Len())
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 2)
	c.Put("aapl", []byte("1"))
	c.Put("msft", []byte("2"))
	c.Get("aapl") // aapl is now most recent
	c.Put("tsla", []byte("3"))

	if _, ok := c.Get("msft"); ok {
		t.Error("msft was least recently used and should be evicted")
	}
	for _, k := range []string{"aapl", "tsla"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
}

func TestCache_PutRefreshesExisting(t *testing.T) {
	c, clk := newTestCache(t, time.Minute, 2)
	c.Put("k", []byte("old"))
	clk.advance(50 * time.Second)
	c.Put("k", []byte("new"))
	clk.advance(50 * time.Second)

	body, ok := c.Get("k")
	if !ok || string(body) != "new" {
		t.Errorf("expected refreshed entry, got %q ok=%v", body, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected one entry, got %d", c.Len())
	}
}

func TestCache_NilDisables(t *testing.T) {
	var c *Cache = New(0, 10)
	if c != nil {
		t.Fatal("zero TTL should return a nil cache")
	}
	c.Put("k", []byte("v"))
	if _, ok := c.Get("k"); ok || c.Len() != 0 {
		t.Error("nil cache must never hit")
	}

	ctx := context.Background()
	calls := 0
	for i := 0; i < 2; i++ {
		if _, hit, _ := c.Fetch(ctx, "k", func() ([]byte, error) { calls++; return []byte("v"), nil }); hit {
			t.Error("nil cache reported a hit")
		}
	}
	if calls != 2 {
		t.Errorf("expected every Fetch to call through, got %d", calls)
	}
}

func TestCache_FetchCachesSuccessOnly(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 8)
	ctx := context.Background()
	boom := errors.New("upstream down")

	if _, _, err := c.Fetch(ctx, "k", func() ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatal("errors must not be cached")
	}

	body, hit, err := c.Fetch(ctx, "k", func() ([]byte, error) { return []byte("ok"), nil })
	if err != nil || hit || string(body) != "ok" {
		t.Fatalf("first success: body=%q hit=%v err=%v", body, hit, err)
	}
	body, hit, _ = c.Fetch(ctx, "k", func() ([]byte, error) { t.Error("should not refetch"); return nil, nil })
	if !hit || string(body) != "ok" {
		t.Errorf("second call should hit, body=%q hit=%v", body, hit)
	}
}

func TestCache_FetchCoalescesConcurrentMisses(t *testing.T) {
	c := New(time.Minute, 8)
	ctx := context.Background()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Fetch(ctx, "trending", func() ([]byte, error) {
				calls.Add(1)
				<-release
				return []byte("rows"), nil
			})
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("expected one upstream fetch for concurrent misses, got %d", n)
	}
}

func TestCache_FetchWaiterCancelDoesNotAbortOthers(t *testing.T) {
	c := New(time.Minute, 8)
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func() ([]byte, error) {
		close(started)
		<-release
		return []byte("rows"), nil
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, _, err := c.Fetch(ctxA, "trending", fetch)
		errA <- err
	}()
	<-started

	type result struct {
		body []byte
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		body, _, err := c.Fetch(context.Background(), "trending", func() ([]byte, error) {
			t.Error("second waiter must join the in-flight fetch")
			return nil, nil
		})
		resB <- result{body, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled waiter: expected context.Canceled, got %v", err)
	}
	close(release)

	b := <-resB
	if b.err != nil || string(b.body) != "rows" {
		t.Fatalf("other waiter: body=%q err=%v", b.body, b.err)
	}
	if _, ok := c.Get("trending"); !ok {
		t.Error("shared result should still be cached")
	}
}

func TestCache_ConcurrentPutGet(t *testing.T) {
	c := New(time.Minute, 16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", (n*j)%32)
				c.Put(key, []byte(key))
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("cache grew past its bound: %d", c.Len())
	}
}
