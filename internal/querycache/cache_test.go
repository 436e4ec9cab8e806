package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGet_CachesUntilInvalidated(t *testing.T) {
	c := New()
	ctx := context.Background()

	var calls int
	fetch := func(context.Context) ([]int, error) {
		calls++
		return []int{calls}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Get(ctx, c, Key("tasks", "my"), fetch)
		if err != nil || v[0] != 1 {
			t.Fatalf("Get = %v, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("fetch called %d times", calls)
	}

	c.Invalidate("tasks")
	if stale, cached := c.peek("tasks:my"); !stale || !cached {
		t.Fatalf("Stale = %v, %v", stale, cached)
	}

	v, err := Get(ctx, c, Key("tasks", "my"), fetch)
	if err != nil || v[0] != 2 {
		t.Fatalf("after invalidate Get = %v, %v", v, err)
	}
}

func TestInvalidate_Prefix(t *testing.T) {
	c := New()
	ctx := context.Background()
	load := func(v string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) { return v, nil }
	}

	_, _ = Get(ctx, c, "tasks:all", load("a"))
	_, _ = Get(ctx, c, "users", load("u"))

	c.Invalidate("tasks")

	if stale, _ := c.peek("tasks:all"); !stale {
		t.Error("tasks:all should be stale")
	}
	if stale, _ := c.peek("users"); stale {
		t.Error("users should stay fresh")
	}
}

func TestGet_ErrorIsNotCached(t *testing.T) {
	c := New()
	boom := errors.New("boom")

	_, err := Get(context.Background(), c, "k", func(context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, cached := c.peek("k"); cached {
		t.Fatal("failed fetch must not be cached")
	}
}

func TestGet_StaleResponseGuard(t *testing.T) {
	c := New()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = Get(ctx, c, "tasks:my", func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
	}()

	<-started
	c.Invalidate("tasks")
	close(release)
	<-done

	if _, cached := c.peek("tasks:my"); cached {
		t.Fatal("response started before invalidation was stored")
	}

	v, err := Get(ctx, c, "tasks:my", func(context.Context) (string, error) { return "new", nil })
	if err != nil || v != "new" {
		t.Fatalf("Get = %q, %v", v, err)
	}
}

func TestGet_SharedFetch(t *testing.T) {
	c := New()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = Get(context.Background(), c, "users", func(context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 1, nil
			})
		}()
	}

	close(release)
	wg.Wait()

	if n := calls.Load(); n < 1 || n > 8 {
		t.Fatalf("calls = %d", n)
	}
	if _, cached := c.peek("users"); !cached {
		t.Fatal("value not cached")
	}
}

func TestClear(t *testing.T) {
	c := New()
	_, _ = Get(context.Background(), c, "me", func(context.Context) (int, error) { return 1, nil })
	c.Clear()
	if _, cached := c.peek("me"); cached {
		t.Fatal("Clear kept entry")
	}
}

// peek reports whether key holds a value and whether that value is stale.
func (c *Cache) peek(key string) (stale bool, cached bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false, false
	}
	return e.stale, true
}
