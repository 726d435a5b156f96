package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kalambet/boardbi/internal/normalize"
)

func batchOf(names ...string) normalize.Batch {
	b := normalize.Batch{Quality: normalize.Quality{Total: len(names)}}
	for _, n := range names {
		b.Records = append(b.Records, normalize.Record{Name: n})
	}
	return b
}

func TestGet_FetchesOnMissAndCaches(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (normalize.Batch, error) {
		calls.Add(1)
		return batchOf("a", "b"), nil
	}

	for range 3 {
		batch, err := c.Get(context.Background(), "deals", fetch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(batch.Records) != 2 {
			t.Fatalf("got %d records, want 2", len(batch.Records))
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
}

func TestGet_ExpiredEntryIsNeverServed(t *testing.T) {
	c := New(10 * time.Millisecond)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (normalize.Batch, error) {
		calls.Add(1)
		return batchOf("x"), nil
	}

	if _, err := c.Get(context.Background(), "deals", fetch); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := c.Get(context.Background(), "deals", fetch); err != nil {
		t.Fatal(err)
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("fetch called %d times, want 2 (expired entry must be refreshed)", got)
	}
}

// N concurrent gets for the same expired key trigger exactly one upstream fetch.
func TestGet_SingleFlight(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (normalize.Batch, error) {
		calls.Add(1)
		<-release
		return batchOf("shared"), nil
	}

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Get(context.Background(), "work_orders", fetch)
		}()
	}

	// Let the goroutines pile up on the in-flight fetch before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
}

func TestGet_DifferentKeysFetchIndependently(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (normalize.Batch, error) {
		calls.Add(1)
		return batchOf("y"), nil
	}

	c.Get(context.Background(), "deals", fetch)
	c.Get(context.Background(), "work_orders", fetch)

	if got := calls.Load(); got != 2 {
		t.Errorf("fetch called %d times, want 2", got)
	}
}

func TestInvalidate(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (normalize.Batch, error) {
		calls.Add(1)
		return batchOf("z"), nil
	}

	c.Get(context.Background(), "deals", fetch)
	c.Invalidate("deals")
	c.Get(context.Background(), "deals", fetch)

	if got := calls.Load(); got != 2 {
		t.Errorf("fetch called %d times, want 2 after invalidation", got)
	}
}

func TestGet_FetchErrorLeavesNoEntry(t *testing.T) {
	c := New(time.Minute)
	boom := errors.New("upstream down")
	_, err := c.Get(context.Background(), "deals", func(ctx context.Context) (normalize.Batch, error) {
		return normalize.Batch{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if _, _, ok := c.Stale("deals"); ok {
		t.Error("failed fetch must not create a cache entry")
	}
}

func TestStale_ReturnsExpiredEntry(t *testing.T) {
	c := New(5 * time.Millisecond)
	c.Get(context.Background(), "deals", func(ctx context.Context) (normalize.Batch, error) {
		return batchOf("old"), nil
	})
	time.Sleep(10 * time.Millisecond)

	batch, age, ok := c.Stale("deals")
	if !ok {
		t.Fatal("expected stale entry")
	}
	if len(batch.Records) != 1 || batch.Records[0].Name != "old" {
		t.Errorf("unexpected stale batch: %+v", batch)
	}
	if age < 10*time.Millisecond {
		t.Errorf("age = %v, want >= 10ms", age)
	}
}

// A caller whose context is canceled mid-fetch must not cancel the fetch
// itself; its result still populates the cache for later callers.
func TestGet_FetchSurvivesCallerCancellation(t *testing.T) {
	c := New(time.Minute)
	fetchCtxErr := make(chan error, 1)
	started := make(chan struct{})
	release := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		c.Get(ctx, "deals", func(fetchCtx context.Context) (normalize.Batch, error) {
			close(started)
			<-release
			fetchCtxErr <- fetchCtx.Err()
			return batchOf("fresh"), nil
		})
	}()

	<-started
	cancel()
	close(release)

	if err := <-fetchCtxErr; err != nil {
		t.Errorf("fetch context canceled with caller: %v", err)
	}
}
