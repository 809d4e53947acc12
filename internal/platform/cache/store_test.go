package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
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

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)}
	return NewStore(NewMemoryBackend(), WithClock(clock.Now)), clock
}

type rosterRow struct {
	ID     int64  `json:"id"`
	TeamID int64  `json:"team_id"`
	Name   string `json:"name"`
}

func TestEntry_FreshAtBoundary(t *testing.T) {
	t.Parallel()

	captured := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entry := Entry[int]{Value: 1, CapturedAt: captured}
	ttl := time.Hour

	cases := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{name: "just captured", age: 0, want: true},
		{name: "one nanosecond before ttl", age: ttl - time.Nanosecond, want: true},
		{name: "age equals ttl", age: ttl, want: false},
		{name: "past ttl", age: ttl + time.Second, want: false},
	}
	for _, tc := range cases {
		if got := entry.FreshAt(captured.Add(tc.age), ttl); got != tc.want {
			t.Fatalf("%s: FreshAt=%v want %v", tc.name, got, tc.want)
		}
	}
	if entry.FreshAt(captured, 0) {
		t.Fatalf("zero ttl must never be fresh")
	}
}

func TestStore_PutThenGetRoundTripsValueAndTimestamp(t *testing.T) {
	t.Parallel()

	store, clock := newTestStore()
	ctx := context.Background()
	key := Key("roster", "team=5")

	want := []rosterRow{{ID: 1, TeamID: 5, Name: "A"}, {ID: 2, TeamID: 5, Name: "B"}}
	put, err := Put(ctx, store, key, want)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !put.CapturedAt.Equal(clock.Now()) {
		t.Fatalf("unexpected captured at: %s", put.CapturedAt)
	}

	got, ok, err := Get[[]rosterRow](ctx, store, key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(got.Value) != 2 || got.Value[1].Name != "B" {
		t.Fatalf("unexpected value: %+v", got.Value)
	}
	if !got.CapturedAt.Equal(put.CapturedAt) {
		t.Fatalf("timestamp mismatch: %s vs %s", got.CapturedAt, put.CapturedAt)
	}

	clock.Advance(time.Minute)
	overwritten, err := Put(ctx, store, key, []rosterRow{{ID: 3, TeamID: 5}})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = Get[[]rosterRow](ctx, store, key)
	if len(got.Value) != 1 || got.Value[0].ID != 3 || !got.CapturedAt.Equal(overwritten.CapturedAt) {
		t.Fatalf("overwrite must replace value and timestamp, got %+v", got)
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore()
	_, ok, err := Get[string](context.Background(), store, Key("teams", "all"))
	if err != nil || ok {
		t.Fatalf("expected absent entry, ok=%v err=%v", ok, err)
	}
}

func TestFetch_FreshEntrySkipsLoad(t *testing.T) {
	t.Parallel()

	store, clock := newTestStore()
	ctx := context.Background()
	var calls atomic.Int32
	load := func(context.Context) (string, error) {
		calls.Add(1)
		return "v" + string(rune('0'+calls.Load())), nil
	}

	ttl := 10 * time.Minute
	first, err := Fetch(ctx, store, Key("odds", "game=1"), ttl, load)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	clock.Advance(ttl - time.Second)
	second, err := Fetch(ctx, store, Key("odds", "game=1"), ttl, load)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if first != second || calls.Load() != 1 {
		t.Fatalf("fresh entry must be served from cache: first=%s second=%s calls=%d", first, second, calls.Load())
	}

	clock.Advance(time.Second)
	third, err := Fetch(ctx, store, Key("odds", "game=1"), ttl, load)
	if err != nil {
		t.Fatalf("third fetch: %v", err)
	}
	if calls.Load() != 2 || third == first {
		t.Fatalf("stale entry must refetch exactly once: calls=%d third=%s", calls.Load(), third)
	}

	entry, _, _ := Get[string](ctx, store, Key("odds", "game=1"))
	if entry.Value != third || !entry.CapturedAt.Equal(clock.Now()) {
		t.Fatalf("refetch must overwrite cache, got %+v", entry)
	}
}

func TestFetch_ZeroTTLAlwaysLoadsAndNeverStores(t *testing.T) {
	t.Parallel()

	backend := NewMemoryBackend()
	store := NewStore(backend)
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		if _, err := Fetch(context.Background(), store, Key("injuries", "team=5"), 0, func(context.Context) (int, error) {
			calls.Add(1)
			return 1, nil
		}); err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("uncached fetch must always load, calls=%d", calls.Load())
	}
	if backend.Len() != 0 {
		t.Fatalf("uncached fetch must not persist, len=%d", backend.Len())
	}
}

func TestFetch_LoadErrorIsNotCached(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore()
	boom := errors.New("boom")
	_, err := Fetch(context.Background(), store, Key("teams", "all"), time.Hour, func(context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	if _, ok, _ := Get[int](context.Background(), store, Key("teams", "all")); ok {
		t.Fatalf("failed load must not write an entry")
	}
}

func TestFetch_KeyIsolation(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore()
	ctx := context.Background()
	k2025 := Key("season_averages", "team=5:season=2025:type=regular")
	k2026 := Key("season_averages", "team=5:season=2026:type=regular")

	if _, err := Fetch(ctx, store, k2025, time.Hour, func(context.Context) (string, error) { return "2025", nil }); err != nil {
		t.Fatalf("fetch 2025: %v", err)
	}
	got, err := Fetch(ctx, store, k2026, time.Hour, func(context.Context) (string, error) { return "2026", nil })
	if err != nil {
		t.Fatalf("fetch 2026: %v", err)
	}
	if got != "2026" {
		t.Fatalf("2026 fetch must not hit 2025 entry, got %s", got)
	}
	old, _, _ := Get[string](ctx, store, k2025)
	if old.Value != "2025" {
		t.Fatalf("2025 entry overwritten: %s", old.Value)
	}
}

func TestFetch_CollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore()
	var calls atomic.Int32
	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := Fetch(context.Background(), store, "same-key", time.Minute, loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestFetch_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore()
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	loading := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	load := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(loading)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-release:
			return "teams", nil
		}
	}

	firstErr := make(chan error, 1)
	go func() {
		_, err := Fetch(firstCtx, store, Key("teams", "all"), time.Hour, load)
		firstErr <- err
	}()
	<-loading

	secondDone := make(chan error, 1)
	var second string
	go func() {
		v, err := Fetch(context.Background(), store, Key("teams", "all"), time.Hour, load)
		second = v
		secondDone <- err
	}()

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller must see its own cancellation, got %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)

	if err := <-secondDone; err != nil {
		t.Fatalf("live caller failed: %v", err)
	}
	if second != "teams" || calls.Load() != 1 {
		t.Fatalf("expected one shared load, got value=%q calls=%d", second, calls.Load())
	}
	if entry, ok, _ := Get[string](context.Background(), store, Key("teams", "all")); !ok || entry.Value != "teams" {
		t.Fatalf("shared load must be cached, got ok=%v entry=%+v", ok, entry)
	}
}

func TestGet_UndecodablePayloadIsAbsent(t *testing.T) {
	t.Parallel()

	backend := NewMemoryBackend()
	store := NewStore(backend)
	_ = backend.Upsert(context.Background(), "k", Record{Payload: []byte("{not json"), CapturedAt: time.Now()})

	if _, ok, err := Get[[]rosterRow](context.Background(), store, "k"); ok || err != nil {
		t.Fatalf("expected absent entry, ok=%v err=%v", ok, err)
	}
}

func TestKeyAndNamespace(t *testing.T) {
	t.Parallel()

	key := Key("lineups", "team=5:games=1,2")
	if key != "lineups:team=5:games=1,2" {
		t.Fatalf("unexpected key %q", key)
	}
	if ns := Namespace(key); ns != "lineups" {
		t.Fatalf("unexpected namespace %q", ns)
	}
	if ns := Namespace("plain"); ns != "" {
		t.Fatalf("expected empty namespace, got %q", ns)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
