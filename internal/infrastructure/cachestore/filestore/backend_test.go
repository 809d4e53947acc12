package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/riskibarqy/nba-advisor/internal/platform/cache"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(t.TempDir(), logging.NewNop())
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	return b
}

func TestBackend_MissingDocumentIsEmpty(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	if _, ok, err := b.Load(context.Background(), "teams:all"); ok || err != nil {
		t.Fatalf("expected no entry, ok=%v err=%v", ok, err)
	}
}

func TestBackend_UpsertLoadDelete(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	ctx := context.Background()
	captured := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

	if err := b.Upsert(ctx, "roster:team=5", cache.Record{Payload: []byte(`[{"id":1}]`), CapturedAt: captured}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rec, ok, err := b.Load(ctx, "roster:team=5")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(rec.Payload) != `[{"id":1}]` || !rec.CapturedAt.Equal(captured) {
		t.Fatalf("unexpected record %s at %s", rec.Payload, rec.CapturedAt)
	}
	if _, err := os.Stat(filepath.Join(b.dir, "roster.json")); err != nil {
		t.Fatalf("expected namespace document: %v", err)
	}

	if err := b.Delete(ctx, "roster:team=5"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := b.Load(ctx, "roster:team=5"); ok {
		t.Fatalf("entry must be gone after delete")
	}
}

func TestBackend_ConcurrentWritersKeepEveryKey(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	ctx := context.Background()
	const writers = 24

	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("odds:game=%d", i)
			if err := b.Upsert(ctx, key, cache.Record{Payload: []byte(fmt.Sprintf(`{"n":%d}`, i)), CapturedAt: time.Now()}); err != nil {
				t.Errorf("upsert %s: %v", key, err)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < writers; i++ {
		key := fmt.Sprintf("odds:game=%d", i)
		rec, ok, err := b.Load(ctx, key)
		if err != nil || !ok {
			t.Fatalf("%s lost: ok=%v err=%v", key, ok, err)
		}
		if string(rec.Payload) != fmt.Sprintf(`{"n":%d}`, i) {
			t.Fatalf("%s has wrong payload %s", key, rec.Payload)
		}
	}
}

func TestBackend_SecondInstanceSeesWrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first, _ := New(dir, logging.NewNop())
	second, _ := New(dir, logging.NewNop())
	ctx := context.Background()

	_ = first.Upsert(ctx, "lineups:team=1:games=1", cache.Record{Payload: []byte(`1`), CapturedAt: time.Now()})
	_ = second.Upsert(ctx, "lineups:team=2:games=1", cache.Record{Payload: []byte(`2`), CapturedAt: time.Now()})

	if _, ok, _ := second.Load(ctx, "lineups:team=1:games=1"); !ok {
		t.Fatalf("write from another instance must survive the next upsert")
	}
}

func TestBackend_InstancesSharingDirKeepEveryKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	warm, err := New(dir, logging.NewNop())
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	matchup, err := New(dir, logging.NewNop())
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	ctx := context.Background()
	const perInstance = 16

	var wg sync.WaitGroup
	for i := 0; i < perInstance; i++ {
		for n, b := range []*Backend{warm, matchup} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				key := fmt.Sprintf("roster:team=%d", n*perInstance+i)
				if err := b.Upsert(ctx, key, cache.Record{Payload: []byte(`[]`), CapturedAt: time.Now()}); err != nil {
					t.Errorf("upsert %s: %v", key, err)
				}
			}()
		}
	}
	wg.Wait()

	for i := 0; i < 2*perInstance; i++ {
		key := fmt.Sprintf("roster:team=%d", i)
		if _, ok, err := warm.Load(ctx, key); err != nil || !ok {
			t.Fatalf("%s lost: ok=%v err=%v", key, ok, err)
		}
	}
}

func TestBackend_UpsertWaitsForDocumentLock(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	held := flock.New(b.Path("odds:game=1") + ".lock")
	if err := held.Lock(); err != nil {
		t.Fatalf("hold lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := b.Upsert(ctx, "odds:game=1", cache.Record{Payload: []byte(`1`), CapturedAt: time.Now()})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected upsert to wait on the held lock, got %v", err)
	}

	if err := held.Unlock(); err != nil {
		t.Fatalf("release lock: %v", err)
	}
	if err := b.Upsert(context.Background(), "odds:game=1", cache.Record{Payload: []byte(`1`), CapturedAt: time.Now()}); err != nil {
		t.Fatalf("upsert after release: %v", err)
	}
}

func TestBackend_CorruptDocumentIsTreatedAsEmpty(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	if err := os.WriteFile(b.Path("teams:all"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	if _, ok, err := b.Load(context.Background(), "teams:all"); ok || err != nil {
		t.Fatalf("corrupt document must read as empty, ok=%v err=%v", ok, err)
	}
	if err := b.Upsert(context.Background(), "teams:all", cache.Record{Payload: []byte(`[]`), CapturedAt: time.Now()}); err != nil {
		t.Fatalf("upsert over corrupt document: %v", err)
	}
}

func TestBackend_WithStore(t *testing.T) {
	t.Parallel()

	store := cache.NewStore(newBackend(t), cache.WithLogger(logging.NewNop()))
	type team struct {
		ID   int64  `json:"id"`
		Abbr string `json:"abbr"`
	}
	calls := 0
	load := func(context.Context) ([]team, error) {
		calls++
		return []team{{ID: 1, Abbr: "ATL"}}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := cache.Fetch(context.Background(), store, cache.Key("teams", "all"), time.Hour, load)
		if err != nil || len(got) != 1 || got[0].Abbr != "ATL" {
			t.Fatalf("fetch %d: %+v err=%v", i, got, err)
		}
	}
	if calls != 1 {
		t.Fatalf("second fetch must come from the file, calls=%d", calls)
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	if got := sanitize("../etc/passwd"); got != "___etc_passwd" {
		t.Fatalf("unexpected sanitized namespace %q", got)
	}
}
