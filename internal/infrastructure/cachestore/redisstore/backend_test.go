package redisstore

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/riskibarqy/nba-advisor/internal/platform/cache"
)

func TestDecodeRecord(t *testing.T) {
	t.Parallel()

	captured := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)
	rec, ok, err := decodeRecord(map[string]string{
		fieldPayload:    `{"id":1}`,
		fieldCapturedAt: strconv.FormatInt(captured.UnixNano(), 10),
	})
	if err != nil || !ok {
		t.Fatalf("decode: ok=%v err=%v", ok, err)
	}
	if string(rec.Payload) != `{"id":1}` || !rec.CapturedAt.Equal(captured) {
		t.Fatalf("unexpected record %+v", rec)
	}

	if _, ok, err := decodeRecord(map[string]string{}); ok || err != nil {
		t.Fatalf("empty hash must be a missing key, ok=%v err=%v", ok, err)
	}
	if _, _, err := decodeRecord(map[string]string{fieldPayload: "x", fieldCapturedAt: "yesterday"}); err == nil {
		t.Fatalf("expected captured_at parse error")
	}
	if _, _, err := decodeRecord(map[string]string{fieldCapturedAt: "1"}); err == nil {
		t.Fatalf("expected missing payload error")
	}
}

func TestBackend_AgainstRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	prefix := "nba-advisor:test:" + strconv.FormatInt(time.Now().UnixNano(), 10) + ":"
	b, err := Dial(ctx, Config{Addr: addr, Prefix: prefix, Retention: time.Minute})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer b.Close()

	key := cache.Key("odds", "game=1")
	defer b.Delete(ctx, key)

	if _, ok, err := b.Load(ctx, key); ok || err != nil {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	captured := time.Now().UTC().Truncate(time.Millisecond)
	if err := b.Upsert(ctx, key, cache.Record{Payload: []byte(`[1,2]`), CapturedAt: captured}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rec, ok, err := b.Load(ctx, key)
	if err != nil || !ok || string(rec.Payload) != `[1,2]` || !rec.CapturedAt.Equal(captured) {
		t.Fatalf("unexpected load %+v ok=%v err=%v", rec, ok, err)
	}

	if err := b.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := b.Load(ctx, key); ok {
		t.Fatalf("key must be gone after delete")
	}
}
