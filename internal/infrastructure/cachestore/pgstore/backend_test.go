package pgstore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/nba-advisor/internal/platform/cache"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
)

func newMockBackend(t *testing.T) (*Backend, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return New(sqlx.NewDb(db, "postgres"), logging.NewNop()), mock
}

func TestBackend_LoadExistingEntry(t *testing.T) {
	backend, mock := newMockBackend(t)
	captured := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT cache_key, namespace, payload, captured_at FROM cache_entries WHERE cache_key = $1 LIMIT 1")).
		WithArgs("roster:team=5").
		WillReturnRows(sqlmock.NewRows([]string{"cache_key", "namespace", "payload", "captured_at"}).
			AddRow("roster:team=5", "roster", `[{"id":1}]`, captured))

	rec, ok, err := backend.Load(context.Background(), "roster:team=5")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(rec.Payload) != `[{"id":1}]` || !rec.CapturedAt.Equal(captured) {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBackend_LoadMissingRowAndMissingTable(t *testing.T) {
	backend, mock := newMockBackend(t)
	selectQuery := regexp.QuoteMeta("SELECT cache_key, namespace, payload, captured_at FROM cache_entries")

	mock.ExpectQuery(selectQuery).
		WithArgs("teams:all").
		WillReturnRows(sqlmock.NewRows([]string{"cache_key", "namespace", "payload", "captured_at"}))
	mock.ExpectQuery(selectQuery).
		WithArgs("teams:all").
		WillReturnError(&pq.Error{Code: "42P01", Message: `relation "cache_entries" does not exist`})

	for i := 0; i < 2; i++ {
		_, ok, err := backend.Load(context.Background(), "teams:all")
		if err != nil || ok {
			t.Fatalf("attempt %d: expected absent entry, ok=%v err=%v", i, ok, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBackend_LoadPropagatesOtherErrors(t *testing.T) {
	backend, mock := newMockBackend(t)
	mock.ExpectQuery("SELECT").WillReturnError(&pq.Error{Code: "57P01", Message: "terminating connection"})

	if _, _, err := backend.Load(context.Background(), "teams:all"); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestBackend_UpsertWritesSingleRow(t *testing.T) {
	backend, mock := newMockBackend(t)
	captured := time.Date(2026, 1, 15, 18, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cache_entries (cache_key, namespace, payload, captured_at) VALUES ($1, $2, $3, $4) ON CONFLICT (cache_key) DO UPDATE SET")).
		WithArgs("odds:game=9", "odds", `{"v":1}`, captured.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := backend.Upsert(context.Background(), "odds:game=9", cache.Record{Payload: []byte(`{"v":1}`), CapturedAt: captured})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBackend_Delete(t *testing.T) {
	backend, mock := newMockBackend(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cache_entries WHERE cache_key = $1")).
		WithArgs("odds:game=9").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := backend.Delete(context.Background(), "odds:game=9"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBackend_WithStore(t *testing.T) {
	backend, mock := newMockBackend(t)
	now := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	store := cache.NewStore(backend, cache.WithClock(func() time.Time { return now }))

	mock.ExpectQuery("SELECT").
		WithArgs("teams:all").
		WillReturnRows(sqlmock.NewRows([]string{"cache_key", "namespace", "payload", "captured_at"}).
			AddRow("teams:all", "teams", `["LAL","BOS"]`, now.Add(-time.Hour)))

	got, err := cache.Fetch(context.Background(), store, "teams:all", 2400*time.Hour, func(context.Context) ([]string, error) {
		t.Fatalf("fresh postgres entry must not reload")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 || got[1] != "BOS" {
		t.Fatalf("unexpected value: %v", got)
	}
}
