package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/nba-advisor/internal/platform/cache"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	qb "github.com/riskibarqy/nba-advisor/internal/platform/querybuilder"
)

const (
	tableName = "cache_entries"

	upsertSuffix = "ON CONFLICT (cache_key) DO UPDATE SET " +
		"payload = EXCLUDED.payload, " +
		"captured_at = EXCLUDED.captured_at, " +
		"namespace = EXCLUDED.namespace, " +
		"updated_at = NOW()"

	undefinedTable = pq.ErrorCode("42P01")
)

type entryTableModel struct {
	Key        string    `db:"cache_key"`
	Namespace  string    `db:"namespace"`
	Payload    string    `db:"payload"`
	CapturedAt time.Time `db:"captured_at"`
}

// Backend stores one row per cache key in cache_entries.
type Backend struct {
	db     *sqlx.DB
	logger *logging.Logger
}

var _ cache.Backend = (*Backend)(nil)

func New(db *sqlx.DB, logger *logging.Logger) *Backend {
	if logger == nil {
		logger = logging.Default()
	}
	return &Backend{db: db, logger: logger.Named("pgstore")}
}

func (b *Backend) Load(ctx context.Context, key string) (cache.Record, bool, error) {
	query, args, err := qb.Select("cache_key", "namespace", "payload", "captured_at").
		From(tableName).
		Where(qb.Eq("cache_key", key)).
		Limit(1).
		ToSQL()
	if err != nil {
		return cache.Record{}, false, fmt.Errorf("build get cache entry query: %w", err)
	}

	var row entryTableModel
	if err := b.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return cache.Record{}, false, nil
		}
		if isUndefinedTable(err) {
			b.logger.WarnContext(ctx, "cache table missing, treating as empty", "table", tableName)
			return cache.Record{}, false, nil
		}
		return cache.Record{}, false, fmt.Errorf("get cache entry: %w", err)
	}

	return cache.Record{Payload: []byte(row.Payload), CapturedAt: row.CapturedAt.UTC()}, true, nil
}

func (b *Backend) Upsert(ctx context.Context, key string, rec cache.Record) error {
	query, args, err := qb.InsertModel(tableName, entryTableModel{
		Key:        key,
		Namespace:  cache.Namespace(key),
		Payload:    string(rec.Payload),
		CapturedAt: rec.CapturedAt.UTC(),
	}, upsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert cache entry query: %w", err)
	}

	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	query, args, err := qb.DeleteFrom(tableName).Where(qb.Eq("cache_key", key)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete cache entry query: %w", err)
	}

	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		if isUndefinedTable(err) {
			return nil
		}
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == undefinedTable
}
