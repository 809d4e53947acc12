package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/nba-advisor/internal/platform/cache"
)

const (
	defaultPrefix = "nba-advisor:cache:"

	fieldPayload    = "payload"
	fieldCapturedAt = "captured_at"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// Retention expires idle keys in redis. It bounds memory only; freshness is
	// decided by the cache store.
	Retention time.Duration
}

// Backend stores one redis hash per cache key.
type Backend struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

func New(client redis.UniversalClient, cfg Config) *Backend {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Backend{client: client, prefix: prefix, retention: cfg.Retention}
}

// Dial connects to cfg.Addr and verifies the connection with PING.
func Dial(ctx context.Context, cfg Config) (*Backend, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return New(client, cfg), nil
}

func (b *Backend) Load(ctx context.Context, key string) (cache.Record, bool, error) {
	fields, err := b.client.HGetAll(ctx, b.prefix+key).Result()
	if err != nil {
		return cache.Record{}, false, fmt.Errorf("redis hgetall %s: %w", key, err)
	}
	return decodeRecord(fields)
}

func (b *Backend) Upsert(ctx context.Context, key string, rec cache.Record) error {
	redisKey := b.prefix + key
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisKey,
			fieldPayload, rec.Payload,
			fieldCapturedAt, strconv.FormatInt(rec.CapturedAt.UTC().UnixNano(), 10),
		)
		if b.retention > 0 {
			pipe.Expire(ctx, redisKey, b.retention)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis upsert %s: %w", key, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}

// decodeRecord reads a stored hash. An empty hash is a missing key.
func decodeRecord(fields map[string]string) (cache.Record, bool, error) {
	if len(fields) == 0 {
		return cache.Record{}, false, nil
	}
	payload, ok := fields[fieldPayload]
	if !ok {
		return cache.Record{}, false, fmt.Errorf("redis cache entry has no payload")
	}
	nanos, err := strconv.ParseInt(fields[fieldCapturedAt], 10, 64)
	if err != nil {
		return cache.Record{}, false, fmt.Errorf("redis cache entry captured_at: %w", err)
	}
	return cache.Record{Payload: []byte(payload), CapturedAt: time.Unix(0, nanos).UTC()}, true, nil
}
