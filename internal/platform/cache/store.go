package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	"github.com/riskibarqy/nba-advisor/internal/platform/resilience"
)

// Store is the typed face of a Backend: it stamps capture times, encodes payloads
// and collapses concurrent loads of the same key.
type Store struct {
	backend Backend
	now     func() time.Time
	logger  *logging.Logger
	flight  resilience.SingleFlight
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoadTimeout bounds a shared load once it no longer follows its callers' contexts.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.flight.Timeout = d
		}
	}
}

func NewStore(backend Backend, opts ...Option) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	s := &Store{
		backend: backend,
		now:     time.Now,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("cache")
	return s
}

// Key builds the global key "<kind>:<composite>".
func Key(kind, composite string) string {
	return strings.TrimSpace(kind) + ":" + strings.TrimSpace(composite)
}

// Namespace returns the kind part of a key built by Key.
func Namespace(key string) string {
	kind, _, found := strings.Cut(key, ":")
	if !found {
		return ""
	}
	return kind
}

func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) IsFresh(capturedAt time.Time, ttl time.Duration) bool {
	return Entry[struct{}]{CapturedAt: capturedAt}.FreshAt(s.now(), ttl)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete cache key=%s: %w", key, err)
	}
	return nil
}

// Get returns the entry for key. A payload that no longer decodes into T is reported as absent.
func Get[T any](ctx context.Context, s *Store, key string) (Entry[T], bool, error) {
	rec, ok, err := s.backend.Load(ctx, key)
	if err != nil {
		return Entry[T]{}, false, fmt.Errorf("load cache key=%s: %w", key, err)
	}
	if !ok {
		return Entry[T]{}, false, nil
	}

	var value T
	if err := sonic.Unmarshal(rec.Payload, &value); err != nil {
		s.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "error", err)
		return Entry[T]{}, false, nil
	}
	return Entry[T]{Value: value, CapturedAt: rec.CapturedAt}, true, nil
}

// Put replaces key with value stamped at the store clock's current time.
func Put[T any](ctx context.Context, s *Store, key string, value T) (Entry[T], error) {
	payload, err := sonic.Marshal(value)
	if err != nil {
		return Entry[T]{}, fmt.Errorf("encode cache key=%s: %w", key, err)
	}
	capturedAt := s.now().UTC()
	if err := s.backend.Upsert(ctx, key, Record{Payload: payload, CapturedAt: capturedAt}); err != nil {
		return Entry[T]{}, fmt.Errorf("upsert cache key=%s: %w", key, err)
	}
	return Entry[T]{Value: value, CapturedAt: capturedAt}, nil
}

// Fetch serves a fresh entry without calling load. Otherwise it calls load once,
// shared by every concurrent caller of the same key, and stores the result.
// The shared load outlives a cancelled caller as long as another one still waits.
// A non-positive ttl bypasses the cache entirely.
// Cache read and write failures are logged and never fail the fetch.
func Fetch[T any](ctx context.Context, s *Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if load == nil {
		var zero T
		return zero, fmt.Errorf("loader is required")
	}
	if ttl <= 0 || key == "" {
		return load(ctx)
	}

	if value, ok := freshValue[T](ctx, s, key, ttl); ok {
		return value, nil
	}

	out, _, err := s.flight.Do(ctx, key, func(loadCtx context.Context) (any, error) {
		if value, ok := freshValue[T](loadCtx, s, key, ttl); ok {
			return value, nil
		}

		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if _, err := Put(loadCtx, s, key, value); err != nil {
			s.logger.WarnContext(loadCtx, "cache write failed", "key", key, "error", err)
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	value, ok := out.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected cached value type %T for key=%s", out, key)
	}
	return value, nil
}

func freshValue[T any](ctx context.Context, s *Store, key string, ttl time.Duration) (T, bool) {
	entry, ok, err := Get[T](ctx, s, key)
	if err != nil {
		s.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		var zero T
		return zero, false
	}
	if !ok || !entry.FreshAt(s.now(), ttl) {
		var zero T
		return zero, false
	}
	s.logger.DebugContext(ctx, "cache hit", "key", key, "age", s.now().Sub(entry.CapturedAt))
	return entry.Value, true
}
