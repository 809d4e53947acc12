package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gofrs/flock"
	"github.com/riskibarqy/nba-advisor/internal/platform/cache"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
)

const (
	defaultNamespace = "default"
	lockRetryDelay   = 10 * time.Millisecond
)

type fileEntry struct {
	Payload    json.RawMessage `json:"payload"`
	CapturedAt time.Time       `json:"captured_at"`
}

type document map[string]fileEntry

// Backend keeps one JSON document per key namespace under dir. Writers hold the
// in-process mutex and an OS lock on "<document>.lock", and re-read the document
// before changing it, so writers of different keys in the same namespace never drop
// each other's entries, including writers in other processes sharing dir.
type Backend struct {
	dir    string
	mu     sync.Mutex
	logger *logging.Logger
}

func New(dir string, logger *logging.Logger) (*Backend, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Backend{dir: dir, logger: logger.Named("filestore")}, nil
}

func (b *Backend) Load(ctx context.Context, key string) (cache.Record, bool, error) {
	b.mu.Lock()
	doc, err := b.read(ctx, key)
	b.mu.Unlock()
	if err != nil {
		return cache.Record{}, false, err
	}

	entry, ok := doc[key]
	if !ok {
		return cache.Record{}, false, nil
	}
	return cache.Record{Payload: []byte(entry.Payload), CapturedAt: entry.CapturedAt}, true, nil
}

func (b *Backend) Upsert(ctx context.Context, key string, rec cache.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	unlock, err := b.lockDocument(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := b.read(ctx, key)
	if err != nil {
		return err
	}
	doc[key] = fileEntry{Payload: append(json.RawMessage(nil), rec.Payload...), CapturedAt: rec.CapturedAt.UTC()}
	return b.write(key, doc)
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	unlock, err := b.lockDocument(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := b.read(ctx, key)
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return b.write(key, doc)
}

// Path is the document file holding key.
func (b *Backend) Path(key string) string {
	namespace := cache.Namespace(key)
	if namespace == "" {
		namespace = defaultNamespace
	}
	return filepath.Join(b.dir, sanitize(namespace)+".json")
}

// lockDocument takes the cross-process lock for key's document. The lock lives in
// a sibling file because the document itself is replaced by rename.
func (b *Backend) lockDocument(ctx context.Context, key string) (func(), error) {
	lock := flock.New(b.Path(key) + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock cache document %s: %w", lock.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("lock cache document %s: not acquired", lock.Path())
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			b.logger.Warn("unlock cache document failed", "path", lock.Path(), "error", err)
		}
	}, nil
}

// read must be called with mu held. A missing or unreadable document is empty.
func (b *Backend) read(ctx context.Context, key string) (document, error) {
	path := b.Path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache document %s: %w", path, err)
	}
	if len(raw) == 0 {
		return document{}, nil
	}

	doc := document{}
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		b.logger.WarnContext(ctx, "ignoring corrupt cache document", "path", path, "error", err)
		return document{}, nil
	}
	return doc, nil
}

// write replaces the document through a temp file and rename.
func (b *Backend) write(key string, doc document) error {
	path := b.Path(key)
	raw, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cache document %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(b.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache document: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp cache document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp cache document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace cache document %s: %w", path, err)
	}
	return nil
}

func sanitize(namespace string) string {
	var sb strings.Builder
	for _, r := range namespace {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
