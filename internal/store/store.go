package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Supported backend drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

var (
	// ErrNotFound is returned by SessionStore.Get when the key has no value.
	ErrNotFound = errors.New("store: key not found")

	// ErrCorrupt wraps values that exist but cannot be decoded.
	ErrCorrupt = errors.New("store: corrupt value")
)

// SessionStore is key-value persistence for session lists and transcripts.
// Values are opaque serialized snapshots; the store never interprets them.
type SessionStore interface {
	// Get returns the raw value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend is a complete storage backend: session values plus the LLM event log.
type Backend interface {
	SessionStore
	EventRepo
	Close() error
}

// Options selects and configures a Backend.
type Options struct {
	Driver string
	DSN    string
	Redis  RedisOptions
}

// Open creates the Backend described by opts. SQL backends are migrated
// before they are returned.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case "", DriverSQLite, DriverPostgres:
		driver := opts.Driver
		if driver == "" {
			driver = DriverSQLite
		}
		return OpenSQL(ctx, driver, opts.DSN)
	case DriverRedis:
		s := NewRedisStore(opts.Redis)
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return s, nil
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %q", opts.Driver)
	}
}

// GetValue decodes the JSON value under key into dest. It reports whether
// the key existed. Decode failures are wrapped with ErrCorrupt.
func GetValue(ctx context.Context, s SessionStore, key string, dest any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("%w: key %q: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// SetValue stores v under key as JSON.
func SetValue(ctx context.Context, s SessionStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// GetList returns the list stored under key. A missing key yields an empty
// list and no error.
func GetList[T any](ctx context.Context, s SessionStore, key string) ([]T, error) {
	var items []T
	if _, err := GetValue(ctx, s, key, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetList replaces the list stored under key.
func SetList[T any](ctx context.Context, s SessionStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	return SetValue(ctx, s, key, items)
}

// DefaultDBPath resolves the database file path in priority order:
// 1. STUDYHALL_DB environment variable
// 2. $XDG_DATA_HOME/studyhall/studyhall.db
// 3. ~/.local/share/studyhall/studyhall.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("STUDYHALL_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "studyhall", "studyhall.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
