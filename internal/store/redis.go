package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key. Default: "studyhall:".
	Prefix string
	// TTL expires session values after inactivity. Zero keeps them forever.
	TTL time.Duration
}

// RedisStore is a Backend on Redis. Session values are plain string keys;
// LLM events live in one hash keyed by an INCR-allocated ID.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Backend = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed store. It does not dial until first use.
func NewRedisStore(opts RedisOptions) *RedisStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "studyhall:"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: opts.TTL}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return raw, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	id, err := s.rdb.Incr(ctx, s.key("llm_events:seq")).Result()
	if err != nil {
		return fmt.Errorf("next event id: %w", err)
	}

	raw, err := json.Marshal(LLMEvent{
		ID:                  int(id),
		Timestamp:           time.Now().UTC(),
		LLMRequestEventData: data,
	})
	if err != nil {
		return fmt.Errorf("marshal LLM event: %w", err)
	}

	field := strconv.FormatInt(id, 10)
	if err := s.rdb.HSet(ctx, s.key("llm_events"), field, raw).Err(); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (s *RedisStore) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	vals, err := s.rdb.HVals(ctx, s.key("llm_events")).Result()
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}

	events := make([]LLMEvent, 0, len(vals))
	for _, v := range vals {
		var e LLMEvent
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("%w: llm event: %v", ErrCorrupt, err)
		}
		events = append(events, e)
	}
	return filterEvents(events, opts), nil
}

func (s *RedisStore) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	raw, err := s.rdb.HGet(ctx, s.key("llm_events"), strconv.Itoa(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}

	var e LLMEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("%w: llm event %d: %v", ErrCorrupt, id, err)
	}
	return &e, nil
}
