package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"
	"github.com/karlseguin/ccache"

	"pahla_backend/internals/configs"
)

// SessionStore keeps wizard snapshots between requests.
type SessionStore interface {
	Save(ctx context.Context, id string, st State) error
	Load(ctx context.Context, id string) (State, error)
	Delete(ctx context.Context, id string) error
}

// NewSessionStore picks the backend named in cfg.
func NewSessionStore(cfg configs.SessionConfig) (SessionStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemorySessionStore(cfg.TTL), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisSessionStore(rdb, cfg.RedisPrefix, cfg.TTL), nil
	}
	return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
}

/* ===============================
   In-memory (ccache)
=================================*/

type MemorySessionStore struct {
	cache *ccache.Cache
	ttl   time.Duration
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemorySessionStore{
		cache: ccache.New(ccache.Configure().MaxSize(50000).ItemsToPrune(500)),
		ttl:   ttl,
	}
}

func (s *MemorySessionStore) Save(ctx context.Context, id string, st State) error {
	s.cache.Set(id, st.clone(), s.ttl)
	return nil
}

func (s *MemorySessionStore) Load(ctx context.Context, id string) (State, error) {
	item := s.cache.Get(id)
	if item == nil || item.Expired() {
		return State{}, ErrSessionNotFound
	}
	// sliding expiry
	item.Extend(s.ttl)
	return item.Value().(State).clone(), nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

/* ===============================
   Redis
=================================*/

type RedisSessionStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisSessionStore) key(id string) string { return s.prefix + id }

func (s *RedisSessionStore) Save(ctx context.Context, id string, st State) error {
	raw, err := sonic.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode wizard session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save wizard session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Load(ctx context.Context, id string) (State, error) {
	raw, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return State{}, ErrSessionNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("load wizard session: %w", err)
	}
	var st State
	if err := sonic.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("decode wizard session: %w", err)
	}
	s.rdb.Expire(ctx, s.key(id), s.ttl)
	return st, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}
