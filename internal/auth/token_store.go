package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// default key under which the bearer token is kept
const DefaultTokenKey = "ai_interview_token"

// TokenStore is the single cell holding the caller's bearer token. The
// interview client only reads it; a login flow writes it.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryTokenStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) ClearToken(ctx context.Context) error {
	return s.SetToken(ctx, "")
}

// RedisTokenStore keeps the token in redis so several processes can share a
// login.
type RedisTokenStore struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedisTokenStore stores the token under key. A zero ttl keeps it until
// cleared.
func NewRedisTokenStore(rdb *redis.Client, key string, ttl time.Duration) *RedisTokenStore {
	if key == "" {
		key = DefaultTokenKey
	}
	return &RedisTokenStore{rdb: rdb, key: key, ttl: ttl}
}

// Token returns an empty string when nothing is stored.
func (s *RedisTokenStore) Token(ctx context.Context) (string, error) {
	token, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token %s: %w", s.key, err)
	}
	return token, nil
}

func (s *RedisTokenStore) SetToken(ctx context.Context, token string) error {
	if err := s.rdb.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisTokenStore) ClearToken(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear token %s: %w", s.key, err)
	}
	return nil
}
