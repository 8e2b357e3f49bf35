package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"idcard.link/repositories"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers logged-out session ids until their token would expire anyway.
// Implementations must be safe for concurrent use.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Purge drops entries that expired before now. Stores that expire entries themselves return 0.
	Purge(ctx context.Context, now time.Time) (int64, error)
}

// ------------------------------------------------------------------------------

type RedisRevocationStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisRevocationStore(client *redis.Client, namespace string) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, namespace: namespace}
}

func revokedKey(namespace, jti string) string {
	return fmt.Sprintf("%s:revoked:%s", namespace, jti)
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKey(s.namespace, jti), 1, ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := s.client.Get(ctx, revokedKey(s.namespace, jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Purge is a no-op; Redis expires the keys.
func (s *RedisRevocationStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// ------------------------------------------------------------------------------

// DBRevocationStore keeps revocations in the revoked_sessions table.
type DBRevocationStore struct {
	repo repositories.IRevokedSessionRepository
}

func NewDBRevocationStore(repo repositories.IRevokedSessionRepository) *DBRevocationStore {
	return &DBRevocationStore{repo: repo}
}

func (s *DBRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return s.repo.Revoke(ctx, jti, expiresAt)
}

func (s *DBRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.repo.IsRevoked(ctx, jti)
}

func (s *DBRevocationStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.PurgeExpired(ctx, now)
}

// ------------------------------------------------------------------------------

type InMemoryRevocationStore struct {
	entries map[string]time.Time
	mutex   sync.Mutex
}

func NewInMemoryRevocationStore() *InMemoryRevocationStore {
	return &InMemoryRevocationStore{entries: make(map[string]time.Time)}
}

func (s *InMemoryRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[jti] = expiresAt
	return nil
}

func (s *InMemoryRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	exp, ok := s.entries[jti]
	return ok && time.Now().Before(exp), nil
}

func (s *InMemoryRevocationStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var n int64
	for jti, exp := range s.entries {
		if exp.Before(now) {
			delete(s.entries, jti)
			n++
		}
	}
	return n, nil
}

var (
	_ RevocationStore = (*RedisRevocationStore)(nil)
	_ RevocationStore = (*DBRevocationStore)(nil)
	_ RevocationStore = (*InMemoryRevocationStore)(nil)
)
