package repo

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// PointerStore keeps each conversation's current-directory pointer.
// Pointers are transient navigation state, not part of the tree.
type PointerStore interface {
	Get(ctx context.Context, conversation string) (string, bool, error)
	Set(ctx context.Context, conversation, directoryName string) error
}

const pointerKeyPrefix = "nav:"

type RedisPointerStore struct {
	rdb *redis.Client
}

func NewRedisPointerStore(rdb *redis.Client) *RedisPointerStore {
	return &RedisPointerStore{rdb: rdb}
}

func (s *RedisPointerStore) Get(ctx context.Context, conversation string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, pointerKeyPrefix+conversation).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisPointerStore) Set(ctx context.Context, conversation, directoryName string) error {
	return s.rdb.Set(ctx, pointerKeyPrefix+conversation, directoryName, 0).Err()
}

// MemoryPointerStore backs single-process runs and tests where no redis
// is configured.
type MemoryPointerStore struct {
	mu       sync.Mutex
	pointers map[string]string
}

func NewMemoryPointerStore() *MemoryPointerStore {
	return &MemoryPointerStore{pointers: map[string]string{}}
}

func (s *MemoryPointerStore) Get(_ context.Context, conversation string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.pointers[conversation]
	return name, ok, nil
}

func (s *MemoryPointerStore) Set(_ context.Context, conversation, directoryName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointers[conversation] = directoryName
	return nil
}
