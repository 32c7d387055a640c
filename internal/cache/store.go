// Package cache keeps raw upstream responses and live-status snapshots in a
// small in-process LRU backed by Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bluele/gcache"
)

// ErrMiss is returned by a Backend when the key does not exist
var ErrMiss = errors.New("cache miss")

var ErrLockTimeout = errors.New("timeout waiting for lock")

// Backend is the shared key-value store behind the local cache
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Loader produces the value of a missing key
type Loader func(ctx context.Context) ([]byte, error)

// Store is a two level cache
type Store struct {
	backend  Backend
	local    gcache.Cache
	localTTL time.Duration

	LockTTL      time.Duration
	MaxWait      time.Duration
	PollInterval time.Duration
}

// NewStore creates a store. A localSize of zero disables the local level.
func NewStore(backend Backend, localSize int, localTTL time.Duration) *Store {
	s := &Store{
		backend:      backend,
		localTTL:     localTTL,
		LockTTL:      5 * time.Second,
		MaxWait:      3 * time.Second,
		PollInterval: 100 * time.Millisecond,
	}
	if localSize > 0 && localTTL > 0 {
		s.local = gcache.New(localSize).LRU().Expiration(localTTL).Build()
	}
	return s
}

// FeedKey generates a cache key for a feed request
func FeedKey(feed string, params ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(params, "|")))
	return fmt.Sprintf("%s:%x", feed, hash[:8])
}

// LockKey generates a mutex lock key
func LockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

// Get returns the cached value of key. A miss is (nil, false, nil).
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.local != nil {
		if v, err := s.local.Get(key); err == nil {
			return v.([]byte), true, nil
		}
	}

	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.setLocal(key, data, s.localTTL)
	return data, true, nil
}

// Set stores value in both levels
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	localTTL := s.localTTL
	if ttl > 0 && ttl < localTTL {
		localTTL = ttl
	}
	s.setLocal(key, value, localTTL)
	return s.backend.Set(ctx, key, value, ttl)
}

// Delete removes key from both levels
func (s *Store) Delete(ctx context.Context, key string) error {
	if s.local != nil {
		s.local.Remove(key)
	}
	return s.backend.Del(ctx, key)
}

func (s *Store) setLocal(key string, value []byte, ttl time.Duration) {
	if s.local == nil || ttl <= 0 {
		return
	}
	if err := s.local.SetWithExpire(key, value, ttl); err != nil {
		log.Printf("Warning: failed to set local cache entry %s: %v", key, err)
	}
}

// GetJSON decodes a cached JSON value into v
func (s *Store) GetJSON(ctx context.Context, key string, v interface{}) (bool, error) {
	data, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON caches v as JSON
func (s *Store) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}

// GetOrLoad returns the cached value of key or loads and caches it. Only one
// caller loads a cold key at a time; the others wait for its result.
func (s *Store) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load Loader) ([]byte, error) {
	if data, found, err := s.Get(ctx, key); err == nil && found {
		return data, nil
	} else if err != nil {
		log.Printf("Warning: cache read failed for %s: %v", key, err)
	}

	lockKey := LockKey(key)
	acquired, err := s.backend.SetNX(ctx, lockKey, s.LockTTL)
	if err != nil {
		log.Printf("Failed to acquire lock: %v", err)
		// Continue without lock (degrade gracefully)
	} else if !acquired {
		// Another request is loading this key, wait for it
		if data, err := s.WaitForLock(ctx, key); err == nil && data != nil {
			return data, nil
		}
	}

	defer func() {
		if acquired {
			if err := s.backend.Del(ctx, lockKey); err != nil {
				log.Printf("Warning: failed to release lock %s: %v", lockKey, err)
			}
		}
	}()

	data, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.Set(ctx, key, data, ttl); err != nil {
		log.Printf("Failed to cache %s: %v", key, err)
	}
	return data, nil
}

// WaitForLock waits for the lock on key to be released and then returns the
// cached value, nil when the holder did not store one.
func (s *Store) WaitForLock(ctx context.Context, key string) ([]byte, error) {
	lockKey := LockKey(key)
	deadline := time.Now().Add(s.MaxWait)

	for time.Now().Before(deadline) {
		locked, err := s.backend.Exists(ctx, lockKey)
		if err != nil {
			return nil, err
		}

		if !locked {
			data, _, err := s.Get(ctx, key)
			return data, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.PollInterval):
		}
	}

	return nil, ErrLockTimeout
}
