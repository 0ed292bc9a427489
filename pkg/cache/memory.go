package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero means no expiration
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-process cache with TTL and size cap.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	maxSize int
	done    chan struct{}
}

// NewMemoryCache creates a memory cache and starts its janitor.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		entries: make(map[string]memoryEntry),
		maxSize: cfg.MaxSize,
		done:    make(chan struct{}),
	}
	go mc.janitor(cfg.CleanupInterval)
	return mc
}

func (mc *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var exp time.Time
	if expiration > 0 {
		exp = time.Now().Add(expiration)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	if len(mc.entries) >= mc.maxSize {
		mc.evictOne()
	}
	mc.entries[key] = memoryEntry{data: b, expiresAt: exp}
	return nil
}

func (mc *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	mc.mu.RLock()
	e, ok := mc.entries[key]
	mc.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		return ErrCacheMiss
	}
	return json.Unmarshal(e.data, dest)
}

func (mc *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		delete(mc.entries, k)
	}
	return nil
}

func (mc *MemoryCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	now := time.Now()
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	for _, k := range keys {
		if e, ok := mc.entries[k]; !ok || e.expired(now) {
			return false, nil
		}
	}
	return true, nil
}

func (mc *MemoryCache) Increment(ctx context.Context, key string) (int64, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	var n int64
	if e, ok := mc.entries[key]; ok && !e.expired(time.Now()) {
		if err := json.Unmarshal(e.data, &n); err != nil {
			return 0, err
		}
	}
	n++
	b, _ := json.Marshal(n)
	prev := mc.entries[key]
	mc.entries[key] = memoryEntry{data: b, expiresAt: prev.expiresAt}
	return n, nil
}

func (mc *MemoryCache) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	e, ok := mc.entries[key]
	if !ok || e.expired(time.Now()) {
		return false, nil
	}
	e.expiresAt = time.Now().Add(expiration)
	mc.entries[key] = e
	return true, nil
}

// Close stops the janitor goroutine.
func (mc *MemoryCache) Close() {
	close(mc.done)
}

// evictOne removes an arbitrary entry, preferring expired ones. Caller
// holds the lock.
func (mc *MemoryCache) evictOne() {
	now := time.Now()
	for k, e := range mc.entries {
		if e.expired(now) {
			delete(mc.entries, k)
			return
		}
	}
	for k := range mc.entries {
		delete(mc.entries, k)
		return
	}
}

func (mc *MemoryCache) janitor(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			mc.mu.Lock()
			for k, e := range mc.entries {
				if e.expired(now) {
					delete(mc.entries, k)
				}
			}
			mc.mu.Unlock()
		case <-mc.done:
			return
		}
	}
}

var _ Service = (*MemoryCache)(nil)
