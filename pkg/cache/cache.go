// Package cache provides a byte-oriented key/value cache with TTLs,
// backed by process memory or Redis.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/clerk/pkg/lifecycle"
)

// System stores opaque values under string keys.
type System interface {
	// Get reports false, with a nil error, for a missing or expired key.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Start(lc *lifecycle.Coordinator) error
}

// New returns the backend named by cfg.Backend.
func New(cfg *Config, logger *slog.Logger) System {
	if cfg.Backend == BackendRedis {
		return newRedis(cfg, logger)
	}
	return NewMemory(cfg.TTLDuration(), time.Now)
}

type entry struct {
	value   []byte
	expires time.Time
}

type memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory returns an in-process cache. now is the clock used for expiry.
func NewMemory(ttl time.Duration, now func() time.Time) System {
	return &memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     now,
	}
}

func (m *memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{
		value:   append([]byte(nil), value...),
		expires: m.now().Add(m.ttl),
	}
	return nil
}

func (m *memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memory) Start(*lifecycle.Coordinator) error {
	return nil
}
