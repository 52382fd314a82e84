// Package cache memoizes collaborator responses. Model inference is
// deterministic for a given input, so repeated transcripts skip the network.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/maastricht-university/clinote/logger"
)

// Store is a byte cache. A miss is (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key derives a fixed-length cache key from a service name and its inputs.
func Key(service string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "clinote:" + service + ":" + hex.EncodeToString(sum[:])
}

// Memoize returns the cached value for key or computes, stores and returns it.
// Errors from fn are never cached. Cache failures only cost a recomputation.
func Memoize[T any](ctx context.Context, s Store, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if s == nil {
		return fn(ctx)
	}
	log := logger.WithField("cache_key", key)

	if raw, ok, err := s.Get(ctx, key); err != nil {
		log.WithError(err).Warn("cache read failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		log.Warn("discarding undecodable cache entry")
	}

	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	raw, err := json.Marshal(v)
	if err == nil {
		err = s.Set(ctx, key, raw, ttl)
	}
	if err != nil {
		log.WithError(err).Warn("cache write failed")
	}
	return v, nil
}

type item struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process Store for single runs and tests.
type Memory struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: map[string]item{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !it.expires.IsZero() && !m.now().Before(it.expires) {
		delete(m.items, key)
		return nil, false, nil
	}
	return append([]byte(nil), it.value...), true, nil
}

// Set stores value; ttl <= 0 means no expiry.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := item{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expires = m.now().Add(ttl)
	}
	m.items[key] = it
	return nil
}
