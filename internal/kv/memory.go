package kv

import (
	"bytes"
	"context"
	"iter"
	"sort"
	"sync"
	"time"
)

type memItem struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (i memItem) live(now time.Time) bool {
	return i.expiresAt.IsZero() || now.Before(i.expiresAt)
}

// Memory is an in-process Store with lazy expiry
type Memory struct {
	mu   sync.RWMutex
	data map[string]memItem
	now  func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string]memItem), now: time.Now}
}

// WithClock replaces the time source; tests use it to expire entries
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	k := string(encode(key))
	m.mu.RLock()
	item, ok := m.data[k]
	m.mu.RUnlock()
	if !ok || !item.live(m.now()) {
		return nil, ErrNotFound
	}
	return bytes.Clone(item.value), nil
}

func (m *Memory) Set(ctx context.Context, key Key, value []byte) error {
	return m.SetWithTTL(ctx, key, value, 0)
}

func (m *Memory) SetWithTTL(_ context.Context, key Key, value []byte, ttl time.Duration) error {
	item := memItem{value: bytes.Clone(value)}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.data[string(encode(key))] = item
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	delete(m.data, string(encode(key)))
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	p := prefixBytes(prefix)
	now := m.now()

	m.mu.RLock()
	var keys []string
	values := map[string][]byte{}
	for k, item := range m.data {
		if !item.live(now) {
			continue
		}
		if len(p) == 0 || bytes.HasPrefix([]byte(k), p) {
			keys = append(keys, k)
			values[k] = bytes.Clone(item.value)
		}
	}
	m.mu.RUnlock()
	sort.Strings(keys)

	return func(yield func(Entry, error) bool) {
		for _, k := range keys {
			if !yield(Entry{Key: decode([]byte(k)), Value: values[k]}, nil) {
				return
			}
		}
	}
}

func (m *Memory) Incr(_ context.Context, key Key, delta int64, ttl time.Duration) (int64, error) {
	k := string(encode(key))
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.data[k]
	if !ok || !item.live(now) {
		item = memItem{}
		if ttl > 0 {
			item.expiresAt = now.Add(ttl)
		}
	}
	n, err := parseCounter(item.value)
	if err != nil {
		return 0, err
	}
	n += delta
	item.value = formatCounter(n)
	m.data[k] = item
	return n, nil
}

// Close drops all entries
func (m *Memory) Close() error {
	m.mu.Lock()
	m.data = make(map[string]memItem)
	m.mu.Unlock()
	return nil
}
