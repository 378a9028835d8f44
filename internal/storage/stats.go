package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/resonata/resonata-api/internal/kv"
)

// Counter names reported by the analytics endpoint
const (
	CounterGenerations = "total_generations"
	CounterCacheHits   = "cache_hits"
	CounterFallbacks   = "guidance_fallbacks"
	CounterRateLimited = "rate_limited"
)

// Counters lists every counter in display order
var Counters = []string{CounterGenerations, CounterCacheHits, CounterFallbacks, CounterRateLimited}

// Stats keeps process-wide usage counters in the KV store
type Stats struct {
	store kv.Store
}

func NewStats(store kv.Store) *Stats {
	return &Stats{store: store}
}

// Incr bumps a counter; failures only cost accuracy so they are returned for logging
func (s *Stats) Incr(ctx context.Context, name string) error {
	if _, err := s.store.Incr(ctx, kv.Key{"stats", name}, 1, 0); err != nil {
		return fmt.Errorf("incr %s: %w", name, err)
	}
	return nil
}

// Snapshot reads every counter; missing counters read as zero
func (s *Stats) Snapshot(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(Counters))
	for _, name := range Counters {
		n, err := s.store.Incr(ctx, kv.Key{"stats", name}, 0, 0)
		if err != nil && !errors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}
