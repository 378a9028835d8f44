// Package storage holds the KV-backed stores used by the service: cached
// guidance plans, rendered pieces and usage counters.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/resonata/resonata-api/internal/kv"
	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/theory"
)

const planPrefix = "plan"

// PlanCache stores guidance plans keyed by composer, mood and innovation band
type PlanCache struct {
	store kv.Store
	ttl   time.Duration
	mu    sync.Mutex
}

// NewPlanCache creates a plan cache with the given entry lifetime
func NewPlanCache(store kv.Store, ttl time.Duration) *PlanCache {
	return &PlanCache{store: store, ttl: ttl}
}

// PlanKey hashes the inputs that determine a plan
func PlanKey(composerID string, mood models.Mood, band theory.Band) kv.Key {
	sum := sha256.Sum256([]byte(strings.ToLower(composerID) + "|" + string(mood) + "|" + band.String()))
	return kv.Key{planPrefix, hex.EncodeToString(sum[:16])}
}

// Get returns the cached plan; a miss returns (nil, nil)
func (c *PlanCache) Get(ctx context.Context, key kv.Key) (*models.StructuralPlan, error) {
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("plan cache get: %w", err)
	}
	var plan models.StructuralPlan
	if err := msgpack.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("plan cache decode: %w", err)
	}
	return &plan, nil
}

// Set stores plan unless a newer plan is already cached under key
func (c *PlanCache) Set(ctx context.Context, key kv.Key, plan *models.StructuralPlan) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.Get(ctx, key)
	if err == nil && existing != nil && existing.CreatedAt.After(plan.CreatedAt) {
		return nil
	}
	raw, err := msgpack.Marshal(plan)
	if err != nil {
		return fmt.Errorf("plan cache encode: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, key, raw, c.ttl); err != nil {
		return fmt.Errorf("plan cache set: %w", err)
	}
	return nil
}
