// Package ratelimit implements a fixed-window request counter per client
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/resonata/resonata-api/internal/kv"
	"github.com/resonata/resonata-api/internal/logger"
)

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter allows Limit requests per client per Window
type Limiter struct {
	store  kv.Store
	limit  int
	window time.Duration
	now    func() time.Time
}

func New(store kv.Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, now: time.Now}
}

// WithClock replaces the time source
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Limit returns the configured requests per window
func (l *Limiter) Limit() int { return l.limit }

// Allow counts one request for clientID. Store errors fail open.
func (l *Limiter) Allow(ctx context.Context, clientID string) Decision {
	if l.limit <= 0 || l.window <= 0 {
		return Decision{Allowed: true}
	}

	now := l.now()
	windowStart := now.Truncate(l.window)
	key := kv.Key{"ratelimit", clientID, strconv.FormatInt(windowStart.Unix(), 10)}

	count, err := l.store.Incr(ctx, key, 1, l.window)
	if err != nil {
		logger.Warn("Rate limit store unavailable, allowing request", logger.Fields{
			"client_id": clientID,
			"error":     err.Error(),
		})
		return Decision{Allowed: true, Remaining: l.limit}
	}

	if int(count) > l.limit {
		return Decision{
			Allowed:    false,
			RetryAfter: windowStart.Add(l.window).Sub(now),
		}
	}
	return Decision{Allowed: true, Remaining: l.limit - int(count)}
}
