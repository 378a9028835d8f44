// Package kv is the key-value layer behind the plan cache, the piece store
// and the rate limiter. Keys are hierarchical paths joined with ':'.
//
// Badger backs the server; Memory serves tests and the CLI.
package kv

import (
	"context"
	"errors"
	"iter"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired
var ErrNotFound = errors.New("kv: not found")

// Separator joins key segments
const Separator byte = ':'

// Key is a hierarchical path, e.g. Key{"piece", "<id>"}
type Key []string

func (k Key) String() string {
	return strings.Join(k, string(Separator))
}

// Entry is one key-value pair returned by List
type Entry struct {
	Key   Key
	Value []byte
}

// Store is implemented by Memory and Badger
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	// SetWithTTL stores a value that expires after ttl; ttl <= 0 means no expiry
	SetWithTTL(ctx context.Context, key Key, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key Key) error
	// List yields live entries under prefix in lexicographic key order
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]
	// Incr adds delta to a decimal counter and returns the new value. The ttl
	// applies only when the counter is created.
	Incr(ctx context.Context, key Key, delta int64, ttl time.Duration) (int64, error)
	Close() error
}

func encode(k Key) []byte {
	return []byte(k.String())
}

func decode(b []byte) Key {
	return Key(strings.Split(string(b), string(Separator)))
}

// prefixBytes appends the separator so "a:b" does not match "a:bc"
func prefixBytes(prefix Key) []byte {
	if len(prefix) == 0 {
		return nil
	}
	return append(encode(prefix), Separator)
}

func parseCounter(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, errors.New("kv: value is not a counter")
	}
	return n, nil
}

func formatCounter(n int64) []byte {
	return []byte(strconv.FormatInt(n, 10))
}
