package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/resonata/resonata-api/internal/logger"
)

const incrRetries = 8

// Badger is a Store backed by BadgerDB v4
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures NewBadger
type BadgerOptions struct {
	// Dir holds the data files; required unless InMemory
	Dir      string
	InMemory bool
}

// NewBadger opens a BadgerDB store
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("kv: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(_ context.Context, key Key) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encode(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (b *Badger) Set(ctx context.Context, key Key, value []byte) error {
	return b.SetWithTTL(ctx, key, value, 0)
}

func (b *Badger) SetWithTTL(_ context.Context, key Key, value []byte, ttl time.Duration) error {
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(encode(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (b *Badger) Delete(_ context.Context, key Key) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(encode(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (b *Badger) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	p := prefixBytes(prefix)

	return func(yield func(Entry, error) bool) {
		err := b.db.View(func(txn *badger.Txn) error {
			iterOpts := badger.DefaultIteratorOptions
			iterOpts.Prefix = p
			it := txn.NewIterator(iterOpts)
			defer it.Close()

			for it.Seek(p); it.ValidForPrefix(p); it.Next() {
				item := it.Item()
				val, err := item.ValueCopy(nil)
				if err != nil {
					if !yield(Entry{}, err) {
						return nil
					}
					continue
				}
				if !yield(Entry{Key: decode(item.KeyCopy(nil)), Value: val}, nil) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(Entry{}, err)
		}
	}
}

// Incr retries on transaction conflicts so concurrent requests each count once
func (b *Badger) Incr(_ context.Context, key Key, delta int64, ttl time.Duration) (int64, error) {
	k := encode(key)
	var n int64
	for attempt := 0; attempt < incrRetries; attempt++ {
		err := b.db.Update(func(txn *badger.Txn) error {
			var raw []byte
			var expiresAt uint64
			item, err := txn.Get(k)
			found := err == nil
			if found {
				expiresAt = item.ExpiresAt()
				if raw, err = item.ValueCopy(nil); err != nil {
					return err
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			current, err := parseCounter(raw)
			if err != nil {
				return err
			}

			n = current + delta
			e := badger.NewEntry(k, formatCounter(n))
			switch {
			case found && expiresAt > 0:
				e.ExpiresAt = expiresAt
			case !found && ttl > 0:
				e = e.WithTTL(ttl)
			}
			return txn.SetEntry(e)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return n, err
	}
	return 0, fmt.Errorf("kv: incr %s: %w", key, badger.ErrConflict)
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger forwards warnings and errors to the service logger
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...interface{}) {
	logger.Error("badger", fmt.Errorf(f, v...), nil)
}

func (badgerLogger) Warningf(f string, v ...interface{}) {
	logger.Warn("badger: "+fmt.Sprintf(f, v...), nil)
}

func (badgerLogger) Infof(string, ...interface{})  {}
func (badgerLogger) Debugf(string, ...interface{}) {}
