package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// BadgerCache stores entries in an embedded badger database. Expiry uses
// badger's native entry TTL.
type BadgerCache struct {
	db *badger.DB
}

// NewBadgerCache opens (or creates) a badger database in dir. An empty dir
// opens an in-memory database.
func NewBadgerCache(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.MetricsEnabled = false
	if dir == "" {
		opts.InMemory = true
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerCache{db: db}, nil
}

func (c *BadgerCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *BadgerCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (c *BadgerCache) Delete(_ context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Clear drops every entry.
func (c *BadgerCache) Clear() error {
	return c.db.DropAll()
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}

var _ Cache = (*BadgerCache)(nil)
