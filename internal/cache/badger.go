// SPDX-License-Identifier: MIT
package cache

import (
	"errors"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/danibene/respiring/internal/log"
)

// badgerCache persists cache entries across restarts so a daemon that
// comes back up still answers repeat builds from the catalog.
type badgerCache struct {
	db *badger.DB

	hits   atomic.Int64
	misses atomic.Int64
}

// NewBadger opens (or creates) a badger database at path.
func NewBadger(path string) (Cache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	logger := log.WithComponent("cache")
	logger.Info().
		Str(log.FieldPath, path).
		Msg("badger cache opened")
	return &badgerCache{db: db}, nil
}

func (c *badgerCache) Get(key string) (string, bool) {
	var videoID string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			videoID = string(val)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logger := log.WithComponent("cache")
			logger.Warn().Err(err).Msg("badger get failed")
		}
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return videoID, true
}

func (c *badgerCache) Set(key, videoID string, ttl time.Duration) {
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(videoID))
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		log.WithComponent("cache").Warn().Err(err).Msg("badger set failed")
	}
}

func (c *badgerCache) Delete(key string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		log.WithComponent("cache").Warn().Err(err).Msg("badger delete failed")
	}
}

func (c *badgerCache) Clear() {
	if err := c.db.DropAll(); err != nil {
		log.WithComponent("cache").Warn().Err(err).Msg("badger drop failed")
	}
}

func (c *badgerCache) Stats() Stats {
	var entries int64
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			entries++
		}
		return nil
	})
	if err != nil {
		entries = -1
	}
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: entries,
	}
}

func (c *badgerCache) Close() error { return c.db.Close() }

// HealthCheck verifies the database is still open.
func (c *badgerCache) HealthCheck() error {
	if c.db.IsClosed() {
		return errors.New("badger cache closed")
	}
	return nil
}
