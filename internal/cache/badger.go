package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Key layout:
//
//	cache:entry:{key}      -> value
//	cache:tag:{tag}:{key}  -> empty (tag index)
const (
	entryPrefix = "cache:entry:"
	tagPrefix   = "cache:tag:"
)

var _ Cache = (*BadgerCache)(nil)

// BadgerCache is a Cache backed by a Badger database.
type BadgerCache struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens (or creates) a Badger cache at path.
// An empty path opens a purely in-memory cache.
func OpenBadger(path string, logger *slog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil            // Disable Badger's internal logging
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("Badger cache opened", "path", path, "in_memory", path == "")

	return &BadgerCache{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *BadgerCache) Close() error {
	c.logger.Info("Closing badger cache")
	return c.db.Close()
}

// Ping reports whether the cache database is still open.
func (c *BadgerCache) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.View(func(*badger.Txn) error { return nil })
}

func entryKey(key string) []byte {
	return []byte(entryPrefix + key)
}

func tagIndexPrefix(tag string) []byte {
	return []byte(tagPrefix + tag + ":")
}

// Load implements Cache.
func (c *BadgerCache) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(key))
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
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return data, true, nil
}

// Save implements Cache.
func (c *BadgerCache) Save(ctx context.Context, key string, data []byte, tags ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(entryKey(key), data); err != nil {
			return err
		}
		for _, tag := range tags {
			indexKey := append(tagIndexPrefix(tag), key...)
			if err := txn.Set(indexKey, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Remove implements Cache. Tag index keys pointing at the entry are left
// behind and dropped by the next Clean of that tag.
func (c *BadgerCache) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(entryKey(key))
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Clean implements Cache.
func (c *BadgerCache) Clean(ctx context.Context, tags ...string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var (
		indexKeys [][]byte
		entries   = make(map[string]struct{})
	)

	err := c.db.View(func(txn *badger.Txn) error {
		for _, tag := range tags {
			prefix := tagIndexPrefix(tag)

			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false // We only need keys.
			opts.Prefix = prefix

			it := txn.NewIterator(opts)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				k := it.Item().KeyCopy(nil)
				indexKeys = append(indexKeys, k)

				key := string(k[len(prefix):])
				if _, err := txn.Get(entryKey(key)); err == nil {
					entries[key] = struct{}{}
				}
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan tag index: %w", err)
	}

	if len(indexKeys) == 0 {
		return 0, nil
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for _, k := range indexKeys {
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("delete tag index: %w", err)
		}
	}
	for key := range entries {
		if err := wb.Delete(entryKey(key)); err != nil {
			return 0, fmt.Errorf("delete entry: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush clean: %w", err)
	}

	c.logger.Debug("cache cleaned", "tags", tags, "entries", len(entries))
	return len(entries), nil
}
