// Package badger persists the portal's client-side state (theme, cached
// navigation payload, favicon urls, install prompt) in a BadgerDB directory.
package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/MrSnakeDoc/navsite/internal/logger"
)

// Storage implements portal.Storage on top of BadgerDB.
type Storage struct {
	db  *badger.DB
	log logger.Logger
}

// Open opens (or creates) the database under dir. An empty dir keeps
// everything in memory.
func Open(dir string, log logger.Logger) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = &badgerLogger{log.With(logger.String("component", "badgerdb"))}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %q: %w", dir, err)
	}
	log.Debug("badger storage opened", logger.String("dir", dir))
	return &Storage{db: db, log: log}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) GetItem(key string) (string, bool, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return string(val), true, nil
}

func (s *Storage) SetItem(key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), []byte(value)))
	})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *Storage) RemoveItem(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Keys lists keys with the given prefix in byte order.
func (s *Storage) Keys(prefix string) ([]string, error) {
	var out []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			out = append(out, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list keys %q: %w", prefix, err)
	}
	return out, nil
}

// badgerLogger adapts our logger to badger's logging interface. Badger is
// chatty at info level, so its info lines go to debug.
type badgerLogger struct {
	log logger.Logger
}

func (l *badgerLogger) Errorf(f string, v ...interface{})   { l.log.Errorf(f, v...) }
func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.log.Warnf(f, v...) }
func (l *badgerLogger) Infof(f string, v ...interface{})    { l.log.Debugf(f, v...) }
func (l *badgerLogger) Debugf(f string, v ...interface{})   { l.log.Debugf(f, v...) }
