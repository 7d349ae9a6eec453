package kv

import (
	"bytes"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	logger "github.com/akhil-is-watching/securechain/internal/logging"
)

// Config selects where the store lives. An empty Path opens an in-memory
// database.
type Config struct {
	Path   string
	Logger logger.Logger
}

// Store is a thin transactional wrapper over a badger database.
type Store struct {
	db *badger.DB
}

// Pair is one key/value write.
type Pair struct {
	Key   []byte
	Value []byte
}

func Open(config Config) (*Store, error) {
	opts := badger.DefaultOptions(config.Path)
	if config.Path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(logger.Badger{Logger: config.Logger})
	opts.ValueLogFileSize = 1024 * 1024 * 64
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger at %q", config.Path)
	}
	return &Store{db: db}, nil
}

// Get returns the value for key, or ErrNotFound.
func (s *Store) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, kerrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read key %q", key)
	}
	return value, nil
}

func (s *Store) Has(key []byte) (bool, error) {
	_, err := s.Get(key)
	if errors.Is(err, kerrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Write stores every pair in one transaction.
func (s *Store) Write(pairs ...Pair) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, p := range pairs {
			if err := txn.Set(p.Key, p.Value); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "write batch")
}

// Update runs fn in a read-write transaction. A conflict with a concurrent
// transaction surfaces as badger.ErrConflict.
func (s *Store) Update(fn func(txn *badger.Txn) error) error {
	return s.db.Update(fn)
}

// Lookup reads a key inside an open transaction, mapping a miss to ErrNotFound.
func Lookup(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, kerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Scan returns all pairs whose key starts with prefix, in key order.
func (s *Store) Scan(prefix []byte) ([]Pair, error) {
	var pairs []Pair
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			pairs = append(pairs, Pair{Key: item.KeyCopy(nil), Value: v})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan prefix %q", prefix)
	}
	return pairs, nil
}

// Key joins segments with '/'.
func Key(segments ...string) []byte {
	var b bytes.Buffer
	for i, s := range segments {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(s)
	}
	return b.Bytes()
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "close badger")
}

// Clean runs a value log garbage collection pass.
func (s *Store) Clean() error {
	err := s.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrGCInMemoryMode) {
		return errors.Wrap(err, "value log gc")
	}
	return nil
}
