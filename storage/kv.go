package storage

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// KV is the LevelDB layer under the snapshot store. An empty path keeps the
// database in memory; on disk every write is synced.
type KV struct {
	db   *leveldb.DB
	path string
	wo   *opt.WriteOptions
}

func OpenKV(path string) (*KV, error) {
	if path == "" {
		db, err := leveldb.Open(leveldbstorage.NewMemStorage(), nil)
		if err != nil {
			return nil, fmt.Errorf("open memory database: %w", err)
		}
		return &KV{db: db}, nil
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", path, err)
	}
	return &KV{db: db, path: path, wo: &opt.WriteOptions{Sync: true}}, nil
}

// Path is the directory of the database, "" in memory.
func (s *KV) Path() string { return s.path }

// Get returns the value under key; found is false when there is none.
func (s *KV) Get(key []byte) (value []byte, found bool, err error) {
	value, err = s.db.Get(key, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *KV) Put(key, value []byte) error {
	if err := s.db.Put(key, value, s.wo); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Delete removes key and reports whether it was there.
func (s *KV) Delete(key []byte) (bool, error) {
	ok, err := s.db.Has(key, nil)
	if err != nil || !ok {
		return false, err
	}
	return true, s.db.Delete(key, s.wo)
}

// Scan calls fn for every key with prefix, in key order. The slices are only
// valid during the call.
func (s *KV) Scan(prefix []byte, fn func(key, value []byte) error) error {
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (s *KV) Close() error {
	return s.db.Close()
}
