package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Key prefixes (simulating column families)
const (
	PrefixAddresses = "adr:"
	PrefixTags      = "tag:"
)

// Column family names
const (
	CFAddresses = "addresses"
	CFTags      = "tags"
)

// Column family name to prefix mapping
var cfPrefixes = map[string]string{ //nolint:gochecknoglobals
	CFAddresses: PrefixAddresses,
	CFTags:      PrefixTags,
}

// PebbleDB wraps the Pebble database
type PebbleDB struct {
	db *pebble.DB
}

// WriteBatch wraps Pebble's batch for atomic writes
type WriteBatch struct {
	batch *pebble.Batch
}

// Iterator wraps Pebble's iterator over one column family
type Iterator struct {
	iter     *pebble.Iterator
	cfPrefix []byte
}

// NewPebbleDB opens (or creates) the database at path.
func NewPebbleDB(path string) (*PebbleDB, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	opts := &pebble.Options{
		Cache:        pebble.NewCache(32 << 20),
		MaxOpenFiles: 128,
	}
	defer opts.Cache.Unref()

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &PebbleDB{db: db}, nil
}

// Close closes the database
func (p *PebbleDB) Close() error {
	return p.db.Close()
}

// prefixKey creates a prefixed key for the given column family
func (p *PebbleDB) prefixKey(cf string, key []byte) ([]byte, error) {
	prefix, ok := cfPrefixes[cf]
	if !ok {
		return nil, fmt.Errorf("column family not found: %s", cf)
	}
	return append([]byte(prefix), key...), nil
}

// Put stores a key-value pair in the specified column family
func (p *PebbleDB) Put(cf string, key, value []byte) error {
	prefixedKey, err := p.prefixKey(cf, key)
	if err != nil {
		return err
	}
	return p.db.Set(prefixedKey, value, pebble.Sync)
}

// Get retrieves a value from the specified column family. A missing key
// yields (nil, nil).
func (p *PebbleDB) Get(cf string, key []byte) ([]byte, error) {
	prefixedKey, err := p.prefixKey(cf, key)
	if err != nil {
		return nil, err
	}

	value, closer, err := p.db.Get(prefixedKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	// value is only valid until closer.Close()
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Delete removes a key from the specified column family
func (p *PebbleDB) Delete(cf string, key []byte) error {
	prefixedKey, err := p.prefixKey(cf, key)
	if err != nil {
		return err
	}
	return p.db.Delete(prefixedKey, pebble.Sync)
}

// NewBatch creates a new write batch
func (p *PebbleDB) NewBatch() *WriteBatch {
	return &WriteBatch{batch: p.db.NewBatch()}
}

// WriteBatch commits a batch to the database
func (p *PebbleDB) WriteBatch(batch *WriteBatch) error {
	return batch.batch.Commit(pebble.Sync)
}

// PutBatch adds a put operation to the batch
func (p *PebbleDB) PutBatch(batch *WriteBatch, cf string, key, value []byte) error {
	prefixedKey, err := p.prefixKey(cf, key)
	if err != nil {
		return err
	}
	return batch.batch.Set(prefixedKey, value, nil)
}

// Destroy closes the batch and releases resources
func (b *WriteBatch) Destroy() {
	_ = b.batch.Close()
}

// NewIterator creates an iterator over every key of the column family
func (p *PebbleDB) NewIterator(cf string) (*Iterator, error) {
	prefix, ok := cfPrefixes[cf]
	if !ok {
		return nil, fmt.Errorf("column family not found: %s", cf)
	}

	prefixBytes := []byte(prefix)
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: prefixBytes,
		UpperBound: prefixUpperBound(prefixBytes),
	})
	if err != nil {
		return nil, err
	}

	iter.First()
	return &Iterator{iter: iter, cfPrefix: prefixBytes}, nil
}

// prefixUpperBound returns the upper bound for prefix iteration
func prefixUpperBound(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] < 0xff {
			upper[i]++
			return upper[:i+1]
		}
	}
	return nil
}

// Valid returns true if the iterator is positioned at a valid key
func (i *Iterator) Valid() bool {
	return i.iter.Valid()
}

// Next advances the iterator to the next key
func (i *Iterator) Next() bool {
	return i.iter.Next()
}

// Key returns the current key without the column family prefix
func (i *Iterator) Key() []byte {
	return bytes.TrimPrefix(i.iter.Key(), i.cfPrefix)
}

// Value returns the current value. It is only valid until the next call to Next.
func (i *Iterator) Value() []byte {
	return i.iter.Value()
}

// Close closes the iterator
func (i *Iterator) Close() error {
	return i.iter.Close()
}

// scanAll decodes every value of cf into a fresh T.
func scanAll[T any](db *PebbleDB, cf string) ([]T, error) {
	iter, err := db.NewIterator(cf)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []T
	for ; iter.Valid(); iter.Next() {
		var v T
		if err := json.Unmarshal(iter.Value(), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s entry %s: %w", cf, iter.Key(), err)
		}
		out = append(out, v)
	}
	return out, nil
}
