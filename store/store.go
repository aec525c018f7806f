// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store provides the key-value handle the engine's persistent
// state lives behind (spec.md §5: "All persistent state lives in a
// key-value store accessed through a borrowed handle"), backed by
// goleveldb, plus the key layout for the persisted entities named in
// spec.md §6.
package store

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/internal/log"
)

var storeLog = log.NewSubsystem("STOR")

// Key prefixes for the persisted entities of spec.md §6. Each entity's
// keys are prefix || encoded-sub-key, so a prefix iteration walks exactly
// one entity.
var (
	PrefixHeaders       = []byte{0x01}
	PrefixSigners       = []byte{0x02}
	PrefixValidators    = []byte{0x03}
	PrefixSignatoryKeys = []byte{0x04}
	PrefixCheckpoints   = []byte{0x05}
	PrefixQueueMeta     = []byte{0x06}
	PrefixConfig        = []byte{0x07}
	PrefixLedger        = []byte{0x08}
)

// DB is a borrowed handle onto the engine's key-value store (spec.md §5:
// "mutable handles are exclusive per message, read-only handles may be
// freely passed down"). It wraps goleveldb the way the pack's ffldb/ldb
// package wraps it for a different chain's block index.
type DB struct {
	ldb *leveldb.DB
}

// Open opens (creating if absent) a goleveldb database at path.
func Open(path string) (*DB, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.KindResource, "store.Open", err)
	}
	storeLog.Infof("opened store at %s", path)
	return &DB{ldb: ldb}, nil
}

// Close releases the underlying database file.
func (db *DB) Close() error {
	return db.ldb.Close()
}

// Put writes value under key.
func (db *DB) Put(key, value []byte) error {
	if err := db.ldb.Put(key, value, nil); err != nil {
		return bridgeerr.Wrap(bridgeerr.KindInvariant, "store.Put", err)
	}
	return nil
}

// Get reads the value stored under key. It returns a ValidationError if
// the key is absent, matching the "writing to a pruned checkpoint" class
// of StateError the caller is expected to distinguish by context.
func (db *DB) Get(key []byte) ([]byte, error) {
	val, err := db.ldb.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, bridgeerr.Validationf("store.Get", "key not found")
	}
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.KindInvariant, "store.Get", err)
	}
	return val, nil
}

// Has reports whether key is present.
func (db *DB) Has(key []byte) (bool, error) {
	ok, err := db.ldb.Has(key, nil)
	if err != nil {
		return false, bridgeerr.Wrap(bridgeerr.KindInvariant, "store.Has", err)
	}
	return ok, nil
}

// Delete removes key, if present.
func (db *DB) Delete(key []byte) error {
	if err := db.ldb.Delete(key, nil); err != nil {
		return bridgeerr.Wrap(bridgeerr.KindInvariant, "store.Delete", err)
	}
	return nil
}

// Cursor is a thin wrapper around a native leveldb iterator scoped to one
// key prefix, the way the pack's ffldb/ldb.LevelDBCursor scopes block-index
// iteration.
type Cursor struct {
	it     iterator.Iterator
	prefix []byte
}

// NewCursor opens a cursor over every key beginning with prefix.
func (db *DB) NewCursor(prefix []byte) *Cursor {
	return &Cursor{
		it:     db.ldb.NewIterator(util.BytesPrefix(prefix), nil),
		prefix: prefix,
	}
}

// Next advances the cursor. It returns false once exhausted.
func (c *Cursor) Next() bool { return c.it.Next() }

// Key returns the current key, including its prefix.
func (c *Cursor) Key() []byte { return c.it.Key() }

// Value returns the current value.
func (c *Cursor) Value() []byte { return c.it.Value() }

// Release closes the cursor's underlying iterator.
func (c *Cursor) Release() { c.it.Release() }
