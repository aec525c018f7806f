// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/store"
)

// headerStore is a store.HeaderStore backed directly by the KV store's
// HEADERS table (spec.md §6). It trusts whatever header the host appends:
// full PoW header validation is an explicit Non-goal (spec.md §1), the
// host's own SPV sync is the collaborator responsible for only ever
// appending already-validated headers.
type headerStore struct {
	db             *store.DB
	initialHeight  uint32
	height         uint32
	hasAnyHeaders  bool
}

func newHeaderStore(db *store.DB, initialHeight uint32) *headerStore {
	return &headerStore{db: db, initialHeight: initialHeight, height: initialHeight}
}

// AddHeader appends h as the new chain tip. Called by the host's SPV
// sync loop, never by engine code itself.
func (h *headerStore) AddHeader(header store.Header) error {
	var buf bytes.Buffer
	buf.Write(header.MerkleRoot[:])
	var timeBuf [8]byte
	binary.BigEndian.PutUint64(timeBuf[:], uint64(header.Time.Unix()))
	buf.Write(timeBuf[:])

	if err := h.db.Put(headerKey(header.Height), buf.Bytes()); err != nil {
		return err
	}
	if !h.hasAnyHeaders || header.Height > h.height {
		h.height = header.Height
	}
	h.hasAnyHeaders = true
	return nil
}

func (h *headerStore) Header(height uint32) (store.Header, error) {
	const op = "headerStore.Header"
	raw, err := h.db.Get(headerKey(height))
	if err != nil {
		return store.Header{}, bridgeerr.Wrap(bridgeerr.KindValidation, op, err)
	}
	if len(raw) != chainhash.HashSize+8 {
		return store.Header{}, bridgeerr.Invariantf(op, "corrupt header record at height %d", height)
	}
	var root chainhash.Hash
	copy(root[:], raw[:chainhash.HashSize])
	unixTime := binary.BigEndian.Uint64(raw[chainhash.HashSize:])
	return store.Header{
		Height:     height,
		MerkleRoot: root,
		Time:       time.Unix(int64(unixTime), 0),
	}, nil
}

func (h *headerStore) Height() uint32        { return h.height }
func (h *headerStore) InitialHeight() uint32 { return h.initialHeight }

func headerKey(height uint32) []byte {
	key := append([]byte{}, store.PrefixHeaders...)
	var heightBuf [4]byte
	binary.BigEndian.PutUint32(heightBuf[:], height)
	return append(key, heightBuf[:]...)
}
