// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/binary"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/store"
)

// validatorSet is a store.ValidatorSet backed by the KV store's SIGNERS
// and VALIDATORS tables (spec.md §6). The daemon writes VALIDATORS only
// through SetPower, from begin_block_step's validator updates.
type validatorSet struct {
	db *store.DB
	reg *store.Registry
}

func newValidatorSet(db *store.DB, reg *store.Registry) *validatorSet {
	return &validatorSet{db: db, reg: reg}
}

func (v *validatorSet) PowerOf(consensusKey string) uint64 {
	raw, err := v.db.Get(validatorKey(consensusKey))
	if err != nil {
		return 0
	}
	if len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

func (v *validatorSet) SetPower(consensusKey string, power uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], power)
	return v.db.Put(validatorKey(consensusKey), buf[:])
}

func (v *validatorSet) SignerKey(addr string) (string, error) {
	raw, err := v.db.Get(signerKey(addr))
	if err != nil {
		return "", bridgeerr.Wrap(bridgeerr.KindValidation, "validatorSet.SignerKey", err)
	}
	return string(raw), nil
}

func (v *validatorSet) SetSignerKey(addr, consensusKey string) error {
	return v.db.Put(signerKey(addr), []byte(consensusKey))
}

func (v *validatorSet) XPubOf(addr string) (string, bool) {
	consensusKey, err := v.SignerKey(addr)
	if err != nil {
		return "", false
	}
	return v.reg.XPubOf(consensusKey)
}

// Candidates walks every registered signer, resolving its consensus key's
// power and registered xpub, for use as a queue.SigsetCandidatesFn.
func (v *validatorSet) Candidates() []sigsetCandidate {
	var out []sigsetCandidate
	cur := v.db.NewCursor(store.PrefixSigners)
	defer cur.Release()
	for cur.Next() {
		addr := string(cur.Key()[len(store.PrefixSigners):])
		consensusKey := string(cur.Value())
		xpub, ok := v.reg.XPubOf(consensusKey)
		if !ok {
			continue
		}
		out = append(out, sigsetCandidate{Addr: addr, XPub: xpub, Power: v.PowerOf(consensusKey)})
	}
	return out
}

type sigsetCandidate struct {
	Addr  string
	XPub  string
	Power uint64
}

func validatorKey(consensusKey string) []byte {
	return append(append([]byte{}, store.PrefixValidators...), []byte(consensusKey)...)
}

func signerKey(addr string) []byte {
	return append(append([]byte{}, store.PrefixSigners...), []byte(addr)...)
}
