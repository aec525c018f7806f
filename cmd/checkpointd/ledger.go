// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/binary"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/store"
)

// ledger is a store.NBTCLedger backed by the KV store. The real nBTC
// wrapped-asset ledger lives on the host application chain (spec.md §6);
// this is the minimal standalone adapter that lets checkpointd run and
// exercise take_pending/disbursal end to end without that external chain.
type ledger struct {
	db *store.DB
}

func newLedger(db *store.DB) *ledger {
	return &ledger{db: db}
}

func (l *ledger) Mint(addr string, amount int64) error {
	bal, err := l.balance(addr)
	if err != nil {
		return err
	}
	return l.setBalance(addr, bal+amount)
}

func (l *ledger) Burn(addr string, amount int64) error {
	bal, err := l.balance(addr)
	if err != nil {
		return err
	}
	if bal < amount {
		return bridgeerr.Validationf("ledger.Burn", "address %s has balance %d, cannot burn %d", addr, bal, amount)
	}
	return l.setBalance(addr, bal-amount)
}

func (l *ledger) AccountSnapshot() ([]store.Account, error) {
	var accounts []store.Account
	cur := l.db.NewCursor(store.PrefixLedger)
	defer cur.Release()
	for cur.Next() {
		addr := string(cur.Key()[len(store.PrefixLedger):])
		val := cur.Value()
		if len(val) != 8 {
			continue
		}
		accounts = append(accounts, store.Account{Addr: addr, Balance: int64(binary.BigEndian.Uint64(val))})
	}
	return accounts, nil
}

func (l *ledger) balance(addr string) (int64, error) {
	val, err := l.db.Get(ledgerKey(addr))
	if err != nil {
		return 0, nil // no prior balance recorded
	}
	if len(val) != 8 {
		return 0, bridgeerr.Invariantf("ledger.balance", "corrupt balance record for %s", addr)
	}
	return int64(binary.BigEndian.Uint64(val)), nil
}

func (l *ledger) setBalance(addr string, balance int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(balance))
	return l.db.Put(ledgerKey(addr), buf[:])
}

func ledgerKey(addr string) []byte {
	return append(append([]byte{}, store.PrefixLedger...), []byte(addr)...)
}
