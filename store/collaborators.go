// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Header is the subset of a Bitcoin block header the engine needs from the
// SPV collaborator: enough to verify a merkle proof and bound deposit age
// (spec.md §6).
type Header struct {
	Height     uint32
	MerkleRoot chainhash.Hash
	Time       time.Time
}

// HeaderStore is the SPV header-chain collaborator (spec.md §6): "header
// PoW chain + merkle proofs" maintained outside this engine's scope. The
// engine only ever reads already-accepted headers.
type HeaderStore interface {
	// Header returns the header accepted at height, or an error if no
	// such header has been accepted yet.
	Header(height uint32) (Header, error)

	// Height returns the highest height with an accepted header.
	Height() uint32

	// InitialHeight returns the height of the genesis header this chain
	// was bootstrapped from (spec.md §9: "the SPV header chain is loaded
	// from a committed snapshot at genesis").
	InitialHeight() uint32
}

// ValidatorSet is the validator-power collaborator (spec.md §6), queried
// when the queue assembles a new SignatorySet snapshot.
type ValidatorSet interface {
	// PowerOf returns consensusKey's current voting power.
	PowerOf(consensusKey string) uint64

	// SignerKey maps a validator's operator address to its consensus key.
	SignerKey(addr string) (consensusKey string, err error)

	// XPubOf returns the signatory xpub a validator has registered for
	// its consensus key, if any.
	XPubOf(addr string) (xpub string, ok bool)
}

// NBTCLedger is the wrapped-asset ledger collaborator (spec.md §6),
// external to this engine: deposits mint, withdrawals burn the amount
// taken off the reserve.
type NBTCLedger interface {
	Mint(addr string, amount int64) error
	Burn(addr string, amount int64) error

	// AccountSnapshot returns every (address, balance) pair currently
	// held, used by the disbursal scheduler to build emergency payouts
	// (spec.md §4.9).
	AccountSnapshot() ([]Account, error)
}

// Account is one (address, balance) pair from an NBTCLedger snapshot.
type Account struct {
	Addr    string
	Balance int64
}
