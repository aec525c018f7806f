// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package checkpoint implements the Checkpoint: one transaction batch set
// (disbursal + intermediate-emergency + checkpoint tx) together with its
// signing state (spec.md §3, §4.3). The queue package owns the sequence of
// checkpoints and the promotion algorithm; this package owns a single
// checkpoint's data and the per-input signature bookkeeping.
package checkpoint

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/nbtc-chain/checkpoint/internal/log"
	"github.com/nbtc-chain/checkpoint/sigset"
)

var ckptLog = log.NewSubsystem("CKPT")

// Status is a checkpoint's position in the Building → Signing → Complete
// state machine (spec.md §4.3); Confirmed is tracked separately by the
// queue (confirmed_index), not as a Status value, since it is an external
// attestation rather than an internally-driven transition.
type Status int

const (
	StatusBuilding Status = iota
	StatusSigning
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusBuilding:
		return "building"
	case StatusSigning:
		return "signing"
	case StatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// BatchType identifies one of the three transaction batches a checkpoint
// carries. Batches sign in ascending BatchType order. IntermediateEmergency
// spends Disbursal's outputs; the Checkpoint batch does not spend either
// of them (see package disbursal).
type BatchType int

const (
	BatchDisbursal BatchType = iota
	BatchIntermediateEmergency
	BatchCheckpoint
)

func (t BatchType) String() string {
	switch t {
	case BatchDisbursal:
		return "disbursal"
	case BatchIntermediateEmergency:
		return "intermediate-emergency"
	case BatchCheckpoint:
		return "checkpoint"
	default:
		return "unknown"
	}
}

// batchOrder is the full, ascending signing order, spelled out once so
// every ordering check in this package (and its tests) derives from a
// single source of truth.
var batchOrder = []BatchType{BatchDisbursal, BatchIntermediateEmergency, BatchCheckpoint}

// Output is a single Bitcoin transaction output queued for a checkpoint,
// from a withdrawal (spec.md §3).
type Output struct {
	Script []byte
	Value  int64
}

// PendingCredit is one (receiver, coin amount) credit attached to a
// checkpoint, to be delivered to the nBTC ledger once the checkpoint is
// Confirmed (spec.md §3, §4.10).
type PendingCredit struct {
	Receiver string
	Amount   int64
}

// Prevout identifies the Bitcoin output an Input spends.
type Prevout struct {
	Txid chainhash.Hash
	Vout uint32
}

// BatchTx pairs one Bitcoin transaction within a Batch with the Inputs
// that must be signed to finalize it.
type BatchTx struct {
	Tx     *wire.MsgTx
	Inputs []*Input
}

// Batch is an ordered sequence of partially-signed transactions that sign
// together, in BatchType dependency order (spec.md §3, §4.3).
type Batch struct {
	Type BatchType
	Txs  []*BatchTx
}

// Signed reports whether every input of every transaction in the batch has
// reached its signing threshold.
func (b *Batch) Signed() bool {
	if b == nil {
		return true
	}
	for _, tx := range b.Txs {
		for _, in := range tx.Inputs {
			if !in.IsSigned() {
				return false
			}
		}
	}
	return true
}

// Checkpoint is one transaction batch set together with its signing state
// (spec.md §3).
type Checkpoint struct {
	Status        Status
	CreateTime    int64
	Sigset        *sigset.SignatorySet
	FeesCollected int64
	FeeRate       int64

	// ReserveAtCreation is the cumulative net BTC held in custody at the
	// moment this checkpoint was opened (all deposits ever relayed minus
	// all withdrawals ever queued, as of CreateTime). It is the
	// denominator package queue's change_rates uses for the withdrawal
	// ratio (spec.md §4.5).
	ReserveAtCreation int64

	// SignedAtBtcHeight is recorded when the Checkpoint batch finishes
	// signing (Signing → Complete); nil beforehand.
	SignedAtBtcHeight *uint32

	Pending []PendingCredit

	// Inputs and Outputs accumulate while Status == StatusBuilding, fed
	// by package deposit and package withdrawal. At promotion both are
	// split at the configured max; the remaining Inputs become the inputs
	// of Batches[BatchCheckpoint] (with no wire transaction attached), and
	// the remaining Outputs stay here, not placed in any batch.
	Inputs  []*Input
	Outputs []*Output

	Batches map[BatchType]*Batch
}

// NewBuilding returns a fresh checkpoint in the Building state, bound to
// set (spec.md §4.3: "On transition: snapshot current SignatorySet ...
// emit a new empty Building with the new sigset").
func NewBuilding(set *sigset.SignatorySet, createTime int64, feeRate int64) *Checkpoint {
	return &Checkpoint{
		Status:     StatusBuilding,
		CreateTime: createTime,
		Sigset:     set,
		FeeRate:    feeRate,
		Batches:    make(map[BatchType]*Batch),
	}
}

// BatchOrder returns the full ascending signing order.
func BatchOrder() []BatchType {
	out := make([]BatchType, len(batchOrder))
	copy(out, batchOrder)
	return out
}

// precedes reports whether a must fully sign before b may accept
// signatures (spec.md §4.3, §8).
func precedes(a, b BatchType) bool { return a < b }
