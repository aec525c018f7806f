// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bitcointx is a thin wrapper over github.com/btcsuite/btcd/wire
// giving the checkpoint engine a small, deterministic surface for building
// the Bitcoin transactions inside a Batch (spec.md §3, §6): standard
// consensus encoding, segwit witnesses, and a vsize estimate for fee
// accounting, without exposing the full wire.MsgTx API to every caller.
package bitcointx

import (
	"bytes"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
)

// TxVersion is the transaction version the engine always builds with.
const TxVersion = 2

// NewTx returns an empty transaction shell of TxVersion with no locktime.
func NewTx() *wire.MsgTx {
	tx := wire.NewMsgTx(TxVersion)
	return tx
}

// AddInput appends an input spending prevTxid:vout, with an empty
// scriptSig (this engine only ever spends witness outputs) and the
// default sequence number.
func AddInput(tx *wire.MsgTx, prevTxid chainhash.Hash, vout uint32) *wire.TxIn {
	outpoint := wire.NewOutPoint(&prevTxid, vout)
	in := wire.NewTxIn(outpoint, nil, nil)
	tx.AddTxIn(in)
	return in
}

// AddOutput appends a value/pkScript pair.
func AddOutput(tx *wire.MsgTx, value int64, pkScript []byte) *wire.TxOut {
	out := wire.NewTxOut(value, pkScript)
	tx.AddTxOut(out)
	return out
}

// SetWitness assigns the witness stack for the input at index i -- the
// output of script.BuildWitness for a reserve-script input, or a single
// DER signature + pubkey pair for a standard witness input.
func SetWitness(tx *wire.MsgTx, i int, witness [][]byte) error {
	if i < 0 || i >= len(tx.TxIn) {
		return bridgeerr.Invariantf("bitcointx.SetWitness", "input index %d out of range (tx has %d inputs)", i, len(tx.TxIn))
	}
	tx.TxIn[i].Witness = witness
	return nil
}

// Serialize returns the full consensus-encoded transaction, including
// witness data.
func Serialize(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.KindInvariant, "bitcointx.Serialize", err)
	}
	return buf.Bytes(), nil
}

// TxID returns the transaction's txid (the hash used for prevout
// references; witness data is excluded per BIP141).
func TxID(tx *wire.MsgTx) chainhash.Hash {
	return tx.TxHash()
}

// VSize estimates the transaction's virtual size in vbytes, used by the
// fee-rate controller's per-user deduction (spec.md §4.6).
func VSize(tx *wire.MsgTx) int64 {
	weight := wire.GetTransactionWeight(tx)
	return (weight + 3) / 4
}
