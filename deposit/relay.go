// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package deposit implements the Deposit Relay (spec.md §4.7): verifying a
// Bitcoin transaction output pays a known reserve script via SPV proof,
// then crediting a checkpoint with an Input and a pending nBTC credit.
package deposit

import (
	"bytes"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/nbtc-chain/checkpoint/chaincfg"
	"github.com/nbtc-chain/checkpoint/checkpoint"
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/internal/log"
	"github.com/nbtc-chain/checkpoint/sigset"
	"github.com/nbtc-chain/checkpoint/store"
)

var depositLog = log.NewSubsystem("DPST")

// Request carries the arguments of a single relay_deposit call (spec.md
// §4.7: "raw Bitcoin transaction, claimed block height, merkle proof, vout
// index, destination").
type Request struct {
	Txid         chainhash.Hash
	Height       uint32
	Proof        Proof
	VoutIndex    uint32
	OutputScript []byte
	OutputValue  int64
	Dest         Dest
}

// Result is what a successful relay produces: the Input to attach to the
// target checkpoint and the pending credit it earns.
type Result struct {
	Input   *checkpoint.Input
	Pending checkpoint.PendingCredit
}

// Relay validates req against headers, the target sigset's reserve script,
// and cfg, implementing spec.md §4.7's five-step contract. target is the
// sigset the output is expected to pay (the current Building or Signing
// checkpoint's sigset, chosen by the caller); reserveScript is its
// precomputed script.BuildReserveScript(target, threshold) output.
func Relay(headers store.HeaderStore, now time.Time, target *sigset.SignatorySet, threshold sigset.Threshold, reserveScript []byte, cfg chaincfg.BitcoinConfig, req Request) (*Result, error) {
	const op = "deposit.Relay"

	// Step 1: block height must resolve to an accepted header.
	if req.Height > headers.Height() {
		return nil, bridgeerr.Validationf(op, "Invalid bitcoin block height")
	}
	if req.Height < headers.InitialHeight() {
		return nil, bridgeerr.Validationf(op, "Passed index is greater than initial height")
	}
	header, err := headers.Header(req.Height)
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.KindValidation, op, err)
	}

	// Step 2: merkle proof must reconstruct the header's txroot.
	if !req.Proof.Verify(req.Txid, header.MerkleRoot) {
		return nil, bridgeerr.Validationf(op, "merkle proof does not reconstruct the header's merkle root")
	}

	// Step 3: the claimed output must pay the reserve script of a known
	// sigset.
	if !bytes.Equal(req.OutputScript, reserveScript) {
		return nil, bridgeerr.Validationf(op, "output does not pay the reserve script of sigset %d", target.Index)
	}

	// Step 4: amount and age bounds.
	if req.OutputValue < cfg.MinDepositAmount {
		return nil, bridgeerr.Validationf(op, "deposit value %d below minimum %d", req.OutputValue, cfg.MinDepositAmount)
	}
	if now.Sub(header.Time) > cfg.MaxDepositAge {
		return nil, bridgeerr.Validationf(op, "header at height %d is older than max deposit age", req.Height)
	}

	// Step 5: build the Input and pending credit. DestCommitment is set
	// directly from the caller-supplied destination, giving the
	// round-trip property spec.md §8 tests: "the destination-commitment
	// of a deposit equals the commitment recorded on the input that
	// credited it".
	in := checkpoint.NewInput(
		checkpoint.Prevout{Txid: req.Txid, Vout: req.VoutIndex},
		target,
		req.Dest.CommitmentBytes(),
		req.OutputValue,
		threshold,
	)

	pending := checkpoint.PendingCredit{
		Receiver: req.Dest.ToReceiverAddr(),
		Amount:   req.OutputValue,
	}

	depositLog.Infof("relayed deposit %s:%d, sigset %d, amount %d, receiver %s",
		req.Txid, req.VoutIndex, target.Index, req.OutputValue, pending.Receiver)

	return &Result{Input: in, Pending: pending}, nil
}
