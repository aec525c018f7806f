// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package disbursal implements the Emergency Disbursal Scheduler (spec.md
// §4.9): a fallback Bitcoin-side payout path for reserve funds if the
// primary checkpoint transaction stalls unconfirmed. Build only constructs
// the batches; it is not called at checkpoint promotion. In this repository
// cmd/checkpointd calls it once a Signing checkpoint has existed longer
// than emergency_disbursal_lock_time_interval.
//
// Two batches sign it in the order fixed by package checkpoint's
// BatchOrder: Disbursal first splits the reserve into one intermediate,
// still sigset-controlled, output per shard; IntermediateEmergency second
// spends each shard's intermediate output directly to its accounts. The
// Checkpoint batch itself, signed last, is an independent spend of the
// same prior reserve prevout: on Bitcoin only one of the two chains can
// ever confirm, so whichever the host broadcasts first wins, and the
// emergency chain is purely a dormant fallback.
package disbursal

import (
	"github.com/btcsuite/btcd/btcutil"
	btcdchaincfg "github.com/btcsuite/btcd/chaincfg"

	"github.com/nbtc-chain/checkpoint/bitcointx"
	"github.com/nbtc-chain/checkpoint/chaincfg"
	"github.com/nbtc-chain/checkpoint/checkpoint"
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/internal/log"
	"github.com/nbtc-chain/checkpoint/script"
	"github.com/nbtc-chain/checkpoint/sigset"
	"github.com/nbtc-chain/checkpoint/store"
)

var disbursalLog = log.NewSubsystem("DSBL")

// estimatedOutputVSize is a conservative per-output vbyte estimate used to
// decide how many accounts fit in one emergency-disbursal shard before
// exceeding EmergencyDisbursalMaxTxSize; it does not need to be exact,
// only a safe upper bound, since sharding only affects the fallback path.
const estimatedOutputVSize = 43

// shard splits eligible accounts (already filtered to >= MinTxAmt) into
// groups that each stay under maxTxSize vbytes of outputs.
func shard(accounts []store.Account, maxTxSize int64) [][]store.Account {
	maxPerTx := int(maxTxSize / estimatedOutputVSize)
	if maxPerTx < 1 {
		maxPerTx = 1
	}
	var shards [][]store.Account
	for len(accounts) > 0 {
		n := maxPerTx
		if n > len(accounts) {
			n = len(accounts)
		}
		shards = append(shards, accounts[:n])
		accounts = accounts[n:]
	}
	return shards
}

// Build constructs the Disbursal and IntermediateEmergency batches over
// accounts, spending reservePrevout (supplied by the caller as the
// checkpoint's reserve input) and secured throughout by set/threshold
// until final payout.
func Build(accounts []store.Account, reservePrevout checkpoint.Prevout, reserveAmount int64, set *sigset.SignatorySet, threshold sigset.Threshold, net *btcdchaincfg.Params, cfg chaincfg.BitcoinConfig) (disbursalBatch, intermediateBatch *checkpoint.Batch, err error) {
	const op = "disbursal.Build"

	var eligible []store.Account
	for _, a := range accounts {
		if a.Balance >= cfg.EmergencyDisbursalMinTxAmt {
			eligible = append(eligible, a)
		}
	}
	if len(eligible) == 0 {
		disbursalLog.Debugf("no accounts clear emergency_disbursal_min_tx_amt, no disbursal batches built")
		return &checkpoint.Batch{Type: checkpoint.BatchDisbursal}, &checkpoint.Batch{Type: checkpoint.BatchIntermediateEmergency}, nil
	}
	shards := shard(eligible, cfg.EmergencyDisbursalMaxTxSize)

	reserveScript, err := script.BuildReserveScript(set, threshold)
	if err != nil {
		return nil, nil, bridgeerr.Wrap(bridgeerr.KindValidation, op, err)
	}

	splitTx := bitcointx.NewTx()
	splitIn := checkpoint.NewInput(reservePrevout, set, nil, reserveAmount, threshold)
	bitcointx.AddInput(splitTx, reservePrevout.Txid, reservePrevout.Vout)

	intermediateTxs := make([]*checkpoint.BatchTx, 0, len(shards))
	for i, sh := range shards {
		var shardTotal int64
		for _, a := range sh {
			shardTotal += a.Balance
		}
		bitcointx.AddOutput(splitTx, shardTotal, reserveScript)

		payoutTx := bitcointx.NewTx()
		payoutPrevout := checkpoint.Prevout{Txid: bitcointx.TxID(splitTx), Vout: uint32(i)}
		payoutIn := checkpoint.NewInput(payoutPrevout, set, nil, shardTotal, threshold)
		bitcointx.AddInput(payoutTx, payoutPrevout.Txid, payoutPrevout.Vout)

		for _, a := range sh {
			addr, err := btcutil.DecodeAddress(a.Addr, net)
			if err != nil {
				return nil, nil, bridgeerr.Wrap(bridgeerr.KindValidation, op, err)
			}
			payoutScript, err := script.BuildEmergencyDisbursalScript(addr)
			if err != nil {
				return nil, nil, err
			}
			bitcointx.AddOutput(payoutTx, a.Balance, payoutScript)
		}

		intermediateTxs = append(intermediateTxs, &checkpoint.BatchTx{Tx: payoutTx, Inputs: []*checkpoint.Input{payoutIn}})
	}

	disbursalBatch = &checkpoint.Batch{
		Type: checkpoint.BatchDisbursal,
		Txs:  []*checkpoint.BatchTx{{Tx: splitTx, Inputs: []*checkpoint.Input{splitIn}}},
	}
	intermediateBatch = &checkpoint.Batch{
		Type: checkpoint.BatchIntermediateEmergency,
		Txs:  intermediateTxs,
	}

	disbursalLog.Infof("built emergency disbursal: %d shards over %d eligible accounts", len(shards), len(eligible))
	return disbursalBatch, intermediateBatch, nil
}
