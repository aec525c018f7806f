// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/nbtc-chain/checkpoint/checkpoint"
	"github.com/nbtc-chain/checkpoint/disbursal"
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/sigset"
)

// maybeBuildEmergencyDisbursal implements the scheduling half of spec.md
// §4.9: once the Signing checkpoint has sat unconfirmed past
// emergency_disbursal_lock_time_interval, build and attach its
// Disbursal/IntermediateEmergency batches, if not already built.
//
// The Signing checkpoint's first Checkpoint-batch input stands in for
// "the chained reserve output" disbursal.Build spends from: this engine's
// Checkpoint model holds the reserve as a set of individual deposit
// Inputs rather than a single rolling UTXO, so the first input of the
// tail Checkpoint transaction is used as the representative prevout. A
// full reconciliation of the two models is future work.
func (e *engine) maybeBuildEmergencyDisbursal(now time.Time) error {
	signing := e.queue.Signing()
	if signing == nil {
		return nil
	}
	if signing.Batches[checkpoint.BatchDisbursal] != nil {
		return nil // already scheduled
	}
	age := now.Sub(time.Unix(signing.CreateTime, 0))
	if age < e.queue.Config.Bitcoin.EmergencyDisbursalLockTimeInterval {
		return nil
	}

	ckptBatch := signing.Batches[checkpoint.BatchCheckpoint]
	if ckptBatch == nil || len(ckptBatch.Txs) == 0 || len(ckptBatch.Txs[0].Inputs) == 0 {
		return bridgeerr.Invariantf("engine.maybeBuildEmergencyDisbursal", "signing checkpoint has no chained reserve input to fall back from")
	}
	reserveInput := ckptBatch.Txs[0].Inputs[0]

	accounts, err := e.ledger.AccountSnapshot()
	if err != nil {
		return err
	}

	threshold := sigset.Threshold{
		Num: e.queue.Config.Bitcoin.SigsetThreshold.Num,
		Den: e.queue.Config.Bitcoin.SigsetThreshold.Den,
	}
	disbursalBatch, intermediateBatch, err := disbursal.Build(
		accounts, reserveInput.Prevout, reserveInput.Amount, signing.Sigset, threshold, activeNetParams.Params, e.queue.Config.Bitcoin,
	)
	if err != nil {
		return err
	}

	signing.Batches[checkpoint.BatchDisbursal] = disbursalBatch
	signing.Batches[checkpoint.BatchIntermediateEmergency] = intermediateBatch
	engineLog.Warnf("checkpoint sigset %d stalled past emergency_disbursal_lock_time_interval, emergency batches attached", signing.Sigset.Index)
	return nil
}
