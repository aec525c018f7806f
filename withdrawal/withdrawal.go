// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package withdrawal implements Withdrawal Intake (spec.md §4.8): queuing
// a destination script and amount as an output on the Building checkpoint,
// after validating the script length, minimum amount, and checkpoint-count
// gate, and charging the fee-rate controller's per-user deduction.
package withdrawal

import (
	"github.com/nbtc-chain/checkpoint/chaincfg"
	"github.com/nbtc-chain/checkpoint/checkpoint"
	"github.com/nbtc-chain/checkpoint/feerate"
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/internal/log"
)

var withdrawalLog = log.NewSubsystem("WTHD")

// Request carries the arguments of an add_withdrawal call (spec.md §4.8).
type Request struct {
	Script []byte
	Amount int64

	// VBytesShare is this withdrawal output's estimated share of the
	// eventual checkpoint transaction's vsize, used to compute its fee
	// charge (spec.md §4.6).
	VBytesShare int64
}

// Add validates req against cfg and existingCheckpointCount, appends an
// Output to building, and returns the fee charged to the user. The
// surplus between this charge and the transaction's actual paid fee is
// the caller's responsibility to route into the checkpoint's fee pool.
func Add(building *checkpoint.Checkpoint, existingCheckpointCount int, cfg chaincfg.BitcoinConfig, fees *feerate.Controller, req Request) (int64, error) {
	const op = "withdrawal.Add"

	if len(req.Script) > cfg.MaxWithdrawalScriptLength {
		return 0, bridgeerr.Validationf(op, "withdrawal script length %d exceeds maximum %d", len(req.Script), cfg.MaxWithdrawalScriptLength)
	}
	if req.Amount < cfg.MinWithdrawalAmount {
		return 0, bridgeerr.Validationf(op, "withdrawal amount %d below minimum %d", req.Amount, cfg.MinWithdrawalAmount)
	}
	if existingCheckpointCount < cfg.MinWithdrawalCheckpoints {
		return 0, bridgeerr.Validationf(op, "only %d checkpoints exist, need at least %d before withdrawals are accepted", existingCheckpointCount, cfg.MinWithdrawalCheckpoints)
	}

	fee := feerate.UserFee(fees.Rate(), req.VBytesShare, cfg.UserFeeFactor)

	if err := building.AddWithdrawal(&checkpoint.Output{Script: req.Script, Value: req.Amount}); err != nil {
		return 0, err
	}

	withdrawalLog.Infof("queued withdrawal of %d sats (fee %d) onto building checkpoint", req.Amount, fee)
	return fee, nil
}
