// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkpoint

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
)

// AddDeposit appends a relayed deposit's Input to the checkpoint while it
// is Building. Per spec.md scenario 5, admission is NOT capped here: the
// max_inputs limit is enforced only at promotion time (SplitOverflow),
// so a burst of deposits can all land on one Building checkpoint and the
// overflow rolls into the next one.
func (c *Checkpoint) AddDeposit(in *Input) error {
	if c.Status != StatusBuilding {
		return bridgeerr.Statef("Checkpoint.AddDeposit", "checkpoint is %s, not building", c.Status)
	}
	c.Inputs = append(c.Inputs, in)
	return nil
}

// AddWithdrawal appends a withdrawal's Output to the checkpoint while it
// is Building, with the same no-admission-cap behavior as AddDeposit.
func (c *Checkpoint) AddWithdrawal(out *Output) error {
	if c.Status != StatusBuilding {
		return bridgeerr.Statef("Checkpoint.AddWithdrawal", "checkpoint is %s, not building", c.Status)
	}
	c.Outputs = append(c.Outputs, out)
	return nil
}

// SplitOverflow removes and returns any Inputs/Outputs beyond maxInputs/
// maxOutputs, in FIFO order, for the caller (package queue) to seed the
// next Building checkpoint with (spec.md §4.4 step 4, §9: "Inputs
// overflowing max-inputs at promotion are moved to the new Building").
func (c *Checkpoint) SplitOverflow(maxInputs, maxOutputs int) (overflowInputs []*Input, overflowOutputs []*Output) {
	if maxInputs > 0 && len(c.Inputs) > maxInputs {
		overflowInputs = append(overflowInputs, c.Inputs[maxInputs:]...)
		c.Inputs = c.Inputs[:maxInputs]
	}
	if maxOutputs > 0 && len(c.Outputs) > maxOutputs {
		overflowOutputs = append(overflowOutputs, c.Outputs[maxOutputs:]...)
		c.Outputs = c.Outputs[:maxOutputs]
	}
	return overflowInputs, overflowOutputs
}

// CanAcceptSignatures reports whether batchType's transactions may accept
// signatures yet: every batch strictly before it in BatchOrder must
// already be fully signed (spec.md §4.3, §8).
func (c *Checkpoint) CanAcceptSignatures(batchType BatchType) bool {
	for _, t := range batchOrder {
		if t == batchType {
			return true
		}
		if !c.Batches[t].Signed() {
			return false
		}
	}
	return false
}

// SubmitSignature routes a signature to the named batch/tx/input and, if
// it completes the final BatchCheckpoint batch, advances the checkpoint's
// Status to Complete and records btcHeight as SignedAtBtcHeight (spec.md
// §4.3: "When the Checkpoint batch is fully signed, the state becomes
// Complete").
func (c *Checkpoint) SubmitSignature(batchType BatchType, txIndex, inputIndex int, sigsetIndex uint32, signatoryIndex int, sig []byte, pubKey *btcec.PublicKey, btcHeight uint32) error {
	const op = "Checkpoint.SubmitSignature"
	if c.Status != StatusSigning {
		return bridgeerr.Statef(op, "checkpoint is %s, not signing", c.Status)
	}
	if !c.CanAcceptSignatures(batchType) {
		return bridgeerr.Statef(op, "batch %s cannot accept signatures until earlier batches finish signing", batchType)
	}

	batch, ok := c.Batches[batchType]
	if !ok {
		return bridgeerr.Validationf(op, "checkpoint has no %s batch", batchType)
	}
	if txIndex < 0 || txIndex >= len(batch.Txs) {
		return bridgeerr.Validationf(op, "tx index %d out of range for batch %s", txIndex, batchType)
	}
	btx := batch.Txs[txIndex]
	if inputIndex < 0 || inputIndex >= len(btx.Inputs) {
		return bridgeerr.Validationf(op, "input index %d out of range for tx %d", inputIndex, txIndex)
	}

	if err := btx.Inputs[inputIndex].AddSignature(sigsetIndex, signatoryIndex, sig, pubKey); err != nil {
		return err
	}

	if batchType == BatchCheckpoint && batch.Signed() {
		c.Status = StatusComplete
		h := btcHeight
		c.SignedAtBtcHeight = &h
		ckptLog.Infof("checkpoint sigset %d: all batches signed, status complete at btc height %d", c.Sigset.Index, btcHeight)
	}
	return nil
}
