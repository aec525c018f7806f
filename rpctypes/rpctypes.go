// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpctypes defines the command structs for the seven operations
// the checkpoint engine exposes (spec.md §6), in the Cmd/NewXCmd pattern
// used by the teacher repo's JSON-RPC command types.
package rpctypes

// RelayDepositCmd defines the relay_deposit command.
type RelayDepositCmd struct {
	Tx          []byte
	Height      uint32
	Proof       []byte
	VoutIndex   uint32
	DestAddress string
	DestSender  string
	DestIsIBC   bool
}

// NewRelayDepositCmd returns a new instance which can be used to issue a
// relay_deposit command.
func NewRelayDepositCmd(tx []byte, height uint32, proof []byte, voutIndex uint32, destAddress, destSender string, destIsIBC bool) *RelayDepositCmd {
	return &RelayDepositCmd{
		Tx:          tx,
		Height:      height,
		Proof:       proof,
		VoutIndex:   voutIndex,
		DestAddress: destAddress,
		DestSender:  destSender,
		DestIsIBC:   destIsIBC,
	}
}

// AddWithdrawalCmd defines the add_withdrawal command.
type AddWithdrawalCmd struct {
	Script []byte
	Amount int64
}

// NewAddWithdrawalCmd returns a new instance which can be used to issue an
// add_withdrawal command.
func NewAddWithdrawalCmd(script []byte, amount int64) *AddWithdrawalCmd {
	return &AddWithdrawalCmd{Script: script, Amount: amount}
}

// SetSignatoryKeyCmd defines the set_signatory_key command.
type SetSignatoryKeyCmd struct {
	ValidatorAddr string
	XPub          string
}

// NewSetSignatoryKeyCmd returns a new instance which can be used to issue
// a set_signatory_key command.
func NewSetSignatoryKeyCmd(validatorAddr, xpub string) *SetSignatoryKeyCmd {
	return &SetSignatoryKeyCmd{ValidatorAddr: validatorAddr, XPub: xpub}
}

// SignatureTarget addresses one input within a checkpoint's batch set that
// a submit_signatures call is supplying a signature for.
type SignatureTarget struct {
	CheckpointIndex uint32
	BatchType       int // mirrors checkpoint.BatchType's int values
	TxIndex         int
	InputIndex      int
	Sig             []byte
}

// SubmitSignaturesCmd defines the submit_signatures command: one
// signatory (identified by xpub) submitting signatures over a batch of
// inputs in a single call (spec.md §6).
type SubmitSignaturesCmd struct {
	XPub        string
	Targets     []SignatureTarget
	SigsetIndex uint32
	BtcHeight   uint32
}

// NewSubmitSignaturesCmd returns a new instance which can be used to issue
// a submit_signatures command.
func NewSubmitSignaturesCmd(xpub string, targets []SignatureTarget, sigsetIndex, btcHeight uint32) *SubmitSignaturesCmd {
	return &SubmitSignaturesCmd{XPub: xpub, Targets: targets, SigsetIndex: sigsetIndex, BtcHeight: btcHeight}
}

// BeginBlockStepCmd defines the begin_block_step command.
type BeginBlockStepCmd struct {
	BlockTime        int64
	OfflineSignals   []string
	ValidatorUpdates map[string]uint64
}

// NewBeginBlockStepCmd returns a new instance which can be used to issue a
// begin_block_step command.
func NewBeginBlockStepCmd(blockTime int64, offlineSignals []string, validatorUpdates map[string]uint64) *BeginBlockStepCmd {
	return &BeginBlockStepCmd{BlockTime: blockTime, OfflineSignals: offlineSignals, ValidatorUpdates: validatorUpdates}
}

// TakePendingCmd defines the take_pending command.
type TakePendingCmd struct{}

// NewTakePendingCmd returns a new instance which can be used to issue a
// take_pending command.
func NewTakePendingCmd() *TakePendingCmd {
	return &TakePendingCmd{}
}

// ChangeRatesCmd defines the change_rates command.
type ChangeRatesCmd struct {
	FromTS         int64
	ToTS           int64
	MinCpIndex     uint32
}

// NewChangeRatesCmd returns a new instance which can be used to issue a
// change_rates command.
func NewChangeRatesCmd(fromTS, toTS int64, minCpIndex uint32) *ChangeRatesCmd {
	return &ChangeRatesCmd{FromTS: fromTS, ToTS: toTS, MinCpIndex: minCpIndex}
}
