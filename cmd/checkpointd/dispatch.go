// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/nbtc-chain/checkpoint/deposit"
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/rpctypes"
	"github.com/nbtc-chain/checkpoint/withdrawal"
)

// Dispatch routes one rpctypes command to its engine operation, the host
// API's single entry point, recovering any InvariantViolation at this
// boundary (spec.md §7, SPEC_FULL.md §A.2).
func (e *engine) Dispatch(cmd interface{}) (result interface{}, err error) {
	const op = "engine.Dispatch"

	defer func() {
		if r := recover(); r != nil {
			be, ok := r.(*bridgeerr.BridgeError)
			if !ok || be.Kind != bridgeerr.KindInvariant {
				panic(r)
			}
			engineLog.Criticalf("%s: invariant violation, aborting: %v", op, be)
			err = be
		}
	}()

	switch c := cmd.(type) {
	case *rpctypes.RelayDepositCmd:
		return e.dispatchRelayDeposit(c)
	case *rpctypes.AddWithdrawalCmd:
		fee, ferr := e.queue.AddWithdrawal(withdrawal.Request{Script: c.Script, Amount: c.Amount})
		return fee, bridgeerr.PanicIfInvariant(ferr)
	case *rpctypes.SetSignatoryKeyCmd:
		return nil, bridgeerr.PanicIfInvariant(e.registry.SetSignatoryKey(e.validators, c.ValidatorAddr, c.XPub))
	case *rpctypes.SubmitSignaturesCmd:
		return e.queue.SubmitSignatures(c.XPub, c.Targets, c.SigsetIndex, c.BtcHeight), nil
	case *rpctypes.BeginBlockStepCmd:
		for consensusKey, power := range c.ValidatorUpdates {
			if serr := e.validators.SetPower(consensusKey, power); serr != nil {
				return nil, bridgeerr.PanicIfInvariant(serr)
			}
		}
		return nil, bridgeerr.PanicIfInvariant(e.queue.BeginBlockStep(c.BlockTime, c.OfflineSignals, e.candidates))
	case *rpctypes.TakePendingCmd:
		drained := e.queue.TakePending()
		for _, credits := range drained {
			for _, credit := range credits {
				if merr := e.ledger.Mint(credit.Receiver, credit.Amount); merr != nil {
					return nil, bridgeerr.PanicIfInvariant(merr)
				}
			}
		}
		return drained, nil
	case *rpctypes.ChangeRatesCmd:
		withdrawalBp, sigsetChangeBp := e.queue.ChangeRates(c.FromTS, c.ToTS, c.MinCpIndex)
		return struct{ WithdrawalBp, SigsetChangeBp int64 }{withdrawalBp, sigsetChangeBp}, nil
	default:
		return nil, bridgeerr.Validationf(op, "unrecognized command %T", cmd)
	}
}

func (e *engine) dispatchRelayDeposit(c *rpctypes.RelayDepositCmd) (interface{}, error) {
	reserveScript, _, err := e.buildingReserveScript()
	if err != nil {
		return nil, bridgeerr.PanicIfInvariant(err)
	}

	var dest deposit.Dest
	if c.DestIsIBC {
		dest = deposit.NewIBCDest(c.DestSender, c.DestAddress)
	} else {
		dest = deposit.NewAddressDest(c.DestAddress)
	}

	tx, err := decodeTx(c.Tx)
	if err != nil {
		return nil, bridgeerr.PanicIfInvariant(err)
	}
	if int(c.VoutIndex) >= len(tx.TxOut) {
		return nil, bridgeerr.Validationf("engine.dispatchRelayDeposit", "vout index %d out of range", c.VoutIndex)
	}
	out := tx.TxOut[c.VoutIndex]

	proof, err := decodeProof(c.Proof)
	if err != nil {
		return nil, bridgeerr.PanicIfInvariant(err)
	}

	result, err := e.queue.RelayDeposit(e.headers, time.Now(), reserveScript, deposit.Request{
		Txid:         tx.TxHash(),
		Height:       c.Height,
		Proof:        proof,
		VoutIndex:    c.VoutIndex,
		OutputScript: out.PkScript,
		OutputValue:  out.Value,
		Dest:         dest,
	})
	return result, bridgeerr.PanicIfInvariant(err)
}

// decodeTx parses a standard Bitcoin consensus-encoded transaction
// (spec.md §6: "Bitcoin transactions follow standard consensus
// encoding").
func decodeTx(raw []byte) (*wire.MsgTx, error) {
	tx := &wire.MsgTx{}
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, bridgeerr.Validationf("engine.decodeTx", "malformed transaction: %v", err)
	}
	return tx, nil
}

// decodeProof parses the host API's merkle-proof wire format: a 4-byte
// big-endian leaf position, a 4-byte big-endian sibling count, then that
// many 32-byte sibling hashes root-ward from the leaf.
func decodeProof(raw []byte) (deposit.Proof, error) {
	const op = "engine.decodeProof"
	if len(raw) < 8 {
		return deposit.Proof{}, bridgeerr.Validationf(op, "proof too short")
	}
	position := binary.BigEndian.Uint32(raw[:4])
	count := binary.BigEndian.Uint32(raw[4:8])
	want := 8 + int(count)*chainhash.HashSize
	if len(raw) != want {
		return deposit.Proof{}, bridgeerr.Validationf(op, "proof length %d does not match sibling count %d", len(raw), count)
	}
	siblings := make([]chainhash.Hash, count)
	for i := 0; i < int(count); i++ {
		copy(siblings[i][:], raw[8+i*chainhash.HashSize:8+(i+1)*chainhash.HashSize])
	}
	return deposit.Proof{Siblings: siblings, Position: position}, nil
}
