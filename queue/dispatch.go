// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package queue

import (
	"github.com/nbtc-chain/checkpoint/checkpoint"
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/rpctypes"
	"github.com/nbtc-chain/checkpoint/script"
)

// BeginBlockStep implements spec.md §6's begin_block_step(env,
// offline_signals, validator_updates): applies any out-of-band offline
// signals directly to the jail tracker, then runs Step. validator_updates
// is not consumed here -- the host applies it to its own ValidatorSet
// collaborator before calling this, so it is already reflected in the
// candidates this Step call resolves.
func (q *Queue) BeginBlockStep(blockTime int64, offlineSignals []string, candidates SigsetCandidatesFn) error {
	for _, xpub := range offlineSignals {
		q.Jail.Jail(xpub)
	}
	return q.Step(blockTime, candidates)
}

// SubmitSignatures implements spec.md §6's submit_signatures(xpub, sigs,
// sigset_index, btc_height): routes each target's signature to its
// checkpoint/batch/tx/input, derives xpub's public key once, and -- per
// the "a non-verifying signature does not prevent others in the same call
// from being processed" rule -- keeps going past a per-target failure
// rather than aborting the whole submission. It returns one error per
// target, nil where that target's signature was accepted.
//
// When a target's signature completes its checkpoint's Checkpoint batch,
// the jail tracker records that checkpoint's Signing->Complete transition
// (spec.md §4.11).
func (q *Queue) SubmitSignatures(xpub string, targets []rpctypes.SignatureTarget, sigsetIndex, btcHeight uint32) []error {
	errs := make([]error, len(targets))

	pubKey, err := script.PubKeyFromXPub(xpub)
	if err != nil {
		for i := range errs {
			errs[i] = err
		}
		return errs
	}

	for i, target := range targets {
		cp := q.At(target.CheckpointIndex)
		if cp == nil {
			errs[i] = bridgeerr.Validationf("Queue.SubmitSignatures", "no checkpoint at index %d", target.CheckpointIndex)
			continue
		}
		signatoryIndex := cp.Sigset.IndexOf(xpub)
		if signatoryIndex < 0 {
			errs[i] = bridgeerr.Validationf("Queue.SubmitSignatures", "xpub is not a signatory of checkpoint %d's sigset", target.CheckpointIndex)
			continue
		}

		wasSigning := cp.Status == checkpoint.StatusSigning
		err := cp.SubmitSignature(checkpoint.BatchType(target.BatchType), target.TxIndex, target.InputIndex,
			sigsetIndex, signatoryIndex, target.Sig, pubKey, btcHeight)
		errs[i] = err

		if err == nil && wasSigning && cp.Status == checkpoint.StatusComplete {
			q.recordSigningOutcome(cp)
		}
	}

	return errs
}

// recordSigningOutcome feeds a just-completed checkpoint's final signer
// set to the jail tracker (spec.md §4.11).
func (q *Queue) recordSigningOutcome(cp *checkpoint.Checkpoint) {
	all := make([]string, cp.Sigset.Len())
	for i, s := range cp.Sigset.Signatories {
		all[i] = s.XPub
	}

	present := make(map[string]struct{})
	batch := cp.Batches[checkpoint.BatchCheckpoint]
	if batch != nil {
		for _, tx := range batch.Txs {
			for _, in := range tx.Inputs {
				for idx := range in.Signatures {
					if idx >= 0 && idx < len(all) {
						present[all[idx]] = struct{}{}
					}
				}
			}
		}
	}
	presentXPubs := make([]string, 0, len(present))
	for xpub := range present {
		presentXPubs = append(presentXPubs, xpub)
	}

	q.Jail.RecordCheckpoint(all, presentXPubs)
}

// DerivePubKey implements the "derive-pubkey-at-sigset" read query spec.md
// §6 lists alongside the other accessors: the public key xpub signs with
// within the sigset bound to the checkpoint at index.
func (q *Queue) DerivePubKey(checkpointIndex uint32, xpub string) ([]byte, error) {
	const op = "Queue.DerivePubKey"
	cp := q.At(checkpointIndex)
	if cp == nil {
		return nil, bridgeerr.Validationf(op, "no checkpoint at index %d", checkpointIndex)
	}
	if cp.Sigset.IndexOf(xpub) < 0 {
		return nil, bridgeerr.Validationf(op, "xpub is not a signatory of checkpoint %d's sigset", checkpointIndex)
	}
	pubKey, err := script.PubKeyFromXPub(xpub)
	if err != nil {
		return nil, err
	}
	return pubKey.SerializeCompressed(), nil
}
