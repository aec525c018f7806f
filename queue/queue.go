// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package queue implements the Checkpoint Queue (spec.md §3, §4.4): the
// ordered sequence of checkpoints, the per-block step algorithm that
// delays or promotes the tail Building checkpoint, the change-rate probe,
// take_pending draining, pruning, and the jailing hook.
package queue

import (
	"github.com/nbtc-chain/checkpoint/chaincfg"
	"github.com/nbtc-chain/checkpoint/checkpoint"
	"github.com/nbtc-chain/checkpoint/feerate"
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/internal/log"
	"github.com/nbtc-chain/checkpoint/jail"
	"github.com/nbtc-chain/checkpoint/sigset"
)

var queueLog = log.NewSubsystem("QUEU")

// Queue is the ordered sequence of checkpoints plus the cursors and
// control state spec.md §3 names for CheckpointQueue. It is not safe for
// concurrent use, matching the engine's single-threaded execution model
// (spec.md §5); every method here is one complete message-dispatch step.
type Queue struct {
	Checkpoints []*checkpoint.Checkpoint

	// ConfirmedIndex is nil until the first checkpoint is externally
	// attested as Confirmed (spec.md §3: "confirmed-index (Option<u32>)").
	ConfirmedIndex *uint32

	FirstUnhandledConfirmedIndex uint32

	Fees   *feerate.Controller
	Jail   *jail.Tracker
	Config chaincfg.CheckpointConfig

	nextSigsetIndex uint32
	reserveTotal    int64
}

// New returns an empty Queue ready for its first Step call.
func New(cfg chaincfg.CheckpointConfig) *Queue {
	return &Queue{
		Fees:   feerate.New(cfg.MinFeeRate, cfg.MinFeeRate, cfg.MaxFeeRate),
		Jail:   jail.New(cfg.MaxOfflineCheckpoints),
		Config: cfg,
	}
}

// HeadIndex returns the index of the tail checkpoint, matching spec.md
// §3's "head-index (u32)".
func (q *Queue) HeadIndex() uint32 {
	if len(q.Checkpoints) == 0 {
		return 0
	}
	return uint32(len(q.Checkpoints) - 1)
}

// Len returns the number of checkpoints currently retained.
func (q *Queue) Len() int { return len(q.Checkpoints) }

// At returns the checkpoint at index, or nil if out of range.
func (q *Queue) At(index uint32) *checkpoint.Checkpoint {
	if int(index) >= len(q.Checkpoints) {
		return nil
	}
	return q.Checkpoints[index]
}

// Building returns the tail checkpoint if it is in the Building state.
func (q *Queue) Building() *checkpoint.Checkpoint {
	if len(q.Checkpoints) == 0 {
		return nil
	}
	tail := q.Checkpoints[len(q.Checkpoints)-1]
	if tail.Status != checkpoint.StatusBuilding {
		return nil
	}
	return tail
}

// Signing returns the most recent checkpoint in the Signing state, if any.
func (q *Queue) Signing() *checkpoint.Checkpoint {
	for i := len(q.Checkpoints) - 1; i >= 0; i-- {
		if q.Checkpoints[i].Status == checkpoint.StatusSigning {
			return q.Checkpoints[i]
		}
	}
	return nil
}

// Completed returns the most recent Complete-but-not-yet-Confirmed
// checkpoint, if any (SPEC_FULL.md §D: supplemented read accessor
// distinct from the last-confirmed query).
func (q *Queue) Completed() *checkpoint.Checkpoint {
	for i := len(q.Checkpoints) - 1; i >= 0; i-- {
		c := q.Checkpoints[i]
		if c.Status != checkpoint.StatusComplete {
			continue
		}
		if q.ConfirmedIndex != nil && uint32(i) <= *q.ConfirmedIndex {
			return nil
		}
		return c
	}
	return nil
}

// LastConfirmed returns the highest-index Confirmed checkpoint, if any.
func (q *Queue) LastConfirmed() *checkpoint.Checkpoint {
	if q.ConfirmedIndex == nil {
		return nil
	}
	return q.At(*q.ConfirmedIndex)
}

// unconfirmedCount returns U from spec.md §4.4: the count of checkpoints
// that are Signing, or Complete but not yet Confirmed.
func (q *Queue) unconfirmedCount() int {
	var u int
	for i, c := range q.Checkpoints {
		if c.Status == checkpoint.StatusSigning {
			u++
			continue
		}
		if c.Status == checkpoint.StatusComplete {
			if q.ConfirmedIndex == nil || uint32(i) > *q.ConfirmedIndex {
				u++
			}
		}
	}
	return u
}

// SigsetCandidatesFn resolves the pool of (xpub, power) candidates a fresh
// SignatorySet snapshot should be built from; the caller (cmd/checkpointd)
// implements it against the ValidatorSet collaborator, filtering by
// q.Jail.IsJailed itself or leaving that to Step (Step applies the filter
// regardless, so either is safe).
type SigsetCandidatesFn func() []sigset.Signatory

// Step runs spec.md §4.4's per-host-block algorithm. now is the injected
// environment clock (spec.md §5: "time is injected via the environment
// passed to step"); candidates supplies the validator-power pool for a
// fresh sigset if this step promotes.
func (q *Queue) Step(now int64, candidates SigsetCandidatesFn) error {
	const op = "Queue.Step"

	// Step 1: bootstrap.
	if len(q.Checkpoints) == 0 {
		set := q.nextSigset(now, candidates)
		bc := checkpoint.NewBuilding(set, now, q.Fees.Rate())
		q.Checkpoints = append(q.Checkpoints, bc)
		queueLog.Infof("genesis building checkpoint opened, sigset %d", set.Index)
		return nil
	}

	// Step 2: stall while saturated.
	if q.unconfirmedCount() >= q.Config.MaxUnconfirmedCheckpoints {
		queueLog.Debugf("queue saturated at %d unconfirmed checkpoints, stalling", q.unconfirmedCount())
		return nil
	}

	building := q.Building()
	if building == nil {
		return bridgeerr.Invariantf(op, "queue has no tail Building checkpoint outside of a force-promoted state")
	}

	age := now - building.CreateTime
	force := age >= int64(q.Config.MaxCheckpointInterval.Seconds())
	if !force {
		if age < int64(q.Config.MinCheckpointInterval.Seconds()) {
			return nil
		}
		var pool []sigset.Signatory
		if candidates != nil {
			for _, c := range candidates() {
				if !q.Jail.IsJailed(c.XPub) {
					pool = append(pool, c)
				}
			}
		}
		materialDrift := sigsetChangeBp(building.Sigset, pool) > 0
		hasQueuedWork := len(building.Inputs) > 0 || len(building.Outputs) > 0
		if !materialDrift && !hasQueuedWork {
			return nil
		}
	}

	q.promote(now, candidates)
	q.prune(now)
	return nil
}

// promote advances the tail Building checkpoint to Signing and opens a
// fresh Building bound to a newly derived SignatorySet, per spec.md §4.3's
// "On transition" list and §4.4 step 4.
func (q *Queue) promote(now int64, candidates SigsetCandidatesFn) {
	tail := q.Checkpoints[len(q.Checkpoints)-1]

	overflowIn, overflowOut := tail.SplitOverflow(q.Config.MaxInputs, q.Config.MaxOutputs)

	if lc := q.LastConfirmed(); lc != nil && lc.SignedAtBtcHeight != nil {
		// The queue records no confirmation height, so SignedAtBtcHeight is
		// passed for both heights and Adjust always takes the on-time branch.
		confirmedHeight := *lc.SignedAtBtcHeight
		q.Fees.Adjust(*lc.SignedAtBtcHeight, confirmedHeight, q.Config.TargetCheckpointInclusion,
			q.unconfirmedCount() >= q.Config.MaxUnconfirmedCheckpoints)
	}

	tail.Status = checkpoint.StatusSigning
	tail.Batches[checkpoint.BatchCheckpoint] = &checkpoint.Batch{
		Type: checkpoint.BatchCheckpoint,
		Txs:  []*checkpoint.BatchTx{{Inputs: tail.Inputs}},
	}

	set := q.nextSigset(now, candidates)
	bc := checkpoint.NewBuilding(set, now, q.Fees.Rate())
	bc.Inputs = overflowIn
	bc.Outputs = overflowOut
	bc.ReserveAtCreation = q.reserveTotal
	q.Checkpoints = append(q.Checkpoints, bc)

	queueLog.Infof("checkpoint %d promoted to signing (sigset %d); new building checkpoint opened with sigset %d",
		len(q.Checkpoints)-2, tail.Sigset.Index, set.Index)
}

// nextSigset builds and snapshots the next SignatorySet, excluding any
// currently jailed signatory (spec.md §4.11: "Jailed signatories are
// removed from the next SignatorySet snapshot").
func (q *Queue) nextSigset(now int64, candidates SigsetCandidatesFn) *sigset.SignatorySet {
	var pool []sigset.Signatory
	if candidates != nil {
		for _, c := range candidates() {
			if !q.Jail.IsJailed(c.XPub) {
				pool = append(pool, c)
			}
		}
	}
	set := sigset.New(q.nextSigsetIndex, now, pool, q.Config.Bitcoin.MaxSignatories)
	q.nextSigsetIndex++
	return set
}

// prune implements spec.md §4.4 step 5: while queue length exceeds the
// configured floor and the head's age exceeds max_age, drop the head, but
// only if it is Confirmed.
func (q *Queue) prune(now int64) {
	floor := q.Config.QueueFloor()
	for len(q.Checkpoints) > floor {
		head := q.Checkpoints[0]
		if head.Status != checkpoint.StatusComplete {
			break
		}
		if q.ConfirmedIndex == nil || *q.ConfirmedIndex < 1 {
			break
		}
		age := now - head.CreateTime
		if age <= int64(q.Config.MaxAge.Seconds()) {
			break
		}
		q.Checkpoints = q.Checkpoints[1:]
		*q.ConfirmedIndex--
		if q.FirstUnhandledConfirmedIndex > 0 {
			q.FirstUnhandledConfirmedIndex--
		}
		queueLog.Infof("pruned head checkpoint, age %ds exceeded max_age", age)
	}
}

// SetConfirmedIndex implements the Complete -> Confirmed external
// attestation (spec.md §4.3, §7): illegal to move backward, illegal to
// move past head-1.
func (q *Queue) SetConfirmedIndex(index uint32) error {
	const op = "Queue.SetConfirmedIndex"
	if q.ConfirmedIndex != nil && index < *q.ConfirmedIndex {
		return bridgeerr.Statef(op, "confirmed_index must not decrease (current %d, requested %d)", *q.ConfirmedIndex, index)
	}
	if len(q.Checkpoints) == 0 || int(index) > len(q.Checkpoints)-2 {
		return bridgeerr.Statef(op, "confirmed_index %d must not pass head-1 (head is %d)", index, q.HeadIndex())
	}
	if q.Checkpoints[index].Status != checkpoint.StatusComplete {
		return bridgeerr.Statef(op, "checkpoint %d is not Complete, cannot confirm it", index)
	}

	i := index
	q.ConfirmedIndex = &i
	return nil
}
