// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/nbtc-chain/checkpoint/checkpoint"
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/internal/log"
	"github.com/nbtc-chain/checkpoint/queue"
	"github.com/nbtc-chain/checkpoint/script"
	"github.com/nbtc-chain/checkpoint/sigset"
	"github.com/nbtc-chain/checkpoint/store"
)

var engineLog = log.NewSubsystem("ENGN")

// engine wraps every collaborator plus the Queue into the one struct the
// daemon's dispatch loop and host API act on, the way the teacher's
// kaspad struct wraps its node's services (kaspad.go: "kaspad is a
// wrapper for all the kaspad services").
type engine struct {
	db        *store.DB
	headers   *headerStore
	validators *validatorSet
	ledger    *ledger
	registry  *store.Registry
	queue     *queue.Queue

	started int32
}

func newEngine(db *store.DB, cfg *config) *engine {
	reg := store.NewRegistry(db)
	return &engine{
		db:         db,
		headers:    newHeaderStore(db, 0),
		validators: newValidatorSet(db, reg),
		ledger:     newLedger(db),
		registry:   reg,
		queue:      queue.New(chaincfgFromConfig(cfg)),
	}
}

// candidates resolves the current validator-power pool into the
// queue.SigsetCandidatesFn the Queue needs to assemble a fresh
// SignatorySet (spec.md §4.1).
func (e *engine) candidates() []sigset.Signatory {
	out := make([]sigset.Signatory, 0)
	for _, c := range e.validators.Candidates() {
		out = append(out, sigset.Signatory{XPub: c.XPub, VotingPower: c.Power})
	}
	return out
}

// applyInvariantBoundary recovers a panic carrying a *bridgeerr.BridgeError
// of KindInvariant -- the only kind this engine's operations ever panic
// with -- and reports it back as a fatal log line, per spec.md §7's "host
// aborts and rolls back" rule (SPEC_FULL.md §A.2). Any other panic value
// propagates unchanged: it is a genuine programming error, not a modeled
// InvariantViolation.
func (e *engine) applyInvariantBoundary(op string, fn func() error) (err error) {
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
	return bridgeerr.PanicIfInvariant(fn())
}

// reserveScriptFor returns the Bitcoin output script deposits into set
// must pay. The script is rebuilt on every call; nothing is cached.
func (e *engine) reserveScriptFor(set *sigset.SignatorySet, threshold sigset.Threshold) ([]byte, error) {
	return script.BuildReserveScript(set, threshold)
}

// runBeginBlockStep runs one begin_block_step tick (spec.md §6), recovering
// any InvariantViolation at this dispatch boundary.
func (e *engine) runBeginBlockStep(now time.Time, offlineSignals []string) error {
	return e.applyInvariantBoundary("begin_block_step", func() error {
		return e.queue.BeginBlockStep(now.Unix(), offlineSignals, e.candidates)
	})
}

// buildingReserveScript returns the reserve script a deposit must pay to
// credit the current Building checkpoint, or an error if there is none.
func (e *engine) buildingReserveScript() ([]byte, *checkpoint.Checkpoint, error) {
	building := e.queue.Building()
	if building == nil {
		return nil, nil, bridgeerr.Statef("engine.buildingReserveScript", "no building checkpoint")
	}
	threshold := sigset.Threshold{
		Num: e.queue.Config.Bitcoin.SigsetThreshold.Num,
		Den: e.queue.Config.Bitcoin.SigsetThreshold.Den,
	}
	script, err := e.reserveScriptFor(building.Sigset, threshold)
	if err != nil {
		return nil, nil, err
	}
	return script, building, nil
}
