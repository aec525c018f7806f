// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package jail implements offline-signer jailing (spec.md §4.11): after
// each Signing -> Complete transition, a signatory absent from the last
// max_offline_checkpoints consecutive checkpoints is marked offline, a
// slashing signal naming it is emitted exactly once, and it is excluded
// from the next SignatorySet snapshot.
package jail

import (
	"sort"

	"github.com/nbtc-chain/checkpoint/internal/log"
)

var jailLog = log.NewSubsystem("JAIL")

// Tracker accumulates consecutive-absence streaks per signatory xpub
// across Signing->Complete transitions. It is not safe for concurrent use,
// matching the engine's single-threaded execution model (spec.md §5).
type Tracker struct {
	maxOffline int

	streak map[string]int
	jailed map[string]bool
}

// New returns a Tracker that jails a signatory after maxOffline
// consecutive checkpoints without its signature.
func New(maxOffline int) *Tracker {
	return &Tracker{
		maxOffline: maxOffline,
		streak:     make(map[string]int),
		jailed:     make(map[string]bool),
	}
}

// RecordCheckpoint is called once per Signing->Complete transition with
// the full candidate xpub set considered for signing and the subset that
// actually produced a signature on the Checkpoint batch. It returns the
// xpubs that newly crossed the offline threshold on this call, sorted for
// deterministic slashing-signal ordering; a signatory already jailed is
// never returned a second time, satisfying "appears in the slashing
// signal exactly once" (spec.md scenario 6).
func (t *Tracker) RecordCheckpoint(allXPubs, presentXPubs []string) []string {
	present := make(map[string]struct{}, len(presentXPubs))
	for _, xpub := range presentXPubs {
		present[xpub] = struct{}{}
	}

	var newlyJailed []string
	for _, xpub := range allXPubs {
		if _, ok := present[xpub]; ok {
			t.streak[xpub] = 0
			continue
		}
		t.streak[xpub]++
		if t.streak[xpub] >= t.maxOffline && !t.jailed[xpub] {
			t.jailed[xpub] = true
			newlyJailed = append(newlyJailed, xpub)
		}
	}
	sort.Strings(newlyJailed)
	if len(newlyJailed) > 0 {
		jailLog.Infof("jailing %d signatories for %d consecutive missed checkpoints: %v",
			len(newlyJailed), t.maxOffline, newlyJailed)
	}
	return newlyJailed
}

// IsJailed reports whether xpub is currently excluded from sigset
// snapshots. Called by the queue when assembling the candidate pool for a
// new SignatorySet (spec.md §4.1/§4.11).
func (t *Tracker) IsJailed(xpub string) bool {
	return t.jailed[xpub]
}

// Unjail clears xpub's jailed status and absence streak, used when a
// validator re-registers a working signatory key.
func (t *Tracker) Unjail(xpub string) {
	delete(t.jailed, xpub)
	delete(t.streak, xpub)
}

// Jail immediately jails xpub, bypassing the consecutive-absence streak.
// Used for external offline signals passed into begin_block_step (spec.md
// §6), as opposed to the streak this package infers on its own from
// Signing->Complete transitions.
func (t *Tracker) Jail(xpub string) {
	t.jailed[xpub] = true
}
