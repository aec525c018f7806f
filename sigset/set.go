// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sigset

import (
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/internal/log"
)

var sigsetLog = log.NewSubsystem("SSET")

// SignatorySet is an immutable, indexed snapshot of signatories with their
// voting powers (spec.md §3). Its index is monotonic across snapshots
// created by the same queue; it uniquely determines the reserve script
// produced by package script.
type SignatorySet struct {
	// Index is monotonically increasing across snapshots.
	Index uint32

	// CreateTime is the unix-seconds timestamp this set was snapshotted
	// at, taken from the environment passed to the triggering step.
	CreateTime int64

	// PossibleVPTotal is the sum of selected signatories' power, before
	// any liveness filtering -- the denominator for threshold math.
	PossibleVPTotal uint64

	// PresentVPTotal holds whatever SetPresentVP recorded, zero otherwise.
	// It is never used for threshold math, and package jail does not read
	// it either: jail tracks presence per signatory xpub itself.
	PresentVPTotal uint64

	// Signatories is ordered (power desc, xpub asc) per SortSignatories.
	Signatories []Signatory
}

// Threshold is the rational fraction of PossibleVPTotal a signing power
// sum must reach for an Input or the set itself to be considered
// sufficient (spec.md §3, §4.2).
type Threshold struct {
	Num uint64
	Den uint64
}

// New builds a SignatorySet from a candidate pool of (xpub, power) pairs
// whose xpubs have already been registered by their validator (spec.md
// §4.1: "Select signatories whose xpubs have been registered"). Candidates
// are sorted by (power desc, xpub asc) and capped at maxSignatories before
// PossibleVPTotal is summed, so an oversupply of low-power candidates
// cannot inflate the denominator past the configured cap.
func New(index uint32, createTime int64, candidates []Signatory, maxSignatories int) *SignatorySet {
	sigs := make([]Signatory, len(candidates))
	copy(sigs, candidates)
	SortSignatories(sigs)

	if maxSignatories > 0 && len(sigs) > maxSignatories {
		sigs = sigs[:maxSignatories]
	}

	var possible uint64
	for _, s := range sigs {
		possible += s.VotingPower
	}

	set := &SignatorySet{
		Index:           index,
		CreateTime:      createTime,
		PossibleVPTotal: possible,
		Signatories:     sigs,
	}
	sigsetLog.Infof("built signatory set %d: %d signatories, possible power %d",
		index, len(sigs), possible)
	return set
}

// SetPresentVP records presentVP as the set's PresentVPTotal. The queue
// does not call it when it snapshots a set, so sets built by package
// queue keep a PresentVPTotal of zero; nothing computes the power that
// signed the prior Signing checkpoint.
func (s *SignatorySet) SetPresentVP(presentVP uint64) {
	s.PresentVPTotal = presentVP
}

// ThresholdPower returns ⌈threshold.Num × PossibleVPTotal / threshold.Den⌉,
// the power an Input (or the set as a whole) must accumulate to be
// sufficient, per spec.md §4.2.
func (s *SignatorySet) ThresholdPower(t Threshold) uint64 {
	if t.Den == 0 {
		return s.PossibleVPTotal
	}
	num := t.Num * s.PossibleVPTotal
	return (num + t.Den - 1) / t.Den
}

// Sufficient reports whether presentPower clears ThresholdPower(t).
func (s *SignatorySet) Sufficient(presentPower uint64, t Threshold) bool {
	return presentPower >= s.ThresholdPower(t)
}

// IndexOf returns the position of the signatory with the given xpub within
// Signatories, or -1 if absent. Signature submissions are keyed by this
// index to align with the Input.Signatures slice (spec.md §3).
func (s *SignatorySet) IndexOf(xpub string) int {
	for i, sig := range s.Signatories {
		if sig.XPub == xpub {
			return i
		}
	}
	return -1
}

// Len returns the number of signatories in the set.
func (s *SignatorySet) Len() int { return len(s.Signatories) }

// Validate reports a ValidationError if the set violates any of the
// invariants tested in spec.md §8: powers sum to at most PossibleVPTotal,
// the list is sorted (power desc, xpub asc), and no xpub repeats.
func (s *SignatorySet) Validate() error {
	const op = "SignatorySet.Validate"
	var sum uint64
	seen := make(map[string]struct{}, len(s.Signatories))
	for i, sig := range s.Signatories {
		if _, dup := seen[sig.XPub]; dup {
			return bridgeerr.Validationf(op, "duplicate xpub at index %d", i)
		}
		seen[sig.XPub] = struct{}{}
		sum += sig.VotingPower

		if i > 0 {
			prev := s.Signatories[i-1]
			if prev.VotingPower < sig.VotingPower {
				return bridgeerr.Validationf(op, "signatories not sorted by power desc at index %d", i)
			}
			if prev.VotingPower == sig.VotingPower && prev.XPub > sig.XPub {
				return bridgeerr.Validationf(op, "equal-power signatories not sorted by xpub asc at index %d", i)
			}
		}
	}
	if sum > s.PossibleVPTotal {
		return bridgeerr.Validationf(op, "sum of powers %d exceeds possible_vp_total %d", sum, s.PossibleVPTotal)
	}
	return nil
}
