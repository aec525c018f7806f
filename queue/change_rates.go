// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package queue

import (
	"github.com/nbtc-chain/checkpoint/sigset"
)

// ChangeRates implements spec.md §4.5's change_rates(from_ts, to_ts,
// min_checkpoint_index): two basis-point ratios over the interval.
//
//   - withdrawal: total withdrawn value queued by checkpoints in the
//     window, over the reserve total at the window's start.
//   - sigset_change: symmetric-difference of signatory powers between the
//     sigset at the window's start and the latest (tail) sigset, divided
//     by possible_vp_total at window start.
//
// "Window start" is the latest checkpoint with index >= minCpIndex whose
// CreateTime is <= fromTS; if none exists (the window starts before any
// eligible checkpoint), the earliest checkpoint with index >= minCpIndex
// is used instead.
func (q *Queue) ChangeRates(fromTS, toTS int64, minCpIndex uint32) (withdrawalBp, sigsetChangeBp int64) {
	var windowStart *int
	for i := range q.Checkpoints {
		if uint32(i) < minCpIndex {
			continue
		}
		if windowStart == nil {
			j := i
			windowStart = &j
		}
		if q.Checkpoints[i].CreateTime <= fromTS {
			j := i
			windowStart = &j
		}
	}
	if windowStart == nil {
		return 0, 0
	}
	startCkpt := q.Checkpoints[*windowStart]

	var withdrawn int64
	for i := *windowStart; i < len(q.Checkpoints); i++ {
		c := q.Checkpoints[i]
		if uint32(i) < minCpIndex {
			continue
		}
		if c.CreateTime <= fromTS || c.CreateTime > toTS {
			continue
		}
		for _, out := range c.Outputs {
			withdrawn += out.Value
		}
	}
	if startCkpt.ReserveAtCreation > 0 {
		withdrawalBp = withdrawn * 10_000 / startCkpt.ReserveAtCreation
	}

	tail := q.Checkpoints[len(q.Checkpoints)-1]
	sigsetChangeBp = sigsetChangeBpBetween(startCkpt.Sigset, tail.Sigset)

	return withdrawalBp, sigsetChangeBp
}

// sigsetChangeBp returns the symmetric-difference-of-powers ratio between
// base and a candidate pool not yet snapshotted into a SignatorySet,
// used by Step, once min_checkpoint_interval has passed, to promote on any
// non-zero sigset drift (spec.md §4.4 step 3a).
func sigsetChangeBp(base *sigset.SignatorySet, candidates []sigset.Signatory) int64 {
	powers := make(map[string]uint64, len(candidates))
	for _, c := range candidates {
		powers[c.XPub] = c.VotingPower
	}
	return symmetricDiffBp(base, powers)
}

// sigsetChangeBpBetween is ChangeRates' sigset_change ratio between two
// already-snapshotted sigsets.
func sigsetChangeBpBetween(base, latest *sigset.SignatorySet) int64 {
	powers := make(map[string]uint64, latest.Len())
	for _, s := range latest.Signatories {
		powers[s.XPub] = s.VotingPower
	}
	return symmetricDiffBp(base, powers)
}

// symmetricDiffBp sums |base[xpub] - other[xpub]| over the union of xpubs
// present in either side, as basis points of base.PossibleVPTotal.
func symmetricDiffBp(base *sigset.SignatorySet, other map[string]uint64) int64 {
	diff := int64(0)
	seen := make(map[string]struct{}, base.Len())
	for _, s := range base.Signatories {
		seen[s.XPub] = struct{}{}
		diff += absInt64(int64(s.VotingPower) - int64(other[s.XPub]))
	}
	for xpub, power := range other {
		if _, ok := seen[xpub]; ok {
			continue
		}
		diff += int64(power)
	}
	if base.PossibleVPTotal == 0 {
		return 0
	}
	return diff * 10_000 / int64(base.PossibleVPTotal)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
