// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package queue

import "github.com/nbtc-chain/checkpoint/checkpoint"

// TakePending implements spec.md §4.10: drains pending from every
// Confirmed checkpoint in index range
// [first_unhandled_confirmed_cp_index, confirmed_index], clears each
// pending list, advances first_unhandled_confirmed_cp_index to
// confirmed_index + 1, and returns one slice of credits per checkpoint,
// preserving insertion order. Idempotent: a second call back-to-back
// returns no slices, since the cursor has already advanced past
// everything drained.
func (q *Queue) TakePending() [][]checkpoint.PendingCredit {
	if q.ConfirmedIndex == nil || q.FirstUnhandledConfirmedIndex > *q.ConfirmedIndex {
		return nil
	}

	var drained [][]checkpoint.PendingCredit
	for i := q.FirstUnhandledConfirmedIndex; i <= *q.ConfirmedIndex; i++ {
		c := q.At(i)
		if c == nil {
			break
		}
		credits := make([]checkpoint.PendingCredit, len(c.Pending))
		copy(credits, c.Pending)
		drained = append(drained, credits)
		c.Pending = nil
	}

	q.FirstUnhandledConfirmedIndex = *q.ConfirmedIndex + 1
	return drained
}
