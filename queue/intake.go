// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package queue

import (
	"time"

	"github.com/nbtc-chain/checkpoint/deposit"
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/sigset"
	"github.com/nbtc-chain/checkpoint/store"
	"github.com/nbtc-chain/checkpoint/withdrawal"
)

// RelayDeposit dispatches a relay_deposit call (spec.md §6, §4.7) against
// the tail Building checkpoint, crediting reserveTotal on success so the
// next promoted checkpoint's ReserveAtCreation reflects it.
func (q *Queue) RelayDeposit(headers store.HeaderStore, now time.Time, reserveScript []byte, req deposit.Request) (*deposit.Result, error) {
	const op = "Queue.RelayDeposit"

	building := q.Building()
	if building == nil {
		return nil, bridgeerr.Statef(op, "no building checkpoint to credit")
	}

	threshold := sigset.Threshold{Num: q.Config.Bitcoin.SigsetThreshold.Num, Den: q.Config.Bitcoin.SigsetThreshold.Den}
	result, err := deposit.Relay(headers, now, building.Sigset, threshold, reserveScript, q.Config.Bitcoin, req)
	if err != nil {
		return nil, err
	}
	if err := building.AddDeposit(result.Input); err != nil {
		return nil, err
	}
	building.Pending = append(building.Pending, result.Pending)
	q.reserveTotal += req.OutputValue

	return result, nil
}

// AddWithdrawal dispatches an add_withdrawal call (spec.md §6, §4.8)
// against the tail Building checkpoint, debiting reserveTotal by the
// withdrawn amount (the fee itself stays in the reserve until paid out on
// broadcast, so only the principal is debited here).
func (q *Queue) AddWithdrawal(req withdrawal.Request) (int64, error) {
	const op = "Queue.AddWithdrawal"

	building := q.Building()
	if building == nil {
		return 0, bridgeerr.Statef(op, "no building checkpoint to queue a withdrawal onto")
	}

	fee, err := withdrawal.Add(building, q.Len(), q.Config.Bitcoin, q.Fees, req)
	if err != nil {
		return 0, err
	}
	building.FeesCollected += fee
	q.reserveTotal -= req.Amount

	return fee, nil
}
