// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package feerate implements the Fee-Rate Controller (spec.md §4.6): a
// single sat/vbyte control variable adjusted on every checkpoint promotion
// by observed Bitcoin-inclusion latency, plus the per-user fee deduction
// formula charged against deposits and withdrawals.
package feerate

import (
	"github.com/nbtc-chain/checkpoint/internal/log"
)

var feerateLog = log.NewSubsystem("FEE ")

// Controller holds the queue's single fee_rate control variable (spec.md
// §4.6). It is not safe for concurrent use, matching the engine's
// single-threaded deterministic execution model (spec.md §5).
type Controller struct {
	rate    int64
	minRate int64
	maxRate int64
}

// New returns a Controller seeded at rate, clamped to [minRate, maxRate].
func New(rate, minRate, maxRate int64) *Controller {
	c := &Controller{minRate: minRate, maxRate: maxRate}
	c.rate = clamp(rate, minRate, maxRate)
	return c
}

// Rate returns the current fee_rate in sat/vbyte.
func (c *Controller) Rate() int64 { return c.rate }

// Adjust applies spec.md §4.6's rule on a checkpoint promotion:
//
//   - if the most recently Confirmed checkpoint's signed_at_btc_height is
//     >= targetInclusion blocks older than its confirmation height,
//     fee_rate := min(max_fee_rate, fee_rate * 5/4) (inclusion was slow,
//     pay more);
//   - otherwise fee_rate := max(min_fee_rate, fee_rate * 4/5) (inclusion
//     was on time, pay less).
//
// queueSaturated must be true whenever the queue is at
// max_unconfirmed_checkpoints; the rate is never adjusted in that state,
// to prevent a runaway feedback loop while the queue cannot drain.
func (c *Controller) Adjust(signedAtHeight, confirmedAtHeight uint32, targetInclusion int64, queueSaturated bool) {
	if queueSaturated {
		feerateLog.Debugf("fee rate unchanged at %d, queue saturated", c.rate)
		return
	}

	blocksToInclusion := int64(confirmedAtHeight) - int64(signedAtHeight)
	before := c.rate
	if blocksToInclusion >= targetInclusion {
		c.rate = clamp(c.rate*5/4, c.minRate, c.maxRate)
	} else {
		c.rate = clamp(c.rate*4/5, c.minRate, c.maxRate)
	}
	feerateLog.Infof("fee rate adjusted %d -> %d (inclusion took %d blocks, target %d)",
		before, c.rate, blocksToInclusion, targetInclusion)
}

// UserFee returns the amount, in satoshis, a single user's deposit or
// withdrawal is charged: fee_rate * vbytesShare * user_fee_factor / 10_000
// (spec.md §4.6). The surplus above the transaction's actual paid fee is
// the caller's responsibility to route into the fee pool.
func UserFee(feeRate, vbytesShare, userFeeFactorBp int64) int64 {
	return feeRate * vbytesShare * userFeeFactorBp / 10_000
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
