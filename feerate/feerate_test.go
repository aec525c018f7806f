// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package feerate

import "testing"

func TestAdjustRaisesRateWhenInclusionIsSlow(t *testing.T) {
	c := New(100, 1, 200)
	c.Adjust(1000, 1003, 2, false) // 3 blocks >= target 2: slow
	if c.Rate() != 125 {
		t.Fatalf("Rate() = %d, want 125", c.Rate())
	}
}

func TestAdjustLowersRateWhenInclusionIsOnTime(t *testing.T) {
	c := New(100, 1, 200)
	c.Adjust(1000, 1001, 2, false) // 1 block < target 2: on time
	if c.Rate() != 80 {
		t.Fatalf("Rate() = %d, want 80", c.Rate())
	}
}

func TestAdjustClampsToMaxFeeRate(t *testing.T) {
	c := New(190, 1, 200)
	c.Adjust(1000, 1010, 2, false)
	if c.Rate() != 200 {
		t.Fatalf("Rate() = %d, want 200 (clamped)", c.Rate())
	}
}

func TestAdjustClampsToMinFeeRate(t *testing.T) {
	c := New(1, 1, 200)
	c.Adjust(1000, 1000, 2, false)
	if c.Rate() != 1 {
		t.Fatalf("Rate() = %d, want 1 (clamped)", c.Rate())
	}
}

func TestAdjustNoopWhenQueueSaturated(t *testing.T) {
	c := New(100, 1, 200)
	c.Adjust(1000, 1010, 2, true)
	if c.Rate() != 100 {
		t.Fatalf("Rate() = %d, want unchanged 100 while queue is saturated", c.Rate())
	}
}

func TestUserFeeFormula(t *testing.T) {
	got := UserFee(10, 200, 27_000)
	want := int64(10 * 200 * 27_000 / 10_000)
	if got != want {
		t.Fatalf("UserFee() = %d, want %d", got, want)
	}
}
