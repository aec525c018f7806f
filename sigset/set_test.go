// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sigset

import "testing"

func TestNewOrdersByPowerThenXPub(t *testing.T) {
	candidates := []Signatory{
		{XPub: "xpubB", VotingPower: 10},
		{XPub: "xpubA", VotingPower: 10},
		{XPub: "xpubC", VotingPower: 100},
	}
	set := New(1, 1000, candidates, 0)

	want := []string{"xpubC", "xpubA", "xpubB"}
	for i, xpub := range want {
		if set.Signatories[i].XPub != xpub {
			t.Fatalf("signatory %d = %s, want %s", i, set.Signatories[i].XPub, xpub)
		}
	}
	if set.PossibleVPTotal != 120 {
		t.Fatalf("possible_vp_total = %d, want 120", set.PossibleVPTotal)
	}
}

func TestNewCapsAtMaxSignatories(t *testing.T) {
	candidates := []Signatory{
		{XPub: "a", VotingPower: 30},
		{XPub: "b", VotingPower: 20},
		{XPub: "c", VotingPower: 10},
	}
	set := New(1, 1000, candidates, 2)
	if len(set.Signatories) != 2 {
		t.Fatalf("len = %d, want 2", len(set.Signatories))
	}
	if set.PossibleVPTotal != 50 {
		t.Fatalf("possible_vp_total = %d, want 50 (excludes capped candidate)", set.PossibleVPTotal)
	}
}

func TestThresholdPowerCeilDivision(t *testing.T) {
	set := New(1, 1000, []Signatory{{XPub: "a", VotingPower: 100}, {XPub: "b", VotingPower: 10}}, 0)
	// possible = 110; threshold 9/10 => ceil(990/10) = 99.
	th := Threshold{Num: 9, Den: 10}
	if got := set.ThresholdPower(th); got != 99 {
		t.Fatalf("threshold power = %d, want 99", got)
	}
	if set.Sufficient(98, th) {
		t.Fatal("98 power should be insufficient against threshold 99")
	}
	if !set.Sufficient(99, th) {
		t.Fatal("99 power should be sufficient against threshold 99")
	}
}

func TestIndexOf(t *testing.T) {
	set := New(1, 1000, []Signatory{{XPub: "a", VotingPower: 5}, {XPub: "b", VotingPower: 1}}, 0)
	if set.IndexOf("a") != 0 {
		t.Fatalf("IndexOf(a) = %d, want 0", set.IndexOf("a"))
	}
	if set.IndexOf("z") != -1 {
		t.Fatalf("IndexOf(z) = %d, want -1", set.IndexOf("z"))
	}
}

func TestValidateRejectsDuplicateXPub(t *testing.T) {
	set := &SignatorySet{
		PossibleVPTotal: 10,
		Signatories: []Signatory{
			{XPub: "a", VotingPower: 5},
			{XPub: "a", VotingPower: 5},
		},
	}
	if err := set.Validate(); err == nil {
		t.Fatal("expected error for duplicate xpub")
	}
}

func TestValidateRejectsUnsortedSet(t *testing.T) {
	set := &SignatorySet{
		PossibleVPTotal: 10,
		Signatories: []Signatory{
			{XPub: "a", VotingPower: 1},
			{XPub: "b", VotingPower: 9},
		},
	}
	if err := set.Validate(); err == nil {
		t.Fatal("expected error for unsorted set")
	}
}
