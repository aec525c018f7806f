// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package jail

import "testing"

// TestJailingAfterConsecutiveAbsences matches spec.md scenario 6:
// max_offline_checkpoints=3, a signatory missing from 3 consecutive
// Signing transitions is excluded from the 4th sigset snapshot and
// appears in the emitted slashing signal exactly once.
func TestJailingAfterConsecutiveAbsences(t *testing.T) {
	tr := New(3)
	all := []string{"A", "B", "C"}

	// Checkpoints 1-2: C absent, A and B present.
	for i := 0; i < 2; i++ {
		newly := tr.RecordCheckpoint(all, []string{"A", "B"})
		if len(newly) != 0 {
			t.Fatalf("checkpoint %d: unexpected early jailing %v", i+1, newly)
		}
		if tr.IsJailed("C") {
			t.Fatalf("checkpoint %d: C jailed too early", i+1)
		}
	}

	newly := tr.RecordCheckpoint(all, []string{"A", "B"})
	if len(newly) != 1 || newly[0] != "C" {
		t.Fatalf("3rd consecutive absence: newly jailed = %v, want [C]", newly)
	}
	if !tr.IsJailed("C") {
		t.Fatal("C must be jailed after 3 consecutive absences")
	}

	// 4th checkpoint: C remains absent but must not be reported again.
	newly = tr.RecordCheckpoint(all, []string{"A", "B"})
	if len(newly) != 0 {
		t.Fatalf("4th checkpoint: C re-jailed, newly = %v, want none", newly)
	}
}

func TestPresenceResetsStreak(t *testing.T) {
	tr := New(3)
	all := []string{"A"}
	tr.RecordCheckpoint(all, nil)
	tr.RecordCheckpoint(all, nil)
	tr.RecordCheckpoint(all, []string{"A"}) // resets streak before reaching 3
	newly := tr.RecordCheckpoint(all, nil)
	if len(newly) != 0 {
		t.Fatalf("streak should have reset, got newly jailed = %v", newly)
	}
}

func TestUnjailClearsStatus(t *testing.T) {
	tr := New(1)
	tr.RecordCheckpoint([]string{"A"}, nil)
	if !tr.IsJailed("A") {
		t.Fatal("A should be jailed")
	}
	tr.Unjail("A")
	if tr.IsJailed("A") {
		t.Fatal("A should no longer be jailed after Unjail")
	}
}
