// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package queue

import (
	"testing"
	"time"

	"github.com/nbtc-chain/checkpoint/chaincfg"
	"github.com/nbtc-chain/checkpoint/checkpoint"
	"github.com/nbtc-chain/checkpoint/sigset"
)

func testConfig() chaincfg.CheckpointConfig {
	cfg := chaincfg.DefaultCheckpointConfig()
	cfg.MinCheckpointInterval = 0
	cfg.MaxCheckpointInterval = 1000 * time.Second
	cfg.MaxInputs = 3
	cfg.MaxOutputs = 3
	return cfg
}

func noCandidates() []sigset.Signatory { return nil }

func TestStepBootstrapsGenesisBuilding(t *testing.T) {
	q := New(testConfig())
	if err := q.Step(1000, noCandidates); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
	if q.Building() == nil {
		t.Fatal("expected a Building checkpoint after genesis step")
	}
}

func TestStepDoesNotPromoteBeforeMinIntervalWithoutWork(t *testing.T) {
	cfg := testConfig()
	cfg.MinCheckpointInterval = 300 * time.Second
	q := New(cfg)
	q.Step(1000, noCandidates)
	q.Step(1100, noCandidates) // only 100s elapsed, no queued work
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (no promotion expected)", q.Len())
	}
}

func TestStepForcesPromotionPastMaxInterval(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCheckpointInterval = 500 * time.Second
	q := New(cfg)
	q.Step(1000, noCandidates)
	q.Step(1000+501, noCandidates)
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 after forced promotion", q.Len())
	}
	if q.Checkpoints[0].Status != checkpoint.StatusSigning {
		t.Fatal("first checkpoint must be Signing after promotion")
	}
}

// TestOverflowRollover matches spec.md scenario 5: push max_inputs+3
// deposits into Building, then step past max_checkpoint_interval; the new
// Signing holds exactly max_inputs inputs, the new Building holds 3.
func TestOverflowRollover(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCheckpointInterval = 500 * time.Second
	q := New(cfg)
	q.Step(1000, noCandidates)

	building := q.Building()
	set := building.Sigset
	for i := 0; i < cfg.MaxInputs+3; i++ {
		in := checkpoint.NewInput(checkpoint.Prevout{}, set, nil, 1000, sigset.Threshold{Num: 9, Den: 10})
		if err := building.AddDeposit(in); err != nil {
			t.Fatalf("AddDeposit: %v", err)
		}
	}

	q.Step(1000+501, noCandidates)
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
	signingBatch := q.Checkpoints[0].Batches[checkpoint.BatchCheckpoint]
	if len(signingBatch.Txs[0].Inputs) != cfg.MaxInputs {
		t.Fatalf("signing checkpoint has %d inputs, want %d", len(signingBatch.Txs[0].Inputs), cfg.MaxInputs)
	}
	if len(q.Checkpoints[1].Inputs) != 3 {
		t.Fatalf("new building checkpoint has %d inputs, want 3", len(q.Checkpoints[1].Inputs))
	}
}

// TestTakePendingDrainsAndIsIdempotent matches the shape of spec.md
// scenario 4: confirming checkpoints releases their pending credits once,
// and a repeat call returns nothing until new checkpoints confirm.
func TestTakePendingDrainsAndIsIdempotent(t *testing.T) {
	cfg := testConfig()
	q := New(cfg)
	q.Step(1000, noCandidates)
	q.Checkpoints[0].Pending = []checkpoint.PendingCredit{{Receiver: "recv", Amount: 1}, {Receiver: "recv", Amount: 1}}
	q.Checkpoints[0].Status = checkpoint.StatusComplete
	q.Checkpoints = append(q.Checkpoints, checkpoint.NewBuilding(q.Checkpoints[0].Sigset, 2000, 10))
	q.Checkpoints[1].Pending = []checkpoint.PendingCredit{{Receiver: "recv", Amount: 5}}
	q.Checkpoints[1].Status = checkpoint.StatusComplete
	q.Checkpoints = append(q.Checkpoints, checkpoint.NewBuilding(q.Checkpoints[0].Sigset, 3000, 10))

	if err := q.SetConfirmedIndex(1); err != nil {
		t.Fatalf("SetConfirmedIndex: %v", err)
	}

	drained := q.TakePending()
	if len(drained) != 2 || len(drained[0]) != 2 || len(drained[1]) != 1 {
		t.Fatalf("drained = %+v, want [[2 credits] [1 credit]]", drained)
	}
	if len(q.Checkpoints[0].Pending) != 0 || len(q.Checkpoints[1].Pending) != 0 {
		t.Fatal("pending lists must be cleared after draining")
	}

	second := q.TakePending()
	if len(second) != 0 {
		t.Fatalf("second TakePending() = %+v, want empty", second)
	}
}

func TestSetConfirmedIndexRejectsDecrease(t *testing.T) {
	q := New(testConfig())
	q.Step(1000, noCandidates)
	q.Checkpoints = append(q.Checkpoints, checkpoint.NewBuilding(q.Checkpoints[0].Sigset, 2000, 10))
	q.Checkpoints = append(q.Checkpoints, checkpoint.NewBuilding(q.Checkpoints[0].Sigset, 3000, 10))
	q.Checkpoints[0].Status = checkpoint.StatusComplete
	q.Checkpoints[1].Status = checkpoint.StatusComplete

	if err := q.SetConfirmedIndex(0); err != nil {
		t.Fatalf("SetConfirmedIndex(0): %v", err)
	}
	if err := q.SetConfirmedIndex(0); err != nil {
		t.Fatalf("re-setting the same index must be legal: %v", err)
	}
	if err := q.SetConfirmedIndex(1); err != nil {
		t.Fatalf("SetConfirmedIndex(1): %v", err)
	}
	if err := q.SetConfirmedIndex(0); err == nil {
		t.Fatal("expected an error moving confirmed_index from 1 back to 0")
	}
}

func TestSetConfirmedIndexRejectsPastHeadMinusOne(t *testing.T) {
	q := New(testConfig())
	q.Step(1000, noCandidates) // only one checkpoint: head index 0, head-1 doesn't exist
	if err := q.SetConfirmedIndex(0); err == nil {
		t.Fatal("expected an error confirming the only checkpoint (it would pass head-1)")
	}
}
