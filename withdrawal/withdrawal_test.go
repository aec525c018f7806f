// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package withdrawal

import (
	"testing"

	"github.com/nbtc-chain/checkpoint/chaincfg"
	"github.com/nbtc-chain/checkpoint/checkpoint"
	"github.com/nbtc-chain/checkpoint/feerate"
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/sigset"
)

func testBuilding(t *testing.T) *checkpoint.Checkpoint {
	t.Helper()
	set := sigset.New(1, 1000, []sigset.Signatory{{XPub: "xpub-a", VotingPower: 100}}, 0)
	return checkpoint.NewBuilding(set, 1000, 10)
}

func TestAddRejectsOversizedScript(t *testing.T) {
	cfg := chaincfg.DefaultCheckpointConfig().Bitcoin
	fees := feerate.New(10, 1, 200)
	building := testBuilding(t)

	req := Request{Script: make([]byte, cfg.MaxWithdrawalScriptLength+1), Amount: cfg.MinWithdrawalAmount}
	_, err := Add(building, 5, cfg, fees, req)
	if !bridgeerr.Is(err, bridgeerr.KindValidation) {
		t.Fatalf("expected a ValidationError for an oversized script, got %v", err)
	}
}

func TestAddRejectsBelowMinimumAmount(t *testing.T) {
	cfg := chaincfg.DefaultCheckpointConfig().Bitcoin
	fees := feerate.New(10, 1, 200)
	building := testBuilding(t)

	req := Request{Script: []byte{0x51}, Amount: cfg.MinWithdrawalAmount - 1}
	_, err := Add(building, 5, cfg, fees, req)
	if !bridgeerr.Is(err, bridgeerr.KindValidation) {
		t.Fatalf("expected a ValidationError for a below-minimum withdrawal, got %v", err)
	}
}

func TestAddRejectsBeforeMinCheckpointCount(t *testing.T) {
	cfg := chaincfg.DefaultCheckpointConfig().Bitcoin
	cfg.MinWithdrawalCheckpoints = 3
	fees := feerate.New(10, 1, 200)
	building := testBuilding(t)

	req := Request{Script: []byte{0x51}, Amount: cfg.MinWithdrawalAmount}
	_, err := Add(building, 1, cfg, fees, req)
	if !bridgeerr.Is(err, bridgeerr.KindValidation) {
		t.Fatalf("expected a ValidationError before min_withdrawal_checkpoints is reached, got %v", err)
	}
}

func TestAddQueuesOutputAndChargesFee(t *testing.T) {
	cfg := chaincfg.DefaultCheckpointConfig().Bitcoin
	fees := feerate.New(10, 1, 200)
	building := testBuilding(t)

	req := Request{Script: []byte{0x51}, Amount: cfg.MinWithdrawalAmount, VBytesShare: 100}
	fee, err := Add(building, 5, cfg, fees, req)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	wantFee := feerate.UserFee(10, 100, cfg.UserFeeFactor)
	if fee != wantFee {
		t.Fatalf("fee = %d, want %d", fee, wantFee)
	}
	if len(building.Outputs) != 1 || building.Outputs[0].Value != cfg.MinWithdrawalAmount {
		t.Fatal("withdrawal output was not queued onto the building checkpoint")
	}
}
