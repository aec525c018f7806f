// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package disbursal

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"

	bridgechaincfg "github.com/nbtc-chain/checkpoint/chaincfg"
	"github.com/nbtc-chain/checkpoint/checkpoint"
	"github.com/nbtc-chain/checkpoint/sigset"
	"github.com/nbtc-chain/checkpoint/store"
)

func testXPub(t *testing.T, seedByte byte) string {
	t.Helper()
	seed := bytes.Repeat([]byte{seedByte}, hdkeychain.RecommendedSeedLen)
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("NewMaster: %v", err)
	}
	neutered, err := master.Neuter()
	if err != nil {
		t.Fatalf("Neuter: %v", err)
	}
	return neutered.String()
}

func TestBuildShardsAccountsAndFiltersBelowMinimum(t *testing.T) {
	set := sigset.New(1, 1000, []sigset.Signatory{{XPub: testXPub(t, 1), VotingPower: 100}}, 0)
	threshold := sigset.Threshold{Num: 9, Den: 10}
	cfg := bridgechaincfg.DefaultCheckpointConfig().Bitcoin
	cfg.EmergencyDisbursalMaxTxSize = estimatedOutputVSize * 2 // force at most 2 outputs per shard

	addrs := []string{
		"1BoatSLRHtKNngkdXEeobR76b53LETtpyT",
		"1BoatSLRHtKNngkdXEeobR76b53LETtpyT",
		"1BoatSLRHtKNngkdXEeobR76b53LETtpyT",
	}
	accounts := []store.Account{
		{Addr: addrs[0], Balance: cfg.EmergencyDisbursalMinTxAmt},
		{Addr: addrs[1], Balance: cfg.EmergencyDisbursalMinTxAmt},
		{Addr: addrs[2], Balance: cfg.EmergencyDisbursalMinTxAmt - 1}, // filtered out
	}

	disbursalBatch, intermediateBatch, err := Build(accounts, checkpoint.Prevout{}, 10_000, set, threshold, &chaincfg.MainNetParams, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(disbursalBatch.Txs) != 1 {
		t.Fatalf("len(disbursalBatch.Txs) = %d, want 1", len(disbursalBatch.Txs))
	}
	if len(disbursalBatch.Txs[0].Tx.TxOut) != 1 {
		t.Fatalf("split tx has %d outputs, want 1 shard (2 eligible accounts fit in one shard of 2)", len(disbursalBatch.Txs[0].Tx.TxOut))
	}
	if len(intermediateBatch.Txs) != 1 {
		t.Fatalf("len(intermediateBatch.Txs) = %d, want 1", len(intermediateBatch.Txs))
	}
	if len(intermediateBatch.Txs[0].Tx.TxOut) != 2 {
		t.Fatalf("payout tx has %d outputs, want 2 (the below-minimum account must be excluded)", len(intermediateBatch.Txs[0].Tx.TxOut))
	}
}

func TestBuildEmptyWhenNoAccountsEligible(t *testing.T) {
	set := sigset.New(1, 1000, []sigset.Signatory{{XPub: testXPub(t, 1), VotingPower: 100}}, 0)
	threshold := sigset.Threshold{Num: 9, Den: 10}
	cfg := bridgechaincfg.DefaultCheckpointConfig().Bitcoin

	accounts := []store.Account{{Addr: "addr1", Balance: cfg.EmergencyDisbursalMinTxAmt - 1}}
	disbursalBatch, intermediateBatch, err := Build(accounts, checkpoint.Prevout{}, 10_000, set, threshold, &chaincfg.MainNetParams, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(disbursalBatch.Txs) != 0 || len(intermediateBatch.Txs) != 0 {
		t.Fatal("expected no batches when no account clears the minimum")
	}
}
