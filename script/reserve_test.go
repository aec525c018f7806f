// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/nbtc-chain/checkpoint/sigset"
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

func testSet(t *testing.T) *sigset.SignatorySet {
	t.Helper()
	candidates := []sigset.Signatory{
		{XPub: testXPub(t, 0x01), VotingPower: 100},
		{XPub: testXPub(t, 0x02), VotingPower: 10},
	}
	return sigset.New(1, 1000, candidates, 0)
}

func TestBuildReserveScriptDeterministic(t *testing.T) {
	set := testSet(t)
	threshold := sigset.Threshold{Num: 9, Den: 10}

	s1, err := BuildReserveScript(set, threshold)
	if err != nil {
		t.Fatalf("BuildReserveScript: %v", err)
	}
	s2, err := BuildReserveScript(set, threshold)
	if err != nil {
		t.Fatalf("BuildReserveScript: %v", err)
	}
	if !bytes.Equal(s1, s2) {
		t.Fatal("BuildReserveScript is not deterministic")
	}
	if len(s1) == 0 {
		t.Fatal("script is empty")
	}
}

func TestFingerprintChangesWithSigset(t *testing.T) {
	setA := testSet(t)
	fpA1 := Fingerprint(setA)
	fpA2 := Fingerprint(setA)
	if fpA1 != fpA2 {
		t.Fatal("fingerprint is not deterministic for the same set")
	}

	setB := sigset.New(2, 1000, setA.Signatories, 0)
	fpB := Fingerprint(setB)
	if fpA1 == fpB {
		t.Fatal("fingerprint must change when the sigset index changes")
	}
}

func TestBuildWitnessOrdersInReverse(t *testing.T) {
	set := testSet(t)
	sigs := map[int][]byte{
		0: []byte("sig-for-highest-power-signatory"),
		1: []byte("sig-for-second-signatory"),
	}
	witness := BuildWitness(set, sigs)
	if len(witness) != 2 {
		t.Fatalf("len(witness) = %d, want 2", len(witness))
	}
	if !bytes.Equal(witness[1], sigs[0]) {
		t.Fatal("signatory 0's signature must end up on top of the witness stack")
	}
	if !bytes.Equal(witness[0], sigs[1]) {
		t.Fatal("signatory 1's signature must sit below signatory 0's")
	}
}

func TestBuildWitnessFillsAbsentSignaturesEmpty(t *testing.T) {
	set := testSet(t)
	witness := BuildWitness(set, map[int][]byte{0: []byte("only-one")})
	for _, item := range witness {
		if item == nil {
			t.Fatal("witness items must never be nil, only empty")
		}
	}
}

func TestBuildRecoveryScriptRequiresEnoughSigners(t *testing.T) {
	set := testSet(t)
	script, err := BuildRecoveryScript(set, sigset.Threshold{Num: 9, Den: 10})
	if err != nil {
		t.Fatalf("BuildRecoveryScript: %v", err)
	}
	if len(script) == 0 {
		t.Fatal("script is empty")
	}
}
