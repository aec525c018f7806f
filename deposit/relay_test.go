// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package deposit

import (
	"bytes"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	bridgechaincfg "github.com/nbtc-chain/checkpoint/chaincfg"
	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/script"
	"github.com/nbtc-chain/checkpoint/sigset"
	"github.com/nbtc-chain/checkpoint/store"
)

// fakeHeaders is a minimal in-memory store.HeaderStore for tests.
type fakeHeaders struct {
	initial uint32
	headers map[uint32]store.Header
}

func (f *fakeHeaders) Header(height uint32) (store.Header, error) {
	h, ok := f.headers[height]
	if !ok {
		return store.Header{}, bridgeerr.Validationf("fakeHeaders.Header", "no header at height %d", height)
	}
	return h, nil
}

func (f *fakeHeaders) Height() uint32 {
	var max uint32
	for h := range f.headers {
		if h > max {
			max = h
		}
	}
	return max
}

func (f *fakeHeaders) InitialHeight() uint32 { return f.initial }

func newFakeHeaders(initial uint32, count int) *fakeHeaders {
	f := &fakeHeaders{initial: initial, headers: make(map[uint32]store.Header)}
	for i := 0; i < count; i++ {
		h := initial + uint32(i)
		f.headers[h] = store.Header{Height: h, Time: time.Unix(1000, 0)}
	}
	return f
}

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

func TestRelayBadHeight(t *testing.T) {
	headers := newFakeHeaders(10, 10) // heights 10..19, H=19
	set := sigset.New(1, 1000, []sigset.Signatory{{XPub: testXPub(t, 1), VotingPower: 100}}, 0)
	threshold := sigset.Threshold{Num: 9, Den: 10}
	reserveScript, err := script.BuildReserveScript(set, threshold)
	if err != nil {
		t.Fatalf("BuildReserveScript: %v", err)
	}
	cfg := bridgechaincfg.DefaultCheckpointConfig().Bitcoin

	req := Request{
		Height:       19 + 100,
		OutputScript: reserveScript,
		OutputValue:  cfg.MinDepositAmount,
		Dest:         NewAddressDest("addr1"),
	}
	_, err = Relay(headers, time.Unix(1000, 0), set, threshold, reserveScript, cfg, req)
	if err == nil || err.Error() == "" {
		t.Fatal("expected an error relaying at H+100")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("Invalid bitcoin block height")) {
		t.Fatalf("err = %v, want message containing %q", err, "Invalid bitcoin block height")
	}

	req.Height = 10 - 5 // below initial height 10; avoid underflow on uint32 by using a smaller offset
	_, err = Relay(headers, time.Unix(1000, 0), set, threshold, reserveScript, cfg, req)
	if err == nil {
		t.Fatal("expected an error relaying below initial height")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("Passed index is greater than initial height")) {
		t.Fatalf("err = %v, want message containing %q", err, "Passed index is greater than initial height")
	}
}

func TestRelayRoundTripsDestinationCommitment(t *testing.T) {
	headers := newFakeHeaders(0, 5)
	set := sigset.New(1, 1000, []sigset.Signatory{{XPub: testXPub(t, 1), VotingPower: 100}}, 0)
	threshold := sigset.Threshold{Num: 9, Den: 10}
	reserveScript, err := script.BuildReserveScript(set, threshold)
	if err != nil {
		t.Fatalf("BuildReserveScript: %v", err)
	}
	cfg := bridgechaincfg.DefaultCheckpointConfig().Bitcoin

	var txid chainhash.Hash
	proof := Proof{} // no siblings: txid must equal the header's merkle root directly
	headers.headers[2] = store.Header{Height: 2, MerkleRoot: txid, Time: time.Unix(1000, 0)}

	dest := NewIBCDest("sender1", "receiver1")
	req := Request{
		Txid:         txid,
		Height:       2,
		Proof:        proof,
		OutputScript: reserveScript,
		OutputValue:  cfg.MinDepositAmount,
		Dest:         dest,
	}
	res, err := Relay(headers, time.Unix(1000, 0), set, threshold, reserveScript, cfg, req)
	if err != nil {
		t.Fatalf("Relay: %v", err)
	}
	if !bytes.Equal(res.Input.DestCommitment, dest.CommitmentBytes()) {
		t.Fatal("input's destination-commitment must equal the commitment recorded for the relayed destination")
	}
	if res.Pending.Receiver != "receiver1" {
		t.Fatalf("pending.Receiver = %q, want %q", res.Pending.Receiver, "receiver1")
	}
}

func TestRelayRejectsBelowMinimum(t *testing.T) {
	headers := newFakeHeaders(0, 5)
	set := sigset.New(1, 1000, []sigset.Signatory{{XPub: testXPub(t, 1), VotingPower: 100}}, 0)
	threshold := sigset.Threshold{Num: 9, Den: 10}
	reserveScript, _ := script.BuildReserveScript(set, threshold)
	cfg := bridgechaincfg.DefaultCheckpointConfig().Bitcoin

	var txid chainhash.Hash
	headers.headers[2] = store.Header{Height: 2, MerkleRoot: txid, Time: time.Unix(1000, 0)}

	req := Request{
		Txid:         txid,
		Height:       2,
		OutputScript: reserveScript,
		OutputValue:  cfg.MinDepositAmount - 1,
		Dest:         NewAddressDest("addr1"),
	}
	_, err := Relay(headers, time.Unix(1000, 0), set, threshold, reserveScript, cfg, req)
	if !bridgeerr.Is(err, bridgeerr.KindValidation) {
		t.Fatalf("expected a ValidationError for a below-minimum deposit, got %v", err)
	}
}
