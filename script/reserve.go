// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/btcsuite/btcd/txscript"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/sigset"
)

// BuildReserveScript produces the weighted n-of-m accumulator script for
// set, per spec.md §4.2: each signatory contributes its voting power to a
// running sum gated by OP_IF on whether its signature verified, and the
// script finally requires the sum to clear ⌈threshold⌉.
//
// Entries appear in set.Signatories order (index 0 first), matching
// spec.md's "Order of entries in the script MUST match sigset ordering".
// The corresponding witness must list signatures in the REVERSE of that
// order -- see BuildWitness -- because the script always operates on
// whichever item is on top of the stack via a constant-depth OP_SWAP,
// rather than an index-dependent OP_ROLL.
func BuildReserveScript(set *sigset.SignatorySet, threshold sigset.Threshold) ([]byte, error) {
	const op = "script.BuildReserveScript"
	if set.Len() == 0 {
		return nil, bridgeerr.Validationf(op, "signatory set %d has no signatories", set.Index)
	}

	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_0) // running power sum, starts at zero

	for _, sig := range set.Signatories {
		pubKey, err := compressedPubKey(sig.XPub)
		if err != nil {
			return nil, bridgeerr.Wrap(bridgeerr.KindValidation, op, err)
		}
		b.AddOp(txscript.OP_SWAP)
		b.AddData(pubKey)
		b.AddOp(txscript.OP_CHECKSIG)
		b.AddOp(txscript.OP_IF)
		b.AddInt64(int64(sig.VotingPower))
		b.AddOp(txscript.OP_ADD)
		b.AddOp(txscript.OP_ENDIF)
	}

	b.AddInt64(int64(set.ThresholdPower(threshold)))
	b.AddOp(txscript.OP_GREATERTHANOREQUAL)

	out, err := b.Script()
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.KindInvariant, op, err)
	}
	return out, nil
}

// BuildWitness assembles the witness stack for spending the reserve
// script, given a map from signatory index (within set.Signatories) to
// the DER-encoded ECDSA signature that signatory produced. A missing
// entry contributes an empty item, which OP_CHECKSIG treats as a
// non-verifying (but non-fatal) signature, per spec.md §4.3's "a later
// batch may not accept signatures until every tx in preceding batches is
// fully signed" -- a partially-signed input is still a valid, evaluable
// witness, just one that may not clear the threshold yet.
//
// Items are listed in the reverse of set.Signatories order so that the
// first signatory's item ends up on top of the stack, matching the
// OP_SWAP-based script built by BuildReserveScript.
func BuildWitness(set *sigset.SignatorySet, sigs map[int][]byte) [][]byte {
	n := set.Len()
	witness := make([][]byte, n)
	for i := 0; i < n; i++ {
		item := sigs[i]
		if item == nil {
			item = []byte{}
		}
		witness[n-1-i] = item
	}
	return witness
}

// Fingerprint returns the deterministic commitment for set's reserve
// script: sha256(index || ordered xpubs || ordered powers), per spec.md
// §4.2. Nothing in the deposit path compares against it: deposit.Relay
// matches a deposit's output script byte-for-byte against the reserve
// script, and a deposit's destination-commitment is Dest.CommitmentBytes,
// not this value.
func Fingerprint(set *sigset.SignatorySet) [32]byte {
	h := sha256.New()

	var idxBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], set.Index)
	h.Write(idxBuf[:])

	for _, sig := range set.Signatories {
		h.Write([]byte(sig.XPub))
		var powBuf [8]byte
		binary.BigEndian.PutUint64(powBuf[:], sig.VotingPower)
		h.Write(powBuf[:])
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// compressedPubKey derives the 33-byte compressed secp256k1 public key a
// signatory's xpub signs with, at the xpub's own node (no further BIP32
// derivation) -- each checkpoint's sigset already snapshots the specific
// key a signatory will use.
func compressedPubKey(xpub string) ([]byte, error) {
	pub, err := PubKeyFromXPub(xpub)
	if err != nil {
		return nil, err
	}
	return pub.SerializeCompressed(), nil
}
