// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkpoint

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/sigset"
)

// Input is a reserve UTXO bound to a sigset and a destination commitment,
// carrying per-signatory signatures index-aligned to its Sigset's
// signatory order (spec.md §3).
type Input struct {
	Prevout        Prevout
	Sigset         *sigset.SignatorySet
	DestCommitment []byte
	Amount         int64
	Threshold      sigset.Threshold

	// Digest is the sighash this input's signatures are over. It is
	// fixed once the containing batch's transaction is fully assembled.
	// AddSignature verifies every signature against it; a signature over
	// any other digest fails verification and is rejected as a
	// CryptoError.
	Digest []byte

	// Signatures is index-aligned to Sigset.Signatories: Signatures[i]
	// is signatory i's DER-encoded ECDSA signature, or absent if
	// signatory i has not yet signed.
	Signatures map[int][]byte
}

// NewInput constructs an Input for a freshly relayed deposit.
func NewInput(prevout Prevout, set *sigset.SignatorySet, destCommitment []byte, amount int64, threshold sigset.Threshold) *Input {
	return &Input{
		Prevout:        prevout,
		Sigset:         set,
		DestCommitment: destCommitment,
		Amount:         amount,
		Threshold:      threshold,
		Signatures:     make(map[int][]byte),
	}
}

// SetDigest fixes the sighash this input's signatures must be over, once
// the containing batch's transaction has been fully assembled (spec.md
// §4.3's "Digest is fixed once the containing batch's transaction is
// fully assembled").
func (in *Input) SetDigest(digest []byte) {
	in.Digest = digest
}

// SigningPower returns the sum of voting power behind every signatory that
// has a recorded signature.
func (in *Input) SigningPower() uint64 {
	var power uint64
	for idx := range in.Signatures {
		if idx >= 0 && idx < in.Sigset.Len() {
			power += in.Sigset.Signatories[idx].VotingPower
		}
	}
	return power
}

// IsSigned reports whether accumulated signing power meets the input's
// threshold against its sigset's possible power (spec.md §3: "An input is
// signed when accumulated signing-power ≥ threshold × sigset.possible-vp-total").
func (in *Input) IsSigned() bool {
	return in.Sigset.Sufficient(in.SigningPower(), in.Threshold)
}

// AddSignature verifies and records sig as signatoryIndex's signature over
// this input's Digest. It implements spec.md §5's idempotence rule and
// §4.3's rejection taxonomy:
//
//   - resubmitting a byte-identical signature for the same signatory is a
//     silent no-op, not an error (idempotent retries);
//   - resubmitting a different signature for the same signatory is a
//     StateError (double-counting power is not allowed);
//   - an unknown signatoryIndex or a sigsetIndex mismatch is a
//     ValidationError;
//   - a well-formed but non-verifying signature is a CryptoError, and does
//     not prevent other signatures in the same call from being processed
//     by the caller.
func (in *Input) AddSignature(sigsetIndex uint32, signatoryIndex int, sig []byte, pubKey *btcec.PublicKey) error {
	const op = "Input.AddSignature"

	if sigsetIndex != in.Sigset.Index {
		return bridgeerr.Validationf(op, "sigset index %d does not match input's sigset %d", sigsetIndex, in.Sigset.Index)
	}
	if signatoryIndex < 0 || signatoryIndex >= in.Sigset.Len() {
		return bridgeerr.Validationf(op, "signatory index %d out of range for sigset of size %d", signatoryIndex, in.Sigset.Len())
	}

	if existing, ok := in.Signatures[signatoryIndex]; ok {
		if bytes.Equal(existing, sig) {
			return nil // idempotent retry, no-op
		}
		return bridgeerr.Statef(op, "signatory %d already has a different signature recorded", signatoryIndex)
	}

	valid, err := verifySignature(in.Digest, sig, pubKey)
	if err != nil {
		return bridgeerr.Wrap(bridgeerr.KindValidation, op, err)
	}
	if !valid {
		return bridgeerr.New(bridgeerr.KindCrypto, op, "signature from signatory %d does not verify", signatoryIndex)
	}

	in.Signatures[signatoryIndex] = sig
	ckptLog.Debugf("input %s:%d: signatory %d signed (power now %d)",
		in.Prevout.Txid, in.Prevout.Vout, signatoryIndex, in.SigningPower())
	return nil
}

func verifySignature(digest, sig []byte, pubKey *btcec.PublicKey) (bool, error) {
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false, err
	}
	return parsed.Verify(digest, pubKey), nil
}
