// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"github.com/btcsuite/btcd/txscript"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
	"github.com/nbtc-chain/checkpoint/sigset"
)

// BuildRecoveryScript produces a plain M-of-N OP_CHECKMULTISIG script over
// set's signatory keys, ignoring voting power: a simpler, well-understood
// alternative to the accumulator script that does not depend on its
// witness-ordering convention. Package disbursal does not use it; its
// intermediate outputs pay the reserve script.
//
// M is the smallest signatory count whose cumulative power (taken in
// set.Signatories order, already power-descending) reaches the set's
// configured threshold -- the same notion of "enough power" as the
// accumulator script, expressed as a signer count instead of a weighted
// sum, since OP_CHECKMULTISIG only counts signatures, not weights.
func BuildRecoveryScript(set *sigset.SignatorySet, threshold sigset.Threshold) ([]byte, error) {
	const op = "script.BuildRecoveryScript"
	if set.Len() == 0 {
		return nil, bridgeerr.Validationf(op, "signatory set %d has no signatories", set.Index)
	}
	if set.Len() > 20 {
		return nil, bridgeerr.Validationf(op, "recovery script unsupported above 20 signatories (got %d)", set.Len())
	}

	need := set.ThresholdPower(threshold)
	var cumulative uint64
	m := 0
	for _, sig := range set.Signatories {
		if cumulative >= need {
			break
		}
		cumulative += sig.VotingPower
		m++
	}
	if m == 0 {
		m = 1
	}

	b := txscript.NewScriptBuilder()
	b.AddInt64(int64(m))
	for _, sig := range set.Signatories {
		pub, err := compressedPubKey(sig.XPub)
		if err != nil {
			return nil, bridgeerr.Wrap(bridgeerr.KindValidation, op, err)
		}
		b.AddData(pub)
	}
	b.AddInt64(int64(set.Len()))
	b.AddOp(txscript.OP_CHECKMULTISIG)

	out, err := b.Script()
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.KindInvariant, op, err)
	}
	return out, nil
}
