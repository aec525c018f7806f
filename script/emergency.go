// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
)

// BuildEmergencyDisbursalScript produces the output script that pays an
// nBTC account holder directly, for the payout outputs of the
// IntermediateEmergency batch (spec.md §4.9). addr is the account
// holder's Bitcoin payout address, supplied out-of-band at account
// registration time (outside this engine's scope); this function only
// turns it into a scriptPubKey.
func BuildEmergencyDisbursalScript(addr btcutil.Address) ([]byte, error) {
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.KindValidation, "script.BuildEmergencyDisbursalScript", err)
	}
	return pkScript, nil
}
