// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
)

// netParams selects which network's HD version bytes a serialized xpub is
// decoded against. Defaults to mainnet; cmd/checkpointd overrides this via
// SetNetwork at startup based on the selected chaincfg.Params.
var netParams hdkeychain.NetworkParams = &chaincfg.MainNetParams

// SetNetwork changes which network's HD version bytes xpub parsing
// expects. Not safe to call concurrently with script building; intended
// to be called once during daemon startup.
func SetNetwork(params hdkeychain.NetworkParams) {
	netParams = params
}

// parseXPub decodes a serialized extended public key string, failing as a
// ValidationError (not a crypto or invariant error) since a malformed xpub
// is a caller input problem, not an internal inconsistency.
func parseXPub(xpub string) (*hdkeychain.ExtendedKey, error) {
	key, err := hdkeychain.NewKeyFromString(xpub, netParams)
	if err != nil {
		return nil, bridgeerr.Validationf("script.parseXPub", "parse xpub: %v", err)
	}
	if key.IsPrivate() {
		return nil, bridgeerr.Validationf("script.parseXPub", "expected extended public key, got private")
	}
	return key, nil
}

// PubKeyFromXPub returns the secp256k1 public key a signatory's xpub signs
// with, at the xpub's own node, for the daemon's derive-pubkey-at-sigset
// read query (spec.md §6) and for resolving the pubKey argument
// checkpoint.Input.AddSignature needs.
func PubKeyFromXPub(xpub string) (*btcec.PublicKey, error) {
	key, err := parseXPub(xpub)
	if err != nil {
		return nil, err
	}
	return key.ECPubKey()
}
