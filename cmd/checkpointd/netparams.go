// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/nbtc-chain/checkpoint/chaincfg"
)

// activeNetParams mirrors the teacher's package-level activeNetParams
// pointer (params.go), selected once at startup from the parsed config
// rather than from a wire.BitcoinNet constant, since this daemon speaks
// only to an SPV header collaborator, never the Bitcoin P2P network
// directly.
var activeNetParams = chaincfg.MainNetParams()

// netParamsFromConfig resolves cfg's network flags to a *chaincfg.Params,
// the same precedence the teacher's params.go constructors implied
// (regtest/testnet override mainnet default).
func netParamsFromConfig(cfg *config) *chaincfg.Params {
	switch {
	case cfg.RegTest:
		return chaincfg.RegTestParams()
	case cfg.TestNet:
		return chaincfg.TestNetParams()
	default:
		return chaincfg.MainNetParams()
	}
}

// chaincfgFromConfig returns the checkpoint engine's own tunables
// (spec.md §6); the daemon does not yet expose per-field CLI overrides
// for these, so it always starts from the documented defaults.
func chaincfgFromConfig(cfg *config) chaincfg.CheckpointConfig {
	return chaincfg.DefaultCheckpointConfig()
}
