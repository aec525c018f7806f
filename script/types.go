// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package script builds the three script families a checkpoint needs
// (spec.md §4.2): the reserve script (a weighted n-of-m accumulator over a
// SignatorySet), the recovery script (a single-sigset fallback used by the
// federation to recover funds without the accumulator), and the
// emergency-disbursal output scripts paid directly to nBTC account
// holders (spec.md §4.9). Style and the extraction/predicate texture are
// grounded in the teacher's txscript/stdscript package; the content is a
// script builder rather than a script recognizer.
package script

// Kind identifies which of the checkpoint engine's script families a
// given script belongs to, mirroring the teacher's ScriptType enum shape.
type Kind byte

const (
	// KindReserve identifies the weighted n-of-m accumulator script that
	// encumbers the active reserve UTXO.
	KindReserve Kind = iota

	// KindRecovery identifies the single-sigset fallback redeem script
	// used if the accumulator script's witness construction cannot be
	// produced (e.g. federation software bug) -- a plain OP_CHECKMULTISIG
	// over the same signatory set's keys, ignoring voting power.
	KindRecovery

	// KindEmergencyDisbursal identifies a standard output script for a
	// single nBTC account holder's address (of whatever address type it
	// is), used for the IntermediateEmergency batch's payouts.
	KindEmergencyDisbursal
)

func (k Kind) String() string {
	switch k {
	case KindReserve:
		return "reserve"
	case KindRecovery:
		return "recovery"
	case KindEmergencyDisbursal:
		return "emergency-disbursal"
	default:
		return "unknown"
	}
}
