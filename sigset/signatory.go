// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sigset implements the Signatory Set: an ordered, indexed
// snapshot of signatories and their voting power (spec.md §3, §4.1). A
// SignatorySet is immutable once created and uniquely determines the
// reserve script built by package script.
package sigset

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
)

// Signatory is one federation member: a BIP32 extended public key
// (registered by the validator that controls the corresponding validator
// stake) and the voting power backing it, scaled so that a set's total
// power fits a uint64 with headroom for the threshold multiplication in
// package script.
type Signatory struct {
	// XPub is the serialized extended public key string
	// (hdkeychain.ExtendedKey.String) the signatory signs with. It is
	// stored serialized, not as a live *hdkeychain.ExtendedKey, because a
	// SignatorySet is persisted as plain data (spec.md §9: "implement as
	// plain data with explicit operations").
	XPub string

	// VotingPower is this signatory's share of the set's total power.
	VotingPower uint64
}

// ExtendedKey parses XPub back into a usable BIP32 key. Package script
// does not use it: reserve scripts use the xpub's own node key, with no
// child derivation.
func (s Signatory) ExtendedKey(net hdkeychain.NetworkParams) (*hdkeychain.ExtendedKey, error) {
	key, err := hdkeychain.NewKeyFromString(s.XPub, net)
	if err != nil {
		return nil, bridgeerr.Validationf("signatory.ExtendedKey", "parse xpub: %w", err)
	}
	return key, nil
}

// byPowerThenXPub implements the ordering spec.md §4.1 mandates: "order by
// (power desc, xpub asc) and cap at a configured maximum"; equal power ties
// break by xpub bytes, and equal xpubs cannot occur because registration
// enforces uniqueness.
type byPowerThenXPub []Signatory

func (s byPowerThenXPub) Len() int      { return len(s) }
func (s byPowerThenXPub) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byPowerThenXPub) Less(i, j int) bool {
	if s[i].VotingPower != s[j].VotingPower {
		return s[i].VotingPower > s[j].VotingPower
	}
	return bytes.Compare([]byte(s[i].XPub), []byte(s[j].XPub)) < 0
}

// SortSignatories orders sigs in place per the (power desc, xpub asc) rule.
func SortSignatories(sigs []Signatory) {
	sort.Stable(byPowerThenXPub(sigs))
}
