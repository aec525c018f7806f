// Copyright (c) 2024 The nbtc-chain developers
// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/ripemd160" //lint:ignore SA1019 standard Bitcoin hash160 requires ripemd160
)

// calcHash hashes buf with hasher, same two-line shape the teacher's
// exccutil.calcHash used.
func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Hash160 calculates ripemd160(sha256(buf)), the standard Bitcoin address
// hash. The teacher's own exccutil.Hash160 composed Decred's blake256-based
// chainhash.HashB instead of sha256, which only produces a correct hash160
// on a Decred-flavored chain; this is corrected to plain sha256 since the
// reserve script must be byte-identical to a standard Bitcoin node's
// expectations (spec.md §6 "Wire/format compatibility").
func Hash160(buf []byte) []byte {
	sum := sha256.Sum256(buf)
	return calcHash(sum[:], ripemd160.New())
}
