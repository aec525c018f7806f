// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package deposit

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Proof is a standard Bitcoin merkle proof: the sibling hash at each level
// from the transaction's leaf up to the root, plus the leaf's position
// (used to decide, at each level, whether the sibling is concatenated on
// the left or the right).
type Proof struct {
	Siblings []chainhash.Hash
	Position uint32
}

// Verify reconstructs a header's merkle root from txid and walks it
// against root, per spec.md §4.7 step 2: "Merkle proof must reconstruct
// the header's txroot with the tx's txid at the claimed position".
func (p Proof) Verify(txid chainhash.Hash, root chainhash.Hash) bool {
	cur := txid
	pos := p.Position
	for _, sibling := range p.Siblings {
		if pos&1 == 0 {
			cur = hashMerkleBranch(cur, sibling)
		} else {
			cur = hashMerkleBranch(sibling, cur)
		}
		pos >>= 1
	}
	return cur == root
}

// hashMerkleBranch combines two merkle-tree nodes the standard Bitcoin
// way: double-sha256 of their concatenation.
func hashMerkleBranch(left, right chainhash.Hash) chainhash.Hash {
	var buf [chainhash.HashSize * 2]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])
	return chainhash.DoubleHashH(buf[:])
}
