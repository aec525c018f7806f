// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

// Registry persists the SIGNATORY_KEYS (consensus key -> xpub) table
// spec.md §6 names as the engine's own state. It does not write SIGNERS
// (validator addr -> consensus key); it resolves that mapping through the
// ValidatorSet collaborator.
type Registry struct {
	db *DB
}

// NewRegistry wraps db for signatory-key registration.
func NewRegistry(db *DB) *Registry {
	return &Registry{db: db}
}

// SetSignatoryKey implements spec.md §6's set_signatory_key(validator_addr,
// xpub): resolves validator_addr to its consensus key via validators, then
// records consensus_key -> xpub in SIGNATORY_KEYS.
func (r *Registry) SetSignatoryKey(validators ValidatorSet, validatorAddr, xpub string) error {
	consensusKey, err := validators.SignerKey(validatorAddr)
	if err != nil {
		return err
	}
	return r.db.Put(signatoryKeyKey(consensusKey), []byte(xpub))
}

// XPubOf returns the xpub registered for consensusKey, if any.
func (r *Registry) XPubOf(consensusKey string) (string, bool) {
	val, err := r.db.Get(signatoryKeyKey(consensusKey))
	if err != nil {
		return "", false
	}
	return string(val), true
}

func signatoryKeyKey(consensusKey string) []byte {
	return append(append([]byte{}, PrefixSignatoryKeys...), []byte(consensusKey)...)
}
