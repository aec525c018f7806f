// Package chaincfg defines the checkpoint engine's configuration: the
// tunables named in spec.md §6 (CheckpointConfig, BitcoinConfig) plus
// selection of the underlying Bitcoin network the reserve lives on.
//
// There is no genesis block or proof-of-work schedule here, unlike a
// full-node chaincfg package: the SPV header chain is an external
// collaborator (spec.md §6), so this package only carries the three
// Bitcoin network parameter sets a deposit/withdrawal needs for address
// and script encoding, borrowed from github.com/btcsuite/btcd/chaincfg,
// alongside the engine's own tunables.
//
//	package main
//
//	import "github.com/nbtc-chain/checkpoint/chaincfg"
//
//	var netParams = chaincfg.MainNetParams()
//
//	func main() {
//		cfg := chaincfg.DefaultCheckpointConfig()
//		if err := cfg.Validate(); err != nil {
//			panic(err)
//		}
//	}
package chaincfg
