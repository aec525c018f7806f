// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	btcdchaincfg "github.com/btcsuite/btcd/chaincfg"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
)

// Params pairs one of the three standard Bitcoin networks with the bridge's
// own API port, the way the teacher's params.go paired a *chaincfg.Params
// with an rpcPort.
type Params struct {
	*btcdchaincfg.Params
	APIPort string
}

// MainNetParams returns the bridge's parameters for Bitcoin mainnet.
func MainNetParams() *Params {
	return &Params{Params: &btcdchaincfg.MainNetParams, APIPort: "9901"}
}

// TestNetParams returns the bridge's parameters for Bitcoin testnet3.
func TestNetParams() *Params {
	return &Params{Params: &btcdchaincfg.TestNet3Params, APIPort: "19901"}
}

// RegTestParams returns the bridge's parameters for a local regtest
// network, selected by checkpointd's --regtest flag.
func RegTestParams() *Params {
	return &Params{Params: &btcdchaincfg.RegressionNetParams, APIPort: "19556"}
}

// SigsetThreshold is the rational threshold a SignatorySet's present power
// must clear to be sufficient, expressed as Num/Den (spec.md §3, §4.2).
type SigsetThreshold struct {
	Num uint64
	Den uint64
}

// BitcoinConfig holds the Bitcoin-side tunables named in spec.md §6: the
// reserve script's threshold, deposit/withdrawal admission limits, and the
// emergency-disbursal schedule.
type BitcoinConfig struct {
	// MaxSignatories caps the number of entries selected into a
	// SignatorySet snapshot (spec.md §4.1: "cap at a configured maximum").
	MaxSignatories int

	// SigsetThreshold is the (numerator, denominator) a sigset's present
	// voting power must clear for an Input to be considered signed.
	SigsetThreshold SigsetThreshold

	// MinDepositAmount is the minimum value, in satoshis, a relayed
	// deposit output must carry.
	MinDepositAmount int64

	// MaxDepositAge bounds how old the header containing a deposit may be
	// before the deposit is rejected.
	MaxDepositAge time.Duration

	// MinWithdrawalAmount is the minimum value, in satoshis, a queued
	// withdrawal output must carry.
	MinWithdrawalAmount int64

	// MaxWithdrawalAmount is advisory only per spec.md §9's open
	// question: the field is carried for compatibility with the source
	// material but is never enforced as a limit.
	MaxWithdrawalAmount int64

	// MaxWithdrawalScriptLength bounds the length, in bytes, of a
	// withdrawal's destination script.
	MaxWithdrawalScriptLength int

	// MinWithdrawalCheckpoints is the minimum number of checkpoints that
	// must already exist before a withdrawal may be queued.
	MinWithdrawalCheckpoints int

	// EmergencyDisbursalLockTimeInterval is how long a checkpoint's
	// reserve may sit unswept before the Disbursal/IntermediateEmergency
	// batches become the only path to recovering funds.
	EmergencyDisbursalLockTimeInterval time.Duration

	// EmergencyDisbursalMinTxAmt is the minimum nBTC account balance that
	// earns a direct emergency-disbursal output.
	EmergencyDisbursalMinTxAmt int64

	// EmergencyDisbursalMaxTxSize bounds the vsize, in vbytes, of any one
	// emergency-disbursal transaction; accounts are sharded across
	// multiple transactions to respect this.
	EmergencyDisbursalMaxTxSize int64

	// UserFeeFactor scales the per-user fee deduction, in basis points
	// (spec.md §4.6: "≈27000 bp").
	UserFeeFactor int64
}

// CheckpointConfig holds the queue-level tunables named in spec.md §6.
type CheckpointConfig struct {
	MinCheckpointInterval    time.Duration
	MaxCheckpointInterval    time.Duration
	MaxInputs                int
	MaxOutputs               int
	MaxUnconfirmedCheckpoints int
	MaxAge                   time.Duration
	MinFeeRate               int64
	MaxFeeRate               int64
	TargetCheckpointInclusion int64 // blocks
	MaxOfflineCheckpoints    int

	Bitcoin BitcoinConfig
}

// minQueueFloor is the minimum number of checkpoints the queue retains
// regardless of MaxAge, per spec.md §4.4 step 5 ("keeping a floor of 10").
const minQueueFloor = 10

// DefaultCheckpointConfig returns the tunables from spec.md §6, with
// BitcoinConfig populated with reasonable defaults for the fields the
// top-level table does not pin.
func DefaultCheckpointConfig() CheckpointConfig {
	return CheckpointConfig{
		MinCheckpointInterval:     300 * time.Second,
		MaxCheckpointInterval:     60 * time.Minute,
		MaxInputs:                 40,
		MaxOutputs:                200,
		MaxUnconfirmedCheckpoints: 15,
		MaxAge:                    60 * 24 * time.Hour,
		MinFeeRate:                1,
		MaxFeeRate:                200,
		TargetCheckpointInclusion: 2,
		MaxOfflineCheckpoints:     20,
		Bitcoin: BitcoinConfig{
			MaxSignatories:                      40,
			SigsetThreshold:                     SigsetThreshold{Num: 9, Den: 10},
			MinDepositAmount:                     10_000,
			MaxDepositAge:                        7 * 24 * time.Hour,
			MinWithdrawalAmount:                   10_000,
			MaxWithdrawalAmount:                   0,
			MaxWithdrawalScriptLength:             64,
			MinWithdrawalCheckpoints:              1,
			EmergencyDisbursalLockTimeInterval:    8 * 7 * 24 * time.Hour,
			EmergencyDisbursalMinTxAmt:            1000,
			EmergencyDisbursalMaxTxSize:           50_000,
			UserFeeFactor:                         27_000,
		},
	}
}

// QueueFloor is the minimum number of checkpoints retained during pruning.
func (c CheckpointConfig) QueueFloor() int { return minQueueFloor }

// Validate reports a ValidationError if any configured ratio or bound is
// self-contradictory, mirroring the "Config" query surface the original
// Rust contract exposed (SPEC_FULL.md §D).
func (c CheckpointConfig) Validate() error {
	const op = "chaincfg.Validate"
	if c.MinFeeRate <= 0 || c.MaxFeeRate < c.MinFeeRate {
		return bridgeerr.Validationf(op, "min_fee_rate %d must be positive and <= max_fee_rate %d", c.MinFeeRate, c.MaxFeeRate)
	}
	if c.MinCheckpointInterval > c.MaxCheckpointInterval {
		return bridgeerr.Validationf(op, "min_checkpoint_interval %s exceeds max_checkpoint_interval %s", c.MinCheckpointInterval, c.MaxCheckpointInterval)
	}
	if c.Bitcoin.SigsetThreshold.Den == 0 || c.Bitcoin.SigsetThreshold.Num > c.Bitcoin.SigsetThreshold.Den {
		return bridgeerr.Validationf(op, "invalid sigset threshold %d/%d", c.Bitcoin.SigsetThreshold.Num, c.Bitcoin.SigsetThreshold.Den)
	}
	if c.MaxInputs <= 0 || c.MaxOutputs <= 0 {
		return bridgeerr.Validationf(op, "max_inputs and max_outputs must be positive")
	}
	return nil
}
