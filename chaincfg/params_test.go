// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
)

func TestDefaultCheckpointConfigValidates(t *testing.T) {
	cfg := DefaultCheckpointConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed Validate(): %v\nconfig: %s", err, spew.Sdump(cfg))
	}
}

func TestValidateRejectsInvertedFeeRateBounds(t *testing.T) {
	cfg := DefaultCheckpointConfig()
	cfg.MinFeeRate = 50
	cfg.MaxFeeRate = 10
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for inverted fee-rate bounds, got none\nconfig: %s", spew.Sdump(cfg))
	}
}

func TestValidateRejectsInvertedCheckpointIntervals(t *testing.T) {
	cfg := DefaultCheckpointConfig()
	cfg.MinCheckpointInterval = 2 * time.Hour
	cfg.MaxCheckpointInterval = time.Hour
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for inverted checkpoint intervals, got none\nconfig: %s", spew.Sdump(cfg))
	}
}

func TestValidateRejectsBadSigsetThreshold(t *testing.T) {
	cfg := DefaultCheckpointConfig()
	cfg.Bitcoin.SigsetThreshold = SigsetThreshold{Num: 11, Den: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for threshold numerator exceeding denominator, got none\nconfig: %s", spew.Sdump(cfg.Bitcoin))
	}
}

func TestMainNetParamsAndTestNetParamsHaveDistinctPorts(t *testing.T) {
	main := MainNetParams()
	test := TestNetParams()
	if main.APIPort == test.APIPort {
		t.Fatalf("mainnet and testnet must not share an API port: %s", spew.Sdump(main, test))
	}
}
