// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	flags "github.com/jessevdk/go-flags"

	"github.com/nbtc-chain/checkpoint/internal/bridgeerr"
)

const (
	logFilename = "checkpointd.log"
	defaultMaxLogRolls = 8
)

var (
	defaultAppDataDir = btcutil.AppDataDir("checkpointd", false)
	defaultDataDir    = filepath.Join(defaultAppDataDir, "data")
	defaultLogDir     = filepath.Join(defaultAppDataDir, "logs")
)

// config defines the daemon's command-line and config-file options,
// following the teacher's jessevdk/go-flags idiom (one flat struct handed
// straight to flags.NewParser).
type config struct {
	DataDir     string `long:"datadir" description:"Directory to store the goleveldb checkpoint store"`
	LogDir      string `long:"logdir" description:"Directory to log output to"`
	TestNet     bool   `long:"testnet" description:"Use the Bitcoin test network"`
	RegTest     bool   `long:"regtest" description:"Use a local Bitcoin regression test network"`
	DebugLevel  string `long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical}" default:"info"`
	APIListen   string `long:"listen" description:"Address for the host dispatch API to listen on"`
}

// loadConfig parses CLI flags into a config, applying defaults the same
// way the teacher's config packages seed defaults before calling
// flags.NewParser.
func loadConfig() (*config, error) {
	cfg := &config{
		DataDir:    defaultDataDir,
		LogDir:     defaultLogDir,
		DebugLevel: "info",
		APIListen:  "127.0.0.1:9901",
	}

	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if cfg.TestNet && cfg.RegTest {
		return nil, bridgeerr.Validationf("loadConfig", "testnet and regtest cannot both be specified")
	}

	return cfg, nil
}
