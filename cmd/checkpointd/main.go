// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command checkpointd runs the Checkpoint Engine (spec.md): the
// deterministic state machine that tracks Bitcoin deposits, queues
// withdrawals into signed checkpoint transactions, and rotates the
// federation of signatories that collaboratively controls the reserve.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nbtc-chain/checkpoint/internal/log"
	"github.com/nbtc-chain/checkpoint/script"
	"github.com/nbtc-chain/checkpoint/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return err
	}
	if err := log.InitLogRotator(filepath.Join(cfg.LogDir, logFilename), defaultMaxLogRolls); err != nil {
		return err
	}
	log.SetLogLevels(cfg.DebugLevel)

	activeNetParams = netParamsFromConfig(cfg)
	script.SetNetwork(activeNetParams.Params)

	db, err := store.Open(filepath.Join(cfg.DataDir, "checkpointd.ldb"))
	if err != nil {
		return err
	}
	defer db.Close()

	e := newEngine(db, cfg)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	engineLog.Infof("checkpointd started, network %s, api %s", activeNetParams.Name, cfg.APIListen)
	for {
		select {
		case now := <-ticker.C:
			if err := e.runBeginBlockStep(now, nil); err != nil {
				engineLog.Errorf("begin_block_step: %v", err)
			}
			if err := e.maybeBuildEmergencyDisbursal(now); err != nil {
				engineLog.Errorf("emergency disbursal check: %v", err)
			}
		case <-interrupt:
			engineLog.Infof("checkpointd shutting down")
			return nil
		}
	}
}
