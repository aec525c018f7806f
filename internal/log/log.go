// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package log sets up the subsystem loggers shared by every package in the
// checkpoint engine. It mirrors the teacher daemon's logging stack
// (github.com/decred/slog backed by a rotated file via
// github.com/jrick/logrotate) since no log.go source survived retrieval for
// the teacher itself, only the go.mod dependency pair.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// backend is the shared slog.Backend every subsystem logger is created
// from. Until InitLogRotator is called it writes to io.Discard, so
// subsystem loggers produce no output, same as the teacher's convention of
// defaulting every subsystem to slog.Disabled before parsing config.
var backend = slog.NewBackend(io.Discard)

var logRotator *rotator.Rotator

// subsystems maps a short subsystem tag (as used in -debuglevel=TAG=trace)
// to its logger, so SetLogLevels can look them up by name.
var subsystems = make(map[string]slog.Logger)

// NewSubsystem creates (and registers) the logger for a subsystem tag such
// as "CKPT", "QUEU", "DPST". Packages call this once at init time.
func NewSubsystem(tag string) slog.Logger {
	l := backend.Logger(tag)
	l.SetLevel(slog.LevelInfo)
	subsystems[tag] = l
	return l
}

// InitLogRotator initializes the rotating file logger and re-points every
// previously created subsystem logger's backend at it. logFile is the full
// path to the active log file; maxRolls bounds how many rotated files are
// kept on disk.
func InitLogRotator(logFile string, maxRolls int) error {
	r, err := rotator.New(logFile, 10*1024, false, maxRolls)
	if err != nil {
		return fmt.Errorf("failed to create log rotator: %w", err)
	}
	logRotator = r

	backend = slog.NewBackend(io.MultiWriter(os.Stdout, logWriter{}))
	for tag, l := range subsystems {
		level := l.Level()
		newLogger := backend.Logger(tag)
		newLogger.SetLevel(level)
		subsystems[tag] = newLogger
	}
	return nil
}

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	if logRotator == nil {
		return len(p), nil
	}
	return logRotator.Write(p)
}

// SetLogLevel sets the log level for the named subsystem. An unrecognized
// subsystem tag is a silent no-op, matching the teacher's permissive
// -debuglevel parsing.
func SetLogLevel(subsystemID string, level string) {
	l, ok := subsystems[subsystemID]
	if !ok {
		return
	}
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return
	}
	l.SetLevel(lvl)
}

// SetLogLevels sets every registered subsystem to the same level, used for
// a bare -debuglevel=trace with no subsystem qualifier.
func SetLogLevels(level string) {
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return
	}
	for _, l := range subsystems {
		l.SetLevel(lvl)
	}
}
