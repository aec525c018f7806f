// Copyright (c) 2024 The nbtc-chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bridgeerr defines the error taxonomy shared across the checkpoint
// engine: ValidationError, StateError, CryptoError, ResourceError and
// InvariantViolation, per the propagation policy of the engine's error
// handling design. Every fallible operation in the engine returns one of
// these (wrapped with Op and the offending value) rather than a bare error,
// so the host can map a BridgeError to a user-facing message without
// inspecting call-specific state.
package bridgeerr

import (
	"errors"
	"fmt"
)

// Kind identifies which of the five error taxonomies a BridgeError belongs
// to. It intentionally is not a Go error type itself; callers match on Kind
// via Is, not by comparing error values.
type Kind byte

const (
	// KindValidation describes a malformed request: a bad merkle proof, a
	// script that is too long, an amount below a configured minimum, or a
	// reference to an unknown signatory set. No state changes as a result.
	KindValidation Kind = iota

	// KindState describes an operation illegal for the current state: for
	// example, submitting a signature against a Building checkpoint, or
	// setting confirmed_index below its current value.
	KindState

	// KindCrypto describes a secp256k1 verification failure on an
	// otherwise well-formed payload. It is reported per-signature; other
	// signatures within the same submission are still processed.
	KindCrypto

	// KindResource describes a capacity limit: the queue is saturated at
	// max_unconfirmed_checkpoints, or a batch has hit its per-tx size cap.
	KindResource

	// KindInvariant describes an internal consistency failure that must
	// never be allowed to corrupt persisted state, e.g. a checkpoint batch
	// missing its chained reserve input. The single message-dispatch
	// boundary that owns a key-value store handle recovers this as a
	// fatal abort-and-rollback rather than reporting it to the caller.
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindCrypto:
		return "crypto"
	case KindResource:
		return "resource"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// BridgeError is the error type returned by every fallible engine
// operation. Op names the failing operation (e.g. "deposit.Relay",
// "Queue.SubmitSignatures") so the host can log context without parsing the
// message string.
type BridgeError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *BridgeError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *BridgeError) Unwrap() error { return e.Err }

// Is reports whether err is a *BridgeError of the given kind, unwrapping
// nested BridgeErrors so callers can test "was this a state error" without
// caring which op raised it.
func Is(err error, kind Kind) bool {
	for err != nil {
		be, ok := err.(*BridgeError)
		if !ok {
			err = errors.Unwrap(err)
			continue
		}
		if be == nil {
			return false
		}
		if be.Kind == kind {
			return true
		}
		err = be.Err
	}
	return false
}

// New constructs a BridgeError with a formatted message.
func New(kind Kind, op, format string, args ...interface{}) *BridgeError {
	return &BridgeError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap constructs a BridgeError from an existing error without reformatting
// its message.
func Wrap(kind Kind, op string, err error) *BridgeError {
	if err == nil {
		return nil
	}
	return &BridgeError{Kind: kind, Op: op, Err: err}
}

// Validationf is a convenience constructor for the common case of a
// validation failure.
func Validationf(op, format string, args ...interface{}) *BridgeError {
	return New(KindValidation, op, format, args...)
}

// Statef is a convenience constructor for an illegal-state failure.
func Statef(op, format string, args ...interface{}) *BridgeError {
	return New(KindState, op, format, args...)
}

// Resourcef is a convenience constructor for a saturated-resource failure.
func Resourcef(op, format string, args ...interface{}) *BridgeError {
	return New(KindResource, op, format, args...)
}

// Invariantf constructs an InvariantViolation. It does not panic: engine
// operations return it like any other error, and the top-level message
// dispatch boundary passes it through PanicIfInvariant and recovers the
// resulting panic as a fatal abort, per spec §7's "host aborts and rolls
// back" rule, so that it is never handled like an ordinary reported error.
func Invariantf(op, format string, args ...interface{}) *BridgeError {
	return New(KindInvariant, op, format, args...)
}

// PanicIfInvariant promotes an InvariantViolation return value into an
// actual panic, leaving any other error (including nil) untouched. Every
// operation in this engine returns errors normally, including
// InvariantViolations; only the single message-dispatch boundary
// (cmd/checkpointd's engine) calls this, converting that one kind into
// the panic-and-recover the host aborts on, per spec §7.
func PanicIfInvariant(err error) error {
	if be, ok := err.(*BridgeError); ok && be.Kind == KindInvariant {
		panic(be)
	}
	return err
}
