// Package ledger executes verified transactions into nascent outputs and
// defines the error taxonomy spec.md §7 names for the ledger engine.
package ledger

import "errors"

// Verification failures (spec.md §7) - a transaction carrying one of
// these is dropped from the current mining pass on its first rejection
// and is never retried.
var (
	ErrInvalidSignature  = errors.New("ledger: invalid signature")
	ErrUnknownInput      = errors.New("ledger: unknown input")
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	ErrNonPositiveAmount = errors.New("ledger: non-positive amount")
)

// Submission, commit and lifecycle failures.
var (
	ErrDoubleReservation = errors.New("ledger: input already reserved")
	ErrCommitFailed      = errors.New("ledger: commit failed")
	ErrCancelled         = errors.New("ledger: cancelled")
	ErrEncodingMismatch  = errors.New("ledger: stored hash does not match its canonical encoding")
)
