package escrow

import (
	"errors"

	"nexafx/native/common"
)

// Typed failures surfaced by the escrow engine. Every error is detected
// before any ledger call, so a failed operation leaves both the record and
// the ledger untouched.
var (
	// ErrInvalidAmount rejects a non-positive amount at creation.
	ErrInvalidAmount = errors.New("escrow: amount must be positive")
	// ErrInvalidAddress rejects a zero principal or sender == recipient.
	ErrInvalidAddress = errors.New("escrow: invalid principal address")
	// ErrInvalidTimestamp rejects a non-positive timeout or dispute period.
	ErrInvalidTimestamp = errors.New("escrow: duration must be positive")
	// ErrUnauthorized rejects a caller whose authenticated principal does not
	// match the role the operation requires.
	ErrUnauthorized = errors.New("escrow: unauthorized caller")
	// ErrStateMismatch rejects an operation whose status precondition does
	// not hold, including timeout polls before the deadline.
	ErrStateMismatch = errors.New("escrow: state precondition not met")
	// ErrNotFound is returned when the referenced escrow id does not exist.
	ErrNotFound = errors.New("escrow: escrow not found")
	// ErrPaused rejects mutating operations while the module is paused.
	ErrPaused = common.ErrModulePaused

	errNilState    = errors.New("escrow engine: state not configured")
	errNilLedger   = errors.New("escrow engine: ledger not configured")
	errNotInit     = errors.New("escrow engine: module not initialized")
	errAlreadyInit = errors.New("escrow engine: module already initialized")
)
