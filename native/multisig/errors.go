package multisig

import (
	"errors"

	"nexafx/native/common"
)

var (
	// ErrInvalidConfig rejects a malformed signer set or threshold.
	ErrInvalidConfig = errors.New("multisig: invalid config")
	// ErrUnauthorized is returned when the caller is not in the signer set.
	ErrUnauthorized = errors.New("multisig: caller not a signer")
	// ErrNotFound is returned when no proposal exists for the id.
	ErrNotFound = errors.New("multisig: proposal not found")
	// ErrAlreadyApproved is returned when a signer approves twice.
	ErrAlreadyApproved = errors.New("multisig: already approved")
	// ErrAlreadyExecuted is returned when approving an executed proposal.
	ErrAlreadyExecuted = errors.New("multisig: proposal already executed")
	// ErrNonceTooLow is returned by the replay tracker when the presented
	// nonce does not strictly increase.
	ErrNonceTooLow = errors.New("multisig: nonce must strictly increase")
	// ErrPaused mirrors the shared module pause sentinel.
	ErrPaused = common.ErrModulePaused

	errNilState    = errors.New("multisig engine: state not configured")
	errNotInit     = errors.New("multisig engine: module not initialized")
	errAlreadyInit = errors.New("multisig engine: module already initialized")
)
