package swapoffer

import (
	"errors"

	"nexafx/native/common"
)

var (
	// ErrInvalidAmount rejects a non-positive offered or requested amount.
	ErrInvalidAmount = errors.New("swap: amount must be positive")
	// ErrInvalidToken rejects a blank token symbol.
	ErrInvalidToken = errors.New("swap: invalid token symbol")
	// ErrInvalidAddress rejects a zero principal.
	ErrInvalidAddress = errors.New("swap: invalid principal address")
	// ErrInvalidExpiry rejects an expiry that is not in the future.
	ErrInvalidExpiry = errors.New("swap: expiry must be in the future")
	// ErrInvalidFee rejects a fee above the 5% cap.
	ErrInvalidFee = errors.New("swap: fee exceeds maximum")
	// ErrOfferExpired rejects acceptance of an offer past its expiry.
	ErrOfferExpired = errors.New("swap: offer expired")
	// ErrNotFound is returned when the referenced offer does not exist.
	ErrNotFound = errors.New("swap: offer not found")
	// ErrUnauthorized rejects a caller without the required role.
	ErrUnauthorized = errors.New("swap: unauthorized caller")
	// ErrPaused rejects mutating operations while the module is paused.
	ErrPaused = common.ErrModulePaused

	errNilState    = errors.New("swap engine: state not configured")
	errNilLedger   = errors.New("swap engine: ledger not configured")
	errNotInit     = errors.New("swap engine: module not initialized")
	errAlreadyInit = errors.New("swap engine: module already initialized")
)
