package conversion

import (
	"errors"

	"nexafx/native/common"
)

var (
	// ErrUnsupportedCurrency rejects a symbol outside the supported set.
	ErrUnsupportedCurrency = errors.New("conversion: unsupported currency")
	// ErrSamePair rejects a conversion between identical currencies.
	ErrSamePair = errors.New("conversion: identical source and target currency")
	// ErrInvalidAmount rejects a non-positive conversion amount.
	ErrInvalidAmount = errors.New("conversion: amount must be positive")
	// ErrBelowMinimum is returned when the amount is under the configured floor.
	ErrBelowMinimum = errors.New("conversion: amount below minimum")
	// ErrAboveMaximum is returned when the amount is over the configured cap.
	ErrAboveMaximum = errors.New("conversion: amount above maximum")
	// ErrRateUnavailable is returned when no rate has been published for a pair.
	ErrRateUnavailable = errors.New("conversion: no rate for pair")
	// ErrRateStale is returned when the published rate is past its validity.
	ErrRateStale = errors.New("conversion: rate expired")
	// ErrInvalidRate rejects a non-positive rate from the oracle.
	ErrInvalidRate = errors.New("conversion: rate must be positive")
	// ErrUnauthorized is returned when the caller lacks the required role.
	ErrUnauthorized = errors.New("conversion: caller not authorized")
	// ErrNotFound is returned when no conversion record exists for the id.
	ErrNotFound = errors.New("conversion: record not found")
	// ErrPaused mirrors the shared module pause sentinel.
	ErrPaused = common.ErrModulePaused

	errNilState    = errors.New("conversion engine: state not configured")
	errNilLedger   = errors.New("conversion engine: ledger not configured")
	errNotInit     = errors.New("conversion engine: module not initialized")
	errAlreadyInit = errors.New("conversion engine: module already initialized")
)
