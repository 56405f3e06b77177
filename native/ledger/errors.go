package ledger

import (
	"errors"

	"nexafx/native/common"
)

var (
	// ErrInvalidAmount rejects a non-positive transfer, mint or custody amount.
	ErrInvalidAmount = errors.New("ledger: amount must be positive")
	// ErrInvalidSymbol rejects an empty or blank token symbol.
	ErrInvalidSymbol = errors.New("ledger: invalid token symbol")
	// ErrInvalidAddress rejects the zero address as a balance holder.
	ErrInvalidAddress = errors.New("ledger: invalid address")
	// ErrUnknownAsset is returned when the token symbol has not been registered.
	ErrUnknownAsset = errors.New("ledger: unknown asset")
	// ErrAssetExists is returned when registering a symbol twice.
	ErrAssetExists = errors.New("ledger: asset already registered")
	// ErrInsufficientBalance is returned when a debit or transfer exceeds the
	// holder's balance.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	// ErrInsufficientCustody is returned when a credit exceeds the custody
	// vault for the token. It indicates a bookkeeping fault in the caller.
	ErrInsufficientCustody = errors.New("ledger: insufficient custody balance")
	// ErrUnauthorized is returned when the caller lacks the admin role.
	ErrUnauthorized = errors.New("ledger: caller not authorized")
	// ErrPaused mirrors the shared module pause sentinel.
	ErrPaused = common.ErrModulePaused

	errNilState    = errors.New("ledger engine: state not configured")
	errNotInit     = errors.New("ledger engine: module not initialized")
	errAlreadyInit = errors.New("ledger engine: module already initialized")
)
