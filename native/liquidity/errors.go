package liquidity

import (
	"errors"

	"nexafx/native/common"
)

var (
	// ErrInvalidAmount rejects a non-positive liquidity amount.
	ErrInvalidAmount = errors.New("liquidity: amount must be positive")
	// ErrPoolExists is returned when creating a pool twice.
	ErrPoolExists = errors.New("liquidity: pool already exists")
	// ErrPoolNotFound is returned when no pool exists for the currency.
	ErrPoolNotFound = errors.New("liquidity: pool not found")
	// ErrPositionNotFound is returned when the provider has no stake.
	ErrPositionNotFound = errors.New("liquidity: position not found")
	// ErrPositionLocked is returned when withdrawing before the lock expires.
	ErrPositionLocked = errors.New("liquidity: position locked")
	// ErrInsufficientStake is returned when withdrawing more than staked.
	ErrInsufficientStake = errors.New("liquidity: insufficient stake")
	// ErrInsufficientLiquidity is returned when the pool's available depth
	// cannot cover a withdrawal or reservation.
	ErrInsufficientLiquidity = errors.New("liquidity: insufficient available liquidity")
	// ErrUtilizationExceeded is returned when a reservation would push the
	// pool past the maximum utilization.
	ErrUtilizationExceeded = errors.New("liquidity: max utilization exceeded")
	// ErrInvalidReservation is returned when confirming or releasing more
	// than is reserved.
	ErrInvalidReservation = errors.New("liquidity: reservation underflow")
	// ErrUnauthorized is returned when the caller lacks the admin role.
	ErrUnauthorized = errors.New("liquidity: caller not authorized")
	// ErrNoRewards is returned when claiming with nothing accrued.
	ErrNoRewards = errors.New("liquidity: no rewards accrued")
	// ErrPaused mirrors the shared module pause sentinel.
	ErrPaused = common.ErrModulePaused

	errNilState    = errors.New("liquidity engine: state not configured")
	errNilLedger   = errors.New("liquidity engine: ledger not configured")
	errNotInit     = errors.New("liquidity engine: module not initialized")
	errAlreadyInit = errors.New("liquidity engine: module already initialized")
)
