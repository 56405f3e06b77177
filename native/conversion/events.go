package conversion

import (
	"encoding/hex"
	"strconv"

	"nexafx/core/types"
)

// Event type identifiers emitted by the conversion engine.
const (
	EventTypeInitialized = "conversion.module.initialized"
	EventTypeRateUpdated = "conversion.rate.updated"
	EventTypeRateLocked  = "conversion.rate.locked"
	EventTypeConverted   = "conversion.executed"
)

// NewInitializedEvent reports the module configuration.
func NewInitializedEvent(cfg *Config) *types.Event {
	return &types.Event{Type: EventTypeInitialized, Attributes: map[string]string{
		"admin":  hex.EncodeToString(cfg.Admin[:]),
		"oracle": hex.EncodeToString(cfg.Oracle[:]),
	}}
}

// NewRateUpdatedEvent reports a fresh oracle quote.
func NewRateUpdatedEvent(rate *ExchangeRate) *types.Event {
	return &types.Event{Type: EventTypeRateUpdated, Attributes: map[string]string{
		"pair":      PairKey(rate.From, rate.To),
		"rate":      rate.Rate.String(),
		"updatedAt": strconv.FormatInt(rate.UpdatedAt, 10),
	}}
}

// NewRateLockedEvent reports a user rate lock.
func NewRateLockedEvent(lock *RateLock) *types.Event {
	return &types.Event{Type: EventTypeRateLocked, Attributes: map[string]string{
		"user":      hex.EncodeToString(lock.User[:]),
		"pair":      PairKey(lock.From, lock.To),
		"rate":      lock.Rate.String(),
		"expiresAt": strconv.FormatInt(lock.ExpiresAt, 10),
	}}
}

// NewConvertedEvent reports an executed conversion.
func NewConvertedEvent(tx *ConversionTx) *types.Event {
	return &types.Event{Type: EventTypeConverted, Attributes: map[string]string{
		"id":        strconv.FormatUint(tx.ID, 10),
		"user":      hex.EncodeToString(tx.User[:]),
		"pair":      PairKey(tx.From, tx.To),
		"amountIn":  tx.AmountIn.String(),
		"amountOut": tx.AmountOut.String(),
		"rate":      tx.Rate.String(),
		"locked":    strconv.FormatBool(tx.RateLocked),
	}}
}
