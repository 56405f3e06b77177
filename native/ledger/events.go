package ledger

import (
	"encoding/hex"
	"math/big"

	"nexafx/core/types"
)

// Event type identifiers emitted by the ledger engine.
const (
	EventTypeAssetRegistered  = "ledger.asset.registered"
	EventTypeMinted           = "ledger.minted"
	EventTypeTransferred      = "ledger.transferred"
	EventTypeDebited          = "ledger.debited"
	EventTypeCredited         = "ledger.credited"
	EventTypeInitialized      = "ledger.module.initialized"
	EventTypeAdminTransferred = "ledger.module.admin_transferred"
	EventTypePauseUpdated     = "ledger.module.pause_updated"
)

func amountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

// NewAssetRegisteredEvent reports a new token definition.
func NewAssetRegisteredEvent(asset *Asset) *types.Event {
	return &types.Event{Type: EventTypeAssetRegistered, Attributes: map[string]string{
		"symbol": asset.Symbol,
		"name":   asset.Name,
	}}
}

// NewMintedEvent reports new supply issued to an account.
func NewMintedEvent(to [20]byte, symbol string, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeMinted, Attributes: map[string]string{
		"to":     hex.EncodeToString(to[:]),
		"symbol": symbol,
		"amount": amountString(amount),
	}}
}

// NewTransferredEvent reports a balance movement between accounts.
func NewTransferredEvent(from, to [20]byte, symbol string, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeTransferred, Attributes: map[string]string{
		"from":   hex.EncodeToString(from[:]),
		"to":     hex.EncodeToString(to[:]),
		"symbol": symbol,
		"amount": amountString(amount),
	}}
}

// NewDebitedEvent reports funds moved into the custody vault.
func NewDebitedEvent(principal [20]byte, symbol string, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeDebited, Attributes: map[string]string{
		"principal": hex.EncodeToString(principal[:]),
		"symbol":    symbol,
		"amount":    amountString(amount),
	}}
}

// NewCreditedEvent reports custody funds paid back out.
func NewCreditedEvent(principal [20]byte, symbol string, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeCredited, Attributes: map[string]string{
		"principal": hex.EncodeToString(principal[:]),
		"symbol":    symbol,
		"amount":    amountString(amount),
	}}
}

// NewInitializedEvent reports the module admin assignment.
func NewInitializedEvent(cfg *Config) *types.Event {
	return &types.Event{Type: EventTypeInitialized, Attributes: map[string]string{
		"admin": hex.EncodeToString(cfg.Admin[:]),
	}}
}

// NewAdminTransferredEvent reports an admin handover.
func NewAdminTransferredEvent(oldAdmin, newAdmin [20]byte) *types.Event {
	return &types.Event{Type: EventTypeAdminTransferred, Attributes: map[string]string{
		"oldAdmin": hex.EncodeToString(oldAdmin[:]),
		"newAdmin": hex.EncodeToString(newAdmin[:]),
	}}
}

// NewPauseUpdatedEvent reports a pause flag change.
func NewPauseUpdatedEvent(cfg *Config) *types.Event {
	attrs := map[string]string{"paused": "false"}
	if cfg.Paused {
		attrs["paused"] = "true"
	}
	return &types.Event{Type: EventTypePauseUpdated, Attributes: attrs}
}
