package swapoffer

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"nexafx/core/types"
)

// Event type identifiers emitted by the swap engine.
const (
	EventTypeInitialized    = "swap.module.initialized"
	EventTypeFeeUpdated     = "swap.fee.updated"
	EventTypeOfferCreated   = "swap.offer.created"
	EventTypeOfferAccepted  = "swap.offer.accepted"
	EventTypeOfferCancelled = "swap.offer.cancelled"
	EventTypeFeeCollected   = "swap.fee.collected"
)

// NewInitializedEvent reports the module configuration.
func NewInitializedEvent(cfg *Config) *types.Event {
	return &types.Event{Type: EventTypeInitialized, Attributes: map[string]string{
		"admin":  hex.EncodeToString(cfg.Admin[:]),
		"feeBps": strconv.FormatUint(uint64(cfg.FeeBps), 10),
	}}
}

// NewFeeUpdatedEvent reports a fee rate or collector change.
func NewFeeUpdatedEvent(cfg *Config) *types.Event {
	return &types.Event{Type: EventTypeFeeUpdated, Attributes: map[string]string{
		"feeBps":    strconv.FormatUint(uint64(cfg.FeeBps), 10),
		"collector": hex.EncodeToString(cfg.FeeCollector[:]),
	}}
}

// NewOfferCreatedEvent reports a new open offer.
func NewOfferCreatedEvent(offer *Offer) *types.Event {
	return &types.Event{Type: EventTypeOfferCreated, Attributes: map[string]string{
		"id":            strconv.FormatUint(offer.ID, 10),
		"creator":       hex.EncodeToString(offer.Creator[:]),
		"offerToken":    offer.OfferToken,
		"offerAmount":   offer.OfferAmount.String(),
		"requestToken":  offer.RequestToken,
		"requestAmount": offer.RequestAmount.String(),
		"expiresAt":     strconv.FormatInt(offer.ExpiresAt, 10),
	}}
}

// NewOfferAcceptedEvent reports a settled swap.
func NewOfferAcceptedEvent(offer *Offer, acceptor [20]byte, net, fee *big.Int) *types.Event {
	return &types.Event{Type: EventTypeOfferAccepted, Attributes: map[string]string{
		"id":       strconv.FormatUint(offer.ID, 10),
		"creator":  hex.EncodeToString(offer.Creator[:]),
		"acceptor": hex.EncodeToString(acceptor[:]),
		"paidOut":  net.String(),
		"fee":      fee.String(),
	}}
}

// NewOfferCancelledEvent reports a cancelled offer.
func NewOfferCancelledEvent(offer *Offer) *types.Event {
	return &types.Event{Type: EventTypeOfferCancelled, Attributes: map[string]string{
		"id":      strconv.FormatUint(offer.ID, 10),
		"creator": hex.EncodeToString(offer.Creator[:]),
	}}
}

// NewFeeCollectedEvent reports the platform fee taken from an acceptance.
func NewFeeCollectedEvent(offer *Offer, collector [20]byte, fee *big.Int) *types.Event {
	return &types.Event{Type: EventTypeFeeCollected, Attributes: map[string]string{
		"id":        strconv.FormatUint(offer.ID, 10),
		"token":     offer.OfferToken,
		"amount":    fee.String(),
		"collector": hex.EncodeToString(collector[:]),
	}}
}
