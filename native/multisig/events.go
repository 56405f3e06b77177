package multisig

import (
	"encoding/hex"
	"strconv"

	"nexafx/core/types"
)

// Event type identifiers emitted by the multisig engine.
const (
	EventTypeInitialized   = "multisig.module.initialized"
	EventTypeProposed      = "multisig.proposed"
	EventTypeApproved      = "multisig.approved"
	EventTypeExecuted      = "multisig.executed"
	EventTypeConfigUpdated = "multisig.config.updated"
)

// NewInitializedEvent reports the initial signer set.
func NewInitializedEvent(cfg *Config) *types.Event {
	return &types.Event{Type: EventTypeInitialized, Attributes: map[string]string{
		"signers":   strconv.Itoa(len(cfg.Signers)),
		"threshold": strconv.FormatUint(uint64(cfg.Threshold), 10),
	}}
}

// NewProposedEvent reports a new proposal.
func NewProposedEvent(p *Proposal) *types.Event {
	return &types.Event{Type: EventTypeProposed, Attributes: map[string]string{
		"id":        hex.EncodeToString(p.ID[:]),
		"operation": hex.EncodeToString(p.Operation[:]),
		"proposer":  hex.EncodeToString(p.Proposer[:]),
	}}
}

// NewApprovedEvent reports an added approval.
func NewApprovedEvent(p *Proposal, signer [20]byte) *types.Event {
	return &types.Event{Type: EventTypeApproved, Attributes: map[string]string{
		"id":        hex.EncodeToString(p.ID[:]),
		"signer":    hex.EncodeToString(signer[:]),
		"approvals": strconv.Itoa(len(p.Approvals)),
	}}
}

// NewExecutedEvent reports a proposal reaching its threshold.
func NewExecutedEvent(p *Proposal) *types.Event {
	return &types.Event{Type: EventTypeExecuted, Attributes: map[string]string{
		"id":        hex.EncodeToString(p.ID[:]),
		"operation": hex.EncodeToString(p.Operation[:]),
	}}
}

// NewConfigUpdatedEvent reports a signer-set replacement.
func NewConfigUpdatedEvent(cfg *Config) *types.Event {
	return &types.Event{Type: EventTypeConfigUpdated, Attributes: map[string]string{
		"signers":   strconv.Itoa(len(cfg.Signers)),
		"threshold": strconv.FormatUint(uint64(cfg.Threshold), 10),
	}}
}
