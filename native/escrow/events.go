package escrow

import (
	"encoding/hex"
	"strconv"
	"strings"

	"nexafx/core/types"
)

const (
	EventTypeCreated              = "escrow.created"
	EventTypeReleased             = "escrow.released"
	EventTypeRefunded             = "escrow.refunded"
	EventTypeAutoReleased         = "escrow.auto_released"
	EventTypeDisputeInitiated     = "escrow.dispute.initiated"
	EventTypeDisputeResolved      = "escrow.dispute.resolved"
	EventTypeDisputePeriodUpdated = "escrow.dispute_period.updated"
	EventTypeInitialized          = "escrow.module.initialized"
	EventTypeAdminTransferred     = "escrow.module.admin_transferred"
	EventTypeDisputeFeeUpdated    = "escrow.module.dispute_fee_updated"
	EventTypePauseUpdated         = "escrow.module.pause_updated"
)

// NewCreatedEvent returns the canonical payload for a newly created escrow.
func NewCreatedEvent(e *Escrow) *types.Event { return newEscrowEvent(EventTypeCreated, e) }

// NewReleasedEvent returns the payload for a sender-triggered release.
func NewReleasedEvent(e *Escrow) *types.Event { return newEscrowEvent(EventTypeReleased, e) }

// NewRefundedEvent returns the payload for a refund to the sender.
func NewRefundedEvent(e *Escrow) *types.Event { return newEscrowEvent(EventTypeRefunded, e) }

// NewAutoReleasedEvent returns the payload emitted when the ordinary timeout
// elapses and funds auto-release to the recipient.
func NewAutoReleasedEvent(e *Escrow) *types.Event { return newEscrowEvent(EventTypeAutoReleased, e) }

// NewDisputeInitiatedEvent returns the payload emitted when a dispute opens.
func NewDisputeInitiatedEvent(e *Escrow) *types.Event {
	evt := newEscrowEvent(EventTypeDisputeInitiated, e)
	if e != nil && e.Dispute != nil {
		evt.Attributes["initiatedBy"] = hex.EncodeToString(e.Dispute.InitiatedBy[:])
		evt.Attributes["initiatedAt"] = strconv.FormatInt(e.Dispute.InitiatedAt, 10)
		evt.Attributes["deadline"] = strconv.FormatInt(e.Dispute.Deadline(), 10)
		if reason := strings.TrimSpace(e.Dispute.Reason); reason != "" {
			evt.Attributes["reason"] = reason
		}
	}
	return evt
}

// NewDisputeResolvedEvent returns the payload emitted on any transition into
// a dispute-resolved terminal state, including the timeout default and the
// admin emergency path.
func NewDisputeResolvedEvent(e *Escrow) *types.Event {
	evt := newEscrowEvent(EventTypeDisputeResolved, e)
	if e != nil {
		evt.Attributes["forRecipient"] = strconv.FormatBool(e.Status == StatusDisputeResolvedForRecipient)
	}
	return evt
}

// NewDisputePeriodUpdatedEvent returns the payload emitted when the sender
// adjusts the dispute window of an Active record.
func NewDisputePeriodUpdatedEvent(e *Escrow) *types.Event {
	return newEscrowEvent(EventTypeDisputePeriodUpdated, e)
}

// NewInitializedEvent returns the payload emitted once at module setup.
func NewInitializedEvent(cfg *GlobalConfig) *types.Event {
	return newConfigEvent(EventTypeInitialized, cfg)
}

// NewAdminTransferredEvent returns the payload for an admin handover.
func NewAdminTransferredEvent(oldAdmin, newAdmin [20]byte) *types.Event {
	return &types.Event{Type: EventTypeAdminTransferred, Attributes: map[string]string{
		"oldAdmin": hex.EncodeToString(oldAdmin[:]),
		"newAdmin": hex.EncodeToString(newAdmin[:]),
	}}
}

// NewDisputeFeeUpdatedEvent returns the payload for a dispute fee change.
func NewDisputeFeeUpdatedEvent(cfg *GlobalConfig) *types.Event {
	return newConfigEvent(EventTypeDisputeFeeUpdated, cfg)
}

// NewPauseUpdatedEvent returns the payload for a pause flag change.
func NewPauseUpdatedEvent(cfg *GlobalConfig) *types.Event {
	return newConfigEvent(EventTypePauseUpdated, cfg)
}

func newEscrowEvent(eventType string, e *Escrow) *types.Event {
	attrs := make(map[string]string)
	if e == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	sanitized, err := SanitizeEscrow(e)
	if err != nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = hex.EncodeToString(sanitized.ID[:])
	attrs["sender"] = hex.EncodeToString(sanitized.Sender[:])
	attrs["recipient"] = hex.EncodeToString(sanitized.Recipient[:])
	attrs["token"] = sanitized.Token
	attrs["amount"] = sanitized.Amount.String()
	attrs["createdAt"] = strconv.FormatInt(sanitized.CreatedAt, 10)
	attrs["timeoutAt"] = strconv.FormatInt(sanitized.TimeoutAt(), 10)
	attrs["disputePeriod"] = strconv.FormatInt(sanitized.DisputePeriod, 10)
	attrs["status"] = sanitized.Status.String()
	return &types.Event{Type: eventType, Attributes: attrs}
}

func newConfigEvent(eventType string, cfg *GlobalConfig) *types.Event {
	attrs := make(map[string]string)
	if cfg == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["admin"] = hex.EncodeToString(cfg.Admin[:])
	if cfg.DisputeFee != nil {
		attrs["disputeFee"] = cfg.DisputeFee.String()
	}
	attrs["paused"] = strconv.FormatBool(cfg.Paused)
	return &types.Event{Type: eventType, Attributes: attrs}
}
