package escrow

import (
	"math/big"
	"strings"
)

// Status represents the lifecycle states supported by the escrow engine.
// Active is the only initial state and Disputed the only intermediate one;
// every other status is terminal.
type Status uint8

const (
	StatusActive Status = iota
	StatusDisputed
	StatusReleased
	StatusRefunded
	StatusAutoReleased
	StatusDisputeResolvedForRecipient
	StatusDisputeResolvedForSender
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	return s <= StatusDisputeResolvedForSender
}

// Terminal reports whether the status admits no further transition. Funds
// have moved exactly once by the time a record carries a terminal status.
func (s Status) Terminal() bool {
	switch s {
	case StatusReleased, StatusRefunded, StatusAutoReleased,
		StatusDisputeResolvedForRecipient, StatusDisputeResolvedForSender:
		return true
	default:
		return false
	}
}

// String returns the canonical lowercase name used in events and queries.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusDisputed:
		return "disputed"
	case StatusReleased:
		return "released"
	case StatusRefunded:
		return "refunded"
	case StatusAutoReleased:
		return "auto_released"
	case StatusDisputeResolvedForRecipient:
		return "dispute_resolved_for_recipient"
	case StatusDisputeResolvedForSender:
		return "dispute_resolved_for_sender"
	default:
		return "unknown"
	}
}

// DisputeInfo captures the dispute opened against an escrow. The dispute
// period is snapshotted at initiation time so later edits to the record never
// move an open dispute's deadline.
type DisputeInfo struct {
	InitiatedBy   [20]byte
	InitiatedAt   int64
	DisputePeriod int64
	Reason        string
}

// Clone returns a deep copy of the dispute info.
func (d *DisputeInfo) Clone() *DisputeInfo {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
}

// Deadline returns the instant at which the dispute becomes eligible for
// default resolution.
func (d *DisputeInfo) Deadline() int64 {
	if d == nil {
		return 0
	}
	return d.InitiatedAt + d.DisputePeriod
}

// Escrow is the persisted record for a single custody agreement. Identity,
// parties, token and amount are immutable after creation; only Status,
// Dispute and DisputePeriod ever change, and DisputePeriod only while the
// record is Active with no dispute present.
type Escrow struct {
	ID              [32]byte
	Sender          [20]byte
	Recipient       [20]byte
	Token           string
	Amount          *big.Int
	CreatedAt       int64
	TimeoutDuration int64
	DisputePeriod   int64
	Status          Status
	Dispute         *DisputeInfo
	// Sequence is the creation ordinal, used for stable query iteration.
	Sequence uint64
}

// Clone returns a deep copy so callers can mutate the copy without affecting
// the stored instance.
func (e *Escrow) Clone() *Escrow {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Amount != nil {
		clone.Amount = new(big.Int).Set(e.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	clone.Dispute = e.Dispute.Clone()
	return &clone
}

// TimeoutAt returns the instant at which auto-release becomes eligible.
func (e *Escrow) TimeoutAt() int64 {
	if e == nil {
		return 0
	}
	return e.CreatedAt + e.TimeoutDuration
}

// Info is the caller-facing snapshot of an escrow record.
type Info struct {
	ID            [32]byte
	Sender        [20]byte
	Recipient     [20]byte
	Token         string
	Amount        *big.Int
	CreatedAt     int64
	TimeoutAt     int64
	DisputePeriod int64
	Status        Status
	HasDispute    bool
}

// Info builds the public snapshot for the record.
func (e *Escrow) Info() *Info {
	if e == nil {
		return nil
	}
	amount := big.NewInt(0)
	if e.Amount != nil {
		amount = new(big.Int).Set(e.Amount)
	}
	return &Info{
		ID:            e.ID,
		Sender:        e.Sender,
		Recipient:     e.Recipient,
		Token:         e.Token,
		Amount:        amount,
		CreatedAt:     e.CreatedAt,
		TimeoutAt:     e.TimeoutAt(),
		DisputePeriod: e.DisputePeriod,
		Status:        e.Status,
		HasDispute:    e.Dispute != nil,
	}
}

// NormalizeToken canonicalises a token symbol. Asset existence is the
// ledger's concern; the escrow engine only requires a non-empty symbol.
func NormalizeToken(symbol string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(symbol))
	if trimmed == "" {
		return "", ErrInvalidAddress
	}
	return trimmed, nil
}

// SanitizeEscrow validates and normalises the supplied record, returning a
// cloned instance with canonical token casing and a non-nil amount. The
// original value is not mutated.
func SanitizeEscrow(e *Escrow) (*Escrow, error) {
	if e == nil {
		return nil, ErrNotFound
	}
	clone := e.Clone()
	token, err := NormalizeToken(clone.Token)
	if err != nil {
		return nil, err
	}
	clone.Token = token
	if clone.Amount == nil || clone.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if clone.Sender == clone.Recipient || clone.Sender == ([20]byte{}) || clone.Recipient == ([20]byte{}) {
		return nil, ErrInvalidAddress
	}
	if clone.TimeoutDuration <= 0 || clone.DisputePeriod <= 0 {
		return nil, ErrInvalidTimestamp
	}
	if !clone.Status.Valid() {
		return nil, ErrStateMismatch
	}
	return clone, nil
}
