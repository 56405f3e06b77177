package escrow

import (
	"encoding/binary"
	"math/big"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"nexafx/core/events"
	"nexafx/core/types"
	"nexafx/native/common"
)

// engineState is the persistence surface consumed by the engine. The host
// commits it atomically with the invocation, so the engine performs plain
// read-modify-write with no locking of its own.
type engineState interface {
	EscrowPut(*Escrow) error
	EscrowGet(id [32]byte) (*Escrow, bool)
	EscrowBySequence(seq uint64) (*Escrow, bool)
	EscrowCount() uint64
	NextSequence() (uint64, error)
	ConfigPut(*GlobalConfig) error
	ConfigGet() (*GlobalConfig, bool)
}

// Ledger is the external balance-accounting collaborator. Debit moves funds
// from a principal into custody and may fail on insufficient balance; Credit
// pays custody funds out and cannot fail for a previously escrowed amount.
type Ledger interface {
	Debit(principal [20]byte, token string, amount *big.Int) error
	Credit(principal [20]byte, token string, amount *big.Int) error
}

type escrowEvent struct {
	evt *types.Event
}

func (e escrowEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e escrowEvent) Event() *types.Event { return e.evt }

// Engine is a deterministic state machine over a collection of escrow
// records. It validates authorization and state preconditions, computes the
// next state, and invokes the ledger exactly once when funds move.
type Engine struct {
	state   engineState
	ledger  Ledger
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine creates an escrow engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the balance-accounting collaborator.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetNowFunc overrides the time source used by the engine. Primarily
// intended for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(escrowEvent{evt: event})
}

// now reads the host clock once per invocation; all guards evaluated within
// that invocation use the same instant.
func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func (e *Engine) guardMutation() error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	return common.Guard(cfg, common.ModuleEscrow)
}

func (e *Engine) loadEscrow(id [32]byte) (*Escrow, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	esc, ok := e.state.EscrowGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	return esc, nil
}

func (e *Engine) storeEscrow(esc *Escrow) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.state.EscrowPut(esc)
}

func escrowID(sender, recipient [20]byte, sequence uint64) [32]byte {
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], sequence)
	return ethcrypto.Keccak256Hash(sender[:], recipient[:], seq[:])
}

// Create escrows amount of token from the sender and allocates a new Active
// record. The ledger debit happens before the record is stored; a failed
// debit aborts the call with no record allocated.
func (e *Engine) Create(sender, recipient [20]byte, token string, amount *big.Int, timeoutDuration, disputePeriod int64) (*Info, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.ledger == nil {
		return nil, errNilLedger
	}
	if err := e.guardMutation(); err != nil {
		observe("create", err)
		return nil, err
	}
	normalized, err := NormalizeToken(token)
	if err != nil {
		return nil, err
	}
	amt := cloneBigInt(amount)
	if amt.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if sender == ([20]byte{}) || recipient == ([20]byte{}) || sender == recipient {
		return nil, ErrInvalidAddress
	}
	if timeoutDuration <= 0 || disputePeriod <= 0 {
		return nil, ErrInvalidTimestamp
	}
	if err := e.ledger.Debit(sender, normalized, amt); err != nil {
		observe("create", err)
		return nil, err
	}
	seq, err := e.state.NextSequence()
	if err != nil {
		return nil, err
	}
	esc := &Escrow{
		ID:              escrowID(sender, recipient, seq),
		Sender:          sender,
		Recipient:       recipient,
		Token:           normalized,
		Amount:          amt,
		CreatedAt:       e.now(),
		TimeoutDuration: timeoutDuration,
		DisputePeriod:   disputePeriod,
		Status:          StatusActive,
		Sequence:        seq,
	}
	if err := e.storeEscrow(esc); err != nil {
		return nil, err
	}
	e.emit(NewCreatedEvent(esc))
	observe("create", nil)
	return esc.Info(), nil
}

// Release settles the escrow in favour of the recipient. Only the sender may
// release, and only while the record is Active.
func (e *Engine) Release(id [32]byte, caller [20]byte) (*Info, error) {
	if err := e.guardMutation(); err != nil {
		observe("release", err)
		return nil, err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return nil, err
	}
	if esc.Status != StatusActive {
		observe("release", ErrStateMismatch)
		return nil, ErrStateMismatch
	}
	if caller != esc.Sender {
		observe("release", ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	return e.settle(esc, esc.Recipient, StatusReleased, NewReleasedEvent, "release")
}

// Refund returns the escrowed funds to the sender. Either party may trigger
// it while the record is Active.
func (e *Engine) Refund(id [32]byte, caller [20]byte) (*Info, error) {
	if err := e.guardMutation(); err != nil {
		observe("refund", err)
		return nil, err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return nil, err
	}
	if esc.Status != StatusActive {
		observe("refund", ErrStateMismatch)
		return nil, ErrStateMismatch
	}
	if caller != esc.Sender && caller != esc.Recipient {
		observe("refund", ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	return e.settle(esc, esc.Sender, StatusRefunded, NewRefundedEvent, "refund")
}

// CheckTimeout auto-releases an Active escrow once its deadline has elapsed.
// Anyone may poll it; it fails with ErrStateMismatch before the deadline and
// once the record has left Active, so a disputed record can only be settled
// through the dispute path.
func (e *Engine) CheckTimeout(id [32]byte) (*Info, error) {
	if err := e.guardMutation(); err != nil {
		observe("check_timeout", err)
		return nil, err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return nil, err
	}
	if esc.Status != StatusActive {
		observe("check_timeout", ErrStateMismatch)
		return nil, ErrStateMismatch
	}
	if e.now() < esc.TimeoutAt() {
		observe("check_timeout", ErrStateMismatch)
		return nil, ErrStateMismatch
	}
	return e.settle(esc, esc.Recipient, StatusAutoReleased, NewAutoReleasedEvent, "check_timeout")
}

// InitiateDispute opens a dispute on an Active record. The dispute period is
// snapshotted from the record so later period edits cannot move the deadline.
// A configured dispute fee is collected from the disputant via the ledger
// before any state changes.
func (e *Engine) InitiateDispute(id [32]byte, caller [20]byte, reason string) (*Info, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := common.Guard(cfg, common.ModuleEscrow); err != nil {
		observe("initiate_dispute", err)
		return nil, err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return nil, err
	}
	if esc.Status != StatusActive || esc.Dispute != nil {
		observe("initiate_dispute", ErrStateMismatch)
		return nil, ErrStateMismatch
	}
	if caller != esc.Sender && caller != esc.Recipient {
		observe("initiate_dispute", ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	if cfg.DisputeFee != nil && cfg.DisputeFee.Sign() > 0 {
		if e.ledger == nil {
			return nil, errNilLedger
		}
		if err := e.ledger.Debit(caller, esc.Token, cfg.DisputeFee); err != nil {
			observe("initiate_dispute", err)
			return nil, err
		}
	}
	esc.Dispute = &DisputeInfo{
		InitiatedBy:   caller,
		InitiatedAt:   e.now(),
		DisputePeriod: esc.DisputePeriod,
		Reason:        reason,
	}
	esc.Status = StatusDisputed
	if err := e.storeEscrow(esc); err != nil {
		return nil, err
	}
	e.emit(NewDisputeInitiatedEvent(esc))
	observe("initiate_dispute", nil)
	return esc.Info(), nil
}

// ResolveDisputeForRecipient settles a Disputed escrow in favour of the
// recipient. Admin only.
func (e *Engine) ResolveDisputeForRecipient(id [32]byte, caller [20]byte) (*Info, error) {
	return e.resolveDispute(id, caller, true, "resolve_dispute_for_recipient")
}

// ResolveDisputeForSender settles a Disputed escrow in favour of the sender.
// Admin only.
func (e *Engine) ResolveDisputeForSender(id [32]byte, caller [20]byte) (*Info, error) {
	return e.resolveDispute(id, caller, false, "resolve_dispute_for_sender")
}

func (e *Engine) resolveDispute(id [32]byte, caller [20]byte, forRecipient bool, op string) (*Info, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := common.Guard(cfg, common.ModuleEscrow); err != nil {
		observe(op, err)
		return nil, err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return nil, err
	}
	if esc.Status != StatusDisputed {
		observe(op, ErrStateMismatch)
		return nil, ErrStateMismatch
	}
	if cfg.Admin == ([20]byte{}) || caller != cfg.Admin {
		observe(op, ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	if forRecipient {
		return e.settle(esc, esc.Recipient, StatusDisputeResolvedForRecipient, NewDisputeResolvedEvent, op)
	}
	return e.settle(esc, esc.Sender, StatusDisputeResolvedForSender, NewDisputeResolvedEvent, op)
}

// CheckDisputeTimeout applies the default resolution once the dispute window
// has expired: funds go to the recipient. Anyone may poll it.
func (e *Engine) CheckDisputeTimeout(id [32]byte) (*Info, error) {
	if err := e.guardMutation(); err != nil {
		observe("check_dispute_timeout", err)
		return nil, err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return nil, err
	}
	if esc.Status != StatusDisputed || esc.Dispute == nil {
		observe("check_dispute_timeout", ErrStateMismatch)
		return nil, ErrStateMismatch
	}
	if e.now() < esc.Dispute.Deadline() {
		observe("check_dispute_timeout", ErrStateMismatch)
		return nil, ErrStateMismatch
	}
	return e.settle(esc, esc.Recipient, StatusDisputeResolvedForRecipient, NewDisputeResolvedEvent, "check_dispute_timeout")
}

// AdminResolveDispute is the emergency override: the admin may settle an
// Active or Disputed record for either party, bypassing the normal path.
func (e *Engine) AdminResolveDispute(id [32]byte, caller [20]byte, resolveForRecipient bool) (*Info, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := common.Guard(cfg, common.ModuleEscrow); err != nil {
		observe("admin_resolve_dispute", err)
		return nil, err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return nil, err
	}
	if esc.Status != StatusActive && esc.Status != StatusDisputed {
		observe("admin_resolve_dispute", ErrStateMismatch)
		return nil, ErrStateMismatch
	}
	if cfg.Admin == ([20]byte{}) || caller != cfg.Admin {
		observe("admin_resolve_dispute", ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	if resolveForRecipient {
		return e.settle(esc, esc.Recipient, StatusDisputeResolvedForRecipient, NewDisputeResolvedEvent, "admin_resolve_dispute")
	}
	return e.settle(esc, esc.Sender, StatusDisputeResolvedForSender, NewDisputeResolvedEvent, "admin_resolve_dispute")
}

// UpdateDisputePeriod adjusts the dispute window of an Active record with no
// dispute yet. Sender only.
func (e *Engine) UpdateDisputePeriod(id [32]byte, caller [20]byte, newPeriod int64) (*Info, error) {
	if err := e.guardMutation(); err != nil {
		observe("update_dispute_period", err)
		return nil, err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return nil, err
	}
	if esc.Status != StatusActive || esc.Dispute != nil {
		observe("update_dispute_period", ErrStateMismatch)
		return nil, ErrStateMismatch
	}
	if caller != esc.Sender {
		observe("update_dispute_period", ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	if newPeriod <= 0 {
		observe("update_dispute_period", ErrInvalidTimestamp)
		return nil, ErrInvalidTimestamp
	}
	esc.DisputePeriod = newPeriod
	if err := e.storeEscrow(esc); err != nil {
		return nil, err
	}
	e.emit(NewDisputePeriodUpdatedEvent(esc))
	observe("update_dispute_period", nil)
	return esc.Info(), nil
}

// settle performs the single funds-moved transition: exactly one ledger
// credit, then the status flip and event. All preconditions have been
// checked by the caller.
func (e *Engine) settle(esc *Escrow, to [20]byte, status Status, eventFn func(*Escrow) *types.Event, op string) (*Info, error) {
	if e.ledger == nil {
		return nil, errNilLedger
	}
	amount := cloneBigInt(esc.Amount)
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := e.ledger.Credit(to, esc.Token, amount); err != nil {
		observe(op, err)
		return nil, err
	}
	esc.Status = status
	if err := e.storeEscrow(esc); err != nil {
		return nil, err
	}
	e.emit(eventFn(esc))
	observe(op, nil)
	return esc.Info(), nil
}
