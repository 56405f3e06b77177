package multisig

import (
	"encoding/binary"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"nexafx/core/events"
	"nexafx/core/types"
)

// engineState is the persistence surface consumed by the engine.
type engineState interface {
	ConfigPut(*Config) error
	ConfigGet() (*Config, bool)
	ProposalPut(*Proposal) error
	ProposalGet(id [32]byte) (*Proposal, bool)
}

type multisigEvent struct {
	evt *types.Event
}

func (e multisigEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e multisigEvent) Event() *types.Event { return e.evt }

// Engine coordinates threshold approval of opaque operation hashes. It does
// not interpret or execute the operations; the host dispatches an operation
// once the engine reports it executed.
type Engine struct {
	state   engineState
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine creates a multisig engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetNowFunc overrides the time source. Primarily for tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
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
	e.emitter.Emit(multisigEvent{evt: event})
}

func (e *Engine) loadConfig() (*Config, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	cfg, ok := e.state.ConfigGet()
	if !ok {
		return nil, errNotInit
	}
	return cfg, nil
}

func proposalID(operation [32]byte, nonce uint64) [32]byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	return ethcrypto.Keccak256Hash(operation[:], buf[:])
}

// Initialize stores the signer set. It may be called once.
func (e *Engine) Initialize(signers [][20]byte, threshold uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if _, ok := e.state.ConfigGet(); ok {
		return errAlreadyInit
	}
	cfg := &Config{Signers: signers, Threshold: threshold}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := e.state.ConfigPut(cfg.Clone()); err != nil {
		return err
	}
	e.emit(NewInitializedEvent(cfg))
	return nil
}

// Config returns the current signer set.
func (e *Engine) Config() (*Config, error) {
	return e.loadConfig()
}

// Propose opens a proposal for the operation hash with the proposer's own
// approval counted. When the threshold is one the proposal executes
// immediately. The proposal id binds the operation to the current nonce, so a
// stale proposal cannot execute after an unrelated operation has gone through.
func (e *Engine) Propose(operation [32]byte, proposer [20]byte) (*Proposal, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsSigner(proposer) {
		return nil, ErrUnauthorized
	}
	proposal := &Proposal{
		ID:        proposalID(operation, cfg.Nonce),
		Operation: operation,
		Proposer:  proposer,
		Approvals: [][20]byte{proposer},
		CreatedAt: e.nowFn(),
	}
	if existing, ok := e.state.ProposalGet(proposal.ID); ok {
		if existing.Executed {
			return nil, ErrAlreadyExecuted
		}
		return e.approve(cfg, existing, proposer)
	}
	if err := e.maybeExecute(cfg, proposal); err != nil {
		return nil, err
	}
	if err := e.state.ProposalPut(proposal); err != nil {
		return nil, err
	}
	e.emit(NewProposedEvent(proposal))
	if proposal.Executed {
		e.emit(NewExecutedEvent(proposal))
	}
	return proposal.Clone(), nil
}

// Approve adds a signer's approval to a pending proposal, executing it once
// the threshold is met.
func (e *Engine) Approve(id [32]byte, signer [20]byte) (*Proposal, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	proposal, ok := e.state.ProposalGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	return e.approve(cfg, proposal, signer)
}

func (e *Engine) approve(cfg *Config, proposal *Proposal, signer [20]byte) (*Proposal, error) {
	if !cfg.IsSigner(signer) {
		return nil, ErrUnauthorized
	}
	if proposal.Executed {
		return nil, ErrAlreadyExecuted
	}
	if proposal.HasApproval(signer) {
		return nil, ErrAlreadyApproved
	}
	proposal.Approvals = append(proposal.Approvals, signer)
	if err := e.maybeExecute(cfg, proposal); err != nil {
		return nil, err
	}
	if err := e.state.ProposalPut(proposal); err != nil {
		return nil, err
	}
	e.emit(NewApprovedEvent(proposal, signer))
	if proposal.Executed {
		e.emit(NewExecutedEvent(proposal))
	}
	return proposal.Clone(), nil
}

// maybeExecute flips the proposal to executed and bumps the config nonce once
// enough live signers have approved. Approvals from since-removed signers do
// not count toward the threshold.
func (e *Engine) maybeExecute(cfg *Config, proposal *Proposal) error {
	live := uint32(0)
	for _, approval := range proposal.Approvals {
		if cfg.IsSigner(approval) {
			live++
		}
	}
	if live < cfg.Threshold {
		return nil
	}
	proposal.Executed = true
	cfg.Nonce++
	return e.state.ConfigPut(cfg)
}

// Proposal returns the stored proposal for the id.
func (e *Engine) Proposal(id [32]byte) (*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	proposal, ok := e.state.ProposalGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	return proposal, nil
}

// UpdateConfig replaces the signer set and threshold. The change itself must
// carry threshold approval: the caller first drives a proposal over
// UpdateConfigOperation(...) to execution, then presents its id here.
func (e *Engine) UpdateConfig(executedProposal [32]byte, signers [][20]byte, threshold uint32) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	proposal, ok := e.state.ProposalGet(executedProposal)
	if !ok {
		return ErrNotFound
	}
	if !proposal.Executed {
		return ErrUnauthorized
	}
	expected := UpdateConfigOperation(signers, threshold)
	if proposal.Operation != expected {
		return ErrUnauthorized
	}
	next := &Config{Signers: signers, Threshold: threshold, Nonce: cfg.Nonce}
	if err := next.Validate(); err != nil {
		return err
	}
	if err := e.state.ConfigPut(next.Clone()); err != nil {
		return err
	}
	e.emit(NewConfigUpdatedEvent(next))
	return nil
}

// UpdateConfigOperation derives the operation hash that authorizes a config
// replacement.
func UpdateConfigOperation(signers [][20]byte, threshold uint32) [32]byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], threshold)
	parts := make([][]byte, 0, len(signers)+2)
	parts = append(parts, []byte("multisig/update_config"), buf[:])
	for _, signer := range signers {
		s := signer
		parts = append(parts, s[:])
	}
	return ethcrypto.Keccak256Hash(parts...)
}
