package swapoffer

import (
	"math/big"
	"time"

	"nexafx/core/events"
	"nexafx/core/types"
	"nexafx/native/common"
)

// engineState is the persistence surface consumed by the engine.
type engineState interface {
	OfferPut(*Offer) error
	OfferGet(id uint64) (*Offer, bool)
	OfferDelete(id uint64) error
	OfferCount() uint64
	NextOfferID() (uint64, error)
	ConfigPut(*Config) error
	ConfigGet() (*Config, bool)
}

// Ledger is the balance-accounting collaborator. Offered tokens are debited
// into the per-token custody vault at creation and credited back out when
// the offer settles or is cancelled; the requested leg moves account to
// account.
type Ledger interface {
	Debit(principal [20]byte, token string, amount *big.Int) error
	Credit(principal [20]byte, token string, amount *big.Int) error
	Transfer(from, to [20]byte, token string, amount *big.Int) error
}

type swapEvent struct {
	evt *types.Event
}

func (e swapEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e swapEvent) Event() *types.Event { return e.evt }

// Engine matches open token-for-token offers. The offered side is held in
// custody for the lifetime of the offer, so acceptance needs only the
// acceptor's requested-side balance to settle.
type Engine struct {
	state   engineState
	ledger  Ledger
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine creates a swap engine with a no-op emitter.
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
	e.emitter.Emit(swapEvent{evt: event})
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

func (e *Engine) guard(cfg *Config) error {
	if cfg.Paused {
		return common.ErrModulePaused
	}
	return nil
}

// Initialize stores the module configuration with the default fee and the
// admin as fee collector. It may be called once.
func (e *Engine) Initialize(admin [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if admin == ([20]byte{}) {
		return ErrInvalidAddress
	}
	if _, ok := e.state.ConfigGet(); ok {
		return errAlreadyInit
	}
	cfg := &Config{Admin: admin, FeeBps: DefaultFeeBps, FeeCollector: admin}
	if err := e.state.ConfigPut(cfg); err != nil {
		return err
	}
	e.emit(NewInitializedEvent(cfg))
	return nil
}

// Config returns the current module configuration.
func (e *Engine) Config() (*Config, error) {
	return e.loadConfig()
}

// SetPaused toggles the module pause flag. Admin only; works while paused.
func (e *Engine) SetPaused(caller [20]byte, paused bool) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if caller != cfg.Admin {
		return ErrUnauthorized
	}
	cfg.Paused = paused
	return e.state.ConfigPut(cfg)
}

// UpdateFee replaces the fee rate and collector. Admin only; the rate is
// capped at MaxFeeBps.
func (e *Engine) UpdateFee(caller [20]byte, feeBps uint32, collector [20]byte) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if caller != cfg.Admin {
		return ErrUnauthorized
	}
	if feeBps > MaxFeeBps {
		return ErrInvalidFee
	}
	if collector == ([20]byte{}) {
		return ErrInvalidAddress
	}
	cfg.FeeBps = feeBps
	cfg.FeeCollector = collector
	if err := e.state.ConfigPut(cfg); err != nil {
		return err
	}
	e.emit(NewFeeUpdatedEvent(cfg))
	return nil
}

// CreateOffer debits the offered amount into custody and records the open
// offer. IDs are sequential starting at one.
func (e *Engine) CreateOffer(creator [20]byte, offerToken string, offerAmount *big.Int, requestToken string, requestAmount *big.Int, expiresAt int64) (*Offer, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := e.guard(cfg); err != nil {
		return nil, err
	}
	if e.ledger == nil {
		return nil, errNilLedger
	}
	if creator == ([20]byte{}) {
		return nil, ErrInvalidAddress
	}
	offerSym, err := NormalizeToken(offerToken)
	if err != nil {
		return nil, err
	}
	requestSym, err := NormalizeToken(requestToken)
	if err != nil {
		return nil, err
	}
	if offerAmount == nil || offerAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if requestAmount == nil || requestAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	now := e.nowFn()
	if expiresAt <= now {
		return nil, ErrInvalidExpiry
	}

	if err := e.ledger.Debit(creator, offerSym, offerAmount); err != nil {
		return nil, err
	}
	id, err := e.state.NextOfferID()
	if err != nil {
		return nil, err
	}
	offer := &Offer{
		ID:            id,
		Creator:       creator,
		OfferToken:    offerSym,
		OfferAmount:   new(big.Int).Set(offerAmount),
		RequestToken:  requestSym,
		RequestAmount: new(big.Int).Set(requestAmount),
		CreatedAt:     now,
		ExpiresAt:     expiresAt,
	}
	if err := e.state.OfferPut(offer); err != nil {
		return nil, err
	}
	e.emit(NewOfferCreatedEvent(offer))
	return offer.Clone(), nil
}

// AcceptOffer settles the swap: the requested amount moves from acceptor to
// creator, then the custodied offered amount pays out to the acceptor net of
// the platform fee. The requested leg runs first so a payment failure leaves
// the offer and its custody untouched.
func (e *Engine) AcceptOffer(acceptor [20]byte, id uint64) (*Offer, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := e.guard(cfg); err != nil {
		return nil, err
	}
	if e.ledger == nil {
		return nil, errNilLedger
	}
	offer, ok := e.state.OfferGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	now := e.nowFn()
	if offer.ExpiredAt(now) {
		return nil, ErrOfferExpired
	}

	fee := cfg.FeeOn(offer.OfferAmount)
	net := new(big.Int).Sub(offer.OfferAmount, fee)

	if err := e.ledger.Transfer(acceptor, offer.Creator, offer.RequestToken, offer.RequestAmount); err != nil {
		return nil, err
	}
	if err := e.ledger.Credit(acceptor, offer.OfferToken, net); err != nil {
		return nil, err
	}
	if fee.Sign() > 0 {
		if err := e.ledger.Credit(cfg.FeeCollector, offer.OfferToken, fee); err != nil {
			return nil, err
		}
		e.emit(NewFeeCollectedEvent(offer, cfg.FeeCollector, fee))
	}
	if err := e.state.OfferDelete(id); err != nil {
		return nil, err
	}
	e.emit(NewOfferAcceptedEvent(offer, acceptor, net, fee))
	return offer.Clone(), nil
}

// CancelOffer returns the custodied amount to the creator and removes the
// offer. Creator only; cancellation is allowed past expiry.
func (e *Engine) CancelOffer(caller [20]byte, id uint64) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if err := e.guard(cfg); err != nil {
		return err
	}
	if e.ledger == nil {
		return errNilLedger
	}
	offer, ok := e.state.OfferGet(id)
	if !ok {
		return ErrNotFound
	}
	if caller != offer.Creator {
		return ErrUnauthorized
	}
	if err := e.ledger.Credit(offer.Creator, offer.OfferToken, offer.OfferAmount); err != nil {
		return err
	}
	if err := e.state.OfferDelete(id); err != nil {
		return err
	}
	e.emit(NewOfferCancelledEvent(offer))
	return nil
}

// GetOffer returns the open offer for the id.
func (e *Engine) GetOffer(id uint64) (*Offer, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	offer, ok := e.state.OfferGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	return offer, nil
}

// GetOpenOffers returns every open offer in creation order. Accepted and
// cancelled offers are removed from state and never appear.
func (e *Engine) GetOpenOffers() ([]*Offer, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	issued := e.state.OfferCount()
	var out []*Offer
	for id := uint64(1); id <= issued; id++ {
		if offer, ok := e.state.OfferGet(id); ok {
			out = append(out, offer)
		}
	}
	return out, nil
}

// GetOffersByCreator returns the creator's open offers in creation order.
func (e *Engine) GetOffersByCreator(creator [20]byte) ([]*Offer, error) {
	offers, err := e.GetOpenOffers()
	if err != nil {
		return nil, err
	}
	var out []*Offer
	for _, offer := range offers {
		if offer.Creator == creator {
			out = append(out, offer)
		}
	}
	return out, nil
}
