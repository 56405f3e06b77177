package liquidity

import (
	"math/big"
	"time"

	"nexafx/core/events"
	"nexafx/core/types"
	"nexafx/native/common"
)

// engineState is the persistence surface consumed by the engine.
type engineState interface {
	PoolPut(*Pool) error
	PoolGet(currency string) (*Pool, bool)
	PoolCurrencies() []string
	PositionPut(*Position) error
	PositionGet(provider [20]byte, currency string) (*Position, bool)
	PositionDelete(provider [20]byte, currency string) error
	ConfigPut(*Config) error
	ConfigGet() (*Config, bool)
}

// Ledger is the balance-accounting collaborator. Stakes and rewards settle
// through transfers against the pool account.
type Ledger interface {
	Transfer(from, to [20]byte, token string, amount *big.Int) error
}

type liquidityEvent struct {
	evt *types.Event
}

func (e liquidityEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e liquidityEvent) Event() *types.Event { return e.evt }

// Engine manages per-currency liquidity pools: provider stakes with a lock
// period, reservation bookkeeping for in-flight conversions, and pro-rata
// reward distribution.
type Engine struct {
	state   engineState
	ledger  Ledger
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine creates a liquidity engine with a no-op emitter.
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
	e.emitter.Emit(liquidityEvent{evt: event})
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

// Initialize stores the module configuration. It may be called once.
func (e *Engine) Initialize(cfg *Config) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if cfg == nil || cfg.Admin == ([20]byte{}) || cfg.PoolAccount == ([20]byte{}) {
		return ErrUnauthorized
	}
	if _, ok := e.state.ConfigGet(); ok {
		return errAlreadyInit
	}
	return e.state.ConfigPut(cfg.Clone())
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

// CreatePool opens an empty pool for the currency. Admin only.
func (e *Engine) CreatePool(caller [20]byte, currency string, minThreshold *big.Int) (*Pool, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if caller != cfg.Admin {
		return nil, ErrUnauthorized
	}
	if _, ok := e.state.PoolGet(currency); ok {
		return nil, ErrPoolExists
	}
	pool := &Pool{
		Currency:     currency,
		Total:        big.NewInt(0),
		Available:    big.NewInt(0),
		Reserved:     big.NewInt(0),
		MinThreshold: big.NewInt(0),
	}
	if minThreshold != nil && minThreshold.Sign() > 0 {
		pool.MinThreshold = new(big.Int).Set(minThreshold)
	}
	if err := e.state.PoolPut(pool); err != nil {
		return nil, err
	}
	e.emit(NewPoolCreatedEvent(pool))
	return pool.Clone(), nil
}

// Pool returns the pool for the currency.
func (e *Engine) Pool(currency string) (*Pool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	pool, ok := e.state.PoolGet(currency)
	if !ok {
		return nil, ErrPoolNotFound
	}
	return pool, nil
}

// Pools returns every pool in creation order.
func (e *Engine) Pools() ([]*Pool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	currencies := e.state.PoolCurrencies()
	out := make([]*Pool, 0, len(currencies))
	for _, currency := range currencies {
		if pool, ok := e.state.PoolGet(currency); ok {
			out = append(out, pool)
		}
	}
	return out, nil
}

// Position returns the provider's stake in the currency pool.
func (e *Engine) Position(provider [20]byte, currency string) (*Position, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	position, ok := e.state.PositionGet(provider, currency)
	if !ok {
		return nil, ErrPositionNotFound
	}
	return position, nil
}

// AddLiquidity stakes amount into the currency pool. The stake transfers to
// the pool account and the position lock restarts from now.
func (e *Engine) AddLiquidity(provider [20]byte, currency string, amount *big.Int) (*Position, error) {
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
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	pool, ok := e.state.PoolGet(currency)
	if !ok {
		return nil, ErrPoolNotFound
	}
	if err := e.ledger.Transfer(provider, cfg.PoolAccount, currency, amount); err != nil {
		return nil, err
	}

	position, ok := e.state.PositionGet(provider, currency)
	if !ok {
		position = &Position{
			Provider:       provider,
			Currency:       currency,
			Amount:         big.NewInt(0),
			AccruedRewards: big.NewInt(0),
		}
	}
	position.Amount = new(big.Int).Add(position.Amount, amount)
	position.LockUntil = e.nowFn() + cfg.LockPeriod
	if err := e.state.PositionPut(position); err != nil {
		return nil, err
	}

	pool.Total = new(big.Int).Add(pool.Total, amount)
	pool.Available = new(big.Int).Add(pool.Available, amount)
	pool.addProvider(provider)
	if err := e.state.PoolPut(pool); err != nil {
		return nil, err
	}
	e.emit(NewLiquidityAddedEvent(provider, currency, amount))
	return position.Clone(), nil
}

// RemoveLiquidity withdraws amount of the provider's stake once the lock
// has expired. Reserved depth cannot be withdrawn.
func (e *Engine) RemoveLiquidity(provider [20]byte, currency string, amount *big.Int) (*Position, error) {
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
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	pool, ok := e.state.PoolGet(currency)
	if !ok {
		return nil, ErrPoolNotFound
	}
	position, ok := e.state.PositionGet(provider, currency)
	if !ok {
		return nil, ErrPositionNotFound
	}
	if e.nowFn() < position.LockUntil {
		return nil, ErrPositionLocked
	}
	if position.Amount.Cmp(amount) < 0 {
		return nil, ErrInsufficientStake
	}
	if pool.Available.Cmp(amount) < 0 {
		return nil, ErrInsufficientLiquidity
	}
	if err := e.ledger.Transfer(cfg.PoolAccount, provider, currency, amount); err != nil {
		return nil, err
	}

	position.Amount = new(big.Int).Sub(position.Amount, amount)
	pool.Total = new(big.Int).Sub(pool.Total, amount)
	pool.Available = new(big.Int).Sub(pool.Available, amount)

	if position.Amount.Sign() == 0 && position.AccruedRewards.Sign() == 0 {
		if err := e.state.PositionDelete(provider, currency); err != nil {
			return nil, err
		}
		pool.removeProvider(provider)
	} else {
		if err := e.state.PositionPut(position); err != nil {
			return nil, err
		}
	}
	if err := e.state.PoolPut(pool); err != nil {
		return nil, err
	}
	e.emit(NewLiquidityRemovedEvent(provider, currency, amount))
	return position.Clone(), nil
}

// Reserve earmarks available depth for an in-flight conversion. The
// reservation fails when it would push utilization past the cap, and emits a
// low-liquidity warning when available depth drops under the pool threshold.
func (e *Engine) Reserve(currency string, amount *big.Int) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if err := e.guard(cfg); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pool, ok := e.state.PoolGet(currency)
	if !ok {
		return ErrPoolNotFound
	}
	if pool.Available.Cmp(amount) < 0 {
		return ErrInsufficientLiquidity
	}
	reserved := new(big.Int).Add(pool.Reserved, amount)
	limit := new(big.Int).Mul(pool.Total, big.NewInt(MaxUtilizationBps))
	if new(big.Int).Mul(reserved, big.NewInt(BpsDenominator)).Cmp(limit) > 0 {
		return ErrUtilizationExceeded
	}
	pool.Reserved = reserved
	pool.Available = new(big.Int).Sub(pool.Available, amount)
	if err := e.state.PoolPut(pool); err != nil {
		return err
	}
	e.emit(NewReservedEvent(pool, amount))
	if pool.MinThreshold.Sign() > 0 && pool.Available.Cmp(pool.MinThreshold) < 0 {
		e.emit(NewLowLiquidityEvent(pool))
	}
	return nil
}

// Confirm consumes a reservation whose funds have left the pool. Confirm and
// Release settle reservations already granted by Reserve, so neither checks
// the pause flag: a pause stops new reservations but in-flight conversions
// must still be able to settle or unwind.
func (e *Engine) Confirm(currency string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pool, err := e.Pool(currency)
	if err != nil {
		return err
	}
	if pool.Reserved.Cmp(amount) < 0 {
		return ErrInvalidReservation
	}
	pool.Reserved = new(big.Int).Sub(pool.Reserved, amount)
	pool.Total = new(big.Int).Sub(pool.Total, amount)
	return e.state.PoolPut(pool)
}

// Release cancels a reservation, returning the depth to the available side.
func (e *Engine) Release(currency string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pool, err := e.Pool(currency)
	if err != nil {
		return err
	}
	if pool.Reserved.Cmp(amount) < 0 {
		return ErrInvalidReservation
	}
	pool.Reserved = new(big.Int).Sub(pool.Reserved, amount)
	pool.Available = new(big.Int).Add(pool.Available, amount)
	return e.state.PoolPut(pool)
}

// DistributeRewards allocates amount pro-rata across provider stakes. Admin
// only. The rounding residue of the integer division stays undistributed.
func (e *Engine) DistributeRewards(caller [20]byte, currency string, amount *big.Int) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if caller != cfg.Admin {
		return ErrUnauthorized
	}
	if err := e.guard(cfg); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pool, ok := e.state.PoolGet(currency)
	if !ok {
		return ErrPoolNotFound
	}
	if pool.Total.Sign() <= 0 {
		return ErrInsufficientLiquidity
	}
	for _, provider := range pool.Providers {
		position, ok := e.state.PositionGet(provider, currency)
		if !ok {
			continue
		}
		share := new(big.Int).Mul(amount, position.Amount)
		share.Div(share, pool.Total)
		if share.Sign() <= 0 {
			continue
		}
		position.AccruedRewards = new(big.Int).Add(position.AccruedRewards, share)
		if err := e.state.PositionPut(position); err != nil {
			return err
		}
	}
	e.emit(NewRewardsDistributedEvent(currency, amount))
	return nil
}

// ClaimRewards pays out the provider's accrued rewards from the pool account.
func (e *Engine) ClaimRewards(provider [20]byte, currency string) (*big.Int, error) {
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
	position, ok := e.state.PositionGet(provider, currency)
	if !ok {
		return nil, ErrPositionNotFound
	}
	if position.AccruedRewards.Sign() <= 0 {
		return nil, ErrNoRewards
	}
	payout := new(big.Int).Set(position.AccruedRewards)
	if err := e.ledger.Transfer(cfg.PoolAccount, provider, currency, payout); err != nil {
		return nil, err
	}
	position.AccruedRewards = big.NewInt(0)
	if position.Amount.Sign() == 0 {
		if err := e.state.PositionDelete(provider, currency); err != nil {
			return nil, err
		}
		if pool, ok := e.state.PoolGet(currency); ok {
			pool.removeProvider(provider)
			if err := e.state.PoolPut(pool); err != nil {
				return nil, err
			}
		}
	} else {
		if err := e.state.PositionPut(position); err != nil {
			return nil, err
		}
	}
	e.emit(NewRewardsClaimedEvent(provider, currency, payout))
	return payout, nil
}
