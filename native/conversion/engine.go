package conversion

import (
	"math/big"
	"time"

	"nexafx/core/events"
	"nexafx/core/types"
	"nexafx/native/common"
	"nexafx/native/fees"
)

// engineState is the persistence surface consumed by the engine.
type engineState interface {
	RatePut(*ExchangeRate) error
	RateGet(pair string) (*ExchangeRate, bool)
	LockPut(*RateLock) error
	LockGet(user [20]byte, pair string) (*RateLock, bool)
	LockDelete(user [20]byte, pair string) error
	TxPut(*ConversionTx) error
	TxGet(id uint64) (*ConversionTx, bool)
	TxCount() uint64
	NextTxID() (uint64, error)
	ConfigPut(*Config) error
	ConfigGet() (*Config, bool)
}

// Ledger is the balance-accounting collaborator. Conversions settle through
// account-to-account transfers against the pool account.
type Ledger interface {
	Transfer(from, to [20]byte, token string, amount *big.Int) error
}

// Liquidity tracks pool depth for the target currency of each conversion.
// Reserve earmarks depth for an in-flight conversion, Confirm consumes the
// reservation once the transfer settles, and Release cancels it on failure.
type Liquidity interface {
	Reserve(currency string, amount *big.Int) error
	Confirm(currency string, amount *big.Int) error
	Release(currency string, amount *big.Int) error
}

type conversionEvent struct {
	evt *types.Event
}

func (e conversionEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e conversionEvent) Event() *types.Event { return e.evt }

// Engine executes currency conversions at oracle-published or user-locked
// rates, routing fees per the configured split policy.
type Engine struct {
	state     engineState
	ledger    Ledger
	liquidity Liquidity
	emitter   events.Emitter
	nowFn     func() int64
}

// NewEngine creates a conversion engine with a no-op emitter.
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

// SetLiquidity configures the optional pool-depth collaborator. A nil
// liquidity skips reservation bookkeeping.
func (e *Engine) SetLiquidity(liquidity Liquidity) { e.liquidity = liquidity }

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
	e.emitter.Emit(conversionEvent{evt: event})
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
	if err := cfg.Policy.Validate(); err != nil {
		return err
	}
	if _, ok := e.state.ConfigGet(); ok {
		return errAlreadyInit
	}
	if err := e.state.ConfigPut(cfg.Clone()); err != nil {
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

// SetLimits replaces the min and max conversion amounts. Admin only.
func (e *Engine) SetLimits(caller [20]byte, min, max *big.Int) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if caller != cfg.Admin {
		return ErrUnauthorized
	}
	if min != nil && max != nil && min.Cmp(max) > 0 {
		return ErrInvalidAmount
	}
	cfg.MinAmount = min
	cfg.MaxAmount = max
	return e.state.ConfigPut(cfg.Clone())
}

// SetPolicy replaces the fee split policy. Admin only.
func (e *Engine) SetPolicy(caller [20]byte, policy fees.SplitPolicy) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if caller != cfg.Admin {
		return ErrUnauthorized
	}
	if err := policy.Validate(); err != nil {
		return err
	}
	cfg.Policy = policy
	return e.state.ConfigPut(cfg)
}

// UpdateRate publishes a quote for a directed pair. Oracle or admin only.
func (e *Engine) UpdateRate(caller [20]byte, from, to string, rate *big.Int, validityDuration int64) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if caller != cfg.Oracle && caller != cfg.Admin {
		return ErrUnauthorized
	}
	fromCur, err := NormalizeCurrency(from)
	if err != nil {
		return err
	}
	toCur, err := NormalizeCurrency(to)
	if err != nil {
		return err
	}
	if fromCur == toCur {
		return ErrSamePair
	}
	if rate == nil || rate.Sign() <= 0 {
		return ErrInvalidRate
	}
	if validityDuration <= 0 {
		return ErrInvalidRate
	}
	quote := &ExchangeRate{
		From:             fromCur,
		To:               toCur,
		Rate:             new(big.Int).Set(rate),
		UpdatedAt:        e.nowFn(),
		ValidityDuration: validityDuration,
	}
	if err := e.state.RatePut(quote); err != nil {
		return err
	}
	e.emit(NewRateUpdatedEvent(quote))
	return nil
}

// GetRate returns the published quote for the pair, fresh or not.
func (e *Engine) GetRate(from, to string) (*ExchangeRate, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	fromCur, err := NormalizeCurrency(from)
	if err != nil {
		return nil, err
	}
	toCur, err := NormalizeCurrency(to)
	if err != nil {
		return nil, err
	}
	rate, ok := e.state.RateGet(PairKey(fromCur, toCur))
	if !ok {
		return nil, ErrRateUnavailable
	}
	return rate, nil
}

// LockRate pins the current fresh rate for the user until the configured
// lock window elapses. Relocking replaces any previous lock for the pair.
func (e *Engine) LockRate(user [20]byte, from, to string) (*RateLock, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := e.guard(cfg); err != nil {
		return nil, err
	}
	rate, err := e.GetRate(from, to)
	if err != nil {
		return nil, err
	}
	now := e.nowFn()
	if !rate.FreshAt(now) {
		return nil, ErrRateStale
	}
	lock := &RateLock{
		User:      user,
		From:      rate.From,
		To:        rate.To,
		Rate:      new(big.Int).Set(rate.Rate),
		LockedAt:  now,
		ExpiresAt: now + cfg.LockDuration,
	}
	if err := e.state.LockPut(lock); err != nil {
		return nil, err
	}
	e.emit(NewRateLockedEvent(lock))
	return lock.Clone(), nil
}

// GetRateLock returns the user's lock for the pair if it is still valid.
func (e *Engine) GetRateLock(user [20]byte, from, to string) (*RateLock, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	fromCur, err := NormalizeCurrency(from)
	if err != nil {
		return nil, err
	}
	toCur, err := NormalizeCurrency(to)
	if err != nil {
		return nil, err
	}
	lock, ok := e.state.LockGet(user, PairKey(fromCur, toCur))
	if !ok || !lock.ValidAt(e.nowFn()) {
		return nil, nil
	}
	return lock, nil
}

// resolveRate picks the user's valid lock when present, consuming it,
// otherwise the fresh published quote.
func (e *Engine) resolveRate(user [20]byte, pair string, now int64) (*big.Int, bool, error) {
	if lock, ok := e.state.LockGet(user, pair); ok {
		if lock.ValidAt(now) {
			if err := e.state.LockDelete(user, pair); err != nil {
				return nil, false, err
			}
			return new(big.Int).Set(lock.Rate), true, nil
		}
		// Expired locks are dropped lazily.
		if err := e.state.LockDelete(user, pair); err != nil {
			return nil, false, err
		}
	}
	rate, ok := e.state.RateGet(pair)
	if !ok {
		return nil, false, ErrRateUnavailable
	}
	if !rate.FreshAt(now) {
		return nil, false, ErrRateStale
	}
	return new(big.Int).Set(rate.Rate), false, nil
}

// Convert exchanges amount of the source currency for the target currency at
// the resolved rate, deducting the platform fee from the target leg. The
// user pays the source amount to the pool account and receives the net
// target amount from it.
func (e *Engine) Convert(user [20]byte, from, to string, amount *big.Int) (*ConversionTx, error) {
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
	fromCur, err := NormalizeCurrency(from)
	if err != nil {
		return nil, err
	}
	toCur, err := NormalizeCurrency(to)
	if err != nil {
		return nil, err
	}
	if fromCur == toCur {
		return nil, ErrSamePair
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if cfg.MinAmount != nil && cfg.MinAmount.Sign() > 0 && amount.Cmp(cfg.MinAmount) < 0 {
		return nil, ErrBelowMinimum
	}
	if cfg.MaxAmount != nil && cfg.MaxAmount.Sign() > 0 && amount.Cmp(cfg.MaxAmount) > 0 {
		return nil, ErrAboveMaximum
	}

	now := e.nowFn()
	pair := PairKey(fromCur, toCur)
	rate, rateLocked, err := e.resolveRate(user, pair, now)
	if err != nil {
		return nil, err
	}

	gross := new(big.Int).Mul(amount, rate)
	gross.Div(gross, big.NewInt(RateScale))
	if gross.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	split, err := fees.Apply(cfg.Policy, gross)
	if err != nil {
		return nil, err
	}

	if e.liquidity != nil {
		if err := e.liquidity.Reserve(toCur, gross); err != nil {
			return nil, err
		}
	}
	if err := e.settleTransfers(cfg, user, fromCur, toCur, amount, split); err != nil {
		if e.liquidity != nil {
			_ = e.liquidity.Release(toCur, gross)
		}
		return nil, err
	}
	if e.liquidity != nil {
		if err := e.liquidity.Confirm(toCur, gross); err != nil {
			return nil, err
		}
	}

	id, err := e.state.NextTxID()
	if err != nil {
		return nil, err
	}
	tx := &ConversionTx{
		ID:          id,
		User:        user,
		From:        fromCur,
		To:          toCur,
		AmountIn:    new(big.Int).Set(amount),
		AmountOut:   split.Net,
		TreasuryFee: split.TreasuryFee,
		RewardFee:   split.RewardFee,
		Rate:        rate,
		RateLocked:  rateLocked,
		Timestamp:   now,
	}
	if err := e.state.TxPut(tx); err != nil {
		return nil, err
	}
	e.emit(NewConvertedEvent(tx))
	return tx.Clone(), nil
}

func (e *Engine) settleTransfers(cfg *Config, user [20]byte, fromCur, toCur string, amount *big.Int, split fees.Split) error {
	if err := e.ledger.Transfer(user, cfg.PoolAccount, fromCur, amount); err != nil {
		return err
	}
	if err := e.ledger.Transfer(cfg.PoolAccount, user, toCur, split.Net); err != nil {
		return err
	}
	if split.TreasuryFee.Sign() > 0 {
		if err := e.ledger.Transfer(cfg.PoolAccount, cfg.Policy.TreasuryWallet, toCur, split.TreasuryFee); err != nil {
			return err
		}
	}
	if split.RewardFee.Sign() > 0 {
		if err := e.ledger.Transfer(cfg.PoolAccount, cfg.Policy.RewardPoolWallet, toCur, split.RewardFee); err != nil {
			return err
		}
	}
	return nil
}

// GetConversion returns the stored record for the id.
func (e *Engine) GetConversion(id uint64) (*ConversionTx, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	tx, ok := e.state.TxGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	return tx, nil
}

// ConversionCount returns the number of executed conversions.
func (e *Engine) ConversionCount() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.TxCount(), nil
}

// GetConversionsByUser returns the user's records in execution order.
func (e *Engine) GetConversionsByUser(user [20]byte) ([]*ConversionTx, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	count := e.state.TxCount()
	var out []*ConversionTx
	for id := uint64(0); id < count; id++ {
		tx, ok := e.state.TxGet(id)
		if !ok {
			continue
		}
		if tx.User == user {
			out = append(out, tx)
		}
	}
	return out, nil
}
