package ledger

import (
	"math/big"

	"nexafx/core/events"
	"nexafx/core/types"
	"nexafx/native/common"
)

// engineState is the persistence surface consumed by the engine.
type engineState interface {
	AssetPut(*Asset) error
	AssetGet(symbol string) (*Asset, bool)
	AssetSymbols() []string
	BalancePut(addr [20]byte, symbol string, amount *big.Int) error
	BalanceGet(addr [20]byte, symbol string) *big.Int
	VaultPut(symbol string, amount *big.Int) error
	VaultGet(symbol string) *big.Int
	ConfigPut(*Config) error
	ConfigGet() (*Config, bool)
}

// Config carries the module-level administrative state.
type Config struct {
	Admin  [20]byte
	Paused bool
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	clone := *c
	return &clone
}

// IsPaused implements the common.PauseView interface.
func (c *Config) IsPaused(module string) bool {
	return c != nil && module == common.ModuleLedger && c.Paused
}

type ledgerEvent struct {
	evt *types.Event
}

func (e ledgerEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e ledgerEvent) Event() *types.Event { return e.evt }

// Engine maintains per-account token balances plus a per-token custody vault.
// Debit moves funds from an account into the vault and Credit pays them back
// out, so vault totals always equal the sum of outstanding custodial holds.
type Engine struct {
	state   engineState
	emitter events.Emitter
}

// NewEngine creates a ledger engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

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
	e.emitter.Emit(ledgerEvent{evt: event})
}

func (e *Engine) loadConfig() (*Config, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	cfg, ok := e.state.ConfigGet()
	if !ok {
		return &Config{}, nil
	}
	return cfg, nil
}

func (e *Engine) requireAdmin(caller [20]byte) (*Config, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Admin == ([20]byte{}) {
		return nil, errNotInit
	}
	if caller != cfg.Admin {
		return nil, ErrUnauthorized
	}
	return cfg, nil
}

func (e *Engine) guardMutation() error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	return common.Guard(cfg, common.ModuleLedger)
}

// Initialize sets the module admin. It may be called once.
func (e *Engine) Initialize(admin [20]byte) error {
	if admin == ([20]byte{}) {
		return ErrInvalidAddress
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Admin != ([20]byte{}) {
		return errAlreadyInit
	}
	cfg.Admin = admin
	if err := e.state.ConfigPut(cfg); err != nil {
		return err
	}
	e.emit(NewInitializedEvent(cfg))
	return nil
}

// TransferAdmin hands the admin role to a new address. Admin only.
func (e *Engine) TransferAdmin(caller, newAdmin [20]byte) error {
	cfg, err := e.requireAdmin(caller)
	if err != nil {
		return err
	}
	if newAdmin == ([20]byte{}) {
		return ErrInvalidAddress
	}
	old := cfg.Admin
	cfg.Admin = newAdmin
	if err := e.state.ConfigPut(cfg); err != nil {
		return err
	}
	e.emit(NewAdminTransferredEvent(old, newAdmin))
	return nil
}

// SetPaused toggles the module pause flag. Admin only; works while paused.
func (e *Engine) SetPaused(caller [20]byte, paused bool) error {
	cfg, err := e.requireAdmin(caller)
	if err != nil {
		return err
	}
	cfg.Paused = paused
	if err := e.state.ConfigPut(cfg); err != nil {
		return err
	}
	e.emit(NewPauseUpdatedEvent(cfg))
	return nil
}

// RegisterAsset adds a new token definition with zero supply. Admin only.
func (e *Engine) RegisterAsset(caller [20]byte, symbol, name string, decimals uint8) (*Asset, error) {
	if _, err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := e.guardMutation(); err != nil {
		return nil, err
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if _, ok := e.state.AssetGet(normalized); ok {
		return nil, ErrAssetExists
	}
	asset := &Asset{Symbol: normalized, Name: name, Decimals: decimals, TotalSupply: big.NewInt(0)}
	sanitized, err := SanitizeAsset(asset)
	if err != nil {
		return nil, err
	}
	if err := e.state.AssetPut(sanitized); err != nil {
		return nil, err
	}
	e.emit(NewAssetRegisteredEvent(sanitized))
	return sanitized.Clone(), nil
}

// Asset returns the registered definition for the symbol.
func (e *Engine) Asset(symbol string) (*Asset, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	asset, ok := e.state.AssetGet(normalized)
	if !ok {
		return nil, ErrUnknownAsset
	}
	return asset, nil
}

// Assets returns every registered asset in registration order.
func (e *Engine) Assets() ([]*Asset, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	symbols := e.state.AssetSymbols()
	out := make([]*Asset, 0, len(symbols))
	for _, symbol := range symbols {
		if asset, ok := e.state.AssetGet(symbol); ok {
			out = append(out, asset)
		}
	}
	return out, nil
}

func (e *Engine) requireAsset(symbol string) (string, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return "", err
	}
	if _, ok := e.state.AssetGet(normalized); !ok {
		return "", ErrUnknownAsset
	}
	return normalized, nil
}

// Mint issues new supply to an account. Admin only.
func (e *Engine) Mint(caller, to [20]byte, symbol string, amount *big.Int) error {
	if _, err := e.requireAdmin(caller); err != nil {
		return err
	}
	if err := e.guardMutation(); err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return ErrInvalidAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	normalized, err := e.requireAsset(symbol)
	if err != nil {
		return err
	}
	asset, _ := e.state.AssetGet(normalized)
	asset.TotalSupply = new(big.Int).Add(asset.TotalSupply, amount)
	if err := e.state.AssetPut(asset); err != nil {
		return err
	}
	balance := e.state.BalanceGet(to, normalized)
	if err := e.state.BalancePut(to, normalized, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	e.emit(NewMintedEvent(to, normalized, amount))
	return nil
}

// Transfer moves balance between two accounts.
func (e *Engine) Transfer(from, to [20]byte, symbol string, amount *big.Int) error {
	if err := e.guardMutation(); err != nil {
		return err
	}
	if from == ([20]byte{}) || to == ([20]byte{}) || from == to {
		return ErrInvalidAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	normalized, err := e.requireAsset(symbol)
	if err != nil {
		return err
	}
	fromBalance := e.state.BalanceGet(from, normalized)
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBalance := e.state.BalanceGet(to, normalized)
	if err := e.state.BalancePut(from, normalized, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	if err := e.state.BalancePut(to, normalized, new(big.Int).Add(toBalance, amount)); err != nil {
		return err
	}
	e.emit(NewTransferredEvent(from, to, normalized, amount))
	return nil
}

// Balance returns the holder's balance for the symbol. Unregistered symbols
// report zero.
func (e *Engine) Balance(addr [20]byte, symbol string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return e.state.BalanceGet(addr, normalized), nil
}

// VaultBalance returns the total custody hold for the symbol.
func (e *Engine) VaultBalance(symbol string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return e.state.VaultGet(normalized), nil
}

// Debit moves funds from the principal's balance into the custody vault. It
// implements the escrow engine's Ledger interface.
func (e *Engine) Debit(principal [20]byte, token string, amount *big.Int) error {
	if err := e.guardMutation(); err != nil {
		return err
	}
	if principal == ([20]byte{}) {
		return ErrInvalidAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	normalized, err := e.requireAsset(token)
	if err != nil {
		return err
	}
	balance := e.state.BalanceGet(principal, normalized)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := e.state.BalancePut(principal, normalized, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	vault := e.state.VaultGet(normalized)
	if err := e.state.VaultPut(normalized, new(big.Int).Add(vault, amount)); err != nil {
		return err
	}
	e.emit(NewDebitedEvent(principal, normalized, amount))
	return nil
}

// Credit pays custody funds out of the vault into the principal's balance.
func (e *Engine) Credit(principal [20]byte, token string, amount *big.Int) error {
	if err := e.guardMutation(); err != nil {
		return err
	}
	if principal == ([20]byte{}) {
		return ErrInvalidAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	normalized, err := e.requireAsset(token)
	if err != nil {
		return err
	}
	vault := e.state.VaultGet(normalized)
	if vault.Cmp(amount) < 0 {
		return ErrInsufficientCustody
	}
	if err := e.state.VaultPut(normalized, new(big.Int).Sub(vault, amount)); err != nil {
		return err
	}
	balance := e.state.BalanceGet(principal, normalized)
	if err := e.state.BalancePut(principal, normalized, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	e.emit(NewCreditedEvent(principal, normalized, amount))
	return nil
}
