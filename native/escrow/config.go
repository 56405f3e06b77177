package escrow

import (
	"math/big"

	"nexafx/native/common"
)

// GlobalConfig is the singleton module configuration. It is persisted by the
// host layer alongside the records and loaded on every invocation, never read
// from ambient state.
type GlobalConfig struct {
	Admin      [20]byte
	DisputeFee *big.Int
	Paused     bool
}

// Clone returns a deep copy of the config.
func (c *GlobalConfig) Clone() *GlobalConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.DisputeFee != nil {
		clone.DisputeFee = new(big.Int).Set(c.DisputeFee)
	} else {
		clone.DisputeFee = big.NewInt(0)
	}
	return &clone
}

// IsPaused implements the common.PauseView interface.
func (c *GlobalConfig) IsPaused(module string) bool {
	return c != nil && module == common.ModuleEscrow && c.Paused
}

func (e *Engine) loadConfig() (*GlobalConfig, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	cfg, ok := e.state.ConfigGet()
	if !ok {
		return &GlobalConfig{DisputeFee: big.NewInt(0)}, nil
	}
	return cfg.Clone(), nil
}

func (e *Engine) requireAdmin(caller [20]byte) (*GlobalConfig, error) {
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

// Initialize records the module administrator. It must be called exactly
// once before any admin surface is usable.
func (e *Engine) Initialize(admin [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if admin == ([20]byte{}) {
		return ErrInvalidAddress
	}
	if existing, ok := e.state.ConfigGet(); ok && existing.Admin != ([20]byte{}) {
		return errAlreadyInit
	}
	cfg := &GlobalConfig{Admin: admin, DisputeFee: big.NewInt(0)}
	if err := e.state.ConfigPut(cfg); err != nil {
		return err
	}
	e.emit(NewInitializedEvent(cfg))
	return nil
}

// Admin returns the configured module administrator.
func (e *Engine) Admin() ([20]byte, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return [20]byte{}, err
	}
	if cfg.Admin == ([20]byte{}) {
		return [20]byte{}, errNotInit
	}
	return cfg.Admin, nil
}

// TransferAdmin hands the admin role to a new principal. Only the current
// admin may call it; it remains available while the module is paused so the
// pause can always be lifted.
func (e *Engine) TransferAdmin(caller, newAdmin [20]byte) error {
	cfg, err := e.requireAdmin(caller)
	if err != nil {
		return err
	}
	if newAdmin == ([20]byte{}) {
		return ErrInvalidAddress
	}
	cfg.Admin = newAdmin
	if err := e.state.ConfigPut(cfg); err != nil {
		return err
	}
	e.emit(NewAdminTransferredEvent(caller, newAdmin))
	return nil
}

// SetDisputeFee updates the fee charged to a disputant at initiation.
func (e *Engine) SetDisputeFee(caller [20]byte, fee *big.Int) error {
	cfg, err := e.requireAdmin(caller)
	if err != nil {
		return err
	}
	if fee == nil || fee.Sign() < 0 {
		return ErrInvalidAmount
	}
	cfg.DisputeFee = new(big.Int).Set(fee)
	if err := e.state.ConfigPut(cfg); err != nil {
		return err
	}
	e.emit(NewDisputeFeeUpdatedEvent(cfg))
	return nil
}

// DisputeFee returns the currently configured dispute fee.
func (e *Engine) DisputeFee() (*big.Int, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.DisputeFee, nil
}

// SetPaused toggles the module pause flag gating all mutating operations.
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

// IsPaused reports whether mutating operations are currently rejected.
func (e *Engine) IsPaused() (bool, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return false, err
	}
	return cfg.Paused, nil
}
