package common

import "errors"

// ErrModulePaused is returned when a mutating operation reaches a module that
// an administrator has paused. Query operations are never guarded.
var ErrModulePaused = errors.New("module paused")

// Module identifiers accepted by the pause guard.
const (
	ModuleEscrow     = "escrow"
	ModuleLedger     = "ledger"
	ModuleMultisig   = "multisig"
	ModuleConversion = "conversion"
	ModuleLiquidity  = "liquidity"
	ModuleSwap       = "swap"
)

// PauseView exposes the pause state of a module.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the call with ErrModulePaused when the named module is
// paused. A nil view or empty module name never blocks.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// Pauses is a static PauseView backed by a set of paused module names.
type Pauses map[string]bool

// IsPaused implements the PauseView interface.
func (p Pauses) IsPaused(module string) bool {
	return p[module]
}
