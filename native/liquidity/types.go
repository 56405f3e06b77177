package liquidity

import (
	"math/big"
)

// MaxUtilizationBps caps how much of a pool may be reserved for in-flight
// conversions: 95% of the pool total.
const MaxUtilizationBps = 9_500

// BpsDenominator is the basis point scale shared with the fees module.
const BpsDenominator = 10_000

// Pool tracks depth for one currency. Available plus Reserved always equals
// Total; Confirm shrinks both Total and Reserved when reserved funds leave
// the pool.
type Pool struct {
	Currency     string
	Total        *big.Int
	Available    *big.Int
	Reserved     *big.Int
	MinThreshold *big.Int
	Providers    [][20]byte
}

// Clone returns a deep copy of the pool.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	clone := &Pool{Currency: p.Currency}
	for _, pair := range []struct {
		dst **big.Int
		src *big.Int
	}{
		{&clone.Total, p.Total},
		{&clone.Available, p.Available},
		{&clone.Reserved, p.Reserved},
		{&clone.MinThreshold, p.MinThreshold},
	} {
		if pair.src != nil {
			*pair.dst = new(big.Int).Set(pair.src)
		} else {
			*pair.dst = big.NewInt(0)
		}
	}
	clone.Providers = make([][20]byte, len(p.Providers))
	copy(clone.Providers, p.Providers)
	return clone
}

// ProviderCount returns the number of providers with an open position.
func (p *Pool) ProviderCount() int {
	if p == nil {
		return 0
	}
	return len(p.Providers)
}

// UtilizationBps returns the reserved share of the pool in basis points.
// An empty pool reports zero.
func (p *Pool) UtilizationBps() uint32 {
	if p == nil || p.Total == nil || p.Total.Sign() <= 0 || p.Reserved == nil {
		return 0
	}
	util := new(big.Int).Mul(p.Reserved, big.NewInt(BpsDenominator))
	util.Div(util, p.Total)
	return uint32(util.Uint64())
}

func (p *Pool) hasProvider(addr [20]byte) bool {
	for _, provider := range p.Providers {
		if provider == addr {
			return true
		}
	}
	return false
}

func (p *Pool) addProvider(addr [20]byte) {
	if !p.hasProvider(addr) {
		p.Providers = append(p.Providers, addr)
	}
}

func (p *Pool) removeProvider(addr [20]byte) {
	for i, provider := range p.Providers {
		if provider == addr {
			p.Providers = append(p.Providers[:i], p.Providers[i+1:]...)
			return
		}
	}
}

// Position is one provider's stake in a pool. ShareBps is derived from the
// pool total at read time; AccruedRewards grows with distributions and is
// paid out on claim.
type Position struct {
	Provider       [20]byte
	Currency       string
	Amount         *big.Int
	AccruedRewards *big.Int
	LockUntil      int64
}

// Clone returns a deep copy of the position.
func (pos *Position) Clone() *Position {
	if pos == nil {
		return nil
	}
	clone := &Position{Provider: pos.Provider, Currency: pos.Currency, LockUntil: pos.LockUntil}
	if pos.Amount != nil {
		clone.Amount = new(big.Int).Set(pos.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	if pos.AccruedRewards != nil {
		clone.AccruedRewards = new(big.Int).Set(pos.AccruedRewards)
	} else {
		clone.AccruedRewards = big.NewInt(0)
	}
	return clone
}

// ShareBps returns the provider's share of the pool in basis points.
func (pos *Position) ShareBps(pool *Pool) uint32 {
	if pos == nil || pos.Amount == nil || pool == nil || pool.Total == nil || pool.Total.Sign() <= 0 {
		return 0
	}
	share := new(big.Int).Mul(pos.Amount, big.NewInt(BpsDenominator))
	share.Div(share, pool.Total)
	return uint32(share.Uint64())
}

// Config carries the module-level settings.
type Config struct {
	Admin       [20]byte
	PoolAccount [20]byte
	LockPeriod  int64
	Paused      bool
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	clone := *c
	return &clone
}
