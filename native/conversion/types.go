package conversion

import (
	"math/big"
	"strings"

	"nexafx/native/fees"
)

// RateScale is the fixed-point denominator for exchange rates: a rate of
// 1.5 is stored as 150_000_000.
const RateScale = 100_000_000

// SupportedCurrencies is the closed set of convertible currencies.
var SupportedCurrencies = []string{"NGN", "USD", "EUR", "GBP", "BTC", "ETH"}

// IsSupported reports whether the symbol belongs to the supported set.
func IsSupported(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}

// NormalizeCurrency canonicalises and validates a currency symbol.
func NormalizeCurrency(currency string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(currency))
	if !IsSupported(trimmed) {
		return "", ErrUnsupportedCurrency
	}
	return trimmed, nil
}

// PairKey builds the directed pair identifier used for rate lookups.
func PairKey(from, to string) string {
	return from + "/" + to
}

// ExchangeRate is a directed quote for one currency pair. A rate is usable
// until UpdatedAt+ValidityDuration; after that conversions against it fail
// until the oracle refreshes it.
type ExchangeRate struct {
	From             string
	To               string
	Rate             *big.Int
	UpdatedAt        int64
	ValidityDuration int64
}

// Clone returns a deep copy of the rate.
func (r *ExchangeRate) Clone() *ExchangeRate {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Rate != nil {
		clone.Rate = new(big.Int).Set(r.Rate)
	}
	return &clone
}

// FreshAt reports whether the rate is still usable at the instant.
func (r *ExchangeRate) FreshAt(now int64) bool {
	if r == nil || r.Rate == nil || r.Rate.Sign() <= 0 {
		return false
	}
	return now <= r.UpdatedAt+r.ValidityDuration
}

// RateLock pins a quote for one user and pair until the lock expires. The
// lock survives later oracle updates, so the user converts at the rate they
// were shown.
type RateLock struct {
	User      [20]byte
	From      string
	To        string
	Rate      *big.Int
	LockedAt  int64
	ExpiresAt int64
}

// Clone returns a deep copy of the lock.
func (l *RateLock) Clone() *RateLock {
	if l == nil {
		return nil
	}
	clone := *l
	if l.Rate != nil {
		clone.Rate = new(big.Int).Set(l.Rate)
	}
	return &clone
}

// ValidAt reports whether the lock is still usable at the instant.
func (l *RateLock) ValidAt(now int64) bool {
	return l != nil && l.Rate != nil && l.Rate.Sign() > 0 && now <= l.ExpiresAt
}

// ConversionTx is the persisted record of one executed conversion.
// AmountOut is the net credited to the user after fees.
type ConversionTx struct {
	ID          uint64
	User        [20]byte
	From        string
	To          string
	AmountIn    *big.Int
	AmountOut   *big.Int
	TreasuryFee *big.Int
	RewardFee   *big.Int
	Rate        *big.Int
	RateLocked  bool
	Timestamp   int64
}

// Clone returns a deep copy of the record.
func (tx *ConversionTx) Clone() *ConversionTx {
	if tx == nil {
		return nil
	}
	clone := *tx
	for _, pair := range []struct {
		dst **big.Int
		src *big.Int
	}{
		{&clone.AmountIn, tx.AmountIn},
		{&clone.AmountOut, tx.AmountOut},
		{&clone.TreasuryFee, tx.TreasuryFee},
		{&clone.RewardFee, tx.RewardFee},
		{&clone.Rate, tx.Rate},
	} {
		if pair.src != nil {
			*pair.dst = new(big.Int).Set(pair.src)
		}
	}
	return &clone
}

// Config carries the module-level settings: roles, conversion limits, the
// fee policy and the rate-lock window.
type Config struct {
	Admin        [20]byte
	Oracle       [20]byte
	PoolAccount  [20]byte
	Policy       fees.SplitPolicy
	MinAmount    *big.Int
	MaxAmount    *big.Int
	LockDuration int64
	Paused       bool
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	clone := *c
	if c.MinAmount != nil {
		clone.MinAmount = new(big.Int).Set(c.MinAmount)
	}
	if c.MaxAmount != nil {
		clone.MaxAmount = new(big.Int).Set(c.MaxAmount)
	}
	return &clone
}
