package swapoffer

import (
	"math/big"
	"strings"
)

// DefaultFeeBps is the platform fee applied to accepted offers until the
// admin overrides it: 0.25% of the offered amount.
const DefaultFeeBps = 25

// MaxFeeBps caps the platform fee at 5%.
const MaxFeeBps = 500

// BpsDenominator is the basis point scale shared with the fees module.
const BpsDenominator = 10_000

// Offer is an open token-for-token ask. The offered amount sits in custody
// from creation until the offer is accepted or cancelled; the requested
// amount moves directly from acceptor to creator on acceptance.
type Offer struct {
	ID            uint64
	Creator       [20]byte
	OfferToken    string
	OfferAmount   *big.Int
	RequestToken  string
	RequestAmount *big.Int
	CreatedAt     int64
	ExpiresAt     int64
}

// Clone returns a deep copy of the offer.
func (o *Offer) Clone() *Offer {
	if o == nil {
		return nil
	}
	clone := *o
	if o.OfferAmount != nil {
		clone.OfferAmount = new(big.Int).Set(o.OfferAmount)
	}
	if o.RequestAmount != nil {
		clone.RequestAmount = new(big.Int).Set(o.RequestAmount)
	}
	return &clone
}

// ExpiredAt reports whether the offer can no longer be accepted at ts.
func (o *Offer) ExpiredAt(ts int64) bool {
	if o == nil {
		return true
	}
	return ts > o.ExpiresAt
}

// FeeOn returns the platform fee the config takes from an offered amount,
// rounded down.
func (c *Config) FeeOn(amount *big.Int) *big.Int {
	if c == nil || amount == nil || amount.Sign() <= 0 || c.FeeBps == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Mul(amount, big.NewInt(int64(c.FeeBps)))
	return fee.Div(fee, big.NewInt(BpsDenominator))
}

// Config carries the module-level settings.
type Config struct {
	Admin        [20]byte
	FeeBps       uint32
	FeeCollector [20]byte
	Paused       bool
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	clone := *c
	return &clone
}

// NormalizeToken trims and upper-cases a token symbol.
func NormalizeToken(token string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(token))
	if normalized == "" {
		return "", ErrInvalidToken
	}
	return normalized, nil
}
