package fees

import (
	"errors"
	"math/big"
)

// Basis point scale used by every fee rate in the module.
const BpsDenominator = 10_000

// MaxFeeBps caps the total fee a policy may take from a gross amount.
const MaxFeeBps = 1_000

// ErrInvalidPolicy is returned when a policy's rates exceed MaxFeeBps or a
// non-zero rate has no destination wallet.
var ErrInvalidPolicy = errors.New("fees: invalid split policy")

// SplitPolicy routes a fee between the platform treasury and the liquidity
// reward pool. Rates are expressed in basis points of the gross amount.
type SplitPolicy struct {
	TreasuryBps      uint32
	RewardPoolBps    uint32
	TreasuryWallet   [20]byte
	RewardPoolWallet [20]byte
}

// TotalBps returns the combined fee rate of the policy.
func (p SplitPolicy) TotalBps() uint32 {
	return p.TreasuryBps + p.RewardPoolBps
}

// Validate checks the policy invariants: the combined rate stays within
// MaxFeeBps and every non-zero rate names a wallet.
func (p SplitPolicy) Validate() error {
	if p.TotalBps() > MaxFeeBps {
		return ErrInvalidPolicy
	}
	if p.TreasuryBps > 0 && p.TreasuryWallet == ([20]byte{}) {
		return ErrInvalidPolicy
	}
	if p.RewardPoolBps > 0 && p.RewardPoolWallet == ([20]byte{}) {
		return ErrInvalidPolicy
	}
	return nil
}

// Split is the outcome of applying a policy to a gross amount. Net plus both
// fee legs always equals the gross input.
type Split struct {
	Gross       *big.Int
	Net         *big.Int
	TreasuryFee *big.Int
	RewardFee   *big.Int
}

// Clone returns a copy with duplicated big.Int values.
func (s Split) Clone() Split {
	clone := Split{}
	if s.Gross != nil {
		clone.Gross = new(big.Int).Set(s.Gross)
	}
	if s.Net != nil {
		clone.Net = new(big.Int).Set(s.Net)
	}
	if s.TreasuryFee != nil {
		clone.TreasuryFee = new(big.Int).Set(s.TreasuryFee)
	}
	if s.RewardFee != nil {
		clone.RewardFee = new(big.Int).Set(s.RewardFee)
	}
	return clone
}

func feeFor(gross *big.Int, bps uint32) *big.Int {
	if bps == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Mul(gross, big.NewInt(int64(bps)))
	return fee.Div(fee, big.NewInt(BpsDenominator))
}

// Apply evaluates the policy against a gross amount. Fees round down, so the
// residue from integer division stays with the payer in Net. A nil or
// non-positive gross produces an all-zero split.
func Apply(policy SplitPolicy, gross *big.Int) (Split, error) {
	result := Split{
		Gross:       big.NewInt(0),
		Net:         big.NewInt(0),
		TreasuryFee: big.NewInt(0),
		RewardFee:   big.NewInt(0),
	}
	if err := policy.Validate(); err != nil {
		return result, err
	}
	if gross == nil || gross.Sign() <= 0 {
		return result, nil
	}
	result.Gross = new(big.Int).Set(gross)
	result.TreasuryFee = feeFor(gross, policy.TreasuryBps)
	result.RewardFee = feeFor(gross, policy.RewardPoolBps)
	result.Net = new(big.Int).Sub(result.Gross, result.TreasuryFee)
	result.Net.Sub(result.Net, result.RewardFee)
	return result, nil
}

// Totals accumulates fee accounting across many splits.
type Totals struct {
	Gross       *big.Int
	TreasuryFee *big.Int
	RewardFee   *big.Int
	Count       uint64
}

// NewTotals returns an empty accumulator.
func NewTotals() *Totals {
	return &Totals{
		Gross:       big.NewInt(0),
		TreasuryFee: big.NewInt(0),
		RewardFee:   big.NewInt(0),
	}
}

// Add folds one split into the running totals.
func (t *Totals) Add(s Split) {
	if t == nil {
		return
	}
	if s.Gross != nil {
		t.Gross.Add(t.Gross, s.Gross)
	}
	if s.TreasuryFee != nil {
		t.TreasuryFee.Add(t.TreasuryFee, s.TreasuryFee)
	}
	if s.RewardFee != nil {
		t.RewardFee.Add(t.RewardFee, s.RewardFee)
	}
	t.Count++
}
