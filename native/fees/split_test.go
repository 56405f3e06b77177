package fees

import (
	"errors"
	"math/big"
	"testing"
)

var (
	treasury   = [20]byte{0x01}
	rewardPool = [20]byte{0x02}
)

func TestPolicyValidate(t *testing.T) {
	cases := []struct {
		name   string
		policy SplitPolicy
		ok     bool
	}{
		{"zero policy", SplitPolicy{}, true},
		{"at cap", SplitPolicy{TreasuryBps: 600, RewardPoolBps: 400, TreasuryWallet: treasury, RewardPoolWallet: rewardPool}, true},
		{"over cap", SplitPolicy{TreasuryBps: 600, RewardPoolBps: 401, TreasuryWallet: treasury, RewardPoolWallet: rewardPool}, false},
		{"treasury rate without wallet", SplitPolicy{TreasuryBps: 10}, false},
		{"reward rate without wallet", SplitPolicy{RewardPoolBps: 10}, false},
	}
	for _, tc := range cases {
		err := tc.policy.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidPolicy) {
			t.Fatalf("%s: got %v, want ErrInvalidPolicy", tc.name, err)
		}
	}
}

func TestApplySplit(t *testing.T) {
	policy := SplitPolicy{
		TreasuryBps:      30,
		RewardPoolBps:    20,
		TreasuryWallet:   treasury,
		RewardPoolWallet: rewardPool,
	}

	split, err := Apply(policy, big.NewInt(10_000))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if split.TreasuryFee.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("treasury fee = %v, want 30", split.TreasuryFee)
	}
	if split.RewardFee.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("reward fee = %v, want 20", split.RewardFee)
	}
	if split.Net.Cmp(big.NewInt(9_950)) != 0 {
		t.Fatalf("net = %v, want 9950", split.Net)
	}

	sum := new(big.Int).Add(split.Net, split.TreasuryFee)
	sum.Add(sum, split.RewardFee)
	if sum.Cmp(split.Gross) != 0 {
		t.Fatalf("split does not conserve the gross amount: %v != %v", sum, split.Gross)
	}
}

func TestApplyRoundsDown(t *testing.T) {
	policy := SplitPolicy{TreasuryBps: 33, TreasuryWallet: treasury}

	// 33 bps of 100 is 0.33, which rounds down to zero.
	split, err := Apply(policy, big.NewInt(100))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if split.TreasuryFee.Sign() != 0 {
		t.Fatalf("fee = %v, want 0", split.TreasuryFee)
	}
	if split.Net.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("residue must stay with the payer, net = %v", split.Net)
	}
}

func TestApplyEdgeInputs(t *testing.T) {
	policy := SplitPolicy{TreasuryBps: 100, TreasuryWallet: treasury}

	for _, gross := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5)} {
		split, err := Apply(policy, gross)
		if err != nil {
			t.Fatalf("apply(%v): %v", gross, err)
		}
		if split.Net.Sign() != 0 || split.TreasuryFee.Sign() != 0 {
			t.Fatalf("non-positive gross must produce a zero split, got %+v", split)
		}
	}

	if _, err := Apply(SplitPolicy{TreasuryBps: 2000, TreasuryWallet: treasury}, big.NewInt(100)); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("invalid policy must be rejected, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	policy := SplitPolicy{TreasuryBps: 50, RewardPoolBps: 50, TreasuryWallet: treasury, RewardPoolWallet: rewardPool}
	totals := NewTotals()

	for i := 0; i < 3; i++ {
		split, err := Apply(policy, big.NewInt(10_000))
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		totals.Add(split)
	}

	if totals.Count != 3 {
		t.Fatalf("count = %d, want 3", totals.Count)
	}
	if totals.Gross.Cmp(big.NewInt(30_000)) != 0 {
		t.Fatalf("gross = %v, want 30000", totals.Gross)
	}
	if totals.TreasuryFee.Cmp(big.NewInt(150)) != 0 || totals.RewardFee.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("fees = %v/%v, want 150/150", totals.TreasuryFee, totals.RewardFee)
	}
}
