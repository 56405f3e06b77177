package liquidity

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"nexafx/core/events"
	"nexafx/storage"
)

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

var (
	admin       = newTestAddress(0xAD)
	poolAccount = newTestAddress(0x50)
	alice       = newTestAddress(0x01)
	bob         = newTestAddress(0x02)
)

type transfer struct {
	from, to [20]byte
	token    string
	amount   *big.Int
}

type mockLedger struct {
	transfers []transfer
	err       error
}

func (m *mockLedger) Transfer(from, to [20]byte, token string, amount *big.Int) error {
	if m.err != nil {
		return m.err
	}
	m.transfers = append(m.transfers, transfer{from, to, token, new(big.Int).Set(amount)})
	return nil
}

type testEnv struct {
	engine *Engine
	ledger *mockLedger
	now    int64
}

const lockPeriod = int64(86_400)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{ledger: &mockLedger{}, now: 1_700_000_000}
	env.engine = NewEngine()
	env.engine.SetState(NewStore(storage.NewMemDB()))
	env.engine.SetLedger(env.ledger)
	env.engine.SetNowFunc(func() int64 { return env.now })
	if err := env.engine.Initialize(&Config{Admin: admin, PoolAccount: poolAccount, LockPeriod: lockPeriod}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := env.engine.CreatePool(admin, "NGN", big.NewInt(100)); err != nil {
		t.Fatalf("create pool: %v", err)
	}
	return env
}

func TestCreatePool(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.engine.CreatePool(alice, "USD", nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("create by non-admin: got %v", err)
	}
	if _, err := env.engine.CreatePool(admin, "NGN", nil); !errors.Is(err, ErrPoolExists) {
		t.Fatalf("duplicate pool: got %v", err)
	}
	if _, err := env.engine.Pool("USD"); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("missing pool: got %v", err)
	}

	pool, err := env.engine.Pool("NGN")
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if pool.Total.Sign() != 0 || pool.ProviderCount() != 0 {
		t.Fatalf("new pool must start empty: %+v", pool)
	}
	if pool.MinThreshold.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("min threshold = %v, want 100", pool.MinThreshold)
	}

	pools, err := env.engine.Pools()
	if err != nil || len(pools) != 1 {
		t.Fatalf("pools = %d (%v), want 1", len(pools), err)
	}
}

func TestAddAndRemoveLiquidity(t *testing.T) {
	env := newTestEnv(t)

	position, err := env.engine.AddLiquidity(alice, "NGN", big.NewInt(1000))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if position.Amount.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("stake = %v, want 1000", position.Amount)
	}
	if position.LockUntil != env.now+lockPeriod {
		t.Fatalf("lock until = %d, want %d", position.LockUntil, env.now+lockPeriod)
	}
	if len(env.ledger.transfers) != 1 || env.ledger.transfers[0].to != poolAccount {
		t.Fatalf("stake must transfer to the pool account")
	}

	pool, _ := env.engine.Pool("NGN")
	if pool.Total.Cmp(big.NewInt(1000)) != 0 || pool.Available.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("pool after add: %+v", pool)
	}
	if pool.ProviderCount() != 1 {
		t.Fatalf("provider count = %d, want 1", pool.ProviderCount())
	}
	if position.ShareBps(pool) != BpsDenominator {
		t.Fatalf("sole provider share = %d, want %d", position.ShareBps(pool), BpsDenominator)
	}

	// Withdrawal is locked until the period elapses.
	if _, err := env.engine.RemoveLiquidity(alice, "NGN", big.NewInt(500)); !errors.Is(err, ErrPositionLocked) {
		t.Fatalf("early withdrawal: got %v", err)
	}

	env.now += lockPeriod
	if _, err := env.engine.RemoveLiquidity(alice, "NGN", big.NewInt(1001)); !errors.Is(err, ErrInsufficientStake) {
		t.Fatalf("overdraw: got %v", err)
	}
	remaining, err := env.engine.RemoveLiquidity(alice, "NGN", big.NewInt(400))
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if remaining.Amount.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("remaining stake = %v, want 600", remaining.Amount)
	}

	// Full exit deletes the position and drops the provider.
	if _, err := env.engine.RemoveLiquidity(alice, "NGN", big.NewInt(600)); err != nil {
		t.Fatalf("full exit: %v", err)
	}
	if _, err := env.engine.Position(alice, "NGN"); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("position after exit: got %v", err)
	}
	pool, _ = env.engine.Pool("NGN")
	if pool.ProviderCount() != 0 || pool.Total.Sign() != 0 {
		t.Fatalf("pool after exit: %+v", pool)
	}
}

func TestAddRestartsLock(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.engine.AddLiquidity(alice, "NGN", big.NewInt(100)); err != nil {
		t.Fatalf("add: %v", err)
	}
	env.now += lockPeriod
	position, err := env.engine.AddLiquidity(alice, "NGN", big.NewInt(100))
	if err != nil {
		t.Fatalf("top up: %v", err)
	}
	if position.LockUntil != env.now+lockPeriod {
		t.Fatalf("top up must restart the lock")
	}
	if _, err := env.engine.RemoveLiquidity(alice, "NGN", big.NewInt(100)); !errors.Is(err, ErrPositionLocked) {
		t.Fatalf("withdrawal after top up: got %v", err)
	}
}

func TestReserveUtilizationCap(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.engine.AddLiquidity(alice, "NGN", big.NewInt(1000)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := env.engine.Reserve("NGN", big.NewInt(2000)); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("reserve beyond depth: got %v", err)
	}
	// 96% of the pool exceeds the 95% cap.
	if err := env.engine.Reserve("NGN", big.NewInt(960)); !errors.Is(err, ErrUtilizationExceeded) {
		t.Fatalf("reserve past cap: got %v", err)
	}
	if err := env.engine.Reserve("NGN", big.NewInt(950)); err != nil {
		t.Fatalf("reserve at cap: %v", err)
	}

	pool, _ := env.engine.Pool("NGN")
	if pool.UtilizationBps() != MaxUtilizationBps {
		t.Fatalf("utilization = %d, want %d", pool.UtilizationBps(), MaxUtilizationBps)
	}
	if pool.Available.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("available = %v, want 50", pool.Available)
	}
}

func TestConfirmAndRelease(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.engine.AddLiquidity(alice, "NGN", big.NewInt(1000)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := env.engine.Reserve("NGN", big.NewInt(500)); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if err := env.engine.Confirm("NGN", big.NewInt(501)); !errors.Is(err, ErrInvalidReservation) {
		t.Fatalf("confirm beyond reservation: got %v", err)
	}
	if err := env.engine.Confirm("NGN", big.NewInt(300)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	pool, _ := env.engine.Pool("NGN")
	if pool.Total.Cmp(big.NewInt(700)) != 0 || pool.Reserved.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("pool after confirm: total=%v reserved=%v", pool.Total, pool.Reserved)
	}

	if err := env.engine.Release("NGN", big.NewInt(200)); err != nil {
		t.Fatalf("release: %v", err)
	}
	pool, _ = env.engine.Pool("NGN")
	if pool.Reserved.Sign() != 0 || pool.Available.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("pool after release: %+v", pool)
	}
	if err := env.engine.Release("NGN", big.NewInt(1)); !errors.Is(err, ErrInvalidReservation) {
		t.Fatalf("release with nothing reserved: got %v", err)
	}
}

func TestReserveLowLiquidityWarning(t *testing.T) {
	env := newTestEnv(t)
	recorder := &events.Recorder{}
	env.engine.SetEmitter(recorder)

	if _, err := env.engine.AddLiquidity(alice, "NGN", big.NewInt(1000)); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Available drops to 80, under the threshold of 100.
	if err := env.engine.Reserve("NGN", big.NewInt(920)); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	var saw bool
	for _, eventType := range recorder.Types() {
		if eventType == EventTypeLowLiquidity {
			saw = true
		}
	}
	if !saw {
		t.Fatalf("expected a low-liquidity warning, got %v", recorder.Types())
	}
}

func TestRewardDistribution(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.engine.AddLiquidity(alice, "NGN", big.NewInt(750)); err != nil {
		t.Fatalf("add alice: %v", err)
	}
	if _, err := env.engine.AddLiquidity(bob, "NGN", big.NewInt(250)); err != nil {
		t.Fatalf("add bob: %v", err)
	}

	if err := env.engine.DistributeRewards(alice, "NGN", big.NewInt(100)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("distribute by non-admin: got %v", err)
	}
	if err := env.engine.DistributeRewards(admin, "NGN", big.NewInt(100)); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	alicePos, err := env.engine.Position(alice, "NGN")
	if err != nil {
		t.Fatalf("position alice: %v", err)
	}
	if alicePos.AccruedRewards.Cmp(big.NewInt(75)) != 0 {
		t.Fatalf("alice rewards = %v, want 75", alicePos.AccruedRewards)
	}
	bobPos, _ := env.engine.Position(bob, "NGN")
	if bobPos.AccruedRewards.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("bob rewards = %v, want 25", bobPos.AccruedRewards)
	}

	payout, err := env.engine.ClaimRewards(alice, "NGN")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if payout.Cmp(big.NewInt(75)) != 0 {
		t.Fatalf("payout = %v, want 75", payout)
	}
	last := env.ledger.transfers[len(env.ledger.transfers)-1]
	if last.from != poolAccount || last.to != alice || last.amount.Cmp(big.NewInt(75)) != 0 {
		t.Fatalf("claim transfer = %+v", last)
	}
	if _, err := env.engine.ClaimRewards(alice, "NGN"); !errors.Is(err, ErrNoRewards) {
		t.Fatalf("second claim: got %v", err)
	}
}

func TestLiquidityPauseGating(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.engine.AddLiquidity(alice, "NGN", big.NewInt(100)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := env.engine.Reserve("NGN", big.NewInt(40)); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := env.engine.SetPaused(admin, true); err != nil {
		t.Fatalf("pause: %v", err)
	}

	if _, err := env.engine.AddLiquidity(alice, "NGN", big.NewInt(1)); !errors.Is(err, ErrPaused) {
		t.Fatalf("add while paused: got %v", err)
	}
	if err := env.engine.Reserve("NGN", big.NewInt(1)); !errors.Is(err, ErrPaused) {
		t.Fatalf("reserve while paused: got %v", err)
	}
	env.now += lockPeriod
	if _, err := env.engine.RemoveLiquidity(alice, "NGN", big.NewInt(1)); !errors.Is(err, ErrPaused) {
		t.Fatalf("remove while paused: got %v", err)
	}

	// Reservations granted before the pause can still settle or unwind.
	if err := env.engine.Confirm("NGN", big.NewInt(25)); err != nil {
		t.Fatalf("confirm while paused: %v", err)
	}
	if err := env.engine.Release("NGN", big.NewInt(15)); err != nil {
		t.Fatalf("release while paused: %v", err)
	}
	pool, err := env.engine.Pool("NGN")
	if err != nil {
		t.Fatalf("query while paused: %v", err)
	}
	if pool.Reserved.Sign() != 0 || pool.Total.Cmp(big.NewInt(75)) != 0 {
		t.Fatalf("pool after paused settlement: %+v", pool)
	}
}
