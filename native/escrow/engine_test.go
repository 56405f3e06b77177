package escrow

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"nexafx/core/events"
)

type mockState struct {
	escrows map[[32]byte]*Escrow
	bySeq   map[uint64][32]byte
	count   uint64
	config  *GlobalConfig
}

func newMockState() *mockState {
	return &mockState{
		escrows: make(map[[32]byte]*Escrow),
		bySeq:   make(map[uint64][32]byte),
	}
}

func (m *mockState) EscrowPut(e *Escrow) error {
	sanitized, err := SanitizeEscrow(e)
	if err != nil {
		return err
	}
	m.escrows[sanitized.ID] = sanitized.Clone()
	m.bySeq[sanitized.Sequence] = sanitized.ID
	return nil
}

func (m *mockState) EscrowGet(id [32]byte) (*Escrow, bool) {
	esc, ok := m.escrows[id]
	if !ok {
		return nil, false
	}
	return esc.Clone(), true
}

func (m *mockState) EscrowBySequence(seq uint64) (*Escrow, bool) {
	id, ok := m.bySeq[seq]
	if !ok {
		return nil, false
	}
	return m.EscrowGet(id)
}

func (m *mockState) EscrowCount() uint64 { return m.count }

func (m *mockState) NextSequence() (uint64, error) {
	next := m.count
	m.count++
	return next, nil
}

func (m *mockState) ConfigPut(cfg *GlobalConfig) error {
	m.config = cfg.Clone()
	return nil
}

func (m *mockState) ConfigGet() (*GlobalConfig, bool) {
	if m.config == nil {
		return nil, false
	}
	return m.config.Clone(), true
}

type ledgerCall struct {
	principal [20]byte
	token     string
	amount    *big.Int
}

type mockLedger struct {
	debits    []ledgerCall
	credits   []ledgerCall
	debitErr  error
	creditErr error
}

var errMockInsufficient = errors.New("ledger: insufficient balance")

func (m *mockLedger) Debit(principal [20]byte, token string, amount *big.Int) error {
	if m.debitErr != nil {
		return m.debitErr
	}
	m.debits = append(m.debits, ledgerCall{principal, token, new(big.Int).Set(amount)})
	return nil
}

func (m *mockLedger) Credit(principal [20]byte, token string, amount *big.Int) error {
	if m.creditErr != nil {
		return m.creditErr
	}
	m.credits = append(m.credits, ledgerCall{principal, token, new(big.Int).Set(amount)})
	return nil
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

var (
	sender    = newTestAddress(0x11)
	recipient = newTestAddress(0x22)
	admin     = newTestAddress(0xAD)
	outsider  = newTestAddress(0x99)
)

const (
	testTimeout       = int64(3600)
	testDisputeWindow = int64(86400)
)

type testEnv struct {
	engine *Engine
	state  *mockState
	ledger *mockLedger
	now    int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{state: newMockState(), ledger: &mockLedger{}, now: 1_700_000_000}
	env.engine = NewEngine()
	env.engine.SetState(env.state)
	env.engine.SetLedger(env.ledger)
	env.engine.SetNowFunc(func() int64 { return env.now })
	if err := env.engine.Initialize(admin); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return env
}

func (env *testEnv) create(t *testing.T) *Info {
	t.Helper()
	info, err := env.engine.Create(sender, recipient, "USD", big.NewInt(100), testTimeout, testDisputeWindow)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return info
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"zero amount", func() error {
			_, err := env.engine.Create(sender, recipient, "USD", big.NewInt(0), testTimeout, testDisputeWindow)
			return err
		}, ErrInvalidAmount},
		{"negative amount", func() error {
			_, err := env.engine.Create(sender, recipient, "USD", big.NewInt(-5), testTimeout, testDisputeWindow)
			return err
		}, ErrInvalidAmount},
		{"same parties", func() error {
			_, err := env.engine.Create(sender, sender, "USD", big.NewInt(100), testTimeout, testDisputeWindow)
			return err
		}, ErrInvalidAddress},
		{"zero sender", func() error {
			_, err := env.engine.Create([20]byte{}, recipient, "USD", big.NewInt(100), testTimeout, testDisputeWindow)
			return err
		}, ErrInvalidAddress},
		{"zero timeout", func() error {
			_, err := env.engine.Create(sender, recipient, "USD", big.NewInt(100), 0, testDisputeWindow)
			return err
		}, ErrInvalidTimestamp},
		{"zero dispute period", func() error {
			_, err := env.engine.Create(sender, recipient, "USD", big.NewInt(100), testTimeout, 0)
			return err
		}, ErrInvalidTimestamp},
		{"empty token", func() error {
			_, err := env.engine.Create(sender, recipient, "  ", big.NewInt(100), testTimeout, testDisputeWindow)
			return err
		}, ErrInvalidAddress},
	}
	for _, tc := range cases {
		if err := tc.run(); !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
	}
	if len(env.ledger.debits) != 0 {
		t.Fatalf("validation failures must not touch the ledger, saw %d debits", len(env.ledger.debits))
	}
	if count, _ := env.engine.EscrowCount(); count != 0 {
		t.Fatalf("expected no records, got %d", count)
	}
}

func TestCreateDebitsSender(t *testing.T) {
	env := newTestEnv(t)
	info := env.create(t)
	if info.Status != StatusActive {
		t.Fatalf("expected Active, got %v", info.Status)
	}
	if info.CreatedAt != env.now || info.TimeoutAt != env.now+testTimeout {
		t.Fatalf("unexpected timestamps: createdAt=%d timeoutAt=%d", info.CreatedAt, info.TimeoutAt)
	}
	if len(env.ledger.debits) != 1 {
		t.Fatalf("expected one debit, got %d", len(env.ledger.debits))
	}
	debit := env.ledger.debits[0]
	if debit.principal != sender || debit.token != "USD" || debit.amount.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("unexpected debit %+v", debit)
	}
	if len(env.ledger.credits) != 0 {
		t.Fatalf("create must not credit, got %d", len(env.ledger.credits))
	}
}

func TestCreateAbortsOnInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.debitErr = errMockInsufficient
	if _, err := env.engine.Create(sender, recipient, "USD", big.NewInt(100), testTimeout, testDisputeWindow); !errors.Is(err, errMockInsufficient) {
		t.Fatalf("expected ledger error, got %v", err)
	}
	if count, _ := env.engine.EscrowCount(); count != 0 {
		t.Fatalf("failed debit must not allocate a record, count=%d", count)
	}
}

func TestReleaseFlow(t *testing.T) {
	env := newTestEnv(t)
	info := env.create(t)

	if _, err := env.engine.Release(info.ID, outsider); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("release by outsider: got %v, want ErrUnauthorized", err)
	}
	if _, err := env.engine.Release(info.ID, recipient); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("release by recipient: got %v, want ErrUnauthorized", err)
	}

	released, err := env.engine.Release(info.ID, sender)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.Status != StatusReleased {
		t.Fatalf("expected Released, got %v", released.Status)
	}
	if len(env.ledger.credits) != 1 {
		t.Fatalf("expected one credit, got %d", len(env.ledger.credits))
	}
	credit := env.ledger.credits[0]
	if credit.principal != recipient || credit.amount.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("unexpected credit %+v", credit)
	}

	if _, err := env.engine.Refund(info.ID, sender); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("refund after release: got %v, want ErrStateMismatch", err)
	}
	if len(env.ledger.credits) != 1 {
		t.Fatalf("terminal record must not move funds again")
	}
}

func TestRefundByEitherParty(t *testing.T) {
	env := newTestEnv(t)
	first := env.create(t)
	second := env.create(t)

	if _, err := env.engine.Refund(first.ID, outsider); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refund by outsider: got %v", err)
	}
	for i, tc := range []struct {
		id     [32]byte
		caller [20]byte
	}{{first.ID, sender}, {second.ID, recipient}} {
		info, err := env.engine.Refund(tc.id, tc.caller)
		if err != nil {
			t.Fatalf("refund %d: %v", i, err)
		}
		if info.Status != StatusRefunded {
			t.Fatalf("refund %d: expected Refunded, got %v", i, info.Status)
		}
		if env.ledger.credits[i].principal != sender {
			t.Fatalf("refund %d must credit the sender", i)
		}
	}
}

func TestCheckTimeoutBoundary(t *testing.T) {
	env := newTestEnv(t)
	info := env.create(t)

	env.now = info.CreatedAt + testTimeout - 1
	if _, err := env.engine.CheckTimeout(info.ID); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("before deadline: got %v, want ErrStateMismatch", err)
	}
	if len(env.ledger.credits) != 0 {
		t.Fatalf("premature poll must not move funds")
	}

	env.now = info.CreatedAt + testTimeout
	released, err := env.engine.CheckTimeout(info.ID)
	if err != nil {
		t.Fatalf("at deadline: %v", err)
	}
	if released.Status != StatusAutoReleased {
		t.Fatalf("expected AutoReleased, got %v", released.Status)
	}
	if env.ledger.credits[0].principal != recipient {
		t.Fatalf("auto release must credit the recipient")
	}

	if _, err := env.engine.CheckTimeout(info.ID); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("second poll: got %v, want ErrStateMismatch", err)
	}
}

func TestDisputeLifecycle(t *testing.T) {
	env := newTestEnv(t)
	info := env.create(t)

	if _, err := env.engine.InitiateDispute(info.ID, outsider, "not a party"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("dispute by outsider: got %v", err)
	}

	disputed, err := env.engine.InitiateDispute(info.ID, recipient, "item not received")
	if err != nil {
		t.Fatalf("initiate dispute: %v", err)
	}
	if disputed.Status != StatusDisputed || !disputed.HasDispute {
		t.Fatalf("expected Disputed with dispute info, got %+v", disputed)
	}
	dispute, err := env.engine.GetDisputeInfo(info.ID)
	if err != nil {
		t.Fatalf("get dispute info: %v", err)
	}
	if dispute.InitiatedBy != recipient || dispute.InitiatedAt != env.now || dispute.DisputePeriod != testDisputeWindow {
		t.Fatalf("unexpected dispute info %+v", dispute)
	}
	if dispute.Reason != "item not received" {
		t.Fatalf("unexpected reason %q", dispute.Reason)
	}

	if _, err := env.engine.InitiateDispute(info.ID, sender, "again"); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("second dispute: got %v, want ErrStateMismatch", err)
	}

	env.now = dispute.InitiatedAt + testDisputeWindow - 1
	if _, err := env.engine.CheckDisputeTimeout(info.ID); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("dispute poll before deadline: got %v", err)
	}

	env.now = dispute.InitiatedAt + testDisputeWindow
	resolved, err := env.engine.CheckDisputeTimeout(info.ID)
	if err != nil {
		t.Fatalf("dispute timeout: %v", err)
	}
	if resolved.Status != StatusDisputeResolvedForRecipient {
		t.Fatalf("default resolution must favour the recipient, got %v", resolved.Status)
	}
	if env.ledger.credits[0].principal != recipient {
		t.Fatalf("default resolution must credit the recipient")
	}
}

func TestDisputePrecedence(t *testing.T) {
	env := newTestEnv(t)
	info := env.create(t)
	if _, err := env.engine.InitiateDispute(info.ID, sender, "quality"); err != nil {
		t.Fatalf("initiate dispute: %v", err)
	}

	// The ordinary timeout has long elapsed, but Disputed takes precedence.
	env.now = info.CreatedAt + 10*testTimeout
	if _, err := env.engine.CheckTimeout(info.ID); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("check_timeout on disputed record: got %v, want ErrStateMismatch", err)
	}
	if len(env.ledger.credits) != 0 {
		t.Fatalf("precedence violation moved funds")
	}
}

func TestResolveDisputeAuthorization(t *testing.T) {
	env := newTestEnv(t)
	info := env.create(t)
	if _, err := env.engine.InitiateDispute(info.ID, sender, "damaged"); err != nil {
		t.Fatalf("initiate dispute: %v", err)
	}

	if _, err := env.engine.ResolveDisputeForRecipient(info.ID, sender); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("resolve by sender: got %v", err)
	}
	if _, err := env.engine.ResolveDisputeForSender(info.ID, recipient); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("resolve by recipient: got %v", err)
	}

	resolved, err := env.engine.ResolveDisputeForSender(info.ID, admin)
	if err != nil {
		t.Fatalf("admin resolve: %v", err)
	}
	if resolved.Status != StatusDisputeResolvedForSender {
		t.Fatalf("expected DisputeResolvedForSender, got %v", resolved.Status)
	}
	if env.ledger.credits[0].principal != sender {
		t.Fatalf("sender resolution must credit the sender")
	}

	if _, err := env.engine.ResolveDisputeForRecipient(info.ID, admin); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("resolve after terminal: got %v", err)
	}
}

func TestAdminResolveEmergencyPaths(t *testing.T) {
	env := newTestEnv(t)

	// Emergency override works on an Active record with no dispute.
	first := env.create(t)
	if _, err := env.engine.AdminResolveDispute(first.ID, outsider, true); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("emergency by outsider: got %v", err)
	}
	resolved, err := env.engine.AdminResolveDispute(first.ID, admin, true)
	if err != nil {
		t.Fatalf("emergency resolve active: %v", err)
	}
	if resolved.Status != StatusDisputeResolvedForRecipient {
		t.Fatalf("expected DisputeResolvedForRecipient, got %v", resolved.Status)
	}

	// And on a Disputed record, for the sender.
	second := env.create(t)
	if _, err := env.engine.InitiateDispute(second.ID, recipient, "fraud"); err != nil {
		t.Fatalf("initiate dispute: %v", err)
	}
	resolved, err = env.engine.AdminResolveDispute(second.ID, admin, false)
	if err != nil {
		t.Fatalf("emergency resolve disputed: %v", err)
	}
	if resolved.Status != StatusDisputeResolvedForSender {
		t.Fatalf("expected DisputeResolvedForSender, got %v", resolved.Status)
	}

	// Never on a terminal record.
	if _, err := env.engine.AdminResolveDispute(first.ID, admin, false); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("emergency on terminal: got %v", err)
	}
}

func TestUpdateDisputePeriod(t *testing.T) {
	env := newTestEnv(t)
	info := env.create(t)

	if _, err := env.engine.UpdateDisputePeriod(info.ID, recipient, 7200); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("update by recipient: got %v", err)
	}
	if _, err := env.engine.UpdateDisputePeriod(info.ID, sender, 0); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("zero period: got %v", err)
	}

	updated, err := env.engine.UpdateDisputePeriod(info.ID, sender, 7200)
	if err != nil {
		t.Fatalf("update dispute period: %v", err)
	}
	if updated.DisputePeriod != 7200 {
		t.Fatalf("expected period 7200, got %d", updated.DisputePeriod)
	}

	// A dispute opened now snapshots the updated period.
	if _, err := env.engine.InitiateDispute(info.ID, sender, "late"); err != nil {
		t.Fatalf("initiate dispute: %v", err)
	}
	dispute, err := env.engine.GetDisputeInfo(info.ID)
	if err != nil {
		t.Fatalf("get dispute info: %v", err)
	}
	if dispute.DisputePeriod != 7200 {
		t.Fatalf("dispute snapshot period = %d, want 7200", dispute.DisputePeriod)
	}

	if _, err := env.engine.UpdateDisputePeriod(info.ID, sender, 9600); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("update after dispute: got %v, want ErrStateMismatch", err)
	}
}

func TestNoResurrection(t *testing.T) {
	env := newTestEnv(t)
	info := env.create(t)
	if _, err := env.engine.Release(info.ID, sender); err != nil {
		t.Fatalf("release: %v", err)
	}
	credits := len(env.ledger.credits)

	attempts := []func() error{
		func() error { _, err := env.engine.Release(info.ID, sender); return err },
		func() error { _, err := env.engine.Refund(info.ID, sender); return err },
		func() error { _, err := env.engine.CheckTimeout(info.ID); return err },
		func() error { _, err := env.engine.InitiateDispute(info.ID, sender, "x"); return err },
		func() error { _, err := env.engine.ResolveDisputeForRecipient(info.ID, admin); return err },
		func() error { _, err := env.engine.ResolveDisputeForSender(info.ID, admin); return err },
		func() error { _, err := env.engine.CheckDisputeTimeout(info.ID); return err },
		func() error { _, err := env.engine.AdminResolveDispute(info.ID, admin, true); return err },
		func() error { _, err := env.engine.UpdateDisputePeriod(info.ID, sender, 60); return err },
	}
	for i, attempt := range attempts {
		if err := attempt(); !errors.Is(err, ErrStateMismatch) {
			t.Fatalf("attempt %d on terminal record: got %v, want ErrStateMismatch", i, err)
		}
	}
	if len(env.ledger.credits) != credits {
		t.Fatalf("terminal record moved funds again")
	}
}

func TestPauseGating(t *testing.T) {
	env := newTestEnv(t)
	info := env.create(t)
	if err := env.engine.SetPaused(admin, true); err != nil {
		t.Fatalf("pause: %v", err)
	}

	mutations := []func() error{
		func() error {
			_, err := env.engine.Create(sender, recipient, "USD", big.NewInt(1), testTimeout, testDisputeWindow)
			return err
		},
		func() error { _, err := env.engine.Release(info.ID, sender); return err },
		func() error { _, err := env.engine.Refund(info.ID, sender); return err },
		func() error { _, err := env.engine.CheckTimeout(info.ID); return err },
		func() error { _, err := env.engine.InitiateDispute(info.ID, sender, "x"); return err },
		func() error { _, err := env.engine.CheckDisputeTimeout(info.ID); return err },
		func() error { _, err := env.engine.AdminResolveDispute(info.ID, admin, true); return err },
		func() error { _, err := env.engine.UpdateDisputePeriod(info.ID, sender, 60); return err },
	}
	for i, mutate := range mutations {
		if err := mutate(); !errors.Is(err, ErrPaused) {
			t.Fatalf("mutation %d while paused: got %v, want ErrPaused", i, err)
		}
	}
	if len(env.ledger.credits) != 0 || len(env.ledger.debits) != 1 {
		t.Fatalf("paused operations must not touch the ledger")
	}

	// Queries stay available while paused.
	if _, err := env.engine.GetEscrow(info.ID); err != nil {
		t.Fatalf("query while paused: %v", err)
	}
	if paused, _ := env.engine.IsPaused(); !paused {
		t.Fatalf("expected paused flag set")
	}

	if err := env.engine.SetPaused(admin, false); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if _, err := env.engine.Release(info.ID, sender); err != nil {
		t.Fatalf("release after unpause: %v", err)
	}
}

func TestDisputeFeeCharged(t *testing.T) {
	env := newTestEnv(t)
	if err := env.engine.SetDisputeFee(admin, big.NewInt(5)); err != nil {
		t.Fatalf("set dispute fee: %v", err)
	}
	info := env.create(t)

	if _, err := env.engine.InitiateDispute(info.ID, recipient, "fee test"); err != nil {
		t.Fatalf("initiate dispute: %v", err)
	}
	if len(env.ledger.debits) != 2 {
		t.Fatalf("expected escrow debit plus fee debit, got %d", len(env.ledger.debits))
	}
	fee := env.ledger.debits[1]
	if fee.principal != recipient || fee.amount.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("unexpected fee debit %+v", fee)
	}
}

func TestDisputeFeeInsufficientBalanceAborts(t *testing.T) {
	env := newTestEnv(t)
	info := env.create(t)
	if err := env.engine.SetDisputeFee(admin, big.NewInt(5)); err != nil {
		t.Fatalf("set dispute fee: %v", err)
	}
	env.ledger.debitErr = errMockInsufficient
	if _, err := env.engine.InitiateDispute(info.ID, sender, "no funds"); !errors.Is(err, errMockInsufficient) {
		t.Fatalf("expected ledger error, got %v", err)
	}
	current, err := env.engine.GetEscrow(info.ID)
	if err != nil {
		t.Fatalf("get escrow: %v", err)
	}
	if current.Status != StatusActive || current.HasDispute {
		t.Fatalf("failed fee collection must leave the record untouched, got %+v", current)
	}
}

func TestQueries(t *testing.T) {
	env := newTestEnv(t)
	other := newTestAddress(0x33)

	first := env.create(t)
	second, err := env.engine.Create(sender, other, "EUR", big.NewInt(50), testTimeout, testDisputeWindow)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if _, err := env.engine.Release(second.ID, sender); err != nil {
		t.Fatalf("release second: %v", err)
	}

	count, err := env.engine.EscrowCount()
	if err != nil || count != 2 {
		t.Fatalf("count = %d (%v), want 2", count, err)
	}
	exists, err := env.engine.EscrowExists(first.ID)
	if err != nil || !exists {
		t.Fatalf("exists(first) = %v (%v)", exists, err)
	}
	if exists, _ := env.engine.EscrowExists([32]byte{0xFF}); exists {
		t.Fatalf("unknown id must not exist")
	}
	if _, err := env.engine.GetEscrow([32]byte{0xFF}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get unknown id: got %v, want ErrNotFound", err)
	}

	all, err := env.engine.GetAllEscrows()
	if err != nil || len(all) != 2 {
		t.Fatalf("all = %d (%v), want 2", len(all), err)
	}
	if all[0].ID != first.ID || all[1].ID != second.ID {
		t.Fatalf("results must follow creation order")
	}

	active, err := env.engine.GetEscrowsByStatus(StatusActive)
	if err != nil || len(active) != 1 || active[0].ID != first.ID {
		t.Fatalf("by status Active = %d (%v)", len(active), err)
	}
	released, err := env.engine.GetEscrowsByStatus(StatusReleased)
	if err != nil || len(released) != 1 || released[0].ID != second.ID {
		t.Fatalf("by status Released = %d (%v)", len(released), err)
	}

	mine, err := env.engine.GetEscrowsByParticipant(other)
	if err != nil || len(mine) != 1 || mine[0].ID != second.ID {
		t.Fatalf("by participant = %d (%v)", len(mine), err)
	}
	both, err := env.engine.GetEscrowsByParticipant(sender)
	if err != nil || len(both) != 2 {
		t.Fatalf("sender participates in both, got %d (%v)", len(both), err)
	}

	can, err := env.engine.CanDispute(first.ID)
	if err != nil || !can {
		t.Fatalf("CanDispute(active) = %v (%v)", can, err)
	}
	if can, _ := env.engine.CanDispute(second.ID); can {
		t.Fatalf("terminal record must not be disputable")
	}
	dispute, err := env.engine.GetDisputeInfo(first.ID)
	if err != nil || dispute != nil {
		t.Fatalf("dispute info before dispute = %+v (%v)", dispute, err)
	}
}

func TestAdminSurface(t *testing.T) {
	env := newTestEnv(t)

	if err := env.engine.Initialize(admin); !errors.Is(err, errAlreadyInit) {
		t.Fatalf("double initialize: got %v", err)
	}
	got, err := env.engine.Admin()
	if err != nil || got != admin {
		t.Fatalf("admin = %x (%v)", got, err)
	}

	if err := env.engine.SetDisputeFee(outsider, big.NewInt(1)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("set fee by outsider: got %v", err)
	}
	if err := env.engine.SetDisputeFee(admin, big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative fee: got %v", err)
	}
	if err := env.engine.SetDisputeFee(admin, big.NewInt(7)); err != nil {
		t.Fatalf("set fee: %v", err)
	}
	fee, err := env.engine.DisputeFee()
	if err != nil || fee.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("fee = %v (%v)", fee, err)
	}

	newAdmin := newTestAddress(0xBE)
	if err := env.engine.TransferAdmin(outsider, newAdmin); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("transfer by outsider: got %v", err)
	}
	if err := env.engine.TransferAdmin(admin, newAdmin); err != nil {
		t.Fatalf("transfer admin: %v", err)
	}
	if err := env.engine.SetPaused(admin, true); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("old admin must lose the role, got %v", err)
	}
	if err := env.engine.SetPaused(newAdmin, true); err != nil {
		t.Fatalf("pause by new admin: %v", err)
	}
	// The admin surface stays usable while paused so the pause can be lifted.
	if err := env.engine.SetPaused(newAdmin, false); err != nil {
		t.Fatalf("unpause: %v", err)
	}
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)
	var missing [32]byte
	missing[0] = 0x42
	if _, err := env.engine.Release(missing, sender); !errors.Is(err, ErrNotFound) {
		t.Fatalf("release missing: got %v", err)
	}
	if _, err := env.engine.CheckTimeout(missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("check_timeout missing: got %v", err)
	}
	if _, err := env.engine.GetDisputeInfo(missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("dispute info missing: got %v", err)
	}
}

func TestEventsEmittedOnCommit(t *testing.T) {
	env := newTestEnv(t)
	recorder := &events.Recorder{}
	env.engine.SetEmitter(recorder)

	info := env.create(t)
	if _, err := env.engine.InitiateDispute(info.ID, recipient, "slow"); err != nil {
		t.Fatalf("initiate dispute: %v", err)
	}
	if _, err := env.engine.ResolveDisputeForRecipient(info.ID, admin); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// A rejected operation must not emit.
	if _, err := env.engine.Release(info.ID, sender); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("release terminal: got %v", err)
	}

	want := []string{EventTypeCreated, EventTypeDisputeInitiated, EventTypeDisputeResolved}
	got := recorder.Types()
	if len(got) != len(want) {
		t.Fatalf("event types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}
