package escrow

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"nexafx/storage"
)

func newStoreRecord(seq uint64) *Escrow {
	return &Escrow{
		ID:              escrowID(sender, recipient, seq),
		Sender:          sender,
		Recipient:       recipient,
		Token:           "USD",
		Amount:          big.NewInt(250),
		CreatedAt:       1_700_000_000,
		TimeoutDuration: testTimeout,
		DisputePeriod:   testDisputeWindow,
		Status:          StatusActive,
		Sequence:        seq,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	record := newStoreRecord(0)

	require.NoError(t, store.EscrowPut(record))
	got, ok := store.EscrowGet(record.ID)
	require.True(t, ok)
	require.Equal(t, record.ID, got.ID)
	require.Equal(t, record.Sender, got.Sender)
	require.Equal(t, record.Recipient, got.Recipient)
	require.Equal(t, "USD", got.Token)
	require.Zero(t, got.Amount.Cmp(record.Amount))
	require.Equal(t, record.CreatedAt, got.CreatedAt)
	require.Equal(t, record.TimeoutDuration, got.TimeoutDuration)
	require.Equal(t, record.DisputePeriod, got.DisputePeriod)
	require.Equal(t, StatusActive, got.Status)
	require.Nil(t, got.Dispute)

	bySeq, ok := store.EscrowBySequence(0)
	require.True(t, ok)
	require.Equal(t, record.ID, bySeq.ID)
}

func TestStorePersistsDispute(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	record := newStoreRecord(0)
	record.Status = StatusDisputed
	record.Dispute = &DisputeInfo{
		InitiatedBy:   recipient,
		InitiatedAt:   1_700_000_500,
		DisputePeriod: testDisputeWindow,
		Reason:        "item damaged in transit",
	}

	require.NoError(t, store.EscrowPut(record))
	got, ok := store.EscrowGet(record.ID)
	require.True(t, ok)
	require.Equal(t, StatusDisputed, got.Status)
	require.NotNil(t, got.Dispute)
	require.Equal(t, record.Dispute.InitiatedBy, got.Dispute.InitiatedBy)
	require.Equal(t, record.Dispute.InitiatedAt, got.Dispute.InitiatedAt)
	require.Equal(t, record.Dispute.DisputePeriod, got.Dispute.DisputePeriod)
	require.Equal(t, record.Dispute.Reason, got.Dispute.Reason)
}

func TestStoreRejectsInvalidRecord(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	record := newStoreRecord(0)
	record.Amount = big.NewInt(0)
	require.ErrorIs(t, store.EscrowPut(record), ErrInvalidAmount)

	_, ok := store.EscrowGet(record.ID)
	require.False(t, ok)
}

func TestStoreSequenceCounter(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	require.EqualValues(t, 0, store.EscrowCount())

	for i := 0; i < 3; i++ {
		seq, err := store.NextSequence()
		require.NoError(t, err)
		require.EqualValues(t, i, seq)
		require.NoError(t, store.EscrowPut(newStoreRecord(seq)))
	}
	require.EqualValues(t, 3, store.EscrowCount())

	_, ok := store.EscrowBySequence(3)
	require.False(t, ok)
}

func TestStoreConfigRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	_, ok := store.ConfigGet()
	require.False(t, ok)

	cfg := &GlobalConfig{Admin: admin, DisputeFee: big.NewInt(9), Paused: true}
	require.NoError(t, store.ConfigPut(cfg))

	got, ok := store.ConfigGet()
	require.True(t, ok)
	require.Equal(t, admin, got.Admin)
	require.Zero(t, got.DisputeFee.Cmp(big.NewInt(9)))
	require.True(t, got.Paused)
}

func TestEngineOverStore(t *testing.T) {
	engine := NewEngine()
	engine.SetState(NewStore(storage.NewMemDB()))
	ledger := &mockLedger{}
	engine.SetLedger(ledger)
	now := int64(1_700_000_000)
	engine.SetNowFunc(func() int64 { return now })
	require.NoError(t, engine.Initialize(admin))

	info, err := engine.Create(sender, recipient, "usd", big.NewInt(75), testTimeout, testDisputeWindow)
	require.NoError(t, err)
	require.Equal(t, "USD", info.Token)

	now += testTimeout
	released, err := engine.CheckTimeout(info.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAutoReleased, released.Status)
	require.Len(t, ledger.credits, 1)
	require.Equal(t, recipient, ledger.credits[0].principal)
}
