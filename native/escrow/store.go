package escrow

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"nexafx/storage"
)

var (
	escrowRecordPrefix = []byte("escrow/record/")
	escrowSeqPrefix    = []byte("escrow/seq/")
	escrowCountKey     = []byte("escrow/count")
	escrowConfigKey    = []byte("escrow/config")
)

func escrowRecordKey(id [32]byte) []byte {
	buf := make([]byte, len(escrowRecordPrefix)+len(id))
	copy(buf, escrowRecordPrefix)
	copy(buf[len(escrowRecordPrefix):], id[:])
	return buf
}

func escrowSeqKey(seq uint64) []byte {
	buf := make([]byte, len(escrowSeqPrefix)+8)
	copy(buf, escrowSeqPrefix)
	binary.BigEndian.PutUint64(buf[len(escrowSeqPrefix):], seq)
	return buf
}

// storedEscrow is the RLP wire form of a record. Durations and timestamps
// are stored unsigned; the optional dispute is flattened behind HasDispute.
type storedEscrow struct {
	ID              [32]byte
	Sender          [20]byte
	Recipient       [20]byte
	Token           string
	Amount          *big.Int
	CreatedAt       uint64
	TimeoutDuration uint64
	DisputePeriod   uint64
	Status          uint8
	Sequence        uint64
	HasDispute      bool
	DisputeBy       [20]byte
	DisputeAt       uint64
	DisputeWindow   uint64
	DisputeReason   string
}

func toStored(e *Escrow) *storedEscrow {
	stored := &storedEscrow{
		ID:              e.ID,
		Sender:          e.Sender,
		Recipient:       e.Recipient,
		Token:           e.Token,
		Amount:          e.Amount,
		CreatedAt:       uint64(e.CreatedAt),
		TimeoutDuration: uint64(e.TimeoutDuration),
		DisputePeriod:   uint64(e.DisputePeriod),
		Status:          uint8(e.Status),
		Sequence:        e.Sequence,
	}
	if e.Dispute != nil {
		stored.HasDispute = true
		stored.DisputeBy = e.Dispute.InitiatedBy
		stored.DisputeAt = uint64(e.Dispute.InitiatedAt)
		stored.DisputeWindow = uint64(e.Dispute.DisputePeriod)
		stored.DisputeReason = e.Dispute.Reason
	}
	return stored
}

func fromStored(s *storedEscrow) *Escrow {
	esc := &Escrow{
		ID:              s.ID,
		Sender:          s.Sender,
		Recipient:       s.Recipient,
		Token:           s.Token,
		Amount:          s.Amount,
		CreatedAt:       int64(s.CreatedAt),
		TimeoutDuration: int64(s.TimeoutDuration),
		DisputePeriod:   int64(s.DisputePeriod),
		Status:          Status(s.Status),
		Sequence:        s.Sequence,
	}
	if s.HasDispute {
		esc.Dispute = &DisputeInfo{
			InitiatedBy:   s.DisputeBy,
			InitiatedAt:   int64(s.DisputeAt),
			DisputePeriod: int64(s.DisputeWindow),
			Reason:        s.DisputeReason,
		}
	}
	return esc
}

type storedConfig struct {
	Admin      [20]byte
	DisputeFee *big.Int
	Paused     bool
}

// Store persists escrow records and the module config on a key-value
// database. It implements the engine's state interface.
type Store struct {
	db storage.Database
}

// NewStore wraps the given database.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

// EscrowPut sanitizes and writes the record plus its sequence index entry.
func (s *Store) EscrowPut(e *Escrow) error {
	sanitized, err := SanitizeEscrow(e)
	if err != nil {
		return err
	}
	encoded, err := rlp.EncodeToBytes(toStored(sanitized))
	if err != nil {
		return err
	}
	if err := s.db.Put(escrowRecordKey(sanitized.ID), encoded); err != nil {
		return err
	}
	return s.db.Put(escrowSeqKey(sanitized.Sequence), sanitized.ID[:])
}

// EscrowGet loads a record by id.
func (s *Store) EscrowGet(id [32]byte) (*Escrow, bool) {
	raw, err := s.db.Get(escrowRecordKey(id))
	if err != nil {
		return nil, false
	}
	stored := new(storedEscrow)
	if err := rlp.DecodeBytes(raw, stored); err != nil {
		return nil, false
	}
	return fromStored(stored), true
}

// EscrowBySequence loads the record allocated at the given creation ordinal.
func (s *Store) EscrowBySequence(seq uint64) (*Escrow, bool) {
	raw, err := s.db.Get(escrowSeqKey(seq))
	if err != nil || len(raw) != 32 {
		return nil, false
	}
	var id [32]byte
	copy(id[:], raw)
	return s.EscrowGet(id)
}

// EscrowCount returns the number of sequences allocated so far.
func (s *Store) EscrowCount() uint64 {
	raw, err := s.db.Get(escrowCountKey)
	if err != nil || len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

// NextSequence allocates the next creation ordinal.
func (s *Store) NextSequence() (uint64, error) {
	next := s.EscrowCount()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], next+1)
	if err := s.db.Put(escrowCountKey, buf[:]); err != nil {
		return 0, err
	}
	return next, nil
}

// ConfigPut persists the module config.
func (s *Store) ConfigPut(cfg *GlobalConfig) error {
	if cfg == nil {
		return ErrNotFound
	}
	clone := cfg.Clone()
	encoded, err := rlp.EncodeToBytes(&storedConfig{
		Admin:      clone.Admin,
		DisputeFee: clone.DisputeFee,
		Paused:     clone.Paused,
	})
	if err != nil {
		return err
	}
	return s.db.Put(escrowConfigKey, encoded)
}

// ConfigGet loads the module config.
func (s *Store) ConfigGet() (*GlobalConfig, bool) {
	raw, err := s.db.Get(escrowConfigKey)
	if err != nil {
		return nil, false
	}
	stored := new(storedConfig)
	if err := rlp.DecodeBytes(raw, stored); err != nil {
		return nil, false
	}
	fee := big.NewInt(0)
	if stored.DisputeFee != nil {
		fee = stored.DisputeFee
	}
	return &GlobalConfig{Admin: stored.Admin, DisputeFee: fee, Paused: stored.Paused}, true
}
