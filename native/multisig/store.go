package multisig

import (
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"nexafx/storage"
)

var (
	configKey         = []byte("multisig/config")
	proposalKeyPrefix = []byte("multisig/proposal/")
	nonceKeyPrefix    = []byte("multisig/nonce/")
)

func proposalKey(id [32]byte) []byte {
	return append(append([]byte{}, proposalKeyPrefix...), id[:]...)
}

func nonceKey(addr [20]byte) []byte {
	return append(append([]byte{}, nonceKeyPrefix...), hex.EncodeToString(addr[:])...)
}

type storedConfig struct {
	Signers   [][20]byte
	Threshold uint32
	Nonce     uint64
}

type storedProposal struct {
	ID        [32]byte
	Operation [32]byte
	Proposer  [20]byte
	Approvals [][20]byte
	CreatedAt uint64
	Executed  bool
}

// Store persists multisig state in a key-value database using RLP encoding.
// It backs both the engine and the nonce tracker.
type Store struct {
	db storage.Database
}

// NewStore wraps the database in a multisig state backend.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func (s *Store) ConfigPut(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	encoded, err := rlp.EncodeToBytes(&storedConfig{
		Signers:   cfg.Signers,
		Threshold: cfg.Threshold,
		Nonce:     cfg.Nonce,
	})
	if err != nil {
		return err
	}
	return s.db.Put(configKey, encoded)
}

func (s *Store) ConfigGet() (*Config, bool) {
	raw, err := s.db.Get(configKey)
	if err != nil {
		return nil, false
	}
	var stored storedConfig
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false
	}
	return &Config{Signers: stored.Signers, Threshold: stored.Threshold, Nonce: stored.Nonce}, true
}

func (s *Store) ProposalPut(p *Proposal) error {
	if p == nil {
		return ErrNotFound
	}
	createdAt := uint64(0)
	if p.CreatedAt > 0 {
		createdAt = uint64(p.CreatedAt)
	}
	encoded, err := rlp.EncodeToBytes(&storedProposal{
		ID:        p.ID,
		Operation: p.Operation,
		Proposer:  p.Proposer,
		Approvals: p.Approvals,
		CreatedAt: createdAt,
		Executed:  p.Executed,
	})
	if err != nil {
		return err
	}
	return s.db.Put(proposalKey(p.ID), encoded)
}

func (s *Store) ProposalGet(id [32]byte) (*Proposal, bool) {
	raw, err := s.db.Get(proposalKey(id))
	if err != nil {
		return nil, false
	}
	var stored storedProposal
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false
	}
	return &Proposal{
		ID:        stored.ID,
		Operation: stored.Operation,
		Proposer:  stored.Proposer,
		Approvals: stored.Approvals,
		CreatedAt: int64(stored.CreatedAt),
		Executed:  stored.Executed,
	}, true
}

func (s *Store) NoncePut(addr [20]byte, nonce uint64) error {
	encoded, err := rlp.EncodeToBytes(new(big.Int).SetUint64(nonce))
	if err != nil {
		return err
	}
	return s.db.Put(nonceKey(addr), encoded)
}

func (s *Store) NonceGet(addr [20]byte) uint64 {
	raw, err := s.db.Get(nonceKey(addr))
	if err != nil {
		return 0
	}
	nonce := new(big.Int)
	if err := rlp.DecodeBytes(raw, nonce); err != nil {
		return 0
	}
	return nonce.Uint64()
}
