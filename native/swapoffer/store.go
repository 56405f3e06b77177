package swapoffer

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"nexafx/storage"
)

var (
	offerKeyPrefix = []byte("swap/offer/")
	offerCountKey  = []byte("swap/offer_count")
	configKey      = []byte("swap/config")
)

func offerKey(id uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return append(append([]byte{}, offerKeyPrefix...), buf[:]...)
}

type storedOffer struct {
	ID            uint64
	Creator       [20]byte
	OfferToken    string
	OfferAmount   *big.Int
	RequestToken  string
	RequestAmount *big.Int
	CreatedAt     uint64
	ExpiresAt     uint64
}

type storedConfig struct {
	Admin        [20]byte
	FeeBps       uint32
	FeeCollector [20]byte
	Paused       bool
}

// Store persists swap state in a key-value database using RLP encoding.
type Store struct {
	db storage.Database
}

// NewStore wraps the database in a swap state backend.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func (s *Store) OfferPut(offer *Offer) error {
	if offer == nil || offer.OfferAmount == nil || offer.RequestAmount == nil {
		return ErrInvalidAmount
	}
	encoded, err := rlp.EncodeToBytes(&storedOffer{
		ID:            offer.ID,
		Creator:       offer.Creator,
		OfferToken:    offer.OfferToken,
		OfferAmount:   offer.OfferAmount,
		RequestToken:  offer.RequestToken,
		RequestAmount: offer.RequestAmount,
		CreatedAt:     uint64(offer.CreatedAt),
		ExpiresAt:     uint64(offer.ExpiresAt),
	})
	if err != nil {
		return err
	}
	return s.db.Put(offerKey(offer.ID), encoded)
}

func (s *Store) OfferGet(id uint64) (*Offer, bool) {
	raw, err := s.db.Get(offerKey(id))
	if err != nil {
		return nil, false
	}
	var stored storedOffer
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false
	}
	return &Offer{
		ID:            stored.ID,
		Creator:       stored.Creator,
		OfferToken:    stored.OfferToken,
		OfferAmount:   stored.OfferAmount,
		RequestToken:  stored.RequestToken,
		RequestAmount: stored.RequestAmount,
		CreatedAt:     int64(stored.CreatedAt),
		ExpiresAt:     int64(stored.ExpiresAt),
	}, true
}

func (s *Store) OfferDelete(id uint64) error {
	return s.db.Delete(offerKey(id))
}

// OfferCount returns the number of IDs issued, including offers since
// accepted or cancelled.
func (s *Store) OfferCount() uint64 {
	raw, err := s.db.Get(offerCountKey)
	if err != nil || len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

// NextOfferID issues the next sequential offer ID, starting at one.
func (s *Store) NextOfferID() (uint64, error) {
	next := s.OfferCount() + 1
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], next)
	if err := s.db.Put(offerCountKey, buf[:]); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) ConfigPut(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	encoded, err := rlp.EncodeToBytes(&storedConfig{
		Admin:        cfg.Admin,
		FeeBps:       cfg.FeeBps,
		FeeCollector: cfg.FeeCollector,
		Paused:       cfg.Paused,
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
	return &Config{
		Admin:        stored.Admin,
		FeeBps:       stored.FeeBps,
		FeeCollector: stored.FeeCollector,
		Paused:       stored.Paused,
	}, true
}
