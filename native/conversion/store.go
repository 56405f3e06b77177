package conversion

import (
	"encoding/binary"
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"nexafx/native/fees"
	"nexafx/storage"
)

var (
	rateKeyPrefix = []byte("conversion/rate/")
	lockKeyPrefix = []byte("conversion/lock/")
	txKeyPrefix   = []byte("conversion/tx/")
	txCountKey    = []byte("conversion/tx_count")
	configKey     = []byte("conversion/config")
)

func rateKey(pair string) []byte {
	return append(append([]byte{}, rateKeyPrefix...), pair...)
}

func lockKey(user [20]byte, pair string) []byte {
	key := append(append([]byte{}, lockKeyPrefix...), hex.EncodeToString(user[:])...)
	key = append(key, '/')
	return append(key, pair...)
}

func txKey(id uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return append(append([]byte{}, txKeyPrefix...), buf[:]...)
}

type storedRate struct {
	From             string
	To               string
	Rate             *big.Int
	UpdatedAt        uint64
	ValidityDuration uint64
}

type storedLock struct {
	User      [20]byte
	From      string
	To        string
	Rate      *big.Int
	LockedAt  uint64
	ExpiresAt uint64
}

type storedTx struct {
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
	Timestamp   uint64
}

type storedConfig struct {
	Admin            [20]byte
	Oracle           [20]byte
	PoolAccount      [20]byte
	TreasuryBps      uint32
	RewardPoolBps    uint32
	TreasuryWallet   [20]byte
	RewardPoolWallet [20]byte
	HasMin           bool
	MinAmount        *big.Int
	HasMax           bool
	MaxAmount        *big.Int
	LockDuration     uint64
	Paused           bool
}

// Store persists conversion state in a key-value database using RLP encoding.
type Store struct {
	db storage.Database
}

// NewStore wraps the database in a conversion state backend.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func (s *Store) RatePut(rate *ExchangeRate) error {
	if rate == nil || rate.Rate == nil || rate.Rate.Sign() <= 0 {
		return ErrInvalidRate
	}
	encoded, err := rlp.EncodeToBytes(&storedRate{
		From:             rate.From,
		To:               rate.To,
		Rate:             rate.Rate,
		UpdatedAt:        uint64(rate.UpdatedAt),
		ValidityDuration: uint64(rate.ValidityDuration),
	})
	if err != nil {
		return err
	}
	return s.db.Put(rateKey(PairKey(rate.From, rate.To)), encoded)
}

func (s *Store) RateGet(pair string) (*ExchangeRate, bool) {
	raw, err := s.db.Get(rateKey(pair))
	if err != nil {
		return nil, false
	}
	var stored storedRate
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false
	}
	return &ExchangeRate{
		From:             stored.From,
		To:               stored.To,
		Rate:             stored.Rate,
		UpdatedAt:        int64(stored.UpdatedAt),
		ValidityDuration: int64(stored.ValidityDuration),
	}, true
}

func (s *Store) LockPut(lock *RateLock) error {
	if lock == nil || lock.Rate == nil || lock.Rate.Sign() <= 0 {
		return ErrInvalidRate
	}
	encoded, err := rlp.EncodeToBytes(&storedLock{
		User:      lock.User,
		From:      lock.From,
		To:        lock.To,
		Rate:      lock.Rate,
		LockedAt:  uint64(lock.LockedAt),
		ExpiresAt: uint64(lock.ExpiresAt),
	})
	if err != nil {
		return err
	}
	return s.db.Put(lockKey(lock.User, PairKey(lock.From, lock.To)), encoded)
}

func (s *Store) LockGet(user [20]byte, pair string) (*RateLock, bool) {
	raw, err := s.db.Get(lockKey(user, pair))
	if err != nil {
		return nil, false
	}
	var stored storedLock
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false
	}
	return &RateLock{
		User:      stored.User,
		From:      stored.From,
		To:        stored.To,
		Rate:      stored.Rate,
		LockedAt:  int64(stored.LockedAt),
		ExpiresAt: int64(stored.ExpiresAt),
	}, true
}

func (s *Store) LockDelete(user [20]byte, pair string) error {
	return s.db.Delete(lockKey(user, pair))
}

func (s *Store) TxPut(tx *ConversionTx) error {
	if tx == nil {
		return ErrNotFound
	}
	clone := tx.Clone()
	encoded, err := rlp.EncodeToBytes(&storedTx{
		ID:          clone.ID,
		User:        clone.User,
		From:        clone.From,
		To:          clone.To,
		AmountIn:    clone.AmountIn,
		AmountOut:   clone.AmountOut,
		TreasuryFee: clone.TreasuryFee,
		RewardFee:   clone.RewardFee,
		Rate:        clone.Rate,
		RateLocked:  clone.RateLocked,
		Timestamp:   uint64(clone.Timestamp),
	})
	if err != nil {
		return err
	}
	return s.db.Put(txKey(tx.ID), encoded)
}

func (s *Store) TxGet(id uint64) (*ConversionTx, bool) {
	raw, err := s.db.Get(txKey(id))
	if err != nil {
		return nil, false
	}
	var stored storedTx
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false
	}
	return &ConversionTx{
		ID:          stored.ID,
		User:        stored.User,
		From:        stored.From,
		To:          stored.To,
		AmountIn:    stored.AmountIn,
		AmountOut:   stored.AmountOut,
		TreasuryFee: stored.TreasuryFee,
		RewardFee:   stored.RewardFee,
		Rate:        stored.Rate,
		RateLocked:  stored.RateLocked,
		Timestamp:   int64(stored.Timestamp),
	}, true
}

func (s *Store) TxCount() uint64 {
	raw, err := s.db.Get(txCountKey)
	if err != nil || len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

func (s *Store) NextTxID() (uint64, error) {
	next := s.TxCount()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], next+1)
	if err := s.db.Put(txCountKey, buf[:]); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) ConfigPut(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	stored := &storedConfig{
		Admin:            cfg.Admin,
		Oracle:           cfg.Oracle,
		PoolAccount:      cfg.PoolAccount,
		TreasuryBps:      cfg.Policy.TreasuryBps,
		RewardPoolBps:    cfg.Policy.RewardPoolBps,
		TreasuryWallet:   cfg.Policy.TreasuryWallet,
		RewardPoolWallet: cfg.Policy.RewardPoolWallet,
		LockDuration:     uint64(cfg.LockDuration),
		Paused:           cfg.Paused,
		MinAmount:        big.NewInt(0),
		MaxAmount:        big.NewInt(0),
	}
	if cfg.MinAmount != nil {
		stored.HasMin = true
		stored.MinAmount = cfg.MinAmount
	}
	if cfg.MaxAmount != nil {
		stored.HasMax = true
		stored.MaxAmount = cfg.MaxAmount
	}
	encoded, err := rlp.EncodeToBytes(stored)
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
	cfg := &Config{
		Admin:       stored.Admin,
		Oracle:      stored.Oracle,
		PoolAccount: stored.PoolAccount,
		Policy: fees.SplitPolicy{
			TreasuryBps:      stored.TreasuryBps,
			RewardPoolBps:    stored.RewardPoolBps,
			TreasuryWallet:   stored.TreasuryWallet,
			RewardPoolWallet: stored.RewardPoolWallet,
		},
		LockDuration: int64(stored.LockDuration),
		Paused:       stored.Paused,
	}
	if stored.HasMin {
		cfg.MinAmount = stored.MinAmount
	}
	if stored.HasMax {
		cfg.MaxAmount = stored.MaxAmount
	}
	return cfg, true
}
