package liquidity

import (
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"nexafx/storage"
)

var (
	poolKeyPrefix     = []byte("liquidity/pool/")
	poolIndexKey      = []byte("liquidity/pools")
	positionKeyPrefix = []byte("liquidity/position/")
	configKey         = []byte("liquidity/config")
)

func poolKey(currency string) []byte {
	return append(append([]byte{}, poolKeyPrefix...), currency...)
}

func positionKey(provider [20]byte, currency string) []byte {
	key := append(append([]byte{}, positionKeyPrefix...), currency...)
	key = append(key, '/')
	return append(key, hex.EncodeToString(provider[:])...)
}

type storedPool struct {
	Currency     string
	Total        *big.Int
	Available    *big.Int
	Reserved     *big.Int
	MinThreshold *big.Int
	Providers    [][20]byte
}

type storedPosition struct {
	Provider       [20]byte
	Currency       string
	Amount         *big.Int
	AccruedRewards *big.Int
	LockUntil      uint64
}

type storedConfig struct {
	Admin       [20]byte
	PoolAccount [20]byte
	LockPeriod  uint64
	Paused      bool
}

// Store persists liquidity state in a key-value database using RLP encoding.
type Store struct {
	db storage.Database
}

// NewStore wraps the database in a liquidity state backend.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func (s *Store) PoolPut(pool *Pool) error {
	if pool == nil {
		return ErrPoolNotFound
	}
	clone := pool.Clone()
	encoded, err := rlp.EncodeToBytes(&storedPool{
		Currency:     clone.Currency,
		Total:        clone.Total,
		Available:    clone.Available,
		Reserved:     clone.Reserved,
		MinThreshold: clone.MinThreshold,
		Providers:    clone.Providers,
	})
	if err != nil {
		return err
	}
	known, err := s.db.Has(poolKey(clone.Currency))
	if err != nil {
		return err
	}
	if err := s.db.Put(poolKey(clone.Currency), encoded); err != nil {
		return err
	}
	if known {
		return nil
	}
	currencies := append(s.PoolCurrencies(), clone.Currency)
	index, err := rlp.EncodeToBytes(currencies)
	if err != nil {
		return err
	}
	return s.db.Put(poolIndexKey, index)
}

func (s *Store) PoolGet(currency string) (*Pool, bool) {
	raw, err := s.db.Get(poolKey(currency))
	if err != nil {
		return nil, false
	}
	var stored storedPool
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false
	}
	return &Pool{
		Currency:     stored.Currency,
		Total:        stored.Total,
		Available:    stored.Available,
		Reserved:     stored.Reserved,
		MinThreshold: stored.MinThreshold,
		Providers:    stored.Providers,
	}, true
}

func (s *Store) PoolCurrencies() []string {
	raw, err := s.db.Get(poolIndexKey)
	if err != nil {
		return nil
	}
	var currencies []string
	if err := rlp.DecodeBytes(raw, &currencies); err != nil {
		return nil
	}
	return currencies
}

func (s *Store) PositionPut(position *Position) error {
	if position == nil {
		return ErrPositionNotFound
	}
	clone := position.Clone()
	lockUntil := uint64(0)
	if clone.LockUntil > 0 {
		lockUntil = uint64(clone.LockUntil)
	}
	encoded, err := rlp.EncodeToBytes(&storedPosition{
		Provider:       clone.Provider,
		Currency:       clone.Currency,
		Amount:         clone.Amount,
		AccruedRewards: clone.AccruedRewards,
		LockUntil:      lockUntil,
	})
	if err != nil {
		return err
	}
	return s.db.Put(positionKey(clone.Provider, clone.Currency), encoded)
}

func (s *Store) PositionGet(provider [20]byte, currency string) (*Position, bool) {
	raw, err := s.db.Get(positionKey(provider, currency))
	if err != nil {
		return nil, false
	}
	var stored storedPosition
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false
	}
	return &Position{
		Provider:       stored.Provider,
		Currency:       stored.Currency,
		Amount:         stored.Amount,
		AccruedRewards: stored.AccruedRewards,
		LockUntil:      int64(stored.LockUntil),
	}, true
}

func (s *Store) PositionDelete(provider [20]byte, currency string) error {
	return s.db.Delete(positionKey(provider, currency))
}

func (s *Store) ConfigPut(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	lockPeriod := uint64(0)
	if cfg.LockPeriod > 0 {
		lockPeriod = uint64(cfg.LockPeriod)
	}
	encoded, err := rlp.EncodeToBytes(&storedConfig{
		Admin:       cfg.Admin,
		PoolAccount: cfg.PoolAccount,
		LockPeriod:  lockPeriod,
		Paused:      cfg.Paused,
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
		Admin:       stored.Admin,
		PoolAccount: stored.PoolAccount,
		LockPeriod:  int64(stored.LockPeriod),
		Paused:      stored.Paused,
	}, true
}
