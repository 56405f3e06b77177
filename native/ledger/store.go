package ledger

import (
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"nexafx/storage"
)

var (
	assetKeyPrefix   = []byte("ledger/asset/")
	assetIndexKey    = []byte("ledger/assets")
	balanceKeyPrefix = []byte("ledger/balance/")
	vaultKeyPrefix   = []byte("ledger/vault/")
	configKey        = []byte("ledger/config")
)

func assetKey(symbol string) []byte {
	return append(append([]byte{}, assetKeyPrefix...), symbol...)
}

func balanceKey(addr [20]byte, symbol string) []byte {
	key := append(append([]byte{}, balanceKeyPrefix...), symbol...)
	key = append(key, '/')
	return append(key, hex.EncodeToString(addr[:])...)
}

func vaultKey(symbol string) []byte {
	return append(append([]byte{}, vaultKeyPrefix...), symbol...)
}

type storedAsset struct {
	Symbol      string
	Name        string
	Decimals    uint8
	TotalSupply *big.Int
}

type storedConfig struct {
	Admin  [20]byte
	Paused bool
}

// Store persists ledger state in a key-value database using RLP encoding.
type Store struct {
	db storage.Database
}

// NewStore wraps the database in a ledger state backend.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func (s *Store) AssetPut(a *Asset) error {
	sanitized, err := SanitizeAsset(a)
	if err != nil {
		return err
	}
	encoded, err := rlp.EncodeToBytes(&storedAsset{
		Symbol:      sanitized.Symbol,
		Name:        sanitized.Name,
		Decimals:    sanitized.Decimals,
		TotalSupply: sanitized.TotalSupply,
	})
	if err != nil {
		return err
	}
	known, err := s.db.Has(assetKey(sanitized.Symbol))
	if err != nil {
		return err
	}
	if err := s.db.Put(assetKey(sanitized.Symbol), encoded); err != nil {
		return err
	}
	if known {
		return nil
	}
	symbols := append(s.AssetSymbols(), sanitized.Symbol)
	index, err := rlp.EncodeToBytes(symbols)
	if err != nil {
		return err
	}
	return s.db.Put(assetIndexKey, index)
}

func (s *Store) AssetGet(symbol string) (*Asset, bool) {
	raw, err := s.db.Get(assetKey(symbol))
	if err != nil {
		return nil, false
	}
	var stored storedAsset
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false
	}
	return &Asset{
		Symbol:      stored.Symbol,
		Name:        stored.Name,
		Decimals:    stored.Decimals,
		TotalSupply: stored.TotalSupply,
	}, true
}

func (s *Store) AssetSymbols() []string {
	raw, err := s.db.Get(assetIndexKey)
	if err != nil {
		return nil
	}
	var symbols []string
	if err := rlp.DecodeBytes(raw, &symbols); err != nil {
		return nil
	}
	return symbols
}

func (s *Store) BalancePut(addr [20]byte, symbol string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	encoded, err := rlp.EncodeToBytes(amount)
	if err != nil {
		return err
	}
	return s.db.Put(balanceKey(addr, symbol), encoded)
}

func (s *Store) BalanceGet(addr [20]byte, symbol string) *big.Int {
	return s.readAmount(balanceKey(addr, symbol))
}

func (s *Store) VaultPut(symbol string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	encoded, err := rlp.EncodeToBytes(amount)
	if err != nil {
		return err
	}
	return s.db.Put(vaultKey(symbol), encoded)
}

func (s *Store) VaultGet(symbol string) *big.Int {
	return s.readAmount(vaultKey(symbol))
}

func (s *Store) readAmount(key []byte) *big.Int {
	raw, err := s.db.Get(key)
	if err != nil {
		return big.NewInt(0)
	}
	amount := new(big.Int)
	if err := rlp.DecodeBytes(raw, amount); err != nil {
		return big.NewInt(0)
	}
	return amount
}

func (s *Store) ConfigPut(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	encoded, err := rlp.EncodeToBytes(&storedConfig{Admin: cfg.Admin, Paused: cfg.Paused})
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
	return &Config{Admin: stored.Admin, Paused: stored.Paused}, true
}
