package config

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the host configuration for the custody modules. Amounts are
// decimal strings so TOML files stay precise beyond int64.
type Config struct {
	DataDir    string           `toml:"DataDir"`
	Escrow     EscrowConfig     `toml:"Escrow"`
	Conversion ConversionConfig `toml:"Conversion"`
	Liquidity  LiquidityConfig  `toml:"Liquidity"`
	Multisig   MultisigConfig   `toml:"Multisig"`
}

// EscrowConfig seeds the escrow module's global config.
type EscrowConfig struct {
	Admin      string `toml:"Admin"`
	DisputeFee string `toml:"DisputeFee"`
	Paused     bool   `toml:"Paused"`
}

// ConversionConfig seeds the conversion module.
type ConversionConfig struct {
	Admin         string `toml:"Admin"`
	Oracle        string `toml:"Oracle"`
	PoolAccount   string `toml:"PoolAccount"`
	TreasuryBps   uint32 `toml:"TreasuryBps"`
	RewardPoolBps uint32 `toml:"RewardPoolBps"`
	Treasury      string `toml:"Treasury"`
	RewardPool    string `toml:"RewardPool"`
	MinAmount     string `toml:"MinAmount"`
	MaxAmount     string `toml:"MaxAmount"`
	LockDuration  int64  `toml:"LockDuration"`
}

// LiquidityConfig seeds the liquidity module.
type LiquidityConfig struct {
	Admin       string `toml:"Admin"`
	PoolAccount string `toml:"PoolAccount"`
	LockPeriod  int64  `toml:"LockPeriod"`
}

// MultisigConfig seeds the multisig signer set.
type MultisigConfig struct {
	Signers   []string `toml:"Signers"`
	Threshold uint32   `toml:"Threshold"`
}

// Load reads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{DataDir: "./data"}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks address and amount syntax for every populated field.
func (c *Config) Validate() error {
	for field, value := range map[string]string{
		"Escrow.Admin":           c.Escrow.Admin,
		"Conversion.Admin":       c.Conversion.Admin,
		"Conversion.Oracle":      c.Conversion.Oracle,
		"Conversion.PoolAccount": c.Conversion.PoolAccount,
		"Conversion.Treasury":    c.Conversion.Treasury,
		"Conversion.RewardPool":  c.Conversion.RewardPool,
		"Liquidity.Admin":        c.Liquidity.Admin,
		"Liquidity.PoolAccount":  c.Liquidity.PoolAccount,
	} {
		if value == "" {
			continue
		}
		if _, err := ParseAddress(value); err != nil {
			return fmt.Errorf("config: %s: %w", field, err)
		}
	}
	for _, signer := range c.Multisig.Signers {
		if _, err := ParseAddress(signer); err != nil {
			return fmt.Errorf("config: Multisig.Signers: %w", err)
		}
	}
	for field, value := range map[string]string{
		"Escrow.DisputeFee":    c.Escrow.DisputeFee,
		"Conversion.MinAmount": c.Conversion.MinAmount,
		"Conversion.MaxAmount": c.Conversion.MaxAmount,
	} {
		if value == "" {
			continue
		}
		if _, err := ParseAmount(value); err != nil {
			return fmt.Errorf("config: %s: %w", field, err)
		}
	}
	return nil
}

// ParseAddress decodes a 0x-prefixed or bare 40-character hex address.
func ParseAddress(s string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(raw) != 20 {
		return addr, fmt.Errorf("invalid address %q: want 20 bytes, got %d", s, len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

// ParseAmount decodes a non-negative decimal amount string.
func ParseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return amount, nil
}
