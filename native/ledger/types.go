package ledger

import (
	"math/big"
	"strings"
)

// Asset is a registered token definition. The symbol is the canonical
// uppercase identifier used in balances, escrows and conversions.
type Asset struct {
	Symbol      string
	Name        string
	Decimals    uint8
	TotalSupply *big.Int
}

// Clone returns a deep copy of the asset.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	clone := *a
	if a.TotalSupply != nil {
		clone.TotalSupply = new(big.Int).Set(a.TotalSupply)
	} else {
		clone.TotalSupply = big.NewInt(0)
	}
	return &clone
}

// NormalizeSymbol canonicalises a token symbol to uppercase with surrounding
// whitespace removed.
func NormalizeSymbol(symbol string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(symbol))
	if trimmed == "" {
		return "", ErrInvalidSymbol
	}
	return trimmed, nil
}

// SanitizeAsset validates and normalises the supplied asset definition
// without mutating the input.
func SanitizeAsset(a *Asset) (*Asset, error) {
	if a == nil {
		return nil, ErrUnknownAsset
	}
	clone := a.Clone()
	symbol, err := NormalizeSymbol(clone.Symbol)
	if err != nil {
		return nil, err
	}
	clone.Symbol = symbol
	if strings.TrimSpace(clone.Name) == "" {
		clone.Name = symbol
	}
	if clone.TotalSupply.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	return clone, nil
}
