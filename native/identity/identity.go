// Package identity derives deterministic wallet addresses for users known
// only by email, letting the platform credit a recipient before they hold a
// key of their own.
package identity

import (
	"errors"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidEmail rejects an empty or malformed email address.
var ErrInvalidEmail = errors.New("identity: invalid email address")

// NormalizeEmail trims and lower-cases an email address. Addresses differing
// only in case or surrounding whitespace derive the same wallet.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	at := strings.IndexByte(normalized, '@')
	if at <= 0 || at == len(normalized)-1 {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// DeriveWalletAddress maps a normalized email to a wallet address. The
// mapping is pure: the same email always yields the same address.
func DeriveWalletAddress(email string) ([20]byte, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return [20]byte{}, err
	}
	hash := ethcrypto.Keccak256([]byte(normalized))
	var addr [20]byte
	copy(addr[:], hash[12:])
	return addr, nil
}
