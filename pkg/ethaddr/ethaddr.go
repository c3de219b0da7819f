// Package ethaddr validates and normalizes Ethereum-style account
// identifiers of the form 0x followed by 40 hexadecimal digits. Accounts
// are the identity handles of the ledger; every address crossing an API
// boundary is validated here before it reaches a repository.
package ethaddr

import (
	"errors"
	"strings"
)

// ErrInvalid reports an address that is not 0x-prefixed 40-digit hex.
var ErrInvalid = errors.New("invalid account address")

const hexDigits = "0123456789abcdefABCDEF"

// Valid reports whether s is a well-formed account address.
func Valid(s string) bool {
	if len(s) != 42 {
		return false
	}
	if s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return false
	}
	for _, r := range s[2:] {
		if !strings.ContainsRune(hexDigits, r) {
			return false
		}
	}
	return true
}

// Normalize validates s and returns its canonical form: a lowercase hex
// string with a lowercase 0x prefix. Two addresses that differ only in
// letter case normalize to the same key, so the registry never stores the
// same account twice under different casings.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !Valid(s) {
		return "", ErrInvalid
	}
	return "0x" + strings.ToLower(s[2:]), nil
}
