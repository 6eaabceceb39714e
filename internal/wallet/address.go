// Package wallet validates recipient wallet addresses. Addresses are
// provider-managed; we only check shape and the EIP-55 mixed-case checksum.
package wallet

import (
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

var ErrInvalidAddress = errors.New("invalid wallet address")

// Valid reports whether addr is a well-formed 0x address. All-lower and
// all-upper hex are accepted without a checksum; mixed case must pass EIP-55.
func Valid(addr string) bool {
	hex, ok := splitHex(addr)
	if !ok {
		return false
	}
	lower := strings.ToLower(hex)
	upper := strings.ToUpper(hex)
	if hex == lower || hex == upper {
		return true
	}
	return hex == checksumHex(lower)
}

// Checksum returns the canonical EIP-55 form, or an error for malformed input.
func Checksum(addr string) (string, error) {
	hex, ok := splitHex(addr)
	if !ok {
		return "", ErrInvalidAddress
	}
	return "0x" + checksumHex(strings.ToLower(hex)), nil
}

func splitHex(addr string) (string, bool) {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return "", false
	}
	hex := addr[2:]
	for _, r := range hex {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return "", false
		}
	}
	return hex, true
}

func checksumHex(lower string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	sum := h.Sum(nil)

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}
