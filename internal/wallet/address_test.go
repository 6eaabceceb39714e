package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Checksummed vectors from EIP-55.
var checksummed = []string{
	"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
	"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
}

func TestValidChecksummed(t *testing.T) {
	for _, addr := range checksummed {
		assert.True(t, Valid(addr), addr)
	}
}

func TestValidAcceptsUncased(t *testing.T) {
	for _, addr := range checksummed {
		assert.True(t, Valid(strings.ToLower(addr)), addr)
		assert.True(t, Valid("0x"+strings.ToUpper(addr[2:])), addr)
	}
}

func TestValidRejectsBadChecksum(t *testing.T) {
	// Flip the case of one letter in a checksummed address.
	addr := []byte(checksummed[0])
	addr[3] = 'A' // was 'a'
	assert.False(t, Valid(string(addr)))
}

func TestValidRejectsMalformed(t *testing.T) {
	for _, bad := range []string{
		"",
		"0x123",
		"5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeg",
	} {
		assert.False(t, Valid(bad), bad)
	}
}

func TestChecksumCanonicalizes(t *testing.T) {
	for _, addr := range checksummed {
		got, err := Checksum(strings.ToLower(addr))
		require.NoError(t, err)
		assert.Equal(t, addr, got)
	}

	_, err := Checksum("nope")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
