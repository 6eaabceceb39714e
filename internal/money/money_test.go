package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "-5", "1.5", "0x10", "ten"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", bad)
	}
}

func TestNet(t *testing.T) {
	net, err := Net("1000000", "30000", "25000")
	require.NoError(t, err)
	assert.Equal(t, "945000", net)
}

func TestNetEmptyFeesAreZero(t *testing.T) {
	net, err := Net("500", "", "")
	require.NoError(t, err)
	assert.Equal(t, "500", net)
}

func TestNetRejectsFeesExceedingAmount(t *testing.T) {
	_, err := Net("100", "90", "20")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNetLargeAmounts(t *testing.T) {
	// Amounts beyond int64 range must survive intact.
	net, err := Net("123456789012345678901234567890", "1", "1")
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567888", net)
}

func TestAdd(t *testing.T) {
	sum, err := Add("999999999999999999", "1")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", sum)
}

func TestBpsOf(t *testing.T) {
	fee, err := BpsOf("1000000", 250) // 2.5%
	require.NoError(t, err)
	assert.Equal(t, "25000", fee)

	zero, err := BpsOf("100", 0)
	require.NoError(t, err)
	assert.Equal(t, "0", zero)

	_, err = BpsOf("100", 10001)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCmp(t *testing.T) {
	got, err := Cmp("10", "9")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}
