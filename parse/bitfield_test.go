package parse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdf.dev/hrdf/parse"
)

func TestParseBitFieldsAllOnes(t *testing.T) {
	content := "000017 FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF0000\n"

	out, err := parse.ParseBitFields("BITFELD", strings.NewReader(content))
	require.NoError(t, err)
	require.Contains(t, out, int32(17))

	bf := out[17]
	require.Len(t, bf.Bits, 384)
	// The hex string ends "...FF0000": 92 'F' nibbles (368 set bits)
	// followed by four all-zero nibbles, so the last 16 bits are clear.
	for i := 0; i < 368; i++ {
		assert.True(t, bf.Bits[i], "bit %d should be set", i)
	}
	for i := 368; i < 384; i++ {
		assert.False(t, bf.Bits[i], "trailing padding bit %d should be clear", i)
	}
}

func TestParseBitFieldsOperatesAlignsWithDayZero(t *testing.T) {
	// First hex digit "E" = 1110: bits[0..3] = true,true,true,false.
	// Day 0 is bits[2] (per BitField.Operates' dayIndex+2 offset), so
	// day 0 operates and day 1 (bits[3]) does not.
	content := "000001 E" + strings.Repeat("0", 95) + "\n"

	out, err := parse.ParseBitFields("BITFELD", strings.NewReader(content))
	require.NoError(t, err)

	bf := out[1]
	require.Len(t, bf.Bits, 384)
	assert.True(t, bf.Operates(0))
	assert.False(t, bf.Operates(1))
}

func TestParseBitFieldsMalformedHexDigit(t *testing.T) {
	content := "000001 " + strings.Repeat("G", 96) + "\n"

	_, err := parse.ParseBitFields("BITFELD", strings.NewReader(content))
	require.Error(t, err)
}
