package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHRDFDate(t *testing.T) {
	d, err := ParseHRDFDate("31.07.2026")
	require.NoError(t, err)
	assert.Equal(t, Date("2026-07-31"), d)
}

func TestDateAddDays(t *testing.T) {
	d := Date("2024-12-15")
	assert.Equal(t, Date("2024-12-16"), d.AddDays(1))
	assert.Equal(t, Date("2024-12-14"), d.AddDays(-1))
}

func TestParseHRDFTime(t *testing.T) {
	cases := []struct {
		raw  int
		want Time
	}{
		{815, Time(8*60 + 15)},
		{2359, Time(23*60 + 59)},
		{2400, Time(0)},
		{2415, Time(15)},
		{-833, Time(8*60 + 33)},
	}
	for _, c := range cases {
		got, err := ParseHRDFTime(c.raw)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "raw=%d", c.raw)
	}
}

func TestParseHRDFTimeInvalidMinute(t *testing.T) {
	_, err := ParseHRDFTime(899)
	assert.Error(t, err)
}

func TestLanguageFromCode(t *testing.T) {
	l, ok := LanguageFromCode("fra")
	require.True(t, ok)
	assert.Equal(t, French, l)

	_, ok = LanguageFromCode("xyz")
	assert.False(t, ok)
}

func TestBitFieldOperates(t *testing.T) {
	bits := make([]bool, 384)
	bits[2] = true // day 0
	bits[3] = false
	bf := &BitField{ID: 1, Bits: bits}
	assert.True(t, bf.Operates(0))
	assert.False(t, bf.Operates(1))
	assert.False(t, bf.Operates(-1))
	assert.False(t, bf.Operates(500))
}
