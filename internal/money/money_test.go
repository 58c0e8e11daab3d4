package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseMinor(t *testing.T) {
	cases := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"500", 50000, false},
		{"500.00", 50000, false},
		{"125.5", 12550, false},
		{"0.01", 1, false},
		{"-75.25", -7525, false},
		{"+10", 1000, false},
		{".50", 50, false},
		{"", 0, true},
		{"abc", 0, true},
		{"10.005", 0, true},
		{"10.a5", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseMinor(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
			continue
		}
		assert.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.expected, got, "input %q", tc.input)
	}
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "500.00", FormatMinor(50000))
	assert.Equal(t, "0.05", FormatMinor(5))
	assert.Equal(t, "-12.30", FormatMinor(-1230))
	assert.Equal(t, "0.00", FormatMinor(0))
}

func TestSplit(t *testing.T) {
	rate := decimal.RequireFromString("0.15")

	// 500.00 → комиссия 75.00, исполнителю 425.00
	commission, net := Split(50000, rate)
	assert.Equal(t, int64(7500), commission)
	assert.Equal(t, int64(42500), net)

	// Сумма с округлением: 0.99 → комиссия 0.15, остаток 0.84
	commission, net = Split(99, rate)
	assert.Equal(t, int64(15), commission)
	assert.Equal(t, int64(84), net)

	// Комиссия и выплата всегда сходятся к исходной сумме
	for _, total := range []int64{1, 33, 101, 9999, 123457} {
		commission, net = Split(total, rate)
		assert.Equal(t, total, commission+net, "total %d", total)
		assert.GreaterOrEqual(t, commission, int64(0))
		assert.GreaterOrEqual(t, net, int64(0))
	}
}

func TestParseRate(t *testing.T) {
	rate, err := ParseRate("0.15")
	assert.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.15")))

	_, err = ParseRate("1.5")
	assert.Error(t, err)

	_, err = ParseRate("-0.1")
	assert.Error(t, err)

	_, err = ParseRate("")
	assert.Error(t, err)
}
