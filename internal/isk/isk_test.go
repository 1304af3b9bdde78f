package isk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloor2(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"21428571.428571", "21428571.42"},
		{"0.019", "0.01"},
		{"0.01", "0.01"},
		{"100", "100"},
		{"99.999", "99.99"},
		{"0", "0"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		assert.True(t, Floor2(d).Equal(decimal.RequireFromString(tt.want)),
			"Floor2(%s) = %s, want %s", tt.in, Floor2(d), tt.want)
	}
}

func TestFloor2NeverRoundsUp(t *testing.T) {
	d := decimal.RequireFromString("0.999999")
	assert.True(t, Floor2(d).LessThanOrEqual(d))
}

func TestFromString(t *testing.T) {
	d, err := FromString(" 1,000,000.50 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1000000.50")))

	_, err = FromString("not isk")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"21428571.42", "21,428,571.42"},
		{"100", "100.00"},
		{"1000", "1,000.00"},
		{"0", "0.00"},
		{"-1234567.89", "-1,234,567.89"},
		{"999999999.999", "1,000,000,000.00"}, // StringFixed rounds; Format is display only
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.in)))
	}
}
