package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"plain", "19.99", "19.99", true},
		{"dollar sign", "$19.99", "19.99", true},
		{"negative charge", "-$19.99", "-19.99", true},
		{"thousand separator", "$1,234.56", "1234.56", true},
		{"whitespace", " 19.99 ", "19.99", true},
		{"euro sign", "€7.50", "7.5", true},
		{"empty", "", "", false},
		{"garbage", "free", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := ParseAmount(tt.input)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			expected, err := decimal.NewFromString(tt.expected)
			require.NoError(t, err)
			assert.True(t, amount.Equal(expected), "got %s, want %s", amount, expected)
		})
	}
}

func TestAmountSignFlip(t *testing.T) {
	charge, err := ParseAmount("19.99")
	require.NoError(t, err)
	debit, err := ParseAmount("-19.99")
	require.NoError(t, err)

	assert.True(t, debit.Neg().Equal(charge))
	assert.True(t, charge.Neg().Equal(debit))
	assert.False(t, charge.Neg().Equal(charge))
}
