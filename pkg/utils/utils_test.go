package utils

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		expected string
	}{
		{"hello world", 5, "he..."},
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"", 5, ""},
		{"abc", 2, "ab"},
		{"abc", 3, "abc"},
	}

	for _, tt := range tests {
		result := TruncateString(tt.input, tt.length)
		if result != tt.expected {
			t.Errorf("TruncateString(%q, %d) = %q; want %q", tt.input, tt.length, result, tt.expected)
		}
	}
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0xA0b8...eB48", ShortAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"))
	assert.Equal(t, "0x1234", ShortAddress("0x1234"))
}

func TestAddCommas(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
		{"1234.56", "1,234.56"},
		{"-1234", "-1,234"},
		{"", ""},
	}

	for _, tt := range tests {
		result := AddCommas(tt.input)
		if result != tt.expected {
			t.Errorf("AddCommas(%q) = %q; want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1,234.57", FormatFloat(1234.5678, 2))
	assert.Equal(t, "0.00", FormatFloat(0, 2))
}

func TestFormatDollarAmount(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "$0.00"},
		{0.0001, "<$0.001"},
		{0.5, "$0.5000"},
		{999.5, "$999.50"},
		{1500, "$1.50K"},
		{1234567, "$1.23M"},
		{999999, "$1.00M"},
		{2.5e9, "$2.50B"},
		{3e12, "$3.00T"},
		{4.2e15, "$4,200.00T"},
		{-1500, "-$1.50K"},
		{math.NaN(), "-"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDollarAmount(tt.input), "input %v", tt.input)
	}
}

func TestNewCurrencyFormatter(t *testing.T) {
	f := NewCurrencyFormatter("not a locale!!")
	assert.Equal(t, "$", f.Symbol)

	f = NewCurrencyFormatter("en-US")
	assert.True(t, strings.HasSuffix(f.Format(1500), "1.50K"))
	assert.NotEmpty(t, f.Symbol)
}
