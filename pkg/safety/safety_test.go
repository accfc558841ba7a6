package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWarning(t *testing.T) {
	tests := []struct {
		input    string
		expected Warning
	}{
		{"", None},
		{"none", None},
		{"UNSAFE", Unsafe},
		{"blocked", Unsafe},
		{"unverified", Unverified},
		{"medium", Unverified},
		{"something-new", Unverified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseWarning(tt.input), "input %q", tt.input)
	}
}

func TestClassifier(t *testing.T) {
	c := NewClassifier([]string{"0xSafe"}, []string{"0xBad", "0xSafe2"})

	assert.Equal(t, None, c.Classify("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"))
	assert.Equal(t, None, c.Classify(" 0xSAFE "))
	assert.Equal(t, Unsafe, c.Classify("0xbad"))
	assert.Equal(t, Unverified, c.Classify("0xunknown"))
}

func TestClassifier_BlockedWinsOverSafe(t *testing.T) {
	c := NewClassifier([]string{"0xBoth"}, []string{"0xboth"})
	assert.Equal(t, Unsafe, c.Classify("0xBoth"))
}

func TestWarningText(t *testing.T) {
	assert.Equal(t, "unsafe", Unsafe.String())
	assert.Equal(t, "unverified", Warning(42).String())
	assert.Empty(t, None.Heading())
	assert.NotEmpty(t, Unverified.Message())
	assert.NotEmpty(t, Unsafe.Heading())
}

func TestClassifier_Labels(t *testing.T) {
	c := NewClassifier(nil, []string{"0xBad"})
	c.SetLabels(map[string]string{
		"0xBad":   "safe",
		"0xWeird": "???",
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48": "strong",
	})

	assert.Equal(t, None, c.Classify("0xbad"), "label wins over the blocked list")
	assert.Equal(t, Unverified, c.Classify("0xweird"))
	assert.Equal(t, Unsafe, c.Classify("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"))
}
