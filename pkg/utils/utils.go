package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TruncateString(str string, num int) string {
	if len(str) <= num {
		return str
	}
	if num <= 3 {
		return str[:num]
	}
	return str[0:num-3] + "..."
}

// ShortAddress renders 0x1234...abcd.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func AddCommas(s string) string {
	if len(s) == 0 {
		return s
	}
	parts := strings.Split(s, ".")
	integerPart := parts[0]
	sign := ""
	if strings.HasPrefix(integerPart, "-") {
		sign = "-"
		integerPart = integerPart[1:]
	}

	n := len(integerPart)
	if n <= 3 {
		return s
	}

	var result strings.Builder
	result.WriteString(sign)
	remainder := n % 3
	if remainder > 0 {
		result.WriteString(integerPart[:remainder])
		result.WriteString(",")
	}
	for i := remainder; i < n; i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(integerPart[i : i+3])
	}

	if len(parts) > 1 {
		result.WriteString(".")
		result.WriteString(parts[1])
	}
	return result.String()
}

func FormatFloat(f float64, decimals int) string {
	return AddCommas(fmt.Sprintf("%.*f", decimals, f))
}

var abbreviations = []struct {
	scale  float64
	suffix string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// CurrencyFormatter renders USD amounts with K/M/B/T abbreviations.
type CurrencyFormatter struct {
	Symbol string
}

// NewCurrencyFormatter picks the USD symbol for the given BCP 47 locale.
// Unparseable locales fall back to "$".
func NewCurrencyFormatter(locale string) CurrencyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		return CurrencyFormatter{Symbol: "$"}
	}
	sym := message.NewPrinter(tag).Sprint(currency.Symbol(currency.USD))
	if sym == "" {
		sym = "$"
	}
	return CurrencyFormatter{Symbol: sym}
}

// Format abbreviates values of a thousand or more, e.g. 1234567 -> $1.23M.
func (f CurrencyFormatter) Format(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "-"
	}
	if value == 0 {
		return f.Symbol + "0.00"
	}
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	if value < 0.001 {
		return sign + "<" + f.Symbol + "0.001"
	}

	amount := decimal.NewFromFloat(value)
	for i, a := range abbreviations {
		if value < a.scale {
			continue
		}
		scaled := amount.Div(decimal.NewFromFloat(a.scale)).Round(2)
		// 999999 rounds to 1000.00K, promote to the next suffix
		if i > 0 && scaled.GreaterThanOrEqual(decimal.NewFromInt(1000)) {
			up := abbreviations[i-1]
			scaled = amount.Div(decimal.NewFromFloat(up.scale)).Round(2)
			return sign + f.Symbol + scaled.StringFixed(2) + up.suffix
		}
		return sign + f.Symbol + AddCommas(scaled.StringFixed(2)) + a.suffix
	}

	digits := int32(2)
	if value < 1 {
		digits = 4
	}
	return sign + f.Symbol + AddCommas(amount.StringFixed(digits))
}

var defaultFormatter = CurrencyFormatter{Symbol: "$"}

// FormatDollarAmount formats value with the "$" symbol.
func FormatDollarAmount(value float64) string {
	return defaultFormatter.Format(value)
}
