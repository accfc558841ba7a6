// Package safety classifies token addresses as verified, unverified or unsafe.
package safety

import (
	"strings"
)

// Warning is the safety classification of a token.
type Warning int

const (
	None Warning = iota
	Unverified
	Unsafe
)

func (w Warning) String() string {
	switch w {
	case None:
		return "none"
	case Unverified:
		return "unverified"
	case Unsafe:
		return "unsafe"
	}
	return "unverified"
}

// ParseWarning maps a classification label to a Warning. Labels it does not
// recognise are treated as Unverified.
func ParseWarning(s string) Warning {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "safe", "verified":
		return None
	case "unsafe", "blocked", "strong":
		return Unsafe
	default:
		return Unverified
	}
}

// Heading is the modal title for a warning.
func (w Warning) Heading() string {
	switch w {
	case Unsafe:
		return "Warning: unsupported token"
	case Unverified:
		return "Unknown token"
	}
	return ""
}

// Message is the modal body text for a warning.
func (w Warning) Message() string {
	switch w {
	case Unsafe:
		return "This token has been flagged as unsafe. Interacting with it may result in a loss of funds."
	case Unverified:
		return "This token isn't traded on leading U.S. centralized exchanges or frequently swapped on Uniswap. Always conduct your own research before trading."
	}
	return ""
}

// DefaultSafeTokens are well known mainnet tokens that never raise a warning.
var DefaultSafeTokens = []string{
	"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", // USDC
	"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH
	"0x6B175474E89094C44Da98b954EedeAC495271d0F", // DAI
	"0xdAC17F958D2ee523a2206206994597C13D831ec7", // USDT
	"0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", // WBTC
	"0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", // UNI
	"0x514910771AF9Ca656af840dff83E8264EcF986CA", // LINK
}

// Classifier is a pure lookup from address to Warning built from token lists.
type Classifier struct {
	labels  map[string]Warning
	safe    map[string]struct{}
	blocked map[string]struct{}
}

// NewClassifier builds a classifier from the default safe list plus the
// given safe and blocked addresses. Blocked wins over safe.
func NewClassifier(safe, blocked []string) *Classifier {
	c := &Classifier{
		labels:  make(map[string]Warning),
		safe:    make(map[string]struct{}),
		blocked: make(map[string]struct{}),
	}
	for _, a := range DefaultSafeTokens {
		c.safe[normalize(a)] = struct{}{}
	}
	for _, a := range safe {
		c.safe[normalize(a)] = struct{}{}
	}
	for _, a := range blocked {
		c.blocked[normalize(a)] = struct{}{}
	}
	return c
}

// SetLabels records explicit classification labels per address. They take
// precedence over the safe and blocked lists; unknown labels fail closed.
func (c *Classifier) SetLabels(labels map[string]string) {
	for address, label := range labels {
		c.labels[normalize(address)] = ParseWarning(label)
	}
}

// Classify returns the explicit label when one is set, then Unsafe for
// blocked tokens, None for listed tokens and Unverified for everything else.
func (c *Classifier) Classify(address string) Warning {
	key := normalize(address)
	if w, ok := c.labels[key]; ok {
		return w
	}
	if _, ok := c.blocked[key]; ok {
		return Unsafe
	}
	if _, ok := c.safe[key]; ok {
		return None
	}
	return Unverified
}

func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
