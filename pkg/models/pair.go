package models

import (
	"fmt"
	"strings"
)

// TradingPair is a "BASE/QUOTE" identifier such as "BTC/USDT".
// Pairs are stored uppercase and compared by exact string match.
type TradingPair string

// ParseTradingPair normalizes and validates a pair string.
func ParseTradingPair(s string) (TradingPair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	base, quote, ok := strings.Cut(s, "/")
	if !ok || base == "" || quote == "" {
		return "", fmt.Errorf("invalid trading pair %q, expected BASE/QUOTE", s)
	}
	return TradingPair(s), nil
}

// Base returns the base asset portion, e.g. "BTC" for "BTC/USDT".
func (p TradingPair) Base() string {
	base, _, _ := strings.Cut(string(p), "/")
	return base
}

// Quote returns the quote asset portion, e.g. "USDT" for "BTC/USDT".
func (p TradingPair) Quote() string {
	_, quote, _ := strings.Cut(string(p), "/")
	return quote
}

func (p TradingPair) String() string {
	return string(p)
}
