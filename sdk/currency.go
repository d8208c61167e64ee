package sdk

import (
	"fmt"
	"strings"
)

// Currency identifies the unit an amount is denominated in.
type Currency uint8

const (
	CurrencyETH Currency = 0
	CurrencyUSD Currency = 1
)

// String returns the lowercase ticker for logs and config files.
// Example payload: sdk.CurrencyUSD.String()
func (c Currency) String() string {
	switch c {
	case CurrencyETH:
		return "eth"
	case CurrencyUSD:
		return "usd"
	default:
		return fmt.Sprintf("currency(%d)", uint8(c))
	}
}

// ParseCurrency accepts tickers in any case ("ETH", "usd").
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eth", "":
		return CurrencyETH, nil
	case "usd":
		return CurrencyUSD, nil
	}
	return 0, fmt.Errorf("unknown currency %q", s)
}

// MarshalText keeps yaml and json files human readable.
func (c Currency) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Currency) UnmarshalText(b []byte) error {
	parsed, err := ParseCurrency(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
