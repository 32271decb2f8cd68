package enums

import (
	"fmt"
	"strings"
)

// Currency is an ISO 4217 code in the lower-case form the payment provider
// expects on checkout sessions.
type Currency string

const (
	CurrencyEUR Currency = "eur"
)

// minorUnitDigits lists the supported currencies and their decimal places.
var minorUnitDigits = map[Currency]int32{
	CurrencyEUR: 2,
}

func (c Currency) String() string {
	return string(c)
}

func (c Currency) IsValid() bool {
	_, ok := minorUnitDigits[c]
	return ok
}

// MinorUnitDigits returns the number of decimal places in one major unit.
func (c Currency) MinorUnitDigits() int32 {
	return minorUnitDigits[c]
}

// ParseCurrency accepts any case and surrounding whitespace.
func ParseCurrency(value string) (Currency, error) {
	c := Currency(strings.ToLower(strings.TrimSpace(value)))
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported currency %q", value)
	}
	return c, nil
}
