package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Amount is a parsed monetary value with its detected currency unit.
type Amount struct {
	Value    float64
	Currency string
}

// currencySymbols maps recognized symbols to ISO currency codes.
var currencySymbols = map[string]string{
	"₹": "INR",
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

// amountRegexp captures a numeric value with optional thousands separators
// and an optional regional magnitude suffix.
var amountRegexp = regexp.MustCompile(`^([0-9][0-9,]*(?:\.[0-9]+)?)\s*(crores?|cr|lakhs?|lacs?|thousands?|k)?$`)

// magnitudes maps suffix words to multipliers: thousand=10^3, lakh=10^5,
// crore=10^7.
var magnitudes = map[string]float64{
	"k":         1e3,
	"thousand":  1e3,
	"thousands": 1e3,
	"lakh":      1e5,
	"lakhs":     1e5,
	"lac":       1e5,
	"lacs":      1e5,
	"cr":        1e7,
	"crore":     1e7,
	"crores":    1e7,
}

// ParseAmount parses currency strings like "₹2,50,000", "$15,000.50" or
// "₹12.5 lakh". The currency unit defaults to primaryCurrency when no symbol
// is present. Malformed numeric text yields absent (ok=false), never zero.
func ParseAmount(raw, primaryCurrency string) (Amount, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Amount{}, false
	}

	currency := primaryCurrency
	for sym, code := range currencySymbols {
		if strings.Contains(s, sym) {
			currency = code
			s = strings.ReplaceAll(s, sym, "")
			break
		}
	}

	s = strings.ToLower(strings.TrimSpace(s))
	m := amountRegexp.FindStringSubmatch(s)
	if m == nil {
		return Amount{}, false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return Amount{}, false
	}
	if suffix := m[2]; suffix != "" {
		value *= magnitudes[suffix]
	}

	return Amount{Value: value, Currency: currency}, true
}
