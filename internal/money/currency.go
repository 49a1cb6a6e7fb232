package money

import (
	"regexp"
	"strings"

	"golang.org/x/text/currency"
)

// symbolTable maps currency symbols to ISO codes. Multi-character symbols
// come first so "HK$" is never read as "$" and "US$" never as "S$".
var symbolTable = []struct {
	symbol string
	code   string
}{
	{"HK$", "HKD"},
	{"US$", "USD"},
	{"A$", "AUD"},
	{"C$", "CAD"},
	{"S$", "SGD"},
	{"€", "EUR"},
	{"¥", "JPY"},
	{"£", "GBP"},
	{"₩", "KRW"},
	{"₫", "VND"},
	{"฿", "THB"},
	{"₱", "PHP"},
	{"₽", "RUB"},
	{"₺", "TRY"},
	{"$", "USD"},
}

// symbolAlternation is the regexp alternation of all symbols, longest first.
var symbolAlternation = func() string {
	parts := make([]string, len(symbolTable))
	for i, s := range symbolTable {
		parts[i] = regexp.QuoteMeta(s.symbol)
	}
	return strings.Join(parts, "|")
}()

// symbolCode returns the ISO code for a known symbol.
func symbolCode(symbol string) (string, bool) {
	for _, s := range symbolTable {
		if s.symbol == symbol {
			return s.code, true
		}
	}
	return "", false
}

// NormalizeCode upper-cases code and reports whether it is a recognized
// ISO 4217 currency.
func NormalizeCode(code string) (string, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 3 {
		return "", false
	}
	if _, err := currency.ParseISO(c); err != nil {
		return "", false
	}
	return c, true
}

// Scale returns the number of minor-unit digits for an ISO code, falling
// back to DefaultScale when the currency is unknown.
func Scale(code string) int {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return DefaultScale
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}
