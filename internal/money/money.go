// Package money normalizes free-form price lines into structured amounts.
//
// A price line such as "€12,30", "USD 100 per night" or "{3*12000} JPY" is
// tokenized into money fragments with an ISO 4217 currency, a normalized
// decimal amount and the currency's minor-unit scale. Normalization never
// fails: anything it cannot make sense of is reported through warnings on the
// returned PriceNode.
package money

// Warning codes attached to price nodes and money fragments.
const (
	WarnEmpty                    = "empty"
	WarnUnrecognized             = "unrecognized"
	WarnNoAmount                 = "no-amount"
	WarnCurrencyNotDetected      = "currency-not-detected"
	WarnInvalidDefaultCurrency   = "invalid-default-currency"
	WarnMathEvalFailed           = "math-eval-failed"
	WarnMathEvalError            = "math-eval-error"
	WarnCrossCurrencyUnsupported = "cross-currency-unsupported"
)

// Source records where a fragment's currency came from.
type Source string

// Currency provenance values.
const (
	SourceInline          Source = "inline"
	SourceDefaultCurrency Source = "defaultCurrency"
	SourceSymbolInferred  Source = "symbolInferred"
)

// TokenKind distinguishes the tokens of a price line.
type TokenKind string

// Token kinds.
const (
	TokenMoney    TokenKind = "money"
	TokenNumber   TokenKind = "number"
	TokenOperator TokenKind = "operator"
)

// DefaultScale is used when a currency's minor units are unknown.
const DefaultScale = 2

// Normalized is the machine-usable form of an amount.
type Normalized struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
	Scale    int    `json:"scale"`
}

// Meta carries provenance for a fragment's currency.
type Meta struct {
	Symbol string `json:"symbol,omitempty"`
	Source Source `json:"source"`
}

// Fragment is a single recognized currency amount.
type Fragment struct {
	Raw        string     `json:"raw"`
	Currency   string     `json:"currency"`
	Amount     string     `json:"amount"`
	Normalized Normalized `json:"normalized"`
	Meta       *Meta      `json:"meta,omitempty"`
	Warnings   []string   `json:"warnings,omitempty"`
}

// Token is one element of a price line: a money fragment, a bare number or
// an additive operator between terms.
type Token struct {
	Kind  TokenKind `json:"kind"`
	Text  string    `json:"text"`
	Value string    `json:"value,omitempty"`
	Money *Fragment `json:"money,omitempty"`
}

// Flags summarizes notable properties of a price line.
type Flags struct {
	HasMath           bool `json:"hasMath"`
	CrossCurrency     bool `json:"crossCurrency"`
	HasNumberOnlyTerm bool `json:"hasNumberOnlyTerm"`
}

// Summary lists the currencies found and counts money tokens.
type Summary struct {
	Currencies []string `json:"currencies"`
	MoneyCount int      `json:"moneyCount"`
}

// PriceNode is the normalized form of one price-bearing line.
type PriceNode struct {
	RawLine  string   `json:"rawLine"`
	Tokens   []Token  `json:"tokens"`
	Flags    Flags    `json:"flags"`
	Summary  Summary  `json:"summary"`
	Warnings []string `json:"warnings"`
}

// Money returns the money fragments of the node in order, paired with the
// sign of the operator that precedes them (+1 for the first term).
func (p PriceNode) Money() []SignedFragment {
	var out []SignedFragment
	sign := 1
	for _, tok := range p.Tokens {
		switch tok.Kind {
		case TokenOperator:
			sign = 1
			if tok.Value == "-" {
				sign = -1
			}
		case TokenMoney:
			out = append(out, SignedFragment{Sign: sign, Fragment: *tok.Money})
			sign = 1
		case TokenNumber:
			sign = 1
		}
	}
	return out
}

// SignedFragment is a money fragment with the sign of its term.
type SignedFragment struct {
	Sign     int
	Fragment Fragment
}

func (p *PriceNode) warn(code string) {
	for _, w := range p.Warnings {
		if w == code {
			return
		}
	}
	p.Warnings = append(p.Warnings, code)
}

func (p *PriceNode) addMoney(f Fragment) {
	p.Tokens = append(p.Tokens, Token{Kind: TokenMoney, Text: f.Raw, Money: &f})
}

func (p *PriceNode) addNumber(raw, value string) {
	p.Tokens = append(p.Tokens, Token{Kind: TokenNumber, Text: raw, Value: value})
	p.Flags.HasNumberOnlyTerm = true
}

func (p *PriceNode) addOperator(op string) {
	p.Tokens = append(p.Tokens, Token{Kind: TokenOperator, Text: op, Value: op})
}

// summarize fills Summary and the cross-currency flag from the tokens.
func (p *PriceNode) summarize() {
	seen := map[string]bool{}
	for _, tok := range p.Tokens {
		if tok.Kind != TokenMoney {
			continue
		}
		p.Summary.MoneyCount++
		code := tok.Money.Normalized.Currency
		if !seen[code] {
			seen[code] = true
			p.Summary.Currencies = append(p.Summary.Currencies, code)
		}
	}
	if len(p.Summary.Currencies) > 1 {
		p.Flags.CrossCurrency = true
		p.warn(WarnCrossCurrencyUnsupported)
	}
}
