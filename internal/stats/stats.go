// Package stats summarizes an assembled itinerary: event counts and price
// totals per currency and per base type.
//
// Amounts are summed as exact decimals. A converted grand total is computed
// only from an explicit rate table; currencies without a rate are reported
// instead of being guessed.
package stats

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/alnah/go-itmd/internal/assemble"
	"github.com/alnah/go-itmd/internal/money"
)

// WarnMissingRate is reported when a currency has no conversion rate.
const WarnMissingRate = "missing-rate"

// ErrInvalidRate is returned by ParseRates for malformed entries.
var ErrInvalidRate = errors.New("invalid rate")

// Rates maps an ISO currency code to the value of one unit in the target
// currency. Values are exact decimals.
type Rates map[string]*big.Rat

// Conversion asks Compute for a grand total in Target.
type Conversion struct {
	Target string
	Rates  Rates
}

// Total is an amount in one currency.
type Total struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
	Scale    int    `json:"scale"`
}

// Warning is a problem found while totalling.
type Warning struct {
	Code     string `json:"code"`
	Currency string `json:"currency"`
}

// BaseTypeStats groups the events of one base type.
type BaseTypeStats struct {
	Events int     `json:"events"`
	Totals []Total `json:"totals"`
}

// Stats is the summary of one document.
type Stats struct {
	Days       int                                  `json:"days"`
	Events     int                                  `json:"events"`
	Timed      int                                  `json:"timed"`
	WithIssues int                                  `json:"withWarnings"`
	ByBaseType map[assemble.BaseType]*BaseTypeStats `json:"byBaseType"`
	Totals     []Total                              `json:"totals"`
	Converted  *Total                               `json:"converted,omitempty"`
	Warnings   []Warning                            `json:"warnings"`
}

// collector accumulates exact sums while walking the nodes.
type collector struct {
	stats  Stats
	sums   map[string]*big.Rat
	byBase map[assemble.BaseType]map[string]*big.Rat
}

// Compute walks nodes, including stays attached to headings. conv may be nil.
func Compute(nodes []assemble.Node, conv *Conversion) Stats {
	c := &collector{
		stats: Stats{
			ByBaseType: map[assemble.BaseType]*BaseTypeStats{},
			Totals:     []Total{},
			Warnings:   []Warning{},
		},
		sums:   map[string]*big.Rat{},
		byBase: map[assemble.BaseType]map[string]*big.Rat{},
	}
	for _, n := range nodes {
		switch t := n.(type) {
		case *assemble.HeadingNode:
			c.stats.Days++
			for _, e := range t.Stays {
				c.add(e)
			}
		case *assemble.EventNode:
			c.add(t)
		}
	}

	c.stats.Totals = totals(c.sums)
	for base, sums := range c.byBase {
		c.stats.ByBaseType[base].Totals = totals(sums)
	}
	if conv != nil {
		c.convert(*conv)
	}
	return c.stats
}

func (c *collector) add(e *assemble.EventNode) {
	s := &c.stats
	s.Events++
	if e.Time.Kind != assemble.TimeNone {
		s.Timed++
	}
	if e.HasWarnings() {
		s.WithIssues++
	}

	bs, ok := s.ByBaseType[e.BaseType]
	if !ok {
		bs = &BaseTypeStats{Totals: []Total{}}
		s.ByBaseType[e.BaseType] = bs
		c.byBase[e.BaseType] = map[string]*big.Rat{}
	}
	bs.Events++

	for _, key := range sortedKeys(e.Prices) {
		for _, p := range e.Prices[key] {
			for _, m := range p.Money() {
				amount, ok := new(big.Rat).SetString(m.Fragment.Normalized.Amount)
				if !ok || m.Fragment.Currency == "" {
					continue
				}
				if m.Sign < 0 {
					amount.Neg(amount)
				}
				accumulate(c.sums, m.Fragment.Currency, amount)
				accumulate(c.byBase[e.BaseType], m.Fragment.Currency, amount)
			}
		}
	}
}

func (c *collector) convert(conv Conversion) {
	target, ok := money.NormalizeCode(conv.Target)
	if !ok {
		return
	}
	sum := new(big.Rat)
	for _, cur := range sortedKeys(c.sums) {
		if cur == target {
			sum.Add(sum, c.sums[cur])
			continue
		}
		rate, ok := conv.Rates[cur]
		if !ok || rate == nil {
			c.stats.Warnings = append(c.stats.Warnings, Warning{Code: WarnMissingRate, Currency: cur})
			continue
		}
		sum.Add(sum, new(big.Rat).Mul(c.sums[cur], rate))
	}
	scale := money.Scale(target)
	c.stats.Converted = &Total{Currency: target, Amount: format(sum, scale), Scale: scale}
}

func accumulate(sums map[string]*big.Rat, currency string, amount *big.Rat) {
	if cur, ok := sums[currency]; ok {
		cur.Add(cur, amount)
		return
	}
	sums[currency] = new(big.Rat).Set(amount)
}

func totals(sums map[string]*big.Rat) []Total {
	out := make([]Total, 0, len(sums))
	for _, cur := range sortedKeys(sums) {
		scale := money.Scale(cur)
		out = append(out, Total{Currency: cur, Amount: format(sums[cur], scale), Scale: scale})
	}
	return out
}

// format renders r rounded to scale digits, with trailing zeros trimmed the
// same way normalized amounts are.
func format(r *big.Rat, scale int) string {
	return money.NormalizeNumber(r.FloatString(scale), scale)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseRates reads "CUR=value" pairs such as "USD=0.92".
func ParseRates(pairs []string) (Rates, error) {
	rates := Rates{}
	for _, pair := range pairs {
		code, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q: want CUR=value", ErrInvalidRate, pair)
		}
		cur, ok := money.NormalizeCode(code)
		if !ok {
			return nil, fmt.Errorf("%w: %q: unknown currency", ErrInvalidRate, code)
		}
		r, ok := new(big.Rat).SetString(strings.TrimSpace(value))
		if !ok || r.Sign() <= 0 {
			return nil, fmt.Errorf("%w: %q: want a positive decimal", ErrInvalidRate, value)
		}
		rates[cur] = r
	}
	return rates, nil
}
