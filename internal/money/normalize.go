package money

import (
	"regexp"
	"strings"
)

// numberExpr matches a signed number with optional '.' or ',' separators.
const numberExpr = `[+-]?\d+(?:[.,]\d+)*`

var (
	codeNumberPattern   = regexp.MustCompile(`^([A-Za-z]{3})\s*(` + numberExpr + `)`)
	numberCodePattern   = regexp.MustCompile(`^(` + numberExpr + `)\s*([A-Za-z]{3})\b`)
	symbolNumberPattern = regexp.MustCompile(`^(` + symbolAlternation + `)\s*(` + numberExpr + `)`)

	operatorPattern = regexp.MustCompile(`^\s*([+-])\s*`)
	numberPattern   = regexp.MustCompile(`^` + numberExpr)

	// Unanchored searches only accept upper-case codes, so words such as
	// "all" or "top" are not read as currencies, and symbols must not be
	// glued to a preceding letter ("US$" is not "S$").
	anyCodePattern   = regexp.MustCompile(`\b[A-Z]{3}\b`)
	anySymbolPattern = regexp.MustCompile(`(?:^|[^\p{L}])(` + symbolAlternation + `)`)
	anyNumberPattern = regexp.MustCompile(numberExpr)
)

// NormalizePriceLine parses one price line. defaultCurrency is used when a
// bare number carries no currency of its own; it may be empty. The result
// always echoes raw in RawLine.
func NormalizePriceLine(raw, defaultCurrency string) PriceNode {
	node := PriceNode{
		RawLine:  raw,
		Tokens:   []Token{},
		Summary:  Summary{Currencies: []string{}},
		Warnings: []string{},
	}

	line := strings.TrimSpace(raw)
	if line == "" {
		node.warn(WarnEmpty)
		return node
	}

	sub := evaluateMath(line)
	node.Flags.HasMath = sub.hasMath
	for _, w := range sub.warnings {
		node.warn(w)
	}

	def := ""
	if strings.TrimSpace(defaultCurrency) != "" {
		code, ok := NormalizeCode(defaultCurrency)
		if ok {
			def = code
		} else {
			node.warn(WarnInvalidDefaultCurrency)
		}
	}

	sc := priceScanner{line: sub.text, text: sub.scan, exact: sub.exact}
	if frag, end, ok := sc.matchTerm(0); ok {
		node.addMoney(frag)
		sc.tokenizeTail(&node, end)
	} else {
		sc.fallback(&node, def)
	}

	node.summarize()
	return node
}

// priceScanner reads money terms from a price line after brace evaluation.
// Failed expressions are blanked in text so none of their digits or letters
// can be taken for an amount or a currency; line keeps them for display and
// has the same length.
type priceScanner struct {
	line  string
	text  string
	exact []span
}

// matchTerm recognizes a money term starting at pos and returns the end of
// the match.
func (sc priceScanner) matchTerm(pos int) (Fragment, int, bool) {
	s := sc.text[pos:]
	if m := codeNumberPattern.FindStringSubmatchIndex(s); m != nil {
		if code, ok := NormalizeCode(s[m[2]:m[3]]); ok {
			frag := sc.fragment(s[m[0]:m[1]], code, pos+m[4], pos+m[5], &Meta{Source: SourceInline})
			return frag, pos + m[1], true
		}
	}
	if m := numberCodePattern.FindStringSubmatchIndex(s); m != nil {
		if code, ok := NormalizeCode(s[m[4]:m[5]]); ok {
			frag := sc.fragment(s[m[0]:m[1]], code, pos+m[2], pos+m[3], &Meta{Source: SourceInline})
			return frag, pos + m[1], true
		}
	}
	if m := symbolNumberPattern.FindStringSubmatchIndex(s); m != nil {
		symbol := s[m[2]:m[3]]
		code, _ := symbolCode(symbol)
		meta := &Meta{Symbol: symbol, Source: SourceSymbolInferred}
		return sc.fragment(s[m[0]:m[1]], code, pos+m[4], pos+m[5], meta), pos + m[1], true
	}
	return Fragment{}, 0, false
}

// tokenizeTail reads additional "op term" pairs from pos on. Any text that
// does not fit that shape ends the scan and is ignored.
func (sc priceScanner) tokenizeTail(node *PriceNode, pos int) {
	for {
		m := operatorPattern.FindStringSubmatchIndex(sc.text[pos:])
		if m == nil {
			return
		}
		op := sc.text[pos+m[2] : pos+m[3]]
		after := pos + m[1]

		if frag, end, ok := sc.matchTerm(after); ok {
			node.addOperator(op)
			node.addMoney(frag)
			pos = end
			continue
		}

		num := numberPattern.FindString(sc.text[after:])
		if num == "" {
			return
		}
		end := after + len(num)
		trimmed := strings.TrimSpace(sc.text[end:])
		if trimmed != "" && trimmed[0] != '+' && trimmed[0] != '-' {
			return
		}
		node.addOperator(op)
		node.addNumber(num, sc.number(after, end, DefaultScale))
		pos = end
	}
}

// fallback searches the whole line independently for a currency and a
// number when no anchored pattern applied.
func (sc priceScanner) fallback(node *PriceNode, def string) {
	code, meta := findCurrency(sc.text)
	loc := anyNumberPattern.FindStringIndex(sc.text)

	switch {
	case code == "" && loc == nil:
		node.warn(WarnUnrecognized)
	case loc == nil:
		node.warn(WarnNoAmount)
	case code != "":
		node.addMoney(sc.fragment(sc.line, code, loc[0], loc[1], meta))
	case def != "":
		frag := sc.fragment(sc.text[loc[0]:loc[1]], def, loc[0], loc[1], &Meta{Source: SourceDefaultCurrency})
		frag.Warnings = []string{WarnCurrencyNotDetected}
		node.addMoney(frag)
		node.warn(WarnCurrencyNotDetected)
	default:
		node.addNumber(sc.text[loc[0]:loc[1]], sc.number(loc[0], loc[1], DefaultScale))
	}
}

// number normalizes the number at text[start:end]. A number produced by
// brace evaluation is already canonical and skips the separator heuristics.
func (sc priceScanner) number(start, end, scale int) string {
	s := sc.text[start:end]
	first := start
	if s[0] == '+' || s[0] == '-' {
		first++
	}
	for _, r := range sc.exact {
		if first >= r.start && end <= r.end {
			return normalizeNumber(s, scale, false)
		}
	}
	return NormalizeNumber(s, scale)
}

func (sc priceScanner) fragment(raw, code string, numStart, numEnd int, meta *Meta) Fragment {
	scale := Scale(code)
	amount := sc.number(numStart, numEnd, scale)
	return Fragment{
		Raw:      strings.TrimSpace(raw),
		Currency: code,
		Amount:   amount,
		Normalized: Normalized{
			Currency: code,
			Amount:   amount,
			Scale:    scale,
		},
		Meta: meta,
	}
}

// findCurrency returns the first upper-case ISO code in line, or failing
// that the first known symbol.
func findCurrency(line string) (string, *Meta) {
	for _, word := range anyCodePattern.FindAllString(line, -1) {
		if code, ok := NormalizeCode(word); ok {
			return code, &Meta{Source: SourceInline}
		}
	}
	if m := anySymbolPattern.FindStringSubmatch(line); m != nil {
		code, _ := symbolCode(m[1])
		return code, &Meta{Symbol: m[1], Source: SourceSymbolInferred}
	}
	return "", nil
}

// NormalizeNumber converts a number written with '.' or ',' separators into
// a canonical decimal string.
//
// The rightmost separator is the decimal point and every other separator is
// a thousands separator, with two refinements: a separator that repeats with
// no other separator type present is a thousands separator ("1.234.567"),
// and for zero-scale currencies a lone separator followed by exactly three
// digits is a thousands separator ("¥1,200"). Trailing fractional zeros and
// leading integer zeros are dropped.
func NormalizeNumber(s string, scale int) string {
	return normalizeNumber(s, scale, true)
}

// normalizeNumber is NormalizeNumber with the thousands refinements
// optional. Without them the rightmost separator is always the decimal
// point.
func normalizeNumber(s string, scale int, refine bool) string {
	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")
	last := strings.LastIndexAny(s, ".,")

	intPart, fracPart := s, ""
	switch {
	case last < 0:
	case refine && (dots == 0 && commas > 1 || commas == 0 && dots > 1):
		intPart = s
	case refine && dots+commas == 1 && scale == 0 && len(s)-last-1 == 3:
		intPart = s
	default:
		intPart, fracPart = s[:last], s[last+1:]
	}

	intPart = stripSeparators(intPart)
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	fracPart = strings.TrimRight(fracPart, "0")

	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if negative && out != "0" {
		out = "-" + out
	}
	return out
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}
