package money

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

var (
	bracePattern = regexp.MustCompile(`\{[^{}]*\}`)
	mathCharset  = regexp.MustCompile(`^[0-9+\-*/^().\s]+$`)
)

// span is a byte range [start, end).
type span struct{ start, end int }

// substitution is a price line with its "{...}" expressions evaluated.
type substitution struct {
	// text has every evaluated expression replaced by its value; failed
	// ones are kept as written.
	text string
	// scan is text with the inside of failed expressions blanked. It has
	// the same length as text.
	scan string
	// exact lists the ranges of text holding evaluated values.
	exact    []span
	hasMath  bool
	warnings []string
}

// evaluateMath evaluates every "{...}" arithmetic expression in line.
func evaluateMath(line string) substitution {
	var (
		sub        substitution
		text, scan strings.Builder
		last       int
	)
	for _, loc := range bracePattern.FindAllStringIndex(line, -1) {
		sub.hasMath = true
		text.WriteString(line[last:loc[0]])
		scan.WriteString(line[last:loc[0]])
		last = loc[1]

		m := line[loc[0]:loc[1]]
		value, warning := evaluateExpression(m[1 : len(m)-1])
		if warning != "" {
			sub.warnings = append(sub.warnings, warning)
			text.WriteString(m)
			scan.WriteString("{" + strings.Repeat(" ", len(m)-2) + "}")
			continue
		}
		start := text.Len()
		text.WriteString(value)
		scan.WriteString(value)
		sub.exact = append(sub.exact, span{start: start, end: text.Len()})
	}
	text.WriteString(line[last:])
	scan.WriteString(line[last:])
	sub.text, sub.scan = text.String(), scan.String()
	return sub
}

// evaluateExpression evaluates a plain arithmetic expression. Only digits,
// the four operators, '^', parentheses and '.' are accepted.
func evaluateExpression(src string) (string, string) {
	if !mathCharset.MatchString(src) {
		return "", WarnMathEvalError
	}
	program, err := expr.Compile(src, expr.AsFloat64())
	if err != nil {
		return "", WarnMathEvalError
	}
	v, err := expr.Run(program, nil)
	if err != nil {
		return "", WarnMathEvalError
	}
	f, ok := v.(float64)
	if !ok {
		return "", WarnMathEvalError
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", WarnMathEvalFailed
	}
	return formatFloat(f), ""
}

// formatFloat prints f without exponent and without binary rounding noise
// such as 0.30000000000000004.
func formatFloat(f float64) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(f, 'g', 15, 64), 64)
	if err != nil {
		rounded = f
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
