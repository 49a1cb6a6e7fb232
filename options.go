package itmd

import (
	"github.com/alnah/go-itmd/internal/pipeline"
	"github.com/alnah/go-itmd/internal/stats"
)

// Option configures a Parser.
type Option func(*Parser)

// Logger receives parser events. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// WithPolicy replaces the built-in policy. The policy is validated by
// NewParser.
func WithPolicy(p Policy) Option {
	return func(ps *Parser) {
		ps.policy = p.Clone()
	}
}

// WithLogger sets the logger. Diagnostics are logged at warn level.
func WithLogger(l Logger) Option {
	if l == nil {
		panic("itmd: WithLogger logger must not be nil")
	}
	return func(ps *Parser) {
		ps.logger = l
	}
}

// WithPassthroughHTML renders every passthrough block to HTML, with syntax
// highlighted code blocks.
func WithPassthroughHTML(enabled bool) Option {
	return func(ps *Parser) {
		ps.passthroughHTML = enabled
	}
}

// WithRates makes Stats convert totals to target using rates. Rates are
// never fetched.
func WithRates(target string, rates Rates) Option {
	return func(ps *Parser) {
		ps.conversion = &stats.Conversion{Target: target, Rates: rates}
	}
}

// withTokenizer replaces the Markdown collaborator. Used by tests.
func withTokenizer(t pipeline.Tokenizer) Option {
	return func(ps *Parser) {
		ps.tokenizer = t
	}
}
