// Package policy holds the fallback defaults threaded through a parse.
//
// A Policy is a plain value. It is built once, validated, and then only
// copied: WithFrontmatter returns a new Policy seeded from a document's
// preamble and never touches the receiver, so one Policy can be shared by
// concurrent parses.
package policy

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-itmd/internal/dateutil"
	"github.com/alnah/go-itmd/internal/diag"
	"github.com/alnah/go-itmd/internal/frontmatter"
	"github.com/alnah/go-itmd/internal/money"
)

// ErrInvalidPolicy is returned by Validate.
var ErrInvalidPolicy = errors.New("invalid policy")

// Default values.
const (
	DefaultAMHour     = 9
	DefaultPMHour     = 15
	DefaultTZFallback = dateutil.UTC
)

// DefaultURLSchemes are the link schemes kept by default.
var DefaultURLSchemes = []string{"http", "https", "mailto", "tel"}

// DefaultPriceKeys are the metadata keys parsed as prices by default.
var DefaultPriceKeys = []string{"cost", "price"}

var schemePattern = regexp.MustCompile(`^[a-z][a-z0-9+.-]*$`)

// Policy is the set of fallbacks applied while parsing one document.
type Policy struct {
	AMHour           int                  `json:"amHour" yaml:"amHour" toml:"amHour"`
	PMHour           int                  `json:"pmHour" yaml:"pmHour" toml:"pmHour"`
	AllowURLSchemes  []string             `json:"allowUrlSchemes" yaml:"allowUrlSchemes" toml:"allowUrlSchemes"`
	TZFallback       string               `json:"tzFallback" yaml:"tzFallback" toml:"tzFallback"`
	CurrencyFallback string               `json:"currencyFallback,omitempty" yaml:"currencyFallback" toml:"currencyFallback"`
	PriceKeys        []string             `json:"priceKeys" yaml:"priceKeys" toml:"priceKeys"`
	StayMode         frontmatter.StayMode `json:"stayMode" yaml:"stayMode" toml:"stayMode"`
}

// Default returns the built-in policy.
func Default() Policy {
	return Policy{
		AMHour:          DefaultAMHour,
		PMHour:          DefaultPMHour,
		AllowURLSchemes: slices.Clone(DefaultURLSchemes),
		TZFallback:      DefaultTZFallback,
		PriceKeys:       slices.Clone(DefaultPriceKeys),
		StayMode:        frontmatter.StayModeDefault,
	}
}

// Validate checks every field. Hours must lie in 0..23, the timezone must
// normalize, the currency (when set) must be an ISO 4217 code and schemes
// must be lower-case URL schemes.
func (p Policy) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.AMHour, validation.Min(0), validation.Max(23)),
		validation.Field(&p.PMHour, validation.Min(0), validation.Max(23)),
		validation.Field(&p.TZFallback, validation.Required, validation.By(isTimezone)),
		validation.Field(&p.CurrencyFallback, validation.By(isCurrency)),
		validation.Field(&p.AllowURLSchemes, validation.Each(validation.Required, validation.Match(schemePattern))),
		validation.Field(&p.PriceKeys, validation.Each(validation.Required)),
		validation.Field(&p.StayMode, validation.In(frontmatter.StayModeDefault, frontmatter.StayModeHeader)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	return nil
}

func isTimezone(v any) error {
	s, _ := v.(string)
	if s != "" && !dateutil.IsValidTimezone(s) {
		return validation.NewError("validation_timezone", "must be UTC, a UTC offset or an IANA zone name")
	}
	return nil
}

func isCurrency(v any) error {
	s, _ := v.(string)
	if s != "" {
		if _, ok := money.NormalizeCode(s); !ok {
			return validation.NewError("validation_currency", "must be an ISO 4217 currency code")
		}
	}
	return nil
}

// WithFrontmatter returns a copy of p seeded from a document preamble.
// Invalid preamble values are replaced by p's own fallbacks and reported.
func (p Policy) WithFrontmatter(fm frontmatter.Frontmatter) (Policy, []diag.Diagnostic) {
	out := p.Clone()
	var diags []diag.Diagnostic

	if fm.Timezone != "" {
		tz, notice := dateutil.CoerceTimezoneWithNotice(fm.Timezone, p.TZFallback, "frontmatter.timezone")
		out.TZFallback = tz
		if notice != nil {
			diags = append(diags, diag.Timezone(*notice))
		}
	}

	if fm.Currency != "" {
		if code, ok := money.NormalizeCode(fm.Currency); ok {
			out.CurrencyFallback = code
		} else {
			diags = append(diags, diag.Fallback(diag.CodeInvalidCurrency, "frontmatter.currency", fm.Currency, p.CurrencyFallback))
		}
	}

	if fm.StayMode != "" {
		out.StayMode = fm.StayMode
	}
	return out, diags
}

// Clone returns a deep copy of p.
func (p Policy) Clone() Policy {
	p.AllowURLSchemes = slices.Clone(p.AllowURLSchemes)
	p.PriceKeys = slices.Clone(p.PriceKeys)
	return p
}

// AllowsScheme reports whether links with the given scheme are kept.
func (p Policy) AllowsScheme(scheme string) bool {
	return slices.Contains(p.AllowURLSchemes, strings.ToLower(scheme))
}

// IsPriceKey reports whether a metadata key holds a price line.
func (p Policy) IsPriceKey(key string) bool {
	for _, k := range p.PriceKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// MarkerHour returns the hour a marker stands for.
func (p Policy) MarkerHour(marker string) int {
	if strings.EqualFold(marker, "PM") {
		return p.PMHour
	}
	return p.AMHour
}
