// Package frontmatter reads the YAML preamble of an itmd document.
//
// The preamble seeds document-level defaults: a title, a fallback timezone,
// a fallback currency and the stay display mode. Extraction never fails.
// Malformed YAML or values of the wrong shape are reported as diagnostics and
// the document body is still returned.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	adrg "github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-itmd/internal/dateutil"
	"github.com/alnah/go-itmd/internal/diag"
	"github.com/alnah/go-itmd/internal/yamlutil"
)

// MaxTitleLength bounds the document title, in runes.
const MaxTitleLength = 200

// StayMode controls where stay events are placed in the output.
type StayMode string

// Stay modes.
const (
	// StayModeDefault keeps stay events in the flat node sequence.
	StayModeDefault StayMode = "default"
	// StayModeHeader attaches stay events to the active date heading.
	StayModeHeader StayMode = "header"
)

// Frontmatter holds the normalized preamble fields. Empty fields were absent.
type Frontmatter struct {
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Timezone string   `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Currency string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	StayMode StayMode `json:"stayMode,omitempty" yaml:"stayMode,omitempty"`
}

// Result is the outcome of Extract.
type Result struct {
	Frontmatter Frontmatter
	Body        []byte
	Diagnostics []diag.Diagnostic
}

var yamlFormat = adrg.NewFormat("---", "---", unmarshalYAML)

// unmarshalYAML accepts an empty preamble, which yamlutil rejects.
func unmarshalYAML(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return yamlutil.Unmarshal(data, v)
}

// Extract splits source into preamble and body. A document without a
// preamble yields a zero Frontmatter and the whole source as body.
func Extract(source []byte) Result {
	var raw map[string]any
	body, err := adrg.Parse(bytes.NewReader(source), &raw, yamlFormat)
	if err != nil {
		return Result{
			Body: source,
			Diagnostics: []diag.Diagnostic{{
				Code:    diag.CodeInvalidFrontmatter,
				Source:  "frontmatter",
				Message: fmt.Sprintf("frontmatter: %v", err),
			}},
		}
	}

	r := Result{Body: body}
	fm := &r.Frontmatter

	fm.Title = r.scalar(raw, "title")
	if err := validation.Validate(fm.Title, validation.RuneLength(0, MaxTitleLength)); err != nil {
		r.Diagnostics = append(r.Diagnostics, diag.Diagnostic{
			Code:    diag.CodeInvalidFrontmatter,
			Source:  "frontmatter.title",
			Message: fmt.Sprintf("frontmatter.title: %v; truncated to %d characters", err, MaxTitleLength),
		})
		fm.Title = string([]rune(fm.Title)[:MaxTitleLength])
	}

	fm.Timezone = r.scalar(raw, "timezone")
	if canonical, ok := dateutil.NormalizeTimezone(fm.Timezone); ok {
		fm.Timezone = canonical
	}

	fm.Currency = strings.ToUpper(r.scalar(raw, "currency"))

	if mode := strings.ToLower(r.scalar(raw, "stayMode")); mode != "" {
		fm.StayMode = StayMode(mode)
		if err := validation.Validate(fm.StayMode, validation.In(StayModeDefault, StayModeHeader)); err != nil {
			r.Diagnostics = append(r.Diagnostics,
				diag.Fallback(diag.CodeInvalidStayMode, "frontmatter.stayMode", mode, string(StayModeDefault)))
			fm.StayMode = StayModeDefault
		}
	}

	return r
}

// scalar reads key from raw as trimmed text. Numbers and booleans are
// converted with a diagnostic; lists and maps are ignored with one.
func (r *Result) scalar(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	source := "frontmatter." + key
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case bool, int, int64, uint64, float64:
		s := fmt.Sprint(t)
		r.Diagnostics = append(r.Diagnostics, diag.Diagnostic{
			Code:    diag.CodeFrontmatterTypeCast,
			Source:  source,
			Value:   s,
			Message: fmt.Sprintf("%s: expected text, read %T %s as %q", source, t, s, s),
		})
		return s
	default:
		r.Diagnostics = append(r.Diagnostics, diag.Diagnostic{
			Code:    diag.CodeInvalidFrontmatter,
			Source:  source,
			Message: fmt.Sprintf("%s: expected text, got %T; ignored", source, t),
		})
		return ""
	}
}
