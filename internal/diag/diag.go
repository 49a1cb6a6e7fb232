// Package diag defines the document-level notices shared by the parsing
// stages.
package diag

import (
	"fmt"

	"github.com/alnah/go-itmd/internal/dateutil"
)

// Diagnostic codes.
const (
	CodeInvalidTimezone     = "invalid-timezone"
	CodeInvalidCurrency     = "invalid-currency"
	CodeInvalidStayMode     = "invalid-stay-mode"
	CodeInvalidFrontmatter  = "invalid-frontmatter"
	CodeFrontmatterTypeCast = "frontmatter-type-coerced"
)

// Diagnostic is a user-visible notice about a value that was replaced by a
// fallback or could not be read.
type Diagnostic struct {
	Code     string `json:"code"`
	Source   string `json:"source"`
	Value    string `json:"value,omitempty"`
	Fallback string `json:"fallback,omitempty"`
	Message  string `json:"message"`
}

// Fallback builds a diagnostic for value at source being replaced by fallback.
func Fallback(code, source, value, fallback string) Diagnostic {
	msg := fmt.Sprintf("%s: invalid value %q, falling back to %q", source, value, fallback)
	if fallback == "" {
		msg = fmt.Sprintf("%s: invalid value %q ignored", source, value)
	}
	return Diagnostic{
		Code:     code,
		Source:   source,
		Value:    value,
		Fallback: fallback,
		Message:  msg,
	}
}

// String implements fmt.Stringer.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}

// Timezone converts a timezone coercion notice into a diagnostic.
func Timezone(n dateutil.Notice) Diagnostic {
	return Diagnostic{
		Code:     CodeInvalidTimezone,
		Source:   n.Source,
		Value:    n.Value,
		Fallback: n.Fallback,
		Message:  n.Message(),
	}
}
