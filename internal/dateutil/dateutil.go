// Package dateutil resolves itinerary dates and timezones.
//
// It normalizes timezone tokens (UTC/GMT, explicit offsets, IANA names),
// coerces invalid ones to a caller-supplied fallback, and turns a calendar
// date plus a wall-clock time into an absolute instant. It also compiles the
// date formats used to print heading dates in the CLI report.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat renders heading dates when no format is configured.
const DefaultDateFormat = "YYYY-MM-DD"

// DatePresets names common heading date formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"weekday":  "dddd D MMMM",
}

// dateField renders one component of a calendar date.
type dateField func(t time.Time) string

// dateFields lists the format tokens. Longer tokens sharing a prefix come
// first so "MMMM" wins over "MM".
var dateFields = []struct {
	token  string
	render dateField
}{
	{"YYYY", func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{"YY", func(t time.Time) string { return fmt.Sprintf("%02d", t.Year()%100) }},
	{"MMMM", func(t time.Time) string { return t.Month().String() }},
	{"MMM", func(t time.Time) string { return t.Month().String()[:3] }},
	{"MM", func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }},
	{"M", func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{"DD", func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }},
	{"D", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
	{"dddd", func(t time.Time) string { return t.Weekday().String() }},
	{"ddd", func(t time.Time) string { return t.Weekday().String()[:3] }},
}

// formatPart is either a literal or a field.
type formatPart struct {
	literal string
	field   dateField
}

// DateFormat is a compiled heading date format.
type DateFormat struct {
	source string
	parts  []formatPart
}

// String returns the format the value was compiled from.
func (f DateFormat) String() string { return f.source }

// Format renders the calendar date of t. Literal text is copied as written,
// so no part of it is ever read as a layout code.
func (f DateFormat) Format(t time.Time) string {
	var b strings.Builder
	for _, p := range f.parts {
		if p.field != nil {
			b.WriteString(p.field(t))
			continue
		}
		b.WriteString(p.literal)
	}
	return b.String()
}

// ParseDateFormat compiles a format string or preset name.
//
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, dddd (weekday), ddd. Text in
// brackets is literal: "[Day] D" renders "Day 10". Other characters are
// copied as they are. An empty format, one longer than MaxDateFormatLength
// or one with an unclosed bracket is rejected.
func ParseDateFormat(format string) (DateFormat, error) {
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		format = preset
	}
	if format == "" {
		return DateFormat{}, fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return DateFormat{}, fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	out := DateFormat{source: format}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			out.parts = append(out.parts, formatPart{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end < 0 {
				return DateFormat{}, fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			lit.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}
		if field, n := matchField(format[i:]); field != nil {
			flush()
			out.parts = append(out.parts, formatPart{field: field})
			i += n
			continue
		}
		lit.WriteByte(format[i])
		i++
	}
	flush()
	return out, nil
}

func matchField(s string) (dateField, int) {
	for _, f := range dateFields {
		if strings.HasPrefix(s, f.token) {
			return f.render, len(f.token)
		}
	}
	return nil, 0
}

// FormatDate renders t using a format or preset name. An empty format uses
// DefaultDateFormat.
func FormatDate(t time.Time, format string) (string, error) {
	if format == "" {
		format = DefaultDateFormat
	}
	f, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return f.Format(t), nil
}
