package dateutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	// Embedded zone database so IANA validation does not depend on the host.
	_ "time/tzdata"
)

// UTC is the canonical form of a zero offset.
const UTC = "UTC+00:00"

// Offset bounds accepted in explicit UTC offsets.
const (
	MaxOffsetHours   = 14
	MaxOffsetMinutes = 59
)

// offsetPattern matches "[UTC|GMT]?[+-]H[H][:mm]".
var offsetPattern = regexp.MustCompile(`^(?i:UTC|GMT)?([+-])(\d{1,2})(?::(\d{2}))?$`)

// NormalizeTimezone returns the canonical form of tz: "UTC±HH:MM" for bare
// UTC/GMT and explicit offsets, or the IANA zone name itself when the zone
// database knows it under exactly that name. ok is false for anything else.
func NormalizeTimezone(tz string) (canonical string, ok bool) {
	s := strings.TrimSpace(tz)
	if s == "" {
		return "", false
	}
	if strings.EqualFold(s, "UTC") || strings.EqualFold(s, "GMT") {
		return UTC, true
	}
	if m := offsetPattern.FindStringSubmatch(s); m != nil {
		return normalizeOffset(m[1], m[2], m[3])
	}
	if isIANAZone(s) {
		return s, true
	}
	return "", false
}

func normalizeOffset(sign, hours, minutes string) (string, bool) {
	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 || h > MaxOffsetHours {
		return "", false
	}
	m := 0
	if minutes != "" {
		m, err = strconv.Atoi(minutes)
		if err != nil || m < 0 || m > MaxOffsetMinutes {
			return "", false
		}
	}
	if h == 0 && m == 0 {
		sign = "+"
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, h, m), true
}

// isIANAZone reports whether name round-trips through the zone database.
// "Local" and names that resolve to a different zone are rejected.
func isIANAZone(name string) bool {
	if name == "Local" {
		return false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return false
	}
	return loc.String() == name
}

// IsValidTimezone reports whether tz normalizes.
func IsValidTimezone(tz string) bool {
	_, ok := NormalizeTimezone(tz)
	return ok
}

// Coercion is the outcome of CoerceTimezone.
type Coercion struct {
	TZ    string // canonical timezone, or the fallback verbatim
	Valid bool   // false when the fallback was used
}

// CoerceTimezone normalizes tz, returning fallback unchanged when tz is invalid.
func CoerceTimezone(tz, fallback string) Coercion {
	if canonical, ok := NormalizeTimezone(tz); ok {
		return Coercion{TZ: canonical, Valid: true}
	}
	return Coercion{TZ: fallback, Valid: false}
}

// Notice describes a timezone coercion the user should be told about.
type Notice struct {
	Source   string // where the value came from, e.g. "frontmatter.timezone"
	Value    string // offending value
	Fallback string // value used instead
}

// Message renders the notice for display.
func (n Notice) Message() string {
	return fmt.Sprintf("%s: invalid timezone %q, falling back to %q", n.Source, n.Value, n.Fallback)
}

// CoerceTimezoneWithNotice coerces tz like CoerceTimezone and also returns a
// notice when a non-empty value had to be replaced by the fallback.
func CoerceTimezoneWithNotice(tz, fallback, source string) (string, *Notice) {
	c := CoerceTimezone(tz, fallback)
	if c.Valid || strings.TrimSpace(tz) == "" {
		return c.TZ, nil
	}
	return c.TZ, &Notice{Source: source, Value: tz, Fallback: fallback}
}

// Location resolves a timezone token to a *time.Location.
func Location(tz string) (*time.Location, bool) {
	canonical, ok := NormalizeTimezone(tz)
	if !ok {
		return nil, false
	}
	if m := offsetPattern.FindStringSubmatch(canonical); m != nil {
		h, _ := strconv.Atoi(m[2])
		mins, _ := strconv.Atoi(m[3])
		secs := h*3600 + mins*60
		if m[1] == "-" {
			secs = -secs
		}
		return time.FixedZone(canonical, secs), true
	}
	loc, err := time.LoadLocation(canonical)
	if err != nil {
		return nil, false
	}
	return loc, true
}
