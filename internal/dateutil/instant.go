package dateutil

import (
	"regexp"
	"time"
)

// isoDateLayout is the only calendar date form accepted in headings.
const isoDateLayout = "2006-01-02"

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDateISO parses a strict YYYY-MM-DD date. Impossible dates such as
// 2024-02-30 are rejected.
func ParseDateISO(s string) (time.Time, bool) {
	if !isoDatePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ShiftDate moves a YYYY-MM-DD date by days.
func ShiftDate(dateISO string, days int) (string, bool) {
	t, ok := ParseDateISO(dateISO)
	if !ok {
		return "", false
	}
	return t.AddDate(0, 0, days).Format(isoDateLayout), true
}

// ToISO converts a calendar date and wall-clock time in tz into an RFC 3339
// instant in UTC. ok is false when any component is invalid.
func ToISO(dateISO string, hour, minute int, tz string) (string, bool) {
	d, ok := ParseDateISO(dateISO)
	if !ok {
		return "", false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}
	loc, ok := Location(tz)
	if !ok {
		return "", false
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
	return t.UTC().Format(time.RFC3339), true
}
