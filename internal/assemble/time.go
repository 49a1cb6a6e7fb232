package assemble

import (
	"github.com/alnah/go-itmd/internal/dateutil"
)

const minutesPerDay = 24 * 60

// resolveTime turns the header time into clock times bound to the current
// context. An out-of-range clock drops the whole time.
func (a *assembler) resolveTime(e *EventNode, t timeSpec) Time {
	out := Time{Kind: t.kind}
	switch t.kind {
	case TimeNone:
		return out
	case TimeMarker:
		out.Marker = t.marker
		out.Start = a.clock(e, clockSpec{hour: a.policy.MarkerHour(t.marker)})
	case TimePoint:
		if !validClock(t.start) {
			e.warn(WarnInvalidTime)
			return Time{Kind: TimeNone}
		}
		out.Start = a.clock(e, t.start)
	case TimeRange:
		if !validClock(t.start) || !validClock(t.end) {
			e.warn(WarnInvalidTime)
			return Time{Kind: TimeNone}
		}
		out.Start = a.clock(e, t.start)
		out.End = a.clock(e, t.end)
		if endsBefore(out.Start, out.End) {
			out.End.DayOffset++
			a.setInstant(out.End)
			e.warn(WarnEndRolledOver)
		}
	}
	if a.date == "" {
		e.warn(WarnNoDateContext)
	}
	return out
}

func validClock(c clockSpec) bool {
	return c.hour >= 0 && c.hour <= 23 && c.minute >= 0 && c.minute <= 59
}

// clock resolves one clock against the context timezone. An inline zone
// wins when it normalizes; otherwise the context zone is kept.
func (a *assembler) clock(e *EventNode, c clockSpec) *ClockTime {
	ct := &ClockTime{
		Hour:           c.hour,
		Minute:         c.minute,
		Timezone:       a.tz,
		TimezoneSource: a.tzSource,
		DayOffset:      c.dayOffset,
	}
	if c.tz != "" {
		if tz, ok := dateutil.NormalizeTimezone(c.tz); ok {
			ct.Timezone, ct.TimezoneSource = tz, TZSourceInline
		} else {
			e.warn(WarnInvalidTimezone)
		}
	}
	a.setInstant(ct)
	return ct
}

func (a *assembler) setInstant(ct *ClockTime) {
	ct.Instant = ""
	if a.date == "" {
		return
	}
	date, ok := dateutil.ShiftDate(a.date, ct.DayOffset)
	if !ok {
		return
	}
	ct.Instant, _ = dateutil.ToISO(date, ct.Hour, ct.Minute, ct.Timezone)
}

// endsBefore reports whether end is strictly earlier than start. Instants
// are compared when both exist; without a date only clocks in the same zone
// can be compared.
func endsBefore(start, end *ClockTime) bool {
	if start.Instant != "" && end.Instant != "" {
		return end.Instant < start.Instant
	}
	if start.Timezone != end.Timezone {
		return false
	}
	return wallMinutes(end) < wallMinutes(start)
}

func wallMinutes(c *ClockTime) int {
	return c.DayOffset*minutesPerDay + c.Hour*60 + c.Minute
}
