// Package icsexport writes the timed events of an itinerary as an iCalendar
// feed.
//
// Only events with a resolved start instant are exported. UIDs are name-based
// UUIDs derived from the event's position and content, so exporting the same
// document twice yields the same feed.
package icsexport

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/alnah/go-itmd/internal/assemble"
	"github.com/alnah/go-itmd/internal/inline"
)

// ProductID identifies the generator in the PRODID property.
const ProductID = "-//alnah//go-itmd//EN"

// Namespace seeds the name-based event UIDs.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/alnah/go-itmd/ics"))

// Options tunes the exported calendar.
type Options struct {
	// Name is written as X-WR-CALNAME when set.
	Name string
	// Stamp is used as DTSTAMP. When zero, each event's start is used.
	Stamp time.Time
}

// Export serializes the timed events of nodes.
func Export(nodes []assemble.Node, opts Options) []byte {
	return []byte(Build(nodes, opts).Serialize())
}

// Build returns the calendar for nodes without serializing it.
func Build(nodes []assemble.Node, opts Options) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	seen := map[string]int{}
	for _, e := range assemble.Events(nodes) {
		start, ok := instant(e.Time.Start)
		if !ok {
			continue
		}
		key := eventKey(e)
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s#%d", key, n)
		}

		ve := cal.AddEvent(uuid.NewSHA1(Namespace, []byte(key)).String() + "@go-itmd")
		stamp := opts.Stamp
		if stamp.IsZero() {
			stamp = start
		}
		ve.SetDtStampTime(stamp.UTC())
		ve.SetStartAt(start)
		if end, ok := instant(e.Time.End); ok {
			ve.SetEndAt(end)
		}
		ve.SetSummary(Summary(e))
		if loc := Location(e.Destination); loc != "" {
			ve.SetLocation(loc)
		}
		if desc := Description(e); desc != "" {
			ve.SetDescription(desc)
		}
	}
	return cal
}

func instant(c *assemble.ClockTime) (time.Time, bool) {
	if c == nil || c.Instant == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, c.Instant)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func eventKey(e *assemble.EventNode) string {
	return strings.Join([]string{
		e.Context.DateISO,
		e.Time.Start.Instant,
		e.EventType,
		inline.PlainText(e.Title),
	}, "|")
}

// Summary is the one-line event label: the title, or the event type when the
// title is empty.
func Summary(e *assemble.EventNode) string {
	title := strings.TrimSpace(inline.PlainText(e.Title))
	if title == "" {
		return e.EventType
	}
	return e.EventType + ": " + title
}

// Location renders a destination as plain text.
func Location(d *assemble.Destination) string {
	if d == nil {
		return ""
	}
	name := func(n *assemble.Name) string {
		if n == nil {
			return ""
		}
		return strings.TrimSpace(inline.PlainText(n.Primary))
	}
	switch d.Kind {
	case assemble.DestSingle:
		return name(d.At)
	default:
		loc := name(d.From) + " - " + name(d.To)
		if via := name(d.Via); via != "" {
			loc += " via " + via
		}
		return loc
	}
}

// Description joins the text segments of an event body, one per line.
func Description(e *assemble.EventNode) string {
	var lines []string
	for _, s := range e.Body {
		switch s.Kind {
		case assemble.SegmentInline:
			lines = append(lines, inline.PlainText(s.Content))
		case assemble.SegmentList:
			lines = append(lines, strings.Repeat("  ", s.Depth)+"- "+inline.PlainText(s.Content))
		case assemble.SegmentMeta:
			lines = append(lines, strings.Repeat("  ", s.Depth)+s.Key+": "+inline.PlainText(s.Value))
		}
	}
	return strings.Join(lines, "\n")
}
