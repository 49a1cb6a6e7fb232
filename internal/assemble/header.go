package assemble

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// clockExpr matches "[hh:mm]" with an optional "@zone" inside the brackets
// and an optional "+N" day offset after them.
const clockExpr = `\[\s*(\d{1,2}):(\d{2})\s*(?:@\s*([^\]\s]+)\s*)?\](?:\+(\d{1,2}))?`

var (
	rangePattern   = regexp.MustCompile(`^\s*` + clockExpr + `\s*-\s*` + clockExpr)
	pointPattern   = regexp.MustCompile(`^\s*` + clockExpr)
	markerPattern  = regexp.MustCompile(`^\s*\[\s*(?i:(AM|PM))\s*\]`)
	keywordPattern = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9_-]*)(?:\s+|$)`)

	fromPattern = regexp.MustCompile(`(?i)(?:^|\s+)from\s+`)
	toPattern   = regexp.MustCompile(`(?i)\s+to\s+`)
	viaPattern  = regexp.MustCompile(`(?i)\s+via\s+`)
	atPattern   = regexp.MustCompile(`(?i)(?:^|\s+)at\s+`)
	dashPattern = regexp.MustCompile(`\s+-\s+`)
)

// span is a byte range of the header line.
type span struct {
	start, end int
}

type clockSpec struct {
	hour, minute int
	tz           string
	dayOffset    int
}

type timeSpec struct {
	kind       TimeKind
	marker     string
	start, end clockSpec
}

type destSpans struct {
	kind              DestinationKind
	from, to, via, at *span
}

// header is the parsed first line of an event quote.
type header struct {
	time    timeSpec
	keyword string
	title   span
	dest    *destSpans
}

// parseHeader reads "[time] keyword title-and-destination". ok is false when
// the line does not start with a keyword after the optional time.
func parseHeader(s string) (header, bool) {
	h := header{time: timeSpec{kind: TimeNone}}

	pos := 0
	if t, n, ok := parseTime(s); ok {
		h.time = t
		pos = n
	}

	m := keywordPattern.FindStringSubmatchIndex(s[pos:])
	if m == nil {
		return h, false
	}
	h.keyword = s[pos+m[2] : pos+m[3]]
	pos += m[1]

	h.title, h.dest = splitTitleDestination(s[pos:], pos)
	return h, true
}

// parseTime matches a range, a point or a marker at the start of s. The
// match must be followed by whitespace or the end of s.
func parseTime(s string) (timeSpec, int, bool) {
	if m := rangePattern.FindStringSubmatchIndex(s); m != nil && boundary(s, m[1]) {
		return timeSpec{
			kind:  TimeRange,
			start: clockFromMatch(s, m[2:10]),
			end:   clockFromMatch(s, m[10:18]),
		}, m[1], true
	}
	if m := pointPattern.FindStringSubmatchIndex(s); m != nil && boundary(s, m[1]) {
		return timeSpec{kind: TimePoint, start: clockFromMatch(s, m[2:10])}, m[1], true
	}
	if m := markerPattern.FindStringSubmatchIndex(s); m != nil && boundary(s, m[1]) {
		return timeSpec{kind: TimeMarker, marker: strings.ToUpper(s[m[2]:m[3]])}, m[1], true
	}
	return timeSpec{}, 0, false
}

// clockFromMatch decodes the four clockExpr groups from submatch indices.
func clockFromMatch(s string, idx []int) clockSpec {
	group := func(i int) string {
		if idx[2*i] < 0 {
			return ""
		}
		return s[idx[2*i]:idx[2*i+1]]
	}
	c := clockSpec{tz: group(2)}
	c.hour, _ = strconv.Atoi(group(0))
	c.minute, _ = strconv.Atoi(group(1))
	if d := group(3); d != "" {
		c.dayOffset, _ = strconv.Atoi(d)
	}
	return c
}

func boundary(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsSpace(r)
}

// splitTitleDestination splits the text after the keyword. Forms are tried
// in order: "title :: dest", "title from A to B [via C]", "title at A" and
// "title - A - B". base is the offset of s within the header line.
func splitTitleDestination(s string, base int) (span, *destSpans) {
	whole := span{base, base + len(s)}
	sp := func(start, end int) *span { return &span{base + start, base + end} }

	if i := strings.Index(s, "::"); i >= 0 {
		rest := i + 2
		d := &destSpans{kind: DestSingle, at: sp(rest, len(s))}
		if m := dashPattern.FindStringIndex(s[rest:]); m != nil {
			d = &destSpans{
				kind: DestDashPair,
				from: sp(rest, rest+m[0]),
				to:   sp(rest+m[1], len(s)),
			}
		}
		return span{base, base + i}, d
	}

	if f := fromPattern.FindStringIndex(s); f != nil {
		if t := toPattern.FindStringIndex(s[f[1]:]); t != nil {
			toStart := f[1] + t[1]
			d := &destSpans{kind: DestFromTo, from: sp(f[1], f[1]+t[0])}
			if v := viaPattern.FindStringIndex(s[toStart:]); v != nil {
				d.to = sp(toStart, toStart+v[0])
				d.via = sp(toStart+v[1], len(s))
			} else {
				d.to = sp(toStart, len(s))
			}
			return span{base, base + f[0]}, d
		}
	}

	if m := atPattern.FindStringIndex(s); m != nil {
		return span{base, base + m[0]}, &destSpans{kind: DestSingle, at: sp(m[1], len(s))}
	}

	if ms := dashPattern.FindAllStringIndex(s, -1); len(ms) >= 2 {
		return span{base, base + ms[0][0]}, &destSpans{
			kind: DestDashPair,
			from: sp(ms[0][1], ms[1][0]),
			to:   sp(ms[1][1], len(s)),
		}
	}

	return whole, nil
}
