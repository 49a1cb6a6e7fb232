// Package assemble turns the generic Markdown tree into itinerary nodes.
//
// Assemble makes a single pass over the top-level blocks. Dated H2 headings
// set the date and timezone context, quotes whose first line reads as an
// event header become EventNodes, alerts are emitted as AlertNodes and every
// other block passes through untouched. Nothing in the input aborts the pass:
// problems are recorded as warnings on the node they concern or as document
// diagnostics.
package assemble

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-itmd/internal/dateutil"
	"github.com/alnah/go-itmd/internal/diag"
	"github.com/alnah/go-itmd/internal/frontmatter"
	"github.com/alnah/go-itmd/internal/inline"
	"github.com/alnah/go-itmd/internal/mdtree"
	"github.com/alnah/go-itmd/internal/money"
	"github.com/alnah/go-itmd/internal/policy"
)

// Event warning codes.
const (
	WarnUnknownEventType  = "unknown-event-type"
	WarnInvalidTime       = "invalid-time"
	WarnInvalidTimezone   = "invalid-timezone"
	WarnEndRolledOver     = "end-rolled-over"
	WarnNoDateContext     = "no-date-context"
	WarnLinkSchemeBlocked = "link-scheme-blocked"
)

// CodeInvalidDate is the diagnostic code for a date heading with an
// impossible calendar date.
const CodeInvalidDate = "invalid-date"

// DateHeadingLevel is the heading level that carries dates.
const DateHeadingLevel = 2

var headingPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?:\s+@\s*(\S+))?$`)

// Result is the output of Assemble.
type Result struct {
	Nodes       []Node
	Diagnostics []diag.Diagnostic
}

// Assemble converts blocks, already rewritten by the alert recognizer, into
// nodes. p is read only.
func Assemble(blocks []mdtree.Block, p policy.Policy) Result {
	a := &assembler{
		policy:       p,
		nodes:        []Node{},
		headingIndex: -1,
		tz:           p.TZFallback,
		tzSource:     TZSourcePolicy,
	}
	for i, b := range blocks {
		a.step(i, b)
	}
	return Result{Nodes: a.nodes, Diagnostics: a.diags}
}

// assembler holds the context of one pass.
type assembler struct {
	policy policy.Policy
	nodes  []Node
	diags  []diag.Diagnostic

	heading      *HeadingNode
	headingIndex int
	date         string
	tz           string
	tzSource     string
}

func (a *assembler) step(i int, b mdtree.Block) {
	switch t := b.(type) {
	case *mdtree.Heading:
		if h, ok := a.dateHeading(t); ok {
			a.nodes = append(a.nodes, h)
			return
		}
	case *mdtree.Alert:
		a.nodes = append(a.nodes, &AlertNode{
			Variant:     t.Variant,
			Title:       t.Title,
			InlineTitle: t.InlineTitle,
			Children:    t.Children,
		})
		return
	case *mdtree.Quote:
		if e, ok := a.event(t); ok {
			a.emitEvent(e)
			return
		}
	}
	a.nodes = append(a.nodes, &BlockNode{Block: b, SourceIndex: i})
}

// dateHeading recognizes "## YYYY-MM-DD [@zone]" and updates the context.
func (a *assembler) dateHeading(h *mdtree.Heading) (*HeadingNode, bool) {
	if h.Level != DateHeadingLevel {
		return nil, false
	}
	text := strings.TrimSpace(inline.PlainText(h.Children))
	m := headingPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	date, zone := m[1], m[2]
	if _, ok := dateutil.ParseDateISO(date); !ok {
		a.diags = append(a.diags, diag.Diagnostic{
			Code:    CodeInvalidDate,
			Source:  "heading",
			Value:   date,
			Message: fmt.Sprintf("heading: %q is not a calendar date; kept as plain heading", date),
		})
		return nil, false
	}

	a.headingIndex++
	node := &HeadingNode{Index: a.headingIndex, DateISO: date}
	a.date = date
	a.tz, a.tzSource = a.policy.TZFallback, TZSourcePolicy

	if zone != "" {
		tz, notice := dateutil.CoerceTimezoneWithNotice(zone, a.policy.TZFallback, "heading "+date)
		if notice != nil {
			a.diags = append(a.diags, diag.Timezone(*notice))
		} else {
			a.tzSource = TZSourceHeading
		}
		a.tz = tz
		node.Timezone = tz
	}

	a.heading = node
	return node, true
}

func (a *assembler) emitEvent(e *EventNode) {
	if a.policy.StayMode == frontmatter.StayModeHeader && e.BaseType == BaseStay && a.heading != nil {
		a.heading.Stays = append(a.heading.Stays, e)
		return
	}
	a.nodes = append(a.nodes, e)
}

// event reads a quote as an event. ok is false when the first line is not an
// event header, in which case the quote passes through.
func (a *assembler) event(q *mdtree.Quote) (*EventNode, bool) {
	if len(q.Children) == 0 {
		return nil, false
	}
	para, ok := q.Children[0].(*mdtree.Paragraph)
	if !ok {
		return nil, false
	}
	lines := inline.SplitLines(para.Children)
	line := lines[0]

	h, ok := parseHeader(inline.PlainText(line))
	if !ok {
		return nil, false
	}
	base, known := LookupEventType(h.keyword)
	if !known && h.time.kind == TimeNone {
		return nil, false
	}

	e := &EventNode{
		EventType: strings.ToLower(h.keyword),
		BaseType:  base,
		Body:      []Segment{},
		Prices:    map[string][]money.PriceNode{},
		Warnings:  []string{},
		Context: EventContext{
			HeadingIndex: a.headingIndex,
			DateISO:      a.date,
			Timezone:     a.tz,
		},
	}
	if !known {
		e.BaseType = BaseActivity
		e.Suggestion = suggestEventType(h.keyword)
		e.warn(WarnUnknownEventType)
	}

	e.Time = a.resolveTime(e, h.time)

	title := a.name(e, line, h.title)
	e.Title = title.Primary
	if e.Title == nil {
		e.Title = []mdtree.Inline{}
	}
	e.TitleAlt = title.Alternate
	e.Destination = a.destination(e, line, h.dest)

	for _, l := range lines[1:] {
		a.appendInlineSegment(e, l)
	}
	for _, b := range q.Children[1:] {
		a.appendBlock(e, b)
	}
	return e, true
}

// name slices sp out of line and splits it on the first caret.
func (a *assembler) name(e *EventNode, line []mdtree.Inline, sp span) Name {
	nodes := inline.TrimSpace(inline.Slice(line, sp.start, sp.end))
	left, right := inline.SplitByCaret(a.clean(e, nodes))
	n := Name{Primary: inline.TrimSpace(left)}
	if right != nil {
		n.Alternate = inline.TrimSpace(right)
	}
	return n
}

func (a *assembler) destination(e *EventNode, line []mdtree.Inline, d *destSpans) *Destination {
	if d == nil {
		return nil
	}
	out := &Destination{Kind: d.kind}
	field := func(sp *span) *Name {
		if sp == nil {
			return nil
		}
		n := a.name(e, line, *sp)
		return &n
	}
	out.From = field(d.from)
	out.To = field(d.to)
	out.Via = field(d.via)
	out.At = field(d.at)
	return out
}
