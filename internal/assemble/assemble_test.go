package assemble

// Notes:
// - Trees are built by hand in the shape produced by the goldmark adapter:
//   line endings inside a paragraph are SoftBreak nodes.
// - The default policy resolves to UTC+00:00, so instants without a heading
//   zone are plain UTC.

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/alnah/go-itmd/internal/diag"
	"github.com/alnah/go-itmd/internal/frontmatter"
	"github.com/alnah/go-itmd/internal/inline"
	"github.com/alnah/go-itmd/internal/mdtree"
	"github.com/alnah/go-itmd/internal/policy"
)

func text(s string) *mdtree.Text { return &mdtree.Text{Value: s} }

// lines builds a paragraph whose lines are separated by soft breaks.
func lines(ls ...string) *mdtree.Paragraph {
	var children []mdtree.Inline
	for i, l := range ls {
		if i > 0 {
			children = append(children, &mdtree.SoftBreak{})
		}
		children = append(children, text(l))
	}
	return &mdtree.Paragraph{Children: children}
}

func quote(children ...mdtree.Block) *mdtree.Quote {
	return &mdtree.Quote{Children: children}
}

func heading(level int, s string) *mdtree.Heading {
	return &mdtree.Heading{Level: level, Children: []mdtree.Inline{text(s)}}
}

func item(checked *bool, children ...mdtree.Block) *mdtree.ListItem {
	return &mdtree.ListItem{Checked: checked, Children: children}
}

func list(items ...*mdtree.ListItem) *mdtree.List {
	return &mdtree.List{Tight: true, Items: items}
}

// event assembles blocks and returns the only event node.
func event(t *testing.T, p policy.Policy, blocks ...mdtree.Block) *EventNode {
	t.Helper()
	res := Assemble(blocks, p)
	var found *EventNode
	for _, n := range res.Nodes {
		if e, ok := n.(*EventNode); ok {
			if found != nil {
				t.Fatal("more than one event")
			}
			found = e
		}
	}
	if found == nil {
		t.Fatalf("no event in %d nodes", len(res.Nodes))
	}
	return found
}

func hasWarning(e *EventNode, code string) bool {
	for _, w := range e.Warnings {
		if w == code {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// TestAssemble - Heading context
// ---------------------------------------------------------------------------

func TestAssemble_HeadingContext(t *testing.T) {
	t.Parallel()

	e := event(t, policy.Default(),
		heading(2, "2024-03-10 @Asia/Tokyo"),
		quote(lines("[09:30] flight AF276 from Paris to Tokyo")),
	)

	if e.Context.HeadingIndex != 0 || e.Context.DateISO != "2024-03-10" || e.Context.Timezone != "Asia/Tokyo" {
		t.Errorf("context = %+v", e.Context)
	}
	if e.Time.Kind != TimePoint || e.Time.Start == nil {
		t.Fatalf("time = %+v", e.Time)
	}
	start := e.Time.Start
	if start.Instant != "2024-03-10T00:30:00Z" {
		t.Errorf("instant = %q, want 2024-03-10T00:30:00Z", start.Instant)
	}
	if start.TimezoneSource != TZSourceHeading {
		t.Errorf("timezoneSource = %q, want %q", start.TimezoneSource, TZSourceHeading)
	}
	if len(e.Warnings) != 0 {
		t.Errorf("warnings = %v", e.Warnings)
	}
}

func TestAssemble_HeadingWithoutZoneResetsToFallback(t *testing.T) {
	t.Parallel()

	res := Assemble([]mdtree.Block{
		heading(2, "2024-03-10 @Asia/Tokyo"),
		heading(2, "2024-03-11"),
		quote(lines("[08:00] tour Harbour")),
	}, policy.Default())

	e := res.Nodes[2].(*EventNode)
	if e.Context.HeadingIndex != 1 || e.Context.Timezone != policy.DefaultTZFallback {
		t.Errorf("context = %+v", e.Context)
	}
	if e.Time.Start.TimezoneSource != TZSourcePolicy || e.Time.Start.Instant != "2024-03-11T08:00:00Z" {
		t.Errorf("start = %+v", e.Time.Start)
	}
}

func TestAssemble_HeadingDiagnostics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantKind string
	}{
		{"invalid zone coerced", "2024-03-10 @Mars/Base", diag.CodeInvalidTimezone, KindHeading},
		{"impossible date passes through", "2024-02-30", CodeInvalidDate, KindBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := Assemble([]mdtree.Block{heading(2, tt.text)}, policy.Default())
			if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != tt.wantCode {
				t.Fatalf("diagnostics = %+v", res.Diagnostics)
			}
			if got := res.Nodes[0].Kind(); got != tt.wantKind {
				t.Errorf("kind = %q, want %q", got, tt.wantKind)
			}
			if h, ok := res.Nodes[0].(*HeadingNode); ok && h.Timezone != policy.DefaultTZFallback {
				t.Errorf("timezone = %q, want fallback", h.Timezone)
			}
		})
	}
}

func TestAssemble_NonDateHeadingsPassThrough(t *testing.T) {
	t.Parallel()

	res := Assemble([]mdtree.Block{
		heading(1, "2024-03-10"),
		heading(2, "Day one"),
		heading(3, "2024-03-10"),
	}, policy.Default())

	for i, n := range res.Nodes {
		b, ok := n.(*BlockNode)
		if !ok {
			t.Fatalf("node %d is %T, want *BlockNode", i, n)
		}
		if b.SourceIndex != i {
			t.Errorf("SourceIndex = %d, want %d", b.SourceIndex, i)
		}
	}
}

// ---------------------------------------------------------------------------
// TestAssemble - Time resolution
// ---------------------------------------------------------------------------

func TestAssemble_RangeRollsOver(t *testing.T) {
	t.Parallel()

	e := event(t, policy.Default(),
		heading(2, "2024-03-10"),
		quote(lines("[22:00]-[06:00] train Night train")),
	)

	if e.Time.Kind != TimeRange {
		t.Fatalf("kind = %q", e.Time.Kind)
	}
	if e.Time.End.DayOffset != 1 || e.Time.End.Instant != "2024-03-11T06:00:00Z" {
		t.Errorf("end = %+v", e.Time.End)
	}
	if !hasWarning(e, WarnEndRolledOver) {
		t.Errorf("warnings = %v, want %s", e.Warnings, WarnEndRolledOver)
	}
}

func TestAssemble_ExplicitDayOffset(t *testing.T) {
	t.Parallel()

	e := event(t, policy.Default(),
		heading(2, "2024-03-10"),
		quote(lines("[22:00]-[06:00]+1 train Night train")),
	)
	if e.Time.End.DayOffset != 1 || e.Time.End.Instant != "2024-03-11T06:00:00Z" {
		t.Errorf("end = %+v", e.Time.End)
	}
	if hasWarning(e, WarnEndRolledOver) {
		t.Error("explicit offset should not roll over")
	}
}

func TestAssemble_InlineZones(t *testing.T) {
	t.Parallel()

	e := event(t, policy.Default(),
		heading(2, "2024-03-10 @Asia/Tokyo"),
		quote(lines("[10:00@UTC+02:00]-[20:00@Bogus/Zone] tour Old town at Prague")),
	)

	start, end := e.Time.Start, e.Time.End
	if start.Timezone != "UTC+02:00" || start.TimezoneSource != TZSourceInline || start.Instant != "2024-03-10T08:00:00Z" {
		t.Errorf("start = %+v", start)
	}
	if end.Timezone != "Asia/Tokyo" || end.TimezoneSource != TZSourceHeading {
		t.Errorf("end = %+v", end)
	}
	if !hasWarning(e, WarnInvalidTimezone) {
		t.Errorf("warnings = %v, want %s", e.Warnings, WarnInvalidTimezone)
	}
}

func TestAssemble_Markers(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	p.PMHour = 14

	e := event(t, p, heading(2, "2024-03-10"), quote(lines("[pm] museum Louvre")))
	if e.Time.Kind != TimeMarker || e.Time.Marker != "PM" {
		t.Fatalf("time = %+v", e.Time)
	}
	if e.Time.Start.Hour != 14 || e.Time.Start.Minute != 0 {
		t.Errorf("start = %+v", e.Time.Start)
	}
}

func TestAssemble_TimeProblems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		blocks   []mdtree.Block
		wantKind TimeKind
		wantWarn string
	}{
		{
			name:     "no date context",
			blocks:   []mdtree.Block{quote(lines("[09:00] lunch Ramen"))},
			wantKind: TimePoint,
			wantWarn: WarnNoDateContext,
		},
		{
			name:     "hour out of range",
			blocks:   []mdtree.Block{heading(2, "2024-03-10"), quote(lines("[25:00] lunch Ramen"))},
			wantKind: TimeNone,
			wantWarn: WarnInvalidTime,
		},
		{
			name:     "minute out of range",
			blocks:   []mdtree.Block{heading(2, "2024-03-10"), quote(lines("[09:00]-[10:75] lunch Ramen"))},
			wantKind: TimeNone,
			wantWarn: WarnInvalidTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := event(t, policy.Default(), tt.blocks...)
			if e.Time.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", e.Time.Kind, tt.wantKind)
			}
			if !hasWarning(e, tt.wantWarn) {
				t.Errorf("warnings = %v, want %s", e.Warnings, tt.wantWarn)
			}
		})
	}
}

func TestAssemble_NoDateLeavesInstantEmpty(t *testing.T) {
	t.Parallel()

	e := event(t, policy.Default(), quote(lines("[09:00] lunch Ramen")))
	if e.Context.HeadingIndex != -1 || e.Time.Start.Instant != "" {
		t.Errorf("context = %+v, start = %+v", e.Context, e.Time.Start)
	}
}

// ---------------------------------------------------------------------------
// TestAssemble - Event types
// ---------------------------------------------------------------------------

func TestAssemble_EventTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		line           string
		wantEvent      bool
		wantType       string
		wantBase       BaseType
		wantSuggestion string
	}{
		{"known keyword without time", "Hotel Gracery Shinjuku", true, "hotel", BaseStay, ""},
		{"unknown keyword with time", "[10:00] flght AF1", true, "flght", BaseActivity, "flight"},
		{"unknown keyword without time", "Remember the passports", false, "", "", ""},
		{"plain sentence", "1. not a header", false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := Assemble([]mdtree.Block{heading(2, "2024-03-10"), quote(lines(tt.line))}, policy.Default())
			e, ok := res.Nodes[1].(*EventNode)
			if ok != tt.wantEvent {
				t.Fatalf("got %T, wantEvent %v", res.Nodes[1], tt.wantEvent)
			}
			if !ok {
				return
			}
			if e.EventType != tt.wantType || e.BaseType != tt.wantBase || e.Suggestion != tt.wantSuggestion {
				t.Errorf("type/base/suggestion = %q/%q/%q", e.EventType, e.BaseType, e.Suggestion)
			}
			if unknown := tt.wantSuggestion != ""; unknown != hasWarning(e, WarnUnknownEventType) {
				t.Errorf("warnings = %v", e.Warnings)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestAssemble - Titles and destinations
// ---------------------------------------------------------------------------

func TestAssemble_Destinations(t *testing.T) {
	t.Parallel()

	plain := func(n *Name) string {
		if n == nil {
			return "<nil>"
		}
		s := inline.PlainText(n.Primary)
		if n.Alternate != nil {
			s += "^" + inline.PlainText(n.Alternate)
		}
		return s
	}

	tests := []struct {
		name      string
		line      string
		wantTitle string
		wantKind  DestinationKind
		wantFrom  string
		wantTo    string
		wantVia   string
		wantAt    string
	}{
		{
			name:      "from to via with caret",
			line:      "flight AF276 from Paris^巴黎 to Tokyo via Seoul",
			wantTitle: "AF276", wantKind: DestFromTo,
			wantFrom: "Paris^巴黎", wantTo: "Tokyo", wantVia: "Seoul", wantAt: "<nil>",
		},
		{
			name:      "double colon single",
			line:      "hotel Sunroute :: Shinjuku",
			wantTitle: "Sunroute", wantKind: DestSingle,
			wantFrom: "<nil>", wantTo: "<nil>", wantVia: "<nil>", wantAt: "Shinjuku",
		},
		{
			name:      "double colon dash pair",
			line:      "train Nozomi 7 :: Tokyo - Kyoto",
			wantTitle: "Nozomi 7", wantKind: DestDashPair,
			wantFrom: "Tokyo", wantTo: "Kyoto", wantVia: "<nil>", wantAt: "<nil>",
		},
		{
			name:      "at",
			line:      "tour Walking tour at Old Town",
			wantTitle: "Walking tour", wantKind: DestSingle,
			wantFrom: "<nil>", wantTo: "<nil>", wantVia: "<nil>", wantAt: "Old Town",
		},
		{
			name:      "dashes",
			line:      "bus Express - Lyon - Geneva",
			wantTitle: "Express", wantKind: DestDashPair,
			wantFrom: "Lyon", wantTo: "Geneva", wantVia: "<nil>", wantAt: "<nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := event(t, policy.Default(), quote(lines(tt.line)))
			if got := inline.PlainText(e.Title); got != tt.wantTitle {
				t.Errorf("title = %q, want %q", got, tt.wantTitle)
			}
			d := e.Destination
			if d == nil {
				t.Fatal("destination is nil")
			}
			if d.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", d.Kind, tt.wantKind)
			}
			got := []string{plain(d.From), plain(d.To), plain(d.Via), plain(d.At)}
			want := []string{tt.wantFrom, tt.wantTo, tt.wantVia, tt.wantAt}
			if strings.Join(got, "|") != strings.Join(want, "|") {
				t.Errorf("from|to|via|at = %v, want %v", got, want)
			}
		})
	}
}

func TestAssemble_TitleOnly(t *testing.T) {
	t.Parallel()

	e := event(t, policy.Default(), quote(lines("dinner Izakaya Torikizoku^鳥貴族")))
	if e.Destination != nil {
		t.Errorf("destination = %+v, want nil", e.Destination)
	}
	if inline.PlainText(e.Title) != "Izakaya Torikizoku" || inline.PlainText(e.TitleAlt) != "鳥貴族" {
		t.Errorf("title/alt = %q/%q", inline.PlainText(e.Title), inline.PlainText(e.TitleAlt))
	}
}

func TestAssemble_TitleKeepsFormatting(t *testing.T) {
	t.Parallel()

	p := &mdtree.Paragraph{Children: []mdtree.Inline{
		text("museum "),
		&mdtree.Strong{Children: []mdtree.Inline{text("teamLab")}},
		text(" at Toyosu"),
	}}
	e := event(t, policy.Default(), quote(p))

	if len(e.Title) != 1 {
		t.Fatalf("title = %#v", e.Title)
	}
	if _, ok := e.Title[0].(*mdtree.Strong); !ok {
		t.Errorf("title[0] = %T, want *mdtree.Strong", e.Title[0])
	}
}

// ---------------------------------------------------------------------------
// TestAssemble - Body and prices
// ---------------------------------------------------------------------------

func TestAssemble_Body(t *testing.T) {
	t.Parallel()

	done := true
	e := event(t, policy.Default(),
		heading(2, "2024-03-10"),
		quote(
			lines("[19:00] dinner Omakase", "Reservation under Smith"),
			lines("Bring cash"),
			list(
				item(nil, lines("Cost: EUR 45")),
				item(&done, lines("confirm booking")),
				item(nil, lines("notes"), list(item(nil, lines("window seat")))),
			),
			&mdtree.CodeBlock{Value: "ref 42\n"},
		),
	)

	type seg struct {
		kind  SegmentKind
		text  string
		depth int
	}
	var got []seg
	for _, s := range e.Body {
		txt := inline.PlainText(s.Content)
		if s.Kind == SegmentMeta {
			txt = s.Key + "=" + inline.PlainText(s.Value)
		}
		got = append(got, seg{s.Kind, txt, s.Depth})
	}
	want := []seg{
		{SegmentInline, "Reservation under Smith", 0},
		{SegmentInline, "Bring cash", 0},
		{SegmentMeta, "Cost=EUR 45", 0},
		{SegmentList, "confirm booking", 0},
		{SegmentList, "notes", 0},
		{SegmentList, "window seat", 1},
		{SegmentBlock, "", 0},
	}
	if len(got) != len(want) {
		t.Fatalf("body = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if c := e.Body[3].Checked; c == nil || !*c {
		t.Error("task item lost its checked state")
	}

	prices := e.Prices["cost"]
	if len(prices) != 1 {
		t.Fatalf("prices = %+v", e.Prices)
	}
	if m := prices[0].Money(); len(m) != 1 || m[0].Fragment.Currency != "EUR" {
		t.Errorf("money = %+v", m)
	}
}

func TestAssemble_PriceUsesCurrencyFallback(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	p.CurrencyFallback = "JPY"
	e := event(t, p, quote(lines("lunch Ramen"), list(item(nil, lines("price: 1200")))))

	m := e.Prices["price"][0].Money()
	if len(m) != 1 || m[0].Fragment.Currency != "JPY" {
		t.Errorf("money = %+v", m)
	}
}

func TestAssemble_URLIsNotMetadata(t *testing.T) {
	t.Parallel()

	e := event(t, policy.Default(), quote(lines("tour Castle"), list(item(nil, lines("https://example.test/castle")))))
	if len(e.Body) != 1 || e.Body[0].Kind != SegmentList {
		t.Errorf("body = %+v", e.Body)
	}
}

// ---------------------------------------------------------------------------
// TestAssemble - Link filtering
// ---------------------------------------------------------------------------

func TestAssemble_BlockedLinks(t *testing.T) {
	t.Parallel()

	title := &mdtree.Paragraph{Children: []mdtree.Inline{
		text("tour "),
		&mdtree.Link{URL: "javascript:alert(1)", Children: []mdtree.Inline{text("Castle")}},
		&mdtree.SoftBreak{},
		&mdtree.Link{URL: "https://example.test", Children: []mdtree.Inline{text("site")}},
		text(" "),
		&mdtree.Image{URL: "data:image/png;base64,AA", Alt: "map"},
	}}
	e := event(t, policy.Default(), quote(title))

	if len(e.Title) != 1 {
		t.Fatalf("title = %#v", e.Title)
	}
	if tx, ok := e.Title[0].(*mdtree.Text); !ok || tx.Value != "Castle" {
		t.Errorf("title[0] = %#v, want unwrapped text", e.Title[0])
	}
	if !hasWarning(e, WarnLinkSchemeBlocked) {
		t.Errorf("warnings = %v", e.Warnings)
	}

	body := e.Body[0].Content
	if _, ok := body[0].(*mdtree.Link); !ok {
		t.Errorf("allowed link was unwrapped: %#v", body[0])
	}
	if got := inline.PlainText(body); got != "site map" {
		t.Errorf("body text = %q, want %q", got, "site map")
	}
}

// ---------------------------------------------------------------------------
// TestAssemble - Passthrough, alerts and stay mode
// ---------------------------------------------------------------------------

func TestAssemble_AlertsAndPassthrough(t *testing.T) {
	t.Parallel()

	alert := &mdtree.Alert{Variant: "tip", Title: "TIP", Children: []mdtree.Block{lines("Buy a JR pass")}}
	res := Assemble([]mdtree.Block{
		lines("Trip notes"),
		alert,
		quote(lines("Just a quotation")),
		&mdtree.ThematicBreak{},
	}, policy.Default())

	kinds := make([]string, len(res.Nodes))
	for i, n := range res.Nodes {
		kinds[i] = n.Kind()
	}
	if got := strings.Join(kinds, ","); got != "block,alert,block,block" {
		t.Errorf("kinds = %s", got)
	}
	if a := res.Nodes[1].(*AlertNode); a.Variant != "tip" || len(a.Children) != 1 {
		t.Errorf("alert = %+v", a)
	}
}

func TestAssemble_StayModeHeader(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	p.StayMode = frontmatter.StayModeHeader

	res := Assemble([]mdtree.Block{
		quote(lines("hotel Airport inn")),
		heading(2, "2024-03-10"),
		quote(lines("hotel Gracery")),
		quote(lines("[10:00] tour Shibuya")),
	}, p)

	if len(res.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(res.Nodes))
	}
	if _, ok := res.Nodes[0].(*EventNode); !ok {
		t.Errorf("stay before any heading should stay inline, got %T", res.Nodes[0])
	}
	h := res.Nodes[1].(*HeadingNode)
	if len(h.Stays) != 1 || inline.PlainText(h.Stays[0].Title) != "Gracery" {
		t.Errorf("stays = %+v", h.Stays)
	}
	if e := res.Nodes[2].(*EventNode); e.BaseType != BaseActivity {
		t.Errorf("node 2 = %+v", e)
	}
}

func TestEvents_AttachedStaysAtHeading(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	p.StayMode = frontmatter.StayModeHeader

	res := Assemble([]mdtree.Block{
		heading(2, "2024-03-10"),
		quote(lines("[10:00] tour Shibuya")),
		quote(lines("hotel Gracery")),
		heading(2, "2024-03-11"),
		quote(lines("[09:00] train Nozomi")),
	}, p)

	var got []string
	for _, e := range Events(res.Nodes) {
		got = append(got, inline.PlainText(e.Title))
	}
	want := "Gracery,Shibuya,Nozomi"
	if strings.Join(got, ",") != want {
		t.Errorf("Events() = %v, want %s", got, want)
	}
	if Events(nil) != nil {
		t.Error("Events(nil) should be nil")
	}
}

// ---------------------------------------------------------------------------
// TestNodeJSON - Tagged serialization
// ---------------------------------------------------------------------------

func TestNodeJSON_TypeFirst(t *testing.T) {
	t.Parallel()

	res := Assemble([]mdtree.Block{heading(2, "2024-03-10"), quote(lines("[09:00] lunch Ramen"))}, policy.Default())
	data, err := json.Marshal(res.Nodes)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.HasPrefix(s, `[{"type":"heading"`) || !strings.Contains(s, `{"type":"event"`) {
		t.Errorf("json = %s", s)
	}
	if !strings.Contains(s, `"prices":{}`) || !strings.Contains(s, `"warnings":[]`) {
		t.Errorf("empty collections should serialize as empty: %s", s)
	}
}

func TestAssemble_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	link := &mdtree.Link{URL: "javascript:x", Children: []mdtree.Inline{text("x")}}
	q := quote(&mdtree.Paragraph{Children: []mdtree.Inline{text("tour "), link}})
	before, _ := json.Marshal(q)

	Assemble([]mdtree.Block{q}, policy.Default())

	after, _ := json.Marshal(q)
	if string(before) != string(after) {
		t.Errorf("input changed:\n%s\n%s", before, after)
	}
}
