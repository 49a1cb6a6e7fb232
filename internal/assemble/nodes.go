package assemble

import (
	"github.com/alnah/go-itmd/internal/mdtree"
	"github.com/alnah/go-itmd/internal/money"
)

// Node is an element of the assembled document. The unexported marker method
// closes the set to HeadingNode, EventNode, AlertNode and BlockNode.
type Node interface {
	node()
	// Kind returns the stable node type name used in serialized output.
	Kind() string
}

// Node kinds.
const (
	KindHeading = "heading"
	KindEvent   = "event"
	KindAlert   = "alert"
	KindBlock   = "block"
)

// HeadingNode is a dated H2 heading. It sets the date and timezone context
// for the events that follow it.
type HeadingNode struct {
	Index    int          `json:"index"`
	DateISO  string       `json:"dateISO"`
	Timezone string       `json:"timezone,omitempty"`
	Stays    []*EventNode `json:"stays,omitempty"`
}

// BaseType groups event types.
type BaseType string

// Base types.
const (
	BaseTransportation BaseType = "transportation"
	BaseStay           BaseType = "stay"
	BaseActivity       BaseType = "activity"
)

// TimeKind describes how an event's time was written.
type TimeKind string

// Time kinds.
const (
	TimeNone   TimeKind = "none"
	TimeMarker TimeKind = "marker"
	TimePoint  TimeKind = "point"
	TimeRange  TimeKind = "range"
)

// Timezone provenance values for ClockTime.TimezoneSource.
const (
	TZSourceInline  = "inline"
	TZSourceHeading = "heading"
	TZSourcePolicy  = "policy"
)

// ClockTime is one resolved wall-clock time.
type ClockTime struct {
	Hour           int    `json:"hour"`
	Minute         int    `json:"minute"`
	Timezone       string `json:"timezone"`
	TimezoneSource string `json:"timezoneSource"`
	DayOffset      int    `json:"dayOffset,omitempty"`
	// Instant is the RFC 3339 UTC instant, empty without a date context.
	Instant string `json:"instant,omitempty"`
}

// Time is an event's time specification.
type Time struct {
	Kind   TimeKind   `json:"kind"`
	Marker string     `json:"marker,omitempty"`
	Start  *ClockTime `json:"start,omitempty"`
	End    *ClockTime `json:"end,omitempty"`
}

// Name is a primary label with an optional alternate, split on '^'.
type Name struct {
	Primary   []mdtree.Inline `json:"primary"`
	Alternate []mdtree.Inline `json:"alternate,omitempty"`
}

// DestinationKind describes the destination form used in the header.
type DestinationKind string

// Destination kinds.
const (
	DestFromTo   DestinationKind = "fromTo"
	DestDashPair DestinationKind = "dashPair"
	DestSingle   DestinationKind = "single"
)

// Destination is where an event happens or where it goes.
type Destination struct {
	Kind DestinationKind `json:"kind"`
	From *Name           `json:"from,omitempty"`
	To   *Name           `json:"to,omitempty"`
	Via  *Name           `json:"via,omitempty"`
	At   *Name           `json:"at,omitempty"`
}

// SegmentKind distinguishes body segments.
type SegmentKind string

// Segment kinds.
const (
	SegmentInline SegmentKind = "inline"
	SegmentMeta   SegmentKind = "meta"
	SegmentList   SegmentKind = "list"
	SegmentBlock  SegmentKind = "block"
)

// Segment is one element of an event body.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	// Content holds the text of inline and list segments.
	Content []mdtree.Inline `json:"content,omitempty"`
	// Key and Value hold a "key: value" metadata item.
	Key   string          `json:"key,omitempty"`
	Value []mdtree.Inline `json:"value,omitempty"`
	// Checked is set for task list items.
	Checked *bool `json:"checked,omitempty"`
	// Depth is the list nesting level, 0 for top-level items.
	Depth int `json:"depth,omitempty"`
	// Block holds content that is neither text nor a list.
	Block mdtree.Block `json:"block,omitempty"`
}

// EventContext records the heading context active when an event was read.
type EventContext struct {
	// HeadingIndex is the index of the active date heading, -1 before any.
	HeadingIndex int    `json:"headingIndex"`
	DateISO      string `json:"dateISO,omitempty"`
	Timezone     string `json:"timezone"`
}

// EventNode is a transportation, stay or activity entry.
type EventNode struct {
	Time        Time                         `json:"time"`
	EventType   string                       `json:"eventType"`
	BaseType    BaseType                     `json:"baseType"`
	Title       []mdtree.Inline              `json:"title"`
	TitleAlt    []mdtree.Inline              `json:"titleAlt,omitempty"`
	Destination *Destination                 `json:"destination,omitempty"`
	Body        []Segment                    `json:"body"`
	Prices      map[string][]money.PriceNode `json:"prices"`
	Context     EventContext                 `json:"context"`
	// Suggestion is the closest known event type for an unknown keyword.
	Suggestion string   `json:"suggestion,omitempty"`
	Warnings   []string `json:"warnings"`
}

// AlertNode is a callout recognized from a quote.
type AlertNode struct {
	Variant     string          `json:"variant"`
	Title       string          `json:"title"`
	InlineTitle []mdtree.Inline `json:"inlineTitle,omitempty"`
	Children    []mdtree.Block  `json:"children"`
}

// BlockNode is a block passed through without interpretation.
type BlockNode struct {
	Block mdtree.Block `json:"block"`
	// HTML is the rendered block, filled only when passthrough HTML is on.
	HTML string `json:"html,omitempty"`
	// SourceIndex is the position of the block among the document's
	// top-level blocks.
	SourceIndex int `json:"-"`
}

func (*HeadingNode) node() {}
func (*EventNode) node()   {}
func (*AlertNode) node()   {}
func (*BlockNode) node()   {}

func (*HeadingNode) Kind() string { return KindHeading }
func (*EventNode) Kind() string   { return KindEvent }
func (*AlertNode) Kind() string   { return KindAlert }
func (*BlockNode) Kind() string   { return KindBlock }

func (n *HeadingNode) MarshalJSON() ([]byte, error) {
	type plain HeadingNode
	return mdtree.MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *EventNode) MarshalJSON() ([]byte, error) {
	type plain EventNode
	return mdtree.MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *AlertNode) MarshalJSON() ([]byte, error) {
	type plain AlertNode
	return mdtree.MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *BlockNode) MarshalJSON() ([]byte, error) {
	type plain BlockNode
	return mdtree.MarshalTagged(n.Kind(), (*plain)(n))
}

// Events flattens nodes into their events. Stays attached to a heading are
// listed at that heading's position, ahead of the events that follow it even
// when they were written after those events.
func Events(nodes []Node) []*EventNode {
	var out []*EventNode
	for _, n := range nodes {
		switch t := n.(type) {
		case *HeadingNode:
			out = append(out, t.Stays...)
		case *EventNode:
			out = append(out, t)
		}
	}
	return out
}

// HasWarnings reports whether the event carries warnings, including those of
// its prices.
func (e *EventNode) HasWarnings() bool {
	if len(e.Warnings) > 0 {
		return true
	}
	for _, prices := range e.Prices {
		for _, p := range prices {
			if len(p.Warnings) > 0 {
				return true
			}
		}
	}
	return false
}

func (e *EventNode) warn(code string) {
	for _, w := range e.Warnings {
		if w == code {
			return
		}
	}
	e.Warnings = append(e.Warnings, code)
}
