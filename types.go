package itmd

import (
	"github.com/alnah/go-itmd/internal/assemble"
	"github.com/alnah/go-itmd/internal/diag"
	"github.com/alnah/go-itmd/internal/frontmatter"
	"github.com/alnah/go-itmd/internal/money"
	"github.com/alnah/go-itmd/internal/policy"
	"github.com/alnah/go-itmd/internal/stats"
)

// Document model.
type (
	// Node is one of *HeadingNode, *EventNode, *AlertNode or *BlockNode.
	Node        = assemble.Node
	HeadingNode = assemble.HeadingNode
	EventNode   = assemble.EventNode
	AlertNode   = assemble.AlertNode
	BlockNode   = assemble.BlockNode

	Time         = assemble.Time
	ClockTime    = assemble.ClockTime
	Name         = assemble.Name
	Destination  = assemble.Destination
	Segment      = assemble.Segment
	EventContext = assemble.EventContext
	BaseType     = assemble.BaseType

	PriceNode     = money.PriceNode
	MoneyFragment = money.Fragment

	Diagnostic  = diag.Diagnostic
	Frontmatter = frontmatter.Frontmatter
	Policy      = policy.Policy
)

// Statistics.
type (
	Stats      = stats.Stats
	Rates      = stats.Rates
	Conversion = stats.Conversion
)

// Input is one document to parse.
type Input struct {
	// Markdown is the document source, frontmatter included.
	Markdown string
	// Name identifies the document in log entries. Optional.
	Name string
}

// Document is the parsed form of an itinerary.
type Document struct {
	Frontmatter Frontmatter `json:"frontmatter"`
	// Policy is the effective policy after the frontmatter was applied.
	Policy      Policy       `json:"policy"`
	Nodes       []Node       `json:"nodes"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Events returns the document's events, stays attached to headings included.
// Attached stays are listed at their heading, before the events that follow
// it.
func (d *Document) Events() []*EventNode {
	return assemble.Events(d.Nodes)
}

// WarningCount is the number of events carrying warnings plus the number of
// document diagnostics.
func (d *Document) WarningCount() int {
	n := len(d.Diagnostics)
	for _, e := range d.Events() {
		if e.HasWarnings() {
			n++
		}
	}
	return n
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() Policy {
	return policy.Default()
}

// NormalizePriceLine normalizes one price line, using defaultCurrency when
// the line has no currency of its own.
func NormalizePriceLine(raw, defaultCurrency string) PriceNode {
	return money.NormalizePriceLine(raw, defaultCurrency)
}

// ParseRates parses "CUR=value" pairs into a rate table.
func ParseRates(pairs []string) (Rates, error) {
	return stats.ParseRates(pairs)
}
