package assemble

import (
	"regexp"
	"strings"

	"github.com/alnah/go-itmd/internal/inline"
	"github.com/alnah/go-itmd/internal/mdtree"
	"github.com/alnah/go-itmd/internal/money"
)

// metaPattern matches the "key:" prefix of a metadata list item. The colon
// must be followed by white space or the end, so URLs are not keys.
var metaPattern = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9 _.-]*?)\s*:(?:\s+|$)`)

func (a *assembler) appendInlineSegment(e *EventNode, nodes []mdtree.Inline) {
	nodes = inline.TrimSpace(a.clean(e, nodes))
	if len(nodes) == 0 {
		return
	}
	e.Body = append(e.Body, Segment{Kind: SegmentInline, Content: nodes})
}

func (a *assembler) appendBlock(e *EventNode, b mdtree.Block) {
	switch t := b.(type) {
	case *mdtree.Paragraph:
		for _, line := range inline.SplitLines(t.Children) {
			a.appendInlineSegment(e, line)
		}
	case *mdtree.List:
		a.appendList(e, t, 0)
	default:
		e.Body = append(e.Body, Segment{Kind: SegmentBlock, Block: a.cleanBlock(e, b)})
	}
}

// appendList flattens a list into segments. Nested lists keep their depth;
// other blocks inside an item are appended as regular body blocks.
func (a *assembler) appendList(e *EventNode, l *mdtree.List, depth int) {
	for _, item := range l.Items {
		rest := item.Children
		var content []mdtree.Inline
		if len(rest) > 0 {
			if p, ok := rest[0].(*mdtree.Paragraph); ok {
				content = p.Children
				rest = rest[1:]
			}
		}
		a.appendItem(e, content, item.Checked, depth)

		for _, b := range rest {
			if sub, ok := b.(*mdtree.List); ok {
				a.appendList(e, sub, depth+1)
				continue
			}
			a.appendBlock(e, b)
		}
	}
}

func (a *assembler) appendItem(e *EventNode, content []mdtree.Inline, checked *bool, depth int) {
	content = inline.TrimSpace(a.clean(e, content))
	if content == nil {
		content = []mdtree.Inline{}
	}
	text := inline.PlainText(content)

	if m := metaPattern.FindStringSubmatchIndex(text); m != nil && checked == nil {
		key := text[m[2]:m[3]]
		value := inline.TrimSpace(inline.Slice(content, m[1], len(text)))
		if value == nil {
			value = []mdtree.Inline{}
		}
		e.Body = append(e.Body, Segment{Kind: SegmentMeta, Key: key, Value: value, Depth: depth})

		if a.policy.IsPriceKey(key) {
			k := strings.ToLower(key)
			e.Prices[k] = append(e.Prices[k], money.NormalizePriceLine(inline.PlainText(value), a.policy.CurrencyFallback))
		}
		return
	}

	e.Body = append(e.Body, Segment{Kind: SegmentList, Content: content, Checked: checked, Depth: depth})
}
