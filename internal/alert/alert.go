// Package alert rewrites GitHub-style callout quotes into alert blocks.
//
// A quote whose first paragraph starts with a marker such as "[!NOTE]" or
// "[!warning]" becomes an *mdtree.Alert. Text after the marker on the same
// line is kept as the alert's inline title; everything else in the quote
// becomes the alert body. Other quotes are returned unchanged.
package alert

import (
	"regexp"
	"strings"

	"github.com/alnah/go-itmd/internal/inline"
	"github.com/alnah/go-itmd/internal/mdtree"
)

// Variants lists the recognized alert variants in canonical lower case.
var Variants = []string{"note", "tip", "important", "warning", "caution"}

var markerPattern = regexp.MustCompile(`^(?i)\s*\[!(NOTE|TIP|IMPORTANT|WARNING|CAUTION)\]`)

// Recognize returns a copy of blocks in which every matching quote, at any
// depth, is replaced by an alert. Children are rewritten before parents so a
// callout nested in a list item or in another callout is found too. The
// input tree is not modified.
func Recognize(blocks []mdtree.Block) []mdtree.Block {
	return mdtree.TransformBlocks(blocks, rewrite)
}

func rewrite(b mdtree.Block) mdtree.Block {
	q, ok := b.(*mdtree.Quote)
	if !ok {
		return b
	}
	if a, ok := FromQuote(q); ok {
		return a
	}
	return b
}

// FromQuote converts a single quote into an alert when its first paragraph
// begins with an alert marker.
func FromQuote(q *mdtree.Quote) (*mdtree.Alert, bool) {
	if len(q.Children) == 0 {
		return nil, false
	}
	p, ok := q.Children[0].(*mdtree.Paragraph)
	if !ok {
		return nil, false
	}

	text := inline.PlainText(p.Children)
	m := markerPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, false
	}
	variant := text[m[2]:m[3]]

	lineEnd := strings.IndexByte(text, '\n')
	if lineEnd < 0 {
		lineEnd = len(text)
	}

	a := &mdtree.Alert{
		Variant:  strings.ToLower(variant),
		Title:    strings.ToUpper(variant),
		Children: []mdtree.Block{},
	}
	if title := inline.TrimSpace(inline.Slice(p.Children, m[1], lineEnd)); len(title) > 0 {
		a.InlineTitle = title
	}
	if lineEnd < len(text) {
		rest := inline.TrimSpace(inline.Slice(p.Children, lineEnd+1, len(text)))
		if len(rest) > 0 {
			a.Children = append(a.Children, &mdtree.Paragraph{Children: rest})
		}
	}
	a.Children = append(a.Children, q.Children[1:]...)
	return a, true
}
