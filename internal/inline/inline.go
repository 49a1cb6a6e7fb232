// Package inline slices and splits inline content sequences.
//
// Offsets are byte offsets into the flattened plain text of a sequence (see
// PlainText), so they can come straight from strings or regexp matches on that
// text. Text and code leaves are split at those offsets; containers are
// cloned shallowly with re-sliced children; every other leaf is atomic.
package inline

import (
	"strings"
	"unicode"

	"github.com/alnah/go-itmd/internal/mdtree"
)

// PlainText flattens nodes into the text used for offset arithmetic.
func PlainText(nodes []mdtree.Inline) string {
	var b strings.Builder
	for _, n := range nodes {
		writeText(&b, n)
	}
	return b.String()
}

func writeText(b *strings.Builder, n mdtree.Inline) {
	switch t := n.(type) {
	case *mdtree.Text:
		b.WriteString(t.Value)
	case *mdtree.Code:
		b.WriteString(t.Value)
	case *mdtree.Image:
		b.WriteString(t.Alt)
	case *mdtree.RawHTML:
		b.WriteString(t.Value)
	case *mdtree.SoftBreak, *mdtree.HardBreak:
		b.WriteByte('\n')
	default:
		if children, ok := mdtree.InlineChildren(n); ok {
			for _, c := range children {
				writeText(b, c)
			}
		}
	}
}

// Len returns the flattened length of a single node.
func Len(n mdtree.Inline) int {
	switch t := n.(type) {
	case *mdtree.Text:
		return len(t.Value)
	case *mdtree.Code:
		return len(t.Value)
	case *mdtree.Image:
		return len(t.Alt)
	case *mdtree.RawHTML:
		return len(t.Value)
	case *mdtree.SoftBreak, *mdtree.HardBreak:
		return 1
	}
	total := 0
	if children, ok := mdtree.InlineChildren(n); ok {
		for _, c := range children {
			total += Len(c)
		}
	}
	return total
}

// Slice returns the part of nodes whose flattened text lies in [start, end).
// Nodes that do not overlap the range, and zero-length nodes, are dropped.
// Fully covered nodes are returned as-is.
func Slice(nodes []mdtree.Inline, start, end int) []mdtree.Inline {
	if end <= start {
		return nil
	}
	var out []mdtree.Inline
	offset := 0
	for _, n := range nodes {
		length := Len(n)
		nodeStart, nodeEnd := offset, offset+length
		offset = nodeEnd
		if length == 0 || nodeEnd <= start || nodeStart >= end {
			continue
		}
		lo := max(start, nodeStart) - nodeStart
		hi := min(end, nodeEnd) - nodeStart
		if lo == 0 && hi == length {
			out = append(out, n)
			continue
		}
		switch t := n.(type) {
		case *mdtree.Text:
			out = append(out, &mdtree.Text{Value: t.Value[lo:hi]})
		case *mdtree.Code:
			out = append(out, &mdtree.Code{Value: t.Value[lo:hi]})
		default:
			children, ok := mdtree.InlineChildren(n)
			if !ok {
				out = append(out, n)
				continue
			}
			if sliced := Slice(children, lo, hi); len(sliced) > 0 {
				out = append(out, mdtree.WithInlineChildren(n, sliced))
			}
		}
	}
	return out
}

// SplitByCaret splits nodes at the first literal '^' into a primary (left)
// and alternate (right) name. Without a caret, right is nil and left is nodes
// unchanged. A caret at the very end yields an empty, non-nil right.
func SplitByCaret(nodes []mdtree.Inline) (left, right []mdtree.Inline) {
	text := PlainText(nodes)
	i := strings.IndexByte(text, '^')
	if i < 0 {
		return nodes, nil
	}
	left = Slice(nodes, 0, i)
	right = Slice(nodes, i+1, len(text))
	if right == nil {
		right = []mdtree.Inline{}
	}
	return left, right
}

// SplitLines splits nodes at line breaks. The breaks themselves are dropped.
func SplitLines(nodes []mdtree.Inline) [][]mdtree.Inline {
	text := PlainText(nodes)
	var lines [][]mdtree.Inline
	start := 0
	for {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			lines = append(lines, Slice(nodes, start, len(text)))
			return lines
		}
		lines = append(lines, Slice(nodes, start, start+i))
		start += i + 1
	}
}

// TrimSpace drops leading and trailing white space from nodes.
func TrimSpace(nodes []mdtree.Inline) []mdtree.Inline {
	text := PlainText(nodes)
	trimmedLeft := strings.TrimLeftFunc(text, unicode.IsSpace)
	lead := len(text) - len(trimmedLeft)
	trimmed := strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
	if lead == 0 && len(trimmed) == len(text) {
		return nodes
	}
	return Slice(nodes, lead, lead+len(trimmed))
}
