package assemble

import (
	"regexp"

	"github.com/alnah/go-itmd/internal/mdtree"
)

var urlSchemePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.-]*):`)

// allowedURL reports whether url may be kept. URLs without a scheme are
// relative and always kept.
func (a *assembler) allowedURL(url string) bool {
	m := urlSchemePattern.FindStringSubmatch(url)
	if m == nil {
		return true
	}
	return a.policy.AllowsScheme(m[1])
}

// clean returns nodes with blocked links unwrapped to their children and
// blocked images replaced by their alt text. The input is not modified.
func (a *assembler) clean(e *EventNode, nodes []mdtree.Inline) []mdtree.Inline {
	if nodes == nil {
		return nil
	}
	out := make([]mdtree.Inline, 0, len(nodes))
	for _, n := range nodes {
		switch t := n.(type) {
		case *mdtree.Link:
			if !a.allowedURL(t.URL) {
				e.warn(WarnLinkSchemeBlocked)
				out = append(out, a.clean(e, t.Children)...)
				continue
			}
		case *mdtree.Image:
			if !a.allowedURL(t.URL) {
				e.warn(WarnLinkSchemeBlocked)
				if t.Alt != "" {
					out = append(out, &mdtree.Text{Value: t.Alt})
				}
				continue
			}
		}
		if children, ok := mdtree.InlineChildren(n); ok {
			n = mdtree.WithInlineChildren(n, a.clean(e, children))
		}
		out = append(out, n)
	}
	return out
}

// cleanBlock applies clean to every inline sequence held by b.
func (a *assembler) cleanBlock(e *EventNode, b mdtree.Block) mdtree.Block {
	return mdtree.TransformBlocks([]mdtree.Block{b}, func(b mdtree.Block) mdtree.Block {
		switch t := b.(type) {
		case *mdtree.Paragraph:
			c := *t
			c.Children = a.clean(e, t.Children)
			return &c
		case *mdtree.Heading:
			c := *t
			c.Children = a.clean(e, t.Children)
			return &c
		case *mdtree.Alert:
			c := *t
			c.InlineTitle = a.clean(e, t.InlineTitle)
			return &c
		case *mdtree.Table:
			c := *t
			c.Header = a.cleanRow(e, t.Header)
			c.Rows = make([][][]mdtree.Inline, len(t.Rows))
			for i, row := range t.Rows {
				c.Rows[i] = a.cleanRow(e, row)
			}
			return &c
		}
		return b
	})[0]
}

func (a *assembler) cleanRow(e *EventNode, cells [][]mdtree.Inline) [][]mdtree.Inline {
	out := make([][]mdtree.Inline, len(cells))
	for i, cell := range cells {
		out[i] = a.clean(e, cell)
	}
	return out
}
