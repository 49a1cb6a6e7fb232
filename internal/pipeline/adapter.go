package pipeline

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/alnah/go-itmd/internal/inline"
	"github.com/alnah/go-itmd/internal/mdtree"
)

// adapter converts a goldmark AST into mdtree nodes.
type adapter struct {
	source []byte
}

func (a *adapter) block(n ast.Node) mdtree.Block {
	switch t := n.(type) {
	case *ast.Heading:
		return &mdtree.Heading{Level: t.Level, Children: a.inlines(t)}
	case *ast.Paragraph:
		return &mdtree.Paragraph{Children: a.inlines(t)}
	case *ast.TextBlock:
		return &mdtree.Paragraph{Children: a.inlines(t)}
	case *ast.Blockquote:
		return &mdtree.Quote{Children: a.blocks(t)}
	case *ast.List:
		return a.list(t)
	case *ast.FencedCodeBlock:
		return &mdtree.CodeBlock{Language: string(t.Language(a.source)), Value: a.lines(t)}
	case *ast.CodeBlock:
		return &mdtree.CodeBlock{Value: a.lines(t)}
	case *ast.ThematicBreak:
		return &mdtree.ThematicBreak{}
	case *ast.HTMLBlock:
		value := a.lines(t)
		if t.HasClosure() {
			value += string(t.ClosureLine.Value(a.source))
		}
		return &mdtree.HTMLBlock{Value: value}
	case *east.Table:
		return a.table(t)
	}
	return &mdtree.Raw{Value: a.lines(n)}
}

func (a *adapter) blocks(parent ast.Node) []mdtree.Block {
	out := []mdtree.Block{}
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, a.block(c))
	}
	return out
}

func (a *adapter) list(l *ast.List) *mdtree.List {
	out := &mdtree.List{
		Ordered: l.IsOrdered(),
		Tight:   l.IsTight,
		Items:   []*mdtree.ListItem{},
	}
	if l.IsOrdered() {
		out.Start = l.Start
	}
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		item := &mdtree.ListItem{Children: a.blocks(c)}
		if box := taskCheckBox(c); box != nil {
			checked := box.IsChecked
			item.Checked = &checked
		}
		out.Items = append(out.Items, item)
	}
	return out
}

// taskCheckBox returns the GFM task marker of a list item, if any. The
// marker is the first inline of the item's first block.
func taskCheckBox(item ast.Node) *east.TaskCheckBox {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	box, _ := first.FirstChild().(*east.TaskCheckBox)
	return box
}

func (a *adapter) table(t *east.Table) *mdtree.Table {
	out := &mdtree.Table{Header: [][]mdtree.Inline{}, Rows: [][][]mdtree.Inline{}}
	for _, al := range t.Alignments {
		out.Align = append(out.Align, al.String())
	}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells [][]mdtree.Inline
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, a.inlines(cell))
		}
		switch row.(type) {
		case *east.TableHeader:
			out.Header = cells
		case *east.TableRow:
			out.Rows = append(out.Rows, cells)
		}
	}
	return out
}

func (a *adapter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(a.source))
	}
	return b.String()
}

func (a *adapter) inlines(parent ast.Node) []mdtree.Inline {
	out := []mdtree.Inline{}
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		out = a.appendInline(out, c)
	}
	return out
}

func (a *adapter) appendInline(out []mdtree.Inline, n ast.Node) []mdtree.Inline {
	switch t := n.(type) {
	case *ast.Text:
		out = appendText(out, string(t.Segment.Value(a.source)))
		switch {
		case t.HardLineBreak():
			out = append(out, &mdtree.HardBreak{})
		case t.SoftLineBreak():
			out = append(out, &mdtree.SoftBreak{})
		}
	case *ast.String:
		out = appendText(out, string(t.Value))
	case *ast.CodeSpan:
		out = append(out, &mdtree.Code{Value: a.codeSpan(t)})
	case *ast.Emphasis:
		if t.Level >= 2 {
			out = append(out, &mdtree.Strong{Children: a.inlines(t)})
		} else {
			out = append(out, &mdtree.Emphasis{Children: a.inlines(t)})
		}
	case *ast.Link:
		out = append(out, &mdtree.Link{
			URL:      string(t.Destination),
			Title:    string(t.Title),
			Children: a.inlines(t),
		})
	case *ast.AutoLink:
		label := string(t.Label(a.source))
		out = append(out, &mdtree.Link{
			URL:      autoLinkURL(t.AutoLinkType, string(t.URL(a.source))),
			Children: []mdtree.Inline{&mdtree.Text{Value: label}},
		})
	case *ast.Image:
		out = append(out, &mdtree.Image{
			URL:   string(t.Destination),
			Title: string(t.Title),
			Alt:   inline.PlainText(a.inlines(t)),
		})
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < t.Segments.Len(); i++ {
			seg := t.Segments.At(i)
			b.Write(seg.Value(a.source))
		}
		out = append(out, &mdtree.RawHTML{Value: b.String()})
	case *east.Strikethrough:
		out = append(out, &mdtree.Strikethrough{Children: a.inlines(t)})
	case *east.TaskCheckBox:
		// Carried by ListItem.Checked.
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			out = a.appendInline(out, c)
		}
	}
	return out
}

// appendText merges s into a trailing text node so that runs split by the
// tokenizer (brackets, escapes) read as one value.
func appendText(out []mdtree.Inline, s string) []mdtree.Inline {
	if s == "" {
		return out
	}
	if len(out) > 0 {
		if last, ok := out[len(out)-1].(*mdtree.Text); ok {
			out[len(out)-1] = &mdtree.Text{Value: last.Value + s}
			return out
		}
	}
	return append(out, &mdtree.Text{Value: s})
}

func (a *adapter) codeSpan(c *ast.CodeSpan) string {
	var b strings.Builder
	for n := c.FirstChild(); n != nil; n = n.NextSibling() {
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(a.source))
		case *ast.String:
			b.Write(t.Value)
		}
	}
	return strings.ReplaceAll(b.String(), "\n", " ")
}

func autoLinkURL(kind ast.AutoLinkType, url string) string {
	lower := strings.ToLower(url)
	switch {
	case kind == ast.AutoLinkEmail && !strings.HasPrefix(lower, "mailto:"):
		return "mailto:" + url
	case kind == ast.AutoLinkURL && !strings.Contains(lower, "://") && !strings.HasPrefix(lower, "mailto:"):
		return "http://" + url
	}
	return url
}
