package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/alnah/go-itmd/internal/mdtree"
)

// Sentinel errors for tokenization and rendering.
var (
	ErrTokenize   = errors.New("markdown tokenization failed")
	ErrHTMLRender = errors.New("HTML rendering failed")
	ErrBlockIndex = errors.New("block index out of range")
)

// Tokenizer abstracts the Markdown collaborator.
type Tokenizer interface {
	Tokenize(ctx context.Context, source []byte) (*ParsedDocument, error)
}

// GoldmarkTokenizer parses Markdown with goldmark (pure Go) and converts the
// result into an mdtree.
type GoldmarkTokenizer struct {
	md goldmark.Markdown
}

var _ Tokenizer = (*GoldmarkTokenizer)(nil)

// NewGoldmarkTokenizer creates a GoldmarkTokenizer with GFM extensions. Code
// blocks rendered through RenderHTML are syntax highlighted.
func NewGoldmarkTokenizer() *GoldmarkTokenizer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // CSS classes for external stylesheet control
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(), // Self-closing tags
			// Note: WithUnsafe() intentionally NOT used; raw HTML is omitted.
		),
	)
	return &GoldmarkTokenizer{md: md}
}

// Tokenize parses source into a ParsedDocument.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (t *GoldmarkTokenizer) Tokenize(ctx context.Context, source []byte) (*ParsedDocument, error) {
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		doc *ParsedDocument
		err error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrTokenize, r)}
			}
		}()
		root := t.md.Parser().Parse(text.NewReader(source))
		done <- result{doc: newParsedDocument(root, source, t.md.Renderer())}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.doc, r.err
	}
}

// ParsedDocument is the mdtree form of a document together with the
// goldmark nodes it came from, so that individual top-level blocks can be
// rendered to HTML on demand.
type ParsedDocument struct {
	// Blocks holds one entry per top-level goldmark block, in order.
	Blocks []mdtree.Block

	source   []byte
	nodes    []ast.Node
	renderer renderer.Renderer
}

func newParsedDocument(root ast.Node, source []byte, r renderer.Renderer) *ParsedDocument {
	a := &adapter{source: source}
	d := &ParsedDocument{
		Blocks:   []mdtree.Block{},
		source:   source,
		renderer: r,
	}
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		d.Blocks = append(d.Blocks, a.block(c))
		d.nodes = append(d.nodes, c)
	}
	return d
}

// RenderHTML renders the i-th top-level block as an HTML fragment.
func (d *ParsedDocument) RenderHTML(i int) (string, error) {
	if i < 0 || i >= len(d.nodes) {
		return "", fmt.Errorf("%w: %d", ErrBlockIndex, i)
	}
	var buf bytes.Buffer
	if err := d.renderer.Render(&buf, d.source, d.nodes[i]); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLRender, err)
	}
	return buf.String(), nil
}
