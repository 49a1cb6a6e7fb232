package itmd

import (
	"context"
	"fmt"

	"github.com/alnah/go-itmd/internal/alert"
	"github.com/alnah/go-itmd/internal/assemble"
	"github.com/alnah/go-itmd/internal/diag"
	"github.com/alnah/go-itmd/internal/frontmatter"
	"github.com/alnah/go-itmd/internal/logging"
	"github.com/alnah/go-itmd/internal/pipeline"
	"github.com/alnah/go-itmd/internal/policy"
	"github.com/alnah/go-itmd/internal/stats"
)

// MaxInputSize bounds the Markdown source accepted by Parse (8MB).
const MaxInputSize = 8 << 20

// Compile-time interface implementation checks.
var (
	_ pipeline.Preprocessor = (*pipeline.SourcePreprocessor)(nil)
	_ pipeline.Tokenizer    = (*pipeline.GoldmarkTokenizer)(nil)
	_ Logger                = logging.NoOp{}
	_ Logger                = (*logging.Console)(nil)
)

// Parser turns itmd sources into Documents. It holds no per-document state
// and is safe for concurrent use.
type Parser struct {
	policy          Policy
	logger          Logger
	preprocessor    pipeline.Preprocessor
	tokenizer       pipeline.Tokenizer
	passthroughHTML bool
	conversion      *stats.Conversion
}

// NewParser creates a Parser with the built-in policy.
// Returns ErrInvalidPolicy if a policy given with WithPolicy is invalid.
func NewParser(opts ...Option) (*Parser, error) {
	p := &Parser{
		policy:       policy.Default(),
		logger:       logging.NoOp{},
		preprocessor: &pipeline.SourcePreprocessor{},
		tokenizer:    pipeline.NewGoldmarkTokenizer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.policy.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Policy returns a copy of the parser's base policy.
func (p *Parser) Policy() Policy {
	return p.policy.Clone()
}

// Parse runs the full pipeline on one document. Malformed content never
// fails: it is reported through node warnings and Document.Diagnostics.
// Errors are returned only for cancellation, oversized input and collaborator
// failures.
func (p *Parser) Parse(ctx context.Context, input Input) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	if len(input.Markdown) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(input.Markdown), MaxInputSize)
	}

	source := p.preprocessor.Preprocess(ctx, input.Markdown)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fm := frontmatter.Extract([]byte(source))
	pol, policyDiags := p.policy.WithFrontmatter(fm.Frontmatter)

	parsed, err := p.tokenizer.Tokenize(ctx, fm.Body)
	if err != nil {
		return nil, fmt.Errorf("tokenizing %s: %w", displayName(input), err)
	}

	blocks := alert.Recognize(parsed.Blocks)
	result := assemble.Assemble(blocks, pol)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.passthroughHTML {
		if err := renderPassthrough(parsed, result.Nodes); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", displayName(input), err)
		}
	}

	diags := make([]diag.Diagnostic, 0, len(fm.Diagnostics)+len(policyDiags)+len(result.Diagnostics))
	diags = append(diags, fm.Diagnostics...)
	diags = append(diags, policyDiags...)
	diags = append(diags, result.Diagnostics...)

	doc = &Document{
		Frontmatter: fm.Frontmatter,
		Policy:      pol,
		Nodes:       result.Nodes,
		Diagnostics: diags,
	}
	if doc.Nodes == nil {
		doc.Nodes = []Node{}
	}
	p.log(input, doc)
	return doc, nil
}

// Stats computes document statistics, converted with the rates given by
// WithRates when set.
func (p *Parser) Stats(doc *Document) Stats {
	return stats.Compute(doc.Nodes, p.conversion)
}

func (p *Parser) log(input Input, doc *Document) {
	name := displayName(input)
	for _, d := range doc.Diagnostics {
		p.logger.Warn("diagnostic", "document", name, "code", d.Code, "source", d.Source, "message", d.Message)
	}
	p.logger.Debug("parsed", "document", name, "nodes", len(doc.Nodes), "events", len(doc.Events()), "diagnostics", len(doc.Diagnostics))
}

// renderPassthrough fills BlockNode.HTML from the matching top-level block.
func renderPassthrough(parsed *pipeline.ParsedDocument, nodes []Node) error {
	for _, n := range nodes {
		b, ok := n.(*BlockNode)
		if !ok {
			continue
		}
		html, err := parsed.RenderHTML(b.SourceIndex)
		if err != nil {
			return err
		}
		b.HTML = html
	}
	return nil
}

func displayName(input Input) string {
	if input.Name == "" {
		return "<input>"
	}
	return input.Name
}
