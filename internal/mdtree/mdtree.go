// Package mdtree defines the generic Markdown tree consumed by the itmd pipeline.
//
// The tree is a closed set of block and inline variants. Consumers branch on
// the concrete type with a type switch rather than on string node kinds:
//
//	switch b := block.(type) {
//	case *mdtree.Paragraph:
//	case *mdtree.Quote:
//	}
//
// Values are treated as immutable once built. Transformations such as the
// alert rewrite produce new nodes instead of mutating existing ones.
package mdtree

// Block is a block-level node. The unexported marker method closes the set.
type Block interface {
	block()
	// Kind returns the stable node type name used in serialized output.
	Kind() string
}

// Inline is an inline-level node. The unexported marker method closes the set.
type Inline interface {
	inline()
	Kind() string
}

// Block kinds.
const (
	KindParagraph     = "paragraph"
	KindHeading       = "heading"
	KindQuote         = "blockquote"
	KindList          = "list"
	KindCodeBlock     = "code"
	KindThematicBreak = "thematicBreak"
	KindHTMLBlock     = "html"
	KindTable         = "table"
	KindAlert         = "alert"
	KindRaw           = "raw"
)

// Inline kinds.
const (
	KindText          = "text"
	KindCode          = "inlineCode"
	KindEmphasis      = "emphasis"
	KindStrong        = "strong"
	KindStrikethrough = "delete"
	KindLink          = "link"
	KindImage         = "image"
	KindSoftBreak     = "softBreak"
	KindHardBreak     = "break"
	KindRawHTML       = "inlineHtml"
)

// Paragraph is a run of inline content.
type Paragraph struct {
	Children []Inline `json:"children"`
}

// Heading is an ATX or setext heading.
type Heading struct {
	Level    int      `json:"level"`
	Children []Inline `json:"children"`
}

// Quote is a block quote.
type Quote struct {
	Children []Block `json:"children"`
}

// List is an ordered or bullet list.
type List struct {
	Ordered bool        `json:"ordered"`
	Start   int         `json:"start,omitempty"`
	Tight   bool        `json:"tight"`
	Items   []*ListItem `json:"items"`
}

// ListItem is one entry of a List. Checked is set for task list items.
type ListItem struct {
	Checked  *bool   `json:"checked,omitempty"`
	Children []Block `json:"children"`
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	Language string `json:"lang,omitempty"`
	Value    string `json:"value"`
}

// ThematicBreak is a horizontal rule.
type ThematicBreak struct{}

// HTMLBlock is raw block-level HTML.
type HTMLBlock struct {
	Value string `json:"value"`
}

// Table is a GFM table. Each cell is an inline sequence.
type Table struct {
	Align  []string     `json:"align,omitempty"`
	Header [][]Inline   `json:"header"`
	Rows   [][][]Inline `json:"rows"`
}

// Alert is a GitHub-style callout produced by rewriting a Quote.
type Alert struct {
	Variant     string   `json:"variant"`
	Title       string   `json:"title,omitempty"`
	InlineTitle []Inline `json:"inlineTitle,omitempty"`
	Children    []Block  `json:"children"`
}

// Raw holds the source text of a block the adapter has no variant for.
type Raw struct {
	Value string `json:"value"`
}

func (*Paragraph) block()     {}
func (*Heading) block()       {}
func (*Quote) block()         {}
func (*List) block()          {}
func (*CodeBlock) block()     {}
func (*ThematicBreak) block() {}
func (*HTMLBlock) block()     {}
func (*Table) block()         {}
func (*Alert) block()         {}
func (*Raw) block()           {}

func (*Paragraph) Kind() string     { return KindParagraph }
func (*Heading) Kind() string       { return KindHeading }
func (*Quote) Kind() string         { return KindQuote }
func (*List) Kind() string          { return KindList }
func (*CodeBlock) Kind() string     { return KindCodeBlock }
func (*ThematicBreak) Kind() string { return KindThematicBreak }
func (*HTMLBlock) Kind() string     { return KindHTMLBlock }
func (*Table) Kind() string         { return KindTable }
func (*Alert) Kind() string         { return KindAlert }
func (*Raw) Kind() string           { return KindRaw }

// Text is literal text.
type Text struct {
	Value string `json:"value"`
}

// Code is an inline code span.
type Code struct {
	Value string `json:"value"`
}

// Emphasis is *emphasized* content.
type Emphasis struct {
	Children []Inline `json:"children"`
}

// Strong is **strong** content.
type Strong struct {
	Children []Inline `json:"children"`
}

// Strikethrough is ~~deleted~~ content.
type Strikethrough struct {
	Children []Inline `json:"children"`
}

// Link is a hyperlink (inline, reference or autolink).
type Link struct {
	URL      string   `json:"url"`
	Title    string   `json:"title,omitempty"`
	Children []Inline `json:"children"`
}

// Image is an inline image. Alt is its flattened alternative text.
type Image struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Alt   string `json:"alt"`
}

// SoftBreak is a line ending inside a paragraph.
type SoftBreak struct{}

// HardBreak is a forced line break.
type HardBreak struct{}

// RawHTML is inline HTML.
type RawHTML struct {
	Value string `json:"value"`
}

func (*Text) inline()          {}
func (*Code) inline()          {}
func (*Emphasis) inline()      {}
func (*Strong) inline()        {}
func (*Strikethrough) inline() {}
func (*Link) inline()          {}
func (*Image) inline()         {}
func (*SoftBreak) inline()     {}
func (*HardBreak) inline()     {}
func (*RawHTML) inline()       {}

func (*Text) Kind() string          { return KindText }
func (*Code) Kind() string          { return KindCode }
func (*Emphasis) Kind() string      { return KindEmphasis }
func (*Strong) Kind() string        { return KindStrong }
func (*Strikethrough) Kind() string { return KindStrikethrough }
func (*Link) Kind() string          { return KindLink }
func (*Image) Kind() string         { return KindImage }
func (*SoftBreak) Kind() string     { return KindSoftBreak }
func (*HardBreak) Kind() string     { return KindHardBreak }
func (*RawHTML) Kind() string       { return KindRawHTML }

// InlineChildren returns the children of a container inline node and whether
// n is a container at all.
func InlineChildren(n Inline) ([]Inline, bool) {
	switch t := n.(type) {
	case *Emphasis:
		return t.Children, true
	case *Strong:
		return t.Children, true
	case *Strikethrough:
		return t.Children, true
	case *Link:
		return t.Children, true
	}
	return nil, false
}

// WithInlineChildren returns a shallow copy of container n whose children are
// replaced. Leaves are returned unchanged.
func WithInlineChildren(n Inline, children []Inline) Inline {
	switch t := n.(type) {
	case *Emphasis:
		c := *t
		c.Children = children
		return &c
	case *Strong:
		c := *t
		c.Children = children
		return &c
	case *Strikethrough:
		c := *t
		c.Children = children
		return &c
	case *Link:
		c := *t
		c.Children = children
		return &c
	}
	return n
}
