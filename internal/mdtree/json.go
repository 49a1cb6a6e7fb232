package mdtree

import (
	"bytes"
	"encoding/json"
)

// MarshalTagged encodes v as a JSON object whose first member is "type".
// Node types embed it in their MarshalJSON through a local alias type.
func MarshalTagged(kind string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(body) + len(kind) + 12)
	buf.WriteString(`{"type":`)
	name, _ := json.Marshal(kind)
	buf.Write(name)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

func (n *Paragraph) MarshalJSON() ([]byte, error) {
	type plain Paragraph
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Heading) MarshalJSON() ([]byte, error) {
	type plain Heading
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Quote) MarshalJSON() ([]byte, error) {
	type plain Quote
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *List) MarshalJSON() ([]byte, error) {
	type plain List
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *CodeBlock) MarshalJSON() ([]byte, error) {
	type plain CodeBlock
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *ThematicBreak) MarshalJSON() ([]byte, error) {
	type plain ThematicBreak
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *HTMLBlock) MarshalJSON() ([]byte, error) {
	type plain HTMLBlock
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Table) MarshalJSON() ([]byte, error) {
	type plain Table
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Alert) MarshalJSON() ([]byte, error) {
	type plain Alert
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Raw) MarshalJSON() ([]byte, error) {
	type plain Raw
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Text) MarshalJSON() ([]byte, error) {
	type plain Text
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Code) MarshalJSON() ([]byte, error) {
	type plain Code
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Emphasis) MarshalJSON() ([]byte, error) {
	type plain Emphasis
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Strong) MarshalJSON() ([]byte, error) {
	type plain Strong
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Strikethrough) MarshalJSON() ([]byte, error) {
	type plain Strikethrough
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Link) MarshalJSON() ([]byte, error) {
	type plain Link
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *Image) MarshalJSON() ([]byte, error) {
	type plain Image
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *SoftBreak) MarshalJSON() ([]byte, error) {
	type plain SoftBreak
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *HardBreak) MarshalJSON() ([]byte, error) {
	type plain HardBreak
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *RawHTML) MarshalJSON() ([]byte, error) {
	type plain RawHTML
	return MarshalTagged(n.Kind(), (*plain)(n))
}

func (n *ListItem) MarshalJSON() ([]byte, error) {
	type plain ListItem
	return MarshalTagged("listItem", (*plain)(n))
}
