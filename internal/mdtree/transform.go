package mdtree

// TransformBlocks rebuilds blocks bottom-up. Descendants of each block are
// transformed first, then fn receives a shallow copy of the block carrying the
// new children and returns its replacement. The input tree is never mutated.
func TransformBlocks(blocks []Block, fn func(Block) Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, fn(rebuildChildren(b, fn)))
	}
	return out
}

func rebuildChildren(b Block, fn func(Block) Block) Block {
	switch t := b.(type) {
	case *Quote:
		c := *t
		c.Children = TransformBlocks(t.Children, fn)
		return &c
	case *Alert:
		c := *t
		c.Children = TransformBlocks(t.Children, fn)
		return &c
	case *List:
		c := *t
		c.Items = make([]*ListItem, len(t.Items))
		for i, item := range t.Items {
			ci := *item
			ci.Children = TransformBlocks(item.Children, fn)
			c.Items[i] = &ci
		}
		return &c
	}
	return b
}

// Walk calls fn for every block in document order, parents before children.
// Returning false from fn skips the block's descendants.
func Walk(blocks []Block, fn func(Block) bool) {
	for _, b := range blocks {
		if !fn(b) {
			continue
		}
		switch t := b.(type) {
		case *Quote:
			Walk(t.Children, fn)
		case *Alert:
			Walk(t.Children, fn)
		case *List:
			for _, item := range t.Items {
				Walk(item.Children, fn)
			}
		}
	}
}
