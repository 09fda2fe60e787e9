// Package node implements BuilderNode, the in-memory mutable tree node
// described in spec.md §3 and §4.2: it carries the parsed element name,
// attributes, optional text, a small set of flags, and the transient
// integer fields the compile passes fill in before emission.
package node

// Flag is a bitset of per-node compile behaviors.
type Flag uint8

const (
	// IgnoreCDATA excludes this subtree's payload (element, attrs, text)
	// from the emitted silo. It propagates from parent to child at
	// construction time.
	IgnoreCDATA Flag = 1 << iota

	// LiteralText disables whitespace collapsing on this node's text.
	LiteralText
)

// Attr is a single ordered name/value attribute pair. Duplicate names are
// not deduplicated; order mirrors the XML source.
type Attr struct {
	Name  string
	Value string

	// NameIdx/ValueIdx are the string-table offsets assigned during the
	// attribute-name and attribute-value interning passes. They are only
	// valid once those passes have run.
	NameIdx  uint32
	ValueIdx uint32
}

// Node is a BuilderNode: one element of the in-memory tree the parser
// driver grows, or that a caller constructs manually via Builder.ImportNode.
type Node struct {
	Element  string
	Text     *string // nil means "no text child"
	Attrs    []Attr
	Flags    Flag
	Children []*Node

	// Transient compile fields. Valid only after the respective pass (see
	// spec.md §4.5) has run; meaningless before that.
	ElementIdx uint32
	TextIdx    uint32
	Offset     uint32
}

// New constructs a Node with the given element name and no other content.
func New(element string) *Node {
	return &Node{Element: element}
}

// HasFlag reports whether f is set.
func (n *Node) HasFlag(f Flag) bool {
	return n.Flags&f != 0
}

// SetFlag sets f on n.
func (n *Node) SetFlag(f Flag) {
	n.Flags |= f
}

// AddAttr appends a name/value attribute pair in source order. Attribute
// names are never deduplicated here; duplicates are preserved as given.
func (n *Node) AddAttr(name, value string) {
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// SetText assigns the node's text content. Per spec.md §4.4, only one
// text assignment should happen per node in the parser driver's normal
// flow, but the last write always wins here, matching the documented
// "last non-whitespace call wins" behavior.
func (n *Node) SetText(s string) {
	n.Text = &s
}

// HasText reports whether the node carries text content.
func (n *Node) HasText() bool {
	return n.Text != nil
}

// AddChild appends c as n's new last child, preserving document order.
func (n *Node) AddChild(c *Node) {
	n.Children = append(n.Children, c)
}

// Clone deep-clones n and its entire subtree. Used both for splicing an
// import's info tree under each top-level element, and for splicing
// manually-added nodes into the synthetic root (spec.md §4.4, §4.5).
func (n *Node) Clone() *Node {
	clone := &Node{
		Element: n.Element,
		Flags:   n.Flags,
	}
	if n.Text != nil {
		t := *n.Text
		clone.Text = &t
	}
	if len(n.Attrs) > 0 {
		clone.Attrs = make([]Attr, len(n.Attrs))
		for i, a := range n.Attrs {
			clone.Attrs[i] = Attr{Name: a.Name, Value: a.Value}
		}
	}
	for _, c := range n.Children {
		clone.Children = append(clone.Children, c.Clone())
	}
	return clone
}

// Size returns the number of bytes this node occupies in the emitted node
// table, assuming HasText() is true; callers subtract one uint32 (4 bytes)
// when it is false. This mirrors spec.md §4.2's size() contract.
//
// Layout: 1 prefix byte, element_name(4) + next(4) + parent(4) + text(4),
// plus 8 bytes (name_idx + value_idx) per attribute.
func (n *Node) Size() int {
	const prefix = 1
	const fixedWithText = 4 + 4 + 4 + 4
	return prefix + fixedWithText + 8*len(n.Attrs)
}
