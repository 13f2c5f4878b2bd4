package plot

import (
	"fmt"
	"strconv"
)

// Direction is the axis along which a Cells table lays out its children.
type Direction int

const (
	Horizontal Direction = iota + 1
	Vertical
)

// Invert returns the perpendicular direction.
func (d Direction) Invert() Direction {
	switch d {
	case Horizontal:
		return Vertical
	case Vertical:
		return Horizontal
	}
	return d
}

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Key is an optional path segment naming an element among its siblings.
// The zero value is the absent key.
type Key struct {
	str   string
	num   int
	isSet bool
	isInt bool
	isPos bool
}

// NoKey is the absent key.
var NoKey = Key{}

// StrKey returns a string path segment.
func StrKey(s string) Key { return Key{str: s, isSet: true} }

// IntKey returns an integer path segment.
func IntKey(i int) Key { return Key{num: i, isSet: true, isInt: true} }

// posKey returns the segment of an element that was appended without a key.
func posKey(pos int) Key { return Key{num: pos, isSet: true, isPos: true} }

// IsZero reports whether the key is absent.
func (k Key) IsZero() bool { return !k.isSet }

// String returns the textual form of the segment, or "" for the absent key.
func (k Key) String() string {
	switch {
	case !k.isSet:
		return ""
	case k.isPos:
		return "_" + strconv.Itoa(k.num)
	case k.isInt:
		return strconv.Itoa(k.num)
	}
	return k.str
}

// segment returns the id path segment of k. Only positional keys encode
// to a segment starting with "_".
func (k Key) segment() string {
	if k.isPos || k.isInt {
		return k.String()
	}
	return EncodeSegment(k.str)
}

// Element is one piece of a diagram. The set of implementations is closed:
// [*Text], [*Cells], [*Node], [*Edge], [*Ref] and [*Scope].
type Element interface {
	// Key is the path segment of the element among its siblings.
	Key() Key
	// ID is the identifier set by [Assign]; empty before assignment.
	ID() string
	// Embeddable reports whether the element may sit inside a table cell.
	Embeddable() bool

	base() *element
}

type element struct {
	key Key
	id  string
}

func (e *element) Key() Key       { return e.key }
func (e *element) ID() string     { return e.id }
func (e *element) base() *element { return e }

// Text is a diagram leaf. Inside a node label it becomes one addressable port.
type Text struct {
	element
	Content string
}

// NewText creates a text leaf.
func NewText(content string, key Key) *Text {
	return &Text{element: element{key: key}, Content: content}
}

func (*Text) Embeddable() bool { return true }

// Cells is a table of elements laid out in one direction. A child table
// with a different direction renders as a nested group.
type Cells struct {
	element
	Direction Direction
	children  []Element
}

// NewCells creates an empty table.
func NewCells(dir Direction, key Key) *Cells {
	return &Cells{element: element{key: key}, Direction: dir}
}

func (*Cells) Embeddable() bool { return true }

// Children returns the cells in layout order.
func (c *Cells) Children() []Element { return c.children }

// Len returns the number of cells.
func (c *Cells) Len() int { return len(c.children) }

// AddElement appends e. A keyless element receives a positional key so
// that siblings stay distinguishable.
func (c *Cells) AddElement(e Element) {
	ensureKey(e, len(c.children))
	c.children = append(c.children, e)
}

// AddCells appends and returns a nested table.
func (c *Cells) AddCells(dir Direction, key Key) *Cells {
	cells := NewCells(dir, key)
	c.AddElement(cells)
	return cells
}

// AddText appends and returns a text leaf.
func (c *Cells) AddText(content string, key Key) *Text {
	text := NewText(content, key)
	c.AddElement(text)
	return text
}

// Node is a standalone graph node whose label is a table of ports.
type Node struct {
	element
	Label *Cells
	Shape string
	Color string
}

func (*Node) Embeddable() bool { return false }

// NodeOption configures a node created by [Scope.AddNode].
type NodeOption func(*Node)

// WithShape sets the node shape (for example "record" or "circle").
func WithShape(shape string) NodeOption {
	return func(n *Node) { n.Shape = shape }
}

// WithColor sets the fill color of the node.
func WithColor(color string) NodeOption {
	return func(n *Node) { n.Color = color }
}

// WithDirection sets the direction of the node's label table.
func WithDirection(dir Direction) NodeOption {
	return func(n *Node) { n.Label.Direction = dir }
}

// WithKey sets the node's path segment.
func WithKey(key Key) NodeOption {
	return func(n *Node) { n.key = key }
}

const (
	defaultShape = "circle"
	titleKey     = "title"
)

// NewNode creates a node. A non-empty label becomes the first cell of the
// node's label table.
func NewNode(label string, opts ...NodeOption) *Node {
	n := &Node{
		Label: NewCells(Horizontal, StrKey("label")),
		Shape: defaultShape,
	}
	for _, opt := range opts {
		opt(n)
	}
	if label != "" {
		n.Label.AddText(label, StrKey(titleKey))
	}
	return n
}

// Edge connects two elements built elsewhere in the tree. It does not own
// either endpoint.
type Edge struct {
	element
	From  Element
	To    Element
	Label string
}

func (*Edge) Embeddable() bool { return false }

// Ref stands in for a value that was pulled out into its own cluster.
// It is drawn as a standalone marker node connected to the referenced
// element, so it is never placed inside a table cell.
type Ref struct {
	element
	Index  int
	target Element
}

func (*Ref) Embeddable() bool { return false }

// Target returns the referenced element once the build has finished.
func (r *Ref) Target() Element { return r.target }

// ensureKey gives a keyless element the positional key "_<pos>".
func ensureKey(e Element, pos int) {
	b := e.base()
	if b.key.IsZero() {
		b.key = posKey(pos)
	}
}
