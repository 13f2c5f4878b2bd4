package plot

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/matzehuels/valplot/pkg/errors"
)

// DefaultMaxDepth bounds the nesting depth of a build.
const DefaultMaxDepth = 512

// Scope is the container opened each time the builder recurses into a
// plottable value or a fallback. The root of every diagram is a Scope.
// Nodes, edges, refs and child scopes are appended in creation order,
// which is also their render order.
type Scope struct {
	element
	st       *state
	children []Element
}

func (*Scope) Embeddable() bool { return false }

// Children returns the scope's elements in creation order.
func (s *Scope) Children() []Element { return s.children }

// Registry returns the fallback registry of the running build.
func (s *Scope) Registry() *Registry { return s.st.registry }

func (s *Scope) add(e Element) {
	ensureKey(e, len(s.children))
	s.children = append(s.children, e)
}

func (s *Scope) open(key Key) *Scope {
	c := &Scope{element: element{key: key}, st: s.st}
	s.add(c)
	return c
}

// AddNode creates a node, appends it to the scope and returns it.
func (s *Scope) AddNode(label string, opts ...NodeOption) *Node {
	n := NewNode(label, opts...)
	s.add(n)
	return n
}

// AddEdge connects two elements and appends the edge to the scope.
func (s *Scope) AddEdge(from, to Element, label string) *Edge {
	e := &Edge{From: from, To: to, Label: label}
	s.add(e)
	return e
}

// AddRef draws value out of line, in its own cluster, and appends a marker
// for it to the scope. With reference tracking enabled, a pointer that was
// already drawn is not drawn again.
func (s *Scope) AddRef(value any, key Key) (*Ref, error) {
	value = indirect(value)
	vk, tracked := s.st.visitKey(value)
	if tracked {
		if v, ok := s.st.visited[vk]; ok {
			return s.refTo(v, key), nil
		}
	}

	c := &Scope{st: s.st}
	v := &visit{scope: c}
	if tracked {
		s.st.visited[vk] = v
	}
	elem, err := c.Nest(value, NoKey)
	if err != nil {
		return nil, err
	}
	if elem.Embeddable() {
		elem = c.wrap(elem)
	}
	v.elem = elem
	return s.refTo(v, key), nil
}

// Nest converts value into an element. Embeddable results (texts and
// tables) are returned without being attached anywhere; the caller places
// them. Nodes, edges and scopes created on the way are appended to s or to
// a scope opened below it.
func (s *Scope) Nest(value any, key Key) (Element, error) {
	if s.st.depth >= s.st.maxDepth {
		return nil, errors.New(errors.ErrCodeMaxDepth, "value nests deeper than %d levels", s.st.maxDepth)
	}
	s.st.depth++
	defer func() { s.st.depth-- }()

	value = indirect(value)
	switch Classify(value) {
	case KindPrimitive:
		return NewText(stringify(value), key), nil
	case KindSequence:
		return s.nestSequence(items(reflect.ValueOf(value)), key)
	case KindTuple:
		if t, ok := value.(Tuple); ok {
			return s.nestTuple(t, key)
		}
		return s.nestTuple(items(reflect.ValueOf(value)), key)
	case KindMapping:
		if e, ok := value.(Entries); ok {
			return s.nestMapping(e, key)
		}
		return s.nestMapping(mapEntries(reflect.ValueOf(value)), key)
	case KindPlottable:
		p := value.(Plottable)
		return s.nestOpen(value, key, p.Plot)
	}

	if f, conv, ok := s.st.registry.lookup(value); ok {
		return s.nestOpen(value, key, func(c *Scope) (Element, error) {
			return f.render(conv, c)
		})
	}
	return nil, errors.New(errors.ErrCodeUnclassifiable, "did not know how to plot %#v (%T)", value, value)
}

func (s *Scope) nestSequence(values []any, key Key) (Element, error) {
	table := NewCells(Vertical, key)
	for i, v := range values {
		p, err := s.Nest(v, IntKey(i))
		if err != nil {
			return nil, err
		}
		row := table.AddCells(Horizontal, StrKey(fmt.Sprintf("%d-row", i)))
		s.place(row, p, fmt.Sprintf("%d-ref", i), strconv.Itoa(i))
	}
	return table, nil
}

func (s *Scope) nestTuple(values []any, key Key) (Element, error) {
	table := NewCells(Vertical, key)
	row := table.AddCells(Horizontal, StrKey("row"))
	for i, v := range values {
		p, err := s.Nest(v, IntKey(i))
		if err != nil {
			return nil, err
		}
		s.place(row, p, fmt.Sprintf("%d-ref", i), strconv.Itoa(i))
	}
	return table, nil
}

func (s *Scope) nestMapping(entries Entries, key Key) (Element, error) {
	table := NewCells(Vertical, key)
	for i, e := range entries {
		pk, err := s.Nest(e.Key, StrKey(fmt.Sprintf("%d-key", i)))
		if err != nil {
			return nil, err
		}
		pv, err := s.Nest(e.Value, StrKey(fmt.Sprintf("%d-value", i)))
		if err != nil {
			return nil, err
		}
		row := table.AddCells(Horizontal, StrKey(fmt.Sprintf("%d-row", i)))
		s.place(row, pk, fmt.Sprintf("%d-key-ref", i), strconv.Itoa(i))
		s.place(row, pv, fmt.Sprintf("%d-value-ref", i), strconv.Itoa(i))
	}
	return table, nil
}

// place puts an embeddable child into row. Anything else is represented in
// the row by an index label with an edge to the child.
func (s *Scope) place(row *Cells, child Element, refKey, label string) {
	if child.Embeddable() {
		row.AddElement(child)
		return
	}
	text := row.AddText(label, StrKey(refKey))
	s.AddEdge(text, child, "")
}

// nestOpen runs plot inside a fresh child scope. With reference tracking
// enabled, a pointer seen before yields a [Ref] instead.
func (s *Scope) nestOpen(value any, key Key, plot func(*Scope) (Element, error)) (Element, error) {
	vk, tracked := s.st.visitKey(value)
	if tracked {
		if v, ok := s.st.visited[vk]; ok {
			return s.refTo(v, key), nil
		}
	}

	// key names the returned element; the scope itself stays positional
	// so sibling scopes opened under the same key never share an id.
	c := s.open(NoKey)
	v := &visit{scope: c, parent: s}
	if tracked {
		s.st.visited[vk] = v
	}
	elem, err := plot(c)
	if err != nil {
		return nil, err
	}
	if elem == nil {
		return nil, errors.New(errors.ErrCodeInternal, "plot of %T returned no element", value)
	}
	if tracked && elem.Embeddable() {
		elem = c.wrap(elem)
	}
	v.elem = elem
	return elem, nil
}

// wrap puts an embeddable element into a record node of its own.
func (s *Scope) wrap(e Element) *Node {
	n := s.AddNode("", WithShape("record"))
	n.Label.AddElement(e)
	return n
}

// refTo returns a marker for an element that is drawn out of line. The
// first marker moves the element's scope to the referenced list.
func (s *Scope) refTo(v *visit, key Key) *Ref {
	if v.entry == nil {
		v.entry = &refEntry{visit: v, index: len(s.st.refs)}
		s.st.refs = append(s.st.refs, v.entry)
	}
	r := &Ref{element: element{key: key}, Index: v.entry.index}
	s.add(r)
	v.entry.markers = append(v.entry.markers, r)
	return r
}

type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

type visit struct {
	scope  *Scope
	parent *Scope
	elem   Element
	entry  *refEntry
}

type refEntry struct {
	*visit
	index   int
	markers []*Ref
}

// state is shared by every scope of one build.
type state struct {
	registry *Registry
	track    bool
	maxDepth int
	depth    int
	visited  map[visitKey]*visit
	refs     []*refEntry
}

func (st *state) visitKey(v any) (visitKey, bool) {
	if !st.track {
		return visitKey{}, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return visitKey{}, false
		}
		// empty slices may all share one address
		if rv.Kind() == reflect.Slice && rv.Cap() == 0 {
			return visitKey{}, false
		}
		return visitKey{typ: rv.Type(), ptr: rv.Pointer()}, true
	}
	return visitKey{}, false
}

// Diagram is the result of a build.
type Diagram struct {
	// Root holds everything drawn in the main graph.
	Root *Scope
	// Top is the element standing for the whole value.
	Top Element
	// Refs holds the scopes drawn out of line, indexed by [Ref.Index].
	Refs []*Scope
}

// Walk calls fn for every element reachable from the diagram's scopes, in
// render order. For a node, the cells of its label are visited but not the
// label table itself.
func (d *Diagram) Walk(fn func(Element)) {
	var walk func(Element)
	walk = func(e Element) {
		fn(e)
		switch e := e.(type) {
		case *Scope:
			for _, c := range e.children {
				walk(c)
			}
		case *Node:
			for _, c := range e.Label.children {
				walk(c)
			}
		case *Cells:
			for _, c := range e.children {
				walk(c)
			}
		}
	}
	walk(d.Root)
	for _, r := range d.Refs {
		walk(r)
	}
}

// Builder turns values into diagrams. A Builder holds no per-build state
// and can be reused.
type Builder struct {
	registry *Registry
	track    bool
	maxDepth int
}

// BuilderOption configures a [Builder].
type BuilderOption func(*Builder)

// WithRegistry sets the fallback registry. The default is [DefaultRegistry].
func WithRegistry(r *Registry) BuilderOption {
	return func(b *Builder) { b.registry = r }
}

// WithReferenceTracking draws a pointer value once and replaces later
// occurrences with a [Ref]. This also makes cyclic values drawable.
func WithReferenceTracking(on bool) BuilderOption {
	return func(b *Builder) { b.track = on }
}

// WithMaxDepth bounds nesting depth. Values <= 0 select [DefaultMaxDepth].
func WithMaxDepth(n int) BuilderOption {
	return func(b *Builder) { b.maxDepth = n }
}

// NewBuilder returns a builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.registry == nil {
		b.registry = DefaultRegistry()
	}
	if b.maxDepth <= 0 {
		b.maxDepth = DefaultMaxDepth
	}
	return b
}

// Build converts value into a diagram. An embeddable top-level result is
// wrapped in a record node so it appears in the graph.
func (b *Builder) Build(value any) (*Diagram, error) {
	st := &state{
		registry: b.registry,
		track:    b.track,
		maxDepth: b.maxDepth,
		visited:  make(map[visitKey]*visit),
	}
	root := &Scope{element: element{key: StrKey(rootKey)}, st: st}

	top, err := root.Nest(value, NoKey)
	if err != nil {
		return nil, err
	}
	if top.Embeddable() {
		top = root.wrap(top)
	}

	d := &Diagram{Root: root, Top: top, Refs: make([]*Scope, len(st.refs))}
	for _, e := range st.refs {
		for _, r := range e.markers {
			r.target = e.elem
		}
		if e.parent != nil {
			e.parent.children = slices.DeleteFunc(e.parent.children, func(c Element) bool {
				return c == Element(e.scope)
			})
			e.parent = nil
		}
		e.scope.key = IntKey(e.index)
		d.Refs[e.index] = e.scope
	}
	return d, nil
}

const rootKey = "root"
