package dot

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/valplot/pkg/plot"
)

// Attr is one DOT attribute. Values are written verbatim between double
// quotes; free text must go through [Escape] first.
type Attr struct {
	Key, Value string
}

// A returns an attribute.
func A(key, value string) Attr { return Attr{Key: key, Value: value} }

// Endpoint is one end of an edge: a node, optionally narrowed to a record port.
type Endpoint struct {
	Node, Port string
}

// ParseEndpoint turns an element id into an endpoint. A two-part id
// "node:port" addresses a record port.
func ParseEndpoint(id string) Endpoint {
	if outer, port, ok := plot.SplitID(id); ok {
		return Endpoint{Node: outer, Port: port}
	}
	return Endpoint{Node: id}
}

func (e Endpoint) String() string {
	if e.Port == "" {
		return quote(e.Node)
	}
	return quote(e.Node) + ":" + quote(e.Port)
}

// NodeStmt is a node statement.
type NodeStmt struct {
	ID    string
	Attrs []Attr
}

// EdgeStmt is an edge statement.
type EdgeStmt struct {
	From, To Endpoint
	Attrs    []Attr
}

// Graph is an append-only DOT document. Statements are written in the order
// they were added: graph attributes, nodes, edges, then subgraphs.
type Graph struct {
	name      string
	sub       bool
	attrs     []Attr
	nodeAttrs []Attr
	nodes     []NodeStmt
	edges     []EdgeStmt
	subgraphs []*Graph
}

// New returns an empty directed graph.
func New(name string) *Graph {
	return &Graph{name: name}
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// Attr sets a graph attribute.
func (g *Graph) Attr(key, value string) *Graph {
	g.attrs = append(g.attrs, A(key, value))
	return g
}

// NodeDefaults sets attributes applied to every node of the graph.
func (g *Graph) NodeDefaults(attrs ...Attr) *Graph {
	g.nodeAttrs = append(g.nodeAttrs, attrs...)
	return g
}

// Node adds a node statement.
func (g *Graph) Node(id string, attrs ...Attr) {
	g.nodes = append(g.nodes, NodeStmt{ID: id, Attrs: attrs})
}

// Edge adds an edge statement. Either id may be a two-part port id.
func (g *Graph) Edge(from, to string, attrs ...Attr) {
	g.edges = append(g.edges, EdgeStmt{From: ParseEndpoint(from), To: ParseEndpoint(to), Attrs: attrs})
}

// Subgraph adds and returns a nested subgraph. Graphviz draws subgraphs
// whose name starts with "cluster" as a boxed group.
func (g *Graph) Subgraph(name string) *Graph {
	sg := &Graph{name: name, sub: true}
	g.subgraphs = append(g.subgraphs, sg)
	return sg
}

// Nodes returns the node statements of g, not including subgraphs.
func (g *Graph) Nodes() []NodeStmt { return g.nodes }

// Edges returns the edge statements of g, not including subgraphs.
func (g *Graph) Edges() []EdgeStmt { return g.edges }

// Subgraphs returns the nested subgraphs.
func (g *Graph) Subgraphs() []*Graph { return g.subgraphs }

// String returns the DOT source.
func (g *Graph) String() string {
	var buf bytes.Buffer
	g.write(&buf, "")
	return buf.String()
}

// WriteTo writes the DOT source to w.
func (g *Graph) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	g.write(&buf, "")
	return buf.WriteTo(w)
}

func (g *Graph) write(buf *bytes.Buffer, indent string) {
	keyword := "digraph"
	if g.sub {
		keyword = "subgraph"
	}
	fmt.Fprintf(buf, "%s%s %s {\n", indent, keyword, quote(g.name))

	inner := indent + "  "
	for _, a := range g.attrs {
		fmt.Fprintf(buf, "%s%s=%s;\n", inner, a.Key, quote(a.Value))
	}
	if len(g.nodeAttrs) > 0 {
		fmt.Fprintf(buf, "%snode [%s];\n", inner, fmtAttrs(g.nodeAttrs))
	}
	for _, n := range g.nodes {
		if len(n.Attrs) == 0 {
			fmt.Fprintf(buf, "%s%s;\n", inner, quote(n.ID))
			continue
		}
		fmt.Fprintf(buf, "%s%s [%s];\n", inner, quote(n.ID), fmtAttrs(n.Attrs))
	}
	for _, e := range g.edges {
		if len(e.Attrs) == 0 {
			fmt.Fprintf(buf, "%s%s -> %s;\n", inner, e.From, e.To)
			continue
		}
		fmt.Fprintf(buf, "%s%s -> %s [%s];\n", inner, e.From, e.To, fmtAttrs(e.Attrs))
	}
	for _, sg := range g.subgraphs {
		sg.write(buf, inner)
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func fmtAttrs(attrs []Attr) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.Key + "=" + quote(a.Value)
	}
	return strings.Join(parts, ", ")
}

func quote(s string) string {
	return `"` + s + `"`
}
