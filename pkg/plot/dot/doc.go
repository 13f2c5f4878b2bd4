// Package dot renders plot diagrams as Graphviz DOT.
//
// # Output
//
// Every [plot.Node] becomes one node statement. Record-shaped nodes get a
// record label built from their cell table: cells are separated by "|", a
// nested table that changes direction is wrapped in braces, and every text
// cell is prefixed with its port, for example:
//
//	"root._0._0" [label="{ <title> point | { <field-X.X-name> X | <field-X.X> 1 } }", shape="record"];
//
// Every [plot.Edge] becomes one edge statement. An endpoint inside a label
// is addressed as "node":"port".
//
// Values drawn out of line (see [plot.WithReferenceTracking]) are written
// into "cluster_<i>" subgraphs, and each [plot.Ref] marker becomes a diamond
// node with a dashed edge to the element it stands for.
//
// # Usage
//
//	d, _ := plot.NewBuilder().Build(value)
//	src, _ := dot.Marshal(d, dot.Options{})
//
// [Marshal] assigns ids before rendering. [Render] expects a diagram that has
// already been through [plot.Assign] and returns the [Graph] for further
// editing.
package dot
