// Package plot turns arbitrary Go values into a tree of diagram elements.
//
// # Overview
//
// A diagram is built in two passes before it is handed to a renderer:
//
//	value → Builder.Build() → Diagram (element tree)
//	      → Assign()        → every element carries a path id
//	      → dot.Render()    → Graphviz DOT
//
// # Elements
//
// The element set is closed:
//
//   - [Text]: a leaf; inside a node label it is one addressable port
//   - [Cells]: a table laid out horizontally or vertically
//   - [Node]: a standalone graph node whose label is a [Cells] table
//   - [Edge]: a connection between two elements built elsewhere
//   - [Ref]: a marker for a value drawn out of line in its own cluster
//   - [Scope]: the container opened for every plottable value
//
// Text and Cells are embeddable: they can sit inside a table cell. Every
// other element stands on its own and is reached by an edge.
//
// # Classification
//
// [Scope.Nest] classifies each value (see [Classify]) in a fixed order:
//
//  1. Primitives (nil, booleans, numbers, strings) become [Text].
//  2. Slices become a vertical table with one row per element.
//  3. [Tuple] values and arrays become a vertical table with a single row.
//  4. Maps and [Entries] become one row per entry, key beside value.
//  5. [Plottable] values draw themselves into a fresh child scope.
//  6. Anything else goes to the first accepting [Fallback] of the
//     [Registry]. The default registry draws structs and [Record] values as
//     record-shaped nodes.
//
// An element that is not embeddable is replaced in its row by an index label,
// and an edge runs from that label to the element.
//
// # Identity
//
// [Assign] gives every element an id derived from the keys on its path from
// the root, for example "root._0" for a node and "root._0:label.1-row.1" for a
// port inside its label. The part after ":" addresses a record port.
//
// # References
//
// With [WithReferenceTracking], a pointer reached a second time is not drawn
// again. The builder moves the first drawing into the diagram's Refs list and
// puts a [Ref] marker at every later occurrence, which also makes cyclic
// values drawable. Without tracking, inputs must be trees; [WithMaxDepth]
// turns runaway recursion into an error.
package plot
