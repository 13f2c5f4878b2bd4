// Package pkg holds the libraries behind valplot.
//
// # Overview
//
// valplot draws arbitrary values as Graphviz diagrams: containers become
// nodes and tables, nesting becomes edges. The pkg directory is organized
// into these areas:
//
//  1. [plot] - element tree, builder, registry and id assignment
//  2. [plot/dot] - DOT document model and rendering of a diagram
//  3. [render] - layout engines (embedded Graphviz or the dot binary)
//  4. [source] - loaders for JSON, TOML, CUE and Starlark input
//  5. [visualize] - orchestration (build, write source, render, view)
//  6. [server] - HTTP preview server
//  7. [cache], [observability], [errors], [buildinfo] - infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	data file or Go value
//	         ↓
//	    [source] package (decode, keep key order)
//	         ↓
//	    [plot] package (build element tree, assign ids)
//	         ↓
//	    [plot/dot] package (DOT source)
//	         ↓
//	    [render] package (SVG/PNG/JPG/PDF)
//
// # Quick Start
//
//	value, err := source.Load(ctx, "config.toml")
//	if err != nil {
//	    return err
//	}
//	res, err := visualize.Visualize(ctx, value, visualize.Options{Name: "config"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.ArtifactPath) // .valgraphs/config.gv.svg
package pkg
