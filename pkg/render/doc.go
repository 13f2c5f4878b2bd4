// Package render turns DOT source into image files.
//
// # Engines
//
// An [Engine] lays out a DOT graph and writes one output format:
//
//   - [Graphviz] ("wasm", the default) runs Graphviz in-process through
//     [github.com/goccy/go-graphviz]. It writes svg, png, jpg and dot
//     directly and produces pdf by converting its SVG with rsvg-convert.
//   - [Exec] ("exec") runs the dot binary from PATH and supports whatever
//     formats that binary was built with.
//
// [Open] selects an engine by name. An engine that cannot start reports
// [errors.ErrCodeMissingDependency], which callers treat as "nothing to
// render with" rather than as a failure of the diagram.
//
// # Format Conversion
//
// [ToPDF] converts any SVG using the external rsvg-convert tool
// (from librsvg).
//
//	var svg bytes.Buffer
//	_ = engine.Render(ctx, src, "svg", &svg)
//	pdf, err := render.ToPDF(ctx, svg.Bytes())
package render
