package render

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/valplot/pkg/errors"
)

// Graphviz renders with an in-process Graphviz. It is safe for concurrent
// use; renders are serialized.
type Graphviz struct {
	mu sync.Mutex
	gv *graphviz.Graphviz
}

// NewGraphviz starts an in-process Graphviz.
func NewGraphviz(ctx context.Context) (*Graphviz, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissingDependency, err, "init graphviz")
	}
	return &Graphviz{gv: gv}, nil
}

func (*Graphviz) Name() string { return EngineWASM }

// Render lays out src and writes format to w. PDF output is converted from
// SVG with [ToPDF].
func (e *Graphviz) Render(ctx context.Context, src []byte, format string, w io.Writer) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	if format == FormatPDF {
		var svg bytes.Buffer
		if err := e.render(ctx, src, graphviz.SVG, &svg); err != nil {
			return err
		}
		pdf, err := ToPDF(ctx, svg.Bytes())
		if err != nil {
			return err
		}
		_, err = w.Write(pdf)
		return err
	}
	return e.render(ctx, src, gvFormat(format), w)
}

func (e *Graphviz) render(ctx context.Context, src []byte, format graphviz.Format, w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := graphviz.ParseBytes(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	if err := e.gv.Render(ctx, g, format, w); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "render %s", format)
	}
	return nil
}

// Close releases the Graphviz instance.
func (e *Graphviz) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gv.Close()
}

func gvFormat(format string) graphviz.Format {
	switch format {
	case FormatPNG:
		return graphviz.PNG
	case FormatJPG:
		return graphviz.JPG
	case FormatDOT:
		return graphviz.XDOT
	}
	return graphviz.SVG
}
