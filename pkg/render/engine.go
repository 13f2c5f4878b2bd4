package render

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/valplot/pkg/errors"
)

// Engine lays out DOT source and writes it in an output format.
type Engine interface {
	// Name returns the engine name accepted by [Open].
	Name() string
	// Render lays out src and writes the result to w.
	Render(ctx context.Context, src []byte, format string, w io.Writer) error
	// Close releases the engine's resources.
	Close() error
}

// Engine names.
const (
	EngineWASM = "wasm"
	EngineExec = "exec"
)

// Engines lists the names accepted by [Open].
var Engines = []string{EngineWASM, EngineExec}

// ValidateEngine checks that name is one of [Engines] or empty.
func ValidateEngine(name string) error {
	if name != "" && !slices.Contains(Engines, name) {
		return errors.New(errors.ErrCodeInvalidEngine, "unknown engine %q (want one of %s)", name, strings.Join(Engines, ", "))
	}
	return nil
}

// Open starts the engine called name. The empty name selects [EngineWASM].
func Open(ctx context.Context, name string) (Engine, error) {
	if err := ValidateEngine(name); err != nil {
		return nil, err
	}
	var (
		e   Engine
		err error
	)
	switch name {
	case EngineExec:
		e, err = NewExec()
	default:
		e, err = NewGraphviz(ctx)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}
