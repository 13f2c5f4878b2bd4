package render

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/matzehuels/valplot/pkg/errors"
)

// Exec renders by running the Graphviz dot binary.
type Exec struct {
	path string
}

// NewExec locates dot on PATH.
func NewExec() (*Exec, error) {
	path, err := exec.LookPath("dot")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissingDependency, err,
			"the exec engine requires Graphviz. Install with:\n  macOS:  brew install graphviz\n  Linux:  apt install graphviz")
	}
	return &Exec{path: path}, nil
}

func (*Exec) Name() string { return EngineExec }

// Render runs dot -T<format> with src on stdin.
func (e *Exec) Render(ctx context.Context, src []byte, format string, w io.Writer) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, e.path, "-T"+format)
	cmd.Stdin = bytes.NewReader(src)
	cmd.Stdout = w

	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "dot: %s", strings.TrimSpace(errBuf.String()))
	}
	return nil
}

func (*Exec) Close() error { return nil }
