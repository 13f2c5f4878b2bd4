// Package source loads values to plot from data and script files.
//
// Each loader keeps the document order of mappings by producing
// [plot.Entries] instead of Go maps, so diagrams list fields the way the
// file does. Supported formats:
//
//   - JSON (.json): numbers keep their literal text.
//   - TOML (.toml): key order is recovered from the decoder metadata.
//   - CUE (.cue): the file must evaluate to a concrete value.
//   - Starlark (.star, .sky): the script runs and its "value" global, or the
//     last assigned global, is plotted.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/valplot/pkg/errors"
)

// Input formats.
const (
	FormatJSON     = "json"
	FormatTOML     = "toml"
	FormatCUE      = "cue"
	FormatStarlark = "star"
)

// Formats lists the accepted input formats.
var Formats = []string{FormatJSON, FormatTOML, FormatCUE, FormatStarlark}

var extensions = map[string]string{
	".json": FormatJSON,
	".toml": FormatTOML,
	".cue":  FormatCUE,
	".star": FormatStarlark,
	".sky":  FormatStarlark,
}

// FormatOf returns the input format for path based on its extension.
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported input file %q (want one of %s)", filepath.Base(path), strings.Join(Formats, ", "))
}

// ValidateFormat checks that format is one of [Formats].
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported input format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// Load reads path and decodes it according to its extension.
func Load(ctx context.Context, path string) (any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input file %q not found", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parse(ctx, data, format, path)
}

// Parse decodes data in the given format. Only Starlark scripts run long
// enough to observe ctx.
func Parse(ctx context.Context, data []byte, format string) (any, error) {
	return parse(ctx, data, format, "input."+format)
}

func parse(ctx context.Context, data []byte, format, filename string) (any, error) {
	var (
		v   any
		err error
	)
	switch format {
	case FormatJSON:
		v, err = parseJSON(data)
	case FormatTOML:
		v, err = parseTOML(data)
	case FormatCUE:
		v, err = parseCUE(data, filename)
	case FormatStarlark:
		v, err = parseStarlark(ctx, data, filename)
	default:
		return nil, ValidateFormat(format)
	}
	if err != nil {
		if errors.GetCode(err) != "" || err == ctx.Err() {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", filepath.Base(filename))
	}
	return v, nil
}
