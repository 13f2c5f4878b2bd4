package source

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/valplot/pkg/plot"
)

// parseTOML decodes a TOML document. The decoder returns Go maps, so the
// key order of each table is rebuilt from the metadata key list.
func parseTOML(data []byte) (any, error) {
	var doc map[string]any
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, err
	}
	o := tomlOrder{seen: make(map[string][]string)}
	for _, k := range md.Keys() {
		if len(k) == 0 {
			continue
		}
		parent := strings.Join(k[:len(k)-1], "\x00")
		name := k[len(k)-1]
		if !slices.Contains(o.seen[parent], name) {
			o.seen[parent] = append(o.seen[parent], name)
		}
	}
	return o.convert(doc, nil), nil
}

// tomlOrder maps a table path (joined with NUL) to its keys in document order.
type tomlOrder struct {
	seen map[string][]string
}

func (o tomlOrder) convert(v any, path []string) any {
	switch v := v.(type) {
	case map[string]any:
		return o.table(v, path)
	case []map[string]any:
		out := make([]any, len(v))
		for i, t := range v {
			out[i] = o.table(t, path)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = o.convert(e, path)
		}
		return out
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	}
	return v
}

func (o tomlOrder) table(t map[string]any, path []string) plot.Entries {
	keys := make([]string, 0, len(t))
	for _, k := range o.seen[strings.Join(path, "\x00")] {
		if _, ok := t[k]; ok {
			keys = append(keys, k)
		}
	}
	// inline tables inside arrays are not listed in the metadata
	var rest []string
	for k := range t {
		if !slices.Contains(keys, k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	out := make(plot.Entries, len(keys))
	for i, k := range keys {
		out[i] = plot.Entry{Key: k, Value: o.convert(t[k], append(slices.Clip(path), k))}
	}
	return out
}
