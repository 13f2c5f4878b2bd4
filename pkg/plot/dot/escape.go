package dot

import (
	"fmt"
	"strings"
	"unicode"
)

// Escape makes free text safe inside a quoted record label. Every rune falls
// into exactly one class:
//
//   - non-printable runes become \xHH
//   - printable runes above 0x7F become the character reference &#N;
//   - the label metacharacters " { } \ | < > are backslash-escaped
//   - everything else is copied
func Escape(s string) string {
	return escape(s, recordMeta)
}

// EscapeText is [Escape] for labels of non-record nodes and edges, where
// only the quote and the backslash are special.
func EscapeText(s string) string {
	return escape(s, textMeta)
}

const (
	recordMeta = `"{}\|<>`
	textMeta   = `"\`
)

func escape(s, meta string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case !unicode.IsPrint(r):
			fmt.Fprintf(&b, `\x%02x`, r)
		case r > 0x7F:
			fmt.Fprintf(&b, "&#%d;", r)
		case strings.ContainsRune(meta, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
