package dot

import "testing"

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "plain text 123", "plain text 123"},
		{"empty", "", ""},
		{"quote", `a"b`, `a\"b`},
		{"braces", "{x}", `\{x\}`},
		{"backslash", `a\b`, `a\\b`},
		{"record separators", "a|b<c>", `a\|b\<c\>`},
		{"latin", "é", "&#233;"},
		{"cjk", "日", "&#26085;"},
		{"newline", "a\nb", `a\x0ab`},
		{"tab", "\t", `\x09`},
		{"zero width space", "\u200b", `\x200b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.in); got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeIdempotentOnSafeText(t *testing.T) {
	safe := "field_name-1 = 2.5 (ok)"
	once := Escape(safe)
	if once != safe {
		t.Fatalf("Escape(%q) = %q, want unchanged", safe, once)
	}
	if twice := Escape(once); twice != once {
		t.Errorf("Escape(Escape(%q)) = %q, want %q", safe, twice, once)
	}
}

func TestEscapeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"{a|b}", "{a|b}"},
		{`say "hi"`, `say \"hi\"`},
		{`c:\dir`, `c:\\dir`},
		{"ü", "&#252;"},
	}
	for _, tt := range tests {
		if got := EscapeText(tt.in); got != tt.want {
			t.Errorf("EscapeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
