package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/valplot/pkg/cache"
	"github.com/matzehuels/valplot/pkg/errors"
	"github.com/matzehuels/valplot/pkg/observability"
	"github.com/matzehuels/valplot/pkg/render"
)

type fakeEngine struct {
	calls int
}

func (*fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Render(_ context.Context, src []byte, format string, w io.Writer) error {
	e.calls++
	_, err := fmt.Fprintf(w, "<%s %d bytes>", format, len(src))
	return err
}

func (*fakeEngine) Close() error { return nil }

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func withEngine(e render.Engine) func(context.Context, string) (render.Engine, error) {
	return func(context.Context, string) (render.Engine, error) { return e, nil }
}

func do(s http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", rec.Code, rec.Body.String())
	}
}

func TestRender(t *testing.T) {
	e := &fakeEngine{}
	s := newTestServer(t, Options{OpenEngine: withEngine(e)})

	rec := do(s, http.MethodPost, "/render?format=png", `{"a": [1, 2]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /render = %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if _, err := uuid.Parse(rec.Header().Get("X-Artifact-Id")); err != nil {
		t.Errorf("X-Artifact-Id is not a uuid: %v", err)
	}
	if !strings.HasPrefix(rec.Body.String(), "<png ") {
		t.Errorf("body = %q, want fake png artifact", rec.Body.String())
	}
}

func TestRenderCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	e := &fakeEngine{}
	s := newTestServer(t, Options{Cache: c, OpenEngine: withEngine(e)})

	first := do(s, http.MethodPost, "/render?input=toml", "a = 1\n")
	second := do(s, http.MethodPost, "/render?input=toml", "a = 1\n")

	if got := first.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	if got := second.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	if e.calls != 1 {
		t.Errorf("engine calls = %d, want 1", e.calls)
	}
}

func TestDOT(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(s, http.MethodPost, "/dot?input=json&name=cfg&rankdir=LR", `[1, "x"]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /dot = %d %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{`digraph "cfg" {`, `rankdir="LR";`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s:\n%s", want, body)
		}
	}
}

func TestStatusMapping(t *testing.T) {
	missing := func(context.Context, string) (render.Engine, error) {
		return nil, errors.New(errors.ErrCodeMissingDependency, "no graphviz")
	}
	s := newTestServer(t, Options{OpenEngine: missing})

	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"bad json", "/dot", `{"a":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad input format", "/dot?input=xml", `<a/>`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad output format", "/render?format=gif", `1`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad refs", "/dot?refs=maybe", `1`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad name", "/dot?name=a/b", `1`, http.StatusBadRequest, "INVALID_NAME"},
		{"starlark function", "/dot?input=star", "def f():\n    pass\nvalue = f\n", http.StatusBadRequest, "INVALID_INPUT"},
		{"no engine", "/render", `1`, http.StatusServiceUnavailable, "MISSING_DEPENDENCY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if got := rec.Header().Get("X-Error-Code"); got != tt.code {
				t.Errorf("X-Error-Code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeUnclassifiable, "x"), http.StatusUnprocessableEntity},
		{fmt.Errorf("build: %w", errors.New(errors.ErrCodeMaxDepth, "x")), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeRender, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestNewInvalidEngine(t *testing.T) {
	if _, err := New(Options{Engine: "neato"}); !errors.Is(err, errors.ErrCodeInvalidEngine) {
		t.Errorf("New() error = %v, want invalid engine", err)
	}
}

type recordingHooks struct {
	observability.NoopServerHooks
	statuses []int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.statuses = append(h.statuses, status)
}

func TestServerHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetServerHooks(h)
	t.Cleanup(observability.Reset)

	s := newTestServer(t, Options{})
	do(s, http.MethodGet, "/healthz", "")
	do(s, http.MethodPost, "/dot", `{`)

	want := []int{http.StatusOK, http.StatusBadRequest}
	if fmt.Sprint(h.statuses) != fmt.Sprint(want) {
		t.Errorf("statuses = %v, want %v", h.statuses, want)
	}
}
