package plot

// Fallback renders values that are neither primitive, collections nor
// [Plottable]. Build one with [FallbackFor] or [NewFallback].
type Fallback struct {
	Name string

	accept func(v any) (any, bool)
	render func(v any, s *Scope) (Element, error)
}

// Accepts reports whether the fallback can render v.
func (f Fallback) Accepts(v any) bool {
	_, ok := f.accept(v)
	return ok
}

// NewFallback returns a fallback with an explicit acceptance check. accept
// may convert the value; the converted value is what render receives.
func NewFallback(name string, accept func(any) (any, bool), render func(any, *Scope) (Element, error)) Fallback {
	return Fallback{Name: name, accept: accept, render: render}
}

// FallbackFor returns a fallback that accepts every value whose dynamic type
// satisfies T.
func FallbackFor[T any](name string, render func(T, *Scope) (Element, error)) Fallback {
	return Fallback{
		Name: name,
		accept: func(v any) (any, bool) {
			t, ok := v.(T)
			return t, ok
		},
		render: func(v any, s *Scope) (Element, error) {
			return render(v.(T), s)
		},
	}
}

// Registry is an ordered, immutable list of fallbacks. The first fallback
// accepting a value renders it. A Registry is safe for concurrent use.
type Registry struct {
	fallbacks []Fallback
}

// NewRegistry returns a registry holding fallbacks in priority order.
func NewRegistry(fallbacks ...Fallback) *Registry {
	return &Registry{fallbacks: append([]Fallback(nil), fallbacks...)}
}

// DefaultRegistry returns a registry holding only the record renderer.
func DefaultRegistry() *Registry {
	return NewRegistry(recordFallback())
}

// With returns a copy of r with fallbacks added ahead of the existing ones,
// so they take precedence over the record renderer.
func (r *Registry) With(fallbacks ...Fallback) *Registry {
	out := make([]Fallback, 0, len(fallbacks)+r.Len())
	out = append(out, fallbacks...)
	if r != nil {
		out = append(out, r.fallbacks...)
	}
	return &Registry{fallbacks: out}
}

// Len returns the number of fallbacks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fallbacks)
}

// Names returns the fallback names in priority order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.fallbacks))
	for i, f := range r.fallbacks {
		names[i] = f.Name
	}
	return names
}

func (r *Registry) lookup(v any) (Fallback, any, bool) {
	if r == nil {
		return Fallback{}, nil, false
	}
	for _, f := range r.fallbacks {
		if conv, ok := f.accept(v); ok {
			return f, conv, true
		}
	}
	return Fallback{}, nil, false
}

func recordFallback() Fallback {
	return NewFallback("record",
		func(v any) (any, bool) {
			rec, ok := AsRecord(v)
			return rec, ok
		},
		func(v any, s *Scope) (Element, error) {
			return PlotRecord(v.(Record), s)
		},
	)
}
