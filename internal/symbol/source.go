package symbol

import (
	"fmt"
	"sort"
	"strings"
)

// Resolver gives value sources access to what a parse has produced so far and
// to the process environment. A parse result implements it.
type Resolver interface {
	// ValueOf returns the converted value bound to s, if any
	ValueOf(s *Symbol) (any, bool)
	// LookupEnv reads an environment variable
	LookupEnv(key string) (string, bool)
}

// ValueSource is a deferred value: a default or a condition bound that is
// resolved lazily against a parse result. The set of implementations is closed.
//
// Resolve reports ok=false when the source has nothing to offer, for example
// an unset environment variable or a reference to a symbol the user did not
// supply. An error means the source exists but failed.
type ValueSource interface {
	Resolve(r Resolver) (v any, ok bool, err error)
	String() string
	rank() int
}

// Precedence ranks inside a Fallback, lowest first
const (
	rankLiteral = iota
	rankSymbolRef
	rankComputed
	rankEnvVar
	rankFallback
)

// Literal is a constant value
type Literal struct {
	Value any
}

// Resolve implements ValueSource
func (l Literal) Resolve(_ Resolver) (any, bool, error) {
	return l.Value, l.Value != nil, nil
}

func (l Literal) String() string { return fmt.Sprintf("literal(%v)", l.Value) }
func (l Literal) rank() int      { return rankLiteral }

// SymbolRef takes the value bound to another symbol
type SymbolRef struct {
	Symbol *Symbol
}

// Resolve implements ValueSource
func (s SymbolRef) Resolve(r Resolver) (any, bool, error) {
	if s.Symbol == nil || r == nil {
		return nil, false, nil
	}
	v, ok := r.ValueOf(s.Symbol)
	return v, ok && v != nil, nil
}

func (s SymbolRef) String() string {
	if s.Symbol == nil {
		return "ref(<nil>)"
	}
	return fmt.Sprintf("ref(%s)", s.Symbol.Name())
}

func (s SymbolRef) rank() int { return rankSymbolRef }

// EnvVar reads the text of an environment variable. The text is converted to
// the target type by ResolveFor.
type EnvVar struct {
	Name string
}

// Resolve implements ValueSource
func (e EnvVar) Resolve(r Resolver) (any, bool, error) {
	if r == nil {
		return nil, false, nil
	}
	v, ok := r.LookupEnv(e.Name)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, false, nil
	}
	return v, true, nil
}

func (e EnvVar) String() string { return fmt.Sprintf("env(%s)", e.Name) }
func (e EnvVar) rank() int      { return rankEnvVar }

// Computed calls a function. Name is only used for display.
type Computed struct {
	Name string
	Func func(r Resolver) (any, error)
}

// Resolve implements ValueSource
func (c Computed) Resolve(r Resolver) (any, bool, error) {
	if c.Func == nil {
		return nil, false, nil
	}
	v, err := c.Func(r)
	if err != nil {
		return nil, false, fmt.Errorf("computed value %s: %w", c.Name, err)
	}
	return v, v != nil, nil
}

func (c Computed) String() string { return fmt.Sprintf("computed(%s)", c.Name) }
func (c Computed) rank() int      { return rankComputed }

// Fallback tries its sources in precedence order and returns the first that
// resolves: literals, then symbol references, then computed values, then
// environment variables. Sources of the same kind keep their given order.
type Fallback struct {
	sources []ValueSource
}

// NewFallback orders sources by precedence
func NewFallback(sources ...ValueSource) Fallback {
	sorted := make([]ValueSource, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			sorted = append(sorted, s)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].rank() < sorted[j].rank()
	})
	return Fallback{sources: sorted}
}

// Sources returns the sources in the order they are tried
func (f Fallback) Sources() []ValueSource {
	return append([]ValueSource(nil), f.sources...)
}

// Resolve implements ValueSource. The first error stops the chain.
func (f Fallback) Resolve(r Resolver) (any, bool, error) {
	for _, s := range f.sources {
		v, ok, err := s.Resolve(r)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

func (f Fallback) String() string {
	parts := make([]string, len(f.sources))
	for i, s := range f.sources {
		parts[i] = s.String()
	}
	return "fallback(" + strings.Join(parts, ", ") + ")"
}

func (f Fallback) rank() int { return rankFallback }

// ResolveFor resolves src and converts the value to t
func ResolveFor(src ValueSource, r Resolver, t ValueType) (any, bool, error) {
	if src == nil {
		return nil, false, nil
	}
	v, ok, err := src.Resolve(r)
	if err != nil || !ok {
		return nil, false, err
	}
	converted, err := t.Coerce(v)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", src, err)
	}
	return converted, true, nil
}

// ResolveDefault resolves the default of s into a value shaped like the ones
// Convert produces. ok is false when s has no default or it did not resolve.
func (s *Symbol) ResolveDefault(r Resolver) (any, bool, error) {
	if s.defaultSrc == nil {
		return nil, false, nil
	}
	v, ok, err := s.defaultSrc.Resolve(r)
	if err != nil || !ok {
		return nil, false, err
	}
	converted, err := s.CoerceValue(v)
	if err != nil {
		return nil, false, fmt.Errorf("default for %s: %w", s.describe(), err)
	}
	return converted, true, nil
}
