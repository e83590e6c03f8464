package parser

import (
	"fmt"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/NikitaCOEUR/argot/internal/symbol"
	"github.com/NikitaCOEUR/argot/internal/token"
)

// Source tells where a bound value came from
type Source int

const (
	// SourceUser means the value was typed on the command line
	SourceUser Source = iota
	// SourceDefault means the value came from the symbol's default
	SourceDefault
	// SourceImplicit means a bool flag appeared without a value and binds true
	SourceImplicit
)

func (s Source) String() string {
	switch s {
	case SourceUser:
		return "user"
	case SourceDefault:
		return "default"
	case SourceImplicit:
		return "implicit"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// ValueResult is the binding of one option or argument
type ValueResult struct {
	Symbol *symbol.Symbol
	Tokens []token.Token
	Source Source
	Value  any
	Err    error
}

// Texts returns the text of each contributing token
func (v *ValueResult) Texts() []string {
	out := make([]string, len(v.Tokens))
	for i, t := range v.Tokens {
		out[i] = t.Text
	}
	return out
}

// Directive is a "[name]" or "[name:value]" token collected from the leading run
type Directive struct {
	Name     string
	Value    string
	HasValue bool
	Token    token.Token
	// Symbol is the declared directive, or nil when the name is not declared
	Symbol *symbol.Symbol
}

// Result is everything a single parse produced. It stays inspectable when
// errors were reported so diagnostics and completion can still use it.
type Result struct {
	RootCommand *symbol.Symbol
	// Commands is the matched path, root first
	Commands        []*symbol.Symbol
	Values          *orderedmap.OrderedMap[*symbol.Symbol, *ValueResult]
	Tokens          []token.Token
	Unmatched       []token.Token
	Errors          []*Error
	Directives      []Directive
	CommandLineText string

	lookupEnv    func(string) (string, bool)
	openOption   *symbol.Symbol
	nextArgument *symbol.Symbol
}

func newResult(root *symbol.Symbol, lookupEnv func(string) (string, bool)) *Result {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	return &Result{
		RootCommand: root,
		Commands:    []*symbol.Symbol{root},
		Values:      orderedmap.New[*symbol.Symbol, *ValueResult](),
		lookupEnv:   lookupEnv,
	}
}

// Command returns the last matched command
func (r *Result) Command() *symbol.Symbol {
	return r.Commands[len(r.Commands)-1]
}

// Succeeded reports whether neither parsing nor validation reported errors
func (r *Result) Succeeded() bool {
	return len(r.Errors) == 0
}

// AddError appends an error. Validation uses it; it never touches bindings.
func (r *Result) AddError(err *Error) {
	r.Errors = append(r.Errors, err)
}

// Get returns the binding of s
func (r *Result) Get(s *symbol.Symbol) (*ValueResult, bool) {
	return r.Values.Get(s)
}

// Lookup finds a binding by any alias or name of its symbol
func (r *Result) Lookup(name string) (*ValueResult, bool) {
	for pair := r.Values.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key.HasAlias(name) {
			return pair.Value, true
		}
	}
	return nil, false
}

// ValueOf returns the converted value bound to s. It implements symbol.Resolver.
func (r *Result) ValueOf(s *symbol.Symbol) (any, bool) {
	vr, ok := r.Values.Get(s)
	if !ok || vr.Err != nil {
		return nil, false
	}
	return vr.Value, true
}

// LookupEnv implements symbol.Resolver
func (r *Result) LookupEnv(key string) (string, bool) {
	return r.lookupEnv(key)
}

// WasSupplied reports whether the user typed s on the command line
func (r *Result) WasSupplied(s *symbol.Symbol) bool {
	vr, ok := r.Values.Get(s)
	return ok && vr.Source != SourceDefault
}

// ValueResults returns the bindings in the order they were made
func (r *Result) ValueResults() []*ValueResult {
	out := make([]*ValueResult, 0, r.Values.Len())
	for pair := r.Values.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Directive returns the first collected directive with the given name
func (r *Result) Directive(name string) (Directive, bool) {
	key := symbol.Normalize(name)
	for _, d := range r.Directives {
		if symbol.Normalize(d.Name) == key {
			return d, true
		}
	}
	return Directive{}, false
}

// OpenOption returns the option that was still accepting values when the
// input ended, or nil
func (r *Result) OpenOption() *symbol.Symbol {
	return r.openOption
}

// NextArgument returns the positional argument the next ordinary token would
// fill, or nil when every slot is full
func (r *Result) NextArgument() *symbol.Symbol {
	return r.nextArgument
}

// ErrorsFor returns the errors attached to s
func (r *Result) ErrorsFor(s *symbol.Symbol) []*Error {
	var out []*Error
	for _, e := range r.Errors {
		if e.Symbol == s {
			out = append(out, e)
		}
	}
	return out
}
