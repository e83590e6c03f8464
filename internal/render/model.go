package render

import (
	"fmt"
	"time"

	"github.com/NikitaCOEUR/argot/internal/completion"
	"github.com/NikitaCOEUR/argot/internal/parser"
)

// Report is a parse result flattened for display and serialization
type Report struct {
	Line       string       `json:"line,omitempty" yaml:"line,omitempty"`
	Commands   []string     `json:"commands" yaml:"commands"`
	Values     []Binding    `json:"values,omitempty" yaml:"values,omitempty"`
	Directives []Directive  `json:"directives,omitempty" yaml:"directives,omitempty"`
	Unmatched  []string     `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`
	Errors     []Diagnostic `json:"errors,omitempty" yaml:"errors,omitempty"`
	Succeeded  bool         `json:"succeeded" yaml:"succeeded"`
}

// Binding is one option or argument value
type Binding struct {
	Name   string   `json:"name" yaml:"name"`
	Kind   string   `json:"kind" yaml:"kind"`
	Source string   `json:"source" yaml:"source"`
	Tokens []string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Value  any      `json:"value" yaml:"value"`
	Error  string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Directive is a collected "[name:value]" token
type Directive struct {
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
	Declared bool   `json:"declared" yaml:"declared"`
}

// Diagnostic is one parse or validation error
type Diagnostic struct {
	Kind    string `json:"kind" yaml:"kind"`
	Symbol  string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Token   string `json:"token,omitempty" yaml:"token,omitempty"`
	Offset  int    `json:"offset" yaml:"offset"` // -1 when no token is involved
	Message string `json:"message" yaml:"message"`
}

// Completion is one completion item
type Completion struct {
	Label         string `json:"label" yaml:"label"`
	Kind          string `json:"kind" yaml:"kind"`
	InsertText    string `json:"insert_text" yaml:"insert_text"`
	Documentation string `json:"documentation,omitempty" yaml:"documentation,omitempty"`
}

// Suggestions are the "did you mean" candidates for a token
type Suggestions struct {
	Token      string   `json:"token" yaml:"token"`
	Candidates []string `json:"candidates" yaml:"candidates"`
}

// FromResult builds a report from a parse result
func FromResult(res *parser.Result) *Report {
	r := &Report{
		Line:      res.CommandLineText,
		Succeeded: res.Succeeded(),
	}
	for _, cmd := range res.Commands {
		r.Commands = append(r.Commands, cmd.Name())
	}

	for _, vr := range res.ValueResults() {
		b := Binding{
			Name:   vr.Symbol.Name(),
			Kind:   vr.Symbol.Kind().String(),
			Source: vr.Source.String(),
			Tokens: vr.Texts(),
		}
		if vr.Err != nil {
			b.Error = vr.Err.Error()
		} else {
			b.Value = plain(vr.Value)
		}
		r.Values = append(r.Values, b)
	}

	for _, d := range res.Directives {
		r.Directives = append(r.Directives, Directive{
			Name:     d.Name,
			Value:    d.Value,
			Declared: d.Symbol != nil,
		})
	}

	for _, tok := range res.Unmatched {
		r.Unmatched = append(r.Unmatched, tok.Text)
	}

	for _, e := range res.Errors {
		r.Errors = append(r.Errors, diagnostic(e))
	}
	return r
}

func diagnostic(e *parser.Error) Diagnostic {
	d := Diagnostic{
		Kind:    e.Kind.String(),
		Offset:  -1,
		Message: e.Message,
	}
	if e.Symbol != nil {
		d.Symbol = e.Symbol.Name()
	}
	if e.Token != nil {
		d.Token = e.Token.Text
		d.Offset = e.Token.Position.Start
	}
	return d
}

// FromItems converts completion items
func FromItems(items []completion.Item) []Completion {
	out := make([]Completion, 0, len(items))
	for _, it := range items {
		out = append(out, Completion{
			Label:         it.Label,
			Kind:          it.Kind.String(),
			InsertText:    it.InsertText,
			Documentation: it.Documentation,
		})
	}
	return out
}

// plain turns values without a stable text form into strings
func plain(v any) any {
	switch val := v.(type) {
	case time.Duration:
		return val.String()
	case []time.Duration:
		out := make([]string, len(val))
		for i, d := range val {
			out[i] = d.String()
		}
		return out
	case fmt.Stringer:
		return val.String()
	}
	return v
}
