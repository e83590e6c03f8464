package grammar

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/NikitaCOEUR/argot/internal/symbol"
)

// buildSource converts a SourceDecl into a ValueSource. owner is the option
// or argument the value is for; references are looked up from its command.
// A nil decl gives a nil source.
func buildSource(decl *SourceDecl, owner *symbol.Symbol) (symbol.ValueSource, error) {
	if decl == nil {
		return nil, nil
	}

	set := 0
	for _, present := range []bool{decl.Value != nil, decl.Ref != "", decl.Env != "", decl.Template != "", len(decl.Fallback) > 0} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("a value source sets exactly one of value, ref, env, template, fallback (got %d)", set)
	}

	switch {
	case decl.Value != nil:
		return symbol.Literal{Value: decl.Value}, nil
	case decl.Ref != "":
		target := lookup(owner, decl.Ref)
		if target == nil {
			return nil, fmt.Errorf("ref %q: no such option or argument", decl.Ref)
		}
		if target == owner {
			return nil, fmt.Errorf("ref %q: refers to itself", decl.Ref)
		}
		return symbol.SymbolRef{Symbol: target}, nil
	case decl.Env != "":
		return symbol.EnvVar{Name: decl.Env}, nil
	case decl.Template != "":
		return templateSource(decl.Template, owner)
	}

	sources := make([]symbol.ValueSource, 0, len(decl.Fallback))
	for i := range decl.Fallback {
		src, err := buildSource(&decl.Fallback[i], owner)
		if err != nil {
			return nil, fmt.Errorf("fallback[%d]: %w", i, err)
		}
		sources = append(sources, src)
	}
	return symbol.NewFallback(sources...), nil
}

// lookup finds an option or argument by alias, from the command that owns s
// up to the root
func lookup(s *symbol.Symbol, name string) *symbol.Symbol {
	cmd := s
	if cmd.Kind() != symbol.KindCommand {
		cmd = s.Parent()
	}
	if cmd == nil {
		return nil
	}
	if found := cmd.ResolveInScope(name); found != nil && found.Kind() == symbol.KindOption {
		return found
	}
	for c := cmd; c != nil; c = c.Parent() {
		if found := c.Resolve(name); found != nil && found.Kind() == symbol.KindOption {
			return found
		}
		for _, arg := range c.Arguments() {
			if arg.Name() == name {
				return arg
			}
		}
	}
	return nil
}

// templateSource compiles a computed value. The template sees sprig functions
// plus "value NAME", the value bound to another option or argument (empty
// when unbound), and "env NAME", read through the parser's environment lookup.
// Blank output means no value.
func templateSource(text string, owner *symbol.Symbol) (symbol.ValueSource, error) {
	tmpl, err := template.New(owner.Name()).
		Funcs(sprig.TxtFuncMap()).
		Funcs(templateFuncs(owner, nil)).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	return symbol.Computed{
		Name: owner.Name(),
		Func: func(r symbol.Resolver) (any, error) {
			t, err := tmpl.Clone()
			if err != nil {
				return nil, err
			}
			var buf bytes.Buffer
			if err := t.Funcs(templateFuncs(owner, r)).Execute(&buf, nil); err != nil {
				return nil, err
			}
			out := strings.TrimSpace(buf.String())
			if out == "" {
				return nil, nil
			}
			return out, nil
		},
	}, nil
}

func templateFuncs(owner *symbol.Symbol, r symbol.Resolver) template.FuncMap {
	return template.FuncMap{
		"value": func(name string) (any, error) {
			target := lookup(owner, name)
			if target == nil {
				return nil, fmt.Errorf("no such option or argument %q", name)
			}
			if r == nil {
				return "", nil
			}
			if v, ok := r.ValueOf(target); ok && v != nil {
				return v, nil
			}
			return "", nil
		},
		"env": func(name string) string {
			if r == nil {
				return ""
			}
			v, _ := r.LookupEnv(name)
			return v
		},
	}
}
