package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NikitaCOEUR/argot/internal/derrors"
	"github.com/NikitaCOEUR/argot/internal/symbol"
)

// pending is work that needs the whole tree: defaults and conditions may
// reference symbols declared anywhere on the path to the root.
type pending struct {
	sym        *symbol.Symbol
	where      string
	def        *SourceDecl
	conditions *ConditionDecl
	groups     [][]string
}

type builder struct {
	pending []pending
}

// Build creates a symbol tree from a declaration. Symbols are created and
// attached first; defaults, conditions and groups are resolved once the
// whole tree exists.
func Build(decl *CommandDecl) (*symbol.Symbol, error) {
	b := &builder{}
	root, err := b.command(decl, "")
	if err != nil {
		return nil, err
	}

	for _, p := range b.pending {
		if err := b.finish(p); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func (b *builder) command(decl *CommandDecl, parentPath string) (*symbol.Symbol, error) {
	where := strings.TrimSpace(parentPath + " " + decl.Name)
	cmd, err := symbol.NewCommand(symbol.CommandSpec{
		Name:                 decl.Name,
		Aliases:              decl.Aliases,
		Description:          decl.Description,
		Hidden:               decl.Hidden,
		AllowUnmatchedTokens: decl.AllowUnmatched,
		SubcommandRequired:   decl.SubcommandRequired,
	})
	if err != nil {
		return nil, err
	}

	for i := range decl.Options {
		opt, err := option(&decl.Options[i])
		if err != nil {
			return nil, err
		}
		if err := cmd.AddOption(opt); err != nil {
			return nil, err
		}
		b.later(opt, where, decl.Options[i].Default, decl.Options[i].Conditions)
	}

	for i := range decl.Arguments {
		arg, err := argument(&decl.Arguments[i])
		if err != nil {
			return nil, err
		}
		if err := cmd.AddArgument(arg); err != nil {
			return nil, err
		}
		b.later(arg, where, decl.Arguments[i].Default, decl.Arguments[i].Conditions)
	}

	for _, d := range decl.Directives {
		dir, err := symbol.NewDirective(d.Name, d.Description)
		if err != nil {
			return nil, err
		}
		if err := cmd.AddDirective(dir); err != nil {
			return nil, err
		}
	}

	for i := range decl.Commands {
		sub, err := b.command(&decl.Commands[i], where)
		if err != nil {
			return nil, err
		}
		if err := cmd.AddCommand(sub); err != nil {
			return nil, err
		}
	}

	if len(decl.Groups) > 0 {
		b.pending = append(b.pending, pending{sym: cmd, where: where, groups: decl.Groups})
	}
	return cmd, nil
}

func (b *builder) later(s *symbol.Symbol, where string, def *SourceDecl, conditions *ConditionDecl) {
	if def == nil && conditions == nil {
		return
	}
	b.pending = append(b.pending, pending{sym: s, where: where, def: def, conditions: conditions})
}

func (b *builder) finish(p pending) error {
	fail := func(err error) error {
		return derrors.NewGrammarError(strings.TrimSpace(p.where+" "+p.sym.Name()), err.Error())
	}

	if p.def != nil {
		src, err := buildSource(p.def, p.sym)
		if err != nil {
			return fail(fmt.Errorf("default: %w", err))
		}
		if err := p.sym.SetDefault(src); err != nil {
			return err
		}
	}

	if p.conditions != nil {
		cond, err := parseCondition(p.conditions, p.sym)
		if err != nil {
			return fail(err)
		}
		p.sym.AddTrait(cond)
	}

	for i, names := range p.groups {
		cond, err := parseGroup(names, p.sym)
		if err != nil {
			return fail(fmt.Errorf("groups[%d]: %w", i, err))
		}
		p.sym.AddTrait(cond)
	}
	return nil
}

func option(decl *OptionDecl) (*symbol.Symbol, error) {
	t, arity, err := shape(decl.Name, decl.Type, decl.Arity)
	if err != nil {
		return nil, err
	}
	return symbol.NewOption(symbol.OptionSpec{
		Name:           decl.Name,
		Aliases:        decl.Aliases,
		Description:    decl.Description,
		Hidden:         decl.Hidden,
		Type:           t,
		List:           decl.List,
		Arity:          arity,
		Required:       decl.Required,
		Recursive:      decl.Recursive,
		AcceptOnlyFrom: decl.AcceptOnly,
		Completions:    completions(decl.Completions),
	})
}

func argument(decl *ArgumentDecl) (*symbol.Symbol, error) {
	t, arity, err := shape(decl.Name, decl.Type, decl.Arity)
	if err != nil {
		return nil, err
	}
	return symbol.NewArgument(symbol.ArgumentSpec{
		Name:           decl.Name,
		Description:    decl.Description,
		Hidden:         decl.Hidden,
		Type:           t,
		List:           decl.List,
		Arity:          arity,
		AcceptOnlyFrom: decl.AcceptOnly,
		Completions:    completions(decl.Completions),
	})
}

func completions(values []string) symbol.CompletionSource {
	if len(values) == 0 {
		return nil
	}
	return symbol.StaticValues(values)
}

// shape parses the declared type and arity; empty means the default for the
// kind and type
func shape(name, typeName, arity string) (symbol.ValueType, *symbol.Arity, error) {
	t := symbol.TypeString
	if typeName != "" {
		var err error
		if t, err = symbol.ParseValueType(typeName); err != nil {
			return 0, nil, derrors.NewGrammarError(name, err.Error())
		}
	}
	if arity == "" {
		return t, nil, nil
	}
	a, err := ParseArity(arity)
	if err != nil {
		return 0, nil, derrors.NewGrammarError(name, err.Error())
	}
	return t, &a, nil
}

// ParseArity reads "N", "N..M" or "N..*"
func ParseArity(text string) (symbol.Arity, error) {
	minText, maxText, ranged := strings.Cut(strings.TrimSpace(text), "..")
	lo, err := strconv.Atoi(minText)
	if err != nil {
		return symbol.Arity{}, fmt.Errorf("invalid arity %q", text)
	}
	if !ranged {
		return symbol.Arity{Min: lo, Max: lo}, nil
	}
	if maxText == "*" {
		return symbol.Arity{Min: lo, Max: symbol.Unbounded}, nil
	}
	hi, err := strconv.Atoi(maxText)
	if err != nil {
		return symbol.Arity{}, fmt.Errorf("invalid arity %q", text)
	}
	return symbol.Arity{Min: lo, Max: hi}, nil
}
