package condition

import (
	"fmt"

	"github.com/NikitaCOEUR/argot/internal/parser"
	"github.com/NikitaCOEUR/argot/internal/symbol"
)

// Validator is a caller-supplied check over a whole parse result
type Validator func(res *parser.Result) []*parser.Error

// Options configures a validation run
type Options struct {
	// Validators run after every symbol condition
	Validators []Validator
}

// Validate runs the conditions of every symbol on the matched command path
// plus validators, and appends failures to res.Errors. It returns the errors
// it added. Every condition runs even when earlier ones failed or the parse
// itself reported errors; bindings are never modified.
//
// Options and arguments are checked only when they have a binding without a
// conversion error. Misuse panics propagate to the caller.
func Validate(res *parser.Result, validators ...Validator) []*parser.Error {
	return Options{Validators: validators}.Validate(res)
}

// Validate is the package-level Validate with o's validators
func (o Options) Validate(res *parser.Result) []*parser.Error {
	var added []*parser.Error
	report := func(e *parser.Error) {
		res.AddError(e)
		added = append(added, e)
	}

	for _, cmd := range res.Commands {
		evaluateAll(Context{Result: res, Symbol: cmd}, report)

		for _, child := range cmd.Children() {
			if child.Kind() != symbol.KindOption && child.Kind() != symbol.KindArgument {
				continue
			}
			vr, ok := res.Get(child)
			if !ok || vr.Err != nil {
				continue
			}
			evaluateAll(Context{Result: res, Symbol: child, Value: vr}, report)
		}
	}

	for _, v := range o.Validators {
		for _, e := range v(res) {
			report(e)
		}
	}
	return added
}

func evaluateAll(ctx Context, report func(*parser.Error)) {
	for _, trait := range ctx.Symbol.Traits() {
		cond, ok := trait.(Condition)
		if !ok {
			continue
		}
		ok, msg, err := cond.Evaluate(ctx)
		switch {
		case err != nil:
			report(parser.NewValidationError(ctx.Symbol,
				fmt.Sprintf("Cannot evaluate %s condition for '%s': %v", cond.TraitName(), ctx.Symbol.Name(), err)))
		case !ok:
			report(parser.NewValidationError(ctx.Symbol, msg))
		}
	}
}

// Conditions returns the conditions among the traits of s
func Conditions(s *symbol.Symbol) []Condition {
	var out []Condition
	for _, trait := range s.Traits() {
		if cond, ok := trait.(Condition); ok {
			out = append(out, cond)
		}
	}
	return out
}
