// Package condition provides value conditions evaluated against a parse result
package condition

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NikitaCOEUR/argot/internal/derrors"
	"github.com/NikitaCOEUR/argot/internal/parser"
	"github.com/NikitaCOEUR/argot/internal/symbol"
)

// Condition is a constraint attached to a symbol as a trait
type Condition interface {
	symbol.Trait
	// Evaluate tests the condition and returns:
	// - bool: true if condition is met, false otherwise
	// - string: user-friendly error message if condition fails
	// - error: technical error if evaluation failed (a bound that did not resolve, etc.)
	//
	// Conditions attached where they cannot apply panic with a *derrors.MisuseError.
	Evaluate(ctx Context) (bool, string, error)
}

// Context provides what a condition is evaluated against
type Context struct {
	// Result is the parse result being validated
	Result *parser.Result
	// Symbol carries the condition
	Symbol *symbol.Symbol
	// Value is the binding of Symbol; nil for commands
	Value *parser.ValueResult
}

// Range requires a value strictly between two bounds. A nil or unresolved
// bound leaves that side open. Bounds are converted to the symbol's type.
type Range struct {
	Lower symbol.ValueSource
	Upper symbol.ValueSource
}

// TraitName implements symbol.Trait
func (Range) TraitName() string { return "range" }

// Evaluate implements Condition
func (c Range) Evaluate(ctx Context) (bool, string, error) {
	t := ctx.Symbol.ValueType()
	if !t.Ordered() {
		derrors.Misuse(ctx.Symbol.Name(), "range condition on non-ordered type %s", t)
	}
	if ctx.Value == nil || ctx.Value.Value == nil {
		return true, "", nil
	}

	lower, hasLower, err := symbol.ResolveFor(c.Lower, ctx.Result, t)
	if err != nil {
		return false, "", fmt.Errorf("lower bound: %w", err)
	}
	upper, hasUpper, err := symbol.ResolveFor(c.Upper, ctx.Result, t)
	if err != nil {
		return false, "", fmt.Errorf("upper bound: %w", err)
	}

	for _, v := range elements(ctx.Value.Value) {
		if d, ok := compare(v, lower); hasLower && ok && d <= 0 {
			return false, fmt.Sprintf("The value %v for '%s' must be greater than %v.", v, ctx.Symbol.Name(), lower), nil
		}
		if d, ok := compare(v, upper); hasUpper && ok && d >= 0 {
			return false, fmt.Sprintf("The value %v for '%s' must be less than %v.", v, ctx.Symbol.Name(), upper), nil
		}
	}
	return true, "", nil
}

// Casing rules for StringCase
const (
	CaseLower = "lower"
	CaseUpper = "upper"
)

// StringCase requires a string value to equal its lower or upper case form.
// Characters without case, such as digits and punctuation, never fail.
type StringCase struct {
	Casing string
}

// TraitName implements symbol.Trait
func (StringCase) TraitName() string { return "case" }

// Evaluate implements Condition. An empty value with a casing rule set is a
// misuse, as is a non-string value.
func (c StringCase) Evaluate(ctx Context) (bool, string, error) {
	if c.Casing == "" {
		return true, "", nil
	}

	var caser cases.Caser
	switch strings.ToLower(c.Casing) {
	case CaseLower:
		caser = cases.Lower(language.Und)
	case CaseUpper:
		caser = cases.Upper(language.Und)
	default:
		derrors.Misuse(ctx.Symbol.Name(), "unknown casing %q", c.Casing)
	}

	var values []string
	if ctx.Value != nil {
		switch v := ctx.Value.Value.(type) {
		case string:
			if v != "" {
				values = []string{v}
			}
		case []string:
			values = v
		case nil:
		default:
			derrors.Misuse(ctx.Symbol.Name(), "casing condition on non-string value of type %T", v)
		}
	}
	if len(values) == 0 {
		derrors.Misuse(ctx.Symbol.Name(), "casing rule %q is set but no value was supplied", c.Casing)
	}

	for _, v := range values {
		if caser.String(v) != v {
			return false, fmt.Sprintf("The value '%s' for '%s' must be %s case.", v, ctx.Symbol.Name(), strings.ToLower(c.Casing)), nil
		}
	}
	return true, "", nil
}

// InclusiveGroup is a command-level condition: when the user supplies any
// member, every member must be supplied.
type InclusiveGroup struct {
	Members []*symbol.Symbol
}

// TraitName implements symbol.Trait
func (InclusiveGroup) TraitName() string { return "group" }

// Evaluate implements Condition
func (c InclusiveGroup) Evaluate(ctx Context) (bool, string, error) {
	if ctx.Symbol.Kind() != symbol.KindCommand {
		derrors.Misuse(ctx.Symbol.Name(), "inclusive group attached to a %s", ctx.Symbol.Kind())
	}

	var missing []string
	for _, m := range c.Members {
		if !ctx.Result.WasSupplied(m) {
			missing = append(missing, "'"+m.Name()+"'")
		}
	}
	if len(missing) == 0 || len(missing) == len(c.Members) {
		return true, "", nil
	}

	names := make([]string, len(c.Members))
	for i, m := range c.Members {
		names[i] = m.Name()
	}
	verb := "is"
	if len(missing) > 1 {
		verb = "are"
	}
	return false, fmt.Sprintf("Options %s must be used together: %s %s missing.",
		strings.Join(names, ", "), strings.Join(missing, ", "), verb), nil
}

// Custom wraps a caller-supplied check
type Custom struct {
	Name  string
	Check func(ctx Context) (bool, string, error)
}

// TraitName implements symbol.Trait
func (c Custom) TraitName() string { return c.Name }

// Evaluate implements Condition
func (c Custom) Evaluate(ctx Context) (bool, string, error) {
	if c.Check == nil {
		return true, "", nil
	}
	return c.Check(ctx)
}

// AllCondition tests if all sub-conditions are true (AND logic)
type AllCondition struct {
	Conditions []Condition
}

// TraitName implements symbol.Trait
func (AllCondition) TraitName() string { return "all" }

// Evaluate implements Condition
func (c AllCondition) Evaluate(ctx Context) (bool, string, error) {
	var failed []string

	for _, cond := range c.Conditions {
		ok, msg, err := cond.Evaluate(ctx)
		if err != nil {
			return false, "", err
		}
		if !ok {
			failed = append(failed, msg)
		}
	}

	if len(failed) > 0 {
		return false, strings.Join(failed, " "), nil
	}
	return true, "", nil
}

// AnyCondition tests if at least one sub-condition is true (OR logic)
type AnyCondition struct {
	Conditions []Condition
}

// TraitName implements symbol.Trait
func (AnyCondition) TraitName() string { return "any" }

// Evaluate implements Condition
func (c AnyCondition) Evaluate(ctx Context) (bool, string, error) {
	if len(c.Conditions) == 0 {
		return true, "", nil
	}

	var all []string
	for _, cond := range c.Conditions {
		ok, msg, err := cond.Evaluate(ctx)
		if err != nil {
			return false, "", err
		}
		if ok {
			return true, "", nil
		}
		all = append(all, msg)
	}

	return false, "None of the following conditions were met: " + strings.Join(all, " "), nil
}

// elements flattens a scalar or typed slice value into its elements
func elements(v any) []any {
	switch vs := v.(type) {
	case []int:
		return toAny(vs)
	case []float64:
		return toAny(vs)
	case []string:
		return toAny(vs)
	case []time.Duration:
		return toAny(vs)
	}
	return []any{v}
}

func toAny[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// compare orders two values of the same ordered type. ok is false when the
// types differ.
func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y), true
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y), true
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y), true
		}
	case time.Duration:
		if y, ok := b.(time.Duration); ok {
			return cmp.Compare(x, y), true
		}
	}
	return 0, false
}
