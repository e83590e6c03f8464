package grammar

import (
	"fmt"

	"github.com/NikitaCOEUR/argot/internal/condition"
	"github.com/NikitaCOEUR/argot/internal/symbol"
)

// parseCondition converts a ConditionDecl into a Condition. owner is the
// symbol the condition is attached to; bound references resolve from it.
func parseCondition(decl *ConditionDecl, owner *symbol.Symbol) (condition.Condition, error) {
	if decl == nil {
		return nil, fmt.Errorf("conditions is nil")
	}

	atomicCount := countAtomicConditions(decl)
	compositeCount := countCompositeConditions(decl)

	if err := validateConditions(atomicCount, compositeCount, decl); err != nil {
		return nil, err
	}

	// Parse composite conditions first
	if len(decl.All) > 0 {
		return parseAll(decl.All, owner)
	}
	if len(decl.Any) > 0 {
		return parseAny(decl.Any, owner)
	}

	conditions, err := collectAtomicConditions(decl, owner)
	if err != nil {
		return nil, err
	}
	if len(conditions) > 1 {
		return condition.AllCondition{Conditions: conditions}, nil
	}
	return conditions[0], nil
}

// countAtomicConditions counts the atomic conditions in a ConditionDecl
func countAtomicConditions(decl *ConditionDecl) int {
	count := 0
	if decl.Range != nil {
		count++
	}
	if decl.Case != "" {
		count++
	}
	return count
}

// countCompositeConditions counts the composite conditions in a ConditionDecl
func countCompositeConditions(decl *ConditionDecl) int {
	count := 0
	if len(decl.All) > 0 {
		count++
	}
	if len(decl.Any) > 0 {
		count++
	}
	return count
}

// validateConditions validates the condition structure
func validateConditions(atomicCount, compositeCount int, decl *ConditionDecl) error {
	if atomicCount == 0 && compositeCount == 0 {
		return fmt.Errorf("conditions block must specify at least one condition")
	}

	if atomicCount > 0 && compositeCount > 0 {
		return fmt.Errorf("cannot mix atomic conditions (range, case) with composite conditions (all, any) at the same level")
	}

	if len(decl.All) > 0 && len(decl.Any) > 0 {
		return fmt.Errorf("cannot have both 'all' and 'any' at the same level")
	}

	return nil
}

// collectAtomicConditions builds the atomic conditions of decl in a fixed
// order: range, then case
func collectAtomicConditions(decl *ConditionDecl, owner *symbol.Symbol) ([]condition.Condition, error) {
	var conditions []condition.Condition

	if decl.Range != nil {
		if !owner.ValueType().Ordered() {
			return nil, fmt.Errorf("range condition requires an ordered type, %s is %s", owner.Name(), owner.ValueType())
		}
		lower, err := buildSource(decl.Range.Lower, owner)
		if err != nil {
			return nil, fmt.Errorf("range lower: %w", err)
		}
		upper, err := buildSource(decl.Range.Upper, owner)
		if err != nil {
			return nil, fmt.Errorf("range upper: %w", err)
		}
		conditions = append(conditions, condition.Range{Lower: lower, Upper: upper})
	}
	if decl.Case != "" {
		if owner.ValueType() != symbol.TypeString {
			return nil, fmt.Errorf("case condition requires a string type, %s is %s", owner.Name(), owner.ValueType())
		}
		conditions = append(conditions, condition.StringCase{Casing: decl.Case})
	}

	return conditions, nil
}

// parseAll parses a list of ConditionDecl into an AllCondition
func parseAll(decls []ConditionDecl, owner *symbol.Symbol) (condition.Condition, error) {
	conditions, err := parseEach("all", decls, owner)
	if err != nil {
		return nil, err
	}
	return condition.AllCondition{Conditions: conditions}, nil
}

// parseAny parses a list of ConditionDecl into an AnyCondition
func parseAny(decls []ConditionDecl, owner *symbol.Symbol) (condition.Condition, error) {
	conditions, err := parseEach("any", decls, owner)
	if err != nil {
		return nil, err
	}
	return condition.AnyCondition{Conditions: conditions}, nil
}

func parseEach(kind string, decls []ConditionDecl, owner *symbol.Symbol) ([]condition.Condition, error) {
	if len(decls) == 0 {
		return nil, fmt.Errorf("%s: must contain at least one condition", kind)
	}

	conditions := make([]condition.Condition, 0, len(decls))
	for i := range decls {
		cond, err := parseCondition(&decls[i], owner)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}

// parseGroup resolves the member names of an inclusive group declared on cmd
func parseGroup(names []string, cmd *symbol.Symbol) (condition.Condition, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("group needs at least two options, got %d", len(names))
	}
	members := make([]*symbol.Symbol, 0, len(names))
	for _, name := range names {
		opt := cmd.ResolveInScope(name)
		if opt == nil || opt.Kind() != symbol.KindOption {
			return nil, fmt.Errorf("group member %q is not an option of %s", name, cmd.Name())
		}
		members = append(members, opt)
	}
	return condition.InclusiveGroup{Members: members}, nil
}
