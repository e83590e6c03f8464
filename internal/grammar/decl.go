// Package grammar loads declarative grammar files and builds symbol trees from them.
package grammar

// CommandDecl declares a command. The top level of a grammar file is the root
// command.
type CommandDecl struct {
	Name               string          `koanf:"name" jsonschema:"required,minLength=1,description=Command name"`
	Aliases            []string        `koanf:"aliases"`
	Description        string          `koanf:"description"`
	Hidden             bool            `koanf:"hidden"`
	AllowUnmatched     bool            `koanf:"allow_unmatched"`
	SubcommandRequired bool            `koanf:"subcommand_required"`
	Options            []OptionDecl    `koanf:"options"`
	Arguments          []ArgumentDecl  `koanf:"arguments"`
	Commands           []CommandDecl   `koanf:"commands"`
	Directives         []DirectiveDecl `koanf:"directives"`
	Groups             [][]string      `koanf:"groups"` // Options that must be used together
}

// OptionDecl declares an option
type OptionDecl struct {
	Name        string         `koanf:"name" jsonschema:"required,minLength=1,description=Option name including its prefix (--name)"`
	Aliases     []string       `koanf:"aliases"`
	Description string         `koanf:"description"`
	Hidden      bool           `koanf:"hidden"`
	Type        string         `koanf:"type" jsonschema:"enum=string,enum=bool,enum=int,enum=float,enum=duration"`
	List        bool           `koanf:"list"`
	Arity       string         `koanf:"arity" jsonschema:"pattern=^[0-9]+(\\.\\.([0-9]+|\\*))?$"` // "1", "0..1", "1..*"
	Required    bool           `koanf:"required"`
	Recursive   bool           `koanf:"recursive"`
	Default     *SourceDecl    `koanf:"default"`
	AcceptOnly  []string       `koanf:"accept_only"`
	Completions []string       `koanf:"completions"`
	Conditions  *ConditionDecl `koanf:"conditions"`
}

// ArgumentDecl declares a positional argument
type ArgumentDecl struct {
	Name        string         `koanf:"name" jsonschema:"required,minLength=1,description=Argument name"`
	Description string         `koanf:"description"`
	Hidden      bool           `koanf:"hidden"`
	Type        string         `koanf:"type" jsonschema:"enum=string,enum=bool,enum=int,enum=float,enum=duration"`
	List        bool           `koanf:"list"`
	Arity       string         `koanf:"arity" jsonschema:"pattern=^[0-9]+(\\.\\.([0-9]+|\\*))?$"`
	Default     *SourceDecl    `koanf:"default"`
	AcceptOnly  []string       `koanf:"accept_only"`
	Completions []string       `koanf:"completions"`
	Conditions  *ConditionDecl `koanf:"conditions"`
}

// DirectiveDecl declares a directive accepted before ordinary input
type DirectiveDecl struct {
	Name        string `koanf:"name" jsonschema:"required,minLength=1,description=Directive name without brackets"`
	Description string `koanf:"description"`
}

// SourceDecl declares a deferred value. Exactly one field is set.
type SourceDecl struct {
	Value    any          `koanf:"value"`
	Ref      string       `koanf:"ref"`      // Another option or argument, by alias
	Env      string       `koanf:"env"`      // Environment variable
	Template string       `koanf:"template"` // text/template rendered against the parse
	Fallback []SourceDecl `koanf:"fallback"`
}

// ConditionDecl declares value conditions. Atomic conditions (range, case)
// cannot be mixed with composite ones (all, any) at the same level.
type ConditionDecl struct {
	Range *RangeDecl      `koanf:"range"`
	Case  string          `koanf:"case" jsonschema:"enum=lower,enum=upper"`
	All   []ConditionDecl `koanf:"all"`
	Any   []ConditionDecl `koanf:"any"`
}

// RangeDecl declares exclusive bounds; either may be omitted
type RangeDecl struct {
	Lower *SourceDecl `koanf:"lower"`
	Upper *SourceDecl `koanf:"upper"`
}
