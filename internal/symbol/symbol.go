// Package symbol defines the grammar tree: commands, options, arguments and
// directives, with their aliases, arities, value types, defaults and traits.
//
// A tree is built once and then only read. Every Add* call validates its input
// immediately and returns a *derrors.GrammarError on a bad declaration, so a
// malformed grammar never reaches the parser. After construction a tree is
// safe to share between goroutines parsing concurrently.
package symbol

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/NikitaCOEUR/argot/internal/derrors"
)

// Kind is the variant tag of a Symbol
type Kind int

const (
	// KindCommand owns options, arguments and subcommands
	KindCommand Kind = iota
	// KindOption is a named, aliased flag with optional values
	KindOption
	// KindArgument is a positional value slot
	KindArgument
	// KindDirective is a bracketed "[name]" instruction ahead of ordinary input
	KindDirective
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindOption:
		return "option"
	case KindArgument:
		return "argument"
	case KindDirective:
		return "directive"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Unbounded is the Max of an arity without an upper limit
const Unbounded = math.MaxInt32

// Arity is the number of value tokens a symbol consumes
type Arity struct {
	Min int
	Max int
}

// Common arities
var (
	ArityZero       = Arity{Min: 0, Max: 0}
	ArityZeroOrOne  = Arity{Min: 0, Max: 1}
	ArityExactlyOne = Arity{Min: 1, Max: 1}
	ArityZeroOrMore = Arity{Min: 0, Max: Unbounded}
	ArityOneOrMore  = Arity{Min: 1, Max: Unbounded}
)

// IsUnbounded reports whether the arity has no upper limit
func (a Arity) IsUnbounded() bool {
	return a.Max >= Unbounded
}

func (a Arity) String() string {
	upper := fmt.Sprint(a.Max)
	if a.IsUnbounded() {
		upper = "*"
	}
	if a.Min == a.Max {
		return upper
	}
	return fmt.Sprintf("%d..%s", a.Min, upper)
}

func (a Arity) validate() error {
	if a.Min < 0 || a.Max < 0 {
		return fmt.Errorf("arity %d..%d must not be negative", a.Min, a.Max)
	}
	if a.Min > a.Max {
		return fmt.Errorf("arity minimum %d exceeds maximum %d", a.Min, a.Max)
	}
	return nil
}

// Trait is a declaration attached to a symbol at build time and interpreted
// later, for example a value condition evaluated by the validation pipeline.
type Trait interface {
	TraitName() string
}

// CompletionSource yields candidate values for a symbol's value position
type CompletionSource interface {
	Values(wordToComplete string) []string
}

// StaticValues is a fixed list of completion candidates
type StaticValues []string

// Values implements CompletionSource
func (v StaticValues) Values(_ string) []string {
	return append([]string(nil), v...)
}

// CompletionFunc adapts a function into a CompletionSource
type CompletionFunc func(wordToComplete string) []string

// Values implements CompletionSource
func (f CompletionFunc) Values(wordToComplete string) []string {
	return f(wordToComplete)
}

// Symbol is a node of the grammar tree. Shared attributes live on the struct;
// kind-specific data lives in the command or option payload.
type Symbol struct {
	kind        Kind
	name        string
	aliases     []string
	description string
	hidden      bool

	arity       Arity
	valueType   ValueType
	list        bool
	defaultSrc  ValueSource
	acceptOnly  []string
	completions CompletionSource
	traits      []Trait

	parent  *Symbol
	command *commandData
	option  *optionData
}

type commandData struct {
	children    []*Symbol
	options     []*Symbol
	arguments   []*Symbol
	subcommands []*Symbol
	directives  []*Symbol
	index       map[string]*Symbol // normalized alias -> option or subcommand

	allowUnmatched     bool
	subcommandRequired bool
}

type optionData struct {
	required  bool
	recursive bool
}

// CommandSpec declares a command
type CommandSpec struct {
	Name        string
	Aliases     []string
	Description string
	Hidden      bool
	// AllowUnmatchedTokens keeps unmatched tokens out of the error list when
	// this command is the last one matched.
	AllowUnmatchedTokens bool
	// SubcommandRequired reports an error when this command is the last one matched.
	SubcommandRequired bool
	Traits             []Trait
}

// OptionSpec declares an option
type OptionSpec struct {
	Name           string
	Aliases        []string
	Description    string
	Hidden         bool
	Type           ValueType
	List           bool
	Arity          *Arity
	Required       bool
	Recursive      bool
	Default        ValueSource
	AcceptOnlyFrom []string
	Completions    CompletionSource
	Traits         []Trait
}

// ArgumentSpec declares a positional argument
type ArgumentSpec struct {
	Name           string
	Description    string
	Hidden         bool
	Type           ValueType
	List           bool
	Arity          *Arity
	Default        ValueSource
	AcceptOnlyFrom []string
	Completions    CompletionSource
	Traits         []Trait
}

// NewCommand builds a command symbol
func NewCommand(spec CommandSpec) (*Symbol, error) {
	s := &Symbol{
		kind:        KindCommand,
		name:        spec.Name,
		description: spec.Description,
		hidden:      spec.Hidden,
		arity:       ArityZero,
		traits:      append([]Trait(nil), spec.Traits...),
		command: &commandData{
			index:              make(map[string]*Symbol),
			allowUnmatched:     spec.AllowUnmatchedTokens,
			subcommandRequired: spec.SubcommandRequired,
		},
	}
	if err := s.initAliases(spec.Name, spec.Aliases); err != nil {
		return nil, err
	}
	return s, nil
}

// NewOption builds an option symbol. Without an explicit arity, bool options
// take 0..1 values, list options 1..*, everything else exactly one.
func NewOption(spec OptionSpec) (*Symbol, error) {
	arity := ArityExactlyOne
	switch {
	case spec.Arity != nil:
		arity = *spec.Arity
	case spec.List:
		arity = ArityOneOrMore
	case spec.Type == TypeBool:
		arity = ArityZeroOrOne
	}

	s := &Symbol{
		kind:        KindOption,
		name:        spec.Name,
		description: spec.Description,
		hidden:      spec.Hidden,
		arity:       arity,
		valueType:   spec.Type,
		list:        spec.List,
		defaultSrc:  spec.Default,
		acceptOnly:  append([]string(nil), spec.AcceptOnlyFrom...),
		completions: spec.Completions,
		traits:      append([]Trait(nil), spec.Traits...),
		option: &optionData{
			required:  spec.Required,
			recursive: spec.Recursive,
		},
	}
	if err := s.validateArity(); err != nil {
		return nil, err
	}
	if err := s.initAliases(spec.Name, spec.Aliases); err != nil {
		return nil, err
	}
	return s, nil
}

// NewArgument builds an argument symbol. Without an explicit arity, list
// arguments take 0..* values and everything else exactly one.
func NewArgument(spec ArgumentSpec) (*Symbol, error) {
	arity := ArityExactlyOne
	switch {
	case spec.Arity != nil:
		arity = *spec.Arity
	case spec.List:
		arity = ArityZeroOrMore
	}

	s := &Symbol{
		kind:        KindArgument,
		name:        spec.Name,
		description: spec.Description,
		hidden:      spec.Hidden,
		arity:       arity,
		valueType:   spec.Type,
		list:        spec.List,
		defaultSrc:  spec.Default,
		acceptOnly:  append([]string(nil), spec.AcceptOnlyFrom...),
		completions: spec.Completions,
		traits:      append([]Trait(nil), spec.Traits...),
	}
	if err := s.validateArity(); err != nil {
		return nil, err
	}
	if err := s.initAliases(spec.Name, nil); err != nil {
		return nil, err
	}
	return s, nil
}

// NewDirective builds a directive symbol, matched by "[name]" or "[name:value]"
func NewDirective(name, description string) (*Symbol, error) {
	s := &Symbol{
		kind:        KindDirective,
		name:        name,
		description: description,
		arity:       ArityZeroOrOne,
	}
	if err := s.initAliases(name, nil); err != nil {
		return nil, err
	}
	return s, nil
}

// MustCommand builds a command and adds children, panicking on any grammar error.
// It is meant for trees written literally in code.
func MustCommand(spec CommandSpec, children ...*Symbol) *Symbol {
	s, err := NewCommand(spec)
	if err != nil {
		panic(err)
	}
	for _, child := range children {
		if err := s.Add(child); err != nil {
			panic(err)
		}
	}
	return s
}

// MustOption builds an option, panicking on any grammar error
func MustOption(spec OptionSpec) *Symbol {
	s, err := NewOption(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// MustArgument builds an argument, panicking on any grammar error
func MustArgument(spec ArgumentSpec) *Symbol {
	s, err := NewArgument(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// MustDirective builds a directive, panicking on any grammar error
func MustDirective(name, description string) *Symbol {
	s, err := NewDirective(name, description)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Symbol) validateArity() error {
	if err := s.arity.validate(); err != nil {
		return derrors.NewGrammarError(s.name, err.Error())
	}
	if !s.list && s.arity.Max > 1 {
		return derrors.NewGrammarError(s.name, fmt.Sprintf("arity %s needs a list value type", s.arity))
	}
	return nil
}

func (s *Symbol) initAliases(name string, extra []string) error {
	if err := validateAlias(name); err != nil {
		return derrors.NewGrammarError(name, err.Error())
	}
	s.aliases = []string{name}
	for _, alias := range extra {
		if err := s.AddAlias(alias); err != nil {
			return err
		}
	}
	return nil
}

func validateAlias(alias string) error {
	if alias == "" {
		return fmt.Errorf("alias must not be empty")
	}
	if strings.IndexFunc(alias, unicode.IsSpace) >= 0 {
		return fmt.Errorf("alias %q must not contain whitespace", alias)
	}
	if strings.Trim(alias, "-/") == "" {
		return fmt.Errorf("alias %q is only a prefix", alias)
	}
	return nil
}

// AddAlias adds another name the symbol answers to. It fails on malformed
// aliases and on collisions with an existing sibling alias.
func (s *Symbol) AddAlias(alias string) error {
	if err := validateAlias(alias); err != nil {
		return derrors.NewGrammarError(s.name, err.Error())
	}
	key := Normalize(alias)
	for _, existing := range s.aliases {
		if Normalize(existing) == key {
			return derrors.NewGrammarError(s.name, fmt.Sprintf("duplicate alias %q", alias))
		}
	}
	if s.parent != nil && s.isIndexed() {
		if other, ok := s.parent.command.index[key]; ok && other != s {
			return derrors.NewGrammarError(s.name, fmt.Sprintf("alias %q collides with %s %q", alias, other.kind, other.name))
		}
		s.parent.command.index[key] = s
	}
	s.aliases = append(s.aliases, alias)
	return nil
}

// isIndexed reports whether the symbol is matched by alias inside its parent
func (s *Symbol) isIndexed() bool {
	return s.kind == KindOption || s.kind == KindCommand
}

// Add attaches a child to a command. The child's kind decides where it goes.
func (s *Symbol) Add(child *Symbol) error {
	if s.kind != KindCommand {
		return derrors.NewGrammarError(s.name, fmt.Sprintf("a %s cannot have children", s.kind))
	}
	if child == nil {
		return derrors.NewGrammarError(s.name, "child must not be nil")
	}
	if child.parent != nil {
		return derrors.NewGrammarError(child.name, fmt.Sprintf("already belongs to %q", child.parent.name))
	}

	switch child.kind {
	case KindCommand, KindOption:
		if err := s.checkCollisions(child); err != nil {
			return err
		}
		for _, alias := range child.aliases {
			s.command.index[Normalize(alias)] = child
		}
		if child.kind == KindCommand {
			s.command.subcommands = append(s.command.subcommands, child)
		} else {
			s.command.options = append(s.command.options, child)
		}
	case KindArgument:
		for _, arg := range s.command.arguments {
			if Normalize(arg.name) == Normalize(child.name) {
				return derrors.NewGrammarError(child.name, "duplicate argument name")
			}
			if arg.arity.IsUnbounded() {
				return derrors.NewGrammarError(child.name,
					fmt.Sprintf("cannot follow argument %q with unbounded arity", arg.name))
			}
		}
		s.command.arguments = append(s.command.arguments, child)
	case KindDirective:
		for _, d := range s.command.directives {
			if Normalize(d.name) == Normalize(child.name) {
				return derrors.NewGrammarError(child.name, "duplicate directive")
			}
		}
		s.command.directives = append(s.command.directives, child)
	default:
		return derrors.NewGrammarError(child.name, fmt.Sprintf("unsupported symbol kind %s", child.kind))
	}

	child.parent = s
	s.command.children = append(s.command.children, child)
	return nil
}

// AddOption attaches an option to a command
func (s *Symbol) AddOption(o *Symbol) error {
	if o != nil && o.kind != KindOption {
		return derrors.NewGrammarError(o.name, fmt.Sprintf("expected an option, got a %s", o.kind))
	}
	return s.Add(o)
}

// AddArgument attaches a positional argument to a command
func (s *Symbol) AddArgument(a *Symbol) error {
	if a != nil && a.kind != KindArgument {
		return derrors.NewGrammarError(a.name, fmt.Sprintf("expected an argument, got a %s", a.kind))
	}
	return s.Add(a)
}

// AddCommand attaches a subcommand to a command
func (s *Symbol) AddCommand(c *Symbol) error {
	if c != nil && c.kind != KindCommand {
		return derrors.NewGrammarError(c.name, fmt.Sprintf("expected a command, got a %s", c.kind))
	}
	return s.Add(c)
}

// AddDirective attaches a directive to a command
func (s *Symbol) AddDirective(d *Symbol) error {
	if d != nil && d.kind != KindDirective {
		return derrors.NewGrammarError(d.name, fmt.Sprintf("expected a directive, got a %s", d.kind))
	}
	return s.Add(d)
}

// AddTrait attaches a trait such as a value condition
func (s *Symbol) AddTrait(t Trait) {
	s.traits = append(s.traits, t)
}

// SetDefault replaces the default value source. Like every other mutator it
// belongs to the construction phase.
func (s *Symbol) SetDefault(src ValueSource) error {
	if s.kind != KindOption && s.kind != KindArgument {
		return derrors.NewGrammarError(s.name, fmt.Sprintf("a %s cannot have a default", s.kind))
	}
	s.defaultSrc = src
	return nil
}

func (s *Symbol) checkCollisions(child *Symbol) error {
	for _, alias := range child.aliases {
		if other, ok := s.command.index[Normalize(alias)]; ok {
			return derrors.NewGrammarError(child.name,
				fmt.Sprintf("alias %q collides with %s %q", alias, other.kind, other.name))
		}
	}
	return nil
}

// Normalize folds an alias for comparison: the prefix is kept, the rest is
// lower-cased and camelCase or snake_case words become kebab-case, so
// "--dryRun", "--DRY_RUN" and "--Dry-Run" all compare equal to "--dry-run".
func Normalize(alias string) string {
	p := 0
	for p < len(alias) && (alias[p] == '-' || alias[p] == '/') {
		p++
	}

	var b strings.Builder
	b.Grow(len(alias) + 4)
	b.WriteString(alias[:p])

	var prev rune
	for i, r := range alias[p:] {
		switch {
		case r == '_':
			b.WriteByte('-')
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}

// Resolve finds a direct option or subcommand by any alias, comparing
// normalized forms. It returns nil when nothing matches.
func (s *Symbol) Resolve(name string) *Symbol {
	if s.kind != KindCommand {
		return nil
	}
	return s.command.index[Normalize(name)]
}

// ResolveDirective finds a declared directive by name
func (s *Symbol) ResolveDirective(name string) *Symbol {
	if s.kind != KindCommand {
		return nil
	}
	key := Normalize(name)
	for _, d := range s.command.directives {
		if Normalize(d.name) == key {
			return d
		}
	}
	return nil
}

// HasAlias reports whether name is one of the symbol's aliases after normalization
func (s *Symbol) HasAlias(name string) bool {
	key := Normalize(name)
	for _, alias := range s.aliases {
		if Normalize(alias) == key {
			return true
		}
	}
	return false
}

// Kind returns the variant tag
func (s *Symbol) Kind() Kind { return s.kind }

// Name returns the canonical name
func (s *Symbol) Name() string { return s.name }

// Aliases returns all names including the canonical one, in declaration order
func (s *Symbol) Aliases() []string { return append([]string(nil), s.aliases...) }

// Description returns the help text
func (s *Symbol) Description() string { return s.description }

// Hidden reports whether the symbol is left out of completions and suggestions
func (s *Symbol) Hidden() bool { return s.hidden }

// Arity returns the value arity
func (s *Symbol) Arity() Arity { return s.arity }

// ValueType returns the element value type
func (s *Symbol) ValueType() ValueType { return s.valueType }

// IsList reports whether the symbol binds a slice
func (s *Symbol) IsList() bool { return s.list }

// Default returns the default value source, or nil
func (s *Symbol) Default() ValueSource { return s.defaultSrc }

// AcceptOnlyFrom returns the allowed values, or nil when any value is allowed
func (s *Symbol) AcceptOnlyFrom() []string { return append([]string(nil), s.acceptOnly...) }

// Completions returns the completion source, or nil
func (s *Symbol) Completions() CompletionSource { return s.completions }

// Traits returns the attached traits
func (s *Symbol) Traits() []Trait { return append([]Trait(nil), s.traits...) }

// Parent returns the owning command, or nil for a root
func (s *Symbol) Parent() *Symbol { return s.parent }

// Children returns options, arguments, subcommands and directives in declaration order
func (s *Symbol) Children() []*Symbol {
	if s.command == nil {
		return nil
	}
	return append([]*Symbol(nil), s.command.children...)
}

// Options returns the command's own options
func (s *Symbol) Options() []*Symbol {
	if s.command == nil {
		return nil
	}
	return append([]*Symbol(nil), s.command.options...)
}

// Arguments returns the command's positional arguments in slot order
func (s *Symbol) Arguments() []*Symbol {
	if s.command == nil {
		return nil
	}
	return append([]*Symbol(nil), s.command.arguments...)
}

// Subcommands returns the command's subcommands
func (s *Symbol) Subcommands() []*Symbol {
	if s.command == nil {
		return nil
	}
	return append([]*Symbol(nil), s.command.subcommands...)
}

// Directives returns the command's declared directives
func (s *Symbol) Directives() []*Symbol {
	if s.command == nil {
		return nil
	}
	return append([]*Symbol(nil), s.command.directives...)
}

// IsRequired reports whether an option must be supplied
func (s *Symbol) IsRequired() bool {
	return s.option != nil && s.option.required
}

// IsRecursive reports whether an option is visible in all descendant commands
func (s *Symbol) IsRecursive() bool {
	return s.option != nil && s.option.recursive
}

// TreatUnmatchedTokensAsErrors reports whether unmatched tokens are errors
// when this command is the last one matched. Defaults to true.
func (s *Symbol) TreatUnmatchedTokensAsErrors() bool {
	return s.command != nil && !s.command.allowUnmatched
}

// SubcommandRequired reports whether the command cannot be the last one matched
func (s *Symbol) SubcommandRequired() bool {
	return s.command != nil && s.command.subcommandRequired
}

// ScopeOptions returns the options usable while s is the current command:
// its own options followed by recursive options of its ancestors.
func (s *Symbol) ScopeOptions() []*Symbol {
	opts := s.Options()
	for p := s.parent; p != nil; p = p.parent {
		for _, o := range p.command.options {
			if o.IsRecursive() {
				opts = append(opts, o)
			}
		}
	}
	return opts
}

// ResolveInScope finds an option or subcommand usable while s is the current
// command, including recursive options of ancestors.
func (s *Symbol) ResolveInScope(name string) *Symbol {
	if found := s.Resolve(name); found != nil {
		return found
	}
	for p := s.parent; p != nil; p = p.parent {
		if found := p.Resolve(name); found != nil && found.IsRecursive() {
			return found
		}
	}
	return nil
}

// Path returns the names from the root down to s, joined by spaces
func (s *Symbol) Path() string {
	var parts []string
	for n := s; n != nil; n = n.parent {
		parts = append([]string{n.name}, parts...)
	}
	return strings.Join(parts, " ")
}

func (s *Symbol) describe() string {
	return fmt.Sprintf("%s %q", s.kind, s.name)
}

func (s *Symbol) String() string {
	return s.describe()
}
