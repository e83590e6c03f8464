// Package parser matches a token stream against a symbol tree.
//
// Matching is a single left-to-right pass without backtracking. Problems never
// stop the pass: missing values, failed conversions and stray tokens are
// collected into Result.Errors so one call reports everything at once.
package parser

import (
	"github.com/NikitaCOEUR/argot/internal/derrors"
	"github.com/NikitaCOEUR/argot/internal/suggest"
	"github.com/NikitaCOEUR/argot/internal/symbol"
	"github.com/NikitaCOEUR/argot/internal/token"
)

// Config controls parsing. The zero value is ready to use.
type Config struct {
	// AllowSlashPrefix treats "/name" as option-like
	AllowSlashPrefix bool
	// DisableBundling turns off expansion of "-abc" into "-a -b -c"
	DisableBundling bool
	// LookupEnv reads environment variables for value sources; nil means os.LookupEnv
	LookupEnv func(string) (string, bool)
	// Suggest tunes the "did you mean" hint on unmatched tokens
	Suggest suggest.Options
}

// Parser parses input against one root command. It holds no per-parse state
// and can be used from several goroutines.
type Parser struct {
	root *symbol.Symbol
	cfg  Config
}

// New creates a parser for root, which must be a command
func New(root *symbol.Symbol, cfg Config) *Parser {
	if root == nil || root.Kind() != symbol.KindCommand {
		derrors.Misuse("parser", "root symbol must be a command")
	}
	return &Parser{root: root, cfg: cfg}
}

// Root returns the root command
func (p *Parser) Root() *symbol.Symbol {
	return p.root
}

// TokenConfig returns the tokenizer settings matching this parser
func (p *Parser) TokenConfig() token.Config {
	return token.Config{
		RootNames:        p.root.Aliases(),
		AllowSlashPrefix: p.cfg.AllowSlashPrefix,
	}
}

// Parse parses a pre-split argument vector
func (p *Parser) Parse(args []string) *Result {
	return p.ParseTokens(token.Tokenize(args, p.TokenConfig()), "")
}

// ParseLine parses an unsplit command line
func (p *Parser) ParseLine(line string) *Result {
	return p.ParseTokens(token.TokenizeString(line, p.TokenConfig()), line)
}

// ParseTokens parses an already tokenized input. line is kept as
// Result.CommandLineText and may be empty.
func (p *Parser) ParseTokens(tokens []token.Token, line string) *Result {
	res := newResult(p.root, p.cfg.LookupEnv)
	res.Tokens = tokens
	res.CommandLineText = line

	m := &matcher{
		cfg:     p.cfg,
		res:     res,
		command: p.root,
		args:    p.root.Arguments(),
	}
	for i, tok := range tokens {
		m.attachedNext = i+1 < len(tokens) && tokens[i+1].Type == token.OptionArgument
		m.next(tok)
	}
	m.finish()
	return res
}

type state int

const (
	atCommandScope state = iota
	consumingOptionArgument
	consumingPositionalArgument
	afterDoubleDash
)

type matcher struct {
	cfg   Config
	res   *Result
	state state

	started  bool
	afterDD  bool
	command  *symbol.Symbol
	args     []*symbol.Symbol
	argIndex int

	// slot is the open option or argument receiving values
	slot     *symbol.Symbol
	overflow bool
	// lastOption is the option opened by the previous token; an attached
	// OptionArgument binds to it
	lastOption *symbol.Symbol
	// attachedNext is set when the token after the current one is an
	// OptionArgument split off it
	attachedNext bool
}

func (m *matcher) next(tok token.Token) {
	prevOption := m.lastOption
	m.lastOption = nil

	if !m.started && tok.Type != token.Directive {
		m.started = true
		if m.isRootToken(tok) {
			return
		}
	}

	switch tok.Type {
	case token.Directive:
		m.directive(tok)
	case token.DoubleDash:
		m.closeSlot()
		m.afterDD = true
		m.state = afterDoubleDash
	case token.Unknown:
		m.positional(tok)
	case token.OptionArgument:
		if prevOption == nil {
			m.unmatched(tok)
			return
		}
		m.attach(prevOption, tok)
	case token.Option:
		m.option(tok)
	case token.CommandOrArgument:
		m.word(tok)
	default:
		m.unmatched(tok)
	}
}

func (m *matcher) isRootToken(tok token.Token) bool {
	root := m.res.RootCommand
	return tok.Type == token.CommandOrArgument && root.HasAlias(tok.Text) && root.Resolve(tok.Text) == nil
}

func (m *matcher) directive(tok token.Token) {
	name, value, hasValue := token.ParseDirective(tok.Text)
	m.res.Directives = append(m.res.Directives, Directive{
		Name:     name,
		Value:    value,
		HasValue: hasValue,
		Token:    tok,
		Symbol:   m.res.RootCommand.ResolveDirective(name),
	})
}

func (m *matcher) option(tok token.Token) {
	if sym := m.command.ResolveInScope(tok.Text); sym != nil {
		m.recognized(sym, tok)
		return
	}

	if !m.cfg.DisableBundling {
		if expanded, ok := m.bundle(tok); ok {
			for _, t := range expanded {
				m.openOption(m.command.ResolveInScope(t.Text))
			}
			return
		}
	}

	// "--unknown=value" is option syntax, so neither part is a value
	if m.attachedNext {
		m.unmatched(tok)
		return
	}
	m.value(tok)
}

func (m *matcher) word(tok token.Token) {
	if sym := m.command.ResolveInScope(tok.Text); sym != nil {
		m.recognized(sym, tok)
		return
	}
	m.value(tok)
}

func (m *matcher) recognized(sym *symbol.Symbol, tok token.Token) {
	switch sym.Kind() {
	case symbol.KindCommand:
		m.enterCommand(sym)
	case symbol.KindOption:
		m.openOption(sym)
	case symbol.KindArgument, symbol.KindDirective:
		// never indexed by alias
		m.value(tok)
	}
}

func (m *matcher) enterCommand(cmd *symbol.Symbol) {
	m.closeSlot()
	m.command = cmd
	m.args = cmd.Arguments()
	m.argIndex = 0
	m.res.Commands = append(m.res.Commands, cmd)
}

func (m *matcher) openOption(opt *symbol.Symbol) {
	m.closeSlot()

	vr := m.binding(opt)
	m.slot = opt
	m.state = consumingOptionArgument
	m.lastOption = opt

	limit := opt.Arity().Max
	m.overflow = limit > 0 && len(vr.Tokens) >= limit
	if limit == 0 {
		m.closeSlot()
	}
}

// attach binds an OptionArgument split off "--opt=value" to its option
func (m *matcher) attach(opt *symbol.Symbol, tok token.Token) {
	if m.slot != opt {
		m.unmatched(tok)
		return
	}
	if m.overflow {
		m.tooMany(opt, tok)
		return
	}
	vr := m.binding(opt)
	vr.Tokens = append(vr.Tokens, tok)
	if len(vr.Tokens) >= opt.Arity().Max {
		m.closeSlot()
	}
}

// value handles a token that is not a recognized symbol
func (m *matcher) value(tok token.Token) {
	if m.state == consumingOptionArgument {
		if m.offer(m.slot, tok) {
			return
		}
		m.closeSlot()
	}
	m.positional(tok)
}

// offer tries to give tok to the open option. Once the option has its
// minimum, it only takes tokens that look like valid values for it.
func (m *matcher) offer(opt *symbol.Symbol, tok token.Token) bool {
	vr := m.binding(opt)
	arity := opt.Arity()

	if m.overflow {
		if !acceptsValue(opt, tok.Text) {
			return false
		}
		m.tooMany(opt, tok)
		return true
	}
	if len(vr.Tokens) >= arity.Min && !acceptsValue(opt, tok.Text) {
		return false
	}

	vr.Tokens = append(vr.Tokens, tok)
	if len(vr.Tokens) >= arity.Max {
		m.closeSlot()
	}
	return true
}

func (m *matcher) tooMany(opt *symbol.Symbol, tok token.Token) {
	m.res.AddError(newError(ErrTooManyArguments, opt, &tok,
		"Option '%s' expects at most %d argument(s) but more were provided.", opt.Name(), opt.Arity().Max))
	m.closeSlot()
}

func (m *matcher) positional(tok token.Token) {
	for m.argIndex < len(m.args) {
		arg := m.args[m.argIndex]
		if capacity(m.res, arg) > 0 {
			vr := m.binding(arg)
			vr.Tokens = append(vr.Tokens, tok)
			m.slot = arg
			if !m.afterDD {
				m.state = consumingPositionalArgument
			}
			if capacity(m.res, arg) == 0 {
				m.closeSlot()
			}
			return
		}
		m.argIndex++
	}
	m.unmatched(tok)
}

func (m *matcher) closeSlot() {
	if m.slot == nil {
		return
	}
	sym := m.slot
	m.slot = nil
	m.overflow = false
	if sym.Kind() == symbol.KindArgument {
		m.argIndex++
	}
	if m.afterDD {
		m.state = afterDoubleDash
	} else {
		m.state = atCommandScope
	}
	m.convert(sym)
}

func (m *matcher) convert(sym *symbol.Symbol) {
	vr := m.binding(sym)
	if len(vr.Tokens) == 0 && sym.ValueType() == symbol.TypeBool && !sym.IsList() {
		vr.Source = SourceImplicit
	} else {
		vr.Source = SourceUser
	}

	v, err := sym.Convert(vr.Texts())
	if err != nil {
		if vr.Err == nil || vr.Err.Error() != err.Error() {
			var tok *token.Token
			if n := len(vr.Tokens); n > 0 {
				tok = &vr.Tokens[n-1]
			}
			m.res.AddError(&Error{Message: err.Error(), Kind: ErrConversion, Symbol: sym, Token: tok})
		}
		vr.Value = nil
		vr.Err = err
		return
	}
	vr.Value = v
	vr.Err = nil
}

func (m *matcher) unmatched(tok token.Token) {
	m.res.Unmatched = append(m.res.Unmatched, tok)
}

func (m *matcher) binding(sym *symbol.Symbol) *ValueResult {
	if vr, ok := m.res.Values.Get(sym); ok {
		return vr
	}
	vr := &ValueResult{Symbol: sym, Source: SourceUser}
	m.res.Values.Set(sym, vr)
	return vr
}

// bundle expands "-abc" into "-a", "-b", "-c" when each letter is a
// single-character option in scope
func (m *matcher) bundle(tok token.Token) ([]token.Token, bool) {
	text := tok.Text
	if len(text) < 3 || text[0] != '-' || text[1] == '-' {
		return nil, false
	}

	out := make([]token.Token, 0, len(text)-1)
	for i := 1; i < len(text); i++ {
		alias := "-" + text[i:i+1]
		sym := m.command.ResolveInScope(alias)
		if sym == nil || sym.Kind() != symbol.KindOption {
			return nil, false
		}
		pos := token.Position{Start: tok.Position.Start + i, Length: 1}
		if i == 1 {
			pos = token.Position{Start: tok.Position.Start, Length: 2}
		}
		out = append(out, token.Token{Text: alias, Type: token.Option, Position: pos})
	}
	return out, true
}

func (m *matcher) finish() {
	if m.state == consumingOptionArgument && !m.overflow && capacity(m.res, m.slot) > 0 {
		m.res.openOption = m.slot
	}
	for i := m.argIndex; i < len(m.args); i++ {
		if capacity(m.res, m.args[i]) > 0 {
			m.res.nextArgument = m.args[i]
			break
		}
	}
	m.closeSlot()

	m.applyDefaults()
	m.checkArity()
	m.reportUnmatched()

	if leaf := m.res.Command(); leaf.SubcommandRequired() {
		m.res.AddError(newError(ErrRequiredCommand, leaf, nil, "Required command was not provided."))
	}
}

// applyDefaults binds defaults for every unsupplied option and argument on
// the matched path. Defaults resolve against the bindings made so far, so a
// default may refer to a value the user typed.
func (m *matcher) applyDefaults() {
	for _, cmd := range m.res.Commands {
		for _, child := range cmd.Children() {
			if child.Kind() != symbol.KindOption && child.Kind() != symbol.KindArgument {
				continue
			}
			if _, bound := m.res.Values.Get(child); bound || child.Default() == nil {
				continue
			}
			v, ok, err := child.ResolveDefault(m.res)
			if err != nil {
				m.res.AddError(newError(ErrDefault, child, nil, "%v", err))
				continue
			}
			if ok {
				m.res.Values.Set(child, &ValueResult{Symbol: child, Source: SourceDefault, Value: v})
			}
		}
	}
}

func (m *matcher) checkArity() {
	for _, cmd := range m.res.Commands {
		for _, child := range cmd.Children() {
			vr, bound := m.res.Values.Get(child)
			switch child.Kind() {
			case symbol.KindOption:
				if !bound {
					if child.IsRequired() {
						m.res.AddError(newError(ErrRequiredOption, child, nil, "Option '%s' is required.", child.Name()))
					}
					continue
				}
				if vr.Source != SourceDefault && len(vr.Tokens) < child.Arity().Min {
					m.res.AddError(newError(ErrMissingArgument, child, nil,
						"Required argument missing for option: '%s'.", child.Name()))
				}
			case symbol.KindArgument:
				if (!bound && child.Arity().Min > 0) || (bound && vr.Source != SourceDefault && len(vr.Tokens) < child.Arity().Min) {
					m.res.AddError(newError(ErrMissingArgument, child, nil,
						"Required argument missing for command: '%s'.", cmd.Name()))
				}
			case symbol.KindCommand, symbol.KindDirective:
			}
		}
	}
}

func (m *matcher) reportUnmatched() {
	leaf := m.res.Command()
	if !leaf.TreatUnmatchedTokensAsErrors() {
		return
	}

	candidates := Candidates(leaf)
	for i := range m.res.Unmatched {
		tok := &m.res.Unmatched[i]
		e := newError(ErrUnmatchedToken, nil, tok, "Unrecognized command or argument '%s'.", tok.Text)
		if tok.Type != token.Unknown {
			if best := m.cfg.Suggest.Best(tok.Text, candidates); best != "" {
				e.Message += " Did you mean '" + best + "'?"
			}
		}
		m.res.AddError(e)
	}
}

// Candidates lists the visible aliases usable while cmd is the current
// command: its subcommands, its options and recursive ancestor options.
func Candidates(cmd *symbol.Symbol) []string {
	var out []string
	for _, sub := range cmd.Subcommands() {
		if !sub.Hidden() {
			out = append(out, sub.Aliases()...)
		}
	}
	for _, opt := range cmd.ScopeOptions() {
		if !opt.Hidden() {
			out = append(out, opt.Aliases()...)
		}
	}
	return out
}

// capacity is how many more tokens sym can take
func capacity(res *Result, sym *symbol.Symbol) int {
	n := 0
	if vr, ok := res.Values.Get(sym); ok {
		n = len(vr.Tokens)
	}
	return sym.Arity().Max - n
}

func acceptsValue(sym *symbol.Symbol, text string) bool {
	if allowed := sym.AcceptOnlyFrom(); len(allowed) > 0 {
		for _, a := range allowed {
			if a == text {
				return true
			}
		}
		return false
	}
	if sym.ValueType() == symbol.TypeString {
		return true
	}
	_, err := sym.ValueType().Parse(text)
	return err == nil
}

