// Package completion computes the legal next tokens for partial command-line input.
package completion

import (
	"fmt"
	"strings"

	"github.com/NikitaCOEUR/argot/internal/parser"
	"github.com/NikitaCOEUR/argot/internal/symbol"
	"github.com/NikitaCOEUR/argot/internal/token"
)

// ItemKind tells what a completion item completes
type ItemKind int

const (
	// KindValue is a value for an option or argument
	KindValue ItemKind = iota
	// KindCommand is a subcommand name or alias
	KindCommand
	// KindOption is an option alias
	KindOption
)

func (k ItemKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindCommand:
		return "command"
	case KindOption:
		return "option"
	}
	return fmt.Sprintf("ItemKind(%d)", int(k))
}

// Item is a single completion candidate
type Item struct {
	Label         string   // Text shown to the user
	SortText      string   // Key items are ordered by
	InsertText    string   // Text inserted in place of the word, quoted when needed
	Documentation string   // Optional description/help text
	Kind          ItemKind // What the item completes
}

func newItem(label, doc string, kind ItemKind) Item {
	insert := label
	if label == "" || strings.ContainsAny(label, " \t") {
		insert = `"` + label + `"`
	}
	return Item{Label: label, SortText: label, InsertText: insert, Documentation: doc, Kind: kind}
}

// Context is one completion request
type Context struct {
	// WordToComplete is the partial word under the cursor, empty for "next token"
	WordToComplete string
	// Cursor is the byte offset in Line, or -1 for token contexts
	Cursor int
	// Line is the raw command line of a text context
	Line string
	// Span is where WordToComplete sits in Line; zero for token contexts
	Span token.Position
	// Result is the parse of the input preceding the word
	Result *parser.Result
	// InsertPrefix is put in front of every InsertText; it holds "--opt="
	// when a token context completes an attached value
	InsertPrefix string
}

// IsText reports whether the context came from a raw line with a cursor
func (c Context) IsText() bool {
	return c.Cursor >= 0
}

// NeedsValue reports whether the open option has not reached its minimum,
// so only its values can follow
func (c Context) NeedsValue() bool {
	open := c.Result.OpenOption()
	if open == nil {
		return false
	}
	vr, ok := c.Result.Get(open)
	return !ok || len(vr.Tokens) < open.Arity().Min
}

// Completer is one source of candidates
type Completer interface {
	// Supports returns true if this completer has anything to offer in ctx
	Supports(ctx Context) bool

	// Complete returns unfiltered candidates for ctx
	Complete(ctx Context) []Item
}

// commandCompleter offers the current command's visible subcommands
type commandCompleter struct{}

func (commandCompleter) Supports(ctx Context) bool {
	return !ctx.NeedsValue()
}

func (commandCompleter) Complete(ctx Context) []Item {
	var items []Item
	for _, sub := range ctx.Result.Command().Subcommands() {
		if sub.Hidden() {
			continue
		}
		for _, alias := range sub.Aliases() {
			items = append(items, newItem(alias, sub.Description(), KindCommand))
		}
	}
	return items
}

// optionCompleter offers options in scope that can still take values
type optionCompleter struct{}

func (optionCompleter) Supports(ctx Context) bool {
	return !ctx.NeedsValue()
}

func (optionCompleter) Complete(ctx Context) []Item {
	var items []Item
	for _, opt := range ctx.Result.Command().ScopeOptions() {
		if opt.Hidden() || exhausted(ctx.Result, opt) {
			continue
		}
		for _, alias := range opt.Aliases() {
			items = append(items, newItem(alias, opt.Description(), KindOption))
		}
	}
	return items
}

// exhausted reports whether the user already gave opt everything it accepts
func exhausted(res *parser.Result, opt *symbol.Symbol) bool {
	if !res.WasSupplied(opt) {
		return false
	}
	if !opt.IsList() {
		return true
	}
	vr, _ := res.Get(opt)
	return len(vr.Tokens) >= opt.Arity().Max
}

// valueCompleter offers values for the open option, or for the next
// positional argument when no option is open
type valueCompleter struct{}

func (valueCompleter) Supports(ctx Context) bool {
	return valueTarget(ctx) != nil
}

func (valueCompleter) Complete(ctx Context) []Item {
	target := valueTarget(ctx)
	var items []Item
	for _, v := range Values(target, ctx.WordToComplete) {
		items = append(items, newItem(v, target.Description(), KindValue))
	}
	return items
}

func valueTarget(ctx Context) *symbol.Symbol {
	if open := ctx.Result.OpenOption(); open != nil {
		return open
	}
	return ctx.Result.NextArgument()
}

// Values lists the candidate values of s: its completion source, else its
// accepted values, else true/false for bools.
func Values(s *symbol.Symbol, wordToComplete string) []string {
	if src := s.Completions(); src != nil {
		return src.Values(wordToComplete)
	}
	if allowed := s.AcceptOnlyFrom(); len(allowed) > 0 {
		return allowed
	}
	if s.ValueType() == symbol.TypeBool {
		return []string{"true", "false"}
	}
	return nil
}
