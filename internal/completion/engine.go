package completion

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/NikitaCOEUR/argot/internal/parser"
	"github.com/NikitaCOEUR/argot/internal/token"
)

// Engine computes completions against one parser's tree. It keeps no state
// between requests.
type Engine struct {
	parser     *parser.Parser
	completers []Completer

	// Fuzzy matches the word anywhere in order instead of as a prefix, and
	// ranks items by match distance
	Fuzzy bool
}

// NewEngine creates an engine with the built-in completers, followed by extra
func NewEngine(p *parser.Parser, extra ...Completer) *Engine {
	completers := []Completer{
		valueCompleter{},
		commandCompleter{},
		optionCompleter{},
	}
	return &Engine{
		parser:     p,
		completers: append(completers, extra...),
	}
}

// TextContext builds a context from a raw line. A negative cursor means the
// end of the line. A cursor past the end behaves like a trailing space: the
// word to complete is empty.
//
// The word is the token holding the cursor, so it follows the tokenizer's
// quoting, and the value of "--opt=value" is completed on its own.
func (e *Engine) TextContext(line string, cursor int) Context {
	if cursor < 0 {
		cursor = len(line)
	}

	if cursor > len(line) {
		return Context{
			Cursor: cursor,
			Line:   line,
			Span:   token.Position{Start: len(line)},
			Result: e.parser.ParseLine(line),
		}
	}

	tokens := token.TokenizeString(line, e.parser.TokenConfig())
	preceding := 0
	for i, t := range tokens {
		if t.Position.Start <= cursor && cursor <= t.Position.End() {
			return Context{
				WordToComplete: t.Text,
				Cursor:         cursor,
				Line:           line,
				Span:           t.Position,
				Result:         e.parser.ParseTokens(tokens[:i], line[:t.Position.Start]),
			}
		}
		if t.Position.End() < cursor {
			preceding = i + 1
		}
	}

	return Context{
		Cursor: cursor,
		Line:   line,
		Span:   token.Position{Start: cursor},
		Result: e.parser.ParseTokens(tokens[:preceding], line[:cursor]),
	}
}

// TokenContext builds a context from a pre-split argument vector. The last
// argument is the word to complete unless it already is a known alias, in
// which case the next token is completed. For "--opt=partial" the value is
// completed and the insert texts keep the "--opt=" part.
func (e *Engine) TokenContext(args []string) Context {
	if len(args) == 0 {
		return Context{Cursor: -1, Result: e.parser.Parse(nil)}
	}

	tokens := token.Tokenize(args, e.parser.TokenConfig())
	if n := len(tokens); n >= 2 && tokens[n-1].Type == token.OptionArgument {
		last := args[len(args)-1]
		return Context{
			WordToComplete: tokens[n-1].Text,
			Cursor:         -1,
			Result:         e.parser.ParseTokens(tokens[:n-1], ""),
			InsertPrefix:   last[:len(last)-len(tokens[n-1].Text)],
		}
	}

	last := args[len(args)-1]
	preceding := e.parser.Parse(args[:len(args)-1])
	if preceding.Command().ResolveInScope(last) != nil {
		return Context{Cursor: -1, Result: e.parser.Parse(args)}
	}
	return Context{WordToComplete: last, Cursor: -1, Result: preceding}
}

// Complete returns the candidates for ctx that match its word. The sequence
// is computed afresh each time it is ranged over.
func (e *Engine) Complete(ctx Context) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, item := range e.Filter(e.candidates(ctx), ctx.WordToComplete) {
			item.InsertText = ctx.InsertPrefix + item.InsertText
			if !yield(item) {
				return
			}
		}
	}
}

// CompleteLine is Complete over a text context
func (e *Engine) CompleteLine(line string, cursor int) iter.Seq[Item] {
	return e.Complete(e.TextContext(line, cursor))
}

// CompleteArgs is Complete over a token context
func (e *Engine) CompleteArgs(args []string) iter.Seq[Item] {
	return e.Complete(e.TokenContext(args))
}

func (e *Engine) candidates(ctx Context) []Item {
	var items []Item
	seen := make(map[string]struct{})
	for _, c := range e.completers {
		if !c.Supports(ctx) {
			continue
		}
		for _, item := range c.Complete(ctx) {
			if _, dup := seen[item.Label]; dup {
				continue
			}
			seen[item.Label] = struct{}{}
			items = append(items, item)
		}
	}
	return items
}

// Filter keeps the items matching word, ordered by SortText. Prefix matching
// is case-sensitive; fuzzy matching ignores case.
func (e *Engine) Filter(items []Item, word string) []Item {
	var filtered []Item
	switch {
	case word == "":
		filtered = slices.Clone(items)
	case e.Fuzzy:
		filtered = fuzzyFilter(items, word)
	default:
		for _, item := range items {
			if strings.HasPrefix(item.Label, word) {
				filtered = append(filtered, item)
			}
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].SortText < filtered[j].SortText
	})
	return filtered
}

func fuzzyFilter(items []Item, word string) []Item {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}

	ranks := fuzzy.RankFindFold(word, labels)
	out := make([]Item, 0, len(ranks))
	for _, r := range ranks {
		item := items[r.OriginalIndex]
		item.SortText = fmt.Sprintf("%04d %s", r.Distance, item.Label)
		out = append(out, item)
	}
	return out
}

// Collect drains a completion sequence into a slice
func Collect(seq iter.Seq[Item]) []Item {
	return slices.Collect(seq)
}

// Labels returns the label of each item
func Labels(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}
