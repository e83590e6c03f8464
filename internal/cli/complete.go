package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/NikitaCOEUR/argot/internal/completion"
	"github.com/NikitaCOEUR/argot/internal/render"
	"github.com/NikitaCOEUR/argot/internal/token"
	"github.com/NikitaCOEUR/argot/internal/trace"
)

// suggestDirective is the leading "[suggest]" or "[suggest:N]" word that asks
// for completions at byte offset N of the rest of the line
const suggestDirective = "suggest"

// CompleteParams contains parameters for the Complete command
type CompleteParams struct {
	Options
	Args     []string // Pre-split arguments; the last one is the word to complete
	Line     string   // Raw command line
	HasLine  bool
	Position int  // Cursor offset in Line; negative means the end
	Plain    bool // Print insert texts only, for shell scripts
}

// Complete prints the completions for the input
func Complete(ctx context.Context, params CompleteParams) error {
	s, err := open(ctx, params.Options)
	if err != nil {
		return err
	}
	defer s.done()

	items := render.FromItems(s.complete(ctx, params))
	if params.Plain {
		for i := range items {
			items[i].Documentation = ""
		}
		return render.Write(s.opts.out(), render.FormatText, items)
	}
	return s.write(items)
}

func (s *session) complete(ctx context.Context, params CompleteParams) []completion.Item {
	var c completion.Context
	trace.WithRegion(ctx, "completionContext", func() {
		switch {
		case params.HasLine:
			line, cursor := params.Line, params.Position
			if rest, at, ok := stripSuggest(line); ok {
				line, cursor = rest, at
			}
			c = s.engine.TextContext(line, cursor)
		case len(params.Args) > 0 && isSuggest(params.Args[0]):
			line, cursor, _ := stripSuggest(joinArgs(params.Args))
			c = s.engine.TextContext(line, cursor)
		default:
			c = s.engine.TokenContext(params.Args)
		}
	})
	s.timer.Mark("context")

	var items []completion.Item
	trace.WithRegion(ctx, "complete", func() {
		items = completion.Collect(s.engine.Complete(c))
	})
	s.timer.Mark("complete")

	s.log.Debug().
		Str("word", c.WordToComplete).
		Str("command", c.Result.Command().Path()).
		Int("items", len(items)).
		Msg("Computed completions")
	return items
}

func isSuggest(word string) bool {
	name, _, _ := token.ParseDirective(word)
	return strings.EqualFold(name, suggestDirective)
}

// stripSuggest removes a leading suggest directive from line. It returns the
// remaining text and the cursor the directive asks for, or -1 for the end.
func stripSuggest(line string) (rest string, cursor int, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	end := strings.IndexAny(trimmed, " \t")
	if end < 0 {
		end = len(trimmed)
	}
	if !isSuggest(trimmed[:end]) {
		return line, -1, false
	}

	_, value, hasValue := token.ParseDirective(trimmed[:end])
	rest = strings.TrimLeft(trimmed[end:], " \t")
	cursor = -1
	if hasValue {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			cursor = n
		}
	}
	return rest, cursor, true
}

// joinArgs rebuilds a command line from arguments. A trailing empty argument
// becomes a trailing space so the next word is completed.
func joinArgs(args []string) string {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		if arg == "" && i == len(args)-1 {
			continue
		}
		if arg == "" || strings.ContainsAny(arg, " \t") {
			arg = `"` + arg + `"`
		}
		b.WriteString(arg)
	}
	return b.String()
}
