package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/peterh/liner"

	"github.com/NikitaCOEUR/argot/internal/completion"
	"github.com/NikitaCOEUR/argot/internal/config"
	"github.com/NikitaCOEUR/argot/internal/grammar"
	"github.com/NikitaCOEUR/argot/internal/render"
	"github.com/NikitaCOEUR/argot/internal/symbol"
	"github.com/NikitaCOEUR/argot/internal/trace"
)

// ReplParams contains parameters for the Repl command
type ReplParams struct {
	Options
	History  string // History file; empty means history in the argot config dir
	Validate bool
}

// live is the grammar the REPL currently parses against. A reload swaps in a
// whole new value; a live value is never modified.
type live struct {
	root   *symbol.Symbol
	engine *completion.Engine
	s      *session
}

// Repl reads command lines interactively, with tab completion driven by the
// grammar, and prints each parse result. The grammar file is reloaded when it
// changes on disk.
func Repl(ctx context.Context, params ReplParams) error {
	s, err := open(ctx, params.Options)
	if err != nil {
		return err
	}

	var current atomic.Pointer[live]
	current.Store(&live{root: s.root, engine: s.engine, s: s})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		err := s.loader.Watch(ctx, s.path, grammar.DefaultDebounce, func(root *symbol.Symbol, err error) {
			if err != nil {
				fmt.Fprintf(params.errOut(), "\ngrammar not reloaded: %v\n", err)
				return
			}
			current.Store(reloaded(params.Options, s, root))
			s.log.Info().Str("grammar", s.path).Msg("Grammar reloaded")
		})
		if err != nil {
			s.log.Warn().Err(err).Msg("Grammar watcher stopped")
		}
	}()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetWordCompleter(wordCompleter(func() *completion.Engine { return current.Load().engine }))

	historyFile := params.History
	if historyFile == "" {
		historyFile = defaultHistoryFile()
	}
	loadHistory(line, historyFile)
	defer saveHistory(line, historyFile, s)

	fmt.Fprintf(params.out(), "argot repl on %s (%s). Tab completes, Ctrl-D exits.\n", s.root.Name(), s.path)
	for {
		input, err := line.Prompt(current.Load().root.Name() + "> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(params.out())
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		line.AppendHistory(input)

		if err := eval(ctx, current.Load(), input, params.Validate); err != nil {
			fmt.Fprintf(params.errOut(), "Error: %v\n", err)
		}
	}
}

// reloaded builds the live state for a new tree, keeping prev's loader
func reloaded(opts Options, prev *session, root *symbol.Symbol) *live {
	s := &session{opts: opts, log: prev.log, loader: prev.loader, path: prev.path}
	s.use(root)
	return &live{root: root, engine: s.engine, s: s}
}

// eval parses one line and prints the report
func eval(ctx context.Context, l *live, input string, validate bool) error {
	defer trace.Region(ctx, "eval")()

	res, err := l.s.parse(ctx, input, nil, true, validate)
	if err != nil {
		return err
	}
	return l.s.write(render.FromResult(res))
}

// wordCompleter adapts the engine to liner. liner passes the cursor as a rune
// index; the engine works on byte offsets.
func wordCompleter(engine func() *completion.Engine) liner.WordCompleter {
	return func(line string, pos int) (head string, completions []string, tail string) {
		runes := []rune(line)
		pos = min(max(pos, 0), len(runes))
		cursor := len(string(runes[:pos]))

		e := engine()
		ctx := e.TextContext(line, cursor)
		for item := range e.Complete(ctx) {
			completions = append(completions, item.InsertText)
		}

		start := min(ctx.Span.Start, len(line))
		end := min(max(ctx.Span.End(), cursor), len(line))
		return line[:start], completions, line[end:]
	}
}

func defaultHistoryFile() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "history")
}

func loadHistory(line *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.ReadHistory(f)
}

func saveHistory(line *liner.State, path string, s *session) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		s.log.Debug().Err(err).Msg("Cannot create history directory")
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		s.log.Debug().Err(err).Msg("Cannot write history")
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
