// Package cli implements the actions behind the argot commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/argot/internal/completion"
	"github.com/NikitaCOEUR/argot/internal/derrors"
	"github.com/NikitaCOEUR/argot/internal/grammar"
	"github.com/NikitaCOEUR/argot/internal/logger"
	"github.com/NikitaCOEUR/argot/internal/parser"
	"github.com/NikitaCOEUR/argot/internal/render"
	"github.com/NikitaCOEUR/argot/internal/symbol"
	"github.com/NikitaCOEUR/argot/internal/timing"
	"github.com/NikitaCOEUR/argot/internal/trace"
)

// Options holds what every action needs
type Options struct {
	Grammar string // Grammar file; empty means look for argot.* in the working directory
	Output  string // text, yaml or json
	Fuzzy   bool
	Timing  bool

	Log    *logger.Logger
	Out    io.Writer
	ErrOut io.Writer
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) errOut() io.Writer {
	if o.ErrOut == nil {
		return os.Stderr
	}
	return o.ErrOut
}

func (o Options) logger() *logger.Logger {
	if o.Log == nil {
		return logger.Discard()
	}
	return o.Log
}

// session is a loaded grammar ready to parse and complete against
type session struct {
	opts   Options
	log    *logger.Logger
	loader *grammar.Loader
	path   string
	root   *symbol.Symbol
	parser *parser.Parser
	engine *completion.Engine
	timer  *timing.Timer
}

// open locates and builds the grammar
func open(ctx context.Context, opts Options) (*session, error) {
	s := &session{
		opts:   opts,
		log:    opts.logger(),
		loader: grammar.NewLoader(opts.logger()),
	}
	if opts.Timing {
		s.timer = timing.NewTimer()
	}

	path, err := resolveGrammar(opts.Grammar)
	if err != nil {
		return nil, err
	}
	s.path = path

	var root *symbol.Symbol
	trace.WithRegion(ctx, "loadGrammar", func() {
		root, err = s.loader.LoadTree(path)
	})
	s.timer.Mark("load")
	if err != nil {
		return nil, err
	}

	s.use(root)
	s.log.Debug().Str("grammar", path).Str("root", root.Name()).Msg("Grammar loaded")
	return s, nil
}

// use switches the session to root
func (s *session) use(root *symbol.Symbol) {
	s.root = root
	s.parser = parser.New(root, parser.Config{})
	s.engine = completion.NewEngine(s.parser)
	s.engine.Fuzzy = s.opts.Fuzzy
}

// write renders v in the configured output format
func (s *session) write(v any) error {
	return render.Write(s.opts.out(), s.opts.Output, v)
}

// done prints the timing summary when timing is on
func (s *session) done() {
	if s.timer != nil {
		fmt.Fprintln(s.opts.errOut(), s.timer.Summary())
	}
}

// resolveGrammar returns path, or the grammar file found in the working
// directory when path is empty
func resolveGrammar(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	found, ok := grammar.Find(dir)
	if !ok {
		return "", derrors.NewNotFoundError("grammar", "no grammar file found in "+dir+" (use --grammar)")
	}
	return found, nil
}

// reported turns a non-empty error list into the error that sets the exit status
func reported(n int) error {
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%d error(s) reported", n)
}
