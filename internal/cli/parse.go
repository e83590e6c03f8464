package cli

import (
	"context"
	"fmt"

	"github.com/NikitaCOEUR/argot/internal/condition"
	"github.com/NikitaCOEUR/argot/internal/derrors"
	"github.com/NikitaCOEUR/argot/internal/parser"
	"github.com/NikitaCOEUR/argot/internal/render"
	"github.com/NikitaCOEUR/argot/internal/trace"
)

// ParseParams contains parameters for the Parse command
type ParseParams struct {
	Options
	Args     []string // Pre-split arguments, used when Line is not set
	Line     string   // Raw command line
	HasLine  bool
	Validate bool // Run value conditions after matching
}

// Parse parses the input against the grammar and prints the result. It
// returns an error when the input produced any parse or validation error.
func Parse(ctx context.Context, params ParseParams) error {
	s, err := open(ctx, params.Options)
	if err != nil {
		return err
	}
	defer s.done()

	res, err := s.parse(ctx, params.Line, params.Args, params.HasLine, params.Validate)
	if err != nil {
		return err
	}

	if err := s.write(render.FromResult(res)); err != nil {
		return err
	}
	return reported(len(res.Errors))
}

// parse runs the matcher and, when asked, the validation pipeline. A misuse
// panic from a condition is a grammar defect and comes back as an error.
func (s *session) parse(ctx context.Context, line string, args []string, hasLine, validate bool) (res *parser.Result, err error) {
	defer func() {
		if derrors.IsMisuse(err) {
			err = fmt.Errorf("grammar defect: %w", err)
		}
	}()
	defer derrors.RecoverMisuse(&err)

	trace.WithRegion(ctx, "parse", func() {
		if hasLine {
			res = s.parser.ParseLine(line)
		} else {
			res = s.parser.Parse(args)
		}
	})
	s.timer.Mark("parse")

	if validate {
		var added int
		trace.WithRegion(ctx, "validate", func() {
			added = len(condition.Validate(res))
		})
		s.timer.Mark("validate")
		s.log.Debug().Int("errors", added).Msg("Validation finished")
	}

	trace.Log(ctx, "parse", fmt.Sprintf("command=%s tokens=%d errors=%d",
		res.Command().Path(), len(res.Tokens), len(res.Errors)))
	s.log.Debug().
		Str("command", res.Command().Path()).
		Int("tokens", len(res.Tokens)).
		Int("errors", len(res.Errors)).
		Msg("Parsed input")
	return res, nil
}
