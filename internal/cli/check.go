package cli

import (
	"fmt"

	"github.com/NikitaCOEUR/argot/internal/grammar"
	"github.com/NikitaCOEUR/argot/internal/render"
)

// Check validates a grammar file against the schema, then builds it
func Check(opts Options, path string) error {
	if path == "" {
		path = opts.Grammar
	}
	path, err := resolveGrammar(path)
	if err != nil {
		return err
	}

	result, err := grammar.Validate(path)
	if err != nil {
		return err
	}
	opts.logger().Debug().Str("path", path).Bool("valid", result.Valid).Msg("Checked grammar")

	if opts.Output == render.FormatText || opts.Output == "" {
		fmt.Fprintln(opts.out(), render.Check(path, result))
	} else if err := render.Write(opts.out(), opts.Output, result); err != nil {
		return err
	}

	if !result.Valid {
		return fmt.Errorf("validation failed")
	}
	return nil
}
