package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/NikitaCOEUR/argot/internal/shell"
)

// HookParams contains parameters for the Hook command
type HookParams struct {
	Options
	Shell  string // bash, zsh, fish, or auto
	Binary string // argot executable; empty means the running binary
}

// Hook prints the shell code that completes the grammar's root command
// through "argot complete"
func Hook(ctx context.Context, params HookParams) error {
	s, err := open(ctx, params.Options)
	if err != nil {
		return err
	}

	grammarPath, err := filepath.Abs(s.path)
	if err != nil {
		return fmt.Errorf("failed to resolve grammar path: %w", err)
	}

	binary := params.Binary
	if binary == "" {
		if binary, err = os.Executable(); err != nil {
			binary = "argot" // Fallback to PATH
		}
	}

	sh := shell.DetectShell(params.Shell)
	script := shell.NewCompletionGenerator(sh).Generate(shell.Script{
		Binary:  binary,
		Grammar: grammarPath,
		Names:   s.root.Aliases(),
	})
	s.log.Debug().Str("shell", sh).Strs("names", s.root.Aliases()).Msg("Generated completion hook")

	_, err = fmt.Fprint(params.out(), script)
	return err
}
