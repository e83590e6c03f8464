// Package main is the entry point for the argot CLI application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	argotcli "github.com/NikitaCOEUR/argot/internal/cli"
	"github.com/NikitaCOEUR/argot/internal/config"
	"github.com/NikitaCOEUR/argot/internal/logger"
	"github.com/NikitaCOEUR/argot/internal/trace"
	"github.com/NikitaCOEUR/argot/pkg/version"
)

func main() {
	stop := trace.Init()
	err := newApp().Run(context.Background(), os.Args)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the settings resolved before any action runs
type app struct {
	settings *config.Settings
	log      *logger.Logger
}

//nolint:gocyclo // Command table is long but flat
func newApp() *cli.Command {
	a := &app{}

	return &cli.Command{
		Name:                  "argot",
		Usage:                 "Parse, complete and validate command lines against a declarative grammar",
		Version:               version.String(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "grammar",
				Aliases: []string{"g"},
				Usage:   "Grammar file (defaults to argot.{yml,yaml,toml,json} in the current directory)",
				Sources: cli.EnvVars("ARGOT_GRAMMAR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("ARGOT_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Sources: cli.EnvVars("ARGOT_LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format (text, yaml, json)",
				Sources: cli.EnvVars("ARGOT_OUTPUT"),
			},
			&cli.BoolFlag{
				Name:    "timing",
				Usage:   "Print how long each stage took to stderr",
				Sources: cli.EnvVars("ARGOT_TIMING"),
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "Parse a command line and print the result",
				ArgsUsage: "[-- args...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "line",
						Usage: "Raw command line to parse instead of the arguments",
					},
					&cli.BoolFlag{
						Name:  "validate",
						Usage: "Run value conditions after matching",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return argotcli.Parse(ctx, argotcli.ParseParams{
						Options:  a.options(cmd),
						Args:     cmd.Args().Slice(),
						Line:     cmd.String("line"),
						HasLine:  cmd.IsSet("line"),
						Validate: cmd.Bool("validate"),
					})
				},
			},
			{
				Name:      "complete",
				Usage:     "Print completions for a command line",
				ArgsUsage: "[-- args...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "line",
						Usage: "Raw command line to complete instead of the arguments",
					},
					&cli.IntFlag{
						Name:  "position",
						Value: -1,
						Usage: "Cursor offset in --line (end of line when negative)",
					},
					&cli.BoolFlag{
						Name:    "fuzzy",
						Usage:   "Match the word anywhere in order instead of as a prefix",
						Sources: cli.EnvVars("ARGOT_FUZZY"),
					},
					&cli.BoolFlag{
						Name:  "plain",
						Usage: "Print one insert text per line, ignoring --output (used by shell hooks)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts := a.options(cmd)
					opts.Fuzzy = opts.Fuzzy || cmd.Bool("fuzzy")
					return argotcli.Complete(ctx, argotcli.CompleteParams{
						Options:  opts,
						Args:     cmd.Args().Slice(),
						Line:     cmd.String("line"),
						HasLine:  cmd.IsSet("line"),
						Position: cmd.Int("position"),
						Plain:    cmd.Bool("plain"),
					})
				},
			},
			{
				Name:      "suggest",
				Usage:     "Suggest corrections for a misspelled token",
				ArgsUsage: "<token> [candidates...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() == 0 {
						return fmt.Errorf("token required")
					}
					return argotcli.Suggest(ctx, argotcli.SuggestParams{
						Options:    a.options(cmd),
						Token:      cmd.Args().First(),
						Candidates: cmd.Args().Tail(),
					})
				},
			},
			{
				Name:      "check",
				Usage:     "Validate a grammar file",
				ArgsUsage: "[grammar-file]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return argotcli.Check(a.options(cmd), cmd.Args().First())
				},
			},
			{
				Name:      "schema",
				Usage:     "Display or export the JSON Schema for grammar files",
				ArgsUsage: "[output-file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Output file path (prints to stdout if not specified)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					outputPath := cmd.String("file")
					if outputPath == "" && cmd.Args().Len() > 0 {
						outputPath = cmd.Args().Get(0)
					}
					return argotcli.Schema(a.options(cmd), outputPath)
				},
			},
			{
				Name:  "hook",
				Usage: "Print shell code completing the grammar's command through argot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "shell",
						Value:   "auto",
						Usage:   "Shell type: bash, zsh, fish, or auto",
						Sources: cli.EnvVars("ARGOT_SHELL"),
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return argotcli.Hook(ctx, argotcli.HookParams{
						Options: a.options(cmd),
						Shell:   cmd.String("shell"),
					})
				},
			},
			{
				Name:  "repl",
				Usage: "Read command lines interactively with tab completion",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "history",
						Usage: "History file",
					},
					&cli.BoolFlag{
						Name:  "validate",
						Usage: "Run value conditions after matching",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					history := cmd.String("history")
					if history == "" {
						history = a.settings.History
					}
					return argotcli.Repl(ctx, argotcli.ReplParams{
						Options:  a.options(cmd),
						History:  history,
						Validate: cmd.Bool("validate"),
					})
				},
			},
		},
	}
}

// before loads the settings hierarchy and lets flags and ARGOT_* variables
// override it
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	dir, err := os.Getwd()
	if err != nil {
		return ctx, fmt.Errorf("failed to get current directory: %w", err)
	}

	settings, files, err := config.LoadHierarchy(dir)
	if err != nil {
		return ctx, err
	}

	if cmd.IsSet("log-level") {
		settings.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		settings.LogFormat = cmd.String("log-format")
	}
	if cmd.IsSet("output") {
		settings.Output = cmd.String("output")
	}
	if cmd.IsSet("grammar") {
		settings.Grammar = cmd.String("grammar")
	}
	if err := settings.Validate(); err != nil {
		return ctx, err
	}

	a.settings = settings
	a.log = logger.NewWithFormat(settings.LogLevel, settings.LogFormat, cmd.Root().ErrWriter)
	a.log.Debug().Strs("files", files).Str("grammar", settings.Grammar).Msg("Settings loaded")
	if trace.IsEnabled() {
		a.log.Debug().Str("file", os.Getenv(trace.EnvVar)).Msg("Runtime tracing enabled")
	}
	return ctx, nil
}

func (a *app) options(cmd *cli.Command) argotcli.Options {
	return argotcli.Options{
		Grammar: a.settings.Grammar,
		Output:  a.settings.Output,
		Fuzzy:   a.settings.Fuzzy,
		Timing:  cmd.Bool("timing"),
		Log:     a.log,
		Out:     cmd.Root().Writer,
		ErrOut:  cmd.Root().ErrWriter,
	}
}
