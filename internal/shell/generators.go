// Package shell generates the shell glue that routes tab completion of a
// grammar's command to "argot complete".
package shell

import (
	"fmt"
	"os"
	"strings"
)

// Supported shells
const (
	Bash = "bash"
	Zsh  = "zsh"
	Fish = "fish"
)

// Script describes what a completion script wires together
type Script struct {
	Binary  string   // argot executable
	Grammar string   // Grammar file, preferably absolute
	Names   []string // Command names to complete, usually the root aliases
}

// CodeGenerator is an interface for shell-specific completion code generation
type CodeGenerator interface {
	// Generate returns the completion script
	Generate(s Script) string
	// Name returns the shell name (bash, zsh, etc.)
	Name() string
}

// BashCodeGenerator generates bash completion code
type BashCodeGenerator struct{}

// Name returns the shell name for bash
func (b *BashCodeGenerator) Name() string {
	return Bash
}

// Generate registers one function for every name
func (b *BashCodeGenerator) Generate(s Script) string {
	names := make([]string, len(s.Names))
	for i, n := range s.Names {
		names[i] = Quote(n)
	}
	return fmt.Sprintf(bashTemplate, suffix(s), Quote(s.Binary), Quote(s.Grammar), strings.Join(names, " "))
}

// ZshCodeGenerator generates zsh completion code
type ZshCodeGenerator struct{}

// Name returns the shell name for zsh
func (z *ZshCodeGenerator) Name() string {
	return Zsh
}

// Generate registers one function for every name
func (z *ZshCodeGenerator) Generate(s Script) string {
	names := make([]string, len(s.Names))
	for i, n := range s.Names {
		names[i] = Quote(n)
	}
	return fmt.Sprintf(zshTemplate, suffix(s), Quote(s.Binary), Quote(s.Grammar), strings.Join(names, " "))
}

// FishCodeGenerator generates fish completion code
type FishCodeGenerator struct{}

// Name returns the shell name for fish
func (f *FishCodeGenerator) Name() string {
	return Fish
}

// Generate defines one function per name since fish completes one command at a time
func (f *FishCodeGenerator) Generate(s Script) string {
	parts := make([]string, 0, len(s.Names))
	for _, name := range s.Names {
		one := s
		one.Names = []string{name}
		parts = append(parts, fmt.Sprintf(fishTemplate, suffix(one), Quote(s.Binary), Quote(s.Grammar), Quote(name)))
	}
	return strings.Join(parts, "")
}

// MultiShellCodeGenerator generates completion code for multiple shells
type MultiShellCodeGenerator struct {
	generators []CodeGenerator
}

// Name returns the shell name for multi-shell generator
func (m *MultiShellCodeGenerator) Name() string {
	return "multi"
}

// Generate concatenates the scripts of every shell, each guarded so that
// only the running shell evaluates its own part
func (m *MultiShellCodeGenerator) Generate(s Script) string {
	var b strings.Builder
	for _, gen := range m.generators {
		switch gen.Name() {
		case Bash:
			b.WriteString("if [ -n \"$BASH_VERSION\" ]; then\n" + gen.Generate(s) + "fi\n")
		case Zsh:
			b.WriteString("if [ -n \"$ZSH_VERSION\" ]; then\n" + gen.Generate(s) + "fi\n")
		default:
			b.WriteString(gen.Generate(s))
		}
	}
	return b.String()
}

// NewCompletionGenerator creates appropriate shell code generator for the given shell type
func NewCompletionGenerator(shell string) CodeGenerator {
	switch shell {
	case Bash:
		return &BashCodeGenerator{}
	case Zsh:
		return &ZshCodeGenerator{}
	case Fish:
		return &FishCodeGenerator{}
	default:
		// Both POSIX-like shells
		return &MultiShellCodeGenerator{
			generators: []CodeGenerator{
				&BashCodeGenerator{},
				&ZshCodeGenerator{},
			},
		}
	}
}

// DetectShell returns shellFlag unless it is "auto", in which case the shell
// is guessed from the environment. Defaults to bash.
func DetectShell(shellFlag string) string {
	if shellFlag != "auto" && shellFlag != "" {
		return shellFlag
	}

	switch {
	case os.Getenv("FISH_VERSION") != "":
		return Fish
	case os.Getenv("ZSH_VERSION") != "":
		return Zsh
	case os.Getenv("BASH_VERSION") != "":
		return Bash
	}

	shell := os.Getenv("SHELL")
	for _, name := range []string{Fish, Zsh, Bash} {
		if strings.HasSuffix(shell, "/"+name) || shell == name {
			return name
		}
	}
	return Bash
}

// Quote wraps s in single quotes for POSIX shells and fish
func Quote(s string) string {
	if s != "" && strings.Trim(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./:=@") == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// suffix turns the first name into a shell function name fragment
func suffix(s Script) string {
	if len(s.Names) == 0 {
		return "cmd"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, s.Names[0])
}
