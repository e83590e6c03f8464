// Package token splits raw command-line input into typed tokens.
//
// The tokenizer knows nothing about a grammar. It classifies tokens only by
// their shape: option-looking text, directives in the leading run, the "--"
// separator and everything that follows it. Matching tokens to symbols is the
// parser's job.
package token

import (
	"fmt"
	"strings"
)

// Type classifies a token by its shape
type Type int

const (
	// CommandOrArgument is any ordinary word
	CommandOrArgument Type = iota
	// Option is a word starting with an option prefix ("-", "--", or "/" when enabled)
	Option
	// OptionArgument is the value part split off "--opt=value" or "--opt:value"
	OptionArgument
	// Directive is a "[name]" or "[name:value]" word in the leading run
	Directive
	// DoubleDash is the literal "--" separator
	DoubleDash
	// Unknown is anything after "--"; it is passed through without interpretation
	Unknown
)

func (t Type) String() string {
	switch t {
	case CommandOrArgument:
		return "CommandOrArgument"
	case Option:
		return "Option"
	case OptionArgument:
		return "OptionArgument"
	case Directive:
		return "Directive"
	case DoubleDash:
		return "DoubleDash"
	case Unknown:
		return "Unknown"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Position is the byte span of a token in the raw command line
type Position struct {
	Start  int
	Length int
}

// End returns the offset one past the last byte of the token
func (p Position) End() int {
	return p.Start + p.Length
}

// Token is a single lexical unit. Tokens are values and never change after
// the tokenizer produces them.
type Token struct {
	Text     string
	Type     Type
	Position Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q@%d)", t.Type, t.Text, t.Position.Start)
}

// Config controls classification. The zero value is ready to use.
type Config struct {
	// RootNames lists names of the root command. When the first word equals
	// one of them, directives may still follow it.
	RootNames []string

	// AllowSlashPrefix makes "/name" option-like, Windows style.
	AllowSlashPrefix bool
}

// word is a raw whitespace-delimited unit before classification
type word struct {
	text  string
	start int
	end   int
}

// TokenizeString tokenizes an unsplit command line.
// Unterminated quotes never fail: the rest of the input is taken literally.
func TokenizeString(line string, cfg Config) []Token {
	return classify(splitWords(line), cfg)
}

// Tokenize tokenizes a pre-split argument vector. Positions are computed as
// if the arguments had been joined with single spaces.
func Tokenize(args []string, cfg Config) []Token {
	words := make([]word, 0, len(args))
	offset := 0
	for _, arg := range args {
		words = append(words, word{text: arg, start: offset, end: offset + len(arg)})
		offset += len(arg) + 1
	}
	return classify(words, cfg)
}

// SplitCommandLine splits a raw line into words, honoring double quotes.
func SplitCommandLine(line string) []string {
	words := splitWords(line)
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, w.text)
	}
	return out
}

// Join renders tokens back into a command line that tokenizes to the same
// words. Texts containing whitespace, quotes or nothing at all are quoted.
func Join(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, quote(t.Text))
	}
	return strings.Join(parts, " ")
}

func quote(text string) string {
	if text == "" || strings.ContainsAny(text, " \t\n\r") {
		return `"` + text + `"`
	}
	return text
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// splitWords is a small state machine over bytes: whitespace ends a word
// unless inside a double-quote span. Quote characters are dropped from the text.
func splitWords(line string) []word {
	var words []word
	var current strings.Builder
	inQuote := false
	inWord := false
	start := 0

	for i := 0; i < len(line); i++ {
		ch := line[i]
		if ch == '"' {
			if !inWord {
				inWord = true
				start = i
			}
			inQuote = !inQuote
			continue
		}
		if isSpace(ch) && !inQuote {
			if inWord {
				words = append(words, word{text: current.String(), start: start, end: i})
				current.Reset()
				inWord = false
			}
			continue
		}
		if !inWord {
			inWord = true
			start = i
		}
		current.WriteByte(ch)
	}

	if inWord {
		words = append(words, word{text: current.String(), start: start, end: len(line)})
	}
	return words
}

func classify(words []word, cfg Config) []Token {
	tokens := make([]Token, 0, len(words))
	afterDoubleDash := false
	leadingRun := true

	for i, w := range words {
		pos := Position{Start: w.start, Length: w.end - w.start}

		if afterDoubleDash {
			tokens = append(tokens, Token{Text: w.text, Type: Unknown, Position: pos})
			continue
		}

		if w.text == "--" {
			tokens = append(tokens, Token{Text: w.text, Type: DoubleDash, Position: pos})
			afterDoubleDash = true
			leadingRun = false
			continue
		}

		if leadingRun {
			if IsDirective(w.text) {
				tokens = append(tokens, Token{Text: w.text, Type: Directive, Position: pos})
				continue
			}
			if i == 0 && isRootName(w.text, cfg.RootNames) {
				tokens = append(tokens, Token{Text: w.text, Type: CommandOrArgument, Position: pos})
				continue
			}
			leadingRun = false
		}

		if isOptionLike(w.text, cfg) {
			if name, value, ok := splitDelimited(w.text); ok {
				tokens = append(tokens,
					Token{Text: name, Type: Option, Position: Position{Start: w.start, Length: len(name)}},
					Token{Text: value, Type: OptionArgument, Position: Position{
						Start:  w.start + len(name) + 1,
						Length: max(0, w.end-(w.start+len(name)+1)),
					}},
				)
				continue
			}
			tokens = append(tokens, Token{Text: w.text, Type: Option, Position: pos})
			continue
		}

		tokens = append(tokens, Token{Text: w.text, Type: CommandOrArgument, Position: pos})
	}

	return tokens
}

func isRootName(text string, names []string) bool {
	for _, name := range names {
		if strings.EqualFold(text, name) {
			return true
		}
	}
	return false
}

func isOptionLike(text string, cfg Config) bool {
	if len(text) < 2 {
		return false
	}
	if text[0] == '-' {
		return true
	}
	return cfg.AllowSlashPrefix && text[0] == '/'
}

// prefixLen returns the number of leading option prefix bytes
func prefixLen(text string) int {
	n := 0
	for n < len(text) && (text[n] == '-' || text[n] == '/') {
		n++
	}
	return n
}

// splitDelimited splits "--opt=value" and "--opt:value" at the first delimiter
// after the prefix. A delimiter right after the prefix does not count.
func splitDelimited(text string) (name, value string, ok bool) {
	p := prefixLen(text)
	idx := strings.IndexAny(text[p:], ":=")
	if idx <= 0 {
		return "", "", false
	}
	return text[:p+idx], text[p+idx+1:], true
}

// IsDirective reports whether text has directive shape: "[name]" or "[name:value]"
func IsDirective(text string) bool {
	if len(text) < 3 || text[0] != '[' || text[len(text)-1] != ']' {
		return false
	}
	inner := text[1 : len(text)-1]
	if inner[0] == ':' || strings.ContainsAny(inner, " \t[]") {
		return false
	}
	return true
}

// ParseDirective splits a directive token into its name and optional value.
func ParseDirective(text string) (name, value string, hasValue bool) {
	if !IsDirective(text) {
		return "", "", false
	}
	inner := text[1 : len(text)-1]
	if idx := strings.IndexByte(inner, ':'); idx >= 0 {
		return inner[:idx], inner[idx+1:], true
	}
	return inner, "", false
}
