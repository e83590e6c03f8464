package render

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NikitaCOEUR/argot/internal/completion"
	"github.com/NikitaCOEUR/argot/internal/grammar"
	"github.com/NikitaCOEUR/argot/internal/parser"
	"github.com/NikitaCOEUR/argot/internal/symbol"
)

func buildTree() *symbol.Symbol {
	return symbol.MustCommand(symbol.CommandSpec{Name: "app"},
		symbol.MustDirective("debug", "Print internals"),
		symbol.MustCommand(symbol.CommandSpec{Name: "build", Description: "Build a target"},
			symbol.MustOption(symbol.OptionSpec{Name: "--jobs", Aliases: []string{"-j"}, Type: symbol.TypeInt}),
			symbol.MustOption(symbol.OptionSpec{Name: "--timeout", Type: symbol.TypeDuration}),
			symbol.MustOption(symbol.OptionSpec{Name: "--force", Type: symbol.TypeBool}),
			symbol.MustArgument(symbol.ArgumentSpec{Name: "target"}),
		),
	)
}

func parse(line string) *parser.Result {
	return parser.New(buildTree(), parser.Config{}).ParseLine(line)
}

func TestFromResult(t *testing.T) {
	r := FromResult(parse("[debug:on] build -j 4 --timeout 1m30s --force main"))

	assert.True(t, r.Succeeded)
	assert.Equal(t, []string{"app", "build"}, r.Commands)
	assert.Equal(t, []Directive{{Name: "debug", Value: "on", Declared: true}}, r.Directives)

	require.Len(t, r.Values, 4)
	assert.Equal(t, Binding{Name: "--jobs", Kind: "option", Source: "user", Tokens: []string{"4"}, Value: 4}, r.Values[0])
	assert.Equal(t, "1m30s", r.Values[1].Value, "durations are rendered as text")
	assert.Equal(t, true, r.Values[2].Value)
	assert.Equal(t, "implicit", r.Values[2].Source)
	assert.Equal(t, "target", r.Values[3].Name)
	assert.Equal(t, "argument", r.Values[3].Kind)
}

func TestFromResult_Errors(t *testing.T) {
	r := FromResult(parse("build main --jbos"))

	assert.False(t, r.Succeeded)
	assert.Equal(t, []string{"--jbos"}, r.Unmatched)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "unmatched_token", r.Errors[0].Kind)
	assert.Equal(t, "--jbos", r.Errors[0].Token)
	assert.Equal(t, 11, r.Errors[0].Offset)
	assert.Contains(t, r.Errors[0].Message, "Did you mean '--jobs'?")
}

func TestFromResult_ConversionError(t *testing.T) {
	r := FromResult(parse("build -j many main"))

	require.NotEmpty(t, r.Values)
	assert.Equal(t, "--jobs", r.Values[0].Name)
	assert.NotEmpty(t, r.Values[0].Error)
	assert.Nil(t, r.Values[0].Value)
	assert.Equal(t, "conversion", r.Errors[0].Kind)
	assert.Equal(t, "--jobs", r.Errors[0].Symbol)
}

func TestRender(t *testing.T) {
	output := Render(FromResult(parse("[debug] [nope] build -j 2 main")))

	assert.Contains(t, output, "Command:")
	assert.Contains(t, output, "app build")
	assert.Contains(t, output, "Directives:")
	assert.Contains(t, output, "nope (undeclared)")
	assert.Contains(t, output, "Values:")
	assert.Contains(t, output, "--jobs")
	assert.Contains(t, output, "(user)")
	assert.Contains(t, output, "Parsed")
	assert.NotContains(t, output, "error(s)")
}

func TestRender_WithErrors(t *testing.T) {
	output := Render(FromResult(parse("build main extra")))

	assert.Contains(t, output, "Unmatched:")
	assert.Contains(t, output, "1 error(s):")
	assert.Contains(t, output, "[unmatched_token]")
	assert.Contains(t, output, "(at 11)")
	assert.NotContains(t, output, "Parsed")
}

func TestDiagnostics_Empty(t *testing.T) {
	assert.Contains(t, Diagnostics(nil), "No errors")
}

func TestCompletions(t *testing.T) {
	items := FromItems([]completion.Item{
		{Label: "build", InsertText: "build", Documentation: "Build a target", Kind: completion.KindCommand},
		{Label: "--jobs", InsertText: "--jobs", Kind: completion.KindOption},
		{Label: "two words", InsertText: `"two words"`, Kind: completion.KindValue},
	})

	assert.Equal(t, "command", items[0].Kind)
	assert.Equal(t, "option", items[1].Kind)

	output := Completions(items)
	lines := bytes.Split([]byte(output), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "build")
	assert.Contains(t, string(lines[0]), "Build a target")
	assert.Equal(t, "--jobs", string(lines[1]))
	assert.Equal(t, `"two words"`, string(lines[2]))
}

func TestRenderSuggestions(t *testing.T) {
	assert.Contains(t, RenderSuggestions(Suggestions{Token: "biuld", Candidates: []string{"build"}}), "build")
	assert.Contains(t, RenderSuggestions(Suggestions{Token: "zzz"}), "No close match")
}

func TestCheck(t *testing.T) {
	ok := Check("argot.yml", &grammar.ValidationResult{Valid: true})
	assert.Contains(t, ok, "argot.yml")
	assert.Contains(t, ok, "Grammar is valid!")

	bad := Check("argot.yml", &grammar.ValidationResult{Errors: []grammar.ValidationError{
		{Field: "options.0.name", Message: "String length must be greater than or equal to 1"},
		{Field: "grammar", Message: "duplicate alias"},
	}})
	assert.Contains(t, bad, "Grammar has errors")
	assert.Contains(t, bad, "1. [options.0.name]")
	assert.Contains(t, bad, "2. [grammar] duplicate alias")
	assert.Contains(t, bad, "Found 2 error(s)")
}

func TestWrite(t *testing.T) {
	report := FromResult(parse("build -j 4 main"))

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatJSON, report))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, true, got["succeeded"])
		assert.Equal(t, []any{"app", "build"}, got["commands"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatYAML, report))

		var got Report
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.True(t, got.Succeeded)
		require.Len(t, got.Values, 2)
		assert.Equal(t, "--jobs", got.Values[0].Name)
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatText, report))
		assert.Contains(t, buf.String(), "app build")
	})

	t.Run("empty text output writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatText, []Completion{}))
		assert.Empty(t, buf.String())
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, Write(&bytes.Buffer{}, "xml", report))
	})
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "2s", plain(2*time.Second))
	assert.Equal(t, []string{"1s", "1m0s"}, plain([]time.Duration{time.Second, time.Minute}))
	assert.Equal(t, 3, plain(3))
}
