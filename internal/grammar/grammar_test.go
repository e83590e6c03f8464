package grammar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/argot/internal/condition"
	"github.com/NikitaCOEUR/argot/internal/derrors"
	"github.com/NikitaCOEUR/argot/internal/parser"
	"github.com/NikitaCOEUR/argot/internal/symbol"
)

const deployYAML = `
name: deploy
description: Deploy things
options:
  - name: --verbose
    aliases: [-v]
    type: bool
    recursive: true
directives:
  - name: suggest
commands:
  - name: push
    aliases: [p]
    description: Push a release
    options:
      - name: --replicas
        aliases: [-r]
        type: int
        default: {value: 2}
        conditions:
          range:
            lower: {value: 0}
            upper: {ref: --max}
      - name: --ceiling
        type: int
      - name: --max
        type: int
        default:
          fallback:
            - env: DEPLOY_MAX
            - ref: --ceiling
      - name: --label
        conditions:
          case: lower
      - name: --user
      - name: --password
      - name: --tag
        default:
          template: '{{ value "target" | upper }}-{{ env "BUILD" | default "dev" }}'
    arguments:
      - name: target
        completions: [web, api]
    groups:
      - [--user, --password]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func loadDeploy(t *testing.T) *symbol.Symbol {
	t.Helper()
	root, err := NewLoader(nil).LoadTree(writeFile(t, "argot.yml", deployYAML))
	require.NoError(t, err)
	return root
}

func messages(errs []*parser.Error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}

func TestLoadTree_Structure(t *testing.T) {
	root := loadDeploy(t)

	assert.Equal(t, "deploy", root.Name())
	push := root.Resolve("p")
	require.NotNil(t, push)
	assert.Equal(t, "push", push.Name())
	assert.Equal(t, "Push a release", push.Description())
	assert.NotNil(t, root.ResolveDirective("suggest"))
	assert.NotNil(t, push.ResolveInScope("-v"), "recursive option is visible in subcommands")

	replicas := push.Resolve("-r")
	require.NotNil(t, replicas)
	assert.Equal(t, symbol.TypeInt, replicas.ValueType())
	assert.Len(t, condition.Conditions(replicas), 1)
	assert.Len(t, condition.Conditions(push), 1, "inclusive group on the command")

	require.Len(t, push.Arguments(), 1)
	assert.Equal(t, []string{"web", "api"}, push.Arguments()[0].Completions().Values(""))
}

func TestLoadTree_Defaults(t *testing.T) {
	root := loadDeploy(t)

	tests := []struct {
		name string
		env  map[string]string
		line string
		want map[string]any
	}{
		{
			name: "literal and template",
			line: "push web",
			want: map[string]any{"--replicas": 2, "--tag": "WEB-dev"},
		},
		{
			name: "template reads the environment",
			env:  map[string]string{"BUILD": "ci"},
			line: "push api",
			want: map[string]any{"--tag": "API-ci"},
		},
		{
			name: "fallback prefers a reference over the environment",
			env:  map[string]string{"DEPLOY_MAX": "5"},
			line: "push web --ceiling 7",
			want: map[string]any{"--max": 7},
		},
		{
			name: "fallback falls through to the environment",
			env:  map[string]string{"DEPLOY_MAX": "5"},
			line: "push web",
			want: map[string]any{"--max": 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parser.New(root, parser.Config{LookupEnv: env(tt.env)}).ParseLine(tt.line)
			require.Empty(t, res.Errors)
			for name, want := range tt.want {
				vr, ok := res.Lookup(name)
				require.True(t, ok, "no binding for %s", name)
				assert.Equal(t, want, vr.Value, name)
				assert.Equal(t, parser.SourceDefault, vr.Source, name)
			}
		})
	}

	res := parser.New(root, parser.Config{LookupEnv: env(nil)}).ParseLine("push web")
	_, ok := res.Lookup("--max")
	assert.False(t, ok, "unresolved fallback leaves the option unbound")
}

func TestLoadTree_Conditions(t *testing.T) {
	root := loadDeploy(t)
	p := parser.New(root, parser.Config{LookupEnv: env(nil)})

	tests := []struct {
		name string
		line string
		want []string
	}{
		{"all good", "push web -r 3 --ceiling 10 --label prod", nil},
		{"upper bound from a reference", "push web -r 12 --ceiling 10", []string{"The value 12 for '--replicas' must be less than 10."}},
		{"lower bound", "push web -r 0", []string{"The value 0 for '--replicas' must be greater than 0."}},
		{"casing", "push web --label Prod", []string{"The value 'Prod' for '--label' must be lower case."}},
		{"group", "push web --user bob", []string{"Options --user, --password must be used together: '--password' is missing."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.ParseLine(tt.line)
			require.Empty(t, res.Errors)
			added := condition.Validate(res)
			if tt.want == nil {
				assert.Empty(t, added)
				return
			}
			assert.Equal(t, tt.want, messages(added))
		})
	}
}

func TestParse_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "g.yaml", `
name: tool
options:
  - name: --count
    type: int
    arity: "1"
    default: {value: 3}
commands:
  - name: run
`},
		{"toml", "g.toml", `
name = "tool"

[[options]]
name = "--count"
type = "int"
arity = "1"
default = { value = 3 }

[[commands]]
name = "run"
`},
		{"json", "g.json", `{
  "name": "tool",
  "options": [{"name": "--count", "type": "int", "arity": "1", "default": {"value": 3}}],
  "commands": [{"name": "run"}]
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := NewLoader(nil).LoadTree(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "tool", root.Name())
			assert.NotNil(t, root.Resolve("run"))

			res := parser.New(root, parser.Config{}).ParseLine("")
			vr, ok := res.Lookup("--count")
			require.True(t, ok)
			assert.Equal(t, 3, vr.Value)
		})
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, _, err := Parse("grammar.ini", []byte("name=x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported grammar format")
}

func TestLoader_Cache(t *testing.T) {
	path := writeFile(t, "argot.yml", "name: one\n")
	l := NewLoader(nil)

	first, err := l.Load(path)
	require.NoError(t, err)
	second, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	hash, err := l.Hash(path)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	require.NoError(t, os.WriteFile(path, []byte("name: second\n"), 0644))
	third, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "second", third.Name)

	newHash, err := l.Hash(path)
	require.NoError(t, err)
	assert.NotEqual(t, hash, newHash)
}

func TestLoader_NotFound(t *testing.T) {
	_, err := NewLoader(nil).Load(filepath.Join(t.TempDir(), "missing.yml"))
	var notFound *derrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestLoader_SyntaxError(t *testing.T) {
	_, err := NewLoader(nil).Load(writeFile(t, "bad.yml", "name: [unclosed\n"))
	var cfgErr *derrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Path, "bad.yml")
}

func TestLoadTree_SchemaError(t *testing.T) {
	_, err := NewLoader(nil).LoadTree(writeFile(t, "argot.yml", "name: x\nflavour: vanilla\n"))
	var cfgErr *derrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "flavour")
}

func TestLoadTree_GrammarError(t *testing.T) {
	content := `
name: x
options:
  - name: --a
  - name: --A
`
	_, err := NewLoader(nil).LoadTree(writeFile(t, "argot.yml", content))
	require.Error(t, err)
	assert.True(t, derrors.IsGrammarError(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		valid   bool
		field   string
		message string
	}{
		{"valid", deployYAML, true, "", ""},
		{"syntax", "name: [oops\n", false, "syntax", "Failed to parse grammar"},
		{"missing name", "description: nameless\n", false, "(root)", "name"},
		{"bad type", "name: x\noptions:\n  - name: --n\n    type: complex\n", false, "options.0.type", ""},
		{"bad arity", "name: x\noptions:\n  - name: --n\n    arity: many\n", false, "options.0.arity", ""},
		{"two value sources", "name: x\noptions:\n  - name: --n\n    default: {value: 1, env: N}\n", false, "options.0.default", ""},
		{"range on a bool", "name: x\noptions:\n  - name: --n\n    type: bool\n    conditions: {range: {lower: {value: false}}}\n", false, "grammar", "ordered type"},
		{"case on an int", "name: x\noptions:\n  - name: --n\n    type: int\n    conditions: {case: upper}\n", false, "grammar", "string type"},
		{"dangling ref", "name: x\noptions:\n  - name: --n\n    default: {ref: --nope}\n", false, "grammar", "no such option"},
		{"group member missing", "name: x\noptions:\n  - name: --a\n  - name: --b\ngroups:\n  - [--a, --c]\n", false, "grammar", "--c"},
		{"argument after list", "name: x\narguments:\n  - name: a\n    list: true\n  - name: b\n", false, "grammar", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate(writeFile(t, "argot.yml", tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid, result.Summary())
			if tt.valid {
				assert.Empty(t, result.Errors)
				return
			}
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.Contains(t, result.Errors[0].Message, tt.message)
		})
	}
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := Validate(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestSchemaJSON(t *testing.T) {
	schema := SchemaJSON()
	assert.Contains(t, schema, `"$schema"`)
	assert.Contains(t, schema, "CommandDecl")
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	_, ok := Find(dir)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "argot.toml"), []byte(`name = "x"`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "argot.json"), []byte(`{"name": "x"}`), 0644))
	path, ok := Find(dir)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "argot.toml"), path)
}

func TestParseArity(t *testing.T) {
	tests := []struct {
		text    string
		want    symbol.Arity
		wantErr bool
	}{
		{"1", symbol.Arity{Min: 1, Max: 1}, false},
		{"0..1", symbol.Arity{Min: 0, Max: 1}, false},
		{"2..5", symbol.Arity{Min: 2, Max: 5}, false},
		{"1..*", symbol.Arity{Min: 1, Max: symbol.Unbounded}, false},
		{" 0..* ", symbol.Arity{Min: 0, Max: symbol.Unbounded}, false},
		{"many", symbol.Arity{}, true},
		{"1..x", symbol.Arity{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseArity(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_ArityInversion(t *testing.T) {
	_, err := Build(&CommandDecl{
		Name:    "x",
		Options: []OptionDecl{{Name: "--n", List: true, Arity: "3..1"}},
	})
	assert.True(t, derrors.IsGrammarError(err))
}
