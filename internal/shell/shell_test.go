package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var script = Script{
	Binary:  "/usr/local/bin/argot",
	Grammar: "/home/me/my tools/git.yml",
	Names:   []string{"git", "g"},
}

func TestEmbeddedTemplates(t *testing.T) {
	for name, tmpl := range map[string]string{"bash": bashTemplate, "zsh": zshTemplate, "fish": fishTemplate} {
		t.Run(name, func(t *testing.T) {
			assert.NotEmpty(t, tmpl)
			assert.Contains(t, tmpl, "complete --plain --")
			assert.Contains(t, tmpl, "%[4]s")
		})
	}
}

func TestBashCodeGenerator(t *testing.T) {
	gen := NewCompletionGenerator("bash")
	assert.Equal(t, "bash", gen.Name())

	out := gen.Generate(script)
	assert.Contains(t, out, "_argot_complete_git()")
	assert.Contains(t, out, "/usr/local/bin/argot --grammar '/home/me/my tools/git.yml' complete --plain")
	assert.Contains(t, out, "complete -o default -F _argot_complete_git git g")
	assert.NotContains(t, out, "%!")
}

func TestZshCodeGenerator(t *testing.T) {
	gen := NewCompletionGenerator("zsh")
	assert.Equal(t, "zsh", gen.Name())

	out := gen.Generate(script)
	assert.Contains(t, out, "compdef _argot_complete_git git g")
	assert.Contains(t, out, "words[2,CURRENT]")
	assert.NotContains(t, out, "%!")
}

func TestFishCodeGenerator(t *testing.T) {
	gen := NewCompletionGenerator("fish")
	assert.Equal(t, "fish", gen.Name())

	out := gen.Generate(script)
	assert.Contains(t, out, "function __argot_complete_git")
	assert.Contains(t, out, "function __argot_complete_g\n")
	assert.Contains(t, out, "complete -c git -f -a '(__argot_complete_git)'")
	assert.Contains(t, out, "complete -c g -f -a '(__argot_complete_g)'")
	assert.NotContains(t, out, "%!")
}

func TestMultiShellCodeGenerator(t *testing.T) {
	gen := NewCompletionGenerator("auto")
	assert.Equal(t, "multi", gen.Name())

	out := gen.Generate(script)
	assert.Contains(t, out, `if [ -n "$BASH_VERSION" ]; then`)
	assert.Contains(t, out, `if [ -n "$ZSH_VERSION" ]; then`)
	assert.Equal(t, 2, strings.Count(out, "\nfi\n"))
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "my_tool", suffix(Script{Names: []string{"my-tool"}}))
	assert.Equal(t, "cmd", suffix(Script{}))
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"argot", "argot"},
		{"/usr/bin/argot", "/usr/bin/argot"},
		{"my tools", "'my tools'"},
		{"it's", `'it'\''s'`},
		{"", "''"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quote(tt.in), tt.in)
	}
}

func TestDetectShell(t *testing.T) {
	tests := []struct {
		name string
		flag string
		env  map[string]string
		want string
	}{
		{"explicit", "zsh", nil, "zsh"},
		{"fish version", "auto", map[string]string{"FISH_VERSION": "3.7"}, "fish"},
		{"zsh version", "auto", map[string]string{"ZSH_VERSION": "5.9"}, "zsh"},
		{"shell path", "auto", map[string]string{"SHELL": "/usr/bin/fish"}, "fish"},
		{"empty flag", "", map[string]string{"SHELL": "/bin/zsh"}, "zsh"},
		{"default", "auto", nil, "bash"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range []string{"FISH_VERSION", "ZSH_VERSION", "BASH_VERSION", "SHELL"} {
				t.Setenv(v, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, DetectShell(tt.flag))
		})
	}
}
