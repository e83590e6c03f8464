package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/argot/internal/derrors"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Equal(t, "text", s.Output)
	assert.False(t, s.Fuzzy)
	assert.NoError(t, s.Validate())
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "config.yml", "log_level: debug\noutput: json\nfuzzy: true\n"},
		{"toml", "config.toml", "log_level = \"debug\"\noutput = \"json\"\nfuzzy = true\n"},
		{"json", "config.json", `{"log_level": "debug", "output": "json", "fuzzy": true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			write(t, path, tt.content)

			s, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "debug", s.LogLevel)
			assert.Equal(t, "json", s.Output)
			assert.True(t, s.Fuzzy)
			assert.Equal(t, "text", s.LogFormat, "unset keys keep their default")
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad output", "config.yml", "output: xml\n"},
		{"bad log format", "config.yml", "log_format: logfmt\n"},
		{"syntax", "config.yml", "output: [\n"},
		{"format", "config.ini", "output=text\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			write(t, path, tt.content)

			_, err := Load(path)
			var cfgErr *derrors.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoad_RelativeGrammar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".argot.yml")
	write(t, path, "grammar: grammars/app.yml\n")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "grammars", "app.yml"), s.Grammar)
}

func TestLoadHierarchy(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg"))

	write(t, filepath.Join(root, "xdg", "argot", "config.yml"), "log_level: info\nfuzzy: true\n")
	write(t, filepath.Join(root, "project", ".argot.yml"), "output: yaml\ngrammar: app.yml\n")
	child := filepath.Join(root, "project", "child")
	write(t, filepath.Join(child, ".argot.toml"), "log_level = \"debug\"\n")

	s, files, err := LoadHierarchy(child)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	assert.Equal(t, "debug", s.LogLevel, "child overrides global")
	assert.True(t, s.Fuzzy, "global applies when nothing overrides it")
	assert.Equal(t, "yaml", s.Output)
	assert.Equal(t, filepath.Join(root, "project", "app.yml"), s.Grammar)
}

func TestLoadHierarchy_NoConfigs(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	s, _, err := LoadHierarchy(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestGetGlobalConfigPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	path, err := GetGlobalConfigPath()
	require.NoError(t, err)
	assert.Empty(t, path)

	write(t, filepath.Join(xdg, "argot", "config.toml"), "fuzzy = true\n")
	path, err = GetGlobalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "argot", "config.toml"), path)

	t.Setenv("XDG_CONFIG_HOME", "")
	dir, err := ConfigDir()
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", "argot"), dir)
}

func TestFindConfigFiles(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, ".argot.json"), "{}")
	write(t, filepath.Join(root, "a", ".argot.yml"), "fuzzy: true\n")
	write(t, filepath.Join(root, "a", ".argot.toml"), "fuzzy = false\n")
	leaf := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(leaf, 0755))

	files := FindConfigFiles(leaf)
	require.GreaterOrEqual(t, len(files), 2)
	tail := files[len(files)-2:]
	assert.Equal(t, []string{
		filepath.Join(root, ".argot.json"),
		filepath.Join(root, "a", ".argot.yml"),
	}, tail, "root to leaf, one file per directory")
}
