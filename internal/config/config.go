// Package config handles loading of argot tool settings.
//
// Settings come from a global file under $XDG_CONFIG_HOME/argot and from
// project files named .argot.* found between the filesystem root and the
// working directory. Files closer to the working directory win.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/NikitaCOEUR/argot/internal/derrors"
)

// SupportedConfigNames contains supported project settings file names (in order of preference)
var SupportedConfigNames = []string{
	".argot.yml",
	".argot.yaml",
	".argot.toml",
	".argot.json",
}

// GlobalConfigNames are the global settings file names under the argot config dir
var GlobalConfigNames = []string{
	"config.yml",
	"config.yaml",
	"config.toml",
	"config.json",
}

// Accepted values
var (
	LogFormats = []string{"text", "json"}
	Outputs    = []string{"text", "yaml", "json"}
)

// Settings are the tool settings
type Settings struct {
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	Grammar   string `koanf:"grammar"` // Grammar file; relative paths are resolved from the settings file
	Output    string `koanf:"output"`
	Fuzzy     bool   `koanf:"fuzzy"`
	History   string `koanf:"history"` // REPL history file
}

// Default returns the settings used when no file sets a key
func Default() *Settings {
	return &Settings{
		LogLevel:  "warn",
		LogFormat: "text",
		Output:    "text",
	}
}

// Validate checks that enumerated settings hold known values
func (s *Settings) Validate() error {
	if !slices.Contains(LogFormats, s.LogFormat) {
		return fmt.Errorf("log_format must be one of %s, got %q", strings.Join(LogFormats, ", "), s.LogFormat)
	}
	if !slices.Contains(Outputs, s.Output) {
		return fmt.Errorf("output must be one of %s, got %q", strings.Join(Outputs, ", "), s.Output)
	}
	return nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// loadFile reads one settings file into its own koanf instance
func loadFile(path string) (*koanf.Koanf, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), parser); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if g := k.String("grammar"); g != "" && !filepath.IsAbs(g) {
		if err := k.Set("grammar", filepath.Join(filepath.Dir(path), g)); err != nil {
			return nil, err
		}
	}
	return k, nil
}

// Load reads the settings file at path on top of the defaults
func Load(path string) (*Settings, error) {
	return merge([]string{path})
}

// LoadHierarchy loads the global settings, then every project settings file
// from the filesystem root down to dir. It returns the files used.
func LoadHierarchy(dir string) (*Settings, []string, error) {
	var files []string
	if global, err := GetGlobalConfigPath(); err == nil && global != "" {
		files = append(files, global)
	}
	files = append(files, FindConfigFiles(dir)...)

	s, err := merge(files)
	if err != nil {
		return nil, files, err
	}
	return s, files, nil
}

func merge(files []string) (*Settings, error) {
	merged := koanf.New(".")
	for _, path := range files {
		k, err := loadFile(path)
		if err != nil {
			return nil, derrors.NewConfigurationError(path, "invalid settings file", err)
		}
		if err := merged.Merge(k); err != nil {
			return nil, derrors.NewConfigurationError(path, "invalid settings file", err)
		}
	}

	s := Default()
	if err := merged.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, derrors.NewConfigurationError(strings.Join(files, ", "), "invalid settings", err)
	}
	return s, nil
}

// ConfigDir returns the argot directory under XDG_CONFIG_HOME (or ~/.config)
func ConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "argot"), nil
}

// GetGlobalConfigPath returns the first global settings file that exists, or
// an empty path when there is none
func GetGlobalConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range GlobalConfigNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// FindConfigFiles searches for project settings from startDir up to the root.
// Returns paths in order from root to leaf (for proper merging).
func FindConfigFiles(startDir string) []string {
	var configs []string
	currentDir := startDir

	for {
		for _, name := range SupportedConfigNames {
			path := filepath.Join(currentDir, name)
			if _, err := os.Stat(path); err == nil {
				configs = append(configs, path)
				break // Only one config per directory
			}
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			break
		}
		currentDir = parent
	}

	slices.Reverse(configs)
	return configs
}
