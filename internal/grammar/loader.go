package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/NikitaCOEUR/argot/internal/derrors"
	"github.com/NikitaCOEUR/argot/internal/logger"
	"github.com/NikitaCOEUR/argot/internal/symbol"
)

// SupportedExtensions contains the grammar file formats, in order of preference
var SupportedExtensions = []string{".yml", ".yaml", ".toml", ".json"}

// DefaultNames are looked up in the working directory when no grammar is given
var DefaultNames = []string{"argot.yml", "argot.yaml", "argot.toml", "argot.json"}

// cachedGrammar stores a parsed file with its modification time and hash
type cachedGrammar struct {
	decl    *CommandDecl
	raw     map[string]any
	modTime time.Time
	size    int64
	hash    string
}

// Loader reads grammar files. Parsed files are cached and reused while their
// modification time and size are unchanged.
type Loader struct {
	mu    sync.Mutex
	cache map[string]*cachedGrammar
	log   *logger.Logger
}

// NewLoader creates a new grammar loader
func NewLoader(log *logger.Logger) *Loader {
	if log == nil {
		log = logger.New("warn", os.Stderr)
	}
	return &Loader{
		cache: make(map[string]*cachedGrammar),
		log:   log,
	}
}

// parserFor picks a koanf parser from the file extension
func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported grammar format: %s", ext)
	}
}

// Parse decodes grammar content. path only selects the format.
func Parse(path string, content []byte) (*CommandDecl, map[string]any, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, nil, err
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), parser); err != nil {
		return nil, nil, fmt.Errorf("failed to parse grammar: %w", err)
	}

	decl := &CommandDecl{}
	if err := k.Unmarshal("", decl); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal grammar: %w", err)
	}
	return decl, k.Raw(), nil
}

// Load reads and parses a grammar file
func (l *Loader) Load(path string) (*CommandDecl, error) {
	entry, err := l.load(path)
	if err != nil {
		return nil, err
	}
	return entry.decl, nil
}

func (l *Loader) load(path string) (*cachedGrammar, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.NewNotFoundError(path, "grammar file not found")
		}
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, exists := l.cache[path]; exists {
		// Verify file hasn't been modified (check both modtime and size)
		if !info.ModTime().After(cached.modTime) && info.Size() == cached.size {
			l.log.Debug().Str("path", path).Msg("Grammar cache hit")
			return cached, nil
		}
		delete(l.cache, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar: %w", err)
	}

	decl, raw, err := Parse(path, content)
	if err != nil {
		return nil, derrors.NewConfigurationError(path, "invalid grammar file", err)
	}

	sum := sha256.Sum256(content)
	entry := &cachedGrammar{
		decl:    decl,
		raw:     raw,
		modTime: info.ModTime(),
		size:    info.Size(),
		hash:    hex.EncodeToString(sum[:]),
	}
	l.cache[path] = entry
	l.log.Debug().Str("path", path).Str("hash", entry.hash[:12]).Msg("Grammar loaded")
	return entry, nil
}

// Hash returns the SHA-256 of a grammar file's content
func (l *Loader) Hash(path string) (string, error) {
	entry, err := l.load(path)
	if err != nil {
		return "", err
	}
	return entry.hash, nil
}

// LoadTree loads, schema-checks and builds a grammar file
func (l *Loader) LoadTree(path string) (*symbol.Symbol, error) {
	entry, err := l.load(path)
	if err != nil {
		return nil, err
	}

	result, err := ValidateDocument(entry.raw)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, derrors.NewConfigurationError(path, result.Summary(), nil)
	}

	root, err := Build(entry.decl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// Find returns the first default grammar file present in dir
func Find(dir string) (string, bool) {
	for _, name := range DefaultNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
