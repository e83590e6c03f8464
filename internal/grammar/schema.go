package grammar

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:generate go run schema_gen.go schema.json

//go:embed schema.json
var schemaJSON string

// SchemaJSON returns the JSON Schema for grammar files
func SchemaJSON() string {
	return schemaJSON
}

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// ValidationResult contains the results of grammar validation
type ValidationResult struct {
	Valid  bool              `json:"valid" yaml:"valid"`
	Errors []ValidationError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func (r *ValidationResult) add(field, format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Summary joins every error into one line
func (r *ValidationResult) Summary() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// ValidateDocument checks an already decoded grammar against the schema
func ValidateDocument(doc map[string]any) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true, Errors: []ValidationError{}}

	schemaLoader := gojsonschema.NewStringLoader(SchemaJSON())
	documentLoader := gojsonschema.NewGoLoader(doc)

	validationResult, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	for _, e := range validationResult.Errors() {
		result.add(e.Field(), "%s", e.Description())
	}
	return result, nil
}

// Validate checks a grammar file: syntax, schema, then that a symbol tree can
// be built from it. Every problem found at the failing stage is reported.
func Validate(path string) (*ValidationResult, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("grammar file not found: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	decl, raw, err := Parse(path, content)
	if err != nil {
		result := &ValidationResult{Valid: true}
		result.add("syntax", "Failed to parse grammar: %v", err)
		return result, nil
	}

	result, err := ValidateDocument(raw)
	if err != nil || !result.Valid {
		return result, err
	}

	if _, err := Build(decl); err != nil {
		result.add("grammar", "%v", err)
	}
	return result, nil
}
