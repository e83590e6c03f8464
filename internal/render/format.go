package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Formats lists the accepted output formats
var Formats = []string{FormatText, FormatYAML, FormatJSON}

// Write encodes v to w. Text output knows reports, completions and
// suggestions; other values are printed with fmt.
func Write(w io.Writer, format string, v any) error {
	switch format {
	case FormatText, "":
		out := Text(v)
		if out == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, out)
		return err

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q (expected one of %v)", format, Formats)
}

// Text renders v for a terminal
func Text(v any) string {
	switch val := v.(type) {
	case *Report:
		return Render(val)
	case []Completion:
		return Completions(val)
	case Suggestions:
		return RenderSuggestions(val)
	case []Diagnostic:
		return Diagnostics(val)
	}
	return fmt.Sprint(v)
}
