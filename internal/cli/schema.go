package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NikitaCOEUR/argot/internal/grammar"
	"github.com/NikitaCOEUR/argot/internal/render"
)

// Schema prints the grammar JSON Schema, or writes it to outputPath. With
// yaml output the schema is converted, keeping its key order.
func Schema(opts Options, outputPath string) error {
	schema := grammar.SchemaJSON()
	if opts.Output == render.FormatYAML {
		converted, err := schemaYAML(schema)
		if err != nil {
			return err
		}
		schema = converted
	}

	if outputPath == "" {
		fmt.Fprintln(opts.out(), schema)
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(schema), 0644); err != nil {
		return fmt.Errorf("failed to write schema to %s: %w", outputPath, err)
	}
	opts.logger().Debug().Str("path", outputPath).Int("bytes", len(schema)).Msg("Schema written")
	fmt.Fprintf(opts.out(), "JSON Schema written to: %s\n", outputPath)
	return nil
}

func schemaYAML(schema string) (string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(schema), &doc); err != nil {
		return "", fmt.Errorf("failed to convert schema: %w", err)
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("failed to convert schema: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// blockStyle drops the flow and quoting styles JSON input carries; the
// encoder re-quotes scalars that need it.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
