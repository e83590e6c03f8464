//go:build ignore

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/NikitaCOEUR/argot/internal/grammar"
)

func main() {
	r := &jsonschema.Reflector{
		FieldNameTag:               "koanf",
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}

	schema := r.Reflect(&grammar.CommandDecl{})

	// A value source sets exactly one of its fields
	if def, ok := schema.Definitions["SourceDecl"]; ok {
		def.MinProperties = uint64Ptr(1)
		def.MaxProperties = uint64Ptr(1)
	}

	// Groups list at least two option names
	if def, ok := schema.Definitions["CommandDecl"]; ok {
		if groups, ok := def.Properties.Get("groups"); ok && groups.Items != nil {
			groups.Items.MinItems = uint64Ptr(2)
		}
	}

	// Use draft-07 for IDE compatibility
	schema.Version = "http://json-schema.org/draft-07/schema#"
	schema.ID = "https://raw.githubusercontent.com/NikitaCOEUR/argot/main/schema/argot.schema.json"
	schema.Title = "Argot Grammar"
	schema.Description = "Command tree declaration for argot"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling schema: %v\n", err)
		os.Exit(1)
	}

	outputPath := "schema.json"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Schema generated: %s\n", outputPath)
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}
