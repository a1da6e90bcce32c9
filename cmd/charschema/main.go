// charschema emits the JSON schema for the character definition format so
// roster files can be validated in editors and CI without running the game.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"ringside/internal/character"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{}
	schema := reflector.Reflect(new(character.Definition))
	schema.Title = "Ringside Character Definition"
	schema.Description = fmt.Sprintf(
		"Validates fighter files: seven stats in [%d,%d] with a budget of %d, move parameters in [%d,%d].",
		character.StatMin, character.StatMax, character.StatBudget, character.MoveMin, character.MoveMax,
	)
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write schema file: %w", err)
	}
	return nil
}
