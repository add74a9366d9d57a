// Package main generates JSON schemas for the websocket wire protocol.
// Client authors validate their envelopes against the output instead of
// reverse-engineering the Go types.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/cory-johannsen/gambit/internal/gameserver"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "docs/schema", "directory to write the JSON schemas")
	flag.Parse()

	schemas := []struct {
		name string
		v    any
	}{
		{"client_message.json", new(gameserver.ClientMessage)},
		{"welcome.json", new(gameserver.WelcomeMessage)},
		{"state.json", new(gameserver.StateMessage)},
		{"events.json", new(gameserver.EventsMessage)},
		{"error.json", new(gameserver.ErrorMessage)},
		{"game_over.json", new(gameserver.GameOverMessage)},
	}

	for _, s := range schemas {
		schema := buildSchema(s.v)
		if err := writeSchema(filepath.Join(outDir, s.name), schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", s.name, err)
			os.Exit(1)
		}
		fmt.Println(filepath.Join(outDir, s.name))
	}
}

func buildSchema(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(v)
	schema.Title = "Gambit Wire Protocol"
	schema.Description = "Validates JSON envelopes exchanged over the /ws endpoint"
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

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
