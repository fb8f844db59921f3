package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Artifact formats accepted by WriteArtifact.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

const artifactSchemaURL = "https://tulz.net/schemas/search-index.json"

//go:embed search-index.schema.json
var artifactSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func artifactSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var doc interface{}
		if err := json.Unmarshal(artifactSchemaJSON, &doc); err != nil {
			schemaErr = fmt.Errorf("invalid artifact schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(artifactSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("failed to add artifact schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(artifactSchemaURL)
	})
	return schema, schemaErr
}

// LoadArtifact reads a search index artifact, either a JSON array of
// entries or JSON lines, validating it against the artifact schema before
// decoding.
func LoadArtifact(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '[' {
		data = linesToArray(data)
	}

	sch, err := artifactSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("artifact does not match schema: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	for i := range entries {
		if entries[i].Tags == nil {
			entries[i].Tags = []string{}
		}
	}
	return entries, nil
}

// WriteArtifact writes entries as a JSON array or as JSON lines.
func WriteArtifact(w io.Writer, entries []Entry, format string) error {
	encoder := json.NewEncoder(w)

	switch format {
	case FormatJSON, "":
		encoder.SetIndent("", "  ")
		if entries == nil {
			entries = []Entry{}
		}
		if err := encoder.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode entries: %w", err)
		}
	case FormatJSONL:
		for _, e := range entries {
			if err := encoder.Encode(e); err != nil {
				return fmt.Errorf("failed to encode entry %s: %w", e.ID, err)
			}
		}
	default:
		return fmt.Errorf("unknown artifact format: %q", format)
	}

	return nil
}

// linesToArray joins the non-blank lines of a JSON lines document into a
// JSON array.
func linesToArray(data []byte) []byte {
	var parts [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if line = bytes.TrimSpace(line); len(line) > 0 {
			parts = append(parts, line)
		}
	}
	out := append([]byte("["), bytes.Join(parts, []byte(","))...)
	return append(out, ']')
}
