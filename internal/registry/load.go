package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Block definition files are validated before anything reaches the attribute
// tables so a bad data pack cannot corrupt meshing.
const definitionSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "name"],
		"properties": {
			"id": {"type": "integer", "minimum": 0, "maximum": 65535},
			"name": {"type": "string", "minLength": 1},
			"transparent": {"type": "boolean"},
			"viewThrough": {"type": "boolean"},
			"solid": {"type": "boolean"},
			"degradable": {"type": "boolean"},
			"hasBackFace": {"type": "boolean"},
			"light": {"type": "integer", "minimum": 0, "maximum": 255},
			"absorption": {"type": "integer", "minimum": 0, "maximum": 255},
			"model": {"type": "string"},
			"rotatable": {"type": "boolean"},
			"permutation": {"type": "integer", "minimum": 0, "maximum": 63},
			"tint": {"type": "integer", "minimum": 0, "maximum": 4294967295}
		},
		"additionalProperties": false
	}
}`

var schema = jsonschema.MustCompileString("blocks.schema.json", definitionSchema)

// LoadDefinitions reads a JSON array of block definitions, validates it and
// registers every entry. Entries failing validation abort the load; the
// built-in table from Init stays intact in that case.
func LoadDefinitions(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("registry: read definitions: %w", err)
	}
	return loadDefinitionBytes(data)
}

func loadDefinitionBytes(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("registry: parse definitions: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return fmt.Errorf("registry: invalid definitions: %w", err)
	}

	var list []BlockDefinition
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("registry: decode definitions: %w", err)
	}
	for i := range list {
		RegisterBlock(&list[i])
	}
	log.Printf("registry: loaded %d block definitions", len(list))
	return nil
}
