package replay

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed artifact.schema.json
var artifactSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func artifactSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("artifact.schema.json", artifactSchemaJSON)
	})
	return schema, schemaErr
}

// ValidateDocument checks a decoded JSON document against the artifact schema.
func ValidateDocument(doc any) error {
	s, err := artifactSchema()
	if err != nil {
		return fmt.Errorf("replay: compile schema: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("replay: invalid artifact: %w", err)
	}
	return nil
}
