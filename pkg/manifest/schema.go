package manifest

import (
	"encoding/json"
	"fmt"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateConfig validates a plugin configuration document against the
// manifest's embedded config_schema. A manifest without a schema accepts
// any document. The value round-trips through JSON so callers may pass
// native Go structures.
func (m *Manifest) ValidateConfig(config any) error {
	if len(m.ConfigSchema) == 0 {
		return nil
	}

	schema, err := compileSchema(m.ConfigSchema)
	if err != nil {
		return fmt.Errorf("compile config_schema: %w", err)
	}

	payload, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("config does not satisfy config_schema: %w", err)
	}
	return nil
}

// schemaCache holds compiled config schemas keyed by schema text, so
// repeated validations against the same manifest compile once.
var schemaCache sync.Map

func compileSchema(schema []byte) (*jsonschema.Schema, error) {
	key := string(schema)
	if cached, ok := schemaCache.Load(key); ok {
		if compiled, ok := cached.(*jsonschema.Schema); ok {
			return compiled, nil
		}
	}

	compiled, err := jsonschema.CompileString("config_schema.json", key)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(key, compiled)
	return compiled, nil
}

var (
	manifestSchemaOnce sync.Once
	manifestSchemaJSON []byte
	manifestSchemaErr  error
)

// JSONSchema returns the JSON Schema describing the manifest document
// itself, reflected from the Manifest type.
func JSONSchema() ([]byte, error) {
	manifestSchemaOnce.Do(func() {
		r := &invopop.Reflector{ExpandedStruct: true}
		schema := r.Reflect(&Manifest{})
		manifestSchemaJSON, manifestSchemaErr = json.MarshalIndent(schema, "", "  ")
	})
	return manifestSchemaJSON, manifestSchemaErr
}
