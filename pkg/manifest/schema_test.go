package manifest

import (
	"encoding/json"
	"strings"
	"testing"
)

const requireTokenSchema = `{
	"type": "object",
	"properties": {
		"token": {"type": "string", "minLength": 1},
		"retries": {"type": "integer", "minimum": 0}
	},
	"required": ["token"]
}`

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		config  any
		wantErr bool
	}{
		{
			name:   "no schema accepts anything",
			config: map[string]any{"anything": true, "nested": []int{1, 2}},
		},
		{
			name:   "valid document",
			schema: requireTokenSchema,
			config: map[string]any{"token": "abc", "retries": 3},
		},
		{
			name:    "missing required property",
			schema:  requireTokenSchema,
			config:  map[string]any{"retries": 3},
			wantErr: true,
		},
		{
			name:    "wrong property type",
			schema:  requireTokenSchema,
			config:  map[string]any{"token": "abc", "retries": "many"},
			wantErr: true,
		},
		{
			name:   "native struct round-trips",
			schema: requireTokenSchema,
			config: struct {
				Token   string `json:"token"`
				Retries int    `json:"retries"`
			}{Token: "abc", Retries: 1},
		},
		{
			name:    "schema that does not compile",
			schema:  `{"type": 12}`,
			config:  map[string]any{},
			wantErr: true,
		},
		{
			name:    "config that cannot encode",
			schema:  requireTokenSchema,
			config:  make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{}
			if tt.schema != "" {
				m.ConfigSchema = json.RawMessage(tt.schema)
			}

			err := m.ValidateConfig(tt.config)
			if tt.wantErr && err == nil {
				t.Error("ValidateConfig() accepted invalid input")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateConfig() error = %v", err)
			}
		})
	}
}

func TestValidateConfig_ErrorNamesSchema(t *testing.T) {
	m := &Manifest{ConfigSchema: json.RawMessage(requireTokenSchema)}
	err := m.ValidateConfig(map[string]any{})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "config_schema") {
		t.Errorf("error = %q, want mention of config_schema", err)
	}
}

func TestJSONSchema(t *testing.T) {
	data, err := JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("JSONSchema() returned no bytes")
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatal("schema has no properties object")
	}
	for _, want := range []string{"manifest_version", "name", "version", "plugin_info", "config_schema"} {
		if _, ok := props[want]; !ok {
			t.Errorf("schema missing property %q", want)
		}
	}

	again, err := JSONSchema()
	if err != nil {
		t.Fatalf("second JSONSchema() error = %v", err)
	}
	if string(again) != string(data) {
		t.Error("JSONSchema() is not stable across calls")
	}
}
