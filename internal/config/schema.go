package config

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldType is the declared data type of a configuration field.
type FieldType uint8

const (
	// TypeBool is a boolean value.
	TypeBool FieldType = iota
	// TypeInt is a 64-bit integer value.
	TypeInt
	// TypeFloat is a 64-bit floating-point value.
	TypeFloat
	// TypeString is a string value.
	TypeString
	// TypeStringList is a list of strings.
	TypeStringList
)

// String returns the display name of the type.
func (t FieldType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeStringList:
		return "list"
	default:
		return "unknown"
	}
}

// keyPattern matches dotted configuration keys: at least two segments, each
// starting with a letter or underscore.
var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)+$`)

// Field declares one configuration key with its metadata.
type Field struct {
	// Key is the dot-separated path (e.g., "actions.response_probability").
	Key string

	// Type is the field's data type.
	Type FieldType

	// Default is the value installed when no override is present.
	Default any

	// Description is human-readable documentation.
	Description string

	// Choices lists allowed values for string fields.
	Choices []string

	// Minimum for numeric fields (nil means no minimum).
	Minimum *float64

	// Maximum for numeric fields (nil means no maximum).
	Maximum *float64
}

// Section returns the first segment of the key.
func (f *Field) Section() string {
	if i := strings.IndexByte(f.Key, '.'); i >= 0 {
		return f.Key[:i]
	}
	return f.Key
}

// Name returns the key without its section prefix.
func (f *Field) Name() string {
	if i := strings.IndexByte(f.Key, '.'); i >= 0 {
		return f.Key[i+1:]
	}
	return f.Key
}

// Validate checks a canonical value against the field's declared type and
// constraints.
func (f *Field) Validate(value any) error {
	if err := f.checkType(value); err != nil {
		return &ValidationError{Key: f.Key, Value: value, Reason: err.Error()}
	}

	if len(f.Choices) > 0 {
		s, _ := value.(string)
		found := false
		for _, c := range f.Choices {
			if c == s {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{
				Key:    f.Key,
				Value:  value,
				Reason: fmt.Sprintf("must be one of %v", f.Choices),
			}
		}
	}

	if f.Type == TypeInt || f.Type == TypeFloat {
		var n float64
		switch v := value.(type) {
		case int64:
			n = float64(v)
		case float64:
			n = v
		}
		if f.Minimum != nil && n < *f.Minimum {
			return &ValidationError{
				Key:    f.Key,
				Value:  value,
				Reason: fmt.Sprintf("%v is less than minimum %v", value, *f.Minimum),
			}
		}
		if f.Maximum != nil && n > *f.Maximum {
			return &ValidationError{
				Key:    f.Key,
				Value:  value,
				Reason: fmt.Sprintf("%v is greater than maximum %v", value, *f.Maximum),
			}
		}
	}

	return nil
}

func (f *Field) checkType(value any) error {
	switch f.Type {
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
	case TypeInt:
		if _, ok := value.(int64); !ok {
			return fmt.Errorf("expected int, got %T", value)
		}
	case TypeFloat:
		switch value.(type) {
		case float64, int64:
			// Integers are acceptable for float fields.
		default:
			return fmt.Errorf("expected float, got %T", value)
		}
	case TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case TypeStringList:
		if _, ok := value.([]string); !ok {
			return fmt.Errorf("expected list of strings, got %T", value)
		}
	}
	return nil
}

// declarationCheck verifies the field declaration itself is consistent.
func (f *Field) declarationCheck() error {
	if !keyPattern.MatchString(f.Key) {
		return fmt.Errorf("config: invalid key %q", f.Key)
	}
	if len(f.Choices) > 0 && f.Type != TypeString {
		return fmt.Errorf("config: %q declares choices on a non-string field", f.Key)
	}
	if (f.Minimum != nil || f.Maximum != nil) && f.Type != TypeInt && f.Type != TypeFloat {
		return fmt.Errorf("config: %q declares bounds on a non-numeric field", f.Key)
	}
	if err := f.Validate(f.Default); err != nil {
		return fmt.Errorf("config: default for %q: %w", f.Key, err)
	}
	return nil
}

// Schema is a declaration-ordered registry of fields.
type Schema struct {
	fields []*Field
	index  map[string]*Field
}

// NewSchema builds a schema, verifying every field declaration.
func NewSchema(fields ...*Field) (*Schema, error) {
	s := &Schema{
		fields: make([]*Field, 0, len(fields)),
		index:  make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		if err := f.declarationCheck(); err != nil {
			return nil, err
		}
		if _, exists := s.index[f.Key]; exists {
			return nil, fmt.Errorf("config: duplicate key %q", f.Key)
		}
		s.fields = append(s.fields, f)
		s.index[f.Key] = f
	}
	return s, nil
}

// MustSchema is NewSchema that panics on a bad declaration. Intended for
// statically declared schemas.
func MustSchema(fields ...*Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Field returns the declaration for key.
func (s *Schema) Field(key string) (*Field, bool) {
	f, ok := s.index[key]
	return f, ok
}

// Fields returns all declarations in declaration order.
func (s *Schema) Fields() []*Field {
	out := make([]*Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// MinValue creates a pointer to a float64 for use as Minimum.
func MinValue(v float64) *float64 { return &v }

// MaxValue creates a pointer to a float64 for use as Maximum.
func MaxValue(v float64) *float64 { return &v }

// DefaultReadOnlyKeys is the denylist applied by hosts: these keys refuse
// Set and Reset regardless of value, whether or not the schema declares them.
var DefaultReadOnlyKeys = []string{
	"plugin.config_version",
	"plugin.plugin_name",
}

// DefaultSchema declares the stock plugin configuration.
func DefaultSchema() *Schema {
	return MustSchema(
		&Field{Key: "plugin.enabled", Type: TypeBool, Default: true,
			Description: "Master switch: when false no components are registered"},
		&Field{Key: "plugin.config_version", Type: TypeString, Default: "1.0.0",
			Description: "Configuration format version"},
		&Field{Key: "plugin.debug_mode", Type: TypeBool, Default: false,
			Description: "Verbose diagnostic logging"},

		&Field{Key: "features.enable_greetings", Type: TypeBool, Default: true,
			Description: "Register the greeting action"},
		&Field{Key: "features.enable_smart_responses", Type: TypeBool, Default: true,
			Description: "Register the smart response action"},
		&Field{Key: "features.enable_help_command", Type: TypeBool, Default: true,
			Description: "Register the /help command"},
		&Field{Key: "features.enable_config_command", Type: TypeBool, Default: false,
			Description: "Register the /config command"},

		&Field{Key: "actions.greeting_keywords", Type: TypeStringList,
			Default:     []string{"你好", "hello", "hi", "嗨"},
			Description: "Keywords that trigger the greeting action"},
		&Field{Key: "actions.response_probability", Type: TypeFloat, Default: 0.1,
			Minimum:     MinValue(0),
			Maximum:     MaxValue(1),
			Description: "Probability that the smart response action activates"},
		&Field{Key: "actions.max_response_length", Type: TypeInt, Default: int64(200),
			Minimum:     MinValue(1),
			Description: "Maximum generated response length in runes"},
		&Field{Key: "actions.enable_emoji", Type: TypeBool, Default: true,
			Description: "Include emoji in generated responses"},

		&Field{Key: "commands.help_prefix", Type: TypeString, Default: "📖",
			Description: "Prefix shown before help output"},
		&Field{Key: "commands.config_admin_only", Type: TypeBool, Default: true,
			Description: "Restrict /config to admin invocations"},
		&Field{Key: "commands.command_timeout", Type: TypeInt, Default: int64(30),
			Minimum:     MinValue(1),
			Description: "Command execution timeout in seconds"},

		&Field{Key: "advanced.cache_enabled", Type: TypeBool, Default: true,
			Description: "Cache smart responses"},
		&Field{Key: "advanced.cache_ttl", Type: TypeInt, Default: int64(3600),
			Minimum:     MinValue(1),
			Description: "Response cache lifetime in seconds"},
		&Field{Key: "advanced.log_level", Type: TypeString, Default: "INFO",
			Choices:     []string{"DEBUG", "INFO", "WARNING", "ERROR"},
			Description: "Plugin log level"},
		&Field{Key: "advanced.performance_monitor", Type: TypeBool, Default: false,
			Description: "Record metrics for turns, commands and actions"},
	)
}
