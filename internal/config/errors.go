package config

import "fmt"

// ConversionError reports a raw string that could not be coerced to the
// field's declared type.
type ConversionError struct {
	Key  string
	Raw  string
	Type FieldType
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("config: cannot convert %q to %s for %q", e.Raw, e.Type, e.Key)
}

// ValidationError reports a coerced value that violates the field's
// constraints (choices membership or numeric bounds).
type ValidationError struct {
	Key    string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid value for %q: %s", e.Key, e.Reason)
}

// ReadOnlyError reports an attempt to set a key on the read-only denylist.
type ReadOnlyError struct {
	Key string
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("config: %q is read-only", e.Key)
}

// UnknownKeyError reports a set against a key the schema does not declare.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("config: unknown key %q", e.Key)
}
