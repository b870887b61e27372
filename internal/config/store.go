// Package config implements the schema-driven configuration store for the
// plugin host core: declaration-ordered field schemas, dotted-path lookup,
// typed coercion of string input, constraint validation, a read-only
// denylist, TOML/YAML persistence and optional file watching.
//
// The store is the single source of behavior parameters for components and
// of enable flags for the component registry. Sets are atomic: a failed
// coercion or validation leaves the tree untouched.
package config

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Entry is one row of a deterministic store listing.
type Entry struct {
	Key     string
	Section string
	Name    string
	Value   any
	Type    FieldType
}

// Store holds the configuration tree for one plugin instance.
type Store struct {
	mu       sync.RWMutex
	schema   *Schema
	tree     map[string]any
	readonly map[string]struct{}
	logger   *slog.Logger
}

// NewStore builds a store from schema defaults. The variadic keys join
// the read-only denylist; they refuse Set and Reset whether or not the
// schema declares them.
func NewStore(schema *Schema, logger *slog.Logger, readonly ...string) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		schema:   schema,
		tree:     make(map[string]any),
		readonly: make(map[string]struct{}, len(readonly)),
		logger:   logger.With("component", "config"),
	}
	for _, key := range readonly {
		s.readonly[key] = struct{}{}
	}
	for _, f := range schema.Fields() {
		s.install(f.Key, cloneValue(f.Default))
	}
	return s
}

// Schema returns the store's field declarations.
func (s *Store) Schema() *Schema {
	return s.schema
}

// ReadOnly reports whether key is on the denylist.
func (s *Store) ReadOnly(key string) bool {
	_, denied := s.readonly[key]
	return denied
}

// Get returns the value at the dotted key, or fallback when any path
// segment is absent. It never fails.
func (s *Store) Get(key string, fallback any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := any(s.tree)
	for _, segment := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return fallback
		}
		current, ok = m[segment]
		if !ok {
			return fallback
		}
	}
	return cloneValue(current)
}

// GetBool returns the bool at key, or fallback on absence or type mismatch.
func (s *Store) GetBool(key string, fallback bool) bool {
	if v, ok := s.Get(key, nil).(bool); ok {
		return v
	}
	return fallback
}

// GetInt returns the integer at key, or fallback on absence or type mismatch.
func (s *Store) GetInt(key string, fallback int64) int64 {
	if v, ok := s.Get(key, nil).(int64); ok {
		return v
	}
	return fallback
}

// GetFloat returns the float at key, or fallback on absence or type
// mismatch. Integer values convert.
func (s *Store) GetFloat(key string, fallback float64) float64 {
	switch v := s.Get(key, nil).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return fallback
}

// GetString returns the string at key, or fallback on absence or type
// mismatch.
func (s *Store) GetString(key string, fallback string) string {
	if v, ok := s.Get(key, nil).(string); ok {
		return v
	}
	return fallback
}

// GetStringList returns the list at key, or fallback on absence or type
// mismatch.
func (s *Store) GetStringList(key string, fallback []string) []string {
	if v, ok := s.Get(key, nil).([]string); ok {
		return v
	}
	return fallback
}

// Set coerces raw to the key's declared type, validates it, and installs it
// atomically. The read-only denylist is consulted before anything else. On
// success the installed value is returned.
func (s *Store) Set(key, raw string) (any, error) {
	if s.ReadOnly(key) {
		return nil, &ReadOnlyError{Key: key}
	}
	f, ok := s.schema.Field(key)
	if !ok {
		return nil, &UnknownKeyError{Key: key}
	}

	value, err := Coerce(f, raw)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(value); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.install(key, value)
	return cloneValue(value), nil
}

// Reset restores the key's schema default. Read-only keys still refuse.
func (s *Store) Reset(key string) (any, error) {
	if s.ReadOnly(key) {
		return nil, &ReadOnlyError{Key: key}
	}
	f, ok := s.schema.Field(key)
	if !ok {
		return nil, &UnknownKeyError{Key: key}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.install(key, cloneValue(f.Default))
	return cloneValue(f.Default), nil
}

// List enumerates current values in schema declaration order.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.schema.fields))
	for _, f := range s.schema.fields {
		entries = append(entries, Entry{
			Key:     f.Key,
			Section: f.Section(),
			Name:    f.Name(),
			Value:   cloneValue(s.lookup(f.Key)),
			Type:    f.Type,
		})
	}
	return entries
}

// Snapshot returns a deep copy of the whole tree.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTree(s.tree)
}

// Apply overlays raw file values onto the tree. Entries that are unknown or
// fail the field's type/constraints are logged and skipped; the overlay
// never fails.
func (s *Store) Apply(raw map[string]any, source string) {
	if raw == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.schema.fields {
		value, present := lookupPath(raw, f.Key)
		if !present {
			continue
		}
		canonical, ok := normalize(f, value)
		if !ok {
			s.logger.Warn("ignoring ill-typed configuration value",
				"key", f.Key, "source", source, "got", value)
			continue
		}
		if err := f.Validate(canonical); err != nil {
			s.logger.Warn("ignoring invalid configuration value",
				"key", f.Key, "source", source, "error", err)
			continue
		}
		s.install(f.Key, canonical)
	}

	for _, key := range unknownLeaves(raw, s.schema) {
		s.logger.Warn("unknown configuration key", "key", key, "source", source)
	}
}

// lookup reads the value at key without locking. Callers hold the lock.
func (s *Store) lookup(key string) any {
	current := any(s.tree)
	for _, segment := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[segment]
		if !ok {
			return nil
		}
	}
	return current
}

// install writes value at key, creating intermediate maps. Callers hold the
// lock (or own the store exclusively, as in NewStore).
func (s *Store) install(key string, value any) {
	segments := strings.Split(key, ".")
	m := s.tree
	for _, segment := range segments[:len(segments)-1] {
		next, ok := m[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[segment] = next
		}
		m = next
	}
	m[segments[len(segments)-1]] = value
}

// normalize converts a decoded file value to the field's canonical type.
func normalize(f *Field, value any) (any, bool) {
	switch f.Type {
	case TypeBool:
		if v, ok := value.(bool); ok {
			return v, true
		}
	case TypeInt:
		switch v := value.(type) {
		case int:
			return int64(v), true
		case int64:
			return v, true
		}
	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		}
	case TypeString:
		if v, ok := value.(string); ok {
			return v, true
		}
	case TypeStringList:
		switch v := value.(type) {
		case []string:
			return cloneValue(v), true
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				str, ok := item.(string)
				if !ok {
					return nil, false
				}
				out = append(out, str)
			}
			return out, true
		}
	}
	return nil, false
}

func lookupPath(raw map[string]any, key string) (any, bool) {
	current := any(raw)
	for _, segment := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// unknownLeaves collects dotted keys present in raw but absent from the
// schema, sorted for deterministic logging.
func unknownLeaves(raw map[string]any, schema *Schema) []string {
	var keys []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for name, value := range m {
			key := name
			if prefix != "" {
				key = prefix + "." + name
			}
			if nested, ok := value.(map[string]any); ok {
				walk(key, nested)
				continue
			}
			if _, known := schema.Field(key); !known {
				keys = append(keys, key)
			}
		}
	}
	walk("", raw)
	sort.Strings(keys)
	return keys
}

func cloneTree(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneTree(val)
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
