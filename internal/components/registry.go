// Package components resolves which plugin components are active.
//
// The registry owns descriptors, never instances: each descriptor names a
// component, its kind, and the config flag that enables it, plus a factory
// that closes over the component's dependencies. Resolve consults the
// config store and instantiates the enabled set in declaration order.
package components

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/haasonsaas/pluginhost/internal/config"
)

// Kind classifies a component.
type Kind string

const (
	// KindAction marks chat-triggered components.
	KindAction Kind = "action"
	// KindCommand marks slash-command components.
	KindCommand Kind = "command"
)

// Descriptor declares a component without instantiating it.
type Descriptor struct {
	// Name uniquely identifies the component.
	Name string
	// Kind is the component category.
	Kind Kind
	// Description is a one-line summary for docs and listings.
	Description string
	// EnableFlag is the config key gating the component. Empty means the
	// component is always enabled (the master plugin.enabled switch still
	// applies).
	EnableFlag string
	// New constructs the component instance. Factories close over their
	// dependencies; the registry never injects anything.
	New func() any
}

// Resolved pairs a descriptor with its constructed instance.
type Resolved struct {
	Descriptor
	Instance any
}

// Level classifies a diagnostic.
type Level string

// LevelInfo marks expected skips such as disabled components.
const LevelInfo Level = "info"

// Diagnostic records why a component was not instantiated. Disabled
// components are silent no-ops, never errors.
type Diagnostic struct {
	Level     Level
	Component string
	Reason    string
}

// DuplicateComponentError reports a name registered twice.
type DuplicateComponentError struct {
	Name string
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("components: %q already registered", e.Name)
}

// Registry holds component descriptors in declaration order.
type Registry struct {
	mu          sync.RWMutex
	descriptors []Descriptor
	byName      map[string]struct{}
	diagnostics []Diagnostic
	logger      *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byName: make(map[string]struct{}),
		logger: logger.With("component", "components"),
	}
}

// Register adds a descriptor. An empty name, a nil factory, or a
// duplicate name is a registration error.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return errors.New("components: descriptor name is empty")
	}
	if d.New == nil {
		return fmt.Errorf("components: descriptor %q has no factory", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[d.Name]; exists {
		return &DuplicateComponentError{Name: d.Name}
	}
	r.byName[d.Name] = struct{}{}
	r.descriptors = append(r.descriptors, d)
	return nil
}

// Descriptors returns the registered descriptors in declaration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Descriptor(nil), r.descriptors...)
}

// Resolve instantiates the enabled components in declaration order.
// When plugin.enabled is false the result is empty and no per-component
// flag is consulted. Skips are recorded as diagnostics for Diagnostics.
func (r *Registry) Resolve(store *config.Store) []Resolved {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.diagnostics = nil

	if !store.GetBool("plugin.enabled", true) {
		r.diagnostics = append(r.diagnostics, Diagnostic{
			Level:     LevelInfo,
			Component: "plugin",
			Reason:    "plugin.enabled is false",
		})
		r.logger.Info("plugin disabled; no components resolved")
		return nil
	}

	resolved := make([]Resolved, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.EnableFlag != "" && !store.GetBool(d.EnableFlag, true) {
			r.diagnostics = append(r.diagnostics, Diagnostic{
				Level:     LevelInfo,
				Component: d.Name,
				Reason:    fmt.Sprintf("%s is false", d.EnableFlag),
			})
			continue
		}
		resolved = append(resolved, Resolved{
			Descriptor: d,
			Instance:   d.New(),
		})
	}

	r.logger.Debug("components resolved",
		"active", len(resolved),
		"skipped", len(r.diagnostics))
	return resolved
}

// Diagnostics reports why components were skipped during the last Resolve.
func (r *Registry) Diagnostics() []Diagnostic {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Diagnostic(nil), r.diagnostics...)
}
