// Package manifest reads and validates plugin packaging manifests.
//
// A manifest is the `_manifest.json` document shipped at a plugin's root:
// identity, authorship, host version bounds, declared components, and an
// optional embedded JSON Schema for the plugin's own configuration. Parse
// is strict JSON; the packaging checklist lives on Validate and reports
// findings by level instead of failing on the first problem.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Filename is the canonical manifest file name at a plugin root.
const Filename = "_manifest.json"

// SupportedManifestVersion is the only accepted manifest_version.
const SupportedManifestVersion = 3

// Manifest is the plugin packaging document.
type Manifest struct {
	ManifestVersion int              `json:"manifest_version"`
	Name            string           `json:"name"`
	Version         string           `json:"version"`
	Description     string           `json:"description"`
	Author          *Author          `json:"author,omitempty"`
	License         string           `json:"license,omitempty"`
	HostApplication *HostApplication `json:"host_application,omitempty"`
	HomepageURL     string           `json:"homepage_url,omitempty"`
	RepositoryURL   string           `json:"repository_url,omitempty"`
	Keywords        []string         `json:"keywords,omitempty"`
	Categories      []string         `json:"categories,omitempty"`
	DefaultLocale   string           `json:"default_locale,omitempty"`
	LocalesPath     string           `json:"locales_path,omitempty"`
	PluginInfo      *PluginInfo      `json:"plugin_info,omitempty"`
	ConfigSchema    json.RawMessage  `json:"config_schema,omitempty"`
}

// Author identifies who maintains the plugin.
type Author struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// HostApplication bounds the host versions the plugin supports.
type HostApplication struct {
	MinVersion string `json:"min_version,omitempty"`
	MaxVersion string `json:"max_version,omitempty"`
}

// PluginInfo carries the component declarations.
type PluginInfo struct {
	// IsBuiltIn is required by the checklist; a pointer distinguishes
	// false from absent.
	IsBuiltIn  *bool       `json:"is_built_in,omitempty"`
	PluginType string      `json:"plugin_type,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// Component declares one plugin component.
type Component struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Parse decodes a manifest document. The contract is strict JSON; type
// mismatches are decode errors, not checklist findings.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}
