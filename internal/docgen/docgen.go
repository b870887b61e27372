// Package docgen renders plugin reference documentation as markdown.
//
// Output is deterministic: components appear in manifest order grouped by
// kind, configuration keys in schema declaration order grouped by section,
// so generated files diff cleanly across runs.
package docgen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/haasonsaas/pluginhost/internal/config"
	"github.com/haasonsaas/pluginhost/pkg/manifest"
)

// kindHeadings orders the component groups in the output.
var kindHeadings = []struct {
	kind    string
	heading string
}{
	{"action", "Actions"},
	{"command", "Commands"},
	{"tool", "Tools"},
}

// Generate renders reference documentation for a plugin: identity from the
// manifest, declared components, the configuration key reference, and chat
// usage examples. A nil schema omits the configuration section.
func Generate(m *manifest.Manifest, schema *config.Schema) []byte {
	var buf bytes.Buffer

	writeHeader(&buf, m)
	writeComponents(&buf, m)
	if schema != nil {
		writeConfig(&buf, schema)
	}
	writeUsage(&buf)

	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, m *manifest.Manifest) {
	fmt.Fprintf(buf, "# %s\n\n", m.Name)
	if m.Description != "" {
		fmt.Fprintf(buf, "%s\n\n", m.Description)
	}

	if m.Version != "" {
		fmt.Fprintf(buf, "- Version: %s\n", m.Version)
	}
	if m.Author != nil && m.Author.Name != "" {
		if m.Author.URL != "" {
			fmt.Fprintf(buf, "- Author: [%s](%s)\n", m.Author.Name, m.Author.URL)
		} else {
			fmt.Fprintf(buf, "- Author: %s\n", m.Author.Name)
		}
	}
	if m.License != "" {
		fmt.Fprintf(buf, "- License: %s\n", m.License)
	}
	if m.HomepageURL != "" {
		fmt.Fprintf(buf, "- Homepage: %s\n", m.HomepageURL)
	}
	buf.WriteString("\n")
}

func writeComponents(buf *bytes.Buffer, m *manifest.Manifest) {
	if m.PluginInfo == nil || len(m.PluginInfo.Components) == 0 {
		return
	}

	buf.WriteString("## Components\n\n")

	for _, group := range kindHeadings {
		var rows []manifest.Component
		for _, c := range m.PluginInfo.Components {
			if c.Type == group.kind {
				rows = append(rows, c)
			}
		}
		if len(rows) == 0 {
			continue
		}

		fmt.Fprintf(buf, "### %s\n\n", group.heading)
		buf.WriteString("| Name | Description |\n")
		buf.WriteString("|------|-------------|\n")
		for _, c := range rows {
			fmt.Fprintf(buf, "| %s | %s |\n", escapeCell(c.Name), escapeCell(c.Description))
		}
		buf.WriteString("\n")
	}
}

func writeConfig(buf *bytes.Buffer, schema *config.Schema) {
	fields := schema.Fields()
	if len(fields) == 0 {
		return
	}

	buf.WriteString("## Configuration\n\n")
	buf.WriteString("Keys are grouped by section. Defaults apply until overridden with `/config set`.\n\n")

	// Sections in first-declared order.
	var sections []string
	bySection := make(map[string][]*config.Field)
	for _, f := range fields {
		s := f.Section()
		if _, seen := bySection[s]; !seen {
			sections = append(sections, s)
		}
		bySection[s] = append(bySection[s], f)
	}

	for _, section := range sections {
		fmt.Fprintf(buf, "### %s\n\n", section)
		buf.WriteString("| Key | Type | Default | Constraints | Description |\n")
		buf.WriteString("|-----|------|---------|-------------|-------------|\n")
		for _, f := range bySection[section] {
			fmt.Fprintf(buf, "| %s | %s | %s | %s | %s |\n",
				escapeCell(f.Key),
				f.Type.String(),
				escapeCell(defaultCell(f)),
				escapeCell(constraints(f)),
				escapeCell(f.Description))
		}
		buf.WriteString("\n")
	}
}

func writeUsage(buf *bytes.Buffer) {
	buf.WriteString("## Usage\n\n")
	buf.WriteString("Interact with the plugin from chat:\n\n")
	buf.WriteString("```text\n")
	buf.WriteString("/help [topic]            show available commands\n")
	buf.WriteString("/config list             list configuration values\n")
	buf.WriteString("/config get <key>        read one value\n")
	buf.WriteString("/config set <key> <val>  change a value\n")
	buf.WriteString("/config reset <key>      restore the default\n")
	buf.WriteString("```\n")
}

// ValuesSection renders a store's effective values as an extra section,
// appended when docs are generated against a live config file.
func ValuesSection(entries []config.Entry) []byte {
	var buf bytes.Buffer
	buf.WriteString("## Current configuration\n\n")
	buf.WriteString("| Key | Value |\n")
	buf.WriteString("|-----|-------|\n")
	for _, e := range entries {
		fmt.Fprintf(&buf, "| %s | `%s` |\n", escapeCell(e.Key), escapeCell(config.FormatValue(e.Value)))
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

func defaultCell(f *config.Field) string {
	s := config.FormatValue(f.Default)
	if s == "" {
		return "-"
	}
	return "`" + s + "`"
}

// constraints summarizes choices and numeric bounds for the table.
func constraints(f *config.Field) string {
	var parts []string
	if len(f.Choices) > 0 {
		parts = append(parts, "one of "+strings.Join(f.Choices, ", "))
	}
	if f.Minimum != nil {
		parts = append(parts, "min "+formatBound(*f.Minimum))
	}
	if f.Maximum != nil {
		parts = append(parts, "max "+formatBound(*f.Maximum))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// escapeCell keeps literal pipes from breaking table rows.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
