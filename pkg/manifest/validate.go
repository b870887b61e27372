package manifest

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Level classifies a checklist finding.
type Level string

const (
	// LevelError marks violations of the packaging contract.
	LevelError Level = "error"
	// LevelWarning marks advisory findings that never fail validation.
	LevelWarning Level = "warning"
)

// Finding is one checklist result.
type Finding struct {
	Level   Level
	Field   string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Level, f.Field, f.Message)
}

// Report collects checklist findings in check order.
type Report struct {
	Findings []Finding
}

// OK reports whether the manifest passed: false iff any error-level
// finding exists. Warnings never affect it.
func (r *Report) OK() bool {
	for _, f := range r.Findings {
		if f.Level == LevelError {
			return false
		}
	}
	return true
}

// Errors returns the error-level findings.
func (r *Report) Errors() []Finding {
	return r.filter(LevelError)
}

// Warnings returns the warning-level findings.
func (r *Report) Warnings() []Finding {
	return r.filter(LevelWarning)
}

func (r *Report) filter(level Level) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Level == level {
			out = append(out, f)
		}
	}
	return out
}

func (r *Report) errorf(field, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{LevelError, field, fmt.Sprintf(format, args...)})
}

func (r *Report) warnf(field, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{LevelWarning, field, fmt.Sprintf(format, args...)})
}

var (
	semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	localeRe = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)
)

// pluginTypes are the recommended plugin_type values.
var pluginTypes = []string{"general", "game", "utility", "entertainment", "social", "productivity"}

// componentTypes are the valid component type values.
var componentTypes = []string{"action", "command", "tool"}

// Validate runs the packaging checklist. It always runs every check and
// never short-circuits, so a report lists all findings at once.
func (m *Manifest) Validate() *Report {
	r := &Report{}

	if m.ManifestVersion != SupportedManifestVersion {
		r.errorf("manifest_version", "must be %d, got %d", SupportedManifestVersion, m.ManifestVersion)
	}

	m.checkBasicInfo(r)
	m.checkAuthor(r)
	m.checkURLs(r)
	m.checkKeywordsCategories(r)
	m.checkHostApplication(r)
	m.checkLocale(r)
	m.checkPluginInfo(r)

	return r
}

func (m *Manifest) checkBasicInfo(r *Report) {
	required := []struct {
		field string
		value string
	}{
		{"name", m.Name},
		{"version", m.Version},
		{"description", m.Description},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			r.errorf(f.field, "required field is missing or empty")
		}
	}

	if m.Version != "" && !semverRe.MatchString(m.Version) {
		r.errorf("version", "must use x.y.z form, got %q", m.Version)
	}

	if m.License == "" {
		r.warnf("license", "consider declaring a license")
	}
}

func (m *Manifest) checkAuthor(r *Report) {
	if m.Author == nil {
		r.errorf("author", "author object is required")
		return
	}
	if strings.TrimSpace(m.Author.Name) == "" {
		r.errorf("author.name", "author name is required")
	}
	if m.Author.URL != "" && !validURL(m.Author.URL) {
		r.warnf("author.url", "%q does not look like a valid URL", m.Author.URL)
	}
}

func (m *Manifest) checkURLs(r *Report) {
	if m.HomepageURL != "" && !validURL(m.HomepageURL) {
		r.warnf("homepage_url", "%q does not look like a valid URL", m.HomepageURL)
	}
	if m.RepositoryURL != "" && !validURL(m.RepositoryURL) {
		r.warnf("repository_url", "%q does not look like a valid URL", m.RepositoryURL)
	}
}

func (m *Manifest) checkKeywordsCategories(r *Report) {
	if len(m.Keywords) == 0 {
		r.warnf("keywords", "add keywords to improve discoverability")
	}
	if len(m.Categories) == 0 {
		r.warnf("categories", "add categories to classify the plugin")
	}
}

func (m *Manifest) checkHostApplication(r *Report) {
	if m.HostApplication == nil {
		r.warnf("host_application", "declare host application version bounds")
		return
	}
	if v := m.HostApplication.MinVersion; v != "" && !semverRe.MatchString(v) {
		r.errorf("host_application.min_version", "must use x.y.z form, got %q", v)
	}
	if v := m.HostApplication.MaxVersion; v != "" && !semverRe.MatchString(v) {
		r.errorf("host_application.max_version", "must use x.y.z form, got %q", v)
	}
}

func (m *Manifest) checkLocale(r *Report) {
	if m.DefaultLocale != "" && !localeRe.MatchString(m.DefaultLocale) {
		r.warnf("default_locale", "use 'xx' or 'xx-XX' form, got %q", m.DefaultLocale)
	}
}

func (m *Manifest) checkPluginInfo(r *Report) {
	if m.PluginInfo == nil {
		r.errorf("plugin_info", "plugin_info object is required")
		return
	}

	if m.PluginInfo.IsBuiltIn == nil {
		r.errorf("plugin_info.is_built_in", "must be a boolean")
	}

	if !contains(pluginTypes, m.PluginInfo.PluginType) {
		r.warnf("plugin_info.plugin_type", "use one of %v, got %q", pluginTypes, m.PluginInfo.PluginType)
	}

	if len(m.PluginInfo.Components) == 0 {
		r.warnf("plugin_info.components", "plugin declares no components")
		return
	}

	for i, c := range m.PluginInfo.Components {
		field := fmt.Sprintf("plugin_info.components[%d]", i)
		if !contains(componentTypes, c.Type) {
			r.errorf(field+".type", "must be one of %v, got %q", componentTypes, c.Type)
		}
		if strings.TrimSpace(c.Name) == "" {
			r.errorf(field+".name", "component name is required")
		}
		if strings.TrimSpace(c.Description) == "" {
			r.warnf(field+".description", "component should carry a description")
		}
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// validURL accepts absolute http or https URLs.
func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
