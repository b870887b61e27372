package config

import (
	"strconv"
	"strings"
)

// Coerce converts raw string input to the field's canonical type. Bool, int
// and float parse strictly; strings pass through; lists accept a
// bracket-delimited comma-separated form and otherwise wrap the whole string
// as a single element.
func Coerce(f *Field, raw string) (any, error) {
	switch f.Type {
	case TypeBool:
		v, ok := parseBool(raw)
		if !ok {
			return nil, &ConversionError{Key: f.Key, Raw: raw, Type: f.Type}
		}
		return v, nil
	case TypeInt:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, &ConversionError{Key: f.Key, Raw: raw, Type: f.Type}
		}
		return v, nil
	case TypeFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &ConversionError{Key: f.Key, Raw: raw, Type: f.Type}
		}
		return v, nil
	case TypeStringList:
		return parseList(raw), nil
	default:
		return raw, nil
	}
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on", "enabled":
		return true, true
	case "false", "0", "no", "off", "disabled":
		return false, true
	default:
		return false, false
	}
}

func parseList(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		inner := trimmed[1 : len(trimmed)-1]
		if strings.TrimSpace(inner) == "" {
			return []string{}
		}
		parts := strings.Split(inner, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			p = strings.Trim(p, `"'`)
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	if trimmed == "" {
		return []string{}
	}
	return []string{trimmed}
}

// FormatValue renders a canonical value in the form Coerce accepts back, so
// displayed values can be pasted into a set.
func FormatValue(value any) string {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	case []string:
		var b strings.Builder
		b.WriteByte('[')
		for i, s := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('"')
			b.WriteString(s)
			b.WriteByte('"')
		}
		b.WriteByte(']')
		return b.String()
	default:
		return ""
	}
}
