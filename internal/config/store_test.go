package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(DefaultSchema(), nil, DefaultReadOnlyKeys...)
}

func TestStore_Get(t *testing.T) {
	s := testStore(t)

	t.Run("declared key returns default", func(t *testing.T) {
		if got := s.Get("plugin.enabled", false); got != true {
			t.Errorf("plugin.enabled = %v, want true", got)
		}
	})

	t.Run("absent key returns fallback", func(t *testing.T) {
		if got := s.Get("plugin.missing", "fb"); got != "fb" {
			t.Errorf("got %v, want fallback", got)
		}
	})

	t.Run("absent section returns fallback", func(t *testing.T) {
		if got := s.Get("nowhere.at.all", 7); got != 7 {
			t.Errorf("got %v, want fallback", got)
		}
	})

	t.Run("segment through a leaf returns fallback", func(t *testing.T) {
		if got := s.Get("plugin.enabled.deeper", "fb"); got != "fb" {
			t.Errorf("got %v, want fallback", got)
		}
	})

	t.Run("list values are copies", func(t *testing.T) {
		first := s.GetStringList("actions.greeting_keywords", nil)
		first[0] = "mutated"
		second := s.GetStringList("actions.greeting_keywords", nil)
		if second[0] != "你好" {
			t.Errorf("store leaked its list: %v", second)
		}
	})
}

func TestStore_TypedGetters(t *testing.T) {
	s := testStore(t)

	if got := s.GetBool("plugin.debug_mode", true); got != false {
		t.Errorf("GetBool = %v, want false", got)
	}
	if got := s.GetInt("commands.command_timeout", 0); got != 30 {
		t.Errorf("GetInt = %d, want 30", got)
	}
	if got := s.GetFloat("actions.response_probability", 0); got != 0.1 {
		t.Errorf("GetFloat = %v, want 0.1", got)
	}
	if got := s.GetString("advanced.log_level", ""); got != "INFO" {
		t.Errorf("GetString = %q, want INFO", got)
	}
	if got := s.GetFloat("actions.max_response_length", 0); got != 200 {
		t.Errorf("GetFloat on int field = %v, want 200", got)
	}
	if got := s.GetInt("advanced.log_level", 42); got != 42 {
		t.Errorf("GetInt on string field = %d, want fallback 42", got)
	}
}

func TestStore_Set_Coercion(t *testing.T) {
	cases := []struct {
		key  string
		raw  string
		want any
	}{
		{"plugin.debug_mode", "true", true},
		{"plugin.debug_mode", "YES", true},
		{"plugin.debug_mode", "on", true},
		{"plugin.debug_mode", "Enabled", true},
		{"plugin.debug_mode", "1", true},
		{"plugin.enabled", "false", false},
		{"plugin.enabled", "No", false},
		{"plugin.enabled", "off", false},
		{"plugin.enabled", "disabled", false},
		{"plugin.enabled", "0", false},
		{"commands.command_timeout", "45", int64(45)},
		{"actions.response_probability", "0.5", 0.5},
		{"advanced.log_level", "DEBUG", "DEBUG"},
		{"actions.greeting_keywords", `["a", 'b', c]`, []string{"a", "b", "c"}},
		{"actions.greeting_keywords", "howdy", []string{"howdy"}},
		{"actions.greeting_keywords", "[]", []string{}},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s=%s", tc.key, tc.raw), func(t *testing.T) {
			s := testStore(t)
			got, err := s.Set(tc.key, tc.raw)
			if err != nil {
				t.Fatalf("Set(%q, %q): %v", tc.key, tc.raw, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Set returned %#v, want %#v", got, tc.want)
			}
			if stored := s.Get(tc.key, nil); !reflect.DeepEqual(stored, tc.want) {
				t.Errorf("Get after Set = %#v, want %#v", stored, tc.want)
			}
		})
	}
}

func TestStore_Set_Errors(t *testing.T) {
	s := testStore(t)

	t.Run("bad bool", func(t *testing.T) {
		_, err := s.Set("plugin.debug_mode", "maybe")
		var convErr *ConversionError
		if !errors.As(err, &convErr) {
			t.Fatalf("got %v, want ConversionError", err)
		}
		if convErr.Key != "plugin.debug_mode" || convErr.Raw != "maybe" {
			t.Errorf("error fields = %+v", convErr)
		}
	})

	t.Run("bad int", func(t *testing.T) {
		_, err := s.Set("commands.command_timeout", "soon")
		var convErr *ConversionError
		if !errors.As(err, &convErr) {
			t.Fatalf("got %v, want ConversionError", err)
		}
	})

	t.Run("bad float", func(t *testing.T) {
		_, err := s.Set("actions.response_probability", "often")
		var convErr *ConversionError
		if !errors.As(err, &convErr) {
			t.Fatalf("got %v, want ConversionError", err)
		}
	})

	t.Run("probability above maximum", func(t *testing.T) {
		_, err := s.Set("actions.response_probability", "1.5")
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("got %v, want ValidationError", err)
		}
	})

	t.Run("probability in range", func(t *testing.T) {
		if _, err := s.Set("actions.response_probability", "0.5"); err != nil {
			t.Fatalf("Set(0.5): %v", err)
		}
	})

	t.Run("choice violation", func(t *testing.T) {
		_, err := s.Set("advanced.log_level", "TRACE")
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("got %v, want ValidationError", err)
		}
	})

	t.Run("negative timeout", func(t *testing.T) {
		_, err := s.Set("commands.command_timeout", "-5")
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("got %v, want ValidationError", err)
		}
	})

	t.Run("read-only schema key", func(t *testing.T) {
		_, err := s.Set("plugin.config_version", "2.0.0")
		var roErr *ReadOnlyError
		if !errors.As(err, &roErr) {
			t.Fatalf("got %v, want ReadOnlyError", err)
		}
	})

	t.Run("read-only key outside the schema", func(t *testing.T) {
		_, err := s.Set("plugin.plugin_name", "other")
		var roErr *ReadOnlyError
		if !errors.As(err, &roErr) {
			t.Fatalf("got %v, want ReadOnlyError", err)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := s.Set("plugin.nonexistent", "x")
		var unkErr *UnknownKeyError
		if !errors.As(err, &unkErr) {
			t.Fatalf("got %v, want UnknownKeyError", err)
		}
	})
}

func TestStore_Set_Atomic(t *testing.T) {
	s := testStore(t)

	before := s.Get("actions.response_probability", nil)
	if _, err := s.Set("actions.response_probability", "1.5"); err == nil {
		t.Fatal("expected validation failure")
	}
	after := s.Get("actions.response_probability", nil)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("failed set mutated the store: %v -> %v", before, after)
	}
}

func TestStore_Set_RoundTrip(t *testing.T) {
	s := testStore(t)
	keys := []string{
		"plugin.enabled",
		"commands.command_timeout",
		"actions.response_probability",
		"advanced.log_level",
		"commands.help_prefix",
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			original := s.Get(key, nil)
			if _, err := s.Set(key, FormatValue(original)); err != nil {
				t.Fatalf("Set(%q, %q): %v", key, FormatValue(original), err)
			}
			if got := s.Get(key, nil); !reflect.DeepEqual(got, original) {
				t.Errorf("round trip changed %q: %v -> %v", key, original, got)
			}
		})
	}
}

func TestStore_Reset(t *testing.T) {
	s := testStore(t)

	if _, err := s.Set("advanced.log_level", "ERROR"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Reset("advanced.log_level")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got != "INFO" {
		t.Errorf("Reset returned %v, want INFO", got)
	}
	if v := s.GetString("advanced.log_level", ""); v != "INFO" {
		t.Errorf("value after reset = %q, want INFO", v)
	}

	t.Run("read-only refuses", func(t *testing.T) {
		_, err := s.Reset("plugin.config_version")
		var roErr *ReadOnlyError
		if !errors.As(err, &roErr) {
			t.Fatalf("got %v, want ReadOnlyError", err)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := s.Reset("plugin.bogus")
		var unkErr *UnknownKeyError
		if !errors.As(err, &unkErr) {
			t.Fatalf("got %v, want UnknownKeyError", err)
		}
	})
}

func TestStore_List_Order(t *testing.T) {
	s := testStore(t)
	entries := s.List()

	fields := DefaultSchema().Fields()
	if len(entries) != len(fields) {
		t.Fatalf("List returned %d entries, want %d", len(entries), len(fields))
	}
	for i, f := range fields {
		if entries[i].Key != f.Key {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Key, f.Key)
		}
	}
	if entries[0].Section != "plugin" || entries[0].Name != "enabled" {
		t.Errorf("first entry = %q/%q", entries[0].Section, entries[0].Name)
	}
}

func TestStore_Snapshot_Isolated(t *testing.T) {
	s := testStore(t)
	snap := s.Snapshot()

	plugin := snap["plugin"].(map[string]any)
	plugin["enabled"] = false

	if got := s.GetBool("plugin.enabled", false); got != true {
		t.Error("mutating a snapshot changed the store")
	}
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := testStore(t)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = s.GetBool("plugin.enabled", false)
				_ = s.GetStringList("actions.greeting_keywords", nil)
				_ = s.List()
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = s.Set("commands.command_timeout", fmt.Sprintf("%d", 10+n))
			}
		}(i)
	}
	wg.Wait()

	if got := s.GetInt("commands.command_timeout", 0); got < 10 || got > 13 {
		t.Errorf("timeout after concurrent sets = %d", got)
	}
}

func TestStore_Apply(t *testing.T) {
	t.Run("valid overlay applies", func(t *testing.T) {
		s := testStore(t)
		s.Apply(map[string]any{
			"plugin": map[string]any{"debug_mode": true},
			"actions": map[string]any{
				"response_probability": 0.25,
				"greeting_keywords":    []any{"hej", "hallo"},
			},
		}, "test")

		if !s.GetBool("plugin.debug_mode", false) {
			t.Error("debug_mode override not applied")
		}
		if got := s.GetFloat("actions.response_probability", 0); got != 0.25 {
			t.Errorf("probability = %v, want 0.25", got)
		}
		if got := s.GetStringList("actions.greeting_keywords", nil); !reflect.DeepEqual(got, []string{"hej", "hallo"}) {
			t.Errorf("keywords = %v", got)
		}
	})

	t.Run("ill-typed entry keeps the default", func(t *testing.T) {
		s := testStore(t)
		s.Apply(map[string]any{
			"plugin": map[string]any{"debug_mode": "yes please"},
		}, "test")

		if s.GetBool("plugin.debug_mode", true) != false {
			t.Error("ill-typed override should be skipped")
		}
	})

	t.Run("constraint-violating entry keeps the default", func(t *testing.T) {
		s := testStore(t)
		s.Apply(map[string]any{
			"actions": map[string]any{"response_probability": 3.0},
		}, "test")

		if got := s.GetFloat("actions.response_probability", 0); got != 0.1 {
			t.Errorf("probability = %v, want default 0.1", got)
		}
	})

	t.Run("int value accepted for float field", func(t *testing.T) {
		s := testStore(t)
		s.Apply(map[string]any{
			"actions": map[string]any{"response_probability": int64(1)},
		}, "test")

		if got := s.GetFloat("actions.response_probability", 0); got != 1 {
			t.Errorf("probability = %v, want 1", got)
		}
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		s := testStore(t)
		s.Apply(map[string]any{
			"plugin":  map[string]any{"surprise": 1},
			"unknown": map[string]any{"key": "value"},
		}, "test")

		if got := s.Get("plugin.surprise", nil); got != nil {
			t.Errorf("unknown key was installed: %v", got)
		}
	})
}
