package judge

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()

	t.Run("always yes", func(t *testing.T) {
		verdict, err := Static(true).Decide(ctx, "any rule", "any input")
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		if !verdict {
			t.Error("Static(true) returned false")
		}
	})

	t.Run("always no", func(t *testing.T) {
		verdict, err := Static(false).Decide(ctx, "any rule", "any input")
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		if verdict {
			t.Error("Static(false) returned true")
		}
	})
}

func TestFunc(t *testing.T) {
	ctx := context.Background()

	t.Run("arguments pass through", func(t *testing.T) {
		var gotPrompt, gotInput string
		j := Func(func(_ context.Context, prompt, input string) (bool, error) {
			gotPrompt, gotInput = prompt, input
			return true, nil
		})

		verdict, err := j.Decide(ctx, "is this a question", "how are you?")
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		if !verdict {
			t.Error("Decide() = false, want true")
		}
		if gotPrompt != "is this a question" {
			t.Errorf("prompt = %q", gotPrompt)
		}
		if gotInput != "how are you?" {
			t.Errorf("input = %q", gotInput)
		}
	})

	t.Run("error propagates", func(t *testing.T) {
		wantErr := errors.New("backend down")
		j := Func(func(context.Context, string, string) (bool, error) {
			return false, wantErr
		})

		_, err := j.Decide(ctx, "rule", "input")
		if !errors.Is(err, wantErr) {
			t.Errorf("Decide() error = %v, want %v", err, wantErr)
		}
	})
}

func TestAffirmative(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  bool
	}{
		{"plain yes", "YES", true},
		{"lowercase", "yes", true},
		{"mixed case", "Yes", true},
		{"surrounding space", "  YES  ", true},
		{"trailing punctuation", "YES.", true},
		{"yes with prose", "Yes, the rule applies here.", true},
		{"plain no", "NO", false},
		{"lowercase no", "no", false},
		{"no with prose", "No, this is small talk.", false},
		{"empty", "", false},
		{"unrelated", "maybe", false},
		{"yes buried mid-reply", "I think YES", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := affirmative(tt.reply); got != tt.want {
				t.Errorf("affirmative(%q) = %v, want %v", tt.reply, got, tt.want)
			}
		})
	}
}

func TestDecisionPrompt(t *testing.T) {
	got := decisionPrompt("Reply YES when the user asks for help.")
	if !strings.Contains(got, "exactly one word: YES or NO") {
		t.Errorf("decisionPrompt() missing verdict instruction: %q", got)
	}
	if !strings.HasSuffix(got, "Reply YES when the user asks for help.") {
		t.Errorf("decisionPrompt() does not end with the rule: %q", got)
	}
}

func TestNewAnthropicJudge(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewAnthropicJudge(AnthropicConfig{})
		if err == nil {
			t.Fatal("NewAnthropicJudge() accepted empty API key")
		}
	})

	t.Run("defaults model", func(t *testing.T) {
		j, err := NewAnthropicJudge(AnthropicConfig{APIKey: "test-key"})
		if err != nil {
			t.Fatalf("NewAnthropicJudge() error = %v", err)
		}
		if j.model != DefaultAnthropicModel {
			t.Errorf("model = %q, want %q", j.model, DefaultAnthropicModel)
		}
	})

	t.Run("keeps configured model", func(t *testing.T) {
		j, err := NewAnthropicJudge(AnthropicConfig{APIKey: "test-key", Model: "claude-3-opus-20240229"})
		if err != nil {
			t.Fatalf("NewAnthropicJudge() error = %v", err)
		}
		if j.model != "claude-3-opus-20240229" {
			t.Errorf("model = %q", j.model)
		}
	})
}

func TestNewOpenAIJudge(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewOpenAIJudge(OpenAIConfig{})
		if err == nil {
			t.Fatal("NewOpenAIJudge() accepted empty API key")
		}
	})

	t.Run("defaults model", func(t *testing.T) {
		j, err := NewOpenAIJudge(OpenAIConfig{APIKey: "test-key"})
		if err != nil {
			t.Fatalf("NewOpenAIJudge() error = %v", err)
		}
		if j.model != DefaultOpenAIModel {
			t.Errorf("model = %q, want %q", j.model, DefaultOpenAIModel)
		}
	})
}
