package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when AnthropicConfig.Model is empty.
const DefaultAnthropicModel = "claude-3-5-haiku-20241022"

// maxVerdictTokens bounds the completion; a verdict is a single word.
const maxVerdictTokens = 8

// AnthropicConfig configures an Anthropic-backed judge.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key (required)
	APIKey string
	// Model is the model to query (default: DefaultAnthropicModel)
	Model string
	// BaseURL overrides the API endpoint (optional)
	BaseURL string
}

// AnthropicJudge asks Claude for a YES/NO verdict on an activation rule.
type AnthropicJudge struct {
	client anthropic.Client
	model  string
}

// NewAnthropicJudge creates a judge backed by the Anthropic Messages API.
func NewAnthropicJudge(config AnthropicConfig) (*AnthropicJudge, error) {
	if config.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if config.Model == "" {
		config.Model = DefaultAnthropicModel
	}

	options := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}

	return &AnthropicJudge{
		client: anthropic.NewClient(options...),
		model:  config.Model,
	}, nil
}

// Decide implements Judge. The rule prompt rides in the system block and
// the user input is the sole message, so the model never confuses the two.
func (j *AnthropicJudge) Decide(ctx context.Context, prompt, input string) (bool, error) {
	message, err := j.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(j.model),
		MaxTokens: maxVerdictTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: decisionPrompt(prompt)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return false, fmt.Errorf("anthropic: API error (status %d): %w", apiErr.StatusCode, err)
		}
		return false, fmt.Errorf("anthropic: %w", err)
	}

	var reply strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
		}
	}
	return affirmative(reply.String()), nil
}
