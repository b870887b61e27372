package judge

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when OpenAIConfig.Model is empty.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAIConfig configures an OpenAI-backed judge.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key (required)
	APIKey string
	// Model is the model to query (default: DefaultOpenAIModel)
	Model string
	// BaseURL overrides the API endpoint (optional)
	BaseURL string
}

// OpenAIJudge asks an OpenAI chat model for a YES/NO verdict on an
// activation rule.
type OpenAIJudge struct {
	client *openai.Client
	model  string
}

// NewOpenAIJudge creates a judge backed by the OpenAI chat completions API.
func NewOpenAIJudge(config OpenAIConfig) (*OpenAIJudge, error) {
	if config.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if config.Model == "" {
		config.Model = DefaultOpenAIModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIJudge{
		client: openai.NewClientWithConfig(clientConfig),
		model:  config.Model,
	}, nil
}

// Decide implements Judge.
func (j *OpenAIJudge) Decide(ctx context.Context, prompt, input string) (bool, error) {
	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     j.model,
		MaxTokens: maxVerdictTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: decisionPrompt(prompt)},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	})
	if err != nil {
		return false, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return false, errors.New("openai: completion returned no choices")
	}
	return affirmative(resp.Choices[0].Message.Content), nil
}
