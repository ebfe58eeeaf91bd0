package oracle

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI completes prompts with an OpenAI-compatible chat completion API.
type OpenAI struct {
	client *openai.Client
	cfg    Config
}

// NewOpenAI creates a backend for cfg.Model. An empty BaseURL targets
// api.openai.com.
func NewOpenAI(cfg Config) *OpenAI {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return &OpenAI{client: openai.NewClientWithConfig(c), cfg: cfg}
}

// Complete sends prompt as a single user message.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: o.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", contractError(ProviderOpenAI, "no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
