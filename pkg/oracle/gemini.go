package oracle

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini completes prompts with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	cfg    Config
}

// NewGemini creates a Gemini backend for cfg.Model.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model, cfg: cfg}, nil
}

// Complete sends prompt as a single user turn and returns the trimmed text.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	var config *genai.GenerateContentConfig
	if g.cfg.Temperature > 0 {
		temperature := g.cfg.Temperature
		config = &genai.GenerateContentConfig{Temperature: &temperature}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return "", contractError(ProviderGemini, "nil response")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", contractError(ProviderGemini, "no text content in response")
	}
	return text, nil
}
