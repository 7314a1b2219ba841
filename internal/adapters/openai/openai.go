// Package openai adapts the OpenAI chat completions API to insights.TextGenerator.
package openai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"budgetbuddy/internal/insights"
)

// DefaultModel is used when no model is configured.
const DefaultModel = goopenai.GPT4o

var _ insights.TextGenerator = (*Client)(nil)

type Client struct {
	api   *goopenai.Client
	model string
}

// New builds a client for the public API.
func New(apiKey, model string) *Client {
	return NewWithConfig(goopenai.DefaultConfig(apiKey), model)
}

// NewWithConfig builds a client from an explicit configuration, e.g. a
// custom BaseURL for compatible gateways.
func NewWithConfig(cfg goopenai.ClientConfig, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: model}
}

func (c *Client) Generate(ctx context.Context, p insights.Prompt) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: p.System},
			{Role: goopenai.ChatMessageRoleUser, Content: p.User},
		},
		MaxTokens: p.MaxTokens,
	}
	if p.JSON {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
