package provider

import (
	"context"
	"errors"
	"time"
)

// TextClient calls a text generation endpoint.
//
// Request:  POST <endpoint> {"model", "prompt", "mode"}
// Response: {"text": "<newline-delimited commands>"}
type TextClient struct {
	client
	apiKey string
	model  string
}

// NewTextClient creates a text generation client.
func NewTextClient(endpoint, apiKey, model string, timeout time.Duration) *TextClient {
	return &TextClient{client: newClient(endpoint, timeout), apiKey: apiKey, model: model}
}

type textRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
	Mode   string `json:"mode"`
}

type textResponse struct {
	Text string `json:"text"`
}

// Generate returns the generated text for prompt.
func (c *TextClient) Generate(ctx context.Context, prompt, mode string) (string, error) {
	if c.endpoint == "" {
		return "", ErrNotConfigured
	}
	var out textResponse
	req := textRequest{Model: c.model, Prompt: prompt, Mode: mode}
	if err := c.postJSON(ctx, c.endpoint, req, &out, bearer(c.apiKey)); err != nil {
		return "", err
	}
	if out.Text == "" {
		return "", errors.New("provider: empty generation")
	}
	return out.Text, nil
}
