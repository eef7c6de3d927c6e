package provider

import (
	"context"
	"errors"
	"time"
)

// ImageClient calls an image generation endpoint.
//
// Request:  POST <endpoint> {"model", "prompt", "aspect_ratio"}
// Response: {"image_base64": "..."}
type ImageClient struct {
	client
	apiKey string
	model  string
}

// NewImageClient creates an image generation client.
func NewImageClient(endpoint, apiKey, model string, timeout time.Duration) *ImageClient {
	return &ImageClient{client: newClient(endpoint, timeout), apiKey: apiKey, model: model}
}

type imageRequest struct {
	Model       string `json:"model,omitempty"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

type imageResponse struct {
	ImageBase64 string `json:"image_base64"`
}

// Generate returns the base64 encoded image for prompt.
func (c *ImageClient) Generate(ctx context.Context, prompt, aspectRatio string) (string, error) {
	if c.endpoint == "" {
		return "", ErrNotConfigured
	}
	var out imageResponse
	req := imageRequest{Model: c.model, Prompt: prompt, AspectRatio: aspectRatio}
	if err := c.postJSON(ctx, c.endpoint, req, &out, bearer(c.apiKey)); err != nil {
		return "", err
	}
	if out.ImageBase64 == "" {
		return "", errors.New("provider: empty image")
	}
	return out.ImageBase64, nil
}
