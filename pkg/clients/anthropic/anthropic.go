package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/bogarovo/internal/config"
)

const (
	apiVersion = "2023-06-01"
	maxTokens  = 1024
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("text recognition is not configured")

const transcribePrompt = `Transcribe all text visible on this delivery slip.
Keep the original line breaks: one printed line per output line, with the customer name and phone number on the same line when they are printed together.
Output only the transcription, without commentary or formatting.`

// Client performs text recognition on images through the Anthropic Messages API.
type Client struct {
	httpClient *resty.Client
	model      string
	enabled    bool
}

// NewClient creates a configured Anthropic client.
func NewClient(cfg config.OCRConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("x-api-key", cfg.AnthropicKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{httpClient: client, model: cfg.Model, enabled: cfg.AnthropicKey != ""}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// RecognizeText returns the multi-line text found in the image.
func (c *Client) RecognizeText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if !c.enabled {
		return "", ErrDisabled
	}
	if len(image) == 0 {
		return "", errors.New("empty image")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{Type: "image", Source: &imageSource{Type: "base64", MediaType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
				{Type: "text", Text: transcribePrompt},
			},
		}},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: %s", resp.String())
	}

	var parts []string
	for _, block := range respBody.Content {
		if block.Type == "text" || block.Type == "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("empty response from text recognition")
	}

	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
