// Package anthropic implements the vision client against the messages-style
// completion API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"platochef/internal/config"
	"platochef/internal/vision"
)

const (
	apiURL           = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"
	analyzeMaxTokens = 4000
	repairMaxTokens  = 3000
)

// Client calls the messages endpoint with an inlined base64 image.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
}

// NewClient creates the client. The API key is required up front so a
// missing credential surfaces at startup, not on the first request.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY", config.ErrMissingCredential)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiURL:     apiURL,
		apiKey:     cfg.AnthropicAPIKey,
		model:      cfg.Model,
	}, nil
}

// Request is the messages request body.
type Request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Messages    []Message `json:"messages"`
}

// Message is a single conversation turn.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is either a text block or a base64 image block.
type ContentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// ImageSource carries the inlined image payload.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Response is the messages response body.
type Response struct {
	Content []ResponseBlock `json:"content"`
}

// ResponseBlock is one response content block.
type ResponseBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// AnalyzeImage sends the fixed prompts plus the image and returns the raw
// text output.
func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, mediaType string) (string, error) {
	reqBody := Request{
		Model:       c.model,
		MaxTokens:   analyzeMaxTokens,
		Temperature: 0.2,
		System:      vision.SystemPrompt + "\nResponde solo con JSON válido y en español.",
		Messages: []Message{
			{
				Role: "user",
				Content: []ContentBlock{
					{Type: "text", Text: vision.UserPrompt},
					{
						Type: "image",
						Source: &ImageSource{
							Type:      "base64",
							MediaType: mediaType,
							Data:      base64.StdEncoding.EncodeToString(imageData),
						},
					},
				},
			},
		},
	}
	return c.complete(ctx, reqBody)
}

// RepairJSON resends a previous raw output with the repair instruction at
// zero temperature.
func (c *Client) RepairJSON(ctx context.Context, rawOutput string) (string, error) {
	reqBody := Request{
		Model:       c.model,
		MaxTokens:   repairMaxTokens,
		Temperature: 0,
		System:      vision.RepairSystemPrompt,
		Messages: []Message{
			{
				Role:    "user",
				Content: []ContentBlock{{Type: "text", Text: vision.RepairUserPrefix + rawOutput}},
			},
		},
	}
	return c.complete(ctx, reqBody)
}

func (c *Client) complete(ctx context.Context, reqBody Request) (string, error) {
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", &vision.ProviderError{Provider: "anthropic", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var apiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	for _, block := range apiResp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", vision.ErrEmptyResponse
}
