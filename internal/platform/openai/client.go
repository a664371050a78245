// Package openai implements the vision client against the
// chat-completions-style API.
package openai

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

const apiURL = "https://api.openai.com/v1/chat/completions"

// Client calls the chat endpoint with a data-URI image part.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
}

// NewClient creates the client, failing when the credential is absent.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: AI_API_KEY", config.ErrMissingCredential)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiURL:     apiURL,
		apiKey:     cfg.OpenAIAPIKey,
		model:      cfg.Model,
	}, nil
}

// Request is the chat-completions request body. Message content is either a
// plain string or a list of parts, so it is declared as any.
type Request struct {
	Model          string          `json:"model"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Messages       []Message       `json:"messages"`
}

// ResponseFormat requests JSON-object formatted output.
type ResponseFormat struct {
	Type string `json:"type"`
}

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multi-part user message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries the image as a data URI.
type ImageURL struct {
	URL string `json:"url"`
}

// Response is the chat-completions response body.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice is one completion candidate.
type Choice struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage is the assistant message of a choice.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnalyzeImage sends the fixed prompts plus the image and returns the raw
// text output.
func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, mediaType string) (string, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(imageData))
	reqBody := Request{
		Model:          c.model,
		Temperature:    0.2,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		Messages: []Message{
			{Role: "system", Content: vision.SystemPrompt},
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: vision.UserPrompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: dataURI}},
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
		Model:          c.model,
		Temperature:    0,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		Messages: []Message{
			{Role: "system", Content: vision.RepairSystemPrompt},
			{Role: "user", Content: vision.RepairUserPrefix + rawOutput},
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
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", &vision.ProviderError{Provider: "openai", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var apiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message.Content == "" {
		return "", vision.ErrEmptyResponse
	}
	return apiResp.Choices[0].Message.Content, nil
}
