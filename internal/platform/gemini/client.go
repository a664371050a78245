// Package gemini implements the vision client on top of the
// google/generative-ai-go SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"platochef/internal/config"
	"platochef/internal/vision"
)

// Client is a client for the Gemini API.
type Client struct {
	analyzeModel *genai.GenerativeModel
	repairModel  *genai.GenerativeModel
}

// NewClient creates a new Gemini client. The analysis model runs at low
// temperature, the repair model at zero.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY", config.ErrMissingCredential)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	analyzeModel := client.GenerativeModel(cfg.Model)
	analyzeModel.SetTemperature(0.2)

	repairModel := client.GenerativeModel(cfg.Model)
	repairModel.SetTemperature(0)

	return &Client{analyzeModel: analyzeModel, repairModel: repairModel}, nil
}

// AnalyzeImage sends the fixed prompts plus the image and returns the raw
// text output.
func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, mediaType string) (string, error) {
	prompt := []genai.Part{
		genai.ImageData(imageFormat(mediaType), imageData),
		genai.Text(vision.SystemPrompt + "\n" + vision.UserPrompt),
	}

	resp, err := c.analyzeModel.GenerateContent(ctx, prompt...)
	if err != nil {
		return "", err
	}
	return firstText(resp)
}

// RepairJSON resends a previous raw output with the repair instruction.
func (c *Client) RepairJSON(ctx context.Context, rawOutput string) (string, error) {
	prompt := []genai.Part{
		genai.Text(vision.RepairSystemPrompt + "\n" + vision.RepairUserPrefix + rawOutput),
	}

	resp, err := c.repairModel.GenerateContent(ctx, prompt...)
	if err != nil {
		return "", err
	}
	return firstText(resp)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", vision.ErrEmptyResponse
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok || string(text) == "" {
		return "", vision.ErrEmptyResponse
	}
	return string(text), nil
}

// imageFormat maps a media type like "image/jpeg" to the SDK's format tag.
func imageFormat(mediaType string) string {
	return strings.TrimPrefix(mediaType, "image/")
}
