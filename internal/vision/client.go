package vision

import (
	"context"
	"errors"
	"fmt"
)

// Client is the provider-agnostic contract for a vision-capable model
// backend. Implementations are selected once by configuration; callers never
// branch on the concrete provider.
type Client interface {
	// AnalyzeImage sends the fixed analysis prompts plus the image and
	// returns the model's raw text output, expected to contain JSON.
	AnalyzeImage(ctx context.Context, imageData []byte, mediaType string) (string, error)

	// RepairJSON resends a previous raw output with the repair instruction
	// at zero temperature and returns the model's raw text output.
	RepairJSON(ctx context.Context, rawOutput string) (string, error)
}

// ErrEmptyResponse is returned when the provider responded successfully but
// no textual content was present.
var ErrEmptyResponse = errors.New("empty response from AI provider")

// ErrMalformedOutput is returned when neither strict parsing nor brace
// extraction produced valid JSON.
var ErrMalformedOutput = errors.New("no valid JSON found in model output")

// ErrUnrecoverableFormat is returned when both the initial and the repair
// attempt failed to produce a valid analysis.
var ErrUnrecoverableFormat = errors.New("model output invalid even after repair attempt")

// ProviderError carries a non-success upstream status and body.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("AI provider (%s) error (%d): %s", e.Provider, e.StatusCode, e.Body)
}
