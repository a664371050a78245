package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"platochef/internal/analysis"
)

// Pipeline turns raw model output into a validated analysis, tolerating the
// single most common failure mode (near-valid JSON with stray prose or minor
// schema drift) with exactly one repair round trip. The bound is deliberate:
// at most two provider calls per image, never three.
type Pipeline struct {
	client Client
}

// NewPipeline creates a Pipeline on top of a provider client.
func NewPipeline(client Client) *Pipeline {
	return &Pipeline{client: client}
}

// Analyze runs the full flow: initial model call, parse, validate, and on
// content failure a single repair call followed by parse and validate again.
// Transport errors and empty responses are terminal immediately; only
// malformed or schema-invalid content triggers the repair path.
func (p *Pipeline) Analyze(ctx context.Context, imageData []byte, mediaType string) (*analysis.Analysis, error) {
	firstOutput, err := p.client.AnalyzeImage(ctx, imageData, mediaType)
	if err != nil {
		return nil, err
	}

	result, firstErr := parseAndValidate(firstOutput)
	if firstErr == nil {
		return result, nil
	}

	log.Printf("first model output invalid, requesting repair: %v", firstErr)

	repairedOutput, err := p.client.RepairJSON(ctx, firstOutput)
	if err != nil {
		return nil, err
	}

	result, repairErr := parseAndValidate(repairedOutput)
	if repairErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecoverableFormat, repairErr)
	}
	return result, nil
}

// parseAndValidate parses raw model text as JSON and validates it against
// the analysis schema.
func parseAndValidate(raw string) (*analysis.Analysis, error) {
	value, err := parseModelJSON(raw)
	if err != nil {
		return nil, err
	}
	return analysis.Validate(value)
}

// parseModelJSON parses trimmed model output as JSON. If strict parsing
// fails it extracts the substring between the first "{" and the last "}"
// and parses that instead. The heuristic can mis-extract when multiple
// top-level JSON fragments appear in prose; kept as-is for compatibility.
func parseModelJSON(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err == nil {
		return value, nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, ErrMalformedOutput
	}

	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return value, nil
}
