package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platochef/internal/analysis"
)

const validOutput = `{
  "dish": {"name": "Tacos", "altNames": [], "confidence": 0.9},
  "ingredients": [
    {"name": "Tortilla", "confidence": 0.8, "source": "visible"}
  ],
  "recipeForTwo": {
    "title": "Tacos caseros",
    "portions": 2,
    "time": {"prepMinutes": 10, "cookMinutes": 15, "totalMinutes": 25},
    "ingredients": [{"name": "Harina", "quantity": 200, "unit": "g"}],
    "steps": [{"order": 1, "instruction": "Mezcla todo."}]
  }
}`

// invalidOutput parses fine but violates the schema (missing time).
const invalidOutput = `{
  "dish": {"name": "Tacos", "confidence": 0.9},
  "ingredients": [],
  "recipeForTwo": {
    "title": "Tacos caseros",
    "portions": 2,
    "ingredients": [{"name": "Harina", "quantity": 200, "unit": "g"}],
    "steps": [{"order": 1, "instruction": "Mezcla todo."}]
  }
}`

// fakeClient scripts provider responses and counts calls.
type fakeClient struct {
	analyzeOutput string
	analyzeErr    error
	repairOutput  string
	repairErr     error

	analyzeCalls int
	repairCalls  int
	repairInput  string
}

func (f *fakeClient) AnalyzeImage(ctx context.Context, imageData []byte, mediaType string) (string, error) {
	f.analyzeCalls++
	return f.analyzeOutput, f.analyzeErr
}

func (f *fakeClient) RepairJSON(ctx context.Context, rawOutput string) (string, error) {
	f.repairCalls++
	f.repairInput = rawOutput
	return f.repairOutput, f.repairErr
}

func TestPipeline_ValidFirstAttempt(t *testing.T) {
	client := &fakeClient{analyzeOutput: validOutput}

	a, err := NewPipeline(client).Analyze(context.Background(), []byte("img"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "Tacos", a.Dish.Name)
	assert.Equal(t, 1, client.analyzeCalls)
	assert.Equal(t, 0, client.repairCalls)
}

func TestPipeline_BraceExtraction(t *testing.T) {
	client := &fakeClient{analyzeOutput: "Here's the JSON: " + validOutput + " Hope that helps!"}

	a, err := NewPipeline(client).Analyze(context.Background(), []byte("img"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "Tacos caseros", a.RecipeForTwo.Title)
	assert.Equal(t, 0, client.repairCalls)
}

func TestPipeline_RepairRecovers(t *testing.T) {
	client := &fakeClient{analyzeOutput: invalidOutput, repairOutput: validOutput}

	a, err := NewPipeline(client).Analyze(context.Background(), []byte("img"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "Tacos", a.Dish.Name)
	assert.Equal(t, 1, client.analyzeCalls)
	assert.Equal(t, 1, client.repairCalls)
	// The raw first output is resent, not the parsed form.
	assert.Equal(t, invalidOutput, client.repairInput)
}

func TestPipeline_MalformedFirstAttemptTriggersRepair(t *testing.T) {
	client := &fakeClient{analyzeOutput: "lo siento, no puedo ayudar con eso", repairOutput: validOutput}

	a, err := NewPipeline(client).Analyze(context.Background(), []byte("img"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "Tacos", a.Dish.Name)
	assert.Equal(t, 1, client.repairCalls)
}

func TestPipeline_BothAttemptsInvalid(t *testing.T) {
	client := &fakeClient{analyzeOutput: invalidOutput, repairOutput: "{ still broken"}

	_, err := NewPipeline(client).Analyze(context.Background(), []byte("img"), "image/png")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrUnrecoverableFormat)
	assert.Equal(t, 1, client.analyzeCalls)
	assert.Equal(t, 1, client.repairCalls)
}

func TestPipeline_ProviderErrorIsTerminal(t *testing.T) {
	providerErr := &ProviderError{Provider: "anthropic", StatusCode: 529, Body: "overloaded"}
	client := &fakeClient{analyzeErr: providerErr}

	_, err := NewPipeline(client).Analyze(context.Background(), []byte("img"), "image/png")
	require.Error(t, err)

	var got *ProviderError
	assert.ErrorAs(t, err, &got)
	assert.Equal(t, 529, got.StatusCode)
	assert.Equal(t, 0, client.repairCalls)
}

func TestPipeline_EmptyResponseIsTerminal(t *testing.T) {
	client := &fakeClient{analyzeErr: ErrEmptyResponse}

	_, err := NewPipeline(client).Analyze(context.Background(), []byte("img"), "image/png")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, 0, client.repairCalls)
}

func TestPipeline_RepairTransportErrorIsTerminal(t *testing.T) {
	providerErr := &ProviderError{Provider: "openai", StatusCode: 500, Body: "boom"}
	client := &fakeClient{analyzeOutput: invalidOutput, repairErr: providerErr}

	_, err := NewPipeline(client).Analyze(context.Background(), []byte("img"), "image/png")
	require.Error(t, err)

	var got *ProviderError
	assert.ErrorAs(t, err, &got)
	assert.Equal(t, 1, client.repairCalls)
}

func TestParseModelJSON(t *testing.T) {
	value, err := parseModelJSON("  " + validOutput + "\n")
	require.NoError(t, err)
	_, err = analysis.Validate(value)
	assert.NoError(t, err)

	_, err = parseModelJSON("sin json aquí")
	assert.ErrorIs(t, err, ErrMalformedOutput)

	_, err = parseModelJSON("texto { no es json } texto")
	assert.ErrorIs(t, err, ErrMalformedOutput)
}
