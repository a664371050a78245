package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platochef/internal/config"
	"platochef/internal/vision"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.Config{AnthropicAPIKey: "test-key", Model: "claude-test"})
	require.NoError(t, err)
	client.apiURL = server.URL
	return client
}

func textResponse(text string) string {
	body, _ := json.Marshal(Response{Content: []ResponseBlock{{Type: "text", Text: text}}})
	return string(body)
}

func TestNewClient_MissingCredential(t *testing.T) {
	_, err := NewClient(&config.Config{Model: "claude-test"})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingCredential)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestAnalyzeImage(t *testing.T) {
	var received Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(textResponse(`{"dish":{}}`)))
	})

	imageData := []byte("fake-image-bytes")
	out, err := client.AnalyzeImage(context.Background(), imageData, "image/webp")
	require.NoError(t, err)
	assert.Equal(t, `{"dish":{}}`, out)

	assert.Equal(t, "claude-test", received.Model)
	assert.Equal(t, analyzeMaxTokens, received.MaxTokens)
	assert.Equal(t, 0.2, received.Temperature)
	assert.Contains(t, received.System, "asistente culinario")

	require.Len(t, received.Messages, 1)
	require.Len(t, received.Messages[0].Content, 2)
	assert.Equal(t, "text", received.Messages[0].Content[0].Type)
	assert.Equal(t, vision.UserPrompt, received.Messages[0].Content[0].Text)

	imageBlock := received.Messages[0].Content[1]
	assert.Equal(t, "image", imageBlock.Type)
	require.NotNil(t, imageBlock.Source)
	assert.Equal(t, "base64", imageBlock.Source.Type)
	assert.Equal(t, "image/webp", imageBlock.Source.MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(imageData), imageBlock.Source.Data)
}

func TestRepairJSON(t *testing.T) {
	var received Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(textResponse(`{"fixed":true}`)))
	})

	out, err := client.RepairJSON(context.Background(), "salida rota")
	require.NoError(t, err)
	assert.Equal(t, `{"fixed":true}`, out)

	assert.Equal(t, repairMaxTokens, received.MaxTokens)
	assert.Equal(t, 0.0, received.Temperature)
	assert.Equal(t, vision.RepairSystemPrompt, received.System)
	require.Len(t, received.Messages, 1)
	require.Len(t, received.Messages[0].Content, 1)
	assert.Equal(t, vision.RepairUserPrefix+"salida rota", received.Messages[0].Content[0].Text)
}

func TestAnalyzeImage_ProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	})

	_, err := client.AnalyzeImage(context.Background(), []byte("img"), "image/png")
	require.Error(t, err)

	var providerErr *vision.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "anthropic", providerErr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, providerErr.StatusCode)
	assert.Equal(t, "rate limited", providerErr.Body)
}

func TestAnalyzeImage_EmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[{"type":"tool_use"}]}`))
	})

	_, err := client.AnalyzeImage(context.Background(), []byte("img"), "image/png")
	assert.ErrorIs(t, err, vision.ErrEmptyResponse)
}
