package openrouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/infrastructure/logger"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMessages_TextOnly(t *testing.T) {
	result := convertMessages([]entity.Message{
		{Role: entity.RoleSystem, Content: "You are a GUI agent."},
		{Role: entity.RoleAssistant, Content: "Action: wait()"},
	})

	require.Len(t, result, 2)
	assert.Equal(t, "system", result[0].Role)
	assert.Equal(t, "You are a GUI agent.", result[0].Content)
	assert.Nil(t, result[0].MultiContent)
	assert.Equal(t, "assistant", result[1].Role)
}

func TestConvertMessages_WithImages(t *testing.T) {
	result := convertMessages([]entity.Message{
		{Role: entity.RoleUser, Content: "", Images: []string{"data:image/png;base64,AAAA"}},
		{Role: entity.RoleUser, Content: "look", Images: []string{"data:image/png;base64,BBBB"}},
	})

	require.Len(t, result, 2)
	assert.Empty(t, result[0].Content)
	require.Len(t, result[0].MultiContent, 1)
	assert.Equal(t, openai.ChatMessagePartTypeImageURL, result[0].MultiContent[0].Type)
	assert.Equal(t, "data:image/png;base64,AAAA", result[0].MultiContent[0].ImageURL.URL)

	require.Len(t, result[1].MultiContent, 2)
	assert.Equal(t, openai.ChatMessagePartTypeText, result[1].MultiContent[0].Type)
	assert.Equal(t, "look", result[1].MultiContent[0].Text)
}

func newServer(t *testing.T, content string, captured *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if captured != nil {
			require.NoError(t, json.Unmarshal(body, captured))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "cmpl-1",
			Model: "ui-tars",
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: "assistant", Content: content},
			}},
		})
	}))
}

func TestInvoke(t *testing.T) {
	var captured openai.ChatCompletionRequest
	srv := newServer(t, "Thought: done\nAction: finished()", &captured)
	defer srv.Close()

	cfg := DefaultConfig("sk-test", "ui-tars")
	cfg.BaseURL = srv.URL + "/v1"
	cfg.Logger = logger.NewNop()
	adapter := NewOpenRouterAdapter(cfg)

	resp, err := adapter.Invoke(context.Background(), output.InvokeRequest{Messages: []entity.Message{
		{Role: entity.RoleUser, Content: "open settings", Images: []string{"data:image/png;base64,AAAA"}},
	}})
	require.NoError(t, err)

	assert.Equal(t, "Thought: done\nAction: finished()", resp.Prediction)
	assert.GreaterOrEqual(t, resp.CostMs, int64(0))
	assert.Equal(t, "ui-tars", captured.Model)
	assert.Equal(t, 1000, captured.MaxTokens)
	assert.InDelta(t, 0.7, captured.TopP, 1e-6)
	require.Len(t, captured.Messages, 1)
	assert.Len(t, captured.Messages[0].MultiContent, 2)
}

func TestInvoke_EmptyPrediction(t *testing.T) {
	srv := newServer(t, "", nil)
	defer srv.Close()

	cfg := DefaultConfig("sk-test", "ui-tars")
	cfg.BaseURL = srv.URL + "/v1"
	adapter := NewOpenRouterAdapter(cfg)

	_, err := adapter.Invoke(context.Background(), output.InvokeRequest{})
	assert.ErrorIs(t, err, ErrEmptyPrediction)
	assert.EqualError(t, err, "vlm response error")
}

func TestInvoke_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := DefaultConfig("sk-test", "ui-tars")
	cfg.BaseURL = srv.URL + "/v1"
	adapter := NewOpenRouterAdapter(cfg)

	_, err := adapter.Invoke(context.Background(), output.InvokeRequest{})
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	assert.Equal(t, "unknown", NewOpenRouterAdapter(Config{}).Name())
	assert.Equal(t, "ui-tars", NewOpenRouterAdapter(DefaultConfig("", "ui-tars")).Name())
}
