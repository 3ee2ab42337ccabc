package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"

	"github.com/sashabaranov/go-openai"
)

var _ output.ModelPort = (*OpenRouterAdapter)(nil)

// ErrEmptyPrediction is returned when the model answered with no content.
var ErrEmptyPrediction = errors.New("vlm response error")

type OpenRouterAdapter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	topP        float32
	logger      output.LoggerPort
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	Timeout     time.Duration
	Logger      output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:    apiKey,
		Model:     model,
		BaseURL:   "https://openrouter.ai/api/v1",
		MaxTokens: 1000,
		TopP:      0.7,
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

// RoundTrip logs request metadata only. Bodies carry base64 screenshots.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var size int
	if req.Body != nil {
		bodyBytes, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		size = len(bodyBytes)
	}

	t.logger.Debug("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"bytes", size,
	)

	resp, err := t.base.RoundTrip(req)

	if resp != nil {
		t.logger.Debug("HTTP Response",
			"status", resp.Status,
			"statusCode", resp.StatusCode,
		)
	}

	return resp, err
}

func NewOpenRouterAdapter(cfg Config) *OpenRouterAdapter {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Logger != nil {
		httpClient.Transport = &loggingTransport{
			base:   http.DefaultTransport,
			logger: cfg.Logger,
		}
	}
	config.HTTPClient = httpClient

	return &OpenRouterAdapter{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		logger:      cfg.Logger,
	}
}

func (a *OpenRouterAdapter) Name() string {
	if a.model == "" {
		return "unknown"
	}
	return a.model
}

func (a *OpenRouterAdapter) Invoke(ctx context.Context, req output.InvokeRequest) (*output.InvokeResponse, error) {
	messages := convertMessages(req.Messages)

	if a.logger != nil {
		a.logger.Info("Model request",
			"model", a.model,
			"messages", summarize(req.Messages),
			"max_tokens", a.maxTokens,
			"temperature", a.temperature,
			"top_p", a.topP,
		)
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
		TopP:        a.topP,
	})
	cost := time.Since(start).Milliseconds()
	if a.logger != nil {
		a.logger.Info("Model cost", "ms", cost)
	}
	if err != nil {
		if a.logger != nil {
			a.logger.Error("Model request failed", "error", err)
		}
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	var prediction string
	if len(resp.Choices) > 0 {
		prediction = resp.Choices[0].Message.Content
	}
	if prediction == "" {
		raw, _ := json.Marshal(resp)
		if a.logger != nil {
			a.logger.Error("Empty model prediction", "response", string(raw))
		}
		return nil, ErrEmptyPrediction
	}

	if a.logger != nil {
		a.logger.Debug("Model raw prediction", "prediction", prediction)
	}
	return &output.InvokeResponse{Prediction: prediction, CostMs: cost}, nil
}

func convertMessages(messages []entity.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		oaiMsg := openai.ChatCompletionMessage{Role: string(msg.Role)}

		if !msg.HasImages() {
			oaiMsg.Content = msg.Content
			result = append(result, oaiMsg)
			continue
		}

		parts := make([]openai.ChatMessagePart, 0, len(msg.Images)+1)
		if msg.Content != "" {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: msg.Content,
			})
		}
		for _, url := range msg.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: url},
			})
		}
		oaiMsg.MultiContent = parts
		result = append(result, oaiMsg)
	}
	return result
}

type messageSummary struct {
	Role   string `json:"role"`
	Text   string `json:"text,omitempty"`
	Images int    `json:"images,omitempty"`
}

// summarize replaces image payloads with a count for logging.
func summarize(messages []entity.Message) []messageSummary {
	out := make([]messageSummary, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageSummary{Role: string(m.Role), Text: m.Content, Images: len(m.Images)})
	}
	return out
}
