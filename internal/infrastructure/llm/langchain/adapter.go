// Package langchain invokes the model through langchaingo's multi-modal
// content API.
package langchain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var _ output.ModelPort = (*Adapter)(nil)

var ErrEmptyPrediction = errors.New("vlm response error")

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

type Adapter struct {
	llm    llms.Model
	cfg    Config
	logger output.LoggerPort
}

// New builds an adapter over langchaingo's OpenAI-compatible client.
func New(cfg Config, logger output.LoggerPort) (*Adapter, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain client: %w", err)
	}
	return NewWithModel(llm, cfg, logger), nil
}

func NewWithModel(llm llms.Model, cfg Config, logger output.LoggerPort) *Adapter {
	return &Adapter{llm: llm, cfg: cfg, logger: logger}
}

func (a *Adapter) Name() string {
	if a.cfg.Model == "" {
		return "unknown"
	}
	return a.cfg.Model
}

func (a *Adapter) Invoke(ctx context.Context, req output.InvokeRequest) (*output.InvokeResponse, error) {
	start := time.Now()
	resp, err := a.llm.GenerateContent(ctx, convertMessages(req.Messages),
		llms.WithMaxTokens(a.cfg.MaxTokens),
		llms.WithTemperature(a.cfg.Temperature),
		llms.WithTopP(a.cfg.TopP),
	)
	cost := time.Since(start).Milliseconds()
	a.logger.Info("Model cost", "ms", cost, "model", a.Name())
	if err != nil {
		a.logger.Error("Model request failed", "error", err)
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		a.logger.Error("Empty model prediction", "choices", len(resp.Choices))
		return nil, ErrEmptyPrediction
	}

	return &output.InvokeResponse{Prediction: resp.Choices[0].Content, CostMs: cost}, nil
}

func convertMessages(messages []entity.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		mc := llms.MessageContent{Role: role(m.Role)}
		if m.Content != "" {
			mc.Parts = append(mc.Parts, llms.TextPart(m.Content))
		}
		for _, url := range m.Images {
			mc.Parts = append(mc.Parts, llms.ImageURLPart(url))
		}
		result = append(result, mc)
	}
	return result
}

func role(r entity.MessageRole) llms.ChatMessageType {
	switch r {
	case entity.RoleSystem:
		return llms.ChatMessageTypeSystem
	case entity.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
