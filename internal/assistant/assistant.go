// Package assistant answers follow-up questions about an already rendered
// validation report. It never extracts or validates anything itself.
package assistant

import (
	"context"
	"fmt"

	"github.com/finchat/invoice-validator/internal/report"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config holds assistant model parameters
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Assistant answers follow-up chat queries against a rendered report
type Assistant struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// New creates an assistant, or nil when no API key is configured. A nil
// assistant is valid; the service falls back to a canned reply.
func New(cfg Config, logger *zap.Logger) *Assistant {
	if cfg.APIKey == "" {
		return nil
	}
	return &Assistant{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

// Answer responds to a follow-up question with the report as context
func (a *Assistant) Answer(ctx context.Context, question string, rpt *report.Report) (string, error) {
	a.logger.Debug("Answering follow-up query", zap.Int("question_len", len(question)))

	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleSystem, Content: "Validation report context:\n" + reportContext(rpt)},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		a.logger.Error("OpenAI API call failed", zap.Error(err))
		return "", fmt.Errorf("follow-up query failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}
	return resp.Choices[0].Message.Content, nil
}
