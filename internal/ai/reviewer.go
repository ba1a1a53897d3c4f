package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/camuig/stock-quest/internal/config"
	"github.com/camuig/stock-quest/internal/logger"
)

// Reviewer asks an OpenAI-compatible chat model for portfolio insights.
type Reviewer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *logger.Logger
}

func NewReviewer(cfg *config.Config, log *logger.Logger) *Reviewer {
	ocfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		ocfg.BaseURL = cfg.OpenAI.BaseURL
	}

	return &Reviewer{
		client:  openai.NewClientWithConfig(ocfg),
		model:   cfg.OpenAI.Model,
		timeout: cfg.OpenAITimeout(),
		logger:  log,
	}
}

// Review returns the parsed insights together with the raw model output.
func (r *Reviewer) Review(ctx context.Context, req *ReviewRequest) ([]Insight, string, error) {
	if len(req.Holdings) == 0 {
		return nil, "", nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.logger.Info("sending review request", "model", r.model, "holdings", len(req.Holdings))

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(req)},
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, "", fmt.Errorf("model returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	r.logger.Debug("review raw response", "content", raw)

	insights, err := ParseInsights(raw)
	if err != nil {
		return nil, raw, fmt.Errorf("parse review: %w", err)
	}
	return insights, raw, nil
}
