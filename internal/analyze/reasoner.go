package analyze

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/launchradar/launchradar/internal/model"
	"github.com/launchradar/launchradar/pkg/anthropic"
	"github.com/launchradar/launchradar/pkg/deepseek"
)

// ReasonerResponse is one completed reasoning call.
type ReasonerResponse struct {
	Text      string
	Reasoning string
	Usage     model.TokenUsage
	LatencyMs int64
}

// Reasoner abstracts the reasoning model behind the orchestrator. Any
// network error, non-success response or malformed envelope surfaces as an
// error; interpretation of Text is the caller's problem.
type Reasoner interface {
	Model() string
	Reason(ctx context.Context, system, user string) (*ReasonerResponse, error)
}

// deepseek-reasoner pricing, $/MTok.
const (
	deepseekInputPerMTok  = 0.55
	deepseekOutputPerMTok = 2.19
)

// DeepSeekReasoner adapts the DeepSeek chat-completions client.
type DeepSeekReasoner struct {
	client deepseek.Client
	model  string
}

// NewDeepSeekReasoner wraps a DeepSeek client. Empty model uses the
// client's default.
func NewDeepSeekReasoner(client deepseek.Client, model string) *DeepSeekReasoner {
	if model == "" {
		model = "deepseek-reasoner"
	}
	return &DeepSeekReasoner{client: client, model: model}
}

func (r *DeepSeekReasoner) Model() string { return r.model }

func (r *DeepSeekReasoner) Reason(ctx context.Context, system, user string) (*ReasonerResponse, error) {
	start := time.Now()
	resp, err := r.client.ChatCompletion(ctx, deepseek.ChatCompletionRequest{
		Model: r.model,
		Messages: []deepseek.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyze: deepseek call")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("analyze: deepseek returned no choices")
	}

	usage := model.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	usage.EstimatedCostUSD = float64(usage.PromptTokens)/1e6*deepseekInputPerMTok +
		float64(usage.CompletionTokens)/1e6*deepseekOutputPerMTok

	return &ReasonerResponse{
		Text:      resp.Choices[0].Message.Content,
		Reasoning: resp.Choices[0].Message.ReasoningContent,
		Usage:     usage,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// AnthropicReasoner adapts the Anthropic messages client as the alternate
// provider.
type AnthropicReasoner struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewAnthropicReasoner(client anthropic.Client, model string, maxTokens int64) *AnthropicReasoner {
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &AnthropicReasoner{client: client, model: model, maxTokens: maxTokens}
}

func (r *AnthropicReasoner) Model() string { return r.model }

func (r *AnthropicReasoner) Reason(ctx context.Context, system, user string) (*ReasonerResponse, error) {
	start := time.Now()
	// The system prompt is identical across analyses, so it is marked for
	// server-side prompt caching.
	resp, err := r.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(system),
		Messages:  []anthropic.Message{{Role: "user", Content: user}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyze: anthropic call")
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, eris.New("analyze: anthropic returned no text content")
	}

	resp.Usage.LogCost(r.model, "analysis")
	usage := model.TokenUsage{
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		EstimatedCostUSD: resp.Usage.EstimateCost(r.model),
	}

	return &ReasonerResponse{
		Text:      text,
		Usage:     usage,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}
