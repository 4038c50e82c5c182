// Package anthropic wraps the official SDK behind a small client interface
// so the analysis pipeline can be tested without network access.
package anthropic

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// Client is the slice of the Anthropic API the reasoner needs.
type Client interface {
	CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
}

// MessageRequest describes one messages-API call.
type MessageRequest struct {
	Model       string
	MaxTokens   int64
	System      []SystemBlock
	Messages    []Message
	Temperature *float64
}

// SystemBlock is one system prompt segment. A non-nil CacheControl marks a
// prompt cache breakpoint after it.
type SystemBlock struct {
	Text         string
	CacheControl *CacheControl
}

// CacheControl selects the prompt cache lifetime, "5m" or "1h".
type CacheControl struct {
	TTL string
}

// Message is a single turn. Role is "user" or "assistant"; anything else
// is sent as "user".
type Message struct {
	Role    string
	Content string
}

// MessageResponse is the decoded reply.
type MessageResponse struct {
	ID           string
	Model        string
	Content      []ContentBlock
	StopReason   string
	StopSequence string
	Usage        TokenUsage
}

// ContentBlock is one piece of reply content.
type ContentBlock struct {
	Type string
	Text string
}

// apiClient is the production Client, backed by anthropic-sdk-go.
type apiClient struct {
	sdk sdk.Client
}

// NewClient builds a Client over the official SDK.
func NewClient(apiKey string) Client {
	return &apiClient{sdk: sdk.NewClient(option.WithAPIKey(apiKey))}
}

func (c *apiClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
	}
	for _, m := range req.Messages {
		params.Messages = append(params.Messages, m.toSDK())
	}
	for _, b := range req.System {
		params.System = append(params.System, b.toSDK())
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	msg, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}
	return newMessageResponse(msg), nil
}

func (m Message) toSDK() sdk.MessageParam {
	block := sdk.NewTextBlock(m.Content)
	if m.Role == "assistant" {
		return sdk.NewAssistantMessage(block)
	}
	return sdk.NewUserMessage(block)
}

func (b SystemBlock) toSDK() sdk.TextBlockParam {
	out := sdk.TextBlockParam{Text: b.Text}
	if b.CacheControl != nil {
		cc := sdk.NewCacheControlEphemeralParam()
		if b.CacheControl.TTL != "" {
			cc.TTL = sdk.CacheControlEphemeralTTL(b.CacheControl.TTL)
		}
		out.CacheControl = cc
	}
	return out
}

func newMessageResponse(msg *sdk.Message) *MessageResponse {
	resp := &MessageResponse{
		ID:           msg.ID,
		Model:        string(msg.Model),
		StopReason:   string(msg.StopReason),
		StopSequence: msg.StopSequence,
		Usage: TokenUsage{
			InputTokens:              msg.Usage.InputTokens,
			OutputTokens:             msg.Usage.OutputTokens,
			CacheCreationInputTokens: msg.Usage.CacheCreationInputTokens,
			CacheReadInputTokens:     msg.Usage.CacheReadInputTokens,
		},
	}
	for _, b := range msg.Content {
		resp.Content = append(resp.Content, ContentBlock{Type: b.Type, Text: b.Text})
	}
	return resp
}
