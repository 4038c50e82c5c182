package anthropic

import "go.uber.org/zap"

// TokenUsage is the per-call token accounting reported by the API.
type TokenUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

type pricing struct {
	input  float64 // $/MTok
	output float64 // $/MTok
}

var modelPricing = map[string]pricing{
	"claude-haiku-4-5-20251001":  {input: 0.80, output: 4.00},
	"claude-sonnet-4-5-20250929": {input: 3.00, output: 15.00},
	"claude-opus-4-6":            {input: 15.00, output: 75.00},
}

// Cache writes bill at a premium over input, cache reads at a discount.
const (
	cacheWriteMultiplier = 1.25
	cacheReadMultiplier  = 0.10
)

// EstimateCost converts the usage into USD for the given model. Unknown
// models cost zero.
func (u TokenUsage) EstimateCost(model string) float64 {
	p, ok := modelPricing[model]
	if !ok {
		return 0
	}
	perMTok := 1e-6
	return float64(u.InputTokens)*perMTok*p.input +
		float64(u.OutputTokens)*perMTok*p.output +
		float64(u.CacheCreationInputTokens)*perMTok*p.input*cacheWriteMultiplier +
		float64(u.CacheReadInputTokens)*perMTok*p.input*cacheReadMultiplier
}

// LogCost emits a structured cost-attribution line for the call.
func (u TokenUsage) LogCost(model, operation string) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("operation", operation),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Int64("cache_write_tokens", u.CacheCreationInputTokens),
		zap.Int64("cache_read_tokens", u.CacheReadInputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}
