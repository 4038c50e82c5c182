package anthropic

import (
	"context"

	"github.com/rotisserie/eris"
)

// The analysis system prompt is long and identical across products, so it
// gets the longest cache lifetime the API offers.
const systemCacheTTL = "1h"

// BuildCachedSystemBlocks wraps the system prompt in a single block with a
// cache breakpoint, so every call after the first reads it from the prompt
// cache at a fraction of the input cost.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{{
		Text:         text,
		CacheControl: &CacheControl{TTL: systemCacheTTL},
	}}
}

// PrimerRequest issues one call whose only purpose is warming the prompt
// cache; req should carry system blocks from BuildCachedSystemBlocks. The
// response is returned for inspection but is usually discarded.
func PrimerRequest(ctx context.Context, client Client, req MessageRequest) (*MessageResponse, error) {
	resp, err := client.CreateMessage(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: primer request")
	}
	return resp, nil
}
