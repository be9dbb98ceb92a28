package costcontrol

import "strings"

// ModelPricing holds per-million-token pricing for a model.
type ModelPricing struct {
	InputPerMTok  float64 // USD per million input tokens
	OutputPerMTok float64 // USD per million output tokens
}

// modelPricingTable maps model names to their pricing.
var modelPricingTable = map[string]ModelPricing{
	"claude-sonnet-4-5":          {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-sonnet-4-5-20250929": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-haiku-4-5":           {InputPerMTok: 1, OutputPerMTok: 5},
	"claude-haiku-4-5-20251001":  {InputPerMTok: 1, OutputPerMTok: 5},
	"claude-3-5-haiku-20241022":  {InputPerMTok: 1, OutputPerMTok: 5},

	"gpt-4o":      {InputPerMTok: 2.5, OutputPerMTok: 10},
	"gpt-4o-mini": {InputPerMTok: 0.15, OutputPerMTok: 0.60},
}

// modelFamilyPricing maps model family prefixes to pricing. Longest prefix
// wins so "claude-sonnet-4-5" is not shadowed by "claude-sonnet".
var modelFamilyPricing = map[string]ModelPricing{
	"claude-sonnet-4-5": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-haiku-4-5":  {InputPerMTok: 1, OutputPerMTok: 5},
	"claude-sonnet":     {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-haiku":      {InputPerMTok: 1, OutputPerMTok: 5},
	"claude-opus":       {InputPerMTok: 15, OutputPerMTok: 75},
	"gpt-4o-mini":       {InputPerMTok: 0.15, OutputPerMTok: 0.60},
	"gpt-4o":            {InputPerMTok: 2.5, OutputPerMTok: 10},
}

// defaultPricing is used for unknown models (conservative to prevent silent
// overspend against the daily ceiling).
var defaultPricing = ModelPricing{InputPerMTok: 15, OutputPerMTok: 75}

// GetModelPricing returns pricing for a model.
// Tries exact match, then prefix/family match (longest prefix wins), then default.
func GetModelPricing(model string) ModelPricing {
	if p, ok := modelPricingTable[model]; ok {
		return p
	}

	bestPrefix := ""
	var bestPricing ModelPricing
	for prefix, p := range modelFamilyPricing {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(bestPrefix) {
			bestPrefix = prefix
			bestPricing = p
		}
	}
	if bestPrefix != "" {
		return bestPricing
	}
	return defaultPricing
}

// CalculateCost returns the USD cost of one call from token counts.
func CalculateCost(inputTokens, outputTokens int, p ModelPricing) float64 {
	return float64(inputTokens)/1e6*p.InputPerMTok + float64(outputTokens)/1e6*p.OutputPerMTok
}
