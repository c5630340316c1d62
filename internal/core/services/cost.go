package services

// ModelRate holds per-1k-token dollar rates for a model.
type ModelRate struct {
	// Input is the dollar rate per 1000 prompt tokens.
	Input float64

	// Output is the dollar rate per 1000 completion tokens.
	Output float64
}

// modelRates is the static pricing table, indexed by public model
// identifier. Unknown models fall back to defaultRate.
var modelRates = map[string]ModelRate{
	"gpt-4":         {Input: 0.03, Output: 0.06},
	"gemini-pro":    {Input: 0.00125, Output: 0.00375},
	"claude-3":      {Input: 0.015, Output: 0.075},
	"deepseek-chat": {Input: 0.0005, Output: 0.0015},
	"grok-1":        {Input: 0.0005, Output: 0.0015},
}

// defaultRate is applied to model identifiers absent from the table.
var defaultRate = ModelRate{Input: 0.01, Output: 0.02}

// RateFor returns the rate table entry for a model, or the default entry
// for unknown identifiers.
func RateFor(model string) ModelRate {
	if rate, ok := modelRates[model]; ok {
		return rate
	}
	return defaultRate
}

// CompletionCost computes the dollar cost of a completion from its token
// counts. It is pure and total: unknown models use the default rate and
// negative counts are treated as zero.
func CompletionCost(model string, inputTokens, outputTokens int) float64 {
	if inputTokens < 0 {
		inputTokens = 0
	}
	if outputTokens < 0 {
		outputTokens = 0
	}

	rate := RateFor(model)
	return float64(inputTokens)/1000*rate.Input + float64(outputTokens)/1000*rate.Output
}
