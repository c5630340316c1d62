package driven

import "context"

// GenerateOptions configures a single completion call.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// Completion is a provider's answer together with its token accounting.
// Providers without native token accounting estimate counts as len/4.
type Completion struct {
	// Text is the completion text.
	Text string

	// InputTokens is the prompt token count.
	InputTokens int

	// OutputTokens is the completion token count.
	OutputTokens int
}

// CompletionProvider is one completion backend. Implementations report a
// credential rejection wrapped in domain.ErrAuthFailed so the fallback
// router can retry the next candidate instead of aborting.
type CompletionProvider interface {
	// ModelID returns the public model identifier this provider serves.
	// It is the fallback router's registry key.
	ModelID() string

	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Completion, error)
}
