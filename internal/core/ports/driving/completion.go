package driving

import (
	"context"

	"github.com/paperquery/paperquery/internal/core/domain"
)

// CompletionService runs summarize and question tasks against resolved
// document content, publishing a stream event for each served completion.
type CompletionService interface {
	// Summarize produces a bounded-length summary of a document.
	Summarize(ctx context.Context, req domain.SummaryRequest) (*domain.CompletionResult, error)

	// Ask answers a question about a document.
	Ask(ctx context.Context, req domain.QuestionRequest) (*domain.CompletionResult, error)
}

// ConsumerControl manages the analytics stream consumer's lifecycle.
type ConsumerControl interface {
	// Start joins the consumer group and runs the claim loop. It blocks
	// until Stop is called or the context is cancelled.
	Start(ctx context.Context) error

	// Stop requests a cooperative shutdown and waits for the loop to exit.
	Stop() error

	// Stats returns a snapshot of the process-lifetime counters.
	Stats() domain.ConsumerStats
}
