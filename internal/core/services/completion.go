package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/paperquery/paperquery/internal/chunker"
	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
	"github.com/paperquery/paperquery/internal/core/ports/driving"
	"github.com/paperquery/paperquery/internal/logger"
)

// Ensure CompletionOrchestrator implements the interface.
var _ driving.CompletionService = (*CompletionOrchestrator)(nil)

// DefaultStreamName is the event stream completions are published to.
const DefaultStreamName = "llm_events"

// defaultSummaryLength is the summary word bound when the request leaves
// it unset.
const defaultSummaryLength = 1000

// CompletionOrchestrator resolves document content, routes the prompt
// through the provider fallback chain, accounts cost, and publishes a
// stream event for every served completion. Event publication is
// best-effort: a broker fault is logged, never surfaced to the caller.
type CompletionOrchestrator struct {
	content   driving.ContentResolver
	router    *FallbackRouter
	broker    driven.StreamBroker
	stream    string
	chunkSize int
}

// NewCompletionOrchestrator creates a completion orchestrator. A nil
// broker disables event publication.
func NewCompletionOrchestrator(
	content driving.ContentResolver,
	router *FallbackRouter,
	broker driven.StreamBroker,
	stream string,
) *CompletionOrchestrator {
	if stream == "" {
		stream = DefaultStreamName
	}
	return &CompletionOrchestrator{
		content:   content,
		router:    router,
		broker:    broker,
		stream:    stream,
		chunkSize: chunker.DefaultChunkSize,
	}
}

// Summarize produces a bounded-length summary of a document.
func (o *CompletionOrchestrator) Summarize(ctx context.Context, req domain.SummaryRequest) (*domain.CompletionResult, error) {
	if req.MaxLength <= 0 {
		req.MaxLength = defaultSummaryLength
	}

	text, err := o.content.Resolve(ctx, req.Filename, req.LocatorHint)
	if err != nil {
		return nil, err
	}

	prompt := summaryPrompt(text, req.MaxLength)
	routed, err := o.router.Complete(ctx, req.Model, prompt, driven.GenerateOptions{MaxTokens: req.MaxLength})
	if err != nil {
		return nil, err
	}

	result := o.buildResult(domain.TaskSummarize, req.Filename, routed)
	o.publish(ctx, result, "")
	return result, nil
}

// Ask answers a question about a document. The document's chunks are
// passed positionally as context, not ranked by relevance.
func (o *CompletionOrchestrator) Ask(ctx context.Context, req domain.QuestionRequest) (*domain.CompletionResult, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	text, err := o.content.Resolve(ctx, req.Filename, req.LocatorHint)
	if err != nil {
		return nil, err
	}

	prompt := questionPrompt(req.Question, chunker.Split(text, o.chunkSize))
	routed, err := o.router.Complete(ctx, req.Model, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, err
	}

	result := o.buildResult(domain.TaskQuestion, req.Filename, routed)
	o.publish(ctx, result, req.Question)
	return result, nil
}

// buildResult assembles the completion result, costing against the model
// that actually served the request.
func (o *CompletionOrchestrator) buildResult(kind domain.TaskKind, filename string, routed *RouteResult) *domain.CompletionResult {
	return &domain.CompletionResult{
		Kind:         kind,
		Filename:     filename,
		Text:         routed.Text,
		Model:        routed.Model,
		InputTokens:  routed.InputTokens,
		OutputTokens: routed.OutputTokens,
		Cost:         CompletionCost(routed.Model, routed.InputTokens, routed.OutputTokens),
	}
}

// publish appends a completion event to the stream. Analytics must never
// break a completion, so failures are only logged.
func (o *CompletionOrchestrator) publish(ctx context.Context, result *domain.CompletionResult, question string) {
	if o.broker == nil {
		return
	}

	event := domain.EventFromResult(result, question)
	id, err := o.broker.Append(ctx, o.stream, event.Fields())
	if err != nil {
		logger.Warn("completion: event append: %v", err)
		return
	}
	logger.Debug("completion: published event %s (%s %s)", id, result.Kind, result.Filename)
}

// summaryPrompt builds the summarisation prompt.
func summaryPrompt(content string, maxLength int) string {
	return fmt.Sprintf(`Please provide a clear and concise summary of the following text.
The summary should be no longer than %d words and should capture the main points and key information:

%s

Summary:`, maxLength, content)
}

// questionPrompt builds the question-answering prompt from the document's
// chunks.
func questionPrompt(question string, context []string) string {
	return fmt.Sprintf(`Based on the following context, please answer the question accurately and concisely.
If the answer cannot be found in the context, please say so.

Context:
%s

Question: %s

Answer:`, strings.Join(context, "\n"), question)
}
