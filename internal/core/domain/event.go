package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Stream event field names. The broker stores events as flat string maps,
// so every field has an explicit wire name.
const (
	eventFieldKind         = "kind"
	eventFieldFilename     = "filename"
	eventFieldModel        = "model"
	eventFieldQuestion     = "question"
	eventFieldInputTokens  = "input_tokens"
	eventFieldOutputTokens = "output_tokens"
	eventFieldCost         = "cost"
	eventFieldCreatedAt    = "created_at"
)

// CompletionEvent is the append-only record of a served completion.
// The request handler is the only producer; the analytics consumer owns
// acknowledgment state. Events are immutable once appended.
type CompletionEvent struct {
	// Kind is the task kind (summarize or question).
	Kind TaskKind

	// Filename identifies the document.
	Filename string

	// Model is the model that served the completion.
	Model string

	// Question is the question text for question events, empty otherwise.
	Question string

	// InputTokens and OutputTokens mirror the completion result.
	InputTokens  int
	OutputTokens int

	// Cost is the computed cost of the completion.
	Cost float64

	// CreatedAt is when the event was produced.
	CreatedAt time.Time
}

// EventFromResult builds a stream event from a completion result.
// The question is carried separately because the result text is the answer,
// not the question.
func EventFromResult(res *CompletionResult, question string) CompletionEvent {
	return CompletionEvent{
		Kind:         res.Kind,
		Filename:     res.Filename,
		Model:        res.Model,
		Question:     question,
		InputTokens:  res.InputTokens,
		OutputTokens: res.OutputTokens,
		Cost:         res.Cost,
		CreatedAt:    time.Now().UTC(),
	}
}

// Fields flattens the event into the broker's wire representation.
func (e CompletionEvent) Fields() map[string]any {
	return map[string]any{
		eventFieldKind:         string(e.Kind),
		eventFieldFilename:     e.Filename,
		eventFieldModel:        e.Model,
		eventFieldQuestion:     e.Question,
		eventFieldInputTokens:  strconv.Itoa(e.InputTokens),
		eventFieldOutputTokens: strconv.Itoa(e.OutputTokens),
		eventFieldCost:         strconv.FormatFloat(e.Cost, 'f', -1, 64),
		eventFieldCreatedAt:    e.CreatedAt.Format(time.RFC3339Nano),
	}
}

// EventFromFields parses a claimed stream entry back into an event.
// An unknown kind is an error so the consumer can log and skip the entry.
func EventFromFields(fields map[string]string) (CompletionEvent, error) {
	kind := TaskKind(fields[eventFieldKind])
	switch kind {
	case TaskSummarize, TaskQuestion:
	default:
		return CompletionEvent{}, fmt.Errorf("%w: unknown event kind %q", ErrInvalidInput, fields[eventFieldKind])
	}

	e := CompletionEvent{
		Kind:     kind,
		Filename: fields[eventFieldFilename],
		Model:    fields[eventFieldModel],
		Question: fields[eventFieldQuestion],
	}
	if e.Filename == "" {
		return CompletionEvent{}, fmt.Errorf("%w: event missing filename", ErrInvalidInput)
	}

	// Numeric fields are best-effort: a malformed count zeroes out rather
	// than dropping the whole event.
	e.InputTokens, _ = strconv.Atoi(fields[eventFieldInputTokens])
	e.OutputTokens, _ = strconv.Atoi(fields[eventFieldOutputTokens])
	e.Cost, _ = strconv.ParseFloat(fields[eventFieldCost], 64)
	if ts, err := time.Parse(time.RFC3339Nano, fields[eventFieldCreatedAt]); err == nil {
		e.CreatedAt = ts
	}

	return e, nil
}
