package domain

// TaskKind identifies the kind of completion task.
type TaskKind string

const (
	// TaskSummarize produces a bounded-length summary of a document.
	TaskSummarize TaskKind = "summarize"

	// TaskQuestion answers a question about a document.
	TaskQuestion TaskKind = "question"
)

// SummaryRequest asks for a summary of a document.
type SummaryRequest struct {
	// Filename identifies the document.
	Filename string

	// Model is the requested model identifier. The serving model may
	// differ when the fallback router routes around a failing provider.
	Model string

	// MaxLength bounds the summary length in words.
	MaxLength int

	// LocatorHint is an optional direct URL to the document bytes,
	// tried before object-store key enumeration.
	LocatorHint string
}

// QuestionRequest asks a question about a document.
type QuestionRequest struct {
	// Filename identifies the document.
	Filename string

	// Question is the question text.
	Question string

	// Model is the requested model identifier.
	Model string

	// LocatorHint is an optional direct URL to the document bytes.
	LocatorHint string
}

// CompletionResult is the outcome of a summarize or question task.
type CompletionResult struct {
	// Kind is the task kind that produced this result.
	Kind TaskKind `json:"kind"`

	// Filename identifies the document the task ran against.
	Filename string `json:"filename"`

	// Text is the completion text.
	Text string `json:"text"`

	// Model is the model that actually served the completion.
	// It may differ from the requested model.
	Model string `json:"model"`

	// InputTokens is the prompt token count reported or estimated by the
	// serving provider.
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the completion token count.
	OutputTokens int `json:"output_tokens"`

	// Cost is the computed monetary cost in dollars. Never negative.
	Cost float64 `json:"cost"`
}
