package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// questionHashLen is the length of the hex-encoded question hash used in
// analytics keys.
const questionHashLen = 16

// AnalyticsRecord is the per-key usage aggregate derived from stream events.
// Records are keyed deterministically so redelivered events overwrite rather
// than duplicate.
type AnalyticsRecord struct {
	// Key is the deterministic record key: kind:filename for summaries,
	// kind:filename:questionhash for questions.
	Key string

	// Kind is the originating task kind.
	Kind TaskKind

	// Filename identifies the document.
	Filename string

	// Model is the model that served the completion.
	Model string

	// Question is the question text for question records.
	Question string

	// InputTokens and OutputTokens are the token counts from the event.
	InputTokens  int
	OutputTokens int

	// Cost is the computed cost from the event.
	Cost float64

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time
}

// QuestionHash returns a short stable hash of a question's text, used to
// key question analytics records.
func QuestionHash(question string) string {
	sum := sha256.Sum256([]byte(question))
	return hex.EncodeToString(sum[:])[:questionHashLen]
}

// RecordFromEvent derives an analytics record from a completion event.
func RecordFromEvent(e CompletionEvent) AnalyticsRecord {
	key := string(e.Kind) + ":" + e.Filename
	if e.Kind == TaskQuestion {
		key += ":" + QuestionHash(e.Question)
	}

	return AnalyticsRecord{
		Key:          key,
		Kind:         e.Kind,
		Filename:     e.Filename,
		Model:        e.Model,
		Question:     e.Question,
		InputTokens:  e.InputTokens,
		OutputTokens: e.OutputTokens,
		Cost:         e.Cost,
		UpdatedAt:    time.Now().UTC(),
	}
}
