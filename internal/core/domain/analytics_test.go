package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionHash_StableAndShort(t *testing.T) {
	first := QuestionHash("what is the main finding?")
	second := QuestionHash("what is the main finding?")

	assert.Equal(t, first, second)
	assert.Len(t, first, 16)
	assert.NotEqual(t, first, QuestionHash("a different question"))
}

func TestRecordFromEvent_SummaryKey(t *testing.T) {
	rec := RecordFromEvent(CompletionEvent{
		Kind:     TaskSummarize,
		Filename: "paper.pdf",
		Model:    "gpt-4",
	})

	assert.Equal(t, "summarize:paper.pdf", rec.Key)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestRecordFromEvent_QuestionKeyIncludesHash(t *testing.T) {
	event := CompletionEvent{
		Kind:     TaskQuestion,
		Filename: "paper.pdf",
		Model:    "gpt-4",
		Question: "what is it about?",
	}

	rec := RecordFromEvent(event)
	assert.Equal(t, "question:paper.pdf:"+QuestionHash("what is it about?"), rec.Key)

	// The same question always lands on the same key; a different question
	// gets its own record.
	assert.Equal(t, rec.Key, RecordFromEvent(event).Key)
	event.Question = "who wrote it?"
	assert.NotEqual(t, rec.Key, RecordFromEvent(event).Key)
}
