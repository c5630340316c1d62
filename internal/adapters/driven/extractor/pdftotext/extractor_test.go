package pdftotext

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperquery/paperquery/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("text"), err: nil}
	extractor := NewWithRunner(runner)
	require.NotNil(t, extractor)
	assert.Equal(t, runner, extractor.runner)
}

func TestExtract_SplitsPagesOnFormFeed(t *testing.T) {
	runner := &mockRunner{
		output: []byte("Page one text.\fPage two text.\fPage three text.\n"),
	}
	extractor := NewWithRunner(runner)

	text, pages, err := extractor.Extract(context.Background(), []byte("%PDF-1.4 fake pdf content"))
	require.NoError(t, err)

	assert.Contains(t, text, "Page one text.")
	assert.Contains(t, text, "Page three text.")
	assert.NotContains(t, text, "\f")
	require.Len(t, pages, 3)
	assert.Equal(t, "Page one text.", pages[0])
}

func TestExtract_EmptyTrailingPageDropped(t *testing.T) {
	runner := &mockRunner{
		output: []byte("Only page.\f\n"),
	}
	extractor := NewWithRunner(runner)

	_, pages, err := extractor.Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

// A failing pdftotext run is not an extraction error: the document should
// still ingest with empty text.
func TestExtract_RunnerFailureIsBestEffort(t *testing.T) {
	runner := &mockRunner{
		output: nil,
		err:    errors.New("pdftotext crashed"),
	}
	extractor := NewWithRunner(runner)

	text, pages, err := extractor.Extract(context.Background(), []byte("not a pdf"))
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, pages)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Error(t, ErrPDFToolNotFound)
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.TextExtractor = (*Extractor)(nil)
}
