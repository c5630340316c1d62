// Package pdftotext extracts plain text from PDF bytes by shelling out to
// the poppler pdftotext tool.
package pdftotext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/paperquery/paperquery/internal/core/ports/driven"
	"github.com/paperquery/paperquery/internal/logger"
)

// pageSeparator is the form feed pdftotext emits between pages.
const pageSeparator = "\f"

// ErrPDFToolNotFound indicates the pdftotext binary is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor implements driven.TextExtractor using pdftotext. Extraction is
// best-effort: a failed run yields empty text and no error, so a corrupt
// upload never blocks ingestion.
type Extractor struct {
	runner driven.CommandRunner
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// New creates an extractor backed by the real pdftotext binary.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates an extractor with a custom command runner, for tests.
func NewWithRunner(runner driven.CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// CheckAvailable reports whether the pdftotext binary is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return `pdftotext is required for PDF extraction.
  macOS:  brew install poppler
  Debian: apt install poppler-utils`
}

// Extract runs pdftotext over data and returns the full text and per-page
// texts. Failures are logged and reported as empty output.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, []string, error) {
	tmp, err := os.CreateTemp("", "paperquery-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}

	// "-" sends the text to stdout; -layout keeps column ordering readable.
	out, err := e.runner.Run(ctx, "pdftotext", "-layout", tmpPath, "-")
	if err != nil {
		logger.Warn("pdftotext failed for %s: %v", filepath.Base(tmpPath), err)
		return "", nil, nil
	}

	text := string(out)
	var pages []string
	for _, page := range strings.Split(text, pageSeparator) {
		if strings.TrimSpace(page) != "" {
			pages = append(pages, page)
		}
	}

	return strings.TrimSpace(strings.ReplaceAll(text, pageSeparator, "\n")), pages, nil
}
