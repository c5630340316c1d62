package driven

import "context"

// TextExtractor extracts plain text from a document byte stream.
// Extraction is best-effort: malformed input yields empty text and no
// error, so a low-quality result is never confused with an I/O fault.
type TextExtractor interface {
	// Extract returns the full plain text and the per-page texts of data.
	Extract(ctx context.Context, data []byte) (text string, pages []string, err error)
}

// CommandRunner executes an external command and returns its stdout.
// It exists so adapters shelling out to external tools can be tested
// without the tool installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
