package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestVerboseToggle(t *testing.T) {
	resetLogger(t)

	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLogging_SilentByDefault(t *testing.T) {
	buf := resetLogger(t)

	SetVerbose(false)
	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)

	assert.Empty(t, buf.String())
}

func TestLogging_VerboseOutput(t *testing.T) {
	buf := resetLogger(t)

	SetVerbose(true)
	Debug("resolving %s", "paper.pdf")
	Info("ingested %s", "paper.pdf")
	Warn("cache miss for %s", "paper.pdf")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] resolving paper.pdf")
	assert.Contains(t, out, "[INFO] ingested paper.pdf")
	assert.Contains(t, out, "[WARN] cache miss for paper.pdf")
}
