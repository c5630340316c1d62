package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
)

// stubProvider is a scriptable completion provider.
type stubProvider struct {
	id    string
	text  string
	err   error
	calls int
}

func (p *stubProvider) ModelID() string { return p.id }

func (p *stubProvider) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (*driven.Completion, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &driven.Completion{Text: p.text, InputTokens: 10, OutputTokens: 5}, nil
}

func TestComplete_RequestedModelFirst(t *testing.T) {
	router := NewFallbackRouter([]string{"gpt-4", "gemini-pro"})
	gpt := &stubProvider{id: "gpt-4", text: "gpt answer"}
	gemini := &stubProvider{id: "gemini-pro", text: "gemini answer"}
	router.Register(gpt)
	router.Register(gemini)

	result, err := router.Complete(context.Background(), "gemini-pro", "prompt", driven.GenerateOptions{})
	require.NoError(t, err)

	assert.Equal(t, "gemini-pro", result.Model)
	assert.Equal(t, "gemini answer", result.Text)
	assert.Zero(t, gpt.calls, "the requested model wins without trying others")
}

func TestComplete_FallsBackInPriorityOrder(t *testing.T) {
	router := NewFallbackRouter([]string{"gpt-4", "gemini-pro", "claude-3"})
	gpt := &stubProvider{id: "gpt-4", err: errors.New("upstream 500")}
	gemini := &stubProvider{id: "gemini-pro", text: "gemini answer"}
	claude := &stubProvider{id: "claude-3", text: "claude answer"}
	router.Register(gpt)
	router.Register(gemini)
	router.Register(claude)

	result, err := router.Complete(context.Background(), "gpt-4", "prompt", driven.GenerateOptions{})
	require.NoError(t, err)

	assert.Equal(t, "gemini-pro", result.Model, "served model differs from requested")
	assert.Equal(t, 1, gpt.calls)
	assert.Equal(t, 1, gemini.calls)
	assert.Zero(t, claude.calls, "fallback stops at the first success")
}

func TestComplete_UnknownRequestedModelStillServes(t *testing.T) {
	router := NewFallbackRouter([]string{"gpt-4"})
	router.Register(&stubProvider{id: "gpt-4", text: "answer"})

	result, err := router.Complete(context.Background(), "no-such-model", "prompt", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", result.Model)
}

func TestComplete_AuthFailureTriesNextCandidate(t *testing.T) {
	router := NewFallbackRouter([]string{"gpt-4", "claude-3"})
	router.Register(&stubProvider{id: "gpt-4", err: fmt.Errorf("%w: status 401", domain.ErrAuthFailed)})
	router.Register(&stubProvider{id: "claude-3", text: "answer"})

	result, err := router.Complete(context.Background(), "gpt-4", "prompt", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "claude-3", result.Model)
}

func TestComplete_EmptyTextIsAFailure(t *testing.T) {
	router := NewFallbackRouter([]string{"gpt-4", "claude-3"})
	router.Register(&stubProvider{id: "gpt-4", text: "   "})
	router.Register(&stubProvider{id: "claude-3", text: "answer"})

	result, err := router.Complete(context.Background(), "gpt-4", "prompt", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "claude-3", result.Model)
}

func TestComplete_ExhaustionWrapsEveryAttempt(t *testing.T) {
	router := NewFallbackRouter([]string{"gpt-4", "claude-3"})
	router.Register(&stubProvider{id: "gpt-4", err: errors.New("gpt down")})
	router.Register(&stubProvider{id: "claude-3", err: errors.New("claude down")})

	_, err := router.Complete(context.Background(), "gpt-4", "prompt", driven.GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAllProvidersFailed)
	assert.Contains(t, err.Error(), "gpt down")
	assert.Contains(t, err.Error(), "claude down")
}

func TestComplete_NoProvidersRegistered(t *testing.T) {
	router := NewFallbackRouter(nil)

	_, err := router.Complete(context.Background(), "gpt-4", "prompt", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrAllProvidersFailed)
}

func TestModels_PriorityOrder(t *testing.T) {
	router := NewFallbackRouter([]string{"gpt-4", "gemini-pro"})
	router.Register(&stubProvider{id: "gemini-pro"})
	router.Register(&stubProvider{id: "gpt-4"})
	// Unlisted models append after the fixed priority.
	router.Register(&stubProvider{id: "llama3.2"})

	assert.Equal(t, []string{"gpt-4", "gemini-pro", "llama3.2"}, router.Models())
}
