package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
	"github.com/paperquery/paperquery/internal/logger"
)

// Per-provider rate limiting defaults. Conservative so a burst of fallback
// attempts cannot hammer a single upstream.
const (
	defaultProviderRPS   = 2.0
	defaultProviderBurst = 4
)

// RouteResult is a routed completion with the identity of the provider
// that actually served it.
type RouteResult struct {
	// Text is the completion text.
	Text string

	// Model is the model that served the request; it may differ from the
	// requested model when the router fell back.
	Model string

	// InputTokens and OutputTokens are the serving provider's counts.
	InputTokens  int
	OutputTokens int
}

// FallbackRouter tries an ordered list of completion providers until one
// succeeds. Providers are registered by model identifier and looked up by
// key rather than branched on by name. A single provider's failure —
// including a rejected credential — never aborts the operation; only
// exhausting the try-order does.
type FallbackRouter struct {
	mu        sync.RWMutex
	providers map[string]driven.CompletionProvider
	limiters  map[string]*rate.Limiter
	priority  []string
	rps       float64
	burst     int
}

// NewFallbackRouter creates a router with the given fixed priority order.
// Models registered later but absent from the priority list are appended
// in registration order.
func NewFallbackRouter(priority []string) *FallbackRouter {
	return &FallbackRouter{
		providers: make(map[string]driven.CompletionProvider),
		limiters:  make(map[string]*rate.Limiter),
		priority:  append([]string(nil), priority...),
		rps:       defaultProviderRPS,
		burst:     defaultProviderBurst,
	}
}

// Register adds a provider under its model identifier, replacing any
// previous registration for the same identifier.
func (r *FallbackRouter) Register(p driven.CompletionProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := p.ModelID()
	if _, known := r.providers[id]; !known && !contains(r.priority, id) {
		r.priority = append(r.priority, id)
	}
	r.providers[id] = p
	r.limiters[id] = rate.NewLimiter(rate.Limit(r.rps), r.burst)
}

// Models returns the registered model identifiers in priority order.
func (r *FallbackRouter) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]string, 0, len(r.providers))
	for _, id := range r.priority {
		if _, ok := r.providers[id]; ok {
			models = append(models, id)
		}
	}
	return models
}

// Complete routes the prompt through the try-order: the requested model
// first if registered, then the remaining registered models in priority
// order. The first candidate producing non-empty text wins. Exhaustion
// fails with domain.ErrAllProvidersFailed wrapping every candidate error.
func (r *FallbackRouter) Complete(ctx context.Context, requestedModel, prompt string, opts driven.GenerateOptions) (*RouteResult, error) {
	order := r.tryOrder(requestedModel)
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: no providers registered", domain.ErrAllProvidersFailed)
	}

	var attempts []error
	for _, id := range order {
		r.mu.RLock()
		provider := r.providers[id]
		limiter := r.limiters[id]
		r.mu.RUnlock()

		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate wait %s: %w", id, err)
		}

		completion, err := provider.Generate(ctx, prompt, opts)
		if err != nil {
			if errors.Is(err, domain.ErrAuthFailed) {
				logger.Warn("router: %s rejected credentials, trying next candidate", id)
			} else {
				logger.Warn("router: %s failed: %v", id, err)
			}
			attempts = append(attempts, fmt.Errorf("%s: %w", id, err))
			continue
		}
		if completion == nil || strings.TrimSpace(completion.Text) == "" {
			logger.Warn("router: %s returned empty result", id)
			attempts = append(attempts, fmt.Errorf("%s: empty result", id))
			continue
		}

		if id != requestedModel {
			logger.Info("router: served by %s (requested %s)", id, requestedModel)
		}
		return &RouteResult{
			Text:         completion.Text,
			Model:        id,
			InputTokens:  completion.InputTokens,
			OutputTokens: completion.OutputTokens,
		}, nil
	}

	return nil, fmt.Errorf("%w: %w", domain.ErrAllProvidersFailed, errors.Join(attempts...))
}

// tryOrder builds the candidate order for a requested model: the request
// first when registered, then the remaining registered models in the fixed
// priority order.
func (r *FallbackRouter) tryOrder(requestedModel string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order := make([]string, 0, len(r.providers))
	if _, ok := r.providers[requestedModel]; ok {
		order = append(order, requestedModel)
	}
	for _, id := range r.priority {
		if id == requestedModel {
			continue
		}
		if _, ok := r.providers[id]; ok {
			order = append(order, id)
		}
	}
	return order
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
