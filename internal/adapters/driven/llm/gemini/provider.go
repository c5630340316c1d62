// Package gemini provides a completion provider using the Google Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.CompletionProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-pro"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Gemini provider.
type Config struct {
	// APIKey is the Google API key (required).
	APIKey string

	// BaseURL is the API base URL.
	BaseURL string

	// Model is the model to use (default: gemini-pro).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Provider serves completions from the Gemini generateContent API.
type Provider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// generateContentRequest is the Gemini :generateContent request format.
type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

// generateContentResponse is the Gemini :generateContent response format.
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewProvider creates a new Gemini completion provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Provider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// ModelID returns the public model identifier this provider serves.
func (p *Provider) ModelID() string {
	return p.model
}

// Generate produces a completion for the prompt.
func (p *Provider) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (*driven.Completion, error) {
	reqBody := generateContentRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		reqBody.GenerationConfig = &generationConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     opts.Temperature,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		p.baseURL, p.model, url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: gemini returned status %d", domain.ErrAuthFailed, resp.StatusCode)
	}

	var genResp generateContentResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if genResp.Error != nil {
		return nil, fmt.Errorf("gemini error: %s", genResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}

	if len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: no candidates returned")
	}

	var text strings.Builder
	for _, pt := range genResp.Candidates[0].Content.Parts {
		text.WriteString(pt.Text)
	}

	return &driven.Completion{
		Text:         text.String(),
		InputTokens:  genResp.UsageMetadata.PromptTokenCount,
		OutputTokens: genResp.UsageMetadata.CandidatesTokenCount,
	}, nil
}
