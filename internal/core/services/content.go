package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paperquery/paperquery/internal/chunker"
	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
	"github.com/paperquery/paperquery/internal/core/ports/driving"
	"github.com/paperquery/paperquery/internal/logger"
)

// Ensure ContentService implements the interface.
var _ driving.ContentResolver = (*ContentService)(nil)

const (
	// cacheKeyPrefix namespaces document entries in the cache.
	cacheKeyPrefix = "doc:"

	// objectKeyPrefix namespaces document originals in the object store.
	objectKeyPrefix = "docs/"

	// documentExt is the only supported document extension.
	documentExt = ".pdf"

	// defaultPresignTTL is the validity window for minted access URLs.
	defaultPresignTTL = 7 * 24 * time.Hour

	// directFetchTimeout bounds a direct-locator download.
	directFetchTimeout = 30 * time.Second
)

// ContentConfig configures the content service.
type ContentConfig struct {
	// UploadDir is the primary local directory for document files.
	UploadDir string

	// ChunkSize is the maximum chunk size in characters (default 1000).
	ChunkSize int

	// PresignTTL is the validity window for access URLs (default 7 days).
	PresignTTL time.Duration
}

// ContentService resolves document text through the tiered fallback chain
// (cache, direct locator, object-store key variants, local filesystem) and
// owns ingestion and deletion. Resolution is read-only: tiers 2-4 never
// write back to the cache, so a stale object-store copy cannot repopulate
// the cache after a delete.
type ContentService struct {
	cache      driven.CacheStore
	objects    driven.ObjectStore
	extractor  driven.TextExtractor
	httpClient *http.Client
	uploadDir  string
	chunkSize  int
	presignTTL time.Duration
}

// NewContentService creates a content service.
func NewContentService(
	cache driven.CacheStore,
	objects driven.ObjectStore,
	extractor driven.TextExtractor,
	cfg ContentConfig,
) *ContentService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunker.DefaultChunkSize
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = defaultPresignTTL
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}

	return &ContentService{
		cache:      cache,
		objects:    objects,
		extractor:  extractor,
		httpClient: &http.Client{Timeout: directFetchTimeout},
		uploadDir:  cfg.UploadDir,
		chunkSize:  cfg.ChunkSize,
		presignTTL: cfg.PresignTTL,
	}
}

// Resolve returns the document's plain text, trying each tier in order and
// short-circuiting on the first success. I/O faults within a tier are
// logged and the pipeline proceeds; only exhaustion of all tiers yields
// domain.ErrNotFound.
func (s *ContentService) Resolve(ctx context.Context, filename, locatorHint string) (string, error) {
	if filename == "" && locatorHint == "" {
		return "", fmt.Errorf("%w: empty filename", domain.ErrInvalidInput)
	}

	// Tier 1: cache.
	if text, ok := s.fromCache(ctx, filename); ok {
		return text, nil
	}

	// Tier 2: direct locator hint.
	if locatorHint != "" {
		if text, ok := s.fromURL(ctx, locatorHint); ok {
			return text, nil
		}
	}

	// Tier 3: object-store key variants.
	for _, key := range s.keyCandidates(filename) {
		data, err := s.objects.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Warn("content: object store fetch %s: %v", key, err)
			}
			continue
		}
		logger.Debug("content: resolved %s from object store key %s", filename, key)
		return s.extract(ctx, data)
	}

	// Tier 4: local filesystem.
	for _, path := range s.pathCandidates(filename) {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("content: local read %s: %v", path, err)
			}
			continue
		}
		logger.Debug("content: resolved %s from local path %s", filename, path)
		return s.extract(ctx, data)
	}

	return "", fmt.Errorf("document %q: %w", filename, domain.ErrNotFound)
}

// Ingest extracts, chunks, and durably stores a new document. The cache is
// written only here; it is the single source the resolve fast path reads.
func (s *ContentService) Ingest(ctx context.Context, data []byte, filename string) (*domain.Document, error) {
	if len(data) == 0 || filename == "" {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}

	text, pages, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}

	key := objectKeyPrefix + filename
	if err := s.objects.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("store %s: %w", filename, err)
	}

	url, err := s.objects.PresignedURL(ctx, key, s.presignTTL)
	if err != nil {
		// The object is durable; a failed presign only loses the
		// convenience URL.
		logger.Warn("content: presign %s: %v", key, err)
	}

	doc := &domain.Document{
		Filename:     filename,
		Content:      text,
		Pages:        pages,
		CreatedAt:    time.Now().UTC(),
		StorageKey:   key,
		PresignedURL: url,
		Chunks:       chunker.Split(text, s.chunkSize),
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", filename, err)
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+filename, string(payload), 0); err != nil {
		return nil, fmt.Errorf("cache %s: %w", filename, err)
	}

	logger.Info("content: ingested %s (%d pages, %d chunks)", filename, len(pages), len(doc.Chunks))
	return doc, nil
}

// Get returns the full stored document from the cache.
func (s *ContentService) Get(ctx context.Context, filename string) (*domain.Document, error) {
	raw, err := s.cache.Get(ctx, cacheKeyPrefix+filename)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("document %q: %w", filename, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("cache get %s: %w", filename, err)
	}

	var doc domain.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", filename, err)
	}
	return &doc, nil
}

// Delete removes the durable object and the cache entry. Both removals are
// attempted even when one fails.
func (s *ContentService) Delete(ctx context.Context, filename string) error {
	objErr := s.objects.Delete(ctx, objectKeyPrefix+filename)
	cacheErr := s.cache.Delete(ctx, cacheKeyPrefix+filename)
	if objErr != nil || cacheErr != nil {
		return errors.Join(objErr, cacheErr)
	}
	return nil
}

// fromCache attempts the cache tier. Cache faults are treated as misses.
func (s *ContentService) fromCache(ctx context.Context, filename string) (string, bool) {
	if filename == "" {
		return "", false
	}

	raw, err := s.cache.Get(ctx, cacheKeyPrefix+filename)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("content: cache get %s: %v", filename, err)
		}
		return "", false
	}

	var doc domain.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		logger.Warn("content: corrupt cache entry for %s: %v", filename, err)
		return "", false
	}
	if doc.Content == "" {
		return "", false
	}

	logger.Debug("content: cache hit for %s", filename)
	return doc.Content, true
}

// fromURL attempts the direct-locator tier.
func (s *ContentService) fromURL(ctx context.Context, locator string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		logger.Warn("content: bad locator %s: %v", locator, err)
		return "", false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("content: locator fetch: %v", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("content: locator fetch status %d", resp.StatusCode)
		return "", false
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("content: locator read: %v", err)
		return "", false
	}

	text, _, err := s.extractor.Extract(ctx, data)
	if err != nil {
		logger.Warn("content: locator extract: %v", err)
		return "", false
	}
	return text, true
}

// extract runs the extraction capability, mapping an I/O fault to empty
// content. Garbled input already yields empty text by the extractor's
// contract; the caller decides whether empty content constitutes failure.
func (s *ContentService) extract(ctx context.Context, data []byte) (string, error) {
	text, _, err := s.extractor.Extract(ctx, data)
	if err != nil {
		logger.Warn("content: extraction: %v", err)
		return "", nil
	}
	return text, nil
}

// keyCandidates enumerates object-store keys to try for a filename: the
// bare identifier, the namespaced form, and a percent-escaped-spaces form.
// The candidate set is a heuristic, not an addressing contract.
func (s *ContentService) keyCandidates(filename string) []string {
	if filename == "" {
		return nil
	}

	candidates := []string{
		filename,
		objectKeyPrefix + filename,
	}
	if escaped := strings.ReplaceAll(filename, " ", "%20"); escaped != filename {
		candidates = append(candidates, objectKeyPrefix+escaped)
	}
	return candidates
}

// pathCandidates enumerates local filesystem paths to try for a filename.
func (s *ContentService) pathCandidates(filename string) []string {
	if filename == "" {
		return nil
	}

	paths := []string{filepath.Join(s.uploadDir, filename)}
	for _, base := range []string{".", "uploads", "data"} {
		p := filepath.Join(base, filename)
		if p != paths[0] {
			paths = append(paths, p)
		}
	}
	return paths
}
