package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperquery/paperquery/internal/adapters/driven/storage/memory"
	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
)

// echoExtractor returns the document bytes as text, so tests can assert
// which tier supplied the content.
type echoExtractor struct{}

func (echoExtractor) Extract(_ context.Context, data []byte) (string, []string, error) {
	return string(data), []string{string(data)}, nil
}

// countingObjectStore counts Get calls on the wrapped store.
type countingObjectStore struct {
	driven.ObjectStore
	gets int
}

func (c *countingObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets++
	return c.ObjectStore.Get(ctx, key)
}

// faultyCache fails every operation, simulating an unreachable cache.
type faultyCache struct{}

func (faultyCache) Get(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}
func (faultyCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}
func (faultyCache) Delete(context.Context, string) error {
	return errors.New("connection refused")
}
func (faultyCache) Keys(context.Context, string) ([]string, error) {
	return nil, errors.New("connection refused")
}

func newContentService(cache driven.CacheStore, objects driven.ObjectStore, uploadDir string) *ContentService {
	return NewContentService(cache, objects, echoExtractor{}, ContentConfig{UploadDir: uploadDir})
}

func cacheDocument(t *testing.T, cache driven.CacheStore, filename, content string) {
	t.Helper()

	doc := domain.Document{Filename: filename, Content: content}
	payload, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, cache.Set(context.Background(), "doc:"+filename, string(payload), 0))
}

func TestResolve_CacheHitShortCircuits(t *testing.T) {
	cache := memory.NewCacheStore()
	objects := &countingObjectStore{ObjectStore: memory.NewObjectStore()}
	svc := newContentService(cache, objects, t.TempDir())

	cacheDocument(t, cache, "paper.pdf", "cached text")

	text, err := svc.Resolve(context.Background(), "paper.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "cached text", text)
	assert.Zero(t, objects.gets, "cache hit must not touch the object store")
}

func TestResolve_DirectLocatorSkipsStoredCopies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("fetched text"))
	}))
	defer server.Close()

	cache := memory.NewCacheStore()
	objects := &countingObjectStore{ObjectStore: memory.NewObjectStore()}
	svc := newContentService(cache, objects, t.TempDir())

	text, err := svc.Resolve(context.Background(), "paper.pdf", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "fetched text", text)
	assert.Zero(t, objects.gets, "locator hit must skip key enumeration")
}

func TestResolve_FailedLocatorFallsThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache := memory.NewCacheStore()
	objects := memory.NewObjectStore()
	require.NoError(t, objects.Put(context.Background(), "docs/paper.pdf", []byte("stored text")))
	svc := newContentService(cache, objects, t.TempDir())

	text, err := svc.Resolve(context.Background(), "paper.pdf", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "stored text", text)
}

func TestResolve_ObjectKeyVariants(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		filename string
	}{
		{"bare key", "paper.pdf", "paper.pdf"},
		{"namespaced key", "docs/paper.pdf", "paper.pdf"},
		{"escaped spaces", "docs/my%20paper.pdf", "my paper.pdf"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			objects := memory.NewObjectStore()
			require.NoError(t, objects.Put(context.Background(), tc.key, []byte("object text")))
			svc := newContentService(memory.NewCacheStore(), objects, t.TempDir())

			text, err := svc.Resolve(context.Background(), tc.filename, "")
			require.NoError(t, err)
			assert.Equal(t, "object text", text)
		})
	}
}

func TestResolve_LocalFilesystem(t *testing.T) {
	uploadDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(uploadDir, "paper.pdf"), []byte("local text"), 0600))

	svc := newContentService(memory.NewCacheStore(), memory.NewObjectStore(), uploadDir)

	text, err := svc.Resolve(context.Background(), "paper.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "local text", text)
}

func TestResolve_ExhaustionIsNotFound(t *testing.T) {
	svc := newContentService(memory.NewCacheStore(), memory.NewObjectStore(), t.TempDir())

	_, err := svc.Resolve(context.Background(), "missing.pdf", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_EmptyRequestIsInvalid(t *testing.T) {
	svc := newContentService(memory.NewCacheStore(), memory.NewObjectStore(), t.TempDir())

	_, err := svc.Resolve(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// An unreachable cache must degrade to a miss, not fail resolution.
func TestResolve_CacheFaultIsAMiss(t *testing.T) {
	objects := memory.NewObjectStore()
	require.NoError(t, objects.Put(context.Background(), "docs/paper.pdf", []byte("stored text")))
	svc := newContentService(faultyCache{}, objects, t.TempDir())

	text, err := svc.Resolve(context.Background(), "paper.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "stored text", text)
}

func TestIngest_StoresAndCaches(t *testing.T) {
	cache := memory.NewCacheStore()
	objects := memory.NewObjectStore()
	svc := newContentService(cache, objects, t.TempDir())

	doc, err := svc.Ingest(context.Background(), []byte("ingested text"), "paper.pdf")
	require.NoError(t, err)

	assert.Equal(t, "paper.pdf", doc.Filename)
	assert.Equal(t, "docs/paper.pdf", doc.StorageKey)
	assert.Equal(t, "ingested text", doc.Content)
	assert.NotEmpty(t, doc.Chunks)
	assert.NotEmpty(t, doc.PresignedURL)

	// The original is durable under the namespaced key.
	data, err := objects.Get(context.Background(), "docs/paper.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("ingested text"), data)

	// The cached entry round-trips through Get.
	got, err := svc.Get(context.Background(), "paper.pdf")
	require.NoError(t, err)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, doc.Chunks, got.Chunks)
}

func TestIngest_EmptyInputIsInvalid(t *testing.T) {
	svc := newContentService(memory.NewCacheStore(), memory.NewObjectStore(), t.TempDir())

	_, err := svc.Ingest(context.Background(), nil, "paper.pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Ingest(context.Background(), []byte("data"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelete_RemovesObjectAndCache(t *testing.T) {
	cache := memory.NewCacheStore()
	objects := memory.NewObjectStore()
	svc := newContentService(cache, objects, t.TempDir())

	_, err := svc.Ingest(context.Background(), []byte("text"), "paper.pdf")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "paper.pdf"))

	_, err = objects.Get(context.Background(), "docs/paper.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Get(context.Background(), "paper.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_MissingIsNotFound(t *testing.T) {
	svc := newContentService(memory.NewCacheStore(), memory.NewObjectStore(), t.TempDir())

	_, err := svc.Get(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
