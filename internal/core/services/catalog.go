package services

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
	"github.com/paperquery/paperquery/internal/core/ports/driving"
	"github.com/paperquery/paperquery/internal/logger"
)

// Ensure CatalogRegistry implements the interface.
var _ driving.CatalogService = (*CatalogRegistry)(nil)

// CatalogRegistry enumerates known documents by merging object-store and
// local-filesystem listings. The catalog is derived and recomputed on
// every call; it is never a source of truth.
type CatalogRegistry struct {
	objects    driven.ObjectStore
	uploadDir  string
	presignTTL time.Duration
}

// NewCatalogRegistry creates a catalog registry. presignTTL bounds the
// validity of minted access URLs; zero selects the 7-day default.
func NewCatalogRegistry(objects driven.ObjectStore, uploadDir string, presignTTL time.Duration) *CatalogRegistry {
	if presignTTL <= 0 {
		presignTTL = defaultPresignTTL
	}
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &CatalogRegistry{
		objects:    objects,
		uploadDir:  uploadDir,
		presignTTL: presignTTL,
	}
}

// List merges both listings into a catalog deduplicated by filename.
// A later source fills gaps in an earlier entry with the same filename
// rather than replacing it. Object-sourced entries carry a freshly minted
// time-limited URL on every call; the URLs are ephemeral by contract.
// A failure in either listing source is logged and the other source still
// contributes.
func (r *CatalogRegistry) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	byName := make(map[string]int)
	var entries []domain.CatalogEntry

	objects, err := r.objects.List(ctx, objectKeyPrefix)
	if err != nil {
		logger.Warn("catalog: object store listing: %v", err)
	}
	for _, obj := range objects {
		filename := strings.TrimPrefix(obj.Key, objectKeyPrefix)
		if !strings.HasSuffix(filename, documentExt) {
			continue
		}

		entry := domain.CatalogEntry{
			Filename:     filename,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		}
		url, err := r.objects.PresignedURL(ctx, obj.Key, r.presignTTL)
		if err != nil {
			logger.Warn("catalog: presign %s: %v", obj.Key, err)
		} else {
			entry.URL = url
		}

		byName[filename] = len(entries)
		entries = append(entries, entry)
	}

	files, err := os.ReadDir(r.uploadDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("catalog: local listing: %v", err)
		}
		return entries, nil
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), documentExt) {
			continue
		}

		info, err := f.Info()
		if err != nil {
			continue
		}

		if i, ok := byName[f.Name()]; ok {
			// Merge, not replace: fill only the fields the object
			// listing left empty.
			if entries[i].Size == 0 {
				entries[i].Size = info.Size()
			}
			if entries[i].LastModified.IsZero() {
				entries[i].LastModified = info.ModTime()
			}
			continue
		}

		byName[f.Name()] = len(entries)
		entries = append(entries, domain.CatalogEntry{
			Filename:     f.Name(),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
	}

	return entries, nil
}
