package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/paperquery/paperquery/internal/core/domain"
	"github.com/paperquery/paperquery/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

type object struct {
	data         []byte
	lastModified time.Time
}

// ObjectStore is an in-memory implementation of driven.ObjectStore.
// Presigned URLs are synthetic but unique per call, mirroring the
// ephemeral-URL contract of a real store.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string]object
	signSeq int
}

// NewObjectStore creates a new in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: make(map[string]object)}
}

// Put stores data under key.
func (s *ObjectStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{
		data:         append([]byte(nil), data...),
		lastModified: time.Now().UTC(),
	}
	return nil
}

// Get returns the bytes stored under key, or domain.ErrNotFound.
func (s *ObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), obj.data...), nil
}

// Delete removes the object under key.
func (s *ObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// List returns objects whose keys begin with prefix, sorted by key.
func (s *ObjectStore) List(_ context.Context, prefix string) ([]driven.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var infos []driven.ObjectInfo
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, driven.ObjectInfo{
				Key:          key,
				Size:         int64(len(obj.data)),
				LastModified: obj.lastModified,
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// PresignedURL mints a synthetic time-limited URL for key.
func (s *ObjectStore) PresignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return "", domain.ErrNotFound
	}
	s.signSeq++
	return fmt.Sprintf("memory://%s?sig=%d&ttl=%d", key, s.signSeq, int(ttl.Seconds())), nil
}
