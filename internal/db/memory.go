package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore for local runs and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
	now         func() time.Time
	// Err, when set, is returned by every operation.
	Err error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]interface{}),
		now:         time.Now,
	}
}

// SetClock replaces the clock used to resolve ServerTimestamp.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) collection(name string) map[string]map[string]interface{} {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]map[string]interface{})
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) resolve(fields Fields) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	ts := s.now().UTC()
	for k, v := range fields {
		switch v {
		case DeleteField:
			continue
		case ServerTimestamp:
			out[k] = ts
		default:
			out[k] = v
		}
	}
	return out
}

func (s *MemoryStore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := uuid.NewString()
	s.collection(collection)[key] = s.resolve(fields)
	return key, nil
}

func (s *MemoryStore) CreateWithKey(ctx context.Context, collection, key string, fields Fields) error {
	if s.Err != nil {
		return s.Err
	}
	if key == "" {
		return fmt.Errorf("key cannot be empty for CreateWithKey")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	if _, exists := c[key]; exists {
		return fmt.Errorf("document '%s/%s': %w", collection, key, ErrAlreadyExists)
	}
	c[key] = s.resolve(fields)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, key string) (*Document, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[collection][key]
	if !ok {
		return nil, fmt.Errorf("document '%s/%s': %w", collection, key, ErrNotFound)
	}
	return &Document{Key: key, Data: copyData(data)}, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, q Query) ([]*Document, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	keys := make([]string, 0, len(s.collections[collection]))
	for key := range s.collections[collection] {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var docs []*Document
	for _, key := range keys {
		data := s.collections[collection][key]
		if matches(data, q.Filters) {
			docs = append(docs, &Document{Key: key, Data: copyData(data)})
		}
	}
	s.mu.RUnlock()

	if q.OrderBy != "" {
		SortDocuments(docs, q.OrderBy, q.Descending)
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, key string, fields Fields) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.collections[collection][key]
	if !ok {
		return fmt.Errorf("document '%s/%s': %w", collection, key, ErrNotFound)
	}
	ts := s.now().UTC()
	for k, v := range fields {
		switch v {
		case DeleteField:
			delete(data, k)
		case ServerTimestamp:
			data[k] = ts
		default:
			data[k] = v
		}
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collections[collection]
	if _, ok := c[key]; !ok {
		return fmt.Errorf("document '%s/%s': %w", collection, key, ErrNotFound)
	}
	delete(c, key)
	return nil
}

// Len reports how many documents a collection holds.
func (s *MemoryStore) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func matches(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok || v != f.Value {
			return false
		}
	}
	return true
}

func copyData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// MemoryBlobStore is an in-process BlobStore. Its URLs use the memory:// scheme.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string]memoryBlob

	// PutErr and DeleteErr, when set, make the matching operation fail.
	PutErr    error
	DeleteErr error
}

type memoryBlob struct {
	data        []byte
	contentType string
}

// NewMemoryBlobStore returns an empty MemoryBlobStore.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string]memoryBlob)}
}

func (b *MemoryBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if b.PutErr != nil {
		return b.PutErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = memoryBlob{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

func (b *MemoryBlobStore) URL(ctx context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.objects[key]; !ok {
		return "", fmt.Errorf("object '%s': %w", key, ErrNotFound)
	}
	return "memory://" + key, nil
}

func (b *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

// Object returns the stored bytes and content type of key.
func (b *MemoryBlobStore) Object(key string) ([]byte, string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, ok := b.objects[key]
	return obj.data, obj.contentType, ok
}
