package gallery

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memObject struct {
	data         []byte
	contentType  string
	metadata     map[string]string
	lastModified time.Time
}

// memStore is an in-memory ObjectStore for tests. Each Put advances an
// internal clock so listings have strictly increasing timestamps, and
// statErrs lets a test inject per-key metadata failures.
type memStore struct {
	mu       sync.Mutex
	objects  map[string]*memObject
	statErrs map[string]error
	clock    time.Time
}

func newMemStore() *memStore {
	return &memStore{
		objects:  make(map[string]*memObject),
		statErrs: make(map[string]error),
		clock:    time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var objects []ObjectInfo
	for key, obj := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.lastModified,
		})
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (s *memStore) Stat(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.statErrs[key]; err != nil {
		return nil, err
	}

	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}

	metadata := make(map[string]string, len(obj.metadata))
	for k, v := range obj.metadata {
		metadata[k] = v
	}
	return metadata, nil
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), obj.data...), nil
}

func (s *memStore) Put(_ context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock = s.clock.Add(time.Minute)

	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}

	s.objects[key] = &memObject{
		data:         append([]byte(nil), data...),
		contentType:  contentType,
		metadata:     md,
		lastModified: s.clock,
	}
	return nil
}

func (s *memStore) ReplaceMetadata(_ context.Context, key string, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[key]
	if !ok {
		return ErrNotFound
	}

	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	obj.metadata = md
	return nil
}

func (s *memStore) Remove(_ context.Context, keys []string) (int, []RemoveError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.objects, key)
	}
	return len(keys), nil, nil
}

func (s *memStore) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://store.example.com/" + key + "?sig=test", nil
}

// setMetadata overwrites one metadata value directly, bypassing the codec.
func (s *memStore) setMetadata(key string, name string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if obj, ok := s.objects[key]; ok {
		obj.metadata[name] = value
	}
}
