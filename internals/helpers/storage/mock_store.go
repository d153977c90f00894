package storage

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
)

// MockBlobStore keeps objects in memory. Fn fields override the default behaviour.
type MockBlobStore struct {
	PutFn    func(ctx context.Context, path string, r io.Reader, contentType string) (string, error)
	RemoveFn func(ctx context.Context, paths []string) error

	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{objects: map[string][]byte{}}
}

func (m *MockBlobStore) Put(ctx context.Context, path string, r io.Reader, contentType string) (string, error) {
	m.mu.Lock()
	m.puts++
	m.mu.Unlock()
	if m.PutFn != nil {
		return m.PutFn(ctx, path, r, contentType)
	}
	if path == "" {
		return "", errors.New("mock: empty path")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[path] = b
	return path, nil
}

func (m *MockBlobStore) PublicURL(path string) string {
	if path == "" {
		return ""
	}
	return "https://blob.test/" + path
}

func (m *MockBlobStore) Remove(ctx context.Context, paths []string) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, paths)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		delete(m.objects, p)
	}
	return nil
}

// PutCalls counts every Put attempt, including ones answered by PutFn.
func (m *MockBlobStore) PutCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func (m *MockBlobStore) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok
}

func (m *MockBlobStore) Object(path string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[path]
}

func (m *MockBlobStore) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for p := range m.objects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
