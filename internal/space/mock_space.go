package space

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockSpace is an in-memory Space implementation for testing.
type MockSpace struct {
	mu    sync.RWMutex
	pages map[string]mockPage
	files map[string][]byte
	now   time.Time
}

type mockPage struct {
	record PageRecord
	source []byte
}

// NewMockSpace creates an empty in-memory space.
func NewMockSpace() *MockSpace {
	return &MockSpace{
		pages: make(map[string]mockPage),
		files: make(map[string][]byte),
		now:   time.Now(),
	}
}

// AddPage registers a page with explicit metadata and source.
func (m *MockSpace) AddPage(rec PageRecord, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[rec.Name] = mockPage{record: rec, source: []byte(source)}
}

// AddMarkdown registers a page whose metadata is parsed from the source's
// frontmatter, mirroring FSSpace behavior.
func (m *MockSpace) AddMarkdown(name, source string) {
	env := parsePageMeta([]byte(source))
	m.AddPage(PageRecord{Name: name, Tags: env.Tags, Share: env.Share}, source)
}

// AddFile registers an attachment.
func (m *MockSpace) AddFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
}

// RemovePage deletes a page, simulating sources disappearing mid-run.
func (m *MockSpace) RemovePage(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pages, name)
}

func (m *MockSpace) ListPages(ctx context.Context) ([]PageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.pages))
	for name := range m.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	records := make([]PageRecord, 0, len(names))
	for _, name := range names {
		records = append(records, m.pages[name].record)
	}
	return records, nil
}

func (m *MockSpace) ReadPage(ctx context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[name]
	if !ok {
		return nil, ErrNotFound{Name: name}
	}
	return append([]byte(nil), page.source...), nil
}

func (m *MockSpace) ListFiles(ctx context.Context) ([]FileMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for path := range m.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	files := make([]FileMeta, 0, len(paths))
	for _, path := range paths {
		files = append(files, FileMeta{
			Name:         path,
			Size:         int64(len(m.files[path])),
			ContentType:  ContentTypeFor(path),
			LastModified: m.now,
		})
	}
	return files, nil
}

func (m *MockSpace) ReadFile(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	if !ok {
		return nil, ErrNotFound{Name: path}
	}
	return append([]byte(nil), data...), nil
}
