package cache

import (
	"sync"
	"time"
)

// MockCache is a map-backed Cache without expiry, for tests.
type MockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	hits   uint64
	misses uint64
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, found := m.data[key]
	if found {
		m.hits++
	} else {
		m.misses++
	}
	return val, found
}

func (m *MockCache) Set(key string, value []byte, _ time.Duration) {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
}

func (m *MockCache) Delete(key string) {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	m.data = make(map[string][]byte)
	m.mu.Unlock()
}

func (m *MockCache) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	var size int64
	for _, v := range m.data {
		size += int64(len(v))
	}
	return Stats{Hits: m.hits, Misses: m.misses, Size: size, Items: int64(len(m.data))}
}
