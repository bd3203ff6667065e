package session

import "sync"

// MemoryStore はプロセス内に属性を保持する Store です。
type MemoryStore struct {
	mu      sync.Mutex
	pending map[string]string
	saved   map[string]string
	saves   int
}

// NewMemoryStore は空の MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pending: make(map[string]string),
		saved:   make(map[string]string),
	}
}

func (m *MemoryStore) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending[key]
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[key] = value
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, key)
}

func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = make(map[string]string)
}

func (m *MemoryStore) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = make(map[string]string, len(m.pending))
	for k, v := range m.pending {
		m.saved[k] = v
	}
	m.saves++
	return nil
}

// Persisted は最後に Save された属性を返します。
func (m *MemoryStore) Persisted(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[key]
}

// Saves は Save が呼ばれた回数です。
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
