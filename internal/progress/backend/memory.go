package backend

import "sync"

type MemoryBackend struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	val, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), val...), true, nil
}

func (m *MemoryBackend) Set(key string, value []byte) error {
	return m.Apply(Set(key, value))
}

func (m *MemoryBackend) Remove(key string) error {
	return m.Apply(Remove(key))
}

func (m *MemoryBackend) Apply(ops ...Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	applyOps(m.data, ops)
	return nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func applyOps(data map[string][]byte, ops []Op) {
	for _, op := range ops {
		switch op.Kind {
		case OpSet:
			data[op.Key] = append([]byte(nil), op.Value...)
		case OpRemove:
			delete(data, op.Key)
		}
	}
}
