package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type memoryItem struct {
	Data      []byte
	UpdatedAt time.Time
}

// MemoryKV keeps everything in process memory. It backs tests and the
// STORE_PATH=:memory: mode.
type MemoryKV struct {
	mu     sync.RWMutex
	items  map[string]memoryItem
	logger *zap.Logger
	writes int
}

func NewMemoryKV(logger *zap.Logger) *MemoryKV {
	return &MemoryKV{
		items:  make(map[string]memoryItem),
		logger: logger,
	}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	item, exists := m.items[key]
	m.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}
	return append([]byte(nil), item.Data...), true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = memoryItem{
		Data:      append([]byte(nil), value...),
		UpdatedAt: time.Now(),
	}
	m.writes++

	m.logger.Debug("Value stored",
		zap.String("key", key),
		zap.Int("size", len(value)))
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}

func (m *MemoryKV) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	size := 0
	for _, item := range m.items {
		size += len(item.Data)
	}
	return map[string]interface{}{
		"items":  len(m.items),
		"bytes":  size,
		"writes": m.writes,
	}
}
