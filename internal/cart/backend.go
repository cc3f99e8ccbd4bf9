package cart

import (
	"context"
	"sync"
)

// Area is one visitor's key/value storage. Values are opaque strings.
type Area interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Backend hands out storage areas by visitor id.
type Backend interface {
	Area(id string) Area
}

// Change describes a write to an area. Tab identifies the tab that made it
// and may be empty when the writer has no tab.
type Change struct {
	Area string `json:"area"`
	Key  string `json:"key"`
	Tab  string `json:"tab,omitempty"`
}

// Notifier is told about every write.
type Notifier interface {
	Publish(ctx context.Context, c Change) error
}

// MemoryBackend keeps areas in process memory. It is used for tests and
// single-instance deployments.
type MemoryBackend struct {
	mu    sync.RWMutex
	areas map[string]map[string]string
}

// NewMemoryBackend constructs an empty memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{areas: make(map[string]map[string]string)}
}

// Area implements Backend.
func (b *MemoryBackend) Area(id string) Area {
	return memoryArea{backend: b, id: id}
}

type memoryArea struct {
	backend *MemoryBackend
	id      string
}

func (a memoryArea) GetItem(_ context.Context, key string) (string, bool, error) {
	a.backend.mu.RLock()
	defer a.backend.mu.RUnlock()
	v, ok := a.backend.areas[a.id][key]
	return v, ok, nil
}

func (a memoryArea) SetItem(_ context.Context, key, value string) error {
	a.backend.mu.Lock()
	defer a.backend.mu.Unlock()
	values, ok := a.backend.areas[a.id]
	if !ok {
		values = make(map[string]string)
		a.backend.areas[a.id] = values
	}
	values[key] = value
	return nil
}

func (a memoryArea) RemoveItem(_ context.Context, key string) error {
	a.backend.mu.Lock()
	defer a.backend.mu.Unlock()
	delete(a.backend.areas[a.id], key)
	return nil
}
