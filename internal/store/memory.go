package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/snipgo/snip/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
// Used for development without a database and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	mappings map[shortener.Code]*shortener.Mapping
}

// NewMemoryStore creates a new in-memory mapping store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mappings: make(map[shortener.Code]*shortener.Mapping),
	}
}

func (m *MemoryStore) Create(_ context.Context, mapping *shortener.Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Deleted rows keep their code reserved, so the existence check covers them too.
	if _, exists := m.mappings[mapping.Code]; exists {
		return shortener.ErrDuplicateCode
	}

	clone := *mapping
	m.mappings[mapping.Code] = &clone

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mapping, ok := m.mappings[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	clone := *mapping

	return &clone, nil
}

func (m *MemoryStore) IncrementClicks(_ context.Context, code shortener.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, ok := m.mappings[code]
	if !ok {
		return shortener.ErrNotFound
	}

	mapping.ClickCount++

	return nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, owner shortener.OwnerID) ([]*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*shortener.Mapping, 0)

	for _, mapping := range m.mappings {
		if mapping.Owner != owner || mapping.Deleted() {
			continue
		}

		clone := *mapping
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (m *MemoryStore) Delete(_ context.Context, code shortener.Code, owner shortener.OwnerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, ok := m.mappings[code]
	if !ok || mapping.Owner != owner || mapping.Deleted() {
		return shortener.ErrNotFound
	}

	now := time.Now()
	mapping.DeletedAt = &now

	return nil
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
