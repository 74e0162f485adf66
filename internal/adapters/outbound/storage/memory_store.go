package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/complykit/complykit/internal/domain"
)

// MemoryStore keeps scan results in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[domain.Identifier][]domain.ScanResult
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{results: make(map[domain.Identifier][]domain.ScanResult)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Read(ctx context.Context, id domain.Identifier) (domain.ScanResultContainer, error) {
	if err := ctx.Err(); err != nil {
		return domain.ScanResultContainer{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ScanResultContainer{ID: id, Results: slices.Clone(s.results[id])}, nil
}

func (s *MemoryStore) Add(ctx context.Context, id domain.Identifier, result domain.ScanResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[id] = append(s.results[id], result)
	return nil
}
