package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu    sync.RWMutex
	order []string
	runs  map[string]domain.Run
	files map[string][]domain.FileResult
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs:  make(map[string]domain.Run),
		files: make(map[string][]domain.FileResult),
	}
}

// SaveRun stores a run together with its file results.
func (s *RunStore) SaveRun(_ context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; !exists {
		s.order = append(s.order, run.ID)
	}

	stored := *run
	stored.Schema = run.Schema.Clone()
	stored.Results = nil
	s.runs[run.ID] = stored
	s.files[run.ID] = slices.Clone(run.Results)
	return nil
}

// GetRun retrieves a run by ID, without file results.
func (s *RunStore) GetRun(_ context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns the most recently saved runs first.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Run, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, s.runs[s.order[i]])
	}
	return result, nil
}

// ListFiles returns the file results of a run in processing order.
func (s *RunStore) ListFiles(_ context.Context, runID string) ([]domain.FileResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.runs[runID]; !ok {
		return nil, domain.ErrNotFound
	}
	return slices.Clone(s.files[runID]), nil
}
