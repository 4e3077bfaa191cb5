package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/ports/driven"
	"github.com/custodia-labs/reshelve/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads past runs from the run store.
type HistoryService struct {
	runStore driven.RunStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(runStore driven.RunStore) *HistoryService {
	return &HistoryService{runStore: runStore}
}

// List returns the most recent runs first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.Run, error) {
	if s.runStore == nil {
		return nil, errors.New("run store not configured")
	}

	runs, err := s.runStore.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its file results.
// A non-empty outcome keeps only the results with that outcome.
func (s *HistoryService) Get(ctx context.Context, id string, outcome domain.Outcome) (*domain.Run, error) {
	if s.runStore == nil {
		return nil, errors.New("run store not configured")
	}
	if outcome != "" && !outcome.IsValid() {
		return nil, fmt.Errorf("%w: unknown outcome %q", domain.ErrInvalidInput, outcome)
	}

	run, err := s.runStore.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	results, err := s.runStore.ListFiles(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	for _, r := range results {
		if outcome == "" || r.Outcome == outcome {
			run.Results = append(run.Results, r)
		}
	}

	return run, nil
}
