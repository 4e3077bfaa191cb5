package driving

import (
	"context"

	"github.com/custodia-labs/reshelve/internal/core/domain"
)

// HistoryService exposes past runs.
type HistoryService interface {
	// List returns the most recent runs first.
	List(ctx context.Context, limit int) ([]domain.Run, error)

	// Get returns one run with its file results, optionally filtered by outcome.
	// An empty outcome returns every result.
	Get(ctx context.Context, id string, outcome domain.Outcome) (*domain.Run, error)
}
