package driven

import (
	"context"

	"github.com/custodia-labs/reshelve/internal/core/domain"
)

// RunStore persists run history.
type RunStore interface {
	// SaveRun stores a run together with its file results.
	SaveRun(ctx context.Context, run *domain.Run) error

	// GetRun retrieves a run by ID, without file results.
	// Returns domain.ErrNotFound if the run does not exist.
	GetRun(ctx context.Context, id string) (*domain.Run, error)

	// ListRuns returns the most recent runs first, at most limit entries.
	// A limit of zero or less returns every run.
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)

	// ListFiles returns the file results of a run in processing order.
	ListFiles(ctx context.Context, runID string) ([]domain.FileResult, error)
}
