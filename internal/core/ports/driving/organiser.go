package driving

import (
	"context"

	"github.com/custodia-labs/reshelve/internal/core/domain"
)

// Organiser copies a source tree into a destination tree under the rebuilt paths.
type Organiser interface {
	// Organise processes every file under the source root.
	// Per-file failures are tallied, never returned.
	Organise(ctx context.Context, req OrganiseRequest) (*domain.Run, error)

	// ProcessFile handles a single source file with the same rules as Organise.
	ProcessFile(ctx context.Context, sourceRoot, destinationRoot, path string) domain.FileResult

	// Follow processes files reported by the change watcher until ctx is cancelled.
	Follow(ctx context.Context, req OrganiseRequest) error
}

// OrganiseRequest describes one run.
type OrganiseRequest struct {
	// SourceRoot is the directory to read from.
	SourceRoot string

	// DestinationRoot is the directory to copy into.
	DestinationRoot string

	// Progress, if set, is called after each file is handled.
	Progress func(domain.FileResult)
}
