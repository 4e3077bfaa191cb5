package domain

import "time"

// Run is one pass of the organiser over a source tree.
type Run struct {
	// ID is the unique identifier for the run (UUID).
	ID string

	// SourceRoot is the absolute source directory.
	SourceRoot string

	// DestinationRoot is the absolute destination directory.
	DestinationRoot string

	// Schema is the schema the run was executed with.
	Schema Schema

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the last file was handled.
	FinishedAt time.Time

	// Tally holds the outcome counts.
	Tally Tally

	// Results lists every file handled, in processing order.
	// History listings leave this empty.
	Results []FileResult
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Record appends a result and counts its outcome.
func (r *Run) Record(result FileResult) {
	r.Results = append(r.Results, result)
	r.Tally.Add(result.Outcome)
}
