package domain

// DefaultLogFile is the per-run log written in the working directory.
const DefaultLogFile = "log.txt"

// Settings is the effective configuration for a run.
type Settings struct {
	// Schema is the input/output segment ordering.
	Schema Schema

	// LogFile is the path of the per-run log, truncated on every run.
	LogFile string

	// IncludeHidden makes the walker descend into dot-files and dot-directories.
	IncludeHidden bool

	// HistoryEnabled records each run in the history store.
	HistoryEnabled bool
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Schema:         DefaultSchema(),
		LogFile:        DefaultLogFile,
		IncludeHidden:  false,
		HistoryEnabled: true,
	}
}
