package domain

// Outcome is what happened to one source file during a run.
type Outcome string

// Available outcomes.
const (
	// OutcomeCopied means the file was copied to its rebuilt destination.
	OutcomeCopied Outcome = "copied"

	// OutcomeIgnored means the relative path did not match the input schema.
	OutcomeIgnored Outcome = "ignored"

	// OutcomeSkipped means the destination already existed.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFailed means the copy raised an I/O error.
	OutcomeFailed Outcome = "failed"
)

// IsValid returns true if the outcome is recognised.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeCopied, OutcomeIgnored, OutcomeSkipped, OutcomeFailed:
		return true
	default:
		return false
	}
}

// Symbol returns the single progress character printed for this outcome.
func (o Outcome) Symbol() string {
	switch o {
	case OutcomeCopied:
		return "+"
	case OutcomeIgnored:
		return "!"
	case OutcomeSkipped:
		return "-"
	case OutcomeFailed:
		return "E"
	default:
		return "?"
	}
}

// String returns the string representation.
func (o Outcome) String() string {
	return string(o)
}

// FileResult records how one source file was handled.
type FileResult struct {
	// SourcePath is the absolute path of the source file.
	SourcePath string

	// RelativePath is SourcePath relative to the source root.
	RelativePath string

	// DestinationPath is the absolute destination. Empty when ignored.
	DestinationPath string

	// Outcome is what happened to the file.
	Outcome Outcome

	// Error holds the failure detail for OutcomeFailed.
	Error string
}

// Tally counts outcomes over a run.
type Tally struct {
	Seen    int
	Copied  int
	Ignored int
	Skipped int
	Failed  int
}

// Add counts one outcome.
func (t *Tally) Add(o Outcome) {
	t.Seen++
	switch o {
	case OutcomeCopied:
		t.Copied++
	case OutcomeIgnored:
		t.Ignored++
	case OutcomeSkipped:
		t.Skipped++
	case OutcomeFailed:
		t.Failed++
	}
}
