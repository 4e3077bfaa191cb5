package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_Symbol(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		expected string
	}{
		{OutcomeCopied, "+"},
		{OutcomeIgnored, "!"},
		{OutcomeSkipped, "-"},
		{OutcomeFailed, "E"},
		{Outcome("moved"), "?"},
	}

	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.outcome.Symbol())
		})
	}
}

func TestOutcome_IsValid(t *testing.T) {
	assert.True(t, OutcomeCopied.IsValid())
	assert.True(t, OutcomeFailed.IsValid())
	assert.False(t, Outcome("").IsValid())
	assert.False(t, Outcome("moved").IsValid())
}

func TestTally_Add(t *testing.T) {
	var tally Tally
	for _, o := range []Outcome{OutcomeCopied, OutcomeCopied, OutcomeIgnored, OutcomeSkipped, OutcomeFailed} {
		tally.Add(o)
	}

	assert.Equal(t, Tally{Seen: 5, Copied: 2, Ignored: 1, Skipped: 1, Failed: 1}, tally)
}

func TestRun_Record(t *testing.T) {
	run := &Run{ID: "r"}

	run.Record(FileResult{RelativePath: "a/b", Outcome: OutcomeCopied})
	run.Record(FileResult{RelativePath: "c", Outcome: OutcomeIgnored})

	assert.Len(t, run.Results, 2)
	assert.Equal(t, Tally{Seen: 2, Copied: 1, Ignored: 1}, run.Tally)
}

func TestRun_Duration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	run := &Run{StartedAt: start}

	assert.Zero(t, run.Duration())

	run.FinishedAt = start.Add(3 * time.Second)
	assert.Equal(t, 3*time.Second, run.Duration())
}
