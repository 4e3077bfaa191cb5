package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reshelve/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reshelve/internal/core/domain"
)

func seedRun(t *testing.T, store *memory.RunStore, id string) *domain.Run {
	t.Helper()
	run := &domain.Run{
		ID:              id,
		SourceRoot:      "/src",
		DestinationRoot: "/dst",
		Schema:          domain.DefaultSchema(),
		StartedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	run.Record(domain.FileResult{RelativePath: "a/b/2020/c", Outcome: domain.OutcomeCopied})
	run.Record(domain.FileResult{RelativePath: "loose", Outcome: domain.OutcomeIgnored})
	run.Record(domain.FileResult{RelativePath: "d/e/2021/f", Outcome: domain.OutcomeFailed, Error: "copy failed"})
	run.FinishedAt = run.StartedAt.Add(time.Second)
	require.NoError(t, store.SaveRun(context.Background(), run))
	return run
}

func TestHistoryService_List(t *testing.T) {
	store := memory.NewRunStore()
	seedRun(t, store, "first")
	seedRun(t, store, "second")
	seedRun(t, store, "third")
	service := NewHistoryService(store)

	runs, err := service.List(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "third", runs[0].ID)
	assert.Equal(t, "second", runs[1].ID)
}

func TestHistoryService_Get(t *testing.T) {
	store := memory.NewRunStore()
	seeded := seedRun(t, store, "run-1")
	service := NewHistoryService(store)

	t.Run("all outcomes", func(t *testing.T) {
		run, err := service.Get(context.Background(), "run-1", "")

		require.NoError(t, err)
		assert.Equal(t, seeded.Tally, run.Tally)
		assert.Len(t, run.Results, 3)
	})

	t.Run("filtered by outcome", func(t *testing.T) {
		run, err := service.Get(context.Background(), "run-1", domain.OutcomeFailed)

		require.NoError(t, err)
		require.Len(t, run.Results, 1)
		assert.Equal(t, "copy failed", run.Results[0].Error)
	})

	t.Run("unknown outcome", func(t *testing.T) {
		_, err := service.Get(context.Background(), "run-1", domain.Outcome("moved"))

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown run", func(t *testing.T) {
		_, err := service.Get(context.Background(), "missing", "")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestHistoryService_NoStore(t *testing.T) {
	service := NewHistoryService(nil)

	_, err := service.List(context.Background(), 0)
	assert.Error(t, err)

	_, err = service.Get(context.Background(), "x", "")
	assert.Error(t, err)
}
