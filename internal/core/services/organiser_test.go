package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reshelve/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/reshelve/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/ports/driving"
)

// writeFile creates root/rel with content, creating parent directories.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func newTestOrganiser(t *testing.T, schema domain.Schema, opts ...OrganiserOption) *Organiser {
	t.Helper()
	transformer, err := NewTransformer(schema)
	require.NoError(t, err)
	return NewOrganiser(transformer, filesystem.NewWalker(false), filesystem.NewCopier(), opts...)
}

var swapSchema = domain.Schema{Input: []string{"a", "b"}, Output: []string{"b", "a"}}

// failingCopier reports every destination as missing and fails every copy.
type failingCopier struct {
	err error
}

func (c *failingCopier) Exists(string) bool     { return false }
func (c *failingCopier) EnsureDir(string) error { return nil }
func (c *failingCopier) Copy(string, string) error {
	return c.err
}

type failingWalker struct{}

func (failingWalker) ListFiles(context.Context, string) ([]string, error) {
	return nil, errors.New("root path error: directory does not exist")
}

// failingRunStore wraps the memory store and fails SaveRun.
type failingRunStore struct {
	*memory.RunStore
}

func (failingRunStore) SaveRun(context.Context, *domain.Run) error {
	return errors.New("disk full")
}

// fakeWatcher hands out a channel the test writes to.
type fakeWatcher struct {
	changes chan string
	err     error
}

func (w *fakeWatcher) Watch(context.Context, string) (<-chan string, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.changes, nil
}

func (w *fakeWatcher) Close() error { return nil }

func TestOrganiser_Organise_SwapsSegments(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "x/y", "hello")

	organiser := newTestOrganiser(t, swapSchema)

	var symbols []string
	run, err := organiser.Organise(context.Background(), driving.OrganiseRequest{
		SourceRoot:      src,
		DestinationRoot: dst,
		Progress:        func(r domain.FileResult) { symbols = append(symbols, r.Outcome.Symbol()) },
	})

	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Seen: 1, Copied: 1}, run.Tally)
	assert.Equal(t, []string{"+"}, symbols)
	assert.Equal(t, "hello", readFile(t, dst, "y/x"))
	assert.Equal(t, "hello", readFile(t, src, "x/y"), "source must be untouched")

	require.Len(t, run.Results, 1)
	assert.Equal(t, "x/y", run.Results[0].RelativePath)
	assert.Equal(t, filepath.Join(dst, "y", "x"), run.Results[0].DestinationPath)
}

func TestOrganiser_Organise_IgnoresNonMatching(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "p/q", "two components")
	writeFile(t, src, "p/q2/r", "three components")

	organiser := newTestOrganiser(t, domain.Schema{Input: []string{"a", "b", "c"}, Output: []string{"c", "b", "a"}})

	run, err := organiser.Organise(context.Background(), driving.OrganiseRequest{SourceRoot: src, DestinationRoot: dst})

	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Seen: 2, Copied: 1, Ignored: 1}, run.Tally)
	assert.NoFileExists(t, filepath.Join(dst, "q", "p"))
	assert.Equal(t, "three components", readFile(t, dst, "r/q2/p"))
}

func TestOrganiser_Organise_SkipsExistingDestination(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "x/y", "new content")
	writeFile(t, dst, "y/x", "original")

	organiser := newTestOrganiser(t, swapSchema)

	run, err := organiser.Organise(context.Background(), driving.OrganiseRequest{SourceRoot: src, DestinationRoot: dst})

	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Seen: 1, Skipped: 1}, run.Tally)
	assert.Equal(t, "original", readFile(t, dst, "y/x"))
	assert.Equal(t, domain.OutcomeSkipped, run.Results[0].Outcome)
}

func TestOrganiser_Organise_DanglingDestinationLinkIsSkipped(t *testing.T) {
	src, dst, outside := t.TempDir(), t.TempDir(), t.TempDir()
	writeFile(t, src, "x/y", "hello")

	escape := filepath.Join(outside, "outside.txt")
	require.NoError(t, os.MkdirAll(filepath.Join(dst, "y"), 0755))
	require.NoError(t, os.Symlink(escape, filepath.Join(dst, "y", "x")))

	organiser := newTestOrganiser(t, swapSchema)

	run, err := organiser.Organise(context.Background(), driving.OrganiseRequest{SourceRoot: src, DestinationRoot: dst})

	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Seen: 1, Skipped: 1}, run.Tally)
	assert.NoFileExists(t, escape)
}

func TestOrganiser_Organise_CopyErrorContinues(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "a/blocked", "one")
	writeFile(t, src, "b/open", "two")
	// A regular file where a destination directory must go.
	writeFile(t, dst, "blocked", "not a directory")

	organiser := newTestOrganiser(t, swapSchema)

	run, err := organiser.Organise(context.Background(), driving.OrganiseRequest{SourceRoot: src, DestinationRoot: dst})

	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Seen: 2, Copied: 1, Failed: 1}, run.Tally)
	assert.Equal(t, "two", readFile(t, dst, "open/b"))

	require.Len(t, run.Results, 2)
	assert.Equal(t, domain.OutcomeFailed, run.Results[0].Outcome)
	assert.NotEmpty(t, run.Results[0].Error)
}

func TestOrganiser_Organise_InvalidSchemaTouchesNothing(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "x/y", "hello")

	transformer, err := NewTransformer(domain.Schema{Input: []string{"a", "b"}, Output: []string{"b", "z"}})

	require.Error(t, err)
	assert.Nil(t, transformer)
	assert.Equal(t, "'z' doesn't exist in input schema", err.Error())

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOrganiser_Organise_Idempotent(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "x/y", "1")
	writeFile(t, src, "x/z", "2")
	writeFile(t, src, "lonely", "3")

	organiser := newTestOrganiser(t, swapSchema)
	req := driving.OrganiseRequest{SourceRoot: src, DestinationRoot: dst}

	first, err := organiser.Organise(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Seen: 3, Copied: 2, Ignored: 1}, first.Tally)

	second, err := organiser.Organise(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Seen: 3, Skipped: 2, Ignored: 1}, second.Tally)
}

func TestOrganiser_Organise_UnreadableSubdirectoryContinues(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any directory")
	}

	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "x/y", "hello")
	writeFile(t, src, "locked/file", "hidden away")

	locked := filepath.Join(src, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	organiser := newTestOrganiser(t, swapSchema)

	run, err := organiser.Organise(context.Background(), driving.OrganiseRequest{SourceRoot: src, DestinationRoot: dst})

	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, domain.Tally{Seen: 1, Copied: 1}, run.Tally)
	assert.Equal(t, "hello", readFile(t, dst, "y/x"))
}

func TestOrganiser_Organise_ResultsInLexicalOrder(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "b/2", "")
	writeFile(t, src, "a/1", "")
	writeFile(t, src, "c/3", "")

	organiser := newTestOrganiser(t, swapSchema)

	run, err := organiser.Organise(context.Background(), driving.OrganiseRequest{SourceRoot: src, DestinationRoot: dst})

	require.NoError(t, err)
	var rels []string
	for _, r := range run.Results {
		rels = append(rels, r.RelativePath)
	}
	assert.Equal(t, []string{"a/1", "b/2", "c/3"}, rels)
}

func TestOrganiser_Organise_CopierFailureWrapped(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "x/y", "hello")

	transformer, err := NewTransformer(swapSchema)
	require.NoError(t, err)
	organiser := NewOrganiser(transformer, filesystem.NewWalker(false), &failingCopier{err: domain.ErrSameFile})

	result := organiser.ProcessFile(context.Background(), src, dst, filepath.Join(src, "x", "y"))

	assert.Equal(t, domain.OutcomeFailed, result.Outcome)
	assert.Contains(t, result.Error, domain.ErrCopyFailed.Error())
	assert.Contains(t, result.Error, domain.ErrSameFile.Error())
}

func TestOrganiser_Organise_WalkerError(t *testing.T) {
	transformer, err := NewTransformer(swapSchema)
	require.NoError(t, err)
	organiser := NewOrganiser(transformer, failingWalker{}, filesystem.NewCopier())

	run, err := organiser.Organise(context.Background(), driving.OrganiseRequest{SourceRoot: "missing", DestinationRoot: "dst"})

	assert.Nil(t, run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list files")
}

func TestOrganiser_Organise_MissingSourceRoot(t *testing.T) {
	organiser := newTestOrganiser(t, swapSchema)

	_, err := organiser.Organise(context.Background(), driving.OrganiseRequest{
		SourceRoot:      filepath.Join(t.TempDir(), "nope"),
		DestinationRoot: t.TempDir(),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory does not exist")
}

func TestOrganiser_Organise_Cancelled(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "a/1", "first")
	writeFile(t, src, "b/2", "second")

	store := memory.NewRunStore()
	organiser := newTestOrganiser(t, swapSchema, WithRunStore(store))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop after the first file is handled.
	run, err := organiser.Organise(ctx, driving.OrganiseRequest{
		SourceRoot:      src,
		DestinationRoot: dst,
		Progress:        func(domain.FileResult) { cancel() },
	})

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, run)
	assert.Equal(t, domain.Tally{Seen: 1, Copied: 1}, run.Tally)
	assert.FileExists(t, filepath.Join(dst, "1", "a"))
	assert.NoFileExists(t, filepath.Join(dst, "2", "b"))

	// The interrupted run is still recorded.
	_, err = store.GetRun(context.Background(), run.ID)
	assert.NoError(t, err)
}

func TestOrganiser_Organise_RecordsHistory(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "x/y", "hello")
	writeFile(t, src, "nomatch", "")

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewRunStore()
	organiser := newTestOrganiser(t, swapSchema,
		WithRunStore(store),
		WithIDGenerator(func() string { return "run-1" }),
		WithClock(func() time.Time { return start }),
	)

	run, err := organiser.Organise(context.Background(), driving.OrganiseRequest{SourceRoot: src, DestinationRoot: dst})
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)

	stored, err := store.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.Tally, stored.Tally)
	assert.Equal(t, swapSchema, stored.Schema)
	assert.Equal(t, start, stored.StartedAt)

	files, err := store.ListFiles(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestOrganiser_Organise_HistoryFailureIsNotFatal(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, src, "x/y", "hello")

	organiser := newTestOrganiser(t, swapSchema, WithRunStore(failingRunStore{memory.NewRunStore()}))

	run, err := organiser.Organise(context.Background(), driving.OrganiseRequest{SourceRoot: src, DestinationRoot: dst})

	require.NoError(t, err)
	assert.Equal(t, 1, run.Tally.Copied)
}

func TestOrganiser_Follow_RequiresWatcher(t *testing.T) {
	organiser := newTestOrganiser(t, swapSchema)

	err := organiser.Follow(context.Background(), driving.OrganiseRequest{SourceRoot: t.TempDir(), DestinationRoot: t.TempDir()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "change watcher not configured")
}

func TestOrganiser_Follow_WatchError(t *testing.T) {
	watcher := &fakeWatcher{err: domain.ErrWatcherClosed}
	organiser := newTestOrganiser(t, swapSchema, WithChangeWatcher(watcher))

	err := organiser.Follow(context.Background(), driving.OrganiseRequest{SourceRoot: t.TempDir(), DestinationRoot: t.TempDir()})

	assert.ErrorIs(t, err, domain.ErrWatcherClosed)
}

func TestOrganiser_Follow_CopiesSettledFiles(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	watcher := &fakeWatcher{changes: make(chan string, 4)}
	store := memory.NewRunStore()
	organiser := newTestOrganiser(t, swapSchema,
		WithChangeWatcher(watcher),
		WithRunStore(store),
		WithSettleDelay(10*time.Millisecond),
	)

	var mu sync.Mutex
	var results []domain.FileResult
	req := driving.OrganiseRequest{
		SourceRoot:      src,
		DestinationRoot: dst,
		Progress: func(r domain.FileResult) {
			mu.Lock()
			defer mu.Unlock()
			results = append(results, r)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- organiser.Follow(ctx, req) }()

	path := writeFile(t, src, "x/y", "watched")
	watcher.changes <- path
	watcher.changes <- path
	watcher.changes <- filepath.Join(src, "x", "gone")

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dst, "y", "x"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 1)
	assert.Equal(t, domain.OutcomeCopied, results[0].Outcome)
	assert.Equal(t, "watched", readFile(t, dst, "y/x"))

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Tally.Copied)
}

func TestOrganiser_Follow_StopsWhenChannelCloses(t *testing.T) {
	watcher := &fakeWatcher{changes: make(chan string)}
	organiser := newTestOrganiser(t, swapSchema, WithChangeWatcher(watcher))
	close(watcher.changes)

	err := organiser.Follow(context.Background(), driving.OrganiseRequest{SourceRoot: t.TempDir(), DestinationRoot: t.TempDir()})

	assert.NoError(t, err)
}
