package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/ports/driven"
	"github.com/custodia-labs/reshelve/internal/core/ports/driving"
	"github.com/custodia-labs/reshelve/internal/logger"
)

// Ensure Organiser implements the interface.
var _ driving.Organiser = (*Organiser)(nil)

// defaultSettle is how long a watched file must stay quiet before it is copied.
const defaultSettle = 500 * time.Millisecond

// Organiser copies each file of a source tree to the path rebuilt by its Transformer.
// Files are handled strictly one after another.
type Organiser struct {
	transformer *Transformer
	walker      driven.FileWalker
	copier      driven.FileCopier
	runStore    driven.RunStore
	watcher     driven.ChangeWatcher

	newID  func() string
	now    func() time.Time
	settle time.Duration
}

// OrganiserOption customises an Organiser.
type OrganiserOption func(*Organiser)

// WithRunStore records every run in store. A nil store disables history.
func WithRunStore(store driven.RunStore) OrganiserOption {
	return func(o *Organiser) { o.runStore = store }
}

// WithChangeWatcher enables Follow.
func WithChangeWatcher(watcher driven.ChangeWatcher) OrganiserOption {
	return func(o *Organiser) { o.watcher = watcher }
}

// WithIDGenerator sets the run ID generator.
func WithIDGenerator(newID func() string) OrganiserOption {
	return func(o *Organiser) { o.newID = newID }
}

// WithClock sets the time source used for run timestamps.
func WithClock(now func() time.Time) OrganiserOption {
	return func(o *Organiser) { o.now = now }
}

// WithSettleDelay sets the quiet period Follow waits for before copying.
func WithSettleDelay(d time.Duration) OrganiserOption {
	return func(o *Organiser) { o.settle = d }
}

// NewOrganiser creates a new organiser.
// The run store and change watcher are optional and set through options.
func NewOrganiser(
	transformer *Transformer,
	walker driven.FileWalker,
	copier driven.FileCopier,
	opts ...OrganiserOption,
) *Organiser {
	o := &Organiser{
		transformer: transformer,
		walker:      walker,
		copier:      copier,
		now:         time.Now,
		settle:      defaultSettle,
	}
	o.newID = func() string {
		return o.now().UTC().Format("20060102T150405.000000000Z")
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Organise walks the source root and handles every file found.
// Only a failure to enumerate the source tree is returned as an error;
// per-file problems are recorded in the run's tally.
func (o *Organiser) Organise(ctx context.Context, req driving.OrganiseRequest) (*domain.Run, error) {
	src, dst, err := absRoots(req)
	if err != nil {
		return nil, err
	}

	files, err := o.walker.ListFiles(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	run := o.newRun(src, dst)

	logger.Section("Organise")
	logger.Debug("Found %d files under %s", len(files), src)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			o.finish(ctx, run)
			return run, fmt.Errorf("run interrupted: %w", err)
		}

		result := o.ProcessFile(ctx, src, dst, path)
		run.Record(result)
		if req.Progress != nil {
			req.Progress(result)
		}
	}

	o.finish(ctx, run)
	return run, nil
}

// ProcessFile matches one file against the schema and copies it unless
// the destination already exists.
func (o *Organiser) ProcessFile(_ context.Context, sourceRoot, destinationRoot, path string) domain.FileResult {
	result := domain.FileResult{SourcePath: path}

	rel, err := filepath.Rel(sourceRoot, path)
	if err != nil {
		logger.Warn("Ignore file: %s doesn't match the pattern", path)
		result.Outcome = domain.OutcomeIgnored
		return result
	}
	result.RelativePath = filepath.ToSlash(rel)

	target, ok := o.transformer.Transform(rel)
	if !ok {
		logger.Warn("Ignore file: %s doesn't match the pattern", path)
		result.Outcome = domain.OutcomeIgnored
		return result
	}

	destination := filepath.Join(destinationRoot, filepath.FromSlash(target))
	result.DestinationPath = destination

	if o.copier.Exists(destination) {
		logger.Warn("Skip file: %s %v", destination, domain.ErrAlreadyExists)
		result.Outcome = domain.OutcomeSkipped
		return result
	}

	logger.Info("Copy %s to %s", path, destination)
	if err := o.copy(path, destination); err != nil {
		logger.Error("Error copying %s: %v", path, err)
		result.Outcome = domain.OutcomeFailed
		result.Error = err.Error()
		return result
	}

	result.Outcome = domain.OutcomeCopied
	return result
}

// Follow watches the source root and handles files as they settle.
// Each batch of settled files is recorded as its own run.
// Returns nil when ctx is cancelled.
func (o *Organiser) Follow(ctx context.Context, req driving.OrganiseRequest) error {
	if o.watcher == nil {
		return errors.New("change watcher not configured")
	}

	src, dst, err := absRoots(req)
	if err != nil {
		return err
	}

	changes, err := o.watcher.Watch(ctx, src)
	if err != nil {
		return fmt.Errorf("watch %s: %w", src, err)
	}

	logger.Section("Follow")
	logger.Debug("Watching %s", src)

	pending := make(map[string]struct{})
	timer := time.NewTimer(o.settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			pending[path] = struct{}{}
			timer.Reset(o.settle)
		case <-timer.C:
			o.flush(ctx, src, dst, pending, req.Progress)
			clear(pending)
		}
	}
}

// flush handles the settled paths in lexical order as a single run.
func (o *Organiser) flush(
	ctx context.Context,
	src, dst string,
	pending map[string]struct{},
	progress func(domain.FileResult),
) {
	paths := make([]string, 0, len(pending))
	for path := range pending {
		// Vanished before it settled.
		if !o.copier.Exists(path) {
			logger.Debug("Dropping %s: no longer present", path)
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	run := o.newRun(src, dst)
	for _, path := range paths {
		result := o.ProcessFile(ctx, src, dst, path)
		run.Record(result)
		if progress != nil {
			progress(result)
		}
	}
	o.finish(ctx, run)
}

func (o *Organiser) copy(src, dst string) error {
	if err := o.copier.EnsureDir(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCopyFailed, err)
	}
	if err := o.copier.Copy(src, dst); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCopyFailed, err)
	}
	return nil
}

func (o *Organiser) newRun(src, dst string) *domain.Run {
	return &domain.Run{
		ID:              o.newID(),
		SourceRoot:      src,
		DestinationRoot: dst,
		Schema:          o.transformer.Schema(),
		StartedAt:       o.now(),
	}
}

// finish stamps the run and records it. History failures never fail the run.
func (o *Organiser) finish(ctx context.Context, run *domain.Run) {
	run.FinishedAt = o.now()

	logger.Debug("Run %s: %d seen, %d copied, %d ignored, %d skipped, %d failed",
		run.ID, run.Tally.Seen, run.Tally.Copied, run.Tally.Ignored, run.Tally.Skipped, run.Tally.Failed)

	if o.runStore == nil {
		return
	}
	// Recording must outlive an interrupted run.
	if err := o.runStore.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("Could not record run %s: %v", run.ID, err)
	}
}

func absRoots(req driving.OrganiseRequest) (string, string, error) {
	src, err := filepath.Abs(req.SourceRoot)
	if err != nil {
		return "", "", fmt.Errorf("resolve source root: %w", err)
	}
	dst, err := filepath.Abs(req.DestinationRoot)
	if err != nil {
		return "", "", fmt.Errorf("resolve destination root: %w", err)
	}
	return src, dst, nil
}
