package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/reshelve/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/ports/driving"
	"github.com/custodia-labs/reshelve/internal/core/services"
	"github.com/custodia-labs/reshelve/internal/logger"
)

const configErrorHint = "Configuration error: please check the path mapping and try again"

// Run flags.
var (
	logFile       string
	includeHidden bool
	noHistory     bool
	watch         bool
)

func init() {
	f := rootCmd.Flags()
	f.StringVar(&logFile, "log-file", domain.DefaultLogFile, "Per-run log file, overwritten on every run")
	f.BoolVar(&includeHidden, "include-hidden", false, "Also process dot-files and dot-directories")
	f.BoolVar(&noHistory, "no-history", false, "Do not record this run in the history database")
	f.BoolVarP(&watch, "watch", "w", false, "Keep running and copy new files as they appear")
}

func runOrganise(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	transformer, err := services.NewTransformer(settings.Schema)
	if err != nil {
		return fmt.Errorf("%w\n%s", err, configErrorHint)
	}

	logCloser, err := logger.OpenFile(settings.LogFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	opts := []services.OrganiserOption{services.WithIDGenerator(uuid.NewString)}

	if settings.HistoryEnabled {
		runStore, closer, err := openRunStore(dataDir)
		if err != nil {
			// Copying goes ahead without history.
			logger.Warn("Run history disabled: %v", err)
			cmd.PrintErrf("Warning: run history disabled: %v\n", err)
		} else {
			defer closer.Close()
			opts = append(opts, services.WithRunStore(runStore))
		}
	}

	if watch {
		watcher := filesystem.NewWatcher(settings.IncludeHidden)
		defer watcher.Close()
		opts = append(opts, services.WithChangeWatcher(watcher))
	}

	organiser := services.NewOrganiser(
		transformer,
		filesystem.NewWalker(settings.IncludeHidden),
		filesystem.NewCopier(),
		opts...,
	)

	out := cmd.OutOrStdout()
	req := driving.OrganiseRequest{
		SourceRoot:      args[0],
		DestinationRoot: args[1],
		Progress: func(r domain.FileResult) {
			fmt.Fprint(out, r.Outcome.Symbol())
		},
	}

	ctx := cmd.Context()
	run, err := organiser.Organise(ctx, req)
	if run != nil {
		printSummary(out, run, settings.LogFile)
	}
	if err != nil {
		return fmt.Errorf("organise failed: %w", err)
	}

	if !watch {
		return nil
	}

	fmt.Fprintf(out, "Watching %s for new files (Ctrl+C to stop)...\n", run.SourceRoot)
	if err := organiser.Follow(ctx, req); err != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("watch failed: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}

// printSummary writes the four tally lines and the log file pointer.
func printSummary(w io.Writer, run *domain.Run, logPath string) {
	st := newSummaryStyles(w)
	t := run.Tally

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.copied.Render(fmt.Sprintf("+ %d / %d copied", t.Copied, t.Seen)))
	fmt.Fprintln(w, st.ignored.Render(fmt.Sprintf("! %d ignored (not matching)", t.Ignored)))
	fmt.Fprintln(w, st.skipped.Render(fmt.Sprintf("- %d skipped (already exists)", t.Skipped)))
	fmt.Fprintln(w, st.failed.Render(fmt.Sprintf("E %d failed (copy error)", t.Failed)))
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.muted.Render(fmt.Sprintf("See %s for more information", logPath)))
	fmt.Fprintln(w)
}
