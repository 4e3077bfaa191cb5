package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/services"
)

var (
	historyLimit   int
	historyOutcome string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs",
	Long: `List the runs recorded in the history database, most recent first.

Use "reshelve history show <run-id>" to see what happened to each file.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the file results of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum number of runs to list (0 for all)")
	historyShowCmd.Flags().StringVar(&historyOutcome, "outcome", "",
		"Only show files with this outcome (copied, ignored, skipped, failed)")

	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*services.HistoryService, func(), error) {
	runStore, closer, err := openRunStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	return services.NewHistoryService(runStore), func() { _ = closer.Close() }, nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	history, done, err := openHistory()
	if err != nil {
		return err
	}
	defer done()

	runs, err := history.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	cmd.Printf("Runs (%d):\n\n", len(runs))
	for i := range runs {
		run := &runs[i]
		cmd.Printf("  %s\n", run.ID)
		cmd.Printf("    Started:  %s (%s)\n", run.StartedAt.Local().Format(time.DateTime), run.Duration().Round(time.Millisecond))
		cmd.Printf("    From:     %s\n", run.SourceRoot)
		cmd.Printf("    To:       %s\n", run.DestinationRoot)
		cmd.Printf("    Result:   %s\n", formatTally(run.Tally))
		cmd.Println()
	}

	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	history, done, err := openHistory()
	if err != nil {
		return err
	}
	defer done()

	run, err := history.Get(cmd.Context(), args[0], domain.Outcome(historyOutcome))
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("run not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	cmd.Printf("Run %s\n", run.ID)
	cmd.Printf("  Started: %s\n", run.StartedAt.Local().Format(time.DateTime))
	cmd.Printf("  From:    %s\n", run.SourceRoot)
	cmd.Printf("  To:      %s\n", run.DestinationRoot)
	cmd.Printf("  Schema:  %s -> %s\n", formatNames(run.Schema.Input), formatNames(run.Schema.Output))
	cmd.Printf("  Result:  %s\n", formatTally(run.Tally))
	cmd.Println()

	if len(run.Results) == 0 {
		cmd.Println("No matching files.")
		return nil
	}

	for _, r := range run.Results {
		switch {
		case r.Error != "":
			cmd.Printf("%s %s: %s\n", r.Outcome.Symbol(), r.RelativePath, r.Error)
		case r.DestinationPath != "":
			cmd.Printf("%s %s -> %s\n", r.Outcome.Symbol(), r.RelativePath, r.DestinationPath)
		default:
			cmd.Printf("%s %s\n", r.Outcome.Symbol(), r.RelativePath)
		}
	}

	return nil
}

func formatTally(t domain.Tally) string {
	return fmt.Sprintf("%d/%d copied, %d ignored, %d skipped, %d failed",
		t.Copied, t.Seen, t.Ignored, t.Skipped, t.Failed)
}
