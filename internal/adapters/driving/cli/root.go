// Package cli implements the reshelve command line on top of cobra.
//
// The root command performs a run: reshelve <source_folder> <destination_folder>.
// Subcommands expose the schema tooling, the configuration file and the run history.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reshelve/internal/adapters/driven/config/file"
	"github.com/custodia-labs/reshelve/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/ports/driven"
	"github.com/custodia-labs/reshelve/internal/core/services"
	"github.com/custodia-labs/reshelve/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Persistent flags.
var (
	configDir    string
	dataDir      string
	verbose      bool
	inputSchema  string
	outputSchema string
)

// Store factories. Tests swap these for in-memory stores.
var (
	openConfigStore = func(dir string) (driven.ConfigStore, error) {
		return file.NewConfigStore(dir)
	}

	openRunStore = func(dir string) (driven.RunStore, io.Closer, error) {
		store, err := sqlite.NewStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return store.RunStore(), store, nil
	}
)

var rootCmd = &cobra.Command{
	Use:   "reshelve <source_folder> <destination_folder>",
	Short: "Copy a directory tree under a reordered path schema",
	Long: `Reads every file path under source_folder against the input schema,
rebuilds it in the order of the output schema and copies the file to that
path under destination_folder. Existing destination files are never
overwritten, and the source tree is left untouched.

With the default schema, somePathPart/name/year/fileName is copied to
year/somePathPart/name/fileName.`,
	Args: cobra.ExactArgs(2),
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	RunE: runOrganise,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configDir, "config", "", "Configuration directory (default ~/.reshelve)")
	pf.StringVar(&dataDir, "data-dir", "", "History database directory (default ~/.reshelve/data)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Print log lines to stderr as well")
	pf.StringVar(&inputSchema, "input", "", "Input schema, comma-separated segment names")
	pf.StringVar(&outputSchema, "output", "", "Output schema, comma-separated segment names")
}

// Execute runs the root command. SIGINT and SIGTERM cancel the run
// after the file in progress.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// resolveSettings layers the command line flags over the configuration file.
func resolveSettings(cmd *cobra.Command) (*domain.Settings, error) {
	store, err := openConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return settingsFrom(cmd, store)
}

// settingsFrom reads the stored settings and applies the flags the user set.
func settingsFrom(cmd *cobra.Command, store driven.ConfigStore) (*domain.Settings, error) {
	settings, err := services.NewSettingsService(store).Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		settings.Schema.Input = splitNames(inputSchema)
	}
	if flags.Changed("output") {
		settings.Schema.Output = splitNames(outputSchema)
	}
	if flags.Changed("log-file") {
		settings.LogFile = logFile
	}
	if flags.Changed("include-hidden") {
		settings.IncludeHidden = includeHidden
	}
	if flags.Changed("no-history") {
		settings.HistoryEnabled = !noHistory
	}

	return settings, nil
}

// splitNames parses "a, b,c" into segment names. Blank input yields no names.
func splitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, strings.TrimSpace(p))
	}
	return names
}
