package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/services"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Manage the TOML configuration file (default ~/.reshelve/config.toml).

Values from the file are used unless overridden by command line flags.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing configuration file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	store, err := openConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := store.Path()
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	svc := services.NewSettingsService(store)
	defaults := svc.GetDefaults()
	if err := svc.Save(&defaults); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	cmd.Printf("Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := openConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	settings, err := settingsFrom(cmd, store)
	if err != nil {
		return err
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Schema]")
	cmd.Printf("  Input:  %s\n", formatNames(settings.Schema.Input))
	cmd.Printf("  Output: %s\n", formatNames(settings.Schema.Output))
	status := "valid"
	if err := services.ValidateSchema(settings.Schema); err != nil {
		var cfgErr *domain.ConfigError
		if !errors.As(err, &cfgErr) {
			return err
		}
		status = "invalid: " + cfgErr.Reason
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Run]")
	cmd.Printf("  Log file:       %s\n", settings.LogFile)
	cmd.Printf("  Hidden files:   %s\n", yesNo(settings.IncludeHidden))
	cmd.Printf("  Record history: %s\n", yesNo(settings.HistoryEnabled))
	cmd.Println()

	cmd.Printf("Config file: %s\n", store.Path())
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
