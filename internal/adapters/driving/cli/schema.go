package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reshelve/internal/core/services"
)

var previewReverse bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the path schema",
	Long: `Inspect the effective path schema: the configuration file merged with
the --input and --output flags.`,
}

var schemaCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the schema",
	Args:  cobra.NoArgs,
	RunE:  runSchemaCheck,
}

var schemaPreviewCmd = &cobra.Command{
	Use:   "preview <relative-path>...",
	Short: "Show where paths would be copied to",
	Long: `Rebuild each relative path with the schema without touching any file.
Paths that do not match the input schema print "(no match)".

With --reverse the schema is inverted, which maps a destination path back to
its source path. This needs an output schema that uses every input name once.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSchemaPreview,
}

func init() {
	schemaPreviewCmd.Flags().BoolVarP(&previewReverse, "reverse", "r", false, "Map destination paths back to source paths")

	schemaCmd.AddCommand(schemaCheckCmd)
	schemaCmd.AddCommand(schemaPreviewCmd)
	rootCmd.AddCommand(schemaCmd)
}

func runSchemaCheck(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	if err := services.ValidateSchema(settings.Schema); err != nil {
		return fmt.Errorf("%w\n%s", err, configErrorHint)
	}

	cmd.Printf("input: %s\n", formatNames(settings.Schema.Input))
	cmd.Printf("output: %s\n", formatNames(settings.Schema.Output))
	return nil
}

func runSchemaPreview(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	schema := settings.Schema
	if err := services.ValidateSchema(schema); err != nil {
		return fmt.Errorf("%w\n%s", err, configErrorHint)
	}
	if previewReverse {
		inverse, ok := schema.Inverse()
		if !ok {
			return errors.New("schema is not reversible: output must use every input name exactly once")
		}
		schema = inverse
	}

	transformer, err := services.NewTransformer(schema)
	if err != nil {
		return fmt.Errorf("%w\n%s", err, configErrorHint)
	}

	for _, rel := range args {
		target, ok := transformer.Transform(rel)
		if !ok {
			target = "(no match)"
		}
		cmd.Printf("%s -> %s\n", rel, target)
	}
	return nil
}

func formatNames(names []string) string {
	return strings.Join(names, "/")
}
