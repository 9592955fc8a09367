package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanaland/cardtsv/internal/catalog"
	"github.com/arcanaland/cardtsv/internal/report"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the card data without writing the report",
	Long: `Validate runs the whole pipeline: it loads the catalogs and every pack file,
flattens the cards and resolves duplicates. Load, lookup and schema errors
fail the command; fields with an odd number of double quotes are listed as
warnings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := catalog.NewCollector(cfg, logger).Collect()
		if err != nil {
			return printFailure(cmd, err)
		}

		b, err := report.Build(records, logger)
		if err != nil {
			return printFailure(cmd, err)
		}

		return printValidation(cmd, b)
	},
}

func printFailure(cmd *cobra.Command, err error) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Validation Results:")
	fmt.Fprintln(out, "-------------------")
	fmt.Fprintf(out, "❌ Card data in '%s' is invalid:\n", cfg.Root)
	fmt.Fprintf(out, "1. %v\n", err)
	return fmt.Errorf("validation failed: %w", err)
}

func printValidation(cmd *cobra.Command, b *report.Builder) error {
	out := cmd.OutOrStdout()
	fields := b.Fields()

	var warnings []report.Diagnostic
	for _, c := range b.Cards() {
		warnings = append(warnings, report.QuoteMismatches(c, fields)...)
	}

	fmt.Fprintln(out, "Validation Results:")
	fmt.Fprintln(out, "-------------------")
	fmt.Fprintf(out, "✅ %d cards, %d fields in '%s'.\n", b.Len(), len(fields), cfg.Root)

	if len(warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for i, warn := range warnings {
			fmt.Fprintf(out, "%d. %s\n", i+1, warn)
		}
	}

	return nil
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
