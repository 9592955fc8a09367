package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardtsv/internal/catalog"
)

// packsCmd represents the packs command
var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "List the packs of the catalog and their data files",
	Long: `List every pack of packs.json in catalog order, marking which of its
main and encounter card files exist under the pack directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		packs, err := catalog.LoadPacks(cfg.Path(cfg.PacksFile))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(packs) == 0 {
			fmt.Fprintln(out, "No packs found in", cfg.Path(cfg.PacksFile))
			return nil
		}

		c := catalog.NewCollector(cfg, logger)
		missing := color.New(color.Faint)
		for _, p := range packs {
			mainFile, err := c.HasPackFile(cfg.MainPattern, p)
			if err != nil {
				return err
			}
			encounterFile, err := c.HasPackFile(cfg.EncounterPattern, p)
			if err != nil {
				return err
			}

			line := fmt.Sprintf("%-8s %-40s main:%s encounter:%s", p.Code, p.Name, mark(mainFile), mark(encounterFile))
			if !mainFile && !encounterFile {
				missing.Fprintln(out, line)
				continue
			}
			fmt.Fprintln(out, line)
		}

		return nil
	},
}

func mark(present bool) string {
	if present {
		return "yes"
	}
	return "no"
}

func init() {
	RootCmd.AddCommand(packsCmd)
}
