package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/enrich-cli/internal/journal"
)

var passesLimit int

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List journaled enrichment passes",
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close() //nolint:errcheck

		passes, err := j.ListPasses(cmd.Context(), passesLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(passes)
	},
}

func init() {
	passesCmd.Flags().IntVar(&passesLimit, "limit", 20, "maximum passes to list")
	rootCmd.AddCommand(passesCmd)
}
