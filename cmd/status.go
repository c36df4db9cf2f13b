package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store contents and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		eng, cleanup, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		counts, err := eng.Store.Counts(ctx)
		if err != nil {
			return fmt.Errorf("reading store counts: %w", err)
		}

		fmt.Printf("Store: %s\n\n", eng.Config.Store.Driver)
		fmt.Printf("  KNX tables:       %d\n", counts.Tables)
		fmt.Printf("  KNX fields:       %d\n", counts.Fields)
		fmt.Printf("  ETN mappings:     %d\n", counts.Mappings)
		fmt.Printf("  Expanded fields:  %d\n", counts.ExpandedFields)
		fmt.Printf("  Canonical rows:   %d\n", counts.CanonicalRows)
		fmt.Printf("  Entity summaries: %d\n", counts.Summaries)

		if counts.CanonicalRows == 0 {
			fmt.Println("\nNo reconciliation output yet; run 'catrec reconcile'.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
