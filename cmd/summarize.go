package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Rebuild the per-entity summary view",
	Long: `Join key lists and derived relationships from the stored catalog onto
the domain augmentation records, producing one summary row per entity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		eng, cleanup, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		summaries, err := eng.Summarize(ctx)
		if err != nil {
			return fmt.Errorf("summarizing: %w", err)
		}
		fmt.Printf("Rebuilt %d entity summaries\n", len(summaries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
