package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run the full reconciliation pipeline",
	Long: `Expand the stored catalog, match every table's fields against the ETN
mapping records, assemble canonical rows with inferred ERP provenance, and
rebuild the entity summaries. Outputs replace the previous run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		eng, cleanup, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		report, runErr := eng.Reconcile(ctx)
		fmt.Println(report.Summary())
		if runErr != nil {
			return fmt.Errorf("reconciling: %w", runErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
