package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Rebuild the expanded field view",
	Long: `Walk every reference field in the stored catalog and materialize the
flattened field view, with referenced fields pulled in up to the configured
depth. The previous expansion is replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		eng, cleanup, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		fields, err := eng.Expand(ctx)
		if err != nil {
			return fmt.Errorf("expanding catalog: %w", err)
		}

		extended := 0
		for i := range fields {
			if fields[i].IsExtended {
				extended++
			}
		}
		fmt.Printf("Expanded %d fields (%d pulled in through references)\n",
			len(fields), extended)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(expandCmd)
}
