package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/catrec/catrec/internal/catalog"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export canonical rows and summaries to YAML",
	Long: `Write the stored canonical rows and entity summaries to a single YAML
file, ordered by domain, entity, and declared field output order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		eng, cleanup, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		rows, err := eng.Store.LoadCanonicalRows(ctx)
		if err != nil {
			return fmt.Errorf("loading canonical rows: %w", err)
		}
		summaries, err := eng.Store.LoadSummaries(ctx)
		if err != nil {
			return fmt.Errorf("loading summaries: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("no canonical rows in the store; run reconcile first")
		}

		sort.SliceStable(rows, func(i, j int) bool {
			a, b := &rows[i], &rows[j]
			if a.DomainName != b.DomainName {
				return a.DomainName < b.DomainName
			}
			if a.CanonicalEntityName != b.CanonicalEntityName {
				return a.CanonicalEntityName < b.CanonicalEntityName
			}
			if a.FieldOutputOrder != b.FieldOutputOrder {
				return a.FieldOutputOrder < b.FieldOutputOrder
			}
			return a.CanonicalAttributeName < b.CanonicalAttributeName
		})

		bundle := &catalog.Export{Rows: rows, Summaries: summaries}
		if err := bundle.WriteYAML(exportOutput); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Printf("Exported %d rows and %d summaries to %s\n",
			len(rows), len(summaries), exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOutput, "output", "etn_cdm_mappings.yaml", "output YAML file")
	rootCmd.AddCommand(exportCmd)
}
