package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catrec/catrec/internal/config"
)

var (
	loadCatalog      string
	loadMappings     string
	loadAugmentation string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load catalog inputs into the store",
	Long: `Load the KNX schema catalog, the ETN mapping records, and optionally
the domain augmentation records from YAML files into the configured store.
Each load replaces the previous contents of its table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		eng, cleanup, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		catalogPath := firstOf(loadCatalog, eng.Config.Inputs.Catalog)
		mappingsPath := firstOf(loadMappings, eng.Config.Inputs.Mappings)
		augPath := firstOf(loadAugmentation, eng.Config.Inputs.Augmentation)
		if catalogPath == "" && mappingsPath == "" && augPath == "" {
			return fmt.Errorf("nothing to load: pass --catalog, --mappings, or --augmentation")
		}

		if catalogPath != "" {
			c, err := eng.LoadCatalog(ctx, config.ExpandHome(catalogPath))
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
			fmt.Println(c.Summary())
		}
		if mappingsPath != "" {
			m, err := eng.LoadMappings(ctx, config.ExpandHome(mappingsPath))
			if err != nil {
				return fmt.Errorf("loading mappings: %w", err)
			}
			fmt.Printf("Loaded %d mapping records\n", len(m.Records))
		}
		if augPath != "" {
			recs, err := eng.LoadAugmentation(ctx, config.ExpandHome(augPath))
			if err != nil {
				return fmt.Errorf("loading augmentation: %w", err)
			}
			fmt.Printf("Loaded %d augmentation records\n", len(recs))
		}
		return nil
	},
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	loadCmd.Flags().StringVar(&loadCatalog, "catalog", "", "KNX catalog YAML file")
	loadCmd.Flags().StringVar(&loadMappings, "mappings", "", "ETN mappings YAML file")
	loadCmd.Flags().StringVar(&loadAugmentation, "augmentation", "", "domain augmentation YAML file")
	rootCmd.AddCommand(loadCmd)
}
