// Package store persists catalog inputs and reconciliation outputs. All
// output writes are transactional truncate-then-insert: a failed run never
// leaves a partially replaced table behind.
package store

import (
	"context"
	"fmt"

	"github.com/catrec/catrec/internal/catalog"
)

// Store is the persistence boundary for the reconciliation pipeline.
type Store interface {
	// Inputs.
	SaveCatalog(ctx context.Context, c *catalog.Catalog) error
	LoadCatalog(ctx context.Context) (*catalog.Catalog, error)
	SaveMappings(ctx context.Context, m *catalog.MappingSet) error
	LoadMappings(ctx context.Context) (*catalog.MappingSet, error)
	SaveAugmentation(ctx context.Context, recs []catalog.AugmentationRecord) error
	LoadAugmentation(ctx context.Context) ([]catalog.AugmentationRecord, error)

	// Outputs.
	ReplaceExpandedFields(ctx context.Context, fields []catalog.ExtendedField) error
	LoadExpandedFields(ctx context.Context) ([]catalog.ExtendedField, error)
	ReplaceCanonicalRows(ctx context.Context, rows []catalog.CanonicalRow) error
	LoadCanonicalRows(ctx context.Context) ([]catalog.CanonicalRow, error)
	ReplaceSummaries(ctx context.Context, summaries []catalog.EntitySummary) error
	LoadSummaries(ctx context.Context) ([]catalog.EntitySummary, error)

	Counts(ctx context.Context) (Counts, error)
	Close(ctx context.Context) error
}

// Counts reports row counts per stored table, for status reporting.
type Counts struct {
	Tables         int64 `yaml:"tables"`
	Fields         int64 `yaml:"fields"`
	Mappings       int64 `yaml:"mappings"`
	ExpandedFields int64 `yaml:"expanded_fields"`
	CanonicalRows  int64 `yaml:"canonical_rows"`
	Summaries      int64 `yaml:"summaries"`
}

// Open constructs a Store for the configured driver. An empty driver
// selects the local SQLite file.
func Open(ctx context.Context, driver, dsn, database string) (Store, error) {
	switch driver {
	case "", "sqlite":
		return OpenSQLite(ctx, dsn)
	case "postgres", "postgresql":
		return OpenPostgres(ctx, dsn)
	case "mongodb", "mongo":
		return OpenMongo(ctx, dsn, database)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
}
