// Package engine orchestrates the reconciliation pipeline: reference
// expansion, per-table matching, row assembly, and summary aggregation,
// with all reads and writes going through the store.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/catrec/catrec/internal/assemble"
	"github.com/catrec/catrec/internal/catalog"
	"github.com/catrec/catrec/internal/config"
	"github.com/catrec/catrec/internal/expand"
	"github.com/catrec/catrec/internal/match"
	"github.com/catrec/catrec/internal/saphint"
	"github.com/catrec/catrec/internal/store"
	"github.com/catrec/catrec/internal/summary"
)

// Engine is the core reconciliation engine shared by all commands.
type Engine struct {
	Config *config.Config
	Store  store.Store
	Hints  *saphint.HintTable
	Logger *slog.Logger
}

// New creates a new Engine with the given collaborators. A nil hint table
// selects the built-in defaults.
func New(cfg *config.Config, st store.Store, hints *saphint.HintTable, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if hints == nil {
		hints = saphint.Defaults()
	}
	return &Engine{Config: cfg, Store: st, Hints: hints, Logger: logger}
}

// LoadCatalog reads a KNX catalog YAML file and persists it.
func (e *Engine) LoadCatalog(ctx context.Context, path string) (*catalog.Catalog, error) {
	c, err := catalog.LoadYAML(path)
	if err != nil {
		return nil, err
	}
	if err := e.Store.SaveCatalog(ctx, c); err != nil {
		return nil, fmt.Errorf("saving catalog: %w", err)
	}
	e.Logger.Info("loaded catalog", "path", path, "tables", len(c.Tables))
	return c, nil
}

// LoadMappings reads an ETN mapping YAML file and persists it.
func (e *Engine) LoadMappings(ctx context.Context, path string) (*catalog.MappingSet, error) {
	m, err := catalog.LoadMappingsYAML(path)
	if err != nil {
		return nil, err
	}
	if err := e.Store.SaveMappings(ctx, m); err != nil {
		return nil, fmt.Errorf("saving mappings: %w", err)
	}
	e.Logger.Info("loaded mappings", "path", path, "records", len(m.Records))
	return m, nil
}

// LoadAugmentation reads a domain augmentation YAML file and persists it.
func (e *Engine) LoadAugmentation(ctx context.Context, path string) ([]catalog.AugmentationRecord, error) {
	set, err := catalog.LoadAugmentationYAML(path)
	if err != nil {
		return nil, err
	}
	if err := e.Store.SaveAugmentation(ctx, set.Records); err != nil {
		return nil, fmt.Errorf("saving augmentation: %w", err)
	}
	e.Logger.Info("loaded augmentation", "path", path, "records", len(set.Records))
	return set.Records, nil
}

// Expand rebuilds the expanded field view from the stored catalog and
// persists it.
func (e *Engine) Expand(ctx context.Context) ([]catalog.ExtendedField, error) {
	c, err := e.Store.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	exp := expand.New(c, e.Logger)
	if e.Config != nil && e.Config.Expand.MaxDepth > 0 {
		exp.MaxDepth = e.Config.Expand.MaxDepth
	}
	fields := exp.BuildAll()

	if err := e.Store.ReplaceExpandedFields(ctx, fields); err != nil {
		return nil, fmt.Errorf("saving expanded fields: %w", err)
	}
	e.Logger.Info("expanded catalog", "tables", len(c.Tables), "fields", len(fields))
	return fields, nil
}

// Reconcile runs the full pipeline against the stored inputs and persists
// canonical rows and entity summaries. Tables are processed independently:
// a failure in one table is logged and skipped, the run continues.
func (e *Engine) Reconcile(ctx context.Context) (*RunReport, error) {
	report := NewRunReport()

	report.StartStage(StageExpand)
	fields, err := e.Expand(ctx)
	if err != nil {
		return report, report.Fail(StageExpand, err)
	}
	report.FinishStage(StageExpand, len(fields))

	report.StartStage(StageLoad)
	c, err := e.Store.LoadCatalog(ctx)
	if err != nil {
		return report, report.Fail(StageLoad, fmt.Errorf("loading catalog: %w", err))
	}
	mappings, err := e.Store.LoadMappings(ctx)
	if err != nil {
		return report, report.Fail(StageLoad, fmt.Errorf("loading mappings: %w", err))
	}
	augmentation, err := e.Store.LoadAugmentation(ctx)
	if err != nil {
		return report, report.Fail(StageLoad, fmt.Errorf("loading augmentation: %w", err))
	}
	report.FinishStage(StageLoad, len(mappings.Records))

	report.StartStage(StageReconcile)
	leftByTable := groupLeft(fields)
	rightByTable, labels, unlabeled := e.groupRight(c, mappings.Records)
	report.UnlabeledRecords = unlabeled

	inferencer := saphint.New(e.Hints)
	var rows []catalog.CanonicalRow
	for _, table := range tableOrder(leftByTable, rightByTable) {
		left := leftByTable[table]
		right := rightByTable[table]
		if len(left) == 0 && len(right) == 0 {
			e.Logger.Warn("skipping empty table", "table", table)
			report.Skip(table)
			continue
		}

		records := match.Reconcile(table, left, right)
		for _, rec := range records {
			inf := inferFor(inferencer, table, rec)
			rows = append(rows, assemble.Assemble(rec, inf))
		}
		report.TableDone(table, len(records))
	}
	report.FinishStage(StageReconcile, len(rows))
	e.Logger.Info("reconciled catalogs",
		"tables", report.TablesProcessed, "labels", len(labels), "rows", len(rows))

	report.StartStage(StagePersist)
	if err := e.Store.ReplaceCanonicalRows(ctx, rows); err != nil {
		return report, report.Fail(StagePersist, fmt.Errorf("saving canonical rows: %w", err))
	}
	report.FinishStage(StagePersist, len(rows))

	report.StartStage(StageSummarize)
	summaries := summary.Build(c, augmentation)
	if err := e.Store.ReplaceSummaries(ctx, summaries); err != nil {
		return report, report.Fail(StageSummarize, fmt.Errorf("saving summaries: %w", err))
	}
	report.FinishStage(StageSummarize, len(summaries))

	report.Finish()
	return report, nil
}

// Summarize rebuilds only the entity summary view.
func (e *Engine) Summarize(ctx context.Context) ([]catalog.EntitySummary, error) {
	c, err := e.Store.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	augmentation, err := e.Store.LoadAugmentation(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading augmentation: %w", err)
	}
	summaries := summary.Build(c, augmentation)
	if err := e.Store.ReplaceSummaries(ctx, summaries); err != nil {
		return nil, fmt.Errorf("saving summaries: %w", err)
	}
	e.Logger.Info("rebuilt entity summaries", "entities", len(summaries))
	return summaries, nil
}

// groupLeft buckets expanded fields by table, dropping base reference
// fields: their expansions participate in matching, the raw reference
// pointer does not.
func groupLeft(fields []catalog.ExtendedField) map[string][]catalog.ExtendedField {
	out := make(map[string][]catalog.ExtendedField)
	for i := range fields {
		f := fields[i]
		if f.IsReferenceType() && !f.IsExtended {
			continue
		}
		out[f.TableName] = append(out[f.TableName], f)
	}
	return out
}

// groupRight buckets mapping records by catalog table. Declared labels go
// through the alias map, then bind case-insensitively to a catalog table;
// unknown labels keep their own (aliased) name so their records surface as
// right-only rows instead of disappearing. Records with no label at all
// cannot be grouped; they are skipped with a warning and counted.
func (e *Engine) groupRight(c *catalog.Catalog, records []catalog.MappingRecord) (map[string][]catalog.MappingRecord, []string, int) {
	out := make(map[string][]catalog.MappingRecord)
	seen := make(map[string]bool)
	var labels []string
	unlabeled := 0

	for i := range records {
		r := records[i]
		label := strings.TrimSpace(r.KnxTable)
		if label == "" {
			e.Logger.Warn("skipping mapping record without a table label",
				"record", r.ID, "target_field", r.TargetField)
			unlabeled++
			continue
		}
		label = e.resolveAlias(label)
		if t := c.TableByName(label); t != nil {
			label = t.Name
		}
		out[label] = append(out[label], r)
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	return out, labels, unlabeled
}

func (e *Engine) resolveAlias(label string) string {
	if e.Config == nil {
		return label
	}
	for from, to := range e.Config.Aliases {
		if strings.EqualFold(from, label) {
			return to
		}
	}
	return label
}

// tableOrder returns the union of left and right table names, sorted
// case-insensitively for deterministic runs.
func tableOrder(left map[string][]catalog.ExtendedField, right map[string][]catalog.MappingRecord) []string {
	seen := make(map[string]bool, len(left)+len(right))
	var names []string
	for name := range left {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range right {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
	return names
}

// inferFor builds the SAP inference input for records that carry a
// mapping side; left-only rows have no ERP provenance to infer.
func inferFor(inferencer *saphint.Inferencer, table string, rec match.Record) saphint.Inference {
	if rec.Right == nil {
		return saphint.Inference{}
	}
	in := saphint.Input{
		SourceTable:    rec.Right.SourceTable,
		SourceField:    rec.Right.SourceField,
		CanonicalField: strings.TrimSpace(rec.Right.TargetField),
		CanonicalTable: table,
	}
	if rec.Left != nil {
		in.CanonicalDescription = rec.Left.Description
	}
	return inferencer.Infer(in)
}
