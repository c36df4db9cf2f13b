// Package expand builds the extended schema view: base KNX fields plus
// virtual fields synthesized by recursively following reference-typed
// fields into their target tables.
package expand

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/catrec/catrec/internal/catalog"
)

// DefaultMaxDepth bounds reference chains. The limit exists to guarantee
// termination on pathological schema graphs, not for responsiveness.
const DefaultMaxDepth = 5

// Expander walks a catalog's reference graph and produces expanded fields.
type Expander struct {
	Catalog  *catalog.Catalog
	Logger   *slog.Logger
	MaxDepth int
}

// New returns an Expander over the given catalog.
func New(c *catalog.Catalog, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{Catalog: c, Logger: logger, MaxDepth: DefaultMaxDepth}
}

// rootContext carries the originating reference field's properties. Every
// leaf produced under a root inherits the root's flags, never its
// immediate parent's.
type rootContext struct {
	tableID          int64
	tableName        string
	tableDescription string
	fieldName        string
	referencedTable  string
	rootDescription  string
	isKey            bool
	exportVisible    bool
	createdAt        time.Time
}

// BuildTable returns the extended view of one table: each base field in
// display order, followed immediately by the expansions of any reference
// field, numbered so they sort after their root and before the next root.
func (e *Expander) BuildTable(t *catalog.Table) []catalog.ExtendedField {
	fields := orderFields(t.Fields)

	var out []catalog.ExtendedField
	for i := range fields {
		f := &fields[i]
		base := catalog.ExtendedField{
			ID:               fmt.Sprintf("%d", f.ID),
			TableID:          t.ID,
			TableName:        t.Name,
			FieldName:        f.Name,
			Description:      f.Description,
			DataType:         f.DataType,
			IsKey:            f.IsKey,
			IsCalculated:     f.IsCalculated,
			ReferencedTable:  f.ReferencedTable,
			ExportVisible:    f.ExportVisible,
			CreatedAt:        f.CreatedAt,
			TableDescription: t.Description,
		}
		out = append(out, base)

		if !f.Expandable() {
			continue
		}

		root := rootContext{
			tableID:          t.ID,
			tableName:        t.Name,
			tableDescription: t.Description,
			fieldName:        f.Name,
			referencedTable:  f.ReferencedTable,
			rootDescription:  strings.TrimSpace(f.Description),
			isKey:            f.IsKey,
			exportVisible:    f.ExportVisible,
			createdAt:        f.CreatedAt,
		}

		referencedName := f.ReferencedTable
		if referencedName == "" {
			referencedName = f.Name
		}
		initialPath := t.Name + "." + referencedName

		expanded := e.expand(f, initialPath, map[int64]bool{}, e.MaxDepth, root)
		if len(expanded) == 0 {
			e.Logger.Warn("no expansion results for reference field",
				"table", t.Name, "field", f.Name, "referenced", f.ReferencedTable)
			continue
		}

		for seq := range expanded {
			expanded[seq].ID = fmt.Sprintf("%d.%06d", f.ID, seq+1)
			out = append(out, expanded[seq])
		}
		e.Logger.Debug("extended reference field",
			"table", t.Name, "field", f.Name, "fields", len(expanded))
	}

	for i := range out {
		out[i].DisplayOrder = i + 1
	}
	return out
}

// BuildAll returns the extended view for every table in the catalog.
func (e *Expander) BuildAll() []catalog.ExtendedField {
	tables := make([]catalog.Table, len(e.Catalog.Tables))
	copy(tables, e.Catalog.Tables)
	sort.SliceStable(tables, func(i, j int) bool {
		return strings.ToLower(tables[i].Name) < strings.ToLower(tables[j].Name)
	})

	var out []catalog.ExtendedField
	for i := range tables {
		out = append(out, e.BuildTable(&tables[i])...)
	}
	for i := range out {
		out[i].DisplayOrder = i + 1
	}
	return out
}

// expand recursively follows field into its referenced table. Each branch
// receives its own copy of the visited set so sibling subtrees cannot
// suppress each other. The terminal cases (depth exhausted, cycle, or a
// non-reference field) emit a single leaf annotated with the dotted path
// and root-inherited metadata.
func (e *Expander) expand(field *catalog.Field, path string, visited map[int64]bool, depth int, root rootContext) []catalog.ExtendedField {
	if depth <= 0 {
		e.Logger.Debug("max depth reached", "path", path)
		return []catalog.ExtendedField{e.leaf(field, path, root)}
	}
	if field.ReferencedTableID != nil && visited[*field.ReferencedTableID] {
		e.Logger.Debug("cycle detected, stopping", "path", path)
		return []catalog.ExtendedField{e.leaf(field, path, root)}
	}
	if !field.Expandable() {
		return []catalog.ExtendedField{e.leaf(field, path, root)}
	}

	ref := e.Catalog.TableByID(*field.ReferencedTableID)
	if ref == nil {
		e.Logger.Warn("referenced table not in catalog", "path", path, "id", *field.ReferencedTableID)
		return []catalog.ExtendedField{e.leaf(field, path, root)}
	}

	branchVisited := make(map[int64]bool, len(visited)+1)
	for id := range visited {
		branchVisited[id] = true
	}
	branchVisited[*field.ReferencedTableID] = true

	var results []catalog.ExtendedField
	for _, rf := range displayFields(ref) {
		sub := e.expand(&rf, path+"."+rf.Name, branchVisited, depth-1, root)
		results = append(results, sub...)
	}
	return results
}

// leaf formats a terminal expansion result. The four-space indent on the
// field name is a data contract: downstream consumers key off it to tell
// synthesized rows from base rows.
func (e *Expander) leaf(field *catalog.Field, path string, root rootContext) catalog.ExtendedField {
	parts := strings.Split(path, ".")

	originTable := "Unknown"
	if len(parts) >= 2 {
		originTable = parts[len(parts)-2]
	}

	display := parts
	if len(parts) > 1 {
		display = parts[1:]
	}
	if root.fieldName != "" && root.referencedTable != "" &&
		root.fieldName != root.referencedTable &&
		(len(display) == 0 || display[0] != root.fieldName) {
		display = append([]string{root.fieldName}, display...)
	}

	originContext := "[From " + originTable + "]"
	if d := strings.TrimSpace(field.Description); d != "" {
		originContext += " " + d
	}
	description := originContext
	if root.rootDescription != "" {
		description = root.rootDescription + "\n\n" + originContext
	}

	return catalog.ExtendedField{
		TableID:          root.tableID,
		TableName:        root.tableName,
		FieldName:        catalog.ExtendedIndent + strings.Join(display, "."),
		Description:      description,
		DataType:         field.DataType,
		IsKey:            root.isKey,
		IsCalculated:     field.IsCalculated,
		ReferencedTable:  field.ReferencedTable,
		IsExtended:       true,
		ExportVisible:    root.exportVisible,
		CreatedAt:        root.createdAt,
		TableDescription: root.tableDescription,
	}
}

// orderFields returns a table's fields in display order: calculated fields
// last, key fields first, then alphabetical by name.
func orderFields(fields []catalog.Field) []catalog.Field {
	out := make([]catalog.Field, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsCalculated != out[j].IsCalculated {
			return !out[i].IsCalculated
		}
		if out[i].IsKey != out[j].IsKey {
			return out[i].IsKey
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// displayFields returns the fields of a referenced table that participate
// in expansion: export-visible or key, in display order.
func displayFields(t *catalog.Table) []catalog.Field {
	var picked []catalog.Field
	for i := range t.Fields {
		if t.Fields[i].ExportVisible || t.Fields[i].IsKey {
			picked = append(picked, t.Fields[i])
		}
	}
	return orderFields(picked)
}
