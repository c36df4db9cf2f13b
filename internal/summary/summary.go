// Package summary aggregates the per-entity CDM view: key lists and
// derived relationships joined onto curated domain augmentation records.
package summary

import (
	"regexp"
	"strings"

	"github.com/catrec/catrec/internal/catalog"
)

var (
	tableNameRe  = regexp.MustCompile(`^[A-Za-z0-9_]+`)
	referencedRe = regexp.MustCompile(`(?i)Referenced table:\s*([^\n\r;]+)`)
)

// Build produces one EntitySummary per augmentation record, looking up the
// entity's keys and relationships in the schema catalog. Entities are
// matched case-insensitively; unknown entities keep empty lookups.
func Build(c *catalog.Catalog, aug []catalog.AugmentationRecord) []catalog.EntitySummary {
	keys := keysLookup(c)
	rels := relationshipsLookup(c)

	out := make([]catalog.EntitySummary, 0, len(aug))
	for _, rec := range aug {
		s := catalog.EntitySummary{
			Domain:            rec.Domain,
			DomainDescription: rec.DomainDescription,
			Entity:            rec.Entity,
			EntityDescription: rec.EntityDescription,
			Applications:      rec.Applications,
		}
		if upper := strings.ToUpper(strings.TrimSpace(rec.Entity)); upper != "" {
			s.Keys = keys[upper]
			s.Relationships = rels[upper]
		}
		out = append(out, s)
	}
	return out
}

// keysLookup maps upper-cased table names to the comma-joined names of
// their key fields, in field order.
func keysLookup(c *catalog.Catalog) map[string]string {
	out := make(map[string]string)
	for _, t := range c.Tables {
		upper := strings.ToUpper(strings.TrimSpace(t.Name))
		if upper == "" {
			continue
		}
		var names []string
		for _, f := range t.Fields {
			if f.IsKey {
				names = append(names, f.Name)
			}
		}
		if len(names) > 0 {
			out[upper] = strings.Join(names, ", ")
		}
	}
	return out
}

// relationshipsLookup maps upper-cased table names to comma-joined
// "Field -> ReferencedTable" entries for their reference-typed fields.
// When a field carries no resolved referenced table, the description is
// scanned for a "Referenced table: X" marker.
func relationshipsLookup(c *catalog.Catalog) map[string]string {
	entries := make(map[string][]string)
	for ti := range c.Tables {
		t := &c.Tables[ti]
		upper := strings.ToUpper(strings.TrimSpace(t.Name))
		if upper == "" {
			continue
		}
		for fi := range t.Fields {
			f := &t.Fields[fi]
			if !f.IsReference() {
				continue
			}
			name := strings.TrimSpace(f.Name)
			if name == "" {
				continue
			}
			referenced := referencedTableName(c, f)
			if referenced == "" {
				continue
			}
			entries[upper] = append(entries[upper], name+" -> "+referenced)
		}
	}

	out := make(map[string]string, len(entries))
	for table, list := range entries {
		out[table] = strings.Join(list, ", ")
	}
	return out
}

func referencedTableName(c *catalog.Catalog, f *catalog.Field) string {
	if f.ReferencedTableID != nil {
		if t := c.TableByID(*f.ReferencedTableID); t != nil {
			if name := normalizeTableName(t.Name); name != "" {
				return name
			}
		}
	}
	if name := normalizeTableName(f.ReferencedTable); name != "" {
		return name
	}
	if m := referencedRe.FindStringSubmatch(f.Description); m != nil {
		return normalizeTableName(m[1])
	}
	return ""
}

// normalizeTableName reduces a free-text table mention to a bare table
// name: the leading identifier run, or the first whitespace token.
func normalizeTableName(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	if m := tableNameRe.FindString(text); m != "" {
		return m
	}
	if fields := strings.Fields(text); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
