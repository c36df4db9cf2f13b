package expand

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/catrec/catrec/internal/catalog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ref(id int64) *int64 { return &id }

func TestBuildTable_NoReferences(t *testing.T) {
	c := &catalog.Catalog{Tables: []catalog.Table{
		{ID: 1, Name: "Part", Fields: []catalog.Field{
			{ID: 10, Name: "Name", DataType: "String", IsKey: true},
			{ID: 11, Name: "Description", DataType: "String"},
		}},
	}}
	out := New(c, testLogger()).BuildTable(&c.Tables[0])
	if len(out) != 2 {
		t.Fatalf("rows = %d, want 2", len(out))
	}
	// Key field sorts first.
	if out[0].FieldName != "Name" || !out[0].IsKey {
		t.Errorf("first row = %+v, want key field Name", out[0])
	}
	if out[0].IsExtended || out[1].IsExtended {
		t.Error("base rows must not be flagged extended")
	}
	if out[0].DisplayOrder != 1 || out[1].DisplayOrder != 2 {
		t.Errorf("display order = %d, %d", out[0].DisplayOrder, out[1].DisplayOrder)
	}
}

func TestBuildTable_SingleHopExpansion(t *testing.T) {
	c := &catalog.Catalog{Tables: []catalog.Table{
		{ID: 1, Name: "Allocation", Fields: []catalog.Field{
			{ID: 10, Name: "Part", DataType: "Reference", ReferencedTableID: ref(2),
				ReferencedTable: "Part", IsKey: true, ExportVisible: true,
				Description: "Allocated part"},
		}},
		{ID: 2, Name: "Part", Fields: []catalog.Field{
			{ID: 20, Name: "Name", DataType: "String", IsKey: true, ExportVisible: true},
			{ID: 21, Name: "Site", DataType: "String", ExportVisible: true},
			{ID: 22, Name: "Hidden", DataType: "String"},
		}},
	}}

	out := New(c, testLogger()).BuildTable(&c.Tables[0])
	// Base row + two expansions (Hidden is neither exported nor key).
	if len(out) != 3 {
		t.Fatalf("rows = %d, want 3: %+v", len(out), out)
	}

	first := out[1]
	if !first.IsExtended {
		t.Fatal("expansion not flagged extended")
	}
	if !strings.HasPrefix(first.FieldName, catalog.ExtendedIndent) {
		t.Errorf("expanded name %q lacks indent prefix", first.FieldName)
	}
	if first.TrimmedName() != "Part.Name" {
		t.Errorf("expanded path = %q, want Part.Name", first.TrimmedName())
	}
	if !first.IsKey || !first.ExportVisible {
		t.Error("expansion must inherit the root field's key and export flags")
	}
	if first.ID != "10.000001" || out[2].ID != "10.000002" {
		t.Errorf("sequence ids = %q, %q", first.ID, out[2].ID)
	}
	if !strings.Contains(first.Description, "[From Part]") {
		t.Errorf("description %q missing origin note", first.Description)
	}
	if !strings.HasPrefix(first.Description, "Allocated part") {
		t.Errorf("description %q missing root description", first.Description)
	}
}

func TestExpand_RootFlagsNotParentFlags(t *testing.T) {
	// Root is not a key; intermediate hop field is. The leaf must carry the
	// root's flag, not the parent's.
	c := &catalog.Catalog{Tables: []catalog.Table{
		{ID: 1, Name: "Order", Fields: []catalog.Field{
			{ID: 10, Name: "Customer", DataType: "Reference", ReferencedTableID: ref(2),
				ReferencedTable: "Customer", ExportVisible: true},
		}},
		{ID: 2, Name: "Customer", Fields: []catalog.Field{
			{ID: 20, Name: "Id", DataType: "String", IsKey: true, ExportVisible: true},
		}},
	}}
	out := New(c, testLogger()).BuildTable(&c.Tables[0])
	if len(out) != 2 {
		t.Fatalf("rows = %d, want 2", len(out))
	}
	if out[1].IsKey {
		t.Error("leaf inherited the hop field's key flag instead of the root's")
	}
}

func TestExpand_CycleTerminates(t *testing.T) {
	c := &catalog.Catalog{Tables: []catalog.Table{
		{ID: 1, Name: "A", Fields: []catalog.Field{
			{ID: 10, Name: "BRef", DataType: "Reference", ReferencedTableID: ref(2),
				ReferencedTable: "B", ExportVisible: true},
		}},
		{ID: 2, Name: "B", Fields: []catalog.Field{
			{ID: 20, Name: "ARef", DataType: "Reference", ReferencedTableID: ref(1),
				ReferencedTable: "A", ExportVisible: true},
			{ID: 21, Name: "Name", DataType: "String", ExportVisible: true},
		}},
	}}

	e := New(c, testLogger())
	first := e.BuildTable(&c.Tables[0])
	second := e.BuildTable(&c.Tables[0])

	if len(first) == 0 {
		t.Fatal("cycle produced no rows")
	}
	if len(first) != len(second) {
		t.Fatalf("expansion not deterministic: %d then %d rows", len(first), len(second))
	}
	for _, f := range first {
		if strings.Count(f.TrimmedName(), ".") > 2*e.MaxDepth {
			t.Fatalf("path %q longer than the depth bound allows", f.TrimmedName())
		}
	}
}

func TestExpand_DepthBound(t *testing.T) {
	// A chain of 7 reference hops: C1 -> C2 -> ... -> C8. With max depth 5
	// the 6th and 7th hops must never be followed.
	var tables []catalog.Table
	for i := int64(1); i <= 8; i++ {
		tbl := catalog.Table{ID: i, Name: chainName(i)}
		if i < 8 {
			next := i + 1
			tbl.Fields = []catalog.Field{{
				ID: 100 + i, Name: "Link", DataType: "Reference",
				ReferencedTableID: &next, ReferencedTable: chainName(next),
				ExportVisible: true,
			}}
		} else {
			tbl.Fields = []catalog.Field{{ID: 200, Name: "Leaf", DataType: "String", ExportVisible: true}}
		}
		tables = append(tables, tbl)
	}
	c := &catalog.Catalog{Tables: tables}

	out := New(c, testLogger()).BuildTable(&c.Tables[0])
	if len(out) != 2 {
		t.Fatalf("rows = %d, want base + one depth-bounded leaf: %+v", len(out), out)
	}
	leaf := out[1]
	if !leaf.IsExtended {
		t.Fatalf("second row is not a synthesized leaf: %+v", leaf)
	}
	// Path: prepended root field, the entry table, then one segment per
	// followed hop. Five hops allowed, so seven segments; the 6th and 7th
	// hops would lengthen the chain and eventually reach "Leaf".
	if got := leaf.TrimmedName(); got != "Link.C2.Link.Link.Link.Link.Link" {
		t.Errorf("leaf path = %q, want the five-hop bounded chain", got)
	}
}

func chainName(i int64) string {
	return "C" + string(rune('0'+i))
}

func TestExpand_CalculatedReferenceNotExpanded(t *testing.T) {
	c := &catalog.Catalog{Tables: []catalog.Table{
		{ID: 1, Name: "Part", Fields: []catalog.Field{
			{ID: 10, Name: "Source", DataType: "Reference", ReferencedTableID: ref(2),
				ReferencedTable: "Source", IsCalculated: true, ExportVisible: true},
		}},
		{ID: 2, Name: "Source", Fields: []catalog.Field{
			{ID: 20, Name: "Name", DataType: "String", ExportVisible: true},
		}},
	}}
	out := New(c, testLogger()).BuildTable(&c.Tables[0])
	if len(out) != 1 {
		t.Fatalf("calculated reference was expanded: %+v", out)
	}
}
