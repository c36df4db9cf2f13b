package summary

import (
	"testing"

	"github.com/catrec/catrec/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	partID := int64(2)
	return &catalog.Catalog{
		Tables: []catalog.Table{
			{
				ID:   1,
				Name: "Customer",
				Fields: []catalog.Field{
					{Name: "CustomerName", IsKey: true},
					{Name: "Site", IsKey: true},
					{Name: "Part", DataType: "Reference", ReferencedTableID: &partID},
					{Name: "Planner", DataType: "Reference",
						Description: "Planning owner. Referenced table: Planner; see notes"},
					{Name: "Quantity", DataType: "integer"},
				},
			},
			{ID: 2, Name: "Part"},
		},
	}
}

func TestBuild_KeysAndRelationships(t *testing.T) {
	aug := []catalog.AugmentationRecord{{
		Domain:       "Demand",
		Entity:       "customer",
		Applications: "OrderIntake",
	}}

	got := Build(testCatalog(), aug)
	if len(got) != 1 {
		t.Fatalf("summaries = %d, want 1", len(got))
	}
	s := got[0]
	if s.Keys != "CustomerName, Site" {
		t.Errorf("keys = %q", s.Keys)
	}
	if s.Relationships != "Part -> Part, Planner -> Planner" {
		t.Errorf("relationships = %q", s.Relationships)
	}
	if s.Applications != "OrderIntake" {
		t.Errorf("applications = %q", s.Applications)
	}
}

func TestBuild_UnknownEntityKeepsEmptyLookups(t *testing.T) {
	aug := []catalog.AugmentationRecord{{Entity: "Ghost"}}
	got := Build(testCatalog(), aug)
	if got[0].Keys != "" || got[0].Relationships != "" {
		t.Errorf("unknown entity got lookups: %+v", got[0])
	}
}

func TestBuild_EveryRecordProducesARow(t *testing.T) {
	aug := []catalog.AugmentationRecord{
		{Entity: "Customer"},
		{Entity: ""},
		{Entity: "Part"},
	}
	got := Build(testCatalog(), aug)
	if len(got) != 3 {
		t.Fatalf("summaries = %d, want 3", len(got))
	}
	// Part has no keys and no references; the row still exists.
	if got[2].Entity != "Part" || got[2].Keys != "" {
		t.Errorf("part summary = %+v", got[2])
	}
}

func TestNormalizeTableName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Part", "Part"},
		{"  Part  ", "Part"},
		{"Part (deprecated)", "Part"},
		{"(see) Part", "(see)"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeTableName(tt.in); got != tt.want {
			t.Errorf("normalizeTableName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
