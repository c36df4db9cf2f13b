package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadYAML_FlagCoercion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `tables:
  - id: 1
    name: Customer
    fields:
      - id: 10
        name: CustomerName
        data_type: string
        is_key: "Yes"
        export_visible: "y"
      - id: 11
        name: Quantity
        data_type: integer
        is_key: "N"
      - id: 12
        name: Part
        data_type: Reference
        referenced_table_id: 2
        export_visible: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}

	customer := c.TableByName("CUSTOMER")
	if customer == nil {
		t.Fatal("case-insensitive lookup failed")
	}
	if !customer.Fields[0].IsKey || !customer.Fields[0].ExportVisible {
		t.Errorf("Yes/y markers not coerced: %+v", customer.Fields[0])
	}
	if customer.Fields[1].IsKey {
		t.Error("N marker coerced to true")
	}
	ref := customer.Fields[2]
	if !ref.IsReference() || !ref.Expandable() {
		t.Errorf("reference field flags: %+v", ref)
	}
}

func TestLoadMappingsYAML_ShowOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	content := `records:
  - id: 1
    knx_table: Customer
    target_field: CustomerName
    show_output: "Y"
  - id: 2
    knx_table: Customer
    target_field: Region
    show_output: "No"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadMappingsYAML(path)
	if err != nil {
		t.Fatalf("LoadMappingsYAML: %v", err)
	}
	if len(m.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(m.Records))
	}
	if !m.Records[0].ShowOutput {
		t.Error("Y marker not coerced")
	}
	if m.Records[1].ShowOutput {
		t.Error("No marker coerced to true")
	}
}

func TestCatalogSummary(t *testing.T) {
	partID := int64(2)
	c := &Catalog{Tables: []Table{
		{ID: 1, Name: "Customer", Fields: []Field{
			{Name: "CustomerName", IsKey: true},
			{Name: "Part", DataType: "Reference (Multi)", ReferencedTableID: &partID},
		}},
		{ID: 2, Name: "Part"},
	}}

	got := c.Summary()
	want := "Found 2 tables, 2 fields (1 keys, 1 references)"
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "catalog.yaml")
	c := &Catalog{Source: "scrape-2025-03", Tables: []Table{
		{ID: 1, Name: "Part", Fields: []Field{{ID: 10, Name: "Name", IsKey: true}}},
	}}

	if err := c.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if back.Source != c.Source || len(back.Tables) != 1 {
		t.Fatalf("round trip: %+v", back)
	}
	if !back.Tables[0].Fields[0].IsKey {
		t.Error("key flag lost in round trip")
	}
}

func TestExtendedFieldHelpers(t *testing.T) {
	f := ExtendedField{FieldName: ExtendedIndent + "Part.Name", DataType: "reference (multi)"}
	if f.TrimmedName() != "Part.Name" {
		t.Errorf("TrimmedName = %q", f.TrimmedName())
	}
	if !f.IsReferenceType() {
		t.Error("reference prefix not recognized")
	}
	if strings.TrimSpace(ExtendedIndent) != "" {
		t.Error("indent must be whitespace only")
	}
}
