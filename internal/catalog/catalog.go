package catalog

import (
	"strings"
	"time"
)

// Catalog represents the complete loaded KNX schema documentation.
type Catalog struct {
	Source string  `yaml:"source,omitempty"` // provenance label, e.g. scrape batch
	Tables []Table `yaml:"tables"`
}

// Table represents one documented KNX table.
type Table struct {
	ID                   int64   `yaml:"id"`
	Name                 string  `yaml:"name"`
	Description          string  `yaml:"description,omitempty"`
	CalculatedFieldsNote string  `yaml:"calculated_fields_note,omitempty"`
	Fields               []Field `yaml:"fields"`
}

// Field represents one documented KNX field.
type Field struct {
	ID                int64     `yaml:"id"`
	TableID           int64     `yaml:"table_id"`
	Name              string    `yaml:"name"`
	Description       string    `yaml:"description,omitempty"`
	DataType          string    `yaml:"data_type"`
	IsKey             bool      `yaml:"is_key,omitempty"`
	IsCalculated      bool      `yaml:"is_calculated,omitempty"`
	ReferencedTableID *int64    `yaml:"referenced_table_id,omitempty"`
	ReferencedTable   string    `yaml:"referenced_table,omitempty"`
	ExportVisible     bool      `yaml:"export_visible,omitempty"`
	CreatedAt         time.Time `yaml:"created_at,omitempty"`
}

// IsReference reports whether the field's declared type is a reference type.
// KNX documents these as "Reference", "Reference (Multi)", etc.
func (f *Field) IsReference() bool {
	return strings.HasPrefix(strings.ToLower(f.DataType), "reference")
}

// Expandable reports whether the field can be followed into its referenced
// table: a non-calculated reference with a resolved target. Calculated
// fields never carry a reference.
func (f *Field) Expandable() bool {
	return f.IsReference() && !f.IsCalculated && f.ReferencedTableID != nil
}

// MappingRecord is one row of the ETN field-mapping table. KnxTable is a
// free-text label declared in the workbook, not a foreign key — it may name
// a table that does not exist in the KNX catalog.
type MappingRecord struct {
	ID                  int64  `yaml:"id"`
	KnxTable            string `yaml:"knx_table"`
	SourceTable         string `yaml:"source_table,omitempty"`
	SourceField         string `yaml:"source_field,omitempty"`
	TargetField         string `yaml:"target_field"`
	ExtractLogic        string `yaml:"extract_logic,omitempty"`
	TransformationTable string `yaml:"transformation_table,omitempty"`
	ConstantValue       string `yaml:"constant_value,omitempty"`
	ExampleValue        string `yaml:"example_value,omitempty"`
	Notes               string `yaml:"notes,omitempty"`
	ShowOutput          bool   `yaml:"show_output,omitempty"`
	SortOrder           int    `yaml:"sort_order,omitempty"`
	Domain              string `yaml:"domain,omitempty"`
}

// MappingSet is the full loaded ETN mapping catalog.
type MappingSet struct {
	Source  string          `yaml:"source,omitempty"`
	Records []MappingRecord `yaml:"records"`
}

// TableByName returns the table with the given name, matched
// case-insensitively, or nil.
func (c *Catalog) TableByName(name string) *Table {
	for i := range c.Tables {
		if strings.EqualFold(c.Tables[i].Name, name) {
			return &c.Tables[i]
		}
	}
	return nil
}

// TableByID returns the table with the given id, or nil.
func (c *Catalog) TableByID(id int64) *Table {
	for i := range c.Tables {
		if c.Tables[i].ID == id {
			return &c.Tables[i]
		}
	}
	return nil
}
