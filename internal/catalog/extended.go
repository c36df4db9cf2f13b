package catalog

import (
	"strings"
	"time"
)

// ExtendedIndent marks an expanded (non-root) field in the extended view.
// Consumers key off this prefix to distinguish synthesized rows from base
// rows, so it is a data contract rather than display cosmetics.
const ExtendedIndent = "    "

// ExtendedField is one row of the extended schema view: either a base KNX
// field carried through unchanged, or a virtual field synthesized by
// following a reference chain. Virtual fields inherit the key and export
// flags of the root reference field, not of their immediate parent.
type ExtendedField struct {
	ID              string    `yaml:"id"` // "41" for base rows, "41.000003" for expansions
	TableID         int64     `yaml:"table_id"`
	TableName       string    `yaml:"table_name"`
	FieldName       string    `yaml:"field_name"`
	Description     string    `yaml:"description,omitempty"`
	DataType        string    `yaml:"data_type"`
	IsKey           bool      `yaml:"is_key,omitempty"`
	IsCalculated    bool      `yaml:"is_calculated,omitempty"`
	ReferencedTable string    `yaml:"referenced_table,omitempty"`
	IsExtended      bool      `yaml:"is_extended,omitempty"`
	ExportVisible   bool      `yaml:"export_visible,omitempty"`
	CreatedAt       time.Time `yaml:"created_at,omitempty"`
	DisplayOrder    int       `yaml:"display_order,omitempty"`

	// TableDescription is denormalized from the owning table for assembly.
	TableDescription string `yaml:"table_description,omitempty"`
}

// TrimmedName returns the field name without the extended indent prefix.
func (f *ExtendedField) TrimmedName() string {
	return strings.TrimSpace(f.FieldName)
}

// IsReferenceType reports whether the row's declared type is a reference.
func (f *ExtendedField) IsReferenceType() bool {
	return strings.HasPrefix(strings.ToLower(f.DataType), "reference")
}
