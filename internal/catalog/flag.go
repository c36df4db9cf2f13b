package catalog

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Flag decodes YAML booleans as well as the weakly typed spellings the
// source workbooks use: yes/y/true/1 count as true, anything else as false.
type Flag bool

func (f *Flag) UnmarshalYAML(value *yaml.Node) error {
	var b bool
	if err := value.Decode(&b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

type fieldYAML struct {
	ID                int64     `yaml:"id"`
	TableID           int64     `yaml:"table_id"`
	Name              string    `yaml:"name"`
	Description       string    `yaml:"description"`
	DataType          string    `yaml:"data_type"`
	IsKey             Flag      `yaml:"is_key"`
	IsCalculated      Flag      `yaml:"is_calculated"`
	ReferencedTableID *int64    `yaml:"referenced_table_id"`
	ReferencedTable   string    `yaml:"referenced_table"`
	ExportVisible     Flag      `yaml:"export_visible"`
	CreatedAt         time.Time `yaml:"created_at"`
}

// UnmarshalYAML decodes a field, coercing its flag columns through Flag so
// scraped catalogs with "Yes"/"Y" markers load cleanly.
func (f *Field) UnmarshalYAML(value *yaml.Node) error {
	var raw fieldYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*f = Field{
		ID:                raw.ID,
		TableID:           raw.TableID,
		Name:              raw.Name,
		Description:       raw.Description,
		DataType:          raw.DataType,
		IsKey:             bool(raw.IsKey),
		IsCalculated:      bool(raw.IsCalculated),
		ReferencedTableID: raw.ReferencedTableID,
		ReferencedTable:   raw.ReferencedTable,
		ExportVisible:     bool(raw.ExportVisible),
		CreatedAt:         raw.CreatedAt,
	}
	return nil
}

type mappingRecordYAML struct {
	ID                  int64  `yaml:"id"`
	KnxTable            string `yaml:"knx_table"`
	SourceTable         string `yaml:"source_table"`
	SourceField         string `yaml:"source_field"`
	TargetField         string `yaml:"target_field"`
	ExtractLogic        string `yaml:"extract_logic"`
	TransformationTable string `yaml:"transformation_table"`
	ConstantValue       string `yaml:"constant_value"`
	ExampleValue        string `yaml:"example_value"`
	Notes               string `yaml:"notes"`
	ShowOutput          Flag   `yaml:"show_output"`
	SortOrder           int    `yaml:"sort_order"`
	Domain              string `yaml:"domain"`
}

// UnmarshalYAML decodes a mapping record, coercing show_output through
// Flag; the workbook column carries Y/N markers, not booleans.
func (m *MappingRecord) UnmarshalYAML(value *yaml.Node) error {
	var raw mappingRecordYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*m = MappingRecord{
		ID:                  raw.ID,
		KnxTable:            raw.KnxTable,
		SourceTable:         raw.SourceTable,
		SourceField:         raw.SourceField,
		TargetField:         raw.TargetField,
		ExtractLogic:        raw.ExtractLogic,
		TransformationTable: raw.TransformationTable,
		ConstantValue:       raw.ConstantValue,
		ExampleValue:        raw.ExampleValue,
		Notes:               raw.Notes,
		ShowOutput:          bool(raw.ShowOutput),
		SortOrder:           raw.SortOrder,
		Domain:              raw.Domain,
	}
	return nil
}
