package assemble

import (
	"testing"

	"github.com/catrec/catrec/internal/catalog"
	"github.com/catrec/catrec/internal/match"
	"github.com/catrec/catrec/internal/saphint"
)

func matchedRecord() match.Record {
	return match.Record{
		TableName: "Customer",
		Left: &catalog.ExtendedField{
			TableName:        "Customer",
			FieldName:        "CustomerName",
			Description:      "Legal name of the customer",
			DataType:         "string",
			TableDescription: "Customers master",
		},
		Right: &catalog.MappingRecord{
			KnxTable:    "Customer",
			TargetField: " CustomerName ",
			SourceTable: "KNA1",
			SourceField: "NAME1",
			Domain:      "Demand",
			SortOrder:   4,
			ShowOutput:  true,
		},
		Status: catalog.StatusMatched,
		Tier:   match.TierExact,
	}
}

func TestAssemble_MatchedRow(t *testing.T) {
	inf := saphint.Inference{
		TCode:           "XD03",
		ScreenName:      "Display Customer (General Data)",
		ScreenFieldName: "NAME1",
		Strategy:        "source_table_table_inferred+hint_confident",
	}
	row := Assemble(matchedRecord(), inf)

	if row.CanonicalAttributeName != "CustomerName" {
		t.Errorf("attribute = %q, want trimmed CustomerName", row.CanonicalAttributeName)
	}
	if row.MaestroFieldDescription != "Legal name of the customer" {
		t.Errorf("description = %q", row.MaestroFieldDescription)
	}
	if row.ERPTechnicalTableName != "KNA1" || row.ERPTCode != "XD03" {
		t.Errorf("ERP metadata not carried: %+v", row)
	}
	if row.MatchTier != match.TierExact || row.MatchStatus != catalog.StatusMatched {
		t.Errorf("match provenance = %q tier %d", row.MatchStatus, row.MatchTier)
	}
	if row.InformationOnly == nil || !*row.InformationOnly {
		t.Error("show-output flag lost")
	}
	if row.FieldOutputOrder != 4 {
		t.Errorf("output order = %d, want 4", row.FieldOutputOrder)
	}
}

func TestAssemble_CategoryPriority(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*match.Record)
		want   string
	}{
		{"key field", func(r *match.Record) { r.Left.IsKey = true }, catalog.CategoryIdentifier},
		{"key with Date still identifier", func(r *match.Record) {
			r.Left.IsKey = true
			r.Right.TargetField = "EffectiveDate"
		}, catalog.CategoryIdentifier},
		{"critical name substring", func(r *match.Record) { r.Right.TargetField = "ShipDate" }, catalog.CategoryCritical},
		{"lead time abbreviation", func(r *match.Record) { r.Right.TargetField = "MfgLT" }, catalog.CategoryCritical},
		{"plain match is enabler", func(r *match.Record) { r.Right.TargetField = "Quantity" }, catalog.CategoryEnabler},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := matchedRecord()
			tt.mutate(&rec)
			row := Assemble(rec, saphint.Inference{})
			if row.FieldCategory != tt.want {
				t.Errorf("category = %q, want %q", row.FieldCategory, tt.want)
			}
		})
	}
}

func TestAssemble_EtnOnlyRow(t *testing.T) {
	rec := match.Record{
		TableName: "Customer",
		Right: &catalog.MappingRecord{
			KnxTable:    "Customer",
			TargetField: "Region",
			SourceTable: "KNA1",
			SourceField: "REGIO",
			Notes:       "Sales region code",
		},
		Status: catalog.StatusEtnOnly,
	}
	row := Assemble(rec, saphint.Inference{Strategy: "source_table_table_inferred"})

	if row.FieldCategory != catalog.CategoryOptional {
		t.Errorf("category = %q, want %q", row.FieldCategory, catalog.CategoryOptional)
	}
	if row.MaestroFieldDescription != "Sales region code" {
		t.Errorf("description = %q, want notes back-fill", row.MaestroFieldDescription)
	}
	if row.MaestroDataType != "" || row.MaestroIsKey {
		t.Errorf("ETN-only row must not carry canonical field data: %+v", row)
	}
}

func TestAssemble_KnxOnlyRow(t *testing.T) {
	rec := match.Record{
		TableName: "Part",
		Left: &catalog.ExtendedField{
			TableName: "Part",
			FieldName: "    Supplier.Name",
			DataType:  "string",
		},
		Status: catalog.StatusKnxOnly,
	}
	row := Assemble(rec, saphint.Inference{})

	if row.CanonicalAttributeName != "Supplier.Name" {
		t.Errorf("attribute = %q, want indentation trimmed", row.CanonicalAttributeName)
	}
	if row.ERPTechnicalTableName != "" || row.SAPStrategy != "" {
		t.Errorf("KNX-only row must not carry ERP metadata: %+v", row)
	}
	// No description anywhere: the field name itself is the last resort.
	if row.MaestroFieldDescription != "Supplier.Name" {
		t.Errorf("description = %q, want field-name fallback", row.MaestroFieldDescription)
	}
	if row.FieldCategory != catalog.CategoryCritical {
		t.Errorf("category = %q, want %q (contains Name)", row.FieldCategory, catalog.CategoryCritical)
	}
}
