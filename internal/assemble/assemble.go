// Package assemble flattens match records and inferred ERP metadata into
// canonical CDM output rows.
package assemble

import (
	"strings"

	"github.com/catrec/catrec/internal/catalog"
	"github.com/catrec/catrec/internal/match"
	"github.com/catrec/catrec/internal/saphint"
)

// criticalNameSubstrings flag operationally load-bearing fields: missing
// or wrong data in these produces junk results downstream.
var criticalNameSubstrings = []string{"Name", "Site", "Date", "LeadTime", "Number", "LT"}

// Assemble combines one match record and its SAP inference into a flat
// canonical row.
func Assemble(rec match.Record, inf saphint.Inference) catalog.CanonicalRow {
	row := catalog.CanonicalRow{
		CanonicalEntityName: rec.TableName,
		MaestroTableName:    rec.TableName,
		MatchStatus:         rec.Status,
		MatchTier:           rec.Tier,
		MatchDetails:        rec.Rationale,
	}

	if rec.Left != nil {
		l := rec.Left
		row.MaestroTableDescription = l.TableDescription
		row.MaestroFieldDescription = strings.TrimSpace(l.Description)
		row.MaestroDataType = l.DataType
		row.MaestroIsKey = l.IsKey
		if rec.Right == nil {
			name := l.TrimmedName()
			row.CanonicalAttributeName = name
			row.MaestroFieldName = name
		}
	}

	if rec.Right != nil {
		r := rec.Right
		target := strings.TrimSpace(r.TargetField)
		row.CanonicalAttributeName = target
		row.MaestroFieldName = target
		row.DomainName = r.Domain
		row.ERPTechnicalTableName = r.SourceTable
		row.ERPTechnicalFieldName = r.SourceField
		row.DefaultValue = r.ConstantValue
		row.ExampleValue = r.ExampleValue
		row.ETLLogic = r.ExtractLogic
		row.ETLTransformationTable = r.TransformationTable
		row.Notes = r.Notes
		row.FieldOutputOrder = r.SortOrder
		info := r.ShowOutput
		row.InformationOnly = &info

		row.ERPTCode = inf.TCode
		row.ERPScreenName = inf.ScreenName
		row.ERPScreenFieldName = inf.ScreenFieldName
		row.SAPStrategy = inf.Strategy
	}

	// Description back-fill: canonical description first, mapping notes
	// second, the field name itself as a last resort.
	if row.MaestroFieldDescription == "" && rec.Right != nil {
		row.MaestroFieldDescription = rec.Right.Notes
	}
	if row.MaestroFieldDescription == "" {
		row.MaestroFieldDescription = row.MaestroFieldName
	}

	row.FieldCategory = deriveCategory(&row)
	return row
}

// deriveCategory tags the row with its field category. Priority order,
// first hit wins; rows matching nothing stay unclassified.
func deriveCategory(row *catalog.CanonicalRow) string {
	if row.MaestroIsKey {
		return catalog.CategoryIdentifier
	}
	if row.MatchStatus == catalog.StatusEtnOnly {
		return catalog.CategoryOptional
	}
	for _, sub := range criticalNameSubstrings {
		if strings.Contains(row.MaestroFieldName, sub) {
			return catalog.CategoryCritical
		}
	}
	if row.MatchStatus == catalog.StatusMatched {
		return catalog.CategoryEnabler
	}
	return ""
}
