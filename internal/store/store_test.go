package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/catrec/catrec/internal/catalog"
)

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MongoStore)(nil)
	_ Store = (*MockStore)(nil)
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "catalogs.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestSQLite_CatalogRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	partID := int64(2)
	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	in := &catalog.Catalog{
		Tables: []catalog.Table{
			{
				ID: 1, Name: "Customer", Description: "Customers master",
				Fields: []catalog.Field{
					{ID: 10, TableID: 1, Name: "CustomerName", IsKey: true, CreatedAt: created},
					{ID: 11, TableID: 1, Name: "Part", DataType: "Reference", ReferencedTableID: &partID},
				},
			},
			{ID: 2, Name: "Part"},
		},
	}
	if err := s.SaveCatalog(ctx, in); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}

	out, err := s.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(out.Tables) != 2 {
		t.Fatalf("tables = %d, want 2", len(out.Tables))
	}
	customer := out.TableByName("customer")
	if customer == nil || len(customer.Fields) != 2 {
		t.Fatalf("customer = %+v", customer)
	}
	if !customer.Fields[0].IsKey || !customer.Fields[0].CreatedAt.Equal(created) {
		t.Errorf("key field round trip: %+v", customer.Fields[0])
	}
	ref := customer.Fields[1]
	if ref.ReferencedTableID == nil || *ref.ReferencedTableID != partID {
		t.Errorf("referenced table id round trip: %+v", ref)
	}

	// A second save replaces, not appends.
	if err := s.SaveCatalog(ctx, in); err != nil {
		t.Fatalf("second SaveCatalog: %v", err)
	}
	counts, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Tables != 2 || counts.Fields != 2 {
		t.Errorf("counts after resave = %+v", counts)
	}
}

func TestSQLite_MappingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	in := &catalog.MappingSet{Records: []catalog.MappingRecord{
		{ID: 1, KnxTable: "Customer", SourceTable: "KNA1", SourceField: "KUNNR",
			TargetField: "CustomerName", ShowOutput: true, SortOrder: 3, Domain: "Demand"},
		{ID: 2, KnxTable: "Customer", TargetField: "Region", Notes: "optional"},
	}}
	if err := s.SaveMappings(ctx, in); err != nil {
		t.Fatalf("SaveMappings: %v", err)
	}

	out, err := s.LoadMappings(ctx)
	if err != nil {
		t.Fatalf("LoadMappings: %v", err)
	}
	if len(out.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(out.Records))
	}
	if out.Records[0] != in.Records[0] {
		t.Errorf("record round trip: %+v != %+v", out.Records[0], in.Records[0])
	}
}

func TestSQLite_CanonicalRowsReplace(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	info := true
	first := []catalog.CanonicalRow{
		{CanonicalEntityName: "Customer", CanonicalAttributeName: "CustomerName",
			MaestroFieldName: "CustomerName", MatchStatus: catalog.StatusMatched,
			MatchTier: 1, InformationOnly: &info, FieldCategory: catalog.CategoryCritical},
		{CanonicalEntityName: "Customer", CanonicalAttributeName: "Region",
			MaestroFieldName: "Region", MatchStatus: catalog.StatusEtnOnly},
	}
	if err := s.ReplaceCanonicalRows(ctx, first); err != nil {
		t.Fatalf("ReplaceCanonicalRows: %v", err)
	}
	if err := s.ReplaceCanonicalRows(ctx, first[:1]); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	out, err := s.LoadCanonicalRows(ctx)
	if err != nil {
		t.Fatalf("LoadCanonicalRows: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("rows = %d, want 1 after replace", len(out))
	}
	got := out[0]
	if got.InformationOnly == nil || !*got.InformationOnly {
		t.Errorf("information_only round trip: %+v", got.InformationOnly)
	}
	if got.MatchTier != 1 || got.MatchStatus != catalog.StatusMatched {
		t.Errorf("match provenance round trip: %+v", got)
	}

	// Second row was replaced away; its nil flag shape is covered separately.
	if err := s.ReplaceCanonicalRows(ctx, first[1:]); err != nil {
		t.Fatalf("third replace: %v", err)
	}
	out, err = s.LoadCanonicalRows(ctx)
	if err != nil {
		t.Fatalf("LoadCanonicalRows: %v", err)
	}
	if out[0].InformationOnly != nil {
		t.Errorf("nil information_only came back as %+v", *out[0].InformationOnly)
	}
}

func TestSQLite_ExpandedAndSummaries(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	fields := []catalog.ExtendedField{
		{ID: "10", TableID: 1, TableName: "Customer", FieldName: "CustomerName", DisplayOrder: 1},
		{ID: "10.000001", TableID: 1, TableName: "Customer",
			FieldName: catalog.ExtendedIndent + "Part.Name", IsExtended: true, DisplayOrder: 2},
	}
	if err := s.ReplaceExpandedFields(ctx, fields); err != nil {
		t.Fatalf("ReplaceExpandedFields: %v", err)
	}
	got, err := s.LoadExpandedFields(ctx)
	if err != nil {
		t.Fatalf("LoadExpandedFields: %v", err)
	}
	if len(got) != 2 || got[1].FieldName != catalog.ExtendedIndent+"Part.Name" {
		t.Fatalf("expanded round trip: %+v", got)
	}
	if !got[1].IsExtended {
		t.Error("is_extended flag lost")
	}

	sums := []catalog.EntitySummary{{Entity: "Customer", Keys: "CustomerName, Site"}}
	if err := s.ReplaceSummaries(ctx, sums); err != nil {
		t.Fatalf("ReplaceSummaries: %v", err)
	}
	outSums, err := s.LoadSummaries(ctx)
	if err != nil {
		t.Fatalf("LoadSummaries: %v", err)
	}
	if len(outSums) != 1 || outSums[0].Keys != "CustomerName, Site" {
		t.Errorf("summary round trip: %+v", outSums)
	}
}

func TestSQLite_AugmentationRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	in := []catalog.AugmentationRecord{
		{Domain: "Demand", Entity: "Customer", Applications: "OrderIntake"},
	}
	if err := s.SaveAugmentation(ctx, in); err != nil {
		t.Fatalf("SaveAugmentation: %v", err)
	}
	out, err := s.LoadAugmentation(ctx)
	if err != nil {
		t.Fatalf("LoadAugmentation: %v", err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Errorf("augmentation round trip: %+v", out)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "", ""); err == nil {
		t.Fatal("unknown driver must error")
	}
}
