package store

import (
	"context"

	"github.com/catrec/catrec/internal/catalog"
)

// MockStore is an in-memory test double for the Store interface.
type MockStore struct {
	Catalog      *catalog.Catalog
	Mappings     *catalog.MappingSet
	Augmentation []catalog.AugmentationRecord
	Expanded     []catalog.ExtendedField
	Canonical    []catalog.CanonicalRow
	Summaries    []catalog.EntitySummary

	SaveErr    error
	LoadErr    error
	ReplaceErr error

	Closed bool
}

func (m *MockStore) SaveCatalog(_ context.Context, c *catalog.Catalog) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Catalog = c
	return nil
}

func (m *MockStore) LoadCatalog(context.Context) (*catalog.Catalog, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Catalog == nil {
		return &catalog.Catalog{}, nil
	}
	return m.Catalog, nil
}

func (m *MockStore) SaveMappings(_ context.Context, set *catalog.MappingSet) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Mappings = set
	return nil
}

func (m *MockStore) LoadMappings(context.Context) (*catalog.MappingSet, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Mappings == nil {
		return &catalog.MappingSet{}, nil
	}
	return m.Mappings, nil
}

func (m *MockStore) SaveAugmentation(_ context.Context, recs []catalog.AugmentationRecord) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Augmentation = recs
	return nil
}

func (m *MockStore) LoadAugmentation(context.Context) ([]catalog.AugmentationRecord, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Augmentation, nil
}

func (m *MockStore) ReplaceExpandedFields(_ context.Context, fields []catalog.ExtendedField) error {
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	m.Expanded = fields
	return nil
}

func (m *MockStore) LoadExpandedFields(context.Context) ([]catalog.ExtendedField, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Expanded, nil
}

func (m *MockStore) ReplaceCanonicalRows(_ context.Context, rows []catalog.CanonicalRow) error {
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	m.Canonical = rows
	return nil
}

func (m *MockStore) LoadCanonicalRows(context.Context) ([]catalog.CanonicalRow, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Canonical, nil
}

func (m *MockStore) ReplaceSummaries(_ context.Context, summaries []catalog.EntitySummary) error {
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	m.Summaries = summaries
	return nil
}

func (m *MockStore) LoadSummaries(context.Context) ([]catalog.EntitySummary, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Summaries, nil
}

func (m *MockStore) Counts(context.Context) (Counts, error) {
	var fields int64
	if m.Catalog != nil {
		for i := range m.Catalog.Tables {
			fields += int64(len(m.Catalog.Tables[i].Fields))
		}
	}
	c := Counts{
		Fields:         fields,
		ExpandedFields: int64(len(m.Expanded)),
		CanonicalRows:  int64(len(m.Canonical)),
		Summaries:      int64(len(m.Summaries)),
	}
	if m.Catalog != nil {
		c.Tables = int64(len(m.Catalog.Tables))
	}
	if m.Mappings != nil {
		c.Mappings = int64(len(m.Mappings.Records))
	}
	return c, nil
}

func (m *MockStore) Close(context.Context) error {
	m.Closed = true
	return nil
}
