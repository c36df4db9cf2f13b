package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/catrec/catrec/internal/catalog"
)

// MongoStore persists the catalog as document collections. Replacement is
// drop-and-insert; MongoDB has no cross-collection transaction requirement
// here because each output lives in its own collection.
type MongoStore struct {
	client   *mongo.Client
	database string
}

const (
	collTables       = "knx_tables"
	collMappings     = "etn_mappings"
	collAugmentation = "cdm_augmentation"
	collExpanded     = "extended_knx_doc"
	collCanonical    = "etn_cdm_mappings"
	collSummaries    = "etn_cdm"
)

// OpenMongo connects to MongoDB and verifies the connection.
func OpenMongo(ctx context.Context, connStr, database string) (*MongoStore, error) {
	opts := options.Client().ApplyURI(connStr)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}
	if database == "" {
		database = "catrec"
	}
	return &MongoStore{client: client, database: database}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) coll(name string) *mongo.Collection {
	return s.client.Database(s.database).Collection(name)
}

// envelope wraps a document with an insertion sequence so load order
// matches save order regardless of collection scan order.
type envelope[T any] struct {
	Seq int `bson:"seq"`
	Doc T   `bson:"doc"`
}

func replaceCollection[T any](ctx context.Context, coll *mongo.Collection, items []T) error {
	if err := coll.Drop(ctx); err != nil {
		return fmt.Errorf("dropping %s: %w", coll.Name(), err)
	}
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, len(items))
	for i, item := range items {
		docs[i] = envelope[T]{Seq: i, Doc: item}
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("inserting into %s: %w", coll.Name(), err)
	}
	return nil
}

func loadCollection[T any](ctx context.Context, coll *mongo.Collection) ([]T, error) {
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", coll.Name(), err)
	}
	defer cur.Close(ctx)

	var out []T
	for cur.Next(ctx) {
		var env envelope[T]
		if err := cur.Decode(&env); err != nil {
			return nil, fmt.Errorf("decoding %s document: %w", coll.Name(), err)
		}
		out = append(out, env.Doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", coll.Name(), err)
	}
	return out, nil
}

func (s *MongoStore) SaveCatalog(ctx context.Context, c *catalog.Catalog) error {
	return replaceCollection(ctx, s.coll(collTables), c.Tables)
}

func (s *MongoStore) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	tables, err := loadCollection[catalog.Table](ctx, s.coll(collTables))
	if err != nil {
		return nil, err
	}
	return &catalog.Catalog{Source: "store", Tables: tables}, nil
}

func (s *MongoStore) SaveMappings(ctx context.Context, m *catalog.MappingSet) error {
	return replaceCollection(ctx, s.coll(collMappings), m.Records)
}

func (s *MongoStore) LoadMappings(ctx context.Context) (*catalog.MappingSet, error) {
	records, err := loadCollection[catalog.MappingRecord](ctx, s.coll(collMappings))
	if err != nil {
		return nil, err
	}
	return &catalog.MappingSet{Source: "store", Records: records}, nil
}

func (s *MongoStore) SaveAugmentation(ctx context.Context, recs []catalog.AugmentationRecord) error {
	return replaceCollection(ctx, s.coll(collAugmentation), recs)
}

func (s *MongoStore) LoadAugmentation(ctx context.Context) ([]catalog.AugmentationRecord, error) {
	return loadCollection[catalog.AugmentationRecord](ctx, s.coll(collAugmentation))
}

func (s *MongoStore) ReplaceExpandedFields(ctx context.Context, fields []catalog.ExtendedField) error {
	return replaceCollection(ctx, s.coll(collExpanded), fields)
}

func (s *MongoStore) LoadExpandedFields(ctx context.Context) ([]catalog.ExtendedField, error) {
	return loadCollection[catalog.ExtendedField](ctx, s.coll(collExpanded))
}

func (s *MongoStore) ReplaceCanonicalRows(ctx context.Context, rows []catalog.CanonicalRow) error {
	return replaceCollection(ctx, s.coll(collCanonical), rows)
}

func (s *MongoStore) LoadCanonicalRows(ctx context.Context) ([]catalog.CanonicalRow, error) {
	return loadCollection[catalog.CanonicalRow](ctx, s.coll(collCanonical))
}

func (s *MongoStore) ReplaceSummaries(ctx context.Context, summaries []catalog.EntitySummary) error {
	return replaceCollection(ctx, s.coll(collSummaries), summaries)
}

func (s *MongoStore) LoadSummaries(ctx context.Context) ([]catalog.EntitySummary, error) {
	return loadCollection[catalog.EntitySummary](ctx, s.coll(collSummaries))
}

func (s *MongoStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	var fieldTotal int64

	tables, err := loadCollection[catalog.Table](ctx, s.coll(collTables))
	if err != nil {
		return Counts{}, err
	}
	c.Tables = int64(len(tables))
	for i := range tables {
		fieldTotal += int64(len(tables[i].Fields))
	}
	c.Fields = fieldTotal

	for _, q := range []struct {
		coll string
		dest *int64
	}{
		{collMappings, &c.Mappings},
		{collExpanded, &c.ExpandedFields},
		{collCanonical, &c.CanonicalRows},
		{collSummaries, &c.Summaries},
	} {
		n, err := s.coll(q.coll).CountDocuments(ctx, bson.D{})
		if err != nil {
			return Counts{}, fmt.Errorf("counting %s: %w", q.coll, err)
		}
		*q.dest = n
	}
	return c, nil
}
