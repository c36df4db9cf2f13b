package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/catrec/catrec/internal/catalog"
)

// PostgresStore persists the catalog in a shared PostgreSQL database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS knx_tables (
		seq BIGSERIAL PRIMARY KEY,
		id BIGINT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		calculated_fields_note TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS knx_fields (
		seq BIGSERIAL PRIMARY KEY,
		id BIGINT NOT NULL,
		table_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		data_type TEXT NOT NULL DEFAULT '',
		is_key BOOLEAN NOT NULL DEFAULT FALSE,
		is_calculated BOOLEAN NOT NULL DEFAULT FALSE,
		referenced_table_id BIGINT,
		referenced_table TEXT NOT NULL DEFAULT '',
		export_visible BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS etn_mappings (
		seq BIGSERIAL PRIMARY KEY,
		id BIGINT NOT NULL,
		knx_table TEXT NOT NULL DEFAULT '',
		source_table TEXT NOT NULL DEFAULT '',
		source_field TEXT NOT NULL DEFAULT '',
		target_field TEXT NOT NULL DEFAULT '',
		extract_logic TEXT NOT NULL DEFAULT '',
		transformation_table TEXT NOT NULL DEFAULT '',
		constant_value TEXT NOT NULL DEFAULT '',
		example_value TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		show_output BOOLEAN NOT NULL DEFAULT FALSE,
		sort_order BIGINT NOT NULL DEFAULT 0,
		domain TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS cdm_augmentation (
		seq BIGSERIAL PRIMARY KEY,
		domain TEXT NOT NULL DEFAULT '',
		domain_description TEXT NOT NULL DEFAULT '',
		entity TEXT NOT NULL DEFAULT '',
		entity_description TEXT NOT NULL DEFAULT '',
		applications TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS extended_knx_doc (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL,
		table_id BIGINT NOT NULL,
		table_name TEXT NOT NULL DEFAULT '',
		field_name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		data_type TEXT NOT NULL DEFAULT '',
		is_key BOOLEAN NOT NULL DEFAULT FALSE,
		is_calculated BOOLEAN NOT NULL DEFAULT FALSE,
		referenced_table TEXT NOT NULL DEFAULT '',
		is_extended BOOLEAN NOT NULL DEFAULT FALSE,
		export_visible BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL DEFAULT '',
		display_order BIGINT NOT NULL DEFAULT 0,
		table_description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS etn_cdm_mappings (
		seq BIGSERIAL PRIMARY KEY,
		domain_name TEXT NOT NULL DEFAULT '',
		canonical_entity_name TEXT NOT NULL DEFAULT '',
		maestro_table_name TEXT NOT NULL DEFAULT '',
		maestro_table_description TEXT NOT NULL DEFAULT '',
		canonical_attribute_name TEXT NOT NULL DEFAULT '',
		maestro_field_name TEXT NOT NULL DEFAULT '',
		maestro_field_description TEXT NOT NULL DEFAULT '',
		maestro_data_type TEXT NOT NULL DEFAULT '',
		maestro_is_key BOOLEAN NOT NULL DEFAULT FALSE,
		information_only BOOLEAN,
		erp_technical_table_name TEXT NOT NULL DEFAULT '',
		erp_technical_field_name TEXT NOT NULL DEFAULT '',
		erp_tcode TEXT NOT NULL DEFAULT '',
		erp_screen_name TEXT NOT NULL DEFAULT '',
		erp_screen_field_name TEXT NOT NULL DEFAULT '',
		default_value TEXT NOT NULL DEFAULT '',
		example_value TEXT NOT NULL DEFAULT '',
		etl_logic TEXT NOT NULL DEFAULT '',
		etl_transformation_table TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		field_output_order BIGINT NOT NULL DEFAULT 0,
		match_status TEXT NOT NULL DEFAULT '',
		match_tier BIGINT NOT NULL DEFAULT 0,
		match_details TEXT NOT NULL DEFAULT '',
		sap_augmentation_strategy TEXT NOT NULL DEFAULT '',
		field_category TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS etn_cdm (
		seq BIGSERIAL PRIMARY KEY,
		domain TEXT NOT NULL DEFAULT '',
		domain_description TEXT NOT NULL DEFAULT '',
		entity TEXT NOT NULL DEFAULT '',
		entity_description TEXT NOT NULL DEFAULT '',
		keys TEXT NOT NULL DEFAULT '',
		relationships TEXT NOT NULL DEFAULT '',
		applications TEXT NOT NULL DEFAULT ''
	)`,
}

// OpenPostgres connects to PostgreSQL and initializes the schema.
func OpenPostgres(ctx context.Context, connStr string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging PostgreSQL: %w", err)
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("initializing postgres schema: %w", err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) replace(ctx context.Context, tables []string, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range tables {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+t); err != nil {
			return fmt.Errorf("clearing %s: %w", t, err)
		}
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) SaveCatalog(ctx context.Context, c *catalog.Catalog) error {
	return s.replace(ctx, []string{"knx_tables", "knx_fields"}, func(tx pgx.Tx) error {
		for ti := range c.Tables {
			t := &c.Tables[ti]
			_, err := tx.Exec(ctx,
				`INSERT INTO knx_tables (id, name, description, calculated_fields_note)
				 VALUES ($1, $2, $3, $4)`,
				t.ID, t.Name, t.Description, t.CalculatedFieldsNote)
			if err != nil {
				return fmt.Errorf("inserting table %s: %w", t.Name, err)
			}
			for fi := range t.Fields {
				f := &t.Fields[fi]
				_, err := tx.Exec(ctx,
					`INSERT INTO knx_fields (id, table_id, name, description, data_type,
					 is_key, is_calculated, referenced_table_id, referenced_table,
					 export_visible, created_at)
					 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
					f.ID, f.TableID, f.Name, f.Description, f.DataType,
					f.IsKey, f.IsCalculated, f.ReferencedTableID, f.ReferencedTable,
					f.ExportVisible, formatTime(f.CreatedAt))
				if err != nil {
					return fmt.Errorf("inserting field %s.%s: %w", t.Name, f.Name, err)
				}
			}
		}
		return nil
	})
}

func (s *PostgresStore) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	c := &catalog.Catalog{Source: "store"}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, calculated_fields_note FROM knx_tables ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}
	byID := make(map[int64]int)
	for rows.Next() {
		var t catalog.Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CalculatedFieldsNote); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		byID[t.ID] = len(c.Tables)
		c.Tables = append(c.Tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tables: %w", err)
	}

	frows, err := s.pool.Query(ctx,
		`SELECT id, table_id, name, description, data_type, is_key, is_calculated,
		 referenced_table_id, referenced_table, export_visible, created_at
		 FROM knx_fields ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("loading fields: %w", err)
	}
	for frows.Next() {
		var f catalog.Field
		var created string
		if err := frows.Scan(&f.ID, &f.TableID, &f.Name, &f.Description, &f.DataType,
			&f.IsKey, &f.IsCalculated, &f.ReferencedTableID, &f.ReferencedTable,
			&f.ExportVisible, &created); err != nil {
			frows.Close()
			return nil, fmt.Errorf("scanning field: %w", err)
		}
		f.CreatedAt = parseTime(created)
		if idx, ok := byID[f.TableID]; ok {
			c.Tables[idx].Fields = append(c.Tables[idx].Fields, f)
		}
	}
	if err := frows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fields: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) SaveMappings(ctx context.Context, m *catalog.MappingSet) error {
	return s.replace(ctx, []string{"etn_mappings"}, func(tx pgx.Tx) error {
		for i := range m.Records {
			r := &m.Records[i]
			_, err := tx.Exec(ctx,
				`INSERT INTO etn_mappings (id, knx_table, source_table, source_field,
				 target_field, extract_logic, transformation_table, constant_value,
				 example_value, notes, show_output, sort_order, domain)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
				r.ID, r.KnxTable, r.SourceTable, r.SourceField,
				r.TargetField, r.ExtractLogic, r.TransformationTable, r.ConstantValue,
				r.ExampleValue, r.Notes, r.ShowOutput, r.SortOrder, r.Domain)
			if err != nil {
				return fmt.Errorf("inserting mapping %s/%s: %w", r.KnxTable, r.TargetField, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) LoadMappings(ctx context.Context) (*catalog.MappingSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, knx_table, source_table, source_field, target_field, extract_logic,
		 transformation_table, constant_value, example_value, notes, show_output,
		 sort_order, domain FROM etn_mappings ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("loading mappings: %w", err)
	}
	defer rows.Close()

	m := &catalog.MappingSet{Source: "store"}
	for rows.Next() {
		var r catalog.MappingRecord
		if err := rows.Scan(&r.ID, &r.KnxTable, &r.SourceTable, &r.SourceField,
			&r.TargetField, &r.ExtractLogic, &r.TransformationTable, &r.ConstantValue,
			&r.ExampleValue, &r.Notes, &r.ShowOutput, &r.SortOrder, &r.Domain); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		m.Records = append(m.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) SaveAugmentation(ctx context.Context, recs []catalog.AugmentationRecord) error {
	return s.replace(ctx, []string{"cdm_augmentation"}, func(tx pgx.Tx) error {
		for i := range recs {
			r := &recs[i]
			_, err := tx.Exec(ctx,
				`INSERT INTO cdm_augmentation (domain, domain_description, entity,
				 entity_description, applications) VALUES ($1, $2, $3, $4, $5)`,
				r.Domain, r.DomainDescription, r.Entity, r.EntityDescription, r.Applications)
			if err != nil {
				return fmt.Errorf("inserting augmentation %s: %w", r.Entity, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) LoadAugmentation(ctx context.Context) ([]catalog.AugmentationRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT domain, domain_description, entity, entity_description, applications
		 FROM cdm_augmentation ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("loading augmentation: %w", err)
	}
	defer rows.Close()

	var out []catalog.AugmentationRecord
	for rows.Next() {
		var r catalog.AugmentationRecord
		if err := rows.Scan(&r.Domain, &r.DomainDescription, &r.Entity,
			&r.EntityDescription, &r.Applications); err != nil {
			return nil, fmt.Errorf("scanning augmentation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ReplaceExpandedFields(ctx context.Context, fields []catalog.ExtendedField) error {
	return s.replace(ctx, []string{"extended_knx_doc"}, func(tx pgx.Tx) error {
		for i := range fields {
			f := &fields[i]
			_, err := tx.Exec(ctx,
				`INSERT INTO extended_knx_doc (id, table_id, table_name, field_name,
				 description, data_type, is_key, is_calculated, referenced_table,
				 is_extended, export_visible, created_at, display_order, table_description)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
				f.ID, f.TableID, f.TableName, f.FieldName,
				f.Description, f.DataType, f.IsKey, f.IsCalculated, f.ReferencedTable,
				f.IsExtended, f.ExportVisible, formatTime(f.CreatedAt), f.DisplayOrder,
				f.TableDescription)
			if err != nil {
				return fmt.Errorf("inserting expanded field %s: %w", f.ID, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) LoadExpandedFields(ctx context.Context) ([]catalog.ExtendedField, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, table_id, table_name, field_name, description, data_type, is_key,
		 is_calculated, referenced_table, is_extended, export_visible, created_at,
		 display_order, table_description FROM extended_knx_doc ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("loading expanded fields: %w", err)
	}
	defer rows.Close()

	var out []catalog.ExtendedField
	for rows.Next() {
		var f catalog.ExtendedField
		var created string
		if err := rows.Scan(&f.ID, &f.TableID, &f.TableName, &f.FieldName,
			&f.Description, &f.DataType, &f.IsKey, &f.IsCalculated, &f.ReferencedTable,
			&f.IsExtended, &f.ExportVisible, &created, &f.DisplayOrder,
			&f.TableDescription); err != nil {
			return nil, fmt.Errorf("scanning expanded field: %w", err)
		}
		f.CreatedAt = parseTime(created)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ReplaceCanonicalRows(ctx context.Context, rowsIn []catalog.CanonicalRow) error {
	return s.replace(ctx, []string{"etn_cdm_mappings"}, func(tx pgx.Tx) error {
		for i := range rowsIn {
			r := &rowsIn[i]
			_, err := tx.Exec(ctx,
				`INSERT INTO etn_cdm_mappings (domain_name, canonical_entity_name,
				 maestro_table_name, maestro_table_description, canonical_attribute_name,
				 maestro_field_name, maestro_field_description, maestro_data_type,
				 maestro_is_key, information_only, erp_technical_table_name,
				 erp_technical_field_name, erp_tcode, erp_screen_name,
				 erp_screen_field_name, default_value, example_value, etl_logic,
				 etl_transformation_table, notes, field_output_order, match_status,
				 match_tier, match_details, sap_augmentation_strategy, field_category)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
				 $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`,
				r.DomainName, r.CanonicalEntityName,
				r.MaestroTableName, r.MaestroTableDescription, r.CanonicalAttributeName,
				r.MaestroFieldName, r.MaestroFieldDescription, r.MaestroDataType,
				r.MaestroIsKey, r.InformationOnly, r.ERPTechnicalTableName,
				r.ERPTechnicalFieldName, r.ERPTCode, r.ERPScreenName,
				r.ERPScreenFieldName, r.DefaultValue, r.ExampleValue, r.ETLLogic,
				r.ETLTransformationTable, r.Notes, r.FieldOutputOrder, r.MatchStatus,
				r.MatchTier, r.MatchDetails, r.SAPStrategy, r.FieldCategory)
			if err != nil {
				return fmt.Errorf("inserting canonical row %s/%s: %w",
					r.CanonicalEntityName, r.CanonicalAttributeName, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) LoadCanonicalRows(ctx context.Context) ([]catalog.CanonicalRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT domain_name, canonical_entity_name, maestro_table_name,
		 maestro_table_description, canonical_attribute_name, maestro_field_name,
		 maestro_field_description, maestro_data_type, maestro_is_key,
		 information_only, erp_technical_table_name, erp_technical_field_name,
		 erp_tcode, erp_screen_name, erp_screen_field_name, default_value,
		 example_value, etl_logic, etl_transformation_table, notes,
		 field_output_order, match_status, match_tier, match_details,
		 sap_augmentation_strategy, field_category
		 FROM etn_cdm_mappings ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("loading canonical rows: %w", err)
	}
	defer rows.Close()

	var out []catalog.CanonicalRow
	for rows.Next() {
		var r catalog.CanonicalRow
		if err := rows.Scan(&r.DomainName, &r.CanonicalEntityName, &r.MaestroTableName,
			&r.MaestroTableDescription, &r.CanonicalAttributeName, &r.MaestroFieldName,
			&r.MaestroFieldDescription, &r.MaestroDataType, &r.MaestroIsKey,
			&r.InformationOnly, &r.ERPTechnicalTableName, &r.ERPTechnicalFieldName,
			&r.ERPTCode, &r.ERPScreenName, &r.ERPScreenFieldName, &r.DefaultValue,
			&r.ExampleValue, &r.ETLLogic, &r.ETLTransformationTable, &r.Notes,
			&r.FieldOutputOrder, &r.MatchStatus, &r.MatchTier, &r.MatchDetails,
			&r.SAPStrategy, &r.FieldCategory); err != nil {
			return nil, fmt.Errorf("scanning canonical row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ReplaceSummaries(ctx context.Context, summaries []catalog.EntitySummary) error {
	return s.replace(ctx, []string{"etn_cdm"}, func(tx pgx.Tx) error {
		for i := range summaries {
			r := &summaries[i]
			_, err := tx.Exec(ctx,
				`INSERT INTO etn_cdm (domain, domain_description, entity,
				 entity_description, keys, relationships, applications)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				r.Domain, r.DomainDescription, r.Entity,
				r.EntityDescription, r.Keys, r.Relationships, r.Applications)
			if err != nil {
				return fmt.Errorf("inserting summary %s: %w", r.Entity, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) LoadSummaries(ctx context.Context) ([]catalog.EntitySummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT domain, domain_description, entity, entity_description, keys,
		 relationships, applications FROM etn_cdm ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("loading summaries: %w", err)
	}
	defer rows.Close()

	var out []catalog.EntitySummary
	for rows.Next() {
		var r catalog.EntitySummary
		if err := rows.Scan(&r.Domain, &r.DomainDescription, &r.Entity,
			&r.EntityDescription, &r.Keys, &r.Relationships, &r.Applications); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dest  *int64
	}{
		{"knx_tables", &c.Tables},
		{"knx_fields", &c.Fields},
		{"etn_mappings", &c.Mappings},
		{"extended_knx_doc", &c.ExpandedFields},
		{"etn_cdm_mappings", &c.CanonicalRows},
		{"etn_cdm", &c.Summaries},
	} {
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+q.table).Scan(q.dest); err != nil {
			return Counts{}, fmt.Errorf("counting %s: %w", q.table, err)
		}
	}
	return c, nil
}
