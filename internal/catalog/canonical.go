package catalog

// Match statuses recorded on canonical rows.
const (
	StatusMatched = "MATCHED"
	StatusKnxOnly = "KNX_ONLY"
	StatusEtnOnly = "ETN_ONLY"
)

// Field categories derived during assembly.
const (
	CategoryIdentifier = "Identifier"
	CategoryCritical   = "Critical"
	CategoryEnabler    = "Functional Enabler"
	CategoryOptional   = "Optional/Reference"
)

// CanonicalRow is one assembled CDM output row: the unified view of a KNX
// field, its ETN mapping counterpart (when matched), and the inferred ERP
// screen metadata.
type CanonicalRow struct {
	DomainName              string `yaml:"domain_name,omitempty"`
	CanonicalEntityName     string `yaml:"canonical_entity_name"`
	MaestroTableName        string `yaml:"maestro_table_name"`
	MaestroTableDescription string `yaml:"maestro_table_description,omitempty"`
	CanonicalAttributeName  string `yaml:"canonical_attribute_name"`
	MaestroFieldName        string `yaml:"maestro_field_name"`
	MaestroFieldDescription string `yaml:"maestro_field_description,omitempty"`
	MaestroDataType         string `yaml:"maestro_data_type,omitempty"`
	MaestroIsKey            bool   `yaml:"maestro_is_key,omitempty"`
	InformationOnly         *bool  `yaml:"information_only,omitempty"`

	ERPTechnicalTableName string `yaml:"erp_technical_table_name,omitempty"`
	ERPTechnicalFieldName string `yaml:"erp_technical_field_name,omitempty"`
	ERPTCode              string `yaml:"erp_tcode,omitempty"`
	ERPScreenName         string `yaml:"erp_screen_name,omitempty"`
	ERPScreenFieldName    string `yaml:"erp_screen_field_name,omitempty"`

	DefaultValue           string `yaml:"default_value,omitempty"`
	ExampleValue           string `yaml:"example_value,omitempty"`
	ETLLogic               string `yaml:"etl_logic,omitempty"`
	ETLTransformationTable string `yaml:"etl_transformation_table,omitempty"`
	Notes                  string `yaml:"notes,omitempty"`
	FieldOutputOrder       int    `yaml:"field_output_order,omitempty"`

	MatchStatus   string `yaml:"match_status"`
	MatchTier     int    `yaml:"match_tier,omitempty"`
	MatchDetails  string `yaml:"match_details,omitempty"`
	SAPStrategy   string `yaml:"sap_augmentation_strategy,omitempty"`
	FieldCategory string `yaml:"field_category,omitempty"`
}

// EntitySummary is the aggregated per-entity view: one row per CDM entity,
// grouping its key fields, derived relationships, and owning applications.
type EntitySummary struct {
	Domain            string `yaml:"domain,omitempty"`
	DomainDescription string `yaml:"domain_description,omitempty"`
	Entity            string `yaml:"entity"`
	EntityDescription string `yaml:"entity_description,omitempty"`
	Keys              string `yaml:"keys,omitempty"`
	Relationships     string `yaml:"relationships,omitempty"`
	Applications      string `yaml:"applications,omitempty"`
}
