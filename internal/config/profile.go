package config

// Scoring modes. Each profile names exactly one.
const (
	ModeNotes      = "notes"
	ModeTargets    = "targets"
	ModeFavorites  = "favorites"
	ModeEngagement = "engagement"
	ModeRoles      = "roles"
	ModeEstimate   = "estimate"
)

// ProfileConfig is one named scoring and routing variant: the keyword
// taxonomy, weight table, and threshold table for a scoring mode.
type ProfileConfig struct {
	Name      string        `yaml:"name" mapstructure:"name"`
	Mode      string        `yaml:"mode" mapstructure:"mode"`
	ReasonCap int           `yaml:"reason_cap" mapstructure:"reason_cap"`
	Keywords  KeywordConfig `yaml:"keywords" mapstructure:"keywords"`
	Weights   WeightConfig  `yaml:"weights" mapstructure:"weights"`
	Limits    LimitConfig   `yaml:"limits" mapstructure:"limits"`
	Tiers     []TierConfig  `yaml:"tiers" mapstructure:"tiers"`
}

// KeywordConfig holds the ordered keyword lists a profile matches against.
// Matching is case-insensitive.
type KeywordConfig struct {
	Institutional     []string `yaml:"institutional" mapstructure:"institutional"`
	SellerFinanceDocs []string `yaml:"seller_finance_docs" mapstructure:"seller_finance_docs"`
	DiscardDocs       []string `yaml:"discard_docs" mapstructure:"discard_docs"`
	ComplexName       []string `yaml:"complex_name" mapstructure:"complex_name"`
	NameExclusions    []string `yaml:"name_exclusions" mapstructure:"name_exclusions"`
	POBox             []string `yaml:"po_box" mapstructure:"po_box"`

	OwnerType OwnerTypeConfig `yaml:"owner_type" mapstructure:"owner_type"`

	// Taxonomy is evaluated top to bottom; the first category with a matching
	// keyword wins.
	Taxonomy         []CategoryConfig `yaml:"taxonomy" mapstructure:"taxonomy"`
	EntityIndicators []string         `yaml:"entity_indicators" mapstructure:"entity_indicators"`
	MaxPersonTokens  int              `yaml:"max_person_tokens" mapstructure:"max_person_tokens"`
}

// OwnerTypeConfig drives the PERSON/LLC/TRUST/BANK/UNKNOWN classifier.
type OwnerTypeConfig struct {
	Trust              []string `yaml:"trust" mapstructure:"trust"`
	LLCSuffixes        []string `yaml:"llc_suffixes" mapstructure:"llc_suffixes"`
	CorporateSuffixes  []string `yaml:"corporate_suffixes" mapstructure:"corporate_suffixes"`
	OrganizationWords  []string `yaml:"organization_words" mapstructure:"organization_words"`
	MaxPersonNameChars int      `yaml:"max_person_name_chars" mapstructure:"max_person_name_chars"`
}

// CategoryConfig is one rung of the entity taxonomy.
type CategoryConfig struct {
	Category string   `yaml:"category" mapstructure:"category"`
	Label    string   `yaml:"label" mapstructure:"label"`
	Keywords []string `yaml:"keywords" mapstructure:"keywords"`
}

// WeightConfig holds the additive score weights. Zero weights switch a signal off.
type WeightConfig struct {
	Owner      OwnerWeights     `yaml:"owner" mapstructure:"owner"`
	Amount     BandSet          `yaml:"amount" mapstructure:"amount"`
	Doc        DocWeights       `yaml:"doc" mapstructure:"doc"`
	Age        BandSet          `yaml:"age" mapstructure:"age"`
	Value      BandSet          `yaml:"value" mapstructure:"value"`
	ValueRange RangeWeights     `yaml:"value_range" mapstructure:"value_range"`
	Absentee   AbsenteeWeights  `yaml:"absentee" mapstructure:"absentee"`
	Contact    ContactWeights   `yaml:"contact" mapstructure:"contact"`
	Portfolio  PortfolioWeights `yaml:"portfolio" mapstructure:"portfolio"`
	SimpleName int              `yaml:"simple_name" mapstructure:"simple_name"`
	// Roles maps an entity category to its score modifier. Categories listed in
	// Excluded are hard-disqualified instead.
	Roles    map[string]int `yaml:"roles" mapstructure:"roles"`
	Excluded []string       `yaml:"excluded" mapstructure:"excluded"`
}

// OwnerWeights scores the owner-type classification.
type OwnerWeights struct {
	Noun   string `yaml:"noun" mapstructure:"noun"`
	Person int    `yaml:"person" mapstructure:"person"`
	LLC    int    `yaml:"llc" mapstructure:"llc"`
	Trust  int    `yaml:"trust" mapstructure:"trust"`
	Other  int    `yaml:"other" mapstructure:"other"`
}

// BandSet scores a numeric attribute by the first matching band.
type BandSet struct {
	Bands         []BandConfig `yaml:"bands" mapstructure:"bands"`
	Missing       int          `yaml:"missing" mapstructure:"missing"`
	MissingReason string       `yaml:"missing_reason" mapstructure:"missing_reason"`
}

// BandConfig is a [Min, Max) range, or [Min, Max] when MaxInclusive is set.
// Max == 0 means unbounded.
type BandConfig struct {
	Min          float64 `yaml:"min" mapstructure:"min"`
	Max          float64 `yaml:"max" mapstructure:"max"`
	MaxInclusive bool    `yaml:"max_inclusive" mapstructure:"max_inclusive"`
	Points       int     `yaml:"points" mapstructure:"points"`
	Reason       string  `yaml:"reason" mapstructure:"reason"`
}

// RangeWeights scores a value against a [low, high] range taken from the
// profile limits.
type RangeWeights struct {
	In            int    `yaml:"in" mapstructure:"in"`
	Below         int    `yaml:"below" mapstructure:"below"`
	Above         int    `yaml:"above" mapstructure:"above"`
	Missing       int    `yaml:"missing" mapstructure:"missing"`
	InReason      string `yaml:"in_reason" mapstructure:"in_reason"`
	BelowReason   string `yaml:"below_reason" mapstructure:"below_reason"`
	AboveReason   string `yaml:"above_reason" mapstructure:"above_reason"`
	MissingReason string `yaml:"missing_reason" mapstructure:"missing_reason"`
}

// DocWeights scores the recorded document type.
type DocWeights struct {
	SellerFinance int `yaml:"seller_finance" mapstructure:"seller_finance"`
	Other         int `yaml:"other" mapstructure:"other"`
	Missing       int `yaml:"missing" mapstructure:"missing"`
}

// AbsenteeWeights scores absentee-owner strength.
type AbsenteeWeights struct {
	Strong   int `yaml:"strong" mapstructure:"strong"`
	Weak     int `yaml:"weak" mapstructure:"weak"`
	Occupied int `yaml:"occupied" mapstructure:"occupied"`
	// Plain reports "absentee owner" instead of the strong/weak distinction.
	Plain bool `yaml:"plain" mapstructure:"plain"`
}

// ContactWeights scores contact-quality signals.
type ContactWeights struct {
	Email         int `yaml:"email" mapstructure:"email"`
	Phone         int `yaml:"phone" mapstructure:"phone"`
	StreetAddress int `yaml:"street_address" mapstructure:"street_address"`
}

// PortfolioWeights scores how many properties the owner holds.
type PortfolioWeights struct {
	Single int `yaml:"single" mapstructure:"single"`
	Double int `yaml:"double" mapstructure:"double"`
	Many   int `yaml:"many" mapstructure:"many"`
}

// LimitConfig holds the routing thresholds.
type LimitConfig struct {
	// ExcludedReason and AcceptedReason are the routing reasons for a
	// hard-excluded record and for one that passes every check.
	ExcludedReason string `yaml:"excluded_reason" mapstructure:"excluded_reason"`
	AcceptedReason string `yaml:"accepted_reason" mapstructure:"accepted_reason"`

	MaxLoan float64 `yaml:"max_loan" mapstructure:"max_loan"`
	MinAge  float64 `yaml:"min_age" mapstructure:"min_age"`
	MaxAge  float64 `yaml:"max_age" mapstructure:"max_age"`
	// ReviewLLCWithoutPreferredDoc routes LLC lenders whose document type is
	// not a seller-finance type to review.
	ReviewLLCWithoutPreferredDoc bool `yaml:"review_llc_without_preferred_doc" mapstructure:"review_llc_without_preferred_doc"`

	MinValue     float64 `yaml:"min_value" mapstructure:"min_value"`
	MaxValue     float64 `yaml:"max_value" mapstructure:"max_value"`
	OnlyAbsentee bool    `yaml:"only_absentee" mapstructure:"only_absentee"`
	BucketSize   float64 `yaml:"bucket_size" mapstructure:"bucket_size"`

	ValueCap            float64  `yaml:"value_cap" mapstructure:"value_cap"`
	ValueCapBuffer      float64  `yaml:"value_cap_buffer" mapstructure:"value_cap_buffer"`
	VacantImprovement   float64  `yaml:"vacant_improvement" mapstructure:"vacant_improvement"`
	LandValueReview     float64  `yaml:"land_value_review" mapstructure:"land_value_review"`
	LandValuePerAcre    float64  `yaml:"land_value_per_acre" mapstructure:"land_value_per_acre"`
	MaxAcres            float64  `yaml:"max_acres" mapstructure:"max_acres"`
	NominalAcres        float64  `yaml:"nominal_acres" mapstructure:"nominal_acres"`
	ResidentialPrefixes []string `yaml:"residential_prefixes" mapstructure:"residential_prefixes"`
	MaxNameLength       int      `yaml:"max_name_length" mapstructure:"max_name_length"`
	MaxNameCommas       int      `yaml:"max_name_commas" mapstructure:"max_name_commas"`
	DataLimitations     []string `yaml:"data_limitations" mapstructure:"data_limitations"`

	SimpleNameMaxLength int `yaml:"simple_name_max_length" mapstructure:"simple_name_max_length"`
	MinPhoneLength      int `yaml:"min_phone_length" mapstructure:"min_phone_length"`

	MinScore       int     `yaml:"min_score" mapstructure:"min_score"`
	EstimateRatio  float64 `yaml:"estimate_ratio" mapstructure:"estimate_ratio"`
	MinEstimate    float64 `yaml:"min_estimate" mapstructure:"min_estimate"`
	MaxEstimate    float64 `yaml:"max_estimate" mapstructure:"max_estimate"`
	DefaultYear    int     `yaml:"default_year" mapstructure:"default_year"`
	AssumedDocType string  `yaml:"assumed_doc_type" mapstructure:"assumed_doc_type"`
	ReasonSuffix   string  `yaml:"reason_suffix" mapstructure:"reason_suffix"`
}

// TierConfig is one threshold tier. Tiers are checked in order; the last
// tier should have MinScore 0 so every record lands somewhere.
type TierConfig struct {
	Name           string `yaml:"name" mapstructure:"name"`
	MinScore       int    `yaml:"min_score" mapstructure:"min_score"`
	RequireContact bool   `yaml:"require_contact" mapstructure:"require_contact"`
}
