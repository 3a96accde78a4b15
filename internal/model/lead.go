package model

// NoteLead is an email-ready note lead built from a recorder row.
type NoteLead struct {
	LeadID             string `csv:"lead_id"`
	FirstName          string `csv:"first_name"`
	LastName           string `csv:"last_name"`
	FullName           string `csv:"full_name"`
	Email              string `csv:"email"`
	CompanyName        string `csv:"company_name"`
	OwnerType          string `csv:"owner_type"`
	MailingAddress1    string `csv:"mailing_address_1"`
	MailingCity        string `csv:"mailing_city"`
	MailingState       string `csv:"mailing_state"`
	MailingZip         string `csv:"mailing_zip"`
	PropertyAddress1   string `csv:"property_address_1"`
	PropertyCity       string `csv:"property_city"`
	PropertyState      string `csv:"property_state"`
	PropertyZip        string `csv:"property_zip"`
	County             string `csv:"county"`
	DocType            string `csv:"doc_type"`
	RecordingDate      string `csv:"recording_date"`
	OriginalLoanAmount string `csv:"original_loan_amount"`
	InterestRate       string `csv:"interest_rate"`
	LoanTermMonths     string `csv:"loan_term_months"`
	LienPosition       string `csv:"lien_position"`
	AccountID          string `csv:"account_id"`
	SourceFile         string `csv:"source_file"`
	LeadScore          string `csv:"lead_score"`
	WhyFlagged         string `csv:"why_flagged"`
}

// MailLead extends NoteLead with direct-mail label fields.
type MailLead struct {
	NoteLead
	MailingAddress2            string `csv:"mailing_address_2"`
	OwnerMailingNameLine       string `csv:"owner_mailing_name_line"`
	PropertyOwnerOccupiedGuess string `csv:"property_owner_occupied_guess"`
	EquityEstimate             string `csv:"equity_estimate"`
}

// NewMailLead derives the mail-ready row. The label line prefers the company.
func NewMailLead(n NoteLead, occupied, equity string) MailLead {
	nameLine := n.FullName
	if n.CompanyName != "" {
		nameLine = n.CompanyName
	}
	if occupied == "" {
		occupied = "UNKNOWN"
	}
	return MailLead{
		NoteLead:                   n,
		OwnerMailingNameLine:       nameLine,
		PropertyOwnerOccupiedGuess: occupied,
		EquityEstimate:             equity,
	}
}

// Lead is a property-derived outreach record. Later stages fill the
// embedded sections; every column is always written.
type Lead struct {
	LeadID             string `csv:"lead_id"`
	FullName           string `csv:"full_name"`
	CompanyName        string `csv:"company_name"`
	OwnerType          string `csv:"owner_type"`
	MailingAddress     string `csv:"mailing_address"`
	MailingCity        string `csv:"mailing_city"`
	MailingState       string `csv:"mailing_state"`
	MailingZip         string `csv:"mailing_zip"`
	SitusAddress       string `csv:"situs_address"`
	SitusCity          string `csv:"situs_city"`
	SitusState         string `csv:"situs_state"`
	SitusZip           string `csv:"situs_zip"`
	AccountID          string `csv:"account_id"`
	OwnerOccupiedGuess string `csv:"owner_occupied_guess"`
	LandValue          string `csv:"land_value"`
	ImprovementValue   string `csv:"improvement_value"`
	TotalValue         string `csv:"total_value"`
	PropertyType       string `csv:"property_type"`
	PropertyCount      string `csv:"property_count"`
	LeadScore          string `csv:"lead_score"`
	WhyFlagged         string `csv:"why_flagged"`
	DataLimitations    string `csv:"data_limitations"`
	Estimated          string `csv:"estimated"`
	Email              string `csv:"email"`
	Phone              string `csv:"phone"`
	Engagement
	Role
	Portfolio
}

// Engagement holds the engagement-refinement columns.
type Engagement struct {
	EngagementScore  string `csv:"engagement_score"`
	EngagementReason string `csv:"engagement_reason"`
	EquityEstimate   string `csv:"equity_estimate"`
	HasEmail         string `csv:"has_email"`
	HasPhone         string `csv:"has_phone"`
	ContactQuality   string `csv:"contact_quality"`
}

// Role holds the entity-role columns.
type Role struct {
	EntityRole        string `csv:"entity_role"`
	RoleScoreModifier string `csv:"role_score_modifier"`
	RoleReason        string `csv:"role_reason"`
}

// Portfolio holds the owner-group aggregate columns.
type Portfolio struct {
	PropertiesCount     string `csv:"properties_count"`
	TotalPortfolioValue string `csv:"total_portfolio_value"`
	AvgPropertyValue    string `csv:"avg_property_value"`
	PropertyIDs         string `csv:"property_ids"`
	PropertyAddresses   string `csv:"property_addresses"`
	MaxScore            string `csv:"max_score"`
	HasAnyEmail         string `csv:"has_any_email"`
	HasAnyPhone         string `csv:"has_any_phone"`
}

// Name returns the person name, falling back to the company name.
func (l Lead) Name() string {
	if l.FullName != "" {
		return l.FullName
	}
	return l.CompanyName
}

// EntityName returns the company name, falling back to the person name.
func (l Lead) EntityName() string {
	if l.CompanyName != "" {
		return l.CompanyName
	}
	return l.FullName
}

// Situs returns the physical property location.
func (l Lead) Situs() Location {
	return Location{Address: l.SitusAddress, City: l.SitusCity, State: l.SitusState, Zip: l.SitusZip}
}

// Mailing returns the owner's mailing location.
func (l Lead) Mailing() Location {
	return Location{Address: l.MailingAddress, City: l.MailingCity, State: l.MailingState, Zip: l.MailingZip}
}

// ActiveScore is the score later stages rank on: the engagement score once
// refinement has run, otherwise the lead score.
func (l Lead) ActiveScore() string {
	if l.EngagementScore != "" {
		return l.EngagementScore
	}
	return l.LeadScore
}

// EnrichmentUpload is one row sent to the contact-enrichment provider.
type EnrichmentUpload struct {
	LeadID          string `csv:"lead_id"`
	FullName        string `csv:"full_name"`
	MailingAddress1 string `csv:"mailing_address_1"`
	MailingCity     string `csv:"mailing_city"`
	MailingState    string `csv:"mailing_state"`
	MailingZip      string `csv:"mailing_zip"`
}

// EnrichmentResult is one row returned by the enrichment provider.
type EnrichmentResult struct {
	LeadID string `csv:"lead_id"`
	Email  string `csv:"email"`
	Phone  string `csv:"phone"`
}

// OutreachUpload is one row of the email-outreach upload.
type OutreachUpload struct {
	Email           string `csv:"email"`
	FirstName       string `csv:"first_name"`
	LastName        string `csv:"last_name"`
	City            string `csv:"city"`
	State           string `csv:"state"`
	Zip             string `csv:"zip"`
	EngagementScore string `csv:"engagement_score"`
	ValueBand       string `csv:"value_band"`
	WhyFlagged      string `csv:"why_flagged"`
}

// SetActiveScore overwrites whichever score ActiveScore reads.
func (l *Lead) SetActiveScore(s string) {
	if l.EngagementScore != "" {
		l.EngagementScore = s
		return
	}
	l.LeadScore = s
}
