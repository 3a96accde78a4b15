package model

// Recording is one recorder (deed/lien) row mapped onto canonical fields.
type Recording struct {
	RecordingDate   string
	DocType         string
	LenderName      string
	BorrowerName    string
	PropertyAddress string
	PropertyCity    string
	PropertyState   string
	PropertyZip     string
	LoanAmount      string
	InterestRate    string
	MaturityDate    string
	LoanTerm        string
	APN             string
}

// Field returns a pointer to the canonical field called name, or nil when
// name is not a canonical recording field.
func (r *Recording) Field(name string) *string {
	switch name {
	case "recording_date":
		return &r.RecordingDate
	case "doc_type":
		return &r.DocType
	case "lender_name":
		return &r.LenderName
	case "borrower_name":
		return &r.BorrowerName
	case "property_address":
		return &r.PropertyAddress
	case "property_city":
		return &r.PropertyCity
	case "property_state":
		return &r.PropertyState
	case "property_zip":
		return &r.PropertyZip
	case "loan_amount":
		return &r.LoanAmount
	case "interest_rate":
		return &r.InterestRate
	case "maturity_date":
		return &r.MaturityDate
	case "loan_term":
		return &r.LoanTerm
	case "apn":
		return &r.APN
	}
	return nil
}
