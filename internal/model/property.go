package model

// Property is one appraisal-roll record after fixed-width extraction.
// Every column is always present; missing values are empty strings.
type Property struct {
	AccountID        string `csv:"account_id"`
	OwnerName        string `csv:"owner_name"`
	SitusAddress     string `csv:"situs_address"`
	SitusCity        string `csv:"situs_city"`
	SitusState       string `csv:"situs_state"`
	SitusZip         string `csv:"situs_zip"`
	MailingAddress   string `csv:"mailing_address"`
	MailingCity      string `csv:"mailing_city"`
	MailingState     string `csv:"mailing_state"`
	MailingZip       string `csv:"mailing_zip"`
	PropertyType     string `csv:"property_type"`
	LandValue        string `csv:"land_value"`
	ImprovementValue string `csv:"improvement_value"`
	TotalValue       string `csv:"total_value"`
	AssessedYear     string `csv:"assessed_year"`
}

// PropertyColumns is the declared column order of Property.
var PropertyColumns = []string{
	"account_id", "owner_name",
	"situs_address", "situs_city", "situs_state", "situs_zip",
	"mailing_address", "mailing_city", "mailing_state", "mailing_zip",
	"property_type", "land_value", "improvement_value", "total_value", "assessed_year",
}

// PropertyFromFields builds a Property from extracted named fields.
// Unknown names are ignored and absent names stay empty.
func PropertyFromFields(fields map[string]string) Property {
	return Property{
		AccountID:        fields["account_id"],
		OwnerName:        fields["owner_name"],
		SitusAddress:     fields["situs_address"],
		SitusCity:        fields["situs_city"],
		SitusState:       fields["situs_state"],
		SitusZip:         fields["situs_zip"],
		MailingAddress:   fields["mailing_address"],
		MailingCity:      fields["mailing_city"],
		MailingState:     fields["mailing_state"],
		MailingZip:       fields["mailing_zip"],
		PropertyType:     fields["property_type"],
		LandValue:        fields["land_value"],
		ImprovementValue: fields["improvement_value"],
		TotalValue:       fields["total_value"],
		AssessedYear:     fields["assessed_year"],
	}
}

// Location is the address view the absentee signals compare.
type Location struct {
	Address string
	City    string
	State   string
	Zip     string
}

// Situs returns the physical property location.
func (p Property) Situs() Location {
	return Location{Address: p.SitusAddress, City: p.SitusCity, State: p.SitusState, Zip: p.SitusZip}
}

// Mailing returns the owner's mailing location.
func (p Property) Mailing() Location {
	return Location{Address: p.MailingAddress, City: p.MailingCity, State: p.MailingState, Zip: p.MailingZip}
}

// ErrorEntry is one row of a companion error stream.
type ErrorEntry struct {
	LineNumber  int    `csv:"line_number"`
	LineContent string `csv:"line_content"`
	ErrorReason string `csv:"error_reason"`
}
