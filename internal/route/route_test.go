package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/scorer"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func profileScorer(t *testing.T, name string) *scorer.Scorer {
	t.Helper()
	p, ok := scorer.DefaultProfile(name)
	require.True(t, ok)
	return scorer.New(p)
}

func TestNote(t *testing.T) {
	s := profileScorer(t, scorer.ProfileNotes)
	lim := s.Profile().Limits

	tests := []struct {
		name       string
		rec        model.Recording
		wantTier   model.Tier
		wantReason string
	}{
		{"bank", model.Recording{LenderName: "WELLS FARGO BANK, N.A.", LoanAmount: "150000", RecordingDate: "2020-01-15"},
			model.TierDiscard, "Lender is a bank or large financial institution"},
		{"release doc", model.Recording{LenderName: "JOHN DOE", DocType: "RELEASE OF LIEN", LoanAmount: "150000"},
			model.TierDiscard, "Document type indicates release/satisfaction: RELEASE OF LIEN"},
		{"nothing useful", model.Recording{RecordingDate: "2020-01-15"},
			model.TierDiscard, "Missing all critical fields (loan_amount, lender_name, doc_type)"},
		{"too old wins over missing amount", model.Recording{LenderName: "JOHN DOE", RecordingDate: "2000-01-01"},
			model.TierDiscard, "Recording too old (25.4 years, max 20)"},
		{"missing amount", model.Recording{LenderName: "JOHN DOE", RecordingDate: "2020-01-15"},
			model.TierReview, "Missing loan_amount"},
		{"negative amount", model.Recording{LenderName: "JOHN DOE", LoanAmount: "-5", RecordingDate: "2020-01-15"},
			model.TierDiscard, "Invalid loan amount: -5.0"},
		{"zero amount", model.Recording{LenderName: "JOHN DOE", LoanAmount: "0", RecordingDate: "2020-01-15"},
			model.TierDiscard, "Invalid loan amount: 0.0"},
		{"too large", model.Recording{LenderName: "JOHN DOE", LoanAmount: "$750,000", RecordingDate: "2020-01-15"},
			model.TierReview, "Loan amount too large (750,000, max 500,000)"},
		{"ceiling is exclusive", model.Recording{LenderName: "JOHN DOE", LoanAmount: "500000", RecordingDate: "2020-01-15"},
			model.TierReview, "Loan amount too large (500,000, max 500,000)"},
		{"missing lender", model.Recording{DocType: "NOTE", LoanAmount: "150000", RecordingDate: "2020-01-15"},
			model.TierReview, "Missing lender_name"},
		{"missing date", model.Recording{LenderName: "JOHN DOE", LoanAmount: "150000", RecordingDate: "soon"},
			model.TierReview, "Missing or unparseable recording_date"},
		{"too recent", model.Recording{LenderName: "JOHN DOE", LoanAmount: "150000", RecordingDate: "2024-06-01"},
			model.TierReview, "Recording too recent (1.0 years, min 3)"},
		{"llc lead without preferred doc", model.Recording{LenderName: "ACME LLC", LoanAmount: "150000", RecordingDate: "2020-01-15", DocType: "ASSIGNMENT"},
			model.TierLead, "Meets all criteria for seller-finance note lead"},
		{"lead", model.Recording{LenderName: "SMITH, JOHN", LoanAmount: "150,000", RecordingDate: "2020-01-15"},
			model.TierLead, "Meets all criteria for seller-finance note lead"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Note(lim, s.NoteFacts(tt.rec, testNow))
			assert.Equal(t, tt.wantTier, d.Tier)
			assert.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

func TestNote_PrivateProfile(t *testing.T) {
	s := profileScorer(t, scorer.ProfilePrivateNotes)
	lim := s.Profile().Limits

	d := Note(lim, s.NoteFacts(model.Recording{LenderName: "ACME LLC", LoanAmount: "150000", RecordingDate: "2020-01-15", DocType: "ASSIGNMENT"}, testNow))
	assert.Equal(t, model.TierReview, d.Tier)
	assert.Equal(t, "LLC lender without preferred doc type: ASSIGNMENT", d.Reason)
	assert.Equal(t, "LLC", d.Label)

	d = Note(lim, s.NoteFacts(model.Recording{LenderName: "ACME LOAN SERVICER", LoanAmount: "150000"}, testNow))
	assert.Equal(t, model.TierDiscard, d.Tier)
	assert.Equal(t, "Lender is a bank or servicer", d.Reason)
	assert.Equal(t, "BANK", d.Label)

	d = Note(lim, s.NoteFacts(model.Recording{LenderName: "ACME LLC", LoanAmount: "150000", RecordingDate: "2020-01-15", DocType: "PURCHASE MONEY NOTE"}, testNow))
	assert.Equal(t, model.TierLead, d.Tier)
	assert.Equal(t, "Meets all criteria for private note lead", d.Reason)
}

func TestScenario_BankIsDiscardedWithZeroScore(t *testing.T) {
	s := profileScorer(t, scorer.ProfileNotes)
	f := s.NoteFacts(model.Recording{LenderName: "WELLS FARGO BANK, N.A.", LoanAmount: "150,000", RecordingDate: "2020-01-15"}, testNow)
	assert.Equal(t, model.OwnerBank, f.OwnerType)

	r := s.Note(f)
	assert.True(t, r.Excluded)
	assert.Equal(t, 0, r.Score)
	assert.Equal(t, model.TierDiscard, Note(s.Profile().Limits, f).Tier)
}

func TestScenario_PersonLead(t *testing.T) {
	s := profileScorer(t, scorer.ProfileNotes)
	rec := model.Recording{
		LenderName:    "SMITH, JOHN",
		LoanAmount:    "150,000",
		RecordingDate: testNow.AddDate(-5, 0, 0).Format("2006-01-02"),
	}
	f := s.NoteFacts(rec, testNow)
	assert.Equal(t, model.OwnerPerson, f.OwnerType)

	r := s.Note(f)
	assert.GreaterOrEqual(t, r.Score, 60)
	assert.Equal(t, model.TierLead, Note(s.Profile().Limits, f).Tier)

	// The same owner scored for outreach with an email lands in the top tier.
	eng := profileScorer(t, scorer.ProfileEngagement)
	lead := model.Lead{
		FullName:       "SMITH, JOHN",
		Email:          "john@example.com",
		MailingAddress: "12 OAK AVE",
		MailingCity:    "DALLAS",
		SitusAddress:   "1 ELM ST",
		SitusCity:      "AUSTIN",
		TotalValue:     "150000",
	}
	ef := eng.EngagementFacts(lead)
	er := eng.Engagement(ef)
	assert.GreaterOrEqual(t, er.Score, 60)
	assert.Equal(t, model.TierHigh, Engagement(eng.Profile().Tiers, er.Score, ef.HasContact()))
}

func prop(owner, value string) model.Property {
	return model.Property{
		AccountID:        "42",
		OwnerName:        owner,
		SitusAddress:     "1 ELM ST",
		MailingAddress:   "9 OAK AVE",
		PropertyType:     "R1",
		ImprovementValue: "150000",
		LandValue:        "50000",
		TotalValue:       value,
	}
}

func TestTarget(t *testing.T) {
	s := profileScorer(t, scorer.ProfileTargets)
	lim := s.Profile().Limits

	occupied := prop("JANE DOE", "300000")
	occupied.MailingAddress = occupied.SitusAddress

	tests := []struct {
		name       string
		p          model.Property
		onlyAbs    bool
		wantTier   model.Tier
		wantLabel  string
		wantReason string
	}{
		{"institutional", prop("US BANK NA", "300000"), false, model.TierDiscard, LabelInstitutional, "Institutional/bank owner"},
		{"no owner", prop("", "300000"), false, model.TierDiscard, "UNKNOWN", "Missing owner name"},
		{"not absentee", occupied, true, model.TierDiscard, "PERSON", "Not absentee owner (only_absentee=true)"},
		{"absentee filter off", occupied, false, model.TierTarget, "PERSON", ""},
		{"missing value", prop("JANE DOE", ""), false, model.TierReview, "PERSON", "Missing total_value"},
		{"invalid value", prop("JANE DOE", "0"), false, model.TierDiscard, "PERSON", "Invalid total_value: 0.0"},
		{"below", prop("ACME LLC", "99,500"), false, model.TierReview, "LLC", "Value below minimum (99,500 < 150,000)"},
		{"above", prop("DOE TRUST", "1200000"), false, model.TierReview, "TRUST", "Value above maximum (1,200,000 > 600,000)"},
		{"target", prop("JANE DOE", "600000"), false, model.TierTarget, "PERSON", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lim
			l.OnlyAbsentee = tt.onlyAbs
			d := Target(l, s.PropertyFacts(tt.p, 1))
			assert.Equal(t, tt.wantTier, d.Tier)
			assert.Equal(t, tt.wantLabel, d.Label)
			assert.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

func TestFavorite(t *testing.T) {
	s := profileScorer(t, scorer.ProfileFavorites)
	lim := s.Profile().Limits

	vacant := prop("JANE DOE", "300000")
	vacant.ImprovementValue = "9,999"
	noImprovement := prop("JANE DOE", "300000")
	noImprovement.ImprovementValue = ""
	commercial := prop("JANE DOE", "300000")
	commercial.PropertyType = "C1"
	bigLot := prop("JANE DOE", "450000")
	bigLot.LandValue = "350000"
	midLot := prop("JANE DOE", "450000")
	midLot.LandValue = "260000"

	tests := []struct {
		name       string
		p          model.Property
		wantTier   model.Tier
		wantLabel  string
		wantReason string
	}{
		{"institutional", prop("FANNIE MAE", "300000"), model.TierDiscard, LabelInstitutional, "Institutional/bank owner"},
		{"complex", prop("DOE JOHN ET AL", "300000"), model.TierDiscard, LabelComplex, "Complex owner name"},
		{"vacant", vacant, model.TierDiscard, LabelVacant, "Vacant land or minimal improvement"},
		{"no improvement", noImprovement, model.TierDiscard, LabelVacant, "Vacant land or minimal improvement"},
		{"commercial", commercial, model.TierDiscard, LabelNonResidential, "Non-residential property type: C1"},
		{"missing value", prop("JANE DOE", ""), model.TierReview, LabelUnknown, "Missing or invalid total_value"},
		{"over cap", prop("JANE DOE", "560000"), model.TierReview, LabelValue, "Value exceeds FHA cap (560,000 > 498,257)"},
		{"within buffer", prop("JANE DOE", "540000"), model.TierTarget, "PERSON", ""},
		{"big lot", bigLot, model.TierReview, LabelLotSize, "Lot size may exceed 0.5 acres (estimated 0.70 acres)"},
		{"mid lot passes", midLot, model.TierTarget, "PERSON", ""},
		{"llc target", prop("ACME LLC", "300000"), model.TierTarget, "LLC", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Favorite(lim, s.PropertyFacts(tt.p, 1))
			assert.Equal(t, tt.wantTier, d.Tier)
			assert.Equal(t, tt.wantLabel, d.Label)
			assert.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

func TestEngagement(t *testing.T) {
	p, _ := scorer.DefaultProfile(scorer.ProfileEngagement)
	tests := []struct {
		score   int
		contact bool
		want    model.Tier
	}{
		{100, true, model.TierHigh},
		{60, true, model.TierHigh},
		{60, false, model.TierMedium},
		{59, true, model.TierMedium},
		{50, false, model.TierMedium},
		{49, true, model.TierLow},
		{30, false, model.TierLow},
		{29, true, model.TierReview},
		{0, false, model.TierReview},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Engagement(p.Tiers, tt.score, tt.contact), "%d/%v", tt.score, tt.contact)
	}
	assert.Equal(t, model.TierReview, Engagement(nil, 100, true))
}

func TestRole(t *testing.T) {
	s := profileScorer(t, scorer.ProfileRoles)
	tests := []struct {
		name string
		lead model.Lead
		want model.Tier
	}{
		{"investor", model.Lead{CompanyName: "ACME HOLDINGS LLC"}, model.TierInvestor},
		{"trust", model.Lead{CompanyName: "DOE LIVING TRUST"}, model.TierInvestor},
		{"legal", model.Lead{CompanyName: "JONES ATTORNEY PLLC"}, model.TierLegal},
		{"bank", model.Lead{CompanyName: "FIRST CREDIT UNION"}, model.TierExcluded},
		{"government", model.Lead{CompanyName: "CITY OF AUSTIN"}, model.TierExcluded},
		{"individual", model.Lead{FullName: "JANE DOE", OwnerType: "PERSON"}, model.TierIndividual},
		{"unknown", model.Lead{CompanyName: "NOVA STAR LLC"}, model.TierIndividual},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Role(s.Role(tt.lead)))
		})
	}
}

func TestBuckets(t *testing.T) {
	assert.Equal(t, "200k-300k", Bucket(250000, 100000))
	assert.Equal(t, "0k-100k", Bucket(99999, 100000))
	assert.Empty(t, Bucket(1, 0))
	assert.Equal(t, []string{"200k-300k", "300k-400k", "400k-500k", "500k-600k"}, Buckets(150000, 600000, 100000))
	assert.Nil(t, Buckets(0, 100, 0))
}

func TestPartitionIsTotal(t *testing.T) {
	s := profileScorer(t, scorer.ProfileFavorites)
	lim := s.Profile().Limits
	owners := []string{"", "JANE DOE", "CHASE", "ACME LLC", "DOE ET AL"}
	values := []string{"", "0", "-1", "100", "498257", "600000", "x"}
	types := []string{"", "R1", "C"}
	valid := map[model.Tier]bool{model.TierTarget: true, model.TierReview: true, model.TierDiscard: true}
	for _, o := range owners {
		for _, v := range values {
			for _, pt := range types {
				p := prop(o, v)
				p.PropertyType = pt
				d := Favorite(lim, s.PropertyFacts(p, 1))
				assert.True(t, valid[d.Tier], "%q %q %q -> %s", o, v, pt, d.Tier)
				assert.NotEmpty(t, d.Label)
			}
		}
	}
}
