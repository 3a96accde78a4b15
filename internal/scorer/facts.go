package scorer

import (
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/note-leads/internal/classify"
	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/signal"
)

// Scorer scores records under one profile. It is safe for concurrent use;
// nothing in it is mutated after New.
type Scorer struct {
	profile config.ProfileConfig
	owners  *classify.OwnerClassifier
	roles   *classify.Taxonomy
}

// New builds a Scorer for p. Validate p first.
func New(p config.ProfileConfig) *Scorer {
	return &Scorer{
		profile: p,
		owners:  classify.NewOwnerClassifier(p.Keywords.Institutional, p.Keywords.OwnerType),
		roles:   classify.NewTaxonomy(p.Keywords),
	}
}

// Profile returns the profile the scorer was built from.
func (s *Scorer) Profile() config.ProfileConfig { return s.profile }

// NoteFacts are the typed signals read from one recorder row. Unparseable
// amounts and dates are absent, not zero.
type NoteFacts struct {
	LenderName    string
	OwnerType     model.OwnerType
	Amount        float64
	HasAmount     bool
	DocType       string
	SellerFinance bool
	DiscardDoc    bool
	Age           float64
	HasAge        bool
}

// NoteFacts derives the note signals from r. Ages are measured against now.
func (s *Scorer) NoteFacts(r model.Recording, now time.Time) NoteFacts {
	kw := s.profile.Keywords
	f := NoteFacts{
		LenderName: strings.TrimSpace(r.LenderName),
		DocType:    strings.TrimSpace(r.DocType),
	}
	f.OwnerType = s.owners.Classify(f.LenderName)
	f.Amount, f.HasAmount = signal.ParseAmount(r.LoanAmount)
	if t, ok := signal.ParseDate(r.RecordingDate); ok {
		f.Age, f.HasAge = signal.AgeYears(t, now), true
	}
	_, f.SellerFinance = classify.Match(f.DocType, kw.SellerFinanceDocs)
	_, f.DiscardDoc = classify.Match(f.DocType, kw.DiscardDocs)
	return f
}

// PropertyFacts are the typed signals read from one appraisal-roll record.
type PropertyFacts struct {
	OwnerName      string
	OwnerType      model.OwnerType
	Institutional  bool
	Complex        bool
	Absentee       bool
	Value          float64
	HasValue       bool
	Land           float64
	HasLand        bool
	Improvement    float64
	HasImprovement bool
	PropertyType   string
	// Count is how many properties the owner holds across the input.
	Count int
}

// PropertyFacts derives the property signals from p. count comes from the
// owner pre-pass; pass 1 when it did not run.
func (s *Scorer) PropertyFacts(p model.Property, count int) PropertyFacts {
	kw, lim := s.profile.Keywords, s.profile.Limits
	name := strings.TrimSpace(p.OwnerName)
	f := PropertyFacts{
		OwnerName:    name,
		PropertyType: strings.TrimSpace(p.PropertyType),
		Absentee:     signal.IsAbsentee(p.Situs(), p.Mailing()),
		Count:        count,
	}
	if s.profile.Mode == config.ModeFavorites {
		f.OwnerType = classify.QuickOwnerType(name)
	} else {
		f.OwnerType = s.owners.Classify(name)
	}
	_, f.Institutional = classify.Match(name, kw.Institutional)
	f.Complex = classify.IsComplexName(name, kw.ComplexName, lim.MaxNameLength, lim.MaxNameCommas)
	f.Value, f.HasValue = signal.ParseAmount(p.TotalValue)
	f.Land, f.HasLand = signal.ParseAmount(p.LandValue)
	f.Improvement, f.HasImprovement = signal.ParseAmount(p.ImprovementValue)
	return f
}

// EngagementFacts are the contact and ownership signals of a property lead.
type EngagementFacts struct {
	Email      bool
	Phone      bool
	Street     bool
	Absentee   signal.Strength
	Count      int
	Value      float64
	HasValue   bool
	SimpleName bool
}

// HasContact reports whether any direct contact channel is present.
func (f EngagementFacts) HasContact() bool { return f.Email || f.Phone }

// EngagementFacts derives the engagement signals from l.
func (s *Scorer) EngagementFacts(l model.Lead) EngagementFacts {
	kw, lim := s.profile.Keywords, s.profile.Limits
	poBox := kw.POBox
	if len(poBox) == 0 {
		poBox = signal.POBoxIndicators
	}
	f := EngagementFacts{
		Email:      signal.HasEmail(l.Email),
		Phone:      signal.HasPhone(l.Phone, lim.MinPhoneLength),
		Street:     signal.IsStreetAddress(l.MailingAddress, poBox),
		Absentee:   signal.AbsenteeStrength(l.Situs(), l.Mailing()),
		Count:      parseCount(l.PropertyCount),
		SimpleName: classify.IsSimpleName(l.Name(), kw.NameExclusions, lim.SimpleNameMaxLength),
	}
	f.Value, f.HasValue = signal.ParseAmount(l.TotalValue)
	return f
}

// parseCount reads a property count, defaulting to 1 when blank or invalid.
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
