// Package estimate builds speculative note leads from appraisal-roll records.
// A property owner is treated as a possible note holder with a loan of a
// fixed fraction of the assessed value, recorded on January 1 of the
// assessment year. Every lead it emits is marked as estimated and scored
// with the note scorer; it never feeds the verified-data outputs.
package estimate

import (
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/note-leads/internal/classify"
	"github.com/sells-group/note-leads/internal/identity"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/scorer"
	"github.com/sells-group/note-leads/internal/signal"
)

// Lead is an email-ready note lead derived from property data.
type Lead struct {
	model.NoteLead
	Estimated string `csv:"estimated"`
}

// MailLead is the mail-ready form of Lead.
type MailLead struct {
	model.MailLead
	Estimated string `csv:"estimated"`
}

// Reasons a property yields no lead.
const (
	SkipNoOwner  = "missing owner name"
	SkipBank     = "bank owner"
	SkipNoValue  = "missing total_value"
	SkipRange    = "estimated loan out of range"
	SkipLowScore = "score below minimum"
)

// Estimator turns properties into estimated note leads under an estimate
// profile.
type Estimator struct {
	sc  *scorer.Scorer
	now time.Time
}

// New returns an Estimator scoring with sc and measuring ages against now.
func New(sc *scorer.Scorer, now time.Time) *Estimator {
	return &Estimator{sc: sc, now: now}
}

// Estimate builds the lead for p. When p yields no lead, skip names why.
func (e *Estimator) Estimate(p model.Property, sourceFile string) (lead Lead, score int, skip string) {
	lim := e.sc.Profile().Limits
	owner := strings.TrimSpace(p.OwnerName)
	if owner == "" {
		return Lead{}, 0, SkipNoOwner
	}

	total, ok := signal.ParseAmount(p.TotalValue)
	if !ok || total == 0 {
		return Lead{}, 0, SkipNoValue
	}
	loan := total / lim.EstimateRatio
	if loan > lim.MaxEstimate || loan < lim.MinEstimate {
		return Lead{}, 0, SkipRange
	}
	loanStr := strconv.Itoa(int(loan))
	date := recordingDate(p.AssessedYear, lim.DefaultYear)

	facts := e.sc.NoteFacts(model.Recording{
		LenderName:    owner,
		DocType:       lim.AssumedDocType,
		LoanAmount:    loanStr,
		RecordingDate: date,
	}, e.now)
	if facts.OwnerType == model.OwnerBank {
		return Lead{}, 0, SkipBank
	}
	res := e.sc.Note(facts)
	if res.Score < lim.MinScore {
		return Lead{}, res.Score, SkipLowScore
	}

	first, last := classify.ParseName(owner)
	_, company := classify.SplitOwner(owner, facts.OwnerType)
	n := model.NoteLead{
		LeadID:             identity.NoteLeadID(owner, p.MailingZip, loanStr, date),
		FirstName:          first,
		LastName:           last,
		FullName:           owner,
		CompanyName:        company,
		OwnerType:          string(facts.OwnerType),
		MailingAddress1:    strings.TrimSpace(p.MailingAddress),
		MailingCity:        strings.TrimSpace(p.MailingCity),
		MailingState:       strings.TrimSpace(p.MailingState),
		MailingZip:         strings.TrimSpace(p.MailingZip),
		PropertyAddress1:   strings.TrimSpace(p.SitusAddress),
		PropertyCity:       strings.TrimSpace(p.SitusCity),
		PropertyState:      strings.TrimSpace(p.SitusState),
		PropertyZip:        strings.TrimSpace(p.SitusZip),
		DocType:            lim.AssumedDocType,
		RecordingDate:      date,
		OriginalLoanAmount: loanStr,
		AccountID:          strings.TrimSpace(p.AccountID),
		SourceFile:         sourceFile,
		LeadScore:          strconv.Itoa(res.Score),
		WhyFlagged:         res.Why() + lim.ReasonSuffix,
	}
	return Lead{NoteLead: n, Estimated: "Y"}, res.Score, ""
}

// Mail derives the mail-ready row. The label line is always the owner name.
func Mail(l Lead) MailLead {
	m := model.NewMailLead(l.NoteLead, "UNKNOWN", "")
	m.OwnerMailingNameLine = l.FullName
	return MailLead{MailLead: m, Estimated: l.Estimated}
}

// recordingDate uses the last four digits of the assessment year ("02023")
// as January 1 of that year.
func recordingDate(assessedYear string, defaultYear int) string {
	year := defaultYear
	if s := strings.TrimSpace(assessedYear); len(s) >= 4 {
		if y, err := strconv.Atoi(s[len(s)-4:]); err == nil && y > 0 {
			year = y
		}
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
