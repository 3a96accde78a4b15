package enrich

import (
	"strings"

	"github.com/sells-group/note-leads/internal/classify"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/signal"
)

// ExportStats counts rows seen and written by an export.
type ExportStats struct {
	TotalRows int
	Written   int
	Skipped   int
}

// Deduper selects the rows uploaded for enrichment: one per lead id and one
// per name and mailing zip. Nameless rows are skipped.
type Deduper struct {
	ids     map[string]bool
	nameZip map[string]bool
	stats   ExportStats
}

// NewDeduper returns an empty deduper.
func NewDeduper() *Deduper {
	return &Deduper{ids: make(map[string]bool), nameZip: make(map[string]bool)}
}

// Upload returns the upload row for l, or false when l is skipped.
func (d *Deduper) Upload(l model.Lead) (model.EnrichmentUpload, bool) {
	d.stats.TotalRows++

	id := strings.TrimSpace(l.LeadID)
	name := strings.TrimSpace(l.Name())
	zip := strings.TrimSpace(l.MailingZip)
	key := strings.ToUpper(name) + "|" + zip
	if name == "" || d.ids[id] || d.nameZip[key] {
		d.stats.Skipped++
		return model.EnrichmentUpload{}, false
	}
	d.ids[id] = true
	d.nameZip[key] = true
	d.stats.Written++

	return model.EnrichmentUpload{
		LeadID:          id,
		FullName:        name,
		MailingAddress1: strings.TrimSpace(l.MailingAddress),
		MailingCity:     strings.TrimSpace(l.MailingCity),
		MailingState:    strings.TrimSpace(l.MailingState),
		MailingZip:      zip,
	}, true
}

// Stats returns the counts so far.
func (d *Deduper) Stats() ExportStats { return d.stats }

// Outreach returns the email-campaign row for l, or false when l has no
// usable email. Location prefers the mailing address over the situs.
func Outreach(l model.Lead) (model.OutreachUpload, bool) {
	email := strings.TrimSpace(l.Email)
	if !signal.HasEmail(email) {
		return model.OutreachUpload{}, false
	}
	first, last := classify.ParseName(l.Name())

	score := strings.TrimSpace(l.EngagementScore)
	if score == "" {
		score = "0"
	}
	why := strings.TrimSpace(l.WhyFlagged)
	if why == "" {
		why = strings.TrimSpace(l.EngagementReason)
	}

	return model.OutreachUpload{
		Email:           email,
		FirstName:       first,
		LastName:        last,
		City:            firstNonEmpty(l.MailingCity, l.SitusCity),
		State:           firstNonEmpty(l.MailingState, l.SitusState),
		Zip:             firstNonEmpty(l.MailingZip, l.SitusZip),
		EngagementScore: score,
		ValueBand:       signal.ValueBand(l.TotalValue),
		WhyFlagged:      why,
	}, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
