// Package enrich merges provider contact results back into lead files and
// builds the upload files sent to the enrichment and outreach providers.
package enrich

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/note-leads/internal/fetcher"
	"github.com/sells-group/note-leads/internal/model"
)

// Lookup maps a lead id to the contact fields returned for it.
type Lookup map[string]model.EnrichmentResult

// LoadLookup reads provider results keyed by lead_id. Rows without an id are
// skipped; a repeated id keeps the last row.
func LoadLookup(ctx context.Context, path string, opts fetcher.CSVOptions) (Lookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: open lookup %s", path)
	}
	defer f.Close()

	opts.TrimSpace = true
	lk := make(Lookup)
	_, err = fetcher.DecodeCSV(ctx, f, opts, func(_ int, r model.EnrichmentResult) error {
		if r.LeadID != "" {
			lk[r.LeadID] = r
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: read lookup %s", path)
	}
	return lk, nil
}

// Stats counts the outcome of a merge.
type Stats struct {
	TotalRows int
	Matched   int
	Unmatched int
	WithEmail int
	WithPhone int
}

// Merger fills the email and phone columns of lead rows from a Lookup. The
// lead file may have any columns; email and phone are appended to the header
// when it lacks them. Rows are never dropped.
type Merger struct {
	lookup Lookup
	header []string
	width  int
	id     int
	email  int
	phone  int
	stats  Stats
}

// NewMerger prepares a merge for rows with the given header.
func NewMerger(header []string, lookup Lookup) *Merger {
	m := &Merger{lookup: lookup, id: -1}
	m.header = append([]string(nil), header...)
	for i, col := range header {
		if strings.TrimSpace(col) == "lead_id" && m.id < 0 {
			m.id = i
		}
	}
	m.email = m.column("email")
	m.phone = m.column("phone")
	m.width = len(m.header)
	return m
}

func (m *Merger) column(name string) int {
	for i, col := range m.header {
		if strings.TrimSpace(col) == name {
			return i
		}
	}
	m.header = append(m.header, name)
	return len(m.header) - 1
}

// HasLeadID reports whether the header carries a lead_id column. Without
// one every row is unmatched.
func (m *Merger) HasLeadID() bool { return m.id >= 0 }

// Header is the output header.
func (m *Merger) Header() []string { return m.header }

// Merge returns row widened to the output header with contact fields filled.
// A non-empty lookup value replaces the row's value; an empty one leaves it.
// Cells past the header are kept.
func (m *Merger) Merge(row []string) []string {
	out := make([]string, max(len(row), m.width))
	copy(out, row)
	m.stats.TotalRows++

	var id string
	if m.id >= 0 {
		id = strings.TrimSpace(out[m.id])
	}
	r, ok := m.lookup[id]
	if !ok || id == "" {
		m.stats.Unmatched++
		return out
	}
	m.stats.Matched++
	if r.Email != "" {
		out[m.email] = r.Email
		m.stats.WithEmail++
	}
	if r.Phone != "" {
		out[m.phone] = r.Phone
		m.stats.WithPhone++
	}
	return out
}

// Stats returns the counts so far.
func (m *Merger) Stats() Stats { return m.stats }
