// Package mapper maps arbitrary CSV headers onto the canonical recording
// fields by normalised string similarity.
package mapper

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/note-leads/internal/model"
)

// Field is a canonical field and the source-column spellings it answers to.
type Field struct {
	Name    string
	Aliases []string
}

// CanonicalFields is the recording vocabulary in mapping order. Earlier
// fields claim columns first.
var CanonicalFields = []Field{
	{"recording_date", []string{"recording date", "record date", "date recorded", "filing date", "doc date"}},
	{"doc_type", []string{"document type", "instrument type", "doc type", "instrument", "type"}},
	{"lender_name", []string{"lender", "beneficiary", "mortgagee", "grantee", "payee", "creditor"}},
	{"borrower_name", []string{"borrower", "grantor", "trustor", "mortgagor", "debtor", "obligor"}},
	{"property_address", []string{"property address", "situs address", "address", "property location", "situs"}},
	{"property_city", []string{"city", "property city", "situs city"}},
	{"property_state", []string{"state", "property state", "situs state"}},
	{"property_zip", []string{"zip", "zip code", "postal code", "property zip", "situs zip"}},
	{"loan_amount", []string{"loan amount", "principal", "original principal", "amount", "loan value", "face amount"}},
	{"interest_rate", []string{"interest rate", "rate", "apr", "interest"}},
	{"maturity_date", []string{"maturity date", "maturity", "due date", "payoff date"}},
	{"loan_term", []string{"loan term", "term", "loan period", "months", "years"}},
	{"apn", []string{"apn", "parcel id", "parcel_id", "account id", "account_id", "parcel number", "assessor parcel number"}},
}

// Options tunes the mapper.
type Options struct {
	Threshold         float64
	OptionalThreshold float64
	// Optional fields need OptionalThreshold; they are prone to false positives.
	Optional []string
	Required []string
	// Fields overrides CanonicalFields when set.
	Fields []Field
}

// Match is one accepted field mapping.
type Match struct {
	Field  string  `yaml:"field"`
	Column string  `yaml:"column"`
	Score  float64 `yaml:"score"`
}

// Mapping is the outcome of mapping one header.
type Mapping struct {
	Matches         []Match
	Found           []string
	Missing         []string
	MissingRequired []string

	columns map[string]string
	index   map[string]int
}

// Normalize lowercases a column name and turns '_' and '-' into spaces.
func Normalize(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.NewReplacer("_", " ", "-", " ").Replace(col)
}

// Map assigns each canonical field, in order, the best unused header column.
// An exact normalised match wins outright; otherwise the highest similarity
// against any alias or the field name itself, if it clears the threshold.
func Map(header []string, opts Options) *Mapping {
	fields := opts.Fields
	if len(fields) == 0 {
		fields = CanonicalFields
	}
	optional := toSet(opts.Optional)

	m := newMapping(header)
	used := make(map[string]bool)

	for _, f := range fields {
		bestCol, bestScore := "", 0.0
		canonical := Normalize(f.Name)

		for _, col := range header {
			if used[col] {
				continue
			}
			norm := Normalize(col)
			if norm == canonical {
				bestCol, bestScore = col, 1
				break
			}
			for _, alias := range f.Aliases {
				if s := Ratio(norm, Normalize(alias)); s > bestScore {
					bestCol, bestScore = col, s
				}
			}
			if s := Ratio(norm, canonical); s > bestScore {
				bestCol, bestScore = col, s
			}
		}

		threshold := opts.Threshold
		if optional[f.Name] {
			threshold = opts.OptionalThreshold
		}
		if bestCol != "" && bestScore >= threshold {
			used[bestCol] = true
			m.add(Match{Field: f.Name, Column: bestCol, Score: bestScore})
			continue
		}
		m.Missing = append(m.Missing, f.Name)
	}

	m.checkRequired(opts.Required)
	return m
}

func newMapping(header []string) *Mapping {
	m := &Mapping{
		columns: make(map[string]string),
		index:   make(map[string]int, len(header)),
	}
	for i, col := range header {
		if _, dup := m.index[col]; !dup {
			m.index[col] = i
		}
	}
	return m
}

func (m *Mapping) add(match Match) {
	m.Matches = append(m.Matches, match)
	m.Found = append(m.Found, match.Field)
	m.columns[match.Field] = match.Column
}

func (m *Mapping) checkRequired(required []string) {
	m.MissingRequired = nil
	for _, f := range required {
		if _, ok := m.columns[f]; !ok {
			m.MissingRequired = append(m.MissingRequired, f)
		}
	}
}

// Column returns the source column mapped to a canonical field.
func (m *Mapping) Column(field string) (string, bool) {
	col, ok := m.columns[field]
	return col, ok
}

// Get returns the value of a canonical field in row, or "" when the field is
// unmapped or the row is too short.
func (m *Mapping) Get(row []string, field string) string {
	col, ok := m.columns[field]
	if !ok {
		return ""
	}
	i := m.index[col]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// Recording projects a source row onto the canonical recording fields.
func (m *Mapping) Recording(row []string) model.Recording {
	var r model.Recording
	for field := range m.columns {
		if p := r.Field(field); p != nil {
			*p = m.Get(row, field)
		}
	}
	return r
}

// Save writes the field→column mapping as YAML.
func (m *Mapping) Save(path string) error {
	out := make(map[string]string, len(m.columns))
	for k, v := range m.columns {
		out[k] = v
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return eris.Wrap(err, "mapper: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "mapper: write %s", path)
	}
	return nil
}

// Load reads a saved mapping and binds it to header. Entries naming a
// column the header lacks are reported missing.
func Load(path string, header []string, opts Options) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "mapper: read %s", path)
	}
	var saved map[string]string
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return nil, eris.Wrap(err, "mapper: parse mapping")
	}

	fields := opts.Fields
	if len(fields) == 0 {
		fields = CanonicalFields
	}

	m := newMapping(header)
	for _, f := range fields {
		col, ok := saved[f.Name]
		if _, present := m.index[col]; !ok || !present {
			m.Missing = append(m.Missing, f.Name)
			continue
		}
		m.add(Match{Field: f.Name, Column: col, Score: 1})
	}
	m.checkRequired(opts.Required)
	return m, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
