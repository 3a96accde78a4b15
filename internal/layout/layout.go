// Package layout describes fixed-width record layouts: where each field sits
// on a line, which fields are assembled from parts, and which are numeric.
package layout

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Field is one positional field. Start and End are 1-based and inclusive.
type Field struct {
	Name    string `yaml:"name"`
	Start   int    `yaml:"start"`
	End     int    `yaml:"end"`
	Numeric bool   `yaml:"numeric,omitempty"`
	// MaxLen truncates the trimmed value (state fields keep 2 characters).
	MaxLen int `yaml:"max_len,omitempty"`
}

// Composite is an output field assembled from other fields: each part is
// extracted, empty parts are skipped, and the rest are joined by one space.
type Composite struct {
	Name  string   `yaml:"name"`
	Parts []string `yaml:"parts"`
}

// Layout is a versioned field table for one fixed-width file type.
type Layout struct {
	Version    string      `yaml:"version"`
	Fields     []Field     `yaml:"fields"`
	Composites []Composite `yaml:"composites,omitempty"`
}

// Default returns the built-in layout for the county appraisal-roll export
// (Legacy 8.0.30 appraisal export, PROP.TXT).
func Default() *Layout {
	return &Layout{
		Version: "legacy-8.0.30",
		Fields: []Field{
			{Name: "account_id", Start: 1, End: 12},
			{Name: "owner_name", Start: 609, End: 678},
			{Name: "situs_city", Start: 1110, End: 1139},
			// The export has no situs state; the owner address state stands in.
			{Name: "situs_state", Start: 924, End: 925, MaxLen: 2},
			{Name: "situs_zip", Start: 1140, End: 1149},
			{Name: "mailing_address", Start: 694, End: 753},
			{Name: "mailing_city", Start: 874, End: 923},
			{Name: "mailing_state", Start: 924, End: 925, MaxLen: 2},
			{Name: "mailing_zip", Start: 979, End: 983},
			{Name: "property_type", Start: 13, End: 17},
			{Name: "land_value", Start: 1796, End: 1810, Numeric: true},
			{Name: "improvement_value", Start: 1826, End: 1840, Numeric: true},
			{Name: "total_value", Start: 1916, End: 1930, Numeric: true},
			{Name: "assessed_year", Start: 18, End: 22},
			{Name: "situs_street_prefx", Start: 1040, End: 1049},
			{Name: "situs_street", Start: 1050, End: 1099},
			{Name: "situs_street_suffix", Start: 1100, End: 1109},
		},
		Composites: []Composite{
			{Name: "situs_address", Parts: []string{"situs_street_prefx", "situs_street", "situs_street_suffix"}},
		},
	}
}

// MaxEnd is the minimum acceptable line length: the largest End of any field,
// including fields that only feed composites.
func (l *Layout) MaxEnd() int {
	maxEnd := 0
	for _, f := range l.Fields {
		if f.End > maxEnd {
			maxEnd = f.End
		}
	}
	return maxEnd
}

// Field returns the field called name.
func (l *Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks positions, name uniqueness, and composite parts.
func (l *Layout) Validate() error {
	var errs []string

	if len(l.Fields) == 0 {
		errs = append(errs, "no fields declared")
	}

	seen := make(map[string]bool, len(l.Fields))
	for _, f := range l.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Sprintf("field at %d-%d has no name", f.Start, f.End))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Sprintf("duplicate field %q", f.Name))
		}
		seen[f.Name] = true
		if f.Start < 1 {
			errs = append(errs, fmt.Sprintf("field %q: start must be >= 1", f.Name))
		}
		if f.End < f.Start {
			errs = append(errs, fmt.Sprintf("field %q: end %d before start %d", f.Name, f.End, f.Start))
		}
		if f.MaxLen < 0 {
			errs = append(errs, fmt.Sprintf("field %q: max_len must be >= 0", f.Name))
		}
	}

	for _, c := range l.Composites {
		if seen[c.Name] {
			errs = append(errs, fmt.Sprintf("composite %q shadows a field", c.Name))
		}
		if len(c.Parts) == 0 {
			errs = append(errs, fmt.Sprintf("composite %q has no parts", c.Name))
		}
		for _, p := range c.Parts {
			if !seen[p] {
				errs = append(errs, fmt.Sprintf("composite %q: part %q not declared", c.Name, p))
			}
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("layout: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadYAML reads and validates a layout file.
func LoadYAML(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layout: read %s", path)
	}

	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, eris.Wrap(err, "layout: parse yaml")
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Save writes the layout as YAML.
func (l *Layout) Save(path string) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return eris.Wrap(err, "layout: marshal yaml")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "layout: write %s", path)
	}
	return nil
}

// Load returns the layout at path, or the built-in default when path is
// empty. Spreadsheet paths are imported from sheet.
func Load(path, sheet string) (*Layout, error) {
	switch {
	case path == "":
		return Default(), nil
	case strings.HasSuffix(strings.ToLower(path), ".xlsx"):
		return LoadXLSX(path, sheet)
	default:
		return LoadYAML(path)
	}
}
