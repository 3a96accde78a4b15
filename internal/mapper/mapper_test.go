package mapper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/note-leads/internal/model"
)

func defaultOptions() Options {
	return Options{
		Threshold:         0.5,
		OptionalThreshold: 0.7,
		Optional:          []string{"interest_rate", "maturity_date", "loan_term"},
		Required:          []string{"lender_name", "loan_amount"},
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abcd", "bcde", 0.75},
		{"apn", "apr", 4.0 / 6.0},
		{"grantee", "grantor", 10.0 / 14.0},
		{"same", "same", 1},
		{"", "", 1},
		{"abc", "", 0},
		{"abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
			assert.InDelta(t, Ratio(tt.a, tt.b), Ratio(tt.b, tt.a), 1e-9)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "loan amount", Normalize("  Loan_Amount "))
	assert.Equal(t, "doc type", Normalize("DOC-TYPE"))
}

func TestMap_TypicalHeader(t *testing.T) {
	header := []string{
		"Recording Date", "Doc Type", "Lender", "Borrower", "Address",
		"City", "State", "Zip", "Loan Amount", "APN",
	}
	m := Map(header, defaultOptions())

	want := map[string]string{
		"recording_date":   "Recording Date",
		"doc_type":         "Doc Type",
		"lender_name":      "Lender",
		"borrower_name":    "Borrower",
		"property_address": "Address",
		"property_city":    "City",
		"property_state":   "State",
		"property_zip":     "Zip",
		"loan_amount":      "Loan Amount",
		"apn":              "APN",
	}
	for field, col := range want {
		got, ok := m.Column(field)
		assert.True(t, ok, field)
		assert.Equal(t, col, got, field)
	}
	assert.Equal(t, []string{"interest_rate", "maturity_date", "loan_term"}, m.Missing)
	assert.Empty(t, m.MissingRequired)
	assert.Len(t, m.Found, 10)
}

func TestMap_ExactNameBeatsAlias(t *testing.T) {
	m := Map([]string{"Amount", "loan-amount"}, defaultOptions())
	col, ok := m.Column("loan_amount")
	require.True(t, ok)
	assert.Equal(t, "loan-amount", col)
}

func TestMap_NoDoubleMapping(t *testing.T) {
	m := Map([]string{"Lender", "Grantee"}, defaultOptions())

	lender, _ := m.Column("lender_name")
	borrower, _ := m.Column("borrower_name")
	assert.Equal(t, "Lender", lender)
	assert.Equal(t, "Grantee", borrower)

	seen := map[string]bool{}
	for _, match := range m.Matches {
		assert.False(t, seen[match.Column], "column %q mapped twice", match.Column)
		seen[match.Column] = true
	}
	assert.Equal(t, []string{"loan_amount"}, m.MissingRequired)
}

func TestMap_OptionalThreshold(t *testing.T) {
	header := []string{"Loan Amount", "APN"}

	m := Map(header, defaultOptions())
	_, ok := m.Column("interest_rate")
	assert.False(t, ok)
	apn, _ := m.Column("apn")
	assert.Equal(t, "APN", apn)

	// Without the raised threshold "APN" is close enough to the "apr" alias
	// and interest_rate claims it first.
	opts := defaultOptions()
	opts.Optional = nil
	m = Map(header, opts)
	rate, _ := m.Column("interest_rate")
	assert.Equal(t, "APN", rate)
	_, ok = m.Column("apn")
	assert.False(t, ok)
}

func TestMap_EmptyHeader(t *testing.T) {
	m := Map(nil, defaultOptions())
	assert.Empty(t, m.Found)
	assert.Len(t, m.Missing, len(CanonicalFields))
	assert.Equal(t, []string{"lender_name", "loan_amount"}, m.MissingRequired)
}

func TestMapping_Recording(t *testing.T) {
	header := []string{"Lender", "Loan Amount", "Recording Date"}
	m := Map(header, defaultOptions())

	r := m.Recording([]string{"SMITH, JOHN", "150,000", "2020-01-15", "trailing"})
	assert.Equal(t, model.Recording{
		LenderName:    "SMITH, JOHN",
		LoanAmount:    "150,000",
		RecordingDate: "2020-01-15",
	}, r)

	r = m.Recording([]string{"SHORT ROW"})
	assert.Equal(t, "SHORT ROW", r.LenderName)
	assert.Empty(t, r.LoanAmount)
}

func TestMapping_SaveLoad(t *testing.T) {
	header := []string{"Lender", "Loan Amount", "Recording Date"}
	m := Map(header, defaultOptions())

	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, m.Save(path))

	loaded, err := Load(path, header, defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, m.Found, loaded.Found)
	assert.Equal(t, m.Missing, loaded.Missing)

	// A saved column the new header lacks is reported missing.
	loaded, err = Load(path, []string{"Lender", "Recording Date"}, defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"loan_amount"}, loaded.MissingRequired)
	assert.Contains(t, loaded.Missing, "loan_amount")
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"), nil, defaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper: read")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("lender_name: [unterminated"), 0o644))
	_, err = Load(bad, nil, defaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper: parse mapping")
}
