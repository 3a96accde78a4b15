package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/model"
)

func testKeywords() config.KeywordConfig {
	return config.KeywordConfig{
		Institutional: []string{
			"BANK", "N.A.", "MORTGAGE", "SERVICING", "WELLS FARGO", "WELLS",
			"CHASE", "CITI", "PNC", "FHA", "VA LOAN", "USDA",
		},
		OwnerType: config.OwnerTypeConfig{
			Trust:       []string{"TRUST", "TRUSTEE", "ESTATE"},
			LLCSuffixes: []string{"LLC", "L.L.C.", "L L C"},
			CorporateSuffixes: []string{
				"INC", "INCORPORATED", "CORP", "CORPORATION", "LTD", "LIMITED",
				"LP", "L.P.", "LLP", "L.L.P.", "PC", "P.C.", "PLLC",
			},
			OrganizationWords:  []string{"COMPANY", "GROUP", "HOLDINGS", "PROPERTIES", "INVESTMENTS"},
			MaxPersonNameChars: 50,
		},
		Taxonomy: []config.CategoryConfig{
			{Category: "BANK_INSTITUTION", Label: "bank", Keywords: []string{"BANK", "N.A.", "CREDIT UNION", "MORTGAGE", "SERVICING", "FNMA", "FREDDIE", "FHA", "VA", "USDA"}},
			{Category: "GOVERNMENT_ENTITY", Label: "government", Keywords: []string{"CITY OF", "COUNTY OF", "STATE OF", "AUTHORITY", "DISTRICT"}},
			{Category: "UTILITY_OR_NONPROFIT", Label: "utility", Keywords: []string{"UTILITY", "ELECTRIC", "WATER", "SEWER", "FOUNDATION", "CHURCH"}},
			{Category: "TRUST_ENTITY", Label: "trust", Keywords: []string{"TRUST", "ESTATE", "FAMILY TRUST", "LIVING TRUST"}},
			{Category: "INVESTOR_ENTITY", Label: "investor", Keywords: []string{"INVEST", "CAPITAL", "HOLDINGS", "EQUITY", "PARTNERS", "GROUP", "VENTURES", "PROPERTIES", "REAL ESTATE", "DEVELOPMENT"}},
			{Category: "LEGAL_ENTITY", Label: "legal", Keywords: []string{"LAW", "ATTORNEY", "ESQ", "LEGAL", "COUNSEL", "PLLC"}},
		},
		EntityIndicators: []string{"LLC", "INC", "CORP", "LTD", "LP", "LLP", "PC", "PA", "CO", "COMPANY"},
		MaxPersonTokens:  5,
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		want     string
		wantOK   bool
	}{
		{"first in list order", "WELLS FARGO BANK, N.A.", []string{"BANK", "N.A."}, "BANK", true},
		{"case insensitive", "citibank", []string{"CITIBANK"}, "CITIBANK", true},
		{"short keyword needs whole token", "NOVA HOLDINGS", []string{"VA"}, "", false},
		{"short keyword as token", "VA LOAN TRUST", []string{"VA"}, "VA", true},
		{"dotted short keyword", "FIRST BANK N.A.", []string{"NA"}, "NA", true},
		{"ampersand token", "BB&T", []string{"BB&T"}, "BB&T", true},
		{"long keyword substring", "ACME INVESTMENTS", []string{"INVEST"}, "INVEST", true},
		{"empty text", "", []string{"BANK"}, "", false},
		{"empty keyword ignored", "ANYTHING", []string{""}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(tt.text, tt.keywords)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchTokens(t *testing.T) {
	_, ok := MatchTokens("ACME HOLDINGS L.L.C.", []string{"LLC"})
	assert.True(t, ok)
	_, ok = MatchTokens("ACME L L C", []string{"L L C"})
	assert.True(t, ok)
	_, ok = MatchTokens("SMITHLLC", []string{"LLC"})
	assert.False(t, ok)
	_, ok = MatchTokens("", []string{"LLC"})
	assert.False(t, ok)
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"WELLS", "FARGO", "BANK", "NA"}, Tokens("Wells Fargo Bank, N.A."))
	assert.Equal(t, []string{"US", "BANK"}, Tokens("U.S. BANK"))
	assert.Empty(t, Tokens(" , . "))
}

func TestTaxonomy_Classify(t *testing.T) {
	tax := NewTaxonomy(testKeywords())

	tests := []struct {
		name       string
		input      string
		hint       bool
		want       model.Category
		wantReason string
	}{
		{"empty", "", false, model.CategoryUnknown, "no name provided"},
		{"blank", "   ", true, model.CategoryUnknown, "no name provided"},
		{"bank", "WELLS FARGO BANK, N.A.", false, model.CategoryBank, "bank keyword: BANK"},
		{"government", "CITY OF AUSTIN", false, model.CategoryGovernment, "government keyword: CITY OF"},
		{"utility", "FIRST BAPTIST CHURCH", false, model.CategoryUtility, "utility keyword: CHURCH"},
		{"trust", "SMITH FAMILY TRUST", false, model.CategoryTrust, "trust keyword: TRUST"},
		{"trust outranks investor", "REAL ESTATE INVESTORS GROUP", false, model.CategoryTrust, "trust keyword: ESTATE"},
		{"investor", "ACME CAPITAL LLC", false, model.CategoryInvestor, "investor keyword: CAPITAL"},
		{"legal", "JONES LAW FIRM", false, model.CategoryLegal, "legal keyword: LAW"},
		{"law inside a word", "LAWSON, MARY", false, model.CategoryIndividual, "appears to be individual person"},
		{"person hint", "JOHN SMITH", true, model.CategoryIndividual, "owner_type=PERSON, no entity keywords"},
		{"entity indicator", "NOVA STAR LLC", true, model.CategoryUnknown, "no matching keywords or patterns"},
		{"too many words", "A B C D E F", false, model.CategoryUnknown, "no matching keywords or patterns"},
		{"too many words with hint", "A B C D E F", true, model.CategoryIndividual, "owner_type=PERSON, no entity keywords"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tax.Classify(tt.input, tt.hint)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestTaxonomy_Total(t *testing.T) {
	tax := NewTaxonomy(testKeywords())
	inputs := []string{"", " ", "!!!", "ÄÖÜ ÉÈ", "\x00", strings.Repeat("X ", 500), "&&&", "..."}
	for _, in := range inputs {
		for _, hint := range []bool{true, false} {
			got := tax.Classify(in, hint)
			assert.True(t, model.ValidCategory(got.Category), "%q", in)
			assert.NotEmpty(t, got.Reason)
		}
	}
}

func TestTaxonomy_DefaultLabel(t *testing.T) {
	tax := NewTaxonomy(config.KeywordConfig{
		Taxonomy: []config.CategoryConfig{{Category: "LEGAL_ENTITY", Keywords: []string{"ATTORNEY"}}},
	})
	got := tax.Classify("ANN LEE ATTORNEY", false)
	assert.Equal(t, "legal_entity keyword: ATTORNEY", got.Reason)
}

func TestOwnerClassifier(t *testing.T) {
	kw := testKeywords()
	c := NewOwnerClassifier(kw.Institutional, kw.OwnerType)

	tests := []struct {
		input string
		want  model.OwnerType
	}{
		{"", model.OwnerUnknown},
		{"WELLS FARGO BANK, N.A.", model.OwnerBank},
		{"SMITH, JOHN", model.OwnerPerson},
		{"SMITH FAMILY TRUST", model.OwnerTrust},
		{"ESTATE OF MARY JONES", model.OwnerTrust},
		{"ACME HOLDINGS L.L.C.", model.OwnerLLC},
		{"ACME L L C", model.OwnerLLC},
		{"BLUE SKY INC", model.OwnerLLC},
		{"DOE & DOE, P.C.", model.OwnerLLC},
		{"JOHN DOE", model.OwnerPerson},
		{"JOHN INCE", model.OwnerPerson},
		{"PINE HOLDINGS", model.OwnerUnknown},
		{"ALEXANDER MAXIMILIAN FITZGERALD WORTHINGTON THE THIRD", model.OwnerUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.input))
		})
	}
	assert.True(t, c.IsBank("Chase Home Finance"))
	assert.False(t, c.IsBank("JOHN DOE"))
}

func TestQuickOwnerType(t *testing.T) {
	assert.Equal(t, model.OwnerLLC, QuickOwnerType("Acme Llc"))
	assert.Equal(t, model.OwnerTrust, QuickOwnerType("DOE LIVING TRUST"))
	assert.Equal(t, model.OwnerPerson, QuickOwnerType("JANE DOE"))
}

func TestParseName(t *testing.T) {
	tests := []struct {
		in, first, last string
	}{
		{"SMITH, JOHN", "JOHN", "SMITH"},
		{"SMITH, JOHN, JR", "JOHN, JR", "SMITH"},
		{"JOHN Q SMITH", "JOHN", "Q SMITH"},
		{"CHER", "", "CHER"},
		{"SMITH,", "", "SMITH"},
		{"   ", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			first, last := ParseName(tt.in)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}

func TestSplitOwner(t *testing.T) {
	full, company := SplitOwner(" JANE DOE ", model.OwnerPerson)
	assert.Equal(t, "JANE DOE", full)
	assert.Empty(t, company)

	full, company = SplitOwner("DOE TRUST", model.OwnerTrust)
	assert.Empty(t, full)
	assert.Equal(t, "DOE TRUST", company)

	full, company = SplitOwner("???", model.OwnerUnknown)
	assert.Empty(t, full)
	assert.Empty(t, company)
}

func TestNameHeuristics(t *testing.T) {
	complexPatterns := []string{"TRUST DATED", "REVOCABLE TRUST", "ESTATE OF", "HEIRS OF", "UNKNOWN", "ET AL", "ETAL", "ETC"}
	assert.True(t, IsComplexName("SMITH JOHN ET AL", complexPatterns, 80, 2))
	assert.True(t, IsComplexName("DOE REVOCABLE TRUST", complexPatterns, 80, 2))
	assert.True(t, IsComplexName("A, B, C, D", complexPatterns, 80, 2))
	assert.True(t, IsComplexName(strings.Repeat("X", 81), complexPatterns, 80, 2))
	assert.False(t, IsComplexName("FLETCHER, ANN", complexPatterns, 80, 2))
	assert.False(t, IsComplexName("", complexPatterns, 80, 2))

	exclusions := []string{"TRUST", "ESTATE", "HEIRS", "ET AL", "ETC", "UNKNOWN"}
	assert.True(t, IsSimpleName("JOHN SMITH", exclusions, 60))
	assert.False(t, IsSimpleName("SMITH TRUST", exclusions, 60))
	assert.False(t, IsSimpleName(strings.Repeat("A", 61), exclusions, 60))
	assert.False(t, IsSimpleName("", exclusions, 60))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "ACME HOLDINGS LLC", NormalizeName(" acme   holdings\tllc "))
	assert.Equal(t, "", NormalizeName("  "))
}
