package scorer

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/signal"
)

// Built-in profile names.
const (
	ProfileNotes        = "notes"
	ProfilePrivateNotes = "private-notes"
	ProfileTargets      = "targets"
	ProfileFavorites    = "favorites"
	ProfileEngagement   = "engagement"
	ProfileRoles        = "roles"
	ProfileEstimate     = "estimate"
)

var noteBanks = []string{
	"BANK", "N.A.", "MORTGAGE", "SERVICING",
	"WELLS FARGO", "WELLS",
	"JPMORGAN", "JP MORGAN", "CHASE",
	"BANK OF AMERICA", "BANK OF AMER", "BOA",
	"CITIBANK", "CITI",
	"U.S. BANK", "US BANK", "USBANK",
	"PNC",
	"TRUIST",
	"CAPITAL ONE", "CAPITALONE",
	"REGIONS BANK", "REGIONS",
	"SUNTRUST",
	"BB&T", "BBT",
	"TD BANK",
	"HSBC",
	"BANK OF NEW YORK", "BNY",
	"DEUTSCHE BANK",
	"BARCLAYS",
	"MORGAN STANLEY",
	"GOLDMAN SACHS",
	"MERRILL LYNCH",
	"FIDELITY",
	"VANGUARD",
	"FEDERAL HOME LOAN", "FHLMC", "FREDDIE MAC",
	"FANNIE MAE", "FNMA",
	"GINNIE MAE", "GNMA",
	"FHA", "VA LOAN", "USDA",
}

var institutionalOwners = []string{
	"BANK", "N.A.", "NA", "MORTGAGE", "SERVICING",
	"FNMA", "FANNIE MAE", "FANNIE",
	"FREDDIE MAC", "FREDDIE", "FHLMC",
	"HUD", "VA", "USDA",
	"CREDIT UNION",
	"ASSOCIATION",
	"TRUST COMPANY",
	"WELLS FARGO", "WELLS",
	"JPMORGAN", "JP MORGAN", "CHASE",
	"BANK OF AMERICA", "BANK OF AMER", "BOA",
	"CITIBANK", "CITI",
	"U.S. BANK", "US BANK", "USBANK",
	"PNC", "TRUIST",
	"CAPITAL ONE", "CAPITALONE",
	"REGIONS BANK", "REGIONS",
	"SUNTRUST",
	"BB&T", "BBT",
	"TD BANK", "HSBC",
	"MORGAN STANLEY", "GOLDMAN SACHS",
	"MERRILL LYNCH", "FIDELITY", "VANGUARD",
}

func ownerTypeKeywords() config.OwnerTypeConfig {
	return config.OwnerTypeConfig{
		Trust:       []string{"TRUST", "TRUSTEE", "ESTATE"},
		LLCSuffixes: []string{"LLC", "L.L.C.", "L L C"},
		CorporateSuffixes: []string{
			"INC", "INCORPORATED", "CORP", "CORPORATION", "LTD", "LIMITED",
			"LP", "L.P.", "LLP", "L.L.P.", "PC", "P.C.", "PLLC",
		},
		OrganizationWords:  []string{"COMPANY", "GROUP", "HOLDINGS", "PROPERTIES", "INVESTMENTS"},
		MaxPersonNameChars: 50,
	}
}

func notesProfile() config.ProfileConfig {
	return config.ProfileConfig{
		Name:      ProfileNotes,
		Mode:      config.ModeNotes,
		ReasonCap: 5,
		Keywords: config.KeywordConfig{
			Institutional: append([]string(nil), noteBanks...),
			SellerFinanceDocs: []string{
				"PURCHASE MONEY", "SELLER FINANCE", "SELLER FINANCING", "VENDOR LIEN",
				"DEED OF TRUST", "NOTE", "MORTGAGE", "PROMISSORY NOTE", "INSTALLMENT SALE",
			},
			DiscardDocs: []string{
				"RELEASE", "SATISFACTION", "RELEASE OF LIEN", "SATISFACTION OF MORTGAGE", "CANCELLATION",
			},
			OwnerType: ownerTypeKeywords(),
		},
		Weights: config.WeightConfig{
			Owner: config.OwnerWeights{Noun: "lender", Person: 40, LLC: 25, Trust: 20, Other: 10},
			Amount: config.BandSet{
				Bands: []config.BandConfig{
					{Min: 10000, Max: 100000, Points: 25, Reason: "small amount"},
					{Min: 100000, Max: 300000, Points: 30, Reason: "medium amount"},
					{Min: 300000, Max: 500000, Points: 20, Reason: "large amount"},
					{Min: math.Inf(-1), Max: 10000, Points: 10, Reason: "very small amount"},
				},
				Missing:       -20,
				MissingReason: "missing loan amount",
			},
			Doc: config.DocWeights{SellerFinance: 25, Other: 10, Missing: -10},
			Age: config.BandSet{
				Bands: []config.BandConfig{
					{Min: 3, Max: 10, MaxInclusive: true, Points: 10, Reason: "recent recording"},
					{Min: 10, Max: 20, MaxInclusive: true, Points: 5, Reason: "older recording"},
					{Min: math.Inf(-1), Max: 3, Points: -5, Reason: "very recent"},
					{Min: 20, Points: -10, Reason: "very old"},
				},
				Missing:       -5,
				MissingReason: "missing date",
			},
		},
		Limits: config.LimitConfig{
			ExcludedReason: "Lender is a bank or large financial institution",
			AcceptedReason: "Meets all criteria for seller-finance note lead",
			MaxLoan:        500000,
			MinAge:         3,
			MaxAge:         20,
		},
	}
}

func privateNotesProfile() config.ProfileConfig {
	p := notesProfile()
	p.Name = ProfilePrivateNotes
	p.Keywords.Institutional = append(p.Keywords.Institutional, "SERVICE", "SERVICER")
	p.Limits.ExcludedReason = "Lender is a bank or servicer"
	p.Limits.AcceptedReason = "Meets all criteria for private note lead"
	p.Limits.ReviewLLCWithoutPreferredDoc = true
	return p
}

func estimateProfile() config.ProfileConfig {
	p := notesProfile()
	p.Name = ProfileEstimate
	p.Mode = config.ModeEstimate
	p.Limits.MinScore = 50
	p.Limits.EstimateRatio = 2.5
	p.Limits.MinEstimate = 1000
	p.Limits.MaxEstimate = 500000
	p.Limits.DefaultYear = 2020
	p.Limits.AssumedDocType = "DEED OF TRUST"
	p.Limits.ReasonSuffix = " (estimated from property data)"
	return p
}

func targetsProfile() config.ProfileConfig {
	return config.ProfileConfig{
		Name:      ProfileTargets,
		Mode:      config.ModeTargets,
		ReasonCap: 4,
		Keywords: config.KeywordConfig{
			Institutional: append([]string(nil), institutionalOwners...),
			OwnerType:     ownerTypeKeywords(),
		},
		Weights: config.WeightConfig{
			Owner:    config.OwnerWeights{Noun: "owner", Person: 40, LLC: 30, Trust: 25, Other: 10},
			Absentee: config.AbsenteeWeights{Strong: 30, Occupied: 10, Plain: true},
			ValueRange: config.RangeWeights{
				In: 30, Below: 10, Above: 15, Missing: -10,
				InReason:      "value in range",
				BelowReason:   "below min value",
				AboveReason:   "above max value",
				MissingReason: "missing value",
			},
		},
		Limits: config.LimitConfig{
			ExcludedReason: "Institutional/bank owner",
			MinValue:       150000,
			MaxValue:       600000,
			BucketSize:     100000,
		},
	}
}

func favoritesProfile() config.ProfileConfig {
	return config.ProfileConfig{
		Name:      ProfileFavorites,
		Mode:      config.ModeFavorites,
		ReasonCap: 4,
		Keywords: config.KeywordConfig{
			Institutional: append([]string(nil), institutionalOwners...),
			ComplexName: []string{
				"TRUST DATED", "REVOCABLE TRUST", "IRREVOCABLE TRUST", "FAMILY TRUST DATED",
				"ESTATE OF", "HEIRS OF", "UNKNOWN", "ET AL", "ETAL", "ETC", "ETC.", "ET CETERA",
			},
			OwnerType: ownerTypeKeywords(),
		},
		Weights: config.WeightConfig{
			Absentee:  config.AbsenteeWeights{Strong: 30, Occupied: 15, Plain: true},
			Portfolio: config.PortfolioWeights{Single: 5, Double: 10, Many: 20},
			ValueRange: config.RangeWeights{
				In: 40, Above: 20, Missing: -10,
				InReason:      "under FHA cap",
				AboveReason:   "over FHA cap",
				MissingReason: "missing value",
			},
		},
		Limits: config.LimitConfig{
			ExcludedReason:      "Institutional/bank owner",
			ValueCap:            498257,
			ValueCapBuffer:      1.1,
			VacantImprovement:   10000,
			LandValueReview:     250000,
			LandValuePerAcre:    500000,
			MaxAcres:            0.6,
			NominalAcres:        0.5,
			ResidentialPrefixes: []string{"R"},
			MaxNameLength:       80,
			MaxNameCommas:       2,
			DataLimitations:     []string{"SQ_FT_REVIEW", "BED_BATH_REVIEW"},
		},
	}
}

func engagementProfile() config.ProfileConfig {
	return config.ProfileConfig{
		Name:      ProfileEngagement,
		Mode:      config.ModeEngagement,
		ReasonCap: 6,
		Keywords: config.KeywordConfig{
			NameExclusions: []string{"TRUST", "ESTATE", "HEIRS", "ET AL", "ETC", "UNKNOWN"},
			POBox:          append([]string(nil), signal.POBoxIndicators...),
		},
		Weights: config.WeightConfig{
			Contact:   config.ContactWeights{Email: 25, Phone: 20, StreetAddress: 10},
			Absentee:  config.AbsenteeWeights{Strong: 30, Weak: 15},
			Portfolio: config.PortfolioWeights{Double: 7, Many: 15},
			Value: config.BandSet{
				Bands: []config.BandConfig{
					{Min: 150000, Max: 400000, MaxInclusive: true, Points: 20, Reason: "note sweet spot value"},
				},
			},
			SimpleName: 10,
		},
		Limits: config.LimitConfig{
			SimpleNameMaxLength: 60,
			MinPhoneLength:      10,
		},
		Tiers: []config.TierConfig{
			{Name: string(model.TierHigh), MinScore: 60, RequireContact: true},
			{Name: string(model.TierMedium), MinScore: 50},
			{Name: string(model.TierLow), MinScore: 30},
			{Name: string(model.TierReview), MinScore: 0},
		},
	}
}

func rolesProfile() config.ProfileConfig {
	return config.ProfileConfig{
		Name: ProfileRoles,
		Mode: config.ModeRoles,
		Keywords: config.KeywordConfig{
			Taxonomy: []config.CategoryConfig{
				{Category: string(model.CategoryBank), Label: "bank", Keywords: []string{
					"BANK", "N.A.", "CREDIT UNION", "MORTGAGE", "SERVICING", "FNMA", "FREDDIE", "FHA", "VA", "USDA",
				}},
				{Category: string(model.CategoryGovernment), Label: "government", Keywords: []string{
					"CITY OF", "COUNTY OF", "STATE OF", "AUTHORITY", "DISTRICT",
				}},
				{Category: string(model.CategoryUtility), Label: "utility", Keywords: []string{
					"UTILITY", "ELECTRIC", "WATER", "SEWER", "FOUNDATION", "CHURCH",
				}},
				{Category: string(model.CategoryTrust), Label: "trust", Keywords: []string{
					"TRUST", "ESTATE", "FAMILY TRUST", "LIVING TRUST",
				}},
				{Category: string(model.CategoryInvestor), Label: "investor", Keywords: []string{
					"INVEST", "CAPITAL", "HOLDINGS", "EQUITY", "PARTNERS", "GROUP",
					"VENTURES", "PROPERTIES", "REAL ESTATE", "DEVELOPMENT",
				}},
				{Category: string(model.CategoryLegal), Label: "legal", Keywords: []string{
					"LAW", "ATTORNEY", "ESQ", "LEGAL", "COUNSEL", "PLLC",
				}},
			},
			EntityIndicators: []string{"LLC", "INC", "CORP", "LTD", "LP", "LLP", "PC", "PA", "CO", "COMPANY"},
			MaxPersonTokens:  5,
		},
		Weights: config.WeightConfig{
			Roles: map[string]int{
				string(model.CategoryInvestor):   20,
				string(model.CategoryTrust):      15,
				string(model.CategoryIndividual): 10,
				string(model.CategoryLegal):      5,
				string(model.CategoryUnknown):    0,
			},
			Excluded: []string{
				string(model.CategoryBank),
				string(model.CategoryGovernment),
				string(model.CategoryUtility),
			},
		},
	}
}

var builtins = map[string]func() config.ProfileConfig{
	ProfileNotes:        notesProfile,
	ProfilePrivateNotes: privateNotesProfile,
	ProfileTargets:      targetsProfile,
	ProfileFavorites:    favoritesProfile,
	ProfileEngagement:   engagementProfile,
	ProfileRoles:        rolesProfile,
	ProfileEstimate:     estimateProfile,
}

// ProfileNames lists the built-in profiles in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultProfile returns a fresh copy of the built-in profile called name.
func DefaultProfile(name string) (config.ProfileConfig, bool) {
	build, ok := builtins[name]
	if !ok {
		return config.ProfileConfig{Name: name}, false
	}
	return build(), true
}

// LoadProfile returns the built-in profile called name with <dir>/<name>.yaml
// decoded over it. Fields the file omits keep their built-in values; lists
// in the file replace the built-in list. A name with no built-in must have
// a file that sets its mode.
func LoadProfile(dir, name string) (config.ProfileConfig, error) {
	p, known := DefaultProfile(name)
	if dir != "" {
		path := filepath.Join(dir, name+".yaml")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &p); err != nil {
				return p, eris.Wrapf(err, "scorer: parse profile %s", path)
			}
			p.Name = name
			known = true
		case !errors.Is(err, fs.ErrNotExist):
			return p, eris.Wrapf(err, "scorer: read profile %s", path)
		}
	}
	if !known {
		return p, eris.Errorf("scorer: unknown profile %q (built-in: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return p, ValidateProfile(p)
}

// ValidateProfile checks that a profile is internally consistent for its mode.
func ValidateProfile(p config.ProfileConfig) error {
	var errs []string

	switch p.Mode {
	case config.ModeNotes, config.ModeTargets, config.ModeFavorites,
		config.ModeEngagement, config.ModeRoles, config.ModeEstimate:
	default:
		errs = append(errs, fmt.Sprintf("unknown mode %q", p.Mode))
	}
	if p.ReasonCap < 0 {
		errs = append(errs, "reason_cap must be >= 0")
	}

	w, lim := p.Weights, p.Limits
	errs = append(errs, validateBands("amount", w.Amount)...)
	errs = append(errs, validateBands("age", w.Age)...)
	errs = append(errs, validateBands("value", w.Value)...)

	switch p.Mode {
	case config.ModeNotes, config.ModeEstimate:
		if lim.MaxLoan <= 0 {
			errs = append(errs, "max_loan must be > 0")
		}
		if lim.MinAge < 0 || lim.MaxAge < lim.MinAge {
			errs = append(errs, "age limits must satisfy 0 <= min_age <= max_age")
		}
		if p.Mode == config.ModeEstimate {
			if lim.EstimateRatio <= 0 {
				errs = append(errs, "estimate_ratio must be > 0")
			}
			if lim.MaxEstimate < lim.MinEstimate {
				errs = append(errs, "max_estimate must be >= min_estimate")
			}
			if lim.MinScore < MinScore || lim.MinScore > MaxScore {
				errs = append(errs, "min_score must be between 0 and 100")
			}
		}
	case config.ModeTargets:
		if lim.MinValue < 0 || lim.MaxValue < lim.MinValue {
			errs = append(errs, "value limits must satisfy 0 <= min_value <= max_value")
		}
		if lim.BucketSize < 0 {
			errs = append(errs, "bucket_size must be >= 0")
		}
	case config.ModeFavorites:
		if lim.ValueCap <= 0 {
			errs = append(errs, "value_cap must be > 0")
		}
		if lim.ValueCapBuffer < 1 {
			errs = append(errs, "value_cap_buffer must be >= 1")
		}
		if lim.LandValuePerAcre <= 0 {
			errs = append(errs, "land_value_per_acre must be > 0")
		}
		if len(lim.ResidentialPrefixes) == 0 {
			errs = append(errs, "residential_prefixes must not be empty")
		}
	case config.ModeEngagement:
		errs = append(errs, validateTiers(p.Tiers)...)
	case config.ModeRoles:
		if len(p.Keywords.Taxonomy) == 0 {
			errs = append(errs, "taxonomy must not be empty")
		}
		for _, c := range p.Keywords.Taxonomy {
			if !model.ValidCategory(model.Category(c.Category)) {
				errs = append(errs, fmt.Sprintf("taxonomy: unknown category %q", c.Category))
			}
		}
		for _, c := range p.Weights.Excluded {
			if !model.ValidCategory(model.Category(c)) {
				errs = append(errs, fmt.Sprintf("excluded: unknown category %q", c))
			}
		}
		for c := range p.Weights.Roles {
			if !model.ValidCategory(model.Category(c)) {
				errs = append(errs, fmt.Sprintf("roles: unknown category %q", c))
			}
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: profile %s validation failed: %s", p.Name, strings.Join(errs, "; "))
	}
	return nil
}

func validateBands(name string, bs config.BandSet) []string {
	var errs []string
	for i, b := range bs.Bands {
		if b.Max != 0 && b.Max < b.Min {
			errs = append(errs, fmt.Sprintf("%s band %d: max must be >= min", name, i))
		}
	}
	return errs
}

// validateTiers requires descending minimums and a final catch-all tier.
func validateTiers(tiers []config.TierConfig) []string {
	if len(tiers) == 0 {
		return []string{"tiers must not be empty"}
	}
	var errs []string
	for i, t := range tiers {
		if t.Name == "" {
			errs = append(errs, fmt.Sprintf("tier %d: name is required", i))
		}
		if i > 0 && t.MinScore > tiers[i-1].MinScore {
			errs = append(errs, fmt.Sprintf("tier %s: min_score must not exceed the tier before it", t.Name))
		}
	}
	if last := tiers[len(tiers)-1]; last.MinScore > MinScore || last.RequireContact {
		errs = append(errs, "last tier must accept every score")
	}
	return errs
}
