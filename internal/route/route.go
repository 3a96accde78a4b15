// Package route assigns each scored record to exactly one outcome tier.
// Every router is an ordered list of checks; the first check that fires
// decides the tier, so the order of the checks is part of the behaviour.
package route

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/scorer"
)

// Decision is a routing outcome. Label is the owner-type column value the
// property pipelines write, which names the failed check for rejected rows.
type Decision struct {
	Tier   model.Tier
	Reason string
	Label  string
}

// Property-pipeline labels for rows rejected before owner typing.
const (
	LabelInstitutional  = "INSTITUTIONAL"
	LabelComplex        = "COMPLEX"
	LabelVacant         = "VACANT"
	LabelNonResidential = "NON_RESIDENTIAL"
	LabelUnknown        = "UNKNOWN"
	LabelValue          = "VALUE"
	LabelLotSize        = "LOT_SIZE"
)

// Note routes a recorded note to LEAD, REVIEW or DISCARD.
func Note(lim config.LimitConfig, f scorer.NoteFacts) Decision {
	label := string(f.OwnerType)
	d := func(tier model.Tier, reason string) Decision {
		return Decision{Tier: tier, Reason: reason, Label: label}
	}

	switch {
	case f.OwnerType == model.OwnerBank:
		return d(model.TierDiscard, lim.ExcludedReason)
	case f.DiscardDoc:
		return d(model.TierDiscard, "Document type indicates release/satisfaction: "+f.DocType)
	case !f.HasAmount && f.LenderName == "" && f.DocType == "":
		return d(model.TierDiscard, "Missing all critical fields (loan_amount, lender_name, doc_type)")
	case f.HasAge && f.Age > lim.MaxAge:
		return d(model.TierDiscard, fmt.Sprintf("Recording too old (%.1f years, max %s)", f.Age, plain(lim.MaxAge)))
	case !f.HasAmount:
		return d(model.TierReview, "Missing loan_amount")
	case f.Amount <= 0:
		return d(model.TierDiscard, "Invalid loan amount: "+decimal(f.Amount))
	case f.Amount >= lim.MaxLoan:
		return d(model.TierReview, fmt.Sprintf("Loan amount too large (%s, max %s)", comma(f.Amount), comma(lim.MaxLoan)))
	case f.LenderName == "":
		return d(model.TierReview, "Missing lender_name")
	case !f.HasAge:
		return d(model.TierReview, "Missing or unparseable recording_date")
	case f.Age < lim.MinAge:
		return d(model.TierReview, fmt.Sprintf("Recording too recent (%.1f years, min %s)", f.Age, plain(lim.MinAge)))
	case lim.ReviewLLCWithoutPreferredDoc && f.OwnerType == model.OwnerLLC && !f.SellerFinance:
		return d(model.TierReview, "LLC lender without preferred doc type: "+f.DocType)
	}
	return d(model.TierLead, lim.AcceptedReason)
}

// Target routes an appraisal-roll record to TARGET, REVIEW or DISCARD.
func Target(lim config.LimitConfig, f scorer.PropertyFacts) Decision {
	if f.Institutional || f.OwnerType == model.OwnerBank {
		return Decision{Tier: model.TierDiscard, Reason: lim.ExcludedReason, Label: LabelInstitutional}
	}
	label := string(f.OwnerType)
	d := func(tier model.Tier, reason string) Decision {
		return Decision{Tier: tier, Reason: reason, Label: label}
	}

	switch {
	case f.OwnerName == "":
		return d(model.TierDiscard, "Missing owner name")
	case lim.OnlyAbsentee && !f.Absentee:
		return d(model.TierDiscard, "Not absentee owner (only_absentee=true)")
	case !f.HasValue:
		return d(model.TierReview, "Missing total_value")
	case f.Value <= 0:
		return d(model.TierDiscard, "Invalid total_value: "+decimal(f.Value))
	case f.Value < lim.MinValue:
		return d(model.TierReview, fmt.Sprintf("Value below minimum (%s < %s)", comma(f.Value), comma(lim.MinValue)))
	case f.Value > lim.MaxValue:
		return d(model.TierReview, fmt.Sprintf("Value above maximum (%s > %s)", comma(f.Value), comma(lim.MaxValue)))
	}
	return d(model.TierTarget, lim.AcceptedReason)
}

// Favorite routes a record against the buy box: institutional, complex,
// vacant and non-residential records are discarded; value and lot-size
// doubts go to review.
func Favorite(lim config.LimitConfig, f scorer.PropertyFacts) Decision {
	reject := func(tier model.Tier, label, reason string) Decision {
		return Decision{Tier: tier, Reason: reason, Label: label}
	}

	switch {
	case f.Institutional:
		return reject(model.TierDiscard, LabelInstitutional, lim.ExcludedReason)
	case f.Complex:
		return reject(model.TierDiscard, LabelComplex, "Complex owner name")
	case !f.HasImprovement || f.Improvement == 0 || f.Improvement < lim.VacantImprovement:
		return reject(model.TierDiscard, LabelVacant, "Vacant land or minimal improvement")
	case !isResidential(f.PropertyType, lim.ResidentialPrefixes):
		return reject(model.TierDiscard, LabelNonResidential, "Non-residential property type: "+f.PropertyType)
	case !f.HasValue || f.Value <= 0:
		return reject(model.TierReview, LabelUnknown, "Missing or invalid total_value")
	case f.Value > lim.ValueCap*lim.ValueCapBuffer:
		return reject(model.TierReview, LabelValue, fmt.Sprintf("Value exceeds FHA cap (%s > %s)", comma(f.Value), comma(lim.ValueCap)))
	}
	if f.HasLand && f.Land > lim.LandValueReview && lim.LandValuePerAcre > 0 {
		if acres := f.Land / lim.LandValuePerAcre; acres > lim.MaxAcres {
			return reject(model.TierReview, LabelLotSize,
				fmt.Sprintf("Lot size may exceed %s acres (estimated %.2f acres)", plain(lim.NominalAcres), acres))
		}
	}
	return Decision{Tier: model.TierTarget, Reason: lim.AcceptedReason, Label: string(f.OwnerType)}
}

func isResidential(propertyType string, prefixes []string) bool {
	pt := strings.ToUpper(strings.TrimSpace(propertyType))
	if pt == "" {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(pt, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}

// Engagement picks the first tier whose minimum the score meets and whose
// contact requirement, if any, is satisfied. The final tier catches the rest.
func Engagement(tiers []config.TierConfig, score int, hasContact bool) model.Tier {
	for _, t := range tiers {
		if score < t.MinScore {
			continue
		}
		if t.RequireContact && !hasContact {
			continue
		}
		return model.Tier(t.Name)
	}
	return model.TierReview
}

// Role maps an entity category to its outreach stream. Trusts are worked
// with investors; unknown entities default to individuals.
func Role(rs scorer.RoleScore) model.Tier {
	if rs.Excluded {
		return model.TierExcluded
	}
	switch rs.Role.Category {
	case model.CategoryInvestor, model.CategoryTrust:
		return model.TierInvestor
	case model.CategoryLegal:
		return model.TierLegal
	case model.CategoryBank, model.CategoryGovernment, model.CategoryUtility:
		return model.TierExcluded
	}
	return model.TierIndividual
}

// Bucket names the value bucket of size step containing v, such as
// "200k-300k".
func Bucket(v, step float64) string {
	if step <= 0 {
		return ""
	}
	start := math.Floor(v/step) * step
	return fmt.Sprintf("%sk-%sk", plain(start/1000), plain((start+step)/1000))
}

// Buckets lists the bucket names whose start lies in [lo, hi).
func Buckets(lo, hi, step float64) []string {
	if step <= 0 {
		return nil
	}
	var names []string
	for start := 0.0; start < hi; start += step {
		if start < lo {
			continue
		}
		names = append(names, Bucket(start, step))
	}
	return names
}

// comma renders a value rounded to whole units with thousands separators.
func comma(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// plain renders v with no trailing zeros: 20, 0.5.
func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// decimal renders v with at least one decimal place: -5.0, 12.5.
func decimal(v float64) string {
	s := plain(v)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
