package model

// Tier is a named outcome bucket. Every scored record lands in exactly one.
type Tier string

const (
	TierLead    Tier = "LEAD"
	TierTarget  Tier = "TARGET"
	TierReview  Tier = "REVIEW"
	TierDiscard Tier = "DISCARD"

	TierHigh   Tier = "HIGH_PRIORITY"
	TierMedium Tier = "MEDIUM_PRIORITY"
	TierLow    Tier = "LOW_PRIORITY"

	TierInvestor   Tier = "INVESTOR_PRIORITY"
	TierIndividual Tier = "INDIVIDUAL_PRIORITY"
	TierLegal      Tier = "LEGAL_REVIEW"
	TierExcluded   Tier = "EXCLUDED"
)

// OwnerType is the note-pipeline owner/lender classification.
type OwnerType string

const (
	OwnerPerson  OwnerType = "PERSON"
	OwnerLLC     OwnerType = "LLC"
	OwnerTrust   OwnerType = "TRUST"
	OwnerBank    OwnerType = "BANK"
	OwnerUnknown OwnerType = "UNKNOWN"
)

// Category is the entity-role taxonomy.
type Category string

const (
	CategoryBank       Category = "BANK_INSTITUTION"
	CategoryGovernment Category = "GOVERNMENT_ENTITY"
	CategoryUtility    Category = "UTILITY_OR_NONPROFIT"
	CategoryTrust      Category = "TRUST_ENTITY"
	CategoryInvestor   Category = "INVESTOR_ENTITY"
	CategoryLegal      Category = "LEGAL_ENTITY"
	CategoryIndividual Category = "INDIVIDUAL_PERSON"
	CategoryUnknown    Category = "UNKNOWN"
)

// Categories lists the closed taxonomy in precedence order.
var Categories = []Category{
	CategoryBank,
	CategoryGovernment,
	CategoryUtility,
	CategoryTrust,
	CategoryInvestor,
	CategoryLegal,
	CategoryIndividual,
	CategoryUnknown,
}

// ValidCategory reports whether c belongs to the taxonomy.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
