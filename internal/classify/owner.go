package classify

import (
	"strings"
	"unicode/utf8"

	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/model"
)

// OwnerClassifier sorts lender and owner names into PERSON, LLC, TRUST, BANK
// or UNKNOWN.
type OwnerClassifier struct {
	bank []string
	cfg  config.OwnerTypeConfig
}

// NewOwnerClassifier returns a classifier that treats any institutional
// keyword as BANK.
func NewOwnerClassifier(institutional []string, cfg config.OwnerTypeConfig) *OwnerClassifier {
	return &OwnerClassifier{bank: institutional, cfg: cfg}
}

// IsBank reports whether name matches an institutional keyword.
func (c *OwnerClassifier) IsBank(name string) bool {
	return Contains(name, c.bank)
}

// Classify applies, in order: bank keyword, trust keyword, LLC suffix,
// corporate suffix (reported as LLC), a comma (LAST, FIRST), and a short name
// without organisation words. Anything else is UNKNOWN.
func (c *OwnerClassifier) Classify(name string) model.OwnerType {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return model.OwnerUnknown
	case c.IsBank(name):
		return model.OwnerBank
	case Contains(name, c.cfg.Trust):
		return model.OwnerTrust
	}
	if _, ok := MatchTokens(name, c.cfg.LLCSuffixes); ok {
		return model.OwnerLLC
	}
	if _, ok := MatchTokens(name, c.cfg.CorporateSuffixes); ok {
		return model.OwnerLLC
	}
	if strings.Contains(name, ",") {
		return model.OwnerPerson
	}
	if utf8.RuneCountInString(name) < c.cfg.MaxPersonNameChars && !Contains(name, c.cfg.OrganizationWords) {
		return model.OwnerPerson
	}
	return model.OwnerUnknown
}

// QuickOwnerType is the coarse split used for favorites: LLC or TRUST when the
// word appears anywhere in the name, PERSON otherwise.
func QuickOwnerType(name string) model.OwnerType {
	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "LLC"):
		return model.OwnerLLC
	case strings.Contains(upper, "TRUST"):
		return model.OwnerTrust
	}
	return model.OwnerPerson
}
