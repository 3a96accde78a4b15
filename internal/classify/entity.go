package classify

import (
	"fmt"
	"strings"

	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/model"
)

// Result is one classification with the reason it was made.
type Result struct {
	Category model.Category
	Reason   string
}

type rule struct {
	category model.Category
	label    string
	keywords []string
}

// Taxonomy classifies entity names into the role taxonomy. Rules are tried
// in order and the first category with a matching keyword wins; individual
// person and unknown are inferred when no rule matches.
type Taxonomy struct {
	rules           []rule
	indicators      []string
	maxPersonTokens int
}

// NewTaxonomy builds a taxonomy from profile keywords.
func NewTaxonomy(cfg config.KeywordConfig) *Taxonomy {
	t := &Taxonomy{
		indicators:      cfg.EntityIndicators,
		maxPersonTokens: cfg.MaxPersonTokens,
	}
	for _, c := range cfg.Taxonomy {
		label := c.Label
		if label == "" {
			label = strings.ToLower(c.Category)
		}
		t.rules = append(t.rules, rule{
			category: model.Category(c.Category),
			label:    label,
			keywords: c.Keywords,
		})
	}
	return t
}

// Classify returns exactly one category for name. personHint reports that an
// earlier stage already judged the owner to be a person. It never fails; an
// empty name is UNKNOWN.
func (t *Taxonomy) Classify(name string, personHint bool) Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{model.CategoryUnknown, "no name provided"}
	}

	for _, r := range t.rules {
		if kw, ok := Match(name, r.keywords); ok {
			return Result{r.category, fmt.Sprintf("%s keyword: %s", r.label, kw)}
		}
	}

	if !Contains(name, t.indicators) {
		if personHint {
			return Result{model.CategoryIndividual, "owner_type=PERSON, no entity keywords"}
		}
		if len(strings.Fields(name)) <= t.maxPersonTokens {
			return Result{model.CategoryIndividual, "appears to be individual person"}
		}
	}
	return Result{model.CategoryUnknown, "no matching keywords or patterns"}
}
