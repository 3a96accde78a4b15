package scorer

import (
	"strconv"
	"strings"

	"github.com/sells-group/note-leads/internal/classify"
	"github.com/sells-group/note-leads/internal/model"
)

// Engagement scores how likely a property owner is to respond: contact
// channels, mailing address quality, absentee strength, portfolio size, the
// note sweet-spot value band and name simplicity.
func (s *Scorer) Engagement(f EngagementFacts) Result {
	w := s.profile.Weights
	var t Trail
	if f.Email {
		t.Add(w.Contact.Email, "has email")
	} else {
		t.Note("no email")
	}
	if f.Phone {
		t.Add(w.Contact.Phone, "has phone")
	} else {
		t.Note("no phone")
	}
	if f.Street {
		t.Add(w.Contact.StreetAddress, "street address")
	} else {
		t.Note("PO box or missing")
	}
	t.Add(s.absentee(f.Absentee))
	t.Add(s.portfolio(f.Count))
	t.Add(EvalBand(w.Value, f.Value, f.HasValue))
	if f.SimpleName {
		t.Add(w.SimpleName, "simple name")
	}
	return t.Result(s.profile.ReasonCap)
}

// RoleScore is the outcome of applying an entity-role modifier.
type RoleScore struct {
	Role     classify.Result
	Score    int
	Excluded bool
	// Modifier is the applied modifier, or "EXCLUDED".
	Modifier string
}

// Role classifies the entity behind l and applies its role modifier to the
// lead's active score. Excluded roles score 0.
func (s *Scorer) Role(l model.Lead) RoleScore {
	role := s.roles.Classify(l.EntityName(), model.OwnerType(strings.ToUpper(strings.TrimSpace(l.OwnerType))) == model.OwnerPerson)
	w := s.profile.Weights
	for _, ex := range w.Excluded {
		if model.Category(ex) == role.Category {
			return RoleScore{Role: role, Excluded: true, Modifier: "EXCLUDED"}
		}
	}
	mod := w.Roles[string(role.Category)]
	return RoleScore{
		Role:     role,
		Score:    clamp(ParseScore(l.ActiveScore()) + mod),
		Modifier: strconv.Itoa(mod),
	}
}
