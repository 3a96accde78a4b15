package scorer

import (
	"fmt"
	"math"

	"github.com/sells-group/note-leads/internal/signal"
)

// Target scores a property target on owner type, absentee status and where
// the value falls against the profile's [MinValue, MaxValue] range.
func (s *Scorer) Target(f PropertyFacts) Result {
	lim := s.profile.Limits
	var t Trail
	t.Add(s.ownerPoints(f.OwnerType))
	t.Add(s.absentee(plainStrength(f.Absentee)))
	t.Add(EvalRange(s.profile.Weights.ValueRange, f.Value, f.HasValue && f.Value != 0, lim.MinValue, lim.MaxValue))
	return t.Result(s.profile.ReasonCap)
}

// Favorite scores a buy-box property on value against the cap, absentee
// status and the owner's portfolio size.
func (s *Scorer) Favorite(f PropertyFacts) Result {
	lim := s.profile.Limits
	var t Trail
	t.Add(EvalRange(s.profile.Weights.ValueRange, f.Value, f.HasValue && f.Value != 0, math.Inf(-1), lim.ValueCap))
	t.Add(s.absentee(plainStrength(f.Absentee)))
	t.Add(s.portfolio(f.Count))
	return t.Result(s.profile.ReasonCap)
}

func plainStrength(absentee bool) signal.Strength {
	if absentee {
		return signal.Strong
	}
	return signal.Occupied
}

func (s *Scorer) absentee(st signal.Strength) (int, string) {
	w := s.profile.Weights.Absentee
	switch {
	case st == signal.Strong && w.Plain:
		return w.Strong, "absentee owner"
	case st == signal.Strong:
		return w.Strong, "strong absentee"
	case st == signal.Weak && w.Plain:
		return w.Strong, "absentee owner"
	case st == signal.Weak:
		return w.Weak, "weak absentee"
	}
	return w.Occupied, "owner occupied"
}

// portfolio scores the owner's property count. A zero Single weight leaves
// single-property owners without a reason.
func (s *Scorer) portfolio(n int) (int, string) {
	w := s.profile.Weights.Portfolio
	switch {
	case n >= 3:
		return w.Many, fmt.Sprintf("%d properties", n)
	case n == 2:
		return w.Double, "2 properties"
	case w.Single != 0:
		return w.Single, "1 property"
	}
	return 0, ""
}
