package scorer

import (
	"fmt"

	"github.com/sells-group/note-leads/internal/model"
)

// Note scores a recorded note. A bank lender is excluded outright.
//
// Signals, in reason order: owner type, loan amount band, document type,
// recording age band. A zero amount or age counts as missing.
func (s *Scorer) Note(f NoteFacts) Result {
	w := s.profile.Weights
	if f.OwnerType == model.OwnerBank {
		return Exclude(s.ownerLabel("bank"))
	}

	var t Trail
	t.Add(s.ownerPoints(f.OwnerType))
	t.Add(EvalBand(w.Amount, f.Amount, f.HasAmount && f.Amount != 0))
	switch {
	case f.DocType == "":
		t.Add(w.Doc.Missing, "missing doc type")
	case f.SellerFinance:
		t.Add(w.Doc.SellerFinance, "seller finance doc")
	default:
		t.Add(w.Doc.Other, "other doc type")
	}
	t.Add(EvalBand(w.Age, f.Age, f.HasAge && f.Age != 0))
	return t.Result(s.profile.ReasonCap)
}

// ownerPoints scores an owner type and names it with the profile noun
// ("person lender", "LLC owner").
func (s *Scorer) ownerPoints(ot model.OwnerType) (int, string) {
	w := s.profile.Weights.Owner
	switch ot {
	case model.OwnerPerson:
		return w.Person, s.ownerLabel("person")
	case model.OwnerLLC:
		return w.LLC, s.ownerLabel("LLC")
	case model.OwnerTrust:
		return w.Trust, s.ownerLabel("trust")
	}
	return w.Other, "unknown owner type"
}

func (s *Scorer) ownerLabel(kind string) string {
	noun := s.profile.Weights.Owner.Noun
	if noun == "" {
		return kind
	}
	return fmt.Sprintf("%s %s", kind, noun)
}
