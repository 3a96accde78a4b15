package signal

import (
	"strings"

	"github.com/sells-group/note-leads/internal/model"
)

var addressAbbrev = strings.NewReplacer(
	"STREET", "ST",
	"AVENUE", "AVE",
	"ROAD", "RD",
	"DRIVE", "DR",
	"BOULEVARD", "BLVD",
	".", "",
	",", "",
)

// NormalizeAddress uppercases, abbreviates common street types, drops
// periods and commas, and collapses whitespace.
func NormalizeAddress(s string) string {
	s = addressAbbrev.Replace(strings.ToUpper(strings.TrimSpace(s)))
	return strings.Join(strings.Fields(s), " ")
}

// POBoxIndicators mark a mailing address that is not a street address.
var POBoxIndicators = []string{"PO BOX", "P.O. BOX", "P O BOX", "POBOX", "BOX ", "PMB", "SUITE"}

// IsStreetAddress reports whether addr is present and contains none of the
// indicators.
func IsStreetAddress(addr string, indicators []string) bool {
	if strings.TrimSpace(addr) == "" {
		return false
	}
	upper := strings.ToUpper(addr)
	for _, ind := range indicators {
		if strings.Contains(upper, ind) {
			return false
		}
	}
	return true
}

// Strength grades how far an owner's mailing address is from the property.
type Strength int

const (
	// Occupied means no evidence the owner lives elsewhere.
	Occupied Strength = iota
	// Weak is the same city with a different street address.
	Weak
	// Strong is a different city or state.
	Strong
)

func (s Strength) String() string {
	switch s {
	case Strong:
		return "strong"
	case Weak:
		return "weak"
	default:
		return "occupied"
	}
}

// AbsenteeStrength compares the situs and mailing locations. Strong needs
// both cities; weak needs both street addresses.
func AbsenteeStrength(situs, mailing model.Location) Strength {
	mCity, sCity := upperTrim(mailing.City), upperTrim(situs.City)
	mState, sState := upperTrim(mailing.State), upperTrim(situs.State)

	if mCity != "" && sCity != "" {
		if mState != "" && sState != "" && mState != sState {
			return Strong
		}
		if mCity != sCity {
			return Strong
		}
	}

	mAddr, sAddr := NormalizeAddress(mailing.Address), NormalizeAddress(situs.Address)
	if mAddr != "" && sAddr != "" && mCity == sCity && mAddr != sAddr {
		return Weak
	}
	return Occupied
}

// IsAbsentee reports whether both street addresses are present and differ
// after normalisation.
func IsAbsentee(situs, mailing model.Location) bool {
	m, s := NormalizeAddress(mailing.Address), NormalizeAddress(situs.Address)
	return m != "" && s != "" && m != s
}

// HasEmail reports a plausible email: non-empty and containing "@".
func HasEmail(s string) bool {
	return strings.Contains(strings.TrimSpace(s), "@")
}

// HasPhone reports a phone of at least minLen characters.
func HasPhone(s string, minLen int) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) >= minLen
}

// ContactQuality lists the contact channels a record carries, or NONE.
func ContactQuality(email, phone, street bool) string {
	var parts []string
	if email {
		parts = append(parts, "EMAIL")
	}
	if phone {
		parts = append(parts, "PHONE")
	}
	if street {
		parts = append(parts, "STREET_ADDRESS")
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, " | ")
}

// YesNo renders a boolean as the Y/N flags used in output files.
func YesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func upperTrim(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
