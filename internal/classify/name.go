package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/note-leads/internal/model"
)

var multiSpace = regexp.MustCompile(`\s+`)

// NormalizeName uppercases name and collapses internal whitespace.
func NormalizeName(name string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(strings.ToUpper(name), " "))
}

// ParseName splits a name into first and last. "LAST, FIRST" splits on the
// first comma; otherwise the first word is the first name and the rest the
// last name. A single word is a last name.
func ParseName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	if before, after, ok := strings.Cut(full, ","); ok {
		return strings.TrimSpace(after), strings.TrimSpace(before)
	}
	parts := strings.Fields(full)
	if len(parts) == 1 {
		return "", parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// SplitOwner assigns an owner name to the person or company column by owner
// type. UNKNOWN owners get neither.
func SplitOwner(name string, ot model.OwnerType) (fullName, companyName string) {
	name = strings.TrimSpace(name)
	switch ot {
	case model.OwnerPerson:
		return name, ""
	case model.OwnerLLC, model.OwnerTrust:
		return "", name
	}
	return "", ""
}

// IsComplexName reports names that are hard to reach: longer than maxLen,
// containing a complex-structure pattern, or with more than maxCommas commas.
func IsComplexName(name string, patterns []string, maxLen, maxCommas int) bool {
	if name == "" {
		return false
	}
	if maxLen > 0 && utf8.RuneCountInString(name) > maxLen {
		return true
	}
	if Contains(name, patterns) {
		return true
	}
	return strings.Count(name, ",") > maxCommas
}

// IsSimpleName reports short names free of trust, estate and similar words.
func IsSimpleName(name string, exclusions []string, maxLen int) bool {
	if name == "" {
		return false
	}
	if utf8.RuneCountInString(name) > maxLen {
		return false
	}
	return !Contains(name, exclusions)
}
