// Package classify assigns entity and owner categories to names using
// ordered keyword lists.
package classify

import (
	"strings"
	"unicode"
)

// shortKeyword is the longest keyword (in letters and digits) that must match
// whole tokens. Longer keywords match anywhere in the text, so "INVEST"
// matches "INVESTMENTS" while "VA" does not match "NOVA".
const shortKeyword = 3

// Match returns the first keyword, in list order, found in text. Matching is
// case-insensitive.
func Match(text string, keywords []string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	upper := strings.ToUpper(text)

	var toks []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if alnumLen(kw) <= shortKeyword {
			if toks == nil {
				toks = Tokens(upper)
			}
			if containsSeq(toks, Tokens(kw)) {
				return kw, true
			}
			continue
		}
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return kw, true
		}
	}
	return "", false
}

// Contains reports whether text matches any keyword.
func Contains(text string, keywords []string) bool {
	_, ok := Match(text, keywords)
	return ok
}

// MatchTokens returns the first keyword whose tokens appear as a contiguous
// run in text. Periods are ignored, so "L.L.C." matches "LLC" and "L L C"
// matches three single-letter tokens.
func MatchTokens(text string, keywords []string) (string, bool) {
	toks := Tokens(text)
	if len(toks) == 0 {
		return "", false
	}
	for _, kw := range keywords {
		if containsSeq(toks, Tokens(kw)) {
			return kw, true
		}
	}
	return "", false
}

// Tokens splits s into uppercase words. Letters, digits, '.' and '&' are word
// characters; periods are then dropped, so "N.A." becomes "NA".
func Tokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '&'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.ReplaceAll(f, ".", ""); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func containsSeq(hay, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(hay) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j, n := range needle {
			if hay[i+j] != n {
				continue outer
			}
		}
		return true
	}
	return false
}

func alnumLen(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
