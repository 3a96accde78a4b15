// Package identity builds the deterministic keys that recognise the same
// lead, owner or property across records and runs.
package identity

import (
	"crypto/sha1" //nolint:gosec // content address, not a security boundary
	"encoding/hex"
	"strings"
)

// Normalize upper-cases s and collapses every run of whitespace to a single
// space, trimming both ends.
func Normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// Key returns the hex SHA-1 of the normalised parts joined with "|".
func Key(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = Normalize(p)
	}
	sum := sha1.Sum([]byte(strings.Join(norm, "|"))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// NoteLeadID identifies a recorded note by lender name, mailing zip, and the
// loan amount and recording date as recorded.
func NoteLeadID(fullName, mailingZip, loanAmount, recordingDate string) string {
	return Key(fullName, mailingZip, loanAmount, recordingDate)
}

// PropertyLeadID identifies a property lead by owner, account and mailing zip.
func PropertyLeadID(ownerName, accountID, mailingZip string) string {
	return Key(ownerName, accountID, mailingZip)
}

// GroupKey is the plain-text owner grouping key: name and zip joined by "|".
// name should already be normalised.
func GroupKey(name, zip string) string {
	return name + "|" + strings.TrimSpace(zip)
}
