package group

import "github.com/sells-group/note-leads/internal/classify"

// OwnerCounter counts properties per normalised owner name. It is filled in
// a first pass over the roll and only read afterwards.
type OwnerCounter struct {
	counts map[string]int
}

// NewOwnerCounter returns an empty counter.
func NewOwnerCounter() *OwnerCounter {
	return &OwnerCounter{counts: make(map[string]int)}
}

// Add counts one property for owner. Empty names are ignored.
func (c *OwnerCounter) Add(owner string) {
	if key := classify.NormalizeName(owner); key != "" {
		c.counts[key]++
	}
}

// Count returns the properties seen for owner, at least 1.
func (c *OwnerCounter) Count(owner string) int {
	if n := c.counts[classify.NormalizeName(owner)]; n > 0 {
		return n
	}
	return 1
}

// Owners is the number of distinct owners.
func (c *OwnerCounter) Owners() int { return len(c.counts) }

// MultiOwners is the number of owners holding more than one property.
func (c *OwnerCounter) MultiOwners() int {
	n := 0
	for _, v := range c.counts {
		if v > 1 {
			n++
		}
	}
	return n
}
