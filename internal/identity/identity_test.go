package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", Key(""))
	assert.Len(t, Key("a", "b"), 40)
	assert.NotEqual(t, Key("a|b"), Key("a", "b", ""))
	assert.Equal(t, Key("A"), Key("a"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  john   smith ", "JOHN SMITH"},
		{"acme\tllc\n", "ACME LLC"},
		{"SMITH, JOHN", "SMITH, JOHN"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNoteLeadID(t *testing.T) {
	want := "3aaf6d46b870ba8fb2a588d2e00dce3b8d15a346"
	assert.Equal(t, want, NoteLeadID("SMITH, JOHN", "78701", "150,000", "2020-01-15"))
	// Case and surrounding whitespace do not change the id.
	assert.Equal(t, want, NoteLeadID(" smith, john ", " 78701", "150,000 ", " 2020-01-15"))
	assert.NotEqual(t, want, NoteLeadID("SMITH, JOHN", "78702", "150,000", "2020-01-15"))
}

func TestNoteLeadID_InnerWhitespace(t *testing.T) {
	assert.Equal(t,
		NoteLeadID("john smith", "78701", "100000", "2020-01-01"),
		NoteLeadID("JOHN  SMITH", "78701", "100000", "2020-01-01"),
	)
	assert.Equal(t,
		PropertyLeadID("DOE JANE", "1", "78704"),
		PropertyLeadID("doe\tjane ", " 1", "78704"),
	)
}

func TestPropertyLeadID(t *testing.T) {
	assert.Equal(t, "17ae7c88a6478e83c794cdf3970b354119430bee", PropertyLeadID("Doe Jane", "000012345", "78704"))
}

func TestDeterministicAcrossOrder(t *testing.T) {
	records := [][3]string{
		{"ACME LLC", "1", "78701"},
		{"DOE JANE", "2", "78702"},
		{"ACME LLC", "3", "78701"},
	}
	first := map[[3]string]string{}
	for _, r := range records {
		first[r] = PropertyLeadID(r[0], r[1], r[2])
	}
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		assert.Equal(t, first[r], PropertyLeadID(r[0], r[1], r[2]))
	}
}

func TestGroupKey(t *testing.T) {
	assert.Equal(t, "ACME LLC|78701", GroupKey("ACME LLC", " 78701 "))
	assert.Equal(t, "|", GroupKey("", ""))
}
