// Package fixedwidth extracts records from positional text lines using a
// layout table.
package fixedwidth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/note-leads/internal/layout"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/signal"
)

// Extract returns the trimmed text between 1-based inclusive positions.
// Positions count characters, not bytes. A line shorter than end is read to
// its end; a start past the end yields "".
func Extract(line string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if isASCII(line) {
		if start > len(line) {
			return ""
		}
		if end > len(line) {
			end = len(line)
		}
		if end < start {
			return ""
		}
		return strings.TrimSpace(line[start-1 : end])
	}

	runes := []rune(line)
	if start > len(runes) {
		return ""
	}
	if end > len(runes) {
		end = len(runes)
	}
	if end < start {
		return ""
	}
	return strings.TrimSpace(string(runes[start-1 : end]))
}

// Parser turns lines into properties according to a layout.
type Parser struct {
	layout *layout.Layout
	maxEnd int
}

// NewParser validates l and returns a parser for it.
func NewParser(l *layout.Layout) (*Parser, error) {
	if l == nil {
		return nil, eris.New("fixedwidth: nil layout")
	}
	if err := l.Validate(); err != nil {
		return nil, eris.Wrap(err, "fixedwidth: invalid layout")
	}
	return &Parser{layout: l, maxEnd: l.MaxEnd()}, nil
}

// MaxEnd is the shortest line the parser accepts.
func (p *Parser) MaxEnd() int { return p.maxEnd }

// Fields extracts every declared field and composite by name. It does not
// check line length or numeric content.
func (p *Parser) Fields(line string) map[string]string {
	fields := make(map[string]string, len(p.layout.Fields)+len(p.layout.Composites))
	for _, f := range p.layout.Fields {
		v := Extract(line, f.Start, f.End)
		if f.MaxLen > 0 && utf8.RuneCountInString(v) > f.MaxLen {
			v = strings.TrimSpace(string([]rune(v)[:f.MaxLen]))
		}
		fields[f.Name] = v
	}
	for _, c := range p.layout.Composites {
		parts := make([]string, 0, len(c.Parts))
		for _, name := range c.Parts {
			if v := fields[name]; v != "" {
				parts = append(parts, v)
			}
		}
		fields[c.Name] = strings.Join(parts, " ")
	}
	return fields
}

// Parse extracts one record. A non-empty reason means the line is rejected
// and the property must not be used: the line is shorter than the layout,
// or a numeric field holds something that is not a number.
func (p *Parser) Parse(line string) (model.Property, string) {
	if n := utf8.RuneCountInString(line); n < p.maxEnd {
		return model.Property{}, fmt.Sprintf("Line too short (expected at least %d chars, got %d)", p.maxEnd, n)
	}

	fields := p.Fields(line)

	var errs []string
	for _, f := range p.layout.Fields {
		if !f.Numeric {
			continue
		}
		if v := fields[f.Name]; v != "" {
			if _, ok := signal.ParseAmount(v); !ok {
				errs = append(errs, fmt.Sprintf("Failed to parse numeric field '%s': '%s'", f.Name, v))
			}
		}
	}
	if len(errs) > 0 {
		return model.Property{}, strings.Join(errs, "; ")
	}

	return model.PropertyFromFields(fields), ""
}

// SafeParse is Parse with a panic turned into a rejection reason.
func (p *Parser) SafeParse(line string) (prop model.Property, reason string) {
	defer func() {
		if r := recover(); r != nil {
			prop = model.Property{}
			reason = fmt.Sprintf("Unexpected error: %v", r)
		}
	}()
	return p.Parse(line)
}

// Blank reports whether a line has no content and should be skipped.
func Blank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
