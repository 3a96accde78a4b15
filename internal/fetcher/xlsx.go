package fetcher

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Table is a block of spreadsheet rows under a header row.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

// ReadTable reads the table on sheet whose header is the first row with
// marker in its first cell (case-insensitive). Title rows above the header
// are skipped and the table ends at the first row with an empty first cell.
// Numeric cells read as whole numbers when they have no fraction, so a
// position stored as 12.0 reads "12".
func ReadTable(path, sheet, marker string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	sh, ok := f.Sheet[sheet]
	if !ok {
		names := make([]string, 0, len(f.Sheets))
		for _, s := range f.Sheets {
			names = append(names, s.Name)
		}
		return nil, eris.Errorf("xlsx: sheet %q not found (sheets: %v)", sheet, names)
	}

	t := &Table{Sheet: sheet}
	lower := strings.ToLower(marker)
	for _, row := range sh.Rows {
		if row == nil {
			continue
		}
		cells := cellStrings(row)
		first := ""
		if len(cells) > 0 {
			first = strings.TrimSpace(cells[0])
		}
		if t.Header == nil {
			if strings.Contains(strings.ToLower(first), lower) {
				t.Header = cells
			}
			continue
		}
		if first == "" {
			break
		}
		t.Rows = append(t.Rows, cells)
	}
	if t.Header == nil {
		return nil, eris.Errorf("xlsx: no %q header row in sheet %q", marker, sheet)
	}
	return t, nil
}

// Column returns the index of the first header cell equal to one of names,
// ignoring case and surrounding space, or -1.
func (t *Table) Column(names ...string) int {
	for j, cell := range t.Header {
		cell = strings.ToLower(strings.TrimSpace(cell))
		for _, n := range names {
			if cell == strings.ToLower(n) {
				return j
			}
		}
	}
	return -1
}

// CellInt parses row[col] as a whole number. A missing or blank cell is not ok.
func CellInt(row []string, col int) (int, bool) {
	if col < 0 || col >= len(row) {
		return 0, false
	}
	s := strings.TrimSpace(row[col])
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func cellStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell.Type() == xlsx.CellTypeNumeric {
			if v, err := cell.Float(); err == nil {
				cells[j] = strconv.FormatFloat(v, 'f', -1, 64)
				continue
			}
		}
		cells[j] = cell.String()
	}
	return cells
}
