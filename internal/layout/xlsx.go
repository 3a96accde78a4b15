package layout

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/note-leads/internal/fetcher"
)

// DefaultSheet is the layout workbook sheet describing PROP.TXT.
const DefaultSheet = "Property"

// SourceNames maps each built-in field to its column name in the export
// layout workbook.
var SourceNames = map[string]string{
	"account_id":          "prop_id",
	"owner_name":          "py_owner_name",
	"situs_city":          "situs_city",
	"situs_state":         "py_addr_state",
	"situs_zip":           "situs_zip",
	"mailing_address":     "py_addr_line1",
	"mailing_city":        "py_addr_city",
	"mailing_state":       "py_addr_state",
	"mailing_zip":         "py_addr_zip",
	"property_type":       "prop_type_cd",
	"land_value":          "land_hstd_val",
	"improvement_value":   "imprv_hstd_val",
	"total_value":         "appraised_val",
	"assessed_year":       "prop_val_yr",
	"situs_street_prefx":  "situs_street_prefx",
	"situs_street":        "situs_street",
	"situs_street_suffix": "situs_street_suffix",
}

// Position is one (start, end) row read from a layout workbook.
type Position struct {
	Start  int
	End    int
	Length int
}

// ReadSheet reads field positions from a layout workbook sheet. The header
// row is the first row whose first cell contains "Field Name"; the Start,
// End, and Length columns are located from it. Rows without both positions
// are skipped.
func ReadSheet(path, sheet string) (map[string]Position, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	tbl, err := fetcher.ReadTable(path, sheet, "Field Name")
	if err != nil {
		return nil, eris.Wrap(err, "layout: read workbook")
	}

	startCol, endCol, lenCol := tbl.Column("start"), tbl.Column("end"), tbl.Column("length", "len")
	if startCol < 0 {
		startCol = 2
	}
	if endCol < 0 {
		endCol = 3
	}

	positions := make(map[string]Position)
	for _, row := range tbl.Rows {
		start, okStart := fetcher.CellInt(row, startCol)
		end, okEnd := fetcher.CellInt(row, endCol)
		if !okStart || !okEnd {
			continue
		}
		length, _ := fetcher.CellInt(row, lenCol)
		positions[strings.TrimSpace(row[0])] = Position{Start: start, End: end, Length: length}
	}
	return positions, nil
}

// LoadXLSX builds a layout from a layout workbook, taking positions for
// every built-in field from its source column and keeping the built-in
// composite and numeric rules.
func LoadXLSX(path, sheet string) (*Layout, error) {
	positions, err := ReadSheet(path, sheet)
	if err != nil {
		return nil, err
	}

	l := Default()
	l.Version = "xlsx:" + path

	var missing []string
	for i, f := range l.Fields {
		src := SourceNames[f.Name]
		pos, ok := positions[src]
		if !ok {
			missing = append(missing, src)
			continue
		}
		l.Fields[i].Start = pos.Start
		l.Fields[i].End = pos.End
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("layout: sheet missing fields: %s", strings.Join(missing, ", "))
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}
