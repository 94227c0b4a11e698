package sheet

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheetlink/internal/core"
)

// MissingHeader labels a column whose header cell is blank.
const MissingHeader = "MISSING HEADER"

// Schema maps header text to 1-based column index for one sheet.
// The first occurrence of a header wins.
type Schema struct {
	Sheet   string
	columns []string
	index   map[string]int
}

// Schema reads row 1 of sheet. It fails when the sheet is missing or holds
// no data.
func (d *Document) Schema(sheet string) (*Schema, error) {
	name, ext, err := d.dataExtent(sheet)
	if err != nil {
		return nil, err
	}

	s := &Schema{Sheet: name, index: make(map[string]int, ext.Cols)}
	for col := 1; col <= ext.Cols; col++ {
		v, err := d.cell(name, 1, col)
		if err != nil {
			return nil, err
		}

		header := strings.TrimSpace(core.CellString(v))
		if header == "" {
			header = MissingHeader
		}
		if _, seen := s.index[header]; seen {
			continue
		}
		s.index[header] = col
		s.columns = append(s.columns, header)
	}
	return s, nil
}

// Columns returns the header names in column order.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Index returns the column of header, matching case exactly.
func (s *Schema) Index(header string) (int, bool) {
	col, ok := s.index[header]
	return col, ok
}

// Find returns the column and actual header text of header, ignoring case.
func (s *Schema) Find(header string) (string, int, bool) {
	if col, ok := s.index[header]; ok {
		return header, col, true
	}
	for _, name := range s.columns {
		if strings.EqualFold(name, header) {
			return name, s.index[name], true
		}
	}
	return "", 0, false
}

// Has reports whether header exists, matching case exactly.
func (s *Schema) Has(header string) bool {
	_, ok := s.index[header]
	return ok
}

// Len returns the number of distinct headers.
func (s *Schema) Len() int {
	return len(s.columns)
}

func (s *Schema) idColumn() (int, error) {
	col, ok := s.index[core.IDColumn]
	if !ok {
		return 0, fmt.Errorf("sheet '%s' has no identifier column %q: %w", s.Sheet, core.IDColumn, core.ErrInvalidSchema)
	}
	return col, nil
}
