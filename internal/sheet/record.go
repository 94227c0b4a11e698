package sheet

import (
	"strings"

	"github.com/JonMunkholm/sheetlink/internal/core"
)

// Record is one row of a sheet: column name to raw typed value, in column order.
type Record struct {
	Sheet string
	Row   int

	cols []string
	vals map[string]any
}

// NewRecord returns an empty record for row of sheet.
func NewRecord(sheet string, row int) *Record {
	return &Record{Sheet: sheet, Row: row, vals: make(map[string]any)}
}

// Set stores v under col. New columns are appended to the order.
func (r *Record) Set(col string, v any) {
	if _, ok := r.vals[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = v
}

// Get returns the value of col, matching case exactly.
func (r *Record) Get(col string) (any, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Lookup returns the value of col, ignoring case.
func (r *Record) Lookup(col string) (any, bool) {
	if v, ok := r.vals[col]; ok {
		return v, true
	}
	for _, c := range r.cols {
		if strings.EqualFold(c, col) {
			return r.vals[c], true
		}
	}
	return nil, false
}

// String returns the string form of col, or "" when absent.
func (r *Record) String(col string) string {
	return core.CellString(r.vals[col])
}

// ID returns the identifier cell as a string.
func (r *Record) ID() string {
	return r.String(core.IDColumn)
}

// Columns returns the column names in order.
func (r *Record) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// Len returns the number of columns.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.cols)
}

// Map returns a copy of the values.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.vals))
	for k, v := range r.vals {
		out[k] = v
	}
	return out
}
