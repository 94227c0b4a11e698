// Package sheet is a small record store on top of an Excel workbook.
//
// A Document is opened per operation, read and written through excelize, and
// saved back as a whole. Row 1 of every sheet is its header. Sheets that hold
// records carry an "ID" column with a unique positive integer per row.
//
// Cell values come back typed: string, float64, bool, time.Time (for date
// formatted numbers and ISO date cells) or nil for empty cells.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sheetlink/internal/core"
)

// NoIdentifierColumn is returned by LastRow when a sheet has no ID column.
const NoIdentifierColumn = -100

var supportedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// Document is an open workbook.
type Document struct {
	f    *excelize.File
	path string
	now  func() time.Time

	// highWater holds the largest id allocated per sheet so an id is never
	// handed out twice while the document is open.
	highWater  map[string]int
	dateStyles map[int]bool
}

// Option configures a Document.
type Option func(*Document)

// WithClock sets the clock used to stamp LastModified.
func WithClock(now func() time.Time) Option {
	return func(d *Document) {
		d.now = now
	}
}

// Open opens the workbook at path.
func Open(path string, opts ...Option) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, fmt.Errorf("open '%s': unsupported extension %q: %w", path, ext, core.ErrIO)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("excel file '%s' does not exist: %w", path, core.ErrIO)
		}
		return nil, fmt.Errorf("cannot open Excel file '%s': %v: %w", path, err, core.ErrIO)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open Excel file '%s': %v: %w", path, err, core.ErrIO)
	}

	return newDocument(f, path, opts...), nil
}

func newDocument(f *excelize.File, path string, opts ...Option) *Document {
	d := &Document{
		f:          f,
		path:       path,
		now:        time.Now,
		highWater:  make(map[string]int),
		dateStyles: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Path returns the file the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// Close releases the workbook without saving.
func (d *Document) Close() error {
	return d.f.Close()
}

// Save writes the whole workbook back to its path.
func (d *Document) Save() error {
	if err := d.f.SaveAs(d.path); err != nil {
		return fmt.Errorf("cannot save Excel file '%s': %v: %w", d.path, err, core.ErrIO)
	}
	return nil
}

// Sheets returns the sheet names in workbook order.
func (d *Document) Sheets() []string {
	return d.f.GetSheetList()
}

// SheetAt returns the name of the sheet at ordinal i (0-based).
func (d *Document) SheetAt(i int) (string, bool) {
	sheets := d.f.GetSheetList()
	if i < 0 || i >= len(sheets) {
		return "", false
	}
	return sheets[i], true
}

// resolve finds the sheet called name, ignoring case.
func (d *Document) resolve(name string) (string, error) {
	for _, s := range d.f.GetSheetList() {
		if strings.EqualFold(s, name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("there is no sheet named '%s' in the Excel file '%s': %w", name, d.path, core.ErrNotFound)
}

// HasSheet reports whether a sheet called name exists, ignoring case.
func (d *Document) HasSheet(name string) bool {
	_, err := d.resolve(name)
	return err == nil
}

// Extent is the populated area of a sheet, starting at A1.
type Extent struct {
	Rows int
	Cols int
}

// Empty reports whether no cell of the sheet holds data.
func (e Extent) Empty() bool {
	return e.Rows == 0
}

// Extent returns the populated area of sheet. An empty sheet yields a zero
// Extent without error.
func (d *Document) Extent(sheet string) (Extent, error) {
	name, err := d.resolve(sheet)
	if err != nil {
		return Extent{}, err
	}

	rows, err := d.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Extent{}, fmt.Errorf("read sheet '%s': %v: %w", name, err, core.ErrIO)
	}

	var ext Extent
	for i, row := range rows {
		for j, cell := range row {
			if cell == "" {
				continue
			}
			ext.Rows = max(ext.Rows, i+1)
			ext.Cols = max(ext.Cols, j+1)
		}
	}
	return ext, nil
}

// dataExtent is Extent but fails when the sheet holds no data.
func (d *Document) dataExtent(sheet string) (string, Extent, error) {
	name, err := d.resolve(sheet)
	if err != nil {
		return "", Extent{}, err
	}
	ext, err := d.Extent(name)
	if err != nil {
		return "", Extent{}, err
	}
	if ext.Empty() {
		return "", Extent{}, fmt.Errorf("sheet '%s' in Excel file '%s' did not have a dimension with data: %w",
			name, d.path, core.ErrInvalidSchema)
	}
	return name, ext, nil
}

// Cell reads the typed value at row, col (both 1-based).
func (d *Document) Cell(sheet string, row, col int) (any, error) {
	name, err := d.resolve(sheet)
	if err != nil {
		return nil, err
	}
	return d.cell(name, row, col)
}

func (d *Document) cell(sheet string, row, col int) (any, error) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, d.readError(sheet, row, col, err)
	}

	raw, err := d.f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, d.readError(sheet, row, col, err)
	}
	if raw == "" {
		return nil, nil
	}

	typ, err := d.f.GetCellType(sheet, ref)
	if err != nil {
		return nil, d.readError(sheet, row, col, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, core.SortableLayout, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return raw, nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return raw, nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, nil
	}
	if d.isDateStyled(sheet, ref) {
		if t, err := excelize.ExcelDateToTime(n, false); err == nil {
			return t, nil
		}
	}
	return n, nil
}

func (d *Document) readError(sheet string, row, col int, err error) error {
	return fmt.Errorf("problem reading value from row %d, col %d in sheet %s: %v: %w", row, col, sheet, err, core.ErrIO)
}

// SetCell writes v at row, col (both 1-based). A nil v clears the cell.
func (d *Document) SetCell(sheet string, row, col int, v any) error {
	name, err := d.resolve(sheet)
	if err != nil {
		return err
	}
	return d.setCell(name, row, col, v)
}

func (d *Document) setCell(sheet string, row, col int, v any) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("problem writing row %d, col %d in sheet %s: %w", row, col, sheet, err)
	}
	if v == nil {
		v = ""
	}
	if err := d.f.SetCellValue(sheet, ref, v); err != nil {
		return fmt.Errorf("problem writing row %d, col %d in sheet %s: %v: %w", row, col, sheet, err, core.ErrIO)
	}
	return nil
}

// WriteRow writes values into consecutive cells of row starting at col.
func (d *Document) WriteRow(sheet string, row, col int, values ...any) error {
	name, err := d.resolve(sheet)
	if err != nil {
		return err
	}
	for i, v := range values {
		if err := d.setCell(name, row, col+i, v); err != nil {
			return err
		}
	}
	return nil
}

// isDateStyled reports whether the number format of the cell shows a date.
func (d *Document) isDateStyled(sheet, ref string) bool {
	id, err := d.f.GetCellStyle(sheet, ref)
	if err != nil || id == 0 {
		return false
	}
	if v, ok := d.dateStyles[id]; ok {
		return v
	}

	style, err := d.f.GetStyle(id)
	v := err == nil && style != nil && isDateFormat(style.NumFmt, style.CustomNumFmt)
	d.dateStyles[id] = v
	return v
}

// isDateFormat recognizes the built-in date/time formats and custom formats
// that contain day, year or hour tokens outside quoted or bracketed text.
func isDateFormat(numFmt int, custom *string) bool {
	switch {
	case numFmt >= 14 && numFmt <= 22,
		numFmt >= 27 && numFmt <= 36,
		numFmt >= 45 && numFmt <= 47,
		numFmt >= 50 && numFmt <= 58:
		return true
	}
	if custom == nil {
		return false
	}

	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(*custom) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == '[' && !inQuote:
			inBracket = true
		case r == ']' && !inQuote:
			inBracket = false
		case !inQuote && !inBracket:
			b.WriteRune(r)
		}
	}
	stripped := b.String()
	return strings.ContainsAny(stripped, "ydh")
}
