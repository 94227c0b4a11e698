package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/sheetlink/internal/core"
)

// LastRow returns the row index of the last record: the ID column is scanned
// from row 2 down to the first empty cell. A sheet with only a header yields 1.
// Returns NoIdentifierColumn when the sheet has no ID column.
func (d *Document) LastRow(sheet string) (int, error) {
	schema, err := d.Schema(sheet)
	if err != nil {
		return 0, err
	}
	return d.lastRow(schema)
}

func (d *Document) lastRow(schema *Schema) (int, error) {
	idCol, ok := schema.Index(core.IDColumn)
	if !ok {
		return NoIdentifierColumn, nil
	}

	for row := 2; ; row++ {
		v, err := d.cell(schema.Sheet, row, idCol)
		if err != nil {
			return 0, err
		}
		if isEmpty(v) {
			return row - 1, nil
		}
	}
}

// ReadRow reads row into a Record following schema.
func (d *Document) ReadRow(schema *Schema, row int) (*Record, error) {
	rec := NewRecord(schema.Sheet, row)
	for _, col := range schema.columns {
		v, err := d.cell(schema.Sheet, row, schema.index[col])
		if err != nil {
			return nil, err
		}
		rec.Set(col, v)
	}
	return rec, nil
}

// GetByID returns the first record whose ID equals id, or nil when there is
// none. An id that is not an integer also yields nil.
func (d *Document) GetByID(sheet, id string) (*Record, error) {
	want, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return nil, nil
	}

	schema, err := d.Schema(sheet)
	if err != nil {
		return nil, err
	}
	row, err := d.findRow(schema, want)
	if err != nil || row == 0 {
		return nil, err
	}
	return d.ReadRow(schema, row)
}

// findRow returns the row holding id, or 0.
func (d *Document) findRow(schema *Schema, id int) (int, error) {
	idCol, err := schema.idColumn()
	if err != nil {
		return 0, err
	}
	last, err := d.lastRow(schema)
	if err != nil {
		return 0, err
	}

	for row := 2; row <= last; row++ {
		v, err := d.cell(schema.Sheet, row, idCol)
		if err != nil {
			return 0, err
		}
		if n, ok := parseID(v); ok && n == id {
			return row, nil
		}
	}
	return 0, nil
}

// GetAll returns every record with a non-empty ID, in row order.
func (d *Document) GetAll(sheet string) ([]*Record, error) {
	schema, err := d.Schema(sheet)
	if err != nil {
		return nil, err
	}
	if _, err := schema.idColumn(); err != nil {
		return nil, err
	}
	last, err := d.lastRow(schema)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, max(last-1, 0))
	for row := 2; row <= last; row++ {
		rec, err := d.ReadRow(schema, row)
		if err != nil {
			return nil, err
		}
		if rec.ID() == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// NextID returns max(existing ids)+1, or 1 for an empty sheet. Non-numeric
// ids are ignored. Ids allocated earlier through this document are never
// returned again.
func (d *Document) NextID(sheet string) (int, error) {
	schema, err := d.Schema(sheet)
	if err != nil {
		return 0, err
	}
	return d.nextID(schema)
}

func (d *Document) nextID(schema *Schema) (int, error) {
	idCol, err := schema.idColumn()
	if err != nil {
		return 0, err
	}
	last, err := d.lastRow(schema)
	if err != nil {
		return 0, err
	}

	highest := d.highWater[schema.Sheet]
	for row := 2; row <= last; row++ {
		v, err := d.cell(schema.Sheet, row, idCol)
		if err != nil {
			return 0, err
		}
		if n, ok := parseID(v); ok && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

// Insert allocates the next id, writes it into a new row after the last
// record and saves. The remaining values are then written by Update, which
// saves again. A caller-supplied ID is ignored.
func (d *Document) Insert(sheet string, values map[string]any) (int, error) {
	schema, err := d.Schema(sheet)
	if err != nil {
		return 0, err
	}
	idCol, err := schema.idColumn()
	if err != nil {
		return 0, err
	}

	id, err := d.nextID(schema)
	if err != nil {
		return 0, err
	}
	last, err := d.lastRow(schema)
	if err != nil {
		return 0, err
	}

	if err := d.setCell(schema.Sheet, last+1, idCol, id); err != nil {
		return 0, err
	}
	d.highWater[schema.Sheet] = id
	if err := d.Save(); err != nil {
		return 0, err
	}

	rest := make(map[string]any, len(values))
	for k, v := range values {
		if k != core.IDColumn {
			rest[k] = v
		}
	}
	found, err := d.Update(sheet, strconv.Itoa(id), rest)
	if err != nil {
		return id, err
	}
	if !found {
		return id, fmt.Errorf("row not found for new id %d in sheet %s: %w", id, schema.Sheet, core.ErrNotFound)
	}
	return id, nil
}

// Update overwrites the columns of the record with id whose value differs
// from values, stamps LastModified with the current time and saves. Columns
// missing from values are left alone. Returns false when id does not exist.
func (d *Document) Update(sheet, id string, values map[string]any) (bool, error) {
	want, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return false, nil
	}

	schema, err := d.Schema(sheet)
	if err != nil {
		return false, err
	}
	row, err := d.findRow(schema, want)
	if err != nil || row == 0 {
		return false, err
	}

	for _, col := range schema.columns {
		idx := schema.index[col]

		if strings.EqualFold(col, core.LastModifiedColumn) {
			if err := d.setCell(schema.Sheet, row, idx, d.now()); err != nil {
				return false, err
			}
			continue
		}

		proposed, ok := values[col]
		if !ok {
			continue
		}
		current, err := d.cell(schema.Sheet, row, idx)
		if err != nil {
			return false, err
		}
		if core.CellString(current) == core.CellString(proposed) {
			continue
		}
		if err := d.setCell(schema.Sheet, row, idx, proposed); err != nil {
			return false, err
		}
	}

	if err := d.Save(); err != nil {
		return false, err
	}
	return true, nil
}

func isEmpty(v any) bool {
	return strings.TrimSpace(core.CellString(v)) == ""
}

func parseID(v any) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(core.CellString(v)))
	if err != nil {
		return 0, false
	}
	return n, true
}
