package search

import (
	"slices"
	"strconv"
	"strings"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/mapping"
	"github.com/JonMunkholm/sheetlink/internal/sheet"
)

// MatchSubstring returns the records where, for at least one of columns, the
// cell text contains text or text contains the (non-empty) cell text. Both
// comparisons ignore case. An empty columns list searches every column.
func MatchSubstring(records []*sheet.Record, text string, columns []string) []*sheet.Record {
	needle := strings.ToLower(text)

	var matched []*sheet.Record
	for _, rec := range records {
		cols := columns
		if len(cols) == 0 {
			cols = rec.Columns()
		}
		for _, col := range cols {
			v, ok := rec.Lookup(col)
			if !ok {
				continue
			}
			val := strings.ToLower(core.CellString(v))
			if strings.Contains(val, needle) || (val != "" && strings.Contains(needle, val)) {
				matched = append(matched, rec)
				break
			}
		}
	}
	return matched
}

// MatchRestrictions returns the records of entity type t that satisfy every
// restriction. Restrictions on fields the type does not define, or on
// columns the record lacks, are ignored. A malformed restriction is an
// ErrValidation error.
func MatchRestrictions(m *mapping.Mapper, t core.EntityType, records []*sheet.Record, restrictions []Restriction) ([]*sheet.Record, error) {
	compiled := make([]*compiledRestriction, 0, len(restrictions))
	for _, r := range restrictions {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if c := compile(m, t, r); c != nil {
			compiled = append(compiled, c)
		}
	}

	var matched []*sheet.Record
	for _, rec := range records {
		ok := true
		for _, c := range compiled {
			if !c.match(rec) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

type compiledRestriction struct {
	column string
	field  core.FieldMetadata
	op     Operator
	values []string

	// List fields compare item ids. listErr marks restriction values that
	// are not ids; such a restriction matches nothing.
	listIDs []int
	listErr bool
}

// compile resolves the restriction's column and field. Returns nil when the
// field is unknown for t.
func compile(m *mapping.Mapper, t core.EntityType, r Restriction) *compiledRestriction {
	op, _ := ParseOperator(string(r.Operator))
	c := &compiledRestriction{op: op, values: slices.Clone(r.Values)}

	switch strings.ToUpper(strings.TrimSpace(r.FieldKey)) {
	case core.ParentErpKeyAlias:
		c.column = core.ParentIDColumn
		c.field = core.FieldMetadata{Key: core.ParentIDColumn, Type: core.FieldText}
		return c
	case core.ParentActorTypeAlias:
		c.column = core.ParentTypeColumn
		c.field = core.FieldMetadata{Key: core.ParentTypeColumn, Type: core.FieldText}
		return c
	}

	field, ok := m.Registry().Field(t, r.FieldKey)
	if !ok {
		return nil
	}
	c.field = field
	c.column = m.ToNative(t, field.Key)

	if field.Type == core.FieldList {
		for _, v := range r.Values {
			id, err := core.ParseWireInt(v)
			if err != nil {
				c.listErr = true
				break
			}
			c.listIDs = append(c.listIDs, id)
		}
	} else {
		for i, v := range c.values {
			c.values[i] = normalize(field.Type, v)
		}
	}
	return c
}

func (c *compiledRestriction) match(rec *sheet.Record) bool {
	v, ok := rec.Lookup(c.column)
	if !ok {
		return true
	}
	if c.field.Type == core.FieldList {
		return c.matchList(v)
	}
	return c.matchWire(core.EncodeCell(c.field.Type, v))
}

func (c *compiledRestriction) matchList(v any) bool {
	if c.listErr {
		return false
	}
	id, ok := core.ToListID(v)
	if !ok {
		return false
	}

	in := slices.Contains(c.listIDs, id)
	switch c.op {
	case OpNotOneOf, OpNotEquals:
		return !in
	case OpGreater:
		return id > c.listIDs[0]
	case OpLess:
		return id < c.listIDs[0]
	default:
		return in
	}
}

func (c *compiledRestriction) matchWire(wire string) bool {
	lower := strings.ToLower(wire)

	switch c.op {
	case OpEquals, OpOneOf:
		return c.anyValue(func(v string) bool { return strings.EqualFold(wire, v) })
	case OpNotEquals, OpNotOneOf:
		return !c.anyValue(func(v string) bool { return strings.EqualFold(wire, v) })
	case OpContains:
		return c.anyValue(func(v string) bool { return strings.Contains(lower, strings.ToLower(v)) })
	case OpBegins:
		return c.anyValue(func(v string) bool { return strings.HasPrefix(lower, strings.ToLower(v)) })
	case OpGreater:
		return compareWire(c.field.Type, wire, c.values[0]) > 0
	case OpLess:
		return compareWire(c.field.Type, wire, c.values[0]) < 0
	}
	return false
}

func (c *compiledRestriction) anyValue(pred func(string) bool) bool {
	return slices.ContainsFunc(c.values, pred)
}

// normalize brings a restriction value into the same wire form as the
// encoded cell so that "1.50" equals "1.5" and "2024-03-15" equals
// "2024-03-15T00:00:00". Values that do not parse are compared as given.
func normalize(t core.FieldType, v string) string {
	switch t {
	case core.FieldInteger, core.FieldDouble, core.FieldDatetime, core.FieldCheckbox:
		decoded := core.DecodeWire(t, v)
		if _, raw := decoded.(string); raw {
			return v
		}
		return core.EncodeCell(t, decoded)
	}
	return v
}

// compareWire orders two wire values: numerically for numbers, lexically
// otherwise (the sortable date layout orders chronologically).
func compareWire(t core.FieldType, a, b string) int {
	if t == core.FieldInteger || t == core.FieldDouble {
		x, errA := strconv.ParseFloat(a, 64)
		y, errB := strconv.ParseFloat(b, 64)
		if errA == nil && errB == nil {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
