// Package mapping turns sheet records into actors and actor field values
// back into cell values.
package mapping

import (
	"fmt"
	"time"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/sheet"
)

// Mapper translates between canonical field keys and native columns for the
// entity types of one registry.
type Mapper struct {
	reg *core.Registry
}

// New returns a Mapper over reg.
func New(reg *core.Registry) *Mapper {
	return &Mapper{reg: reg}
}

// Registry returns the registry the mapper reads from.
func (m *Mapper) Registry() *core.Registry {
	return m.reg
}

// Definition returns the definition of t or a NotFound error.
func (m *Mapper) Definition(t core.EntityType) (core.EntityDefinition, error) {
	def, ok := m.reg.Get(t)
	if !ok {
		return core.EntityDefinition{}, fmt.Errorf("unsupported actor type %q: %w", t, core.ErrNotFound)
	}
	return def, nil
}

// FieldsFor returns the field catalog of t with canonical keys.
func (m *Mapper) FieldsFor(t core.EntityType) ([]core.FieldMetadata, error) {
	if _, err := m.Definition(t); err != nil {
		return nil, err
	}
	return m.reg.Fields(t), nil
}

// ToNative translates a canonical key to a column name.
func (m *Mapper) ToNative(t core.EntityType, key string) string {
	return m.reg.ToNative(t, key)
}

// ToCanonical translates a column name to a canonical key.
func (m *Mapper) ToCanonical(t core.EntityType, column string) string {
	return m.reg.ToCanonical(t, column)
}

// fieldType returns the declared type of a canonical key, Text when unknown.
func (m *Mapper) fieldType(t core.EntityType, key string) core.FieldType {
	if f, ok := m.reg.Field(t, key); ok {
		return f.Type
	}
	return core.FieldText
}

// FieldValue returns the wire value of a canonical key in rec. The second
// result is false when the record has no such column.
func (m *Mapper) FieldValue(rec *sheet.Record, t core.EntityType, key string) (string, bool) {
	v, ok := rec.Lookup(m.ToNative(t, key))
	if !ok {
		return "", false
	}
	return core.EncodeCell(m.fieldType(t, key), v), true
}

// DecodeRow builds the actor for rec with the requested canonical keys.
// Keys missing from the record are left out. Returns nil for an empty record.
func (m *Mapper) DecodeRow(rec *sheet.Record, t core.EntityType, keys []string) *core.Actor {
	if rec.Len() == 0 {
		return nil
	}

	actor := &core.Actor{
		ActorType:    t,
		ErpKey:       rec.ID(),
		LastModified: core.FormatDate(time.Time{}),
		FieldValues:  make(map[string]string, len(keys)),
	}

	if v, ok := rec.Lookup(core.LastModifiedColumn); ok {
		if ts, isTime := v.(time.Time); isTime {
			actor.LastModified = core.FormatDate(ts)
		}
	}

	if def, ok := m.reg.Get(t); ok && def.HasParent {
		actor.ParentErpKey = rec.String(core.ParentIDColumn)
		actor.ParentActorType = rec.String(core.ParentTypeColumn)
	}

	for _, key := range keys {
		if value, ok := m.FieldValue(rec, t, key); ok {
			actor.FieldValues[key] = value
		}
	}

	return actor
}

// DecodeRows decodes every record, dropping empty ones.
func (m *Mapper) DecodeRows(records []*sheet.Record, t core.EntityType, keys []string) []*core.Actor {
	actors := make([]*core.Actor, 0, len(records))
	for _, rec := range records {
		if a := m.DecodeRow(rec, t, keys); a != nil {
			actors = append(actors, a)
		}
	}
	return actors
}

// EncodeFields converts canonical wire values to native cell values keyed by
// column name.
func (m *Mapper) EncodeFields(t core.EntityType, values map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[m.ToNative(t, key)] = core.DecodeWire(m.fieldType(t, key), value)
	}
	return out
}

// LastModified returns the LastModified timestamp of rec, or the zero time.
func LastModified(rec *sheet.Record) time.Time {
	v, _ := rec.Lookup(core.LastModifiedColumn)
	ts, _ := v.(time.Time)
	return ts
}
