package core

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is an immutable set of entity definitions with precomputed
// translation tables. Build it once with NewRegistry and share it freely.
type Registry struct {
	defs      map[EntityType]EntityDefinition
	toNative  map[EntityType]map[string]string // upper(canonical) -> native
	toCanon   map[EntityType]map[string]string // upper(native) -> canonical
	canonical map[EntityType][]FieldMetadata
}

// NewRegistry validates defs and builds the registry.
// Duplicate types, duplicate field keys and non-invertible mappings are errors.
func NewRegistry(defs ...EntityDefinition) (*Registry, error) {
	r := &Registry{
		defs:      make(map[EntityType]EntityDefinition, len(defs)),
		toNative:  make(map[EntityType]map[string]string, len(defs)),
		toCanon:   make(map[EntityType]map[string]string, len(defs)),
		canonical: make(map[EntityType][]FieldMetadata, len(defs)),
	}

	for _, def := range defs {
		if def.Type == "" {
			return nil, fmt.Errorf("entity definition without type: %w", ErrValidation)
		}
		if _, exists := r.defs[def.Type]; exists {
			return nil, fmt.Errorf("entity type already registered: %s", def.Type)
		}

		native := make(map[string]string, len(def.Mapping))
		canon := make(map[string]string, len(def.Mapping))
		for n, c := range def.Mapping {
			if prev, dup := native[strings.ToUpper(c)]; dup {
				return nil, fmt.Errorf("%s: canonical key %s mapped from both %s and %s", def.Type, c, prev, n)
			}
			native[strings.ToUpper(c)] = n
			canon[strings.ToUpper(n)] = c
		}

		seen := make(map[string]bool, len(def.Fields))
		fields := make([]FieldMetadata, len(def.Fields))
		for i, f := range def.Fields {
			key := strings.ToUpper(f.Key)
			if seen[key] {
				return nil, fmt.Errorf("%s: duplicate field %s", def.Type, f.Key)
			}
			seen[key] = true

			fields[i] = f
			if c, ok := canon[key]; ok {
				fields[i].Key = c
			}
		}

		r.defs[def.Type] = def
		r.toNative[def.Type] = native
		r.toCanon[def.Type] = canon
		r.canonical[def.Type] = fields
	}

	return r, nil
}

// MustRegistry is NewRegistry for static definitions; it panics on error.
func MustRegistry(defs ...EntityDefinition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the definition for t.
func (r *Registry) Get(t EntityType) (EntityDefinition, bool) {
	def, ok := r.defs[t]
	return def, ok
}

// Lookup finds an entity type by name, ignoring case.
func (r *Registry) Lookup(name string) (EntityDefinition, bool) {
	if def, ok := r.defs[EntityType(name)]; ok {
		return def, true
	}
	for t, def := range r.defs {
		if strings.EqualFold(string(t), name) {
			return def, true
		}
	}
	return EntityDefinition{}, false
}

// All returns every definition sorted by group then type.
func (r *Registry) All() []EntityDefinition {
	result := make([]EntityDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Group != result[j].Group {
			return result[i].Group < result[j].Group
		}
		return result[i].Type < result[j].Type
	})

	return result
}

// ByGroup returns the definitions of one group sorted by type.
func (r *Registry) ByGroup(group string) []EntityDefinition {
	var result []EntityDefinition
	for _, def := range r.defs {
		if def.Group == group {
			result = append(result, def)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Type < result[j].Type
	})

	return result
}

// Actors returns the actor types in their declared order.
func (r *Registry) Actors() []EntityType {
	order := []EntityType{EntityCustomer, EntitySupplier, EntityPerson, EntityProject}
	result := make([]EntityType, 0, len(order))
	for _, t := range order {
		if def, ok := r.defs[t]; ok && def.Group == GroupActor {
			result = append(result, t)
		}
	}
	return result
}

// Fields returns the field catalog of t with keys translated to canonical form.
// The slice is a copy.
func (r *Registry) Fields(t EntityType) []FieldMetadata {
	fields := r.canonical[t]
	out := make([]FieldMetadata, len(fields))
	copy(out, fields)
	return out
}

// Field finds a field of t by canonical key, ignoring case.
func (r *Registry) Field(t EntityType, key string) (FieldMetadata, bool) {
	for _, f := range r.canonical[t] {
		if strings.EqualFold(f.Key, key) {
			return f, true
		}
	}
	return FieldMetadata{}, false
}

// FieldExact finds a field of t by canonical key, matching case exactly.
func (r *Registry) FieldExact(t EntityType, key string) (FieldMetadata, bool) {
	for _, f := range r.canonical[t] {
		if f.Key == key {
			return f, true
		}
	}
	return FieldMetadata{}, false
}

// ToNative translates a canonical key to the native column name.
// Unknown keys are returned unchanged.
func (r *Registry) ToNative(t EntityType, canonical string) string {
	if n, ok := r.toNative[t][strings.ToUpper(canonical)]; ok {
		return n
	}
	return canonical
}

// ToCanonical translates a native column name to the canonical key.
// Unknown names are returned unchanged.
func (r *Registry) ToCanonical(t EntityType, native string) string {
	if c, ok := r.toCanon[t][strings.ToUpper(native)]; ok {
		return c
	}
	return native
}

// Len returns the number of registered entity types.
func (r *Registry) Len() int {
	return len(r.defs)
}
