// Package search filters sheet records by free text or by restriction lists.
package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheetlink/internal/core"
)

// Operator is the comparison of a Restriction.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "notEquals"
	OpContains  Operator = "contains"
	OpBegins    Operator = "begins"
	OpOneOf     Operator = "oneOf"
	OpNotOneOf  Operator = "notOneOf"
	OpGreater   Operator = "greater"
	OpLess      Operator = "less"
)

// operatorAliases is keyed by the lowercased name without underscores.
var operatorAliases = map[string]Operator{
	"equals":     OpEquals,
	"eq":         OpEquals,
	"=":          OpEquals,
	"is":         OpEquals,
	"notequals":  OpNotEquals,
	"ne":         OpNotEquals,
	"!=":         OpNotEquals,
	"contains":   OpContains,
	"like":       OpContains,
	"begins":     OpBegins,
	"beginswith": OpBegins,
	"startswith": OpBegins,
	"oneof":      OpOneOf,
	"in":         OpOneOf,
	"notoneof":   OpNotOneOf,
	"notin":      OpNotOneOf,
	"greater":    OpGreater,
	"gt":         OpGreater,
	">":          OpGreater,
	"less":       OpLess,
	"lt":         OpLess,
	"<":          OpLess,
}

// ParseOperator accepts an operator name in any case; ONE_OF and oneOf are
// the same operator.
func ParseOperator(s string) (Operator, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	if op, ok := operatorAliases[key]; ok {
		return op, nil
	}
	return "", core.ValidationError{Field: "operator", Value: s, Message: fmt.Sprintf("unsupported restriction operator %q", s)}
}

// UnmarshalText parses the operator through ParseOperator.
func (o *Operator) UnmarshalText(b []byte) error {
	op, err := ParseOperator(string(b))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Restriction is one filter condition of an advanced search.
type Restriction struct {
	FieldKey string   `json:"fieldKey"`
	Operator Operator `json:"operator"`
	Values   []string `json:"values"`
}

// UnmarshalJSON also accepts a single "value" instead of "values".
func (r *Restriction) UnmarshalJSON(b []byte) error {
	var raw struct {
		FieldKey string   `json:"fieldKey"`
		Operator Operator `json:"operator"`
		Values   []string `json:"values"`
		Value    *string  `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.FieldKey = raw.FieldKey
	r.Operator = raw.Operator
	r.Values = raw.Values
	if raw.Value != nil {
		r.Values = append(r.Values, *raw.Value)
	}
	return nil
}

// Validate checks that the restriction names a field, a known operator and at
// least one value.
func (r Restriction) Validate() error {
	if strings.TrimSpace(r.FieldKey) == "" {
		return core.ValidationError{Field: "fieldKey", Message: "restriction without field key"}
	}
	if _, err := ParseOperator(string(r.Operator)); err != nil {
		return err
	}
	if len(r.Values) == 0 {
		return core.ValidationError{Field: r.FieldKey, Message: "restriction has no values"}
	}
	return nil
}

// Keys returns the field keys of restrictions in order, without duplicates.
func Keys(restrictions []Restriction) []string {
	seen := make(map[string]bool, len(restrictions))
	keys := make([]string, 0, len(restrictions))
	for _, r := range restrictions {
		if seen[r.FieldKey] {
			continue
		}
		seen[r.FieldKey] = true
		keys = append(keys, r.FieldKey)
	}
	return keys
}
