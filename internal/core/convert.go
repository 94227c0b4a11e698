package core

// convert.go translates between raw cell values and the wire strings
// exchanged with the CRM platform.
//
// Cells are user-edited and free-form, so every Encode/To* function degrades
// to a zero value instead of failing:
//   - Checkbox: "1" or "0"
//   - Integer: 0
//   - Double: 0
//   - Datetime: the zero time, encoded as 0001-01-01T00:00:00
//   - Text, List, Label, Password: "" for empty cells
//
// Raw cell values are one of nil, string, float64, int, bool or time.Time.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// SortableLayout is the canonical wire format for dates.
const SortableLayout = "2006-01-02T15:04:05"

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are moved
// to the previous century.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		SortableLayout, time.RFC3339, time.RFC3339Nano,
		"2006-01-02 15:04:05", "2006-01-02 15:04",
		"1/2/2006 15:04:05", "01/02/2006 15:04:05", "1/2/2006 3:04:05 PM",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

// EncodeCell converts a raw cell value to its wire string for field type t.
func EncodeCell(t FieldType, v any) string {
	switch t {
	case FieldCheckbox:
		if ToBool(v) {
			return "1"
		}
		return "0"
	case FieldDatetime:
		return FormatDate(ToTime(v))
	case FieldDouble:
		return strconv.FormatFloat(ToFloat(v), 'f', -1, 64)
	case FieldInteger:
		return strconv.Itoa(ToInt(v))
	default:
		return CellString(v)
	}
}

// DecodeWire converts a wire string to the value written into a cell.
// Values that fail to parse are written as the raw string. An empty string
// clears the cell.
func DecodeWire(t FieldType, s string) any {
	if s == "" {
		return ""
	}
	switch t {
	case FieldInteger:
		if n, err := ParseWireInt(s); err == nil {
			return n
		}
	case FieldDouble:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	case FieldDatetime:
		if d, ok := ParseDate(s); ok {
			return d
		}
	case FieldCheckbox:
		switch strings.TrimSpace(s) {
		case "1":
			return true
		case "0":
			return false
		}
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return s
}

// CellString returns the string form of a raw cell value.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return FormatDate(x)
	default:
		return fmt.Sprint(x)
	}
}

// ToBool is true for a boolean true cell or a cell whose string form is "1".
func ToBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return strings.TrimSpace(CellString(v)) == "1"
}

// ToTime converts a date cell, a date serial or a date string.
// Anything else yields the zero time.
func ToTime(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x
	case float64:
		return serialToTime(x)
	case int:
		return serialToTime(float64(x))
	case string:
		if t, ok := ParseDate(x); ok {
			return t
		}
	}
	return time.Time{}
}

func serialToTime(serial float64) time.Time {
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ToFloat converts a numeric cell or an invariant decimal string; 0 otherwise.
func ToFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// ToInt converts an integer cell, rounds a fractional numeric cell half to
// even, or parses an integer string; 0 otherwise.
func ToInt(v any) int {
	n, ok := toInt(v)
	if !ok {
		return 0
	}
	return n
}

// ToListID converts a list cell to an item id. Empty cells are item 0.
// The second result is false when the cell holds something that is not an id.
func ToListID(v any) (int, bool) {
	if v == nil {
		return 0, true
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return 0, true
	}
	if b, ok := v.(bool); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	return toInt(v)
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) > math.MaxInt32 {
			return 0, false
		}
		return int(math.RoundToEven(x)), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// ParseWireInt parses an integer wire value. The tagged form "[I:42]" is
// accepted as well as a bare "42".
func ParseWireInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[I:") && strings.HasSuffix(s, "]") {
		s = s[3 : len(s)-1]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("list value %q is not an integer: %w", s, ErrValidation)
	}
	return n, nil
}

// ParseDate parses a date string in any of the known layouts.
// Two-digit years are resolved against TwoDigitYearPivot.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// FormatDate renders t in the sortable wire layout.
func FormatDate(t time.Time) string {
	return t.Format(SortableLayout)
}
