package core

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// EncodeCell Tests
// ----------------------------------------------------------------------------

func TestEncodeCell(t *testing.T) {
	date := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		typ   FieldType
		input any
		want  string
	}{
		// Checkbox
		{name: "checkbox true", typ: FieldCheckbox, input: true, want: "1"},
		{name: "checkbox false", typ: FieldCheckbox, input: false, want: "0"},
		{name: "checkbox literal one", typ: FieldCheckbox, input: "1", want: "1"},
		{name: "checkbox numeric one", typ: FieldCheckbox, input: 1.0, want: "1"},
		{name: "checkbox text", typ: FieldCheckbox, input: "yes", want: "0"},
		{name: "checkbox nil", typ: FieldCheckbox, input: nil, want: "0"},

		// Datetime
		{name: "date native", typ: FieldDatetime, input: date, want: "2024-03-15T10:30:00"},
		{name: "date serial", typ: FieldDatetime, input: 45366.0, want: "2024-03-15T00:00:00"},
		{name: "date string", typ: FieldDatetime, input: "2024-03-15", want: "2024-03-15T00:00:00"},
		{name: "date garbage", typ: FieldDatetime, input: "next tuesday", want: "0001-01-01T00:00:00"},
		{name: "date nil", typ: FieldDatetime, input: nil, want: "0001-01-01T00:00:00"},

		// Double
		{name: "double number", typ: FieldDouble, input: 1.5, want: "1.5"},
		{name: "double string", typ: FieldDouble, input: "2.25", want: "2.25"},
		{name: "double garbage", typ: FieldDouble, input: "abc", want: "0"},
		{name: "double nil", typ: FieldDouble, input: nil, want: "0"},

		// Integer
		{name: "integer whole", typ: FieldInteger, input: 42.0, want: "42"},
		{name: "integer rounds", typ: FieldInteger, input: 2.6, want: "3"},
		{name: "integer rounds half to even", typ: FieldInteger, input: 2.5, want: "2"},
		{name: "integer string", typ: FieldInteger, input: " 7 ", want: "7"},
		{name: "integer fractional string", typ: FieldInteger, input: "7.5", want: "0"},
		{name: "integer nil", typ: FieldInteger, input: nil, want: "0"},

		// Text-like
		{name: "text string", typ: FieldText, input: "Smith", want: "Smith"},
		{name: "text number", typ: FieldText, input: 12.0, want: "12"},
		{name: "text nil", typ: FieldText, input: nil, want: ""},
		{name: "list number", typ: FieldList, input: 2.0, want: "2"},
		{name: "password", typ: FieldPassword, input: "s3cret", want: "s3cret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeCell(tt.typ, tt.input)
			if got != tt.want {
				t.Errorf("EncodeCell(%v, %#v) = %q, want %q", tt.typ, tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// DecodeWire Tests
// ----------------------------------------------------------------------------

func TestDecodeWire(t *testing.T) {
	tests := []struct {
		name  string
		typ   FieldType
		input string
		want  any
	}{
		{name: "integer", typ: FieldInteger, input: "12", want: 12},
		{name: "tagged integer", typ: FieldInteger, input: "[I:12]", want: 12},
		{name: "integer garbage kept", typ: FieldInteger, input: "twelve", want: "twelve"},
		{name: "double", typ: FieldDouble, input: "1.25", want: 1.25},
		{name: "checkbox one", typ: FieldCheckbox, input: "1", want: true},
		{name: "checkbox zero", typ: FieldCheckbox, input: "0", want: false},
		{name: "text", typ: FieldText, input: "hello", want: "hello"},
		{name: "empty clears", typ: FieldInteger, input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeWire(tt.typ, tt.input)
			if got != tt.want {
				t.Errorf("DecodeWire(%v, %q) = %#v, want %#v", tt.typ, tt.input, got, tt.want)
			}
		})
	}

	t.Run("datetime", func(t *testing.T) {
		got, ok := DecodeWire(FieldDatetime, "2024-03-15T10:30:00").(time.Time)
		if !ok {
			t.Fatalf("expected time.Time")
		}
		if !got.Equal(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)) {
			t.Errorf("got %v", got)
		}
	})
}

// ----------------------------------------------------------------------------
// ToListID Tests
// ----------------------------------------------------------------------------

func TestToListID(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   int
		wantOK bool
	}{
		{name: "nil is zero", input: nil, want: 0, wantOK: true},
		{name: "blank is zero", input: "  ", want: 0, wantOK: true},
		{name: "number", input: 2.0, want: 2, wantOK: true},
		{name: "numeric string", input: "3", want: 3, wantOK: true},
		{name: "text", input: "Gold", wantOK: false},
		{name: "date", input: time.Now(), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToListID(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ToListID(%#v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ToListID(%#v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate_TwoDigitYear(t *testing.T) {
	got, ok := ParseDate("1/15/24")
	if !ok {
		t.Fatal("expected parse")
	}
	if got.Year() != 2024 {
		t.Errorf("year = %d, want 2024", got.Year())
	}

	old, ok := ParseDate("1/15/85")
	if !ok {
		t.Fatal("expected parse")
	}
	if old.Year() != 1985 {
		t.Errorf("year = %d, want 1985", old.Year())
	}
}

func TestParseWireInt_Error(t *testing.T) {
	if _, err := ParseWireInt("abc"); err == nil {
		t.Error("expected error for non-numeric value")
	}
}
