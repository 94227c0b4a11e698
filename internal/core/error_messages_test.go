package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "missing sheet",
			err:         fmt.Errorf("there is no sheet named 'Customer' in the Excel file 'a.xlsx': %w", ErrNotFound),
			wantCode:    "SHEET001",
			wantMessage: "The workbook has no sheet with the requested name",
		},
		{
			name:        "empty sheet",
			err:         fmt.Errorf("sheet 'Customer' in Excel file 'a.xlsx' did not have a dimension with data: %w", ErrInvalidSchema),
			wantCode:    "SHEET002",
			wantMessage: "The sheet has no populated cells",
		},
		{
			name:     "unsupported extension",
			err:      errors.New("open a.csv: unsupported extension \".csv\""),
			wantCode: "FILE001",
		},
		{
			name:     "list value before restriction",
			err:      errors.New("restriction CustGr: list value \"x\" is not an integer"),
			wantCode: "VAL002",
		},
		{
			name:     "injected fault wins over patterns",
			err:      fmt.Errorf("Cannot_Find: there is no sheet named x: %w", ErrInjectedFault),
			wantCode: "FAULT001",
		},
		{
			name:     "sentinel fallback",
			err:      fmt.Errorf("write: %w", ErrIO),
			wantCode: "FILE003",
		},
		{
			name:     "validation error type",
			err:      ValidationError{Field: "operator", Value: "~", Message: "unsupported"},
			wantCode: "VAL001",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:     "case insensitive matching",
			err:      errors.New("THERE IS NO SHEET NAMED X"),
			wantCode: "SHEET001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.wantMessage != "" && got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestUnknownConnectionError(t *testing.T) {
	err := UnknownConnectionError("0d8b9e2c-1111-4d4d-9c9c-000000000000")

	if got := MapError(err).Code; got != UnknownConnectionCode {
		t.Errorf("code = %q, want %q", got, UnknownConnectionCode)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound)")
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(fmt.Errorf("x: %w", ErrInjectedFault))
	want := "A capability flag in the workbook aborted the operation (Code: FAULT001). Clear the cannot_* flag in the capability sheet"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(errors.New("boom")) {
		t.Error("generic error should not be user facing")
	}
	if !IsUserFacing(fmt.Errorf("x: %w", ErrNotFound)) {
		t.Error("not-found error should be user facing")
	}
}

func TestResultFromError(t *testing.T) {
	r := ResultFromError(fmt.Errorf("sheet 'X' in Excel file 'a.xlsx' did not have a dimension with data: %w", ErrInvalidSchema))

	if r.IsOK() {
		t.Error("expected error state")
	}
	if r.Code != "SHEET002" {
		t.Errorf("code = %q, want SHEET002", r.Code)
	}
	if r.TechExplanation == "" {
		t.Error("technical explanation should carry the error text")
	}
	if !ResultFromError(nil).IsOK() {
		t.Error("nil error should be ok")
	}
}

func TestResultWorse(t *testing.T) {
	ok := OK()
	warn := Warn("w", "w")
	fail := Fail("f", "f")

	if got := ok.Worse(warn); got.State != StateWarning {
		t.Errorf("ok.Worse(warn) = %v", got.State)
	}
	if got := fail.Worse(warn); got.State != StateError {
		t.Errorf("fail.Worse(warn) = %v", got.State)
	}
}
