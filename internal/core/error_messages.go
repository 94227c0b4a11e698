package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference.
//
// # Document Structure (SHEET001-SHEET099)
//
//	SHEET001 - Sheet missing: The workbook has no sheet with the requested name
//	           Action: Check the sheet names in the Excel file
//	           Patterns: "there is no sheet named"
//
//	SHEET002 - Empty sheet: The sheet has no populated cells
//	           Action: Add a header row and data to the sheet
//	           Patterns: "did not have a dimension with data"
//
//	SHEET003 - No identifier: The sheet has no ID column
//	           Action: Add an "ID" header to row 1
//	           Patterns: "no identifier column"
//
// # Records (ROW001-ROW099)
//
//	ROW001 - Record missing: No row carries the requested id
//	         Action: Refresh and try again
//	         Patterns: "row not found"
//
// # Connections (CONN001-CONN099)
//
//	CONN001 - Unknown connection: The connection id is not registered
//	          Action: Save the connection configuration again
//	          Patterns: "unknown connection"
//
//	CONN002 - Bad connection id: The connection id is not a GUID
//	          Action: Use the id issued when the connection was created
//	          Patterns: "invalid connection id"
//
// # Files (FILE001-FILE099)
//
//	FILE001 - Unsupported file: The file is not an Excel workbook
//	          Action: Use an .xlsx or .xlsm file
//	          Patterns: "unsupported extension"
//
//	FILE002 - File missing: The Excel file does not exist
//	          Action: Check the Filename setting of the connection
//	          Patterns: "does not exist"
//
//	FILE003 - Unreadable file: The Excel file could not be opened or saved
//	          Action: Close the file in Excel and try again
//	          Patterns: "cannot open", "cannot save"
//
// # Validation (VAL001-VAL099)
//
//	VAL001 - Bad restriction: A search restriction is malformed
//	         Action: Check the field and operator of each restriction
//	         Patterns: "restriction"
//
//	VAL002 - Bad list value: A list value is not a numeric id
//	         Action: Use list item ids, not display texts
//	         Patterns: "list value"
//
// # Faults (FAULT001)
//
//	FAULT001 - Injected fault: A capability flag in the workbook aborted the operation
//	           Action: Clear the cannot_* flag in the capability sheet
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// A *UserError anywhere in the chain wins. Injected faults are classified
// before patterns because their text is free-form. Patterns are matched
// case-insensitively with strings.Contains, first match wins. When no pattern
// matches, the wrapped sentinel picks a category.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgSheetMissing = UserMessage{
		Message: "The workbook has no sheet with the requested name",
		Action:  "Check the sheet names in the Excel file",
		Code:    "SHEET001",
	}
	msgSheetEmpty = UserMessage{
		Message: "The sheet has no populated cells",
		Action:  "Add a header row and data to the sheet",
		Code:    "SHEET002",
	}
	msgNoIdentifier = UserMessage{
		Message: "The sheet has no ID column",
		Action:  `Add an "ID" header to row 1`,
		Code:    "SHEET003",
	}
	msgRowMissing = UserMessage{
		Message: "No row carries the requested id",
		Action:  "Refresh and try again",
		Code:    "ROW001",
	}
	msgUnknownConnection = UserMessage{
		Message: "The connection id is not registered",
		Action:  "Save the connection configuration again",
		Code:    "CONN001",
	}
	msgBadConnectionID = UserMessage{
		Message: "The connection id is not a GUID",
		Action:  "Use the id issued when the connection was created",
		Code:    "CONN002",
	}
	msgUnsupportedFile = UserMessage{
		Message: "The file is not an Excel workbook",
		Action:  "Use an .xlsx or .xlsm file",
		Code:    "FILE001",
	}
	msgFileMissing = UserMessage{
		Message: "The Excel file does not exist",
		Action:  "Check the Filename setting of the connection",
		Code:    "FILE002",
	}
	msgFileUnreadable = UserMessage{
		Message: "The Excel file could not be opened or saved",
		Action:  "Close the file in Excel and try again",
		Code:    "FILE003",
	}
	msgBadRestriction = UserMessage{
		Message: "A search restriction is malformed",
		Action:  "Check the field and operator of each restriction",
		Code:    "VAL001",
	}
	msgBadListValue = UserMessage{
		Message: "A list value is not a numeric id",
		Action:  "Use list item ids, not display texts",
		Code:    "VAL002",
	}
	msgInjectedFault = UserMessage{
		Message: "A capability flag in the workbook aborted the operation",
		Action:  "Clear the cannot_* flag in the capability sheet",
		Code:    "FAULT001",
	}
)

// errorPatterns is ordered: specific patterns before general ones.
var errorPatterns = []errorPattern{
	{pattern: "there is no sheet named", msg: msgSheetMissing},
	{pattern: "did not have a dimension with data", msg: msgSheetEmpty},
	{pattern: "no identifier column", msg: msgNoIdentifier},
	{pattern: "row not found", msg: msgRowMissing},
	{pattern: "unknown connection", msg: msgUnknownConnection},
	{pattern: "invalid connection id", msg: msgBadConnectionID},
	{pattern: "unsupported extension", msg: msgUnsupportedFile},
	{pattern: "does not exist", msg: msgFileMissing},
	{pattern: "cannot open", msg: msgFileUnreadable},
	{pattern: "cannot save", msg: msgFileUnreadable},
	{pattern: "list value", msg: msgBadListValue},
	{pattern: "restriction", msg: msgBadRestriction},
}

// sentinelMessages is consulted when no pattern matched.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrNotFound, msgRowMissing},
	{ErrInvalidSchema, msgSheetEmpty},
	{ErrValidation, msgBadRestriction},
	{ErrIO, msgFileUnreadable},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	err := fmt.Errorf("open: %w", ErrIO)
//	msg := MapError(err)
//	// msg.Code == "FILE003"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}
	if errors.Is(err, ErrInjectedFault) {
		return msgInjectedFault
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with the message shown to users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

// UnknownConnectionError reports a connection id with no registry entry.
func UnknownConnectionError(id string) *UserError {
	msg := msgUnknownConnection
	msg.Code = UnknownConnectionCode
	return &UserError{
		Technical: fmt.Errorf("unknown connection %s: %w", id, ErrNotFound),
		User:      msg,
	}
}
