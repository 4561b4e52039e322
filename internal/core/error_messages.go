package core

// error_messages.go maps technical errors to operator-facing messages with a
// support code.
//
//	FILE001-FILE006  file problems (size, format, encoding, header)
//	IMP001-IMP004    import run problems (row cap, busy, cancelled, timeout)
//	DB001-DB008      persistence problems (constraints, connectivity)
//	ENT001-ENT002    unknown entity or export format
//	REQ001-REQ002    request throttling and authentication
//	ERR000           fallback; check the logs for the technical error
//
// Known sentinel errors are matched with errors.Is first. Anything else is
// matched case-insensitively against errorPatterns, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrMalformedFile, UserMessage{"File is not a valid CSV or spreadsheet", "Ensure the file is comma-separated with quoted fields where needed", "FILE002"}},
	{ErrInvalidEncoding, UserMessage{"File contains invalid characters", "Save the file as UTF-8", "FILE003"}},
	{ErrEmptyFile, UserMessage{"The uploaded file is empty", "Upload a file with a header row", "FILE005"}},
	{ErrHeaderMismatch, UserMessage{"The header row does not match the template", "Download the import template and copy its header row exactly", "FILE006"}},
	{ErrTooManyRows, UserMessage{"The file has too many rows", "Split the file into smaller files", "IMP001"}},
	{ErrTooManyImports, UserMessage{"The system is busy processing other imports", "Please wait a moment and try again", "IMP002"}},
	{context.Canceled, UserMessage{"The request was cancelled", "Start the import again when ready", "IMP003"}},
	{context.DeadlineExceeded, UserMessage{"The import timed out", "Try a smaller file or try again later", "IMP004"}},
	{ErrUnknownEntity, UserMessage{"Unknown import type", "Use one of: position, skill, team, user, project", "ENT001"}},
	{ErrUnknownFormat, UserMessage{"Unknown export format", "Use csv or xlsx", "ENT002"}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered specific before general.
var errorPatterns = []errorPattern{
	{"file too large", UserMessage{"File exceeds the maximum upload size", "Split the file into smaller files", "FILE001"}},
	{"request body too large", UserMessage{"File exceeds the maximum upload size", "Split the file into smaller files", "FILE001"}},
	{"no file provided", UserMessage{"No file was selected", "Select a CSV or XLSX file to upload", "FILE004"}},

	{"duplicate key", UserMessage{"A record with this value already exists", "Remove the duplicate row or rename the record", "DB001"}},
	{"violates unique", UserMessage{"A duplicate value was found", "Review your data for duplicate key values", "DB002"}},
	{"unique constraint", UserMessage{"This value must be unique but already exists", "Check for duplicate entries in your file", "DB002"}},
	{"violates foreign key", UserMessage{"Referenced record does not exist", "Import the referenced records first", "DB003"}},
	{"foreign key constraint", UserMessage{"Referenced record does not exist", "Import the referenced records first", "DB003"}},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"timeout", UserMessage{"Operation timed out", "Try a smaller file or try again later", "DB006"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},
	{"constraint violation", UserMessage{"A record failed a data constraint", "Check field lengths and allowed values", "DB008"}},

	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "REQ001"}},
	{"unauthorized", UserMessage{"Missing or invalid API key", "Provide a valid X-API-Key header", "REQ002"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unmatched
// errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logs, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. It returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
