package procdoc

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meant to be a coarse classification of errors that callers can
// branch on without string matching. Codes map one-to-one onto the failure
// modes of the portal retrieval flow.
const (
	EINVALID     = "invalid"              // validation failed
	EINTERNAL    = "internal"             // internal error
	ENOTFOUND    = "not_found"            // entity does not exist
	EBROWSER     = "browser_unavailable"  // no usable browser executable or connection
	EPORTAL      = "portal_changed"       // expected portal structure missing
	EAMBIGUOUS   = "ambiguous_result"     // portal response matched neither outcome
	ECREDENTIALS = "credentials_required" // all documents are password gated
	EUNRESOLVED  = "url_unresolved"       // every URL resolution strategy failed
	EDOWNLOAD    = "download_timeout"     // download did not materialize in time
	ESCANNED     = "scanned_no_text"      // valid PDF with no extractable text
	ENETWORK     = "network"              // transport level failure
)

// Error represents an application error with a machine-readable code and a
// human-readable message.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description safe to show to users.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("procdoc error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper to construct an *Error with formatting.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors return EINTERNAL; nil returns the empty string.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors return a generic message; nil returns the empty
// string.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "An internal error has occurred. Please check the logs for details."
}
