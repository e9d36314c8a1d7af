// Package domain defines the error taxonomy shared by services and
// handlers. Every classified failure carries a machine-readable code and
// the HTTP status it maps to; anything else is treated as internal.
package domain

import "fmt"

// Machine-readable error codes returned in API responses.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeVoting         = "VOTING_ERROR"
	CodeDuplicate      = "DUPLICATE"
	CodeInternal       = "INTERNAL_ERROR"
)

// Error is a classified domain failure.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

// Validation builds a 400 error for missing or malformed input.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Status: 400}
}

// NotFound builds a 404 error for an unknown resource.
func NotFound(resource, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %s not found", resource, id),
		Status:  404,
	}
}

// Authentication builds a 401 error.
func Authentication(message string) *Error {
	return &Error{Code: CodeAuthentication, Message: message, Status: 401}
}

// Voting builds a 400 error for a business-rule violation in the vote flow.
func Voting(message string) *Error {
	return &Error{Code: CodeVoting, Message: message, Status: 400}
}

// Duplicate builds a 409 error for uniqueness violations (duplicate
// candidate name, taken username).
func Duplicate(message string) *Error {
	return &Error{Code: CodeDuplicate, Message: message, Status: 409}
}

// AlreadyVoted is the conflict returned when a student casts a second vote
// in the same period.
func AlreadyVoted() *Error {
	return &Error{Code: CodeVoting, Message: "Ya votaste este mes", Status: 409}
}
