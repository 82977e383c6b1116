package queryfilter

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeInvalidPlaceholder = "INVALID_PLACEHOLDER"
	ErrCodeUnparseableClause  = "UNPARSEABLE_CLAUSE"
)

// Sentinels, matched by code through errors.Is.
var (
	ErrInvalidPlaceholder = &FilterError{Code: ErrCodeInvalidPlaceholder, Message: "invalid placeholder"}
	ErrUnparseableClause  = &FilterError{Code: ErrCodeUnparseableClause, Message: "unparseable clause"}
)

// FilterError carries the offending fragment of the expression.
type FilterError struct {
	Code     string
	Message  string
	Fragment string
}

func (e *FilterError) Error() string {
	if e.Fragment == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %q", e.Message, e.Fragment)
}

// Is matches any FilterError with the same code.
func (e *FilterError) Is(target error) bool {
	var fe *FilterError
	if !errors.As(target, &fe) {
		return false
	}
	return fe.Code == e.Code
}

func placeholderError(message, fragment string) *FilterError {
	return &FilterError{Code: ErrCodeInvalidPlaceholder, Message: message, Fragment: fragment}
}

func clauseError(message, fragment string) *FilterError {
	return &FilterError{Code: ErrCodeUnparseableClause, Message: message, Fragment: fragment}
}
