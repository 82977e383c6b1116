package parser

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeUpstreamParseFailure = "UPSTREAM_PARSE_FAILURE"
	ErrCodeCountMismatch        = "COUNT_MISMATCH"
	ErrCodeUnknownParser        = "UNKNOWN_PARSER"
	ErrCodeParserDisabled       = "PARSER_DISABLED"
)

// Sentinels, matched by code through errors.Is.
var (
	ErrUpstreamParseFailure = &ParseError{Code: ErrCodeUpstreamParseFailure, Message: "failed to call the completion service"}
	ErrCountMismatch        = &ParseError{Code: ErrCodeCountMismatch, Message: "parsed ingredient count does not match input"}
	ErrUnknownParser        = &ParseError{Code: ErrCodeUnknownParser, Message: "unknown parser"}
	ErrParserDisabled       = &ParseError{Code: ErrCodeParserDisabled, Message: "parser is disabled"}
)

// ParseError lỗi của ingredient parser, kèm mã lỗi
type ParseError struct {
	Code    string // Mã lỗi
	Message string // Thông báo
	Err     error  // Lỗi gốc

	Expected int // COUNT_MISMATCH: số input
	Got      int // COUNT_MISMATCH: số kết quả
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches any ParseError with the same code.
func (e *ParseError) Is(target error) bool {
	var pe *ParseError
	if !errors.As(target, &pe) {
		return false
	}
	return pe.Code == e.Code
}

func newUpstreamError(message string, err error) *ParseError {
	return &ParseError{Code: ErrCodeUpstreamParseFailure, Message: message, Err: err}
}

func newCountMismatchError(expected, got int) *ParseError {
	return &ParseError{
		Code:     ErrCodeCountMismatch,
		Message:  fmt.Sprintf("expected %d parsed ingredients, got %d", expected, got),
		Expected: expected,
		Got:      got,
	}
}
