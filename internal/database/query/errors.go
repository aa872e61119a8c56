// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package query

import (
	"errors"
	"fmt"
)

// Error is a descriptor construction error. It is always returned before any
// statement text exists, so it never reaches the database.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so a detailed error still
// matches its sentinel through errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// detail returns a copy of base with extra context appended to the message.
func detail(base *Error, format string, a ...interface{}) error {
	return &Error{
		Code:    base.Code,
		Message: fmt.Sprintf("%s: %s", base.Message, fmt.Sprintf(format, a...)),
	}
}

// Construction errors
var (
	ErrFieldValueMismatch = newError("FIELD_VALUE_MISMATCH", "field and value counts differ")
	ErrEmptyUpdate        = newError("EMPTY_UPDATE", "update requires at least one field")
	ErrEmptyInsert        = newError("EMPTY_INSERT", "insert requires at least one value")
	ErrInvalidMethod      = newError("INVALID_METHOD", "invalid statement method")
	ErrInvalidOperator    = newError("INVALID_OPERATOR", "invalid condition operator")
	ErrInvalidLogic       = newError("INVALID_LOGIC", "invalid condition logic")
	ErrInvalidOrder       = newError("INVALID_ORDER", "invalid order descriptor")
	ErrInvalidIdentifier  = newError("INVALID_IDENTIFIER", "invalid identifier")
	ErrEmptyWhere         = newError("EMPTY_WHERE", "statement would affect every row")
	ErrEmptyIn            = newError("EMPTY_IN", "in operator requires at least one value")
	ErrUnsupportedParam   = newError("UNSUPPORTED_PARAM", "unsupported parameter value")
	ErrUnknownTable       = newError("UNKNOWN_TABLE", "unknown table")
	ErrUnknownField       = newError("UNKNOWN_FIELD", "unknown field")
	ErrInvalidFilter      = newError("INVALID_FILTER", "invalid filter value")
)

// Invalid wraps ErrInvalidFilter with detail for callers outside the package.
func Invalid(format string, a ...interface{}) error {
	return detail(ErrInvalidFilter, format, a...)
}

// IsConstructionError reports whether err is a descriptor construction error.
func IsConstructionError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
