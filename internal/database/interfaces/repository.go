// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgreSQL error codes mapped to repository errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Common errors
var (
	ErrNoDocuments       = NewRepositoryError("no documents found", "NOT_FOUND")
	ErrDuplicateKey      = NewRepositoryError("duplicate key error", "DUPLICATE_KEY")
	ErrForeignKey        = NewRepositoryError("referenced row does not exist", "FOREIGN_KEY")
	ErrConnectionFailed  = NewRepositoryError("database connection failed", "CONNECTION_FAILED")
	ErrTransactionFailed = NewRepositoryError("transaction failed", "TRANSACTION_FAILED")
	ErrSessionReleased   = NewRepositoryError("session already released", "SESSION_RELEASED")
	ErrForbidden         = NewRepositoryError("operation not permitted for this user", "FORBIDDEN")
)

// RepositoryError represents a repository specific error
type RepositoryError struct {
	Message string
	Code    string
	Time    time.Time
	cause   error
}

func (e *RepositoryError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the driver error behind a mapped repository error.
func (e *RepositoryError) Unwrap() error {
	return e.cause
}

// Is matches repository errors by code.
func (e *RepositoryError) Is(target error) bool {
	t, ok := target.(*RepositoryError)
	return ok && t.Code == e.Code
}

// NewRepositoryError creates a new repository error
func NewRepositoryError(message, code string) *RepositoryError {
	return &RepositoryError{
		Message: message,
		Code:    code,
		Time:    time.Now(),
	}
}

func wrap(base *RepositoryError, cause error) *RepositoryError {
	return &RepositoryError{
		Message: base.Message,
		Code:    base.Code,
		Time:    time.Now(),
		cause:   cause,
	}
}

// MapError translates driver errors into repository errors. Errors it does not
// recognize are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return wrap(ErrNoDocuments, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return wrap(ErrDuplicateKey, err)
		case pqForeignKeyViolation:
			return wrap(ErrForeignKey, err)
		}
	}
	if errors.Is(err, sql.ErrConnDone) {
		return wrap(ErrConnectionFailed, err)
	}
	return err
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	return errors.Is(MapError(err), ErrDuplicateKey)
}

// CursorPaginationResult represents cursor-based paginated results
type CursorPaginationResult[T any] struct {
	Data       []T    `json:"data"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasNext    bool   `json:"hasNext"`
	Limit      int    `json:"limit"`
}
