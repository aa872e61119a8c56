// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

import "errors"

// ResultStatus tags the outcome carried by a Result.
type ResultStatus uint8

const (
	StatusOK ResultStatus = iota
	StatusNotFound
	StatusFailed
)

func (s ResultStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of a data-access call: a value, an expected absence,
// or a failure with its cause.
type Result[T any] struct {
	status ResultStatus
	value  T
	err    error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{status: StatusOK, value: v}
}

// NotFound reports a valid query that matched nothing.
func NotFound[T any]() Result[T] {
	return Result[T]{status: StatusNotFound}
}

// Failed wraps an error. A nil error still produces a failed result.
func Failed[T any](err error) Result[T] {
	if err == nil {
		err = ErrTransactionFailed
	}
	return Result[T]{status: StatusFailed, err: err}
}

// Status returns the result tag.
func (r Result[T]) Status() ResultStatus { return r.status }

// IsOK reports whether the result carries a value.
func (r Result[T]) IsOK() bool { return r.status == StatusOK }

// IsNotFound reports an expected absence.
func (r Result[T]) IsNotFound() bool { return r.status == StatusNotFound }

// IsFailed reports a failure.
func (r Result[T]) IsFailed() bool { return r.status == StatusFailed }

// Value returns the carried value, the zero value unless IsOK.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure cause, ErrNoDocuments for NotFound, or nil.
func (r Result[T]) Err() error {
	switch r.status {
	case StatusFailed:
		return r.err
	case StatusNotFound:
		return ErrNoDocuments
	}
	return nil
}

// Unpack returns the value and Err().
func (r Result[T]) Unpack() (T, error) {
	return r.value, r.Err()
}

// Map converts an Ok value while preserving NotFound and Failed.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	switch r.status {
	case StatusOK:
		return Ok(fn(r.value))
	case StatusNotFound:
		return NotFound[U]()
	}
	return Failed[U](r.err)
}

// FromError builds a result from a (value, error) pair, treating
// ErrNoDocuments as NotFound.
func FromError[T any](v T, err error) Result[T] {
	if err == nil {
		return Ok(v)
	}
	if errors.Is(MapError(err), ErrNoDocuments) {
		return NotFound[T]()
	}
	return Failed[T](err)
}
