// Package apperror holds the error taxonomy shared by the stores, the RAG
// gateway and the HTTP layer. Callers match with errors.As or the Is* helpers.
package apperror

import (
	"errors"
	"fmt"
)

// NotFoundError reports a missing resource. Resources owned by another user
// are reported the same way so their existence does not leak.
type NotFoundError struct {
	Resource string
	Id       interface{}
}

func (e *NotFoundError) Error() string {
	if e.Id == nil {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s with id %v not found", e.Resource, e.Id)
}

func NotFound(resource string, id interface{}) error {
	return &NotFoundError{Resource: resource, Id: id}
}

// ConflictError reports a unique-constraint collision.
type ConflictError struct {
	Resource string
	Message  string
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

func Conflict(resource, message string, err error) error {
	return &ConflictError{Resource: resource, Message: message, Err: err}
}

// UpstreamUnavailableError reports a failed call to the RAG service. StatusCode
// is zero when no HTTP response was received (network error, timeout).
type UpstreamUnavailableError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("rag %s failed: status %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("rag %s failed: %s", e.Operation, e.Message)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

// ValidationError reports bad caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsUpstreamUnavailable(err error) bool {
	var target *UpstreamUnavailableError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
