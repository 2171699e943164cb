// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// InvalidTransitionError is returned when an enrollment, review or
// withdrawal record does not permit the requested action. It names the
// current state and the attempted transition so callers can render a
// precise message.
type InvalidTransitionError struct {
	Entity     string
	Current    string
	Transition string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s in state %q does not permit %q", e.Entity, e.Current, e.Transition)
}

func NewInvalidTransition(entity, current, transition string) error {
	return &InvalidTransitionError{Entity: entity, Current: current, Transition: transition}
}

func IsInvalidTransition(err error) bool {
	var e *InvalidTransitionError
	return errors.As(err, &e)
}

// NotFoundError names the missing resource and its lookup key.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func NewNotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// ConflictError signals a request that collides with an outstanding one,
// e.g. a second pending withdrawal request for the same enrollment.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func NewConflict(reason string) error {
	return &ConflictError{Reason: reason}
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// RenderError wraps a document generation failure. State transitions that
// already committed are never rolled back because of one; the document is
// regenerated via an explicit retry.
type RenderError struct {
	DocumentType string
	Err          error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.DocumentType, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func NewRender(documentType string, err error) error {
	return &RenderError{DocumentType: documentType, Err: err}
}

func IsRender(err error) bool {
	var e *RenderError
	return errors.As(err, &e)
}

// AllocationError reports that certificate code allocation exhausted its
// collision retries.
type AllocationError struct {
	Attempts int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("certificate code allocation failed after %d attempts", e.Attempts)
}

func IsAllocation(err error) bool {
	var e *AllocationError
	return errors.As(err, &e)
}

// PartialBatchError reports a batch operation in which some items failed
// while others succeeded. Per-item outcomes travel alongside it.
type PartialBatchError struct {
	Failed int
	Total  int
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("%d of %d batch items failed", e.Failed, e.Total)
}

func IsPartialBatch(err error) bool {
	var e *PartialBatchError
	return errors.As(err, &e)
}

// ValidationError carries a caller-input problem that is not a state guard.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidation(reason string) error {
	return &ValidationError{Reason: reason}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}
