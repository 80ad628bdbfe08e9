// Package persistence provides standardized error types for storage
// operations; every implementation must surface these sentinels.
package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound indicates a process template was not found.
	ErrTemplateNotFound = errors.New("process template not found")

	// ErrStageNotFound indicates a stage was not found by id or ordinal.
	ErrStageNotFound = errors.New("stage not found")

	// ErrTransitionNotFound indicates a stage has no outgoing transition.
	ErrTransitionNotFound = errors.New("transition not found")

	// ErrFieldModelNotFound indicates a field model was not found.
	ErrFieldModelNotFound = errors.New("field model not found")

	// ErrProcessNotFound indicates a process was not found.
	ErrProcessNotFound = errors.New("process not found")

	// ErrExecutionNotFound indicates a stage execution was not found.
	ErrExecutionNotFound = errors.New("stage execution not found")

	// ErrUserNotFound indicates a user was not found.
	ErrUserNotFound = errors.New("user not found")

	// ErrExecutionNotPending indicates a completion raced with another
	// one: the execution is no longer PENDENTE.
	ErrExecutionNotPending = errors.New("stage execution is not pending")

	// ErrTransitionExists indicates the origin stage already has an
	// outgoing transition; the graph allows one edge per origin.
	ErrTransitionExists = errors.New("origin stage already has an outgoing transition")

	// ErrIntegrityViolation indicates a backing-store constraint failed
	// (unknown foreign key, duplicate unique key).
	ErrIntegrityViolation = errors.New("integrity violation")

	// ErrStoreUnavailable indicates a transient backing-store failure.
	ErrStoreUnavailable = errors.New("backing store unavailable")
)

// StoreError wraps storage errors with the operation and entity context
// that produced them without leaking driver internals to callers.
type StoreError struct {
	Op     string // operation being performed, e.g. "GetByID"
	Entity string // entity kind, e.g. "stage_execution"
	ID     string // entity id if applicable
	Err    error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a store error with context.
func NewStoreError(op, entity, id string, err error) *StoreError {
	return &StoreError{Op: op, Entity: entity, ID: id, Err: err}
}

// IsNotFound checks whether an error is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrStageNotFound) ||
		errors.Is(err, ErrTransitionNotFound) ||
		errors.Is(err, ErrFieldModelNotFound) ||
		errors.Is(err, ErrProcessNotFound) ||
		errors.Is(err, ErrExecutionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsConflict checks whether an error indicates a lost completion race.
func IsConflict(err error) bool {
	return errors.Is(err, ErrExecutionNotPending)
}

// IsIntegrityViolation checks whether an error is a store constraint
// failure.
func IsIntegrityViolation(err error) bool {
	return errors.Is(err, ErrIntegrityViolation) || errors.Is(err, ErrTransitionExists)
}

// IsStoreUnavailable checks whether an error is a transient store
// failure.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
