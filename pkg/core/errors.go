package core

import (
	"errors"
	"fmt"
)

// The error taxonomy mirrors how callers react to failures: validation
// and rule violations are the caller's problem, not-found is a lookup
// miss, storage errors mean the persistence layer itself failed. All
// checks run before any write, and any error raised inside a
// transaction rolls the whole transaction back.

// ValidationError marks malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalidf builds a ValidationError.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a lookup for a key that does not exist.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// NotFound builds a NotFoundError for the given entity kind and key.
func NotFound(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

// RuleViolationError marks an operation that would break a domain
// invariant: loan limits, reservation ordering, dependent history.
type RuleViolationError struct {
	Message string
}

func (e *RuleViolationError) Error() string { return e.Message }

// Violationf builds a RuleViolationError.
func Violationf(format string, args ...any) error {
	return &RuleViolationError{Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps an I/O, serialization, or database failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return "storage: " + e.Op
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// StorageFailed wraps err as a StorageError describing the failed operation.
func StorageFailed(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsRuleViolation reports whether err is a RuleViolationError.
func IsRuleViolation(err error) bool {
	var target *RuleViolationError
	return errors.As(err, &target)
}

// IsStorage reports whether err is a StorageError.
func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}
