package ingest

import "fmt"

// ValidationError marks a malformed or missing field on a single event.
// The event is recorded and skipped; the batch continues.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// validationf builds a ValidationError for a field.
func validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	Name   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Name)
}

// ConflictError marks a race on lazy entity creation. Stores that enforce
// uniqueness constraints resolve the race themselves; this surfaces only
// from stores that cannot.
type ConflictError struct {
	Entity string
	Name   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q: concurrent creation conflict", e.Entity, e.Name)
}

// StoreError wraps a failed store mutation. Never swallowed: it is surfaced
// as a per-event error or, for batch-wide operations, aborts the request.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// storeErr wraps err as a StoreError unless it already carries a pipeline
// error type.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *ValidationError, *NotFoundError, *ConflictError, *StoreError:
		return err
	}
	return &StoreError{Op: op, Err: err}
}
