package errors

import (
	"fmt"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrSchemaProbe is returned when neither casing of a catalog table could be
// queried, so the page cannot be built at all.
type ErrSchemaProbe struct {
	Table string
	Cause error
}

func (e *ErrSchemaProbe) Error() string {
	return fmt.Sprintf("could not resolve table %q: %v", e.Table, e.Cause)
}

func (e *ErrSchemaProbe) Unwrap() error {
	return e.Cause
}
