package staff

import (
	"fmt"
	"strings"
)

// ValidationError collects every business-rule violation found in one pass
// so callers see all problems in a single round trip.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Reasons, "; ")
}

// DuplicateError reports a uniqueness constraint already taken.
type DuplicateError struct {
	Resource string
	Field    string
	Value    string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s=%q already exists", e.Resource, e.Field, e.Value)
}

// NotFoundError reports a missing referenced resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id=%q not found", e.Resource, e.ID)
}

// AlreadyEmployeeError reports a person already backing an employee record.
type AlreadyEmployeeError struct {
	PersonID string
}

func (e *AlreadyEmployeeError) Error() string {
	return fmt.Sprintf("person with id=%q is already registered as an employee", e.PersonID)
}

// TransactionError wraps an unexpected persistence failure with the step it
// occurred in. The cause is kept for logging and never rendered to callers.
type TransactionError struct {
	Step string
	Err  error
}

func (e *TransactionError) Error() string {
	return "transaction failed during " + e.Step
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
