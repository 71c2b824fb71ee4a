/*
errors.go - Centralized error types for the vacation engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP status codes; nothing outside this
  package should invent new error categories.

ERROR CATEGORIES:
  1. Validation errors   - malformed or rule-breaking submissions
  2. Lifecycle errors    - illegal state transitions and authorization
  3. Integrity errors    - stored data that violates engine invariants
  4. Lookup errors       - referenced entities that do not exist

USAGE:
  Callers classify with errors.Is():

    if errors.Is(err, vacation.ErrInsufficientBalance) { ... }

  Structured variants carry detail and unwrap to their sentinel.
*/
package vacation

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEndBeforeStart is returned when a request's end date precedes its start.
	ErrEndBeforeStart = errors.New("end date before start date")

	// ErrStartInPast is returned when a request starts before the current date.
	ErrStartInPast = errors.New("start date in the past")

	// ErrInsufficientBalance is returned when requested days exceed available balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrOverlappingRequest is returned when a submission overlaps an existing
	// pending or approved request for the same employee.
	ErrOverlappingRequest = errors.New("overlapping request")

	// ErrAlreadyDecided is returned on any transition attempt against a
	// request that has left the pending state. Terminal states are immutable.
	ErrAlreadyDecided = errors.New("request already decided")

	// ErrNotAuthorized is returned when the acting user may not decide the
	// target employee's requests.
	ErrNotAuthorized = errors.New("not authorized to decide this request")

	// ErrNotOwner is returned when someone other than the requesting
	// employee attempts a cancellation.
	ErrNotOwner = errors.New("only the owner may cancel a request")

	// ErrBlankReason is returned when a rejection carries no reason.
	ErrBlankReason = errors.New("rejection reason must not be blank")

	// ErrNegativeBalance signals stored data whose available balance is
	// negative. This is never a user error; it means the store was mutated
	// outside the engine.
	ErrNegativeBalance = errors.New("negative available balance")

	// ErrDuplicateID is returned when a create hits an ID already on record.
	ErrDuplicateID = errors.New("id already exists")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError provides details about a balance shortage.
type InsufficientBalanceError struct {
	EmployeeID EmployeeID
	Available  int
	Requested  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %d, requested %d, shortfall %d",
		e.Available, e.Requested, e.Requested-e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// OverlapError identifies the existing request that blocks a submission.
type OverlapError struct {
	EmployeeID EmployeeID
	ExistingID RequestID
	Start      Date
	End        Date
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping request: %s already holds %s..%s",
		e.ExistingID, e.Start, e.End)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlappingRequest
}

// IntegrityError describes a stored balance that violates engine invariants.
type IntegrityError struct {
	EmployeeID EmployeeID
	AsOf       Date
	Available  int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("balance integrity violation for %s as of %s: available %d",
		e.EmployeeID, e.AsOf, e.Available)
}

func (e *IntegrityError) Unwrap() error {
	return ErrNegativeBalance
}

// =============================================================================
// CLASSIFICATION - Used by the API layer for status mapping
// =============================================================================

// IsValidation reports whether err is a submission-time rule violation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEndBeforeStart) ||
		errors.Is(err, ErrStartInPast) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrBlankReason)
}

// IsConflict reports whether err represents a state conflict with existing
// data or an authorization failure on a transition.
func IsConflict(err error) bool {
	return errors.Is(err, ErrOverlappingRequest) ||
		errors.Is(err, ErrAlreadyDecided) ||
		errors.Is(err, ErrNotAuthorized) ||
		errors.Is(err, ErrNotOwner) ||
		errors.Is(err, ErrDuplicateID)
}

// IsNotFound reports whether err is a missing-entity lookup failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}

// IsIntegrity reports whether err signals corrupted stored data.
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrNegativeBalance)
}
