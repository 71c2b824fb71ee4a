/*
store.go - Persistence interface for employees, requests and movements

PURPOSE:
  Defines the interface between the engine and the database. Different
  implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  EmployeeStore: Employee records keyed by id and company
  RequestStore:  Vacation requests plus atomic lifecycle writes
  MovementStore: Append-only balance audit trail
  Store:         The union the Service operates on

ATOMIC WRITES:
  CreateRequest and TransitionRequest persist a request change together
  with its movements in one database transaction. Either everything is
  written or nothing is; partial state never exists.

DOUBLE-DECIDE GUARD:
  TransitionRequest only applies when the stored request is still pending.
  Two racing approvals of the same request resolve at the store: the
  second write finds no pending row and gets ErrAlreadyDecided.

MOVEMENT CONTRACT:
  Movements are APPEND-ONLY. No Update, no Delete. Corrections are made
  by appending adjust movements.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - store/memory: in-memory for tests
*/
package vacation

import "context"

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// EmployeeStore persists employee records.
type EmployeeStore interface {
	// CreateEmployee inserts a new employee.
	CreateEmployee(ctx context.Context, e *Employee) error

	// GetEmployee returns the employee or ErrEmployeeNotFound.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	// EmployeesByCompany returns all employees of a company.
	EmployeesByCompany(ctx context.Context, companyID CompanyID) ([]Employee, error)
}

// =============================================================================
// REQUEST STORE
// =============================================================================

// RequestStore persists vacation requests and their lifecycle transitions.
type RequestStore interface {
	// CreateRequest inserts a new pending request together with its
	// reserve movements, atomically.
	CreateRequest(ctx context.Context, r *VacationRequest, movements []Movement) error

	// GetRequest returns the request or ErrRequestNotFound.
	GetRequest(ctx context.Context, id RequestID) (*VacationRequest, error)

	// TransitionRequest writes the request's new terminal state and its
	// movements atomically, guarded on the stored row still being pending.
	// Returns ErrAlreadyDecided when the guard fails.
	TransitionRequest(ctx context.Context, r *VacationRequest, movements []Movement) error

	// RequestsByEmployee returns all of an employee's requests in any
	// state, ordered by creation time.
	RequestsByEmployee(ctx context.Context, employeeID EmployeeID) ([]VacationRequest, error)

	// RequestsByCompany returns all requests of a company's employees.
	RequestsByCompany(ctx context.Context, companyID CompanyID) ([]VacationRequest, error)

	// PendingRequests returns the company's pending requests, oldest first.
	PendingRequests(ctx context.Context, companyID CompanyID) ([]VacationRequest, error)
}

// =============================================================================
// MOVEMENT STORE - Append-only
// =============================================================================

// MovementStore reads the balance audit trail. Writes only happen through
// CreateRequest and TransitionRequest so movements never appear without
// their request state change.
type MovementStore interface {
	// MovementsByEmployee returns the employee's movements ordered by
	// creation time, oldest first.
	MovementsByEmployee(ctx context.Context, employeeID EmployeeID) ([]Movement, error)
}

// =============================================================================
// STORE - What the Service requires
// =============================================================================

// Store is the full persistence surface the engine operates on.
type Store interface {
	EmployeeStore
	RequestStore
	MovementStore

	// Close releases database resources.
	Close() error
}
