package vacation

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type CompanyID string
type RequestID string
type MovementID string

// =============================================================================
// EMPLOYEE
// =============================================================================

// Role determines what a user is allowed to decide.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

// Employee is the subject of balances and requests. HireDate anchors the
// anniversary cycle; ManagerID may be empty for top-of-chain employees.
type Employee struct {
	ID        EmployeeID
	CompanyID CompanyID
	Name      string
	Email     string
	Role      Role
	ManagerID EmployeeID
	HireDate  Date
	CreatedAt time.Time
}

// CanDecideFor reports whether e may approve or reject requests belonging to
// emp. Direct managers can, and hr/admin roles can for anyone in the same
// company. Nobody decides across company boundaries.
func (e Employee) CanDecideFor(emp Employee) bool {
	if e.CompanyID != emp.CompanyID {
		return false
	}
	if emp.ManagerID != "" && e.ID == emp.ManagerID {
		return true
	}
	return e.Role == RoleHR || e.Role == RoleAdmin
}

// =============================================================================
// VACATION REQUEST - Lifecycle state machine
// =============================================================================

// RequestStatus is the lifecycle state of a vacation request.
//
//	pending → approved
//	pending → rejected
//	pending → cancelled
//
// The three decided states are terminal.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transitions.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// VacationRequest is a dated span of requested vacation days and its
// lifecycle state. Days is always the inclusive calendar-day count of
// [Start, End], computed server-side.
type VacationRequest struct {
	ID         RequestID
	EmployeeID EmployeeID
	CompanyID  CompanyID
	Start      Date
	End        Date
	Days       int
	Status     RequestStatus
	Comments   string

	// Decision metadata. Empty until the request leaves pending.
	RejectionReason string
	DecidedBy       EmployeeID
	DecidedAt       *time.Time

	CreatedAt time.Time
}

// Overlaps reports whether the request's span intersects [start, end].
// Spans are inclusive on both ends.
func (r VacationRequest) Overlaps(start, end Date) bool {
	return r.Start.BeforeOrEqual(end) && r.End.AfterOrEqual(start)
}

// HoldsDays reports whether the request currently occupies calendar days
// for overlap purposes. Pending and approved requests do; rejected and
// cancelled ones free their span.
func (r VacationRequest) HoldsDays() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// =============================================================================
// MOVEMENT - Append-only audit trail of balance effects
// =============================================================================

// MovementType classifies a balance movement.
type MovementType string

const (
	// MovementReserve places a hold on days when a request is submitted.
	MovementReserve MovementType = "reserve"
	// MovementRelease returns a hold, either because the request was
	// rejected or cancelled, or as the first half of an approval.
	MovementRelease MovementType = "release"
	// MovementConsume permanently spends days on approval.
	MovementConsume MovementType = "consume"
	// MovementAdjust is a manual correction outside the request lifecycle.
	MovementAdjust MovementType = "adjust"
)

// Movement is one append-only entry in an employee's balance audit trail.
// Movements are never updated or deleted; corrections are new movements.
// Delta is negative for reserve/consume and positive for release.
type Movement struct {
	ID          MovementID
	EmployeeID  EmployeeID
	RequestID   RequestID
	Type        MovementType
	Delta       decimal.Decimal
	EffectiveAt Date
	Reason      string
	CreatedAt   time.Time
}
