/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request bodies carry go-playground/validator struct tags; handlers run
  them through Handler.validate before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/nominahq/vacation-engine/vacation"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateEmployeeRequest creates an employee record.
type CreateEmployeeRequest struct {
	ID        string `json:"id" validate:"required"`
	CompanyID string `json:"company_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Role      string `json:"role" validate:"omitempty,oneof=employee manager hr admin"`
	ManagerID string `json:"manager_id"`
	HireDate  string `json:"hire_date" validate:"required,datetime=2006-01-02"`
}

// SubmitRequestRequest submits a new vacation request.
type SubmitRequestRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	DateStart  string `json:"date_start" validate:"required,datetime=2006-01-02"`
	DateEnd    string `json:"date_end" validate:"required,datetime=2006-01-02"`
	Comments   string `json:"comments"`
}

// ApproveRequestRequest approves a pending request.
type ApproveRequestRequest struct {
	ApproverID string `json:"approver_id" validate:"required"`
}

// RejectRequestRequest rejects a pending request. Reason is mandatory.
type RejectRequestRequest struct {
	ApproverID string `json:"approver_id" validate:"required"`
	Reason     string `json:"reason" validate:"required"`
}

// CancelRequestRequest cancels a pending request; only the owner may.
type CancelRequestRequest struct {
	RequesterID string `json:"requester_id" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	ManagerID string `json:"manager_id,omitempty"`
	HireDate  string `json:"hire_date"`
}

// RequestDTO represents a vacation request in API responses.
type RequestDTO struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	CompanyID       string     `json:"company_id"`
	DateStart       string     `json:"date_start"`
	DateEnd         string     `json:"date_end"`
	DaysRequested   int        `json:"days_requested"`
	Status          string     `json:"status"`
	Comments        string     `json:"comments,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	DecidedBy       string     `json:"decided_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// BalanceDTO is the employee's balance snapshot.
type BalanceDTO struct {
	EmployeeID        string `json:"employee_id"`
	AsOf              string `json:"as_of"`
	YearsOfService    int    `json:"years_of_service"`
	CycleStart        string `json:"cycle_start"`
	CycleEnd          string `json:"cycle_end"`
	EntitledCurrent   int    `json:"entitled_current_cycle"`
	CarriedOver       int    `json:"carried_over"`
	TakenCurrentCycle int    `json:"taken_current_cycle"`
	PendingReserved   int    `json:"pending_reserved"`
	Available         int    `json:"available"`
}

// MovementDTO is one entry of the balance audit trail.
type MovementDTO struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	RequestID   string    `json:"request_id"`
	Type        string    `json:"type"`
	Delta       string    `json:"delta"`
	EffectiveAt string    `json:"effective_at"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatisticsDTO aggregates a company's request counts.
type StatisticsDTO struct {
	CompanyID          string `json:"company_id"`
	AsOf               string `json:"as_of"`
	PendingCount       int    `json:"pending_count"`
	ApprovedCount      int    `json:"approved_count"`
	RejectedCount      int    `json:"rejected_count"`
	Upcoming7DaysCount int    `json:"upcoming_7_days_count"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toEmployeeDTO(e *vacation.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        string(e.ID),
		CompanyID: string(e.CompanyID),
		Name:      e.Name,
		Email:     e.Email,
		Role:      string(e.Role),
		ManagerID: string(e.ManagerID),
		HireDate:  e.HireDate.String(),
	}
}

func toRequestDTO(r *vacation.VacationRequest) RequestDTO {
	return RequestDTO{
		ID:              string(r.ID),
		EmployeeID:      string(r.EmployeeID),
		CompanyID:       string(r.CompanyID),
		DateStart:       r.Start.String(),
		DateEnd:         r.End.String(),
		DaysRequested:   r.Days,
		Status:          string(r.Status),
		Comments:        r.Comments,
		RejectionReason: r.RejectionReason,
		DecidedBy:       string(r.DecidedBy),
		DecidedAt:       r.DecidedAt,
		CreatedAt:       r.CreatedAt,
	}
}

func toRequestDTOs(requests []vacation.VacationRequest) []RequestDTO {
	dtos := make([]RequestDTO, 0, len(requests))
	for i := range requests {
		dtos = append(dtos, toRequestDTO(&requests[i]))
	}
	return dtos
}

func toBalanceDTO(b vacation.Balance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:        string(b.EmployeeID),
		AsOf:              b.AsOf.String(),
		YearsOfService:    b.YearsOfService,
		CycleStart:        b.Cycle.Start.String(),
		CycleEnd:          b.Cycle.End.String(),
		EntitledCurrent:   b.Entitled,
		CarriedOver:       b.CarriedOver,
		TakenCurrentCycle: b.Taken,
		PendingReserved:   b.Pending,
		Available:         b.Available,
	}
}

func toMovementDTOs(movements []vacation.Movement) []MovementDTO {
	dtos := make([]MovementDTO, 0, len(movements))
	for _, m := range movements {
		dtos = append(dtos, MovementDTO{
			ID:          string(m.ID),
			EmployeeID:  string(m.EmployeeID),
			RequestID:   string(m.RequestID),
			Type:        string(m.Type),
			Delta:       m.Delta.String(),
			EffectiveAt: m.EffectiveAt.String(),
			Reason:      m.Reason,
			CreatedAt:   m.CreatedAt,
		})
	}
	return dtos
}

func toStatisticsDTO(s vacation.Statistics) StatisticsDTO {
	return StatisticsDTO{
		CompanyID:          string(s.CompanyID),
		AsOf:               s.AsOf.String(),
		PendingCount:       s.PendingCount,
		ApprovedCount:      s.ApprovedCount,
		RejectedCount:      s.RejectedCount,
		Upcoming7DaysCount: s.UpcomingCount,
	}
}
