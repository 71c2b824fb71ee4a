/*
handlers.go - HTTP API handlers for the vacation engine

PURPOSE:
  Exposes the vacation engine via REST API. Handles HTTP request and
  response mechanics, JSON serialization, input validation and delegates
  to the domain logic.

ENDPOINTS:
  Employees:
    POST   /api/employees                    Create employee
    GET    /api/employees/{id}               Get employee details
    GET    /api/employees/{id}/balance       Balance snapshot
    GET    /api/employees/{id}/requests      Request history
    GET    /api/employees/{id}/movements     Balance audit trail

  Requests:
    POST   /api/requests                     Submit request
    GET    /api/requests/{id}                Get request
    GET    /api/requests/pending             Pending requests (by company)
    POST   /api/requests/{id}/approve        Approve
    POST   /api/requests/{id}/reject         Reject (reason mandatory)
    POST   /api/requests/{id}/cancel         Cancel (owner only)

  Companies:
    GET    /api/companies/{id}/statistics    Request aggregates

ERROR HANDLING:
  Errors are returned as JSON with a machine-readable reason code:
  - 400: Malformed body or failed field validation
  - 404: Unknown employee or request
  - 409: Overlap, already decided, authorization conflicts
  - 422: Business rule violations (dates, balance, blank reason)
  - 500: Data integrity violations and internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nominahq/vacation-engine/vacation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all HTTP handler dependencies.
type Handler struct {
	Service  *vacation.Service
	Store    vacation.Store
	log      *zap.Logger
	validate *validator.Validate
}

// NewHandler creates a Handler. A nil logger disables logging.
func NewHandler(service *vacation.Service, store vacation.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Service:  service,
		Store:    store,
		log:      log,
		validate: validator.New(),
	}
}

// decode parses and validates a JSON request body.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// CreateEmployee creates an employee record.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_body", err)
		return
	}

	hireDate, err := vacation.ParseDate(req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire date", "invalid_body", err)
		return
	}

	role := vacation.Role(req.Role)
	if role == "" {
		role = vacation.RoleEmployee
	}
	emp := &vacation.Employee{
		ID:        vacation.EmployeeID(req.ID),
		CompanyID: vacation.CompanyID(req.CompanyID),
		Name:      req.Name,
		Email:     req.Email,
		Role:      role,
		ManagerID: vacation.EmployeeID(req.ManagerID),
		HireDate:  hireDate,
	}
	if err := h.Store.CreateEmployee(r.Context(), emp); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// ListEmployees returns a company's employees.
// GET /api/employees?company_id=...
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		writeError(w, http.StatusBadRequest, "company_id is required", "invalid_body", nil)
		return
	}
	employees, err := h.Store.EmployeesByCompany(r.Context(), vacation.CompanyID(companyID))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(employees))
	for i := range employees {
		dtos = append(dtos, toEmployeeDTO(&employees[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// GetBalance returns the employee's balance snapshot. An optional as_of
// query parameter (YYYY-MM-DD) computes the balance on another date.
// GET /api/employees/{id}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))

	var (
		balance vacation.Balance
		err     error
	)
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		date, perr := vacation.ParseDate(asOf)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of date", "invalid_body", perr)
			return
		}
		balance, err = h.Service.BalanceAt(r.Context(), id, date)
	} else {
		balance, err = h.Service.Balance(r.Context(), id)
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// ListEmployeeRequests returns all of an employee's requests.
// GET /api/employees/{id}/requests
func (h *Handler) ListEmployeeRequests(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))
	requests, err := h.Service.Requests(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// ListEmployeeMovements returns the balance audit trail.
// GET /api/employees/{id}/movements
func (h *Handler) ListEmployeeMovements(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))
	movements, err := h.Service.Movements(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovementDTOs(movements))
}

// =============================================================================
// REQUEST ENDPOINTS
// =============================================================================

// SubmitRequest submits a new vacation request. The day count is computed
// server-side from the dates.
// POST /api/requests
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequestRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_body", err)
		return
	}

	start, err := vacation.ParseDate(req.DateStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date", "invalid_body", err)
		return
	}
	end, err := vacation.ParseDate(req.DateEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date", "invalid_body", err)
		return
	}

	created, err := h.Service.Submit(r.Context(),
		vacation.EmployeeID(req.EmployeeID), start, end, req.Comments)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(created))
}

// GetRequest returns a single request.
// GET /api/requests/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := vacation.RequestID(chi.URLParam(r, "id"))
	req, err := h.Service.Request(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// ListPendingRequests returns a company's pending requests, oldest first.
// GET /api/requests/pending?company_id=...
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		writeError(w, http.StatusBadRequest, "company_id is required", "invalid_body", nil)
		return
	}
	requests, err := h.Service.Pending(r.Context(), vacation.CompanyID(companyID))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// ApproveRequest approves a pending request.
// POST /api/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id := vacation.RequestID(chi.URLParam(r, "id"))
	var req ApproveRequestRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_body", err)
		return
	}

	decided, err := h.Service.Approve(r.Context(), id, vacation.EmployeeID(req.ApproverID))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(decided))
}

// RejectRequest rejects a pending request. The reason is mandatory.
// POST /api/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id := vacation.RequestID(chi.URLParam(r, "id"))
	var req RejectRequestRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_body", err)
		return
	}

	decided, err := h.Service.Reject(r.Context(), id, vacation.EmployeeID(req.ApproverID), req.Reason)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(decided))
}

// CancelRequest cancels a pending request. Only the owner may cancel.
// POST /api/requests/{id}/cancel
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id := vacation.RequestID(chi.URLParam(r, "id"))
	var req CancelRequestRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_body", err)
		return
	}

	decided, err := h.Service.Cancel(r.Context(), id, vacation.EmployeeID(req.RequesterID))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(decided))
}

// =============================================================================
// COMPANY ENDPOINTS
// =============================================================================

// GetStatistics returns request aggregates for a company. An optional
// as_of query parameter (YYYY-MM-DD) evaluates the window on another date.
// GET /api/companies/{id}/statistics
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	id := vacation.CompanyID(chi.URLParam(r, "id"))

	var (
		stats vacation.Statistics
		err   error
	)
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		date, perr := vacation.ParseDate(asOf)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of date", "invalid_body", perr)
			return
		}
		stats, err = h.Service.StatisticsAt(r.Context(), id, date)
	} else {
		stats, err = h.Service.Statistics(r.Context(), id)
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatisticsDTO(stats))
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

// reasonFor maps a domain error to its machine-readable reason code.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, vacation.ErrEndBeforeStart):
		return "invalid_dates"
	case errors.Is(err, vacation.ErrStartInPast):
		return "start_in_past"
	case errors.Is(err, vacation.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, vacation.ErrOverlappingRequest):
		return "overlapping_request"
	case errors.Is(err, vacation.ErrAlreadyDecided):
		return "already_decided"
	case errors.Is(err, vacation.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, vacation.ErrNotOwner):
		return "not_owner"
	case errors.Is(err, vacation.ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, vacation.ErrBlankReason):
		return "blank_reason"
	case errors.Is(err, vacation.ErrNegativeBalance):
		return "data_integrity"
	case errors.Is(err, vacation.ErrEmployeeNotFound),
		errors.Is(err, vacation.ErrRequestNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case vacation.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", reasonFor(err), err)
	case vacation.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, "Request rejected by business rules", reasonFor(err), err)
	case vacation.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict with existing state", reasonFor(err), err)
	case vacation.IsIntegrity(err):
		h.log.Error("data integrity violation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Data integrity violation", reasonFor(err), err)
	default:
		h.log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error", "internal", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, reason string, err error) {
	resp := ErrorResponse{Error: message, Reason: reason}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
