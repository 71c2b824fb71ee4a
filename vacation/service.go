/*
service.go - Request lifecycle orchestration

PURPOSE:
  Orchestrates the full lifecycle of vacation requests on top of the
  Store, Balance calculator and submission validation:
  1. Submit: validate, create pending request, reserve movement
  2. Approve: authorization check, release + consume movements
  3. Reject: reason check, release movement
  4. Cancel: ownership check, release movement

REQUEST FLOW:
  pending ──approve──▶ approved   (release hold, consume days)
  pending ──reject───▶ rejected   (release hold)
  pending ──cancel───▶ cancelled  (release hold)

CONCURRENCY:
  Submissions and transitions for the SAME employee are serialized with
  a striped mutex so two racing submissions cannot both pass the balance
  check. The store's conditional transition write is the second guard:
  racing decisions on the same request resolve there.

MOVEMENT PAIRS:
  Submit:  reserve(-days)
  Approve: release(+days), consume(-days)   -- net zero on availability
  Reject:  release(+days)
  Cancel:  release(+days)
*/
package vacation

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// SERVICE - The engine's public surface
// =============================================================================

const lockStripes = 64

// Service wires the balance calculator, validation and lifecycle rules to
// a Store. All methods are safe for concurrent use.
type Service struct {
	store Store
	log   *zap.Logger

	// today is swappable so tests can pin the calendar.
	today func() Date
	nowFn func() time.Time

	// Per-employee serialization, striped to bound memory.
	locks [lockStripes]sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock fixes the service's notion of the current instant. The current
// date is derived from the same instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.nowFn = now
		s.today = func() Date {
			t := now().UTC()
			return NewDate(t.Year(), t.Month(), t.Day())
		}
	}
}

// NewService creates a Service backed by store. A nil logger disables logging.
func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store: store,
		log:   log,
		today: Today,
		nowFn: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) lockFor(id EmployeeID) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit validates and records a new vacation request. The day count is
// always recomputed from the dates; callers cannot supply their own.
// On success the request is pending and a reserve movement holds its days.
func (s *Service) Submit(ctx context.Context, employeeID EmployeeID, start, end Date, comments string) (*VacationRequest, error) {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	mu := s.lockFor(employeeID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.store.RequestsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	balance, err := ComputeBalance(employeeID, emp.HireDate, today, existing)
	if err != nil {
		s.log.Error("balance integrity violation on submit",
			zap.String("employee_id", string(employeeID)),
			zap.Error(err))
		return nil, err
	}

	now := s.nowFn()
	req := &VacationRequest{
		ID:         RequestID(fmt.Sprintf("vr-%d", now.UnixNano())),
		EmployeeID: employeeID,
		CompanyID:  emp.CompanyID,
		Start:      start,
		End:        end,
		Status:     StatusPending,
		Comments:   comments,
		CreatedAt:  now,
	}
	if !end.Before(start) {
		req.Days = DaysInclusive(start, end)
	}

	if err := ValidateSubmission(*req, today, balance, existing); err != nil {
		return nil, err
	}

	reserve := s.movement(req, MovementReserve, -req.Days, "hold on submission")
	if err := s.store.CreateRequest(ctx, req, []Movement{reserve}); err != nil {
		return nil, err
	}

	s.log.Info("request submitted",
		zap.String("request_id", string(req.ID)),
		zap.String("employee_id", string(employeeID)),
		zap.String("start", req.Start.String()),
		zap.String("end", req.End.String()),
		zap.Int("days", req.Days))
	return req, nil
}

// =============================================================================
// APPROVE / REJECT / CANCEL
// =============================================================================

// Approve moves a pending request to approved. The approver must be the
// employee's direct manager, or hold an hr or admin role in the same
// company. Availability does not change: the reserved hold becomes a
// consumption.
func (s *Service) Approve(ctx context.Context, requestID RequestID, approverID EmployeeID) (*VacationRequest, error) {
	return s.decide(ctx, requestID, func(req *VacationRequest, owner *Employee) ([]Movement, error) {
		approver, err := s.store.GetEmployee(ctx, approverID)
		if err != nil {
			return nil, err
		}
		if !approver.CanDecideFor(*owner) {
			return nil, ErrNotAuthorized
		}
		req.Status = StatusApproved
		req.DecidedBy = approverID
		return []Movement{
			s.movement(req, MovementRelease, req.Days, "hold released on approval"),
			s.movement(req, MovementConsume, -req.Days, "days consumed on approval"),
		}, nil
	})
}

// Reject moves a pending request to rejected. Requires the same authority
// as Approve plus a non-blank reason. The reserved days are released.
func (s *Service) Reject(ctx context.Context, requestID RequestID, approverID EmployeeID, reason string) (*VacationRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrBlankReason
	}
	return s.decide(ctx, requestID, func(req *VacationRequest, owner *Employee) ([]Movement, error) {
		approver, err := s.store.GetEmployee(ctx, approverID)
		if err != nil {
			return nil, err
		}
		if !approver.CanDecideFor(*owner) {
			return nil, ErrNotAuthorized
		}
		req.Status = StatusRejected
		req.DecidedBy = approverID
		req.RejectionReason = reason
		return []Movement{
			s.movement(req, MovementRelease, req.Days, "hold released on rejection"),
		}, nil
	})
}

// Cancel moves a pending request to cancelled. Only the owning employee
// may cancel, and only while the request is pending.
func (s *Service) Cancel(ctx context.Context, requestID RequestID, requesterID EmployeeID) (*VacationRequest, error) {
	return s.decide(ctx, requestID, func(req *VacationRequest, owner *Employee) ([]Movement, error) {
		if requesterID != req.EmployeeID {
			return nil, ErrNotOwner
		}
		req.Status = StatusCancelled
		req.DecidedBy = requesterID
		return []Movement{
			s.movement(req, MovementRelease, req.Days, "hold released on cancellation"),
		}, nil
	})
}

// decide loads the request, serializes on its owner, applies the mutation
// and writes the transition atomically. The stored row must still be
// pending both here and inside the store write.
func (s *Service) decide(ctx context.Context, requestID RequestID, mutate func(*VacationRequest, *Employee) ([]Movement, error)) (*VacationRequest, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	mu := s.lockFor(req.EmployeeID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock. A concurrent decision may have landed.
	req, err = s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, ErrAlreadyDecided
	}

	owner, err := s.store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	movements, err := mutate(req, owner)
	if err != nil {
		return nil, err
	}
	decidedAt := s.nowFn()
	req.DecidedAt = &decidedAt

	if err := s.store.TransitionRequest(ctx, req, movements); err != nil {
		return nil, err
	}

	s.log.Info("request decided",
		zap.String("request_id", string(req.ID)),
		zap.String("employee_id", string(req.EmployeeID)),
		zap.String("status", string(req.Status)),
		zap.String("decided_by", string(req.DecidedBy)))
	return req, nil
}

func (s *Service) movement(req *VacationRequest, typ MovementType, delta int, reason string) Movement {
	return Movement{
		ID:          MovementID(fmt.Sprintf("%s-%s-%d", req.ID, typ, s.nowFn().UnixNano())),
		EmployeeID:  req.EmployeeID,
		RequestID:   req.ID,
		Type:        typ,
		Delta:       decimal.NewFromInt(int64(delta)),
		EffectiveAt: req.Start,
		Reason:      reason,
		CreatedAt:   s.nowFn(),
	}
}

// =============================================================================
// QUERIES
// =============================================================================

// Balance computes the employee's balance as of today.
func (s *Service) Balance(ctx context.Context, employeeID EmployeeID) (Balance, error) {
	return s.BalanceAt(ctx, employeeID, s.today())
}

// BalanceAt computes the employee's balance as of an arbitrary date.
func (s *Service) BalanceAt(ctx context.Context, employeeID EmployeeID, asOf Date) (Balance, error) {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Balance{}, err
	}
	requests, err := s.store.RequestsByEmployee(ctx, employeeID)
	if err != nil {
		return Balance{}, err
	}
	b, err := ComputeBalance(employeeID, emp.HireDate, asOf, requests)
	if err != nil {
		s.log.Error("balance integrity violation",
			zap.String("employee_id", string(employeeID)),
			zap.Error(err))
		return Balance{}, err
	}
	return b, nil
}

// Request returns a single request by id.
func (s *Service) Request(ctx context.Context, id RequestID) (*VacationRequest, error) {
	return s.store.GetRequest(ctx, id)
}

// Requests returns all of an employee's requests.
func (s *Service) Requests(ctx context.Context, employeeID EmployeeID) ([]VacationRequest, error) {
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.store.RequestsByEmployee(ctx, employeeID)
}

// Pending returns a company's pending requests, oldest first.
func (s *Service) Pending(ctx context.Context, companyID CompanyID) ([]VacationRequest, error) {
	return s.store.PendingRequests(ctx, companyID)
}

// Movements returns the employee's balance audit trail.
func (s *Service) Movements(ctx context.Context, employeeID EmployeeID) ([]Movement, error) {
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.store.MovementsByEmployee(ctx, employeeID)
}

// Statistics aggregates a company's request counts as of today.
func (s *Service) Statistics(ctx context.Context, companyID CompanyID) (Statistics, error) {
	return s.StatisticsAt(ctx, companyID, s.today())
}

// StatisticsAt aggregates a company's request counts as of an arbitrary date.
func (s *Service) StatisticsAt(ctx context.Context, companyID CompanyID, asOf Date) (Statistics, error) {
	requests, err := s.store.RequestsByCompany(ctx, companyID)
	if err != nil {
		return Statistics{}, err
	}
	return ComputeStatistics(companyID, asOf, requests), nil
}
