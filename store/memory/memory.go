// Package memory provides an in-memory vacation.Store for testing and dev.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nominahq/vacation-engine/vacation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[vacation.EmployeeID]vacation.Employee
	requests  map[vacation.RequestID]vacation.VacationRequest
	movements map[vacation.EmployeeID][]vacation.Movement
}

func New() *Memory {
	return &Memory{
		employees: make(map[vacation.EmployeeID]vacation.Employee),
		requests:  make(map[vacation.RequestID]vacation.VacationRequest),
		movements: make(map[vacation.EmployeeID][]vacation.Movement),
	}
}

// -----------------------------------------------------------------------------
// Employees
// -----------------------------------------------------------------------------

func (m *Memory) CreateEmployee(_ context.Context, e *vacation.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.employees[e.ID]; exists {
		return vacation.ErrDuplicateID
	}
	m.employees[e.ID] = *e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id vacation.EmployeeID) (*vacation.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, vacation.ErrEmployeeNotFound
	}
	return &e, nil
}

func (m *Memory) EmployeesByCompany(_ context.Context, companyID vacation.CompanyID) ([]vacation.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []vacation.Employee
	for _, e := range m.employees {
		if e.CompanyID == companyID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// -----------------------------------------------------------------------------
// Requests
// -----------------------------------------------------------------------------

func (m *Memory) CreateRequest(_ context.Context, r *vacation.VacationRequest, movements []vacation.Movement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.requests[r.ID]; exists {
		return vacation.ErrDuplicateID
	}
	m.requests[r.ID] = *r
	m.appendMovementsLocked(movements)
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id vacation.RequestID) (*vacation.VacationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, vacation.ErrRequestNotFound
	}
	return &r, nil
}

// TransitionRequest applies the state change only when the stored request
// is still pending, mirroring the sqlite store's conditional update.
func (m *Memory) TransitionRequest(_ context.Context, r *vacation.VacationRequest, movements []vacation.Movement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[r.ID]
	if !ok {
		return vacation.ErrRequestNotFound
	}
	if stored.Status != vacation.StatusPending {
		return vacation.ErrAlreadyDecided
	}
	m.requests[r.ID] = *r
	m.appendMovementsLocked(movements)
	return nil
}

func (m *Memory) RequestsByEmployee(_ context.Context, employeeID vacation.EmployeeID) ([]vacation.VacationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []vacation.VacationRequest
	for _, r := range m.requests {
		if r.EmployeeID == employeeID {
			result = append(result, r)
		}
	}
	sortByCreation(result)
	return result, nil
}

func (m *Memory) RequestsByCompany(_ context.Context, companyID vacation.CompanyID) ([]vacation.VacationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []vacation.VacationRequest
	for _, r := range m.requests {
		if r.CompanyID == companyID {
			result = append(result, r)
		}
	}
	sortByCreation(result)
	return result, nil
}

func (m *Memory) PendingRequests(_ context.Context, companyID vacation.CompanyID) ([]vacation.VacationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []vacation.VacationRequest
	for _, r := range m.requests {
		if r.CompanyID == companyID && r.Status == vacation.StatusPending {
			result = append(result, r)
		}
	}
	sortByCreation(result)
	return result, nil
}

// -----------------------------------------------------------------------------
// Movements
// -----------------------------------------------------------------------------

func (m *Memory) MovementsByEmployee(_ context.Context, employeeID vacation.EmployeeID) ([]vacation.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]vacation.Movement, len(m.movements[employeeID]))
	copy(result, m.movements[employeeID])
	return result, nil
}

func (m *Memory) appendMovementsLocked(movements []vacation.Movement) {
	for _, mv := range movements {
		m.movements[mv.EmployeeID] = append(m.movements[mv.EmployeeID], mv)
	}
}

func (m *Memory) Close() error { return nil }

func sortByCreation(requests []vacation.VacationRequest) {
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].ID < requests[j].ID
		}
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
}
