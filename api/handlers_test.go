/*
handlers_test.go - HTTP-level tests for the vacation API

Tests drive the full stack (router, handlers, service, sqlite) through
httptest with an in-memory database and a pinned clock.
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nominahq/vacation-engine/store/sqlite"
	"github.com/nominahq/vacation-engine/vacation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// Pinned test calendar: "today" is 2025-09-01.
var testNow = time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	var mu sync.Mutex
	tick := testNow
	svc := vacation.NewService(store, nil, vacation.WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Microsecond)
		return tick
	}))

	handler := NewHandler(svc, store, nil)
	server := httptest.NewServer(NewRouter(handler, []string{"*"}))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func createEmployee(t *testing.T, server *httptest.Server, id, managerID, role, hireDate string) {
	t.Helper()
	resp := postJSON(t, server.URL+"/api/employees", CreateEmployeeRequest{
		ID:        id,
		CompanyID: "acme",
		Name:      id,
		Role:      role,
		ManagerID: managerID,
		HireDate:  hireDate,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func seedTeam(t *testing.T, server *httptest.Server) {
	createEmployee(t, server, "mgr-1", "", "manager", "2015-01-01")
	createEmployee(t, server, "emp-1", "mgr-1", "employee", "2023-09-01")
}

func submitRequest(t *testing.T, server *httptest.Server, start, end string) RequestDTO {
	t.Helper()
	resp := postJSON(t, server.URL+"/api/requests", SubmitRequestRequest{
		EmployeeID: "emp-1",
		DateStart:  start,
		DateEnd:    end,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var dto RequestDTO
	decodeBody(t, resp, &dto)
	return dto
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmitRequest_Created(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	dto := submitRequest(t, server, "2025-10-06", "2025-10-10")

	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, 5, dto.DaysRequested)
	assert.NotEmpty(t, dto.ID)
}

func TestSubmitRequest_DayCountComputedServerSide(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	// Caller cannot supply a day count; a single-day span yields 1.
	dto := submitRequest(t, server, "2025-10-06", "2025-10-06")
	assert.Equal(t, 1, dto.DaysRequested)
}

func TestSubmitRequest_MissingFields_BadRequest(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	resp := postJSON(t, server.URL+"/api/requests", SubmitRequestRequest{
		EmployeeID: "emp-1",
		DateStart:  "2025-10-06",
	})
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_body", body.Reason)
}

func TestSubmitRequest_EndBeforeStart_Unprocessable(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	resp := postJSON(t, server.URL+"/api/requests", SubmitRequestRequest{
		EmployeeID: "emp-1",
		DateStart:  "2025-10-10",
		DateEnd:    "2025-10-06",
	})
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "invalid_dates", body.Reason)
}

func TestSubmitRequest_InsufficientBalance_Unprocessable(t *testing.T) {
	// emp-1 has 14 days; a 20-day request cannot fit.
	server := newTestServer(t)
	seedTeam(t, server)

	resp := postJSON(t, server.URL+"/api/requests", SubmitRequestRequest{
		EmployeeID: "emp-1",
		DateStart:  "2025-10-01",
		DateEnd:    "2025-10-20",
	})
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "insufficient_balance", body.Reason)
}

func TestSubmitRequest_Overlap_Conflict(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	submitRequest(t, server, "2025-10-06", "2025-10-10")

	resp := postJSON(t, server.URL+"/api/requests", SubmitRequestRequest{
		EmployeeID: "emp-1",
		DateStart:  "2025-10-08",
		DateEnd:    "2025-10-12",
	})
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "overlapping_request", body.Reason)
}

func TestSubmitRequest_UnknownEmployee_NotFound(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	resp := postJSON(t, server.URL+"/api/requests", SubmitRequestRequest{
		EmployeeID: "ghost",
		DateStart:  "2025-10-06",
		DateEnd:    "2025-10-10",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// LIFECYCLE OVER HTTP
// =============================================================================

func TestApproveFlow_BalanceReclassified(t *testing.T) {
	// GIVEN: A pending 5-day request
	// WHEN: The manager approves over HTTP
	// THEN: Balance shows the days as taken, available unchanged
	server := newTestServer(t)
	seedTeam(t, server)

	dto := submitRequest(t, server, "2025-10-06", "2025-10-10")

	resp := postJSON(t, fmt.Sprintf("%s/api/requests/%s/approve", server.URL, dto.ID),
		ApproveRequestRequest{ApproverID: "mgr-1"})
	var decided RequestDTO
	decodeBody(t, resp, &decided)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", decided.Status)
	assert.Equal(t, "mgr-1", decided.DecidedBy)

	balResp, err := http.Get(server.URL + "/api/employees/emp-1/balance")
	require.NoError(t, err)
	var bal BalanceDTO
	decodeBody(t, balResp, &bal)
	assert.Equal(t, 14, bal.EntitledCurrent)
	assert.Equal(t, 5, bal.TakenCurrentCycle)
	assert.Equal(t, 0, bal.PendingReserved)
	assert.Equal(t, 9, bal.Available)
}

func TestApprove_Twice_Conflict(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	dto := submitRequest(t, server, "2025-10-06", "2025-10-10")
	approveURL := fmt.Sprintf("%s/api/requests/%s/approve", server.URL, dto.ID)

	first := postJSON(t, approveURL, ApproveRequestRequest{ApproverID: "mgr-1"})
	first.Body.Close()
	require.Equal(t, http.StatusOK, first.StatusCode)

	second := postJSON(t, approveURL, ApproveRequestRequest{ApproverID: "mgr-1"})
	var body ErrorResponse
	decodeBody(t, second, &body)
	assert.Equal(t, http.StatusConflict, second.StatusCode)
	assert.Equal(t, "already_decided", body.Reason)
}

func TestApprove_ByNonManager_Conflict(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)
	createEmployee(t, server, "peer-1", "mgr-1", "employee", "2023-09-01")

	dto := submitRequest(t, server, "2025-10-06", "2025-10-10")

	resp := postJSON(t, fmt.Sprintf("%s/api/requests/%s/approve", server.URL, dto.ID),
		ApproveRequestRequest{ApproverID: "peer-1"})
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "not_authorized", body.Reason)
}

func TestReject_BlankReason_BadRequest(t *testing.T) {
	// The required tag catches an empty reason before the service runs.
	server := newTestServer(t)
	seedTeam(t, server)

	dto := submitRequest(t, server, "2025-10-06", "2025-10-10")

	resp := postJSON(t, fmt.Sprintf("%s/api/requests/%s/reject", server.URL, dto.ID),
		RejectRequestRequest{ApproverID: "mgr-1"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReject_RestoresBalance(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	dto := submitRequest(t, server, "2025-10-06", "2025-10-10")

	resp := postJSON(t, fmt.Sprintf("%s/api/requests/%s/reject", server.URL, dto.ID),
		RejectRequestRequest{ApproverID: "mgr-1", Reason: "coverage"})
	var decided RequestDTO
	decodeBody(t, resp, &decided)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", decided.Status)
	assert.Equal(t, "coverage", decided.RejectionReason)

	balResp, err := http.Get(server.URL + "/api/employees/emp-1/balance")
	require.NoError(t, err)
	var bal BalanceDTO
	decodeBody(t, balResp, &bal)
	assert.Equal(t, 14, bal.Available)
}

func TestCancel_ByNonOwner_Conflict(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	dto := submitRequest(t, server, "2025-10-06", "2025-10-10")

	resp := postJSON(t, fmt.Sprintf("%s/api/requests/%s/cancel", server.URL, dto.ID),
		CancelRequestRequest{RequesterID: "mgr-1"})
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "not_owner", body.Reason)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestGetBalance_AsOfParameter(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	// A reservation made today must not bleed into earlier snapshots.
	submitRequest(t, server, "2025-10-01", "2025-10-14")

	// One year before today emp-1 had 12 days, all still available.
	resp, err := http.Get(server.URL + "/api/employees/emp-1/balance?as_of=2024-09-02")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bal BalanceDTO
	decodeBody(t, resp, &bal)
	assert.Equal(t, 1, bal.YearsOfService)
	assert.Equal(t, 12, bal.EntitledCurrent)
	assert.Equal(t, 0, bal.PendingReserved)
	assert.Equal(t, 12, bal.Available)
}

func TestListPendingRequests(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	submitRequest(t, server, "2025-10-06", "2025-10-10")
	submitRequest(t, server, "2025-11-03", "2025-11-05")

	resp, err := http.Get(server.URL + "/api/requests/pending?company_id=acme")
	require.NoError(t, err)
	var pending []RequestDTO
	decodeBody(t, resp, &pending)
	assert.Len(t, pending, 2)

	missing, err := http.Get(server.URL + "/api/requests/pending")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusBadRequest, missing.StatusCode)
}

func TestGetMovements(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	dto := submitRequest(t, server, "2025-10-06", "2025-10-10")
	resp := postJSON(t, fmt.Sprintf("%s/api/requests/%s/approve", server.URL, dto.ID),
		ApproveRequestRequest{ApproverID: "mgr-1"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	mvResp, err := http.Get(server.URL + "/api/employees/emp-1/movements")
	require.NoError(t, err)
	var movements []MovementDTO
	decodeBody(t, mvResp, &movements)
	require.Len(t, movements, 3)
	assert.Equal(t, "reserve", movements[0].Type)
	assert.Equal(t, "-5", movements[0].Delta)
}

func TestGetStatistics(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	// One approved starting within 7 days, one left pending.
	near := submitRequest(t, server, "2025-09-03", "2025-09-04")
	resp := postJSON(t, fmt.Sprintf("%s/api/requests/%s/approve", server.URL, near.ID),
		ApproveRequestRequest{ApproverID: "mgr-1"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	submitRequest(t, server, "2025-11-03", "2025-11-05")

	statsResp, err := http.Get(server.URL + "/api/companies/acme/statistics")
	require.NoError(t, err)
	var stats StatisticsDTO
	decodeBody(t, statsResp, &stats)
	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 1, stats.ApprovedCount)
	assert.Equal(t, 0, stats.RejectedCount)
	assert.Equal(t, 1, stats.Upcoming7DaysCount)

	// Statistics are read-only; a second call returns identical output.
	again, err := http.Get(server.URL + "/api/companies/acme/statistics")
	require.NoError(t, err)
	var repeat StatisticsDTO
	decodeBody(t, again, &repeat)
	assert.Equal(t, stats, repeat)
}

func TestCreateEmployee_DuplicateID(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	resp := postJSON(t, server.URL+"/api/employees", CreateEmployeeRequest{
		ID:        "emp-1",
		CompanyID: "acme",
		Name:      "emp-1",
		Role:      "employee",
		HireDate:  "2023-09-01",
	})
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "duplicate_id", body.Reason)
}

func TestListEmployees(t *testing.T) {
	server := newTestServer(t)
	seedTeam(t, server)

	resp, err := http.Get(server.URL + "/api/employees?company_id=acme")
	require.NoError(t, err)
	var employees []EmployeeDTO
	decodeBody(t, resp, &employees)
	assert.Len(t, employees, 2)

	missing, err := http.Get(server.URL + "/api/employees")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusBadRequest, missing.StatusCode)
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
