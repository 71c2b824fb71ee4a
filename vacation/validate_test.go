package vacation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nominahq/vacation-engine/vacation"
)

func candidate(start, end vacation.Date) vacation.VacationRequest {
	r := vacation.VacationRequest{
		ID:         "vr-candidate",
		EmployeeID: "emp-1",
		Start:      start,
		End:        end,
		Status:     vacation.StatusPending,
	}
	if !end.Before(start) {
		r.Days = vacation.DaysInclusive(start, end)
	}
	return r
}

func balanceWith(available int) vacation.Balance {
	return vacation.Balance{EmployeeID: "emp-1", Available: available}
}

func TestValidateSubmission_EndBeforeStart(t *testing.T) {
	today := date(2025, time.June, 1)
	c := candidate(date(2025, time.June, 10), date(2025, time.June, 5))

	err := vacation.ValidateSubmission(c, today, balanceWith(20), nil)
	assert.ErrorIs(t, err, vacation.ErrEndBeforeStart)
}

func TestValidateSubmission_StartInPast(t *testing.T) {
	today := date(2025, time.June, 1)
	c := candidate(date(2025, time.May, 30), date(2025, time.June, 5))

	err := vacation.ValidateSubmission(c, today, balanceWith(20), nil)
	assert.ErrorIs(t, err, vacation.ErrStartInPast)
}

func TestValidateSubmission_StartToday_Allowed(t *testing.T) {
	today := date(2025, time.June, 1)
	c := candidate(today, date(2025, time.June, 3))

	assert.NoError(t, vacation.ValidateSubmission(c, today, balanceWith(20), nil))
}

func TestValidateSubmission_InsufficientBalance(t *testing.T) {
	// GIVEN: 3 days available
	// WHEN: A 5-day request is validated
	// THEN: Rejected with the shortfall detailed
	today := date(2025, time.June, 1)
	c := candidate(date(2025, time.June, 10), date(2025, time.June, 14))

	err := vacation.ValidateSubmission(c, today, balanceWith(3), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, vacation.ErrInsufficientBalance)

	var detail *vacation.InsufficientBalanceError
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, 3, detail.Available)
	assert.Equal(t, 5, detail.Requested)
}

func TestValidateSubmission_Overlap(t *testing.T) {
	today := date(2025, time.June, 1)
	held := pending("vr-existing", date(2025, time.June, 12), date(2025, time.June, 16))

	cases := []struct {
		name       string
		start, end vacation.Date
		overlaps   bool
	}{
		{"entirely before", date(2025, time.June, 8), date(2025, time.June, 11), false},
		{"touching start", date(2025, time.June, 8), date(2025, time.June, 12), true},
		{"contained", date(2025, time.June, 13), date(2025, time.June, 14), true},
		{"containing", date(2025, time.June, 10), date(2025, time.June, 20), true},
		{"touching end", date(2025, time.June, 16), date(2025, time.June, 18), true},
		{"entirely after", date(2025, time.June, 17), date(2025, time.June, 20), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := candidate(tc.start, tc.end)
			err := vacation.ValidateSubmission(c, today, balanceWith(30),
				[]vacation.VacationRequest{held})
			if tc.overlaps {
				assert.ErrorIs(t, err, vacation.ErrOverlappingRequest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSubmission_DecidedRequestsDoNotBlock(t *testing.T) {
	today := date(2025, time.June, 1)
	rejected := approved("vr-1", date(2025, time.June, 12), date(2025, time.June, 16))
	rejected.Status = vacation.StatusRejected
	cancelled := approved("vr-2", date(2025, time.June, 12), date(2025, time.June, 16))
	cancelled.Status = vacation.StatusCancelled

	c := candidate(date(2025, time.June, 12), date(2025, time.June, 16))
	err := vacation.ValidateSubmission(c, today, balanceWith(30),
		[]vacation.VacationRequest{rejected, cancelled})
	assert.NoError(t, err)
}

func TestValidateSubmission_OrderOfChecks(t *testing.T) {
	// A request failing several rules reports only the first one.
	today := date(2025, time.June, 1)
	held := pending("vr-existing", date(2025, time.May, 1), date(2025, time.May, 30))

	// Past start AND insufficient balance AND overlap: past start wins.
	c := candidate(date(2025, time.May, 10), date(2025, time.May, 20))
	err := vacation.ValidateSubmission(c, today, balanceWith(0),
		[]vacation.VacationRequest{held})
	assert.True(t, errors.Is(err, vacation.ErrStartInPast))
}
