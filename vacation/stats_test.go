package vacation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nominahq/vacation-engine/vacation"
)

func TestComputeStatistics_Empty(t *testing.T) {
	stats := vacation.ComputeStatistics("acme", date(2025, time.September, 1), nil)

	assert.Equal(t, 0, stats.PendingCount)
	assert.Equal(t, 0, stats.ApprovedCount)
	assert.Equal(t, 0, stats.RejectedCount)
	assert.Equal(t, 0, stats.UpcomingCount)
}

func TestComputeStatistics_CountsByStatus(t *testing.T) {
	asOf := date(2025, time.September, 1)

	rejected := approved("vr-3", date(2025, time.July, 1), date(2025, time.July, 2))
	rejected.Status = vacation.StatusRejected
	cancelled := approved("vr-4", date(2025, time.July, 10), date(2025, time.July, 11))
	cancelled.Status = vacation.StatusCancelled

	requests := []vacation.VacationRequest{
		pending("vr-1", date(2025, time.October, 1), date(2025, time.October, 3)),
		approved("vr-2", date(2025, time.June, 2), date(2025, time.June, 6)),
		rejected,
		cancelled,
	}

	stats := vacation.ComputeStatistics("acme", asOf, requests)

	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 1, stats.ApprovedCount)
	assert.Equal(t, 1, stats.RejectedCount)
	// Cancelled requests are not counted anywhere.
}

func TestComputeStatistics_UpcomingWindow(t *testing.T) {
	// Window is [asOf, asOf+7] inclusive; only approved requests count.
	asOf := date(2025, time.September, 1)

	requests := []vacation.VacationRequest{
		approved("vr-1", asOf, asOf.AddDays(1)),                         // starts today
		approved("vr-2", asOf.AddDays(7), asOf.AddDays(9)),              // boundary day
		approved("vr-3", asOf.AddDays(8), asOf.AddDays(10)),             // past window
		approved("vr-4", asOf.AddDays(-3), asOf.AddDays(-1)),            // already started
		pending("vr-5", asOf.AddDays(2), asOf.AddDays(3)),               // pending, not counted
	}

	stats := vacation.ComputeStatistics("acme", asOf, requests)
	assert.Equal(t, 2, stats.UpcomingCount)
	assert.Equal(t, 4, stats.ApprovedCount)
}

func TestComputeStatistics_Idempotent(t *testing.T) {
	asOf := date(2025, time.September, 1)
	requests := []vacation.VacationRequest{
		pending("vr-1", date(2025, time.October, 1), date(2025, time.October, 3)),
		approved("vr-2", date(2025, time.September, 3), date(2025, time.September, 5)),
	}

	first := vacation.ComputeStatistics("acme", asOf, requests)
	second := vacation.ComputeStatistics("acme", asOf, requests)
	assert.Equal(t, first, second)
}
