package vacation

// =============================================================================
// STATISTICS - Per-company aggregates
// =============================================================================

// Statistics is a read-only aggregate over a company's requests. Computing
// it never mutates anything; repeated calls over unchanged data return
// identical values.
type Statistics struct {
	CompanyID CompanyID
	AsOf      Date

	PendingCount  int
	ApprovedCount int
	RejectedCount int

	// Approved requests starting within the next 7 calendar days,
	// today included.
	UpcomingCount int
}

// ComputeStatistics tallies request counts for a company as of a date.
// An empty company yields all-zero counts.
func ComputeStatistics(companyID CompanyID, asOf Date, requests []VacationRequest) Statistics {
	stats := Statistics{CompanyID: companyID, AsOf: asOf}
	horizon := asOf.AddDays(7)
	for _, r := range requests {
		switch r.Status {
		case StatusPending:
			stats.PendingCount++
		case StatusApproved:
			stats.ApprovedCount++
			if r.Start.AfterOrEqual(asOf) && r.Start.BeforeOrEqual(horizon) {
				stats.UpcomingCount++
			}
		case StatusRejected:
			stats.RejectedCount++
		}
	}
	return stats
}
