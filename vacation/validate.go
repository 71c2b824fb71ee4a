package vacation

// =============================================================================
// SUBMISSION VALIDATION - Ordered checks, first failure wins
// =============================================================================

// ValidateSubmission runs the submission checks in their fixed order and
// returns the first violation:
//
//  1. end date on or after start date
//  2. start date not before today
//  3. requested days within available balance
//  4. no overlap with an existing pending or approved request
//
// The candidate's Days must already be the inclusive span count; existing
// holds all of the employee's requests in any state.
func ValidateSubmission(candidate VacationRequest, today Date, balance Balance, existing []VacationRequest) error {
	if candidate.End.Before(candidate.Start) {
		return ErrEndBeforeStart
	}
	if candidate.Start.Before(today) {
		return ErrStartInPast
	}
	if candidate.Days > balance.Available {
		return &InsufficientBalanceError{
			EmployeeID: candidate.EmployeeID,
			Available:  balance.Available,
			Requested:  candidate.Days,
		}
	}
	for _, r := range existing {
		if !r.HoldsDays() {
			continue
		}
		if r.Overlaps(candidate.Start, candidate.End) {
			return &OverlapError{
				EmployeeID: candidate.EmployeeID,
				ExistingID: r.ID,
				Start:      r.Start,
				End:        r.End,
			}
		}
	}
	return nil
}
