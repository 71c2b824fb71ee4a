/*
balance.go - Balance calculation with carry-over

PURPOSE:
  Computes an employee's vacation balance from their hire date and request
  history. This answers the central question: "how many days can this
  employee request right now?"

KEY INSIGHT:
  Balance is computed for the CURRENT ANNIVERSARY CYCLE. The full cycle
  entitlement is granted on the anniversary, not accrued day by day, and
  unused days from completed cycles roll forward without expiry.

BALANCE COMPONENTS:
  Entitled:    Full entitlement of the current cycle (law table)
  CarriedOver: Unused remainders from all completed cycles
  Taken:       Approved days whose start falls in the current cycle
  Pending:     Days held by pending requests, regardless of dates

  Only requests already on record on the snapshot date count. A balance
  for an earlier asOf ignores requests created after it.

AVAILABILITY:
  Available = Entitled + CarriedOver - Taken - Pending

  A completed cycle contributes to CarriedOver only once its closing
  anniversary is strictly in the past; on the anniversary day itself the
  just-closed cycle's remainder has not rolled yet. Taken days of a cycle
  can at most exhaust that cycle's entitlement plus the carry brought into
  it, so carry never goes negative:

    carry = max(0, carry + entitled(k) - taken(k))   for k = 0,1,...

INTEGRITY:
  A negative Available means the store holds approvals the engine never
  validated. That is reported as an IntegrityError, never clamped.
*/
package vacation

// =============================================================================
// BALANCE - Snapshot for the current anniversary cycle
// =============================================================================

// Balance is an employee's computed vacation position as of a given date.
// Available may be negative only when stored data violates invariants;
// ComputeBalance returns an error in that case rather than a snapshot.
type Balance struct {
	EmployeeID     EmployeeID
	AsOf           Date
	Cycle          Cycle
	YearsOfService int

	Entitled    int
	CarriedOver int
	Taken       int
	Pending     int
	Available   int
}

// ComputeBalance derives the balance for an employee hired on hireDate,
// as of asOf, from their full request history. Only the statuses of the
// requests matter; callers pass every request regardless of state.
//
// Returns an IntegrityError when the derived available balance is negative.
func ComputeBalance(employeeID EmployeeID, hireDate Date, asOf Date, requests []VacationRequest) (Balance, error) {
	requests = existingAt(asOf, requests)
	years := YearsOfService(hireDate, asOf)
	cycle := CycleFor(hireDate, asOf)

	carried := carryOver(hireDate, asOf, requests)

	entitled := EntitledDays(years)
	taken := takenInCycle(cycle, requests)
	pending := pendingDays(requests)

	b := Balance{
		EmployeeID:     employeeID,
		AsOf:           asOf,
		Cycle:          cycle,
		YearsOfService: years,
		Entitled:       entitled,
		CarriedOver:    carried,
		Taken:          taken,
		Pending:        pending,
		Available:      entitled + carried - taken - pending,
	}
	if b.Available < 0 {
		return Balance{}, &IntegrityError{EmployeeID: employeeID, AsOf: asOf, Available: b.Available}
	}
	return b, nil
}

// existingAt keeps the requests that were already on record on asOf. A
// snapshot for an earlier date must not charge reservations made after it;
// counting them would push a then-valid balance negative.
func existingAt(asOf Date, requests []VacationRequest) []VacationRequest {
	kept := make([]VacationRequest, 0, len(requests))
	for _, r := range requests {
		if DateOf(r.CreatedAt).After(asOf) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// carryOver walks every completed cycle oldest first and accumulates the
// unused remainder. Cycle k (starting at the k-th anniversary) is completed
// once the (k+1)-th anniversary is strictly before asOf.
func carryOver(hireDate Date, asOf Date, requests []VacationRequest) int {
	carry := 0
	for k := 0; ; k++ {
		closing := hireDate.AddYears(k + 1)
		if !closing.Before(asOf) {
			break
		}
		cycle := CycleAt(hireDate, k)
		carry += EntitledDays(k) - takenInCycle(cycle, requests)
		if carry < 0 {
			carry = 0
		}
	}
	return carry
}

// takenInCycle sums approved days attributed to the cycle. A request belongs
// to the cycle its start date falls in, even when the span crosses the
// anniversary boundary.
func takenInCycle(cycle Cycle, requests []VacationRequest) int {
	taken := 0
	for _, r := range requests {
		if r.Status == StatusApproved && cycle.Contains(r.Start) {
			taken += r.Days
		}
	}
	return taken
}

// pendingDays sums the days held by pending requests. Pending holds count
// against availability regardless of which cycle their dates fall in.
func pendingDays(requests []VacationRequest) int {
	held := 0
	for _, r := range requests {
		if r.Status == StatusPending {
			held += r.Days
		}
	}
	return held
}
