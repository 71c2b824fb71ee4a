package vacation

import "time"

// =============================================================================
// DATE - Civil date (day granularity, UTC)
// =============================================================================

// Date is a calendar date with no time component. All engine arithmetic is
// done in whole days; requests, cycles and balances never see a clock.
type Date struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func Today() Date {
	return DateOf(time.Now())
}

// DateOf is the UTC calendar date of an instant.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date  { return Date{Time: d.normalize().AddDate(0, 0, n)} }
func (d Date) AddYears(n int) Date { return Date{Time: d.normalize().AddDate(n, 0, 0)} }

func (d Date) IsZero() bool   { return d.Time.IsZero() }
func (d Date) String() string { return d.normalize().Format(dateLayout) }

// DaysBetween returns the number of whole days from 'from' to 'to'.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// DaysInclusive returns the inclusive day count of [start, end].
// DaysInclusive(d, d) == 1.
func DaysInclusive(start, end Date) int {
	return DaysBetween(start, end) + 1
}

// =============================================================================
// CYCLE - Anniversary-to-anniversary entitlement period
// =============================================================================

// Cycle is one service year: it starts on a hire-date anniversary and ends
// the day before the next one (both ends inclusive).
type Cycle struct {
	Start Date
	End   Date
}

func (c Cycle) Contains(d Date) bool {
	return d.AfterOrEqual(c.Start) && d.BeforeOrEqual(c.End)
}

func (c Cycle) String() string {
	return "[" + c.Start.String() + ", " + c.End.String() + "]"
}

// CycleAt returns the index-th cycle for the given hire date (0-based: the
// first cycle starts on the hire date itself).
func CycleAt(hireDate Date, index int) Cycle {
	start := hireDate.AddYears(index)
	return Cycle{Start: start, End: start.AddYears(1).AddDays(-1)}
}

// CycleFor returns the open cycle containing asOf. An anniversary day belongs
// to the cycle it starts.
func CycleFor(hireDate Date, asOf Date) Cycle {
	return CycleAt(hireDate, YearsOfService(hireDate, asOf))
}

// YearsOfService returns the number of completed service anniversaries at
// asOf. The anniversary day itself counts as completed. Dates before the hire
// date return 0.
func YearsOfService(hireDate Date, asOf Date) int {
	if asOf.Before(hireDate) {
		return 0
	}
	years := asOf.Time.Year() - hireDate.Time.Year()
	if asOf.Before(hireDate.AddYears(years)) {
		years--
	}
	return years
}
