package vacation

// =============================================================================
// ENTITLEMENT TABLE - Ley Federal del Trabajo, Art. 76 (2023 reform)
// =============================================================================

// EntitledDays maps completed years of service to the annual vacation-day
// entitlement. The table is closed and law-defined:
//
//	1 → 12   2 → 14   3 → 16   4 → 18   5 → 20
//	6–10 → 22   11–15 → 24   16–20 → 26   21–25 → 28   26–30 → 30   >30 → 32
//
// The function is total: less than one full year entitles to 0 days, and
// anything above the top bracket stays at 32 indefinitely. Monotonically
// non-decreasing in years of service.
func EntitledDays(yearsOfService int) int {
	switch {
	case yearsOfService < 1:
		return 0
	case yearsOfService == 1:
		return 12
	case yearsOfService == 2:
		return 14
	case yearsOfService == 3:
		return 16
	case yearsOfService == 4:
		return 18
	case yearsOfService == 5:
		return 20
	case yearsOfService <= 10:
		return 22
	case yearsOfService <= 15:
		return 24
	case yearsOfService <= 20:
		return 26
	case yearsOfService <= 25:
		return 28
	case yearsOfService <= 30:
		return 30
	default:
		return 32
	}
}
