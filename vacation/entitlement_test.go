package vacation_test

import (
	"testing"

	"github.com/nominahq/vacation-engine/vacation"
)

func TestEntitledDays_LawTable(t *testing.T) {
	cases := []struct {
		years int
		want  int
	}{
		{-3, 0},
		{0, 0},
		{1, 12},
		{2, 14},
		{3, 16},
		{4, 18},
		{5, 20},
		{6, 22},
		{10, 22},
		{11, 24},
		{15, 24},
		{16, 26},
		{20, 26},
		{21, 28},
		{25, 28},
		{26, 30},
		{30, 30},
		{31, 32},
		{45, 32},
	}
	for _, tc := range cases {
		if got := vacation.EntitledDays(tc.years); got != tc.want {
			t.Errorf("EntitledDays(%d) = %d, want %d", tc.years, got, tc.want)
		}
	}
}

func TestEntitledDays_MonotonicNonDecreasing(t *testing.T) {
	prev := vacation.EntitledDays(0)
	for years := 1; years <= 60; years++ {
		got := vacation.EntitledDays(years)
		if got < prev {
			t.Fatalf("EntitledDays(%d) = %d decreased from %d", years, got, prev)
		}
		prev = got
	}
}

func TestEntitledDays_CappedAboveThirty(t *testing.T) {
	for years := 31; years <= 100; years++ {
		if got := vacation.EntitledDays(years); got != 32 {
			t.Fatalf("EntitledDays(%d) = %d, want 32", years, got)
		}
	}
}
