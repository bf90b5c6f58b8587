package domain

import (
	"sort"
	"time"
)

// CalendarDay truncates t to midnight of its calendar day in loc.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return CalendarDay(a, loc).Equal(CalendarDay(b, loc))
}

// DaysBetween returns the number of calendar days from a to b. Both are expected to be
// calendar days in the same location; the count is DST-safe.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// DistinctDays reduces visits to their set of calendar days in loc, sorted ascending.
func DistinctDays(visits []time.Time, loc *time.Location) []time.Time {
	seen := make(map[time.Time]struct{}, len(visits))
	days := make([]time.Time, 0, len(visits))
	for _, v := range visits {
		d := CalendarDay(v, loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// ComputeStreaks derives the current and longest consecutive-day runs from visits,
// evaluated on the calendar day of now.
//
// current counts the run ending at the latest visit, and is 0 once more than one day has
// passed since that visit. longest is the longest run anywhere in the history.
func ComputeStreaks(visits []time.Time, now time.Time, loc *time.Location) (current, longest int) {
	days := DistinctDays(visits, loc)
	if len(days) == 0 {
		return 0, 0
	}
	today := CalendarDay(now, loc)

	last := days[len(days)-1]
	if DaysBetween(last, today) <= 1 {
		current = 1
		for i := len(days) - 2; i >= 0; i-- {
			if DaysBetween(days[i], days[i+1]) != 1 {
				break
			}
			current++
		}
	}

	longest = 1
	run := 1
	for i := 1; i < len(days); i++ {
		if DaysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return current, longest
}
