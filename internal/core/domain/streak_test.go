package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC)

// day returns a timestamp on the n-th day of the test calendar (day 1 == base).
func day(n int) time.Time {
	return base.AddDate(0, 0, n-1)
}

func days(ns ...int) []time.Time {
	out := make([]time.Time, 0, len(ns))
	for _, n := range ns {
		out = append(out, day(n))
	}
	return out
}

func TestComputeStreaks(t *testing.T) {
	tests := []struct {
		name        string
		visits      []time.Time
		now         time.Time
		wantCurrent int
		wantLongest int
	}{
		{name: "no visits", visits: nil, now: day(1), wantCurrent: 0, wantLongest: 0},
		{name: "single visit today", visits: days(1), now: day(1), wantCurrent: 1, wantLongest: 1},
		{name: "single visit yesterday", visits: days(1), now: day(2), wantCurrent: 1, wantLongest: 1},
		{name: "single visit lapsed", visits: days(1), now: day(3), wantCurrent: 0, wantLongest: 1},
		{name: "break then new run", visits: days(1, 2, 3, 6, 7), now: day(7), wantCurrent: 2, wantLongest: 3},
		{name: "five consecutive on day five", visits: days(1, 2, 3, 4, 5), now: day(5), wantCurrent: 5, wantLongest: 5},
		{name: "five consecutive on day six", visits: days(1, 2, 3, 4, 5), now: day(6), wantCurrent: 5, wantLongest: 5},
		{name: "five consecutive lapsed on day eight", visits: days(1, 2, 3, 4, 5), now: day(8), wantCurrent: 0, wantLongest: 5},
		{name: "unsorted input", visits: days(7, 1, 6, 3, 2), now: day(7), wantCurrent: 2, wantLongest: 3},
		{name: "current run is the longest", visits: days(1, 4, 5, 6, 7), now: day(7), wantCurrent: 4, wantLongest: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := ComputeStreaks(tt.visits, tt.now, time.UTC)
			assert.Equal(t, tt.wantCurrent, current, "current")
			assert.Equal(t, tt.wantLongest, longest, "longest")
		})
	}
}

func TestComputeStreaks_SameDayVisitsCountOnce(t *testing.T) {
	visits := []time.Time{
		day(1),
		day(1).Add(3 * time.Hour),
		day(2),
		day(2).Add(10 * time.Hour),
	}

	current, longest := ComputeStreaks(visits, day(2), time.UTC)
	assert.Equal(t, 2, current)
	assert.Equal(t, 2, longest)
}

func TestCalendarDay_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 20:00 UTC on March 1 is already March 2 at UTC+10.
	ts := time.Date(2025, time.March, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, CalendarDay(ts, time.UTC).Day())
	assert.Equal(t, 2, CalendarDay(ts, loc).Day())
	assert.False(t, SameDay(ts, base, loc))
	assert.True(t, SameDay(ts, base, time.UTC))
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// DST starts on 2025-03-30 in Berlin; that day has 23 hours.
	before := CalendarDay(time.Date(2025, time.March, 29, 12, 0, 0, 0, loc), loc)
	after := CalendarDay(time.Date(2025, time.March, 31, 12, 0, 0, 0, loc), loc)

	assert.Equal(t, 2, DaysBetween(before, after))
}

func TestDistinctDays(t *testing.T) {
	got := DistinctDays([]time.Time{day(3), day(1), day(3).Add(time.Hour), day(2)}, time.UTC)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Before(got[i]))
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(ErrAlreadyActive))
	assert.Equal(t, KindExpired, KindOf(ErrOTPExpired))
	assert.Equal(t, KindDependency, KindOf(assert.AnError))
}

func TestUser_Federated(t *testing.T) {
	u := &User{PasswordHash: FederatedPasswordHash}
	assert.True(t, u.Federated())
	u.PasswordHash = "$2a$10$abc"
	assert.False(t, u.Federated())
}

func TestPendingRegistration_Expired(t *testing.T) {
	p := &PendingRegistration{ExpiresAt: base.Add(5 * time.Minute)}
	assert.False(t, p.Expired(base))
	assert.False(t, p.Expired(base.Add(5*time.Minute)))
	assert.True(t, p.Expired(base.Add(5*time.Minute+time.Second)))
}
