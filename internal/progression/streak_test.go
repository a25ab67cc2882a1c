package progression

import (
	"testing"
	"time"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func TestNextStreakCalendarDay(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name        string
		prev        StreakState
		now         time.Time
		wantCurrent int
		wantLongest int
		wantReset   bool
	}{
		{
			name:        "first workout",
			prev:        StreakState{},
			now:         at("2024-03-10T08:00:00Z"),
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "yesterday increments",
			prev:        StreakState{CurrentStreak: 5, LongestStreak: 5, LastWorkoutDate: ptr(at("2024-03-09T20:00:00Z"))},
			now:         at("2024-03-10T08:00:00Z"),
			wantCurrent: 6,
			wantLongest: 6,
		},
		{
			name:        "same day unchanged",
			prev:        StreakState{CurrentStreak: 4, LongestStreak: 9, LastWorkoutDate: ptr(at("2024-03-10T06:00:00Z"))},
			now:         at("2024-03-10T21:00:00Z"),
			wantCurrent: 4,
			wantLongest: 9,
		},
		{
			name:        "ten day gap resets to one",
			prev:        StreakState{CurrentStreak: 12, LongestStreak: 12, LastWorkoutDate: ptr(at("2024-02-29T10:00:00Z"))},
			now:         at("2024-03-10T10:00:00Z"),
			wantCurrent: 1,
			wantLongest: 12,
			wantReset:   true,
		},
		{
			name:        "two calendar days apart resets even within 25 hours",
			prev:        StreakState{CurrentStreak: 3, LongestStreak: 3, LastWorkoutDate: ptr(at("2024-03-08T23:30:00Z"))},
			now:         at("2024-03-10T00:30:00Z"),
			wantCurrent: 1,
			wantLongest: 3,
			wantReset:   true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := NextStreak(tc.prev, tc.now, WindowCalendarDay, time.UTC)
			if got.CurrentStreak != tc.wantCurrent || got.LongestStreak != tc.wantLongest || got.Reset != tc.wantReset {
				t.Fatalf("got %+v", got)
			}
			if got.LastWorkoutDate == nil || !got.LastWorkoutDate.Equal(tc.now) {
				t.Fatalf("last workout not recorded: %v", got.LastWorkoutDate)
			}
		})
	}
}

func TestNextStreakRolling36h(t *testing.T) {
	t.Parallel()
	prev := StreakState{CurrentStreak: 3, LongestStreak: 3, LastWorkoutDate: ptr(at("2024-03-08T23:30:00Z"))}
	if got := NextStreak(prev, at("2024-03-10T00:30:00Z"), WindowRolling36h, time.UTC); got.CurrentStreak != 4 {
		t.Fatalf("25h gap should continue: %+v", got)
	}
	if got := NextStreak(prev, at("2024-03-10T12:30:00Z"), WindowRolling36h, time.UTC); got.CurrentStreak != 1 {
		t.Fatalf("37h gap should reset: %+v", got)
	}
}

func TestNextStreakUsesLocation(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC-5", -5*3600)
	prev := StreakState{CurrentStreak: 2, LongestStreak: 2, LastWorkoutDate: ptr(at("2024-03-10T03:00:00Z"))}
	got := NextStreak(prev, at("2024-03-10T20:00:00Z"), WindowCalendarDay, loc)
	if got.CurrentStreak != 3 {
		t.Fatalf("local days differ, expected increment: %+v", got)
	}
}

func TestLongestStreakNeverDecreases(t *testing.T) {
	t.Parallel()
	days := []string{
		"2024-01-01T10:00:00Z", "2024-01-02T10:00:00Z", "2024-01-02T18:00:00Z",
		"2024-01-03T10:00:00Z", "2024-01-09T10:00:00Z", "2024-01-10T10:00:00Z",
		"2024-02-01T10:00:00Z",
	}
	var st StreakState
	for _, d := range days {
		next := NextStreak(st, at(d), WindowCalendarDay, time.UTC)
		if next.LongestStreak < st.LongestStreak {
			t.Fatalf("longest decreased at %s: %d -> %d", d, st.LongestStreak, next.LongestStreak)
		}
		if next.CurrentStreak < 1 || next.CurrentStreak > next.LongestStreak {
			t.Fatalf("bad current at %s: %+v", d, next)
		}
		st = next.StreakState
	}
	if st.LongestStreak != 3 || st.CurrentStreak != 1 {
		t.Fatalf("final state %+v", st)
	}
}

func TestApplyStreakBonus(t *testing.T) {
	t.Parallel()
	cases := []struct {
		streak              int
		xp, coins, bonusPct int
	}{
		{0, 100, 50, 0},
		{2, 100, 50, 0},
		{3, 105, 53, 5},
		{7, 110, 55, 10},
		{29, 115, 58, 15},
		{365, 150, 75, 50},
	}
	for _, tc := range cases {
		got := ApplyStreakBonus(100, 50, tc.streak)
		if got.XP != tc.xp || got.Coins != tc.coins || got.BonusPercent != tc.bonusPct {
			t.Fatalf("streak %d: got %+v", tc.streak, got)
		}
	}
}

func TestMilestoneStatuses(t *testing.T) {
	t.Parallel()
	st := MilestoneStatuses(20)
	reached, current := 0, ""
	for _, m := range st {
		if m.Reached {
			reached++
		}
		if m.Current {
			current = m.Name
		}
	}
	if reached != 3 || current != "Two Week Champion" {
		t.Fatalf("reached=%d current=%q", reached, current)
	}
	if next := NextMilestone(20); next == nil || next.Days != 30 {
		t.Fatalf("next=%+v", next)
	}
	if next := NextMilestone(400); next != nil {
		t.Fatalf("expected no next milestone, got %+v", next)
	}
}

func TestDaysUntilStreakLoss(t *testing.T) {
	t.Parallel()
	now := at("2024-03-10T12:00:00Z")
	st := StreakState{CurrentStreak: 4, LongestStreak: 4}
	if got := DaysUntilStreakLoss(st, now, time.UTC); got != 0 {
		t.Fatalf("no workout: %d", got)
	}
	st.LastWorkoutDate = ptr(at("2024-03-10T07:00:00Z"))
	if got := DaysUntilStreakLoss(st, now, time.UTC); got != 2 {
		t.Fatalf("today: %d", got)
	}
	st.LastWorkoutDate = ptr(at("2024-03-09T07:00:00Z"))
	if got := DaysUntilStreakLoss(st, now, time.UTC); got != 1 {
		t.Fatalf("yesterday: %d", got)
	}
	st.LastWorkoutDate = ptr(at("2024-03-07T07:00:00Z"))
	if got := DaysUntilStreakLoss(st, now, time.UTC); got != 0 {
		t.Fatalf("broken: %d", got)
	}
}

func TestStreakFromHistory(t *testing.T) {
	t.Parallel()
	now := at("2024-03-10T12:00:00Z")
	dates := []time.Time{
		at("2024-03-10T08:00:00Z"), at("2024-03-09T08:00:00Z"), at("2024-03-09T19:00:00Z"),
		at("2024-03-08T08:00:00Z"), at("2024-03-05T08:00:00Z"), at("2024-03-04T08:00:00Z"),
		at("2024-03-03T08:00:00Z"), at("2024-03-02T08:00:00Z"),
	}
	cur, longest := StreakFromHistory(dates, now, time.UTC)
	if cur != 3 || longest != 4 {
		t.Fatalf("cur=%d longest=%d", cur, longest)
	}
	cur, _ = StreakFromHistory(dates[4:], now, time.UTC)
	if cur != 0 {
		t.Fatalf("stale history should have no current streak, got %d", cur)
	}
}

func TestWeekStartIsSunday(t *testing.T) {
	t.Parallel()
	got := WeekStart(at("2024-03-13T15:00:00Z"), time.UTC)
	if !got.Equal(at("2024-03-10T00:00:00Z")) {
		t.Fatalf("WeekStart=%v", got)
	}
}
