package progression

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// StreakWindow selects how the gap between two workouts is judged.
type StreakWindow string

const (
	// WindowCalendarDay continues a streak when the previous workout fell on
	// the previous calendar day.
	WindowCalendarDay StreakWindow = "calendar_day"
	// WindowRolling36h continues a streak when at most 36 hours elapsed.
	WindowRolling36h StreakWindow = "rolling_36h"
)

func ParseStreakWindow(raw string) (StreakWindow, error) {
	switch StreakWindow(strings.ToLower(strings.TrimSpace(raw))) {
	case "", WindowCalendarDay:
		return WindowCalendarDay, nil
	case WindowRolling36h:
		return WindowRolling36h, nil
	}
	return "", fmt.Errorf("unknown streak window %q", raw)
}

type StreakState struct {
	CurrentStreak   int        `json:"currentStreak"`
	LongestStreak   int        `json:"longestStreak"`
	LastWorkoutDate *time.Time `json:"lastWorkoutDate"`
}

type StreakUpdate struct {
	StreakState
	BonusPercent int  `json:"bonus"`
	Incremented  bool `json:"incremented"`
	Reset        bool `json:"reset"`
}

// DefaultStreak is what callers report when the streak write fails.
func DefaultStreak() StreakUpdate {
	return StreakUpdate{StreakState: StreakState{CurrentStreak: 1, LongestStreak: 1}}
}

// NextStreak folds a workout at time at into prev. A second workout on the
// same day leaves the count unchanged; a gap beyond the window resets to 1.
func NextStreak(prev StreakState, at time.Time, window StreakWindow, loc *time.Location) StreakUpdate {
	cur := 1
	var incremented, reset bool
	if prev.LastWorkoutDate != nil && prev.CurrentStreak > 0 {
		last := *prev.LastWorkoutDate
		days := CalendarDaysBetween(last, at, loc)
		switch {
		case days <= 0:
			cur = prev.CurrentStreak
		case window == WindowRolling36h && at.Sub(last) <= 36*time.Hour:
			cur = prev.CurrentStreak + 1
			incremented = true
		case window != WindowRolling36h && days == 1:
			cur = prev.CurrentStreak + 1
			incremented = true
		default:
			reset = true
		}
	}
	longest := prev.LongestStreak
	if cur > longest {
		longest = cur
	}
	lastAt := at
	if prev.LastWorkoutDate != nil && prev.LastWorkoutDate.After(at) {
		lastAt = *prev.LastWorkoutDate
	}
	return StreakUpdate{
		StreakState: StreakState{
			CurrentStreak:   cur,
			LongestStreak:   longest,
			LastWorkoutDate: &lastAt,
		},
		BonusPercent: StreakBonusPercent(cur),
		Incremented:  incremented,
		Reset:        reset,
	}
}

// CalendarDaysBetween counts day boundaries from a to b in loc.
func CalendarDaysBetween(a, b time.Time, loc *time.Location) int {
	da, db := DayStart(a, loc), DayStart(b, loc)
	ua := time.Date(da.Year(), da.Month(), da.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(db.Year(), db.Month(), db.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(ub.Sub(ua).Hours() / 24))
}

// DayStart is midnight of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// WeekStart is midnight of the Sunday starting t's week in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	d := DayStart(t, loc)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

type StreakMilestone struct {
	Days         int    `json:"days"`
	BonusPercent int    `json:"bonusPercent"`
	Name         string `json:"name"`
}

var streakMilestones = []StreakMilestone{
	{3, 5, "Getting Started"},
	{7, 10, "Weekly Warrior"},
	{14, 15, "Two Week Champion"},
	{30, 20, "Monthly Master"},
	{60, 25, "Unstoppable"},
	{100, 30, "Century Club"},
	{365, 50, "Year of Excellence"},
}

func StreakMilestones() []StreakMilestone {
	return append([]StreakMilestone(nil), streakMilestones...)
}

// StreakBonusPercent is the bonus of the highest milestone reached.
func StreakBonusPercent(streak int) int {
	bonus := 0
	for _, m := range streakMilestones {
		if streak >= m.Days {
			bonus = m.BonusPercent
		}
	}
	return bonus
}

type BonusResult struct {
	XP           int `json:"xp"`
	Coins        int `json:"coins"`
	BonusPercent int `json:"bonusPercent"`
}

// ApplyStreakBonus scales base rewards by the streak's milestone bonus.
func ApplyStreakBonus(baseXP, baseCoins, streak int) BonusResult {
	pct := StreakBonusPercent(streak)
	return BonusResult{
		XP:           scalePercent(baseXP, pct),
		Coins:        scalePercent(baseCoins, pct),
		BonusPercent: pct,
	}
}

// scalePercent is v*(100+pct)/100 rounded half away from zero.
func scalePercent(v, pct int) int {
	n := v * (100 + pct)
	if n < 0 {
		return -((-n + 50) / 100)
	}
	return (n + 50) / 100
}

type MilestoneStatus struct {
	StreakMilestone
	Reached bool `json:"reached"`
	Current bool `json:"current"`
}

// MilestoneStatuses flags reached milestones and the one currently in force.
func MilestoneStatuses(streak int) []MilestoneStatus {
	out := make([]MilestoneStatus, 0, len(streakMilestones))
	currentIdx := -1
	for i, m := range streakMilestones {
		if streak >= m.Days {
			currentIdx = i
		}
	}
	for i, m := range streakMilestones {
		out = append(out, MilestoneStatus{StreakMilestone: m, Reached: streak >= m.Days, Current: i == currentIdx})
	}
	return out
}

// NextMilestone is the first milestone above streak, nil past the last one.
func NextMilestone(streak int) *StreakMilestone {
	for _, m := range streakMilestones {
		if streak < m.Days {
			m := m
			return &m
		}
	}
	return nil
}

// DaysUntilStreakLoss is 2 after a workout today, 1 after one yesterday and
// 0 once the streak is already broken.
func DaysUntilStreakLoss(state StreakState, now time.Time, loc *time.Location) int {
	if state.LastWorkoutDate == nil || state.CurrentStreak <= 0 {
		return 0
	}
	switch CalendarDaysBetween(*state.LastWorkoutDate, now, loc) {
	case 0:
		return 2
	case 1:
		return 1
	default:
		return 0
	}
}

// StreakFromHistory rebuilds current and longest streak from workout dates.
// The current streak is 0 when the latest workout is older than yesterday.
func StreakFromHistory(dates []time.Time, now time.Time, loc *time.Location) (current, longest int) {
	if len(dates) == 0 {
		return 0, 0
	}
	seen := map[time.Time]bool{}
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		ds := DayStart(d, loc)
		if !seen[ds] {
			seen[ds] = true
			days = append(days, ds)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if CalendarDaysBetween(days[i], days[i-1], loc) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	if CalendarDaysBetween(days[0], now, loc) > 1 {
		return 0, longest
	}
	current = 1
	for i := 1; i < len(days); i++ {
		if CalendarDaysBetween(days[i], days[i-1], loc) != 1 {
			break
		}
		current++
	}
	return current, longest
}
