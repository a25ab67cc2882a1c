package progression

import (
	"fmt"
	"strings"
)

type RequirementType string

const (
	ReqSkillsCompleted   RequirementType = "skills_completed"
	ReqBranchCompleted   RequirementType = "branch_completed"
	ReqLevelReached      RequirementType = "level_reached"
	ReqDailySkills       RequirementType = "daily_skills"
	ReqWeeklySkills      RequirementType = "weekly_skills"
	ReqStreakDays        RequirementType = "streak_days"
	ReqWorkoutsCompleted RequirementType = "workouts_completed"
)

var requirementTypes = map[RequirementType]bool{
	ReqSkillsCompleted:   true,
	ReqBranchCompleted:   true,
	ReqLevelReached:      true,
	ReqDailySkills:       true,
	ReqWeeklySkills:      true,
	ReqStreakDays:        true,
	ReqWorkoutsCompleted: true,
}

type Requirement struct {
	Type   RequirementType `json:"type" yaml:"type"`
	Count  int             `json:"count" yaml:"count"`
	Branch string          `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// Achievement is a static catalog entry.
type Achievement struct {
	Key         string      `json:"key" yaml:"key"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Category    string      `json:"category" yaml:"category"`
	Icon        string      `json:"icon,omitempty" yaml:"icon,omitempty"`
	Requirement Requirement `json:"requirement" yaml:"requirement"`
	RewardXP    int         `json:"rewardXp" yaml:"reward_xp"`
	RewardCoins int         `json:"rewardCoins" yaml:"reward_coins"`
}

// Validate reports the first structural problem with a catalog entry.
func (a Achievement) Validate() error {
	switch {
	case strings.TrimSpace(a.Key) == "":
		return fmt.Errorf("achievement without key")
	case !requirementTypes[a.Requirement.Type]:
		return fmt.Errorf("achievement %s: unknown requirement type %q", a.Key, a.Requirement.Type)
	case a.Requirement.Type != ReqBranchCompleted && a.Requirement.Count <= 0:
		return fmt.Errorf("achievement %s: count must be positive", a.Key)
	case a.Requirement.Type == ReqBranchCompleted && a.Requirement.Branch == "":
		return fmt.Errorf("achievement %s: branch requirement without branch", a.Key)
	case a.RewardXP < 0 || a.RewardCoins < 0:
		return fmt.Errorf("achievement %s: negative reward", a.Key)
	}
	return nil
}

// Stats is the snapshot of a user that achievement requirements read.
// Day and week counts are already windowed by the caller.
type Stats struct {
	SkillsCompleted   int
	BranchCompleted   map[string]int
	BranchTotal       map[string]int
	Level             int
	SkillsToday       int
	SkillsThisWeek    int
	CurrentStreak     int
	LongestStreak     int
	WorkoutsCompleted int
}

// Progress returns how far s is toward a, as (current, target).
func (a Achievement) Progress(s Stats) (int, int) {
	r := a.Requirement
	switch r.Type {
	case ReqSkillsCompleted:
		return s.SkillsCompleted, r.Count
	case ReqBranchCompleted:
		return s.BranchCompleted[r.Branch], s.BranchTotal[r.Branch]
	case ReqLevelReached:
		return s.Level, r.Count
	case ReqDailySkills:
		return s.SkillsToday, r.Count
	case ReqWeeklySkills:
		return s.SkillsThisWeek, r.Count
	case ReqStreakDays:
		streak := s.LongestStreak
		if s.CurrentStreak > streak {
			streak = s.CurrentStreak
		}
		return streak, r.Count
	case ReqWorkoutsCompleted:
		return s.WorkoutsCompleted, r.Count
	}
	return 0, 0
}

// CheckAchievementCompletion reports whether s satisfies a's requirement.
// A branch with no skills in it can never be completed.
func CheckAchievementCompletion(a Achievement, s Stats) bool {
	cur, target := a.Progress(s)
	if target <= 0 {
		return false
	}
	return cur >= target
}

// PendingUnlocks returns catalog entries that s satisfies and that are not
// already in unlocked, in catalog order.
func PendingUnlocks(catalog []Achievement, unlocked map[string]bool, s Stats) []Achievement {
	var out []Achievement
	for _, a := range catalog {
		if unlocked[a.Key] {
			continue
		}
		if CheckAchievementCompletion(a, s) {
			out = append(out, a)
		}
	}
	return out
}

// StreakMilestoneAchievements turns the streak staircase into achievement
// entries keyed STREAK_<n>_DAYS.
func StreakMilestoneAchievements() []Achievement {
	out := make([]Achievement, 0, len(streakMilestones))
	for _, m := range streakMilestones {
		out = append(out, Achievement{
			Key:         fmt.Sprintf("STREAK_%d_DAYS", m.Days),
			Name:        m.Name,
			Description: fmt.Sprintf("Train %d days in a row", m.Days),
			Category:    "streak",
			Requirement: Requirement{Type: ReqStreakDays, Count: m.Days},
			RewardXP:    m.BonusPercent * 100,
			RewardCoins: m.BonusPercent * 50,
		})
	}
	return out
}
