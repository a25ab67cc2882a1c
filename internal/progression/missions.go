package progression

import "fmt"

type MissionType string

const (
	MissionCompleteExercises MissionType = "complete_exercises"
	MissionStrengthFocus     MissionType = "strength_focus"
	MissionEnduranceFocus    MissionType = "endurance_focus"
	MissionBalanceFocus      MissionType = "balance_focus"
	MissionMobilityFocus     MissionType = "mobility_focus"
	MissionCoreFocus         MissionType = "core_focus"
	MissionStaticFocus       MissionType = "static_focus"
	MissionConsistency       MissionType = "consistency"
	MissionProgression       MissionType = "progression"
	MissionSkillPractice     MissionType = "skill_practice"
	MissionVolumeChallenge   MissionType = "volume_challenge"
)

var focusMissions = map[Axis]MissionType{
	AxisStrength:    MissionStrengthFocus,
	AxisEndurance:   MissionEnduranceFocus,
	AxisBalance:     MissionBalanceFocus,
	AxisMobility:    MissionMobilityFocus,
	AxisCore:        MissionCoreFocus,
	AxisStaticHolds: MissionStaticFocus,
}

// MissionTemplate is a mission before it is stored for a user and day.
// Target 0 means the mission is completed by hand rather than by progress.
type MissionTemplate struct {
	Type        MissionType `json:"type"`
	Description string      `json:"description"`
	Target      int         `json:"target"`
	RewardXP    int         `json:"rewardXp"`
	RewardCoins int         `json:"rewardCoins"`
	// Axis is set on focus missions.
	Axis Axis `json:"axis,omitempty"`
}

// DailyMissions builds the day's missions for a user at level whose weakest
// axis is weakest. The set grows with the level.
func DailyMissions(level Level, weakest Axis) []MissionTemplate {
	idx := level.Index()

	exerciseTargets := []int{3, 5, 8, 8}
	target := exerciseTargets[idx]
	out := []MissionTemplate{{
		Type:        MissionCompleteExercises,
		Description: fmt.Sprintf("Complete %d exercises", target),
		Target:      target,
		RewardXP:    target * 5,
		RewardCoins: target * 5 / 2,
	}}

	if mt, ok := focusMissions[weakest]; ok {
		focusTarget := []int{1, 2, 3, 3}[idx]
		out = append(out, MissionTemplate{
			Type:        mt,
			Description: fmt.Sprintf("Train %s with %d exercises", weakest, focusTarget),
			Target:      focusTarget,
			RewardXP:    []int{15, 25, 40, 40}[idx],
			RewardCoins: []int{5, 10, 15, 15}[idx],
			Axis:        weakest,
		})
	}

	switch level {
	case LevelBeginner:
		out = append(out, MissionTemplate{
			Type:        MissionConsistency,
			Description: "Check in with a workout today",
			RewardXP:    10,
			RewardCoins: 5,
		})
	case LevelIntermediate:
		out = append(out, MissionTemplate{
			Type:        MissionProgression,
			Description: "Try a harder variation of one exercise",
			Target:      1,
			RewardXP:    20,
			RewardCoins: 10,
		})
	default:
		out = append(out, MissionTemplate{
			Type:        MissionSkillPractice,
			Description: "Practice an advanced skill",
			Target:      1,
			RewardXP:    50,
			RewardCoins: 20,
		})
		out = append(out, MissionTemplate{
			Type:        MissionVolumeChallenge,
			Description: "Log 100 total reps",
			Target:      100,
			RewardXP:    30,
			RewardCoins: 15,
		})
	}
	return out
}

// LoggedExercise is the part of a completed exercise mission tracking reads.
type LoggedExercise struct {
	Axis       Axis
	Category   Category
	Difficulty Difficulty
	Reps       int
	IsSkill    bool
}

// MissionIncrement is how much a batch of logged exercises advances a
// mission of type mt. Missions completed by hand never advance.
func MissionIncrement(m MissionTemplate, logged []LoggedExercise, level Level) int {
	n := 0
	for _, e := range logged {
		switch m.Type {
		case MissionCompleteExercises:
			n++
		case MissionVolumeChallenge:
			n += e.Reps
		case MissionSkillPractice:
			if e.IsSkill || e.Difficulty.Band() >= DifficultyAdvanced.Band() {
				n++
			}
		case MissionProgression:
			if e.Difficulty.Band() > level.Index() {
				n++
			}
		default:
			if m.Axis != "" && e.Axis == m.Axis {
				n++
			}
		}
	}
	return n
}
