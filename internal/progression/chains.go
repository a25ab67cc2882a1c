package progression

import "fmt"

type ChainType string

const (
	ChainWorkoutCount      ChainType = "WORKOUT_COUNT"
	ChainProgressMilestone ChainType = "PROGRESS_MILESTONE"
	ChainExerciseMastery   ChainType = "EXERCISE_MASTERY"
)

type ChainLevel struct {
	Level  int    `json:"level" yaml:"level"`
	Name   string `json:"name" yaml:"name"`
	Target int    `json:"target" yaml:"target"`
	Points int    `json:"points" yaml:"points"`
}

// Chain is a ladder of achievements over one cumulative metric: workouts
// finished, total XP, or volume logged in a category.
type Chain struct {
	Key      string       `json:"key" yaml:"key"`
	Name     string       `json:"name" yaml:"name"`
	Type     ChainType    `json:"type" yaml:"type"`
	Category Category     `json:"category,omitempty" yaml:"category,omitempty"`
	Levels   []ChainLevel `json:"levels" yaml:"levels"`
}

func (c Chain) Validate() error {
	switch c.Type {
	case ChainWorkoutCount, ChainProgressMilestone:
	case ChainExerciseMastery:
		if _, ok := ParseCategory(string(c.Category)); !ok {
			return fmt.Errorf("chain %s: unknown category %q", c.Key, c.Category)
		}
	default:
		return fmt.Errorf("chain %s: unknown type %q", c.Key, c.Type)
	}
	if len(c.Levels) == 0 {
		return fmt.Errorf("chain %s: no levels", c.Key)
	}
	prev := 0
	for i, l := range c.Levels {
		if l.Target <= prev {
			return fmt.Errorf("chain %s: level %d target %d not above %d", c.Key, i+1, l.Target, prev)
		}
		prev = l.Target
	}
	return nil
}

// ChainReward is one completed chain level and what it pays.
type ChainReward struct {
	ChainKey string     `json:"chainKey"`
	Level    ChainLevel `json:"level"`
	XP       int        `json:"xp"`
	Coins    int        `json:"coins"`
}

// ChainStatus is where a user stands on a chain after AdvanceChain.
type ChainStatus struct {
	CompletedLevels int  `json:"completedLevels"`
	Progress        int  `json:"progress"`
	Target          int  `json:"target"`
	Completed       bool `json:"completed"`
}

// AdvanceChain completes every level whose target value has reached, starting
// after the already completed ones. Levels pay their points as XP plus
// floor(points/10) coins. Re-running with the same value pays nothing.
func AdvanceChain(c Chain, completedLevels, value int) (ChainStatus, []ChainReward) {
	if completedLevels < 0 {
		completedLevels = 0
	}
	var rewards []ChainReward
	for completedLevels < len(c.Levels) && value >= c.Levels[completedLevels].Target {
		l := c.Levels[completedLevels]
		rewards = append(rewards, ChainReward{
			ChainKey: c.Key,
			Level:    l,
			XP:       l.Points,
			Coins:    l.Points / 10,
		})
		completedLevels++
	}
	st := ChainStatus{CompletedLevels: completedLevels}
	if completedLevels >= len(c.Levels) {
		st.Completed = true
		st.Target = c.Levels[len(c.Levels)-1].Target
		st.Progress = st.Target
		return st, rewards
	}
	st.Target = c.Levels[completedLevels].Target
	st.Progress = value
	if st.Progress > st.Target {
		st.Progress = st.Target
	}
	return st, rewards
}
