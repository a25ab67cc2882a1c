package services

import (
	"time"

	"github.com/yungbote/calisthenics-backend/internal/progression"
)

// ProgressionConfig carries the tunables shared by the reward, streak and
// routine services.
type ProgressionConfig struct {
	Rewards      progression.RewardTable
	StreakWindow progression.StreakWindow
	// Location decides calendar days for streaks, missions and routines.
	Location *time.Location
	// RoutineVariety seeds the generator per user and day instead of
	// always returning the catalog-order pick.
	RoutineVariety bool
	// Now is overridable in tests.
	Now func() time.Time
}

func (c ProgressionConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c ProgressionConfig) loc() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.UTC
}

func (c ProgressionConfig) rewards() progression.RewardTable {
	if c.Rewards.Name == "" {
		return progression.SessionRewardTable()
	}
	return c.Rewards
}

func (c ProgressionConfig) today() time.Time {
	return progression.DayStart(c.now(), c.loc())
}
