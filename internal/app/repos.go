package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

type Repos struct {
	User            repos.UserRepo
	UserToken       repos.UserTokenRepo
	Hexagon         repos.HexagonProfileRepo
	Streak          repos.StreakStateRepo
	WorkoutHistory  repos.WorkoutHistoryRepo
	UserSkill       repos.UserSkillRepo
	UserAchievement repos.UserAchievementRepo
	ChainProgress   repos.ChainProgressRepo
	DailyRoutine    repos.DailyRoutineRepo
	DailyMission    repos.DailyMissionRepo
	Assessment      repos.AssessmentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		UserToken:       repos.NewUserTokenRepo(db, log),
		Hexagon:         repos.NewHexagonProfileRepo(db, log),
		Streak:          repos.NewStreakStateRepo(db, log),
		WorkoutHistory:  repos.NewWorkoutHistoryRepo(db, log),
		UserSkill:       repos.NewUserSkillRepo(db, log),
		UserAchievement: repos.NewUserAchievementRepo(db, log),
		ChainProgress:   repos.NewChainProgressRepo(db, log),
		DailyRoutine:    repos.NewDailyRoutineRepo(db, log),
		DailyMission:    repos.NewDailyMissionRepo(db, log),
		Assessment:      repos.NewAssessmentRepo(db, log),
	}
}
