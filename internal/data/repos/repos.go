package repos

import (
	"github.com/yungbote/calisthenics-backend/internal/data/repos/achievement"
	"github.com/yungbote/calisthenics-backend/internal/data/repos/auth"
	"github.com/yungbote/calisthenics-backend/internal/data/repos/progress"
	"github.com/yungbote/calisthenics-backend/internal/data/repos/training"
	"github.com/yungbote/calisthenics-backend/internal/data/repos/user"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type HexagonProfileRepo = progress.HexagonProfileRepo
type StreakStateRepo = progress.StreakStateRepo
type WorkoutHistoryRepo = progress.WorkoutHistoryRepo
type UserSkillRepo = progress.UserSkillRepo
type XPTotal = progress.XPTotal

type UserAchievementRepo = achievement.UserAchievementRepo
type ChainProgressRepo = achievement.ChainProgressRepo

type DailyRoutineRepo = training.DailyRoutineRepo
type DailyMissionRepo = training.DailyMissionRepo
type AssessmentRepo = training.AssessmentRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewHexagonProfileRepo(db *gorm.DB, baseLog *logger.Logger) HexagonProfileRepo {
	return progress.NewHexagonProfileRepo(db, baseLog)
}
func NewStreakStateRepo(db *gorm.DB, baseLog *logger.Logger) StreakStateRepo {
	return progress.NewStreakStateRepo(db, baseLog)
}
func NewWorkoutHistoryRepo(db *gorm.DB, baseLog *logger.Logger) WorkoutHistoryRepo {
	return progress.NewWorkoutHistoryRepo(db, baseLog)
}
func NewUserSkillRepo(db *gorm.DB, baseLog *logger.Logger) UserSkillRepo {
	return progress.NewUserSkillRepo(db, baseLog)
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return achievement.NewUserAchievementRepo(db, baseLog)
}
func NewChainProgressRepo(db *gorm.DB, baseLog *logger.Logger) ChainProgressRepo {
	return achievement.NewChainProgressRepo(db, baseLog)
}

func NewDailyRoutineRepo(db *gorm.DB, baseLog *logger.Logger) DailyRoutineRepo {
	return training.NewDailyRoutineRepo(db, baseLog)
}
func NewDailyMissionRepo(db *gorm.DB, baseLog *logger.Logger) DailyMissionRepo {
	return training.NewDailyMissionRepo(db, baseLog)
}
func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return training.NewAssessmentRepo(db, baseLog)
}
