package domain

import (
	"github.com/yungbote/calisthenics-backend/internal/domain/achievement"
	"github.com/yungbote/calisthenics-backend/internal/domain/auth"
	"github.com/yungbote/calisthenics-backend/internal/domain/progress"
	"github.com/yungbote/calisthenics-backend/internal/domain/training"
	"github.com/yungbote/calisthenics-backend/internal/domain/user"
)

type User = user.User
type UserToken = auth.UserToken

type HexagonProfile = progress.HexagonProfile
type StreakState = progress.StreakState
type WorkoutHistory = progress.WorkoutHistory
type UserSkill = progress.UserSkill

type UserAchievement = achievement.UserAchievement
type ChainProgress = achievement.ChainProgress

type DailyRoutine = training.DailyRoutine
type DailyMission = training.DailyMission
type Assessment = training.Assessment

var (
	HexagonXPColumn       = progress.XPColumn
	HexagonDerivedColumns = progress.DerivedColumns
)
