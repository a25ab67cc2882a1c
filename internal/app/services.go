package app

import (
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/catalog"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/realtime"
	"github.com/yungbote/calisthenics-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Hexagon     services.HexagonService
	Streak      services.StreakService
	Achievement services.AchievementService
	Skill       services.SkillService
	Mission     services.MissionService
	Routine     services.RoutineService
	Assessment  services.AssessmentService
	Leaderboard services.LeaderboardService
	Workout     services.WorkoutService
	Dashboard   services.DashboardService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	cat *catalog.Catalog,
	r Repos,
	clients Clients,
	hub *realtime.SSEHub,
) Services {
	log.Info("Wiring services...")

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus, Log: log}
	}
	notifier := services.NewProgressNotifier(emitter)

	var rdb goredis.UniversalClient
	if clients.Redis != nil {
		rdb = clients.Redis
	}
	pc := cfg.Progression

	auth := services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	user := services.NewUserService(db, log, r.User)
	hexagon := services.NewHexagonService(db, log, r.Hexagon)
	streak := services.NewStreakService(db, log, r.Streak, r.WorkoutHistory, pc)
	achievement := services.NewAchievementService(db, log, cat, r.User, r.UserAchievement, r.ChainProgress, r.UserSkill, r.WorkoutHistory, streak, notifier, pc)
	skill := services.NewSkillService(db, log, cat, r.User, r.UserSkill, r.Hexagon, achievement, notifier, pc)
	mission := services.NewMissionService(db, log, r.User, r.DailyMission, r.Hexagon, notifier, pc)
	routine := services.NewRoutineService(db, log, cat, r.User, r.Hexagon, r.DailyRoutine, notifier, pc)
	assessment := services.NewAssessmentService(db, log, r.User, r.Hexagon, r.Assessment, pc)
	leaderboard := services.NewLeaderboardService(db, log, rdb, r.User, r.WorkoutHistory, pc)
	workout := services.NewWorkoutService(db, log, cat, r.User, r.Hexagon, r.WorkoutHistory, r.DailyRoutine,
		streak, mission, achievement, leaderboard, notifier, pc)
	dashboard := services.NewDashboardService(log, user, hexagon, streak, mission, achievement, workout, r.DailyRoutine, pc)

	return Services{
		Auth:        auth,
		User:        user,
		Hexagon:     hexagon,
		Streak:      streak,
		Achievement: achievement,
		Skill:       skill,
		Mission:     mission,
		Routine:     routine,
		Assessment:  assessment,
		Leaderboard: leaderboard,
		Workout:     workout,
		Dashboard:   dashboard,
	}
}
