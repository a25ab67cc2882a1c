package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apphttp "github.com/yungbote/calisthenics-backend/internal/http"
	httpH "github.com/yungbote/calisthenics-backend/internal/http/handlers"
	httpMW "github.com/yungbote/calisthenics-backend/internal/http/middleware"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	User      *httpH.UserHandler
	Progress  *httpH.ProgressHandler
	Skill     *httpH.SkillHandler
	Training  *httpH.TrainingHandler
	Dashboard *httpH.DashboardHandler
	Realtime  *httpH.RealtimeHandler
}

func healthChecks(db *gorm.DB, clients Clients) map[string]httpH.Pinger {
	checks := map[string]httpH.Pinger{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return clients.Redis.Ping(ctx).Err() }
	}
	return checks
}

func wireHandlers(log *logger.Logger, db *gorm.DB, s Services, clients Clients, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(healthChecks(db, clients)),
		Auth:      httpH.NewAuthHandler(log, s.Auth),
		User:      httpH.NewUserHandler(log, s.User),
		Progress:  httpH.NewProgressHandler(log, s.Hexagon, s.Streak, s.Assessment),
		Skill:     httpH.NewSkillHandler(log, s.Skill, s.Achievement),
		Training:  httpH.NewTrainingHandler(log, s.Routine, s.Workout, s.Mission),
		Dashboard: httpH.NewDashboardHandler(log, s.Dashboard, s.Leaderboard),
		Realtime:  httpH.NewRealtimeHandler(log, hub),
	}
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, s.Auth)}
}

func wireRouter(log *logger.Logger, cfg Config, h Handlers, mw Middleware) *gin.Engine {
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:              log,
		ServiceName:      cfg.ServiceName,
		CORSOrigins:      cfg.CORSOrigins,
		RequestTimeout:   cfg.RequestTimeout,
		AuthMiddleware:   mw.Auth,
		HealthHandler:    h.Health,
		AuthHandler:      h.Auth,
		UserHandler:      h.User,
		ProgressHandler:  h.Progress,
		SkillHandler:     h.Skill,
		TrainingHandler:  h.Training,
		DashboardHandler: h.Dashboard,
		RealtimeHandler:  h.Realtime,
	})
}
