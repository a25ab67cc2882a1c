package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/calisthenics-backend/internal/http/handlers"
	httpMW "github.com/yungbote/calisthenics-backend/internal/http/middleware"
	"github.com/yungbote/calisthenics-backend/internal/observability"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	RequestTimeout time.Duration

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	AuthHandler      *httpH.AuthHandler
	UserHandler      *httpH.UserHandler
	ProgressHandler  *httpH.ProgressHandler
	SkillHandler     *httpH.SkillHandler
	TrainingHandler  *httpH.TrainingHandler
	DashboardHandler *httpH.DashboardHandler
	RealtimeHandler  *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(observability.Current()))
	r.Use(httpMW.AttachRequestContext(cfg.RequestTimeout))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	api := r.Group("/api")

	if cfg.HealthHandler != nil {
		api.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	// Auth (public)
	if cfg.AuthHandler != nil {
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
		api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if cfg.AuthHandler != nil {
		protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	}

	if cfg.UserHandler != nil {
		protected.GET("/me", cfg.UserHandler.GetMe)
		protected.PATCH("/me", cfg.UserHandler.UpdateMe)
		protected.GET("/me/level", cfg.UserHandler.GetLevel)
	}

	if cfg.ProgressHandler != nil {
		protected.GET("/hexagon", cfg.ProgressHandler.GetHexagon)
		protected.POST("/hexagon/recalculate", cfg.ProgressHandler.RecalculateHexagon)
		protected.POST("/hexagon/import", cfg.ProgressHandler.ImportLegacyHexagon)
		protected.GET("/streaks", cfg.ProgressHandler.GetStreak)
		protected.POST("/assessment", cfg.ProgressHandler.SubmitAssessment)
		protected.GET("/assessment", cfg.ProgressHandler.GetAssessment)
	}

	if cfg.SkillHandler != nil {
		protected.GET("/skills", cfg.SkillHandler.List)
		protected.POST("/skills/:key/complete", cfg.SkillHandler.Complete)
		protected.GET("/achievements", cfg.SkillHandler.ListAchievements)
		protected.POST("/achievements/unlock", cfg.SkillHandler.UnlockAchievements)
	}

	if cfg.TrainingHandler != nil {
		protected.GET("/routines/today", cfg.TrainingHandler.Today)
		protected.POST("/routines/today", cfg.TrainingHandler.Today)
		protected.GET("/routines", cfg.TrainingHandler.ListRoutines)
		protected.GET("/routines/:id", cfg.TrainingHandler.GetRoutine)

		protected.POST("/workouts/complete", cfg.TrainingHandler.CompleteWorkout)
		protected.GET("/workouts", cfg.TrainingHandler.History)

		protected.GET("/missions/daily", cfg.TrainingHandler.DailyMissions)
		protected.POST("/missions/refresh", cfg.TrainingHandler.RefreshMissions)
		protected.POST("/missions/:id/complete", cfg.TrainingHandler.CompleteMission)
	}

	if cfg.DashboardHandler != nil {
		protected.GET("/dashboard", cfg.DashboardHandler.Get)
		protected.GET("/leaderboard", cfg.DashboardHandler.Leaderboard)
	}

	if cfg.RealtimeHandler != nil {
		protected.GET("/events", cfg.RealtimeHandler.Stream)
	}

	return r
}
