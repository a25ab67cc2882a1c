package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/calisthenics-backend/internal/clients/redis"
	"github.com/yungbote/calisthenics-backend/internal/data/db"
	"github.com/yungbote/calisthenics-backend/internal/pkg/envutil"
	"github.com/yungbote/calisthenics-backend/internal/progression"
	"github.com/yungbote/calisthenics-backend/internal/services"
)

type Config struct {
	Env         string
	ServiceName string
	Version     string
	Port        string

	Postgres db.PostgresConfig
	Redis    redis.Config
	// SSEChannel is the redis pub/sub channel fanning events across
	// instances.
	SSEChannel string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	Progression services.ProgressionConfig

	CORSOrigins     []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	TokenSweepEvery time.Duration

	MetricsAddr string
}

// LoadConfig reads the process environment. Unknown reward presets, streak
// windows and time zones are errors rather than silent defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		Env:         envutil.String("APP_ENV", "development"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "calisthenics-api"),
		Version:     envutil.String("APP_VERSION", "dev"),
		Port:        envutil.String("PORT", "8080"),

		Postgres: db.PostgresConfig{
			Host:            envutil.String("POSTGRES_HOST", "localhost"),
			Port:            envutil.String("POSTGRES_PORT", "5432"),
			User:            envutil.String("POSTGRES_USER", "postgres"),
			Password:        envutil.String("POSTGRES_PASSWORD", "postgres"),
			Name:            envutil.String("POSTGRES_NAME", "calisthenics"),
			SSLMode:         envutil.String("POSTGRES_SSLMODE", "disable"),
			DSN:             envutil.String("POSTGRES_DSN", ""),
			MaxOpenConns:    envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envutil.Duration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		SSEChannel: envutil.String("REDIS_CHANNEL", "cali:sse"),

		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", ""),
		AccessTokenTTL:  envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envutil.Duration("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		RequestTimeout:  envutil.Duration("REQUEST_TIMEOUT", 15*time.Second),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		TokenSweepEvery: envutil.Duration("TOKEN_SWEEP_INTERVAL", time.Hour),

		MetricsAddr: envutil.String("METRICS_ADDR", ":9090"),
	}

	if origins := envutil.String("CORS_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if cfg.JWTSecretKey == "" {
		if cfg.Env == "production" {
			return Config{}, fmt.Errorf("JWT_SECRET_KEY is required in production")
		}
		cfg.JWTSecretKey = "dev-secret-change-me"
	}

	rewards, err := progression.RewardTableByName(envutil.String("REWARD_PRESET", progression.PresetSession))
	if err != nil {
		return Config{}, fmt.Errorf("REWARD_PRESET: %w", err)
	}
	window, err := progression.ParseStreakWindow(envutil.String("STREAK_WINDOW", string(progression.WindowCalendarDay)))
	if err != nil {
		return Config{}, fmt.Errorf("STREAK_WINDOW: %w", err)
	}
	loc, err := time.LoadLocation(envutil.String("APP_TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	cfg.Progression = services.ProgressionConfig{
		Rewards:        rewards,
		StreakWindow:   window,
		Location:       loc,
		RoutineVariety: envutil.Bool("ROUTINE_VARIETY", false),
	}
	return cfg, nil
}
