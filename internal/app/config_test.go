package app

import (
	"testing"
	"time"

	"github.com/yungbote/calisthenics-backend/internal/progression"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"REWARD_PRESET", "STREAK_WINDOW", "APP_TIMEZONE", "APP_ENV", "JWT_SECRET_KEY", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Progression.Rewards.Name != progression.PresetSession {
		t.Fatalf("reward preset: %q", cfg.Progression.Rewards.Name)
	}
	if cfg.Progression.StreakWindow != progression.WindowCalendarDay || cfg.Progression.Location != time.UTC {
		t.Fatalf("progression: %+v", cfg.Progression)
	}
	if cfg.JWTSecretKey == "" || cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("auth: %q %s", cfg.JWTSecretKey, cfg.AccessTokenTTL)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be off without REDIS_ADDR")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("REWARD_PRESET", "axis")
	t.Setenv("STREAK_WINDOW", "rolling_36h")
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("ROUTINE_VARIETY", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Progression.Rewards.Name != progression.PresetAxis || cfg.Progression.StreakWindow != progression.WindowRolling36h {
		t.Fatalf("progression: %+v", cfg.Progression)
	}
	if cfg.Progression.Location.String() != "Europe/Berlin" || !cfg.Progression.RoutineVariety {
		t.Fatalf("location/variety: %+v", cfg.Progression)
	}
	if cfg.AccessTokenTTL != 15*time.Minute || len(cfg.CORSOrigins) != 2 {
		t.Fatalf("ttl/origins: %s %v", cfg.AccessTokenTTL, cfg.CORSOrigins)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"REWARD_PRESET": "double",
		"STREAK_WINDOW": "weekly",
		"APP_TIMEZONE":  "Mars/Olympus",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("%s=%s should fail", key, val)
			}
		})
	}
	t.Run("production secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET_KEY", "")
		if _, err := LoadConfig(); err == nil {
			t.Fatalf("production without secret should fail")
		}
	})
}
