package db

import (
	"fmt"

	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"gorm.io/gorm"
)

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		// =========================
		// Core identity + auth
		// =========================
		&types.User{},
		&types.UserToken{},

		// =========================
		// Progression
		// =========================
		&types.HexagonProfile{},
		&types.StreakState{},
		&types.WorkoutHistory{},
		&types.UserSkill{},

		// =========================
		// Achievements
		// =========================
		&types.UserAchievement{},
		&types.ChainProgress{},

		// =========================
		// Training
		// =========================
		&types.DailyRoutine{},
		&types.DailyMission{},
		&types.Assessment{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return EnsureProgressIndexes(db)
}

func EnsureProgressIndexes(db *gorm.DB) error {
	// uuid-ossp is already enabled in NewPostgresService, but safe to re-run
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	// Weekly leaderboard fallback scans by completion time across users.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_workout_history_completed_at
		ON workout_history (completed_at DESC)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_workout_history_completed_at: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_user_total_xp
		ON "user" (total_xp DESC)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_user_total_xp: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_user_skill_user_completed
		ON user_skill (user_id, completed_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_user_skill_user_completed: %w", err)
	}
	return nil
}
