package progress

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/calisthenics-backend/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WorkoutHistory is one completed workout. Exercises holds the logged
// exercise list and AxisDeltas the per-axis XP it produced.
type WorkoutHistory struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index:idx_workout_history_user_completed,priority:1" json:"user_id"`
	User               *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	RoutineID          *uuid.UUID     `gorm:"type:uuid;column:routine_id" json:"routine_id,omitempty"`
	CompletedAt        time.Time      `gorm:"column:completed_at;not null;index:idx_workout_history_user_completed,priority:2" json:"completed_at"`
	DurationMinutes    int            `gorm:"column:duration_minutes;not null;default:0" json:"duration_minutes"`
	ExercisesCount     int            `gorm:"column:exercises_count;not null;default:0" json:"exercises_count"`
	XPEarned           int            `gorm:"column:xp_earned;not null;default:0" json:"xp_earned"`
	CoinsEarned        int            `gorm:"column:coins_earned;not null;default:0" json:"coins_earned"`
	StreakBonusPercent int            `gorm:"column:streak_bonus_percent;not null;default:0" json:"streak_bonus_percent"`
	Exercises          datatypes.JSON `gorm:"column:exercises;type:jsonb" json:"exercises"`
	AxisDeltas         datatypes.JSON `gorm:"column:axis_deltas;type:jsonb" json:"axis_deltas"`
	Notes              string         `gorm:"column:notes" json:"notes,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (WorkoutHistory) TableName() string { return "workout_history" }
