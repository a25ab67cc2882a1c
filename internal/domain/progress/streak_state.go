package progress

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/calisthenics-backend/internal/domain/user"
	"gorm.io/gorm"
)

type StreakState struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User            *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	CurrentStreak   int        `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	LongestStreak   int        `gorm:"column:longest_streak;not null;default:0" json:"longest_streak"`
	LastWorkoutDate *time.Time `gorm:"column:last_workout_date" json:"last_workout_date,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StreakState) TableName() string { return "streak_state" }
