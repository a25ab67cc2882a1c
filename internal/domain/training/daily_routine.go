package training

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/calisthenics-backend/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DailyRoutine is immutable once stored. (user_id, routine_date) is indexed
// but not unique; readers take the earliest row of the day.
type DailyRoutine struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_daily_routine_user_date,priority:1" json:"user_id"`
	User             *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	RoutineDate      time.Time      `gorm:"column:routine_date;type:date;not null;index:idx_daily_routine_user_date,priority:2" json:"date"`
	Phases           datatypes.JSON `gorm:"column:phases;type:jsonb;not null" json:"phases"`
	TotalDuration    int            `gorm:"column:total_duration;not null" json:"total_duration"`
	EstimatedSeconds int            `gorm:"column:estimated_seconds;not null;default:0" json:"estimated_seconds"`
	EstimatedXP      int            `gorm:"column:estimated_xp;not null;default:0" json:"estimated_xp"`
	EstimatedCoins   int            `gorm:"column:estimated_coins;not null;default:0" json:"estimated_coins"`
	Difficulty       string         `gorm:"column:difficulty;not null" json:"difficulty"`
	FocusAreas       datatypes.JSON `gorm:"column:focus_areas;type:jsonb" json:"focus_areas"`
	TargetSkill      string         `gorm:"column:target_skill" json:"target_skill,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DailyRoutine) TableName() string { return "daily_routine" }
