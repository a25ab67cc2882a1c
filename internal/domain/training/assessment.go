package training

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/calisthenics-backend/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Assessment keeps every onboarding submission; the newest one wins.
type Assessment struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Scores       datatypes.JSON `gorm:"column:scores;type:jsonb;not null" json:"scores"`
	FitnessLevel string         `gorm:"column:fitness_level;not null" json:"fitness_level"`
	Goals        datatypes.JSON `gorm:"column:goals;type:jsonb" json:"goals"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Assessment) TableName() string { return "assessment" }
