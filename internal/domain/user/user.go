package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string    `gorm:"not null;column:last_name" json:"last_name"`
	AvatarURL string    `gorm:"column:avatar_url" json:"avatar_url"`

	// Account-wide progression. total_xp and virtual_coins are only ever
	// changed with atomic increments.
	TotalXP      int    `gorm:"column:total_xp;not null;default:0" json:"total_xp"`
	VirtualCoins int    `gorm:"column:virtual_coins;not null;default:0" json:"virtual_coins"`
	Level        int    `gorm:"column:level;not null;default:1" json:"level"`
	FitnessLevel string `gorm:"column:fitness_level;not null;default:'BEGINNER'" json:"fitness_level"`

	// JSON string arrays.
	Goals     datatypes.JSON `gorm:"column:goals;type:jsonb" json:"goals"`
	Equipment datatypes.JSON `gorm:"column:equipment;type:jsonb" json:"equipment"`

	HasCompletedAssessment bool       `gorm:"column:has_completed_assessment;not null;default:false" json:"has_completed_assessment"`
	AssessmentDate         *time.Time `gorm:"column:assessment_date" json:"assessment_date,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
