package progress

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/calisthenics-backend/internal/domain/user"
	"gorm.io/gorm"
)

// UserSkill records a completed skill. SkillKey is the catalog exercise id.
type UserSkill struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_skill_user_key,priority:1" json:"user_id"`
	User        *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	SkillKey    string     `gorm:"column:skill_key;not null;uniqueIndex:idx_user_skill_user_key,priority:2" json:"skill_key"`
	Branch      string     `gorm:"column:branch;not null;index" json:"branch"`
	CompletedAt time.Time  `gorm:"column:completed_at;not null;index" json:"completed_at"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserSkill) TableName() string { return "user_skill" }
