package achievement

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/calisthenics-backend/internal/domain/user"
	"gorm.io/gorm"
)

// ChainProgress tracks how far a user has climbed one achievement chain.
type ChainProgress struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_chain_progress_user_chain,priority:1" json:"user_id"`
	User            *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	ChainKey        string     `gorm:"column:chain_key;not null;uniqueIndex:idx_chain_progress_user_chain,priority:2" json:"chain_key"`
	CompletedLevels int        `gorm:"column:completed_levels;not null;default:0" json:"completed_levels"`
	Progress        int        `gorm:"column:progress;not null;default:0" json:"progress"`
	Target          int        `gorm:"column:target;not null;default:0" json:"target"`
	Completed       bool       `gorm:"column:completed;not null;default:false" json:"completed"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChainProgress) TableName() string { return "achievement_chain_progress" }
