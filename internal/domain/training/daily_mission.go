package training

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/calisthenics-backend/internal/domain/user"
	"gorm.io/gorm"
)

type DailyMission struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_daily_mission_user_date,priority:1" json:"user_id"`
	User        *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	MissionDate time.Time  `gorm:"column:mission_date;type:date;not null;index:idx_daily_mission_user_date,priority:2" json:"date"`
	Type        string     `gorm:"column:type;not null" json:"type"`
	Description string     `gorm:"column:description;not null" json:"description"`
	Axis        string     `gorm:"column:axis" json:"axis,omitempty"`
	Target      int        `gorm:"column:target;not null;default:0" json:"target"`
	Progress    int        `gorm:"column:progress;not null;default:0" json:"progress"`
	RewardXP    int        `gorm:"column:reward_xp;not null;default:0" json:"reward_xp"`
	RewardCoins int        `gorm:"column:reward_coins;not null;default:0" json:"reward_coins"`
	Completed   bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DailyMission) TableName() string { return "daily_mission" }
