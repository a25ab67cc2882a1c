package achievement

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/calisthenics-backend/internal/domain/user"
)

// UserAchievement is append-only. The (user_id, achievement_key) unique
// index is what makes concurrent unlocks idempotent.
type UserAchievement struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement_user_key,priority:1" json:"user_id"`
	User           *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	AchievementKey string     `gorm:"column:achievement_key;not null;uniqueIndex:idx_user_achievement_user_key,priority:2" json:"achievement_key"`
	RewardXP       int        `gorm:"column:reward_xp;not null;default:0" json:"reward_xp"`
	RewardCoins    int        `gorm:"column:reward_coins;not null;default:0" json:"reward_coins"`
	UnlockedAt     time.Time  `gorm:"column:unlocked_at;not null;default:now()" json:"unlocked_at"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (UserAchievement) TableName() string { return "user_achievement" }
