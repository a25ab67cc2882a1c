package achievement

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

type UserAchievementRepo interface {
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error)
	// Insert adds the join row unless it already exists and reports
	// whether this call created it.
	Insert(dbc dbctx.Context, row *types.UserAchievement) (bool, error)
}

type userAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	repoLog := baseLog.With("repo", "UserAchievementRepo")
	return &userAchievementRepo{db: db, log: repoLog}
}

func (r *userAchievementRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error) {
	var results []*types.UserAchievement
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("unlocked_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userAchievementRepo) Insert(dbc dbctx.Context, row *types.UserAchievement) (bool, error) {
	if row == nil {
		return false, nil
	}
	res := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_key"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
