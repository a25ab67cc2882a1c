package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

type UserSkillRepo interface {
	// Insert records a completed skill and reports whether a row was added.
	Insert(dbc dbctx.Context, row *types.UserSkill) (bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserSkill, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	CountByBranch(dbc dbctx.Context, userID uuid.UUID) (map[string]int, error)
	CountSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error)
}

type userSkillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserSkillRepo(db *gorm.DB, baseLog *logger.Logger) UserSkillRepo {
	repoLog := baseLog.With("repo", "UserSkillRepo")
	return &userSkillRepo{db: db, log: repoLog}
}

func (r *userSkillRepo) Insert(dbc dbctx.Context, row *types.UserSkill) (bool, error) {
	if row == nil {
		return false, nil
	}
	res := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "skill_key"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userSkillRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserSkill, error) {
	var results []*types.UserSkill
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("completed_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userSkillRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).
		Model(&types.UserSkill{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *userSkillRepo) CountByBranch(dbc dbctx.Context, userID uuid.UUID) (map[string]int, error) {
	var rows []struct {
		Branch string
		N      int
	}
	if err := dbc.Conn(r.db).
		Model(&types.UserSkill{}).
		Select("branch, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("branch").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Branch] = row.N
	}
	return out, nil
}

func (r *userSkillRepo) CountSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).
		Model(&types.UserSkill{}).
		Where("user_id = ? AND completed_at >= ?", userID, since).
		Count(&n).Error
	return n, err
}
