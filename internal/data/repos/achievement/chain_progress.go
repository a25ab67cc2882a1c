package achievement

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

type ChainProgressRepo interface {
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ChainProgress, error)
	Upsert(dbc dbctx.Context, rows []*types.ChainProgress) error
}

type chainProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChainProgressRepo(db *gorm.DB, baseLog *logger.Logger) ChainProgressRepo {
	repoLog := baseLog.With("repo", "ChainProgressRepo")
	return &chainProgressRepo{db: db, log: repoLog}
}

func (r *chainProgressRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ChainProgress, error) {
	var results []*types.ChainProgress
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *chainProgressRepo) Upsert(dbc dbctx.Context, rows []*types.ChainProgress) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "chain_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed_levels", "progress", "target", "completed", "updated_at"}),
		}).
		Create(&rows).Error
}
