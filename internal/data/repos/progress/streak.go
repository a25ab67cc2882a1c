package progress

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

type StreakStateRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.StreakState, error)
	// Upsert writes the state keyed on user_id.
	Upsert(dbc dbctx.Context, state *types.StreakState) error
}

type streakStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStreakStateRepo(db *gorm.DB, baseLog *logger.Logger) StreakStateRepo {
	repoLog := baseLog.With("repo", "StreakStateRepo")
	return &streakStateRepo{db: db, log: repoLog}
}

func (r *streakStateRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.StreakState, error) {
	var row types.StreakState
	err := dbc.Conn(r.db).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("streak for %s: %w", userID, pkgerrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *streakStateRepo) Upsert(dbc dbctx.Context, state *types.StreakState) error {
	if state == nil {
		return nil
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"current_streak", "longest_streak", "last_workout_date", "updated_at"}),
		}).
		Create(state).Error
}
