package training

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

type DailyRoutineRepo interface {
	Create(dbc dbctx.Context, row *types.DailyRoutine) (*types.DailyRoutine, error)
	GetByID(dbc dbctx.Context, userID, routineID uuid.UUID) (*types.DailyRoutine, error)
	// GetForDate returns the earliest routine stored for the user on day.
	GetForDate(dbc dbctx.Context, userID uuid.UUID, day time.Time) (*types.DailyRoutine, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.DailyRoutine, error)
}

type dailyRoutineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyRoutineRepo(db *gorm.DB, baseLog *logger.Logger) DailyRoutineRepo {
	repoLog := baseLog.With("repo", "DailyRoutineRepo")
	return &dailyRoutineRepo{db: db, log: repoLog}
}

func (r *dailyRoutineRepo) Create(dbc dbctx.Context, row *types.DailyRoutine) (*types.DailyRoutine, error) {
	if err := dbc.Conn(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *dailyRoutineRepo) GetByID(dbc dbctx.Context, userID, routineID uuid.UUID) (*types.DailyRoutine, error) {
	var row types.DailyRoutine
	err := dbc.Conn(r.db).
		Where("id = ? AND user_id = ?", routineID, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("routine %s: %w", routineID, pkgerrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *dailyRoutineRepo) GetForDate(dbc dbctx.Context, userID uuid.UUID, day time.Time) (*types.DailyRoutine, error) {
	var rows []*types.DailyRoutine
	if err := dbc.Conn(r.db).
		Where("user_id = ? AND routine_date = ?", userID, day.Format("2006-01-02")).
		Order("created_at ASC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("routine for %s: %w", day.Format("2006-01-02"), pkgerrors.ErrNotFound)
	}
	return rows[0], nil
}

func (r *dailyRoutineRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.DailyRoutine, error) {
	if limit <= 0 {
		limit = 7
	}
	var results []*types.DailyRoutine
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("routine_date DESC, created_at ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
