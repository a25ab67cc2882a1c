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

type DailyMissionRepo interface {
	Create(dbc dbctx.Context, rows []*types.DailyMission) ([]*types.DailyMission, error)
	ListForDate(dbc dbctx.Context, userID uuid.UUID, day time.Time) ([]*types.DailyMission, error)
	GetByID(dbc dbctx.Context, userID, missionID uuid.UUID) (*types.DailyMission, error)
	// AddProgress increments progress, capped at target, on open missions.
	AddProgress(dbc dbctx.Context, missionID uuid.UUID, inc int) error
	// MarkCompleted flips an open mission to completed and reports whether
	// this call did it.
	MarkCompleted(dbc dbctx.Context, missionID uuid.UUID, at time.Time) (bool, error)
	// SoftDeleteOpenForDate drops the day's unfinished missions.
	SoftDeleteOpenForDate(dbc dbctx.Context, userID uuid.UUID, day time.Time) error
}

type dailyMissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyMissionRepo(db *gorm.DB, baseLog *logger.Logger) DailyMissionRepo {
	repoLog := baseLog.With("repo", "DailyMissionRepo")
	return &dailyMissionRepo{db: db, log: repoLog}
}

func (r *dailyMissionRepo) Create(dbc dbctx.Context, rows []*types.DailyMission) ([]*types.DailyMission, error) {
	if len(rows) == 0 {
		return []*types.DailyMission{}, nil
	}
	if err := dbc.Conn(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *dailyMissionRepo) ListForDate(dbc dbctx.Context, userID uuid.UUID, day time.Time) ([]*types.DailyMission, error) {
	var results []*types.DailyMission
	if err := dbc.Conn(r.db).
		Where("user_id = ? AND mission_date = ?", userID, day.Format("2006-01-02")).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dailyMissionRepo) GetByID(dbc dbctx.Context, userID, missionID uuid.UUID) (*types.DailyMission, error) {
	var row types.DailyMission
	err := dbc.Conn(r.db).
		Where("id = ? AND user_id = ?", missionID, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("mission %s: %w", missionID, pkgerrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *dailyMissionRepo) AddProgress(dbc dbctx.Context, missionID uuid.UUID, inc int) error {
	if inc <= 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.DailyMission{}).
		Where("id = ? AND completed = ?", missionID, false).
		Update("progress", gorm.Expr("LEAST(target, progress + ?)", inc)).Error
}

func (r *dailyMissionRepo) MarkCompleted(dbc dbctx.Context, missionID uuid.UUID, at time.Time) (bool, error) {
	res := dbc.Conn(r.db).
		Model(&types.DailyMission{}).
		Where("id = ? AND completed = ?", missionID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
			"progress":     gorm.Expr("GREATEST(progress, target)"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *dailyMissionRepo) SoftDeleteOpenForDate(dbc dbctx.Context, userID uuid.UUID, day time.Time) error {
	return dbc.Conn(r.db).
		Where("user_id = ? AND mission_date = ? AND completed = ?", userID, day.Format("2006-01-02"), false).
		Delete(&types.DailyMission{}).Error
}
