package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

// XPTotal is one row of an XP aggregate.
type XPTotal struct {
	UserID   uuid.UUID `json:"userId"`
	XP       int       `json:"xp"`
	Workouts int       `json:"workouts"`
}

type WorkoutHistoryRepo interface {
	Create(dbc dbctx.Context, rows []*types.WorkoutHistory) ([]*types.WorkoutHistory, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.WorkoutHistory, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	// CompletionTimes returns completed_at for the user's workouts since
	// the given time, newest first.
	CompletionTimes(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]time.Time, error)
	// TopXPSince ranks users by XP earned in [since, now).
	TopXPSince(dbc dbctx.Context, since time.Time, limit int) ([]XPTotal, error)
	XPSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (XPTotal, error)
}

type workoutHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkoutHistoryRepo(db *gorm.DB, baseLog *logger.Logger) WorkoutHistoryRepo {
	repoLog := baseLog.With("repo", "WorkoutHistoryRepo")
	return &workoutHistoryRepo{db: db, log: repoLog}
}

func (r *workoutHistoryRepo) Create(dbc dbctx.Context, rows []*types.WorkoutHistory) ([]*types.WorkoutHistory, error) {
	if len(rows) == 0 {
		return []*types.WorkoutHistory{}, nil
	}
	if err := dbc.Conn(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *workoutHistoryRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.WorkoutHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var results []*types.WorkoutHistory
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *workoutHistoryRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).
		Model(&types.WorkoutHistory{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *workoutHistoryRepo) CompletionTimes(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	var out []time.Time
	if err := dbc.Conn(r.db).
		Model(&types.WorkoutHistory{}).
		Where("user_id = ? AND completed_at >= ?", userID, since).
		Order("completed_at DESC").
		Pluck("completed_at", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *workoutHistoryRepo) TopXPSince(dbc dbctx.Context, since time.Time, limit int) ([]XPTotal, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []XPTotal
	if err := dbc.Conn(r.db).
		Model(&types.WorkoutHistory{}).
		Select("user_id, COALESCE(SUM(xp_earned), 0) AS xp, COUNT(*) AS workouts").
		Where("completed_at >= ?", since).
		Group("user_id").
		Order("xp DESC, user_id ASC").
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *workoutHistoryRepo) XPSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (XPTotal, error) {
	out := XPTotal{UserID: userID}
	err := dbc.Conn(r.db).
		Model(&types.WorkoutHistory{}).
		Select("COALESCE(SUM(xp_earned), 0) AS xp, COUNT(*) AS workouts").
		Where("user_id = ? AND completed_at >= ?", userID, since).
		Scan(&out).Error
	out.UserID = userID
	return out, err
}
