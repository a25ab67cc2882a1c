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
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

type HexagonProfileRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.HexagonProfile, error)
	// GetOrCreate returns the user's profile, inserting a zeroed one first
	// when none exists.
	GetOrCreate(dbc dbctx.Context, userID uuid.UUID) (*types.HexagonProfile, error)
	// IncrementXP applies per-axis deltas as col = col + ? and bumps
	// version, then rewrites the derived level/visual columns.
	IncrementXP(dbc dbctx.Context, userID uuid.UUID, deltas map[progression.Axis]float64) (*types.HexagonProfile, error)
	// Replace overwrites every axis with p. expectedVersion > 0 makes the
	// write conditional and returns ErrConflict on a mismatch.
	Replace(dbc dbctx.Context, userID uuid.UUID, p progression.Profile, expectedVersion int64) (*types.HexagonProfile, error)
}

type hexagonProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHexagonProfileRepo(db *gorm.DB, baseLog *logger.Logger) HexagonProfileRepo {
	repoLog := baseLog.With("repo", "HexagonProfileRepo")
	return &hexagonProfileRepo{db: db, log: repoLog}
}

func (r *hexagonProfileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.HexagonProfile, error) {
	var row types.HexagonProfile
	err := dbc.Conn(r.db).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("hexagon profile for %s: %w", userID, pkgerrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *hexagonProfileRepo) GetOrCreate(dbc dbctx.Context, userID uuid.UUID) (*types.HexagonProfile, error) {
	row := &types.HexagonProfile{UserID: userID}
	row.SetProfile(progression.NewProfile(nil))
	if err := dbc.Conn(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(dbc, userID)
}

func (r *hexagonProfileRepo) IncrementXP(dbc dbctx.Context, userID uuid.UUID, deltas map[progression.Axis]float64) (*types.HexagonProfile, error) {
	updates := map[string]interface{}{
		"version":    gorm.Expr("version + 1"),
		"updated_at": gorm.Expr("now()"),
	}
	for _, a := range progression.Axes {
		d := deltas[a]
		if d == 0 {
			continue
		}
		col := types.HexagonXPColumn(a)
		updates[col] = gorm.Expr(col+" + ?", d)
	}
	res := dbc.Conn(r.db).
		Model(&types.HexagonProfile{}).
		Where("user_id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("hexagon profile for %s: %w", userID, pkgerrors.ErrNotFound)
	}

	row, err := r.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	derived := types.HexagonDerivedColumns(row.Profile())
	if err := dbc.Conn(r.db).
		Model(&types.HexagonProfile{}).
		Where("id = ?", row.ID).
		Updates(derived).Error; err != nil {
		return nil, err
	}
	row.SetProfile(row.Profile())
	return row, nil
}

func (r *hexagonProfileRepo) Replace(dbc dbctx.Context, userID uuid.UUID, p progression.Profile, expectedVersion int64) (*types.HexagonProfile, error) {
	updates := types.HexagonDerivedColumns(p)
	for _, a := range progression.Axes {
		updates[types.HexagonXPColumn(a)] = p.Axis(a).XP
	}
	updates["version"] = gorm.Expr("version + 1")
	updates["updated_at"] = gorm.Expr("now()")

	q := dbc.Conn(r.db).Model(&types.HexagonProfile{}).Where("user_id = ?", userID)
	if expectedVersion > 0 {
		q = q.Where("version = ?", expectedVersion)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if expectedVersion > 0 {
			return nil, fmt.Errorf("hexagon profile for %s changed concurrently: %w", userID, pkgerrors.ErrConflict)
		}
		return nil, fmt.Errorf("hexagon profile for %s: %w", userID, pkgerrors.ErrNotFound)
	}
	return r.GetByUserID(dbc, userID)
}
