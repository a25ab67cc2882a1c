package training

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

type AssessmentRepo interface {
	Create(dbc dbctx.Context, row *types.Assessment) (*types.Assessment, error)
	LatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.Assessment, error)
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	repoLog := baseLog.With("repo", "AssessmentRepo")
	return &assessmentRepo{db: db, log: repoLog}
}

func (r *assessmentRepo) Create(dbc dbctx.Context, row *types.Assessment) (*types.Assessment, error) {
	if err := dbc.Conn(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *assessmentRepo) LatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.Assessment, error) {
	var row types.Assessment
	err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("assessment for %s: %w", userID, pkgerrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
