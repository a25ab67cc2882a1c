package user

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

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error)
	EmailExists(dbc dbctx.Context, userEmail string) (bool, error)
	// LockByID reads the user row with SELECT ... FOR UPDATE. It must run
	// inside a transaction.
	LockByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	IncrementTotals(dbc dbctx.Context, userID uuid.UUID, xp, coins int) error
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, fields map[string]interface{}) error
	TopByTotalXP(dbc dbctx.Context, limit int) ([]*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := dbc.Conn(ur.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.Conn(ur.db).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error) {
	var results []*types.User
	if len(userEmails) == 0 {
		return results, nil
	}
	if err := dbc.Conn(ur.db).
		Where("email IN ?", userEmails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	var count int64
	if err := dbc.Conn(ur.db).
		Model(&types.User{}).
		Where("email = ?", userEmail).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) LockByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	if dbc.Tx == nil {
		return nil, errors.New("LockByID requires a transaction")
	}
	var u types.User
	err := dbc.Conn(ur.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", userID, pkgerrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IncrementTotals adds to total_xp and virtual_coins in one statement.
func (ur *userRepo) IncrementTotals(dbc dbctx.Context, userID uuid.UUID, xp, coins int) error {
	if xp == 0 && coins == 0 {
		return nil
	}
	res := dbc.Conn(ur.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"total_xp":      gorm.Expr("total_xp + ?", xp),
			"virtual_coins": gorm.Expr("virtual_coins + ?", coins),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, pkgerrors.ErrNotFound)
	}
	return nil
}

func (ur *userRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.Conn(ur.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(fields).Error
}

func (ur *userRepo) TopByTotalXP(dbc dbctx.Context, limit int) ([]*types.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var results []*types.User
	if err := dbc.Conn(ur.db).
		Order("total_xp DESC, created_at ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
