package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/catalog"
	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

type MeView struct {
	User      *types.User           `json:"user"`
	Level     progression.LevelInfo `json:"level"`
	Goals     []string              `json:"goals"`
	Equipment []string              `json:"equipment"`
}

// ProfileUpdate carries optional changes; nil fields are left alone.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Goals     []string
	Equipment []string
}

type UserService interface {
	GetMe(ctx context.Context) (*MeView, error)
	UpdateProfile(ctx context.Context, in ProfileUpdate) (*MeView, error)
	GetLevel(ctx context.Context) (*progression.LevelInfo, error)
	Load(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func newMeView(u *types.User) *MeView {
	goals := jsonStrings(u.Goals)
	if goals == nil {
		goals = []string{}
	}
	equipment := jsonStrings(u.Equipment)
	if equipment == nil {
		equipment = []string{}
	}
	return &MeView{
		User:      u,
		Level:     progression.CalculateLevel(u.TotalXP),
		Goals:     goals,
		Equipment: equipment,
	}
}

func (s *userService) Load(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	users, err := s.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, pkgerrors.ErrNotFound)
	}
	return users[0], nil
}

func (s *userService) GetMe(ctx context.Context) (*MeView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.Load(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}
	return newMeView(u), nil
}

func (s *userService) GetLevel(ctx context.Context) (*progression.LevelInfo, error) {
	me, err := s.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	return &me.Level, nil
}

func (s *userService) UpdateProfile(ctx context.Context, in ProfileUpdate) (*MeView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if in.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Goals != nil {
		fields["goals"] = toJSON(normalizeGoals(in.Goals))
	}
	if in.Equipment != nil {
		fields["equipment"] = toJSON(catalog.NormalizeEquipment(in.Equipment))
	}
	dbc := dbctx.Context{Ctx: ctx}
	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(dbc, userID, fields); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	u, err := s.Load(dbc, userID)
	if err != nil {
		return nil, err
	}
	return newMeView(u), nil
}

func normalizeGoals(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, g := range in {
		g = strings.TrimSpace(g)
		if g == "" || seen[strings.ToLower(g)] {
			continue
		}
		seen[strings.ToLower(g)] = true
		out = append(out, g)
	}
	return out
}
