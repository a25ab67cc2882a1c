package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/observability"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

type StreakView struct {
	progression.StreakState
	BonusPercent        int                           `json:"bonusPercent"`
	Milestones          []progression.MilestoneStatus `json:"milestones"`
	NextMilestone       *progression.StreakMilestone  `json:"nextMilestone,omitempty"`
	DaysUntilStreakLoss int                           `json:"daysUntilStreakLoss"`
	// Rebuilt is set when the state came from workout history because no
	// stored row could be read.
	Rebuilt bool `json:"rebuilt,omitempty"`
}

type StreakService interface {
	Get(ctx context.Context) (*StreakView, error)
	// Advance folds a workout at time at into the stored streak. It is the
	// only writer of streak state.
	Advance(dbc dbctx.Context, userID uuid.UUID, at time.Time) (progression.StreakUpdate, error)
	State(dbc dbctx.Context, userID uuid.UUID) (progression.StreakState, error)
}

type streakService struct {
	db          *gorm.DB
	log         *logger.Logger
	streakRepo  repos.StreakStateRepo
	historyRepo repos.WorkoutHistoryRepo
	cfg         ProgressionConfig
}

func NewStreakService(
	db *gorm.DB,
	log *logger.Logger,
	streakRepo repos.StreakStateRepo,
	historyRepo repos.WorkoutHistoryRepo,
	cfg ProgressionConfig,
) StreakService {
	return &streakService{
		db:          db,
		log:         log.With("service", "StreakService"),
		streakRepo:  streakRepo,
		historyRepo: historyRepo,
		cfg:         cfg,
	}
}

func toStreakState(row *types.StreakState) progression.StreakState {
	if row == nil {
		return progression.StreakState{}
	}
	return progression.StreakState{
		CurrentStreak:   row.CurrentStreak,
		LongestStreak:   row.LongestStreak,
		LastWorkoutDate: row.LastWorkoutDate,
	}
}

func (s *streakService) State(dbc dbctx.Context, userID uuid.UUID) (progression.StreakState, error) {
	row, err := s.streakRepo.GetByUserID(dbc, userID)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return progression.StreakState{}, nil
	}
	if err != nil {
		return progression.StreakState{}, fmt.Errorf("load streak: %w", err)
	}
	return toStreakState(row), nil
}

func (s *streakService) Advance(dbc dbctx.Context, userID uuid.UUID, at time.Time) (progression.StreakUpdate, error) {
	prev, err := s.State(dbc, userID)
	if err != nil {
		return progression.StreakUpdate{}, err
	}
	next := progression.NextStreak(prev, at, s.cfg.StreakWindow, s.cfg.loc())
	row := &types.StreakState{
		UserID:          userID,
		CurrentStreak:   next.CurrentStreak,
		LongestStreak:   next.LongestStreak,
		LastWorkoutDate: next.LastWorkoutDate,
	}
	if err := s.streakRepo.Upsert(dbc, row); err != nil {
		return progression.StreakUpdate{}, fmt.Errorf("store streak: %w", err)
	}
	return next, nil
}

func (s *streakService) Get(ctx context.Context) (*StreakView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	now := s.cfg.now()
	dbc := dbctx.Context{Ctx: ctx}

	state, err := s.State(dbc, userID)
	rebuilt := false
	if err != nil {
		s.log.Warn("streak read failed, rebuilding from history", "user_id", userID, "error", err)
		observability.Current().ObserveDegraded("read")
		state, err = s.fromHistory(dbc, userID, now)
		if err != nil {
			return nil, err
		}
		rebuilt = true
	}
	// A streak whose last workout is older than the window is already broken.
	if progression.DaysUntilStreakLoss(state, now, s.cfg.loc()) == 0 {
		state.CurrentStreak = 0
	}
	return &StreakView{
		StreakState:         state,
		BonusPercent:        progression.StreakBonusPercent(state.CurrentStreak),
		Milestones:          progression.MilestoneStatuses(state.CurrentStreak),
		NextMilestone:       progression.NextMilestone(state.CurrentStreak),
		DaysUntilStreakLoss: progression.DaysUntilStreakLoss(state, now, s.cfg.loc()),
		Rebuilt:             rebuilt,
	}, nil
}

func (s *streakService) fromHistory(dbc dbctx.Context, userID uuid.UUID, now time.Time) (progression.StreakState, error) {
	dates, err := s.historyRepo.CompletionTimes(dbc, userID, time.Time{})
	if err != nil {
		return progression.StreakState{}, fmt.Errorf("load workout dates: %w", err)
	}
	current, longest := progression.StreakFromHistory(dates, now, s.cfg.loc())
	state := progression.StreakState{CurrentStreak: current, LongestStreak: longest}
	for _, d := range dates {
		if state.LastWorkoutDate == nil || d.After(*state.LastWorkoutDate) {
			d := d
			state.LastWorkoutDate = &d
		}
	}
	return state, nil
}
