package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

type AchievementSummary struct {
	Unlocked int `json:"unlocked"`
	Total    int `json:"total"`
	XPEarned int `json:"xpEarned"`
}

type Dashboard struct {
	User         *MeView            `json:"user"`
	Hexagon      *HexagonView       `json:"hexagon"`
	Streak       *StreakView        `json:"streak"`
	Routine      *RoutineView       `json:"routine,omitempty"`
	Missions     []MissionView      `json:"missions"`
	Achievements AchievementSummary `json:"achievements"`
	Workouts     *WorkoutPage       `json:"recentWorkouts"`
}

type DashboardService interface {
	Get(ctx context.Context) (*Dashboard, error)
}

type dashboardService struct {
	log          *logger.Logger
	users        UserService
	hexagon      HexagonService
	streaks      StreakService
	missions     MissionService
	achievements AchievementService
	workouts     WorkoutService
	routineRepo  repos.DailyRoutineRepo
	cfg          ProgressionConfig
}

func NewDashboardService(
	log *logger.Logger,
	users UserService,
	hexagon HexagonService,
	streaks StreakService,
	missions MissionService,
	achievements AchievementService,
	workouts WorkoutService,
	routineRepo repos.DailyRoutineRepo,
	cfg ProgressionConfig,
) DashboardService {
	return &dashboardService{
		log:          log.With("service", "DashboardService"),
		users:        users,
		hexagon:      hexagon,
		streaks:      streaks,
		missions:     missions,
		achievements: achievements,
		workouts:     workouts,
		routineRepo:  routineRepo,
		cfg:          cfg,
	}
}

// Get loads every dashboard panel concurrently. Today's routine is only
// read, never generated.
func (s *dashboardService) Get(ctx context.Context) (*Dashboard, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	out := &Dashboard{Missions: []MissionView{}}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.User, err = s.users.GetMe(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Hexagon, err = s.hexagon.Get(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Streak, err = s.streaks.Get(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Missions, err = s.missions.Daily(gctx)
		return err
	})
	g.Go(func() error {
		view, err := s.achievements.List(gctx)
		if err != nil {
			return err
		}
		out.Achievements = AchievementSummary{Unlocked: view.UnlockedCount, Total: view.TotalCount, XPEarned: view.XPEarned}
		return nil
	})
	g.Go(func() (err error) {
		out.Workouts, err = s.workouts.History(gctx, 5, 0)
		return err
	})
	g.Go(func() error {
		row, err := s.routineRepo.GetForDate(dbctx.Context{Ctx: gctx}, userID, s.cfg.today())
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load routine: %w", err)
		}
		view, err := newRoutineView(row)
		if err != nil {
			return err
		}
		view.Cached = true
		out.Routine = view
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return out, nil
}
