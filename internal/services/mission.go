package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/observability"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

type MissionView struct {
	ID          uuid.UUID               `json:"id"`
	Date        string                  `json:"date"`
	Type        progression.MissionType `json:"type"`
	Description string                  `json:"description"`
	Axis        progression.Axis        `json:"axis,omitempty"`
	Target      int                     `json:"target"`
	Progress    int                     `json:"progress"`
	RewardXP    int                     `json:"rewardXp"`
	RewardCoins int                     `json:"rewardCoins"`
	Completed   bool                    `json:"completed"`
	CompletedAt *time.Time              `json:"completedAt,omitempty"`
	// Claimable is set once progress reaches the target, or always for
	// missions checked off by hand.
	Claimable bool `json:"claimable"`
}

func newMissionView(m *types.DailyMission) MissionView {
	return MissionView{
		ID:          m.ID,
		Date:        m.MissionDate.Format("2006-01-02"),
		Type:        progression.MissionType(m.Type),
		Description: m.Description,
		Axis:        progression.Axis(m.Axis),
		Target:      m.Target,
		Progress:    m.Progress,
		RewardXP:    m.RewardXP,
		RewardCoins: m.RewardCoins,
		Completed:   m.Completed,
		CompletedAt: m.CompletedAt,
		Claimable:   !m.Completed && (m.Target == 0 || m.Progress >= m.Target),
	}
}

func missionViews(rows []*types.DailyMission) []MissionView {
	out := make([]MissionView, 0, len(rows))
	for _, m := range rows {
		out = append(out, newMissionView(m))
	}
	return out
}

func missionTemplate(m *types.DailyMission) progression.MissionTemplate {
	return progression.MissionTemplate{
		Type:        progression.MissionType(m.Type),
		Description: m.Description,
		Target:      m.Target,
		RewardXP:    m.RewardXP,
		RewardCoins: m.RewardCoins,
		Axis:        progression.Axis(m.Axis),
	}
}

type MissionClaim struct {
	Mission          MissionView          `json:"mission"`
	AlreadyCompleted bool                 `json:"alreadyCompleted"`
	RewardXP         int                  `json:"rewardXp"`
	RewardCoins      int                  `json:"rewardCoins"`
	LevelUp          *progression.LevelUp `json:"levelUp,omitempty"`
}

type MissionService interface {
	// Daily returns today's missions, creating them on the first call of the
	// day.
	Daily(ctx context.Context) ([]MissionView, error)
	Complete(ctx context.Context, missionID uuid.UUID) (*MissionClaim, error)
	// Refresh replaces today's unfinished missions with a fresh set built
	// from the current hexagon.
	Refresh(ctx context.Context) ([]MissionView, error)
	// Advance adds logged exercises to today's open missions inside the
	// caller's transaction.
	Advance(dbc dbctx.Context, userID uuid.UUID, logged []progression.LoggedExercise, at time.Time) ([]MissionView, error)
}

type missionService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	missionRepo repos.DailyMissionRepo
	hexagonRepo repos.HexagonProfileRepo
	notifier    ProgressNotifier
	cfg         ProgressionConfig
	group       singleflight.Group
}

func NewMissionService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	missionRepo repos.DailyMissionRepo,
	hexagonRepo repos.HexagonProfileRepo,
	notifier ProgressNotifier,
	cfg ProgressionConfig,
) MissionService {
	return &missionService{
		db:          db,
		log:         log.With("service", "MissionService"),
		userRepo:    userRepo,
		missionRepo: missionRepo,
		hexagonRepo: hexagonRepo,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// templates picks the day's missions from the user's hexagon: the level is
// the overall hexagon level and the focus mission targets the weakest axis.
func (s *missionService) templates(dbc dbctx.Context, userID uuid.UUID) ([]progression.MissionTemplate, progression.Level, error) {
	hex, err := s.hexagonRepo.GetOrCreate(dbc, userID)
	if err != nil {
		return nil, "", fmt.Errorf("load hexagon: %w", err)
	}
	p := hex.Profile()
	level := progression.OverallLevel(p)
	weakest := progression.WeakestAxes(p)
	var focus progression.Axis
	if len(weakest) > 0 {
		focus = weakest[0]
	}
	return progression.DailyMissions(level, focus), level, nil
}

func newMissionRows(userID uuid.UUID, day time.Time, tpls []progression.MissionTemplate) []*types.DailyMission {
	rows := make([]*types.DailyMission, 0, len(tpls))
	for _, t := range tpls {
		rows = append(rows, &types.DailyMission{
			UserID:      userID,
			MissionDate: day,
			Type:        string(t.Type),
			Description: t.Description,
			Axis:        string(t.Axis),
			Target:      t.Target,
			RewardXP:    t.RewardXP,
			RewardCoins: t.RewardCoins,
		})
	}
	return rows
}

// ensure returns the day's missions, creating them when none exist. The
// caller must hold the user row lock.
func (s *missionService) ensure(dbc dbctx.Context, userID uuid.UUID, day time.Time) ([]*types.DailyMission, error) {
	rows, err := s.missionRepo.ListForDate(dbc, userID, day)
	if err != nil {
		return nil, fmt.Errorf("load missions: %w", err)
	}
	if len(rows) > 0 {
		return rows, nil
	}
	tpls, _, err := s.templates(dbc, userID)
	if err != nil {
		return nil, err
	}
	rows, err = s.missionRepo.Create(dbc, newMissionRows(userID, day, tpls))
	if err != nil {
		return nil, fmt.Errorf("create missions: %w", err)
	}
	return rows, nil
}

func (s *missionService) Daily(ctx context.Context) ([]MissionView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	day := s.cfg.today()
	key := userID.String() + "/" + day.Format("2006-01-02")
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		var rows []*types.DailyMission
		err := runTx(ctx, s.db, s.log, "missions.daily", func(dbc dbctx.Context) error {
			if _, err := s.userRepo.LockByID(dbc, userID); err != nil {
				return err
			}
			var err error
			rows, err = s.ensure(dbc, userID, day)
			return err
		})
		return rows, err
	})
	if err != nil {
		return nil, fmt.Errorf("daily missions: %w", err)
	}
	return missionViews(v.([]*types.DailyMission)), nil
}

func (s *missionService) Refresh(ctx context.Context) ([]MissionView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	day := s.cfg.today()
	var rows []*types.DailyMission
	err = runTx(ctx, s.db, s.log, "missions.refresh", func(dbc dbctx.Context) error {
		if _, err := s.userRepo.LockByID(dbc, userID); err != nil {
			return err
		}
		if err := s.missionRepo.SoftDeleteOpenForDate(dbc, userID, day); err != nil {
			return fmt.Errorf("clear missions: %w", err)
		}
		kept, err := s.missionRepo.ListForDate(dbc, userID, day)
		if err != nil {
			return fmt.Errorf("load missions: %w", err)
		}
		done := make(map[string]bool, len(kept))
		for _, m := range kept {
			done[m.Type] = true
		}
		tpls, _, err := s.templates(dbc, userID)
		if err != nil {
			return err
		}
		var fresh []progression.MissionTemplate
		for _, t := range tpls {
			if !done[string(t.Type)] {
				fresh = append(fresh, t)
			}
		}
		created, err := s.missionRepo.Create(dbc, newMissionRows(userID, day, fresh))
		if err != nil {
			return fmt.Errorf("create missions: %w", err)
		}
		rows = append(kept, created...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("refresh missions: %w", err)
	}
	return missionViews(rows), nil
}

func (s *missionService) Complete(ctx context.Context, missionID uuid.UUID) (*MissionClaim, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	now := s.cfg.now()
	var claim *MissionClaim
	err = runTx(ctx, s.db, s.log, "missions.complete", func(dbc dbctx.Context) error {
		user, err := s.userRepo.LockByID(dbc, userID)
		if err != nil {
			return err
		}
		m, err := s.missionRepo.GetByID(dbc, userID, missionID)
		if err != nil {
			return err
		}
		claim = &MissionClaim{}
		if m.Completed {
			claim.AlreadyCompleted = true
			claim.Mission = newMissionView(m)
			return nil
		}
		ok, err := s.missionRepo.MarkCompleted(dbc, m.ID, now)
		if err != nil {
			return fmt.Errorf("mark mission: %w", err)
		}
		if !ok {
			claim.AlreadyCompleted = true
			claim.Mission = newMissionView(m)
			return nil
		}
		// Claims are self-reported: Claimable only drives the client's
		// button state and is not enforced here.
		at := now
		m.Completed, m.CompletedAt = true, &at
		if m.Progress < m.Target {
			m.Progress = m.Target
		}
		claim.Mission = newMissionView(m)
		claim.RewardXP, claim.RewardCoins = m.RewardXP, m.RewardCoins
		claim.LevelUp, err = creditAccount(dbc, s.userRepo, user, m.RewardXP, m.RewardCoins)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("complete mission: %w", err)
	}
	if !claim.AlreadyCompleted {
		observability.Current().ObserveMissionClaim(string(claim.Mission.Type))
		observability.Current().ObserveXP("mission", claim.RewardXP, claim.RewardCoins)
		s.notifier.MissionCompleted(userID, claim)
		if claim.LevelUp != nil {
			s.notifier.LevelUp(userID, *claim.LevelUp)
		}
	}
	return claim, nil
}

func (s *missionService) Advance(dbc dbctx.Context, userID uuid.UUID, logged []progression.LoggedExercise, at time.Time) ([]MissionView, error) {
	day := progression.DayStart(at, s.cfg.loc())
	rows, err := s.ensure(dbc, userID, day)
	if err != nil {
		return nil, err
	}
	hex, err := s.hexagonRepo.GetOrCreate(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load hexagon: %w", err)
	}
	level := progression.OverallLevel(hex.Profile())
	for _, m := range rows {
		if m.Completed || m.Target == 0 {
			continue
		}
		inc := progression.MissionIncrement(missionTemplate(m), logged, level)
		if inc <= 0 {
			continue
		}
		if err := s.missionRepo.AddProgress(dbc, m.ID, inc); err != nil {
			return nil, fmt.Errorf("advance mission %s: %w", m.ID, err)
		}
		m.Progress += inc
		if m.Progress > m.Target {
			m.Progress = m.Target
		}
	}
	return missionViews(rows), nil
}
