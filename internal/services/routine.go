package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/catalog"
	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/observability"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/progression"
	"github.com/yungbote/calisthenics-backend/internal/routine"
)

const defaultRoutineMinutes = 30

type RoutineRequest struct {
	DurationMinutes int      `json:"duration"`
	TargetSkill     string   `json:"targetSkill"`
	FocusAreas      []string `json:"focusAreas"`
}

type RoutineView struct {
	ID               uuid.UUID          `json:"id"`
	Date             string             `json:"date"`
	Phases           []routine.Block    `json:"phases"`
	TotalDuration    int                `json:"totalDuration"`
	EstimatedSeconds int                `json:"estimatedSeconds"`
	EstimatedXP      int                `json:"estimatedXP"`
	EstimatedCoins   int                `json:"estimatedCoins"`
	Difficulty       progression.Level  `json:"difficulty"`
	FocusAreas       []progression.Axis `json:"focusAreas"`
	TargetSkill      string             `json:"targetSkill,omitempty"`
	// Cached is set when the routine was created by an earlier request.
	Cached bool `json:"cached"`
}

func newRoutineView(row *types.DailyRoutine) (*RoutineView, error) {
	v := &RoutineView{
		ID:               row.ID,
		Date:             row.RoutineDate.Format("2006-01-02"),
		TotalDuration:    row.TotalDuration,
		EstimatedSeconds: row.EstimatedSeconds,
		EstimatedXP:      row.EstimatedXP,
		EstimatedCoins:   row.EstimatedCoins,
		Difficulty:       progression.Level(row.Difficulty),
		TargetSkill:      row.TargetSkill,
		Phases:           []routine.Block{},
		FocusAreas:       []progression.Axis{},
	}
	if len(row.Phases) > 0 {
		if err := json.Unmarshal(row.Phases, &v.Phases); err != nil {
			return nil, fmt.Errorf("decode routine %s phases: %w", row.ID, err)
		}
	}
	if len(row.FocusAreas) > 0 {
		if err := json.Unmarshal(row.FocusAreas, &v.FocusAreas); err != nil {
			return nil, fmt.Errorf("decode routine %s focus areas: %w", row.ID, err)
		}
	}
	return v, nil
}

type RoutineService interface {
	// Today returns the caller's routine for today, generating and storing
	// it on the first request. Later requests that day get the stored one.
	Today(ctx context.Context, req RoutineRequest) (*RoutineView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*RoutineView, error)
	List(ctx context.Context, limit int) ([]*RoutineView, error)
}

type routineService struct {
	db          *gorm.DB
	log         *logger.Logger
	catalog     *catalog.Catalog
	userRepo    repos.UserRepo
	hexagonRepo repos.HexagonProfileRepo
	routineRepo repos.DailyRoutineRepo
	notifier    ProgressNotifier
	cfg         ProgressionConfig
	group       singleflight.Group
}

func NewRoutineService(
	db *gorm.DB,
	log *logger.Logger,
	cat *catalog.Catalog,
	userRepo repos.UserRepo,
	hexagonRepo repos.HexagonProfileRepo,
	routineRepo repos.DailyRoutineRepo,
	notifier ProgressNotifier,
	cfg ProgressionConfig,
) RoutineService {
	return &routineService{
		db:          db,
		log:         log.With("service", "RoutineService"),
		catalog:     cat,
		userRepo:    userRepo,
		hexagonRepo: hexagonRepo,
		routineRepo: routineRepo,
		notifier:    notifier,
		cfg:         cfg,
	}
}

func parseFocusAreas(raw []string) ([]progression.Axis, error) {
	out := make([]progression.Axis, 0, len(raw))
	seen := map[progression.Axis]bool{}
	for _, r := range raw {
		a, ok := progression.ParseAxis(r)
		if !ok {
			return nil, fmt.Errorf("%w: unknown focus area %q", pkgerrors.ErrInvalidArgument, r)
		}
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out, nil
}

// routineSeed is stable for a user and day so a regenerated routine matches
// the stored one.
func routineSeed(userID uuid.UUID, day time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write(userID[:])
	_, _ = h.Write([]byte(day.Format("2006-01-02")))
	return int64(h.Sum64()&(1<<62-1)) + 1
}

func (s *routineService) Today(ctx context.Context, req RoutineRequest) (*RoutineView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = defaultRoutineMinutes
	}
	if !routine.ValidDuration(req.DurationMinutes) {
		return nil, fmt.Errorf("%w: duration must be one of %v minutes", pkgerrors.ErrInvalidArgument, routine.Durations)
	}
	focus, err := parseFocusAreas(req.FocusAreas)
	if err != nil {
		return nil, err
	}
	if req.TargetSkill != "" {
		if _, ok := s.catalog.Exercise(req.TargetSkill); !ok {
			if _, ok := s.catalog.FindByName(req.TargetSkill); !ok {
				return nil, fmt.Errorf("%w: unknown target skill %q", pkgerrors.ErrInvalidArgument, req.TargetSkill)
			}
		}
	}

	day := s.cfg.today()
	key := userID.String() + "/" + day.Format("2006-01-02")
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.today(ctx, userID, day, req, focus)
	})
	if err != nil {
		return nil, fmt.Errorf("daily routine: %w", err)
	}
	view := *v.(*RoutineView)
	return &view, nil
}

func (s *routineService) today(ctx context.Context, userID uuid.UUID, day time.Time, req RoutineRequest, focus []progression.Axis) (*RoutineView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := s.routineRepo.GetForDate(dbc, userID, day)
	switch {
	case err == nil:
		observability.Current().ObserveRoutine("cached")
		view, err := newRoutineView(existing)
		if err != nil {
			return nil, err
		}
		view.Cached = true
		return view, nil
	case !errors.Is(err, pkgerrors.ErrNotFound):
		return nil, fmt.Errorf("load routine: %w", err)
	}

	users, err := s.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, errUserMissing(userID)
	}
	user := users[0]
	hex, err := s.hexagonRepo.GetOrCreate(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load hexagon: %w", err)
	}

	params := routine.Params{
		Profile:         hex.Profile(),
		TargetSkill:     req.TargetSkill,
		Goals:           jsonStrings(user.Goals),
		Equipment:       jsonStrings(user.Equipment),
		DurationMinutes: req.DurationMinutes,
		FocusAreas:      focus,
		Rewards:         s.cfg.rewards(),
	}
	if s.cfg.RoutineVariety {
		params.Seed = routineSeed(userID, day)
	}
	r, err := routine.Generate(params, s.catalog.Exercises())
	if err != nil {
		return nil, err
	}

	row, err := s.routineRepo.Create(dbc, &types.DailyRoutine{
		UserID:           userID,
		RoutineDate:      day,
		Phases:           toJSON(r.Phases),
		TotalDuration:    r.TotalDuration,
		EstimatedSeconds: r.EstimatedSeconds,
		EstimatedXP:      r.EstimatedXP,
		EstimatedCoins:   r.EstimatedCoins,
		Difficulty:       string(r.Difficulty),
		FocusAreas:       toJSON(r.FocusAreas),
		TargetSkill:      req.TargetSkill,
	})
	if err != nil {
		return nil, fmt.Errorf("store routine: %w", err)
	}
	view, err := newRoutineView(row)
	if err != nil {
		return nil, err
	}
	observability.Current().ObserveRoutine("generated")
	s.log.Info("routine generated",
		"user_id", userID,
		"duration", r.TotalDuration,
		"estimated_seconds", r.EstimatedSeconds,
		"difficulty", r.Difficulty,
	)
	s.notifier.RoutineGenerated(userID, view)
	return view, nil
}

func (s *routineService) GetByID(ctx context.Context, id uuid.UUID) (*RoutineView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.routineRepo.GetByID(dbctx.Context{Ctx: ctx}, userID, id)
	if err != nil {
		return nil, err
	}
	view, err := newRoutineView(row)
	if err != nil {
		return nil, err
	}
	view.Cached = true
	return view, nil
}

func (s *routineService) List(ctx context.Context, limit int) ([]*RoutineView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	rows, err := s.routineRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	out := make([]*RoutineView, 0, len(rows))
	for _, row := range rows {
		v, err := newRoutineView(row)
		if err != nil {
			return nil, err
		}
		v.Cached = true
		out = append(out, v)
	}
	return out, nil
}
