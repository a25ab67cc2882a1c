package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/catalog"
	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/observability"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

const maxWorkoutExercises = 100

type LoggedExerciseInput struct {
	// ExerciseID is a catalog id. Without it Name is matched against the
	// catalog and, failing that, classified from the text.
	ExerciseID   string   `json:"exerciseId"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Difficulty   string   `json:"difficulty"`
	MuscleGroups []string `json:"muscleGroups"`
	Sets         int      `json:"sets" binding:"omitempty,min=0,max=100"`
	Reps         int      `json:"reps" binding:"omitempty,min=0,max=10000"`
	DurationSec  int      `json:"durationSec" binding:"omitempty,min=0,max=36000"`
	Rank         string   `json:"rank" binding:"omitempty,oneof=D C B A S d c b a s"`
}

type WorkoutInput struct {
	RoutineID       *uuid.UUID            `json:"routineId"`
	Difficulty      string                `json:"difficulty"`
	DurationMinutes int                   `json:"durationMinutes" binding:"omitempty,min=0,max=600"`
	Exercises       []LoggedExerciseInput `json:"exercises" binding:"omitempty,dive"`
	Notes           string                `json:"notes" binding:"omitempty,max=2000"`
}

type WorkoutExercise struct {
	ExerciseID  string                  `json:"exerciseId,omitempty"`
	Name        string                  `json:"name"`
	Category    progression.Category    `json:"category"`
	Difficulty  progression.Difficulty  `json:"difficulty"`
	Sets        int                     `json:"sets"`
	Reps        int                     `json:"reps,omitempty"`
	DurationSec int                     `json:"durationSec,omitempty"`
	Rank        progression.Rank        `json:"rank,omitempty"`
	IsSkill     bool                    `json:"isSkill,omitempty"`
	XP          int                     `json:"xp"`
	Coins       int                     `json:"coins"`
	Attribution progression.AxisMapping `json:"attribution"`
}

type HexagonUpdate struct {
	Before *HexagonView                 `json:"before"`
	Delta  map[progression.Axis]float64 `json:"delta"`
	After  *HexagonView                 `json:"after"`
}

type WorkoutResult struct {
	WorkoutID   uuid.UUID `json:"workoutId"`
	BaseXP      int       `json:"baseXp"`
	BaseCoins   int       `json:"baseCoins"`
	XPEarned    int       `json:"xpEarned"`
	CoinsEarned int       `json:"coinsEarned"`
	// StreakBonus is the percentage applied to the base rewards.
	StreakBonus   int                      `json:"streakBonus"`
	Streak        progression.StreakUpdate `json:"streak"`
	HexagonUpdate HexagonUpdate            `json:"hexagonUpdate"`
	Exercises     []WorkoutExercise        `json:"exercises"`
	Missions      []MissionView            `json:"missions"`
	Achievements  *UnlockResult            `json:"achievements"`
	LevelUp       *progression.LevelUp     `json:"levelUp,omitempty"`
}

type WorkoutHistoryView struct {
	ID                 uuid.UUID                    `json:"id"`
	RoutineID          *uuid.UUID                   `json:"routineId,omitempty"`
	CompletedAt        time.Time                    `json:"completedAt"`
	DurationMinutes    int                          `json:"durationMinutes"`
	ExercisesCount     int                          `json:"exercisesCount"`
	XPEarned           int                          `json:"xpEarned"`
	CoinsEarned        int                          `json:"coinsEarned"`
	StreakBonusPercent int                          `json:"streakBonusPercent"`
	Exercises          []WorkoutExercise            `json:"exercises"`
	AxisDeltas         map[progression.Axis]float64 `json:"axisDeltas"`
	Notes              string                       `json:"notes,omitempty"`
}

type WorkoutPage struct {
	Items  []WorkoutHistoryView `json:"items"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

type WorkoutService interface {
	Complete(ctx context.Context, in WorkoutInput) (*WorkoutResult, error)
	History(ctx context.Context, limit, offset int) (*WorkoutPage, error)
}

type workoutService struct {
	db           *gorm.DB
	log          *logger.Logger
	catalog      *catalog.Catalog
	userRepo     repos.UserRepo
	hexagonRepo  repos.HexagonProfileRepo
	historyRepo  repos.WorkoutHistoryRepo
	routineRepo  repos.DailyRoutineRepo
	streaks      StreakService
	missions     MissionService
	achievements AchievementService
	leaderboard  LeaderboardService
	notifier     ProgressNotifier
	cfg          ProgressionConfig
}

func NewWorkoutService(
	db *gorm.DB,
	log *logger.Logger,
	cat *catalog.Catalog,
	userRepo repos.UserRepo,
	hexagonRepo repos.HexagonProfileRepo,
	historyRepo repos.WorkoutHistoryRepo,
	routineRepo repos.DailyRoutineRepo,
	streaks StreakService,
	missions MissionService,
	achievements AchievementService,
	leaderboard LeaderboardService,
	notifier ProgressNotifier,
	cfg ProgressionConfig,
) WorkoutService {
	return &workoutService{
		db:           db,
		log:          log.With("service", "WorkoutService"),
		catalog:      cat,
		userRepo:     userRepo,
		hexagonRepo:  hexagonRepo,
		historyRepo:  historyRepo,
		routineRepo:  routineRepo,
		streaks:      streaks,
		missions:     missions,
		achievements: achievements,
		leaderboard:  leaderboard,
		notifier:     notifier,
		cfg:          cfg,
	}
}

type resolvedExercise struct {
	view    WorkoutExercise
	ex      catalog.Exercise
	inCat   bool
	muscles []string
}

// resolve turns logged input into catalog-backed exercises. Unknown names
// are classified from their text; the workout difficulty fills in when the
// entry carries none.
func (s *workoutService) resolve(in LoggedExerciseInput, workoutDiff string) (resolvedExercise, error) {
	var r resolvedExercise
	switch {
	case in.ExerciseID != "":
		ex, ok := s.catalog.Exercise(strings.TrimSpace(in.ExerciseID))
		if !ok {
			return r, fmt.Errorf("%w: unknown exercise %q", pkgerrors.ErrInvalidArgument, in.ExerciseID)
		}
		r.ex, r.inCat = ex, true
	case strings.TrimSpace(in.Name) != "":
		r.ex, r.inCat = s.catalog.FindByName(in.Name)
	default:
		return r, fmt.Errorf("%w: exercise needs an exerciseId or a name", pkgerrors.ErrInvalidArgument)
	}

	v := WorkoutExercise{Sets: in.Sets, Reps: in.Reps, DurationSec: in.DurationSec}
	if in.Rank != "" {
		rank, ok := progression.ParseRank(in.Rank)
		if !ok {
			return r, fmt.Errorf("%w: unknown rank %q", pkgerrors.ErrInvalidArgument, in.Rank)
		}
		v.Rank = rank
	}
	if r.inCat {
		v.ExerciseID, v.Name = r.ex.ID, r.ex.Name
		v.Category, v.Difficulty, v.IsSkill = r.ex.Category, r.ex.Difficulty, r.ex.IsSkill
		r.muscles = r.ex.MuscleGroups
		if v.Sets == 0 {
			v.Sets = r.ex.DefaultSets
		}
	} else {
		v.Name = strings.TrimSpace(in.Name)
		if cat, ok := progression.ParseCategory(in.Category); ok {
			v.Category = cat
		} else if cat, ok := progression.InferCategory(v.Name); ok {
			v.Category = cat
		}
		v.Difficulty = progression.InferDifficulty(v.Name)
		for _, raw := range []string{in.Difficulty, workoutDiff} {
			if d, ok := progression.ParseDifficulty(raw); ok && raw != "" {
				v.Difficulty = d
				break
			}
		}
		r.muscles = in.MuscleGroups
	}
	if v.Sets <= 0 {
		v.Sets = 1
	}
	r.view = v
	return r, nil
}

// performance compares logged volume with the catalog prescription.
func performance(r resolvedExercise) float64 {
	if !r.inCat {
		return 0
	}
	switch r.ex.Unit {
	case catalog.UnitSeconds:
		if r.view.DurationSec > 0 {
			return progression.PerformanceMultiplier(float64(r.view.DurationSec), float64(r.ex.DefaultSeconds))
		}
	default:
		if r.view.Reps > 0 {
			return progression.PerformanceMultiplier(float64(r.view.Reps), float64(r.ex.DefaultReps))
		}
	}
	return 0
}

type workoutPlan struct {
	exercises []WorkoutExercise
	logged    []progression.LoggedExercise
	volume    map[progression.Category]int
	base      progression.RewardResult
}

func (s *workoutService) plan(in WorkoutInput, level progression.Level) (*workoutPlan, error) {
	if len(in.Exercises) == 0 && in.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: a workout needs exercises or a duration", pkgerrors.ErrInvalidArgument)
	}
	if len(in.Exercises) > maxWorkoutExercises {
		return nil, fmt.Errorf("%w: at most %d exercises per workout", pkgerrors.ErrInvalidArgument, maxWorkoutExercises)
	}
	table := s.cfg.rewards()
	p := &workoutPlan{
		exercises: make([]WorkoutExercise, 0, len(in.Exercises)),
		volume:    map[progression.Category]int{},
	}
	results := make([]progression.RewardResult, 0, len(in.Exercises))
	for _, raw := range in.Exercises {
		r, err := s.resolve(raw, in.Difficulty)
		if err != nil {
			return nil, err
		}
		res := progression.ComputeRewards(table, progression.RewardInput{
			Category:              r.view.Category,
			Difficulty:            r.view.Difficulty,
			Rank:                  r.view.Rank,
			Name:                  r.view.Name,
			MuscleGroups:          r.muscles,
			PerformanceMultiplier: performance(r),
			Sets:                  r.view.Sets,
		})
		results = append(results, res)
		r.view.XP, r.view.Coins, r.view.Attribution = res.XP, res.Coins, res.Attribution
		p.exercises = append(p.exercises, r.view)
		p.logged = append(p.logged, progression.LoggedExercise{
			Axis:       res.Attribution.Primary,
			Category:   r.view.Category,
			Difficulty: r.view.Difficulty,
			Reps:       r.view.Reps * r.view.Sets,
			IsSkill:    r.view.IsSkill,
		})
		if r.view.Category != "" {
			p.volume[r.view.Category]++
		}
	}
	p.base = progression.Totals(results)

	// A session logged without exercise detail is credited by length.
	if len(in.Exercises) == 0 {
		xp := progression.SessionXP(level, in.DurationMinutes)
		p.base.XP = xp
		if table.CoinDivisor > 0 {
			p.base.Coins = int(float64(xp)/table.CoinDivisor + 0.5)
		}
		p.base.PerAxisXPDelta[progression.DefaultAxis] = float64(xp)
	}
	return p, nil
}

func (s *workoutService) Complete(ctx context.Context, in WorkoutInput) (*WorkoutResult, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer("calisthenics/services").Start(ctx, "workout.complete")
	defer span.End()

	now := s.cfg.now()
	var res *WorkoutResult
	err = runTx(ctx, s.db, s.log, "workout.complete", func(dbc dbctx.Context) error {
		res = &WorkoutResult{Achievements: emptyUnlockResult(), Missions: []MissionView{}}
		user, err := s.userRepo.LockByID(dbc, userID)
		if err != nil {
			return err
		}
		hex, err := s.hexagonRepo.GetOrCreate(dbc, userID)
		if err != nil {
			return fmt.Errorf("load hexagon: %w", err)
		}
		p, err := s.plan(in, progression.OverallLevel(hex.Profile()))
		if err != nil {
			return err
		}
		if in.RoutineID != nil {
			if _, err := s.routineRepo.GetByID(dbc, userID, *in.RoutineID); err != nil {
				return err
			}
		}
		res.Exercises = p.exercises
		res.BaseXP, res.BaseCoins = p.base.XP, p.base.Coins
		res.HexagonUpdate.Before = NewHexagonView(hex)

		err = savepoint(dbc, "workout_streak", func(dbc dbctx.Context) error {
			res.Streak, err = s.streaks.Advance(dbc, userID, now)
			return err
		})
		if err != nil {
			s.log.Warn("streak update failed, using default", "user_id", userID, "error", err)
			observability.Current().ObserveDegraded("streak")
			res.Streak = progression.DefaultStreak()
		}
		bonus := progression.ApplyStreakBonus(p.base.XP, p.base.Coins, res.Streak.CurrentStreak)
		res.Streak.BonusPercent = bonus.BonusPercent
		res.XPEarned, res.CoinsEarned, res.StreakBonus = bonus.XP, bonus.Coins, bonus.BonusPercent

		after, err := s.hexagonRepo.IncrementXP(dbc, userID, p.base.PerAxisXPDelta)
		if err != nil {
			return fmt.Errorf("apply hexagon xp: %w", err)
		}
		res.HexagonUpdate.Delta = p.base.PerAxisXPDelta
		res.HexagonUpdate.After = NewHexagonView(after)

		if res.LevelUp, err = creditAccount(dbc, s.userRepo, user, res.XPEarned, res.CoinsEarned); err != nil {
			return err
		}

		rows, err := s.historyRepo.Create(dbc, []*types.WorkoutHistory{{
			UserID:             userID,
			RoutineID:          in.RoutineID,
			CompletedAt:        now,
			DurationMinutes:    in.DurationMinutes,
			ExercisesCount:     len(p.exercises),
			XPEarned:           res.XPEarned,
			CoinsEarned:        res.CoinsEarned,
			StreakBonusPercent: res.StreakBonus,
			Exercises:          toJSON(p.exercises),
			AxisDeltas:         toJSON(p.base.PerAxisXPDelta),
			Notes:              strings.TrimSpace(in.Notes),
		}})
		if err != nil {
			return fmt.Errorf("store workout: %w", err)
		}
		res.WorkoutID = rows[0].ID

		err = savepoint(dbc, "workout_missions", func(dbc dbctx.Context) error {
			res.Missions, err = s.missions.Advance(dbc, userID, p.logged, now)
			return err
		})
		if err != nil {
			s.log.Warn("mission progress skipped", "user_id", userID, "error", err)
			observability.Current().ObserveDegraded("missions")
			res.Missions = []MissionView{}
		}

		err = savepoint(dbc, "workout_achievements", func(dbc dbctx.Context) error {
			res.Achievements, err = s.achievements.Evaluate(dbc, EvaluateInput{User: user, CategoryVolume: p.volume, At: now})
			return err
		})
		if err != nil {
			s.log.Warn("achievement evaluation skipped", "user_id", userID, "error", err)
			observability.Current().ObserveDegraded("achievements")
			res.Achievements = emptyUnlockResult()
		}
		res.LevelUp = mergeLevelUps(res.LevelUp, res.Achievements.LevelUp)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "workout completion failed")
		return nil, fmt.Errorf("complete workout: %w", err)
	}
	span.SetAttributes(
		attribute.Int("workout.exercises", len(res.Exercises)),
		attribute.Int("workout.xp", res.XPEarned),
		attribute.Int("workout.streak", res.Streak.CurrentStreak),
	)

	if err := s.leaderboard.RecordXP(ctx, userID, res.XPEarned, now); err != nil {
		s.log.Warn("leaderboard update failed", "user_id", userID, "error", err)
	}
	observability.Current().ObserveWorkout(in.DurationMinutes, res.XPEarned, res.CoinsEarned)
	s.log.Info("workout completed",
		"user_id", userID,
		"workout_id", res.WorkoutID,
		"xp", res.XPEarned,
		"coins", res.CoinsEarned,
		"streak", res.Streak.CurrentStreak,
	)
	s.notifier.WorkoutCompleted(userID, res)
	s.notifier.StreakUpdated(userID, res.Streak)
	s.notifier.AchievementsUnlocked(userID, res.Achievements.NewlyUnlocked)
	if res.LevelUp != nil {
		s.notifier.LevelUp(userID, *res.LevelUp)
	}
	return res, nil
}

func newWorkoutHistoryView(row *types.WorkoutHistory) WorkoutHistoryView {
	v := WorkoutHistoryView{
		ID:                 row.ID,
		RoutineID:          row.RoutineID,
		CompletedAt:        row.CompletedAt,
		DurationMinutes:    row.DurationMinutes,
		ExercisesCount:     row.ExercisesCount,
		XPEarned:           row.XPEarned,
		CoinsEarned:        row.CoinsEarned,
		StreakBonusPercent: row.StreakBonusPercent,
		Exercises:          []WorkoutExercise{},
		AxisDeltas:         map[progression.Axis]float64{},
		Notes:              row.Notes,
	}
	// Rows written by older builds may carry other shapes; they show empty.
	_ = json.Unmarshal(row.Exercises, &v.Exercises)
	_ = json.Unmarshal(row.AxisDeltas, &v.AxisDeltas)
	return v
}

func (s *workoutService) History(ctx context.Context, limit, offset int) (*WorkoutPage, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.historyRepo.ListByUser(dbc, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	total, err := s.historyRepo.CountByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("count workouts: %w", err)
	}
	page := &WorkoutPage{Items: make([]WorkoutHistoryView, 0, len(rows)), Total: total, Limit: limit, Offset: offset}
	for _, row := range rows {
		page.Items = append(page.Items, newWorkoutHistoryView(row))
	}
	return page, nil
}
