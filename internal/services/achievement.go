package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/catalog"
	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/observability"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

type UnlockResult struct {
	NewlyUnlocked    []progression.Achievement `json:"newlyUnlocked"`
	TotalXPReward    int                       `json:"totalXPReward"`
	TotalCoinsReward int                       `json:"totalCoinsReward"`
	ChainRewards     []progression.ChainReward `json:"chainRewards"`
	LevelUp          *progression.LevelUp      `json:"levelUp,omitempty"`
}

func emptyUnlockResult() *UnlockResult {
	return &UnlockResult{NewlyUnlocked: []progression.Achievement{}, ChainRewards: []progression.ChainReward{}}
}

// EvaluateInput drives one evaluation pass. User must be the row locked in
// the caller's transaction.
type EvaluateInput struct {
	User *types.User
	// CategoryVolume counts exercises logged per category by the event that
	// triggered the pass; it feeds the mastery chains.
	CategoryVolume map[progression.Category]int
	At             time.Time
}

type AchievementView struct {
	progression.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
	Progress   int        `json:"progress"`
	Target     int        `json:"target"`
}

type ChainView struct {
	progression.Chain
	Status progression.ChainStatus `json:"status"`
}

type AchievementsView struct {
	Achievements  []AchievementView `json:"achievements"`
	Chains        []ChainView       `json:"chains"`
	UnlockedCount int               `json:"unlockedCount"`
	TotalCount    int               `json:"totalCount"`
	XPEarned      int               `json:"xpEarned"`
}

type AchievementService interface {
	// UnlockAchievements evaluates the catalog for the caller in its own
	// transaction and credits whatever it unlocks.
	UnlockAchievements(ctx context.Context) (*UnlockResult, error)
	Evaluate(dbc dbctx.Context, in EvaluateInput) (*UnlockResult, error)
	List(ctx context.Context) (*AchievementsView, error)
}

type achievementService struct {
	db              *gorm.DB
	log             *logger.Logger
	catalog         *catalog.Catalog
	userRepo        repos.UserRepo
	achievementRepo repos.UserAchievementRepo
	chainRepo       repos.ChainProgressRepo
	skillRepo       repos.UserSkillRepo
	historyRepo     repos.WorkoutHistoryRepo
	streaks         StreakService
	notifier        ProgressNotifier
	cfg             ProgressionConfig
}

func NewAchievementService(
	db *gorm.DB,
	log *logger.Logger,
	cat *catalog.Catalog,
	userRepo repos.UserRepo,
	achievementRepo repos.UserAchievementRepo,
	chainRepo repos.ChainProgressRepo,
	skillRepo repos.UserSkillRepo,
	historyRepo repos.WorkoutHistoryRepo,
	streaks StreakService,
	notifier ProgressNotifier,
	cfg ProgressionConfig,
) AchievementService {
	return &achievementService{
		db:              db,
		log:             log.With("service", "AchievementService"),
		catalog:         cat,
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
		chainRepo:       chainRepo,
		skillRepo:       skillRepo,
		historyRepo:     historyRepo,
		streaks:         streaks,
		notifier:        notifier,
		cfg:             cfg,
	}
}

func (s *achievementService) stats(dbc dbctx.Context, user *types.User, at time.Time) (progression.Stats, error) {
	loc := s.cfg.loc()
	st := progression.Stats{Level: user.Level, BranchTotal: s.catalog.BranchTotals()}

	n, err := s.skillRepo.CountByUser(dbc, user.ID)
	if err != nil {
		return st, fmt.Errorf("count skills: %w", err)
	}
	st.SkillsCompleted = int(n)
	if st.BranchCompleted, err = s.skillRepo.CountByBranch(dbc, user.ID); err != nil {
		return st, fmt.Errorf("count branch skills: %w", err)
	}
	if n, err = s.skillRepo.CountSince(dbc, user.ID, progression.DayStart(at, loc)); err != nil {
		return st, fmt.Errorf("count skills today: %w", err)
	}
	st.SkillsToday = int(n)
	if n, err = s.skillRepo.CountSince(dbc, user.ID, progression.WeekStart(at, loc)); err != nil {
		return st, fmt.Errorf("count skills this week: %w", err)
	}
	st.SkillsThisWeek = int(n)
	if n, err = s.historyRepo.CountByUser(dbc, user.ID); err != nil {
		return st, fmt.Errorf("count workouts: %w", err)
	}
	st.WorkoutsCompleted = int(n)
	streak, err := s.streaks.State(dbc, user.ID)
	if err != nil {
		return st, err
	}
	st.CurrentStreak = streak.CurrentStreak
	st.LongestStreak = streak.LongestStreak
	return st, nil
}

func (s *achievementService) unlockedKeys(dbc dbctx.Context, userID uuid.UUID) (map[string]*types.UserAchievement, error) {
	rows, err := s.achievementRepo.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load unlocked achievements: %w", err)
	}
	out := make(map[string]*types.UserAchievement, len(rows))
	for _, r := range rows {
		out[r.AchievementKey] = r
	}
	return out, nil
}

func (s *achievementService) Evaluate(dbc dbctx.Context, in EvaluateInput) (*UnlockResult, error) {
	user := in.User
	at := in.At
	if at.IsZero() {
		at = s.cfg.now()
	}
	stats, err := s.stats(dbc, user, at)
	if err != nil {
		return nil, err
	}
	unlockedRows, err := s.unlockedKeys(dbc, user.ID)
	if err != nil {
		return nil, err
	}
	unlocked := make(map[string]bool, len(unlockedRows))
	for k := range unlockedRows {
		unlocked[k] = true
	}

	res := emptyUnlockResult()
	for _, a := range progression.PendingUnlocks(s.catalog.Achievements(), unlocked, stats) {
		inserted, err := s.achievementRepo.Insert(dbc, &types.UserAchievement{
			UserID:         user.ID,
			AchievementKey: a.Key,
			RewardXP:       a.RewardXP,
			RewardCoins:    a.RewardCoins,
			UnlockedAt:     at,
		})
		if err != nil {
			return nil, fmt.Errorf("unlock %s: %w", a.Key, err)
		}
		// A concurrent request got there first; it also paid the reward.
		if !inserted {
			continue
		}
		res.NewlyUnlocked = append(res.NewlyUnlocked, a)
		res.TotalXPReward += a.RewardXP
		res.TotalCoinsReward += a.RewardCoins
		observability.Current().ObserveAchievement(a.Category)
	}

	chainRewards, err := s.advanceChains(dbc, user, stats, in.CategoryVolume)
	if err != nil {
		return nil, err
	}
	for _, r := range chainRewards {
		res.ChainRewards = append(res.ChainRewards, r)
		res.TotalXPReward += r.XP
		res.TotalCoinsReward += r.Coins
	}

	up, err := creditAccount(dbc, s.userRepo, user, res.TotalXPReward, res.TotalCoinsReward)
	if err != nil {
		return nil, err
	}
	res.LevelUp = up
	if res.TotalXPReward > 0 {
		observability.Current().ObserveXP("achievement", res.TotalXPReward, res.TotalCoinsReward)
	}
	return res, nil
}

// chainValue is the metric a chain climbs. Mastery chains accumulate in the
// stored progress column; the others are read fresh.
func chainValue(c progression.Chain, stored *types.ChainProgress, user *types.User, stats progression.Stats, volume map[progression.Category]int) int {
	switch c.Type {
	case progression.ChainWorkoutCount:
		return stats.WorkoutsCompleted
	case progression.ChainProgressMilestone:
		return user.TotalXP
	case progression.ChainExerciseMastery:
		prev := 0
		if stored != nil {
			prev = stored.Progress
		}
		return prev + volume[c.Category]
	}
	return 0
}

func (s *achievementService) advanceChains(dbc dbctx.Context, user *types.User, stats progression.Stats, volume map[progression.Category]int) ([]progression.ChainReward, error) {
	rows, err := s.chainRepo.ListByUser(dbc, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load chain progress: %w", err)
	}
	byKey := make(map[string]*types.ChainProgress, len(rows))
	for _, r := range rows {
		byKey[r.ChainKey] = r
	}

	var rewards []progression.ChainReward
	var updates []*types.ChainProgress
	for _, c := range s.catalog.Chains() {
		stored := byKey[c.Key]
		value := chainValue(c, stored, user, stats, volume)
		prevLevels := 0
		if stored != nil {
			prevLevels = stored.CompletedLevels
			if stored.Progress == value {
				continue
			}
		}
		st, rw := progression.AdvanceChain(c, prevLevels, value)
		rewards = append(rewards, rw...)
		updates = append(updates, &types.ChainProgress{
			UserID:          user.ID,
			ChainKey:        c.Key,
			CompletedLevels: st.CompletedLevels,
			Progress:        value,
			Target:          st.Target,
			Completed:       st.Completed,
		})
	}
	if err := s.chainRepo.Upsert(dbc, updates); err != nil {
		return nil, fmt.Errorf("store chain progress: %w", err)
	}
	return rewards, nil
}

func (s *achievementService) UnlockAchievements(ctx context.Context) (*UnlockResult, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var res *UnlockResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		user, err := s.userRepo.LockByID(dbc, userID)
		if err != nil {
			return err
		}
		res, err = s.Evaluate(dbc, EvaluateInput{User: user, At: s.cfg.now()})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unlock achievements: %w", err)
	}
	s.notifier.AchievementsUnlocked(userID, res.NewlyUnlocked)
	if res.LevelUp != nil {
		s.notifier.LevelUp(userID, *res.LevelUp)
	}
	return res, nil
}

func (s *achievementService) List(ctx context.Context) (*AchievementsView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	users, err := s.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("load user: %w", errUserMissing(userID))
	}
	stats, err := s.stats(dbc, users[0], s.cfg.now())
	if err != nil {
		return nil, err
	}
	unlocked, err := s.unlockedKeys(dbc, userID)
	if err != nil {
		return nil, err
	}

	all := s.catalog.Achievements()
	view := &AchievementsView{
		Achievements: make([]AchievementView, 0, len(all)),
		Chains:       []ChainView{},
		TotalCount:   len(all),
	}
	for _, a := range all {
		cur, target := a.Progress(stats)
		av := AchievementView{Achievement: a, Progress: cur, Target: target}
		if row, ok := unlocked[a.Key]; ok {
			at := row.UnlockedAt
			av.Unlocked = true
			av.UnlockedAt = &at
			av.Progress = target
			view.UnlockedCount++
			view.XPEarned += row.RewardXP
		} else if target > 0 && cur > target {
			av.Progress = target
		}
		view.Achievements = append(view.Achievements, av)
	}

	rows, err := s.chainRepo.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load chain progress: %w", err)
	}
	byKey := make(map[string]*types.ChainProgress, len(rows))
	for _, r := range rows {
		byKey[r.ChainKey] = r
	}
	for _, c := range s.catalog.Chains() {
		completed, value := 0, 0
		if r := byKey[c.Key]; r != nil {
			completed, value = r.CompletedLevels, r.Progress
		}
		st, _ := progression.AdvanceChain(c, completed, value)
		view.Chains = append(view.Chains, ChainView{Chain: c, Status: st})
	}
	return view, nil
}
