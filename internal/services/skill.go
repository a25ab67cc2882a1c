package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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

type SkillView struct {
	catalog.Exercise
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	// Unlocked means every prerequisite is completed.
	Unlocked bool `json:"unlocked"`
}

type SkillTree struct {
	Skills       []SkillView    `json:"skills"`
	Completed    int            `json:"completed"`
	Total        int            `json:"total"`
	BranchTotals map[string]int `json:"branchTotals"`
	BranchDone   map[string]int `json:"branchCompleted"`
}

type SkillCompletion struct {
	Skill            SkillView            `json:"skill"`
	AlreadyCompleted bool                 `json:"alreadyCompleted"`
	XPEarned         int                  `json:"xpEarned"`
	CoinsEarned      int                  `json:"coinsEarned"`
	Hexagon          *HexagonView         `json:"hexagon,omitempty"`
	Achievements     *UnlockResult        `json:"achievements"`
	LevelUp          *progression.LevelUp `json:"levelUp,omitempty"`
}

type SkillService interface {
	List(ctx context.Context) (*SkillTree, error)
	// Complete records a skill once. Repeating it is not an error and pays
	// nothing.
	Complete(ctx context.Context, key string) (*SkillCompletion, error)
}

type skillService struct {
	db           *gorm.DB
	log          *logger.Logger
	catalog      *catalog.Catalog
	userRepo     repos.UserRepo
	skillRepo    repos.UserSkillRepo
	hexagonRepo  repos.HexagonProfileRepo
	achievements AchievementService
	notifier     ProgressNotifier
	cfg          ProgressionConfig
}

func NewSkillService(
	db *gorm.DB,
	log *logger.Logger,
	cat *catalog.Catalog,
	userRepo repos.UserRepo,
	skillRepo repos.UserSkillRepo,
	hexagonRepo repos.HexagonProfileRepo,
	achievements AchievementService,
	notifier ProgressNotifier,
	cfg ProgressionConfig,
) SkillService {
	return &skillService{
		db:           db,
		log:          log.With("service", "SkillService"),
		catalog:      cat,
		userRepo:     userRepo,
		skillRepo:    skillRepo,
		hexagonRepo:  hexagonRepo,
		achievements: achievements,
		notifier:     notifier,
		cfg:          cfg,
	}
}

func skillViews(skills []catalog.Exercise, done map[string]time.Time) []SkillView {
	out := make([]SkillView, 0, len(skills))
	for _, e := range skills {
		v := SkillView{Exercise: e, Unlocked: true}
		if at, ok := done[e.ID]; ok {
			at := at
			v.Completed = true
			v.CompletedAt = &at
		}
		for _, p := range e.Prerequisites {
			if _, ok := done[p]; !ok {
				v.Unlocked = false
				break
			}
		}
		out = append(out, v)
	}
	return out
}

func (s *skillService) completed(dbc dbctx.Context, userID uuid.UUID) (map[string]time.Time, error) {
	rows, err := s.skillRepo.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load skills: %w", err)
	}
	out := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		out[r.SkillKey] = r.CompletedAt
	}
	return out, nil
}

func (s *skillService) List(ctx context.Context) (*SkillTree, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	done, err := s.completed(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}
	tree := &SkillTree{
		Skills:       skillViews(s.catalog.Skills(), done),
		BranchTotals: s.catalog.BranchTotals(),
		BranchDone:   map[string]int{},
	}
	tree.Total = len(tree.Skills)
	for _, v := range tree.Skills {
		if v.Completed {
			tree.Completed++
			tree.BranchDone[v.Branch]++
		}
	}
	return tree, nil
}

func (s *skillService) Complete(ctx context.Context, key string) (*SkillCompletion, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	ex, ok := s.catalog.Exercise(strings.TrimSpace(key))
	if !ok || !ex.IsSkill {
		return nil, fmt.Errorf("skill %q: %w", key, pkgerrors.ErrNotFound)
	}
	now := s.cfg.now()

	var out *SkillCompletion
	err = runTx(ctx, s.db, s.log, "skill.complete", func(dbc dbctx.Context) error {
		out = &SkillCompletion{Achievements: emptyUnlockResult()}
		user, err := s.userRepo.LockByID(dbc, userID)
		if err != nil {
			return err
		}
		done, err := s.completed(dbc, userID)
		if err != nil {
			return err
		}
		var missing []string
		for _, p := range ex.Prerequisites {
			if _, ok := done[p]; !ok {
				missing = append(missing, p)
			}
		}
		if _, already := done[ex.ID]; !already && len(missing) > 0 {
			return fmt.Errorf("skill %s needs %s first: %w", ex.ID, strings.Join(missing, ", "), pkgerrors.ErrConflict)
		}

		inserted, err := s.skillRepo.Insert(dbc, &types.UserSkill{
			UserID:      userID,
			SkillKey:    ex.ID,
			Branch:      ex.Branch,
			CompletedAt: now,
		})
		if err != nil {
			return fmt.Errorf("record skill: %w", err)
		}
		if !inserted {
			out.AlreadyCompleted = true
			if _, ok := done[ex.ID]; !ok {
				done[ex.ID] = now
			}
			out.Skill = skillViews([]catalog.Exercise{ex}, done)[0]
			return nil
		}
		done[ex.ID] = now
		out.Skill = skillViews([]catalog.Exercise{ex}, done)[0]

		reward := progression.ComputeRewards(s.cfg.rewards(), progression.RewardInput{
			Category:     ex.Category,
			Difficulty:   ex.Difficulty,
			Name:         ex.Name,
			MuscleGroups: ex.MuscleGroups,
		})
		xp, coins := reward.XP, reward.Coins
		if ex.ExpReward > 0 {
			xp = ex.ExpReward
			coins = ex.CoinsReward
		}
		hex, err := s.hexagonRepo.IncrementXP(dbc, userID, reward.PerAxisXPDelta)
		if err != nil {
			return fmt.Errorf("apply skill xp: %w", err)
		}
		out.Hexagon = NewHexagonView(hex)
		if out.LevelUp, err = creditAccount(dbc, s.userRepo, user, xp, coins); err != nil {
			return err
		}
		out.XPEarned, out.CoinsEarned = xp, coins

		err = savepoint(dbc, "skill_achievements", func(dbc dbctx.Context) error {
			res, err := s.achievements.Evaluate(dbc, EvaluateInput{User: user, At: now})
			if err != nil {
				return err
			}
			out.Achievements = res
			return nil
		})
		if err != nil {
			s.log.Warn("achievement evaluation skipped", "user_id", userID, "skill", ex.ID, "error", err)
			observability.Current().ObserveDegraded("achievements")
			out.Achievements = emptyUnlockResult()
		}
		out.LevelUp = mergeLevelUps(out.LevelUp, out.Achievements.LevelUp)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("complete skill: %w", err)
	}

	if !out.AlreadyCompleted {
		observability.Current().ObserveXP("skill", out.XPEarned, out.CoinsEarned)
		s.notifier.AchievementsUnlocked(userID, out.Achievements.NewlyUnlocked)
		if out.LevelUp != nil {
			s.notifier.LevelUp(userID, *out.LevelUp)
		}
	}
	return out, nil
}
