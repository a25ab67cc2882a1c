package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

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

type AssessmentInput struct {
	Scores    progression.AssessmentScores `json:"scores" binding:"required"`
	Goals     []string                     `json:"goals"`
	Equipment []string                     `json:"equipment"`
}

type AssessmentView struct {
	ID           uuid.UUID                    `json:"id"`
	Scores       progression.AssessmentScores `json:"scores"`
	FitnessLevel progression.Level            `json:"fitnessLevel"`
	Goals        []string                     `json:"goals"`
	CreatedAt    time.Time                    `json:"createdAt"`
}

type AssessmentResult struct {
	Assessment AssessmentView `json:"assessment"`
	Hexagon    *HexagonView   `json:"hexagon"`
	// Reassessed is set when the user had already been assessed; the
	// hexagon then keeps whichever of old and new is higher per axis.
	Reassessed bool `json:"reassessed"`
}

type AssessmentService interface {
	Submit(ctx context.Context, in AssessmentInput) (*AssessmentResult, error)
	Latest(ctx context.Context) (*AssessmentView, error)
}

type assessmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	hexagonRepo    repos.HexagonProfileRepo
	assessmentRepo repos.AssessmentRepo
	cfg            ProgressionConfig
}

func NewAssessmentService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	hexagonRepo repos.HexagonProfileRepo,
	assessmentRepo repos.AssessmentRepo,
	cfg ProgressionConfig,
) AssessmentService {
	return &assessmentService{
		db:             db,
		log:            log.With("service", "AssessmentService"),
		userRepo:       userRepo,
		hexagonRepo:    hexagonRepo,
		assessmentRepo: assessmentRepo,
		cfg:            cfg,
	}
}

func validateScores(s progression.AssessmentScores) error {
	for name, v := range map[string]float64{
		"push": s.Push, "pull": s.Pull, "core": s.Core,
		"balance": s.Balance, "lowerBody": s.LowerBody, "statics": s.Statics,
	} {
		if math.IsNaN(v) || v < 1 || v > 4 {
			return fmt.Errorf("%w: score %s must be between 1 and 4", pkgerrors.ErrInvalidArgument, name)
		}
	}
	return nil
}

func newAssessmentView(row *types.Assessment) (*AssessmentView, error) {
	v := &AssessmentView{
		ID:           row.ID,
		FitnessLevel: progression.Level(row.FitnessLevel),
		Goals:        jsonStrings(row.Goals),
		CreatedAt:    row.CreatedAt,
	}
	if v.Goals == nil {
		v.Goals = []string{}
	}
	if err := json.Unmarshal(row.Scores, &v.Scores); err != nil {
		return nil, fmt.Errorf("decode assessment %s: %w", row.ID, err)
	}
	return v, nil
}

// maxProfile keeps the larger xp per axis.
func maxProfile(a, b progression.Profile) progression.Profile {
	ax, bx := a.XP(), b.XP()
	out := make(map[progression.Axis]float64, len(progression.Axes))
	for _, axis := range progression.Axes {
		out[axis] = math.Max(ax[axis], bx[axis])
	}
	return progression.NewProfile(out)
}

func (s *assessmentService) Submit(ctx context.Context, in AssessmentInput) (*AssessmentResult, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateScores(in.Scores); err != nil {
		return nil, err
	}
	goals := normalizeGoals(in.Goals)
	level := progression.FitnessLevelFromScores(in.Scores)
	initial := progression.InitialProfile(in.Scores)
	now := s.cfg.now()

	res := &AssessmentResult{}
	err = runTx(ctx, s.db, s.log, "assessment.submit", func(dbc dbctx.Context) error {
		user, err := s.userRepo.LockByID(dbc, userID)
		if err != nil {
			return err
		}
		hex, err := s.hexagonRepo.GetOrCreate(dbc, userID)
		if err != nil {
			return fmt.Errorf("load hexagon: %w", err)
		}
		next := initial
		res.Reassessed = user.HasCompletedAssessment
		if res.Reassessed {
			next = maxProfile(hex.Profile(), initial)
		}
		hex, err = s.hexagonRepo.Replace(dbc, userID, next, hex.Version)
		if err != nil {
			return fmt.Errorf("store hexagon: %w", err)
		}
		res.Hexagon = NewHexagonView(hex)

		row, err := s.assessmentRepo.Create(dbc, &types.Assessment{
			UserID:       userID,
			Scores:       toJSON(in.Scores),
			FitnessLevel: string(level),
			Goals:        toJSON(goals),
		})
		if err != nil {
			return fmt.Errorf("store assessment: %w", err)
		}
		view, err := newAssessmentView(row)
		if err != nil {
			return err
		}
		res.Assessment = *view

		fields := map[string]interface{}{
			"fitness_level":            string(level),
			"goals":                    toJSON(goals),
			"has_completed_assessment": true,
			"assessment_date":          now,
		}
		if in.Equipment != nil {
			fields["equipment"] = toJSON(catalog.NormalizeEquipment(in.Equipment))
		}
		return s.userRepo.UpdateFields(dbc, userID, fields)
	})
	if err != nil {
		return nil, fmt.Errorf("submit assessment: %w", err)
	}
	s.log.Info("assessment stored", "user_id", userID, "fitness_level", level, "reassessed", res.Reassessed)
	return res, nil
}

func (s *assessmentService) Latest(ctx context.Context) (*AssessmentView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.assessmentRepo.LatestByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}
	return newAssessmentView(row)
}
