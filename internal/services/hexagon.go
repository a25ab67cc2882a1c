package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

type AxisView struct {
	Axis          progression.Axis  `json:"axis"`
	XP            float64           `json:"xp"`
	FormattedXP   string            `json:"formattedXp"`
	Level         progression.Level `json:"level"`
	VisualValue   float64           `json:"visualValue"`
	XPToNextLevel float64           `json:"xpToNextLevel"`
	LevelProgress int               `json:"levelProgress"`
}

type HexagonView struct {
	Profile       progression.Profile `json:"profile"`
	Axes          []AxisView          `json:"axes"`
	OverallLevel  progression.Level   `json:"overallLevel"`
	Rank          progression.Rank    `json:"rank"`
	AverageVisual float64             `json:"averageVisual"`
	Version       int64               `json:"version"`
}

// NewHexagonView derives the read model for a stored profile. Stored level
// and visual columns are ignored in favour of values derived from xp.
func NewHexagonView(row *types.HexagonProfile) *HexagonView {
	if row == nil {
		row = &types.HexagonProfile{}
	}
	p := row.Profile()
	view := &HexagonView{
		Profile:       p,
		Axes:          make([]AxisView, 0, len(progression.Axes)),
		OverallLevel:  progression.OverallLevel(p),
		Rank:          progression.ProfileRank(p),
		AverageVisual: progression.AverageVisual(p),
		Version:       row.Version,
	}
	for _, a := range progression.Axes {
		st := p.Axis(a)
		view.Axes = append(view.Axes, AxisView{
			Axis:          a,
			XP:            st.XP,
			FormattedXP:   progression.FormatXP(st.XP),
			Level:         st.Level,
			VisualValue:   st.VisualValue,
			XPToNextLevel: progression.XPToNextLevel(st.XP),
			LevelProgress: progression.LevelProgress(st.XP),
		})
	}
	return view
}

type HexagonService interface {
	Get(ctx context.Context) (*HexagonView, error)
	// Recalculate re-derives every axis level and visual value from xp and
	// rewrites the row under an optimistic version check.
	Recalculate(ctx context.Context) (*HexagonView, error)
	// ImportLegacy replaces the profile with one converted from legacy
	// axis names (0-10 values or "<name>XP" totals).
	ImportLegacy(ctx context.Context, values map[string]float64) (*HexagonView, error)
	Profile(dbc dbctx.Context, userID uuid.UUID) (*types.HexagonProfile, error)
}

type hexagonService struct {
	db          *gorm.DB
	log         *logger.Logger
	hexagonRepo repos.HexagonProfileRepo
}

func NewHexagonService(db *gorm.DB, log *logger.Logger, hexagonRepo repos.HexagonProfileRepo) HexagonService {
	return &hexagonService{
		db:          db,
		log:         log.With("service", "HexagonService"),
		hexagonRepo: hexagonRepo,
	}
}

func (s *hexagonService) Get(ctx context.Context) (*HexagonView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.Profile(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}
	return NewHexagonView(row), nil
}

// Profile loads the user's hexagon, creating a zeroed one on first use.
func (s *hexagonService) Profile(dbc dbctx.Context, userID uuid.UUID) (*types.HexagonProfile, error) {
	row, err := s.hexagonRepo.GetOrCreate(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load hexagon: %w", err)
	}
	return row, nil
}

func (s *hexagonService) Recalculate(ctx context.Context) (*HexagonView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var out *types.HexagonProfile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.Profile(dbc, userID)
		if err != nil {
			return err
		}
		p := progression.Recalculate(row.Profile())
		out, err = s.hexagonRepo.Replace(dbc, userID, p, row.Version)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("recalculate hexagon: %w", err)
	}
	s.log.Info("hexagon recalculated", "user_id", userID, "version", out.Version)
	return NewHexagonView(out), nil
}

func (s *hexagonService) ImportLegacy(ctx context.Context, values map[string]float64) (*HexagonView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := progression.MigrateLegacy(values)
	if !ok {
		return nil, fmt.Errorf("%w: no legacy axis values", pkgerrors.ErrInvalidArgument)
	}
	var out *types.HexagonProfile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.Profile(dbc, userID)
		if err != nil {
			return err
		}
		out, err = s.hexagonRepo.Replace(dbc, userID, p, row.Version)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("import legacy hexagon: %w", err)
	}
	s.log.Info("legacy hexagon imported", "user_id", userID, "version", out.Version)
	return NewHexagonView(out), nil
}
