package training

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/calisthenics-backend/internal/data/repos/testutil"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
)

func TestDailyRoutineRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewDailyRoutineRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "routinerepo@example.com")

	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if _, err := repo.GetForDate(dbc, u.ID, day); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetForDate before create: %v", err)
	}
	mk := func(created time.Time) *types.DailyRoutine {
		return &types.DailyRoutine{
			UserID:        u.ID,
			RoutineDate:   day,
			Phases:        datatypes.JSON([]byte("[]")),
			TotalDuration: 30,
			Difficulty:    "BEGINNER",
			FocusAreas:    datatypes.JSON([]byte("[]")),
			CreatedAt:     created,
			UpdatedAt:     created,
		}
	}
	first, err := repo.Create(dbc, mk(day.Add(8*time.Hour)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(dbc, mk(day.Add(9*time.Hour))); err != nil {
		t.Fatalf("Create second: %v", err)
	}
	got, err := repo.GetForDate(dbc, u.ID, day)
	if err != nil || got.ID != first.ID {
		t.Fatalf("GetForDate should return the earliest row: %v", err)
	}
	if _, err := repo.GetByID(dbc, uuid.New(), first.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetByID for another user: %v", err)
	}
	if rows, err := repo.ListByUser(dbc, u.ID, 10); err != nil || len(rows) != 2 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}
}

func TestDailyMissionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewDailyMissionRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "missionrepo@example.com")

	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	rows, err := repo.Create(dbc, []*types.DailyMission{
		{UserID: u.ID, MissionDate: day, Type: "complete_exercises", Description: "d", Target: 3, RewardXP: 15, RewardCoins: 7},
		{UserID: u.ID, MissionDate: day, Type: "consistency", Description: "d", Target: 0, RewardXP: 10, RewardCoins: 5},
	})
	if err != nil || len(rows) != 2 {
		t.Fatalf("Create: err=%v len=%d", err, len(rows))
	}
	m := rows[0]
	if err := repo.AddProgress(dbc, m.ID, 2); err != nil {
		t.Fatalf("AddProgress: %v", err)
	}
	if err := repo.AddProgress(dbc, m.ID, 5); err != nil {
		t.Fatalf("AddProgress: %v", err)
	}
	got, err := repo.GetByID(dbc, u.ID, m.ID)
	if err != nil || got.Progress != 3 {
		t.Fatalf("progress should cap at target: %+v %v", got, err)
	}

	done, err := repo.MarkCompleted(dbc, m.ID, time.Now())
	if err != nil || !done {
		t.Fatalf("MarkCompleted: done=%v err=%v", done, err)
	}
	done, err = repo.MarkCompleted(dbc, m.ID, time.Now())
	if err != nil || done {
		t.Fatalf("second MarkCompleted: done=%v err=%v", done, err)
	}

	if err := repo.SoftDeleteOpenForDate(dbc, u.ID, day); err != nil {
		t.Fatalf("SoftDeleteOpenForDate: %v", err)
	}
	left, err := repo.ListForDate(dbc, u.ID, day)
	if err != nil || len(left) != 1 || left[0].ID != m.ID {
		t.Fatalf("only the completed mission should remain: %v %+v", err, left)
	}
}

func TestAssessmentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewAssessmentRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "assessmentrepo@example.com")

	base := time.Now().UTC()
	for i, lvl := range []string{"BEGINNER", "ADVANCED"} {
		row := &types.Assessment{
			UserID:       u.ID,
			Scores:       datatypes.JSON([]byte(`{"push":1}`)),
			FitnessLevel: lvl,
			Goals:        datatypes.JSON([]byte("[]")),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:    base,
		}
		if _, err := repo.Create(dbc, row); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	latest, err := repo.LatestByUser(dbc, u.ID)
	if err != nil || latest.FitnessLevel != "ADVANCED" {
		t.Fatalf("LatestByUser: %+v %v", latest, err)
	}
}
