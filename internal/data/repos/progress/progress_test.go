package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/calisthenics-backend/internal/data/repos/testutil"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

func TestHexagonProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewHexagonProfileRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "hexagonrepo@example.com")

	if _, err := repo.GetByUserID(dbc, u.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetByUserID before create: %v", err)
	}
	first, err := repo.GetOrCreate(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	again, err := repo.GetOrCreate(dbc, u.ID)
	if err != nil || again.ID != first.ID {
		t.Fatalf("GetOrCreate should be idempotent: %v", err)
	}

	row, err := repo.IncrementXP(dbc, u.ID, map[progression.Axis]float64{progression.AxisStrength: 50_000})
	if err != nil {
		t.Fatalf("IncrementXP: %v", err)
	}
	if row.StrengthXP != 50_000 || row.StrengthLevel != string(progression.LevelIntermediate) {
		t.Fatalf("strength after increment: %+v", row)
	}
	if row.BalanceXP != 0 || row.CoreXP != 0 {
		t.Fatalf("other axes changed: %+v", row)
	}
	if row.Version != first.Version+1 {
		t.Fatalf("version: got %d want %d", row.Version, first.Version+1)
	}

	p := progression.NewProfile(map[progression.Axis]float64{progression.AxisCore: 1_000})
	if _, err := repo.Replace(dbc, u.ID, p, first.Version); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("Replace with stale version: %v", err)
	}
	replaced, err := repo.Replace(dbc, u.ID, p, row.Version)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if replaced.StrengthXP != 0 || replaced.CoreXP != 1_000 || replaced.Version != row.Version+1 {
		t.Fatalf("replaced: %+v", replaced)
	}
}

func TestStreakAndHistoryRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	streaks := NewStreakStateRepo(db, log)
	history := NewWorkoutHistoryRepo(db, log)
	u := testutil.SeedUser(t, ctx, tx, "streakrepo@example.com")
	other := testutil.SeedUser(t, ctx, tx, "streakrepo-other@example.com")

	now := time.Now().UTC()
	if err := streaks.Upsert(dbc, &types.StreakState{UserID: u.ID, CurrentStreak: 1, LongestStreak: 1, LastWorkoutDate: testutil.PtrTime(now)}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := streaks.Upsert(dbc, &types.StreakState{UserID: u.ID, CurrentStreak: 2, LongestStreak: 2, LastWorkoutDate: testutil.PtrTime(now)}); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	st, err := streaks.GetByUserID(dbc, u.ID)
	if err != nil || st.CurrentStreak != 2 || st.LongestStreak != 2 {
		t.Fatalf("GetByUserID: %+v %v", st, err)
	}

	testutil.SeedWorkout(t, ctx, tx, u.ID, now.Add(-48*time.Hour), 30)
	testutil.SeedWorkout(t, ctx, tx, u.ID, now.Add(-time.Hour), 20)
	testutil.SeedWorkout(t, ctx, tx, other.ID, now.Add(-time.Hour), 100)
	testutil.SeedWorkout(t, ctx, tx, other.ID, now.Add(-30*24*time.Hour), 500)

	if n, err := history.CountByUser(dbc, u.ID); err != nil || n != 2 {
		t.Fatalf("CountByUser: n=%d err=%v", n, err)
	}
	rows, err := history.ListByUser(dbc, u.ID, 1, 0)
	if err != nil || len(rows) != 1 || rows[0].XPEarned != 20 {
		t.Fatalf("ListByUser newest first: %v %+v", err, rows)
	}
	times, err := history.CompletionTimes(dbc, u.ID, now.Add(-24*time.Hour))
	if err != nil || len(times) != 1 {
		t.Fatalf("CompletionTimes: %v %v", err, times)
	}

	since := now.Add(-7 * 24 * time.Hour)
	top, err := history.TopXPSince(dbc, since, 10)
	if err != nil {
		t.Fatalf("TopXPSince: %v", err)
	}
	var mine, theirs *XPTotal
	for i := range top {
		switch top[i].UserID {
		case u.ID:
			mine = &top[i]
		case other.ID:
			theirs = &top[i]
		}
	}
	if mine == nil || mine.XP != 50 || mine.Workouts != 2 {
		t.Fatalf("mine: %+v", mine)
	}
	if theirs == nil || theirs.XP != 100 {
		t.Fatalf("theirs: %+v", theirs)
	}
	if got, err := history.XPSince(dbc, other.ID, since); err != nil || got.XP != 100 || got.Workouts != 1 {
		t.Fatalf("XPSince: %+v %v", got, err)
	}
}

func TestUserSkillRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserSkillRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "skillrepo@example.com")

	now := time.Now().UTC()
	added, err := repo.Insert(dbc, &types.UserSkill{UserID: u.ID, SkillKey: "crow-pose", Branch: "BALANCE", CompletedAt: now})
	if err != nil || !added {
		t.Fatalf("Insert: added=%v err=%v", added, err)
	}
	added, err = repo.Insert(dbc, &types.UserSkill{UserID: u.ID, SkillKey: "crow-pose", Branch: "BALANCE", CompletedAt: now})
	if err != nil || added {
		t.Fatalf("duplicate Insert: added=%v err=%v", added, err)
	}
	testutil.SeedSkill(t, ctx, tx, u.ID, "pull-up", "PULL", now.Add(-10*24*time.Hour))

	if n, err := repo.CountByUser(dbc, u.ID); err != nil || n != 2 {
		t.Fatalf("CountByUser: n=%d err=%v", n, err)
	}
	byBranch, err := repo.CountByBranch(dbc, u.ID)
	if err != nil || byBranch["BALANCE"] != 1 || byBranch["PULL"] != 1 {
		t.Fatalf("CountByBranch: %v %v", byBranch, err)
	}
	if n, err := repo.CountSince(dbc, u.ID, now.Add(-time.Hour)); err != nil || n != 1 {
		t.Fatalf("CountSince: n=%d err=%v", n, err)
	}
	if rows, err := repo.ListByUser(dbc, u.ID); err != nil || len(rows) != 2 || rows[0].SkillKey != "pull-up" {
		t.Fatalf("ListByUser: %v %+v", err, rows)
	}
}
