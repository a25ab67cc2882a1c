package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/calisthenics-backend/internal/data/repos/testutil"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "userrepo@example.com")

	if ok, err := repo.EmailExists(dbc, u.Email); err != nil || !ok {
		t.Fatalf("EmailExists: ok=%v err=%v", ok, err)
	}
	if rows, err := repo.GetByEmails(dbc, []string{u.Email}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByEmails: err=%v len=%d", err, len(rows))
	}

	locked, err := repo.LockByID(dbc, u.ID)
	if err != nil || locked.ID != u.ID {
		t.Fatalf("LockByID: %v", err)
	}
	if _, err := repo.LockByID(dbctx.Context{Ctx: ctx}, u.ID); err == nil {
		t.Fatalf("LockByID without tx should fail")
	}
	if _, err := repo.LockByID(dbc, uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("LockByID missing: %v", err)
	}

	if err := repo.IncrementTotals(dbc, u.ID, 40, 8); err != nil {
		t.Fatalf("IncrementTotals: %v", err)
	}
	if err := repo.IncrementTotals(dbc, u.ID, 10, 2); err != nil {
		t.Fatalf("IncrementTotals: %v", err)
	}
	rows, err := repo.GetByIDs(dbc, []uuid.UUID{u.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows[0].TotalXP != 50 || rows[0].VirtualCoins != 10 {
		t.Fatalf("totals: xp=%d coins=%d", rows[0].TotalXP, rows[0].VirtualCoins)
	}
	if err := repo.IncrementTotals(dbc, uuid.New(), 1, 1); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("IncrementTotals missing user: %v", err)
	}

	if err := repo.UpdateFields(dbc, u.ID, map[string]interface{}{"level": 3}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	top, err := repo.TopByTotalXP(dbc, 100)
	if err != nil || len(top) == 0 {
		t.Fatalf("TopByTotalXP: err=%v len=%d", err, len(top))
	}
}
