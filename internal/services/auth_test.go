package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	"github.com/yungbote/calisthenics-backend/internal/data/repos/testutil"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
)

func TestRefreshRotatesAndRevokesExpired(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	tokenRepo := repos.NewUserTokenRepo(tx, log)
	svc := NewAuthService(tx, log, repos.NewUserRepo(tx, log), tokenRepo, "test-secret", time.Minute, time.Hour)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	email := uuid.NewString() + "@example.com"
	if _, err := svc.Register(ctx, RegisterInput{Email: email, Password: "pw-123456", FirstName: "A", LastName: "B"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	first, err := svc.Login(ctx, email, "pw-123456")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	second, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}
	if _, err := svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("reused token: %v", err)
	}

	if err := tx.Model(&types.UserToken{}).
		Where("refresh_token = ?", second.RefreshToken).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire token: %v", err)
	}
	if _, err := svc.Refresh(ctx, second.RefreshToken); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("expired token: %v", err)
	}
	left, err := tokenRepo.GetByRefreshTokens(dbc, []string{second.RefreshToken})
	if err != nil {
		t.Fatalf("GetByRefreshTokens: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expired token was not revoked")
	}
}
