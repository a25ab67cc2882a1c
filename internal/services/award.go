package services

import (
	"fmt"

	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/observability"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

// creditAccount adds xp and coins to a user row already locked in dbc's
// transaction and applies any level-up those xp cause. The locked copy is
// kept in step so later credits in the same transaction see the new totals.
func creditAccount(dbc dbctx.Context, userRepo repos.UserRepo, user *types.User, xp, coins int) (*progression.LevelUp, error) {
	if xp == 0 && coins == 0 {
		return nil, nil
	}
	if err := userRepo.IncrementTotals(dbc, user.ID, xp, coins); err != nil {
		return nil, fmt.Errorf("credit account: %w", err)
	}
	user.TotalXP += xp
	user.VirtualCoins += coins

	up, ok := progression.CheckLevelUp(user.Level, user.TotalXP)
	if !ok {
		return nil, nil
	}
	if err := userRepo.IncrementTotals(dbc, user.ID, 0, up.CoinsEarned); err != nil {
		return nil, fmt.Errorf("credit level-up coins: %w", err)
	}
	if err := userRepo.UpdateFields(dbc, user.ID, map[string]interface{}{"level": up.To}); err != nil {
		return nil, fmt.Errorf("store level: %w", err)
	}
	user.VirtualCoins += up.CoinsEarned
	user.Level = up.To
	observability.Current().ObserveLevelUp()
	return &up, nil
}

// mergeLevelUps folds a later level-up into an earlier one from the same
// request.
func mergeLevelUps(a, b *progression.LevelUp) *progression.LevelUp {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return &progression.LevelUp{From: a.From, To: b.To, CoinsEarned: a.CoinsEarned + b.CoinsEarned}
}
