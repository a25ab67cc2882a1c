package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/calisthenics-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:           uuid.New(),
		Email:        email,
		Password:     "pw",
		FirstName:    "A",
		LastName:     "B",
		Level:        1,
		FitnessLevel: "BEGINNER",
		Goals:        datatypes.JSON([]byte("[]")),
		Equipment:    datatypes.JSON([]byte("[]")),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedWorkout(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time, xp int) *types.WorkoutHistory {
	tb.Helper()
	w := &types.WorkoutHistory{
		ID:              uuid.New(),
		UserID:          userID,
		CompletedAt:     at,
		DurationMinutes: 30,
		ExercisesCount:  1,
		XPEarned:        xp,
		CoinsEarned:     xp / 5,
		Exercises:       datatypes.JSON([]byte("[]")),
		AxisDeltas:      datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(w).Error; err != nil {
		tb.Fatalf("seed workout: %v", err)
	}
	return w
}

func SeedSkill(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, key, branch string, at time.Time) *types.UserSkill {
	tb.Helper()
	s := &types.UserSkill{
		ID:          uuid.New(),
		UserID:      userID,
		SkillKey:    key,
		Branch:      branch,
		CompletedAt: at,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed skill: %v", err)
	}
	return s
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
