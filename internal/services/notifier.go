package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/calisthenics-backend/internal/progression"
	"github.com/yungbote/calisthenics-backend/internal/realtime"
)

// =========================
// Progress notifier
// =========================

type ProgressNotifier interface {
	WorkoutCompleted(userID uuid.UUID, result *WorkoutResult)
	AchievementsUnlocked(userID uuid.UUID, unlocked []progression.Achievement)
	LevelUp(userID uuid.UUID, up progression.LevelUp)
	StreakUpdated(userID uuid.UUID, streak progression.StreakUpdate)
	MissionCompleted(userID uuid.UUID, result *MissionClaim)
	RoutineGenerated(userID uuid.UUID, routine *RoutineView)
}

type progressNotifier struct {
	emit SSEEmitter
}

// NewProgressNotifier returns a notifier that drops everything when emit is
// nil, so services never need to check.
func NewProgressNotifier(emit SSEEmitter) ProgressNotifier {
	return &progressNotifier{emit: emit}
}

func (n *progressNotifier) send(userID uuid.UUID, event realtime.SSEEvent, data any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}

func (n *progressNotifier) WorkoutCompleted(userID uuid.UUID, result *WorkoutResult) {
	if result == nil {
		return
	}
	n.send(userID, realtime.SSEEventWorkoutCompleted, map[string]any{
		"workout_id":    result.WorkoutID,
		"xpEarned":      result.XPEarned,
		"coinsEarned":   result.CoinsEarned,
		"streakBonus":   result.StreakBonus,
		"hexagonUpdate": result.HexagonUpdate,
	})
}

func (n *progressNotifier) AchievementsUnlocked(userID uuid.UUID, unlocked []progression.Achievement) {
	for _, a := range unlocked {
		n.send(userID, realtime.SSEEventAchievementUnlocked, map[string]any{"achievement": a})
	}
}

func (n *progressNotifier) LevelUp(userID uuid.UUID, up progression.LevelUp) {
	data := map[string]any{
		"from":        up.From,
		"to":          up.To,
		"coinsEarned": up.CoinsEarned,
	}
	if levels := progression.UserLevels(); up.To >= 1 && up.To <= len(levels) {
		data["title"] = levels[up.To-1].Title
	}
	n.send(userID, realtime.SSEEventLevelUp, data)
}

func (n *progressNotifier) StreakUpdated(userID uuid.UUID, streak progression.StreakUpdate) {
	n.send(userID, realtime.SSEEventStreakUpdated, map[string]any{"streak": streak})
}

func (n *progressNotifier) MissionCompleted(userID uuid.UUID, result *MissionClaim) {
	if result == nil {
		return
	}
	n.send(userID, realtime.SSEEventMissionCompleted, map[string]any{"mission": result})
}

func (n *progressNotifier) RoutineGenerated(userID uuid.UUID, routine *RoutineView) {
	if routine == nil {
		return
	}
	n.send(userID, realtime.SSEEventRoutineGenerated, map[string]any{
		"routine_id": routine.ID,
		"date":       routine.Date,
	})
}
