package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/calisthenics-backend/internal/progression"
	"github.com/yungbote/calisthenics-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func TestProgressNotifierEvents(t *testing.T) {
	t.Parallel()
	em := &recordingEmitter{}
	n := NewProgressNotifier(em)
	u := uuid.New()

	n.WorkoutCompleted(u, &WorkoutResult{WorkoutID: uuid.New(), XPEarned: 12})
	n.AchievementsUnlocked(u, []progression.Achievement{{Key: "a"}, {Key: "b"}})
	n.LevelUp(u, progression.LevelUp{From: 1, To: 2, CoinsEarned: 50})
	n.WorkoutCompleted(u, nil)

	if len(em.msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(em.msgs))
	}
	want := []realtime.SSEEvent{
		realtime.SSEEventWorkoutCompleted,
		realtime.SSEEventAchievementUnlocked,
		realtime.SSEEventAchievementUnlocked,
		realtime.SSEEventLevelUp,
	}
	for i, m := range em.msgs {
		if m.Event != want[i] || m.Channel != realtime.UserChannel(u) {
			t.Fatalf("message %d: %+v", i, m)
		}
	}
	data, ok := em.msgs[3].Data.(map[string]any)
	if !ok || data["title"] == nil || data["to"] != 2 {
		t.Fatalf("level up payload: %+v", em.msgs[3].Data)
	}
}

func TestProgressNotifierWithoutEmitter(t *testing.T) {
	t.Parallel()
	n := NewProgressNotifier(nil)
	n.LevelUp(uuid.New(), progression.LevelUp{To: 2})
	n.RoutineGenerated(uuid.New(), &RoutineView{})
}

// nopNotifier satisfies ProgressNotifier for tests that do not look at events.
type nopNotifier struct{}

func (nopNotifier) WorkoutCompleted(uuid.UUID, *WorkoutResult)                {}
func (nopNotifier) AchievementsUnlocked(uuid.UUID, []progression.Achievement) {}
func (nopNotifier) LevelUp(uuid.UUID, progression.LevelUp)                    {}
func (nopNotifier) StreakUpdated(uuid.UUID, progression.StreakUpdate)         {}
func (nopNotifier) MissionCompleted(uuid.UUID, *MissionClaim)                 {}
func (nopNotifier) RoutineGenerated(uuid.UUID, *RoutineView)                  {}
