package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/catalog"
	"github.com/yungbote/calisthenics-backend/internal/data/repos"
	"github.com/yungbote/calisthenics-backend/internal/data/repos/testutil"
	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/ctxutil"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

// harness wires every service onto one rolled-back transaction.
type harness struct {
	ctx  context.Context
	tx   *gorm.DB
	user *types.User
	now  time.Time

	users        UserService
	hexagon      HexagonService
	streaks      StreakService
	achievements AchievementService
	skills       SkillService
	missions     MissionService
	routines     RoutineService
	assessments  AssessmentService
	leaderboard  LeaderboardService
	workouts     WorkoutService
	dashboard    DashboardService

	streakRepo  repos.StreakStateRepo
	historyRepo repos.WorkoutHistoryRepo

	// Inputs kept so a test can rebuild the workout service with its own
	// collaborators.
	newWorkouts func(StreakService, AchievementService) WorkoutService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}

	h := &harness{tx: tx, now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	h.user = testutil.SeedUser(t, context.Background(), tx, uuid.NewString()+"@example.com")
	h.ctx = ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: h.user.ID})
	cfg := ProgressionConfig{Now: func() time.Time { return h.now }}
	n := nopNotifier{}

	userRepo := repos.NewUserRepo(tx, log)
	hexRepo := repos.NewHexagonProfileRepo(tx, log)
	h.streakRepo = repos.NewStreakStateRepo(tx, log)
	h.historyRepo = repos.NewWorkoutHistoryRepo(tx, log)
	skillRepo := repos.NewUserSkillRepo(tx, log)
	achRepo := repos.NewUserAchievementRepo(tx, log)
	chainRepo := repos.NewChainProgressRepo(tx, log)
	routineRepo := repos.NewDailyRoutineRepo(tx, log)
	missionRepo := repos.NewDailyMissionRepo(tx, log)
	assessmentRepo := repos.NewAssessmentRepo(tx, log)

	h.users = NewUserService(tx, log, userRepo)
	h.hexagon = NewHexagonService(tx, log, hexRepo)
	h.streaks = NewStreakService(tx, log, h.streakRepo, h.historyRepo, cfg)
	h.achievements = NewAchievementService(tx, log, cat, userRepo, achRepo, chainRepo, skillRepo, h.historyRepo, h.streaks, n, cfg)
	h.skills = NewSkillService(tx, log, cat, userRepo, skillRepo, hexRepo, h.achievements, n, cfg)
	h.missions = NewMissionService(tx, log, userRepo, missionRepo, hexRepo, n, cfg)
	h.routines = NewRoutineService(tx, log, cat, userRepo, hexRepo, routineRepo, n, cfg)
	h.assessments = NewAssessmentService(tx, log, userRepo, hexRepo, assessmentRepo, cfg)
	h.leaderboard = NewLeaderboardService(tx, log, nil, userRepo, h.historyRepo, cfg)
	h.newWorkouts = func(streaks StreakService, achievements AchievementService) WorkoutService {
		return NewWorkoutService(tx, log, cat, userRepo, hexRepo, h.historyRepo, routineRepo,
			streaks, h.missions, achievements, h.leaderboard, n, cfg)
	}
	h.workouts = h.newWorkouts(h.streaks, h.achievements)
	h.dashboard = NewDashboardService(log, h.users, h.hexagon, h.streaks, h.missions, h.achievements, h.workouts, routineRepo, cfg)
	return h
}

func pushUps(sets, reps int) WorkoutInput {
	return WorkoutInput{
		DurationMinutes: 15,
		Exercises:       []LoggedExerciseInput{{ExerciseID: "push-up", Sets: sets, Reps: reps}},
	}
}

func hasAchievement(res *UnlockResult, key string) bool {
	for _, a := range res.NewlyUnlocked {
		if a.Key == key {
			return true
		}
	}
	return false
}

func TestWorkoutCompletionFlow(t *testing.T) {
	h := newHarness(t)

	res, err := h.workouts.Complete(h.ctx, pushUps(1, 10))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.XPEarned != 10 || res.CoinsEarned != 2 || res.StreakBonus != 0 {
		t.Fatalf("rewards: xp=%d coins=%d bonus=%d", res.XPEarned, res.CoinsEarned, res.StreakBonus)
	}
	if res.Streak.CurrentStreak != 1 || res.Streak.LongestStreak != 1 {
		t.Fatalf("streak: %+v", res.Streak)
	}
	if res.HexagonUpdate.After.Profile.Axis(progression.AxisStrength).XP != 10 {
		t.Fatalf("hexagon after: %+v", res.HexagonUpdate.After.Profile)
	}
	if len(res.Achievements.ChainRewards) != 1 || res.Achievements.ChainRewards[0].ChainKey != "workout_warrior" {
		t.Fatalf("first workout chain: %+v", res.Achievements.ChainRewards)
	}
	var exerciseMission *MissionView
	for i := range res.Missions {
		if res.Missions[i].Type == progression.MissionCompleteExercises {
			exerciseMission = &res.Missions[i]
		}
	}
	if exerciseMission == nil || exerciseMission.Progress != 1 {
		t.Fatalf("missions: %+v", res.Missions)
	}

	me, err := h.users.GetMe(h.ctx)
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if me.User.TotalXP != 10+res.Achievements.TotalXPReward {
		t.Fatalf("total xp %d, achievements %d", me.User.TotalXP, res.Achievements.TotalXPReward)
	}

	h.now = h.now.Add(24 * time.Hour)
	res, err = h.workouts.Complete(h.ctx, pushUps(1, 10))
	if err != nil {
		t.Fatalf("second Complete: %v", err)
	}
	if res.Streak.CurrentStreak != 2 || !res.Streak.Incremented {
		t.Fatalf("next-day streak: %+v", res.Streak)
	}

	page, err := h.workouts.History(h.ctx, 10, 0)
	if err != nil || page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("history: %+v %v", page, err)
	}
	if page.Items[0].Exercises[0].ExerciseID != "push-up" {
		t.Fatalf("history exercises: %+v", page.Items[0])
	}
}

func TestStreakBonusAfterYesterday(t *testing.T) {
	h := newHarness(t)
	yesterday := h.now.Add(-24 * time.Hour)
	if err := h.streakRepo.Upsert(dbctx.Context{Ctx: h.ctx, Tx: h.tx}, &types.StreakState{
		ID:              uuid.New(),
		UserID:          h.user.ID,
		CurrentStreak:   9,
		LongestStreak:   9,
		LastWorkoutDate: &yesterday,
	}); err != nil {
		t.Fatalf("seed streak: %v", err)
	}
	res, err := h.workouts.Complete(h.ctx, pushUps(3, 10))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Streak.CurrentStreak != 10 || res.StreakBonus != 10 {
		t.Fatalf("streak: %+v bonus %d", res.Streak, res.StreakBonus)
	}
	if res.BaseXP != 30 || res.XPEarned != 33 {
		t.Fatalf("xp: base %d earned %d", res.BaseXP, res.XPEarned)
	}

	view, err := h.streaks.Get(h.ctx)
	if err != nil || view.CurrentStreak != 10 || view.LongestStreak != 10 {
		t.Fatalf("streak view: %+v %v", view, err)
	}
}

func TestStreakResetsAfterGap(t *testing.T) {
	h := newHarness(t)
	old := h.now.AddDate(0, 0, -5)
	if err := h.streakRepo.Upsert(dbctx.Context{Ctx: h.ctx, Tx: h.tx}, &types.StreakState{
		ID: uuid.New(), UserID: h.user.ID, CurrentStreak: 10, LongestStreak: 12, LastWorkoutDate: &old,
	}); err != nil {
		t.Fatalf("seed streak: %v", err)
	}
	res, err := h.workouts.Complete(h.ctx, pushUps(1, 10))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Streak.CurrentStreak != 1 || res.Streak.LongestStreak != 12 || !res.Streak.Reset {
		t.Fatalf("streak after gap: %+v", res.Streak)
	}
}

var errStepFailed = errors.New("step failed")

// failingStreaks writes the real streak and then fails, so the savepoint
// has something to discard.
type failingStreaks struct{ StreakService }

func (f failingStreaks) Advance(dbc dbctx.Context, userID uuid.UUID, at time.Time) (progression.StreakUpdate, error) {
	if _, err := f.StreakService.Advance(dbc, userID, at); err != nil {
		return progression.StreakUpdate{}, err
	}
	return progression.StreakUpdate{}, errStepFailed
}

type failingAchievements struct{ AchievementService }

func (f failingAchievements) Evaluate(dbc dbctx.Context, in EvaluateInput) (*UnlockResult, error) {
	if _, err := f.AchievementService.Evaluate(dbc, in); err != nil {
		return nil, err
	}
	return nil, errStepFailed
}

func TestStreakFailureFallsBackToDefault(t *testing.T) {
	h := newHarness(t)
	yesterday := h.now.Add(-24 * time.Hour)
	dbc := dbctx.Context{Ctx: h.ctx, Tx: h.tx}
	if err := h.streakRepo.Upsert(dbc, &types.StreakState{
		ID: uuid.New(), UserID: h.user.ID, CurrentStreak: 9, LongestStreak: 9, LastWorkoutDate: &yesterday,
	}); err != nil {
		t.Fatalf("seed streak: %v", err)
	}

	res, err := h.newWorkouts(failingStreaks{h.streaks}, h.achievements).Complete(h.ctx, pushUps(3, 10))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	def := progression.DefaultStreak()
	if res.Streak.CurrentStreak != def.CurrentStreak || res.Streak.LongestStreak != def.LongestStreak ||
		res.Streak.BonusPercent != 0 || res.Streak.LastWorkoutDate != nil {
		t.Fatalf("streak: %+v want %+v", res.Streak, def)
	}
	if res.StreakBonus != 0 || res.XPEarned != res.BaseXP || res.BaseXP != 30 {
		t.Fatalf("rewards: base %d earned %d bonus %d", res.BaseXP, res.XPEarned, res.StreakBonus)
	}

	stored, err := h.streakRepo.GetByUserID(dbc, h.user.ID)
	if err != nil {
		t.Fatalf("load streak: %v", err)
	}
	if stored.CurrentStreak != 9 || !stored.LastWorkoutDate.Equal(yesterday) {
		t.Fatalf("failed step leaked a write: %+v", stored)
	}

	me, err := h.users.GetMe(h.ctx)
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if me.User.TotalXP != res.XPEarned+res.Achievements.TotalXPReward {
		t.Fatalf("total xp %d, earned %d", me.User.TotalXP, res.XPEarned)
	}
	hex, err := h.hexagon.Get(h.ctx)
	gained := res.HexagonUpdate.Delta[progression.AxisStrength]
	if err != nil || gained <= 0 || hex.Profile.Axis(progression.AxisStrength).XP != gained {
		t.Fatalf("hexagon: %+v %v", hex, err)
	}
	page, err := h.workouts.History(h.ctx, 10, 0)
	if err != nil || page.Total != 1 {
		t.Fatalf("history: %+v %v", page, err)
	}
}

func TestAchievementFailureKeepsWorkout(t *testing.T) {
	h := newHarness(t)

	res, err := h.newWorkouts(h.streaks, failingAchievements{h.achievements}).Complete(h.ctx, pushUps(1, 10))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Achievements == nil || len(res.Achievements.NewlyUnlocked) != 0 || len(res.Achievements.ChainRewards) != 0 {
		t.Fatalf("achievements should be empty: %+v", res.Achievements)
	}
	if res.Streak.CurrentStreak != 1 {
		t.Fatalf("streak: %+v", res.Streak)
	}

	me, err := h.users.GetMe(h.ctx)
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if me.User.TotalXP != res.XPEarned || res.XPEarned != 10 {
		t.Fatalf("chain rewards leaked: total %d earned %d", me.User.TotalXP, res.XPEarned)
	}

	// The evaluation that was rolled back runs again on the next call.
	again, err := h.achievements.UnlockAchievements(h.ctx)
	if err != nil {
		t.Fatalf("UnlockAchievements: %v", err)
	}
	if again == nil {
		t.Fatalf("nil unlock result")
	}
	view, err := h.streaks.Get(h.ctx)
	if err != nil || view.CurrentStreak != 1 {
		t.Fatalf("streak persisted alongside: %+v %v", view, err)
	}
}

func TestSkillCompletion(t *testing.T) {
	h := newHarness(t)

	if _, err := h.skills.Complete(h.ctx, "wall-handstand"); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("locked skill: %v", err)
	}
	if _, err := h.skills.Complete(h.ctx, "push-up"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("non-skill: %v", err)
	}

	res, err := h.skills.Complete(h.ctx, "crow-pose")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.AlreadyCompleted || res.XPEarned != 30 || !hasAchievement(res.Achievements, "first_skill") {
		t.Fatalf("first completion: %+v", res)
	}
	again, err := h.skills.Complete(h.ctx, "crow-pose")
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if !again.AlreadyCompleted || again.XPEarned != 0 || len(again.Achievements.NewlyUnlocked) != 0 {
		t.Fatalf("repeat completion: %+v", again)
	}

	tree, err := h.skills.List(h.ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if tree.Completed != 1 || tree.BranchDone["BALANCE"] != 1 {
		t.Fatalf("tree: completed=%d branches=%v", tree.Completed, tree.BranchDone)
	}
	for _, s := range tree.Skills {
		if s.ID == "wall-handstand" && !s.Unlocked {
			t.Fatalf("wall-handstand should unlock after crow-pose")
		}
	}
}

func TestFifthSkillUnlocksCollector(t *testing.T) {
	h := newHarness(t)
	at := h.now.Add(-time.Hour)
	for key, branch := range map[string]string{
		"crow-pose": "BALANCE", "l-sit": "CORE", "tuck-front-lever": "STATICS", "human-flag": "STATICS",
	} {
		testutil.SeedSkill(t, h.ctx, h.tx, h.user.ID, key, branch, at)
	}
	res, err := h.skills.Complete(h.ctx, "pull-up")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !hasAchievement(res.Achievements, "skill_collector") {
		t.Fatalf("expected skill_collector, got %+v", res.Achievements.NewlyUnlocked)
	}

	again, err := h.achievements.UnlockAchievements(h.ctx)
	if err != nil {
		t.Fatalf("UnlockAchievements: %v", err)
	}
	if hasAchievement(again, "skill_collector") || hasAchievement(again, "first_skill") {
		t.Fatalf("second pass re-unlocked: %+v", again.NewlyUnlocked)
	}

	view, err := h.achievements.List(h.ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if view.UnlockedCount < 2 || view.TotalCount != len(view.Achievements) {
		t.Fatalf("achievements view: unlocked=%d total=%d", view.UnlockedCount, view.TotalCount)
	}
}

func TestMissionClaimPaysBeforeTarget(t *testing.T) {
	h := newHarness(t)
	missions, err := h.missions.Daily(h.ctx)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	var open *MissionView
	for i := range missions {
		if missions[i].Type == progression.MissionCompleteExercises {
			open = &missions[i]
		}
	}
	if open == nil || open.Claimable || open.Progress >= open.Target {
		t.Fatalf("expected an unclaimable exercise mission: %+v", missions)
	}
	before, err := h.users.GetMe(h.ctx)
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}

	claim, err := h.missions.Complete(h.ctx, open.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if claim.RewardXP != open.RewardXP || claim.Mission.Progress != open.Target || claim.Mission.Claimable {
		t.Fatalf("claim: %+v", claim)
	}
	after, err := h.users.GetMe(h.ctx)
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if after.User.TotalXP != before.User.TotalXP+open.RewardXP {
		t.Fatalf("xp: before=%d after=%d reward=%d", before.User.TotalXP, after.User.TotalXP, open.RewardXP)
	}
}

func TestMissionClaimIsIdempotent(t *testing.T) {
	h := newHarness(t)
	missions, err := h.missions.Daily(h.ctx)
	if err != nil || len(missions) == 0 {
		t.Fatalf("Daily: %+v %v", missions, err)
	}
	same, err := h.missions.Daily(h.ctx)
	if err != nil || len(same) != len(missions) || same[0].ID != missions[0].ID {
		t.Fatalf("Daily should be stable within a day: %+v %v", same, err)
	}

	first, err := h.missions.Complete(h.ctx, missions[0].ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if first.AlreadyCompleted || first.RewardXP != missions[0].RewardXP || !first.Mission.Completed {
		t.Fatalf("first claim: %+v", first)
	}
	second, err := h.missions.Complete(h.ctx, missions[0].ID)
	if err != nil {
		t.Fatalf("second Complete: %v", err)
	}
	if !second.AlreadyCompleted || second.RewardXP != 0 {
		t.Fatalf("second claim: %+v", second)
	}
	if _, err := h.missions.Complete(h.ctx, uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("unknown mission: %v", err)
	}

	refreshed, err := h.missions.Refresh(h.ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(refreshed) != len(missions) {
		t.Fatalf("refresh should keep the set size: %d vs %d", len(refreshed), len(missions))
	}
}

func TestRoutineIsCachedForTheDay(t *testing.T) {
	h := newHarness(t)
	first, err := h.routines.Today(h.ctx, RoutineRequest{DurationMinutes: 30})
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if first.Cached || first.TotalDuration != 30 || len(first.Phases) != 4 {
		t.Fatalf("first routine: %+v", first)
	}
	second, err := h.routines.Today(h.ctx, RoutineRequest{DurationMinutes: 15})
	if err != nil {
		t.Fatalf("second Today: %v", err)
	}
	if !second.Cached || second.ID != first.ID || second.TotalDuration != 30 {
		t.Fatalf("second routine: %+v", second)
	}
	byID, err := h.routines.GetByID(h.ctx, first.ID)
	if err != nil || byID.ID != first.ID {
		t.Fatalf("GetByID: %v", err)
	}
	if _, err := h.routines.Today(h.ctx, RoutineRequest{DurationMinutes: 20}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("bad duration: %v", err)
	}
}

func TestAssessmentSeedsHexagon(t *testing.T) {
	h := newHarness(t)
	res, err := h.assessments.Submit(h.ctx, AssessmentInput{
		Scores:    progression.AssessmentScores{Push: 4, Pull: 4, Core: 1, Balance: 1, LowerBody: 1, Statics: 1},
		Goals:     []string{"strength"},
		Equipment: []string{"pull-up bar"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Reassessed || res.Hexagon.Profile.Axis(progression.AxisStrength).Level != progression.LevelElite {
		t.Fatalf("assessment result: %+v", res.Hexagon.Profile)
	}

	me, err := h.users.GetMe(h.ctx)
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if !me.User.HasCompletedAssessment || len(me.Equipment) != 1 || me.Equipment[0] != catalog.EquipmentPullUpBar {
		t.Fatalf("user after assessment: %+v", me)
	}

	again, err := h.assessments.Submit(h.ctx, AssessmentInput{
		Scores: progression.AssessmentScores{Push: 1, Pull: 1, Core: 4, Balance: 1, LowerBody: 1, Statics: 1},
	})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	p := again.Hexagon.Profile
	if !again.Reassessed || p.Axis(progression.AxisStrength).Level != progression.LevelElite {
		t.Fatalf("reassessment lowered strength: %+v", p)
	}
	latest, err := h.assessments.Latest(h.ctx)
	if err != nil || latest.Scores.Core != 4 {
		t.Fatalf("Latest: %+v %v", latest, err)
	}
}

func TestLeaderboardFallsBackToPostgres(t *testing.T) {
	h := newHarness(t)
	res, err := h.workouts.Complete(h.ctx, pushUps(2, 10))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	board, err := h.leaderboard.Weekly(h.ctx, 10)
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if board.Source != LeaderboardSourcePostgres || board.WeekStart != "2026-10-12" {
		t.Fatalf("board: %+v", board)
	}
	if board.Me == nil || board.Me.XP != res.XPEarned || board.Me.Workouts != 1 || board.Me.Name != "A B." {
		t.Fatalf("me: %+v", board.Me)
	}
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	if _, err := h.workouts.Complete(h.ctx, pushUps(1, 10)); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	d, err := h.dashboard.Get(h.ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.User == nil || d.Hexagon == nil || d.Streak == nil || d.Workouts.Total != 1 {
		t.Fatalf("dashboard: %+v", d)
	}
	if d.Routine != nil {
		t.Fatalf("dashboard must not generate a routine")
	}
	if len(d.Missions) == 0 || d.Achievements.Total == 0 {
		t.Fatalf("missions/achievements: %+v %+v", d.Missions, d.Achievements)
	}
}

func TestServicesRequireUser(t *testing.T) {
	h := newHarness(t)
	anon := context.Background()
	if _, err := h.workouts.Complete(anon, pushUps(1, 10)); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("workouts: %v", err)
	}
	if _, err := h.dashboard.Get(anon); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("dashboard: %v", err)
	}
}
