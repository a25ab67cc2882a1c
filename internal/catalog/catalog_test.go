package catalog

import (
	"strings"
	"testing"

	"github.com/yungbote/calisthenics-backend/internal/progression"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	t.Parallel()
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Exercises()) < 50 {
		t.Fatalf("expected a full catalog, got %d exercises", len(c.Exercises()))
	}
	pu, ok := c.Exercise("push-up")
	if !ok || pu.Category != progression.CategoryPush || pu.Difficulty != progression.DifficultyBeginner {
		t.Fatalf("push-up: %+v %v", pu, ok)
	}
	if len(pu.Equipment) != 0 {
		t.Fatalf("push-up needs no equipment: %v", pu.Equipment)
	}
	if _, ok := c.FindByName("PULL-UP"); !ok {
		t.Fatalf("FindByName should be case-insensitive")
	}

	totals := c.BranchTotals()
	for _, b := range []string{"PUSH", "PULL", "CORE", "BALANCE", "STATICS"} {
		if totals[b] == 0 {
			t.Fatalf("branch %s has no skills", b)
		}
	}

	if _, ok := c.Achievement("skill_collector"); !ok {
		t.Fatalf("missing skill_collector")
	}
	if _, ok := c.Achievement("STREAK_7_DAYS"); !ok {
		t.Fatalf("streak milestone achievements not merged")
	}
	if len(c.Chains()) == 0 {
		t.Fatalf("no chains loaded")
	}
}

func TestEveryPhaseHasBeginnerBodyweightWork(t *testing.T) {
	t.Parallel()
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cats := map[progression.Category]bool{}
	for _, e := range c.Exercises() {
		if e.Difficulty == progression.DifficultyBeginner && len(e.Equipment) == 0 {
			cats[e.Category] = true
		}
	}
	for _, want := range []progression.Category{
		progression.CategoryWarmUp, progression.CategoryFlexibility, progression.CategoryBalance,
		progression.CategoryPush, progression.CategoryCore, progression.CategoryLowerBody,
	} {
		if !cats[want] {
			t.Fatalf("no beginner bodyweight exercise in %s", want)
		}
	}
}

func TestParseRejectsBadData(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		ex   string
		ach  string
		want string
	}{
		{"bad json", `[`, ``, "decode exercises"},
		{"unknown category", `[{"id":"a","name":"A","category":"DANCE","difficulty":"BEGINNER","unit":"reps"}]`, ``, "unknown category"},
		{"unknown unit", `[{"id":"a","name":"A","category":"PUSH","difficulty":"BEGINNER","unit":"miles"}]`, ``, "unknown unit"},
		{"duplicate id", `[{"id":"a","name":"A","category":"PUSH","difficulty":"BEGINNER","unit":"reps"},{"id":"a","name":"B","category":"PUSH","difficulty":"BEGINNER","unit":"reps"}]`, ``, "duplicate id"},
		{"missing prerequisite", `[{"id":"a","name":"A","category":"PUSH","difficulty":"BEGINNER","unit":"reps","prerequisites":["zzz"]}]`, ``, "unknown prerequisite"},
		{"skill without branch", `[{"id":"a","name":"A","category":"PUSH","difficulty":"BEGINNER","unit":"reps","isSkill":true}]`, ``, "skill without branch"},
		{"bad achievement", `[]`, "achievements:\n  - key: x\n    requirement: {type: nope, count: 1}\n", "unknown requirement"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.ex), []byte(tc.ach))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestNormalizeEquipment(t *testing.T) {
	t.Parallel()
	got := NormalizeEquipment([]string{"none", "pull-up bar", "PULL_UP_BAR", " rings "})
	if len(got) != 2 || got[0] != EquipmentPullUpBar || got[1] != EquipmentRings {
		t.Fatalf("got %v", got)
	}
}
