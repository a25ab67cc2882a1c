package progression

import "testing"

func sumDeltas(r RewardResult) float64 {
	var s float64
	for _, d := range r.PerAxisXPDelta {
		s += d
	}
	return s
}

func TestSessionTableBeginnerPushUp(t *testing.T) {
	t.Parallel()
	r := ComputeRewards(SessionRewardTable(), RewardInput{
		Category:   CategoryPush,
		Difficulty: DifficultyBeginner,
		Name:       "Push-up",
		Sets:       1,
	})
	if r.XP != 10 || r.Coins != 2 {
		t.Fatalf("got xp=%d coins=%d, want 10/2", r.XP, r.Coins)
	}
	if r.PerAxisXPDelta[AxisStrength] != 10 {
		t.Fatalf("strength delta=%v", r.PerAxisXPDelta[AxisStrength])
	}
	if len(r.PerAxisXPDelta) != len(Axes) {
		t.Fatalf("delta map has %d axes", len(r.PerAxisXPDelta))
	}
}

func TestComputeRewardsTable(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name      string
		table     RewardTable
		in        RewardInput
		wantXP    int
		wantCoins int
		primary   Axis
	}{
		{
			name:      "axis preset credits secondaries",
			table:     AxisRewardTable(),
			in:        RewardInput{Category: CategoryPush, Difficulty: DifficultyIntermediate},
			wantXP:    70,
			wantCoins: 7,
			primary:   AxisStrength,
		},
		{
			name:      "multiplier clamps to 2",
			table:     AxisRewardTable(),
			in:        RewardInput{Category: CategoryCore, Difficulty: DifficultyBeginner, PerformanceMultiplier: 5},
			wantXP:    70,
			wantCoins: 7,
			primary:   AxisCore,
		},
		{
			name:      "multiplier clamps to 0.5",
			table:     AxisRewardTable(),
			in:        RewardInput{Category: CategoryMobility, Difficulty: DifficultyExpert, PerformanceMultiplier: 0.1},
			wantXP:    100,
			wantCoins: 10,
			primary:   AxisMobility,
		},
		{
			name:      "session rank and sets",
			table:     SessionRewardTable(),
			in:        RewardInput{Category: CategoryPull, Difficulty: DifficultyIntermediate, Rank: RankS, Sets: 3},
			wantXP:    79,
			wantCoins: 16,
			primary:   AxisStrength,
		},
		{
			name:      "statics trains static holds",
			table:     AxisRewardTable(),
			in:        RewardInput{Category: CategoryStatics, Difficulty: DifficultyAdvanced},
			wantXP:    180,
			wantCoins: 18,
			primary:   AxisStaticHolds,
		},
		{
			name:      "unknown difficulty falls back to beginner",
			table:     SessionRewardTable(),
			in:        RewardInput{Category: CategoryCardio, Difficulty: "LEGENDARY"},
			wantXP:    10,
			wantCoins: 2,
			primary:   AxisEndurance,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := ComputeRewards(tc.table, tc.in)
			if r.XP != tc.wantXP || r.Coins != tc.wantCoins {
				t.Fatalf("got xp=%d coins=%d, want %d/%d", r.XP, r.Coins, tc.wantXP, tc.wantCoins)
			}
			if r.Attribution.Primary != tc.primary {
				t.Fatalf("primary=%s want %s", r.Attribution.Primary, tc.primary)
			}
			if int(sumDeltas(r)) != r.XP {
				t.Fatalf("deltas %v do not sum to xp %d", r.PerAxisXPDelta, r.XP)
			}
		})
	}
}

func TestRewardsAreWholeNumbersForAnyMultiplier(t *testing.T) {
	t.Parallel()
	for _, table := range []RewardTable{AxisRewardTable(), SessionRewardTable()} {
		for _, d := range Difficulties {
			for _, m := range []float64{-1, 0, 0.37, 0.5, 0.999, 1.333, 1.77, 2, 9} {
				r := ComputeRewards(table, RewardInput{Category: CategoryBalance, Difficulty: d, Rank: RankB, PerformanceMultiplier: m, Sets: 2})
				if r.XP < 0 || r.Coins < 0 {
					t.Fatalf("negative reward: %+v", r)
				}
				if float64(r.XP) != sumDeltas(r) {
					t.Fatalf("%s/%s/%v: xp %d vs deltas %v", table.Name, d, m, r.XP, sumDeltas(r))
				}
			}
		}
	}
}

func TestClassifyFallbackChain(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		category Category
		muscles  []string
		exercise string
		want     Axis
		source   string
	}{
		{"category wins", CategoryPull, []string{"quads"}, "Squat", AxisStrength, SourceCategory},
		{"muscle group", "", []string{"Lower Back"}, "Superman", AxisCore, SourceMuscleGroup},
		{"name regex", "", nil, "Burpee Sprint", AxisEndurance, SourceName},
		{"name regex statics", "", nil, "Tuck Front Lever", AxisStaticHolds, SourceName},
		{"default axis", "", nil, "Mystery move", DefaultAxis, SourceDefault},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := Classify(tc.category, tc.muscles, tc.exercise)
			if m.Primary != tc.want || m.Source != tc.source {
				t.Fatalf("Classify=%+v want %s via %s", m, tc.want, tc.source)
			}
		})
	}
}

func TestPerformanceMultiplier(t *testing.T) {
	t.Parallel()
	if got := PerformanceMultiplier(5, 10); got != 0.5 {
		t.Fatalf("half=%v", got)
	}
	if got := PerformanceMultiplier(30, 10); got != 2 {
		t.Fatalf("capped=%v", got)
	}
	if got := PerformanceMultiplier(12, 0); got != 1 {
		t.Fatalf("no expectation=%v", got)
	}
}

func TestRewardTableByName(t *testing.T) {
	t.Parallel()
	if tb, err := RewardTableByName(""); err != nil || tb.Name != PresetSession {
		t.Fatalf("default preset: %v %v", tb.Name, err)
	}
	if tb, err := RewardTableByName("AXIS"); err != nil || tb.Name != PresetAxis {
		t.Fatalf("axis preset: %v %v", tb.Name, err)
	}
	if _, err := RewardTableByName("bogus"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTotalsSumsResults(t *testing.T) {
	t.Parallel()
	a := ComputeRewards(AxisRewardTable(), RewardInput{Category: CategoryPush, Difficulty: DifficultyBeginner})
	b := ComputeRewards(AxisRewardTable(), RewardInput{Category: CategoryCore, Difficulty: DifficultyBeginner})
	tot := Totals([]RewardResult{a, b})
	if tot.XP != a.XP+b.XP || tot.Coins != a.Coins+b.Coins {
		t.Fatalf("totals=%+v", tot)
	}
	if tot.PerAxisXPDelta[AxisStrength] != 25 || tot.PerAxisXPDelta[AxisCore] != 25 {
		t.Fatalf("axis totals=%v", tot.PerAxisXPDelta)
	}
}
