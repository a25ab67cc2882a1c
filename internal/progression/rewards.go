package progression

import (
	"fmt"
	"math"
	"strings"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
	DifficultyExpert       Difficulty = "EXPERT"
)

var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert}

// ParseDifficulty accepts the English enum, ELITE, and the Spanish labels
// used by older clients.
func ParseDifficulty(raw string) (Difficulty, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BEGINNER", "PRINCIPIANTE":
		return DifficultyBeginner, true
	case "INTERMEDIATE", "INTERMEDIO", "NOVATO":
		return DifficultyIntermediate, true
	case "ADVANCED", "AVANZADO":
		return DifficultyAdvanced, true
	case "EXPERT", "EXPERTO", "ELITE":
		return DifficultyExpert, true
	}
	return "", false
}

// Band is the 0-based tier, comparable with Level.Index.
func (d Difficulty) Band() int {
	for i, v := range Difficulties {
		if v == d {
			return i
		}
	}
	return 0
}

// RewardTable is one reward formula. The two historical formulas are kept
// as presets; which one is in force is configuration.
type RewardTable struct {
	Name           string
	PrimaryXP      map[Difficulty]float64
	SecondaryXP    map[Difficulty]float64
	RankMultiplier map[Rank]float64
	CoinDivisor    float64
	MinMultiplier  float64
	MaxMultiplier  float64
	// ScaleBySets multiplies the base by the number of sets performed.
	ScaleBySets bool
}

const (
	PresetAxis    = "axis"
	PresetSession = "session"
)

// AxisRewardTable credits a primary axis and its secondaries per exercise.
func AxisRewardTable() RewardTable {
	return RewardTable{
		Name: PresetAxis,
		PrimaryXP: map[Difficulty]float64{
			DifficultyBeginner: 25, DifficultyIntermediate: 50, DifficultyAdvanced: 100, DifficultyExpert: 200,
		},
		SecondaryXP: map[Difficulty]float64{
			DifficultyBeginner: 10, DifficultyIntermediate: 20, DifficultyAdvanced: 40, DifficultyExpert: 80,
		},
		CoinDivisor:   10,
		MinMultiplier: 0.5,
		MaxMultiplier: 2.0,
	}
}

// SessionRewardTable scales a small base by sets and letter rank.
func SessionRewardTable() RewardTable {
	return RewardTable{
		Name: PresetSession,
		PrimaryXP: map[Difficulty]float64{
			DifficultyBeginner: 10, DifficultyIntermediate: 15, DifficultyAdvanced: 20, DifficultyExpert: 25,
		},
		RankMultiplier: map[Rank]float64{
			RankD: 1.0, RankC: 1.1, RankB: 1.25, RankA: 1.5, RankS: 1.75,
		},
		CoinDivisor:   5,
		MinMultiplier: 0.5,
		MaxMultiplier: 2.0,
		ScaleBySets:   true,
	}
}

// RewardTableByName resolves a preset name.
func RewardTableByName(name string) (RewardTable, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PresetSession:
		return SessionRewardTable(), nil
	case PresetAxis:
		return AxisRewardTable(), nil
	}
	return RewardTable{}, fmt.Errorf("unknown reward preset %q", name)
}

type RewardInput struct {
	Category     Category
	Difficulty   Difficulty
	Rank         Rank
	Name         string
	MuscleGroups []string
	// PerformanceMultiplier <= 0 means "not measured" and counts as 1.
	PerformanceMultiplier float64
	Sets                  int
}

type RewardResult struct {
	XP             int              `json:"xpTotal"`
	Coins          int              `json:"coinsTotal"`
	PerAxisXPDelta map[Axis]float64 `json:"perAxisXpDelta"`
	Attribution    AxisMapping      `json:"attribution"`
}

// ComputeRewards applies table to a single exercise. XP and coins are
// integers and the delta map always carries all six axes.
func ComputeRewards(table RewardTable, in RewardInput) RewardResult {
	diff := in.Difficulty
	if _, ok := table.PrimaryXP[diff]; !ok {
		diff = DifficultyBeginner
	}
	mult := table.clampMultiplier(in.PerformanceMultiplier) * table.rankMultiplier(in.Rank)
	volume := 1.0
	if table.ScaleBySets && in.Sets > 0 {
		volume = float64(in.Sets)
	}

	mapping := Classify(in.Category, in.MuscleGroups, in.Name)
	deltas := make(map[Axis]float64, len(Axes))
	for _, a := range Axes {
		deltas[a] = 0
	}

	primary := math.Round(table.PrimaryXP[diff] * mult * volume)
	deltas[mapping.Primary] += primary
	total := primary
	for _, sec := range mapping.Secondary {
		xp := math.Round(table.SecondaryXP[diff] * mult * volume)
		deltas[sec] += xp
		total += xp
	}

	return RewardResult{
		XP:             int(total),
		Coins:          table.coinsFor(int(total)),
		PerAxisXPDelta: deltas,
		Attribution:    mapping,
	}
}

func (t RewardTable) coinsFor(xp int) int {
	if t.CoinDivisor <= 0 {
		return 0
	}
	return int(math.Round(float64(xp) / t.CoinDivisor))
}

func (t RewardTable) clampMultiplier(m float64) float64 {
	if m <= 0 || math.IsNaN(m) {
		return 1
	}
	lo, hi := t.MinMultiplier, t.MaxMultiplier
	if lo <= 0 {
		lo = 0.5
	}
	if hi <= 0 {
		hi = 2.0
	}
	return clamp(m, lo, hi)
}

func (t RewardTable) rankMultiplier(r Rank) float64 {
	if m, ok := t.RankMultiplier[r]; ok {
		return m
	}
	return 1
}

// PerformanceMultiplier compares actual against expected volume, clamped
// to [0.5, 2]; without an expectation it is neutral.
func PerformanceMultiplier(actual, expected float64) float64 {
	if expected <= 0 {
		return 1
	}
	return clamp(actual/expected, 0.5, 2.0)
}

// Totals sums several reward results.
func Totals(results []RewardResult) RewardResult {
	out := RewardResult{PerAxisXPDelta: make(map[Axis]float64, len(Axes))}
	for _, a := range Axes {
		out.PerAxisXPDelta[a] = 0
	}
	for _, r := range results {
		out.XP += r.XP
		out.Coins += r.Coins
		for a, d := range r.PerAxisXPDelta {
			out.PerAxisXPDelta[a] += d
		}
	}
	return out
}

var sessionBaseXP = map[Level]float64{
	LevelBeginner: 50, LevelIntermediate: 75, LevelAdvanced: 100, LevelElite: 150,
}

// SessionXP credits a logged session that has no per-exercise detail.
func SessionXP(level Level, durationMinutes int) int {
	if durationMinutes <= 0 {
		return 0
	}
	base, ok := sessionBaseXP[level]
	if !ok {
		base = sessionBaseXP[LevelBeginner]
	}
	return int(math.Round(base * float64(durationMinutes) / 24))
}
