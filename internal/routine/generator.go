// Package routine builds a day's workout from the exercise catalog and a
// user's hexagon profile.
package routine

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/yungbote/calisthenics-backend/internal/catalog"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
	"github.com/yungbote/calisthenics-backend/internal/progression"
)

type Phase string

const (
	PhaseWarmup        Phase = "WARMUP"
	PhaseSkillPractice Phase = "SKILL_PRACTICE"
	PhaseStrength      Phase = "STRENGTH"
	PhaseCooldown      Phase = "COOLDOWN"
)

var phaseWeights = []struct {
	phase  Phase
	weight float64
}{
	{PhaseWarmup, 0.15},
	{PhaseSkillPractice, 0.25},
	{PhaseStrength, 0.45},
	{PhaseCooldown, 0.15},
}

// Durations are the supported session lengths in minutes.
var Durations = []int{15, 30, 45, 60}

func ValidDuration(minutes int) bool {
	for _, d := range Durations {
		if d == minutes {
			return true
		}
	}
	return false
}

// Fallback per-set time for an exercise with neither reps nor seconds.
const defaultSetSeconds = 30

type Params struct {
	Profile         progression.Profile
	TargetSkill     string
	Goals           []string
	Equipment       []string
	DurationMinutes int
	FocusAreas      []progression.Axis
	// Seed > 0 shuffles candidates of equal priority.
	Seed    int64
	Rewards progression.RewardTable
}

type Exercise struct {
	ExerciseID       string                 `json:"exerciseId"`
	Name             string                 `json:"name"`
	Category         progression.Category   `json:"category"`
	Difficulty       progression.Difficulty `json:"difficulty"`
	Axis             progression.Axis       `json:"axis"`
	Sets             int                    `json:"sets"`
	Reps             int                    `json:"reps,omitempty"`
	Seconds          int                    `json:"duration,omitempty"`
	RestSeconds      int                    `json:"restSeconds"`
	EstimatedSeconds int                    `json:"estimatedSeconds"`
	IsSkill          bool                   `json:"isSkill,omitempty"`
}

type Block struct {
	Phase            Phase      `json:"phase"`
	Exercises        []Exercise `json:"exercises"`
	BudgetSeconds    int        `json:"budgetSeconds"`
	EstimatedSeconds int        `json:"estimatedSeconds"`
}

type Routine struct {
	Phases           []Block            `json:"phases"`
	TotalDuration    int                `json:"totalDuration"`
	EstimatedSeconds int                `json:"estimatedSeconds"`
	EstimatedXP      int                `json:"estimatedXP"`
	EstimatedCoins   int                `json:"estimatedCoins"`
	Difficulty       progression.Level  `json:"difficulty"`
	FocusAreas       []progression.Axis `json:"focusAreas"`
}

// EstimateSeconds is sets × (work + rest), where work is the hold time,
// two seconds per rep, or a flat 30 seconds.
func EstimateSeconds(e catalog.Exercise) int {
	sets := e.DefaultSets
	if sets <= 0 {
		sets = 1
	}
	work := defaultSetSeconds
	switch {
	case e.Unit == catalog.UnitSeconds && e.DefaultSeconds > 0:
		work = e.DefaultSeconds
	case e.DefaultReps > 0:
		work = e.DefaultReps * 2
	}
	return sets * (work + e.RestSeconds)
}

func fitsPhase(ph Phase, e catalog.Exercise) bool {
	switch ph {
	case PhaseWarmup:
		return e.Category == progression.CategoryWarmUp || e.Category == progression.CategoryMobility
	case PhaseCooldown:
		return e.Category == progression.CategoryFlexibility || e.Category == progression.CategoryMobility
	case PhaseSkillPractice:
		return e.Category == progression.CategoryBalance || e.Category == progression.CategoryStatics
	case PhaseStrength:
		switch e.Category {
		case progression.CategoryPush, progression.CategoryPull, progression.CategoryCore,
			progression.CategoryStrength, progression.CategoryLowerBody, progression.CategoryLegs,
			progression.CategoryCardio:
			return true
		}
	}
	return false
}

// allowedBand is the highest difficulty band a user may get for an axis:
// the axis level, plus one once the axis is halfway through its band.
func allowedBand(st progression.AxisState) int {
	idx := st.Level.Index()
	inBand := (st.VisualValue - 2.5*float64(idx)) / 2.5
	if inBand >= 0.5 {
		idx++
	}
	return idx
}

// Priority orders axes for selection: explicit focus areas, then goals that
// name an axis, then the remaining axes weakest first.
func Priority(p Params) []progression.Axis {
	seen := map[progression.Axis]bool{}
	var out []progression.Axis
	add := func(a progression.Axis) {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	for _, a := range p.FocusAreas {
		add(a)
	}
	for _, g := range p.Goals {
		if a, ok := progression.ParseAxis(g); ok {
			add(a)
		}
	}
	for _, a := range progression.WeakestAxes(p.Profile) {
		add(a)
	}
	return out
}

type candidate struct {
	ex   catalog.Exercise
	axis progression.Axis
	rank int
	est  int
}

// Generate builds a routine. An empty candidate pool yields an empty phase,
// never an error; only an unsupported duration is rejected.
func Generate(p Params, exercises []catalog.Exercise) (Routine, error) {
	if !ValidDuration(p.DurationMinutes) {
		return Routine{}, fmt.Errorf("%w: duration must be one of %v minutes", pkgerrors.ErrInvalidArgument, Durations)
	}
	table := p.Rewards
	if table.Name == "" {
		table = progression.SessionRewardTable()
	}

	have := map[string]bool{}
	for _, e := range catalog.NormalizeEquipment(p.Equipment) {
		have[e] = true
	}
	priority := Priority(p)
	rankOf := make(map[progression.Axis]int, len(priority))
	for i, a := range priority {
		rankOf[a] = i
	}
	target := strings.ToLower(strings.TrimSpace(p.TargetSkill))

	var pool []candidate
	for _, e := range exercises {
		if !e.NeedsOnly(have) {
			continue
		}
		m := e.Axes()
		if e.Difficulty.Band() > allowedBand(p.Profile.Axis(m.Primary)) {
			continue
		}
		r, ok := rankOf[m.Primary]
		if !ok {
			r = len(priority)
		}
		if target != "" && (e.ID == target || strings.ToLower(e.Name) == target) {
			r = -1
		}
		pool = append(pool, candidate{ex: e, axis: m.Primary, rank: r, est: EstimateSeconds(e)})
	}
	if p.Seed > 0 {
		rng := rand.New(rand.NewSource(p.Seed))
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].rank < pool[j].rank })

	budgetTotal := p.DurationMinutes * 60
	used := map[string]bool{}
	total, carry := 0, 0
	out := Routine{
		TotalDuration: p.DurationMinutes,
		Difficulty:    progression.OverallLevel(p.Profile),
	}
	for _, pw := range phaseWeights {
		budget := int(pw.weight*float64(budgetTotal)) + carry
		block := Block{Phase: pw.phase, Exercises: []Exercise{}, BudgetSeconds: budget}
		for _, c := range pool {
			if used[c.ex.ID] || !fitsPhase(pw.phase, c.ex) {
				continue
			}
			fits := block.EstimatedSeconds+c.est <= budget && total+c.est <= budgetTotal
			forced := len(block.Exercises) == 0 && total < budgetTotal
			if !fits && !forced {
				continue
			}
			used[c.ex.ID] = true
			block.Exercises = append(block.Exercises, toExercise(c))
			block.EstimatedSeconds += c.est
			total += c.est

			r := progression.ComputeRewards(table, progression.RewardInput{
				Category:     c.ex.Category,
				Difficulty:   c.ex.Difficulty,
				Name:         c.ex.Name,
				MuscleGroups: c.ex.MuscleGroups,
				Sets:         c.ex.DefaultSets,
			})
			out.EstimatedXP += r.XP
			out.EstimatedCoins += r.Coins
		}
		carry = budget - block.EstimatedSeconds
		out.Phases = append(out.Phases, block)
	}
	out.EstimatedSeconds = total

	if len(p.FocusAreas) > 0 {
		out.FocusAreas = append([]progression.Axis(nil), p.FocusAreas...)
	} else {
		out.FocusAreas = append([]progression.Axis(nil), priority[:2]...)
	}
	return out, nil
}

func toExercise(c candidate) Exercise {
	e := Exercise{
		ExerciseID:       c.ex.ID,
		Name:             c.ex.Name,
		Category:         c.ex.Category,
		Difficulty:       c.ex.Difficulty,
		Axis:             c.axis,
		Sets:             c.ex.DefaultSets,
		RestSeconds:      c.ex.RestSeconds,
		EstimatedSeconds: c.est,
		IsSkill:          c.ex.IsSkill,
	}
	if c.ex.Unit == catalog.UnitSeconds {
		e.Seconds = c.ex.DefaultSeconds
	} else {
		e.Reps = c.ex.DefaultReps
	}
	return e
}
