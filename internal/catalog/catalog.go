// Package catalog loads the bundled exercise and achievement data. The
// catalog is read once at startup and never mutated afterwards.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/calisthenics-backend/internal/progression"
)

//go:embed exercises.json
var exercisesJSON []byte

//go:embed achievements.yaml
var achievementsYAML []byte

type Unit string

const (
	UnitReps    Unit = "reps"
	UnitSeconds Unit = "seconds"
)

// Equipment names. An exercise with no equipment needs none.
const (
	EquipmentNone            = "NONE"
	EquipmentPullUpBar       = "PULL_UP_BAR"
	EquipmentParallelBars    = "PARALLEL_BARS"
	EquipmentRings           = "RINGS"
	EquipmentResistanceBands = "RESISTANCE_BANDS"
)

var knownEquipment = map[string]bool{
	EquipmentNone:            true,
	EquipmentPullUpBar:       true,
	EquipmentParallelBars:    true,
	EquipmentRings:           true,
	EquipmentResistanceBands: true,
}

// NormalizeEquipment upper-cases names and drops NONE and duplicates.
func NormalizeEquipment(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, e := range in {
		k := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(e, "-", "_")))
		k = strings.ReplaceAll(k, " ", "_")
		if k == "" || k == EquipmentNone || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

type Exercise struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Category       progression.Category   `json:"category"`
	Difficulty     progression.Difficulty `json:"difficulty"`
	Unit           Unit                   `json:"unit"`
	MuscleGroups   []string               `json:"muscleGroups"`
	Equipment      []string               `json:"equipment"`
	DefaultSets    int                    `json:"defaultSets"`
	DefaultReps    int                    `json:"defaultReps,omitempty"`
	DefaultSeconds int                    `json:"defaultSeconds,omitempty"`
	RestSeconds    int                    `json:"restSeconds"`
	ExpReward      int                    `json:"expReward"`
	CoinsReward    int                    `json:"coinsReward"`
	IsSkill        bool                   `json:"isSkill,omitempty"`
	Branch         string                 `json:"branch,omitempty"`
	Prerequisites  []string               `json:"prerequisites,omitempty"`
	Instructions   []string               `json:"instructions,omitempty"`
	MediaURL       string                 `json:"mediaUrl,omitempty"`
}

// Axes returns the hexagon attribution for the exercise.
func (e Exercise) Axes() progression.AxisMapping {
	return progression.Classify(e.Category, e.MuscleGroups, e.Name)
}

// NeedsOnly reports whether every piece of equipment e needs is in have.
func (e Exercise) NeedsOnly(have map[string]bool) bool {
	for _, eq := range e.Equipment {
		if !have[eq] {
			return false
		}
	}
	return true
}

type Catalog struct {
	exercises    []Exercise
	byID         map[string]int
	achievements []progression.Achievement
	chains       []progression.Chain
}

type achievementsFile struct {
	Achievements []progression.Achievement `yaml:"achievements"`
	Chains       []progression.Chain       `yaml:"chains"`
}

// Load parses the embedded data.
func Load() (*Catalog, error) {
	return Parse(exercisesJSON, achievementsYAML)
}

// Parse builds a catalog from raw exercise JSON and achievement YAML and
// validates it.
func Parse(exercises, achievements []byte) (*Catalog, error) {
	var ex []Exercise
	if err := json.Unmarshal(exercises, &ex); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}
	var af achievementsFile
	if err := yaml.Unmarshal(achievements, &af); err != nil {
		return nil, fmt.Errorf("decode achievements: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(ex))}
	for i := range ex {
		e, err := normalize(ex[i])
		if err != nil {
			return nil, err
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("exercise %s: duplicate id", e.ID)
		}
		c.byID[e.ID] = len(c.exercises)
		c.exercises = append(c.exercises, e)
	}
	for _, e := range c.exercises {
		for _, p := range e.Prerequisites {
			if _, ok := c.byID[p]; !ok {
				return nil, fmt.Errorf("exercise %s: unknown prerequisite %q", e.ID, p)
			}
		}
	}

	keys := map[string]bool{}
	all := append(af.Achievements, progression.StreakMilestoneAchievements()...)
	for _, a := range all {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if keys[a.Key] {
			return nil, fmt.Errorf("achievement %s: duplicate key", a.Key)
		}
		keys[a.Key] = true
	}
	c.achievements = all

	for i := range af.Chains {
		ch := af.Chains[i]
		if ch.Category != "" {
			cat, _ := progression.ParseCategory(string(ch.Category))
			ch.Category = cat
		}
		if err := ch.Validate(); err != nil {
			return nil, err
		}
		c.chains = append(c.chains, ch)
	}
	return c, nil
}

func normalize(e Exercise) (Exercise, error) {
	if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" {
		return e, errors.New("exercise without id or name")
	}
	cat, ok := progression.ParseCategory(string(e.Category))
	if !ok {
		return e, fmt.Errorf("exercise %s: unknown category %q", e.ID, e.Category)
	}
	e.Category = cat
	diff, ok := progression.ParseDifficulty(string(e.Difficulty))
	if !ok {
		return e, fmt.Errorf("exercise %s: unknown difficulty %q", e.ID, e.Difficulty)
	}
	e.Difficulty = diff
	switch e.Unit {
	case UnitReps, UnitSeconds:
	default:
		return e, fmt.Errorf("exercise %s: unknown unit %q", e.ID, e.Unit)
	}
	for _, eq := range e.Equipment {
		if !knownEquipment[eq] {
			return e, fmt.Errorf("exercise %s: unknown equipment %q", e.ID, eq)
		}
	}
	e.Equipment = NormalizeEquipment(e.Equipment)
	if e.DefaultSets <= 0 {
		e.DefaultSets = 1
	}
	if e.RestSeconds < 0 {
		return e, fmt.Errorf("exercise %s: negative rest", e.ID)
	}
	if e.IsSkill && e.Branch == "" {
		return e, fmt.Errorf("exercise %s: skill without branch", e.ID)
	}
	return e, nil
}

// Exercises returns the exercises in catalog order.
func (c *Catalog) Exercises() []Exercise {
	return append([]Exercise(nil), c.exercises...)
}

func (c *Catalog) Exercise(id string) (Exercise, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Exercise{}, false
	}
	return c.exercises[i], true
}

// FindByName resolves a free-text exercise name case-insensitively.
func (c *Catalog) FindByName(name string) (Exercise, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, e := range c.exercises {
		if strings.ToLower(e.Name) == n || e.ID == n {
			return e, true
		}
	}
	return Exercise{}, false
}

// Skills returns the skill exercises in catalog order.
func (c *Catalog) Skills() []Exercise {
	var out []Exercise
	for _, e := range c.exercises {
		if e.IsSkill {
			out = append(out, e)
		}
	}
	return out
}

// BranchTotals counts skills per branch.
func (c *Catalog) BranchTotals() map[string]int {
	out := map[string]int{}
	for _, e := range c.exercises {
		if e.IsSkill {
			out[e.Branch]++
		}
	}
	return out
}

func (c *Catalog) Achievements() []progression.Achievement {
	return append([]progression.Achievement(nil), c.achievements...)
}

func (c *Catalog) Achievement(key string) (progression.Achievement, bool) {
	for _, a := range c.achievements {
		if a.Key == key {
			return a, true
		}
	}
	return progression.Achievement{}, false
}

func (c *Catalog) Chains() []progression.Chain {
	return append([]progression.Chain(nil), c.chains...)
}
