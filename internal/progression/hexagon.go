// Package progression holds the pure gamification rules: hexagon axes and
// levels, reward tables, streaks, achievements, missions and user levels.
// Nothing here touches storage; services feed it rows and persist the result.
package progression

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type Axis string

const (
	AxisBalance     Axis = "balance"
	AxisStrength    Axis = "strength"
	AxisStaticHolds Axis = "staticHolds"
	AxisCore        Axis = "core"
	AxisEndurance   Axis = "endurance"
	AxisMobility    Axis = "mobility"
)

// Axes lists every hexagon axis in display order.
var Axes = []Axis{AxisBalance, AxisStrength, AxisStaticHolds, AxisCore, AxisEndurance, AxisMobility}

// legacyAxes maps the pre-unification axis names onto the current ones.
var legacyAxes = map[string]Axis{
	"relativestrength":  AxisStrength,
	"muscularendurance": AxisEndurance,
	"balancecontrol":    AxisBalance,
	"jointmobility":     AxisMobility,
	"bodytension":       AxisCore,
	"skilltechnique":    AxisStaticHolds,
}

// ParseAxis accepts current and legacy axis names, case-insensitively.
func ParseAxis(raw string) (Axis, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	for _, a := range Axes {
		if strings.ToLower(string(a)) == key {
			return a, true
		}
	}
	if a, ok := legacyAxes[key]; ok {
		return a, true
	}
	return "", false
}

type Level string

const (
	LevelBeginner     Level = "BEGINNER"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelAdvanced     Level = "ADVANCED"
	LevelElite        Level = "ELITE"
)

var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelElite}

// Index is the band position of the level, 0 for BEGINNER.
func (l Level) Index() int {
	for i, lv := range Levels {
		if lv == l {
			return i
		}
	}
	return 0
}

func ParseLevel(raw string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BEGINNER", "PRINCIPIANTE":
		return LevelBeginner, true
	case "INTERMEDIATE", "INTERMEDIO", "NOVATO":
		return LevelIntermediate, true
	case "ADVANCED", "AVANZADO":
		return LevelAdvanced, true
	case "ELITE", "EXPERT", "EXPERTO":
		return LevelElite, true
	}
	return "", false
}

const (
	bandWidth      = 2.5
	maxVisualValue = 10.0
	// eliteCeilingXP stands in for ELITE's open upper bound when interpolating.
	eliteCeilingXP = 1_000_000.0
)

type levelBand struct {
	level Level
	minXP float64
	maxXP float64
	base  float64
}

var levelBands = []levelBand{
	{LevelBeginner, 0, 48_000, 0},
	{LevelIntermediate, 48_000, 144_000, 2.5},
	{LevelAdvanced, 144_000, 384_000, 5.0},
	{LevelElite, 384_000, eliteCeilingXP, 7.5},
}

func bandFor(level Level) levelBand {
	return levelBands[level.Index()]
}

// LevelFromXP is a step function over the fixed band thresholds. Negative
// or NaN XP lands in BEGINNER.
func LevelFromXP(xp float64) Level {
	for i := len(levelBands) - 1; i >= 0; i-- {
		if xp >= levelBands[i].minXP {
			return levelBands[i].level
		}
	}
	return LevelBeginner
}

// VisualValueFromXP interpolates xp inside the band of level onto [0,10].
// The top of one band and the bottom of the next yield the same value.
func VisualValueFromXP(xp float64, level Level) float64 {
	b := bandFor(level)
	progress := clamp01((xp - b.minXP) / (b.maxXP - b.minXP))
	return clamp(b.base+progress*bandWidth, 0, maxVisualValue)
}

// XPForVisualValue inverts VisualValueFromXP on the canonical bands.
func XPForVisualValue(v float64) float64 {
	v = clamp(v, 0, maxVisualValue)
	idx := int(v / bandWidth)
	if idx >= len(levelBands) {
		idx = len(levelBands) - 1
	}
	b := levelBands[idx]
	progress := (v - b.base) / bandWidth
	return b.minXP + progress*(b.maxXP-b.minXP)
}

// XPToNextLevel is the XP remaining until the next band, 0 at ELITE.
func XPToNextLevel(xp float64) float64 {
	idx := LevelFromXP(xp).Index()
	if idx == len(levelBands)-1 {
		return 0
	}
	return math.Max(0, levelBands[idx+1].minXP-xp)
}

// LevelProgress is the rounded percentage through the current band.
func LevelProgress(xp float64) int {
	b := bandFor(LevelFromXP(xp))
	return int(math.Round(clamp01((xp-b.minXP)/(b.maxXP-b.minXP)) * 100))
}

// FormatXP renders xp compactly, e.g. 1234 -> "1.2k".
func FormatXP(xp float64) string {
	switch {
	case xp >= 1_000_000:
		return fmt.Sprintf("%.1fM", xp/1_000_000)
	case xp >= 1_000:
		return fmt.Sprintf("%.1fk", xp/1_000)
	default:
		return fmt.Sprintf("%d", int(math.Round(xp)))
	}
}

type AxisState struct {
	XP          float64 `json:"xp"`
	Level       Level   `json:"level"`
	VisualValue float64 `json:"visualValue"`
}

// DeriveAxis builds the axis triple from its only independent field.
func DeriveAxis(xp float64) AxisState {
	lvl := LevelFromXP(xp)
	return AxisState{XP: xp, Level: lvl, VisualValue: VisualValueFromXP(xp, lvl)}
}

// Profile is the six-axis hexagon. It is a value type; the mutators return
// a modified copy.
type Profile struct {
	Balance     AxisState `json:"balance"`
	Strength    AxisState `json:"strength"`
	StaticHolds AxisState `json:"staticHolds"`
	Core        AxisState `json:"core"`
	Endurance   AxisState `json:"endurance"`
	Mobility    AxisState `json:"mobility"`
}

// NewProfile derives a profile from per-axis XP; missing axes start at zero.
func NewProfile(xp map[Axis]float64) Profile {
	var p Profile
	for _, a := range Axes {
		*p.ref(a) = DeriveAxis(xp[a])
	}
	return p
}

func (p *Profile) ref(a Axis) *AxisState {
	switch a {
	case AxisBalance:
		return &p.Balance
	case AxisStrength:
		return &p.Strength
	case AxisStaticHolds:
		return &p.StaticHolds
	case AxisCore:
		return &p.Core
	case AxisEndurance:
		return &p.Endurance
	case AxisMobility:
		return &p.Mobility
	}
	return nil
}

func (p Profile) Axis(a Axis) AxisState {
	if s := p.ref(a); s != nil {
		return *s
	}
	return AxisState{Level: LevelBeginner}
}

// XP returns the per-axis XP map.
func (p Profile) XP() map[Axis]float64 {
	out := make(map[Axis]float64, len(Axes))
	for _, a := range Axes {
		out[a] = p.Axis(a).XP
	}
	return out
}

// ApplyXPDelta adds delta to one axis and re-derives that axis only.
// Unknown axes leave the profile unchanged.
func ApplyXPDelta(p Profile, a Axis, delta float64) Profile {
	s := p.ref(a)
	if s == nil {
		return p
	}
	*s = DeriveAxis(s.XP + delta)
	return p
}

// ApplyDeltas applies every entry of deltas through ApplyXPDelta.
func ApplyDeltas(p Profile, deltas map[Axis]float64) Profile {
	for _, a := range Axes {
		if d, ok := deltas[a]; ok && d != 0 {
			p = ApplyXPDelta(p, a, d)
		}
	}
	return p
}

// Recalculate re-derives all axes from their XP.
func Recalculate(p Profile) Profile {
	for _, a := range Axes {
		s := p.ref(a)
		*s = DeriveAxis(s.XP)
	}
	return p
}

// OverallLevel is the most common axis level; ties go to the higher level.
func OverallLevel(p Profile) Level {
	counts := make([]int, len(Levels))
	for _, a := range Axes {
		counts[p.Axis(a).Level.Index()]++
	}
	best := 0
	for i := range counts {
		if counts[i] >= counts[best] {
			best = i
		}
	}
	return Levels[best]
}

// AverageVisual is the mean visual value across the six axes.
func AverageVisual(p Profile) float64 {
	var sum float64
	for _, a := range Axes {
		sum += p.Axis(a).VisualValue
	}
	return sum / float64(len(Axes))
}

// WeakestAxes orders axes by ascending XP, stable on display order.
func WeakestAxes(p Profile) []Axis {
	out := append([]Axis(nil), Axes...)
	sort.SliceStable(out, func(i, j int) bool { return p.Axis(out[i]).XP < p.Axis(out[j]).XP })
	return out
}

// MigrateLegacy converts old 0–10 axis values keyed by legacy names into a
// profile, preferring explicit legacy XP ("<name>XP") when present. ok is
// false when no key names a legacy axis.
func MigrateLegacy(values map[string]float64) (Profile, bool) {
	xp := map[Axis]float64{}
	for name, v := range values {
		key := strings.ToLower(name)
		if strings.HasSuffix(key, "xp") {
			if a, ok := legacyAxes[strings.TrimSuffix(key, "xp")]; ok {
				xp[a] = v
			}
		}
	}
	for name, v := range values {
		a, ok := legacyAxes[strings.ToLower(name)]
		if !ok {
			continue
		}
		if _, explicit := xp[a]; !explicit {
			xp[a] = XPForVisualValue(v)
		}
	}
	return NewProfile(xp), len(xp) > 0
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
