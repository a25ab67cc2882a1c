package progression

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestLevelFromXPBands(t *testing.T) {
	t.Parallel()
	cases := []struct {
		xp   float64
		want Level
	}{
		{-5, LevelBeginner},
		{0, LevelBeginner},
		{47_999.9, LevelBeginner},
		{48_000, LevelIntermediate},
		{143_999, LevelIntermediate},
		{144_000, LevelAdvanced},
		{384_000, LevelElite},
		{5_000_000, LevelElite},
		{math.NaN(), LevelBeginner},
	}
	for _, tc := range cases {
		if got := LevelFromXP(tc.xp); got != tc.want {
			t.Fatalf("LevelFromXP(%v)=%s want %s", tc.xp, got, tc.want)
		}
	}
}

func TestVisualValueContinuousAtBandEdges(t *testing.T) {
	t.Parallel()
	for i := 1; i < len(levelBands); i++ {
		edge := levelBands[i].minXP
		below := VisualValueFromXP(edge, levelBands[i-1].level)
		above := VisualValueFromXP(edge, levelBands[i].level)
		if !approxEqual(below, above) {
			t.Fatalf("discontinuity at %v: %v vs %v", edge, below, above)
		}
	}
}

func TestVisualValueMonotonicAndBounded(t *testing.T) {
	t.Parallel()
	prev := -1.0
	for xp := -1000.0; xp <= 1_200_000; xp += 997 {
		st := DeriveAxis(xp)
		if st.VisualValue < prev {
			t.Fatalf("visual value decreased at xp=%v: %v < %v", xp, st.VisualValue, prev)
		}
		if st.VisualValue < 0 || st.VisualValue > 10 {
			t.Fatalf("visual value out of range at xp=%v: %v", xp, st.VisualValue)
		}
		prev = st.VisualValue
	}
}

func TestXPForVisualValueInvertsMapping(t *testing.T) {
	t.Parallel()
	for _, v := range []float64{0, 1, 2.5, 4, 5, 6.5, 7.5, 9, 10} {
		xp := XPForVisualValue(v)
		got := VisualValueFromXP(xp, LevelFromXP(xp))
		if !approxEqual(got, v) {
			t.Fatalf("round trip of %v gave %v (xp=%v)", v, got, xp)
		}
	}
}

func TestApplyXPDeltaTouchesOneAxis(t *testing.T) {
	t.Parallel()
	p := NewProfile(map[Axis]float64{AxisStrength: 1000, AxisCore: 50_000, AxisMobility: 200_000})
	q := ApplyXPDelta(p, AxisStrength, 47_500.5)

	if !approxEqual(q.Strength.XP, 48_500.5) || q.Strength.Level != LevelIntermediate {
		t.Fatalf("strength not updated: %+v", q.Strength)
	}
	for _, a := range Axes {
		if a == AxisStrength {
			continue
		}
		if q.Axis(a) != p.Axis(a) {
			t.Fatalf("axis %s changed: %+v -> %+v", a, p.Axis(a), q.Axis(a))
		}
	}
	if p.Strength.XP != 1000 {
		t.Fatalf("input profile mutated: %+v", p.Strength)
	}
}

func TestApplyXPDeltaNegativeClampsLevel(t *testing.T) {
	t.Parallel()
	q := ApplyXPDelta(NewProfile(nil), AxisBalance, -100)
	if q.Balance.Level != LevelBeginner || q.Balance.VisualValue != 0 {
		t.Fatalf("unexpected axis: %+v", q.Balance)
	}
}

func TestOverallLevelTiesGoHigher(t *testing.T) {
	t.Parallel()
	if got := OverallLevel(NewProfile(nil)); got != LevelBeginner {
		t.Fatalf("zero profile: %s", got)
	}
	p := NewProfile(map[Axis]float64{AxisBalance: 50_000, AxisStrength: 50_000, AxisCore: 50_000})
	if got := OverallLevel(p); got != LevelIntermediate {
		t.Fatalf("3/3 split: %s", got)
	}
}

func TestWeakestAxesStableOrder(t *testing.T) {
	t.Parallel()
	p := NewProfile(map[Axis]float64{AxisStrength: 10, AxisBalance: 5})
	got := WeakestAxes(p)
	want := []Axis{AxisStaticHolds, AxisCore, AxisEndurance, AxisMobility, AxisBalance, AxisStrength}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("WeakestAxes=%v want %v", got, want)
		}
	}
}

func TestHexagonHelpers(t *testing.T) {
	t.Parallel()
	if got := FormatXP(1234); got != "1.2k" {
		t.Fatalf("FormatXP(1234)=%q", got)
	}
	if got := FormatXP(999); got != "999" {
		t.Fatalf("FormatXP(999)=%q", got)
	}
	if got := FormatXP(2_500_000); got != "2.5M" {
		t.Fatalf("FormatXP(2.5M)=%q", got)
	}
	if got := XPToNextLevel(40_000); got != 8_000 {
		t.Fatalf("XPToNextLevel=%v", got)
	}
	if got := XPToNextLevel(500_000); got != 0 {
		t.Fatalf("XPToNextLevel at ELITE=%v", got)
	}
	if got := LevelProgress(24_000); got != 50 {
		t.Fatalf("LevelProgress=%d", got)
	}
}

func TestMigrateLegacy(t *testing.T) {
	t.Parallel()
	p, ok := MigrateLegacy(map[string]float64{
		"relativeStrength":   5,
		"bodyTension":        2,
		"balanceControlXP":   1234,
		"balanceControl":     9,
		"somethingUnrelated": 3,
	})
	if !ok {
		t.Fatalf("legacy keys not recognised")
	}
	if !approxEqual(p.Strength.XP, 144_000) {
		t.Fatalf("strength xp=%v", p.Strength.XP)
	}
	if !approxEqual(p.Core.XP, 38_400) {
		t.Fatalf("core xp=%v", p.Core.XP)
	}
	if p.Balance.XP != 1234 {
		t.Fatalf("explicit legacy XP ignored: %v", p.Balance.XP)
	}
}

func TestMigrateLegacyWithoutLegacyKeys(t *testing.T) {
	t.Parallel()
	p, ok := MigrateLegacy(map[string]float64{"strength": 5, "whatever": 1})
	if ok {
		t.Fatalf("current axis names are not legacy keys")
	}
	if p.Strength.XP != 0 {
		t.Fatalf("unexpected xp: %v", p.Strength.XP)
	}
}

func TestParseAxis(t *testing.T) {
	t.Parallel()
	cases := map[string]Axis{
		"strength":          AxisStrength,
		"STATIC_HOLDS":      AxisStaticHolds,
		"muscularEndurance": AxisEndurance,
		"joint-mobility":    AxisMobility,
	}
	for in, want := range cases {
		got, ok := ParseAxis(in)
		if !ok || got != want {
			t.Fatalf("ParseAxis(%q)=%q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseAxis("speed"); ok {
		t.Fatalf("unknown axis accepted")
	}
}
