package progression

import "math"

// AssessmentScores are self-reported branch scores on a 1–4 scale.
type AssessmentScores struct {
	Push      float64 `json:"push" binding:"required,min=1,max=4"`
	Pull      float64 `json:"pull" binding:"required,min=1,max=4"`
	Core      float64 `json:"core" binding:"required,min=1,max=4"`
	Balance   float64 `json:"balance" binding:"required,min=1,max=4"`
	LowerBody float64 `json:"lowerBody" binding:"required,min=1,max=4"`
	Statics   float64 `json:"statics" binding:"required,min=1,max=4"`
}

var scoreVisuals = []struct{ score, visual float64 }{
	{1, 2.0}, {1.5, 3.0}, {2, 4.0}, {2.5, 5.0}, {3, 6.5}, {3.5, 7.5}, {4, 9.0},
}

// ScoreToVisual maps an averaged branch score onto the 0–10 visual scale.
// Off-grid scores scale linearly.
func ScoreToVisual(score float64) float64 {
	for _, sv := range scoreVisuals {
		if math.Abs(score-sv.score) < 1e-9 {
			return sv.visual
		}
	}
	return clamp(score*2.25, 0, maxVisualValue)
}

// InitialProfile seeds a hexagon from assessment scores. Each axis blends
// the two branches that exercise it.
func InitialProfile(s AssessmentScores) Profile {
	pairs := map[Axis][2]float64{
		AxisStrength:    {s.Push, s.Pull},
		AxisEndurance:   {s.Push, s.Core},
		AxisBalance:     {s.Balance, s.Core},
		AxisMobility:    {s.LowerBody, s.Balance},
		AxisCore:        {s.Core, s.Statics},
		AxisStaticHolds: {s.Statics, s.Balance},
	}
	xp := make(map[Axis]float64, len(Axes))
	for a, p := range pairs {
		xp[a] = XPForVisualValue(ScoreToVisual((p[0] + p[1]) / 2))
	}
	return NewProfile(xp)
}

// FitnessLevelFromScores buckets the mean branch score.
func FitnessLevelFromScores(s AssessmentScores) Level {
	mean := (s.Push + s.Pull + s.Core + s.Balance + s.LowerBody + s.Statics) / 6
	switch {
	case mean < 1.75:
		return LevelBeginner
	case mean < 2.5:
		return LevelIntermediate
	case mean < 3.25:
		return LevelAdvanced
	default:
		return LevelElite
	}
}
