package progression

import "strings"

type Rank string

const (
	RankD Rank = "D"
	RankC Rank = "C"
	RankB Rank = "B"
	RankA Rank = "A"
	RankS Rank = "S"
)

func ParseRank(raw string) (Rank, bool) {
	switch r := Rank(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RankD, RankC, RankB, RankA, RankS:
		return r, true
	}
	return "", false
}

// RankFromScore buckets a 0–100 score into letter ranks.
func RankFromScore(score float64) Rank {
	switch {
	case score < 25:
		return RankD
	case score < 45:
		return RankC
	case score < 65:
		return RankB
	case score < 85:
		return RankA
	default:
		return RankS
	}
}

// ProfileRank ranks a hexagon by its mean visual value.
func ProfileRank(p Profile) Rank {
	return RankFromScore(AverageVisual(p) * 10)
}
