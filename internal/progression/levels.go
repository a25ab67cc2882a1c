package progression

import "math"

// UserLevel is one rung of the account-wide level ladder driven by total XP.
type UserLevel struct {
	Level      int    `json:"level"`
	Title      string `json:"title"`
	MinXP      int    `json:"minXP"`
	CoinReward int    `json:"coinReward"`
}

var userLevels = []UserLevel{
	{1, "Novato", 0, 0},
	{2, "Aprendiz", 100, 50},
	{3, "Atleta Novato", 250, 75},
	{4, "Guerrero en Entrenamiento", 500, 100},
	{5, "Atleta Intermedio", 1000, 150},
	{6, "Veterano", 2000, 200},
	{7, "Experto", 3500, 300},
	{8, "Maestro", 5500, 400},
	{9, "Gran Maestro", 8000, 600},
	{10, "Leyenda", 12000, 1000},
	{11, "Semidiós", 17000, 1500},
	{12, "Dios del Olimpo", 25000, 2500},
}

func UserLevels() []UserLevel { return append([]UserLevel(nil), userLevels...) }

type LevelInfo struct {
	Current         UserLevel  `json:"current"`
	Next            *UserLevel `json:"next,omitempty"`
	ProgressToNext  int        `json:"progressToNext"`
	XPInLevel       int        `json:"xpInLevel"`
	XPNeededForNext int        `json:"xpNeededForNext"`
}

// CalculateLevel places totalXP on the level ladder.
func CalculateLevel(totalXP int) LevelInfo {
	idx := 0
	for i := len(userLevels) - 1; i >= 0; i-- {
		if totalXP >= userLevels[i].MinXP {
			idx = i
			break
		}
	}
	cur := userLevels[idx]
	info := LevelInfo{Current: cur, XPInLevel: totalXP - cur.MinXP, ProgressToNext: 100}
	if idx < len(userLevels)-1 {
		next := userLevels[idx+1]
		info.Next = &next
		info.XPNeededForNext = next.MinXP - totalXP
		span := float64(next.MinXP - cur.MinXP)
		info.ProgressToNext = int(math.Round(math.Min(float64(info.XPInLevel)/span*100, 100)))
	}
	return info
}

type LevelUp struct {
	From        int `json:"from"`
	To          int `json:"to"`
	CoinsEarned int `json:"coinsEarned"`
}

// CheckLevelUp reports a level change between oldLevel and the level for
// newTotalXP, summing the coin rewards of every level crossed.
func CheckLevelUp(oldLevel, newTotalXP int) (LevelUp, bool) {
	newLevel := CalculateLevel(newTotalXP).Current.Level
	if newLevel <= oldLevel {
		return LevelUp{From: oldLevel, To: oldLevel}, false
	}
	up := LevelUp{From: oldLevel, To: newLevel}
	for _, l := range userLevels {
		if l.Level > oldLevel && l.Level <= newLevel {
			up.CoinsEarned += l.CoinReward
		}
	}
	return up, true
}
