package progress

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/calisthenics-backend/internal/domain/user"
	"github.com/yungbote/calisthenics-backend/internal/progression"
	"gorm.io/gorm"
)

// HexagonProfile stores the six axes flat: xp is authoritative, level and
// visual are derived copies kept for reads.
type HexagonProfile struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	BalanceXP     float64 `gorm:"column:balance_xp;not null;default:0" json:"balance_xp"`
	BalanceLevel  string  `gorm:"column:balance_level;not null;default:'BEGINNER'" json:"balance_level"`
	BalanceVisual float64 `gorm:"column:balance_visual;not null;default:0" json:"balance_visual"`

	StrengthXP     float64 `gorm:"column:strength_xp;not null;default:0" json:"strength_xp"`
	StrengthLevel  string  `gorm:"column:strength_level;not null;default:'BEGINNER'" json:"strength_level"`
	StrengthVisual float64 `gorm:"column:strength_visual;not null;default:0" json:"strength_visual"`

	StaticHoldsXP     float64 `gorm:"column:static_holds_xp;not null;default:0" json:"static_holds_xp"`
	StaticHoldsLevel  string  `gorm:"column:static_holds_level;not null;default:'BEGINNER'" json:"static_holds_level"`
	StaticHoldsVisual float64 `gorm:"column:static_holds_visual;not null;default:0" json:"static_holds_visual"`

	CoreXP     float64 `gorm:"column:core_xp;not null;default:0" json:"core_xp"`
	CoreLevel  string  `gorm:"column:core_level;not null;default:'BEGINNER'" json:"core_level"`
	CoreVisual float64 `gorm:"column:core_visual;not null;default:0" json:"core_visual"`

	EnduranceXP     float64 `gorm:"column:endurance_xp;not null;default:0" json:"endurance_xp"`
	EnduranceLevel  string  `gorm:"column:endurance_level;not null;default:'BEGINNER'" json:"endurance_level"`
	EnduranceVisual float64 `gorm:"column:endurance_visual;not null;default:0" json:"endurance_visual"`

	MobilityXP     float64 `gorm:"column:mobility_xp;not null;default:0" json:"mobility_xp"`
	MobilityLevel  string  `gorm:"column:mobility_level;not null;default:'BEGINNER'" json:"mobility_level"`
	MobilityVisual float64 `gorm:"column:mobility_visual;not null;default:0" json:"mobility_visual"`

	// Version is bumped on every write.
	Version int64 `gorm:"column:version;not null;default:1" json:"version"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (HexagonProfile) TableName() string { return "hexagon_profile" }

var axisColumnPrefix = map[progression.Axis]string{
	progression.AxisBalance:     "balance",
	progression.AxisStrength:    "strength",
	progression.AxisStaticHolds: "static_holds",
	progression.AxisCore:        "core",
	progression.AxisEndurance:   "endurance",
	progression.AxisMobility:    "mobility",
}

// XPColumn returns the xp column for an axis, or "" for unknown axes.
func XPColumn(a progression.Axis) string {
	p, ok := axisColumnPrefix[a]
	if !ok {
		return ""
	}
	return p + "_xp"
}

// DerivedColumns returns the level/visual column values for p.
func DerivedColumns(p progression.Profile) map[string]interface{} {
	out := make(map[string]interface{}, 2*len(progression.Axes))
	for _, a := range progression.Axes {
		st := p.Axis(a)
		prefix := axisColumnPrefix[a]
		out[prefix+"_level"] = string(st.Level)
		out[prefix+"_visual"] = st.VisualValue
	}
	return out
}

func (h *HexagonProfile) fields() map[progression.Axis][3]interface{} {
	return map[progression.Axis][3]interface{}{
		progression.AxisBalance:     {&h.BalanceXP, &h.BalanceLevel, &h.BalanceVisual},
		progression.AxisStrength:    {&h.StrengthXP, &h.StrengthLevel, &h.StrengthVisual},
		progression.AxisStaticHolds: {&h.StaticHoldsXP, &h.StaticHoldsLevel, &h.StaticHoldsVisual},
		progression.AxisCore:        {&h.CoreXP, &h.CoreLevel, &h.CoreVisual},
		progression.AxisEndurance:   {&h.EnduranceXP, &h.EnduranceLevel, &h.EnduranceVisual},
		progression.AxisMobility:    {&h.MobilityXP, &h.MobilityLevel, &h.MobilityVisual},
	}
}

// Profile derives the hexagon from the stored xp columns. Stored level and
// visual columns are ignored.
func (h *HexagonProfile) Profile() progression.Profile {
	xp := make(map[progression.Axis]float64, len(progression.Axes))
	for a, f := range h.fields() {
		xp[a] = *f[0].(*float64)
	}
	return progression.NewProfile(xp)
}

// SetProfile copies every axis of p onto the row.
func (h *HexagonProfile) SetProfile(p progression.Profile) {
	for a, f := range h.fields() {
		st := p.Axis(a)
		*f[0].(*float64) = st.XP
		*f[1].(*string) = string(st.Level)
		*f[2].(*float64) = st.VisualValue
	}
}
