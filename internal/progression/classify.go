package progression

import (
	"regexp"
	"strings"
)

type Category string

const (
	CategoryPush        Category = "PUSH"
	CategoryPull        Category = "PULL"
	CategoryCore        Category = "CORE"
	CategoryBalance     Category = "BALANCE"
	CategoryStatics     Category = "STATICS"
	CategoryStrength    Category = "STRENGTH"
	CategoryLowerBody   Category = "LOWER_BODY"
	CategoryLegs        Category = "LEGS"
	CategoryCardio      Category = "CARDIO"
	CategoryWarmUp      Category = "WARM_UP"
	CategoryFlexibility Category = "FLEXIBILITY"
	CategoryMobility    Category = "MOBILITY"
)

var categories = []Category{
	CategoryPush, CategoryPull, CategoryCore, CategoryBalance, CategoryStatics, CategoryStrength,
	CategoryLowerBody, CategoryLegs, CategoryCardio, CategoryWarmUp, CategoryFlexibility, CategoryMobility,
}

func ParseCategory(raw string) (Category, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	for _, c := range categories {
		if string(c) == key {
			return c, true
		}
	}
	switch key {
	case "WARMUP":
		return CategoryWarmUp, true
	case "COOLDOWN", "COOL_DOWN", "STRETCH":
		return CategoryFlexibility, true
	case "EMPUJE":
		return CategoryPush, true
	case "TRACCION":
		return CategoryPull, true
	case "EQUILIBRIO":
		return CategoryBalance, true
	case "ESTATICOS":
		return CategoryStatics, true
	case "TREN_INFERIOR":
		return CategoryLowerBody, true
	}
	return "", false
}

// AxisMapping says which axes an exercise trains. Source records which
// rule produced it: category, muscle_group, name or default.
type AxisMapping struct {
	Primary   Axis   `json:"primary"`
	Secondary []Axis `json:"secondary,omitempty"`
	Source    string `json:"source"`
}

const (
	SourceCategory    = "category"
	SourceMuscleGroup = "muscle_group"
	SourceName        = "name"
	SourceDefault     = "default"
)

// DefaultAxis receives exercises no rule recognises.
const DefaultAxis = AxisEndurance

var categoryAxes = map[Category]AxisMapping{
	CategoryPush:        {Primary: AxisStrength, Secondary: []Axis{AxisStaticHolds}},
	CategoryPull:        {Primary: AxisStrength, Secondary: []Axis{AxisStaticHolds}},
	CategoryStrength:    {Primary: AxisStrength, Secondary: []Axis{AxisStaticHolds}},
	CategoryCore:        {Primary: AxisCore, Secondary: []Axis{AxisBalance}},
	CategoryBalance:     {Primary: AxisBalance, Secondary: []Axis{AxisStaticHolds, AxisCore}},
	CategoryStatics:     {Primary: AxisStaticHolds, Secondary: []Axis{AxisBalance, AxisCore}},
	CategoryLowerBody:   {Primary: AxisEndurance},
	CategoryLegs:        {Primary: AxisEndurance},
	CategoryCardio:      {Primary: AxisEndurance},
	CategoryWarmUp:      {Primary: AxisMobility},
	CategoryFlexibility: {Primary: AxisMobility},
	CategoryMobility:    {Primary: AxisMobility},
}

var muscleGroupAxes = map[string]Axis{
	"chest":      AxisStrength,
	"triceps":    AxisStrength,
	"biceps":     AxisStrength,
	"back":       AxisStrength,
	"lats":       AxisStrength,
	"shoulders":  AxisStrength,
	"forearms":   AxisStaticHolds,
	"wrists":     AxisStaticHolds,
	"abs":        AxisCore,
	"core":       AxisCore,
	"obliques":   AxisCore,
	"lower_back": AxisCore,
	"quads":      AxisEndurance,
	"hamstrings": AxisEndurance,
	"glutes":     AxisEndurance,
	"calves":     AxisEndurance,
	"legs":       AxisEndurance,
	"full_body":  AxisEndurance,
	"hips":       AxisMobility,
	"spine":      AxisMobility,
	"neck":       AxisMobility,
}

type nameRule struct {
	re       *regexp.Regexp
	category Category
}

// nameRules is the last-resort classifier for free-text exercise names.
var nameRules = []nameRule{
	{regexp.MustCompile(`push.*up|dip|press`), CategoryPush},
	{regexp.MustCompile(`pull.*up|row|chin.*up`), CategoryPull},
	{regexp.MustCompile(`plank|l-sit|hollow|crunch|sit.*up|leg.*raise|dragon`), CategoryCore},
	{regexp.MustCompile(`handstand|balance|crow|arabesque`), CategoryBalance},
	{regexp.MustCompile(`lever|planche|flag|iron.*cross`), CategoryStatics},
	{regexp.MustCompile(`squat|lunge|pistol|step.*up`), CategoryLowerBody},
	{regexp.MustCompile(`stretch|mobility|warm|dynamic|foam.*roll`), CategoryWarmUp},
	{regexp.MustCompile(`burpee|jumping|run|jog|sprint|mountain.*climber`), CategoryCardio},
}

// InferCategory guesses a category from an exercise name.
func InferCategory(name string) (Category, bool) {
	n := strings.ToLower(name)
	for _, r := range nameRules {
		if r.re.MatchString(n) {
			return r.category, true
		}
	}
	return "", false
}

var difficultyRules = []struct {
	re         *regexp.Regexp
	difficulty Difficulty
}{
	{regexp.MustCompile(`one.*arm|full.*planche|full.*front.*lever|freestanding|strict.*muscle.*up`), DifficultyExpert},
	{regexp.MustCompile(`straddle|tuck.*planche|adv.*tuck|archer|explosive|weighted`), DifficultyAdvanced},
	{regexp.MustCompile(`diamond|wide|close.*grip|l-sit|tuck.*lever|pike`), DifficultyIntermediate},
}

// InferDifficulty guesses a difficulty from an exercise name, BEGINNER otherwise.
func InferDifficulty(name string) Difficulty {
	n := strings.ToLower(name)
	for _, r := range difficultyRules {
		if r.re.MatchString(n) {
			return r.difficulty
		}
	}
	return DifficultyBeginner
}

// Classify resolves the axes an exercise trains from its declared category,
// then its muscle groups, then its name. It never returns an empty primary.
func Classify(category Category, muscleGroups []string, name string) AxisMapping {
	if m, ok := categoryAxes[category]; ok {
		m.Source = SourceCategory
		return m
	}
	for _, mg := range muscleGroups {
		key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(mg, " ", "_")))
		if a, ok := muscleGroupAxes[key]; ok {
			return AxisMapping{Primary: a, Source: SourceMuscleGroup}
		}
	}
	if c, ok := InferCategory(name); ok {
		m := categoryAxes[c]
		m.Source = SourceName
		return m
	}
	return AxisMapping{Primary: DefaultAxis, Source: SourceDefault}
}
