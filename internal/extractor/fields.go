package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"healthcast/internal/profile"
)

/* =================================================================================
							PATTERN TABLES
	Every table is ordered. The first pattern that matches anywhere in the text
	wins; within one pattern the leftmost occurrence wins.
=================================================================================*/

var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*(?:years?\s*old|yrs?\s*old|yo\b)`),
	regexp.MustCompile(`(?i)(?:age|aged?)[:\s]*(\d+)`),
	regexp.MustCompile(`(?i)\b(\d+)\s*(?:years?|yrs?)\b`),
}

type weightUnit int

const (
	unitKilograms weightUnit = iota
	unitPounds
)

type weightPattern struct {
	re   *regexp.Regexp
	unit weightUnit
}

var weightPatterns = []weightPattern{
	{regexp.MustCompile(`(?i)(?:weight|weigh)\s*(\d+(?:\.\d+)?)\s*(?:kg|kilograms?)`), unitKilograms},
	{regexp.MustCompile(`(?i)(?:weight|weigh)\s*(\d+(?:\.\d+)?)\s*(?:lbs?|pounds?)`), unitPounds},
	{regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:kg|kilograms?)\b`), unitKilograms},
	{regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:lbs?|pounds?)\b`), unitPounds},
}

// heightRule names how the captured groups of a height pattern become cm.
type heightRule int

const (
	ruleFeetInches heightRule = iota
	ruleMetersDot
	ruleBareCm
	ruleMetersAndCm
)

type heightPattern struct {
	re   *regexp.Regexp
	rule heightRule
}

var heightPatterns = []heightPattern{
	{regexp.MustCompile(`(\d+)'(\d+)"`), ruleFeetInches},
	{regexp.MustCompile(`(?i)(\d+)\s*(?:feet|ft)\s*(\d+)\s*(?:inches?|in)`), ruleFeetInches},
	{regexp.MustCompile(`(?i)(\d+\.\d+)\s*(?:m|meters?)\b`), ruleMetersDot},
	{regexp.MustCompile(`(?i)\b(\d+)\s*(?:cm|centimeters?)\b`), ruleBareCm},
	{regexp.MustCompile(`(?i)(?:height|tall)[:\s]*(\d+)\s*(?:cm|centimeters?)`), ruleBareCm},
	{regexp.MustCompile(`(?i)(\d+)\s*(?:m|meters?)\s*(\d+)\s*(?:cm|centimeters?)`), ruleMetersAndCm},
}

// term maps a phrase (regexp fragment) to a canonical value.
type term[T ~string] struct {
	phrase string
	value  T
}

// termMatcher matches the leftmost whole-word phrase of an ordered table.
type termMatcher[T ~string] struct {
	re    *regexp.Regexp
	terms []term[T]
	exact []*regexp.Regexp
}

func newTermMatcher[T ~string](terms []term[T]) termMatcher[T] {
	phrases := make([]string, len(terms))
	exact := make([]*regexp.Regexp, len(terms))
	for i, t := range terms {
		phrases[i] = t.phrase
		exact[i] = regexp.MustCompile(`(?i)^(?:` + t.phrase + `)$`)
	}
	return termMatcher[T]{
		re:    regexp.MustCompile(`(?i)\b(` + strings.Join(phrases, "|") + `)\b`),
		terms: terms,
		exact: exact,
	}
}

// canonical resolves a matched phrase back to its table entry.
func (m termMatcher[T]) canonical(found string) (T, bool) {
	for i, t := range m.terms {
		if m.exact[i].MatchString(found) {
			return t.value, true
		}
	}
	var zero T
	return zero, false
}

func (m termMatcher[T]) first(text string) (T, bool) {
	found := m.re.FindStringSubmatch(text)
	if found == nil {
		var zero T
		return zero, false
	}
	return m.canonical(found[1])
}

func (m termMatcher[T]) all(text string) []T {
	var out []T
	for _, found := range m.re.FindAllStringSubmatch(text, -1) {
		if v, ok := m.canonical(found[1]); ok {
			out = append(out, v)
		}
	}
	return out
}

var genderMatcher = newTermMatcher([]term[profile.Gender]{
	{"male", profile.GenderMale},
	{"female", profile.GenderFemale},
	{"man", profile.GenderMale},
	{"boy", profile.GenderMale},
	{"woman", profile.GenderFemale},
	{"girl", profile.GenderFemale},
})

var fitnessLevelMatcher = newTermMatcher([]term[profile.FitnessLevel]{
	{"beginner", profile.FitnessBeginner},
	{"intermediate", profile.FitnessIntermediate},
	{"advanced", profile.FitnessAdvanced},
})

var activityLevelMatcher = newTermMatcher([]term[profile.ActivityLevel]{
	{"sedentary", profile.ActivitySedentary},
	{"lightly[ _]active", profile.ActivityLightlyActive},
	{"moderately[ _]active", profile.ActivityModeratelyActive},
	{"very[ _]active", profile.ActivityVeryActive},
	{"extra[ _]active", profile.ActivityExtraActive},
})

var goalMatcher = newTermMatcher([]term[profile.Goal]{
	{"lose weight", profile.GoalWeightLoss},
	{"weight loss", profile.GoalWeightLoss},
	{"fat loss", profile.GoalWeightLoss},
	{"slim down", profile.GoalWeightLoss},
	{"muscle building", profile.GoalMuscleBuilding},
	{"build muscle", profile.GoalMuscleBuilding},
	{"gain muscle", profile.GoalMuscleBuilding},
	{"muscle gain", profile.GoalMuscleBuilding},
	{"bulking", profile.GoalMuscleBuilding},
	{"endurance", profile.GoalEndurance},
	{"cardio", profile.GoalEndurance},
	{"stamina", profile.GoalEndurance},
	{"cardiovascular", profile.GoalEndurance},
	{"flexibility", profile.GoalFlexibility},
	{"stretching", profile.GoalFlexibility},
	{"mobility", profile.GoalFlexibility},
	{"general fitness", profile.GoalGeneralFitness},
	{"overall fitness", profile.GoalGeneralFitness},
	{"get fit", profile.GoalGeneralFitness},
	{"fitness", profile.GoalGeneralFitness},
	{"strength", profile.GoalStrength},
	{"get strong", profile.GoalStrength},
	{"get stronger", profile.GoalStrength},
	{"power", profile.GoalStrength},
})

/* =================================================================================
							FIELD EXTRACTORS
=================================================================================*/

// Age returns the first age mention, accepted only within 1..120.
func Age(text string) (int, bool) {
	for _, re := range agePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		age, err := strconv.Atoi(m[1])
		if err != nil || age < profile.MinAge || age > profile.MaxAge {
			return 0, false
		}
		return age, true
	}
	return 0, false
}

// Weight returns the first weight mention in kg, accepted only within 20..500.
func Weight(text string) (float64, bool) {
	for _, p := range weightPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		weight, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		if p.unit == unitPounds {
			weight = profile.PoundsToKg(weight)
		}
		if weight < profile.MinWeight || weight > profile.MaxWeight {
			return 0, false
		}
		return profile.Round(weight, 1), true
	}
	return 0, false
}

// Height returns the first height mention converted to cm.
func Height(text string) (float64, bool) {
	for _, p := range heightPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		values := make([]float64, 0, 2)
		for _, group := range m[1:] {
			v, err := strconv.ParseFloat(group, 64)
			if err != nil {
				return 0, false
			}
			values = append(values, v)
		}
		return convertHeight(p.rule, values), true
	}
	return 0, false
}

func convertHeight(rule heightRule, v []float64) float64 {
	switch rule {
	case ruleFeetInches:
		return profile.FeetInchesToCm(v[0], v[1])
	case ruleMetersDot:
		return profile.MetersToCm(v[0])
	case ruleMetersAndCm:
		return profile.MetersAndCmToCm(v[0], v[1])
	default:
		return v[0]
	}
}

// GenderOf returns the first gender word or alias in the text.
func GenderOf(text string) (profile.Gender, bool) {
	return genderMatcher.first(text)
}

// FitnessLevelOf returns the first fitness level named in the text.
func FitnessLevelOf(text string) (profile.FitnessLevel, bool) {
	return fitnessLevelMatcher.first(text)
}

// ActivityLevelOf returns the first activity level named in the text.
func ActivityLevelOf(text string) (profile.ActivityLevel, bool) {
	return activityLevelMatcher.first(text)
}

// Goals returns every goal mentioned anywhere in the text.
func Goals(text string) (profile.GoalSet, bool) {
	found := goalMatcher.all(text)
	if len(found) == 0 {
		return nil, false
	}
	return profile.NewGoalSet(found...), true
}
