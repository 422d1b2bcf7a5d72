/*
Package profile defines the canonical fitness profile extracted from a
free-text self-description, together with the unit normalization and BMI
derivation that every profile goes through at construction time.
*/
package profile

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

/* =================================================================================
							ENUMERATIONS
=================================================================================*/

// Gender is the self-reported gender of the user.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// FitnessLevel is the self-reported training experience.
type FitnessLevel string

const (
	FitnessBeginner     FitnessLevel = "beginner"
	FitnessIntermediate FitnessLevel = "intermediate"
	FitnessAdvanced     FitnessLevel = "advanced"
)

// ActivityLevel is the self-reported daily activity.
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtraActive      ActivityLevel = "extra_active"
)

// Label returns the spoken form of the level ("lightly active").
func (a ActivityLevel) Label() string {
	return strings.ReplaceAll(string(a), "_", " ")
}

// BMICategory buckets a body-mass index.
type BMICategory string

const (
	BMIUnderweight BMICategory = "underweight"
	BMINormal      BMICategory = "normal"
	BMIOverweight  BMICategory = "overweight"
	BMIObese       BMICategory = "obese"
)

/* =================================================================================
							FITNESS PROFILE
=================================================================================*/

// Plausible ranges. Values outside are kept but produce a warning.
const (
	MinAge    = 1
	MaxAge    = 120
	MinWeight = 20.0
	MaxWeight = 500.0
	MinHeight = 50.0
	MaxHeight = 300.0
)

// FitnessProfile is the structured record built from one input text.
// Numeric fields are always metric (kg, cm) or nil.
type FitnessProfile struct {
	Age           *int          `json:"age,omitempty"`
	WeightKg      *float64      `json:"weight_kg,omitempty"`
	HeightCm      *float64      `json:"height_cm,omitempty"`
	BMI           *float64      `json:"bmi,omitempty"`
	BMICategory   BMICategory   `json:"bmi_category,omitempty"`
	FitnessLevel  FitnessLevel  `json:"fitness_level,omitempty"`
	ActivityLevel ActivityLevel `json:"activity_level,omitempty"`
	Gender        Gender        `json:"gender,omitempty"`
	Goals         GoalSet       `json:"goals,omitempty"`

	NutritionPreferences string   `json:"nutrition_preferences,omitempty"`
	SchedulePreferences  string   `json:"schedule_preferences,omitempty"`
	MedicalConditions    []string `json:"medical_conditions,omitempty"`
	EquipmentAvailable   []string `json:"equipment_available,omitempty"`

	// Warnings holds the range checks that failed during New.
	Warnings []string `json:"-"`
}

// New finalizes a draft profile: it records range warnings and back-fills the
// BMI and its category when weight and height are known and no BMI was given.
// The draft is copied; callers keep ownership of their slices.
func New(draft FitnessProfile) FitnessProfile {
	p := draft
	p.Goals = draft.Goals.Clone()
	p.MedicalConditions = cloneStrings(draft.MedicalConditions)
	p.EquipmentAvailable = cloneStrings(draft.EquipmentAvailable)
	p.Warnings = validateRanges(p)

	for _, w := range p.Warnings {
		log.Warn().Str("component", "profile").Msg(w)
	}

	if p.BMI == nil && p.WeightKg != nil && p.HeightCm != nil && *p.HeightCm > 0 {
		bmi := BMI(*p.WeightKg, *p.HeightCm)
		p.BMI = &bmi
	}
	if p.BMI != nil && p.BMICategory == "" {
		p.BMICategory = CategorizeBMI(*p.BMI)
	}

	return p
}

// validateRanges reports every numeric field outside its plausible range.
func validateRanges(p FitnessProfile) []string {
	var warnings []string
	if p.Age != nil && (*p.Age < MinAge || *p.Age > MaxAge) {
		warnings = append(warnings, fmt.Sprintf("unusual age value: %d", *p.Age))
	}
	if p.WeightKg != nil && (*p.WeightKg < MinWeight || *p.WeightKg > MaxWeight) {
		warnings = append(warnings, fmt.Sprintf("unusual weight value: %gkg", *p.WeightKg))
	}
	if p.HeightCm != nil && (*p.HeightCm < MinHeight || *p.HeightCm > MaxHeight) {
		warnings = append(warnings, fmt.Sprintf("unusual height value: %gcm", *p.HeightCm))
	}
	return warnings
}

// IsEmpty reports whether no field at all was recognized.
func (p FitnessProfile) IsEmpty() bool {
	return p.Age == nil && p.WeightKg == nil && p.HeightCm == nil && p.BMI == nil &&
		p.FitnessLevel == "" && p.ActivityLevel == "" && p.Gender == "" &&
		p.Goals.Len() == 0 && p.NutritionPreferences == "" && p.SchedulePreferences == "" &&
		len(p.MedicalConditions) == 0 && len(p.EquipmentAvailable) == 0
}

// IntPtr and FloatPtr build optional fields.
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
