package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcast/internal/profile"
)

func TestAge(t *testing.T) {
	cases := []struct {
		text string
		want int
		ok   bool
	}{
		{"I am 25 years old", 25, true},
		{"Age: 30", 30, true},
		{"I'm 22 yrs old", 22, true},
		{"35 years old", 35, true},
		{"I am 150 years old", 0, false},
		{"I am 3 years old", 3, true},
		{"aged 41, still going", 41, true},
		{"coding for 12 years", 12, true},
		{"25yo, lifting twice a week", 25, true},
		{"I'm 31 yo", 31, true},
		{"I do 3 yoga classes a week", 0, false},
		{"5 youtube workouts, 44 yo", 44, true},
		{"no numbers here", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, ok := Age(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAgeFirstPatternWins(t *testing.T) {
	// the "years old" pattern is tried before "age N"
	got, ok := Age("age 30, well, 25 years old really")
	require.True(t, ok)
	assert.Equal(t, 25, got)

	got, ok = Age("I'm 25, I'm 30, I'm 35 years old")
	require.True(t, ok)
	assert.Equal(t, 35, got)
}

func TestWeight(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"I weigh 70kg", 70.0},
		{"Weight: 150 lbs", 68.0},
		{"I weigh 75.5 kilograms", 75.5},
		{"weigh 180 pounds", 81.6},
		{"weighing 140 lbs", 63.5},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, ok := Weight(tc.text)
			require.True(t, ok)
			assert.InDelta(t, tc.want, got, 0.05)
		})
	}
}

func TestWeightOutOfRange(t *testing.T) {
	_, ok := Weight("I weigh 1000kg")
	assert.False(t, ok)

	_, ok = Weight("a 10 lb bag of rice")
	assert.False(t, ok)
}

func TestHeight(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{`I am 5'10" tall`, 177.8},
		{"I am 175cm tall", 175.0},
		{"Height: 6 feet 2 inches", 187.96},
		{"180 centimeters", 180.0},
		{"I am 1.75m", 175.0},
		{"6 ft 0 in", 182.88},
		{"1m75cm", 175.0},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, ok := Height(tc.text)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHeightAbsent(t *testing.T) {
	_, ok := Height("I run 5 miles a day")
	assert.False(t, ok)
}

func TestGender(t *testing.T) {
	cases := map[string]profile.Gender{
		"I am male":    profile.GenderMale,
		"I am a woman": profile.GenderFemale,
		"I'm a man":    profile.GenderMale,
		"Female here":  profile.GenderFemale,
		"I am a girl":  profile.GenderFemale,
		"I'm a boy":    profile.GenderMale,
	}
	for text, want := range cases {
		got, ok := GenderOf(text)
		require.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}

	_, ok := GenderOf("manage my human resources")
	assert.False(t, ok)
}

func TestGenderLeftmostWins(t *testing.T) {
	got, ok := GenderOf("a woman who trains with a man")
	require.True(t, ok)
	assert.Equal(t, profile.GenderFemale, got)
}

func TestLevels(t *testing.T) {
	fitness := map[string]profile.FitnessLevel{
		"I am a beginner":          profile.FitnessBeginner,
		"I'm intermediate level":   profile.FitnessIntermediate,
		"I am an ADVANCED athlete": profile.FitnessAdvanced,
	}
	for text, want := range fitness {
		got, ok := FitnessLevelOf(text)
		require.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}

	activity := map[string]profile.ActivityLevel{
		"I am sedentary":         profile.ActivitySedentary,
		"I'm lightly active":     profile.ActivityLightlyActive,
		"I am moderately active": profile.ActivityModeratelyActive,
		"I'm very active":        profile.ActivityVeryActive,
		"I am extra_active":      profile.ActivityExtraActive,
	}
	for text, want := range activity {
		got, ok := ActivityLevelOf(text)
		require.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}
}

func TestGoals(t *testing.T) {
	cases := []struct {
		text string
		want []profile.Goal
	}{
		{"I want to lose weight", []profile.Goal{profile.GoalWeightLoss}},
		{"My goal is to build muscle", []profile.Goal{profile.GoalMuscleBuilding}},
		{"I want to improve my endurance", []profile.Goal{profile.GoalEndurance}},
		{"I want to get stronger", []profile.Goal{profile.GoalStrength}},
		{"I want flexibility and fat loss", []profile.Goal{profile.GoalFlexibility, profile.GoalWeightLoss}},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, ok := Goals(tc.text)
			require.True(t, ok)
			assert.ElementsMatch(t, tc.want, got.Sorted())
		})
	}

	_, ok := Goals("nothing relevant")
	assert.False(t, ok)
}

func TestExtractComprehensive(t *testing.T) {
	text := `I am a 28 year old female, 5'6" tall, weighing 140 lbs. I am a beginner, very active, and want to lose weight and build muscle.`
	p := New().Extract(text)

	require.NotNil(t, p.Age)
	assert.Equal(t, 28, *p.Age)
	assert.Equal(t, profile.GenderFemale, p.Gender)
	assert.Equal(t, 167.64, *p.HeightCm)
	assert.InDelta(t, 63.5, *p.WeightKg, 0.05)
	assert.Equal(t, profile.FitnessBeginner, p.FitnessLevel)
	assert.Equal(t, profile.ActivityVeryActive, p.ActivityLevel)
	assert.Equal(t, "muscle_building,weight_loss", p.Goals.String())
	require.NotNil(t, p.BMI)
	assert.Equal(t, profile.BMINormal, p.BMICategory)
}

func TestExtractBMI(t *testing.T) {
	cases := map[string]float64{
		"I am 175cm and weigh 70kg": 22.9,
		"I'm 180cm, 80kg":           24.7,
		`5'10" tall, 150 lbs`:       21.5,
	}
	for text, want := range cases {
		p := New().Extract(text)
		require.NotNil(t, p.BMI, text)
		assert.Equal(t, want, *p.BMI, text)
	}
}

func TestExtractIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Random text with no fitness info",
		"I am years old and weigh kg",
		"I am -5 years old and weigh 1000kg",
		"!@#$%^&*()_+ random symbols 123",
		"age 25 years old age 30 weight 70kg weight 80kg",
	}
	ex := New()
	for _, in := range inputs {
		assert.NotPanics(t, func() { ex.Extract(in) }, in)
	}

	assert.True(t, ex.Extract("").IsEmpty())
	assert.True(t, ex.Extract("   ").IsEmpty())

	dup := ex.Extract("age 25 years old age 30 weight 70kg weight 80kg")
	assert.Equal(t, 25, *dup.Age)
	assert.Equal(t, 70.0, *dup.WeightKg)
}

func TestExtractIsIdempotent(t *testing.T) {
	text := "Male athlete, 24 years old, 6'2\", 185 pounds, advanced fitness level, extra active, building muscle and improving endurance"
	ex := New()
	assert.Equal(t, ex.Extract(text), ex.Extract(text))
}

func TestExtractWithExtras(t *testing.T) {
	p := New().ExtractWith("I am 30 years old", Extras{
		NutritionPreferences: " vegetarian ",
		SchedulePreferences:  "mornings",
		EquipmentAvailable:   []string{"dumbbells", " ", "mat"},
	})

	assert.Equal(t, "vegetarian", p.NutritionPreferences)
	assert.Equal(t, "mornings", p.SchedulePreferences)
	assert.Equal(t, []string{"dumbbells", "mat"}, p.EquipmentAvailable)
	assert.Nil(t, p.MedicalConditions)
}

func TestExtractBatchKeepsOrder(t *testing.T) {
	texts := []string{
		"I am 25, male, 70kg",
		"Female, 30 years old, wants to lose weight",
		`Beginner, 5'8", very active`,
	}
	ex := &Extractor{BatchLimit: 2}

	got, err := ex.ExtractBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, profile.GenderMale, got[0].Gender)
	assert.Equal(t, 70.0, *got[0].WeightKg)
	assert.Equal(t, 30, *got[1].Age)
	assert.True(t, got[1].Goals.Has(profile.GoalWeightLoss))
	assert.Equal(t, 172.72, *got[2].HeightCm)
}

func TestExtractBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ExtractBatch(ctx, []string{"I am 25 years old"})
	assert.ErrorIs(t, err, context.Canceled)
}
