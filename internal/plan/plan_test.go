package plan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcast/internal/profile"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRenderScenario(t *testing.T) {
	p := profile.New(profile.FitnessProfile{
		Gender: profile.GenderFemale,
		Age:    profile.IntPtr(28),
		Goals:  profile.NewGoalSet(profile.GoalWeightLoss, profile.GoalMuscleBuilding),
	})
	meals := MealPlan{Meals: []MealSlot{{
		Meal:  "breakfast",
		Foods: []FoodPortion{{Food: "Oatmeal", Amount: "50g"}},
	}}}

	var workouts WorkoutPlan
	require.NoError(t, json.Unmarshal([]byte(`{"Monday":[{"exercise":"Push-ups","sets":3,"reps":15}]}`), &workouts))

	md, err := Render(p, meals, workouts)
	require.NoError(t, err)

	assert.Contains(t, md, "Hello female aged 28!")
	assert.Contains(t, md, "**muscle building, weight loss**")
	assert.Contains(t, md, "- Oatmeal (50g)")
	assert.Contains(t, md, "| Monday | Push-ups (3 sets x 15 reps) |")
	assert.Contains(t, md, "| Sunday | Rest |")
	assert.Contains(t, md, "#### Breakfast")
}

func TestRenderFallbacks(t *testing.T) {
	md, err := Render(profile.New(profile.FitnessProfile{}), MealPlan{}, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(md, "Hello there!\n\n"))
	assert.Contains(t, md, NoGoals)
	assert.Contains(t, md, NoSchedule)
	assert.Contains(t, md, NoNutrition)
	assert.NotContains(t, md, "None")
	assert.NotContains(t, md, "<nil>")
	assert.NotContains(t, md, "aged")
	assert.NotContains(t, md, "****")
}

func TestRenderSectionOrder(t *testing.T) {
	md, err := Render(profile.New(profile.FitnessProfile{}), MealPlan{}, nil)
	require.NoError(t, err)

	summary := strings.Index(md, "Follow this plan")
	workout := strings.Index(md, workoutTitle)
	meals := strings.Index(md, mealTitle)
	assert.True(t, summary < workout && workout < meals)

	var days []int
	for _, day := range Weekdays {
		days = append(days, strings.Index(md, "| "+day+" |"))
	}
	assert.IsIncreasing(t, days)
}

func TestRenderIsPure(t *testing.T) {
	p := profile.New(profile.FitnessProfile{
		SchedulePreferences:  "mornings",
		NutritionPreferences: "vegetarian",
	})
	meals := MealPlan{Meals: []MealSlot{{
		Meal:           "lunch",
		Recommended:    "Quinoa Bowl",
		MainConfidence: "71.20%",
		Foods:          []FoodPortion{{Food: "Quinoa", Amount: "100g"}},
		Alternatives: []Alternative{{
			Dish:       "Lentil Soup",
			Confidence: "18.40%",
			Foods:      []FoodPortion{{Food: "Lentils", Amount: "80g"}, {Food: "Carrot"}},
		}},
	}}}
	workouts := WorkoutPlan{"Tuesday": {{Name: "30 min brisk walk", Bare: true}}}

	first, err := Render(p, meals, workouts)
	require.NoError(t, err)
	second, err := Render(p, meals, workouts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Quinoa", meals.Meals[0].Foods[0].Food)
	assert.Contains(t, first, "**Recommended:** Quinoa Bowl (confidence 71.20%)")
	assert.Contains(t, first, "- Lentil Soup (18.40%): Lentils (80g), Carrot")
	assert.Contains(t, first, "| Tuesday | 30 min brisk walk |")
	assert.Contains(t, first, "schedule is **mornings**")
	assert.Contains(t, first, "(vegetarian)")
}

func TestExerciseString(t *testing.T) {
	cases := []struct {
		ex   Exercise
		want string
	}{
		{Exercise{Name: "Squats", Sets: "4", Reps: "8-12", Notes: "slow descent"}, "Squats (4 sets x 8-12 reps) - slow descent"},
		{Exercise{Name: "Plank", Sets: "3"}, "Plank (3 sets)"},
		{Exercise{Name: "Yoga flow"}, "Yoga flow"},
		{Exercise{Name: "Rest and stretch", Bare: true}, "Rest and stretch"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.ex.String())
	}
}

func TestRenderEscapesPipes(t *testing.T) {
	w := WorkoutPlan{"Friday": {{Name: "Run | walk", Bare: true}, {Name: "Lunges", Reps: "10"}}}
	md, err := Render(profile.New(profile.FitnessProfile{}), MealPlan{}, w)
	require.NoError(t, err)
	assert.Contains(t, md, `| Friday | Run \| walk; Lunges (10 reps) |`)
}

func TestRenderRejectsSchemaMismatch(t *testing.T) {
	p := profile.New(profile.FitnessProfile{})

	_, err := Render(p, MealPlan{Meals: []MealSlot{{Foods: []FoodPortion{{Food: "Egg"}}}}}, nil)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "meal_plan[0].meal")

	_, err = Render(p, MealPlan{Meals: []MealSlot{{Meal: "dinner"}}}, nil)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = Render(p, MealPlan{Meals: []MealSlot{{Meal: "dinner", Foods: []FoodPortion{{Amount: "1 cup"}}}}}, nil)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "meal_plan[0].foods[0].food")

	_, err = Render(p, MealPlan{Meals: []MealSlot{{Meal: "dinner", Recommended: "Stew", Alternatives: []Alternative{{Confidence: "2.00%"}}}}}, nil)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = Render(p, MealPlan{}, WorkoutPlan{"Funday": {{Name: "Squats"}}})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestWorkoutPlanDecoding(t *testing.T) {
	var w WorkoutPlan
	err := json.Unmarshal([]byte(`{
		"monday": [{"exercise": "Squats", "sets": "4", "reps": 10, "notes": "heavy"}, "Cool down"],
		"Wednesday": [{"exercise": "Rows", "sets": 3.0, "reps": "8-12"}]
	}`), &w)
	require.NoError(t, err)

	require.Len(t, w["Monday"], 2)
	assert.Equal(t, Exercise{Name: "Squats", Sets: "4", Reps: "10", Notes: "heavy"}, w["Monday"][0])
	assert.Equal(t, Exercise{Name: "Cool down", Bare: true}, w["Monday"][1])
	assert.Equal(t, "3", w["Wednesday"][0].Sets)
	assert.Equal(t, "8-12", w["Wednesday"][0].Reps)
}

func TestWorkoutPlanDecodingErrors(t *testing.T) {
	var w WorkoutPlan

	err := json.Unmarshal([]byte(`{"Monday": [{"sets": 3}]}`), &w)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "Monday[0]")

	err = json.Unmarshal([]byte(`{"Someday": []}`), &w)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	err = json.Unmarshal([]byte(`["Monday"]`), &w)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestWorkoutPlanRejectsRepeatedWeekday(t *testing.T) {
	var w WorkoutPlan
	err := json.Unmarshal([]byte(`{"monday": ["Squats"], "Monday": ["Rows"]}`), &w)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "Monday appears more than once")

	built := WorkoutPlan{"monday": {{Name: "Squats"}}, "Monday": {{Name: "Rows"}}}
	assert.ErrorIs(t, built.Validate(), ErrSchemaMismatch)

	_, err = Render(profile.New(profile.FitnessProfile{}), MealPlan{}, built)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestWorkoutPlanDay(t *testing.T) {
	w := WorkoutPlan{" tuesday ": {{Name: "Swim"}}, "Friday": {{Name: "Run"}}}
	require.NoError(t, w.Validate())

	assert.Equal(t, []Exercise{{Name: "Run"}}, w.Day("Friday"))
	assert.Equal(t, []Exercise{{Name: "Swim"}}, w.Day("Tuesday"))
	assert.Nil(t, w.Day("Sunday"))
}

func TestExerciseMarshal(t *testing.T) {
	raw, err := json.Marshal(WorkoutPlan{"Monday": {
		{Name: "Push-ups", Sets: "3", Reps: "15"},
		{Name: "Curls", Sets: "3", Reps: "8-12"},
		{Name: "Walk", Bare: true},
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Monday":[
		{"exercise":"Push-ups","sets":3,"reps":15},
		{"exercise":"Curls","sets":3,"reps":"8-12"},
		"Walk"
	]}`, string(raw))
}

func TestLoadMealPlan(t *testing.T) {
	path := writeFile(t, "meal_plan.json", `{"meal_plan":[{
		"meal":"breakfast","recommended":"Oatmeal Bowl","main_confidence":"64.10%",
		"foods":[{"food":"Oatmeal","amount":"50g"}],
		"alternatives":[{"dish":"Greek Yogurt Parfait","confidence":"20.00%","foods":[{"food":"Greek Yogurt","amount":"150g"}]}]
	}]}`)

	m, err := LoadMealPlan(path)
	require.NoError(t, err)
	require.Len(t, m.Meals, 1)
	assert.Equal(t, "Oatmeal Bowl", m.Meals[0].Recommended)
	assert.Equal(t, "Greek Yogurt", m.Meals[0].Alternatives[0].Foods[0].Food)
}

func TestLoadMissingArtifact(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "meal_plan.json")

	_, err := LoadMealPlan(missing)
	assert.ErrorIs(t, err, ErrMissingArtifact)
	assert.Contains(t, err.Error(), missing)

	_, err = LoadWorkoutPlan(missing)
	assert.ErrorIs(t, err, ErrMissingArtifact)
}

func TestLoadSchemaMismatch(t *testing.T) {
	_, err := LoadMealPlan(writeFile(t, "meal_plan.json", `{"meal_plan":[{"foods":[]}]}`))
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = LoadMealPlan(writeFile(t, "meal_plan.json", `{"meal_plan": 7}`))
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = LoadWorkoutPlan(writeFile(t, "workout_plan.json", `{"Monday":[{"reps":5}]}`))
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}
