package plan

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"healthcast/internal/profile"
)

// Fallback phrases for missing profile fields.
const (
	NoGoals      = "no specific goals"
	NoSchedule   = "no schedule preference"
	NoNutrition  = "no specific nutrition preferences"
	RestDay      = "Rest"
	noMealsLine  = "No meals planned."
	workoutTitle = "### Suggested Workout Plan"
	mealTitle    = "### Suggested Nutrition Plan"
)

// Render builds the weekly plan markdown: a summary paragraph, the workout
// table and the nutrition section, in that order. It fails with
// ErrSchemaMismatch before writing anything when a plan is malformed.
func Render(p profile.FitnessProfile, meals MealPlan, workouts WorkoutPlan) (string, error) {
	if err := meals.Validate(); err != nil {
		return "", err
	}
	if err := workouts.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	writeSummary(&b, p)
	b.WriteString("\n\n")
	writeWorkouts(&b, workouts)
	b.WriteString("\n")
	writeMeals(&b, meals)
	return b.String(), nil
}

func writeSummary(b *strings.Builder, p profile.FitnessProfile) {
	who := "there"
	if p.Gender != "" {
		who = string(p.Gender)
	}
	fmt.Fprintf(b, "Hello %s", who)
	if p.Age != nil {
		fmt.Fprintf(b, " aged %d", *p.Age)
	}
	b.WriteString("!\n\n")

	goals := NoGoals
	if p.Goals.Len() > 0 {
		goals = strings.Join(p.Goals.Labels(), ", ")
	}
	fmt.Fprintf(b, "Your goals are **%s**, and your schedule is **%s**.\n",
		goals, orDefault(p.SchedulePreferences, NoSchedule))
	fmt.Fprintf(b, "Based on your nutrition preferences (%s), here is your personalized plan.\n",
		orDefault(p.NutritionPreferences, NoNutrition))
	b.WriteString("Follow this plan consistently for the best results!")
}

func writeWorkouts(b *strings.Builder, w WorkoutPlan) {
	b.WriteString(workoutTitle + "\n\n")
	b.WriteString("| Day | Workout |\n|---|---|\n")
	for _, day := range Weekdays {
		cell := RestDay
		if exercises := w.Day(day); len(exercises) > 0 {
			parts := make([]string, len(exercises))
			for i, ex := range exercises {
				parts[i] = ex.String()
			}
			cell = strings.Join(parts, "; ")
		}
		fmt.Fprintf(b, "| %s | %s |\n", day, escapeCell(cell))
	}
}

// String renders "Name (S sets x R reps) - notes"; bare entries verbatim.
func (e Exercise) String() string {
	if e.Bare {
		return e.Name
	}
	s := e.Name
	switch {
	case e.Sets != "" && e.Reps != "":
		s += fmt.Sprintf(" (%s sets x %s reps)", e.Sets, e.Reps)
	case e.Sets != "":
		s += fmt.Sprintf(" (%s sets)", e.Sets)
	case e.Reps != "":
		s += fmt.Sprintf(" (%s reps)", e.Reps)
	}
	if e.Notes != "" {
		s += " - " + e.Notes
	}
	return s
}

func writeMeals(b *strings.Builder, m MealPlan) {
	b.WriteString(mealTitle + "\n\n")
	if len(m.Meals) == 0 {
		b.WriteString(noMealsLine + "\n")
		return
	}

	for _, slot := range m.Meals {
		fmt.Fprintf(b, "#### %s\n\n", title(slot.Meal))
		if slot.Recommended != "" {
			fmt.Fprintf(b, "**Recommended:** %s", slot.Recommended)
			if slot.MainConfidence != "" {
				fmt.Fprintf(b, " (confidence %s)", slot.MainConfidence)
			}
			b.WriteString("\n\n")
		}
		for _, f := range slot.Foods {
			fmt.Fprintf(b, "- %s\n", f)
		}
		if len(slot.Foods) > 0 {
			b.WriteString("\n")
		}
		if len(slot.Alternatives) > 0 {
			b.WriteString("**Alternatives:**\n\n")
			for _, alt := range slot.Alternatives {
				fmt.Fprintf(b, "- %s\n", alt)
			}
			b.WriteString("\n")
		}
	}
}

// String renders "Food (amount)", or just the food when no amount is known.
func (f FoodPortion) String() string {
	if f.Amount == "" {
		return f.Food
	}
	return fmt.Sprintf("%s (%s)", f.Food, f.Amount)
}

// String renders "Dish (confidence): Food (amount), ...".
func (a Alternative) String() string {
	s := a.Dish
	if a.Confidence != "" {
		s += " (" + a.Confidence + ")"
	}
	if len(a.Foods) > 0 {
		foods := make([]string, len(a.Foods))
		for i, f := range a.Foods {
			foods[i] = f.String()
		}
		s += ": " + strings.Join(foods, ", ")
	}
	return s
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

func title(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
