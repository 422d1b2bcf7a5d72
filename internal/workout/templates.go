package workout

import "healthcast/internal/profile"

type move struct {
	name  string
	reps  int
	notes string
	// timed moves carry their duration in notes instead of sets x reps
	timed bool
}

func timed(name, notes string) move {
	return move{name: name, notes: notes, timed: true}
}

var templates = map[profile.Goal]map[string][]move{
	profile.GoalMuscleBuilding: {
		"Monday":    {{name: "Bench Press", reps: 10}, {name: "Overhead Press", reps: 10}, {name: "Triceps Dips", reps: 12}},
		"Tuesday":   {{name: "Pull-ups", reps: 8}, {name: "Barbell Rows", reps: 10}, {name: "Biceps Curls", reps: 12}},
		"Wednesday": {{name: "Squats", reps: 10}, {name: "Romanian Deadlifts", reps: 10}, {name: "Calf Raises", reps: 15}},
		"Thursday":  {{name: "Incline Dumbbell Press", reps: 10}, {name: "Lateral Raises", reps: 12}, {name: "Push-ups", reps: 15}},
		"Friday":    {{name: "Deadlifts", reps: 6}, {name: "Lat Pulldowns", reps: 10}, {name: "Hammer Curls", reps: 12}},
		"Saturday":  {timed("HIIT Intervals", "20 min, 30s on / 30s off")},
	},
	profile.GoalWeightLoss: {
		"Monday":    {timed("HIIT Intervals", "25 min")},
		"Tuesday":   {{name: "Goblet Squats", reps: 15}, {name: "Push-ups", reps: 12}, {name: "Kettlebell Swings", reps: 15}},
		"Wednesday": {timed("Brisk Walk or Jog", "40 min, conversational pace")},
		"Thursday":  {{name: "Dumbbell Rows", reps: 12}, {name: "Shoulder Press", reps: 12}, {name: "Plank", reps: 3, notes: "hold 30s"}},
		"Friday":    {{name: "Lunges", reps: 12}, {name: "Glute Bridges", reps: 15}, {name: "Step-ups", reps: 12}},
		"Saturday":  {timed("Cycling", "45 min")},
	},
	profile.GoalStrength: {
		"Monday":    {{name: "Back Squats", reps: 5}, {name: "Bench Press", reps: 5}},
		"Tuesday":   {timed("Mobility Flow", "20 min")},
		"Wednesday": {{name: "Deadlifts", reps: 5}, {name: "Overhead Press", reps: 5}},
		"Thursday":  {timed("Easy Cardio", "30 min")},
		"Friday":    {{name: "Front Squats", reps: 5}, {name: "Weighted Pull-ups", reps: 5}},
		"Saturday":  {{name: "Farmer Carries", reps: 4, notes: "40 m each"}, {name: "Sled Push", reps: 4}},
	},
	profile.GoalEndurance: {
		"Monday":    {timed("Long Cardio", "60 min, easy pace")},
		"Tuesday":   {{name: "Circuit: Burpees", reps: 12}, {name: "Circuit: Mountain Climbers", reps: 20}, {name: "Circuit: Jump Squats", reps: 15}},
		"Wednesday": {timed("Interval Run", "6 x 3 min hard / 2 min easy")},
		"Thursday":  {timed("Cross Training", "45 min swim or row")},
		"Friday":    {timed("Tempo Run", "30 min")},
		"Saturday":  {timed("Recovery Cardio", "30 min, very easy")},
	},
	profile.GoalFlexibility: {
		"Monday":    {timed("Yoga Flow", "30 min")},
		"Tuesday":   {{name: "Hip Openers", reps: 8}, {name: "Hamstring Stretch", reps: 6, notes: "hold 30s"}},
		"Wednesday": {timed("Pilates", "30 min")},
		"Thursday":  {timed("Mobility Flow", "25 min")},
		"Friday":    {timed("Yin Yoga", "40 min")},
		"Saturday":  {timed("Light Walk", "30 min")},
	},
	profile.GoalGeneralFitness: {
		"Monday":    {{name: "Bodyweight Squats", reps: 15}, {name: "Push-ups", reps: 10}, {name: "Plank", reps: 3, notes: "hold 30s"}},
		"Tuesday":   {timed("Brisk Walk", "30 min")},
		"Wednesday": {{name: "Lunges", reps: 12}, {name: "Dumbbell Rows", reps: 12}, {name: "Glute Bridges", reps: 15}},
		"Thursday":  {timed("Yoga Flow", "20 min")},
		"Friday":    {{name: "Step-ups", reps: 12}, {name: "Shoulder Press", reps: 10}, {name: "Dead Bugs", reps: 12}},
		"Saturday":  {timed("Cycling or Swimming", "40 min")},
	},
}
